// Copyright 2025 Marina Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-marina/marina/internal/portal/model"
	"github.com/go-marina/marina/internal/portal/service"
	"github.com/go-marina/marina/pkg/version"
)

var rootCmd = &cobra.Command{
	Use:   "marina-cli",
	Short: "marina cli is a command line tool",
	Run: func(cmd *cobra.Command, args []string) {
		err := cmd.Help()
		if err != nil {
			return
		}
	},
}

// deriveCmd 按權限等級列印預設授權行，供排查線上角色授權時比對。
var deriveCmd = &cobra.Command{
	Use:   "derive <level>",
	Short: "Print the default permission row derived for a permission level",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		catalog, err := service.BuildCatalog(model.DefaultNavigationTree)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		row := model.DeriveRow(model.PermissionLevel(args[0]), catalog)
		out := make(map[string][]string, len(row))
		for key, grants := range row {
			out[key] = model.SerializeGrants(grants)
		}
		j, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(string(j))
	},
}

// catalogCmd 列印資源目錄，順序即矩陣行順序。
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the flat resource catalog built from the navigation tree",
	Run: func(cmd *cobra.Command, args []string) {
		catalog, err := service.BuildCatalog(model.DefaultNavigationTree)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		for _, res := range catalog {
			fmt.Println(res.Key)
		}
	},
}

func init() {
	rootCmd.AddCommand(version.VersionCmd)
	rootCmd.AddCommand(deriveCmd)
	rootCmd.AddCommand(catalogCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}
