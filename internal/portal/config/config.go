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

package config

import (
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/go-marina/marina/pkg/cache"
	"github.com/go-marina/marina/pkg/database"
	"github.com/go-marina/marina/pkg/http"
	"github.com/go-marina/marina/pkg/log"
)

// AppConfig 入口配置。App 區塊為入口自身的少量開關。
type AppConfig struct {
	App      App
	Log      log.Conf
	Http     http.Http
	Database database.Database
	Redis    cache.Redis
}

type App struct {
	// InitAdminPassword 首次啟動播種管理員帳號的初始密碼
	InitAdminPassword string `mapstructure:"initAdminPassword"`
}

var (
	cfg  AppConfig
	once sync.Once
)

func NewConf(confDir string) AppConfig {
	once.Do(func() {
		var err error
		cfg, err = LoadConfigFile(confDir)
		if err != nil {
			panic(fmt.Sprintf("load config file error: %s", err))
		}
	})
	return cfg
}

// LoadConfigFile load config file
func LoadConfigFile(confDir string) (AppConfig, error) {

	config := viper.New()
	config.SetConfigFile(confDir)
	if err := config.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("failed to read configuration file: %v", err)
	}

	config.WatchConfig()
	config.OnConfigChange(func(e fsnotify.Event) {
		log.Infof("The configuration changes, re-analyze the configuration file: %s", e.Name)
		if err := config.Unmarshal(&cfg); err != nil {
			log.Errorf("failed to unmarshal configuration file: %v", err)
		}
	})
	if err := config.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal configuration file: %v", err)
	}
	if cfg.App.InitAdminPassword == "" {
		cfg.App.InitAdminPassword = "marina@2025"
	}
	log.Infow("config file loaded",
		"path", confDir,
	)

	return cfg, nil
}
