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

package service

import (
	"fmt"

	"github.com/go-marina/marina/internal/portal/model"
)

// CatalogService 資源目錄。由靜態導覽樹一次性構建，運行期不可變。
type CatalogService struct {
	tree    []model.NavGroup
	catalog []model.Resource
	keys    map[string]struct{}
}

// NewCatalogService 由導覽樹構建資源目錄。
// 目錄順序保持輸入順序（分組序、組內頁面序）；資源鍵重複時報錯。
func NewCatalogService(tree []model.NavGroup) (*CatalogService, error) {
	catalog, err := BuildCatalog(tree)
	if err != nil {
		return nil, err
	}
	keys := make(map[string]struct{}, len(catalog))
	for _, res := range catalog {
		keys[res.Key] = struct{}{}
	}
	return &CatalogService{
		tree:    tree,
		catalog: catalog,
		keys:    keys,
	}, nil
}

// BuildCatalog 由導覽樹推導扁平資源列表。
// 兩個分組若因名稱含分隔符拼出相同的鍵，在此即報錯，不留到運行期。
func BuildCatalog(tree []model.NavGroup) ([]model.Resource, error) {
	var catalog []model.Resource
	seen := make(map[string]struct{})
	for _, group := range tree {
		for _, item := range group.Items {
			key := model.ResourceKey(group.Group, item)
			if _, dup := seen[key]; dup {
				return nil, fmt.Errorf("duplicate resource key: %s", key)
			}
			seen[key] = struct{}{}
			catalog = append(catalog, model.Resource{
				Key:   key,
				Group: group.Group,
				Name:  item,
			})
		}
	}
	return catalog, nil
}

// Resources 返回資源目錄的副本。
func (cs *CatalogService) Resources() []model.Resource {
	out := make([]model.Resource, len(cs.catalog))
	copy(out, cs.catalog)
	return out
}

// Tree 返回導覽樹。
func (cs *CatalogService) Tree() []model.NavGroup {
	return cs.tree
}

// HasKey 報告資源鍵是否在目錄內。
func (cs *CatalogService) HasKey(key string) bool {
	_, ok := cs.keys[key]
	return ok
}
