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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-marina/marina/internal/portal/model"
)

func TestBuildCatalogDeterministicOrder(t *testing.T) {
	tree := []model.NavGroup{
		{Group: "甲", Items: []string{"一", "二"}},
		{Group: "乙", Items: []string{"三"}},
	}

	first, err := BuildCatalog(tree)
	require.NoError(t, err)
	second, err := BuildCatalog(tree)
	require.NoError(t, err)

	require.Len(t, first, 3)
	assert.Equal(t, first, second)
	assert.Equal(t, "甲__一", first[0].Key)
	assert.Equal(t, "甲__二", first[1].Key)
	assert.Equal(t, "乙__三", first[2].Key)
}

func TestBuildCatalogRejectsDuplicateKeys(t *testing.T) {
	// 分組名含分隔符時可能與另一分組拼出相同的鍵
	tree := []model.NavGroup{
		{Group: "甲__乙", Items: []string{"丙"}},
		{Group: "甲", Items: []string{"乙__丙"}},
	}

	_, err := BuildCatalog(tree)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate resource key")
}

func TestCatalogServiceDefaultTree(t *testing.T) {
	cs, err := NewCatalogService(model.DefaultNavigationTree)
	require.NoError(t, err)

	assert.True(t, cs.HasKey(model.AdminResourceKey))
	assert.False(t, cs.HasKey("不存在__頁面"))

	resources := cs.Resources()
	assert.Len(t, resources, 18)

	// Resources 返回副本，呼叫方改動不影響目錄
	resources[0].Key = "改壞了"
	assert.NotEqual(t, "改壞了", cs.Resources()[0].Key)
}
