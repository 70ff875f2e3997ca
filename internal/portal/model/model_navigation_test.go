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

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResourceKey(t *testing.T) {
	assert.Equal(t, "岸電系統__即時監控", ResourceKey(NavGroupShorePower, "即時監控"))
}

func TestAdminResourceKeyInDefaultTree(t *testing.T) {
	catalog, err := flattenCatalog(DefaultNavigationTree)
	require.NoError(t, err)

	found := false
	for _, res := range catalog {
		if res.Key == AdminResourceKey {
			found = true
		}
	}
	assert.True(t, found, "管理閘道資源必須存在於預設導覽樹")
}

func TestDefaultNavigationTreeKeysUnique(t *testing.T) {
	catalog, err := flattenCatalog(DefaultNavigationTree)
	require.NoError(t, err)

	seen := make(map[string]struct{}, len(catalog))
	for _, res := range catalog {
		_, dup := seen[res.Key]
		assert.False(t, dup, res.Key)
		seen[res.Key] = struct{}{}
	}
}
