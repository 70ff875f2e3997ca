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

package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"

	"github.com/go-marina/marina/internal/portal/model"
)

func TestUnionRoleIdsIncludesRemovedRoles(t *testing.T) {
	matrix := model.PermissionMatrix{
		"role_admin": {},
		"role_guest": {},
	}
	// role_ghost 在覆寫前有格子、覆寫後沒有，仍須出現在清單中
	ids := unionRoleIds([]string{"role_admin", "role_ghost"}, matrix)

	assert.Len(t, ids, 3)
	assert.Contains(t, ids, "role_admin")
	assert.Contains(t, ids, "role_guest")
	assert.Contains(t, ids, "role_ghost")
}

func TestUnionRoleIdsDeduplicates(t *testing.T) {
	matrix := model.PermissionMatrix{"role_admin": {}}
	ids := unionRoleIds([]string{"role_admin", "role_admin"}, matrix)
	assert.Equal(t, []string{"role_admin"}, ids)
}

func TestUnionRoleIdsEmptyInputs(t *testing.T) {
	assert.Empty(t, unionRoleIds(nil, nil))
	assert.Equal(t, []string{"role_a"}, unionRoleIds([]string{"role_a"}, nil))
	assert.Equal(t, []string{"role_b"}, unionRoleIds(nil, model.PermissionMatrix{"role_b": {}}))
}

func TestHydrateCell(t *testing.T) {
	got := hydrateCell(datatypes.JSON(`["view","edit"]`))
	assert.True(t, got.Equal(model.NewGrantSet(model.OperationView, model.OperationEdit)))

	// 非法 JSON 退回空集合
	got = hydrateCell(datatypes.JSON(`{broken`))
	assert.True(t, got.Equal(model.NewGrantSet()))

	// 未知操作在還原時被丟棄
	got = hydrateCell(datatypes.JSON(`["view","fly"]`))
	assert.True(t, got.Equal(model.NewGrantSet(model.OperationView)))
}
