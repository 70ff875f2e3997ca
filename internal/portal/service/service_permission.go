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
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/go-marina/marina/internal/portal/model"
	"github.com/go-marina/marina/internal/portal/repo/permission"
	"github.com/go-marina/marina/internal/portal/repo/role"
	"github.com/go-marina/marina/pkg/log"
)

var permissionChecks = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "marina",
	Subsystem: "portal",
	Name:      "permission_checks_total",
	Help:      "Permission checks handled by the access facade.",
}, []string{"result"})

// PermissionService 權限矩陣的維護與查詢門面。
// 所有查詢失敗時一律拒絕，不放行。
type PermissionService struct {
	permRepo permission.IPermissionRepository
	roleRepo role.IRoleRepository
	catalog  *CatalogService
}

func NewPermissionService(permRepo permission.IPermissionRepository,
	roleRepo role.IRoleRepository, catalog *CatalogService) *PermissionService {
	return &PermissionService{
		permRepo: permRepo,
		roleRepo: roleRepo,
		catalog:  catalog,
	}
}

// Can 判斷角色對資源是否具備指定操作權限。
// 角色未知、資源未知、操作非法或讀取出錯，一律返回 false。
func (ps *PermissionService) Can(_ context.Context, roleId, resourceKey, operation string) bool {
	op := model.Operation(operation)
	if roleId == "" || resourceKey == "" || !model.ValidOperation(op) {
		permissionChecks.WithLabelValues("denied").Inc()
		return false
	}
	row, err := ps.permRepo.GetRow(roleId)
	if err != nil {
		log.Warnf("permission check fallback to deny, roleId: %s, err: %v", roleId, err)
		permissionChecks.WithLabelValues("denied").Inc()
		return false
	}
	allowed := row[resourceKey].Has(op)
	if allowed {
		permissionChecks.WithLabelValues("allowed").Inc()
	} else {
		permissionChecks.WithLabelValues("denied").Inc()
	}
	return allowed
}

// RowFor 返回角色的完整矩陣行，鍵集與資源目錄對齊。
// 角色無任何記錄或讀取出錯時，返回全空行。
func (ps *PermissionService) RowFor(roleId string) model.PermissionRow {
	stored, err := ps.permRepo.GetRow(roleId)
	if err != nil {
		log.Warnf("load permission row failed, roleId: %s, err: %v", roleId, err)
		stored = model.PermissionRow{}
	}
	row := make(model.PermissionRow, len(ps.catalog.catalog))
	for _, res := range ps.catalog.catalog {
		if grants, ok := stored[res.Key]; ok {
			row[res.Key] = grants.Clone()
		} else {
			row[res.Key] = model.NewGrantSet()
		}
	}
	return row
}

// Grants 讀取單一格子的授權集合。缺失時返回空集。
func (ps *PermissionService) Grants(roleId, resourceKey string) (model.GrantSet, error) {
	row, err := ps.permRepo.GetRow(roleId)
	if err != nil {
		return nil, err
	}
	if grants, ok := row[resourceKey]; ok {
		return grants.Clone(), nil
	}
	return model.NewGrantSet(), nil
}

// SetGrants 覆寫單一格子並持久化。資源鍵必須在目錄內，角色必須存在。
func (ps *PermissionService) SetGrants(roleId, resourceKey string, grants model.GrantSet) error {
	if !ps.catalog.HasKey(resourceKey) {
		return fmt.Errorf("unknown resource key: %s", resourceKey)
	}
	exists, err := ps.roleRepo.RoleExists(roleId)
	if err != nil {
		return err
	}
	if !exists {
		return ErrRoleNotFound
	}
	return ps.permRepo.SetGrants(roleId, resourceKey, grants.Clone())
}

// ToggleGrant 翻轉單一格子內的一個操作，返回翻轉後是否持有。
func (ps *PermissionService) ToggleGrant(roleId, resourceKey string, op model.Operation) (bool, error) {
	if !model.ValidOperation(op) {
		return false, fmt.Errorf("unknown operation: %s", op)
	}
	grants, err := ps.Grants(roleId, resourceKey)
	if err != nil {
		return false, err
	}
	if !ps.catalog.HasKey(resourceKey) {
		return false, fmt.Errorf("unknown resource key: %s", resourceKey)
	}
	grants.Toggle(op)
	if err := ps.SetGrants(roleId, resourceKey, grants); err != nil {
		return false, err
	}
	return grants.Has(op), nil
}

// SaveRow 覆寫角色整行並持久化，行先對目錄正規化。
func (ps *PermissionService) SaveRow(roleId string, row model.PermissionRow) error {
	exists, err := ps.roleRepo.RoleExists(roleId)
	if err != nil {
		return err
	}
	if !exists {
		return ErrRoleNotFound
	}
	return ps.permRepo.SaveRow(roleId, ps.normalizeRow(row))
}

// DeriveRow 按等級對當前資源目錄推導預設行，不落庫。
func (ps *PermissionService) DeriveRow(level model.PermissionLevel) model.PermissionRow {
	return model.DeriveRow(level, ps.catalog.catalog)
}

// SeedRow 按角色等級推導預設行並持久化。創建角色時調用。
func (ps *PermissionService) SeedRow(ro *model.Role) error {
	return ps.permRepo.SaveRow(ro.RoleId, ps.DeriveRow(ro.Level))
}

// Normalize 把整個矩陣對齊到當前角色集與資源目錄後回寫。
// 啟動時調用一次；對已對齊的矩陣再跑一次不產生變化。
func (ps *PermissionService) Normalize() error {
	roles, err := ps.roleRepo.ListRoles()
	if err != nil {
		return err
	}
	matrix, err := ps.permRepo.GetMatrix()
	if err != nil {
		return err
	}
	normalized := ps.NormalizeMatrix(roles, matrix)
	return ps.permRepo.SaveMatrix(normalized)
}

// NormalizeMatrix 純函數正規化：
//   - 每個角色恰有一行；缺行按等級推導補齊
//   - 行內鍵集與資源目錄一致；多餘鍵剔除，缺失鍵補空集
//   - 無對應角色的行剔除
func (ps *PermissionService) NormalizeMatrix(roles []model.Role, matrix model.PermissionMatrix) model.PermissionMatrix {
	normalized := make(model.PermissionMatrix, len(roles))
	for _, ro := range roles {
		stored, ok := matrix[ro.RoleId]
		if !ok {
			normalized[ro.RoleId] = model.DeriveRow(ro.Level, ps.catalog.catalog)
			continue
		}
		normalized[ro.RoleId] = ps.normalizeRow(stored)
	}
	return normalized
}

func (ps *PermissionService) normalizeRow(stored model.PermissionRow) model.PermissionRow {
	row := make(model.PermissionRow, len(ps.catalog.catalog))
	for _, res := range ps.catalog.catalog {
		if grants, ok := stored[res.Key]; ok {
			row[res.Key] = grants.Clone()
		} else {
			row[res.Key] = model.NewGrantSet()
		}
	}
	return row
}
