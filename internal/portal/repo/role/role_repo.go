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

package role

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/go-marina/marina/internal/portal/model"
	"github.com/go-marina/marina/pkg/database"
)

type IRoleRepository interface {
	GetRole(roleId string) (*model.Role, error)
	ListRoles() ([]model.Role, error)
	CreateRole(r *model.Role) error
	UpdateRole(roleId string, name string, level model.PermissionLevel) error
	// UpdateRoleWithRow 更新角色欄位並整行覆寫其權限矩陣行，單一交易內完成。
	UpdateRoleWithRow(roleId string, name string, level model.PermissionLevel, row model.PermissionRow) error
	// DeleteRoleCascade 刪除角色並級聯刪除其權限矩陣行，單一交易內完成。
	DeleteRoleCascade(roleId string) error
	RoleExists(roleId string) (bool, error)
	InitDefaultRoles() error
}

type RoleRepo struct {
	db database.IDatabase
}

func NewRoleRepo(db database.IDatabase) IRoleRepository {
	return &RoleRepo{db: db}
}

// GetRole 獲取角色
func (r *RoleRepo) GetRole(roleId string) (*model.Role, error) {
	var ro model.Role
	err := r.db.Database().Where("role_id = ?", roleId).First(&ro).Error
	if err != nil {
		return nil, err
	}
	return &ro, nil
}

// ListRoles 按創建順序列出角色（預設角色在前，後建者附於其後）
func (r *RoleRepo) ListRoles() ([]model.Role, error) {
	var roles []model.Role
	err := r.db.Database().Order("id ASC").Find(&roles).Error
	return roles, err
}

// CreateRole 創建角色
func (r *RoleRepo) CreateRole(ro *model.Role) error {
	return r.db.Database().Create(ro).Error
}

// UpdateRole 更新角色名稱與等級
func (r *RoleRepo) UpdateRole(roleId string, name string, level model.PermissionLevel) error {
	updates := map[string]any{}
	if name != "" {
		updates["name"] = name
	}
	if level != "" {
		updates["level"] = level
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.Database().Model(&model.Role{}).
		Where("role_id = ?", roleId).
		Updates(updates).Error
}

// UpdateRoleWithRow 更新角色欄位並重建其矩陣行。
// 等級與整行在同一交易內落地，不會出現等級已改而行未改的半套狀態。
func (r *RoleRepo) UpdateRoleWithRow(roleId string, name string, level model.PermissionLevel, row model.PermissionRow) error {
	return r.db.Database().Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{"level": level}
		if name != "" {
			updates["name"] = name
		}
		if err := tx.Model(&model.Role{}).
			Where("role_id = ?", roleId).
			Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", roleId).Delete(&model.RolePermission{}).Error; err != nil {
			return err
		}
		for resourceKey, grants := range row {
			payload, err := json.Marshal(model.SerializeGrants(grants))
			if err != nil {
				return err
			}
			cell := model.RolePermission{
				RoleId:      roleId,
				ResourceKey: resourceKey,
				Operations:  datatypes.JSON(payload),
			}
			if err := tx.Create(&cell).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteRoleCascade 刪除角色與其矩陣行
func (r *RoleRepo) DeleteRoleCascade(roleId string) error {
	return r.db.Database().Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", roleId).Delete(&model.Role{}).Error; err != nil {
			return err
		}
		return tx.Where("role_id = ?", roleId).Delete(&model.RolePermission{}).Error
	})
}

// RoleExists checks if a role exists
func (r *RoleRepo) RoleExists(roleId string) (bool, error) {
	var count int64
	err := r.db.Database().Model(&model.Role{}).Where("role_id = ?", roleId).Count(&count).Error
	return count > 0, err
}

// InitDefaultRoles 初始化預設角色（首次啟動時調用）
func (r *RoleRepo) InitDefaultRoles() error {
	var count int64
	if err := r.db.Database().Model(&model.Role{}).
		Where("is_builtin = ?", model.RoleBuiltin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		// 已初始化，跳過
		return nil
	}

	for i := range model.DefaultRoles {
		ro := model.DefaultRoles[i]
		if err := r.db.Database().Create(&ro).Error; err != nil {
			return err
		}
	}
	return nil
}
