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

// PermissionLevel 權限等級，閉集。
// 等級是一組命名策略，僅用於參數化預設授權推導（見 DeriveRow）。
type PermissionLevel string

const (
	LevelFull     PermissionLevel = "最高權限"
	LevelEngineer PermissionLevel = "工程維運"
	LevelGeneral  PermissionLevel = "一般使用"
	LevelGuest    PermissionLevel = "訪客"
)

// DefaultLevel 新建角色未指定等級時的預設值。
const DefaultLevel = LevelGeneral

// ValidLevel 報告等級是否在閉集內。
func ValidLevel(level PermissionLevel) bool {
	switch level {
	case LevelFull, LevelEngineer, LevelGeneral, LevelGuest:
		return true
	}
	return false
}

// 內建角色 ID。role_admin 受保護，不可刪除。
const (
	RoleAdmin    = "role_admin"
	RoleEngineer = "role_engineer"
	RoleMember   = "role_member"
	RoleGuest    = "role_guest"
)

// RoleIsBuiltin role built-in status
const (
	RoleCustom  = 0 // custom role
	RoleBuiltin = 1 // built-in role
)

// Role 角色表（支持自定義角色）
type Role struct {
	BaseModel
	RoleId    string          `gorm:"column:role_id;not null;uniqueIndex" json:"roleId"`
	Name      string          `gorm:"column:name;not null" json:"name"`                      // 角色名稱
	Level     PermissionLevel `gorm:"column:level;not null;type:varchar(32)" json:"level"`   // 權限等級
	IsBuiltin int             `gorm:"column:is_builtin;not null;default:0" json:"isBuiltin"` // 0: custom, 1: built-in
	CreatedBy string          `gorm:"column:created_by" json:"createdBy"`                    // 創建者
}

func (r *Role) TableName() string {
	return "t_role"
}

// Protected 報告角色是否受保護（不可刪除）。
func (r *Role) Protected() bool {
	return r.RoleId == RoleAdmin
}

// DefaultRoles 首次啟動時種入的預設角色，順序即創建順序。
var DefaultRoles = []Role{
	{RoleId: RoleAdmin, Name: "系統管理員", Level: LevelFull, IsBuiltin: RoleBuiltin},
	{RoleId: RoleEngineer, Name: "維運工程師", Level: LevelEngineer, IsBuiltin: RoleBuiltin},
	{RoleId: RoleMember, Name: "一般會員", Level: LevelGeneral, IsBuiltin: RoleBuiltin},
	{RoleId: RoleGuest, Name: "訪客", Level: LevelGuest, IsBuiltin: RoleBuiltin},
}

// CreateRoleRequest request for creating a role
type CreateRoleRequest struct {
	Name  string          `json:"name"`
	Level PermissionLevel `json:"level"` // 缺省為 DefaultLevel
}

// UpdateRoleRequest request for renaming a role and/or changing its level
type UpdateRoleRequest struct {
	Name  string          `json:"name"`
	Level PermissionLevel `json:"level"`
}

// RoleResponse response for role without timestamps
type RoleResponse struct {
	RoleId    string          `json:"roleId"`
	Name      string          `json:"name"`
	Level     PermissionLevel `json:"level"`
	IsBuiltin int             `json:"isBuiltin"`
	CreatedBy string          `json:"createdBy"`
}

// ToResponse 轉為對外回應結構。
func (r *Role) ToResponse() RoleResponse {
	return RoleResponse{
		RoleId:    r.RoleId,
		Name:      r.Name,
		Level:     r.Level,
		IsBuiltin: r.IsBuiltin,
		CreatedBy: r.CreatedBy,
	}
}
