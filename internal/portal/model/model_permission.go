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
	"sort"
	"strings"

	"gorm.io/datatypes"
)

// Operation 資源上的一種操作，閉集。
type Operation string

const (
	OperationView   Operation = "view"
	OperationEdit   Operation = "edit"
	OperationDelete Operation = "delete"
)

// operationOrder 僅用於展示排序：view < edit < delete。
var operationOrder = map[Operation]int{
	OperationView:   0,
	OperationEdit:   1,
	OperationDelete: 2,
}

// ValidOperation 報告 token 是否屬於操作閉集。
func ValidOperation(op Operation) bool {
	_, ok := operationOrder[op]
	return ok
}

// GrantSet 一個 (role, resource) 格子上的授權集合。
type GrantSet map[Operation]struct{}

// NewGrantSet 以給定操作構造授權集合，未知 token 被忽略。
func NewGrantSet(ops ...Operation) GrantSet {
	g := make(GrantSet, len(ops))
	for _, op := range ops {
		if ValidOperation(op) {
			g[op] = struct{}{}
		}
	}
	return g
}

func (g GrantSet) Has(op Operation) bool {
	_, ok := g[op]
	return ok
}

func (g GrantSet) Add(op Operation) {
	if ValidOperation(op) {
		g[op] = struct{}{}
	}
}

func (g GrantSet) Remove(op Operation) {
	delete(g, op)
}

// Toggle 翻轉單個操作的授權，返回翻轉後是否持有。
func (g GrantSet) Toggle(op Operation) bool {
	if !ValidOperation(op) {
		return false
	}
	if g.Has(op) {
		delete(g, op)
		return false
	}
	g[op] = struct{}{}
	return true
}

func (g GrantSet) Clone() GrantSet {
	c := make(GrantSet, len(g))
	for op := range g {
		c[op] = struct{}{}
	}
	return c
}

func (g GrantSet) Equal(other GrantSet) bool {
	if len(g) != len(other) {
		return false
	}
	for op := range g {
		if !other.Has(op) {
			return false
		}
	}
	return true
}

// PermissionRow 單一角色的完整矩陣行：resourceKey -> 授權集合。
type PermissionRow map[string]GrantSet

// PermissionMatrix 整個權限矩陣：roleId -> 矩陣行。
type PermissionMatrix map[string]PermissionRow

// SerializeGrants 將授權集合轉為儲存安全的有序字串陣列。
// 陣列內只含唯一的合法 token，按展示順序排列。
func SerializeGrants(g GrantSet) []string {
	ops := make([]Operation, 0, len(g))
	for op := range g {
		if ValidOperation(op) {
			ops = append(ops, op)
		}
	}
	sort.Slice(ops, func(i, j int) bool {
		return operationOrder[ops[i]] < operationOrder[ops[j]]
	})
	tokens := make([]string, len(ops))
	for i, op := range ops {
		tokens[i] = string(op)
	}
	return tokens
}

// HydrateGrants 反向轉換：字串陣列轉回授權集合。
// 未知 token、重複 token 一律丟棄，永不報錯（防禦式反序列化）。
func HydrateGrants(tokens []string) GrantSet {
	g := make(GrantSet, len(tokens))
	for _, tok := range tokens {
		op := Operation(strings.TrimSpace(tok))
		if ValidOperation(op) {
			g[op] = struct{}{}
		}
	}
	return g
}

// SerializeMatrix 將矩陣轉為 roleId -> (resourceKey -> []token) 的平面結構。
func SerializeMatrix(m PermissionMatrix) map[string]map[string][]string {
	out := make(map[string]map[string][]string, len(m))
	for roleId, row := range m {
		serialized := make(map[string][]string, len(row))
		for key, grants := range row {
			serialized[key] = SerializeGrants(grants)
		}
		out[roleId] = serialized
	}
	return out
}

// HydrateMatrix SerializeMatrix 的逆轉換，逐格防禦式還原。
func HydrateMatrix(raw map[string]map[string][]string) PermissionMatrix {
	m := make(PermissionMatrix, len(raw))
	for roleId, row := range raw {
		hydrated := make(PermissionRow, len(row))
		for key, tokens := range row {
			hydrated[key] = HydrateGrants(tokens)
		}
		m[roleId] = hydrated
	}
	return m
}

// DeriveRow 由權限等級與資源目錄推導一個角色的預設矩陣行。
// 純函數；等級不在閉集內時每個資源都得到空授權集合。
//
// 規則表（行為相容，不得更動）：
//   - 最高權限：所有資源 view/edit/delete
//   - 工程維運：所有資源 view/edit，支付計費系統分組僅 view
//   - 一般使用：岸電系統分組下頁面名含「即時監控」或「歷史紀錄」者 view，
//     船隻識別分組 view，使用者專區分組 view/edit，其餘為空
//   - 訪客：使用者專區分組 view，其餘為空
//
// 注意一般使用的岸電特例按頁面名子串匹配，重命名資源會改變結果。
func DeriveRow(level PermissionLevel, catalog []Resource) PermissionRow {
	row := make(PermissionRow, len(catalog))
	for _, res := range catalog {
		row[res.Key] = deriveGrants(level, res)
	}
	return row
}

func deriveGrants(level PermissionLevel, res Resource) GrantSet {
	switch level {
	case LevelFull:
		return NewGrantSet(OperationView, OperationEdit, OperationDelete)
	case LevelEngineer:
		if res.Group == NavGroupBilling {
			return NewGrantSet(OperationView)
		}
		return NewGrantSet(OperationView, OperationEdit)
	case LevelGeneral:
		switch res.Group {
		case NavGroupShorePower:
			if strings.Contains(res.Name, NavItemRealtimeMonitor) || strings.Contains(res.Name, NavItemHistoryQuery) {
				return NewGrantSet(OperationView)
			}
			return NewGrantSet()
		case NavGroupShipID:
			return NewGrantSet(OperationView)
		case NavGroupSelfService:
			return NewGrantSet(OperationView, OperationEdit)
		default:
			return NewGrantSet()
		}
	case LevelGuest:
		if res.Group == NavGroupSelfService {
			return NewGrantSet(OperationView)
		}
		return NewGrantSet()
	default:
		return NewGrantSet()
	}
}

// RolePermission 權限矩陣的持久化行：一個 (role, resource) 格子。
// operations 為 JSON 字串陣列，即 SerializeGrants 的輸出。
type RolePermission struct {
	BaseModel
	RoleId      string         `gorm:"column:role_id;not null;uniqueIndex:idx_role_resource" json:"roleId"`
	ResourceKey string         `gorm:"column:resource_key;not null;uniqueIndex:idx_role_resource" json:"resourceKey"`
	Operations  datatypes.JSON `gorm:"column:operations;type:json" json:"operations"`
}

func (RolePermission) TableName() string {
	return "t_role_permission"
}
