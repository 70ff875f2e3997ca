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
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/go-marina/marina/internal/portal/constant"
	"github.com/go-marina/marina/internal/portal/model"
	"github.com/go-marina/marina/internal/portal/repo/role"
	"github.com/go-marina/marina/pkg/event"
	"github.com/go-marina/marina/pkg/id"
	"github.com/go-marina/marina/pkg/log"
)

var (
	// ErrRoleProtected 系統管理員角色不可刪除
	ErrRoleProtected = errors.New("role is protected and cannot be deleted")
	// ErrRoleNotFound 角色不存在
	ErrRoleNotFound = errors.New("role not found")
)

// RoleChangedEvent 角色變更事件，action 取 create / update / delete。
type RoleChangedEvent struct {
	Action string
	RoleId string
}

func (e *RoleChangedEvent) EventName() string {
	return constant.EventRoleChanged
}

func (e *RoleChangedEvent) EventType() string {
	return e.Action
}

// RoleService 角色的增刪改查。角色與其矩陣行同生共死：
// 創建時按等級播種整行，刪除時級聯清行，變更等級時重新推導整行。
type RoleService struct {
	roleRepo role.IRoleRepository
	permSvc  *PermissionService
	bus      *event.EventBus
}

func NewRoleService(roleRepo role.IRoleRepository, permSvc *PermissionService, bus *event.EventBus) *RoleService {
	return &RoleService{
		roleRepo: roleRepo,
		permSvc:  permSvc,
		bus:      bus,
	}
}

func (rs *RoleService) ListRoles() ([]model.RoleResponse, error) {
	roles, err := rs.roleRepo.ListRoles()
	if err != nil {
		return nil, err
	}
	out := make([]model.RoleResponse, 0, len(roles))
	for i := range roles {
		out = append(out, roles[i].ToResponse())
	}
	return out, nil
}

func (rs *RoleService) GetRole(roleId string) (*model.Role, error) {
	ro, err := rs.roleRepo.GetRole(roleId)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoleNotFound
	}
	return ro, err
}

// CreateRole 創建角色並按等級播種矩陣行。
// 等級缺省為一般使用；等級不在已知枚舉內時報錯。
func (rs *RoleService) CreateRole(req *model.CreateRoleRequest, createdBy string) (*model.Role, error) {
	level := req.Level
	if level == "" {
		level = model.DefaultLevel
	}
	if !model.ValidLevel(level) {
		return nil, fmt.Errorf("unknown permission level: %s", level)
	}
	ro := &model.Role{
		RoleId:    newRoleId(),
		Name:      req.Name,
		Level:     level,
		IsBuiltin: model.RoleCustom,
		CreatedBy: createdBy,
	}
	if err := rs.roleRepo.CreateRole(ro); err != nil {
		return nil, err
	}
	if err := rs.permSvc.SeedRow(ro); err != nil {
		return nil, err
	}
	rs.publish("create", ro.RoleId)
	return ro, nil
}

// newRoleId 優先用短 ID，生成失敗時退回無連字號 UUID。
func newRoleId() string {
	rid := id.ShortId()
	if rid == "" {
		rid = id.GetUUIDWithoutDashes()
	}
	return "role_" + rid
}

// UpdateRole 更新角色名稱或等級。角色不存在時靜默返回。
// 等級變更會丟棄該行的自定義授權：角色欄位與重新推導的整行
// 在同一交易內寫入，半套狀態不會落地，失敗後重試可收斂。
func (rs *RoleService) UpdateRole(roleId string, req *model.UpdateRoleRequest) error {
	ro, err := rs.roleRepo.GetRole(roleId)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warnf("update skipped, role not found, roleId: %s", roleId)
		return nil
	}
	if err != nil {
		return err
	}
	levelChanged := req.Level != "" && req.Level != ro.Level
	if levelChanged && !model.ValidLevel(req.Level) {
		return fmt.Errorf("unknown permission level: %s", req.Level)
	}
	if levelChanged {
		row := rs.permSvc.DeriveRow(req.Level)
		if err := rs.roleRepo.UpdateRoleWithRow(roleId, req.Name, req.Level, row); err != nil {
			return err
		}
		if err := rs.permSvc.permRepo.ClearRowCache(roleId); err != nil {
			log.Warnf("clear permission row cache failed, roleId: %s, err: %v", roleId, err)
		}
	} else if err := rs.roleRepo.UpdateRole(roleId, req.Name, req.Level); err != nil {
		return err
	}
	rs.publish("update", roleId)
	return nil
}

// DeleteRole 刪除角色並級聯刪除其矩陣行。
// 系統管理員角色受保護；角色不存在時靜默返回。
func (rs *RoleService) DeleteRole(roleId string) error {
	ro, err := rs.roleRepo.GetRole(roleId)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warnf("delete skipped, role not found, roleId: %s", roleId)
		return nil
	}
	if err != nil {
		return err
	}
	if ro.Protected() {
		return ErrRoleProtected
	}
	if err := rs.roleRepo.DeleteRoleCascade(roleId); err != nil {
		return err
	}
	if err := rs.permSvc.permRepo.ClearRowCache(roleId); err != nil {
		log.Warnf("clear permission row cache failed, roleId: %s, err: %v", roleId, err)
	}
	rs.publish("delete", roleId)
	return nil
}

// InitDefaultRoles 首次啟動時播種內建角色及其矩陣行。
func (rs *RoleService) InitDefaultRoles() error {
	if err := rs.roleRepo.InitDefaultRoles(); err != nil {
		return err
	}
	return rs.permSvc.Normalize()
}

func (rs *RoleService) publish(action, roleId string) {
	if rs.bus == nil {
		return
	}
	rs.bus.Publish(&RoleChangedEvent{Action: action, RoleId: roleId})
}
