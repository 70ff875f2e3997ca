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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-marina/marina/internal/portal/constant"
	"github.com/go-marina/marina/internal/portal/model"
	"github.com/go-marina/marina/pkg/event"
)

type recordedRoleEvent struct {
	action string
	roleId string
}

type roleEventRecorder struct {
	events []recordedRoleEvent
}

func (r *roleEventRecorder) Handle(ev event.Event) {
	rc, ok := ev.(*RoleChangedEvent)
	if !ok {
		return
	}
	r.events = append(r.events, recordedRoleEvent{action: rc.Action, roleId: rc.RoleId})
}

type roleFixture struct {
	*permFixture
	roleSvc  *RoleService
	recorder *roleEventRecorder
}

func newRoleFixture(t *testing.T) *roleFixture {
	t.Helper()
	fx := newPermFixture(t)

	bus := event.NewEventBus()
	recorder := &roleEventRecorder{}
	bus.RegisterHandler(constant.EventRoleChanged, recorder)

	return &roleFixture{
		permFixture: fx,
		roleSvc:     NewRoleService(fx.roleRepo, fx.permSvc, bus),
		recorder:    recorder,
	}
}

func TestCreateRoleSeedsDerivedRow(t *testing.T) {
	fx := newRoleFixture(t)

	ro, err := fx.roleSvc.CreateRole(&model.CreateRoleRequest{
		Name:  "巡檢員",
		Level: model.LevelGuest,
	}, "user_1")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(ro.RoleId, "role_"))
	assert.Equal(t, model.RoleCustom, ro.IsBuiltin)
	assert.Equal(t, "user_1", ro.CreatedBy)

	row, err := fx.permRepo.GetRow(ro.RoleId)
	require.NoError(t, err)
	require.Len(t, row, 18)
	assert.True(t, row[model.ResourceKey(model.NavGroupSelfService, "密碼變更")].Has(model.OperationView))
	assert.Empty(t, row[model.ResourceKey(model.NavGroupBilling, "帳單查詢")])

	require.Len(t, fx.recorder.events, 1)
	assert.Equal(t, recordedRoleEvent{action: "create", roleId: ro.RoleId}, fx.recorder.events[0])
}

func TestCreateRoleDefaultsLevel(t *testing.T) {
	fx := newRoleFixture(t)

	ro, err := fx.roleSvc.CreateRole(&model.CreateRoleRequest{Name: "臨時帳號"}, "user_1")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultLevel, ro.Level)
}

func TestCreateRoleRejectsUnknownLevel(t *testing.T) {
	fx := newRoleFixture(t)

	_, err := fx.roleSvc.CreateRole(&model.CreateRoleRequest{
		Name:  "壞等級",
		Level: model.PermissionLevel("超級使用者"),
	}, "user_1")
	require.Error(t, err)
	assert.Empty(t, fx.recorder.events)
}

func TestUpdateRoleMissingIsNoop(t *testing.T) {
	fx := newRoleFixture(t)

	err := fx.roleSvc.UpdateRole("role_missing", &model.UpdateRoleRequest{Name: "新名"})
	require.NoError(t, err)
	assert.Empty(t, fx.recorder.events)
}

func TestUpdateRoleRenameKeepsRow(t *testing.T) {
	fx := newRoleFixture(t)
	ro, err := fx.roleSvc.CreateRole(&model.CreateRoleRequest{
		Name:  "維運甲",
		Level: model.LevelEngineer,
	}, "user_1")
	require.NoError(t, err)

	// 手動客製一格
	key := model.ResourceKey(model.NavGroupCamera, "即時影像")
	require.NoError(t, fx.permSvc.SetGrants(ro.RoleId, key, model.NewGrantSet(model.OperationDelete)))

	require.NoError(t, fx.roleSvc.UpdateRole(ro.RoleId, &model.UpdateRoleRequest{Name: "維運乙"}))

	updated, err := fx.roleSvc.GetRole(ro.RoleId)
	require.NoError(t, err)
	assert.Equal(t, "維運乙", updated.Name)

	// 僅改名不動矩陣行，客製保留
	row, err := fx.permRepo.GetRow(ro.RoleId)
	require.NoError(t, err)
	assert.True(t, row[key].Has(model.OperationDelete))
}

func TestUpdateRoleLevelChangeDiscardsCustomGrants(t *testing.T) {
	fx := newRoleFixture(t)
	ro, err := fx.roleSvc.CreateRole(&model.CreateRoleRequest{
		Name:  "維運丙",
		Level: model.LevelEngineer,
	}, "user_1")
	require.NoError(t, err)

	key := model.ResourceKey(model.NavGroupCamera, "即時影像")
	require.NoError(t, fx.permSvc.SetGrants(ro.RoleId, key, model.NewGrantSet(model.OperationDelete)))

	require.NoError(t, fx.roleSvc.UpdateRole(ro.RoleId, &model.UpdateRoleRequest{Level: model.LevelGuest}))

	// 整行按新等級重推，客製被丟棄
	row, err := fx.permRepo.GetRow(ro.RoleId)
	require.NoError(t, err)
	assert.False(t, row[key].Has(model.OperationDelete))
	assert.Equal(t, []string{"view"},
		model.SerializeGrants(row[model.ResourceKey(model.NavGroupSelfService, "個人資料")]))
}

func TestUpdateRoleLevelChangeFailureThenRetry(t *testing.T) {
	fx := newRoleFixture(t)
	ro, err := fx.roleSvc.CreateRole(&model.CreateRoleRequest{
		Name:  "維運丁",
		Level: model.LevelGeneral,
	}, "user_1")
	require.NoError(t, err)

	key := model.ResourceKey(model.NavGroupShipID, "船隻動態")
	require.NoError(t, fx.permSvc.SetGrants(ro.RoleId, key, model.NewGrantSet(model.OperationDelete)))

	// 第一次等級變更在倉儲層整筆失敗，等級與矩陣行都不落地
	fx.roleRepo.updateWithRowErr = assert.AnError
	err = fx.roleSvc.UpdateRole(ro.RoleId, &model.UpdateRoleRequest{Level: model.LevelFull})
	require.Error(t, err)

	unchanged, err := fx.roleSvc.GetRole(ro.RoleId)
	require.NoError(t, err)
	assert.Equal(t, model.LevelGeneral, unchanged.Level)
	row, err := fx.permRepo.GetRow(ro.RoleId)
	require.NoError(t, err)
	assert.True(t, row[key].Has(model.OperationDelete))

	// 重試同一請求後收斂到新等級的推導行
	require.NoError(t, fx.roleSvc.UpdateRole(ro.RoleId, &model.UpdateRoleRequest{Level: model.LevelFull}))

	updated, err := fx.roleSvc.GetRole(ro.RoleId)
	require.NoError(t, err)
	assert.Equal(t, model.LevelFull, updated.Level)
	row, err = fx.permRepo.GetRow(ro.RoleId)
	require.NoError(t, err)
	assert.Equal(t, []string{"view", "edit", "delete"}, model.SerializeGrants(row[key]))
	assert.Contains(t, fx.permRepo.clearCalls, ro.RoleId)
}

func TestDeleteRoleProtectedAdmin(t *testing.T) {
	fx := newRoleFixture(t)
	require.NoError(t, fx.roleRepo.InitDefaultRoles())
	require.NoError(t, fx.permSvc.Normalize())

	err := fx.roleSvc.DeleteRole(model.RoleAdmin)
	assert.ErrorIs(t, err, ErrRoleProtected)

	// 角色與矩陣行原封不動
	_, err = fx.roleSvc.GetRole(model.RoleAdmin)
	require.NoError(t, err)
	row, err := fx.permRepo.GetRow(model.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, row, 18)
	assert.Empty(t, fx.recorder.events)
}

func TestDeleteRoleCascades(t *testing.T) {
	fx := newRoleFixture(t)
	ro, err := fx.roleSvc.CreateRole(&model.CreateRoleRequest{
		Name:  "臨時乙",
		Level: model.LevelGeneral,
	}, "user_1")
	require.NoError(t, err)

	require.NoError(t, fx.roleSvc.DeleteRole(ro.RoleId))

	_, err = fx.roleSvc.GetRole(ro.RoleId)
	assert.ErrorIs(t, err, ErrRoleNotFound)

	// 矩陣行隨之清空，快取也被清
	row, err := fx.permRepo.GetRow(ro.RoleId)
	require.NoError(t, err)
	assert.Empty(t, row)
	assert.Contains(t, fx.permRepo.clearCalls, ro.RoleId)

	last := fx.recorder.events[len(fx.recorder.events)-1]
	assert.Equal(t, recordedRoleEvent{action: "delete", roleId: ro.RoleId}, last)
}

func TestDeleteRoleMissingIsNoop(t *testing.T) {
	fx := newRoleFixture(t)

	require.NoError(t, fx.roleSvc.DeleteRole("role_missing"))
	assert.Empty(t, fx.recorder.events)
}

func TestInitDefaultRolesSeedsMatrix(t *testing.T) {
	fx := newRoleFixture(t)

	require.NoError(t, fx.roleSvc.InitDefaultRoles())

	roles, err := fx.roleSvc.ListRoles()
	require.NoError(t, err)
	require.Len(t, roles, 4)

	adminRow, err := fx.permRepo.GetRow(model.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, adminRow[model.AdminResourceKey].Has(model.OperationEdit))

	guestRow, err := fx.permRepo.GetRow(model.RoleGuest)
	require.NoError(t, err)
	assert.Empty(t, guestRow[model.AdminResourceKey])
}
