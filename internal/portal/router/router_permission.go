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

package router

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/go-marina/marina/internal/portal/constant"
	"github.com/go-marina/marina/internal/portal/model"
	"github.com/go-marina/marina/internal/portal/service"
	"github.com/go-marina/marina/pkg/http"
	"github.com/go-marina/marina/pkg/http/middleware"
)

// updateCellRequest 覆寫單一格子
type updateCellRequest struct {
	ResourceKey string   `json:"resourceKey"`
	Operations  []string `json:"operations"`
}

// toggleCellRequest 翻轉格子內單一操作
type toggleCellRequest struct {
	ResourceKey string `json:"resourceKey"`
	Operation   string `json:"operation"`
}

func (rt *Router) permissionRouter(r fiber.Router, auth fiber.Handler) {
	canView := middleware.RequireResource(rt.PermSvc, model.AdminResourceKey, "view")
	canEdit := middleware.RequireResource(rt.PermSvc, model.AdminResourceKey, "edit")

	permGroup := r.Group("/permissions")
	{
		permGroup.Get("/:roleId", auth, canView, rt.getPermissionRow)
		permGroup.Put("/:roleId", auth, canEdit, rt.savePermissionRow)
		permGroup.Put("/:roleId/cell", auth, canEdit, rt.updatePermissionCell)
		permGroup.Put("/:roleId/toggle", auth, canEdit, rt.togglePermissionCell)
	}
}

// getPermissionRow 返回角色整行，格子以排序後的操作名陣列表示。
// 角色未知亦返回全空行，前端據此渲染唯讀矩陣。
func (rt *Router) getPermissionRow(c *fiber.Ctx) error {
	row := rt.PermSvc.RowFor(c.Params("roleId"))
	out := make(map[string][]string, len(row))
	for key, grants := range row {
		out[key] = model.SerializeGrants(grants)
	}
	c.Locals(constant.DETAIL, out)
	return nil
}

func (rt *Router) savePermissionRow(c *fiber.Ctx) error {
	var raw map[string][]string
	if err := c.BodyParser(&raw); err != nil {
		return http.WithRepErrMsg(c, http.BadRequest.Code, http.BadRequest.Msg, c.Path())
	}
	row := make(model.PermissionRow, len(raw))
	for key, tokens := range raw {
		row[key] = model.HydrateGrants(tokens)
	}
	err := rt.PermSvc.SaveRow(c.Params("roleId"), row)
	if errors.Is(err, service.ErrRoleNotFound) {
		return http.WithRepErrMsg(c, http.RoleNotExist.Code, http.RoleNotExist.Msg, c.Path())
	}
	if err != nil {
		return http.WithRepErrMsg(c, http.Failed.Code, err.Error(), c.Path())
	}
	c.Locals(constant.OPERATION, "savePermissionRow")
	return nil
}

func (rt *Router) updatePermissionCell(c *fiber.Ctx) error {
	var req updateCellRequest
	if err := c.BodyParser(&req); err != nil {
		return http.WithRepErrMsg(c, http.BadRequest.Code, http.BadRequest.Msg, c.Path())
	}
	err := rt.PermSvc.SetGrants(c.Params("roleId"), req.ResourceKey, model.HydrateGrants(req.Operations))
	if errors.Is(err, service.ErrRoleNotFound) {
		return http.WithRepErrMsg(c, http.RoleNotExist.Code, http.RoleNotExist.Msg, c.Path())
	}
	if err != nil {
		return http.WithRepErrMsg(c, http.Failed.Code, err.Error(), c.Path())
	}
	c.Locals(constant.OPERATION, "updatePermissionCell")
	return nil
}

func (rt *Router) togglePermissionCell(c *fiber.Ctx) error {
	var req toggleCellRequest
	if err := c.BodyParser(&req); err != nil {
		return http.WithRepErrMsg(c, http.BadRequest.Code, http.BadRequest.Msg, c.Path())
	}
	has, err := rt.PermSvc.ToggleGrant(c.Params("roleId"), req.ResourceKey, model.Operation(req.Operation))
	if errors.Is(err, service.ErrRoleNotFound) {
		return http.WithRepErrMsg(c, http.RoleNotExist.Code, http.RoleNotExist.Msg, c.Path())
	}
	if err != nil {
		return http.WithRepErrMsg(c, http.Failed.Code, err.Error(), c.Path())
	}
	c.Locals(constant.DETAIL, fiber.Map{"granted": has})
	return nil
}
