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
	"github.com/go-marina/marina/pkg/http/jwt"
	"github.com/go-marina/marina/pkg/http/middleware"
)

func (rt *Router) roleRouter(r fiber.Router, auth fiber.Handler) {
	// 角色管理頁本身是目錄中的一項資源，讀寫各自鑑權
	canView := middleware.RequireResource(rt.PermSvc, model.AdminResourceKey, "view")
	canEdit := middleware.RequireResource(rt.PermSvc, model.AdminResourceKey, "edit")

	roleGroup := r.Group("/roles")
	{
		roleGroup.Get("/", auth, canView, rt.listRoles)
		roleGroup.Post("/", auth, canEdit, rt.createRole)
		roleGroup.Get("/:roleId", auth, canView, rt.getRole)
		roleGroup.Put("/:roleId", auth, canEdit, rt.updateRole)
		roleGroup.Delete("/:roleId", auth, canEdit, rt.deleteRole)
	}
}

func (rt *Router) listRoles(c *fiber.Ctx) error {
	roles, err := rt.RoleSvc.ListRoles()
	if err != nil {
		return http.WithRepErrMsg(c, http.Failed.Code, err.Error(), c.Path())
	}
	c.Locals(constant.DETAIL, roles)
	return nil
}

func (rt *Router) getRole(c *fiber.Ctx) error {
	ro, err := rt.RoleSvc.GetRole(c.Params("roleId"))
	if errors.Is(err, service.ErrRoleNotFound) {
		return http.WithRepErrMsg(c, http.RoleNotExist.Code, http.RoleNotExist.Msg, c.Path())
	}
	if err != nil {
		return http.WithRepErrMsg(c, http.Failed.Code, err.Error(), c.Path())
	}
	c.Locals(constant.DETAIL, ro.ToResponse())
	return nil
}

func (rt *Router) createRole(c *fiber.Ctx) error {
	var req model.CreateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return http.WithRepErrMsg(c, http.BadRequest.Code, http.BadRequest.Msg, c.Path())
	}
	if req.Name == "" {
		return http.WithRepErrMsg(c, http.BadRequest.Code, "role name is required", c.Path())
	}

	claims := c.Locals(constant.CLAIMS).(*jwt.AuthClaims)
	ro, err := rt.RoleSvc.CreateRole(&req, claims.UserId)
	if err != nil {
		return http.WithRepErrMsg(c, http.Failed.Code, err.Error(), c.Path())
	}
	c.Locals(constant.DETAIL, ro.ToResponse())
	return nil
}

func (rt *Router) updateRole(c *fiber.Ctx) error {
	var req model.UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return http.WithRepErrMsg(c, http.BadRequest.Code, http.BadRequest.Msg, c.Path())
	}
	if err := rt.RoleSvc.UpdateRole(c.Params("roleId"), &req); err != nil {
		return http.WithRepErrMsg(c, http.Failed.Code, err.Error(), c.Path())
	}
	c.Locals(constant.OPERATION, "updateRole")
	return nil
}

func (rt *Router) deleteRole(c *fiber.Ctx) error {
	err := rt.RoleSvc.DeleteRole(c.Params("roleId"))
	if errors.Is(err, service.ErrRoleProtected) {
		return http.WithRepErrMsg(c, http.RoleProtected.Code, http.RoleProtected.Msg, c.Path())
	}
	if err != nil {
		return http.WithRepErrMsg(c, http.Failed.Code, err.Error(), c.Path())
	}
	c.Locals(constant.OPERATION, "deleteRole")
	return nil
}
