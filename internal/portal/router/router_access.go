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
	"github.com/gofiber/fiber/v2"

	"github.com/go-marina/marina/internal/portal/constant"
	"github.com/go-marina/marina/internal/portal/model"
	"github.com/go-marina/marina/pkg/http/jwt"
)

func (rt *Router) accessRouter(r fiber.Router, auth fiber.Handler) {
	accessGroup := r.Group("/access")
	{
		accessGroup.Get("/can", auth, rt.accessCan)
		accessGroup.Get("/row", auth, rt.accessRow)
	}
}

// accessCan 查詢當前用戶對某資源是否具備某操作。查詢失敗即拒絕。
func (rt *Router) accessCan(c *fiber.Ctx) error {
	claims := c.Locals(constant.CLAIMS).(*jwt.AuthClaims)
	key := c.Query("resourceKey")
	op := c.Query("operation")
	allowed := rt.PermSvc.Can(c.Context(), claims.RoleId, key, op)
	c.Locals(constant.DETAIL, fiber.Map{"allowed": allowed})
	return nil
}

// accessRow 返回當前用戶角色的整行授權，前端據此決定選單與按鈕的可見性。
func (rt *Router) accessRow(c *fiber.Ctx) error {
	claims := c.Locals(constant.CLAIMS).(*jwt.AuthClaims)
	row := rt.PermSvc.RowFor(claims.RoleId)
	out := make(map[string][]string, len(row))
	for key, grants := range row {
		out[key] = model.SerializeGrants(grants)
	}
	c.Locals(constant.DETAIL, out)
	return nil
}
