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
)

func (rt *Router) navigationRouter(r fiber.Router, auth fiber.Handler) {
	navGroup := r.Group("/navigation")
	{
		navGroup.Get("/tree", auth, rt.navigationTree)
		navGroup.Get("/resources", auth, rt.navigationResources)
	}
}

// navigationTree 返回導覽樹原始分組結構，前端據此渲染側欄。
func (rt *Router) navigationTree(c *fiber.Ctx) error {
	c.Locals(constant.DETAIL, rt.CatalogSvc.Tree())
	return nil
}

// navigationResources 返回扁平資源目錄，順序即矩陣行順序。
func (rt *Router) navigationResources(c *fiber.Ctx) error {
	c.Locals(constant.DETAIL, rt.CatalogSvc.Resources())
	return nil
}
