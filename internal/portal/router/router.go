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
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/go-marina/marina/internal/portal/service"
	"github.com/go-marina/marina/pkg/ctx"
	httpx "github.com/go-marina/marina/pkg/http"
	"github.com/go-marina/marina/pkg/http/middleware"
	"github.com/go-marina/marina/pkg/version"
)

type Router struct {
	Http       *httpx.Http
	Ctx        *ctx.Context
	UserSvc    *service.UserService
	RoleSvc    *service.RoleService
	PermSvc    *service.PermissionService
	CatalogSvc *service.CatalogService
}

func NewRouter(httpConf *httpx.Http, appCtx *ctx.Context,
	userSvc *service.UserService, roleSvc *service.RoleService,
	permSvc *service.PermissionService, catalogSvc *service.CatalogService) *Router {
	return &Router{
		Http:       httpConf,
		Ctx:        appCtx,
		UserSvc:    userSvc,
		RoleSvc:    roleSvc,
		PermSvc:    permSvc,
		CatalogSvc: catalogSvc,
	}
}

func (rt *Router) Router() *fiber.App {
	bodyLimit := rt.Http.BodyLimit
	if bodyLimit <= 0 {
		bodyLimit = 10 * 1024 * 1024
	}

	app := fiber.New(fiber.Config{
		AppName:      "Marina Portal",
		ReadTimeout:  time.Duration(rt.Http.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(rt.Http.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(rt.Http.IdleTimeout) * time.Second,
		BodyLimit:    bodyLimit,
	})

	// 中間件
	app.Use(
		fiberrecover.New(),
		cors.New(),
		middleware.UnifiedResponseMiddleware(),
	)

	if rt.Http.AccessLog {
		app.Use(middleware.AccessLogMiddleware(rt.Http))
	}

	if rt.Http.PProf {
		app.Use(pprof.New())
	}

	if rt.Http.ExposeMetrics {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}

	// 健康檢查
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	// 版本資訊
	app.Get("/version", func(c *fiber.Ctx) error {
		return c.JSON(version.GetVersion())
	})

	auth := middleware.AuthorizationMiddleware(rt.Http.Auth.SecretKey, rt.Ctx.GetRedis())

	api := app.Group(rt.Http.ContextPath)
	{
		rt.userRouter(api, auth)
		rt.navigationRouter(api, auth)
		rt.roleRouter(api, auth)
		rt.permissionRouter(api, auth)
		rt.accessRouter(api, auth)
	}

	// 找不到路徑時的處理，必須在所有路由註冊之後
	app.Use(func(c *fiber.Ctx) error {
		return httpx.WithRepErrMsg(c, httpx.NotFound.Code, "request path not found", c.Path())
	})

	return app
}
