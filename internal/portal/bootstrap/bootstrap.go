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

package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/go-marina/marina/internal/portal/config"
	"github.com/go-marina/marina/internal/portal/constant"
	"github.com/go-marina/marina/internal/portal/model"
	"github.com/go-marina/marina/internal/portal/repo/permission"
	"github.com/go-marina/marina/internal/portal/repo/role"
	"github.com/go-marina/marina/internal/portal/repo/user"
	"github.com/go-marina/marina/internal/portal/router"
	"github.com/go-marina/marina/internal/portal/service"
	"github.com/go-marina/marina/pkg/cache"
	"github.com/go-marina/marina/pkg/ctx"
	"github.com/go-marina/marina/pkg/database"
	"github.com/go-marina/marina/pkg/event"
	"github.com/go-marina/marina/pkg/log"
)

type App struct {
	HttpApp *fiber.App
	AppConf config.AppConfig
	Ctx     *ctx.Context
}

// NewApp 裝配整個應用：配置、日誌、連線、倉儲、服務、路由。
// 啟動時播種內建角色與管理員帳號，並對權限矩陣做一次正規化。
func NewApp(configFile string) (*App, error) {
	appConf := config.NewConf(configFile)
	log.MustInit(&appConf.Log)

	redisClient, err := cache.NewRedis(appConf.Redis)
	if err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}

	db, err := database.NewDatabase(appConf.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := db.Database().AutoMigrate(&model.User{}, &model.Role{}, &model.RolePermission{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	appCtx := ctx.NewContext(context.Background(), redisClient, db.Database(), log.GetLogger())
	cacheIns := cache.NewRedisCache(redisClient)

	roleRepo := role.NewRoleRepo(db)
	permRepo := permission.NewPermissionRepo(db, cacheIns)
	userRepo := user.NewUserRepo(db, cacheIns)

	catalogSvc, err := service.NewCatalogService(model.DefaultNavigationTree)
	if err != nil {
		return nil, fmt.Errorf("build resource catalog: %w", err)
	}
	permSvc := service.NewPermissionService(permRepo, roleRepo, catalogSvc)

	bus := event.NewEventBus()
	roleSvc := service.NewRoleService(roleRepo, permSvc, bus)
	userSvc := service.NewUserService(userRepo, appConf.Http.Auth)
	bus.RegisterHandler(constant.EventRoleChanged, userSvc)

	// 播種內建角色並正規化矩陣，再跑一次不產生變化
	if err := roleSvc.InitDefaultRoles(); err != nil {
		return nil, fmt.Errorf("init default roles: %w", err)
	}
	if err := userSvc.InitDefaultAdmin(appConf.App.InitAdminPassword); err != nil {
		return nil, fmt.Errorf("init default admin: %w", err)
	}

	rt := router.NewRouter(&appConf.Http, appCtx, userSvc, roleSvc, permSvc, catalogSvc)

	return &App{
		HttpApp: rt.Router(),
		AppConf: appConf,
		Ctx:     appCtx,
	}, nil
}

// Run 啟動 HTTP 服務並等待退出信號，收到後優雅關閉。
func Run(app *App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		addr := fmt.Sprintf("%s:%d", app.AppConf.Http.Host, app.AppConf.Http.Port)
		log.Infow("HTTP listener started",
			"address", addr,
		)
		if err := app.HttpApp.Listen(addr); err != nil {
			log.Errorw("HTTP listener failed",
				"address", addr,
				"err", err,
			)
		}
	}()

	sig := <-quit
	log.Infof("Received signal: %v, shutting down gracefully...", sig)

	shutdownTimeout := app.AppConf.Http.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(shutdownTimeout)*time.Second)
	defer cancel()
	if err := app.HttpApp.ShutdownWithContext(shutdownCtx); err != nil {
		log.Errorf("HTTP server shutdown error: %v", err)
	} else {
		log.Info("HTTP server shut down gracefully")
	}

	if app.Ctx != nil && app.Ctx.RedisIns != nil {
		if err := app.Ctx.RedisIns.Close(); err != nil {
			log.Errorf("redis close error: %v", err)
		}
	}

	log.Info("Server shutdown complete")
}
