package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/go-marina/marina/internal/portal/constant"
	"github.com/go-marina/marina/pkg/http"
	"github.com/go-marina/marina/pkg/http/jwt"
)

// AccessChecker 權限查詢門面的最小介面。
type AccessChecker interface {
	Can(ctx context.Context, roleId, resourceKey, operation string) bool
}

// RequireResource 統一權限閘道：要求當前用戶的角色在指定資源上擁有指定操作。
// 管理功能本身也是目錄中的一項資源，閘道即透過權限門面自托管。
// 未認證、角色未知、資源未知一律拒絕（fail-closed）。
func RequireResource(checker AccessChecker, resourceKey, operation string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals(constant.CLAIMS).(*jwt.AuthClaims)
		if !ok || claims == nil {
			return http.WithRepErrMsg(c, http.Unauthorized.Code, http.Unauthorized.Msg, c.Path())
		}

		if !checker.Can(c.Context(), claims.RoleId, resourceKey, operation) {
			return http.WithRepErrMsg(c, http.PermissionDenied.Code, http.PermissionDenied.Msg, c.Path())
		}

		return c.Next()
	}
}
