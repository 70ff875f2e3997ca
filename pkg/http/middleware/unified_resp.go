package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/go-marina/marina/internal/portal/constant"
	httpx "github.com/go-marina/marina/pkg/http"
)

// UnifiedResponseMiddleware 統一回應攔截器
// handler 以 c.Locals(constant.DETAIL, value) 設置回應資料
func UnifiedResponseMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err != nil {
			return err
		}

		// 業務邏輯錯誤
		if c.Response().StatusCode() != fiber.StatusOK {
			return httpx.WithRepErrMsg(c, httpx.Failed.Code, httpx.Failed.Msg, c.Path())
		}

		if c.Response().StatusCode() >= fiber.StatusOK && c.Response().StatusCode() < fiber.StatusMultipleChoices {
			if detail := c.Locals(constant.DETAIL); detail != nil {
				return httpx.WithRepJSON(c, detail)
			}

			// 無回應資料，只回傳結果
			if c.Locals(constant.OPERATION) != nil {
				return httpx.WithRepNotDetail(c)
			}
		}

		return nil
	}
}
