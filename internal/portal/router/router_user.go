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
)

func (rt *Router) userRouter(r fiber.Router, auth fiber.Handler) {
	userGroup := r.Group("/user")
	{
		userGroup.Post("/login", rt.login)
		userGroup.Post("/logout", auth, rt.logout)
		userGroup.Get("/refresh", auth, rt.refresh)
		userGroup.Get("/getUserInfo", auth, rt.getUserInfo)
	}
}

func (rt *Router) login(c *fiber.Ctx) error {
	var login model.Login
	if err := c.BodyParser(&login); err != nil {
		return http.WithRepErrMsg(c, http.BadRequest.Code, http.BadRequest.Msg, c.Path())
	}
	if login.Username == "" || login.Password == "" {
		return http.WithRepErrMsg(c, http.UsernameArePasswordIsRequired.Code,
			http.UsernameArePasswordIsRequired.Msg, c.Path())
	}

	resp, err := rt.UserSvc.Login(&login)
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		return http.WithRepErrMsg(c, http.UserNotExist.Code, http.UserNotExist.Msg, c.Path())
	case errors.Is(err, service.ErrIncorrectPassword):
		return http.WithRepErrMsg(c, http.UserIncorrectPassword.Code, http.UserIncorrectPassword.Msg, c.Path())
	case err != nil:
		return http.WithRepErrMsg(c, http.Failed.Code, err.Error(), c.Path())
	}

	c.Locals(constant.DETAIL, resp)
	return nil
}

func (rt *Router) logout(c *fiber.Ctx) error {
	claims := c.Locals(constant.CLAIMS).(*jwt.AuthClaims)
	if err := rt.UserSvc.Logout(claims.UserId); err != nil {
		return http.WithRepErrMsg(c, http.Failed.Code, err.Error(), c.Path())
	}
	c.Locals(constant.OPERATION, "logout")
	return nil
}

func (rt *Router) refresh(c *fiber.Ctx) error {
	claims := c.Locals(constant.CLAIMS).(*jwt.AuthClaims)
	rToken := c.Get("X-Refresh-Token")
	if rToken == "" {
		return http.WithRepErrMsg(c, http.TokenBeEmpty.Code, http.TokenBeEmpty.Msg, c.Path())
	}
	aToken, err := rt.UserSvc.Refresh(claims.UserId, claims.RoleId, rToken)
	if err != nil {
		return http.WithRepErrMsg(c, http.InvalidToken.Code, http.InvalidToken.Msg, c.Path())
	}
	c.Locals(constant.DETAIL, fiber.Map{"accessToken": aToken})
	return nil
}

func (rt *Router) getUserInfo(c *fiber.Ctx) error {
	claims := c.Locals(constant.CLAIMS).(*jwt.AuthClaims)
	info, err := rt.UserSvc.GetUserInfo(claims.UserId)
	if errors.Is(err, service.ErrUserNotFound) {
		return http.WithRepErrMsg(c, http.UserNotExist.Code, http.UserNotExist.Msg, c.Path())
	}
	if err != nil {
		return http.WithRepErrMsg(c, http.Failed.Code, err.Error(), c.Path())
	}
	c.Locals(constant.DETAIL, info)
	return nil
}
