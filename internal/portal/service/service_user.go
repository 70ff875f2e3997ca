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
	"encoding/base64"
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/go-marina/marina/internal/portal/constant"
	"github.com/go-marina/marina/internal/portal/model"
	"github.com/go-marina/marina/internal/portal/repo/user"
	"github.com/go-marina/marina/pkg/event"
	"github.com/go-marina/marina/pkg/http"
	"github.com/go-marina/marina/pkg/http/jwt"
	"github.com/go-marina/marina/pkg/id"
	"github.com/go-marina/marina/pkg/log"
)

var (
	// ErrUserNotFound 用戶不存在或已停用
	ErrUserNotFound = errors.New("user not found")
	// ErrIncorrectPassword 密碼錯誤
	ErrIncorrectPassword = errors.New("incorrect password")
)

// UserService 帳號與會話。登入後的 access token 寫入 Redis，
// 中間件據此判定會話有效性。
type UserService struct {
	userRepo user.IUserRepository
	auth     http.Auth
}

func NewUserService(userRepo user.IUserRepository, auth http.Auth) *UserService {
	return &UserService{
		userRepo: userRepo,
		auth:     auth,
	}
}

// Login 校驗密碼並簽發令牌對。請求內密碼為 base64 編碼。
func (us *UserService) Login(login *model.Login) (*model.LoginResp, error) {
	u, err := us.userRepo.GetUserByUsername(login.Username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	raw, err := base64.StdEncoding.DecodeString(login.Password)
	if err != nil {
		return nil, ErrIncorrectPassword
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), raw) != nil {
		return nil, ErrIncorrectPassword
	}
	aToken, rToken, err := jwt.GenToken(u.UserId, u.RoleId, []byte(us.auth.SecretKey),
		us.auth.AccessExpire, us.auth.RefreshExpire)
	if err != nil {
		return nil, err
	}
	if _, err := us.userRepo.SetToken(u.UserId, aToken, us.auth.AccessExpire); err != nil {
		return nil, err
	}
	return &model.LoginResp{
		UserInfo: u.ToUserInfo(),
		Token: map[string]string{
			"accessToken":  aToken,
			"refreshToken": rToken,
		},
	}, nil
}

// Logout 清除會話。
func (us *UserService) Logout(userId string) error {
	return us.userRepo.DelToken(userId)
}

// Refresh 以 refresh token 換發新的 access token 並刷新會話。
func (us *UserService) Refresh(userId, roleId, rToken string) (string, error) {
	aToken, err := jwt.RefreshToken(us.auth.SecretKey, userId, roleId, rToken, us.auth.AccessExpire)
	if err != nil {
		return "", err
	}
	if _, err := us.userRepo.SetToken(userId, aToken, us.auth.AccessExpire); err != nil {
		return "", err
	}
	return aToken, nil
}

// GetUserInfo 按 ID 取用戶資訊。
func (us *UserService) GetUserInfo(userId string) (*model.UserInfo, error) {
	u, err := us.userRepo.GetUserById(userId)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	info := u.ToUserInfo()
	return &info, nil
}

// InitDefaultAdmin 首次啟動播種管理員帳號。已有任何用戶時跳過。
func (us *UserService) InitDefaultAdmin(password string) error {
	count, err := us.userRepo.CountUsers()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := &model.User{
		UserId:    id.GetUUIDWithoutDashes(),
		Username:  "admin",
		Password:  string(hashed),
		Nickname:  "系統管理員",
		RoleId:    model.RoleAdmin,
		IsEnabled: 1,
	}
	log.Infof("seeding default admin user, userId: %s", admin.UserId)
	return us.userRepo.CreateUser(admin)
}

// Handle 角色刪除後吊銷持該角色用戶的會話，令其重新登入取得新授權。
func (us *UserService) Handle(ev event.Event) {
	if ev.EventName() != constant.EventRoleChanged || ev.EventType() != "delete" {
		return
	}
	rc, ok := ev.(*RoleChangedEvent)
	if !ok {
		return
	}
	userIds, err := us.userRepo.ListUserIdsByRole(rc.RoleId)
	if err != nil {
		log.Warnf("list users by role failed, roleId: %s, err: %v", rc.RoleId, err)
		return
	}
	for _, uid := range userIds {
		if err := us.userRepo.DelToken(uid); err != nil {
			log.Warnf("revoke session failed, userId: %s, err: %v", uid, err)
		}
	}
}
