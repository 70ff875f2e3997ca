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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/go-marina/marina/internal/portal/model"
	"github.com/go-marina/marina/pkg/http"
	"github.com/go-marina/marina/pkg/http/jwt"
)

// fakeUserRepo 測試用記憶體用戶倉儲，tokens 模擬 Redis 會話。
type fakeUserRepo struct {
	users  map[string]*model.User // userId -> user
	tokens map[string]string      // userId -> access token
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:  make(map[string]*model.User),
		tokens: make(map[string]string),
	}
}

func (f *fakeUserRepo) GetUserByUsername(username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username && u.IsEnabled == 1 {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetUserById(userId string) (*model.User, error) {
	u, ok := f.users[userId]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) CreateUser(u *model.User) error {
	f.users[u.UserId] = u
	return nil
}

func (f *fakeUserRepo) CountUsers() (int64, error) {
	return int64(len(f.users)), nil
}

func (f *fakeUserRepo) ListUserIdsByRole(roleId string) ([]string, error) {
	var ids []string
	for _, u := range f.users {
		if u.RoleId == roleId {
			ids = append(ids, u.UserId)
		}
	}
	return ids, nil
}

func (f *fakeUserRepo) SetToken(userId, aToken string, _ time.Duration) (string, error) {
	f.tokens[userId] = aToken
	return userId, nil
}

func (f *fakeUserRepo) GetToken(userId string) (string, error) {
	return f.tokens[userId], nil
}

func (f *fakeUserRepo) DelToken(userId string) error {
	delete(f.tokens, userId)
	return nil
}

func testAuth() http.Auth {
	return http.Auth{
		SecretKey:     "unit-test-secret",
		AccessExpire:  60,
		RefreshExpire: 1440,
	}
}

func seedUser(t *testing.T, repo *fakeUserRepo, userId, username, password, roleId string) {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, repo.CreateUser(&model.User{
		UserId:    userId,
		Username:  username,
		Password:  string(hashed),
		RoleId:    roleId,
		IsEnabled: 1,
	}))
}

func TestLoginSuccess(t *testing.T) {
	repo := newFakeUserRepo()
	seedUser(t, repo, "u1", "harbor", "s3cret", model.RoleEngineer)
	us := NewUserService(repo, testAuth())

	resp, err := us.Login(&model.Login{
		Username: "harbor",
		Password: base64.StdEncoding.EncodeToString([]byte("s3cret")),
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", resp.UserInfo.UserId)
	assert.Equal(t, model.RoleEngineer, resp.UserInfo.RoleId)
	assert.NotEmpty(t, resp.Token["accessToken"])
	assert.NotEmpty(t, resp.Token["refreshToken"])

	// 會話已寫入，令牌中帶 roleId
	stored, err := repo.GetToken("u1")
	require.NoError(t, err)
	claims, err := jwt.ParseToken(stored, "unit-test-secret")
	require.NoError(t, err)
	assert.Equal(t, model.RoleEngineer, claims.RoleId)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newFakeUserRepo()
	seedUser(t, repo, "u1", "harbor", "s3cret", model.RoleMember)
	us := NewUserService(repo, testAuth())

	_, err := us.Login(&model.Login{
		Username: "harbor",
		Password: base64.StdEncoding.EncodeToString([]byte("wrong")),
	})
	assert.ErrorIs(t, err, ErrIncorrectPassword)

	// 非 base64 的密碼同樣拒絕
	_, err = us.Login(&model.Login{Username: "harbor", Password: "%%%"})
	assert.ErrorIs(t, err, ErrIncorrectPassword)
}

func TestLoginUnknownUser(t *testing.T) {
	us := NewUserService(newFakeUserRepo(), testAuth())

	_, err := us.Login(&model.Login{
		Username: "nobody",
		Password: base64.StdEncoding.EncodeToString([]byte("x")),
	})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLogoutRevokesSession(t *testing.T) {
	repo := newFakeUserRepo()
	seedUser(t, repo, "u1", "harbor", "s3cret", model.RoleMember)
	us := NewUserService(repo, testAuth())

	_, err := us.Login(&model.Login{
		Username: "harbor",
		Password: base64.StdEncoding.EncodeToString([]byte("s3cret")),
	})
	require.NoError(t, err)

	require.NoError(t, us.Logout("u1"))
	stored, err := repo.GetToken("u1")
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestInitDefaultAdmin(t *testing.T) {
	repo := newFakeUserRepo()
	us := NewUserService(repo, testAuth())

	require.NoError(t, us.InitDefaultAdmin("marina@2025"))
	require.Len(t, repo.users, 1)

	admin, err := repo.GetUserByUsername("admin")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, admin.RoleId)

	// 已有用戶時不再播種
	require.NoError(t, us.InitDefaultAdmin("other"))
	assert.Len(t, repo.users, 1)
}

func TestRoleDeleteRevokesMemberSessions(t *testing.T) {
	repo := newFakeUserRepo()
	seedUser(t, repo, "u1", "alpha", "pw", "role_x")
	seedUser(t, repo, "u2", "beta", "pw", "role_x")
	seedUser(t, repo, "u3", "gamma", "pw", "role_y")
	repo.tokens["u1"] = "t1"
	repo.tokens["u2"] = "t2"
	repo.tokens["u3"] = "t3"

	us := NewUserService(repo, testAuth())
	us.Handle(&RoleChangedEvent{Action: "delete", RoleId: "role_x"})

	assert.NotContains(t, repo.tokens, "u1")
	assert.NotContains(t, repo.tokens, "u2")
	assert.Contains(t, repo.tokens, "u3")

	// 非刪除動作不吊銷
	us.Handle(&RoleChangedEvent{Action: "update", RoleId: "role_y"})
	assert.Contains(t, repo.tokens, "u3")
}
