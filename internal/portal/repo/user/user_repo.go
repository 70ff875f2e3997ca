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

package user

import (
	"context"
	"time"

	"github.com/go-marina/marina/internal/portal/constant"
	"github.com/go-marina/marina/internal/portal/model"
	"github.com/go-marina/marina/pkg/cache"
	"github.com/go-marina/marina/pkg/database"
)

type IUserRepository interface {
	GetUserByUsername(username string) (*model.User, error)
	GetUserById(userId string) (*model.User, error)
	CreateUser(u *model.User) error
	CountUsers() (int64, error)
	ListUserIdsByRole(roleId string) ([]string, error)
	SetToken(userId, aToken string, accessExpire time.Duration) (string, error)
	GetToken(userId string) (string, error)
	DelToken(userId string) error
}

type UserRepo struct {
	db    database.IDatabase
	cache cache.ICache
}

func NewUserRepo(db database.IDatabase, cache cache.ICache) IUserRepository {
	return &UserRepo{
		db:    db,
		cache: cache,
	}
}

func (ur *UserRepo) GetUserByUsername(username string) (*model.User, error) {
	var u model.User
	err := ur.db.Database().Where("username = ? AND is_enabled = 1", username).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (ur *UserRepo) GetUserById(userId string) (*model.User, error) {
	var u model.User
	err := ur.db.Database().Where("user_id = ?", userId).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (ur *UserRepo) CreateUser(u *model.User) error {
	return ur.db.Database().Create(u).Error
}

func (ur *UserRepo) CountUsers() (int64, error) {
	var count int64
	err := ur.db.Database().Model(&model.User{}).Count(&count).Error
	return count, err
}

// ListUserIdsByRole 列出持有指定角色的用戶 ID，供角色刪除後清理會話。
func (ur *UserRepo) ListUserIdsByRole(roleId string) ([]string, error) {
	var ids []string
	err := ur.db.Database().Model(&model.User{}).
		Where("role_id = ?", roleId).Pluck("user_id", &ids).Error
	return ids, err
}

// SetToken 將 access token 寫入 Redis 作為會話，過期時間與令牌一致。
func (ur *UserRepo) SetToken(userId, aToken string, accessExpire time.Duration) (string, error) {
	key := constant.UserInfoKey + userId
	if ur.cache == nil {
		return key, nil
	}
	err := ur.cache.Set(context.Background(), key, aToken, accessExpire*time.Minute).Err()
	return key, err
}

func (ur *UserRepo) GetToken(userId string) (string, error) {
	if ur.cache == nil {
		return "", nil
	}
	return ur.cache.Get(context.Background(), constant.UserInfoKey+userId).Result()
}

func (ur *UserRepo) DelToken(userId string) error {
	if ur.cache == nil {
		return nil
	}
	return ur.cache.Del(context.Background(), constant.UserInfoKey+userId).Err()
}
