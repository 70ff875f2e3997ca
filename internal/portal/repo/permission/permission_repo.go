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

package permission

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/go-marina/marina/internal/portal/constant"
	"github.com/go-marina/marina/internal/portal/model"
	"github.com/go-marina/marina/pkg/cache"
	"github.com/go-marina/marina/pkg/database"
	"github.com/go-marina/marina/pkg/log"
)

const rowCacheTTL = 10 * time.Minute

type IPermissionRepository interface {
	GetRow(roleId string) (model.PermissionRow, error)
	GetMatrix() (model.PermissionMatrix, error)
	SaveRow(roleId string, row model.PermissionRow) error
	SaveMatrix(matrix model.PermissionMatrix) error
	SetGrants(roleId, resourceKey string, grants model.GrantSet) error
	DeleteByRole(roleId string) error
	ClearRowCache(roleId string) error
}

type PermissionRepo struct {
	db    database.IDatabase
	cache cache.ICache
}

func NewPermissionRepo(db database.IDatabase, cache cache.ICache) IPermissionRepository {
	return &PermissionRepo{
		db:    db,
		cache: cache,
	}
}

// GetRow 讀取單一角色的矩陣行。角色無任何格子時返回空行（非 nil）。
func (r *PermissionRepo) GetRow(roleId string) (model.PermissionRow, error) {
	ctx := context.Background()

	// 先查 Redis 行快取
	if r.cache != nil {
		cached, err := r.cache.Get(ctx, constant.PermRowKey+roleId).Result()
		if err == nil && cached != "" {
			var raw map[string][]string
			unmarshalErr := json.Unmarshal([]byte(cached), &raw)
			if unmarshalErr == nil {
				row := make(model.PermissionRow, len(raw))
				for key, tokens := range raw {
					row[key] = model.HydrateGrants(tokens)
				}
				return row, nil
			}
			// 快取內容損壞時降級回源，不報錯
			log.Errorw("failed to unmarshal permission row from cache", "roleId", roleId, "error", unmarshalErr)
		}
	}

	var cells []model.RolePermission
	if err := r.db.Database().Where("role_id = ?", roleId).Find(&cells).Error; err != nil {
		return nil, err
	}

	row := make(model.PermissionRow, len(cells))
	for _, cell := range cells {
		row[cell.ResourceKey] = hydrateCell(cell.Operations)
	}

	r.cacheRow(ctx, roleId, row)
	return row, nil
}

// GetMatrix 讀取整個權限矩陣。
func (r *PermissionRepo) GetMatrix() (model.PermissionMatrix, error) {
	var cells []model.RolePermission
	if err := r.db.Database().Find(&cells).Error; err != nil {
		return nil, err
	}

	matrix := make(model.PermissionMatrix)
	for _, cell := range cells {
		row, ok := matrix[cell.RoleId]
		if !ok {
			row = make(model.PermissionRow)
			matrix[cell.RoleId] = row
		}
		row[cell.ResourceKey] = hydrateCell(cell.Operations)
	}
	return matrix, nil
}

// SaveRow 整行覆寫：刪除該角色現有格子後重建，單一交易內完成。
func (r *PermissionRepo) SaveRow(roleId string, row model.PermissionRow) error {
	err := r.db.Database().Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", roleId).Delete(&model.RolePermission{}).Error; err != nil {
			return err
		}
		return insertRow(tx, roleId, row)
	})
	if err != nil {
		return err
	}
	return r.ClearRowCache(roleId)
}

// SaveMatrix 全矩陣覆寫，單一交易內完成。
// 被覆寫前存在、覆寫後消失的角色，其行快取也一併清除。
func (r *PermissionRepo) SaveMatrix(matrix model.PermissionMatrix) error {
	var existing []string
	if err := r.db.Database().Model(&model.RolePermission{}).Distinct("role_id").Pluck("role_id", &existing).Error; err != nil {
		return err
	}
	err := r.db.Database().Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.RolePermission{}).Error; err != nil {
			return err
		}
		for roleId, row := range matrix {
			if err := insertRow(tx, roleId, row); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, roleId := range unionRoleIds(existing, matrix) {
		if err := r.ClearRowCache(roleId); err != nil {
			return err
		}
	}
	return nil
}

// SetGrants 單格點寫（upsert）。
func (r *PermissionRepo) SetGrants(roleId, resourceKey string, grants model.GrantSet) error {
	payload, err := json.Marshal(model.SerializeGrants(grants))
	if err != nil {
		return err
	}
	cell := model.RolePermission{
		RoleId:      roleId,
		ResourceKey: resourceKey,
		Operations:  datatypes.JSON(payload),
	}
	err = r.db.Database().Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "role_id"}, {Name: "resource_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"operations"}),
	}).Create(&cell).Error
	if err != nil {
		return err
	}
	return r.ClearRowCache(roleId)
}

// DeleteByRole 刪除角色的所有格子。
func (r *PermissionRepo) DeleteByRole(roleId string) error {
	if err := r.db.Database().Where("role_id = ?", roleId).Delete(&model.RolePermission{}).Error; err != nil {
		return err
	}
	return r.ClearRowCache(roleId)
}

// ClearRowCache 清除角色的行快取。
func (r *PermissionRepo) ClearRowCache(roleId string) error {
	if r.cache == nil {
		return nil
	}
	return r.cache.Del(context.Background(), constant.PermRowKey+roleId).Err()
}

func (r *PermissionRepo) cacheRow(ctx context.Context, roleId string, row model.PermissionRow) {
	if r.cache == nil {
		return
	}
	raw := make(map[string][]string, len(row))
	for key, grants := range row {
		raw[key] = model.SerializeGrants(grants)
	}
	payload, err := json.Marshal(raw)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, constant.PermRowKey+roleId, string(payload), rowCacheTTL).Err(); err != nil {
		log.Errorw("failed to cache permission row", "roleId", roleId, "error", err)
	}
}

// unionRoleIds 合併覆寫前後出現過的角色 ID，去重。
func unionRoleIds(existing []string, matrix model.PermissionMatrix) []string {
	seen := make(map[string]struct{}, len(existing)+len(matrix))
	ids := make([]string, 0, len(existing)+len(matrix))
	for _, roleId := range existing {
		if _, ok := seen[roleId]; ok {
			continue
		}
		seen[roleId] = struct{}{}
		ids = append(ids, roleId)
	}
	for roleId := range matrix {
		if _, ok := seen[roleId]; ok {
			continue
		}
		seen[roleId] = struct{}{}
		ids = append(ids, roleId)
	}
	return ids
}

func insertRow(tx *gorm.DB, roleId string, row model.PermissionRow) error {
	for resourceKey, grants := range row {
		payload, err := json.Marshal(model.SerializeGrants(grants))
		if err != nil {
			return err
		}
		cell := model.RolePermission{
			RoleId:      roleId,
			ResourceKey: resourceKey,
			Operations:  datatypes.JSON(payload),
		}
		if err := tx.Create(&cell).Error; err != nil {
			return err
		}
	}
	return nil
}

// hydrateCell 防禦式還原單格：損壞的 JSON、非陣列值、未知 token 一律得到空集合。
func hydrateCell(raw datatypes.JSON) model.GrantSet {
	var tokens []string
	if err := json.Unmarshal(raw, &tokens); err != nil {
		return model.NewGrantSet()
	}
	return model.HydrateGrants(tokens)
}
