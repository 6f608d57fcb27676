package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmdatafocus/books_quotation/config"
	"github.com/mmdatafocus/books_quotation/utils"
	"gorm.io/gorm"
)

// Capabilities checked by the quotation routes.
const (
	PermissionCreateSaleInvoice = "createSaleInvoice"
	PermissionViewSaleInvoice   = "viewSaleInvoice"
)

type Role struct {
	ID   int    `gorm:"primary_key" json:"id"`
	Name string `gorm:"size:100;not null;uniqueIndex" json:"name" binding:"required"`
	// semicolon separated capability names
	Permissions string    `gorm:"type:text" json:"permissions"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func extractPermissions(s string) []string {
	var result []string
	for _, p := range strings.Split(s, ";") {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}

func rolePermissionsCacheKey(roleId int) string {
	return "AllowedPermissions:Role:" + fmt.Sprint(roleId)
}

// GetRolePermissions returns the role's capabilities from redis, falling back to the db and caching the result.
func GetRolePermissions(ctx context.Context, db *gorm.DB, roleId int) (map[string]bool, error) {
	var permissions map[string]bool
	exists, err := config.GetRedisObject(rolePermissionsCacheKey(roleId), &permissions)
	if err != nil {
		return nil, err
	}
	if exists {
		return permissions, nil
	}

	role, err := utils.FetchModel[Role](ctx, db, roleId)
	if err != nil {
		return nil, err
	}
	permissions = make(map[string]bool)
	for _, p := range extractPermissions(role.Permissions) {
		permissions[p] = true
	}

	if err := config.SetRedisObject(rolePermissionsCacheKey(roleId), &permissions, utils.GetCacheLifespan()); err != nil {
		return nil, err
	}
	return permissions, nil
}

// UpsertRole creates or updates the role called name and drops its cached permissions.
func UpsertRole(ctx context.Context, db *gorm.DB, name string, permissions ...string) (*Role, error) {
	role, found, err := utils.FetchModelWhere[Role](ctx, db, "name = ?", name)
	if err != nil {
		return nil, err
	}
	joined := strings.Join(utils.UniqueSlice(permissions), ";")
	if !found {
		role = &Role{Name: name, Permissions: joined}
		if err := db.WithContext(ctx).Create(role).Error; err != nil {
			return nil, err
		}
		return role, nil
	}
	if err := db.WithContext(ctx).Model(role).Update("Permissions", joined).Error; err != nil {
		return nil, err
	}
	if err := config.RemoveRedisKey(rolePermissionsCacheKey(role.ID)); err != nil {
		return nil, err
	}
	return role, nil
}
