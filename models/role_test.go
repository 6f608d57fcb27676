package models_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/mmdatafocus/books_quotation/models"
	"github.com/mmdatafocus/books_quotation/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertRole_InvalidatesCachedPermissions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mr := testutil.SetupTestRedis(t)
	ctx := context.Background()

	role := testutil.SeedRole(t, db, "Viewer", models.PermissionViewSaleInvoice)
	cacheKey := fmt.Sprintf("AllowedPermissions:Role:%d", role.ID)

	permissions, err := models.GetRolePermissions(ctx, db, role.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{models.PermissionViewSaleInvoice: true}, permissions)
	assert.True(t, mr.Exists(cacheKey))

	// served from redis while the cached entry lives
	require.NoError(t, db.Model(&models.Role{}).Where("id = ?", role.ID).Update("permissions", "").Error)
	permissions, err = models.GetRolePermissions(ctx, db, role.ID)
	require.NoError(t, err)
	assert.True(t, permissions[models.PermissionViewSaleInvoice])

	_, err = models.UpsertRole(ctx, db, "Viewer", models.PermissionViewSaleInvoice, models.PermissionCreateSaleInvoice)
	require.NoError(t, err)
	assert.False(t, mr.Exists(cacheKey))

	permissions, err = models.GetRolePermissions(ctx, db, role.ID)
	require.NoError(t, err)
	assert.True(t, permissions[models.PermissionCreateSaleInvoice])
	assert.True(t, permissions[models.PermissionViewSaleInvoice])
}
