// seed-admin migrates the schema, seeds the system ledger accounts and creates or updates
// an admin user whose role holds every quotation capability, then prints a bearer token for it.
//
// Usage:
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... ADMIN_PASSWORD=... go run ./cmd/seed-admin
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mmdatafocus/books_quotation/config"
	"github.com/mmdatafocus/books_quotation/models"
	"github.com/mmdatafocus/books_quotation/utils"
)

const (
	adminUsername = "quotationAdmin"
	adminName     = "Quotation Admin"
	adminRoleName = "Admin"
)

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func main() {
	ctx := context.Background()
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		fail("ADMIN_PASSWORD is required")
	}

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()

	if err := models.MigrateTable(); err != nil {
		fail("failed to migrate: %v", err)
	}
	if err := models.SeedSystemData(ctx); err != nil {
		fail("failed to seed system accounts: %v", err)
	}

	role, err := models.UpsertRole(ctx, db, adminRoleName, models.PermissionCreateSaleInvoice, models.PermissionViewSaleInvoice)
	if err != nil {
		fail("failed to upsert role: %v", err)
	}

	existing, found, err := utils.FetchModelWhere[models.User](ctx, db, "username = ?", adminUsername)
	if err != nil {
		fail("failed to lookup user: %v", err)
	}
	if !found {
		if _, err := models.CreateUser(ctx, db, &models.NewUser{
			Username: adminUsername,
			Name:     adminName,
			Password: password,
			RoleId:   role.ID,
		}); err != nil {
			fail("failed to create admin user: %v", err)
		}
		fmt.Printf("Created admin user: username=%q role=%q\n", adminUsername, adminRoleName)
	} else {
		hashed, err := utils.HashPassword(password)
		if err != nil {
			fail("failed to hash password: %v", err)
		}
		if err := db.WithContext(ctx).Model(existing).Updates(map[string]any{
			"password":  string(hashed),
			"name":      adminName,
			"is_active": true,
			"role_id":   role.ID,
		}).Error; err != nil {
			fail("failed to update admin user: %v", err)
		}
		_ = config.RemoveRedisKey(fmt.Sprintf("User:%d", existing.ID))
		fmt.Printf("Updated admin user: username=%q role=%q\n", adminUsername, adminRoleName)
	}

	info, err := models.Login(ctx, adminUsername, password)
	if err != nil {
		fail("failed to issue token: %v", err)
	}
	fmt.Printf("Bearer token: %s\n", info.Token)
}
