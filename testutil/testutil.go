// Package testutil wires an in-memory SQLite database and seed rows for package tests.
package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/mmdatafocus/books_quotation/config"
	"github.com/mmdatafocus/books_quotation/models"
	"github.com/mmdatafocus/books_quotation/utils"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var seq atomic.Int64

// SetupTestDB opens a private in-memory database, installs it as the global db, migrates and seeds accounts.
func SetupTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", seq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), config.InitConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a single connection keeps transactions and reads on the same in-memory database
	sqlDB.SetMaxOpenConns(1)

	previous := config.GetDB()
	config.SetDB(db)
	config.SetRedisDB(nil)
	t.Cleanup(func() {
		config.SetDB(previous)
		_ = sqlDB.Close()
	})

	require.NoError(t, models.MigrateTable())
	require.NoError(t, models.SeedSystemData(context.Background()))
	config.SetReady(true)
	t.Cleanup(func() { config.SetReady(false) })
	return db
}

// SetupTestRedis starts an in-process redis and installs it as the global client.
// Call it after SetupTestDB, which clears the client.
func SetupTestRedis(t testing.TB) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	config.SetRedisDB(client)
	t.Cleanup(func() {
		config.SetRedisDB(nil)
		_ = client.Close()
	})
	return mr
}

func SeedRole(t testing.TB, db *gorm.DB, name string, permissions ...string) *models.Role {
	t.Helper()
	role, err := models.UpsertRole(context.Background(), db, name, permissions...)
	require.NoError(t, err)
	return role
}

func SeedUser(t testing.TB, db *gorm.DB, roleId int) *models.User {
	t.Helper()
	n := seq.Add(1)
	user, err := models.CreateUser(context.Background(), db, &models.NewUser{
		Username: fmt.Sprintf("user%d", n),
		Name:     fmt.Sprintf("User %d", n),
		Password: "secret-password",
		RoleId:   roleId,
	})
	require.NoError(t, err)
	return user
}

func SeedCustomer(t testing.TB, db *gorm.DB) *models.Customer {
	t.Helper()
	customer := models.Customer{Name: fmt.Sprintf("Customer %d", seq.Add(1))}
	require.NoError(t, db.Create(&customer).Error)
	return &customer
}

// SeedProduct creates a product with the given purchase price and stock quantity.
func SeedProduct(t testing.TB, db *gorm.DB, isbn string, purchasePrice, quantity int64) *models.Product {
	t.Helper()
	product := models.Product{
		Name:          "Book " + isbn,
		PurchasePrice: decimal.NewFromInt(purchasePrice),
		SalePrice:     decimal.NewFromInt(purchasePrice * 2),
		Quantity:      decimal.NewFromInt(quantity),
	}
	if isbn != "" {
		product.Isbn = &isbn
	}
	require.NoError(t, db.Create(&product).Error)
	return &product
}

// Fixture is a user allowed to create and view quotations, plus a customer to quote for.
type Fixture struct {
	DB       *gorm.DB
	User     *models.User
	Customer *models.Customer
}

func NewFixture(t testing.TB) *Fixture {
	t.Helper()
	db := SetupTestDB(t)
	role := SeedRole(t, db, "Sales", models.PermissionCreateSaleInvoice, models.PermissionViewSaleInvoice)
	return &Fixture{
		DB:       db,
		User:     SeedUser(t, db, role.ID),
		Customer: SeedCustomer(t, db),
	}
}

// Context carries the fixture user like an authenticated request would.
func (f *Fixture) Context() context.Context {
	return utils.SetUserIdInContext(context.Background(), f.User.ID)
}

func Token(t testing.TB, user *models.User) string {
	t.Helper()
	token, err := utils.JwtGenerate(user.ID, user.RoleId, user.Name)
	require.NoError(t, err)
	return token
}

// ProductQuantity reloads the stock quantity of a product.
func ProductQuantity(t testing.TB, db *gorm.DB, productId int) decimal.Decimal {
	t.Helper()
	var product models.Product
	require.NoError(t, db.First(&product, productId).Error)
	return product.Quantity
}
