package models

import (
	"context"

	"github.com/mmdatafocus/books_quotation/config"
)

func MigrateTable() error {
	db := config.GetDB()

	return db.AutoMigrate(
		&Account{}, &Category{}, &Currency{}, &Customer{},
		&Publisher{}, &Product{},
		&QuotationInvoice{}, &QuotationInvoiceProduct{},
		&Role{}, &SaleInvoice{}, &SaleInvoiceProduct{},
		&Transaction{}, &User{},
	)
}

// SeedSystemData creates the rows the service cannot run without.
func SeedSystemData(ctx context.Context) error {
	return EnsureSystemAccounts(ctx, config.GetDB())
}
