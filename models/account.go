package models

import (
	"context"
	"fmt"
	"time"

	"github.com/mmdatafocus/books_quotation/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// System account codes posted to by sales.
const (
	AccountCodeCash               = "CASH"
	AccountCodeAccountsReceivable = "ACCOUNTS_RECEIVABLE"
	AccountCodeSales              = "SALES"
	AccountCodeCostOfSales        = "COST_OF_SALES"
	AccountCodeInventory          = "INVENTORY"
)

type AccountMainType string

const (
	AccountMainTypeAsset   AccountMainType = "Asset"
	AccountMainTypeIncome  AccountMainType = "Income"
	AccountMainTypeExpense AccountMainType = "Expense"
)

type Account struct {
	ID              int             `gorm:"primary_key" json:"id"`
	Code            string          `gorm:"size:50;not null;uniqueIndex" json:"code"`
	Name            string          `gorm:"size:100;not null" json:"name"`
	MainType        AccountMainType `gorm:"size:20;not null" json:"main_type"`
	IsSystemDefault *bool           `gorm:"not null;default:false" json:"is_system_default"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func systemAccounts() []Account {
	return []Account{
		{Code: AccountCodeCash, Name: "Cash", MainType: AccountMainTypeAsset, IsSystemDefault: utils.NewTrue()},
		{Code: AccountCodeAccountsReceivable, Name: "Accounts Receivable", MainType: AccountMainTypeAsset, IsSystemDefault: utils.NewTrue()},
		{Code: AccountCodeSales, Name: "Sales", MainType: AccountMainTypeIncome, IsSystemDefault: utils.NewTrue()},
		{Code: AccountCodeCostOfSales, Name: "Cost of Goods Sold", MainType: AccountMainTypeExpense, IsSystemDefault: utils.NewTrue()},
		{Code: AccountCodeInventory, Name: "Inventory Asset", MainType: AccountMainTypeAsset, IsSystemDefault: utils.NewTrue()},
	}
}

// EnsureSystemAccounts inserts the system accounts that do not exist yet.
func EnsureSystemAccounts(ctx context.Context, db *gorm.DB) error {
	accounts := systemAccounts()
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoNothing: true,
	}).Create(&accounts).Error
}

// accountIdsByCode maps each requested code to its account id.
func accountIdsByCode(ctx context.Context, tx *gorm.DB, codes ...string) (map[string]int, error) {
	var accounts []Account
	if err := tx.WithContext(ctx).Where("code IN ?", codes).Find(&accounts).Error; err != nil {
		return nil, err
	}
	ids := make(map[string]int, len(accounts))
	for _, acc := range accounts {
		ids[acc.Code] = acc.ID
	}
	for _, code := range codes {
		if _, ok := ids[code]; !ok {
			return nil, fmt.Errorf("system account %s is not configured", code)
		}
	}
	return ids, nil
}
