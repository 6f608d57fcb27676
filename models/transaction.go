package models

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionType string

const TransactionTypeSale TransactionType = "sale"

// Transaction is one double-entry ledger posting.
type Transaction struct {
	ID          int             `gorm:"primary_key" json:"id"`
	Date        time.Time       `gorm:"not null" json:"date"`
	DebitId     int             `gorm:"index;not null" json:"debit_id"`
	CreditId    int             `gorm:"index;not null" json:"credit_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	Particulars string          `gorm:"size:255" json:"particulars"`
	Type        TransactionType `gorm:"size:20;not null;index:idx_transaction_related" json:"type"`
	RelatedId   int             `gorm:"not null;index:idx_transaction_related" json:"related_id"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// saleTransactions lays out the postings for a settled sale.
func saleTransactions(sale *SaleInvoice, settlement SaleSettlement, accounts map[string]int) []Transaction {
	var result []Transaction
	add := func(debit, credit string, amount decimal.Decimal, particulars string) {
		result = append(result, Transaction{
			Date:        sale.Date,
			DebitId:     accounts[debit],
			CreditId:    accounts[credit],
			Amount:      amount,
			Particulars: particulars,
			Type:        TransactionTypeSale,
			RelatedId:   sale.ID,
		})
	}

	if settlement.Paid.IsPositive() {
		add(AccountCodeCash, AccountCodeSales, settlement.Paid,
			fmt.Sprintf("Cash receipt for sale invoice %s%d", sale.Prefix, sale.InvoiceNumber))
	}
	if settlement.Due.IsPositive() {
		add(AccountCodeAccountsReceivable, AccountCodeSales, settlement.Due,
			fmt.Sprintf("Due on sale invoice %s%d", sale.Prefix, sale.InvoiceNumber))
	}
	add(AccountCodeCostOfSales, AccountCodeInventory, settlement.PurchaseCost,
		fmt.Sprintf("Cost of sales for sale invoice %s%d", sale.Prefix, sale.InvoiceNumber))
	return result
}

// saleAccountCodes are the accounts a sale may post to.
var saleAccountCodes = []string{
	AccountCodeCash, AccountCodeAccountsReceivable, AccountCodeSales, AccountCodeCostOfSales, AccountCodeInventory,
}

func postSaleTransactions(ctx context.Context, tx *gorm.DB, sale *SaleInvoice, settlement SaleSettlement, accounts map[string]int) ([]Transaction, error) {
	transactions := saleTransactions(sale, settlement, accounts)
	if err := tx.WithContext(ctx).Create(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

// GetSaleTransactions lists the postings of a sale invoice.
func GetSaleTransactions(ctx context.Context, db *gorm.DB, saleInvoiceId int) ([]Transaction, error) {
	var results []Transaction
	err := db.WithContext(ctx).
		Where("type = ? AND related_id = ?", TransactionTypeSale, saleInvoiceId).
		Order("id").
		Find(&results).Error
	return results, err
}
