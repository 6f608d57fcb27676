package models_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/mmdatafocus/books_quotation/models"
	"github.com/mmdatafocus/books_quotation/testutil"
	"github.com/mmdatafocus/books_quotation/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func transactionAmounts(t *testing.T, f *testutil.Fixture, saleId int) map[string]decimal.Decimal {
	t.Helper()
	transactions, err := models.GetSaleTransactions(f.Context(), f.DB, saleId)
	require.NoError(t, err)

	var accounts []models.Account
	require.NoError(t, f.DB.Find(&accounts).Error)
	codes := make(map[int]string)
	for _, a := range accounts {
		codes[a.ID] = a.Code
	}

	amounts := make(map[string]decimal.Decimal)
	for _, tr := range transactions {
		assert.Equal(t, models.TransactionTypeSale, tr.Type)
		assert.Equal(t, saleId, tr.RelatedId)
		amounts[codes[tr.DebitId]+"/"+codes[tr.CreditId]] = tr.Amount
	}
	return amounts
}

func TestConvertQuotationToSale(t *testing.T) {
	f := testutil.NewFixture(t)
	p := testutil.SeedProduct(t, f.DB, "111", 60, 10)
	q, err := models.CreateQuotation(f.Context(), newQuotation(f, "QT-", 1, item(p.ID, "2", "100")))
	require.NoError(t, err)

	sale, err := models.ConvertQuotationToSale(f.Context(), q.ID, dec("150"))
	require.NoError(t, err)

	assert.Equal(t, 1, sale.InvoiceNumber)
	assert.True(t, dec("200").Equal(sale.TotalAmount))
	assert.True(t, dec("150").Equal(sale.PaidAmount))
	assert.True(t, dec("50").Equal(sale.DueAmount))
	assert.True(t, dec("80").Equal(sale.Profit))
	require.NotNil(t, sale.QuotationInvoiceId)
	assert.Equal(t, q.ID, *sale.QuotationInvoiceId)
	require.Len(t, sale.Products, 1)
	assert.True(t, dec("2").Equal(sale.Products[0].ProductQuantity))

	amounts := transactionAmounts(t, f, sale.ID)
	require.Len(t, amounts, 3)
	assert.True(t, dec("150").Equal(amounts["CASH/SALES"]))
	assert.True(t, dec("50").Equal(amounts["ACCOUNTS_RECEIVABLE/SALES"]))
	assert.True(t, dec("120").Equal(amounts["COST_OF_SALES/INVENTORY"]))

	assert.True(t, dec("8").Equal(testutil.ProductQuantity(t, f.DB, p.ID)))

	// the quotation itself is untouched
	after, err := models.GetQuotation(f.Context(), q.ID)
	require.NoError(t, err)
	assert.Len(t, after.Products, 1)
	assert.True(t, q.TotalAmount.Equal(after.TotalAmount))
}

func TestConvertQuotationToSale_FullyPaidSkipsReceivable(t *testing.T) {
	f := testutil.NewFixture(t)
	p := testutil.SeedProduct(t, f.DB, "111", 60, 10)
	q, err := models.CreateQuotation(f.Context(), newQuotation(f, "QT-", 1, item(p.ID, "2", "100")))
	require.NoError(t, err)

	sale, err := models.ConvertQuotationToSale(f.Context(), q.ID, dec("200"))
	require.NoError(t, err)

	amounts := transactionAmounts(t, f, sale.ID)
	assert.Len(t, amounts, 2)
	_, hasDue := amounts["ACCOUNTS_RECEIVABLE/SALES"]
	assert.False(t, hasDue)
}

func TestConvertQuotationToSale_NumbersSequentially(t *testing.T) {
	f := testutil.NewFixture(t)
	p := testutil.SeedProduct(t, f.DB, "111", 60, 100)

	var numbers []int
	for i := 1; i <= 3; i++ {
		q, err := models.CreateQuotation(f.Context(), newQuotation(f, "QT-", i, item(p.ID, "1", "100")))
		require.NoError(t, err)
		sale, err := models.ConvertQuotationToSale(f.Context(), q.ID, decimal.Zero)
		require.NoError(t, err)
		numbers = append(numbers, sale.InvoiceNumber)
	}
	assert.Equal(t, []int{1, 2, 3}, numbers)
	assert.True(t, dec("97").Equal(testutil.ProductQuantity(t, f.DB, p.ID)))
}

func TestConvertQuotationToSale_ReconversionBlocked(t *testing.T) {
	f := testutil.NewFixture(t)
	p := testutil.SeedProduct(t, f.DB, "111", 60, 10)
	q, err := models.CreateQuotation(f.Context(), newQuotation(f, "QT-", 1, item(p.ID, "2", "100")))
	require.NoError(t, err)

	_, err = models.ConvertQuotationToSale(f.Context(), q.ID, decimal.Zero)
	require.NoError(t, err)

	_, err = models.ConvertQuotationToSale(f.Context(), q.ID, decimal.Zero)
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrConflict))
	assert.True(t, dec("8").Equal(testutil.ProductQuantity(t, f.DB, p.ID)))
}

func TestConvertQuotationToSale_ReconversionAllowedByFlag(t *testing.T) {
	t.Setenv("ALLOW_QUOTATION_RECONVERSION", "true")
	f := testutil.NewFixture(t)
	p := testutil.SeedProduct(t, f.DB, "111", 60, 10)
	q, err := models.CreateQuotation(f.Context(), newQuotation(f, "QT-", 1, item(p.ID, "2", "100")))
	require.NoError(t, err)

	first, err := models.ConvertQuotationToSale(f.Context(), q.ID, decimal.Zero)
	require.NoError(t, err)
	second, err := models.ConvertQuotationToSale(f.Context(), q.ID, decimal.Zero)
	require.NoError(t, err)

	assert.NotEqual(t, first.InvoiceNumber, second.InvoiceNumber)
	assert.True(t, dec("6").Equal(testutil.ProductQuantity(t, f.DB, p.ID)))
}

func TestConvertQuotationToSale_MissingProductRollsBack(t *testing.T) {
	f := testutil.NewFixture(t)
	p := testutil.SeedProduct(t, f.DB, "111", 60, 10)
	gone := testutil.SeedProduct(t, f.DB, "222", 10, 10)
	q, err := models.CreateQuotation(f.Context(), newQuotation(f, "QT-", 1, item(p.ID, "2", "100"), item(gone.ID, "1", "50")))
	require.NoError(t, err)
	require.NoError(t, f.DB.Delete(&models.Product{}, gone.ID).Error)

	_, err = models.ConvertQuotationToSale(f.Context(), q.ID, decimal.Zero)
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrValidation))
	assert.False(t, errors.Is(err, utils.ErrorRecordNotFound))
	assert.Contains(t, err.Error(), fmt.Sprintf("product %d no longer exists", gone.ID))

	var sales, transactions int64
	require.NoError(t, f.DB.Model(&models.SaleInvoice{}).Count(&sales).Error)
	require.NoError(t, f.DB.Model(&models.Transaction{}).Count(&transactions).Error)
	assert.Zero(t, sales)
	assert.Zero(t, transactions)
	assert.True(t, dec("10").Equal(testutil.ProductQuantity(t, f.DB, p.ID)))
}

func TestConvertQuotationToSale_Errors(t *testing.T) {
	f := testutil.NewFixture(t)

	_, err := models.ConvertQuotationToSale(f.Context(), 404, decimal.Zero)
	assert.True(t, errors.Is(err, utils.ErrorRecordNotFound))

	_, err = models.ConvertQuotationToSale(f.Context(), 1, dec("-1"))
	assert.True(t, errors.Is(err, utils.ErrValidation))
}
