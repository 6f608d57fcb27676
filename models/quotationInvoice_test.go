package models_test

import (
	"errors"
	"testing"

	"github.com/mmdatafocus/books_quotation/models"
	"github.com/mmdatafocus/books_quotation/testutil"
	"github.com/mmdatafocus/books_quotation/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newQuotation(f *testutil.Fixture, prefix string, number int, items ...models.NewQuotationInvoiceProduct) *models.NewQuotationInvoice {
	return &models.NewQuotationInvoice{
		Prefix:        prefix,
		InvoiceNumber: number,
		CustomerId:    f.Customer.ID,
		Date:          "2024-05-10",
		Products:      items,
	}
}

func item(productId int, qty, price string) models.NewQuotationInvoiceProduct {
	return models.NewQuotationInvoiceProduct{
		ProductId:             productId,
		ProductQuantity:       dec(qty),
		ProductSalePrice:      dec(price),
		ProductSaleCurrency:   "MMK",
		ProductSaleConversion: dec("1"),
	}
}

func TestCreateQuotation_ComputesTotals(t *testing.T) {
	f := testutil.NewFixture(t)
	p1 := testutil.SeedProduct(t, f.DB, "111", 60, 10)
	p2 := testutil.SeedProduct(t, f.DB, "222", 5, 10)

	discounted := item(p2.ID, "4", "25")
	discounted.ProductSaleDiscount = dec("10")
	discounted.ProductSaleConversion = dec("2")

	q, err := models.CreateQuotation(f.Context(), newQuotation(f, "QT-", 1, item(p1.ID, "2", "100"), discounted))
	require.NoError(t, err)

	// 200 + 4*25*2
	assert.True(t, dec("400").Equal(q.TotalAmount), q.TotalAmount.String())
	assert.True(t, dec("20").Equal(q.TotalProductDiscount), q.TotalProductDiscount.String())
	assert.True(t, dec("6").Equal(q.TotalProductQty), q.TotalProductQty.String())
	assert.Equal(t, f.User.ID, q.UserId, "user defaults to the session user")
	require.Len(t, q.Products, 2)
	assert.Equal(t, p1.ID, q.Products[0].ProductId)
	require.NotNil(t, q.Products[0].Product)
	require.NotNil(t, q.Customer)
}

func TestCreateQuotation_HasNoStockOrLedgerEffect(t *testing.T) {
	f := testutil.NewFixture(t)
	p := testutil.SeedProduct(t, f.DB, "111", 60, 10)

	_, err := models.CreateQuotation(f.Context(), newQuotation(f, "QT-", 1, item(p.ID, "3", "100")))
	require.NoError(t, err)

	assert.True(t, dec("10").Equal(testutil.ProductQuantity(t, f.DB, p.ID)))
	var count int64
	require.NoError(t, f.DB.Model(&models.Transaction{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateQuotation_InvoiceNumberUniquePerPrefix(t *testing.T) {
	f := testutil.NewFixture(t)
	p := testutil.SeedProduct(t, f.DB, "111", 60, 10)

	_, err := models.CreateQuotation(f.Context(), newQuotation(f, "QT-", 7, item(p.ID, "1", "100")))
	require.NoError(t, err)

	_, err = models.CreateQuotation(f.Context(), newQuotation(f, "QT-", 7, item(p.ID, "1", "100")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrConflict), err.Error())

	_, err = models.CreateQuotation(f.Context(), newQuotation(f, "QB-", 7, item(p.ID, "1", "100")))
	assert.NoError(t, err)
}

func TestCreateQuotation_CreatesProductAndPublisherFromIsbn(t *testing.T) {
	f := testutil.NewFixture(t)

	var data models.NewProductData
	require.NoError(t, data.SalePrice.UnmarshalJSON([]byte(`"1,200"`)))
	require.NoError(t, data.PurchasePrice.UnmarshalJSON([]byte(`"abc"`)))
	data.Name = "Go in Practice"
	data.Publisher = "Manning"

	line := models.NewQuotationInvoiceProduct{
		Isbn:                  "978-1633430075",
		ProductData:           &data,
		ProductQuantity:       dec("1"),
		ProductSalePrice:      dec("1200"),
		ProductSaleConversion: dec("1"),
	}
	// same isbn twice resolves to one product
	q, err := models.CreateQuotation(f.Context(), newQuotation(f, "QT-", 1, line, line))
	require.NoError(t, err)
	require.Len(t, q.Products, 2)
	assert.Equal(t, q.Products[0].ProductId, q.Products[1].ProductId)

	product := q.Products[0].Product
	require.NotNil(t, product)
	assert.Equal(t, "Go in Practice", product.Name)
	assert.True(t, dec("1200").Equal(product.SalePrice))
	assert.True(t, product.PurchasePrice.IsZero())
	assert.True(t, product.Quantity.IsZero())
	require.NotNil(t, product.PublisherId)
	assert.Nil(t, product.CategoryId)

	// a later quotation reuses the product by isbn
	q2, err := models.CreateQuotation(f.Context(), newQuotation(f, "QT-", 2, line))
	require.NoError(t, err)
	assert.Equal(t, product.ID, q2.Products[0].ProductId)

	var publishers int64
	require.NoError(t, f.DB.Model(&models.Publisher{}).Count(&publishers).Error)
	assert.EqualValues(t, 1, publishers)
}

func TestCreateQuotation_UnresolvableProductPersistsNothing(t *testing.T) {
	f := testutil.NewFixture(t)
	p := testutil.SeedProduct(t, f.DB, "111", 60, 10)

	unknown := models.NewQuotationInvoiceProduct{Isbn: "000-unknown", ProductQuantity: dec("1")}
	_, err := models.CreateQuotation(f.Context(), newQuotation(f, "QT-", 1, item(p.ID, "1", "10"), unknown))
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrValidation))
	assert.Contains(t, err.Error(), "000-unknown")

	_, err = models.CreateQuotation(f.Context(), newQuotation(f, "QT-", 2, models.NewQuotationInvoiceProduct{ProductQuantity: dec("1")}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "N/A")

	var quotations, lines int64
	require.NoError(t, f.DB.Model(&models.QuotationInvoice{}).Count(&quotations).Error)
	require.NoError(t, f.DB.Model(&models.QuotationInvoiceProduct{}).Count(&lines).Error)
	assert.Zero(t, quotations)
	assert.Zero(t, lines)
}

func TestCreateQuotation_RejectsUnknownCustomer(t *testing.T) {
	f := testutil.NewFixture(t)
	p := testutil.SeedProduct(t, f.DB, "111", 60, 10)

	input := newQuotation(f, "QT-", 1, item(p.ID, "1", "10"))
	input.CustomerId = 9999
	_, err := models.CreateQuotation(f.Context(), input)
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrValidation))
}

func TestGetQuotation_NotFound(t *testing.T) {
	f := testutil.NewFixture(t)

	_, err := models.GetQuotation(f.Context(), 42)
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrorRecordNotFound))
}

func TestUpdateQuotation_ReplacesLineItems(t *testing.T) {
	f := testutil.NewFixture(t)
	p1 := testutil.SeedProduct(t, f.DB, "111", 60, 10)
	p2 := testutil.SeedProduct(t, f.DB, "222", 30, 10)

	q, err := models.CreateQuotation(f.Context(), newQuotation(f, "QT-", 1, item(p1.ID, "1", "100"), item(p1.ID, "2", "100")))
	require.NoError(t, err)
	oldLineIds := []int{q.Products[0].ID, q.Products[1].ID}

	input := newQuotation(f, "QT-", 1, item(p2.ID, "5", "40"))
	input.Note = "revised"
	updated, err := models.UpdateQuotation(f.Context(), q.ID, input)
	require.NoError(t, err)

	assert.Equal(t, "revised", updated.Note)
	require.Len(t, updated.Products, 1)
	assert.Equal(t, p2.ID, updated.Products[0].ProductId)
	assert.True(t, dec("200").Equal(updated.TotalAmount))

	var remaining int64
	require.NoError(t, f.DB.Model(&models.QuotationInvoiceProduct{}).Where("id IN ?", oldLineIds).Count(&remaining).Error)
	assert.Zero(t, remaining)

	assert.True(t, dec("10").Equal(testutil.ProductQuantity(t, f.DB, p2.ID)))
}

func TestUpdateQuotation_Errors(t *testing.T) {
	f := testutil.NewFixture(t)
	p := testutil.SeedProduct(t, f.DB, "111", 60, 10)

	_, err := models.UpdateQuotation(f.Context(), 77, newQuotation(f, "QT-", 1, item(p.ID, "1", "1")))
	assert.True(t, errors.Is(err, utils.ErrorRecordNotFound))

	_, err = models.CreateQuotation(f.Context(), newQuotation(f, "QT-", 1, item(p.ID, "1", "1")))
	require.NoError(t, err)
	second, err := models.CreateQuotation(f.Context(), newQuotation(f, "QT-", 2, item(p.ID, "1", "1")))
	require.NoError(t, err)

	_, err = models.UpdateQuotation(f.Context(), second.ID, newQuotation(f, "QT-", 1, item(p.ID, "1", "1")))
	assert.True(t, errors.Is(err, utils.ErrConflict))

	// keeping its own number is not a conflict
	_, err = models.UpdateQuotation(f.Context(), second.ID, newQuotation(f, "QT-", 2, item(p.ID, "3", "1")))
	assert.NoError(t, err)
}

func TestUpdateQuotation_UnresolvableProductKeepsPrevious(t *testing.T) {
	f := testutil.NewFixture(t)
	p := testutil.SeedProduct(t, f.DB, "111", 60, 10)

	input := newQuotation(f, "QT-", 1, item(p.ID, "2", "100"))
	input.Note = "original"
	q, err := models.CreateQuotation(f.Context(), input)
	require.NoError(t, err)

	revised := newQuotation(f, "QT-", 9, item(p.ID, "5", "100"),
		models.NewQuotationInvoiceProduct{Isbn: "000-unknown", ProductQuantity: dec("1")})
	revised.Note = "revised"
	_, err = models.UpdateQuotation(f.Context(), q.ID, revised)
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrValidation))
	assert.Contains(t, err.Error(), "000-unknown")

	after, err := models.GetQuotation(f.Context(), q.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", after.Note)
	assert.Equal(t, 1, after.InvoiceNumber)
	require.Len(t, after.Products, 1)
	assert.Equal(t, q.Products[0].ID, after.Products[0].ID)
	assert.True(t, dec("2").Equal(after.Products[0].ProductQuantity))
	assert.True(t, dec("200").Equal(after.TotalAmount))

	var products int64
	require.NoError(t, f.DB.Model(&models.Product{}).Count(&products).Error)
	assert.EqualValues(t, 1, products)
}

func TestUpdateQuotation_CreatesProductFromIsbn(t *testing.T) {
	f := testutil.NewFixture(t)
	p := testutil.SeedProduct(t, f.DB, "111", 60, 10)

	q, err := models.CreateQuotation(f.Context(), newQuotation(f, "QT-", 1, item(p.ID, "1", "100")))
	require.NoError(t, err)

	var data models.NewProductData
	require.NoError(t, data.SalePrice.UnmarshalJSON([]byte(`45`)))
	data.Name = "Concurrency in Go"
	data.Publisher = "O'Reilly"
	line := models.NewQuotationInvoiceProduct{
		Isbn:                  "978-1491941195",
		ProductData:           &data,
		ProductQuantity:       dec("3"),
		ProductSalePrice:      dec("45"),
		ProductSaleConversion: dec("1"),
	}

	updated, err := models.UpdateQuotation(f.Context(), q.ID, newQuotation(f, "QT-", 1, item(p.ID, "1", "100"), line))
	require.NoError(t, err)
	require.Len(t, updated.Products, 2)

	created := updated.Products[1].Product
	require.NotNil(t, created)
	require.NotNil(t, created.Isbn)
	assert.Equal(t, "978-1491941195", *created.Isbn)
	assert.Equal(t, "Concurrency in Go", created.Name)
	assert.True(t, created.Quantity.IsZero())
	require.NotNil(t, created.PublisherId)
	assert.True(t, dec("235").Equal(updated.TotalAmount))
	assert.True(t, dec("4").Equal(updated.TotalProductQty))
}

func TestPaginateQuotations_DateRange(t *testing.T) {
	f := testutil.NewFixture(t)
	p := testutil.SeedProduct(t, f.DB, "111", 60, 10)

	for i, date := range []string{"2024-01-05", "2024-02-10", "2024-02-29T18:30:00Z", "2024-03-15"} {
		input := newQuotation(f, "QT-", i+1, item(p.ID, "1", "1"))
		input.Date = date
		_, err := models.CreateQuotation(f.Context(), input)
		require.NoError(t, err)
	}

	results, err := models.PaginateQuotations(f.Context(), models.QuotationFilter{StartDate: "2024-02-01", EndDate: "2024-02-29", Limit: 10})
	require.NoError(t, err)
	require.Len(t, results, 2)
	// newest id first, end date covers the whole day
	assert.Equal(t, 3, results[0].InvoiceNumber)
	assert.Equal(t, 2, results[1].InvoiceNumber)
	require.Len(t, results[0].Products, 1)
	assert.NotNil(t, results[0].Products[0].Product)

	all, err := models.PaginateQuotations(f.Context(), models.QuotationFilter{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	page, err := models.PaginateQuotations(f.Context(), models.QuotationFilter{Skip: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, 3, page[0].InvoiceNumber)

	open, err := models.PaginateQuotations(f.Context(), models.QuotationFilter{StartDate: "2024-03-01", Limit: 10})
	require.NoError(t, err)
	assert.Len(t, open, 1)

	_, err = models.PaginateQuotations(f.Context(), models.QuotationFilter{StartDate: "yesterday"})
	assert.True(t, errors.Is(err, utils.ErrValidation))
}

func TestExportQuotationsExcel(t *testing.T) {
	f := testutil.NewFixture(t)
	p := testutil.SeedProduct(t, f.DB, "111", 60, 10)
	_, err := models.CreateQuotation(f.Context(), newQuotation(f, "QT-", 12, item(p.ID, "2", "100")))
	require.NoError(t, err)

	file, err := models.ExportQuotationsExcel(f.Context(), models.QuotationFilter{})
	require.NoError(t, err)
	rows, err := file.GetRows("Quotations")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Invoice", rows[0][2])
	assert.Equal(t, "QT-12", rows[1][2])
	assert.Equal(t, f.Customer.Name, rows[1][3])
	assert.Equal(t, "200", rows[1][7])
}
