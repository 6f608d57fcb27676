package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mmdatafocus/books_quotation/config"
	"github.com/mmdatafocus/books_quotation/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type QuotationInvoice struct {
	ID                   int                       `gorm:"primary_key" json:"id"`
	Date                 time.Time                 `gorm:"not null;index" json:"date"`
	Prefix               string                    `gorm:"size:20;not null;default:'';uniqueIndex:idx_quotation_prefix_number" json:"prefix"`
	InvoiceNumber        int                       `gorm:"not null;uniqueIndex:idx_quotation_prefix_number" json:"invoice_number"`
	OrderNumber          string                    `gorm:"size:255" json:"order_number"`
	OrderDate            *time.Time                `json:"order_date"`
	Note                 string                    `gorm:"type:text" json:"note"`
	Discount             decimal.Decimal           `gorm:"type:decimal(20,4);default:0" json:"discount"`
	TotalAmount          decimal.Decimal           `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	TotalProductDiscount decimal.Decimal           `gorm:"type:decimal(20,4);default:0" json:"total_product_discount"`
	TotalProductQty      decimal.Decimal           `gorm:"type:decimal(20,4);default:0" json:"total_product_qty"`
	RoundOffEnabled      *bool                     `gorm:"not null;default:false" json:"round_off_enabled"`
	RoundOffAmount       decimal.Decimal           `gorm:"type:decimal(20,4);default:0" json:"round_off_amount"`
	CustomerId           int                       `gorm:"index;not null" json:"customer_id"`
	UserId               int                       `gorm:"index;not null" json:"user_id"`
	Customer             *Customer                 `gorm:"foreignKey:CustomerId" json:"customer,omitempty"`
	User                 *User                     `gorm:"foreignKey:UserId" json:"user,omitempty"`
	Products             []QuotationInvoiceProduct `gorm:"foreignKey:QuotationInvoiceId" json:"products"`
	CreatedAt            time.Time                 `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time                 `gorm:"autoUpdateTime" json:"updated_at"`
}

type QuotationInvoiceProduct struct {
	ID                 int `gorm:"primary_key" json:"id"`
	QuotationInvoiceId int `gorm:"index;not null" json:"quotation_invoice_id"`
	InvoiceLine
	Product *Product `gorm:"foreignKey:ProductId" json:"product,omitempty"`
}

type NewQuotationInvoice struct {
	Prefix          string                       `json:"prefix"`
	InvoiceNumber   int                          `json:"invoiceNumber" binding:"min=1"`
	CustomerId      int                          `json:"customer_id" binding:"required"`
	UserId          int                          `json:"user_id"`
	Date            string                       `json:"date" binding:"required"`
	OrderDate       string                       `json:"orderDate"`
	OrderNumber     string                       `json:"orderNumber"`
	Note            string                       `json:"note"`
	Discount        decimal.Decimal              `json:"discount"`
	RoundOffEnabled bool                         `json:"round_off_enabled"`
	RoundOffAmount  decimal.Decimal              `json:"round_off_amount"`
	Products        []NewQuotationInvoiceProduct `json:"saleInvoiceProduct"`
}

// NewQuotationInvoiceProduct references a product either by id or by isbn, optionally with data to create it.
type NewQuotationInvoiceProduct struct {
	ProductId             int             `json:"product_id"`
	Isbn                  string          `json:"isbn"`
	ProductData           *NewProductData `json:"product_data"`
	ProductQuantity       decimal.Decimal `json:"product_quantity"`
	ProductSalePrice      decimal.Decimal `json:"product_sale_price"`
	ProductSaleDiscount   decimal.Decimal `json:"product_sale_discount"`
	ProductSaleCurrency   string          `json:"product_sale_currency"`
	ProductSaleConversion decimal.Decimal `json:"product_sale_conversion"`
}

// QuotationFilter selects quotations by date. Empty dates leave that side of the range open.
type QuotationFilter struct {
	StartDate string
	EndDate   string
	Skip      int
	Limit     int
}

// parsed invoice dates
type quotationDates struct {
	date      time.Time
	orderDate *time.Time
}

func preloadQuotationRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Customer").
		Preload("User").
		Preload("Products", func(db *gorm.DB) *gorm.DB {
			return db.Order("id")
		}).
		Preload("Products.Product")
}

func (input NewQuotationInvoice) parseDates() (*quotationDates, error) {
	date, _, err := utils.ParseDate(input.Date)
	if err != nil {
		return nil, utils.ValidationError("invalid date: %v", err)
	}
	dates := &quotationDates{date: date}
	if strings.TrimSpace(input.OrderDate) != "" {
		orderDate, _, err := utils.ParseDate(input.OrderDate)
		if err != nil {
			return nil, utils.ValidationError("invalid orderDate: %v", err)
		}
		dates.orderDate = &orderDate
	}
	return dates, nil
}

func (input NewQuotationInvoice) validate(ctx context.Context, tx *gorm.DB, quotationId int) error {
	if len(input.Products) == 0 {
		return utils.ValidationError("at least one product is required")
	}
	if err := utils.ValidateUniqueWhere[QuotationInvoice](ctx, tx, quotationId,
		"duplicate invoice number", "prefix = ? AND invoice_number = ?", input.Prefix, input.InvoiceNumber); err != nil {
		return err
	}
	if err := validateReference[Customer](ctx, tx, input.CustomerId, "customer"); err != nil {
		return err
	}
	if err := validateReference[User](ctx, tx, input.UserId, "user"); err != nil {
		return err
	}
	return nil
}

// validateReference reports a missing referenced row as a validation failure of the request.
func validateReference[T any](ctx context.Context, tx *gorm.DB, id int, label string) error {
	err := utils.ValidateResourceId[T](ctx, tx, id)
	if errors.Is(err, utils.ErrorRecordNotFound) {
		return utils.ValidationError("%s %d does not exist", label, id)
	}
	return err
}

// withDefaults fills user_id from the session when the body leaves it empty.
func (input NewQuotationInvoice) withDefaults(ctx context.Context) NewQuotationInvoice {
	if input.UserId == 0 {
		if userId, ok := utils.GetUserIdFromContext(ctx); ok {
			input.UserId = userId
		}
	}
	input.Prefix = strings.TrimSpace(input.Prefix)
	return input
}

func buildQuotationLines(items []NewQuotationInvoiceProduct, productIds []int) []QuotationInvoiceProduct {
	lines := make([]QuotationInvoiceProduct, 0, len(items))
	for i, item := range items {
		lines = append(lines, QuotationInvoiceProduct{InvoiceLine: item.toLine(productIds[i])})
	}
	return lines
}

func (item NewQuotationInvoiceProduct) toLine(productId int) InvoiceLine {
	conversion := item.ProductSaleConversion
	if conversion.IsZero() {
		conversion = decimal.NewFromInt(1)
	}
	return InvoiceLine{
		ProductId:             productId,
		ProductQuantity:       item.ProductQuantity,
		ProductSalePrice:      item.ProductSalePrice,
		ProductSaleDiscount:   item.ProductSaleDiscount,
		ProductSaleCurrency:   item.ProductSaleCurrency,
		ProductSaleConversion: conversion,
	}
}

func duplicateInvoiceNumber(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return utils.ConflictError("duplicate invoice number")
	}
	return err
}

func CreateQuotation(ctx context.Context, input *NewQuotationInvoice) (*QuotationInvoice, error) {
	db := config.GetDB()
	in := input.withDefaults(ctx)

	dates, err := in.parseDates()
	if err != nil {
		return nil, err
	}

	tx := db.WithContext(ctx).Begin()
	if err := in.validate(ctx, tx, 0); err != nil {
		tx.Rollback()
		return nil, err
	}

	productIds, err := resolveLineProducts(ctx, tx, in.Products)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	lines := buildQuotationLines(in.Products, productIds)
	totals := CalculateInvoiceTotals(lines)

	quotation := QuotationInvoice{
		Date:                 dates.date,
		Prefix:               in.Prefix,
		InvoiceNumber:        in.InvoiceNumber,
		OrderNumber:          in.OrderNumber,
		OrderDate:            dates.orderDate,
		Note:                 in.Note,
		Discount:             in.Discount,
		TotalAmount:          totals.TotalAmount,
		TotalProductDiscount: totals.TotalDiscount,
		TotalProductQty:      totals.TotalQty,
		RoundOffEnabled:      &in.RoundOffEnabled,
		RoundOffAmount:       in.RoundOffAmount,
		CustomerId:           in.CustomerId,
		UserId:               in.UserId,
		Products:             lines,
	}
	if err := tx.Create(&quotation).Error; err != nil {
		tx.Rollback()
		return nil, duplicateInvoiceNumber(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return GetQuotation(ctx, quotation.ID)
}

func GetQuotation(ctx context.Context, id int) (*QuotationInvoice, error) {
	db := config.GetDB()

	var result QuotationInvoice
	err := preloadQuotationRelations(db.WithContext(ctx)).First(&result, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NotFoundError("quotation", id)
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (f QuotationFilter) apply(dbCtx *gorm.DB) (*gorm.DB, error) {
	if strings.TrimSpace(f.StartDate) != "" {
		start, _, err := utils.ParseDate(f.StartDate)
		if err != nil {
			return nil, utils.ValidationError("invalid startdate: %v", err)
		}
		dbCtx = dbCtx.Where("date >= ?", start)
	}
	if strings.TrimSpace(f.EndDate) != "" {
		end, dateOnly, err := utils.ParseDate(f.EndDate)
		if err != nil {
			return nil, utils.ValidationError("invalid enddate: %v", err)
		}
		if dateOnly {
			end = utils.EndOfDay(end)
		}
		dbCtx = dbCtx.Where("date <= ?", end)
	}
	return dbCtx, nil
}

// PaginateQuotations lists quotations newest first.
func PaginateQuotations(ctx context.Context, filter QuotationFilter) ([]*QuotationInvoice, error) {
	db := config.GetDB()

	dbCtx, err := filter.apply(db.WithContext(ctx))
	if err != nil {
		return nil, err
	}

	dbCtx = preloadQuotationRelations(dbCtx).Order("id DESC").Offset(filter.Skip)
	if filter.Limit > 0 {
		dbCtx = dbCtx.Limit(filter.Limit)
	}
	results := make([]*QuotationInvoice, 0)
	err = dbCtx.Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// UpdateQuotation replaces the quotation's fields and its whole line item set.
func UpdateQuotation(ctx context.Context, id int, input *NewQuotationInvoice) (*QuotationInvoice, error) {
	db := config.GetDB()
	in := input.withDefaults(ctx)

	tx := db.WithContext(ctx).Begin()
	existing, err := utils.FetchModel[QuotationInvoice](ctx, tx, id)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	dates, err := in.parseDates()
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := in.validate(ctx, tx, existing.ID); err != nil {
		tx.Rollback()
		return nil, err
	}

	productIds, err := resolveLineProducts(ctx, tx, in.Products)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	lines := buildQuotationLines(in.Products, productIds)
	totals := CalculateInvoiceTotals(lines)

	err = tx.Model(existing).Updates(map[string]interface{}{
		"date":                   dates.date,
		"prefix":                 in.Prefix,
		"invoice_number":         in.InvoiceNumber,
		"order_number":           in.OrderNumber,
		"order_date":             dates.orderDate,
		"note":                   in.Note,
		"discount":               in.Discount,
		"total_amount":           totals.TotalAmount,
		"total_product_discount": totals.TotalDiscount,
		"total_product_qty":      totals.TotalQty,
		"round_off_enabled":      in.RoundOffEnabled,
		"round_off_amount":       in.RoundOffAmount,
		"customer_id":            in.CustomerId,
		"user_id":                in.UserId,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, duplicateInvoiceNumber(err)
	}

	if err := tx.Where("quotation_invoice_id = ?", existing.ID).Delete(&QuotationInvoiceProduct{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	for i := range lines {
		lines[i].QuotationInvoiceId = existing.ID
	}
	if err := tx.Create(&lines).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return GetQuotation(ctx, existing.ID)
}
