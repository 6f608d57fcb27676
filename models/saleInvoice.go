package models

import (
	"context"
	"errors"
	"time"

	"github.com/mmdatafocus/books_quotation/config"
	"github.com/mmdatafocus/books_quotation/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleInvoice struct {
	ID                   int                  `gorm:"primary_key" json:"id"`
	Date                 time.Time            `gorm:"not null;index" json:"date"`
	Prefix               string               `gorm:"size:20;not null;default:''" json:"prefix"`
	InvoiceNumber        int                  `gorm:"not null;uniqueIndex" json:"invoice_number"`
	OrderNumber          string               `gorm:"size:255" json:"order_number"`
	OrderDate            *time.Time           `json:"order_date"`
	Note                 string               `gorm:"type:text" json:"note"`
	Discount             decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"discount"`
	TotalAmount          decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	TotalProductDiscount decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"total_product_discount"`
	TotalProductQty      decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"total_product_qty"`
	RoundOffEnabled      *bool                `gorm:"not null;default:false" json:"round_off_enabled"`
	RoundOffAmount       decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"round_off_amount"`
	PaidAmount           decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"paid_amount"`
	DueAmount            decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"due_amount"`
	Profit               decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"profit"`
	CustomerId           int                  `gorm:"index;not null" json:"customer_id"`
	UserId               int                  `gorm:"index;not null" json:"user_id"`
	QuotationInvoiceId   *int                 `gorm:"index" json:"quotation_invoice_id"`
	Customer             *Customer            `gorm:"foreignKey:CustomerId" json:"customer,omitempty"`
	User                 *User                `gorm:"foreignKey:UserId" json:"user,omitempty"`
	Products             []SaleInvoiceProduct `gorm:"foreignKey:SaleInvoiceId" json:"products"`
	CreatedAt            time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time            `gorm:"autoUpdateTime" json:"updated_at"`
}

type SaleInvoiceProduct struct {
	ID            int `gorm:"primary_key" json:"id"`
	SaleInvoiceId int `gorm:"index;not null" json:"sale_invoice_id"`
	InvoiceLine
	Product *Product `gorm:"foreignKey:ProductId" json:"product,omitempty"`
}

func GetSaleInvoice(ctx context.Context, id int) (*SaleInvoice, error) {
	db := config.GetDB()

	var result SaleInvoice
	err := db.WithContext(ctx).
		Preload("Customer").
		Preload("User").
		Preload("Products", func(db *gorm.DB) *gorm.DB {
			return db.Order("id")
		}).
		Preload("Products.Product").
		First(&result, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NotFoundError("sale invoice", id)
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// saleInvoiceFromQuotation copies the quotation and its lines onto a new sale with the settled amounts.
func saleInvoiceFromQuotation(quotation *QuotationInvoice, lines []SaleInvoiceProduct, settlement SaleSettlement) SaleInvoice {
	roundOffEnabled := utils.DereferencePtr(quotation.RoundOffEnabled)
	return SaleInvoice{
		Date:                 quotation.Date,
		Prefix:               quotation.Prefix,
		OrderNumber:          quotation.OrderNumber,
		OrderDate:            quotation.OrderDate,
		Note:                 quotation.Note,
		Discount:             quotation.Discount,
		TotalAmount:          settlement.TotalAmount,
		TotalProductDiscount: settlement.TotalDiscount,
		TotalProductQty:      settlement.TotalQty,
		RoundOffEnabled:      &roundOffEnabled,
		RoundOffAmount:       quotation.RoundOffAmount,
		PaidAmount:           settlement.Paid,
		DueAmount:            settlement.Due,
		Profit:               settlement.Profit,
		CustomerId:           quotation.CustomerId,
		UserId:               quotation.UserId,
		QuotationInvoiceId:   &quotation.ID,
		Products:             lines,
	}
}

func saleLinesFromQuotation(quotation *QuotationInvoice) []SaleInvoiceProduct {
	lines := make([]SaleInvoiceProduct, 0, len(quotation.Products))
	for _, item := range quotation.Products {
		lines = append(lines, SaleInvoiceProduct{InvoiceLine: item.InvoiceLine})
	}
	return lines
}

func purchaseCost(lines []SaleInvoiceProduct, prices map[int]decimal.Decimal) decimal.Decimal {
	return foldLines(lines, decimal.Zero, func(total decimal.Decimal, l InvoiceLine) decimal.Decimal {
		return total.Add(prices[l.ProductId].Mul(l.ProductQuantity))
	})
}

func stockDecrements(lines []SaleInvoiceProduct) []StockDecrement {
	return foldLines(lines, []StockDecrement(nil), func(acc []StockDecrement, l InvoiceLine) []StockDecrement {
		return append(acc, StockDecrement{ProductId: l.ProductId, Quantity: l.ProductQuantity})
	})
}
