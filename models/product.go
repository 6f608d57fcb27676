package models

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/mmdatafocus/books_quotation/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID             int             `gorm:"primary_key" json:"id"`
	Isbn           *string         `gorm:"size:100;uniqueIndex" json:"isbn"`
	Name           string          `gorm:"size:255;not null" json:"name"`
	Author         string          `gorm:"size:255" json:"author"`
	SalePrice      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"sale_price"`
	PurchasePrice  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"purchase_price"`
	Quantity       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity"`
	Unit           string          `gorm:"size:50" json:"unit"`
	SubUnit        string          `gorm:"size:50" json:"sub_unit"`
	UnitConversion decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_conversion"`
	CurrencyId     *int            `gorm:"index" json:"currency_id"`
	PublisherId    *int            `gorm:"index" json:"publisher_id"`
	CategoryId     *int            `gorm:"index" json:"category_id"`
	Publisher      *Publisher      `gorm:"foreignKey:PublisherId" json:"publisher,omitempty"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// NewProductData is the catalog entry embedded in a line item that references an unknown isbn.
// Numeric fields never fail to decode; anything missing or unparseable becomes 0.
type NewProductData struct {
	Name           string             `json:"name"`
	Author         string             `json:"author"`
	SalePrice      utils.LooseDecimal `json:"sale_price"`
	PurchasePrice  utils.LooseDecimal `json:"purchase_price"`
	Quantity       utils.LooseDecimal `json:"quantity"`
	Unit           string             `json:"unit"`
	SubUnit        string             `json:"sub_unit"`
	UnitConversion utils.LooseDecimal `json:"unit_conversion"`
	CurrencyId     int                `json:"currency_id"`
	PublisherId    int                `json:"publisher_id"`
	Publisher      string             `json:"publisher"`
	CategoryId     int                `json:"category_id"`
}

func optionalId(id int) *int {
	if id <= 0 {
		return nil
	}
	return &id
}

// productPurchasePrices loads purchase_price for each id. A product deleted since it was quoted is a
// validation failure, not a missing quotation.
func productPurchasePrices(ctx context.Context, tx *gorm.DB, ids []int) (map[int]decimal.Decimal, error) {
	ids = utils.UniqueSlice(ids)
	var products []Product
	if err := tx.WithContext(ctx).Select("id", "purchase_price").Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	prices := make(map[int]decimal.Decimal, len(products))
	for _, p := range products {
		prices[p.ID] = p.PurchasePrice
	}
	for _, id := range ids {
		if _, ok := prices[id]; !ok {
			return nil, utils.ValidationError("product %d no longer exists", id)
		}
	}
	return prices, nil
}

// StockDecrement is one product quantity reduction.
type StockDecrement struct {
	ProductId int
	Quantity  decimal.Decimal
}

// StockDecrementError lists every decrement that failed.
type StockDecrementError struct {
	Failures map[int]error
}

func (e *StockDecrementError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, productId := range slices.Sorted(maps.Keys(e.Failures)) {
		parts = append(parts, fmt.Sprintf("product %d: %v", productId, e.Failures[productId]))
	}
	return "stock update failed for " + strings.Join(parts, "; ")
}

// decrementStock applies every decrement in order and reports all failures together.
func decrementStock(ctx context.Context, tx *gorm.DB, items []StockDecrement) error {
	failures := make(map[int]error)
	for _, item := range items {
		result := tx.WithContext(ctx).Model(&Product{}).
			Where("id = ?", item.ProductId).
			Update("quantity", gorm.Expr("quantity - ?", item.Quantity))
		if result.Error != nil {
			failures[item.ProductId] = result.Error
			continue
		}
		if result.RowsAffected == 0 {
			failures[item.ProductId] = utils.ErrorRecordNotFound
		}
	}
	if len(failures) > 0 {
		return &StockDecrementError{Failures: failures}
	}
	return nil
}
