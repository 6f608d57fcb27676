package models

import (
	"context"
	"strings"

	"github.com/mmdatafocus/books_quotation/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// resolveLineProducts maps every line item to a product id before the invoice is built.
// Items without product_id are looked up by isbn; an unknown isbn carrying product_data creates the product.
// The returned slice is parallel to items.
func resolveLineProducts(ctx context.Context, tx *gorm.DB, items []NewQuotationInvoiceProduct) ([]int, error) {
	resolved := make([]int, len(items))
	byIsbn := make(map[string]int)
	var explicitIds []int

	for i, item := range items {
		if item.ProductId > 0 {
			resolved[i] = item.ProductId
			explicitIds = append(explicitIds, item.ProductId)
			continue
		}

		isbn := strings.TrimSpace(item.Isbn)
		if isbn == "" {
			return nil, utils.ValidationError("could not resolve product for isbn N/A")
		}
		if id, ok := byIsbn[isbn]; ok {
			resolved[i] = id
			continue
		}
		id, err := resolveProductByIsbn(ctx, tx, isbn, item.ProductData)
		if err != nil {
			return nil, err
		}
		if id == 0 {
			return nil, utils.ValidationError("could not resolve product for isbn %s", isbn)
		}
		byIsbn[isbn] = id
		resolved[i] = id
	}

	if err := validateProductIds(ctx, tx, explicitIds); err != nil {
		return nil, err
	}
	return resolved, nil
}

func validateProductIds(ctx context.Context, tx *gorm.DB, ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	ids = utils.UniqueSlice(ids)
	count, err := utils.ResourceCountWhere[Product](ctx, tx, "id IN ?", ids)
	if err != nil {
		return err
	}
	if count != int64(len(ids)) {
		return utils.ValidationError("one or more products do not exist")
	}
	return nil
}

// resolveProductByIsbn returns 0 when the isbn is unknown and no product data was supplied.
func resolveProductByIsbn(ctx context.Context, tx *gorm.DB, isbn string, data *NewProductData) (int, error) {
	existing, found, err := utils.FetchModelWhere[Product](ctx, tx, "isbn = ?", isbn)
	if err != nil {
		return 0, err
	}
	if found {
		return existing.ID, nil
	}
	if data == nil {
		return 0, nil
	}

	product, err := data.toProduct(ctx, tx, isbn)
	if err != nil {
		return 0, err
	}
	err = tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "isbn"}},
		DoNothing: true,
	}).Create(product).Error
	if err != nil {
		return 0, err
	}

	// re-read: a concurrent writer may have inserted the same isbn first
	existing, found, err = utils.FetchModelWhere[Product](ctx, tx, "isbn = ?", isbn)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, utils.ValidationError("could not resolve product for isbn %s", isbn)
	}
	return existing.ID, nil
}

func (data NewProductData) toProduct(ctx context.Context, tx *gorm.DB, isbn string) (*Product, error) {
	publisherId := optionalId(data.PublisherId)
	if publisherId == nil && strings.TrimSpace(data.Publisher) != "" {
		id, err := resolvePublisher(ctx, tx, data.Publisher)
		if err != nil {
			return nil, err
		}
		publisherId = &id
	}

	name := strings.TrimSpace(data.Name)
	if name == "" {
		name = isbn
	}
	return &Product{
		Isbn:           &isbn,
		Name:           name,
		Author:         data.Author,
		SalePrice:      data.SalePrice.Decimal,
		PurchasePrice:  data.PurchasePrice.Decimal,
		Quantity:       data.Quantity.Decimal,
		Unit:           data.Unit,
		SubUnit:        data.SubUnit,
		UnitConversion: data.UnitConversion.Decimal,
		CurrencyId:     optionalId(data.CurrencyId),
		PublisherId:    publisherId,
		CategoryId:     optionalId(data.CategoryId),
	}, nil
}
