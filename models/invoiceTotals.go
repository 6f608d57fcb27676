package models

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// InvoiceLine is the line shape shared by quotations and sale invoices.
type InvoiceLine struct {
	ProductId             int             `gorm:"index;not null" json:"product_id"`
	ProductQuantity       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"product_quantity"`
	ProductSalePrice      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"product_sale_price"`
	ProductSaleDiscount   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"product_sale_discount"`
	ProductSaleCurrency   string          `gorm:"size:10" json:"product_sale_currency"`
	ProductSaleConversion decimal.Decimal `gorm:"type:decimal(20,4);default:1" json:"product_sale_conversion"`
}

func (l InvoiceLine) invoiceLine() InvoiceLine { return l }

// Gross is price x quantity x conversion.
func (l InvoiceLine) Gross() decimal.Decimal {
	return l.ProductSalePrice.Mul(l.ProductQuantity).Mul(l.ProductSaleConversion)
}

func (l InvoiceLine) DiscountAmount() decimal.Decimal {
	return l.Gross().Mul(l.ProductSaleDiscount).Div(hundred)
}

type lineItem interface {
	invoiceLine() InvoiceLine
}

type InvoiceTotals struct {
	TotalAmount   decimal.Decimal `json:"total_amount"`
	TotalDiscount decimal.Decimal `json:"total_product_discount"`
	TotalQty      decimal.Decimal `json:"total_product_qty"`
}

func (t InvoiceTotals) add(l InvoiceLine) InvoiceTotals {
	return InvoiceTotals{
		TotalAmount:   t.TotalAmount.Add(l.Gross()),
		TotalDiscount: t.TotalDiscount.Add(l.DiscountAmount()),
		TotalQty:      t.TotalQty.Add(l.ProductQuantity),
	}
}

func foldLines[T lineItem, A any](items []T, initial A, fn func(A, InvoiceLine) A) A {
	acc := initial
	for _, item := range items {
		acc = fn(acc, item.invoiceLine())
	}
	return acc
}

// CalculateInvoiceTotals sums gross amount, line discount and quantity over the items.
func CalculateInvoiceTotals[T lineItem](items []T) InvoiceTotals {
	return foldLines(items, InvoiceTotals{}, InvoiceTotals.add)
}

// SaleSettlement is the money outcome of converting a quotation.
type SaleSettlement struct {
	InvoiceTotals
	PurchaseCost decimal.Decimal
	FinalTotal   decimal.Decimal
	Paid         decimal.Decimal
	Due          decimal.Decimal
	Profit       decimal.Decimal
}

// SettleSale applies invoice discount, round off and payment to the line totals.
func SettleSale(totals InvoiceTotals, purchaseCost, invoiceDiscount, roundOff, paid decimal.Decimal) SaleSettlement {
	net := totals.TotalAmount.Sub(totals.TotalDiscount).Sub(invoiceDiscount)
	finalTotal := net.Add(roundOff)
	return SaleSettlement{
		InvoiceTotals: totals,
		PurchaseCost:  purchaseCost,
		FinalTotal:    finalTotal,
		Paid:          paid,
		Due:           finalTotal.Sub(paid),
		Profit:        net.Sub(purchaseCost),
	}
}
