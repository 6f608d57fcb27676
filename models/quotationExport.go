package models

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const quotationSheet = "Quotations"

var quotationExportHeadings = []interface{}{
	"ID", "Date", "Invoice", "Customer", "User", "Order Number",
	"Total Qty", "Total Amount", "Product Discount", "Discount", "Round Off", "Net Amount",
}

func quotationExportRow(q *QuotationInvoice) []interface{} {
	var customerName, userName string
	if q.Customer != nil {
		customerName = q.Customer.Name
	}
	if q.User != nil {
		userName = q.User.Name
	}
	net := q.TotalAmount.Sub(q.TotalProductDiscount).Sub(q.Discount).Add(q.RoundOffAmount)
	return []interface{}{
		q.ID,
		q.Date.Format("2006-01-02"),
		fmt.Sprintf("%s%d", q.Prefix, q.InvoiceNumber),
		customerName,
		userName,
		q.OrderNumber,
		q.TotalProductQty.InexactFloat64(),
		q.TotalAmount.InexactFloat64(),
		q.TotalProductDiscount.InexactFloat64(),
		q.Discount.InexactFloat64(),
		q.RoundOffAmount.InexactFloat64(),
		net.InexactFloat64(),
	}
}

// ExportQuotationsExcel writes every quotation matching the date filter to a workbook, newest first.
func ExportQuotationsExcel(ctx context.Context, filter QuotationFilter) (*excelize.File, error) {
	filter.Skip, filter.Limit = 0, 0
	quotations, err := PaginateQuotations(ctx, filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", quotationSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(quotationSheet, "A1", &quotationExportHeadings); err != nil {
		return nil, err
	}
	for i, q := range quotations {
		row := quotationExportRow(q)
		if err := f.SetSheetRow(quotationSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, err
		}
	}
	return f, nil
}
