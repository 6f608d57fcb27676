package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mmdatafocus/books_quotation/config"
	"github.com/mmdatafocus/books_quotation/utils"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("books-quotation/models")

const (
	maxConversionAttempts = 3
	saleCreatedAction     = "sale_invoice.created"
)

type NewQuotationConversion struct {
	PaidAmount decimal.Decimal `json:"paid_amount"`
}

// ConvertQuotationToSale creates a sale invoice from the quotation, posts its ledger transactions
// and takes the sold quantities out of stock, all in one db transaction. The quotation is left as is.
func ConvertQuotationToSale(ctx context.Context, quotationId int, paidAmount decimal.Decimal) (*SaleInvoice, error) {
	ctx, span := tracer.Start(ctx, "ConvertQuotationToSale",
		trace.WithAttributes(attribute.Int("quotation.id", quotationId)))
	defer span.End()

	if paidAmount.IsNegative() {
		return nil, utils.ValidationError("paid_amount must not be negative")
	}

	release, err := utils.ObtainLock(ctx, fmt.Sprintf("lock:quotation-convert:%d", quotationId), "QuotationInvoice", "ConvertQuotationToSale")
	if err != nil {
		return nil, err
	}
	defer release()

	var sale *SaleInvoice
	for attempt := 1; ; attempt++ {
		sale, err = convertQuotationOnce(ctx, quotationId, paidAmount)
		if err == nil {
			break
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// another sale took the number; the counter was already reset, start over
			if attempt < maxConversionAttempts {
				span.AddEvent("sale invoice number collision", trace.WithAttributes(attribute.Int("attempt", attempt)))
				continue
			}
			err = utils.ConflictError("could not assign a sale invoice number after %d attempts", attempt)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("sale_invoice.id", sale.ID))
	publishSaleCreated(ctx, sale)

	return GetSaleInvoice(ctx, sale.ID)
}

func convertQuotationOnce(ctx context.Context, quotationId int, paidAmount decimal.Decimal) (*SaleInvoice, error) {
	db := config.GetDB()

	tx := db.WithContext(ctx).Begin()
	quotation, err := utils.FetchModel[QuotationInvoice](ctx, tx, quotationId, "Products")
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if !config.AllowQuotationReconversion() {
		count, err := utils.ResourceCountWhere[SaleInvoice](ctx, tx, "quotation_invoice_id = ?", quotation.ID)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		if count > 0 {
			tx.Rollback()
			return nil, utils.ConflictError("quotation %d has already been converted to a sale", quotation.ID)
		}
	}

	lines := saleLinesFromQuotation(quotation)
	if len(lines) == 0 {
		tx.Rollback()
		return nil, utils.ValidationError("quotation %d has no products", quotation.ID)
	}

	productIds := make([]int, 0, len(lines))
	for _, l := range lines {
		productIds = append(productIds, l.ProductId)
	}
	prices, err := productPurchasePrices(ctx, tx, productIds)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	settlement := SettleSale(
		CalculateInvoiceTotals(lines),
		purchaseCost(lines, prices),
		quotation.Discount,
		quotation.RoundOffAmount,
		paidAmount,
	)

	accounts, err := accountIdsByCode(ctx, tx, saleAccountCodes...)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	// the number is taken last; any rollback from here on hands it back
	seqNo, err := utils.GetSequence[SaleInvoice](ctx, tx, "invoice_number")
	if err != nil {
		return nil, releaseSaleNumber(tx, quotationId, err)
	}
	sale := saleInvoiceFromQuotation(quotation, lines, settlement)
	sale.InvoiceNumber = int(seqNo)

	if err := tx.Create(&sale).Error; err != nil {
		return nil, releaseSaleNumber(tx, quotationId, err)
	}
	if _, err := postSaleTransactions(ctx, tx, &sale, settlement, accounts); err != nil {
		return nil, releaseSaleNumber(tx, quotationId, err)
	}
	if err := decrementStock(ctx, tx, stockDecrements(lines)); err != nil {
		return nil, releaseSaleNumber(tx, quotationId, err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, releaseSaleNumber(tx, quotationId, err)
	}
	return &sale, nil
}

// releaseSaleNumber rolls tx back and drops the cached counter so the next sale re-reads max(invoice_number).
func releaseSaleNumber(tx *gorm.DB, quotationId int, err error) error {
	tx.Rollback()
	if resetErr := utils.ResetSequence[SaleInvoice]("invoice_number"); resetErr != nil {
		config.LogError(config.GetLogger(), "QuotationInvoice", "ConvertQuotationToSale", "reset sale invoice sequence", quotationId, resetErr)
	}
	return err
}

// publishSaleCreated emits the sale event; failures are logged only.
func publishSaleCreated(ctx context.Context, sale *SaleInvoice) {
	logger := config.GetLogger()

	payload, err := json.Marshal(sale)
	if err != nil {
		config.LogError(logger, "QuotationInvoice", "publishSaleCreated", "marshal sale invoice", sale.ID, err)
		return
	}
	correlationId, _ := utils.GetCorrelationIdFromContext(ctx)

	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	_, err = config.PublishSalesEvent(publishCtx, config.PubSubMessage{
		ReferenceId:         sale.ID,
		ReferenceType:       "SaleInvoice",
		Action:              saleCreatedAction,
		TransactionDateTime: sale.Date,
		NewObj:              payload,
		CorrelationId:       correlationId,
	})
	if err != nil && !errors.Is(err, config.ErrPubSubDisabled) {
		config.LogError(logger, "QuotationInvoice", "publishSaleCreated", "publish "+saleCreatedAction, sale.ID, err)
	}
}
