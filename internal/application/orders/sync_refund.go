package orders

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/shopsync-erp/internal/application/dto"
	"github.com/jhoicas/shopsync-erp/internal/domain"
	"github.com/jhoicas/shopsync-erp/internal/domain/entity"
	"github.com/jhoicas/shopsync-erp/internal/domain/refund"
	"github.com/jhoicas/shopsync-erp/internal/domain/repository"
)

// CreateRefund procesa un evento refunds/create: genera la nota de devolución
// espejo contra la nota de entrega original, la nota crédito derivada y la
// entrada de pago del reverso. Un reembolso de un pedido sin nota de entrega
// original termina en Invalid: no hay documento contra el cual devolver.
func (u *SyncUseCase) CreateRefund(ctx context.Context, requestID string, shopRefund *dto.ShopRefund) {
	setting, err := u.loadSetting(ctx, methodRefundCreate, shopRefund.RefundOrderID(), requestID)
	if err != nil {
		return
	}

	orderNumber := shopRefund.RefundOrderID()
	err = u.tx.Run(ctx, func(repos repository.Repos) error {
		number, txErr := u.createRefundDocs(ctx, repos, setting, shopRefund)
		if number != "" {
			orderNumber = number
		}
		return txErr
	})
	u.report(ctx, methodRefundCreate, orderNumber, requestID, err)
}

// createRefundDocs núcleo transaccional del reembolso. Devuelve el número
// visible del pedido (para la bitácora) apenas se conoce, aun en error.
func (u *SyncUseCase) createRefundDocs(
	ctx context.Context,
	repos repository.Repos,
	setting *entity.Setting,
	shopRefund *dto.ShopRefund,
) (string, error) {
	shopOrderID := shopRefund.RefundOrderID()

	orig, err := repos.DeliveryNotes.GetOriginalByShopOrderID(ctx, shopOrderID)
	if err != nil {
		return "", err
	}
	if orig == nil {
		return "", fmt.Errorf("%w: el pedido %s no tiene nota de entrega original, reembolso no aplicable",
			domain.ErrConflict, shopOrderID)
	}
	orderNumber := orig.ShopOrderNumber

	refunded, err := u.resolveRefundedItems(ctx, repos, shopRefund)
	if err != nil {
		return orderNumber, err
	}

	adjustments := make([]refund.Adjustment, 0, len(shopRefund.OrderAdjustments))
	for _, adj := range shopRefund.OrderAdjustments {
		adjustments = append(adjustments, refund.Adjustment{
			Reason:    adj.Reason,
			Amount:    adj.Amount,
			TaxAmount: adj.TaxAmount,
		})
	}
	shippingAmount := refund.ShippingRefundAmount(adjustments)
	refundTax, refundSubtotal := refund.Totals(refunded)

	if len(refunded) == 0 && shippingAmount.IsZero() {
		return orderNumber, fmt.Errorf("%w: el reembolso del pedido %s no tiene líneas ni ajuste de envío",
			domain.ErrConflict, orderNumber)
	}

	returnDN, err := u.createReturnNote(ctx, repos, setting, orig, refunded, refundTax, refundSubtotal, shippingAmount)
	if err != nil {
		return orderNumber, err
	}

	grandTotal := refundSubtotal.Neg().Add(shippingAmount)
	creditNote, err := u.createCreditNote(ctx, repos, setting, orig, returnDN, grandTotal)
	if err != nil {
		return orderNumber, err
	}

	now := time.Now()
	pe := &entity.PaymentEntry{
		ID:               uuid.New().String(),
		PaymentType:      entity.PaymentTypePay,
		PartyID:          orig.CustomerID,
		ReferenceDoctype: "Sales Invoice",
		ReferenceID:      creditNote.ID,
		ReferenceNo:      orderNumber + " Refund",
		PostingDate:      now,
		ReferenceDate:    now,
		BankAccount:      setting.CashBankAccount,
		PaidAmount:       grandTotal.Neg(),
		DocStatus:        entity.DocStatusDraft,
		CreatedAt:        now,
	}
	if err := repos.PaymentEntries.Create(ctx, pe); err != nil {
		return orderNumber, err
	}
	if err := repos.PaymentEntries.Submit(ctx, pe.ID); err != nil {
		return orderNumber, err
	}
	return orderNumber, nil
}

// resolveRefundedItems mapea cada línea reembolsada contra el catálogo.
// Amount es el neto: subtotal reportado menos el impuesto de la línea.
func (u *SyncUseCase) resolveRefundedItems(
	ctx context.Context,
	repos repository.Repos,
	shopRefund *dto.ShopRefund,
) ([]refund.RefundedItem, error) {
	out := make([]refund.RefundedItem, 0, len(shopRefund.RefundLineItems))
	for _, rli := range shopRefund.RefundLineItems {
		productID := strconv.FormatInt(rli.LineItem.ProductID, 10)
		variantID := strconv.FormatInt(rli.LineItem.VariantID, 10)
		ecom, err := repos.EcommerceItems.GetByIntegrationItem(ctx, productID, variantID)
		if err != nil {
			return nil, err
		}
		if ecom == nil {
			return nil, fmt.Errorf("%w: producto %s/%s del reembolso", domain.ErrItemsMissing, productID, variantID)
		}
		out = append(out, refund.RefundedItem{
			ItemCode: ecom.ERPItemCode,
			Amount:   rli.Subtotal.Sub(rli.TotalTax),
			Tax:      rli.TotalTax,
			Qty:      decimal.NewFromInt(rli.Quantity),
		})
	}
	return out, nil
}

// createReturnNote construye y envía la nota de devolución: las líneas
// originales cuyos ítems están en el conjunto reembolsado se niegan completas
// (el conjunto es solo filtro de pertenencia), y las filas de impuestos se
// reversan: la fila de la cuenta de impuestos de venta lleva el impuesto
// reembolsado, cualquier otra fila actúa como fila de envío y absorbe el
// ajuste "Shipping refund" aunque sea cero.
func (u *SyncUseCase) createReturnNote(
	ctx context.Context,
	repos repository.Repos,
	setting *entity.Setting,
	orig *entity.DeliveryNote,
	refunded []refund.RefundedItem,
	refundTax, refundSubtotal, shippingAmount decimal.Decimal,
) (*entity.DeliveryNote, error) {
	origCodes := make(map[string]bool, len(orig.Items))
	for _, it := range orig.Items {
		origCodes[it.ItemCode] = true
	}
	refundedCodes := make(map[string]bool, len(refunded))
	for _, r := range refunded {
		if !origCodes[r.ItemCode] {
			return nil, fmt.Errorf("%w: el ítem %s del reembolso no está en la nota de entrega original",
				domain.ErrConflict, r.ItemCode)
		}
		refundedCodes[r.ItemCode] = true
	}

	cr := orig.ConversionRate
	items := make([]entity.DeliveryNoteItem, 0, len(refunded))
	for _, it := range orig.Items {
		if refundedCodes[it.ItemCode] {
			items = append(items, refund.ReversedItem(it))
		}
	}

	taxes := make([]entity.DeliveryTaxRow, 0, len(orig.Taxes))
	for _, row := range orig.Taxes {
		if row.AccountHead == setting.DefaultSalesTaxAccount {
			taxes = append(taxes, refund.ReversedSalesTaxRow(row, refundTax, refundSubtotal, cr))
			continue
		}
		taxes = append(taxes, refund.ReversedShippingRow(row, shippingAmount, refundSubtotal, cr))
	}

	now := time.Now()
	dn := &entity.DeliveryNote{
		ID:              uuid.New().String(),
		NamingSeries:    setting.DeliveryNoteReturnSeries,
		ShopOrderID:     orig.ShopOrderID,
		ShopOrderNumber: orig.ShopOrderNumber,
		ShopStatus:      orig.ShopStatus,
		SalesOrderID:    orig.SalesOrderID,
		CustomerID:      orig.CustomerID,
		PostingDate:     now,
		PostingTime:     now.Format("15:04:05"),
		ConversionRate:  cr,
		IsReturn:        true,
		ReturnAgainst:   orig.ID,
		Items:           items,
		Taxes:           taxes,
		DocStatus:       entity.DocStatusDraft,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := repos.DeliveryNotes.Create(ctx, dn); err != nil {
		return nil, err
	}
	if err := repos.DeliveryNotes.Submit(ctx, dn.ID); err != nil {
		return nil, err
	}
	return dn, nil
}

// createCreditNote deriva la nota crédito de la nota de devolución.
func (u *SyncUseCase) createCreditNote(
	ctx context.Context,
	repos repository.Repos,
	setting *entity.Setting,
	orig, returnDN *entity.DeliveryNote,
	grandTotal decimal.Decimal,
) (*entity.SalesInvoice, error) {
	items := make([]entity.InvoiceItem, 0, len(returnDN.Items))
	for _, it := range returnDN.Items {
		items = append(items, entity.InvoiceItem{
			ItemCode: it.ItemCode,
			Qty:      it.Qty,
			Rate:     it.Rate,
			Amount:   it.NetAmount,
		})
	}

	now := time.Now()
	inv := &entity.SalesInvoice{
		ID:              uuid.New().String(),
		NamingSeries:    setting.CreditNoteSeries,
		ShopOrderID:     orig.ShopOrderID,
		ShopOrderNumber: orig.ShopOrderNumber,
		ShopStatus:      orig.ShopStatus,
		SalesOrderID:    orig.SalesOrderID,
		DeliveryNoteID:  returnDN.ID,
		CustomerID:      orig.CustomerID,
		PostingDate:     now,
		DueDate:         now,
		IsReturn:        true,
		GrandTotal:      grandTotal,
		Items:           items,
		DocStatus:       entity.DocStatusDraft,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := repos.SalesInvoices.Create(ctx, inv); err != nil {
		return nil, err
	}
	if err := repos.SalesInvoices.Submit(ctx, inv.ID); err != nil {
		return nil, err
	}
	return inv, nil
}
