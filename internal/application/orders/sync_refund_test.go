package orders_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/shopsync-erp/internal/application/dto"
	"github.com/jhoicas/shopsync-erp/internal/domain/entity"
)

// partialRefund reembolso de 1 de las 2 unidades (subtotal 55 con 5 de
// impuesto) más la devolución completa del envío de 15.
func partialRefund() *dto.ShopRefund {
	return &dto.ShopRefund{
		ID:      900,
		OrderID: 1001001,
		RefundLineItems: []dto.ShopRefundLineItem{{
			LineItem: dto.ShopRefundedLine{ProductID: 11, VariantID: 21, Quantity: 1},
			Quantity: 1,
			Subtotal: decimal.NewFromInt(55),
			TotalTax: decimal.NewFromInt(5),
		}},
		OrderAdjustments: []dto.ShopOrderAdjustment{{
			Reason: "Shipping refund", Amount: decimal.NewFromInt(-15),
		}},
	}
}

// Un reembolso parcial genera la nota de devolución espejo, la nota crédito
// derivada y la entrada de pago del reverso.
func TestCreateRefund_CadenaCompleta(t *testing.T) {
	s := newMemStore()
	s.seedMapping("11", "21", "ITEM-001")
	uc, _ := newTestEngine(s, engineSetting(), nil)

	uc.CreateOrder(context.Background(), "req-1", paidOrder())
	uc.CreateRefund(context.Background(), "req-2", partialRefund())

	// Nota de devolución: espejo negado de la porción reembolsada.
	var returnDN *entity.DeliveryNote
	for _, dn := range s.deliveryNotes {
		if dn.IsReturn {
			returnDN = dn
		}
	}
	require.NotNil(t, returnDN)
	assert.Equal(t, entity.DocStatusSubmitted, returnDN.DocStatus)
	assert.Equal(t, "DN-RET-", returnDN.NamingSeries)
	assert.NotEmpty(t, returnDN.ReturnAgainst)

	// La línea original se niega completa: el conjunto reembolsado actúa solo
	// como filtro de pertenencia, no como porción.
	require.Len(t, returnDN.Items, 1)
	it := returnDN.Items[0]
	assert.True(t, decimal.NewFromInt(-2).Equal(it.Qty))
	assert.True(t, decimal.NewFromInt(-100).Equal(it.Amount))
	assert.True(t, decimal.NewFromInt(-10).Equal(it.TaxAmount))
	assert.True(t, decimal.NewFromInt(50).Equal(it.Rate), "la tarifa unitaria no se niega")

	// Filas de impuestos: IVA reversado y la fila de envío absorbe el ajuste.
	require.Len(t, returnDN.Taxes, 2)
	assert.True(t, decimal.NewFromInt(-5).Equal(returnDN.Taxes[0].TaxAmount))
	assert.True(t, decimal.NewFromInt(-55).Equal(returnDN.Taxes[0].Total))
	assert.True(t, decimal.NewFromInt(-15).Equal(returnDN.Taxes[1].TaxAmount))
	assert.True(t, decimal.NewFromInt(-70).Equal(returnDN.Taxes[1].Total))

	// Nota crédito: -55 del subtotal reembolsado - 15 del envío.
	var creditNote *entity.SalesInvoice
	for _, inv := range s.invoices {
		if inv.IsReturn {
			creditNote = inv
		}
	}
	require.NotNil(t, creditNote)
	assert.Equal(t, "CN-SHOP-", creditNote.NamingSeries)
	assert.Equal(t, returnDN.ID, creditNote.DeliveryNoteID)
	assert.True(t, decimal.NewFromInt(-70).Equal(creditNote.GrandTotal),
		"grand total esperado -70, obtenido %s", creditNote.GrandTotal)

	// Entrada de pago del reverso: egreso positivo por caja.
	require.Len(t, s.payments, 2, "cobro original + reverso")
	pe := s.payments[1]
	assert.Equal(t, entity.PaymentTypePay, pe.PaymentType)
	assert.Equal(t, "#1001 Refund", pe.ReferenceNo)
	assert.Equal(t, "1101 - Caja - SC", pe.BankAccount)
	assert.True(t, decimal.NewFromInt(70).Equal(pe.PaidAmount))
	assert.Equal(t, entity.DocStatusSubmitted, pe.DocStatus)

	entry := s.lastLog()
	assert.Equal(t, "refunds/create", entry.Method)
	assert.Equal(t, entity.SyncStatusSuccess, entry.Status)
	assert.Contains(t, entry.Message, "#1001")
}

// Un reembolso solo de envío genera la nota de devolución sin líneas: las
// filas de impuestos de venta quedan en cero y la de envío carga el ajuste.
func TestCreateRefund_SoloEnvio(t *testing.T) {
	s := newMemStore()
	s.seedMapping("11", "21", "ITEM-001")
	uc, _ := newTestEngine(s, engineSetting(), nil)

	uc.CreateOrder(context.Background(), "req-1", paidOrder())

	shopRefund := partialRefund()
	shopRefund.RefundLineItems = nil
	uc.CreateRefund(context.Background(), "req-2", shopRefund)

	var returnDN *entity.DeliveryNote
	for _, dn := range s.deliveryNotes {
		if dn.IsReturn {
			returnDN = dn
		}
	}
	require.NotNil(t, returnDN)
	assert.Empty(t, returnDN.Items)

	var creditNote *entity.SalesInvoice
	for _, inv := range s.invoices {
		if inv.IsReturn {
			creditNote = inv
		}
	}
	require.NotNil(t, creditNote)
	assert.True(t, decimal.NewFromInt(-15).Equal(creditNote.GrandTotal))
}

// Un reembolso total produce la negación exacta de la nota de entrega
// original: línea por línea y fila por fila, los totales cambian solo de signo.
func TestCreateRefund_SimetriaTotal(t *testing.T) {
	s := newMemStore()
	s.seedMapping("11", "21", "ITEM-001")
	uc, _ := newTestEngine(s, engineSetting(), nil)

	uc.CreateOrder(context.Background(), "req-1", paidOrder())

	shopRefund := partialRefund()
	shopRefund.RefundLineItems[0].Quantity = 2
	shopRefund.RefundLineItems[0].Subtotal = decimal.NewFromInt(110)
	shopRefund.RefundLineItems[0].TotalTax = decimal.NewFromInt(10)
	uc.CreateRefund(context.Background(), "req-2", shopRefund)

	var orig, returnDN *entity.DeliveryNote
	for _, dn := range s.deliveryNotes {
		if dn.IsReturn {
			returnDN = dn
		} else {
			orig = dn
		}
	}
	require.NotNil(t, orig)
	require.NotNil(t, returnDN)

	require.Len(t, returnDN.Items, 1)
	assert.True(t, orig.Items[0].Qty.Neg().Equal(returnDN.Items[0].Qty))
	assert.True(t, orig.Items[0].Amount.Neg().Equal(returnDN.Items[0].Amount),
		"monto original %s, devuelto %s", orig.Items[0].Amount, returnDN.Items[0].Amount)
	assert.True(t, orig.Items[0].TaxAmount.Neg().Equal(returnDN.Items[0].TaxAmount))
	assert.True(t, orig.Items[0].TotalAmount.Neg().Equal(returnDN.Items[0].TotalAmount))

	require.Len(t, returnDN.Taxes, 2)
	assert.True(t, orig.Taxes[0].Total.Neg().Equal(returnDN.Taxes[0].Total))
	assert.True(t, orig.Taxes[1].Total.Neg().Equal(returnDN.Taxes[1].Total))
}

// Sin ajuste de envío la fila de envío igual aparece, en cero y con el total
// corrido sobre el subtotal reembolsado negado.
func TestCreateRefund_SinAjusteDeEnvio(t *testing.T) {
	s := newMemStore()
	s.seedMapping("11", "21", "ITEM-001")
	uc, _ := newTestEngine(s, engineSetting(), nil)

	uc.CreateOrder(context.Background(), "req-1", paidOrder())

	shopRefund := partialRefund()
	shopRefund.OrderAdjustments = nil
	uc.CreateRefund(context.Background(), "req-2", shopRefund)

	var returnDN *entity.DeliveryNote
	for _, dn := range s.deliveryNotes {
		if dn.IsReturn {
			returnDN = dn
		}
	}
	require.NotNil(t, returnDN)
	require.Len(t, returnDN.Taxes, 2)
	assert.True(t, returnDN.Taxes[1].TaxAmount.IsZero())
	assert.True(t, decimal.NewFromInt(-55).Equal(returnDN.Taxes[1].Total))
}

// Un reembolso de un pedido sin nota de entrega original es Invalid: no hay
// documento contra el cual devolver.
func TestCreateRefund_SinNotaOriginal(t *testing.T) {
	s := newMemStore()
	uc, _ := newTestEngine(s, engineSetting(), nil)

	uc.CreateRefund(context.Background(), "req-1", partialRefund())

	assert.Empty(t, s.deliveryNotes)
	entry := s.lastLog()
	require.NotNil(t, entry)
	assert.Equal(t, entity.SyncStatusInvalid, entry.Status)
	assert.Contains(t, entry.Message, "no tiene nota de entrega original")
}

// Un reembolso vacío (sin líneas ni ajuste de envío) es Invalid.
func TestCreateRefund_Vacio(t *testing.T) {
	s := newMemStore()
	s.seedMapping("11", "21", "ITEM-001")
	uc, _ := newTestEngine(s, engineSetting(), nil)

	uc.CreateOrder(context.Background(), "req-1", paidOrder())

	shopRefund := partialRefund()
	shopRefund.RefundLineItems = nil
	shopRefund.OrderAdjustments = nil
	uc.CreateRefund(context.Background(), "req-2", shopRefund)

	assert.Len(t, s.deliveryNotes, 1, "solo la nota de entrega original")
	assert.Equal(t, entity.SyncStatusInvalid, s.lastLog().Status)
}
