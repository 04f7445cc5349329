package refund_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/shopsync-erp/internal/domain/entity"
	"github.com/jhoicas/shopsync-erp/internal/domain/refund"
)

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// El reembolso de envío suma amount + tax_amount de los ajustes "Shipping
// refund"; tax_amount cuenta incluso cuando amount es cero, y los demás
// reasons se ignoran.
func TestShippingRefundAmount(t *testing.T) {
	adjustments := []refund.Adjustment{
		{Reason: refund.ReasonShippingRefund, Amount: d(-10), TaxAmount: d(-1.9)},
		{Reason: refund.ReasonShippingRefund, Amount: decimal.Zero, TaxAmount: d(-0.5)},
		{Reason: "Refund discrepancy", Amount: d(-99), TaxAmount: d(-9)},
	}

	got := refund.ShippingRefundAmount(adjustments)
	assert.True(t, d(-12.4).Equal(got), "esperado -12.4, obtenido %s", got)
}

// Los acumulados del reembolso: impuesto = Σ tax, subtotal = Σ (neto + tax),
// que es el subtotal reportado por la tienda.
func TestTotals(t *testing.T) {
	items := []refund.RefundedItem{
		{ItemCode: "A", Amount: d(90), Tax: d(10), Qty: d(1)},
		{ItemCode: "B", Amount: d(45), Tax: d(5), Qty: d(1)},
	}

	tax, subtotal := refund.Totals(items)
	assert.True(t, d(15).Equal(tax))
	assert.True(t, d(150).Equal(subtotal))
}

// La línea espejo niega cantidades y montos sin tocar el resto; aplicarla dos
// veces devuelve la línea original (involución).
func TestReversedItem_Involucion(t *testing.T) {
	orig := entity.DeliveryNoteItem{
		ItemCode:      "ITEM-001",
		Qty:           d(2),
		StockQty:      d(2),
		Rate:          d(50),
		Amount:        d(100),
		BaseAmount:    d(400),
		NetAmount:     d(100),
		BaseNetAmount: d(400),
		TaxAmount:     d(19),
		TotalAmount:   d(119),
	}

	rev := refund.ReversedItem(orig)

	assert.True(t, d(-2).Equal(rev.Qty))
	assert.True(t, d(-100).Equal(rev.Amount))
	assert.True(t, d(-119).Equal(rev.TotalAmount))
	assert.Equal(t, "ITEM-001", rev.ItemCode)
	assert.True(t, d(50).Equal(rev.Rate), "la tarifa unitaria no se niega")

	// El original no se muta y la doble reversión lo reproduce.
	assert.True(t, d(2).Equal(orig.Qty))
	back := refund.ReversedItem(rev)
	assert.True(t, orig.Qty.Equal(back.Qty))
	assert.True(t, orig.TotalAmount.Equal(back.TotalAmount))
}

// La fila de impuestos espejo lleva el impuesto reembolsado negado y el
// subtotal negado; los Base* escalan por la tasa de conversión.
func TestReversedSalesTaxRow(t *testing.T) {
	orig := entity.DeliveryTaxRow{
		AccountHead: "2408 - IVA - SC",
		Description: "IVA 19%",
		TaxAmount:   d(19),
		Total:       d(119),
	}

	row := refund.ReversedSalesTaxRow(orig, d(10), d(60), d(4))

	assert.True(t, d(-10).Equal(row.TaxAmount))
	assert.True(t, d(-10).Equal(row.TaxAmountAfterDiscount))
	assert.True(t, d(-60).Equal(row.Total))
	assert.True(t, d(-40).Equal(row.BaseTaxAmount))
	assert.True(t, d(-240).Equal(row.BaseTotal))
	assert.Equal(t, "2408 - IVA - SC", row.AccountHead)
}

// La fila de envío espejo absorbe el reembolso de envío (ya negativo) y su
// total es el subtotal reembolsado negado más ese reembolso.
func TestReversedShippingRow(t *testing.T) {
	orig := entity.DeliveryTaxRow{
		AccountHead: "4135 - Fletes - SC",
		Description: "Standard",
		TaxAmount:   d(15),
	}

	row := refund.ReversedShippingRow(orig, d(-15), d(60), decimal.NewFromInt(1))

	require.True(t, d(-15).Equal(row.TaxAmount))
	assert.True(t, d(-75).Equal(row.Total), "-60 - 15")
	assert.True(t, d(-75).Equal(row.BaseTotal))
}
