package refund

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/shopsync-erp/internal/domain/entity"
)

// Adjustment ajuste a nivel de pedido dentro del reembolso.
type Adjustment struct {
	Reason    string
	Amount    decimal.Decimal
	TaxAmount decimal.Decimal
}

// RefundedItem línea reembolsada ya resuelta contra el catálogo del ERP.
// Amount es el neto (subtotal − impuesto) de la porción devuelta.
type RefundedItem struct {
	ItemCode string
	Amount   decimal.Decimal
	Tax      decimal.Decimal
	Qty      decimal.Decimal
}

// ReasonShippingRefund reason reportado por la tienda para reembolsos de envío.
const ReasonShippingRefund = "Shipping refund"

// ShippingRefundAmount suma amount + tax_amount de los ajustes cuyo reason es
// "Shipping refund". Ambos campos cuentan siempre: tax_amount se suma incluso
// cuando amount es cero.
func ShippingRefundAmount(adjustments []Adjustment) decimal.Decimal {
	total := decimal.Zero
	for _, adj := range adjustments {
		if adj.Reason == ReasonShippingRefund {
			total = total.Add(adj.Amount).Add(adj.TaxAmount)
		}
	}
	return total
}

// Totals acumulados de la porción reembolsada: impuesto total y subtotal
// total (neto + impuesto por línea, es decir el subtotal reportado por la tienda).
func Totals(items []RefundedItem) (tax, subtotal decimal.Decimal) {
	tax, subtotal = decimal.Zero, decimal.Zero
	for _, it := range items {
		tax = tax.Add(it.Tax)
		subtotal = subtotal.Add(it.Amount).Add(it.Tax)
	}
	return tax, subtotal
}

// ReversedItem construye la línea espejo de una línea original de la nota de
// entrega: cantidades y montos negados, demás campos intactos. Valor nuevo,
// nunca mutación del original.
func ReversedItem(orig entity.DeliveryNoteItem) entity.DeliveryNoteItem {
	out := orig
	out.Qty = orig.Qty.Neg()
	out.StockQty = orig.StockQty.Neg()
	out.Amount = orig.Amount.Neg()
	out.BaseAmount = orig.BaseAmount.Neg()
	out.NetAmount = orig.NetAmount.Neg()
	out.BaseNetAmount = orig.BaseNetAmount.Neg()
	out.TaxAmount = orig.TaxAmount.Neg()
	out.TotalAmount = orig.TotalAmount.Neg()
	return out
}

// ReversedSalesTaxRow fila de impuestos espejo para la cuenta de impuestos de
// venta: monto = impuesto reembolsado negado, total = subtotal reembolsado
// negado; los campos Base* escalan por la tasa de conversión del documento.
func ReversedSalesTaxRow(orig entity.DeliveryTaxRow, refundTax, refundSubtotal, conversionRate decimal.Decimal) entity.DeliveryTaxRow {
	out := orig
	negTax := refundTax.Neg()
	negSubtotal := refundSubtotal.Neg()
	out.TaxAmount = negTax
	out.TaxAmountAfterDiscount = negTax
	out.Total = negSubtotal
	out.BaseTaxAmount = negTax.Mul(conversionRate)
	out.BaseTaxAmountAfterDiscount = negTax.Mul(conversionRate)
	out.BaseTotal = negSubtotal.Mul(conversionRate)
	return out
}

// ReversedShippingRow fila espejo para la línea de envío: monto = reembolso de
// envío calculado, total = subtotal reembolsado negado más ese reembolso.
func ReversedShippingRow(orig entity.DeliveryTaxRow, shippingAmount, refundSubtotal, conversionRate decimal.Decimal) entity.DeliveryTaxRow {
	out := orig
	total := refundSubtotal.Neg().Add(shippingAmount)
	out.TaxAmount = shippingAmount
	out.TaxAmountAfterDiscount = shippingAmount
	out.Total = total
	out.BaseTaxAmount = shippingAmount.Mul(conversionRate)
	out.BaseTaxAmountAfterDiscount = shippingAmount.Mul(conversionRate)
	out.BaseTotal = total.Mul(conversionRate)
	return out
}
