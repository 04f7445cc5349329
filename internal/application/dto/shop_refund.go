package dto

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// ShopRefund payload del reembolso (webhook refunds/create).
type ShopRefund struct {
	ID               int64                 `json:"id"`
	OrderID          int64                 `json:"order_id"`
	RefundLineItems  []ShopRefundLineItem  `json:"refund_line_items"`
	OrderAdjustments []ShopOrderAdjustment `json:"order_adjustments"`
}

// RefundOrderID id del pedido reembolsado como string.
func (r *ShopRefund) RefundOrderID() string {
	return strconv.FormatInt(r.OrderID, 10)
}

// ShopRefundLineItem línea reembolsada: referencia a la línea original más
// subtotal e impuesto devueltos.
type ShopRefundLineItem struct {
	LineItem ShopRefundedLine `json:"line_item"`
	Quantity int64            `json:"quantity"`
	Subtotal decimal.Decimal  `json:"subtotal"`
	TotalTax decimal.Decimal  `json:"total_tax"`
}

// ShopRefundedLine referencia mínima a la línea original del pedido.
type ShopRefundedLine struct {
	ProductID int64 `json:"product_id"`
	VariantID int64 `json:"variant_id"`
	Quantity  int64 `json:"quantity"`
}

// ShopOrderAdjustment ajuste a nivel de pedido dentro de un reembolso
// (ej: reason "Shipping refund"). Los montos suelen venir negativos.
type ShopOrderAdjustment struct {
	Reason    string          `json:"reason"`
	Amount    decimal.Decimal `json:"amount"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
}
