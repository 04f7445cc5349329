package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados documentales al estilo ERP: borrador, enviado (inmutable) y cancelado.
const (
	DocStatusDraft     = 0
	DocStatusSubmitted = 1
	DocStatusCancelled = 2
)

// SalesOrder representa el pedido de venta generado desde un pedido de la tienda.
// Se crea como máximo una vez por pedido externo (constraint único sobre ShopOrderID).
type SalesOrder struct {
	ID              string
	NamingSeries    string
	ShopOrderID     string // id del pedido en la tienda (único)
	ShopOrderNumber string // número visible del pedido (ej: "#1001")
	ShopStatus      string // financial_status reportado por la tienda
	CustomerID      string
	TransactionDate time.Time
	DeliveryDate    time.Time
	Note            string
	Items           []OrderItem
	Taxes           []TaxRow
	DocStatus       int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderItem línea del pedido de venta.
type OrderItem struct {
	ItemCode        string
	ItemName        string
	Qty             decimal.Decimal
	Rate            decimal.Decimal // precio neto unitario (descuentos, y si aplica impuestos, ya restados)
	DeliveryDate    time.Time
	Warehouse       string
	StockUOM        string
	DiscountPerUnit decimal.Decimal
}

// TaxDetail detalle por ítem dentro de una fila de impuestos: [tasa en %, monto].
type TaxDetail struct {
	Rate   decimal.Decimal
	Amount decimal.Decimal
}

// TaxRow fila contable de impuestos o envío. ChargeType es siempre "Actual":
// el monto es plano, nunca recalculado como porcentaje por el ERP.
type TaxRow struct {
	ChargeType        string
	AccountHead       string
	Description       string
	TaxAmount         decimal.Decimal
	CostCenter        string
	ItemWiseTaxDetail map[string]TaxDetail
}

// ChargeTypeActual único charge type emitido por el resolvedor.
const ChargeTypeActual = "Actual"
