package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DeliveryNote nota de entrega contra un pedido de venta. Una nota de
// devolución (IsReturn) es el espejo estructural de la original con
// cantidades y montos negados, enlazada vía ReturnAgainst.
type DeliveryNote struct {
	ID              string
	NamingSeries    string
	ShopOrderID     string
	ShopOrderNumber string
	ShopStatus      string
	SalesOrderID    string
	CustomerID      string
	PostingDate     time.Time
	PostingTime     string // HH:MM:SS
	ConversionRate  decimal.Decimal
	IsReturn        bool
	ReturnAgainst   string
	Items           []DeliveryNoteItem
	Taxes           []DeliveryTaxRow
	DocStatus       int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// DeliveryNoteItem línea de la nota de entrega con montos en moneda del
// documento y en moneda base (Base*).
type DeliveryNoteItem struct {
	ItemCode      string
	Qty           decimal.Decimal
	StockQty      decimal.Decimal
	Rate          decimal.Decimal
	Amount        decimal.Decimal
	BaseAmount    decimal.Decimal
	NetAmount     decimal.Decimal
	BaseNetAmount decimal.Decimal
	TaxAmount     decimal.Decimal
	TotalAmount   decimal.Decimal
}

// DeliveryTaxRow fila de impuestos de la nota de entrega, con acumulados
// en moneda del documento y base.
type DeliveryTaxRow struct {
	AccountHead                string
	Description                string
	TaxAmount                  decimal.Decimal
	TaxAmountAfterDiscount     decimal.Decimal
	Total                      decimal.Decimal
	BaseTaxAmount              decimal.Decimal
	BaseTaxAmountAfterDiscount decimal.Decimal
	BaseTotal                  decimal.Decimal
}
