package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesInvoice factura de venta generada contra un pedido de venta enviado.
// Cuando IsReturn es true actúa como nota crédito (devolución).
type SalesInvoice struct {
	ID              string
	NamingSeries    string
	ShopOrderID     string
	ShopOrderNumber string
	ShopStatus      string
	SalesOrderID    string
	DeliveryNoteID  string // origen cuando la factura se deriva de una nota de entrega (nota crédito)
	CustomerID      string
	PostingDate     time.Time
	DueDate         time.Time
	IsReturn        bool
	GrandTotal      decimal.Decimal
	Items           []InvoiceItem
	DocStatus       int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// InvoiceItem línea de factura. IncomeAccount y CostCenter permiten el ruteo
// contable por vendor cuando el envío viaja como ítem.
type InvoiceItem struct {
	ItemCode      string
	Qty           decimal.Decimal
	Rate          decimal.Decimal
	Amount        decimal.Decimal
	IncomeAccount string
	CostCenter    string
}
