package dto

import (
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"
)

// ShopOrder payload del pedido tal como lo entrega la tienda (webhook
// orders/create o fetch histórico). Los montos llegan como strings decimales
// y se deserializan directo a decimal.Decimal.
type ShopOrder struct {
	ID                  int64               `json:"id"`
	Name                string              `json:"name"` // número visible, ej "#1001"
	CreatedAt           string              `json:"created_at"`
	Note                string              `json:"note"`
	FinancialStatus     string              `json:"financial_status"`
	TaxesIncluded       bool                `json:"taxes_included"`
	Customer            *ShopCustomer       `json:"customer"`
	BillingAddress      json.RawMessage     `json:"billing_address"`
	ShippingAddress     json.RawMessage     `json:"shipping_address"`
	LineItems           []ShopLineItem      `json:"line_items"`
	ShippingLines       []ShopShippingLine  `json:"shipping_lines"`
	Fulfillments        []json.RawMessage   `json:"fulfillments"`
	PaymentGatewayNames []string            `json:"payment_gateway_names"`
}

// OrderID id del pedido como string (los documentos ERP guardan ids externos como texto).
func (o *ShopOrder) OrderID() string {
	return strconv.FormatInt(o.ID, 10)
}

// ShopCustomer cliente embebido en el pedido.
type ShopCustomer struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// CustomerID id del cliente como string; vacío si no hay cliente.
func (c *ShopCustomer) CustomerID() string {
	if c == nil || c.ID == 0 {
		return ""
	}
	return strconv.FormatInt(c.ID, 10)
}

// ShopLineItem línea del pedido.
type ShopLineItem struct {
	ID                  int64                    `json:"id"`
	Title               string                   `json:"title"`
	Name                string                   `json:"name"`
	ProductID           int64                    `json:"product_id"`
	VariantID           int64                    `json:"variant_id"`
	Vendor              string                   `json:"vendor"`
	Quantity            int64                    `json:"quantity"`
	Price               decimal.Decimal          `json:"price"`
	ProductExists       bool                     `json:"product_exists"`
	UOM                 string                   `json:"uom"`
	TaxLines            []ShopTaxLine            `json:"tax_lines"`
	DiscountAllocations []ShopDiscountAllocation `json:"discount_allocations"`
}

// ShopTaxLine impuesto aplicado a una línea o a un cargo de envío.
// Rate llega como fracción (0–1).
type ShopTaxLine struct {
	Title string          `json:"title"`
	Rate  decimal.Decimal `json:"rate"`
	Price decimal.Decimal `json:"price"`
}

// ShopDiscountAllocation porción de descuento asignada a una línea.
type ShopDiscountAllocation struct {
	Amount decimal.Decimal `json:"amount"`
}

// ShopShippingLine cargo de envío del pedido, con sus propios descuentos e impuestos.
type ShopShippingLine struct {
	Title               string                   `json:"title"`
	Price               decimal.Decimal          `json:"price"`
	TaxLines            []ShopTaxLine            `json:"tax_lines"`
	DiscountAllocations []ShopDiscountAllocation `json:"discount_allocations"`
}
