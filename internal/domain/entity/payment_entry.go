package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de entrada de pago.
const (
	PaymentTypeReceive = "Receive"
	PaymentTypePay     = "Pay"
)

// PaymentEntry entrada de pago contra una factura (cobro) o contra una
// nota crédito (reverso de un reembolso).
type PaymentEntry struct {
	ID                string
	PaymentType       string
	PartyID           string // cliente
	ReferenceDoctype  string // "Sales Invoice"
	ReferenceID       string
	ReferenceNo       string
	PostingDate       time.Time
	ReferenceDate     time.Time
	BankAccount       string
	PaidAmount        decimal.Decimal
	DocStatus         int
	CreatedAt         time.Time
}
