package entity

import "time"

// Customer cliente del ERP mapeado a un cliente de la tienda.
// Las direcciones se guardan como JSON crudo del payload de la tienda.
type Customer struct {
	ID              string
	ShopCustomerID  string // id del cliente en la tienda (único)
	Name            string
	Email           string
	Phone           string
	BillingAddress  string // JSON
	ShippingAddress string // JSON
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
