package entity

import "github.com/shopspring/decimal"

// Resultado del push de una fila de inventario a la tienda.
const (
	PushStatusSuccess  = "Success"
	PushStatusNotFound = "Not Found"
	PushStatusFailed   = "Failed"
)

// InventoryLevel fila de inventario pendiente de sincronizar: stock actual y
// reservado del par (ítem, bodega) más el costo de valoración calculado.
// Los campos de push se llenan durante el envío a la tienda.
type InventoryLevel struct {
	EcomItemID          string
	ItemCode            string
	IntegrationItemCode string
	VariantID           string
	Warehouse           string
	ActualQty           decimal.Decimal
	ReservedQty         decimal.Decimal
	Cost                decimal.Decimal

	// Estado del envío (se llena en el pipeline de push).
	ShopLocationID string
	Status         string
	FailureReason  string
}
