package entity

import "time"

// EcommerceItem registro de mapeo entre un ítem/variante del ERP y su
// producto/variante en la tienda. InventorySyncedOn marca la última vez que
// el inventario de este ítem fue reportado a la integración: un par
// (ítem, bodega) está "sucio" si el stock se modificó después de esa marca.
type EcommerceItem struct {
	ID                  string
	Integration         string // nombre de la integración (ej: "shopify")
	ERPItemCode         string
	IntegrationItemCode string // product_id en la tienda
	VariantID           string
	InventorySyncedOn   time.Time
	CreatedAt           time.Time
}
