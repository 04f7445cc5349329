package repository

import "context"

// ItemRepository define el puerto mínimo sobre el catálogo de ítems del ERP
// que necesita el sincronizador de productos.
type ItemRepository interface {
	Exists(ctx context.Context, itemCode string) (bool, error)
	Create(ctx context.Context, itemCode, itemName, uom string) error
}
