package inventory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/shopsync-erp/internal/application/dto"
)

// StorefrontInventoryAPI operaciones de inventario contra la API de la
// tienda. Las implementaciones devuelven domain.ErrRemoteNotFound cuando el
// recurso ya no existe del lado de la tienda (variante o nivel borrado).
type StorefrontInventoryAPI interface {
	FindVariant(ctx context.Context, variantID string) (*dto.ShopVariant, error)
	// SetInventoryLevel fija el disponible del par (ubicación, inventory item)
	// llevando además el costo de valoración calculado para la fila.
	SetInventoryLevel(ctx context.Context, locationID string, inventoryItemID, available int64, cost decimal.Decimal) error
	UpdateItemCost(ctx context.Context, inventoryItemID int64, cost decimal.Decimal) error
}
