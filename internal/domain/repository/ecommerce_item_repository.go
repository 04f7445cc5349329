package repository

import (
	"context"
	"time"

	"github.com/jhoicas/shopsync-erp/internal/domain/entity"
)

// EcommerceItemRepository define el puerto para los registros de mapeo
// ítem ERP ↔ producto/variante de la tienda.
type EcommerceItemRepository interface {
	Create(ctx context.Context, item *entity.EcommerceItem) error
	// GetByIntegrationItem busca por (product_id, variant_id) de la tienda; nil si no hay mapeo.
	GetByIntegrationItem(ctx context.Context, integrationItemCode, variantID string) (*entity.EcommerceItem, error)
	// UpdateInventorySyncedOn fija la marca de última sincronización de
	// inventario. Solo se invoca tras un push exitoso o "Not Found"; nunca en fallo.
	UpdateInventorySyncedOn(ctx context.Context, id string, t time.Time) error
}
