package repository

import (
	"context"

	"github.com/jhoicas/shopsync-erp/internal/domain/entity"
)

// InventoryRepository define el puerto de consulta de stock para el colector
// de deltas. Un par (ítem, bodega) está sucio si la última modificación del
// stock es posterior a inventory_synced_on de su Ecommerce Item.
type InventoryRepository interface {
	// IsGroupWarehouse indica si la bodega es un nodo grupo (tiene descendientes).
	IsGroupWarehouse(ctx context.Context, warehouse string) (bool, error)
	// DirtyLevels devuelve las filas sucias de las bodegas indicadas, con
	// cantidades actual/reservada y costo de valoración calculado (tarifa de
	// entrada a la fecha/hora actual, si no la última tarifa de valoración, si no 0).
	DirtyLevels(ctx context.Context, warehouses []string, integration string) ([]entity.InventoryLevel, error)
	// DirtyLevelsOfGroupWarehouse consolida una bodega grupo: suma cantidades
	// de todas las bodegas descendientes y compara máximos de timestamps
	// para decidir si el ítem está sucio. Las filas reportan la bodega grupo.
	DirtyLevelsOfGroupWarehouse(ctx context.Context, warehouse, integration string) ([]entity.InventoryLevel, error)
}
