package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/shopsync-erp/internal/domain/entity"
	"github.com/jhoicas/shopsync-erp/internal/domain/repository"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

// InventoryRepo consultas de stock para el colector de deltas. Solo lectura:
// el stock lo mueven los documentos del ERP, no la integración.
type InventoryRepo struct {
	q Querier
}

// NewInventoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryRepository(q Querier) *InventoryRepo {
	return &InventoryRepo{q: q}
}

// IsGroupWarehouse indica si la bodega es un nodo grupo. Una bodega
// desconocida cuenta como hoja: el colector simplemente no encuentra filas.
func (r *InventoryRepo) IsGroupWarehouse(ctx context.Context, warehouse string) (bool, error) {
	var isGroup bool
	err := r.q.QueryRow(ctx,
		`SELECT is_group FROM warehouses WHERE name = $1`, warehouse).Scan(&isGroup)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check group warehouse: %w", err)
	}
	return isGroup, nil
}

// DirtyLevels devuelve las filas sucias de bodegas hoja. El costo de cada
// fila es la última tarifa de entrada del ledger; si no hay entradas, la
// tarifa de valoración del bin; si tampoco, cero.
func (r *InventoryRepo) DirtyLevels(ctx context.Context, warehouses []string, integration string) ([]entity.InventoryLevel, error) {
	query := `
		SELECT e.id, e.erp_item_code, e.integration_item_code, e.variant_id, b.warehouse,
			b.actual_qty, b.reserved_qty,
			COALESCE(
				(SELECT sle.incoming_rate
				   FROM stock_ledger_entries sle
				  WHERE sle.item_code = b.item_code
				    AND sle.warehouse = b.warehouse
				    AND sle.incoming_rate > 0
				  ORDER BY sle.posting_datetime DESC
				  LIMIT 1),
				NULLIF(b.valuation_rate, 0),
				0) AS cost
		FROM bins b
		JOIN ecommerce_items e ON e.erp_item_code = b.item_code AND e.integration = $2
		WHERE b.warehouse = ANY($1)
		  AND (e.inventory_synced_on IS NULL OR b.modified > e.inventory_synced_on)
		ORDER BY e.erp_item_code, b.warehouse`
	rows, err := r.q.Query(ctx, query, warehouses, integration)
	if err != nil {
		return nil, fmt.Errorf("list dirty levels: %w", err)
	}
	defer rows.Close()
	return scanLevels(rows)
}

// DirtyLevelsOfGroupWarehouse consolida una bodega grupo: suma las cantidades
// de todas sus bodegas descendientes y usa el máximo de los timestamps de
// modificación para decidir si el ítem sigue sucio. Las filas reportan la
// bodega grupo, que es la mapeada a una ubicación de la tienda.
func (r *InventoryRepo) DirtyLevelsOfGroupWarehouse(ctx context.Context, warehouse, integration string) ([]entity.InventoryLevel, error) {
	query := `
		WITH RECURSIVE descendants AS (
			SELECT name FROM warehouses WHERE name = $1
			UNION ALL
			SELECT w.name FROM warehouses w JOIN descendants d ON w.parent_warehouse = d.name
		)
		SELECT e.id, e.erp_item_code, e.integration_item_code, e.variant_id,
			$1::text AS warehouse,
			SUM(b.actual_qty) AS actual_qty,
			SUM(b.reserved_qty) AS reserved_qty,
			COALESCE(MAX(NULLIF(b.valuation_rate, 0)), 0) AS cost
		FROM bins b
		JOIN descendants d ON b.warehouse = d.name
		JOIN ecommerce_items e ON e.erp_item_code = b.item_code AND e.integration = $2
		GROUP BY e.id, e.erp_item_code, e.integration_item_code, e.variant_id
		HAVING e.inventory_synced_on IS NULL OR MAX(b.modified) > e.inventory_synced_on
		ORDER BY e.erp_item_code`
	rows, err := r.q.Query(ctx, query, warehouse, integration)
	if err != nil {
		return nil, fmt.Errorf("list dirty levels of group warehouse: %w", err)
	}
	defer rows.Close()
	return scanLevels(rows)
}

func scanLevels(rows pgx.Rows) ([]entity.InventoryLevel, error) {
	var levels []entity.InventoryLevel
	for rows.Next() {
		var lvl entity.InventoryLevel
		if err := rows.Scan(&lvl.EcomItemID, &lvl.ItemCode, &lvl.IntegrationItemCode,
			&lvl.VariantID, &lvl.Warehouse, &lvl.ActualQty, &lvl.ReservedQty, &lvl.Cost); err != nil {
			return nil, fmt.Errorf("scan inventory level: %w", err)
		}
		levels = append(levels, lvl)
	}
	return levels, rows.Err()
}
