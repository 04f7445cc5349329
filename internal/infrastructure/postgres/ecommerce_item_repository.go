package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/shopsync-erp/internal/domain"
	"github.com/jhoicas/shopsync-erp/internal/domain/entity"
	"github.com/jhoicas/shopsync-erp/internal/domain/repository"
)

var _ repository.EcommerceItemRepository = (*EcommerceItemRepo)(nil)

// EcommerceItemRepo implementación sobre PostgreSQL (usable con pool o tx).
type EcommerceItemRepo struct {
	q Querier
}

// NewEcommerceItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewEcommerceItemRepository(q Querier) *EcommerceItemRepo {
	return &EcommerceItemRepo{q: q}
}

// Create persiste el mapeo. Constraint única sobre
// (integration, integration_item_code, variant_id).
func (r *EcommerceItemRepo) Create(ctx context.Context, item *entity.EcommerceItem) error {
	query := `
		INSERT INTO ecommerce_items (id, integration, erp_item_code, integration_item_code,
			variant_id, inventory_synced_on, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	syncedOn := (*time.Time)(nil)
	if !item.InventorySyncedOn.IsZero() {
		syncedOn = &item.InventorySyncedOn
	}
	_, err := r.q.Exec(ctx, query,
		item.ID, item.Integration, item.ERPItemCode, item.IntegrationItemCode,
		item.VariantID, syncedOn, item.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert ecommerce item: %w", err)
	}
	return nil
}

// GetByIntegrationItem busca el mapeo por producto/variante de la tienda; nil si no existe.
func (r *EcommerceItemRepo) GetByIntegrationItem(ctx context.Context, integrationItemCode, variantID string) (*entity.EcommerceItem, error) {
	query := `
		SELECT id, integration, erp_item_code, integration_item_code, variant_id,
			COALESCE(inventory_synced_on, 'epoch'::timestamptz), created_at
		FROM ecommerce_items
		WHERE integration_item_code = $1 AND variant_id = $2`
	var it entity.EcommerceItem
	err := r.q.QueryRow(ctx, query, integrationItemCode, variantID).Scan(
		&it.ID, &it.Integration, &it.ERPItemCode, &it.IntegrationItemCode, &it.VariantID,
		&it.InventorySyncedOn, &it.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ecommerce item: %w", err)
	}
	return &it, nil
}

// UpdateInventorySyncedOn fija la marca de última sincronización de inventario.
func (r *EcommerceItemRepo) UpdateInventorySyncedOn(ctx context.Context, id string, t time.Time) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE ecommerce_items SET inventory_synced_on = $2 WHERE id = $1`, id, t)
	if err != nil {
		return fmt.Errorf("update inventory_synced_on: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
