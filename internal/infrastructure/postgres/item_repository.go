package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/shopsync-erp/internal/domain"
	"github.com/jhoicas/shopsync-erp/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo acceso mínimo al catálogo de ítems del ERP (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

// Exists indica si el código de ítem ya está en el catálogo.
func (r *ItemRepo) Exists(ctx context.Context, itemCode string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM items WHERE item_code = $1)`, itemCode).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check item exists: %w", err)
	}
	return exists, nil
}

// Create registra un ítem nuevo en el catálogo.
func (r *ItemRepo) Create(ctx context.Context, itemCode, itemName, uom string) error {
	query := `
		INSERT INTO items (item_code, item_name, stock_uom, created_at)
		VALUES ($1, $2, $3, now())`
	_, err := r.q.Exec(ctx, query, itemCode, itemName, uom)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}
