package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/shopsync-erp/internal/domain"
	"github.com/jhoicas/shopsync-erp/internal/domain/entity"
	"github.com/jhoicas/shopsync-erp/internal/domain/repository"
)

var _ repository.DeliveryNoteRepository = (*DeliveryNoteRepo)(nil)

// DeliveryNoteRepo implementación sobre PostgreSQL (usable con pool o tx).
type DeliveryNoteRepo struct {
	q Querier
}

// NewDeliveryNoteRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDeliveryNoteRepository(q Querier) *DeliveryNoteRepo {
	return &DeliveryNoteRepo{q: q}
}

// Create persiste la nota de entrega con sus líneas y filas de impuestos.
func (r *DeliveryNoteRepo) Create(ctx context.Context, dn *entity.DeliveryNote) error {
	query := `
		INSERT INTO delivery_notes (id, naming_series, shop_order_id, shop_order_number, shop_status,
			sales_order_id, customer_id, posting_date, posting_time, conversion_rate,
			is_return, return_against, docstatus, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	returnAgainst := (*string)(nil)
	if dn.ReturnAgainst != "" {
		returnAgainst = &dn.ReturnAgainst
	}
	_, err := r.q.Exec(ctx, query,
		dn.ID, dn.NamingSeries, dn.ShopOrderID, dn.ShopOrderNumber, dn.ShopStatus,
		dn.SalesOrderID, dn.CustomerID, dn.PostingDate, dn.PostingTime, dn.ConversionRate,
		dn.IsReturn, returnAgainst, dn.DocStatus, dn.CreatedAt, dn.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert delivery note: %w", err)
	}

	for i, it := range dn.Items {
		query := `
			INSERT INTO delivery_note_items (delivery_note_id, idx, item_code, qty, stock_qty, rate,
				amount, base_amount, net_amount, base_net_amount, tax_amount, total_amount)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
		_, err := r.q.Exec(ctx, query,
			dn.ID, i, it.ItemCode, it.Qty, it.StockQty, it.Rate,
			it.Amount, it.BaseAmount, it.NetAmount, it.BaseNetAmount, it.TaxAmount, it.TotalAmount,
		)
		if err != nil {
			return fmt.Errorf("insert delivery note item %s: %w", it.ItemCode, err)
		}
	}

	for i, tax := range dn.Taxes {
		query := `
			INSERT INTO delivery_note_taxes (delivery_note_id, idx, account_head, description,
				tax_amount, tax_amount_after_discount, total,
				base_tax_amount, base_tax_amount_after_discount, base_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
		_, err := r.q.Exec(ctx, query,
			dn.ID, i, tax.AccountHead, tax.Description,
			tax.TaxAmount, tax.TaxAmountAfterDiscount, tax.Total,
			tax.BaseTaxAmount, tax.BaseTaxAmountAfterDiscount, tax.BaseTotal,
		)
		if err != nil {
			return fmt.Errorf("insert delivery note tax %s: %w", tax.AccountHead, err)
		}
	}
	return nil
}

const deliveryNoteColumns = `id, naming_series, shop_order_id, shop_order_number, shop_status,
	sales_order_id, customer_id, posting_date, posting_time, conversion_rate,
	is_return, COALESCE(return_against, ''), docstatus, created_at, updated_at`

// GetOriginalByShopOrderID obtiene la nota de entrega no-devolución del
// pedido externo; nil si no existe. Es el documento contra el que se
// construye el espejo de un reembolso.
func (r *DeliveryNoteRepo) GetOriginalByShopOrderID(ctx context.Context, shopOrderID string) (*entity.DeliveryNote, error) {
	query := `
		SELECT ` + deliveryNoteColumns + `
		FROM delivery_notes
		WHERE shop_order_id = $1 AND is_return = false
		ORDER BY created_at LIMIT 1`
	dn, err := r.scanNote(r.q.QueryRow(ctx, query, shopOrderID))
	if err != nil || dn == nil {
		return nil, err
	}
	if err := r.loadChildren(ctx, dn); err != nil {
		return nil, err
	}
	return dn, nil
}

// ListByShopOrderID lista todas las notas (originales y devoluciones) del
// pedido externo, sin tablas hijas.
func (r *DeliveryNoteRepo) ListByShopOrderID(ctx context.Context, shopOrderID string) ([]*entity.DeliveryNote, error) {
	query := `
		SELECT ` + deliveryNoteColumns + `
		FROM delivery_notes WHERE shop_order_id = $1 ORDER BY created_at`
	rows, err := r.q.Query(ctx, query, shopOrderID)
	if err != nil {
		return nil, fmt.Errorf("list delivery notes: %w", err)
	}
	defer rows.Close()
	var notes []*entity.DeliveryNote
	for rows.Next() {
		dn, err := r.scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, dn)
	}
	return notes, rows.Err()
}

func (r *DeliveryNoteRepo) scanNote(row pgx.Row) (*entity.DeliveryNote, error) {
	var dn entity.DeliveryNote
	err := row.Scan(
		&dn.ID, &dn.NamingSeries, &dn.ShopOrderID, &dn.ShopOrderNumber, &dn.ShopStatus,
		&dn.SalesOrderID, &dn.CustomerID, &dn.PostingDate, &dn.PostingTime, &dn.ConversionRate,
		&dn.IsReturn, &dn.ReturnAgainst, &dn.DocStatus, &dn.CreatedAt, &dn.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan delivery note: %w", err)
	}
	return &dn, nil
}

func (r *DeliveryNoteRepo) loadChildren(ctx context.Context, dn *entity.DeliveryNote) error {
	itemsQuery := `
		SELECT item_code, qty, stock_qty, rate, amount, base_amount,
			net_amount, base_net_amount, tax_amount, total_amount
		FROM delivery_note_items WHERE delivery_note_id = $1 ORDER BY idx`
	rows, err := r.q.Query(ctx, itemsQuery, dn.ID)
	if err != nil {
		return fmt.Errorf("list delivery note items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.DeliveryNoteItem
		if err := rows.Scan(&it.ItemCode, &it.Qty, &it.StockQty, &it.Rate, &it.Amount, &it.BaseAmount,
			&it.NetAmount, &it.BaseNetAmount, &it.TaxAmount, &it.TotalAmount); err != nil {
			return fmt.Errorf("scan delivery note item: %w", err)
		}
		dn.Items = append(dn.Items, it)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	taxesQuery := `
		SELECT account_head, description, tax_amount, tax_amount_after_discount, total,
			base_tax_amount, base_tax_amount_after_discount, base_total
		FROM delivery_note_taxes WHERE delivery_note_id = $1 ORDER BY idx`
	taxRows, err := r.q.Query(ctx, taxesQuery, dn.ID)
	if err != nil {
		return fmt.Errorf("list delivery note taxes: %w", err)
	}
	defer taxRows.Close()
	for taxRows.Next() {
		var tax entity.DeliveryTaxRow
		if err := taxRows.Scan(&tax.AccountHead, &tax.Description, &tax.TaxAmount,
			&tax.TaxAmountAfterDiscount, &tax.Total,
			&tax.BaseTaxAmount, &tax.BaseTaxAmountAfterDiscount, &tax.BaseTotal); err != nil {
			return fmt.Errorf("scan delivery note tax: %w", err)
		}
		dn.Taxes = append(dn.Taxes, tax)
	}
	return taxRows.Err()
}

// Submit marca la nota como enviada.
func (r *DeliveryNoteRepo) Submit(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE delivery_notes SET docstatus = $2, updated_at = now() WHERE id = $1`,
		id, entity.DocStatusSubmitted)
	if err != nil {
		return fmt.Errorf("update delivery note docstatus: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetShopStatus actualiza el estado reportado por la tienda.
func (r *DeliveryNoteRepo) SetShopStatus(ctx context.Context, id, status string) error {
	_, err := r.q.Exec(ctx,
		`UPDATE delivery_notes SET shop_status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update delivery note shop_status: %w", err)
	}
	return nil
}
