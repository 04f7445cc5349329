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

var _ repository.SalesInvoiceRepository = (*SalesInvoiceRepo)(nil)

// SalesInvoiceRepo implementación sobre PostgreSQL (usable con pool o tx).
type SalesInvoiceRepo struct {
	q Querier
}

// NewSalesInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSalesInvoiceRepository(q Querier) *SalesInvoiceRepo {
	return &SalesInvoiceRepo{q: q}
}

// Create persiste la factura (o nota crédito) con sus líneas.
func (r *SalesInvoiceRepo) Create(ctx context.Context, inv *entity.SalesInvoice) error {
	query := `
		INSERT INTO sales_invoices (id, naming_series, shop_order_id, shop_order_number, shop_status,
			sales_order_id, delivery_note_id, customer_id, posting_date, due_date, is_return,
			grand_total, docstatus, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	deliveryNoteID := (*string)(nil)
	if inv.DeliveryNoteID != "" {
		deliveryNoteID = &inv.DeliveryNoteID
	}
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.NamingSeries, inv.ShopOrderID, inv.ShopOrderNumber, inv.ShopStatus,
		inv.SalesOrderID, deliveryNoteID, inv.CustomerID, inv.PostingDate, inv.DueDate, inv.IsReturn,
		inv.GrandTotal, inv.DocStatus, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert sales invoice: %w", err)
	}

	for i, it := range inv.Items {
		query := `
			INSERT INTO sales_invoice_items (sales_invoice_id, idx, item_code, qty, rate, amount,
				income_account, cost_center)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
		_, err := r.q.Exec(ctx, query,
			inv.ID, i, it.ItemCode, it.Qty, it.Rate, it.Amount, it.IncomeAccount, it.CostCenter,
		)
		if err != nil {
			return fmt.Errorf("insert sales invoice item %s: %w", it.ItemCode, err)
		}
	}
	return nil
}

// GetByShopOrderID obtiene la factura (no nota crédito) del pedido externo;
// nil si no existe.
func (r *SalesInvoiceRepo) GetByShopOrderID(ctx context.Context, shopOrderID string) (*entity.SalesInvoice, error) {
	query := `
		SELECT id, naming_series, shop_order_id, shop_order_number, shop_status,
			sales_order_id, COALESCE(delivery_note_id, ''), customer_id, posting_date, due_date,
			is_return, grand_total, docstatus, created_at, updated_at
		FROM sales_invoices WHERE shop_order_id = $1 AND is_return = false`
	var inv entity.SalesInvoice
	err := r.q.QueryRow(ctx, query, shopOrderID).Scan(
		&inv.ID, &inv.NamingSeries, &inv.ShopOrderID, &inv.ShopOrderNumber, &inv.ShopStatus,
		&inv.SalesOrderID, &inv.DeliveryNoteID, &inv.CustomerID, &inv.PostingDate, &inv.DueDate,
		&inv.IsReturn, &inv.GrandTotal, &inv.DocStatus, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sales invoice: %w", err)
	}

	itemsQuery := `
		SELECT item_code, qty, rate, amount, income_account, cost_center
		FROM sales_invoice_items WHERE sales_invoice_id = $1 ORDER BY idx`
	rows, err := r.q.Query(ctx, itemsQuery, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("list sales invoice items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.InvoiceItem
		if err := rows.Scan(&it.ItemCode, &it.Qty, &it.Rate, &it.Amount, &it.IncomeAccount, &it.CostCenter); err != nil {
			return nil, fmt.Errorf("scan sales invoice item: %w", err)
		}
		inv.Items = append(inv.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &inv, nil
}

// Submit marca la factura como enviada.
func (r *SalesInvoiceRepo) Submit(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE sales_invoices SET docstatus = $2, updated_at = now() WHERE id = $1`,
		id, entity.DocStatusSubmitted)
	if err != nil {
		return fmt.Errorf("update sales invoice docstatus: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetShopStatus actualiza el estado reportado por la tienda.
func (r *SalesInvoiceRepo) SetShopStatus(ctx context.Context, id, status string) error {
	_, err := r.q.Exec(ctx,
		`UPDATE sales_invoices SET shop_status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update sales invoice shop_status: %w", err)
	}
	return nil
}
