package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/shopsync-erp/internal/domain"
	"github.com/jhoicas/shopsync-erp/internal/domain/entity"
	"github.com/jhoicas/shopsync-erp/internal/domain/repository"
)

var _ repository.SalesOrderRepository = (*SalesOrderRepo)(nil)

// SalesOrderRepo implementación sobre PostgreSQL (usable con pool o tx).
// El encabezado vive en sales_orders; ítems y filas de impuestos en tablas
// hijas con posición explícita para preservar el orden del documento.
type SalesOrderRepo struct {
	q Querier
}

// NewSalesOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSalesOrderRepository(q Querier) *SalesOrderRepo {
	return &SalesOrderRepo{q: q}
}

// Create persiste el pedido con sus ítems e impuestos. La constraint única
// sobre shop_order_id es el guard de idempotencia: un segundo evento del
// mismo pedido devuelve domain.ErrDuplicate sin tocar nada.
func (r *SalesOrderRepo) Create(ctx context.Context, so *entity.SalesOrder) error {
	query := `
		INSERT INTO sales_orders (id, naming_series, shop_order_id, shop_order_number, shop_status,
			customer_id, transaction_date, delivery_date, note, docstatus, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		so.ID, so.NamingSeries, so.ShopOrderID, so.ShopOrderNumber, so.ShopStatus,
		so.CustomerID, so.TransactionDate, so.DeliveryDate, so.Note, so.DocStatus,
		so.CreatedAt, so.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert sales order: %w", err)
	}

	for i, it := range so.Items {
		query := `
			INSERT INTO sales_order_items (sales_order_id, idx, item_code, item_name, qty, rate,
				delivery_date, warehouse, stock_uom, discount_per_unit)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
		_, err := r.q.Exec(ctx, query,
			so.ID, i, it.ItemCode, it.ItemName, it.Qty, it.Rate,
			it.DeliveryDate, it.Warehouse, it.StockUOM, it.DiscountPerUnit,
		)
		if err != nil {
			return fmt.Errorf("insert sales order item %s: %w", it.ItemCode, err)
		}
	}

	for i, tax := range so.Taxes {
		detail, err := marshalTaxDetail(tax.ItemWiseTaxDetail)
		if err != nil {
			return err
		}
		query := `
			INSERT INTO sales_order_taxes (sales_order_id, idx, charge_type, account_head,
				description, tax_amount, cost_center, item_wise_tax_detail)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
		_, err = r.q.Exec(ctx, query,
			so.ID, i, tax.ChargeType, tax.AccountHead,
			tax.Description, tax.TaxAmount, tax.CostCenter, detail,
		)
		if err != nil {
			return fmt.Errorf("insert sales order tax %s: %w", tax.AccountHead, err)
		}
	}
	return nil
}

// GetByShopOrderID obtiene el pedido por id externo; nil si no existe.
func (r *SalesOrderRepo) GetByShopOrderID(ctx context.Context, shopOrderID string) (*entity.SalesOrder, error) {
	query := `
		SELECT id, naming_series, shop_order_id, shop_order_number, shop_status,
			customer_id, transaction_date, delivery_date, note, docstatus, created_at, updated_at
		FROM sales_orders WHERE shop_order_id = $1`
	var so entity.SalesOrder
	err := r.q.QueryRow(ctx, query, shopOrderID).Scan(
		&so.ID, &so.NamingSeries, &so.ShopOrderID, &so.ShopOrderNumber, &so.ShopStatus,
		&so.CustomerID, &so.TransactionDate, &so.DeliveryDate, &so.Note, &so.DocStatus,
		&so.CreatedAt, &so.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sales order: %w", err)
	}

	if so.Items, err = r.loadItems(ctx, so.ID); err != nil {
		return nil, err
	}
	if so.Taxes, err = r.loadTaxes(ctx, so.ID); err != nil {
		return nil, err
	}
	return &so, nil
}

func (r *SalesOrderRepo) loadItems(ctx context.Context, id string) ([]entity.OrderItem, error) {
	query := `
		SELECT item_code, item_name, qty, rate, delivery_date, warehouse, stock_uom, discount_per_unit
		FROM sales_order_items WHERE sales_order_id = $1 ORDER BY idx`
	rows, err := r.q.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("list sales order items: %w", err)
	}
	defer rows.Close()
	var items []entity.OrderItem
	for rows.Next() {
		var it entity.OrderItem
		if err := rows.Scan(&it.ItemCode, &it.ItemName, &it.Qty, &it.Rate,
			&it.DeliveryDate, &it.Warehouse, &it.StockUOM, &it.DiscountPerUnit); err != nil {
			return nil, fmt.Errorf("scan sales order item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *SalesOrderRepo) loadTaxes(ctx context.Context, id string) ([]entity.TaxRow, error) {
	query := `
		SELECT charge_type, account_head, description, tax_amount, cost_center, item_wise_tax_detail
		FROM sales_order_taxes WHERE sales_order_id = $1 ORDER BY idx`
	rows, err := r.q.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("list sales order taxes: %w", err)
	}
	defer rows.Close()
	var taxes []entity.TaxRow
	for rows.Next() {
		var tax entity.TaxRow
		var detail []byte
		if err := rows.Scan(&tax.ChargeType, &tax.AccountHead, &tax.Description,
			&tax.TaxAmount, &tax.CostCenter, &detail); err != nil {
			return nil, fmt.Errorf("scan sales order tax: %w", err)
		}
		if tax.ItemWiseTaxDetail, err = unmarshalTaxDetail(detail); err != nil {
			return nil, err
		}
		taxes = append(taxes, tax)
	}
	return taxes, rows.Err()
}

// Submit marca el pedido como enviado (inmutable).
func (r *SalesOrderRepo) Submit(ctx context.Context, id string) error {
	return r.setDocStatus(ctx, id, entity.DocStatusSubmitted)
}

// Cancel marca el pedido como cancelado.
func (r *SalesOrderRepo) Cancel(ctx context.Context, id string) error {
	return r.setDocStatus(ctx, id, entity.DocStatusCancelled)
}

func (r *SalesOrderRepo) setDocStatus(ctx context.Context, id string, docStatus int) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE sales_orders SET docstatus = $2, updated_at = now() WHERE id = $1`, id, docStatus)
	if err != nil {
		return fmt.Errorf("update sales order docstatus: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetShopStatus actualiza el estado reportado por la tienda.
func (r *SalesOrderRepo) SetShopStatus(ctx context.Context, id, status string) error {
	_, err := r.q.Exec(ctx,
		`UPDATE sales_orders SET shop_status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update sales order shop_status: %w", err)
	}
	return nil
}

// ── detalle de impuestos por ítem (JSONB) ─────────────────────────────────────

// taxDetailJSON forma persistida de una entrada del detalle: [tasa%, monto],
// el par que espera el plano contable.
type taxDetailJSON [2]decimal.Decimal

func marshalTaxDetail(detail map[string]entity.TaxDetail) ([]byte, error) {
	if len(detail) == 0 {
		return []byte("{}"), nil
	}
	m := make(map[string]taxDetailJSON, len(detail))
	for code, d := range detail {
		m[code] = taxDetailJSON{d.Rate, d.Amount}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal item_wise_tax_detail: %w", err)
	}
	return b, nil
}

func unmarshalTaxDetail(b []byte) (map[string]entity.TaxDetail, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var m map[string]taxDetailJSON
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("unmarshal item_wise_tax_detail: %w", err)
	}
	if len(m) == 0 {
		return nil, nil
	}
	out := make(map[string]entity.TaxDetail, len(m))
	for code, d := range m {
		out[code] = entity.TaxDetail{Rate: d[0], Amount: d[1]}
	}
	return out, nil
}
