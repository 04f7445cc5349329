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

var _ repository.SettingRepository = (*SettingRepo)(nil)

// SettingRepo lectura de la configuración de la integración y puerta de
// scheduling (usable con pool o tx).
type SettingRepo struct {
	q Querier
}

// NewSettingRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSettingRepository(q Querier) *SettingRepo {
	return &SettingRepo{q: q}
}

// Get carga la configuración con sus tablas hijas; nil si la integración no
// está configurada.
func (r *SettingRepo) Get(ctx context.Context, integration string) (*entity.Setting, error) {
	query := `
		SELECT integration, company, default_customer, cost_center, warehouse,
			sales_order_series, sales_invoice_series, delivery_note_return_series, credit_note_series,
			default_sales_tax_account, default_shipping_charges_account, cash_bank_account,
			sync_sales_invoice, consolidate_taxes, add_shipping_as_item, shipping_item,
			update_stock_levels, inventory_sync_frequency,
			COALESCE(last_inventory_sync, 'epoch'::timestamptz),
			sync_old_orders,
			COALESCE(old_orders_from, 'epoch'::timestamptz),
			COALESCE(old_orders_to, 'epoch'::timestamptz)
		FROM sync_settings WHERE integration = $1`
	var s entity.Setting
	err := r.q.QueryRow(ctx, query, integration).Scan(
		&s.Integration, &s.Company, &s.DefaultCustomer, &s.CostCenter, &s.Warehouse,
		&s.SalesOrderSeries, &s.SalesInvoiceSeries, &s.DeliveryNoteReturnSeries, &s.CreditNoteSeries,
		&s.DefaultSalesTaxAccount, &s.DefaultShippingChargesAccount, &s.CashBankAccount,
		&s.SyncSalesInvoice, &s.ConsolidateTaxes, &s.AddShippingAsItem, &s.ShippingItem,
		&s.UpdateStockLevels, &s.InventorySyncFrequency, &s.LastInventorySync,
		&s.SyncOldOrders, &s.OldOrdersFrom, &s.OldOrdersTo,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sync settings: %w", err)
	}

	if err := r.loadChildren(ctx, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SettingRepo) loadChildren(ctx context.Context, s *entity.Setting) error {
	rows, err := r.q.Query(ctx, `
		SELECT vendor, shipping_revenue_account, vendor_cost_center
		FROM setting_vendor_accounts WHERE integration = $1 ORDER BY idx`, s.Integration)
	if err != nil {
		return fmt.Errorf("list vendor accounts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var m entity.VendorAccountMapping
		if err := rows.Scan(&m.Vendor, &m.ShippingRevenueAccount, &m.VendorCostCenter); err != nil {
			return fmt.Errorf("scan vendor account: %w", err)
		}
		s.VendorAccountMappings = append(s.VendorAccountMappings, m)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	taxRows, err := r.q.Query(ctx, `
		SELECT shop_tax_title, tax_account, tax_description
		FROM setting_tax_accounts WHERE integration = $1 ORDER BY idx`, s.Integration)
	if err != nil {
		return fmt.Errorf("list tax accounts: %w", err)
	}
	defer taxRows.Close()
	for taxRows.Next() {
		var ta entity.TaxAccount
		if err := taxRows.Scan(&ta.ShopTaxTitle, &ta.TaxAccount, &ta.TaxDescription); err != nil {
			return fmt.Errorf("scan tax account: %w", err)
		}
		s.TaxAccounts = append(s.TaxAccounts, ta)
	}
	if err := taxRows.Err(); err != nil {
		return err
	}

	payRows, err := r.q.Query(ctx, `
		SELECT payment_method, account, cost_center
		FROM setting_payment_accounts WHERE integration = $1 ORDER BY idx`, s.Integration)
	if err != nil {
		return fmt.Errorf("list payment accounts: %w", err)
	}
	defer payRows.Close()
	for payRows.Next() {
		var pa entity.PaymentMethodAccount
		if err := payRows.Scan(&pa.PaymentMethod, &pa.Account, &pa.CostCenter); err != nil {
			return fmt.Errorf("scan payment account: %w", err)
		}
		s.PaymentMethodAccounts = append(s.PaymentMethodAccounts, pa)
	}
	if err := payRows.Err(); err != nil {
		return err
	}

	locRows, err := r.q.Query(ctx, `
		SELECT warehouse, shop_location_id
		FROM setting_warehouse_locations WHERE integration = $1`, s.Integration)
	if err != nil {
		return fmt.Errorf("list warehouse locations: %w", err)
	}
	defer locRows.Close()
	s.WarehouseLocationMap = make(map[string]string)
	for locRows.Next() {
		var warehouse, location string
		if err := locRows.Scan(&warehouse, &location); err != nil {
			return fmt.Errorf("scan warehouse location: %w", err)
		}
		s.WarehouseLocationMap[warehouse] = location
	}
	return locRows.Err()
}

// Columnas admitidas por la puerta de scheduling: los nombres llegan de
// constantes internas, nunca de entrada externa.
var scheduleColumns = map[string]bool{
	"inventory_sync_frequency": true,
	"last_inventory_sync":      true,
}

// NeedToRun evalúa y consume la puerta de scheduling en un solo UPDATE
// atómico: devuelve true (y actualiza la marca) solo si pasó el intervalo
// configurado desde la última corrida.
func (r *SettingRepo) NeedToRun(ctx context.Context, integration, intervalField, lastRunField string) (bool, error) {
	if !scheduleColumns[intervalField] || !scheduleColumns[lastRunField] {
		return false, fmt.Errorf("%w: campos de scheduling desconocidos %q/%q",
			domain.ErrInvalidInput, intervalField, lastRunField)
	}
	query := fmt.Sprintf(`
		UPDATE sync_settings SET %[1]s = now()
		WHERE integration = $1
		  AND (%[1]s IS NULL OR %[1]s + make_interval(mins => %[2]s) <= now())
		RETURNING integration`, lastRunField, intervalField)
	var got string
	err := r.q.QueryRow(ctx, query, integration).Scan(&got)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("evaluate schedule gate: %w", err)
	}
	return true, nil
}

// SetLastInventorySync fija la marca de la última corrida del push.
func (r *SettingRepo) SetLastInventorySync(ctx context.Context, integration string, t time.Time) error {
	_, err := r.q.Exec(ctx,
		`UPDATE sync_settings SET last_inventory_sync = $2 WHERE integration = $1`, integration, t)
	if err != nil {
		return fmt.Errorf("update last_inventory_sync: %w", err)
	}
	return nil
}

// DisableOldOrderSync apaga el flag de backfill.
func (r *SettingRepo) DisableOldOrderSync(ctx context.Context, integration string) error {
	_, err := r.q.Exec(ctx,
		`UPDATE sync_settings SET sync_old_orders = false WHERE integration = $1`, integration)
	if err != nil {
		return fmt.Errorf("disable old order sync: %w", err)
	}
	return nil
}
