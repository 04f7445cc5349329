package orders_test

import (
	"context"
	"time"

	"github.com/jhoicas/shopsync-erp/internal/application/dto"
	"github.com/jhoicas/shopsync-erp/internal/application/orders"
	"github.com/jhoicas/shopsync-erp/internal/domain"
	"github.com/jhoicas/shopsync-erp/internal/domain/entity"
	"github.com/jhoicas/shopsync-erp/internal/domain/repository"
)

// memStore estado en memoria compartido por los fakes de repositorios.
type memStore struct {
	salesOrders   map[string]*entity.SalesOrder // por id
	soByShopID    map[string]string
	invoices      map[string]*entity.SalesInvoice
	deliveryNotes map[string]*entity.DeliveryNote
	payments      []*entity.PaymentEntry
	customers     map[string]*entity.Customer // por shop customer id
	ecomItems     map[string]*entity.EcommerceItem
	items         map[string]bool
	syncLogs      []*entity.SyncLog
}

func newMemStore() *memStore {
	return &memStore{
		salesOrders:   map[string]*entity.SalesOrder{},
		soByShopID:    map[string]string{},
		invoices:      map[string]*entity.SalesInvoice{},
		deliveryNotes: map[string]*entity.DeliveryNote{},
		customers:     map[string]*entity.Customer{},
		ecomItems:     map[string]*entity.EcommerceItem{},
		items:         map[string]bool{},
	}
}

func (s *memStore) repos() repository.Repos {
	return repository.Repos{
		SalesOrders:    (*memSalesOrders)(s),
		SalesInvoices:  (*memSalesInvoices)(s),
		DeliveryNotes:  (*memDeliveryNotes)(s),
		PaymentEntries: (*memPaymentEntries)(s),
		Customers:      (*memCustomers)(s),
		EcommerceItems: (*memEcomItems)(s),
		Items:          (*memItems)(s),
	}
}

func ecomKey(productID, variantID string) string { return productID + "|" + variantID }

func (s *memStore) seedMapping(productID, variantID, itemCode string) {
	s.ecomItems[ecomKey(productID, variantID)] = &entity.EcommerceItem{
		ID:                  "ecom-" + itemCode,
		Integration:         orders.Integration,
		ERPItemCode:         itemCode,
		IntegrationItemCode: productID,
		VariantID:           variantID,
	}
	s.items[itemCode] = true
}

// lastLog último registro de bitácora escrito; nil si no hay.
func (s *memStore) lastLog() *entity.SyncLog {
	if len(s.syncLogs) == 0 {
		return nil
	}
	return s.syncLogs[len(s.syncLogs)-1]
}

// memTxRunner ejecuta el callback directo contra el store. No simula
// rollback: los tests de fallo verifican la bitácora, no el estado revertido.
type memTxRunner struct{ s *memStore }

func (t *memTxRunner) Run(_ context.Context, fn func(repository.Repos) error) error {
	return fn(t.s.repos())
}

// ── repos ─────────────────────────────────────────────────────────────────────

type memSalesOrders memStore

func (m *memSalesOrders) Create(_ context.Context, so *entity.SalesOrder) error {
	if _, ok := m.soByShopID[so.ShopOrderID]; ok {
		return domain.ErrDuplicate
	}
	cp := *so
	m.salesOrders[so.ID] = &cp
	m.soByShopID[so.ShopOrderID] = so.ID
	return nil
}

func (m *memSalesOrders) GetByShopOrderID(_ context.Context, shopOrderID string) (*entity.SalesOrder, error) {
	id, ok := m.soByShopID[shopOrderID]
	if !ok {
		return nil, nil
	}
	return m.salesOrders[id], nil
}

func (m *memSalesOrders) Submit(_ context.Context, id string) error {
	so, ok := m.salesOrders[id]
	if !ok {
		return domain.ErrNotFound
	}
	so.DocStatus = entity.DocStatusSubmitted
	return nil
}

func (m *memSalesOrders) Cancel(_ context.Context, id string) error {
	so, ok := m.salesOrders[id]
	if !ok {
		return domain.ErrNotFound
	}
	so.DocStatus = entity.DocStatusCancelled
	return nil
}

func (m *memSalesOrders) SetShopStatus(_ context.Context, id, status string) error {
	if so, ok := m.salesOrders[id]; ok {
		so.ShopStatus = status
	}
	return nil
}

type memSalesInvoices memStore

func (m *memSalesInvoices) Create(_ context.Context, inv *entity.SalesInvoice) error {
	cp := *inv
	m.invoices[inv.ID] = &cp
	return nil
}

func (m *memSalesInvoices) GetByShopOrderID(_ context.Context, shopOrderID string) (*entity.SalesInvoice, error) {
	for _, inv := range m.invoices {
		if inv.ShopOrderID == shopOrderID && !inv.IsReturn {
			return inv, nil
		}
	}
	return nil, nil
}

func (m *memSalesInvoices) Submit(_ context.Context, id string) error {
	inv, ok := m.invoices[id]
	if !ok {
		return domain.ErrNotFound
	}
	inv.DocStatus = entity.DocStatusSubmitted
	return nil
}

func (m *memSalesInvoices) SetShopStatus(_ context.Context, id, status string) error {
	if inv, ok := m.invoices[id]; ok {
		inv.ShopStatus = status
	}
	return nil
}

type memDeliveryNotes memStore

func (m *memDeliveryNotes) Create(_ context.Context, dn *entity.DeliveryNote) error {
	cp := *dn
	m.deliveryNotes[dn.ID] = &cp
	return nil
}

func (m *memDeliveryNotes) GetOriginalByShopOrderID(_ context.Context, shopOrderID string) (*entity.DeliveryNote, error) {
	for _, dn := range m.deliveryNotes {
		if dn.ShopOrderID == shopOrderID && !dn.IsReturn {
			return dn, nil
		}
	}
	return nil, nil
}

func (m *memDeliveryNotes) ListByShopOrderID(_ context.Context, shopOrderID string) ([]*entity.DeliveryNote, error) {
	var out []*entity.DeliveryNote
	for _, dn := range m.deliveryNotes {
		if dn.ShopOrderID == shopOrderID {
			out = append(out, dn)
		}
	}
	return out, nil
}

func (m *memDeliveryNotes) Submit(_ context.Context, id string) error {
	dn, ok := m.deliveryNotes[id]
	if !ok {
		return domain.ErrNotFound
	}
	dn.DocStatus = entity.DocStatusSubmitted
	return nil
}

func (m *memDeliveryNotes) SetShopStatus(_ context.Context, id, status string) error {
	if dn, ok := m.deliveryNotes[id]; ok {
		dn.ShopStatus = status
	}
	return nil
}

type memPaymentEntries memStore

func (m *memPaymentEntries) Create(_ context.Context, pe *entity.PaymentEntry) error {
	cp := *pe
	m.payments = append(m.payments, &cp)
	return nil
}

func (m *memPaymentEntries) Submit(_ context.Context, id string) error {
	for _, pe := range m.payments {
		if pe.ID == id {
			pe.DocStatus = entity.DocStatusSubmitted
			return nil
		}
	}
	return domain.ErrNotFound
}

type memCustomers memStore

func (m *memCustomers) Create(_ context.Context, c *entity.Customer) error {
	if _, ok := m.customers[c.ShopCustomerID]; ok {
		return domain.ErrDuplicate
	}
	cp := *c
	m.customers[c.ShopCustomerID] = &cp
	return nil
}

func (m *memCustomers) GetByShopCustomerID(_ context.Context, shopCustomerID string) (*entity.Customer, error) {
	return m.customers[shopCustomerID], nil
}

func (m *memCustomers) UpdateAddresses(_ context.Context, id, billing, shipping string) error {
	for _, c := range m.customers {
		if c.ID == id {
			c.BillingAddress, c.ShippingAddress = billing, shipping
		}
	}
	return nil
}

type memEcomItems memStore

func (m *memEcomItems) Create(_ context.Context, item *entity.EcommerceItem) error {
	key := ecomKey(item.IntegrationItemCode, item.VariantID)
	if _, ok := m.ecomItems[key]; ok {
		return domain.ErrDuplicate
	}
	cp := *item
	m.ecomItems[key] = &cp
	return nil
}

func (m *memEcomItems) GetByIntegrationItem(_ context.Context, productID, variantID string) (*entity.EcommerceItem, error) {
	return m.ecomItems[ecomKey(productID, variantID)], nil
}

func (m *memEcomItems) UpdateInventorySyncedOn(_ context.Context, id string, t time.Time) error {
	for _, it := range m.ecomItems {
		if it.ID == id {
			it.InventorySyncedOn = t
		}
	}
	return nil
}

type memItems memStore

func (m *memItems) Exists(_ context.Context, itemCode string) (bool, error) {
	return m.items[itemCode], nil
}

func (m *memItems) Create(_ context.Context, itemCode, _, _ string) error {
	if m.items[itemCode] {
		return domain.ErrDuplicate
	}
	m.items[itemCode] = true
	return nil
}

// memSyncLogs escribe la bitácora sobre el mismo store.
type memSyncLogs memStore

func (m *memSyncLogs) Create(_ context.Context, log *entity.SyncLog) error {
	m.syncLogs = append(m.syncLogs, log)
	return nil
}

// memSettings fake del repositorio de configuración.
type memSettings struct {
	setting       *entity.Setting
	oldSyncOff    bool
	lastInventory time.Time
}

func (m *memSettings) Get(_ context.Context, _ string) (*entity.Setting, error) {
	return m.setting, nil
}

func (m *memSettings) NeedToRun(_ context.Context, _, _, _ string) (bool, error) {
	return true, nil
}

func (m *memSettings) SetLastInventorySync(_ context.Context, _ string, t time.Time) error {
	m.lastInventory = t
	return nil
}

func (m *memSettings) DisableOldOrderSync(_ context.Context, _ string) error {
	m.oldSyncOff = true
	if m.setting != nil {
		m.setting.SyncOldOrders = false
	}
	return nil
}

// memShopAPI fake del backfill: entrega los pedidos precargados.
type memShopAPI struct {
	orders []*dto.ShopOrder
}

func (m *memShopAPI) ListOrders(_ context.Context, _, _ time.Time, fn func(*dto.ShopOrder) error) error {
	for _, o := range m.orders {
		if err := fn(o); err != nil {
			return err
		}
	}
	return nil
}
