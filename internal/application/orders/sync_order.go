package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/shopsync-erp/internal/application/dto"
	"github.com/jhoicas/shopsync-erp/internal/application/synclog"
	"github.com/jhoicas/shopsync-erp/internal/domain"
	"github.com/jhoicas/shopsync-erp/internal/domain/entity"
	"github.com/jhoicas/shopsync-erp/internal/domain/repository"
	"github.com/jhoicas/shopsync-erp/internal/domain/taxation"
	"github.com/jhoicas/shopsync-erp/pkg/logger"
)

// Integration nombre bajo el que se persisten settings, mapeos y bitácora.
const Integration = "shopify"

// Métodos registrados en la bitácora (coinciden con el topic del webhook).
const (
	methodOrderCreate   = "orders/create"
	methodOrderCancel   = "orders/cancelled"
	methodRefundCreate  = "refunds/create"
	methodOrderBackfill = "orders/backfill"
)

const financialStatusPaid = "paid"

// SyncUseCase motor de sincronización de pedidos: crea la cadena documental
// del ERP (pedido, factura, pago, nota de entrega) a partir de los eventos de
// la tienda. Cada operación corre en una transacción propia y termina en
// exactamente un registro de bitácora; ningún error escapa al caller.
type SyncUseCase struct {
	tx       TxRunner
	settings repository.SettingRepository
	products ProductSyncer
	shop     StorefrontOrderAPI
	sink     *synclog.Sink
	log      *logger.Logger
}

// NewSyncUseCase construye el motor con sus dependencias. shop puede ser nil
// si el backfill de pedidos históricos está deshabilitado.
func NewSyncUseCase(
	tx TxRunner,
	settings repository.SettingRepository,
	products ProductSyncer,
	shop StorefrontOrderAPI,
	sink *synclog.Sink,
	log *logger.Logger,
) *SyncUseCase {
	return &SyncUseCase{
		tx:       tx,
		settings: settings,
		products: products,
		shop:     shop,
		sink:     sink,
		log:      log.WithModule("orders"),
	}
}

// CreateOrder procesa un evento orders/create: crea y envía el pedido de
// venta y, según configuración y estado del pedido, factura, entrada de pago
// y nota de entrega. Idempotente: un pedido ya sincronizado termina en un
// registro Invalid sin escribir nada (constraint único sobre el id externo,
// no lookup previo).
func (u *SyncUseCase) CreateOrder(ctx context.Context, requestID string, order *dto.ShopOrder) {
	setting, err := u.loadSetting(ctx, methodOrderCreate, order.Name, requestID)
	if err != nil {
		return
	}

	err = u.tx.Run(ctx, func(repos repository.Repos) error {
		return u.createOrderDocs(ctx, repos, setting, order)
	})
	u.report(ctx, methodOrderCreate, order.Name, requestID, err)
}

// createOrderDocs núcleo transaccional de la creación: si cualquier paso
// falla, el rollback deja el ERP sin rastro del pedido.
func (u *SyncUseCase) createOrderDocs(
	ctx context.Context,
	repos repository.Repos,
	setting *entity.Setting,
	order *dto.ShopOrder,
) error {
	orderDate := parseShopTime(order.CreatedAt)

	customerID, err := u.ensureCustomer(ctx, repos, setting, order)
	if err != nil {
		return err
	}

	lines, err := u.buildLines(ctx, repos, order)
	if err != nil {
		return err
	}

	items, missing := taxation.BuildOrderItems(lines, setting, orderDate, order.TaxesIncluded)
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrItemsMissing, strings.Join(missing, ", "))
	}

	taxes, shippingItems, err := taxation.BuildTaxes(lines, shippingLines(order), setting, orderDate, order.TaxesIncluded)
	if err != nil {
		return err
	}
	items = append(items, shippingItems...)

	now := time.Now()
	so := &entity.SalesOrder{
		ID:              uuid.New().String(),
		NamingSeries:    setting.SalesOrderSeries,
		ShopOrderID:     order.OrderID(),
		ShopOrderNumber: order.Name,
		ShopStatus:      order.FinancialStatus,
		CustomerID:      customerID,
		TransactionDate: orderDate,
		DeliveryDate:    orderDate,
		Note:            order.Note,
		Items:           items,
		Taxes:           taxes,
		DocStatus:       entity.DocStatusDraft,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := repos.SalesOrders.Create(ctx, so); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return fmt.Errorf("%w: el pedido %s ya fue sincronizado", domain.ErrDuplicate, order.Name)
		}
		return err
	}
	if err := repos.SalesOrders.Submit(ctx, so.ID); err != nil {
		return err
	}

	if setting.SyncSalesInvoice && order.FinancialStatus == financialStatusPaid {
		if err := u.createInvoiceAndPayment(ctx, repos, setting, so, order, orderDate); err != nil {
			return err
		}
	}

	if len(order.Fulfillments) > 0 {
		if err := u.createDeliveryNote(ctx, repos, setting, so, orderDate); err != nil {
			return err
		}
	}
	return nil
}

// ensureCustomer resuelve el cliente del ERP para el pedido: lo crea si es la
// primera vez que se ve su id externo, o refresca sus direcciones si ya
// existe. Un pedido sin cliente usa el cliente por defecto de la integración.
func (u *SyncUseCase) ensureCustomer(
	ctx context.Context,
	repos repository.Repos,
	setting *entity.Setting,
	order *dto.ShopOrder,
) (string, error) {
	shopCustomerID := order.Customer.CustomerID()
	if shopCustomerID == "" {
		if setting.DefaultCustomer == "" {
			return "", fmt.Errorf("%w: pedido sin cliente y sin cliente por defecto configurado", domain.ErrConfiguration)
		}
		return setting.DefaultCustomer, nil
	}

	billing, shipping := string(order.BillingAddress), string(order.ShippingAddress)

	existing, err := repos.Customers.GetByShopCustomerID(ctx, shopCustomerID)
	if err != nil {
		return "", err
	}
	if existing != nil {
		if err := repos.Customers.UpdateAddresses(ctx, existing.ID, billing, shipping); err != nil {
			return "", err
		}
		return existing.ID, nil
	}

	now := time.Now()
	customer := &entity.Customer{
		ID:              uuid.New().String(),
		ShopCustomerID:  shopCustomerID,
		Name:            strings.TrimSpace(order.Customer.FirstName + " " + order.Customer.LastName),
		Email:           order.Customer.Email,
		Phone:           order.Customer.Phone,
		BillingAddress:  billing,
		ShippingAddress: shipping,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := repos.Customers.Create(ctx, customer); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			// Otro evento creó el cliente entre el lookup y el insert.
			existing, err = repos.Customers.GetByShopCustomerID(ctx, shopCustomerID)
			if err != nil {
				return "", err
			}
			if existing != nil {
				return existing.ID, nil
			}
		}
		return "", err
	}
	return customer.ID, nil
}

// buildLines normaliza las líneas del pedido resolviendo el código de ítem de
// cada producto contra el catálogo (creándolo si hace falta).
func (u *SyncUseCase) buildLines(ctx context.Context, repos repository.Repos, order *dto.ShopOrder) ([]taxation.LineItem, error) {
	lines := make([]taxation.LineItem, 0, len(order.LineItems))
	for _, li := range order.LineItems {
		itemCode, err := u.products.EnsureItem(ctx, repos, li)
		if err != nil {
			return nil, err
		}
		name := li.Name
		if name == "" {
			name = li.Title
		}
		discounts := make([]decimal.Decimal, 0, len(li.DiscountAllocations))
		for _, d := range li.DiscountAllocations {
			discounts = append(discounts, d.Amount)
		}
		lines = append(lines, taxation.LineItem{
			ItemCode:  itemCode,
			Title:     li.Title,
			Name:      name,
			Vendor:    li.Vendor,
			UOM:       li.UOM,
			Qty:       decimal.NewFromInt(li.Quantity),
			Price:     li.Price,
			Discounts: discounts,
			TaxLines:  taxLines(li.TaxLines),
		})
	}
	return lines, nil
}

// createInvoiceAndPayment factura el pedido pagado y registra la entrada de
// pago contra la cuenta bancaria del método de pago reportado por la tienda.
func (u *SyncUseCase) createInvoiceAndPayment(
	ctx context.Context,
	repos repository.Repos,
	setting *entity.Setting,
	so *entity.SalesOrder,
	order *dto.ShopOrder,
	orderDate time.Time,
) error {
	vendors := make([]string, 0, len(order.LineItems))
	for _, li := range order.LineItems {
		vendors = append(vendors, li.Vendor)
	}
	vendor := taxation.ResolveVendorAccounts(vendors, setting.VendorAccountMappings)

	now := time.Now()
	inv := &entity.SalesInvoice{
		ID:              uuid.New().String(),
		NamingSeries:    setting.SalesInvoiceSeries,
		ShopOrderID:     so.ShopOrderID,
		ShopOrderNumber: so.ShopOrderNumber,
		ShopStatus:      so.ShopStatus,
		SalesOrderID:    so.ID,
		CustomerID:      so.CustomerID,
		PostingDate:     orderDate,
		DueDate:         orderDate,
		Items:           invoiceItems(so.Items, setting, vendor),
		DocStatus:       entity.DocStatusDraft,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	inv.GrandTotal = grandTotal(inv.Items, so.Taxes)

	if err := repos.SalesInvoices.Create(ctx, inv); err != nil {
		return err
	}
	if err := repos.SalesInvoices.Submit(ctx, inv.ID); err != nil {
		return err
	}

	pe := &entity.PaymentEntry{
		ID:               uuid.New().String(),
		PaymentType:      entity.PaymentTypeReceive,
		PartyID:          so.CustomerID,
		ReferenceDoctype: "Sales Invoice",
		ReferenceID:      inv.ID,
		ReferenceNo:      so.ShopOrderNumber,
		PostingDate:      orderDate,
		ReferenceDate:    orderDate,
		BankAccount:      setting.BankAccountFor(order.PaymentGatewayNames),
		PaidAmount:       inv.GrandTotal,
		DocStatus:        entity.DocStatusDraft,
		CreatedAt:        now,
	}
	if err := repos.PaymentEntries.Create(ctx, pe); err != nil {
		return err
	}
	return repos.PaymentEntries.Submit(ctx, pe.ID)
}

// createDeliveryNote genera la nota de entrega del pedido con los impuestos
// trasladados como acumulados contables.
func (u *SyncUseCase) createDeliveryNote(
	ctx context.Context,
	repos repository.Repos,
	setting *entity.Setting,
	so *entity.SalesOrder,
	orderDate time.Time,
) error {
	conversionRate := decimal.NewFromInt(1)
	items := deliveryItems(so, conversionRate)

	netTotal := decimal.Zero
	for _, it := range items {
		netTotal = netTotal.Add(it.NetAmount)
	}

	taxes := make([]entity.DeliveryTaxRow, 0, len(so.Taxes))
	running := netTotal
	for _, t := range so.Taxes {
		running = running.Add(t.TaxAmount)
		taxes = append(taxes, entity.DeliveryTaxRow{
			AccountHead:                t.AccountHead,
			Description:                t.Description,
			TaxAmount:                  t.TaxAmount,
			TaxAmountAfterDiscount:     t.TaxAmount,
			Total:                      running,
			BaseTaxAmount:              t.TaxAmount.Mul(conversionRate),
			BaseTaxAmountAfterDiscount: t.TaxAmount.Mul(conversionRate),
			BaseTotal:                  running.Mul(conversionRate),
		})
	}

	now := time.Now()
	dn := &entity.DeliveryNote{
		ID:              uuid.New().String(),
		ShopOrderID:     so.ShopOrderID,
		ShopOrderNumber: so.ShopOrderNumber,
		ShopStatus:      so.ShopStatus,
		SalesOrderID:    so.ID,
		CustomerID:      so.CustomerID,
		PostingDate:     orderDate,
		PostingTime:     orderDate.Format("15:04:05"),
		ConversionRate:  conversionRate,
		Items:           items,
		Taxes:           taxes,
		DocStatus:       entity.DocStatusDraft,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := repos.DeliveryNotes.Create(ctx, dn); err != nil {
		return err
	}
	return repos.DeliveryNotes.Submit(ctx, dn.ID)
}

// Mensajes de bitácora por método.
var (
	successMessages = map[string]string{
		methodOrderCreate:   "pedido %s sincronizado",
		methodOrderCancel:   "pedido %s cancelado",
		methodRefundCreate:  "reembolso del pedido %s sincronizado",
		methodOrderBackfill: "pedido %s sincronizado",
	}
	failureMessages = map[string]string{
		methodOrderCreate:   "pedido %s no sincronizado",
		methodOrderCancel:   "no se pudo cancelar el pedido %s",
		methodRefundCreate:  "reembolso del pedido %s no sincronizado",
		methodOrderBackfill: "pedido %s no sincronizado",
	}
)

// report cierra la operación con exactamente un registro de bitácora:
// Success si no hubo error, Invalid para condiciones esperadas (duplicado,
// estado incompatible) y Error con el detalle del fallo en el resto.
func (u *SyncUseCase) report(ctx context.Context, method, orderNumber, requestID string, err error) {
	switch {
	case err == nil:
		u.sink.Write(ctx, method, entity.SyncStatusSuccess,
			fmt.Sprintf(successMessages[method], orderNumber), "", requestID)
	case errors.Is(err, domain.ErrDuplicate), errors.Is(err, domain.ErrConflict):
		u.sink.Write(ctx, method, entity.SyncStatusInvalid, err.Error(), "", requestID)
	default:
		u.sink.Write(ctx, method, entity.SyncStatusError,
			fmt.Sprintf(failureMessages[method], orderNumber), err.Error(), requestID)
	}
}

// loadSetting carga la configuración de la integración; si no existe o falla
// la lectura la operación termina aquí con su registro Error.
func (u *SyncUseCase) loadSetting(ctx context.Context, method, subject, requestID string) (*entity.Setting, error) {
	setting, err := u.settings.Get(ctx, Integration)
	if err == nil && setting == nil {
		err = fmt.Errorf("%w: no hay settings para la integración %s", domain.ErrConfiguration, Integration)
	}
	if err != nil {
		u.sink.Write(ctx, method, entity.SyncStatusError,
			fmt.Sprintf("%s: configuración no disponible", subject), err.Error(), requestID)
		return nil, err
	}
	return setting, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

// parseShopTime interpreta el timestamp ISO de la tienda; ante formato
// inesperado usa la hora actual para no abortar el pedido por una fecha.
func parseShopTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Now()
}

func taxLines(in []dto.ShopTaxLine) []taxation.TaxLine {
	out := make([]taxation.TaxLine, 0, len(in))
	for _, t := range in {
		out = append(out, taxation.TaxLine{Title: t.Title, Rate: t.Rate, Price: t.Price})
	}
	return out
}

func shippingLines(order *dto.ShopOrder) []taxation.ShippingLine {
	out := make([]taxation.ShippingLine, 0, len(order.ShippingLines))
	for _, sl := range order.ShippingLines {
		discounts := make([]decimal.Decimal, 0, len(sl.DiscountAllocations))
		for _, d := range sl.DiscountAllocations {
			discounts = append(discounts, d.Amount)
		}
		out = append(out, taxation.ShippingLine{
			Title:     sl.Title,
			Price:     sl.Price,
			Discounts: discounts,
			TaxLines:  taxLines(sl.TaxLines),
		})
	}
	return out
}

// invoiceItems traslada los ítems del pedido a líneas de factura. La línea de
// envío-como-ítem rutea su ingreso a la cuenta del vendor resuelto.
func invoiceItems(items []entity.OrderItem, setting *entity.Setting, vendor taxation.VendorAccounts) []entity.InvoiceItem {
	out := make([]entity.InvoiceItem, 0, len(items))
	for _, it := range items {
		line := entity.InvoiceItem{
			ItemCode: it.ItemCode,
			Qty:      it.Qty,
			Rate:     it.Rate,
			Amount:   it.Rate.Mul(it.Qty),
		}
		if setting.AddShippingAsItem && it.ItemCode == setting.ShippingItem {
			line.IncomeAccount = vendor.ShippingRevenueAccount
			if line.IncomeAccount == "" {
				line.IncomeAccount = setting.DefaultShippingChargesAccount
			}
			line.CostCenter = vendor.CostCenter
			if line.CostCenter == "" {
				line.CostCenter = setting.CostCenter
			}
		}
		out = append(out, line)
	}
	return out
}

func grandTotal(items []entity.InvoiceItem, taxes []entity.TaxRow) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Amount)
	}
	for _, t := range taxes {
		total = total.Add(t.TaxAmount)
	}
	return total
}

// deliveryItems traslada los ítems del pedido a líneas de nota de entrega,
// anotando por ítem el impuesto que le asigna el detalle de las filas.
func deliveryItems(so *entity.SalesOrder, conversionRate decimal.Decimal) []entity.DeliveryNoteItem {
	taxByItem := make(map[string]decimal.Decimal)
	for _, t := range so.Taxes {
		for code, detail := range t.ItemWiseTaxDetail {
			taxByItem[code] = taxByItem[code].Add(detail.Amount)
		}
	}

	out := make([]entity.DeliveryNoteItem, 0, len(so.Items))
	for _, it := range so.Items {
		amount := it.Rate.Mul(it.Qty)
		tax := taxByItem[it.ItemCode]
		out = append(out, entity.DeliveryNoteItem{
			ItemCode:      it.ItemCode,
			Qty:           it.Qty,
			StockQty:      it.Qty,
			Rate:          it.Rate,
			Amount:        amount,
			BaseAmount:    amount.Mul(conversionRate),
			NetAmount:     amount,
			BaseNetAmount: amount.Mul(conversionRate),
			TaxAmount:     tax,
			TotalAmount:   amount.Add(tax),
		})
	}
	return out
}
