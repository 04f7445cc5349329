package entity

import "time"

// Setting configuración de la integración persistida en base de datos, con
// sus tablas hijas (mapeos por vendor, cuentas por impuesto, cuentas por
// método de pago y mapeo bodega→ubicación de la tienda).
type Setting struct {
	Integration string
	Company     string

	// Maestro por defecto
	DefaultCustomer string
	CostCenter      string
	Warehouse       string

	// Series documentales
	SalesOrderSeries         string
	SalesInvoiceSeries       string
	DeliveryNoteReturnSeries string
	CreditNoteSeries         string

	// Cuentas contables por defecto
	DefaultSalesTaxAccount        string
	DefaultShippingChargesAccount string
	CashBankAccount               string

	// Comportamiento
	SyncSalesInvoice  bool
	ConsolidateTaxes  bool
	AddShippingAsItem bool
	ShippingItem      string

	// Inventario
	UpdateStockLevels      bool
	InventorySyncFrequency int // minutos entre corridas del push de inventario
	LastInventorySync      time.Time

	// Backfill de pedidos históricos
	SyncOldOrders bool
	OldOrdersFrom time.Time
	OldOrdersTo   time.Time

	VendorAccountMappings []VendorAccountMapping
	TaxAccounts           []TaxAccount
	PaymentMethodAccounts []PaymentMethodAccount
	WarehouseLocationMap  map[string]string // bodega ERP -> location id de la tienda
}

// VendorAccountMapping par (cuenta de ingresos de envío, centro de costos)
// por vendor. Vendor vacío actúa como entrada por defecto.
type VendorAccountMapping struct {
	Vendor                 string // vacío = default
	ShippingRevenueAccount string
	VendorCostCenter       string
}

// TaxAccount cuenta contable configurada para un título de impuesto de la tienda.
type TaxAccount struct {
	ShopTaxTitle   string
	TaxAccount     string
	TaxDescription string
}

// PaymentMethodAccount cuenta bancaria asociada a un método de pago de la tienda.
type PaymentMethodAccount struct {
	PaymentMethod string
	Account       string
	CostCenter    string
}

// TaxAccountFor devuelve la cuenta y descripción configuradas para un título
// de impuesto; cadenas vacías si no hay entrada.
func (s *Setting) TaxAccountFor(title string) (account, description string) {
	for _, ta := range s.TaxAccounts {
		if ta.ShopTaxTitle == title {
			return ta.TaxAccount, ta.TaxDescription
		}
	}
	return "", ""
}

// BankAccountFor resuelve la cuenta bancaria para los métodos de pago del
// pedido: primera coincidencia configurada, si no la cuenta por defecto.
func (s *Setting) BankAccountFor(gatewayNames []string) string {
	for _, pma := range s.PaymentMethodAccounts {
		for _, gw := range gatewayNames {
			if pma.PaymentMethod == gw && pma.Account != "" {
				return pma.Account
			}
		}
	}
	return s.CashBankAccount
}
