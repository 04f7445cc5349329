package taxation

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/shopsync-erp/internal/domain"
	"github.com/jhoicas/shopsync-erp/internal/domain/entity"
)

// Tipo de cargo para la resolución de cuenta por defecto.
const (
	chargeSalesTax = "sales_tax"
	chargeShipping = "shipping"
)

// VendorAccounts resultado del reductor de mapeos por vendor.
type VendorAccounts struct {
	ShippingRevenueAccount string
	CostCenter             string
}

// ResolveVendorAccounts reduce los mapeos por vendor de las líneas del pedido
// a un único par (cuenta de envío, centro de costos). Política: se recorren
// las líneas en orden, cada una resuelve match exacto de vendor y si no la
// entrada por defecto (vendor vacío); gana el último match. Determinista para
// un mismo pedido y tabla de mapeos.
func ResolveVendorAccounts(vendors []string, mappings []entity.VendorAccountMapping) VendorAccounts {
	var out VendorAccounts
	for _, vendor := range vendors {
		if m, ok := lookupMapping(vendor, mappings); ok {
			out.ShippingRevenueAccount = m.ShippingRevenueAccount
			out.CostCenter = m.VendorCostCenter
		}
	}
	return out
}

func lookupMapping(vendor string, mappings []entity.VendorAccountMapping) (entity.VendorAccountMapping, bool) {
	for _, m := range mappings {
		if m.Vendor != "" && m.Vendor == vendor {
			return m, true
		}
	}
	for _, m := range mappings {
		if m.Vendor == "" {
			return m, true
		}
	}
	return entity.VendorAccountMapping{}, false
}

// BuildTaxes produce las filas contables de impuestos y envío del pedido.
// Devuelve además los ítems extra a anexar al pedido cuando el envío está
// configurado como línea de ítem en lugar de fila de impuestos.
// Falla con ErrConfiguration si alguna cuenta no resuelve (nunca ruteo mudo a cero).
func BuildTaxes(
	lines []LineItem,
	shipping []ShippingLine,
	setting *entity.Setting,
	deliveryDate time.Time,
	taxesInclusive bool,
) (taxes []entity.TaxRow, shippingItems []entity.OrderItem, err error) {
	vendors := make([]string, 0, len(lines))
	for _, l := range lines {
		vendors = append(vendors, l.Vendor)
	}
	vendor := ResolveVendorAccounts(vendors, setting.VendorAccountMappings)

	costCenter := setting.CostCenter
	if vendor.CostCenter != "" {
		costCenter = vendor.CostCenter
	}

	for _, line := range lines {
		for _, tax := range line.TaxLines {
			account := vendor.ShippingRevenueAccount
			if account == "" {
				account, err = taxAccountHead(setting, tax.Title, chargeSalesTax)
				if err != nil {
					return nil, nil, err
				}
			}
			taxes = append(taxes, entity.TaxRow{
				ChargeType:  entity.ChargeTypeActual,
				AccountHead: account,
				Description: taxDescription(setting, tax),
				TaxAmount:   tax.Price,
				CostCenter:  costCenter,
				ItemWiseTaxDetail: map[string]entity.TaxDetail{
					line.ItemCode: {Rate: tax.Rate.Mul(hundred), Amount: tax.Price},
				},
			})
		}
	}

	shippingAsItem := setting.AddShippingAsItem && setting.ShippingItem != ""

	for _, charge := range shipping {
		if !charge.Price.IsZero() {
			discounted := charge.Price.Sub(sum(charge.Discounts))
			totalTax := decimal.Zero
			for _, tax := range charge.TaxLines {
				totalTax = totalTax.Add(tax.Price)
			}
			if taxesInclusive {
				discounted = discounted.Sub(totalTax)
			}

			if shippingAsItem {
				shippingItems = append(shippingItems, entity.OrderItem{
					ItemCode:     setting.ShippingItem,
					Rate:         discounted,
					Qty:          decimal.NewFromInt(1),
					StockUOM:     "Nos",
					Warehouse:    setting.Warehouse,
					DeliveryDate: deliveryDate,
				})
			} else {
				account := vendor.ShippingRevenueAccount
				if account == "" {
					account, err = taxAccountHead(setting, charge.Title, chargeShipping)
					if err != nil {
						return nil, nil, err
					}
				}
				_, desc := setting.TaxAccountFor(charge.Title)
				if desc == "" {
					desc = charge.Title
				}
				taxes = append(taxes, entity.TaxRow{
					ChargeType:  entity.ChargeTypeActual,
					AccountHead: account,
					Description: desc,
					TaxAmount:   discounted,
					CostCenter:  costCenter,
				})
			}
		}

		// Los impuestos del cargo de envío se emiten siempre, aun si el cargo es cero.
		for _, tax := range charge.TaxLines {
			account := vendor.ShippingRevenueAccount
			if account == "" {
				account, err = taxAccountHead(setting, tax.Title, chargeSalesTax)
				if err != nil {
					return nil, nil, err
				}
			}
			row := entity.TaxRow{
				ChargeType:  entity.ChargeTypeActual,
				AccountHead: account,
				Description: taxDescription(setting, tax),
				TaxAmount:   tax.Price,
				CostCenter:  costCenter,
			}
			if shippingAsItem {
				row.ItemWiseTaxDetail = map[string]entity.TaxDetail{
					setting.ShippingItem: {Rate: tax.Rate.Mul(hundred), Amount: tax.Price},
				}
			}
			taxes = append(taxes, row)
		}
	}

	if setting.ConsolidateTaxes {
		taxes = Consolidate(taxes)
	}
	return taxes, shippingItems, nil
}

// taxAccountHead resuelve la cuenta contable para un título de impuesto:
// cuenta configurada por título, si no la cuenta por defecto del tipo de
// cargo. Sin cuenta resuelta la operación falla (ErrConfiguration).
func taxAccountHead(setting *entity.Setting, title, chargeType string) (string, error) {
	account, _ := setting.TaxAccountFor(title)
	if account == "" {
		switch chargeType {
		case chargeSalesTax:
			account = setting.DefaultSalesTaxAccount
		case chargeShipping:
			account = setting.DefaultShippingChargesAccount
		}
	}
	if account == "" {
		return "", fmt.Errorf("%w: cuenta contable no especificada para el impuesto %q", domain.ErrConfiguration, title)
	}
	return account, nil
}

func taxDescription(setting *entity.Setting, tax TaxLine) string {
	if _, desc := setting.TaxAccountFor(tax.Title); desc != "" {
		return desc
	}
	return fmt.Sprintf("%s - %s%%", tax.Title, tax.Rate.Mul(hundred).StringFixed(2))
}

// Consolidate fusiona las filas que comparten cuenta contable: suma los
// montos y une los detalles por ítem (en colisión de clave gana el último).
// El orden de salida es el de primera aparición de cada cuenta.
func Consolidate(taxes []entity.TaxRow) []entity.TaxRow {
	byAccount := make(map[string]*entity.TaxRow)
	order := make([]string, 0, len(taxes))

	for _, tax := range taxes {
		row, ok := byAccount[tax.AccountHead]
		if !ok {
			row = &entity.TaxRow{
				ChargeType:        entity.ChargeTypeActual,
				AccountHead:       tax.AccountHead,
				Description:       tax.Description,
				CostCenter:        tax.CostCenter,
				TaxAmount:         decimal.Zero,
				ItemWiseTaxDetail: make(map[string]entity.TaxDetail),
			}
			byAccount[tax.AccountHead] = row
			order = append(order, tax.AccountHead)
		}
		row.TaxAmount = row.TaxAmount.Add(tax.TaxAmount)
		for code, detail := range tax.ItemWiseTaxDetail {
			row.ItemWiseTaxDetail[code] = detail
		}
	}

	out := make([]entity.TaxRow, 0, len(order))
	for _, account := range order {
		out = append(out, *byAccount[account])
	}
	return out
}
