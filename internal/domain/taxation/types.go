package taxation

import "github.com/shopspring/decimal"

// LineItem línea de pedido normalizada para el resolvedor. ItemCode vacío
// significa que el producto no tiene mapeo en el catálogo del ERP.
type LineItem struct {
	ItemCode  string
	Title     string
	Name      string
	Vendor    string
	UOM       string
	Qty       decimal.Decimal
	Price     decimal.Decimal
	Discounts []decimal.Decimal
	TaxLines  []TaxLine
}

// TaxLine impuesto sobre una línea o un cargo de envío.
// Rate es fracción (0–1); en el detalle por ítem se expone como porcentaje (×100).
type TaxLine struct {
	Title string
	Rate  decimal.Decimal
	Price decimal.Decimal
}

// ShippingLine cargo de envío con sus descuentos e impuestos propios.
type ShippingLine struct {
	Title     string
	Price     decimal.Decimal
	Discounts []decimal.Decimal
	TaxLines  []TaxLine
}

// TotalDiscount suma de los descuentos asignados a la línea.
func (l LineItem) TotalDiscount() decimal.Decimal {
	return sum(l.Discounts)
}

// TotalTaxes suma de los montos de impuestos de la línea.
func (l LineItem) TotalTaxes() decimal.Decimal {
	t := decimal.Zero
	for _, tax := range l.TaxLines {
		t = t.Add(tax.Price)
	}
	return t
}

func sum(values []decimal.Decimal) decimal.Decimal {
	t := decimal.Zero
	for _, v := range values {
		t = t.Add(v)
	}
	return t
}

var hundred = decimal.NewFromInt(100)
