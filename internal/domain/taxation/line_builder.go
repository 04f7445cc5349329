package taxation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/shopsync-erp/internal/domain/entity"
)

// BuildOrderItems convierte las líneas de la tienda en ítems del pedido de
// venta. Si alguna línea no tiene mapeo de producto (ItemCode vacío) no se
// construye ningún ítem: se devuelven los títulos faltantes para que el motor
// aborte la creación con severidad Error en lugar de crear un pedido parcial.
func BuildOrderItems(
	lines []LineItem,
	setting *entity.Setting,
	deliveryDate time.Time,
	taxesInclusive bool,
) (items []entity.OrderItem, missing []string) {
	for _, line := range lines {
		if line.ItemCode == "" {
			missing = append(missing, line.Title)
		}
	}
	if len(missing) > 0 {
		return nil, missing
	}

	for _, line := range lines {
		uom := line.UOM
		if uom == "" {
			uom = "Nos"
		}
		items = append(items, entity.OrderItem{
			ItemCode:        line.ItemCode,
			ItemName:        line.Name,
			Qty:             line.Qty,
			Rate:            netRate(line, taxesInclusive),
			DeliveryDate:    deliveryDate,
			Warehouse:       setting.Warehouse,
			StockUOM:        uom,
			DiscountPerUnit: line.TotalDiscount().Div(line.Qty),
		})
	}
	return items, nil
}

// netRate precio neto unitario: el precio de lista menos la porción unitaria
// de descuentos y, si los precios incluyen impuestos, también la porción
// unitaria de impuestos.
func netRate(line LineItem, taxesInclusive bool) decimal.Decimal {
	discount := line.TotalDiscount()
	if !taxesInclusive {
		return line.Price.Sub(discount.Div(line.Qty))
	}
	return line.Price.Sub(discount.Add(line.TotalTaxes()).Div(line.Qty))
}
