package dto

// ShopVariant variante de producto tal como la devuelve la API de la tienda.
// InventoryItemID es el identificador contra el que se ajustan niveles y costo.
type ShopVariant struct {
	ID              int64  `json:"id"`
	SKU             string `json:"sku"`
	InventoryItemID int64  `json:"inventory_item_id"`
}
