package catalog

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/shopsync-erp/internal/application/dto"
	"github.com/jhoicas/shopsync-erp/internal/application/orders"
	"github.com/jhoicas/shopsync-erp/internal/domain"
	"github.com/jhoicas/shopsync-erp/internal/domain/entity"
	"github.com/jhoicas/shopsync-erp/internal/domain/repository"
)

var _ orders.ProductSyncer = (*ProductSync)(nil)

// ProductSync resuelve líneas de la tienda contra el catálogo del ERP. El
// código de ítem nuevo es el variant id (o el product id si el producto no
// tiene variantes), igual que el identificador que usa la tienda.
type ProductSync struct{}

// NewProductSync construye el sincronizador de productos.
func NewProductSync() *ProductSync {
	return &ProductSync{}
}

// EnsureItem devuelve el código de ítem del ERP para la línea. Si no hay
// mapeo y la tienda reporta que el producto existe, crea el ítem y su mapeo
// dentro de la misma transacción del pedido. Cadena vacía = línea sin mapeo
// posible (producto borrado de la tienda o línea manual).
func (s *ProductSync) EnsureItem(ctx context.Context, repos repository.Repos, line dto.ShopLineItem) (string, error) {
	if line.ProductID == 0 {
		return "", nil
	}
	productID := strconv.FormatInt(line.ProductID, 10)
	variantID := strconv.FormatInt(line.VariantID, 10)

	ecom, err := repos.EcommerceItems.GetByIntegrationItem(ctx, productID, variantID)
	if err != nil {
		return "", err
	}
	if ecom != nil {
		return ecom.ERPItemCode, nil
	}
	if !line.ProductExists {
		return "", nil
	}

	itemCode := variantID
	if line.VariantID == 0 {
		itemCode = productID
	}
	itemName := line.Title
	uom := line.UOM
	if uom == "" {
		uom = "Nos"
	}

	exists, err := repos.Items.Exists(ctx, itemCode)
	if err != nil {
		return "", err
	}
	if !exists {
		if err := repos.Items.Create(ctx, itemCode, itemName, uom); err != nil && !errors.Is(err, domain.ErrDuplicate) {
			return "", err
		}
	}

	mapping := &entity.EcommerceItem{
		ID:                  uuid.New().String(),
		Integration:         orders.Integration,
		ERPItemCode:         itemCode,
		IntegrationItemCode: productID,
		VariantID:           variantID,
		CreatedAt:           time.Now(),
	}
	if err := repos.EcommerceItems.Create(ctx, mapping); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			ecom, err = repos.EcommerceItems.GetByIntegrationItem(ctx, productID, variantID)
			if err != nil {
				return "", err
			}
			if ecom != nil {
				return ecom.ERPItemCode, nil
			}
		}
		return "", err
	}
	return itemCode, nil
}
