package orders

import (
	"context"
	"time"

	"github.com/jhoicas/shopsync-erp/internal/application/dto"
	"github.com/jhoicas/shopsync-erp/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción: los repos entregados están
// atados a la tx y todo lo escrito se revierte si fn devuelve error.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.Repos) error) error
}

// ProductSyncer resuelve el código de ítem del ERP para una línea de la
// tienda, creando el ítem y su mapeo cuando el producto existe en la tienda
// pero aún no en el catálogo. Devuelve cadena vacía si la línea no tiene
// mapeo posible.
type ProductSyncer interface {
	EnsureItem(ctx context.Context, repos repository.Repos, line dto.ShopLineItem) (string, error)
}

// StorefrontOrderAPI acceso de lectura a los pedidos de la tienda, usado por
// el backfill de pedidos históricos. ListOrders entrega los pedidos del rango
// uno a uno vía fn, siguiendo la paginación de la tienda; un error de fn
// aborta el recorrido.
type StorefrontOrderAPI interface {
	ListOrders(ctx context.Context, from, to time.Time, fn func(order *dto.ShopOrder) error) error
}
