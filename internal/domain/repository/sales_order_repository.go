package repository

import (
	"context"

	"github.com/jhoicas/shopsync-erp/internal/domain/entity"
)

// SalesOrderRepository define el puerto de persistencia para Sales Order.
// Create devuelve domain.ErrDuplicate si ya existe un pedido para el mismo
// shop_order_id: el guard de idempotencia es el constraint único, no un
// lookup-then-create.
type SalesOrderRepository interface {
	Create(ctx context.Context, so *entity.SalesOrder) error
	GetByShopOrderID(ctx context.Context, shopOrderID string) (*entity.SalesOrder, error)
	Submit(ctx context.Context, id string) error
	Cancel(ctx context.Context, id string) error
	SetShopStatus(ctx context.Context, id, status string) error
}
