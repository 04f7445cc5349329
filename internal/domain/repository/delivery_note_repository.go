package repository

import (
	"context"

	"github.com/jhoicas/shopsync-erp/internal/domain/entity"
)

// DeliveryNoteRepository define el puerto de persistencia para Delivery Note
// y sus notas de devolución.
type DeliveryNoteRepository interface {
	Create(ctx context.Context, dn *entity.DeliveryNote) error
	// GetOriginalByShopOrderID devuelve la nota de entrega no-devolución del
	// pedido externo; nil si no existe.
	GetOriginalByShopOrderID(ctx context.Context, shopOrderID string) (*entity.DeliveryNote, error)
	ListByShopOrderID(ctx context.Context, shopOrderID string) ([]*entity.DeliveryNote, error)
	Submit(ctx context.Context, id string) error
	SetShopStatus(ctx context.Context, id, status string) error
}
