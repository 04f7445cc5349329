package repository

import (
	"context"

	"github.com/jhoicas/shopsync-erp/internal/domain/entity"
)

// SalesInvoiceRepository define el puerto de persistencia para Sales Invoice
// (incluye notas crédito: IsReturn = true).
type SalesInvoiceRepository interface {
	Create(ctx context.Context, inv *entity.SalesInvoice) error
	GetByShopOrderID(ctx context.Context, shopOrderID string) (*entity.SalesInvoice, error)
	Submit(ctx context.Context, id string) error
	SetShopStatus(ctx context.Context, id, status string) error
}
