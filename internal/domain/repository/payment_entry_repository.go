package repository

import (
	"context"

	"github.com/jhoicas/shopsync-erp/internal/domain/entity"
)

// PaymentEntryRepository define el puerto de persistencia para Payment Entry.
type PaymentEntryRepository interface {
	Create(ctx context.Context, pe *entity.PaymentEntry) error
	Submit(ctx context.Context, id string) error
}
