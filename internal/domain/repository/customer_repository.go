package repository

import (
	"context"

	"github.com/jhoicas/shopsync-erp/internal/domain/entity"
)

// CustomerRepository define el puerto de persistencia para Customer.
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByShopCustomerID(ctx context.Context, shopCustomerID string) (*entity.Customer, error)
	// UpdateAddresses reemplaza las direcciones de facturación y envío del
	// cliente con las del último payload recibido.
	UpdateAddresses(ctx context.Context, id, billing, shipping string) error
}
