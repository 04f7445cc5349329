package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/shopsync-erp/internal/domain"
	"github.com/jhoicas/shopsync-erp/internal/domain/entity"
	"github.com/jhoicas/shopsync-erp/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implementación de CustomerRepository (usable con pool o tx).
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

// Create persiste un nuevo cliente. shop_customer_id tiene constraint única.
func (r *CustomerRepo) Create(ctx context.Context, customer *entity.Customer) error {
	query := `
		INSERT INTO customers (id, shop_customer_id, name, email, phone,
			billing_address, shipping_address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		customer.ID, customer.ShopCustomerID, customer.Name, customer.Email, customer.Phone,
		nullIfEmpty(customer.BillingAddress), nullIfEmpty(customer.ShippingAddress),
		customer.CreatedAt, customer.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// GetByShopCustomerID obtiene el cliente por su id en la tienda; nil si no existe.
func (r *CustomerRepo) GetByShopCustomerID(ctx context.Context, shopCustomerID string) (*entity.Customer, error) {
	query := `
		SELECT id, shop_customer_id, name, email, phone,
			COALESCE(billing_address::text, ''), COALESCE(shipping_address::text, ''),
			created_at, updated_at
		FROM customers WHERE shop_customer_id = $1`
	var c entity.Customer
	err := r.q.QueryRow(ctx, query, shopCustomerID).Scan(
		&c.ID, &c.ShopCustomerID, &c.Name, &c.Email, &c.Phone,
		&c.BillingAddress, &c.ShippingAddress, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}

// UpdateAddresses refresca las direcciones con las del último pedido recibido.
func (r *CustomerRepo) UpdateAddresses(ctx context.Context, id, billing, shipping string) error {
	query := `
		UPDATE customers SET billing_address = $2, shipping_address = $3, updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, id, nullIfEmpty(billing), nullIfEmpty(shipping))
	if err != nil {
		return fmt.Errorf("update customer addresses: %w", err)
	}
	return nil
}

// nullIfEmpty evita insertar cadenas vacías en columnas JSONB.
func nullIfEmpty(s string) *string {
	if s == "" || s == "null" {
		return nil
	}
	return &s
}
