package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/shopsync-erp/internal/domain"
	"github.com/jhoicas/shopsync-erp/internal/domain/entity"
	"github.com/jhoicas/shopsync-erp/internal/domain/repository"
)

var _ repository.PaymentEntryRepository = (*PaymentEntryRepo)(nil)

// PaymentEntryRepo implementación sobre PostgreSQL (usable con pool o tx).
type PaymentEntryRepo struct {
	q Querier
}

// NewPaymentEntryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPaymentEntryRepository(q Querier) *PaymentEntryRepo {
	return &PaymentEntryRepo{q: q}
}

// Create persiste la entrada de pago.
func (r *PaymentEntryRepo) Create(ctx context.Context, pe *entity.PaymentEntry) error {
	query := `
		INSERT INTO payment_entries (id, payment_type, party_id, reference_doctype, reference_id,
			reference_no, posting_date, reference_date, bank_account, paid_amount, docstatus, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		pe.ID, pe.PaymentType, pe.PartyID, pe.ReferenceDoctype, pe.ReferenceID,
		pe.ReferenceNo, pe.PostingDate, pe.ReferenceDate, pe.BankAccount, pe.PaidAmount,
		pe.DocStatus, pe.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert payment entry: %w", err)
	}
	return nil
}

// Submit marca la entrada de pago como enviada.
func (r *PaymentEntryRepo) Submit(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE payment_entries SET docstatus = $2 WHERE id = $1`, id, entity.DocStatusSubmitted)
	if err != nil {
		return fmt.Errorf("update payment entry docstatus: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
