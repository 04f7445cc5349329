package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/shopsync-erp/internal/domain/entity"
	"github.com/jhoicas/shopsync-erp/internal/domain/repository"
)

var _ repository.SyncLogRepository = (*SyncLogRepo)(nil)

// SyncLogRepo implementación sobre PostgreSQL. Siempre se usa con el pool,
// nunca dentro de una tx: la bitácora debe sobrevivir al rollback.
type SyncLogRepo struct {
	q Querier
}

// NewSyncLogRepository construye el adaptador.
func NewSyncLogRepository(q Querier) *SyncLogRepo {
	return &SyncLogRepo{q: q}
}

// Create persiste un registro de sincronización.
func (r *SyncLogRepo) Create(ctx context.Context, log *entity.SyncLog) error {
	query := `
		INSERT INTO sync_logs (id, method, status, message, exception, request_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		log.ID, log.Method, log.Status, log.Message, log.Exception, log.RequestID, log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sync log: %w", err)
	}
	return nil
}
