package repository

import (
	"context"

	"github.com/jhoicas/shopsync-erp/internal/domain/entity"
)

// SyncLogRepository define el puerto de escritura de la bitácora de
// sincronización. Se usa siempre fuera de la transacción de la operación:
// el log debe sobrevivir al rollback.
type SyncLogRepository interface {
	Create(ctx context.Context, log *entity.SyncLog) error
}
