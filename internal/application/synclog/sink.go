package synclog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/shopsync-erp/internal/domain/entity"
	"github.com/jhoicas/shopsync-erp/internal/domain/repository"
	"github.com/jhoicas/shopsync-erp/pkg/logger"
)

// Sink escribe registros en la bitácora de sincronización. Se invoca siempre
// fuera de la transacción de la operación: el registro debe quedar persistido
// aunque la operación haya hecho rollback. Si la escritura misma falla, el
// problema va al log estructurado; nunca se propaga al caller.
type Sink struct {
	repo repository.SyncLogRepository
	log  *logger.Logger
}

// NewSink construye el sink sobre el repositorio de bitácora.
func NewSink(repo repository.SyncLogRepository, log *logger.Logger) *Sink {
	return &Sink{repo: repo, log: log.WithModule("synclog")}
}

// Write persiste un registro de sincronización. exception queda vacío salvo en
// estados Error/Failed, donde lleva el detalle del fallo.
func (s *Sink) Write(ctx context.Context, method, status, message, exception, requestID string) {
	entry := &entity.SyncLog{
		ID:        uuid.New().String(),
		Method:    method,
		Status:    status,
		Message:   message,
		Exception: exception,
		RequestID: requestID,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		s.log.WithRequestID(requestID).Error().
			Err(err).
			Str("method", method).
			Str("status", status).
			Msg("no se pudo persistir el registro de sincronización")
		return
	}
	evt := s.log.WithRequestID(requestID).Info()
	if status == entity.SyncStatusError || status == entity.SyncStatusFailed {
		evt = s.log.WithRequestID(requestID).Warn()
	}
	evt.Str("method", method).Str("status", status).Msg(message)
}
