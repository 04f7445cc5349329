package repository

import (
	"context"
	"time"

	"github.com/jhoicas/shopsync-erp/internal/domain/entity"
)

// SettingRepository define el puerto de lectura de la configuración de la
// integración (con tablas hijas) y la puerta de scheduling.
type SettingRepository interface {
	Get(ctx context.Context, integration string) (*entity.Setting, error)
	// NeedToRun consulta si pasó el intervalo configurado desde la última
	// corrida del campo indicado; cuando devuelve true también actualiza la
	// marca de última corrida.
	NeedToRun(ctx context.Context, integration, intervalField, lastRunField string) (bool, error)
	SetLastInventorySync(ctx context.Context, integration string, t time.Time) error
	// DisableOldOrderSync apaga el flag de backfill una vez procesado el rango.
	DisableOldOrderSync(ctx context.Context, integration string) error
}
