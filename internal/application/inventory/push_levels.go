package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/shopsync-erp/internal/application/synclog"
	"github.com/jhoicas/shopsync-erp/internal/domain"
	"github.com/jhoicas/shopsync-erp/internal/domain/entity"
	"github.com/jhoicas/shopsync-erp/internal/domain/repository"
	"github.com/jhoicas/shopsync-erp/pkg/logger"
)

// Métodos registrados en la bitácora por el pipeline de inventario.
const (
	methodInventoryPush = "inventory/push"
	methodCostPush      = "inventory/cost"
)

// Tamaño de lote del push: cada lote produce su propio registro de bitácora.
const batchSize = 50

const integration = "shopify"

// Campos del setting que gobiernan la puerta de scheduling.
const (
	intervalField = "inventory_sync_frequency"
	lastRunField  = "last_inventory_sync"
)

// PushUseCase recolecta los niveles de inventario sucios del ERP y los empuja
// a la tienda en lotes. Una fila está sucia si su stock cambió después de la
// última sincronización del ítem; las fallas de una fila no detienen el lote.
type PushUseCase struct {
	settings  repository.SettingRepository
	levels    repository.InventoryRepository
	ecomItems repository.EcommerceItemRepository
	api       StorefrontInventoryAPI
	sink      *synclog.Sink
	log       *logger.Logger
}

// NewPushUseCase construye el pipeline de push de inventario.
func NewPushUseCase(
	settings repository.SettingRepository,
	levels repository.InventoryRepository,
	ecomItems repository.EcommerceItemRepository,
	api StorefrontInventoryAPI,
	sink *synclog.Sink,
	log *logger.Logger,
) *PushUseCase {
	return &PushUseCase{
		settings:  settings,
		levels:    levels,
		ecomItems: ecomItems,
		api:       api,
		sink:      sink,
		log:       log.WithModule("inventory"),
	}
}

// Run ejecuta una corrida completa del pipeline si la puerta de scheduling lo
// permite: pasó el intervalo configurado desde la última corrida y el update
// de niveles está habilitado.
func (u *PushUseCase) Run(ctx context.Context, requestID string) {
	log := u.log.WithRequestID(requestID)

	due, err := u.settings.NeedToRun(ctx, integration, intervalField, lastRunField)
	if err != nil {
		log.Error().Err(err).Msg("no se pudo evaluar la puerta de scheduling")
		return
	}
	if !due {
		return
	}

	setting, err := u.settings.Get(ctx, integration)
	if err != nil || setting == nil {
		log.Error().Err(err).Msg("configuración de la integración no disponible")
		return
	}
	if !setting.UpdateStockLevels {
		return
	}

	levels, err := u.collect(ctx, setting)
	if err != nil {
		u.sink.Write(ctx, methodInventoryPush, entity.SyncStatusError,
			"no se pudieron recolectar los niveles de inventario", err.Error(), requestID)
		return
	}
	if len(levels) == 0 {
		log.Debug().Msg("sin niveles sucios, nada que empujar")
		return
	}
	log.Info().Int("levels", len(levels)).Msg("niveles sucios recolectados")

	for start := 0; start < len(levels); start += batchSize {
		end := start + batchSize
		if end > len(levels) {
			end = len(levels)
		}
		u.pushBatch(ctx, requestID, levels[start:end])
	}

	if err := u.settings.SetLastInventorySync(ctx, integration, time.Now()); err != nil {
		log.Error().Err(err).Msg("no se pudo actualizar la marca de última sincronización")
	}
}

// collect junta las filas sucias de todas las bodegas mapeadas a una
// ubicación de la tienda. Las bodegas grupo se consolidan sumando sus
// descendientes. El orden de salida es determinista (ítem, bodega).
func (u *PushUseCase) collect(ctx context.Context, setting *entity.Setting) ([]entity.InventoryLevel, error) {
	var leaves []string
	var levels []entity.InventoryLevel

	warehouses := make([]string, 0, len(setting.WarehouseLocationMap))
	for w := range setting.WarehouseLocationMap {
		warehouses = append(warehouses, w)
	}
	sort.Strings(warehouses)

	for _, w := range warehouses {
		group, err := u.levels.IsGroupWarehouse(ctx, w)
		if err != nil {
			return nil, err
		}
		if !group {
			leaves = append(leaves, w)
			continue
		}
		rows, err := u.levels.DirtyLevelsOfGroupWarehouse(ctx, w, integration)
		if err != nil {
			return nil, err
		}
		levels = append(levels, rows...)
	}

	if len(leaves) > 0 {
		rows, err := u.levels.DirtyLevels(ctx, leaves, integration)
		if err != nil {
			return nil, err
		}
		levels = append(levels, rows...)
	}

	for i := range levels {
		levels[i].ShopLocationID = setting.WarehouseLocationMap[levels[i].Warehouse]
	}
	sort.Slice(levels, func(i, j int) bool {
		if levels[i].ItemCode != levels[j].ItemCode {
			return levels[i].ItemCode < levels[j].ItemCode
		}
		return levels[i].Warehouse < levels[j].Warehouse
	})
	return levels, nil
}

// pushBatch empuja un lote y cierra con un registro de bitácora cuyo estado
// resume el lote según el porcentaje de éxitos: Success (100%), Failed (0%) o
// Partial Success. "Not Found" se marca sincronizado (la variante ya no
// existe y reintentar no la va a traer de vuelta) pero NO cuenta como éxito.
func (u *PushUseCase) pushBatch(ctx context.Context, requestID string, batch []entity.InventoryLevel) {
	now := time.Now()
	var success int
	var failed []string

	for i := range batch {
		level := &batch[i]
		u.pushLevel(ctx, requestID, level)

		switch level.Status {
		case entity.PushStatusSuccess, entity.PushStatusNotFound:
			if level.Status == entity.PushStatusSuccess {
				success++
			}
			if err := u.ecomItems.UpdateInventorySyncedOn(ctx, level.EcomItemID, now); err != nil {
				u.log.WithRequestID(requestID).Error().Err(err).
					Str("item", level.ItemCode).
					Msg("no se pudo marcar el ítem como sincronizado")
			}
		case entity.PushStatusFailed:
			failed = append(failed, fmt.Sprintf("%s@%s: %s", level.ItemCode, level.Warehouse, level.FailureReason))
		}
	}

	status := entity.SyncStatusSuccess
	switch {
	case success == 0:
		status = entity.SyncStatusFailed
	case success < len(batch):
		status = entity.SyncStatusPartialSuccess
	}

	message := fmt.Sprintf("inventario: %d/%d filas sincronizadas (%.0f%%)",
		success, len(batch), float64(success)*100/float64(len(batch)))
	u.sink.Write(ctx, methodInventoryPush, status, message, strings.Join(failed, "; "), requestID)
}

// pushLevel empuja una fila: resuelve la variante, fija el nivel disponible
// (actual − reservado, truncado a entero) y luego intenta el costo. El costo
// es secundario: su falla se registra aparte y no cambia el estado de la fila.
func (u *PushUseCase) pushLevel(ctx context.Context, requestID string, level *entity.InventoryLevel) {
	variant, err := u.api.FindVariant(ctx, level.VariantID)
	if err != nil {
		u.classifyFailure(level, err)
		return
	}

	available := level.ActualQty.Sub(level.ReservedQty).IntPart()
	if err := u.api.SetInventoryLevel(ctx, level.ShopLocationID, variant.InventoryItemID, available, level.Cost); err != nil {
		u.classifyFailure(level, err)
		return
	}
	level.Status = entity.PushStatusSuccess

	if level.Cost.IsPositive() {
		if err := u.api.UpdateItemCost(ctx, variant.InventoryItemID, level.Cost); err != nil {
			u.sink.Write(ctx, methodCostPush, entity.SyncStatusError,
				fmt.Sprintf("costo del ítem %s no actualizado", level.ItemCode), err.Error(), requestID)
		}
	}
}

// classifyFailure separa "el recurso ya no existe en la tienda" (Not Found,
// se da por sincronizado) de las fallas reintentables (Failed, la fila sigue
// sucia para la próxima corrida).
func (u *PushUseCase) classifyFailure(level *entity.InventoryLevel, err error) {
	if errors.Is(err, domain.ErrRemoteNotFound) {
		level.Status = entity.PushStatusNotFound
		return
	}
	level.Status = entity.PushStatusFailed
	level.FailureReason = err.Error()
}
