package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/shopsync-erp/internal/application/dto"
	"github.com/jhoicas/shopsync-erp/internal/application/inventory"
	"github.com/jhoicas/shopsync-erp/internal/application/synclog"
	"github.com/jhoicas/shopsync-erp/internal/domain"
	"github.com/jhoicas/shopsync-erp/internal/domain/entity"
	"github.com/jhoicas/shopsync-erp/pkg/logger"
)

// ── fakes ─────────────────────────────────────────────────────────────────────

type fakeSettings struct {
	setting  *entity.Setting
	due      bool
	lastSync time.Time
}

func (f *fakeSettings) Get(_ context.Context, _ string) (*entity.Setting, error) {
	return f.setting, nil
}

func (f *fakeSettings) NeedToRun(_ context.Context, _, _, _ string) (bool, error) {
	return f.due, nil
}

func (f *fakeSettings) SetLastInventorySync(_ context.Context, _ string, t time.Time) error {
	f.lastSync = t
	return nil
}

func (f *fakeSettings) DisableOldOrderSync(_ context.Context, _ string) error { return nil }

type fakeLevels struct {
	groups     map[string]bool
	leafRows   []entity.InventoryLevel
	groupRows  map[string][]entity.InventoryLevel
	leafCalls  [][]string
	groupCalls []string
}

func (f *fakeLevels) IsGroupWarehouse(_ context.Context, w string) (bool, error) {
	return f.groups[w], nil
}

func (f *fakeLevels) DirtyLevels(_ context.Context, warehouses []string, _ string) ([]entity.InventoryLevel, error) {
	f.leafCalls = append(f.leafCalls, warehouses)
	return f.leafRows, nil
}

func (f *fakeLevels) DirtyLevelsOfGroupWarehouse(_ context.Context, w, _ string) ([]entity.InventoryLevel, error) {
	f.groupCalls = append(f.groupCalls, w)
	return f.groupRows[w], nil
}

type fakeEcomItems struct {
	synced map[string]time.Time
}

func (f *fakeEcomItems) Create(_ context.Context, _ *entity.EcommerceItem) error { return nil }

func (f *fakeEcomItems) GetByIntegrationItem(_ context.Context, _, _ string) (*entity.EcommerceItem, error) {
	return nil, nil
}

func (f *fakeEcomItems) UpdateInventorySyncedOn(_ context.Context, id string, t time.Time) error {
	if f.synced == nil {
		f.synced = map[string]time.Time{}
	}
	f.synced[id] = t
	return nil
}

// fakeShopAPI inyecta fallas por variante o por ítem de inventario.
type fakeShopAPI struct {
	variants   map[string]*dto.ShopVariant
	variantErr map[string]error
	setErr     map[int64]error
	costErr    map[int64]error
	setCalls   []setCall
	costCalls  []int64
}

type setCall struct {
	locationID      string
	inventoryItemID int64
	available       int64
	cost            decimal.Decimal
}

func (f *fakeShopAPI) FindVariant(_ context.Context, variantID string) (*dto.ShopVariant, error) {
	if err := f.variantErr[variantID]; err != nil {
		return nil, err
	}
	v, ok := f.variants[variantID]
	if !ok {
		return nil, domain.ErrRemoteNotFound
	}
	return v, nil
}

func (f *fakeShopAPI) SetInventoryLevel(_ context.Context, locationID string, inventoryItemID, available int64, cost decimal.Decimal) error {
	if err := f.setErr[inventoryItemID]; err != nil {
		return err
	}
	f.setCalls = append(f.setCalls, setCall{locationID, inventoryItemID, available, cost})
	return nil
}

func (f *fakeShopAPI) UpdateItemCost(_ context.Context, inventoryItemID int64, _ decimal.Decimal) error {
	if err := f.costErr[inventoryItemID]; err != nil {
		return err
	}
	f.costCalls = append(f.costCalls, inventoryItemID)
	return nil
}

type fakeSyncLogs struct {
	entries []*entity.SyncLog
}

func (f *fakeSyncLogs) Create(_ context.Context, log *entity.SyncLog) error {
	f.entries = append(f.entries, log)
	return nil
}

func (f *fakeSyncLogs) byMethod(method string) []*entity.SyncLog {
	var out []*entity.SyncLog
	for _, e := range f.entries {
		if e.Method == method {
			out = append(out, e)
		}
	}
	return out
}

// ── helpers ──────────────────────────────────────────────────────────────────

func pushSetting() *entity.Setting {
	return &entity.Setting{
		Integration:       "shopify",
		UpdateStockLevels: true,
		WarehouseLocationMap: map[string]string{
			"Bodega Web - SC": "9001",
		},
	}
}

func level(ecomID, itemCode, variantID, warehouse string, actual, reserved, cost int64) entity.InventoryLevel {
	return entity.InventoryLevel{
		EcomItemID:  ecomID,
		ItemCode:    itemCode,
		VariantID:   variantID,
		Warehouse:   warehouse,
		ActualQty:   decimal.NewFromInt(actual),
		ReservedQty: decimal.NewFromInt(reserved),
		Cost:        decimal.NewFromInt(cost),
	}
}

func newPushEnv(settings *fakeSettings, levels *fakeLevels, api *fakeShopAPI) (*inventory.PushUseCase, *fakeEcomItems, *fakeSyncLogs) {
	log := logger.New(logger.Config{Env: "development", Level: "error"})
	ecom := &fakeEcomItems{}
	logs := &fakeSyncLogs{}
	uc := inventory.NewPushUseCase(settings, levels, ecom, api, synclog.NewSink(logs, log), log)
	return uc, ecom, logs
}

// ── tests ─────────────────────────────────────────────────────────────────────

// Si la puerta de scheduling dice que no toca, la corrida no consulta nada.
func TestRun_PuertaCerrada(t *testing.T) {
	settings := &fakeSettings{setting: pushSetting(), due: false}
	levels := &fakeLevels{}
	uc, _, logs := newPushEnv(settings, levels, &fakeShopAPI{})

	uc.Run(context.Background(), "run-1")

	assert.Empty(t, levels.leafCalls)
	assert.Empty(t, levels.groupCalls)
	assert.Empty(t, logs.entries)
}

// Con el update de niveles deshabilitado la puerta se consume pero no se
// recolecta nada.
func TestRun_UpdateDeshabilitado(t *testing.T) {
	setting := pushSetting()
	setting.UpdateStockLevels = false
	settings := &fakeSettings{setting: setting, due: true}
	levels := &fakeLevels{}
	uc, _, logs := newPushEnv(settings, levels, &fakeShopAPI{})

	uc.Run(context.Background(), "run-1")

	assert.Empty(t, levels.leafCalls)
	assert.Empty(t, logs.entries)
}

// Corrida feliz: el disponible es actual − reservado truncado, la fila queda
// marcada como sincronizada y el costo positivo se empuja aparte.
func TestRun_PushFeliz(t *testing.T) {
	settings := &fakeSettings{setting: pushSetting(), due: true}
	levels := &fakeLevels{
		leafRows: []entity.InventoryLevel{
			level("ecom-1", "ITEM-001", "21", "Bodega Web - SC", 10, 3, 40),
		},
	}
	api := &fakeShopAPI{
		variants: map[string]*dto.ShopVariant{"21": {ID: 21, InventoryItemID: 501}},
	}
	uc, ecom, logs := newPushEnv(settings, levels, api)

	uc.Run(context.Background(), "run-1")

	require.Len(t, api.setCalls, 1)
	assert.Equal(t, "9001", api.setCalls[0].locationID)
	assert.Equal(t, int64(501), api.setCalls[0].inventoryItemID)
	assert.Equal(t, int64(7), api.setCalls[0].available)
	assert.True(t, decimal.NewFromInt(40).Equal(api.setCalls[0].cost),
		"el costo de la fila viaja en el set del nivel")
	assert.Equal(t, []int64{501}, api.costCalls)

	assert.Contains(t, ecom.synced, "ecom-1")
	assert.False(t, settings.lastSync.IsZero(), "la marca de última corrida se actualiza")

	entries := logs.byMethod("inventory/push")
	require.Len(t, entries, 1)
	assert.Equal(t, entity.SyncStatusSuccess, entries[0].Status)
	assert.Contains(t, entries[0].Message, "1/1")
}

// Una falla reintentable deja la fila sucia (no se marca sincronizada) y el
// lote cierra en Partial Success con el detalle por fila.
func TestRun_FallaParcial(t *testing.T) {
	settings := &fakeSettings{setting: pushSetting(), due: true}
	levels := &fakeLevels{
		leafRows: []entity.InventoryLevel{
			level("ecom-1", "ITEM-001", "21", "Bodega Web - SC", 10, 0, 0),
			level("ecom-2", "ITEM-002", "22", "Bodega Web - SC", 5, 0, 0),
			level("ecom-3", "ITEM-003", "23", "Bodega Web - SC", 2, 0, 0),
		},
	}
	api := &fakeShopAPI{
		variants: map[string]*dto.ShopVariant{
			"21": {ID: 21, InventoryItemID: 501},
			"23": {ID: 23, InventoryItemID: 503},
		},
		variantErr: map[string]error{"22": errors.New("502 bad gateway")},
	}
	uc, ecom, logs := newPushEnv(settings, levels, api)

	uc.Run(context.Background(), "run-1")

	assert.Contains(t, ecom.synced, "ecom-1")
	assert.NotContains(t, ecom.synced, "ecom-2", "la fila fallida sigue sucia")
	assert.Contains(t, ecom.synced, "ecom-3")

	entries := logs.byMethod("inventory/push")
	require.Len(t, entries, 1)
	assert.Equal(t, entity.SyncStatusPartialSuccess, entries[0].Status)
	assert.Contains(t, entries[0].Message, "2/3")
	assert.Contains(t, entries[0].Exception, "ITEM-002@Bodega Web - SC")
}

// Una variante que ya no existe en la tienda se marca sincronizada (no hay
// nada que reintentar) pero no cuenta como éxito: un lote mixto cierra en
// Partial Success con el porcentaje calculado solo sobre los éxitos.
func TestRun_VarianteInexistenteNoEsExito(t *testing.T) {
	settings := &fakeSettings{setting: pushSetting(), due: true}
	levels := &fakeLevels{
		leafRows: []entity.InventoryLevel{
			level("ecom-1", "ITEM-001", "21", "Bodega Web - SC", 10, 0, 0),
			level("ecom-2", "ITEM-002", "22", "Bodega Web - SC", 5, 0, 0),
			level("ecom-3", "ITEM-003", "23", "Bodega Web - SC", 2, 0, 0),
		},
	}
	// La variante 22 no está registrada: FindVariant responde ErrRemoteNotFound.
	api := &fakeShopAPI{
		variants: map[string]*dto.ShopVariant{
			"21": {ID: 21, InventoryItemID: 501},
			"23": {ID: 23, InventoryItemID: 503},
		},
	}
	uc, ecom, logs := newPushEnv(settings, levels, api)

	uc.Run(context.Background(), "run-1")

	assert.Contains(t, ecom.synced, "ecom-2", "la fila borrada igual se marca sincronizada")

	entries := logs.byMethod("inventory/push")
	require.Len(t, entries, 1)
	assert.Equal(t, entity.SyncStatusPartialSuccess, entries[0].Status)
	assert.Contains(t, entries[0].Message, "2/3")
}

// Si todas las variantes del lote desaparecieron de la tienda el lote cierra
// en Failed (cero éxitos), aunque todas las filas queden marcadas.
func TestRun_TodoInexistente(t *testing.T) {
	settings := &fakeSettings{setting: pushSetting(), due: true}
	levels := &fakeLevels{
		leafRows: []entity.InventoryLevel{
			level("ecom-1", "ITEM-001", "21", "Bodega Web - SC", 10, 0, 0),
		},
	}
	uc, ecom, logs := newPushEnv(settings, levels, &fakeShopAPI{})

	uc.Run(context.Background(), "run-1")

	assert.Contains(t, ecom.synced, "ecom-1")
	entries := logs.byMethod("inventory/push")
	require.Len(t, entries, 1)
	assert.Equal(t, entity.SyncStatusFailed, entries[0].Status)
	assert.Contains(t, entries[0].Message, "0/1")
}

// Si todas las filas fallan el lote cierra en Failed.
func TestRun_TodoFalla(t *testing.T) {
	settings := &fakeSettings{setting: pushSetting(), due: true}
	levels := &fakeLevels{
		leafRows: []entity.InventoryLevel{
			level("ecom-1", "ITEM-001", "21", "Bodega Web - SC", 10, 0, 0),
			level("ecom-2", "ITEM-002", "22", "Bodega Web - SC", 5, 0, 0),
		},
	}
	boom := errors.New("429 too many requests")
	api := &fakeShopAPI{variantErr: map[string]error{"21": boom, "22": boom}}
	uc, ecom, logs := newPushEnv(settings, levels, api)

	uc.Run(context.Background(), "run-1")

	assert.Empty(t, ecom.synced)
	entries := logs.byMethod("inventory/push")
	require.Len(t, entries, 1)
	assert.Equal(t, entity.SyncStatusFailed, entries[0].Status)
	assert.Contains(t, entries[0].Message, "0/2")
}

// La falla del push de costo se registra aparte y no cambia el estado de la
// fila ni del lote.
func TestRun_FallaDeCostoEsSecundaria(t *testing.T) {
	settings := &fakeSettings{setting: pushSetting(), due: true}
	levels := &fakeLevels{
		leafRows: []entity.InventoryLevel{
			level("ecom-1", "ITEM-001", "21", "Bodega Web - SC", 10, 0, 40),
		},
	}
	api := &fakeShopAPI{
		variants: map[string]*dto.ShopVariant{"21": {ID: 21, InventoryItemID: 501}},
		costErr:  map[int64]error{501: errors.New("422 unprocessable")},
	}
	uc, ecom, logs := newPushEnv(settings, levels, api)

	uc.Run(context.Background(), "run-1")

	assert.Contains(t, ecom.synced, "ecom-1")

	pushEntries := logs.byMethod("inventory/push")
	require.Len(t, pushEntries, 1)
	assert.Equal(t, entity.SyncStatusSuccess, pushEntries[0].Status)

	costEntries := logs.byMethod("inventory/cost")
	require.Len(t, costEntries, 1)
	assert.Equal(t, entity.SyncStatusError, costEntries[0].Status)
	assert.Contains(t, costEntries[0].Message, "ITEM-001")
}

// Las bodegas grupo se consolidan con su propia consulta; las hoja van en una
// sola consulta por lote, y cada fila sale con la ubicación de su bodega.
func TestRun_BodegaGrupoYHojas(t *testing.T) {
	setting := pushSetting()
	setting.WarehouseLocationMap = map[string]string{
		"Bodegas - SC":    "9100",
		"Bodega Web - SC": "9001",
	}
	settings := &fakeSettings{setting: setting, due: true}
	levels := &fakeLevels{
		groups: map[string]bool{"Bodegas - SC": true},
		groupRows: map[string][]entity.InventoryLevel{
			"Bodegas - SC": {level("ecom-2", "ITEM-002", "22", "Bodegas - SC", 8, 0, 0)},
		},
		leafRows: []entity.InventoryLevel{
			level("ecom-1", "ITEM-001", "21", "Bodega Web - SC", 10, 0, 0),
		},
	}
	api := &fakeShopAPI{
		variants: map[string]*dto.ShopVariant{
			"21": {ID: 21, InventoryItemID: 501},
			"22": {ID: 22, InventoryItemID: 502},
		},
	}
	uc, _, _ := newPushEnv(settings, levels, api)

	uc.Run(context.Background(), "run-1")

	assert.Equal(t, []string{"Bodegas - SC"}, levels.groupCalls)
	require.Len(t, levels.leafCalls, 1)
	assert.Equal(t, []string{"Bodega Web - SC"}, levels.leafCalls[0])

	// Orden determinista por ítem y ubicación según la bodega de cada fila.
	require.Len(t, api.setCalls, 2)
	assert.Equal(t, "9001", api.setCalls[0].locationID)
	assert.Equal(t, "9100", api.setCalls[1].locationID)
}
