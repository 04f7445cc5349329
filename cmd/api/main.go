package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"

	"github.com/jhoicas/shopsync-erp/internal/application/catalog"
	"github.com/jhoicas/shopsync-erp/internal/application/inventory"
	"github.com/jhoicas/shopsync-erp/internal/application/orders"
	"github.com/jhoicas/shopsync-erp/internal/application/synclog"
	"github.com/jhoicas/shopsync-erp/internal/infrastructure/postgres"
	"github.com/jhoicas/shopsync-erp/internal/infrastructure/shopify"
	httpRouter "github.com/jhoicas/shopsync-erp/internal/interfaces/http"
	"github.com/jhoicas/shopsync-erp/pkg/config"
	"github.com/jhoicas/shopsync-erp/pkg/logger"
)

// Intervalo del ticker del scheduler. La frecuencia efectiva del push de
// inventario la gobierna la puerta en sync_settings; el ticker solo pregunta.
const schedulerTick = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Repos fuera de transacción: settings, bitácora y consultas de stock.
	settingRepo := postgres.NewSettingRepository(pool)
	syncLogRepo := postgres.NewSyncLogRepository(pool)
	inventoryRepo := postgres.NewInventoryRepository(pool)
	ecomItemRepo := postgres.NewEcommerceItemRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	shopClient := shopify.NewClient(cfg.Shopify)
	sink := synclog.NewSink(syncLogRepo, log)

	syncUC := orders.NewSyncUseCase(
		txRunner, settingRepo, catalog.NewProductSync(), shopClient, sink, log,
	)
	pushUC := inventory.NewPushUseCase(
		settingRepo, inventoryRepo, ecomItemRepo, shopClient, sink, log,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		SyncUC:       syncUC,
		SharedSecret: cfg.Shopify.SharedSecret,
		Log:          log,
	})

	// Scheduler del push de inventario y del backfill de pedidos históricos.
	schedCtx, stopScheduler := context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(schedulerTick)
		defer ticker.Stop()
		for {
			select {
			case <-schedCtx.Done():
				return
			case <-ticker.C:
				runID := uuid.New().String()
				pushUC.Run(schedCtx, runID)
				syncUC.SyncOldOrders(schedCtx, runID)
			}
		}
	}()

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stopScheduler()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
