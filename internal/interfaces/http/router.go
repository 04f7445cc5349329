package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jhoicas/shopsync-erp/internal/application/orders"
	"github.com/jhoicas/shopsync-erp/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	SyncUC       *orders.SyncUseCase
	SharedSecret string
	Log          *logger.Logger
}

// Router registra las rutas del servicio: webhooks de la tienda, disparo
// manual del backfill y health check.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	webhookHandler := NewWebhookHandler(deps.SyncUC, deps.SharedSecret, deps.Log)
	webhooks := app.Group("/webhooks")
	webhooks.Post("/orders/create", webhookHandler.OrderCreated)
	webhooks.Post("/orders/cancelled", webhookHandler.OrderCancelled)
	webhooks.Post("/refunds/create", webhookHandler.RefundCreated)

	// Backfill de pedidos históricos: corre en background, el avance queda
	// en la bitácora de sincronización.
	api := app.Group("/api")
	api.Post("/sync/old-orders", func(c *fiber.Ctx) error {
		requestID := uuid.New().String()
		// Contexto propio: fiber recicla el del request al responder.
		go deps.SyncUC.SyncOldOrders(context.Background(), requestID)
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"request_id": requestID})
	})
}
