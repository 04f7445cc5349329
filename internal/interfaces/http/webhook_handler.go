package http

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jhoicas/shopsync-erp/internal/application/dto"
	"github.com/jhoicas/shopsync-erp/internal/application/orders"
	"github.com/jhoicas/shopsync-erp/pkg/logger"
)

// Headers de los webhooks de la tienda.
const (
	headerHmac      = "X-Shopify-Hmac-Sha256"
	headerWebhookID = "X-Shopify-Webhook-Id"
)

// WebhookHandler recibe los webhooks de la tienda. El contrato con la tienda
// es estricto: un no-2xx provoca reintentos y eventualmente la baja del
// webhook, así que una vez verificada la firma SIEMPRE se responde 200; el
// resultado real de la operación queda en la bitácora de sincronización.
type WebhookHandler struct {
	sync         *orders.SyncUseCase
	sharedSecret string
	log          *logger.Logger
}

// NewWebhookHandler construye el handler de webhooks.
func NewWebhookHandler(sync *orders.SyncUseCase, sharedSecret string, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		sync:         sync,
		sharedSecret: sharedSecret,
		log:          log.WithModule("webhooks"),
	}
}

// OrderCreated POST /webhooks/orders/create
func (h *WebhookHandler) OrderCreated(c *fiber.Ctx) error {
	body, requestID, ok := h.accept(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}
	var order dto.ShopOrder
	if err := json.Unmarshal(body, &order); err != nil {
		h.log.WithRequestID(requestID).Warn().Err(err).Msg("payload de pedido no parseable")
		return c.SendStatus(fiber.StatusOK)
	}
	h.sync.CreateOrder(c.UserContext(), requestID, &order)
	return c.SendStatus(fiber.StatusOK)
}

// OrderCancelled POST /webhooks/orders/cancelled
func (h *WebhookHandler) OrderCancelled(c *fiber.Ctx) error {
	body, requestID, ok := h.accept(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}
	var order dto.ShopOrder
	if err := json.Unmarshal(body, &order); err != nil {
		h.log.WithRequestID(requestID).Warn().Err(err).Msg("payload de cancelación no parseable")
		return c.SendStatus(fiber.StatusOK)
	}
	h.sync.CancelOrder(c.UserContext(), requestID, &order)
	return c.SendStatus(fiber.StatusOK)
}

// RefundCreated POST /webhooks/refunds/create
func (h *WebhookHandler) RefundCreated(c *fiber.Ctx) error {
	body, requestID, ok := h.accept(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}
	var refund dto.ShopRefund
	if err := json.Unmarshal(body, &refund); err != nil {
		h.log.WithRequestID(requestID).Warn().Err(err).Msg("payload de reembolso no parseable")
		return c.SendStatus(fiber.StatusOK)
	}
	h.sync.CreateRefund(c.UserContext(), requestID, &refund)
	return c.SendStatus(fiber.StatusOK)
}

// accept verifica la firma HMAC del webhook y resuelve el request id que
// acompaña a la operación hasta la bitácora.
func (h *WebhookHandler) accept(c *fiber.Ctx) (body []byte, requestID string, ok bool) {
	body = c.Body()
	requestID = c.Get(headerWebhookID)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	if !h.verifySignature(body, c.Get(headerHmac)) {
		h.log.WithRequestID(requestID).Warn().
			Str("path", c.Path()).
			Msg("webhook rechazado: firma HMAC inválida")
		return nil, requestID, false
	}
	return body, requestID, true
}

// verifySignature compara en tiempo constante el HMAC-SHA256 del cuerpo
// contra la firma base64 que manda la tienda.
func (h *WebhookHandler) verifySignature(body []byte, signature string) bool {
	if h.sharedSecret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(h.sharedSecret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}
