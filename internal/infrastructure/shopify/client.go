package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/shopsync-erp/internal/application/dto"
	"github.com/jhoicas/shopsync-erp/internal/application/inventory"
	"github.com/jhoicas/shopsync-erp/internal/application/orders"
	"github.com/jhoicas/shopsync-erp/internal/domain"
	"github.com/jhoicas/shopsync-erp/pkg/config"
)

// Ensure Client implements los puertos de salida hacia la tienda.
var (
	_ orders.StorefrontOrderAPI        = (*Client)(nil)
	_ inventory.StorefrontInventoryAPI = (*Client)(nil)
)

// Client cliente de la Admin API REST de Shopify. Usa net/http de la stdlib;
// autenticación por header X-Shopify-Access-Token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient construye el cliente con un timeout de red generoso (30 s): los
// endpoints de la Admin API aplican rate limit con reintentos del lado del servidor.
func NewClient(cfg config.ShopifyConfig) *Client {
	return &Client{
		baseURL:    fmt.Sprintf("https://%s/admin/api/%s", cfg.StoreURL, cfg.APIVersion),
		token:      cfg.AccessToken,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// ── Variantes e inventario ────────────────────────────────────────────────────

type variantResponse struct {
	Variant dto.ShopVariant `json:"variant"`
}

// FindVariant obtiene la variante por id. Devuelve domain.ErrRemoteNotFound si
// la variante ya no existe en la tienda.
func (c *Client) FindVariant(ctx context.Context, variantID string) (*dto.ShopVariant, error) {
	var out variantResponse
	if err := c.get(ctx, "/variants/"+variantID+".json", nil, &out); err != nil {
		return nil, err
	}
	return &out.Variant, nil
}

// SetInventoryLevel fija el nivel disponible del inventory item en la
// ubicación indicada (inventory_levels/set.json reemplaza, no suma). El costo
// de valoración viaja en el mismo payload.
func (c *Client) SetInventoryLevel(ctx context.Context, locationID string, inventoryItemID, available int64, cost decimal.Decimal) error {
	locID, err := strconv.ParseInt(locationID, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: location id %q no numérico", domain.ErrInvalidInput, locationID)
	}
	payload := map[string]any{
		"location_id":       locID,
		"inventory_item_id": inventoryItemID,
		"available":         available,
		"cost":              cost.StringFixed(2),
	}
	return c.post(ctx, "/inventory_levels/set.json", payload, nil)
}

// UpdateItemCost actualiza el costo unitario del inventory item.
func (c *Client) UpdateItemCost(ctx context.Context, inventoryItemID int64, cost decimal.Decimal) error {
	payload := map[string]any{
		"inventory_item": map[string]any{
			"id":   inventoryItemID,
			"cost": cost.StringFixed(2),
		},
	}
	path := fmt.Sprintf("/inventory_items/%d.json", inventoryItemID)
	return c.put(ctx, path, payload, nil)
}

// ── Pedidos históricos ────────────────────────────────────────────────────────

type ordersResponse struct {
	Orders []dto.ShopOrder `json:"orders"`
}

// ListOrders recorre los pedidos del rango siguiendo la paginación por cursor
// (header Link rel="next") y entrega cada pedido a fn.
func (c *Client) ListOrders(ctx context.Context, from, to time.Time, fn func(order *dto.ShopOrder) error) error {
	params := url.Values{}
	params.Set("status", "any")
	params.Set("limit", "250")
	params.Set("created_at_min", from.Format(time.RFC3339))
	params.Set("created_at_max", to.Format(time.RFC3339))

	path := "/orders.json"
	for {
		var out ordersResponse
		next, err := c.getPaged(ctx, path, params, &out)
		if err != nil {
			return err
		}
		for i := range out.Orders {
			if err := fn(&out.Orders[i]); err != nil {
				return err
			}
		}
		if next == "" {
			return nil
		}
		// El cursor de la página siguiente ya trae todos los parámetros.
		path = next
		params = nil
	}
}

// linkNextRe extrae la URL rel="next" del header Link.
var linkNextRe = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

// ── Transporte ────────────────────────────────────────────────────────────────

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	_, err := c.do(ctx, http.MethodGet, path, params, nil, out)
	return err
}

// getPaged como get, pero devuelve además la URL de la página siguiente si
// el header Link la anuncia.
func (c *Client) getPaged(ctx context.Context, path string, params url.Values, out any) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, path, params, nil, out)
	if err != nil {
		return "", err
	}
	if m := linkNextRe.FindStringSubmatch(resp.Header.Get("Link")); m != nil {
		return m[1], nil
	}
	return "", nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	_, err := c.do(ctx, http.MethodPost, path, nil, payload, out)
	return err
}

func (c *Client) put(ctx context.Context, path string, payload, out any) error {
	_, err := c.do(ctx, http.MethodPut, path, nil, payload, out)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, payload, out any) (*http.Response, error) {
	endpoint := path
	if len(endpoint) == 0 || endpoint[0] == '/' {
		endpoint = c.baseURL + path
	}
	if params != nil {
		endpoint += "?" + params.Encode()
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", c.token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s %s", domain.ErrRemoteNotFound, method, path)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, truncate(respBody, 300))
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return nil, fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return resp, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
