package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/shopsync-erp/internal/application/dto"
	"github.com/jhoicas/shopsync-erp/internal/domain"
)

func testClient(srv *httptest.Server) *Client {
	return &Client{
		baseURL:    srv.URL + "/admin/api/2024-07",
		token:      "shpat_test",
		httpClient: srv.Client(),
	}
}

func TestFindVariant(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "shpat_test", r.Header.Get("X-Shopify-Access-Token"))
		assert.Equal(t, "/admin/api/2024-07/variants/21.json", r.URL.Path)
		fmt.Fprint(w, `{"variant":{"id":21,"sku":"CAM-M","inventory_item_id":501}}`)
	}))
	defer srv.Close()

	v, err := testClient(srv).FindVariant(context.Background(), "21")

	require.NoError(t, err)
	assert.Equal(t, int64(21), v.ID)
	assert.Equal(t, int64(501), v.InventoryItemID)
}

// Una variante borrada de la tienda responde 404 y se traduce al error de
// dominio, que el pipeline de inventario trata como "procesada".
func TestFindVariant_NoExiste(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testClient(srv).FindVariant(context.Background(), "99")

	assert.ErrorIs(t, err, domain.ErrRemoteNotFound)
}

func TestSetInventoryLevel(t *testing.T) {
	var got struct {
		LocationID      int64  `json:"location_id"`
		InventoryItemID int64  `json:"inventory_item_id"`
		Available       int64  `json:"available"`
		Cost            string `json:"cost"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/admin/api/2024-07/inventory_levels/set.json", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	err := testClient(srv).SetInventoryLevel(context.Background(), "9001", 501, 7, decimal.NewFromInt(40))

	require.NoError(t, err)
	assert.Equal(t, int64(9001), got.LocationID)
	assert.Equal(t, int64(501), got.InventoryItemID)
	assert.Equal(t, int64(7), got.Available)
	assert.Equal(t, "40.00", got.Cost)
}

// Un location id no numérico se rechaza antes de tocar la red.
func TestSetInventoryLevel_LocationInvalido(t *testing.T) {
	c := &Client{baseURL: "http://invalido.test", httpClient: &http.Client{Timeout: time.Second}}

	err := c.SetInventoryLevel(context.Background(), "bodega-web", 501, 7, decimal.Zero)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdateItemCost(t *testing.T) {
	var got struct {
		InventoryItem struct {
			ID   int64  `json:"id"`
			Cost string `json:"cost"`
		} `json:"inventory_item"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/admin/api/2024-07/inventory_items/501.json", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	err := testClient(srv).UpdateItemCost(context.Background(), 501, decimal.NewFromFloat(40.5))

	require.NoError(t, err)
	assert.Equal(t, int64(501), got.InventoryItem.ID)
	assert.Equal(t, "40.50", got.InventoryItem.Cost, "el costo viaja como string con dos decimales")
}

// El recorrido de pedidos sigue el cursor del header Link hasta agotarlo.
func TestListOrders_Paginacion(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page_info") {
		case "":
			assert.Equal(t, "any", r.URL.Query().Get("status"))
			assert.Equal(t, "250", r.URL.Query().Get("limit"))
			w.Header().Set("Link",
				fmt.Sprintf(`<%s/admin/api/2024-07/orders.json?page_info=abc>; rel="next"`, srv.URL))
			fmt.Fprint(w, `{"orders":[{"id":1,"name":"#1001"},{"id":2,"name":"#1002"}]}`)
		case "abc":
			fmt.Fprint(w, `{"orders":[{"id":3,"name":"#1003"}]}`)
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer srv.Close()

	var names []string
	err := testClient(srv).ListOrders(context.Background(), time.Now().Add(-time.Hour), time.Now(),
		func(order *dto.ShopOrder) error {
			names = append(names, order.Name)
			return nil
		})

	require.NoError(t, err)
	assert.Equal(t, []string{"#1001", "#1002", "#1003"}, names)
}

// Un error de la API corta el recorrido con el status en el mensaje.
func TestListOrders_ErrorRemoto(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"errors":"Exceeded 2 calls per second"}`)
	}))
	defer srv.Close()

	err := testClient(srv).ListOrders(context.Background(), time.Now().Add(-time.Hour), time.Now(),
		func(*dto.ShopOrder) error { return nil })

	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
