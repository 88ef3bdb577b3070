package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI serves the subset of the ERP API the client uses.
type fakeAPI struct {
	mu      sync.Mutex
	orders  map[string]Order
	queries []string
	auth    []string
}

func newFakeAPI(t *testing.T, orders ...Order) (*fakeAPI, *httptest.Server) {
	t.Helper()

	api := &fakeAPI{orders: make(map[string]Order)}
	for _, order := range orders {
		api.orders[order.ID] = order
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/orders", api.list)
	mux.HandleFunc("GET /api/orders/{id}", api.get)
	mux.HandleFunc("PUT /api/orders/{id}/cancel", api.cancel)
	mux.HandleFunc("PUT /api/shipments/{key}", api.shipment)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return api, srv
}

func (a *fakeAPI) set(order Order) {
	a.mu.Lock()
	a.orders[order.ID] = order
	a.mu.Unlock()
}

func (a *fakeAPI) lastQuery() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.queries) == 0 {
		return ""
	}
	return a.queries[len(a.queries)-1]
}

func (a *fakeAPI) lastAuth() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.auth) == 0 {
		return ""
	}
	return a.auth[len(a.auth)-1]
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (a *fakeAPI) list(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.queries = append(a.queries, r.URL.RawQuery)
	a.auth = append(a.auth, r.Header.Get("Authorization"))

	var since time.Time
	if raw := r.URL.Query().Get("changed_since"); raw != "" {
		since, _ = time.Parse(time.RFC3339Nano, raw)
	}

	out := []Order{}
	for _, order := range a.orders {
		if status := r.URL.Query().Get("status"); status != "" && order.Status != status {
			continue
		}
		if !since.IsZero() && !order.UpdatedAt.After(since) {
			continue
		}
		out = append(out, order)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": out, "server_time": time.Now().UTC()})
}

func (a *fakeAPI) get(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	order, ok := a.orders[r.PathValue("id")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"success": false, "message": "not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": order})
}

func (a *fakeAPI) cancel(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	order, ok := a.orders[r.PathValue("id")]
	if !ok {
		writeJSON(w, http.StatusForbidden, map[string]interface{}{"success": false, "message": "access denied"})
		return
	}
	order.Status = "Cancelled"
	order.UpdatedAt = time.Now().UTC()
	a.orders[order.ID] = order
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": order})
}

func (a *fakeAPI) shipment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	a.mu.Lock()
	defer a.mu.Unlock()

	order, ok := a.orders[r.PathValue("key")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"success": false, "message": "not found"})
		return
	}
	if body.Status == "Delivered" {
		order.Status = "Delivered"
		order.UpdatedAt = time.Now().UTC()
		a.orders[order.ID] = order
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Shipment and order status updated successfully",
		"data":    map[string]interface{}{"order_status": order.Status, "order_updated": true},
	})
}

func testOrder(id, status string, updated time.Time) Order {
	return Order{
		ID:        id,
		Status:    status,
		Date:      updated.Add(-time.Hour),
		Subtotal:  decimal.RequireFromString("500"),
		Tax:       decimal.RequireFromString("90"),
		Total:     decimal.RequireFromString("590"),
		Products:  []OrderItem{{ProductID: "P-1", ProductName: "Courier box", Quantity: 1, Price: decimal.RequireFromString("500")}},
		UpdatedAt: updated,
	}
}

func TestListOrdersSendsTokenAndFilters(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	api, srv := newFakeAPI(t, testOrder("ORD-1", "Pending", now), testOrder("ORD-2", "Shipped", now))
	c := New(srv.URL, WithToken("tok"))

	list, err := c.ListOrders(context.Background(), ListOptions{Status: "Shipped"})
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, "ORD-2", list.Orders[0].ID)
	assert.True(t, list.Orders[0].Total.Equal(decimal.RequireFromString("590")))
	assert.False(t, list.ServerTime.IsZero())
	assert.Equal(t, "Bearer tok", api.lastAuth())
	assert.Equal(t, "status=Shipped", api.lastQuery())
}

func TestAPIErrorsCarryStatusAndMessage(t *testing.T) {
	_, srv := newFakeAPI(t)
	c := New(srv.URL)

	_, err := c.CancelOrder(context.Background(), "ORD-9")
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusForbidden))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "access denied", apiErr.Message)

	_, err = c.GetOrder(context.Background(), "ORD-9")
	assert.True(t, IsStatus(err, http.StatusNotFound))
}

func TestUpdateShipmentStatus(t *testing.T) {
	now := time.Now().UTC()
	_, srv := newFakeAPI(t, testOrder("ORD-1", "Shipped", now))
	c := New(srv.URL)

	var mutations int
	c.OnMutation(func() { mutations++ })

	res, err := c.UpdateShipmentStatus(context.Background(), "ORD-1", "Delivered")
	require.NoError(t, err)
	assert.True(t, res.OrderUpdated)
	assert.Equal(t, "Delivered", res.OrderStatus)
	assert.Equal(t, "Shipment and order status updated successfully", res.Message)
	assert.Equal(t, 1, mutations)

	_, err = c.UpdateShipmentStatus(context.Background(), "NOPE", "Delivered")
	require.Error(t, err)
	assert.Equal(t, 1, mutations)
}
