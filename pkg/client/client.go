// Package client is a Go client for the logistics ERP HTTP API with a
// polling order watcher and a local order cache.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Order mirrors the order representation returned by the API.
type Order struct {
	ID              string          `json:"order_id"`
	UserID          string          `json:"user_id"`
	Status          string          `json:"order_status"`
	Date            time.Time       `json:"date"`
	Subtotal        decimal.Decimal `json:"price"`
	Tax             decimal.Decimal `json:"gst"`
	Total           decimal.Decimal `json:"total"`
	PaymentMethod   string          `json:"payment_method"`
	Products        []OrderItem     `json:"products"`
	DeliveryAddress Address         `json:"delivery_address"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OrderItem is one product line of an order.
type OrderItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

// Address is the delivery address of an order.
type Address struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Address2 string `json:"address2"`
	City     string `json:"city"`
	State    string `json:"state"`
	Zip      string `json:"zip"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}

// ShipmentUpdate reports the result of a shipment status change.
type ShipmentUpdate struct {
	Message      string
	OrderStatus  string
	OrderUpdated bool
}

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err is an APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// Client calls the ERP API on behalf of one bearer token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client

	mu        sync.RWMutex
	onMutated []func()
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnMutation registers fn to run after every successful write made through
// the client.
func (c *Client) OnMutation(fn func()) {
	c.mu.Lock()
	c.onMutated = append(c.onMutated, fn)
	c.mu.Unlock()
}

func (c *Client) mutated() {
	c.mu.RLock()
	hooks := append([]func(){}, c.onMutated...)
	c.mu.RUnlock()
	for _, fn := range hooks {
		fn()
	}
}

// ListOptions narrows an order listing.
type ListOptions struct {
	Status       string
	ChangedSince time.Time
}

// OrderList is one page of orders plus the server clock at response time.
type OrderList struct {
	Orders     []Order
	ServerTime time.Time
}

// ListOrders returns the orders visible to the token.
func (c *Client) ListOrders(ctx context.Context, opts ListOptions) (*OrderList, error) {
	query := url.Values{}
	if opts.Status != "" {
		query.Set("status", opts.Status)
	}
	if !opts.ChangedSince.IsZero() {
		query.Set("changed_since", opts.ChangedSince.UTC().Format(time.RFC3339Nano))
	}

	path := "/api/orders"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var out struct {
		Data       []Order   `json:"data"`
		ServerTime time.Time `json:"server_time"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &OrderList{Orders: out.Data, ServerTime: out.ServerTime}, nil
}

// GetOrder fetches a single order.
func (c *Client) GetOrder(ctx context.Context, id string) (*Order, error) {
	var out struct {
		Data Order `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/orders/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// CancelOrder cancels one of the caller's orders.
func (c *Client) CancelOrder(ctx context.Context, id string) (*Order, error) {
	var out struct {
		Data Order `json:"data"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/orders/"+url.PathEscape(id)+"/cancel", nil, &out); err != nil {
		return nil, err
	}
	c.mutated()
	return &out.Data, nil
}

// UpdateOrderStatus sets an order status. Requires an admin token.
func (c *Client) UpdateOrderStatus(ctx context.Context, id, status string) (*Order, error) {
	var out struct {
		Data Order `json:"data"`
	}
	body := map[string]string{"status": status}
	if err := c.do(ctx, http.MethodPut, "/api/orders/"+url.PathEscape(id)+"/status", body, &out); err != nil {
		return nil, err
	}
	c.mutated()
	return &out.Data, nil
}

// UpdateShipmentStatus changes the status of the shipments found under key,
// an order id or a shipment id.
func (c *Client) UpdateShipmentStatus(ctx context.Context, key, status string) (*ShipmentUpdate, error) {
	var out struct {
		Message string `json:"message"`
		Data    struct {
			OrderStatus  string `json:"order_status"`
			OrderUpdated bool   `json:"order_updated"`
		} `json:"data"`
	}
	body := map[string]string{"status": status}
	if err := c.do(ctx, http.MethodPut, "/api/shipments/"+url.PathEscape(key), body, &out); err != nil {
		return nil, err
	}
	c.mutated()
	return &ShipmentUpdate{
		Message:      out.Message,
		OrderStatus:  out.Data.OrderStatus,
		OrderUpdated: out.Data.OrderUpdated,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var envelope struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(raw, &envelope)
		if envelope.Message == "" {
			envelope.Message = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: envelope.Message}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
