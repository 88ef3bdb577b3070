package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/logistics-erp/internal/events"
	"github.com/example/logistics-erp/internal/models"
	"github.com/example/logistics-erp/internal/testutil"
)

type fixture struct {
	db        *gorm.DB
	hub       *events.Hub
	shipments *ShipmentService
	orders    *OrderService
	notifier  *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	hub := events.NewHub(zap.NewNop(), 32)
	notifier := &recordingNotifier{}
	shipments := NewShipmentService(db, hub, zap.NewNop())

	return &fixture{
		db:        db,
		hub:       hub,
		shipments: shipments,
		orders:    NewOrderService(db, shipments, hub, notifier, zap.NewNop()),
		notifier:  notifier,
	}
}

type recordingNotifier struct {
	mu        sync.Mutex
	created   []string
	cancelled []string
}

func (n *recordingNotifier) NotifyNewOrder(order models.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, order.ID)
	return nil
}

func (n *recordingNotifier) NotifyOrderCancelled(order models.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelled = append(n.cancelled, order.ID)
	return nil
}

func (n *recordingNotifier) count() (int, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.created), len(n.cancelled)
}

func dec(value string) *decimal.Decimal {
	d := decimal.RequireFromString(value)
	return &d
}

func sampleAddress() json.RawMessage {
	return json.RawMessage(`{"fullname":"Asha Rao","house":"12B","road":"MG Road","city":"Pune","state":"MH","pincode":"411001","phone":"9876543210","email":"asha@example.com"}`)
}

func sampleOrderInput(id string, lines int) CreateOrderInput {
	in := CreateOrderInput{
		OrderID:         id,
		DeliveryAddress: sampleAddress(),
		Date:            "2025-01-15 10:00:00",
		PaymentMethod:   "Cash on Delivery",
	}

	subtotal := decimal.Zero
	for i := 0; i < lines; i++ {
		price := decimal.NewFromInt(int64(100 * (i + 1)))
		in.Products = append(in.Products, OrderLineInput{
			ProductID: ProductRef(fmt.Sprintf("P-%d", i+1)),
			Name:      fmt.Sprintf("Product %d", i+1),
			Quantity:  i + 1,
			Price:     price,
		})
		subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(i + 1))))
	}

	tax := subtotal.Mul(decimal.RequireFromString("0.18")).Round(2)
	total := subtotal.Add(tax)
	in.Price = &subtotal
	in.GST = &tax
	in.Total = &total
	return in
}

func (f *fixture) placeOrder(t *testing.T, userID uuid.UUID, id string) *models.Order {
	t.Helper()
	order, err := f.orders.Create(context.Background(), userID, sampleOrderInput(id, 2))
	require.NoError(t, err)
	return order
}

func sampleShipmentInput(shipmentID, orderID, status string) CreateShipmentInput {
	return CreateShipmentInput{
		ShipmentID:        shipmentID,
		OrderID:           orderID,
		Carrier:           "BlueDart",
		TrackingNumber:    "BD" + shipmentID,
		Status:            status,
		ShipmentDate:      "2025-01-16",
		EstimatedDelivery: "2025-01-20",
		FromLocation:      "Delhi-warehouse",
		ToLocation:        "Pune",
		CustomerName:      "Asha Rao",
	}
}

func orderStatus(t *testing.T, db *gorm.DB, id string) models.OrderStatus {
	t.Helper()
	var order models.Order
	require.NoError(t, db.First(&order, "order_id = ?", id).Error)
	return order.Status
}

func admin() Requester {
	return Requester{UserID: uuid.New(), Role: models.RoleAdmin}
}

func customer(id uuid.UUID) Requester {
	return Requester{UserID: id, Role: models.RoleUser}
}
