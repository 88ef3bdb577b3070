package workers

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/logistics-erp/internal/events"
	"github.com/example/logistics-erp/internal/models"
	"github.com/example/logistics-erp/internal/services"
	"github.com/example/logistics-erp/internal/testutil"
)

type harness struct {
	db         *gorm.DB
	hub        *events.Hub
	orders     *services.OrderService
	shipments  *services.ShipmentService
	reconciler *StatusReconciler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.NewDB(t)
	hub := events.NewHub(zap.NewNop(), 16)
	shipments := services.NewShipmentService(db, hub, zap.NewNop())
	return &harness{
		db:         db,
		hub:        hub,
		orders:     services.NewOrderService(db, shipments, hub, nil, zap.NewNop()),
		shipments:  shipments,
		reconciler: NewStatusReconciler(db, hub, zap.NewNop(), "*/5 * * * *"),
	}
}

func (h *harness) placeOrder(t *testing.T, owner uuid.UUID, id string) {
	t.Helper()
	price := decimal.NewFromInt(100)
	tax := decimal.NewFromInt(18)
	total := decimal.NewFromInt(118)
	_, err := h.orders.Create(context.Background(), owner, services.CreateOrderInput{
		OrderID:         id,
		Products:        []services.OrderLineInput{{ProductID: "P-1", Name: "Crate", Quantity: 1, Price: price}},
		DeliveryAddress: json.RawMessage(`{"fullname":"Asha Rao","city":"Pune"}`),
		Date:            "2025-01-15 10:00:00",
		Price:           &price,
		PaymentMethod:   "Card",
		GST:             &tax,
		Total:           &total,
	})
	require.NoError(t, err)
}

func (h *harness) ship(t *testing.T, shipmentID, orderID, status string) {
	t.Helper()
	_, err := h.shipments.Create(context.Background(), services.CreateShipmentInput{
		ShipmentID:        shipmentID,
		OrderID:           orderID,
		Carrier:           "BlueDart",
		TrackingNumber:    "BD-" + shipmentID,
		Status:            status,
		ShipmentDate:      "2025-01-16",
		EstimatedDelivery: "2025-01-20",
		FromLocation:      "Delhi-warehouse",
		ToLocation:        "Pune",
		CustomerName:      "Asha Rao",
	})
	require.NoError(t, err)
}

func (h *harness) status(t *testing.T, id string) models.OrderStatus {
	t.Helper()
	var order models.Order
	require.NoError(t, h.db.First(&order, "order_id = ?", id).Error)
	return order.Status
}

func adminRequester() services.Requester {
	return services.Requester{UserID: uuid.New(), Role: models.RoleAdmin}
}

func TestReconcilerRestoresDerivedStatusAfterOverride(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.placeOrder(t, uuid.New(), "ORD-1")
	h.ship(t, "0001", "ORD-1", "In Transit")
	assert.Equal(t, models.OrderProcessing, h.status(t, "ORD-1"))

	_, err := h.orders.UpdateStatus(ctx, adminRequester(), "ORD-1", "Shipped")
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, h.status(t, "ORD-1"))

	sub := h.hub.Subscribe(func(ev events.StatusEvent) bool { return ev.Source == events.SourceReconciler })
	defer sub.Close()

	repaired, err := h.reconciler.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repaired)
	assert.Equal(t, models.OrderProcessing, h.status(t, "ORD-1"))

	select {
	case ev := <-sub.C:
		assert.Equal(t, "ORD-1", ev.OrderID)
		assert.Equal(t, models.OrderProcessing, ev.OrderStatus)
	case <-time.After(time.Second):
		t.Fatal("reconciler did not publish an event")
	}

	repaired, err = h.reconciler.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, repaired)
}

func TestReconcilerLeavesTerminalOrdersAlone(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := uuid.New()
	h.placeOrder(t, owner, "ORD-1")
	h.placeOrder(t, owner, "ORD-2")
	h.ship(t, "0001", "ORD-1", "Delivered")
	h.ship(t, "0002", "ORD-2", "Delivered")

	_, err := h.orders.Cancel(ctx, services.Requester{UserID: owner, Role: models.RoleUser}, "ORD-1")
	require.NoError(t, err)
	_, err = h.orders.UpdateStatus(ctx, adminRequester(), "ORD-2", "Returned")
	require.NoError(t, err)

	// cancelling the order also cancelled its shipment; put it back to
	// Delivered to check that the order itself is protected
	require.NoError(t, h.db.Model(&models.Shipment{}).Where("shipment_id = ?", "0001").
		Update("status", models.ShipmentDelivered).Error)

	repaired, err := h.reconciler.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, repaired)
	assert.Equal(t, models.OrderCancelled, h.status(t, "ORD-1"))
	assert.Equal(t, models.OrderReturned, h.status(t, "ORD-2"))
}

func TestReconcilerIgnoresCancelledShipmentsAndOrphans(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.placeOrder(t, uuid.New(), "ORD-1")
	h.ship(t, "0001", "ORD-1", "Cancelled")
	h.ship(t, "0002", "ORD-MISSING", "Delivered")

	repaired, err := h.reconciler.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, repaired)
	assert.Equal(t, models.OrderPending, h.status(t, "ORD-1"))
}

func TestReconcilerExecuteSkipsWhenBusy(t *testing.T) {
	h := newHarness(t)
	h.placeOrder(t, uuid.New(), "ORD-1")
	h.ship(t, "0001", "ORD-1", "In Transit")
	require.NoError(t, h.db.Model(&models.Order{}).Where("order_id = ?", "ORD-1").Update("status", models.OrderPending).Error)

	h.reconciler.busy.Store(true)
	h.reconciler.Execute()
	assert.Equal(t, models.OrderPending, h.status(t, "ORD-1"))

	h.reconciler.busy.Store(false)
	h.reconciler.Execute()
	assert.Equal(t, models.OrderProcessing, h.status(t, "ORD-1"))
}

func TestSchedulerStart(t *testing.T) {
	disabled := NewStatusReconciler(nil, nil, zap.NewNop(), "")
	enabled := NewStatusReconciler(nil, nil, zap.NewNop(), "@every 1h")

	c, err := NewScheduler(zap.NewNop(), disabled, enabled).Start()
	require.NoError(t, err)
	defer c.Stop()
	assert.Len(t, c.Entries(), 1)

	_, err = NewScheduler(zap.NewNop(), NewStatusReconciler(nil, nil, zap.NewNop(), "not a schedule")).Start()
	assert.Error(t, err)
}
