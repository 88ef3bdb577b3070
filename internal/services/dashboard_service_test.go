package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/logistics-erp/internal/models"
)

func TestDashboardStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := uuid.New()

	f.placeOrder(t, owner, "ORD-1")
	f.placeOrder(t, owner, "ORD-2")
	_, err := f.orders.Cancel(ctx, customer(owner), "ORD-2")
	require.NoError(t, err)
	_, err = f.shipments.Create(ctx, sampleShipmentInput("0001", "ORD-1", "In Transit"))
	require.NoError(t, err)

	require.NoError(t, f.db.Create(&models.InventoryItem{Name: "Crate", Quantity: 3, Price: decimal.NewFromInt(5)}).Error)
	require.NoError(t, f.db.Create(&models.InventoryItem{Name: "Pallet", Quantity: 50, Price: decimal.NewFromInt(9)}).Error)
	require.NoError(t, f.db.Create(&models.Vehicle{ID: "FLT-0001", Vehicle: "Truck"}).Error)

	stats, err := NewDashboardService(f.db, 10).Stats(ctx)
	require.NoError(t, err)

	assert.EqualValues(t, 2, stats.TotalOrders)
	assert.EqualValues(t, 1, stats.TotalShipments)
	assert.EqualValues(t, 1, stats.TotalVehicles)
	assert.EqualValues(t, 2, stats.TotalInventory)
	assert.EqualValues(t, 1, stats.LowStockItems)
	assert.EqualValues(t, 1, stats.OrdersByStatus[string(models.OrderProcessing)])
	assert.EqualValues(t, 1, stats.OrdersByStatus[string(models.OrderCancelled)])
	assert.EqualValues(t, 1, stats.ShipmentsByStatus[string(models.ShipmentInTransit)])

	// sample orders total 500 + 18% gst each; the cancelled one is excluded
	assert.True(t, decimal.RequireFromString("590").Equal(stats.Revenue), stats.Revenue.String())
}
