package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapShipmentToOrderStatus(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected OrderStatus
		mapped   bool
	}{
		{"added to shipment", "Added to Shipment", OrderShipped, true},
		{"in transit", "In Transit", OrderProcessing, true},
		{"delayed", "Delayed", OrderPending, true},
		{"delivered", "Delivered", OrderDelivered, true},
		{"lower case", "in transit", OrderProcessing, true},
		{"upper case with padding", "  DELIVERED ", OrderDelivered, true},
		{"collapsed whitespace", "added  to   shipment", OrderShipped, true},
		{"cancelled leaves order alone", "Cancelled", "", false},
		{"unknown value", "Lost at sea", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MapShipmentToOrderStatus(tt.input)
			assert.Equal(t, tt.mapped, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestMapShipmentToOrderStatusIsTotal(t *testing.T) {
	for _, status := range ShipmentStatuses {
		_, ok := MapShipmentToOrderStatus(string(status))
		assert.Equal(t, status != ShipmentCancelled, ok, "status %s", status)
	}
	assert.Len(t, MappedShipmentStatuses(), 4)
}

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("out for delivery")
	require.NoError(t, err)
	assert.Equal(t, OrderOutForDelivery, status)

	status, err = ParseOrderStatus("SHIPPED")
	require.NoError(t, err)
	assert.Equal(t, OrderShipped, status)

	_, err = ParseOrderStatus("teleported")
	assert.Error(t, err)
}

func TestParseShipmentStatus(t *testing.T) {
	status, err := ParseShipmentStatus("in transit")
	require.NoError(t, err)
	assert.Equal(t, ShipmentInTransit, status)

	_, err = ParseShipmentStatus("Shipped")
	assert.Error(t, err)
}

func TestOrderStatusTerminal(t *testing.T) {
	assert.True(t, OrderCancelled.Terminal())
	assert.True(t, OrderReturned.Terminal())
	assert.False(t, OrderDelivered.Terminal())
	assert.False(t, OrderPending.Terminal())
}
