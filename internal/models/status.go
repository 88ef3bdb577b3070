package models

import (
	"fmt"
	"strings"
)

// OrderStatus is the lifecycle state of a customer order.
type OrderStatus string

const (
	OrderPending        OrderStatus = "Pending"
	OrderProcessing     OrderStatus = "Processing"
	OrderShipped        OrderStatus = "Shipped"
	OrderOutForDelivery OrderStatus = "Out for Delivery"
	OrderDelivered      OrderStatus = "Delivered"
	OrderCancelled      OrderStatus = "Cancelled"
	OrderReturned       OrderStatus = "Returned"
)

// OrderStatuses lists every legal order status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderPending,
	OrderProcessing,
	OrderShipped,
	OrderOutForDelivery,
	OrderDelivered,
	OrderCancelled,
	OrderReturned,
}

// ParseOrderStatus resolves a status name case-insensitively.
func ParseOrderStatus(value string) (OrderStatus, error) {
	normalized := normalizeStatus(value)
	for _, status := range OrderStatuses {
		if strings.ToLower(string(status)) == normalized {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", value)
}

// Terminal reports whether shipment sync must leave the order alone.
func (s OrderStatus) Terminal() bool {
	return s == OrderCancelled || s == OrderReturned
}

// ShipmentStatus is the logistics state of a shipment.
type ShipmentStatus string

const (
	ShipmentAdded     ShipmentStatus = "Added to Shipment"
	ShipmentInTransit ShipmentStatus = "In Transit"
	ShipmentDelayed   ShipmentStatus = "Delayed"
	ShipmentDelivered ShipmentStatus = "Delivered"
	ShipmentCancelled ShipmentStatus = "Cancelled"
)

// ShipmentStatuses lists every legal shipment status.
var ShipmentStatuses = []ShipmentStatus{
	ShipmentAdded,
	ShipmentInTransit,
	ShipmentDelayed,
	ShipmentDelivered,
	ShipmentCancelled,
}

// ParseShipmentStatus resolves a status name case-insensitively.
func ParseShipmentStatus(value string) (ShipmentStatus, error) {
	normalized := normalizeStatus(value)
	for _, status := range ShipmentStatuses {
		if strings.ToLower(string(status)) == normalized {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown shipment status %q", value)
}

var shipmentToOrder = map[string]OrderStatus{
	"added to shipment": OrderShipped,
	"in transit":        OrderProcessing,
	"delayed":           OrderPending,
	"delivered":         OrderDelivered,
}

// MapShipmentToOrderStatus returns the order status implied by a shipment
// status. The boolean is false when the order must not change, which covers
// Cancelled and any value outside the shipment vocabulary.
func MapShipmentToOrderStatus(status string) (OrderStatus, bool) {
	mapped, ok := shipmentToOrder[normalizeStatus(status)]
	return mapped, ok
}

// MappedShipmentStatuses returns the shipment statuses that drive an order status.
func MappedShipmentStatuses() []ShipmentStatus {
	var out []ShipmentStatus
	for _, status := range ShipmentStatuses {
		if _, ok := MapShipmentToOrderStatus(string(status)); ok {
			out = append(out, status)
		}
	}
	return out
}

func normalizeStatus(value string) string {
	return strings.Join(strings.Fields(strings.ToLower(value)), " ")
}
