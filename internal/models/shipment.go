package models

import "time"

// Shipment tracks the physical delivery of an order. OrderID is a plain
// reference; shipments may be recorded before or without a matching order.
type Shipment struct {
	ID                string         `gorm:"primaryKey;column:shipment_id;size:32" json:"shipmentId"`
	OrderID           string         `gorm:"index;size:64" json:"orderId"`
	Carrier           string         `json:"carrier"`
	TrackingNumber    string         `json:"trackingNumber"`
	Status            ShipmentStatus `gorm:"size:32;index" json:"status"`
	ShipmentDate      time.Time      `gorm:"index" json:"shipmentDate"`
	EstimatedDelivery time.Time      `json:"estimatedDelivery"`
	FromLocation      string         `json:"fromLocation"`
	ToLocation        string         `json:"toLocation"`
	CustomerName      string         `json:"customerName"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}
