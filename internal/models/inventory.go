package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Warehouses are the stocking locations known to the ERP.
var Warehouses = []string{
	"Delhi-warehouse",
	"Bengaluru-warehouse",
	"Mumbai-warehouse",
	"Kolkata-warehouse",
	"Chennai-warehouse",
	"Jaipur-warehouse",
}

// Stock labels shown for inventory items.
const (
	StockIn  = "In Stock"
	StockLow = "Low Stock"
	StockOut = "Out of Stock"
)

// InventoryItem is a stocked product in one warehouse.
type InventoryItem struct {
	BaseModel
	Name        string          `json:"name"`
	Category    string          `gorm:"index" json:"category"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	Status      string          `gorm:"size:32" json:"status"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2)" json:"price"`
	Supplier    string          `json:"supplier"`
	SKU         string          `gorm:"column:sku;index" json:"sku"`
	Warehouse   string          `gorm:"index" json:"warehouse"`
	WeightKg    decimal.Decimal `gorm:"type:decimal(10,3)" json:"weight_kg"`
	Action      string          `json:"action"`
}

// IsWarehouse reports whether name is one of the known warehouses.
func IsWarehouse(name string) bool {
	for _, warehouse := range Warehouses {
		if strings.EqualFold(warehouse, name) {
			return true
		}
	}
	return false
}

// StockLabel returns a known label matching requested, or derives one from
// the quantity when requested is empty or unknown.
func StockLabel(requested string, quantity, lowThreshold int) string {
	for _, label := range []string{StockIn, StockLow, StockOut} {
		if strings.EqualFold(label, strings.TrimSpace(requested)) {
			return label
		}
	}

	switch {
	case quantity <= 0:
		return StockOut
	case quantity < lowThreshold:
		return StockLow
	default:
		return StockIn
	}
}
