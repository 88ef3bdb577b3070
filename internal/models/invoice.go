package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is a bill issued for an order.
type Invoice struct {
	BaseModel
	Number        string          `gorm:"uniqueIndex;size:32" json:"invoice_number"`
	OrderID       string          `gorm:"index;size:64" json:"order_id"`
	CustomerName  string          `json:"customer_name"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2)" json:"subtotal"`
	Tax           decimal.Decimal `gorm:"type:decimal(12,2)" json:"tax"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2)" json:"total"`
	PaymentMethod string          `json:"payment_method"`
	IssuedAt      time.Time       `json:"issued_at"`
}
