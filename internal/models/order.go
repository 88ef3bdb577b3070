package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is a customer purchase. The identifier is generated by the caller.
type Order struct {
	ID                 string           `gorm:"primaryKey;column:order_id;size:64" json:"order_id"`
	UserID             uuid.UUID        `gorm:"type:uuid;index" json:"user_id"`
	DeliveryAddressRaw string           `gorm:"column:delivery_address;type:text" json:"-"`
	DeliveryAddress    *DeliveryAddress `gorm:"-" json:"delivery_address"`
	Date               time.Time        `gorm:"index" json:"date"`
	Subtotal           decimal.Decimal  `gorm:"type:decimal(12,2)" json:"price"`
	Tax                decimal.Decimal  `gorm:"type:decimal(12,2)" json:"gst"`
	Total              decimal.Decimal  `gorm:"type:decimal(12,2)" json:"total"`
	PaymentMethod      string           `gorm:"size:64" json:"payment_method"`
	Status             OrderStatus      `gorm:"size:32;index;default:Pending" json:"order_status"`
	Items              []OrderItem      `gorm:"foreignKey:OrderID;references:ID" json:"products"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `gorm:"index" json:"updated_at"`
}

// AfterFind exposes the stored address in its client-facing shape.
func (o *Order) AfterFind(tx *gorm.DB) error {
	o.DeliveryAddress = ParseDeliveryAddress(o.DeliveryAddressRaw)
	return nil
}

// OrderItem is one product line of an order.
type OrderItem struct {
	BaseModel
	OrderID     string          `gorm:"index;size:64" json:"order_id"`
	ProductID   string          `gorm:"size:64" json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2)" json:"price"`
}

// LineTotal is quantity times unit price.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// StoredAddress is the address shape persisted with an order, matching the
// address book field names.
type StoredAddress struct {
	Fullname string `json:"fullname"`
	House    string `json:"house"`
	Road     string `json:"road"`
	City     string `json:"city"`
	State    string `json:"state"`
	Pincode  string `json:"pincode"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}

// DeliveryAddress is the address shape returned to clients.
type DeliveryAddress struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Address2 string `json:"address2"`
	City     string `json:"city"`
	State    string `json:"state"`
	Zip      string `json:"zip"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}

// ParseDeliveryAddress converts a stored address string to the client shape.
// Unparseable input yields an empty address rather than an error.
func ParseDeliveryAddress(raw string) *DeliveryAddress {
	var stored StoredAddress
	if strings.TrimSpace(raw) == "" || json.Unmarshal([]byte(raw), &stored) != nil {
		return &DeliveryAddress{}
	}

	var lines []string
	for _, part := range []string{stored.House, stored.Road} {
		if part != "" {
			lines = append(lines, part)
		}
	}

	return &DeliveryAddress{
		Name:    stored.Fullname,
		Address: strings.Join(lines, ", "),
		City:    stored.City,
		State:   stored.State,
		Zip:     stored.Pincode,
		Phone:   stored.Phone,
		Email:   stored.Email,
	}
}
