package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/logistics-erp/internal/models"
)

// Customer is a buyer identified from the delivery addresses of orders.
type Customer struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Phone       string          `json:"phone"`
	City        string          `json:"city"`
	OrderCount  int             `json:"orders"`
	TotalSpent  decimal.Decimal `json:"total_spent"`
	FirstOrder  time.Time       `json:"first_order"`
	LastOrder   time.Time       `json:"last_order"`
	LastOrderID string          `json:"last_order_id"`
}

// CRMService derives the customer list from orders.
type CRMService struct {
	db *gorm.DB
}

// NewCRMService constructs a CRMService.
func NewCRMService(db *gorm.DB) *CRMService {
	return &CRMService{db: db}
}

// Customers returns every customer seen in orders.
func (s *CRMService) Customers(ctx context.Context) ([]Customer, error) {
	var orders []models.Order
	if err := s.db.WithContext(ctx).
		Select("order_id", "user_id", "delivery_address", "date", "total", "status").
		Order("date ASC").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("load orders for crm: %w", err)
	}
	return BuildCustomers(orders), nil
}

// BuildCustomers merges orders into customers. Orders match on name, email
// and phone, falling back to name and phone. Customers are numbered cust-N in
// order of their first purchase.
func BuildCustomers(orders []models.Order) []Customer {
	sorted := make([]models.Order, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	var customers []*Customer
	byFull := make(map[string]*Customer)
	byNamePhone := make(map[string]*Customer)

	for _, order := range sorted {
		addr := order.DeliveryAddress
		if addr == nil {
			addr = models.ParseDeliveryAddress(order.DeliveryAddressRaw)
		}
		name := strings.TrimSpace(addr.Name)
		if name == "" {
			continue
		}
		email := strings.TrimSpace(addr.Email)
		phone := strings.TrimSpace(addr.Phone)

		fullKey := strings.ToLower(name) + "|" + strings.ToLower(email) + "|" + phone
		namePhoneKey := strings.ToLower(name) + "|" + phone

		customer, ok := byFull[fullKey]
		if !ok {
			customer, ok = byNamePhone[namePhoneKey]
		}
		if !ok {
			customer = &Customer{
				ID:         fmt.Sprintf("cust-%d", len(customers)+1),
				Name:       name,
				Email:      emailOrNA(email),
				Phone:      phone,
				City:       addr.City,
				TotalSpent: decimal.Zero,
				FirstOrder: order.Date,
			}
			customers = append(customers, customer)
		}
		byFull[fullKey] = customer
		byNamePhone[namePhoneKey] = customer

		customer.OrderCount++
		if order.Status != models.OrderCancelled {
			customer.TotalSpent = customer.TotalSpent.Add(order.Total)
		}
		customer.LastOrder = order.Date
		customer.LastOrderID = order.ID
		if customer.Email == "N/A" && email != "" {
			customer.Email = email
		}
	}

	out := make([]Customer, 0, len(customers))
	for _, customer := range customers {
		out = append(out, *customer)
	}
	return out
}

func emailOrNA(email string) string {
	if email == "" {
		return "N/A"
	}
	return email
}
