package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/logistics-erp/internal/events"
	"github.com/example/logistics-erp/internal/models"
	"github.com/example/logistics-erp/internal/utils"
)

// OrderNotifier is told about order lifecycle events worth a human's attention.
type OrderNotifier interface {
	NotifyNewOrder(order models.Order) error
	NotifyOrderCancelled(order models.Order) error
}

// OrderService owns order creation, listing and status changes.
type OrderService struct {
	db        *gorm.DB
	shipments *ShipmentService
	events    events.Publisher
	notifier  OrderNotifier
	logger    *zap.Logger
}

// NewOrderService constructs an OrderService. notifier may be nil.
func NewOrderService(db *gorm.DB, shipments *ShipmentService, publisher events.Publisher, notifier OrderNotifier, logger *zap.Logger) *OrderService {
	return &OrderService{
		db:        db,
		shipments: shipments,
		events:    publisher,
		notifier:  notifier,
		logger:    logger,
	}
}

// ProductRef is a catalog identifier that clients send as a string or a number.
type ProductRef string

// UnmarshalJSON accepts both JSON strings and numbers.
func (p *ProductRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = ProductRef(s)
		return nil
	}
	if string(data) == "null" {
		*p = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*p = ProductRef(n.String())
	return nil
}

// OrderLineInput is one product line of a new order.
type OrderLineInput struct {
	ProductID ProductRef      `json:"id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// CreateOrderInput is the payload for a new order.
type CreateOrderInput struct {
	OrderID         string           `json:"orderId"`
	Products        []OrderLineInput `json:"products"`
	DeliveryAddress json.RawMessage  `json:"deliveryAddress"`
	Date            string           `json:"date"`
	Price           *decimal.Decimal `json:"price"`
	PaymentMethod   string           `json:"paymentMethod"`
	GST             *decimal.Decimal `json:"gst"`
	Total           *decimal.Decimal `json:"total"`
}

func (in CreateOrderInput) toModel(userID uuid.UUID) (*models.Order, error) {
	orderID := strings.TrimSpace(in.OrderID)
	if orderID == "" || in.Price == nil || in.GST == nil || in.Total == nil ||
		strings.TrimSpace(in.Date) == "" || strings.TrimSpace(in.PaymentMethod) == "" || len(in.DeliveryAddress) == 0 {
		return nil, invalid("missing order fields")
	}
	if len(in.Products) == 0 {
		return nil, invalid("an order needs at least one product")
	}

	date, err := utils.ParseDate(in.Date)
	if err != nil {
		return nil, invalid("date: %s", err.Error())
	}

	address, err := normalizeAddress(in.DeliveryAddress)
	if err != nil {
		return nil, err
	}

	subtotal, tax, total := in.Price.Round(2), in.GST.Round(2), in.Total.Round(2)
	if subtotal.IsNegative() || tax.IsNegative() {
		return nil, invalid("price and gst must not be negative")
	}
	if !subtotal.Add(tax).Equal(total) {
		return nil, invalid("total %s does not equal price %s plus gst %s", total.StringFixed(2), subtotal.StringFixed(2), tax.StringFixed(2))
	}

	items := make([]models.OrderItem, 0, len(in.Products))
	for i, line := range in.Products {
		switch {
		case strings.TrimSpace(string(line.ProductID)) == "":
			return nil, invalid("product %d: id is required", i+1)
		case strings.TrimSpace(line.Name) == "":
			return nil, invalid("product %d: name is required", i+1)
		case line.Quantity <= 0:
			return nil, invalid("product %d: quantity must be positive", i+1)
		case line.Price.IsNegative():
			return nil, invalid("product %d: price must not be negative", i+1)
		}
		items = append(items, models.OrderItem{
			OrderID:     orderID,
			ProductID:   strings.TrimSpace(string(line.ProductID)),
			ProductName: line.Name,
			Quantity:    line.Quantity,
			Price:       line.Price.Round(2),
		})
	}

	return &models.Order{
		ID:                 orderID,
		UserID:             userID,
		DeliveryAddressRaw: address,
		Date:               date,
		Subtotal:           subtotal,
		Tax:                tax,
		Total:              subtotal.Add(tax),
		PaymentMethod:      in.PaymentMethod,
		Status:             models.OrderPending,
		Items:              items,
	}, nil
}

// normalizeAddress accepts an address object or a JSON string holding one and
// returns its stored string form.
func normalizeAddress(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return "", invalid("deliveryAddress is not valid JSON")
		}
		raw = json.RawMessage(inner)
	}

	var stored models.StoredAddress
	if err := json.Unmarshal(raw, &stored); err != nil {
		return "", invalid("deliveryAddress must be an address object")
	}
	if strings.TrimSpace(stored.Fullname) == "" {
		return "", invalid("deliveryAddress.fullname is required")
	}

	encoded, err := json.Marshal(stored)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// Create stores an order and all of its line items atomically.
func (s *OrderService) Create(ctx context.Context, userID uuid.UUID, in CreateOrderInput) (*models.Order, error) {
	order, err := in.toModel(userID)
	if err != nil {
		return nil, err
	}
	items := order.Items

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Order{}).Where("order_id = ?", order.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateOrder
		}

		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateOrder
			}
			return fmt.Errorf("insert order: %w", err)
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("insert order items: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateOrder) {
			return nil, err
		}
		return nil, fmt.Errorf("create order: %w", err)
	}

	order.Items = items
	order.DeliveryAddress = models.ParseDeliveryAddress(order.DeliveryAddressRaw)

	s.logger.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("user_id", userID.String()),
		zap.Int("items", len(items)),
		zap.String("total", order.Total.StringFixed(2)),
	)

	s.publish(order, events.SourceOrderCreated)
	s.notify(*order, OrderNotifier.NotifyNewOrder)

	return order, nil
}

// ListOrdersFilter narrows an order listing.
type ListOrdersFilter struct {
	Status       string
	ChangedSince *time.Time
}

// List returns the orders visible to the requester, newest first.
func (s *OrderService) List(ctx context.Context, req Requester, filter ListOrdersFilter) ([]models.Order, error) {
	query := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") })

	if !req.IsAdmin() {
		query = query.Where("user_id = ?", req.UserID)
	}
	if filter.Status != "" {
		status, err := models.ParseOrderStatus(filter.Status)
		if err != nil {
			return nil, invalid("%s", err.Error())
		}
		query = query.Where("status = ?", status)
	}
	if filter.ChangedSince != nil {
		query = query.Where("updated_at > ?", filter.ChangedSince.UTC())
	}

	orders := make([]models.Order, 0)
	if err := query.Order("date DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// Get returns one order. Orders of other users are reported as missing.
func (s *OrderService) Get(ctx context.Context, req Requester, id string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&order, "order_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if !req.IsAdmin() && order.UserID != req.UserID {
		return nil, ErrNotFound
	}
	return &order, nil
}

// UpdateStatus sets any legal status on an order. Admin only.
func (s *OrderService) UpdateStatus(ctx context.Context, req Requester, id, status string) (*models.Order, error) {
	if !req.IsAdmin() {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(status) == "" {
		return nil, invalid("status is required")
	}
	parsed, err := models.ParseOrderStatus(status)
	if err != nil {
		return nil, invalid("%s", err.Error())
	}

	order, err := s.setStatus(ctx, id, parsed, nil)
	if err != nil {
		return nil, err
	}

	s.logger.Info("order status overridden",
		zap.String("order_id", id),
		zap.String("status", string(parsed)),
		zap.String("admin_id", req.UserID.String()),
	)
	s.publish(order, events.SourceAdminOverride)
	return order, nil
}

// Cancel lets a customer cancel their own order. Line items and totals are
// kept. The order's shipments are then marked cancelled on a best-effort basis.
func (s *OrderService) Cancel(ctx context.Context, req Requester, id string) (*models.Order, error) {
	order, err := s.setStatus(ctx, id, models.OrderCancelled, func(order *models.Order) error {
		if order.UserID != req.UserID {
			return ErrForbidden
		}
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("order cancelled by customer", zap.String("order_id", id), zap.String("user_id", req.UserID.String()))
	s.publish(order, events.SourceCustomer)
	s.notify(*order, OrderNotifier.NotifyOrderCancelled)

	if s.shipments != nil {
		if _, err := s.shipments.CancelForOrder(ctx, id); err != nil {
			s.logger.Warn("failed to cancel shipments for order", zap.String("order_id", id), zap.Error(err))
		}
	}

	return order, nil
}

// UpdateDeliveryEmail replaces the email inside an order's delivery address.
func (s *OrderService) UpdateDeliveryEmail(ctx context.Context, req Requester, id, email string) (*models.Order, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, invalid("a valid email is required")
	}

	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, "order_id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if order.UserID != req.UserID {
			return ErrForbidden
		}

		var stored models.StoredAddress
		if raw := strings.TrimSpace(order.DeliveryAddressRaw); raw != "" {
			if err := json.Unmarshal([]byte(raw), &stored); err != nil {
				return invalid("order %s has a delivery address that cannot be edited", id)
			}
		}
		stored.Email = email
		encoded, err := json.Marshal(stored)
		if err != nil {
			return err
		}

		order.DeliveryAddressRaw = string(encoded)
		return tx.Model(&models.Order{}).Where("order_id = ?", id).Update("delivery_address", order.DeliveryAddressRaw).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden) || errors.Is(err, ErrValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("update delivery email: %w", err)
	}

	order.DeliveryAddress = models.ParseDeliveryAddress(order.DeliveryAddressRaw)
	return &order, nil
}

func (s *OrderService) setStatus(ctx context.Context, id string, status models.OrderStatus, check func(*models.Order) error) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, "order_id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if check != nil {
			if err := check(&order); err != nil {
				return err
			}
		}
		if err := tx.Model(&models.Order{}).Where("order_id = ?", id).Update("status", status).Error; err != nil {
			return err
		}
		order.Status = status
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden) {
			return nil, err
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}
	return &order, nil
}

func (s *OrderService) publish(order *models.Order, source string) {
	if s.events == nil {
		return
	}
	s.events.Publish(events.StatusEvent{
		OrderID:     order.ID,
		UserID:      order.UserID.String(),
		OrderStatus: order.Status,
		Source:      source,
		At:          time.Now().UTC(),
	})
}

func (s *OrderService) notify(order models.Order, send func(OrderNotifier, models.Order) error) {
	if s.notifier == nil {
		return
	}
	go func() {
		if err := send(s.notifier, order); err != nil {
			s.logger.Warn("order notification failed", zap.String("order_id", order.ID), zap.Error(err))
		}
	}()
}
