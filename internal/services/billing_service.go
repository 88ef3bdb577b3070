package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/logistics-erp/internal/models"
	"github.com/example/logistics-erp/internal/utils"
)

const invoicePrefix = "INV-"

// BillingService issues invoices for orders.
type BillingService struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewBillingService constructs a BillingService.
func NewBillingService(db *gorm.DB, logger *zap.Logger) *BillingService {
	return &BillingService{db: db, logger: logger}
}

// CreateInvoice bills an existing order under the next invoice number.
func (s *BillingService) CreateInvoice(ctx context.Context, orderID string) (*models.Invoice, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, invalid("orderId is required")
	}

	var invoice models.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, "order_id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		number, err := nextInvoiceNumber(tx)
		if err != nil {
			return err
		}

		invoice = models.Invoice{
			Number:        number,
			OrderID:       order.ID,
			CustomerName:  order.DeliveryAddress.Name,
			Subtotal:      order.Subtotal,
			Tax:           order.Tax,
			Total:         order.Total,
			PaymentMethod: order.PaymentMethod,
			IssuedAt:      time.Now().UTC(),
		}
		return tx.Create(&invoice).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("create invoice: %w", err)
	}

	s.logger.Info("invoice issued", zap.String("invoice", invoice.Number), zap.String("order_id", orderID))
	return &invoice, nil
}

// List returns a page of invoices, newest first, with the total count.
func (s *BillingService) List(ctx context.Context, page utils.Pagination) ([]models.Invoice, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Invoice{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count invoices: %w", err)
	}

	invoices := make([]models.Invoice, 0)
	if err := s.db.WithContext(ctx).Order("issued_at DESC").Order("number DESC").
		Limit(page.Limit).Offset(page.Offset).Find(&invoices).Error; err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}
	return invoices, total, nil
}

// NextNumber returns the number the next invoice would receive.
func (s *BillingService) NextNumber(ctx context.Context) (string, error) {
	return nextInvoiceNumber(s.db.WithContext(ctx))
}

func nextInvoiceNumber(db *gorm.DB) (string, error) {
	var numbers []string
	if err := db.Model(&models.Invoice{}).Pluck("number", &numbers).Error; err != nil {
		return "", err
	}
	return utils.NextSequence(numbers, invoicePrefix, 4), nil
}
