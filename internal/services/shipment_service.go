package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/logistics-erp/internal/events"
	"github.com/example/logistics-erp/internal/models"
	"github.com/example/logistics-erp/internal/utils"
)

// ShipmentService records shipments and keeps their orders in step.
type ShipmentService struct {
	db     *gorm.DB
	events events.Publisher
	logger *zap.Logger
}

// NewShipmentService constructs a ShipmentService.
func NewShipmentService(db *gorm.DB, publisher events.Publisher, logger *zap.Logger) *ShipmentService {
	return &ShipmentService{db: db, events: publisher, logger: logger}
}

// CreateShipmentInput is the payload for a new shipment.
type CreateShipmentInput struct {
	ShipmentID        string `json:"shipmentId"`
	OrderID           string `json:"orderId"`
	Carrier           string `json:"carrier"`
	TrackingNumber    string `json:"trackingNumber"`
	Status            string `json:"status"`
	ShipmentDate      string `json:"shipmentDate"`
	EstimatedDelivery string `json:"estimatedDelivery"`
	FromLocation      string `json:"fromLocation"`
	ToLocation        string `json:"toLocation"`
	CustomerName      string `json:"customerName"`
}

func (in CreateShipmentInput) toModel() (*models.Shipment, error) {
	required := []struct{ name, value string }{
		{"shipmentId", in.ShipmentID},
		{"orderId", in.OrderID},
		{"carrier", in.Carrier},
		{"trackingNumber", in.TrackingNumber},
		{"status", in.Status},
		{"shipmentDate", in.ShipmentDate},
		{"estimatedDelivery", in.EstimatedDelivery},
		{"fromLocation", in.FromLocation},
		{"toLocation", in.ToLocation},
		{"customerName", in.CustomerName},
	}
	var missing []string
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return nil, invalid("missing required fields: %s", strings.Join(missing, ", "))
	}

	status, err := models.ParseShipmentStatus(in.Status)
	if err != nil {
		return nil, invalid("%s", err.Error())
	}
	shipped, err := utils.ParseDate(in.ShipmentDate)
	if err != nil {
		return nil, invalid("shipmentDate: %s", err.Error())
	}
	eta, err := utils.ParseDate(in.EstimatedDelivery)
	if err != nil {
		return nil, invalid("estimatedDelivery: %s", err.Error())
	}

	return &models.Shipment{
		ID:                strings.TrimSpace(in.ShipmentID),
		OrderID:           strings.TrimSpace(in.OrderID),
		Carrier:           in.Carrier,
		TrackingNumber:    in.TrackingNumber,
		Status:            status,
		ShipmentDate:      shipped,
		EstimatedDelivery: eta,
		FromLocation:      in.FromLocation,
		ToLocation:        in.ToLocation,
		CustomerName:      in.CustomerName,
	}, nil
}

// SyncResult describes the effect of a shipment write on its order.
type SyncResult struct {
	Shipment     *models.Shipment   `json:"shipment"`
	OrderStatus  models.OrderStatus `json:"order_status,omitempty"`
	OrderUpdated bool               `json:"order_updated"`
}

// Create stores a new shipment and applies its status to the order. An
// existing shipment id is never overwritten.
func (s *ShipmentService) Create(ctx context.Context, in CreateShipmentInput) (*SyncResult, error) {
	shipment, err := in.toModel()
	if err != nil {
		return nil, err
	}

	result := &SyncResult{Shipment: shipment}
	var order *models.Order

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Shipment{}).Where("shipment_id = ?", shipment.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateShipment
		}

		if err := tx.Create(shipment).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateShipment
			}
			return err
		}

		var updated bool
		order, updated, err = syncOrderStatus(tx, shipment.OrderID, shipment.Status)
		if err != nil {
			return fmt.Errorf("sync order status: %w", err)
		}
		if updated {
			result.OrderStatus = order.Status
			result.OrderUpdated = true
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateShipment) {
			return nil, err
		}
		// a concurrent insert may surface as a failed commit
		if isUniqueViolation(err) {
			return nil, ErrDuplicateShipment
		}
		return nil, fmt.Errorf("create shipment: %w", err)
	}

	s.logger.Info("shipment created",
		zap.String("shipment_id", shipment.ID),
		zap.String("order_id", shipment.OrderID),
		zap.String("status", string(shipment.Status)),
		zap.Bool("order_updated", result.OrderUpdated),
	)

	if result.OrderUpdated {
		s.publish(order, shipment.Status)
	}

	return result, nil
}

// UpdateStatus changes the status of the shipments for key and propagates the
// mapped status to the order. key is an order id; when no shipment carries
// that order id it is tried as a shipment id.
func (s *ShipmentService) UpdateStatus(ctx context.Context, key, status string) (*SyncResult, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, invalid("shipment key is required")
	}
	if strings.TrimSpace(status) == "" {
		return nil, invalid("status is required")
	}
	parsed, err := models.ParseShipmentStatus(status)
	if err != nil {
		return nil, invalid("%s", err.Error())
	}

	result := &SyncResult{}
	var order *models.Order

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var shipments []models.Shipment
		if err := tx.Where("order_id = ?", key).Order("updated_at DESC").Find(&shipments).Error; err != nil {
			return err
		}
		column := "order_id"
		if len(shipments) == 0 {
			if err := tx.Where("shipment_id = ?", key).Find(&shipments).Error; err != nil {
				return err
			}
			column = "shipment_id"
		}
		if len(shipments) == 0 {
			return ErrNotFound
		}

		if err := tx.Model(&models.Shipment{}).Where(column+" = ?", key).Update("status", parsed).Error; err != nil {
			return err
		}

		shipment := shipments[0]
		shipment.Status = parsed
		result.Shipment = &shipment

		var updated bool
		order, updated, err = syncOrderStatus(tx, shipment.OrderID, parsed)
		if err != nil {
			return fmt.Errorf("sync order status: %w", err)
		}
		if updated {
			result.OrderStatus = order.Status
			result.OrderUpdated = true
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update shipment status: %w", err)
	}

	s.logger.Info("shipment status updated",
		zap.String("key", key),
		zap.String("status", string(parsed)),
		zap.Bool("order_updated", result.OrderUpdated),
	)

	if result.OrderUpdated {
		s.publish(order, parsed)
	}

	return result, nil
}

// CancelForOrder marks every shipment of an order as cancelled and reports
// how many rows changed.
func (s *ShipmentService) CancelForOrder(ctx context.Context, orderID string) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Shipment{}).
		Where("order_id = ?", orderID).
		Update("status", models.ShipmentCancelled)
	if res.Error != nil {
		return 0, fmt.Errorf("cancel shipments: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// List returns all shipments, newest shipment date first.
func (s *ShipmentService) List(ctx context.Context) ([]models.Shipment, error) {
	var shipments []models.Shipment
	if err := s.db.WithContext(ctx).Order("shipment_date DESC").Find(&shipments).Error; err != nil {
		return nil, fmt.Errorf("list shipments: %w", err)
	}
	return shipments, nil
}

// ListByStatus returns shipments in the given status.
func (s *ShipmentService) ListByStatus(ctx context.Context, status string) ([]models.Shipment, error) {
	parsed, err := models.ParseShipmentStatus(status)
	if err != nil {
		return nil, invalid("%s", err.Error())
	}

	var shipments []models.Shipment
	if err := s.db.WithContext(ctx).Where("status = ?", parsed).Order("shipment_date DESC").Find(&shipments).Error; err != nil {
		return nil, fmt.Errorf("list shipments by status: %w", err)
	}
	return shipments, nil
}

// NextID returns the next free zero-padded shipment id.
func (s *ShipmentService) NextID(ctx context.Context) (string, error) {
	var ids []string
	if err := s.db.WithContext(ctx).Model(&models.Shipment{}).Pluck("shipment_id", &ids).Error; err != nil {
		return "", fmt.Errorf("next shipment id: %w", err)
	}
	return utils.NextSequence(ids, "", 4), nil
}

func (s *ShipmentService) publish(order *models.Order, shipmentStatus models.ShipmentStatus) {
	if s.events == nil || order == nil {
		return
	}
	s.events.Publish(events.StatusEvent{
		OrderID:        order.ID,
		UserID:         order.UserID.String(),
		OrderStatus:    order.Status,
		ShipmentStatus: shipmentStatus,
		Source:         events.SourceShipmentSync,
		At:             time.Now().UTC(),
	})
}
