package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/example/logistics-erp/internal/models"
)

// syncOrderStatus moves the order referenced by a shipment to the status the
// shipment implies. Unmapped shipment statuses, missing orders and orders in a
// terminal status are left alone. The boolean reports whether a row changed.
func syncOrderStatus(tx *gorm.DB, orderID string, status models.ShipmentStatus) (*models.Order, bool, error) {
	mapped, ok := models.MapShipmentToOrderStatus(string(status))
	if !ok {
		return nil, false, nil
	}

	var order models.Order
	err := tx.Select("order_id", "user_id", "status").First(&order, "order_id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if order.Status.Terminal() || order.Status == mapped {
		return &order, false, nil
	}

	if err := tx.Model(&models.Order{}).Where("order_id = ?", orderID).Update("status", mapped).Error; err != nil {
		return nil, false, err
	}

	order.Status = mapped
	return &order, true, nil
}
