package workers

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/logistics-erp/internal/events"
	"github.com/example/logistics-erp/internal/models"
)

// StatusReconciler repairs orders whose status disagrees with the status
// their shipment implies. Orders in a terminal status are never touched.
type StatusReconciler struct {
	db       *gorm.DB
	events   events.Publisher
	logger   *zap.Logger
	schedule string
	timeout  time.Duration
	busy     atomic.Bool
}

// NewStatusReconciler constructs a reconciler. An empty schedule disables it.
func NewStatusReconciler(db *gorm.DB, publisher events.Publisher, logger *zap.Logger, schedule string) *StatusReconciler {
	return &StatusReconciler{
		db:       db,
		events:   publisher,
		logger:   logger,
		schedule: schedule,
		timeout:  2 * time.Minute,
	}
}

// Name identifies the worker in logs.
func (r *StatusReconciler) Name() string {
	return "status-reconciler"
}

// Schedule returns the cron expression the reconciler runs on.
func (r *StatusReconciler) Schedule() string {
	return r.schedule
}

// Execute runs one pass unless one is already in progress.
func (r *StatusReconciler) Execute() {
	if !r.busy.CompareAndSwap(false, true) {
		r.logger.Debug("reconcile pass still running, skipping")
		return
	}
	defer r.busy.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	repaired, err := r.RunOnce(ctx)
	if err != nil {
		r.logger.Error("reconcile pass failed", zap.Error(err))
		return
	}
	r.logger.Info("reconcile pass completed", zap.Int("repaired", repaired))
}

type shipmentOrderRow struct {
	OrderID        string
	UserID         string
	ShipmentStatus models.ShipmentStatus
	OrderStatus    models.OrderStatus
}

// RunOnce performs a single reconcile pass and returns the number of orders
// it changed. When an order has several shipments the most recently updated
// one decides.
func (r *StatusReconciler) RunOnce(ctx context.Context) (int, error) {
	var rows []shipmentOrderRow
	err := r.db.WithContext(ctx).
		Table("shipments").
		Select("shipments.order_id AS order_id, orders.user_id AS user_id, shipments.status AS shipment_status, orders.status AS order_status").
		Joins("JOIN orders ON orders.order_id = shipments.order_id").
		Where("shipments.status IN ?", models.MappedShipmentStatuses()).
		Order("shipments.updated_at ASC").
		Scan(&rows).Error
	if err != nil {
		return 0, fmt.Errorf("load shipment statuses: %w", err)
	}

	latest := make(map[string]shipmentOrderRow, len(rows))
	var orderIDs []string
	for _, row := range rows {
		if _, seen := latest[row.OrderID]; !seen {
			orderIDs = append(orderIDs, row.OrderID)
		}
		latest[row.OrderID] = row
	}

	repaired := 0
	for _, orderID := range orderIDs {
		row := latest[orderID]
		want, ok := models.MapShipmentToOrderStatus(string(row.ShipmentStatus))
		if !ok || row.OrderStatus.Terminal() || row.OrderStatus == want {
			continue
		}

		// the status guard keeps a concurrent cancellation from being overwritten
		res := r.db.WithContext(ctx).Model(&models.Order{}).
			Where("order_id = ? AND status = ?", orderID, row.OrderStatus).
			Update("status", want)
		if res.Error != nil {
			return repaired, fmt.Errorf("repair order %s: %w", orderID, res.Error)
		}
		if res.RowsAffected == 0 {
			continue
		}

		repaired++
		r.logger.Info("order status reconciled",
			zap.String("order_id", orderID),
			zap.String("from", string(row.OrderStatus)),
			zap.String("to", string(want)),
		)
		if r.events != nil {
			r.events.Publish(events.StatusEvent{
				OrderID:        orderID,
				UserID:         row.UserID,
				OrderStatus:    want,
				ShipmentStatus: row.ShipmentStatus,
				Source:         events.SourceReconciler,
				At:             time.Now().UTC(),
			})
		}
	}

	return repaired, nil
}
