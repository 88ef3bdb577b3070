package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/example/logistics-erp/internal/models"
)

// DashboardStats aggregates the figures shown on the admin dashboard.
type DashboardStats struct {
	TotalUsers        int64            `json:"total_users"`
	TotalOrders       int64            `json:"total_orders"`
	TotalShipments    int64            `json:"total_shipments"`
	TotalVehicles     int64            `json:"total_vehicles"`
	TotalInventory    int64            `json:"total_inventory_items"`
	Revenue           decimal.Decimal  `json:"revenue"`
	OrdersByStatus    map[string]int64 `json:"orders_by_status"`
	ShipmentsByStatus map[string]int64 `json:"shipments_by_status"`
	LowStockItems     int64            `json:"low_stock_items"`
	LowStockThreshold int              `json:"low_stock_threshold"`
}

// DashboardService computes dashboard statistics.
type DashboardService struct {
	db                *gorm.DB
	lowStockThreshold int
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(db *gorm.DB, lowStockThreshold int) *DashboardService {
	return &DashboardService{db: db, lowStockThreshold: lowStockThreshold}
}

type statusCount struct {
	Status string
	Count  int64
}

// Stats runs the dashboard queries concurrently.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{
		Revenue:           decimal.Zero,
		OrdersByStatus:    make(map[string]int64),
		ShipmentsByStatus: make(map[string]int64),
		LowStockThreshold: s.lowStockThreshold,
	}

	g, ctx := errgroup.WithContext(ctx)
	db := func() *gorm.DB { return s.db.WithContext(ctx) }

	g.Go(func() error { return db().Model(&models.User{}).Count(&stats.TotalUsers).Error })
	g.Go(func() error { return db().Model(&models.Order{}).Count(&stats.TotalOrders).Error })
	g.Go(func() error { return db().Model(&models.Shipment{}).Count(&stats.TotalShipments).Error })
	g.Go(func() error { return db().Model(&models.Vehicle{}).Count(&stats.TotalVehicles).Error })
	g.Go(func() error { return db().Model(&models.InventoryItem{}).Count(&stats.TotalInventory).Error })
	g.Go(func() error {
		return db().Model(&models.InventoryItem{}).Where("quantity < ?", s.lowStockThreshold).Count(&stats.LowStockItems).Error
	})

	var revenue decimal.NullDecimal
	g.Go(func() error {
		return db().Model(&models.Order{}).
			Where("status <> ?", models.OrderCancelled).
			Select("SUM(total)").
			Scan(&revenue).Error
	})

	var orderCounts, shipmentCounts []statusCount
	g.Go(func() error {
		return db().Model(&models.Order{}).Select("status, COUNT(*) AS count").Group("status").Scan(&orderCounts).Error
	})
	g.Go(func() error {
		return db().Model(&models.Shipment{}).Select("status, COUNT(*) AS count").Group("status").Scan(&shipmentCounts).Error
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}

	if revenue.Valid {
		stats.Revenue = revenue.Decimal
	}
	for _, row := range orderCounts {
		stats.OrdersByStatus[row.Status] = row.Count
	}
	for _, row := range shipmentCounts {
		stats.ShipmentsByStatus[row.Status] = row.Count
	}

	return stats, nil
}
