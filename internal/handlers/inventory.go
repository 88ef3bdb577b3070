package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/logistics-erp/internal/models"
)

// InventoryHandler manages warehouse stock.
type InventoryHandler struct {
	db                *gorm.DB
	lowStockThreshold int
}

// NewInventoryHandler constructs InventoryHandler.
func NewInventoryHandler(db *gorm.DB, lowStockThreshold int) *InventoryHandler {
	return &InventoryHandler{db: db, lowStockThreshold: lowStockThreshold}
}

type inventoryRequest struct {
	Name        string           `json:"name"`
	Category    string           `json:"category"`
	Description string           `json:"description"`
	Quantity    *int             `json:"quantity"`
	Status      string           `json:"status"`
	Price       *decimal.Decimal `json:"price"`
	Supplier    string           `json:"supplier"`
	SKU         string           `json:"sku"`
	Warehouse   string           `json:"warehouse"`
	WeightKg    *decimal.Decimal `json:"weight_kg"`
	Action      string           `json:"action"`
}

func (r inventoryRequest) validate() error {
	for _, value := range []string{r.Name, r.Category, r.Supplier, r.SKU, r.Warehouse} {
		if strings.TrimSpace(value) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name, category, quantity, price, supplier, sku, warehouse and weight_kg are required")
		}
	}
	if r.Quantity == nil || r.Price == nil || r.WeightKg == nil {
		return fiber.NewError(fiber.StatusBadRequest, "name, category, quantity, price, supplier, sku, warehouse and weight_kg are required")
	}
	if *r.Quantity < 0 || r.Price.IsNegative() || r.WeightKg.IsNegative() {
		return fiber.NewError(fiber.StatusBadRequest, "quantity, price and weight_kg must not be negative")
	}
	if !models.IsWarehouse(r.Warehouse) {
		return fiber.NewError(fiber.StatusBadRequest, "unknown warehouse")
	}
	return nil
}

func (r inventoryRequest) apply(item *models.InventoryItem, lowStockThreshold int) {
	item.Name = r.Name
	item.Category = r.Category
	item.Description = r.Description
	item.Quantity = *r.Quantity
	item.Status = models.StockLabel(r.Status, *r.Quantity, lowStockThreshold)
	item.Price = r.Price.Round(2)
	item.Supplier = r.Supplier
	item.SKU = r.SKU
	item.WeightKg = *r.WeightKg
	item.Action = r.Action
	for _, warehouse := range models.Warehouses {
		if strings.EqualFold(warehouse, r.Warehouse) {
			item.Warehouse = warehouse
		}
	}
}

// ListInventory returns inventory items, optionally filtered by
// ?warehouse=, ?category= and ?status=.
func (h *InventoryHandler) ListInventory(c *fiber.Ctx) error {
	query := h.db.WithContext(c.UserContext()).Model(&models.InventoryItem{})
	if warehouse := c.Query("warehouse"); warehouse != "" {
		query = query.Where("warehouse = ?", warehouse)
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	items := make([]models.InventoryItem, 0)
	if err := query.Order("name ASC").Find(&items).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": items})
}

// CreateInventoryItem adds a stocked product.
func (h *InventoryHandler) CreateInventoryItem(c *fiber.Ctx) error {
	var req inventoryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := req.validate(); err != nil {
		return err
	}

	var item models.InventoryItem
	req.apply(&item, h.lowStockThreshold)
	if err := h.db.WithContext(c.UserContext()).Create(&item).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Inventory item added successfully",
		"data":    item,
	})
}

// UpdateInventoryItem replaces an item's fields and returns the updated row.
func (h *InventoryHandler) UpdateInventoryItem(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req inventoryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := req.validate(); err != nil {
		return err
	}

	var item models.InventoryItem
	if err := h.db.WithContext(c.UserContext()).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "inventory item not found")
		}
		return err
	}

	req.apply(&item, h.lowStockThreshold)
	if err := h.db.WithContext(c.UserContext()).Save(&item).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Inventory item updated successfully",
		"data":    item,
	})
}

// Warehouses groups inventory by warehouse, listing every known warehouse.
func (h *InventoryHandler) Warehouses(c *fiber.Ctx) error {
	var items []models.InventoryItem
	if err := h.db.WithContext(c.UserContext()).Order("name ASC").Find(&items).Error; err != nil {
		return err
	}

	type warehouseSummary struct {
		Name          string                 `json:"name"`
		Items         []models.InventoryItem `json:"items"`
		TotalQuantity int                    `json:"total_quantity"`
		LowStock      int                    `json:"low_stock"`
	}

	summaries := make([]*warehouseSummary, 0, len(models.Warehouses))
	byName := make(map[string]*warehouseSummary, len(models.Warehouses))
	for _, name := range models.Warehouses {
		summary := &warehouseSummary{Name: name, Items: []models.InventoryItem{}}
		summaries = append(summaries, summary)
		byName[name] = summary
	}

	for _, item := range items {
		summary, ok := byName[item.Warehouse]
		if !ok {
			continue
		}
		summary.Items = append(summary.Items, item)
		summary.TotalQuantity += item.Quantity
		if item.Quantity < h.lowStockThreshold {
			summary.LowStock++
		}
	}

	return c.JSON(fiber.Map{"success": true, "data": summaries})
}

type quantitiesRequest struct {
	ProductIDs []string `json:"productIds"`
}

// Quantities returns {id: quantity} for the requested inventory ids.
// Unknown or malformed ids are omitted.
func (h *InventoryHandler) Quantities(c *fiber.Ctx) error {
	var req quantitiesRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if len(req.ProductIDs) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "productIds must be a non-empty array")
	}

	ids := make([]uuid.UUID, 0, len(req.ProductIDs))
	for _, raw := range req.ProductIDs {
		if id, err := uuid.Parse(raw); err == nil {
			ids = append(ids, id)
		}
	}

	quantities := make(map[string]int, len(ids))
	if len(ids) > 0 {
		var items []models.InventoryItem
		if err := h.db.WithContext(c.UserContext()).Select("id", "quantity").Where("id IN ?", ids).Find(&items).Error; err != nil {
			return err
		}
		for _, item := range items {
			quantities[item.ID.String()] = item.Quantity
		}
	}

	return c.JSON(fiber.Map{"success": true, "data": quantities})
}
