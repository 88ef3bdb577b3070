package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/logistics-erp/internal/services"
	"github.com/example/logistics-erp/internal/utils"
)

// BillingHandler manages invoices.
type BillingHandler struct {
	billing *services.BillingService
}

// NewBillingHandler constructs BillingHandler.
func NewBillingHandler(billing *services.BillingService) *BillingHandler {
	return &BillingHandler{billing: billing}
}

// ListBills returns paginated invoices.
func (h *BillingHandler) ListBills(c *fiber.Ctx) error {
	pagination := utils.ParsePagination(c)

	invoices, total, err := h.billing.List(c.UserContext(), pagination)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    invoices,
		"pagination": fiber.Map{
			"current_page":   pagination.Page,
			"items_per_page": pagination.Limit,
			"total_items":    total,
		},
	})
}

type createBillRequest struct {
	OrderID string `json:"orderId"`
}

// CreateBill issues an invoice for an existing order.
func (h *BillingHandler) CreateBill(c *fiber.Ctx) error {
	var req createBillRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	invoice, err := h.billing.CreateInvoice(c.UserContext(), req.OrderID)
	if err != nil {
		return serviceError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Invoice created successfully",
		"data":    invoice,
	})
}
