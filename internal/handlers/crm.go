package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/logistics-erp/internal/services"
)

// CRMHandler exposes the customer list.
type CRMHandler struct {
	crm *services.CRMService
}

// NewCRMHandler constructs CRMHandler.
func NewCRMHandler(crm *services.CRMService) *CRMHandler {
	return &CRMHandler{crm: crm}
}

// ListCustomers returns customers derived from orders.
func (h *CRMHandler) ListCustomers(c *fiber.Ctx) error {
	customers, err := h.crm.Customers(c.UserContext())
	if err != nil {
		return serviceError(err)
	}
	if customers == nil {
		customers = []services.Customer{}
	}
	return c.JSON(fiber.Map{"success": true, "data": customers})
}
