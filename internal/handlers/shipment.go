package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/logistics-erp/internal/services"
)

// ShipmentHandler manages shipment endpoints.
type ShipmentHandler struct {
	shipments *services.ShipmentService
}

// NewShipmentHandler constructs ShipmentHandler.
func NewShipmentHandler(shipments *services.ShipmentService) *ShipmentHandler {
	return &ShipmentHandler{shipments: shipments}
}

// ListShipments returns every shipment, newest first.
func (h *ShipmentHandler) ListShipments(c *fiber.Ctx) error {
	shipments, err := h.shipments.List(c.UserContext())
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(fiber.Map{"success": true, "data": shipments})
}

// ListByStatus returns shipments in one status.
func (h *ShipmentHandler) ListByStatus(c *fiber.Ctx) error {
	shipments, err := h.shipments.ListByStatus(c.UserContext(), c.Params("status"))
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(fiber.Map{"success": true, "data": shipments})
}

// NextID returns the next free shipment id.
func (h *ShipmentHandler) NextID(c *fiber.Ctx) error {
	id, err := h.shipments.NextID(c.UserContext())
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"shipmentId": id}})
}

// CreateShipment records a shipment and syncs its order.
func (h *ShipmentHandler) CreateShipment(c *fiber.Ctx) error {
	var body services.CreateShipmentInput
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.shipments.Create(c.UserContext(), body)
	if err != nil {
		return serviceError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Shipment added successfully",
		"data":    result,
	})
}

type updateShipmentStatusRequest struct {
	Status string `json:"status"`
}

// UpdateShipmentStatus changes a shipment's status and reports whether the
// order followed.
func (h *ShipmentHandler) UpdateShipmentStatus(c *fiber.Ctx) error {
	var body updateShipmentStatusRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.shipments.UpdateStatus(c.UserContext(), c.Params("id"), body.Status)
	if err != nil {
		return serviceError(err)
	}

	message := "Shipment status updated successfully, no order status change"
	if result.OrderUpdated {
		message = "Shipment and order status updated successfully"
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    result,
	})
}
