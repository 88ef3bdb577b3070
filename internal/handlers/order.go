package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/example/logistics-erp/internal/services"
)

// OrderHandler manages order endpoints.
type OrderHandler struct {
	orders *services.OrderService
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(orders *services.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// ListOrders returns the caller's orders, or every order for admins.
// Supports ?status= and ?changed_since=<RFC 3339>.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	req, err := currentRequester(c)
	if err != nil {
		return err
	}

	filter := services.ListOrdersFilter{Status: c.Query("status")}
	if raw := c.Query("changed_since"); raw != "" {
		since, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "changed_since must be an RFC 3339 timestamp")
		}
		filter.ChangedSince = &since
	}

	orders, err := h.orders.List(c.UserContext(), req, filter)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"data":        orders,
		"server_time": time.Now().UTC(),
	})
}

// GetOrder returns a single order.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	req, err := currentRequester(c)
	if err != nil {
		return err
	}

	order, err := h.orders.Get(c.UserContext(), req, c.Params("id"))
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

// CreateOrder allows authenticated users to place an order.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	req, err := currentRequester(c)
	if err != nil {
		return err
	}

	var body services.CreateOrderInput
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	order, err := h.orders.Create(c.UserContext(), req.UserID, body)
	if err != nil {
		return serviceError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Order saved successfully",
		"data":    order,
	})
}

type updateOrderStatusRequest struct {
	Status      string `json:"status"`
	OrderStatus string `json:"order_status"`
}

// UpdateOrderStatus lets an admin set any status on an order.
func (h *OrderHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	req, err := currentRequester(c)
	if err != nil {
		return err
	}

	var body updateOrderStatusRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	status := body.Status
	if status == "" {
		status = body.OrderStatus
	}

	order, err := h.orders.UpdateStatus(c.UserContext(), req, c.Params("id"), status)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Order status updated successfully",
		"data":    order,
	})
}

// CancelOrder lets a customer cancel one of their own orders.
func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	req, err := currentRequester(c)
	if err != nil {
		return err
	}

	order, err := h.orders.Cancel(c.UserContext(), req, c.Params("id"))
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Order cancelled successfully",
		"data":    order,
	})
}

type deliveryEmailRequest struct {
	Email string `json:"email"`
}

// UpdateDeliveryEmail changes the contact email of an order's delivery address.
func (h *OrderHandler) UpdateDeliveryEmail(c *fiber.Ctx) error {
	req, err := currentRequester(c)
	if err != nil {
		return err
	}

	var body deliveryEmailRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	order, err := h.orders.UpdateDeliveryEmail(c.UserContext(), req, c.Params("id"), body.Email)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Delivery email updated successfully",
		"data":    order,
	})
}
