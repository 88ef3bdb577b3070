package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/logistics-erp/internal/models"
	"github.com/example/logistics-erp/internal/services"
)

// AdminHandler manages admin-only endpoints.
type AdminHandler struct {
	db        *gorm.DB
	dashboard *services.DashboardService
	logger    *zap.Logger
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(db *gorm.DB, dashboard *services.DashboardService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{db: db, dashboard: dashboard, logger: logger}
}

// DashboardStats returns aggregate statistics for the admin dashboard.
func (h *AdminHandler) DashboardStats(c *fiber.Ctx) error {
	stats, err := h.dashboard.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": stats})
}

// ListUsers returns all registered users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users := make([]models.User, 0)
	if err := h.db.WithContext(c.UserContext()).Order("created_at ASC").Find(&users).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": users})
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

// UpdateUserRole grants or revokes the admin role.
func (h *AdminHandler) UpdateUserRole(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid user id")
	}

	var req updateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Role != models.RoleAdmin && req.Role != models.RoleUser {
		return fiber.NewError(fiber.StatusBadRequest, "role must be admin or user")
	}

	var user models.User
	if err := h.db.WithContext(c.UserContext()).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return err
	}

	if err := h.db.WithContext(c.UserContext()).Model(&user).Update("role", req.Role).Error; err != nil {
		return err
	}
	user.Role = req.Role

	h.logger.Info("user role changed", zap.String("user_id", user.ID.String()), zap.String("role", req.Role))

	return c.JSON(fiber.Map{
		"success": true,
		"message": "User role updated successfully",
		"data":    user,
	})
}
