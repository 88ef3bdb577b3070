package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/logistics-erp/internal/middleware"
	"github.com/example/logistics-erp/internal/models"
)

const defaultProfileImage = "https://cdn-icons-png.flaticon.com/512/149/149071.png"

// ProfileHandler manages user profile and address book endpoints.
type ProfileHandler struct {
	db *gorm.DB
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{db: db}
}

// GetProfile returns the authenticated user's profile.
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":         user.ID,
			"name":       user.Username,
			"email":      user.Email,
			"role":       user.Role,
			"image":      defaultProfileImage,
			"created_at": user.CreatedAt,
		},
	})
}

type updateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UpdateProfile updates the username and email.
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]interface{}{}
	if name := strings.TrimSpace(req.Name); name != "" {
		updates["username"] = name
	}
	if email := strings.ToLower(strings.TrimSpace(req.Email)); email != "" {
		if !strings.Contains(email, "@") {
			return fiber.NewError(fiber.StatusBadRequest, "invalid email")
		}
		updates["email"] = email
	}
	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}

	if err := h.db.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(strings.ToLower(err.Error()), "unique constraint") {
			return fiber.NewError(fiber.StatusConflict, "email already in use")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "Profile updated successfully"})
}

// ListAddresses returns the user's address book.
func (h *ProfileHandler) ListAddresses(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	addresses := make([]models.Address, 0)
	if err := h.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&addresses).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": addresses})
}

type addressRequest struct {
	ID       string `json:"id"`
	Fullname string `json:"fullname"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Pincode  string `json:"pincode"`
	State    string `json:"state"`
	City     string `json:"city"`
	House    string `json:"house"`
	Road     string `json:"road"`
}

func (r addressRequest) validate() error {
	for _, value := range []string{r.Fullname, r.Phone, r.Pincode, r.State, r.City} {
		if strings.TrimSpace(value) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "fullname, phone, pincode, state and city are required")
		}
	}
	return nil
}

// CreateAddress adds an address to the user's address book.
func (h *ProfileHandler) CreateAddress(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req addressRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := req.validate(); err != nil {
		return err
	}

	address := models.Address{
		UserID:   userID,
		Fullname: req.Fullname,
		Phone:    req.Phone,
		Email:    req.Email,
		Pincode:  req.Pincode,
		State:    req.State,
		City:     req.City,
		House:    req.House,
		Road:     req.Road,
	}
	if err := h.db.Create(&address).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Address added successfully",
		"data":    address,
	})
}

// UpdateAddress replaces an address owned by the user. The id comes from the
// path or, for the collection route, from the body.
func (h *ProfileHandler) UpdateAddress(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req addressRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	rawID := c.Params("id", req.ID)
	addressID, err := uuid.Parse(rawID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid address id")
	}
	if err := req.validate(); err != nil {
		return err
	}

	var address models.Address
	if err := h.db.First(&address, "id = ? AND user_id = ?", addressID, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "address not found")
		}
		return err
	}

	address.Fullname = req.Fullname
	address.Phone = req.Phone
	address.Email = req.Email
	address.Pincode = req.Pincode
	address.State = req.State
	address.City = req.City
	address.House = req.House
	address.Road = req.Road

	if err := h.db.Save(&address).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Address updated successfully",
		"data":    address,
	})
}
