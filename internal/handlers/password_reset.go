package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/logistics-erp/internal/config"
	"github.com/example/logistics-erp/internal/models"
	"github.com/example/logistics-erp/internal/services"
	"github.com/example/logistics-erp/internal/utils"
)

// PasswordResetHandler manages forgot-password endpoints.
type PasswordResetHandler struct {
	db     *gorm.DB
	cfg    *config.Config
	mailer services.Mailer
	logger *zap.Logger
}

// NewPasswordResetHandler constructs a PasswordResetHandler.
func NewPasswordResetHandler(db *gorm.DB, cfg *config.Config, mailer services.Mailer, logger *zap.Logger) *PasswordResetHandler {
	return &PasswordResetHandler{db: db, cfg: cfg, mailer: mailer, logger: logger}
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword issues a six digit code for the account and mails it.
// A newer code replaces any earlier one for the same email.
func (h *PasswordResetHandler) ForgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email is required")
	}

	var user models.User
	if err := h.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return err
	}

	otp, err := utils.GenerateOTP()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate code")
	}

	reset := models.PasswordReset{
		Email:     email,
		OTP:       otp,
		ExpiresAt: time.Now().UTC().Add(h.cfg.OTPExpires),
		Used:      false,
	}
	if err := h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"otp", "expires_at", "used", "updated_at"}),
	}).Create(&reset).Error; err != nil {
		return err
	}

	if err := h.mailer.SendOTP(c.UserContext(), email, otp, h.cfg.OTPExpires); err != nil {
		h.logger.Error("failed to send otp", zap.String("email", email), zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "failed to send OTP email")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "OTP sent to email",
	})
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

// ResetPassword sets a new password when the code is valid, unused and unexpired.
func (h *PasswordResetHandler) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.OTP == "" || req.NewPassword == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email, otp and newPassword are required")
	}
	if len(req.NewPassword) < minPasswordLength {
		return fiber.NewError(fiber.StatusBadRequest, "password must be at least 6 characters")
	}

	passwordHash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	err = h.db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var reset models.PasswordReset
		err := tx.Where("email = ? AND otp = ? AND used = ? AND expires_at > ?", email, req.OTP, false, time.Now().UTC()).
			First(&reset).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusBadRequest, "invalid or expired OTP")
		}
		if err != nil {
			return err
		}

		if err := tx.Model(&models.User{}).Where("email = ?", email).Update("password_hash", passwordHash).Error; err != nil {
			return err
		}
		return tx.Model(&reset).Update("used", true).Error
	})
	if err != nil {
		return err
	}

	h.logger.Info("password reset", zap.String("email", email))
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Password reset successful",
	})
}
