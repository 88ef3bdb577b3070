package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/logistics-erp/internal/config"
	"github.com/example/logistics-erp/internal/models"
	"github.com/example/logistics-erp/internal/utils"
)

const identityContextKey = "currentIdentity"

// Identity is the authenticated caller attached to a request.
type Identity struct {
	UserID uuid.UUID
	Role   string
	Email  string
}

// IsAdmin reports whether the caller holds the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

// AuthMiddleware validates JWT tokens and loads the caller's identity into context.
// Role and email come from the users table, so a role change applies to tokens
// issued before it.
func AuthMiddleware(cfg *config.Config, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authorization header missing")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "token missing")
		}

		claims, err := utils.ParseToken(cfg.JWTSecret, strings.TrimSpace(parts[1]))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		var user models.User
		if err := db.WithContext(c.UserContext()).Select("id", "email", "role").First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusUnauthorized, "account no longer exists")
			}
			return err
		}

		c.Locals(identityContextKey, Identity{UserID: user.ID, Role: user.Role, Email: user.Email})
		return c.Next()
	}
}

// RequireAdmin rejects callers without the admin role. It must run after AuthMiddleware.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := GetIdentity(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}
		if !identity.IsAdmin() {
			return fiber.NewError(fiber.StatusForbidden, "access denied")
		}
		return c.Next()
	}
}

// GetIdentity extracts the authenticated caller from context.
func GetIdentity(c *fiber.Ctx) (Identity, bool) {
	identity, ok := c.Locals(identityContextKey).(Identity)
	return identity, ok
}

// GetCurrentUserID extracts the authenticated user ID from context.
func GetCurrentUserID(c *fiber.Ctx) (uuid.UUID, bool) {
	identity, ok := GetIdentity(c)
	if !ok {
		return uuid.Nil, false
	}
	return identity.UserID, true
}
