package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/logistics-erp/internal/models"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the requester may not act on a record.
	ErrForbidden = errors.New("access denied")
	// ErrDuplicateShipment is returned when a shipment id is already taken.
	ErrDuplicateShipment = errors.New("duplicate shipment id")
	// ErrDuplicateOrder is returned when an order id is already taken.
	ErrDuplicateOrder = errors.New("order already exists")
	// ErrValidation wraps every input validation failure.
	ErrValidation = errors.New("invalid input")
)

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// isUniqueViolation recognises duplicate-key failures from every supported
// driver; the pure-Go SQLite driver is not covered by gorm's translator.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

// Requester identifies the authenticated caller of a service operation.
type Requester struct {
	UserID uuid.UUID
	Role   string
	Email  string
}

// IsAdmin reports whether the caller holds the admin role.
func (r Requester) IsAdmin() bool {
	return r.Role == models.RoleAdmin
}
