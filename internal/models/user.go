package models

import (
	"time"
)

// Role values stored on users.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents an account that can sign in to the ERP.
type User struct {
	BaseModel
	Username     string    `json:"username"`
	Email        string    `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `gorm:"size:16;default:user" json:"role"`
	Addresses    []Address `json:"addresses,omitempty"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// PasswordReset keeps the latest one-time code issued for an email.
type PasswordReset struct {
	BaseModel
	Email     string    `gorm:"uniqueIndex;size:255" json:"email"`
	OTP       string    `gorm:"column:otp;size:6" json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used"`
}
