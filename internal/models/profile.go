package models

import "github.com/google/uuid"

// Address is an entry in a user's address book.
type Address struct {
	BaseModel
	UserID   uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Fullname string    `json:"fullname"`
	Phone    string    `json:"phone"`
	Email    string    `json:"email"`
	Pincode  string    `json:"pincode"`
	State    string    `json:"state"`
	City     string    `json:"city"`
	House    string    `json:"house"`
	Road     string    `json:"road"`
}
