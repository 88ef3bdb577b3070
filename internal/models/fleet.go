package models

import "time"

// Vehicle is a fleet entry.
type Vehicle struct {
	ID          string    `gorm:"primaryKey;column:fleet_id;size:32" json:"id"`
	Vehicle     string    `json:"vehicle"`
	Driver      string    `json:"driver"`
	Location    string    `json:"location"`
	LastService string    `gorm:"size:10" json:"lastService"`
	NextService string    `gorm:"size:10" json:"nextService"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName keeps the fleet table name.
func (Vehicle) TableName() string {
	return "fleet"
}
