package models

import (
	"time"
)

// UserAddress is a saved mailing address. At most one address per user is
// the default; checkout links or creates the default address.
type UserAddress struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	User         User      `gorm:"foreignKey:UserID" json:"-"`
	FullName     string    `gorm:"not null" json:"full_name"`
	AddressLine1 string    `gorm:"not null" json:"address_line1"`
	AddressLine2 *string   `json:"address_line2,omitempty"`
	City         string    `gorm:"not null" json:"city"`
	State        string    `gorm:"not null" json:"state"`
	PostalCode   string    `gorm:"size:20;not null" json:"postal_code"`
	Phone        string    `gorm:"size:20;not null" json:"phone"`
	IsDefault    bool      `gorm:"not null;default:false" json:"is_default"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for the UserAddress model
func (UserAddress) TableName() string {
	return "user_addresses"
}
