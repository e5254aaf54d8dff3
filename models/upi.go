package models

import (
	"time"
)

// UPIPaymentMethod is reference data for the checkout page: which UPI apps
// the store accepts. Payments themselves are not processed here; the chosen
// provider is recorded on the order as a label.
type UPIPaymentMethod struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:50;uniqueIndex;not null" json:"name"` // e.g. PhonePe, Paytm
	Code         string    `gorm:"size:20;uniqueIndex;not null" json:"code"` // e.g. phonepe, paytm
	UPIID        string    `gorm:"size:100;not null" json:"upi_id"`
	LogoS3Key    *string   `json:"logo_s3_key,omitempty"`
	QRCodeS3Key  *string   `json:"qr_code_s3_key,omitempty"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	DisplayOrder int       `gorm:"not null;default:1" json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for the UPIPaymentMethod model
func (UPIPaymentMethod) TableName() string {
	return "upi_payment_methods"
}
