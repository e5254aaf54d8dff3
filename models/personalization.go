package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PersonalizationStatus is the state of a personalization request.
type PersonalizationStatus string

const (
	PersonalizationPending       PersonalizationStatus = "pending"
	PersonalizationAdminApproved PersonalizationStatus = "admin_approved"
	PersonalizationOrderAccepted PersonalizationStatus = "order_accepted"
	PersonalizationRejected      PersonalizationStatus = "rejected"
)

// personalizationTransitions is the set of legal status transitions.
// Rejection is terminal; order_accepted is terminal for workflow purposes
// (checkout consumes the quantity but the status stays).
var personalizationTransitions = map[PersonalizationStatus][]PersonalizationStatus{
	PersonalizationPending:       {PersonalizationAdminApproved, PersonalizationRejected},
	PersonalizationAdminApproved: {PersonalizationOrderAccepted, PersonalizationRejected},
}

// CanTransitionTo reports whether moving to the given status is legal.
func (s PersonalizationStatus) CanTransitionTo(next PersonalizationStatus) bool {
	for _, allowed := range personalizationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PersonalizationRequest is a user-submitted custom design for a product.
// It must pass admin approval, then user acceptance, before it becomes
// purchasable. While order_accepted with CartQuantity > 0 it behaves as a
// cart line alongside the true CartItem rows.
type PersonalizationRequest struct {
	ID              uint                  `gorm:"primaryKey" json:"id"`
	UserID          uint                  `gorm:"not null;index" json:"user_id"`
	User            User                  `gorm:"foreignKey:UserID" json:"-"`
	ProductID       uint                  `gorm:"not null;index" json:"product_id"`
	Product         Product               `gorm:"foreignKey:ProductID" json:"product"`
	DesignS3Key     string                `gorm:"not null" json:"design_s3_key"`
	DesignURL       string                `gorm:"-" json:"design_url,omitempty"` // computed, presigned
	Status          PersonalizationStatus `gorm:"size:15;not null;default:'pending'" json:"status"`
	FinalImageS3Key *string               `json:"final_image_s3_key,omitempty"`
	FinalImageURL   string                `gorm:"-" json:"final_image_url,omitempty"` // computed, presigned
	AdminNotes      *string               `gorm:"type:text" json:"admin_notes,omitempty"`
	CartQuantity    int                   `gorm:"not null;default:0" json:"cart_quantity"`
	SizeID          *uint                 `json:"size_id,omitempty"`
	Size            *Size                 `gorm:"foreignKey:SizeID" json:"size,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// TableName specifies the table name for the PersonalizationRequest model
func (PersonalizationRequest) TableName() string {
	return "personalization_requests"
}

// IsInCart reports whether this request currently counts as a cart line.
func (r *PersonalizationRequest) IsInCart() bool {
	return r.Status == PersonalizationOrderAccepted && r.CartQuantity > 0
}

// CartTotalPrice returns quantity x product price for in-cart requests,
// zero otherwise.
func (r *PersonalizationRequest) CartTotalPrice() decimal.Decimal {
	if !r.IsInCart() {
		return decimal.Zero
	}
	return r.Product.Price.Mul(decimal.NewFromInt(int64(r.CartQuantity)))
}
