package models

import (
	"time"
)

// Cart is owned by exactly one of a registered user or an anonymous
// session key, never both. A user's cart and a session's cart are distinct
// rows until merged at login.
type Cart struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     *uint      `gorm:"index" json:"user_id,omitempty"`
	User       *User      `gorm:"foreignKey:UserID" json:"-"`
	SessionKey *string    `gorm:"size:64;index" json:"session_key,omitempty"`
	Items      []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TableName specifies the table name for the Cart model
func (Cart) TableName() string {
	return "carts"
}

// CartItem is one (product, size) line in a cart. The (cart, product, size)
// triple is unique; re-adding the same pair increments quantity instead of
// creating a duplicate row.
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CartID    uint      `gorm:"not null;uniqueIndex:idx_cart_product_size" json:"cart_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_product_size" json:"product_id"`
	Product   Product   `gorm:"foreignKey:ProductID" json:"product"`
	SizeID    *uint     `gorm:"uniqueIndex:idx_cart_product_size" json:"size_id,omitempty"`
	Size      *Size     `gorm:"foreignKey:SizeID" json:"size,omitempty"`
	Quantity  int       `gorm:"not null;check:quantity > 0" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the CartItem model
func (CartItem) TableName() string {
	return "cart_items"
}
