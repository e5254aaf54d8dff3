package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Category groups products for display. Categories can nest one level deep
// via Parent (e.g. "Shirts" > "Polo Shirt").
type Category struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"not null" json:"name"`
	ParentID     *uint      `gorm:"index" json:"parent_id,omitempty"`
	Parent       *Category  `gorm:"foreignKey:ParentID" json:"-"`
	DisplayStyle string     `gorm:"not null;default:'box'" json:"display_style"` // "circle" or "box"
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName specifies the table name for the Category model
func (Category) TableName() string {
	return "categories"
}

// Size is a standard garment size. Products with no sizes assigned do not
// require size selection; products with sizes require one of their set.
type Size struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Code         string `gorm:"size:4;uniqueIndex;not null" json:"code"` // S, M, L, XL, XXL
	DisplayOrder int    `gorm:"not null;default:0" json:"display_order"`
}

// TableName specifies the table name for the Size model
func (Size) TableName() string {
	return "sizes"
}

// Product represents a catalog product. Stock is only ever mutated inside
// a locked transaction: cart reservation checks, order placement and
// return/cancellation restocks.
type Product struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Name         string          `gorm:"not null" json:"name"`
	CategoryID   *uint           `gorm:"index" json:"category_id,omitempty"`
	Category     *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Stock        int             `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	Description  string          `gorm:"type:text" json:"description"`
	ImageS3Key   *string         `json:"image_s3_key,omitempty"`
	CanCustomize bool            `gorm:"not null;default:false" json:"can_customize"`
	Sizes        []Size          `gorm:"many2many:product_sizes" json:"sizes,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// HasSizes reports whether this product restricts purchases to a size set.
func (p *Product) HasSizes() bool {
	return len(p.Sizes) > 0
}

// AllowsSize reports whether the given size ID belongs to the product's
// size set. Products without sizes allow only the nil size.
func (p *Product) AllowsSize(sizeID *uint) bool {
	if !p.HasSizes() {
		return sizeID == nil
	}
	if sizeID == nil {
		return false
	}
	for _, s := range p.Sizes {
		if s.ID == *sizeID {
			return true
		}
	}
	return false
}
