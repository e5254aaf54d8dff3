package services

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/arushi-crafts/storefront-api/models"
)

// LineSource tells which table backs a cart line.
type LineSource string

const (
	LineSourceCart            LineSource = "cart"
	LineSourcePersonalization LineSource = "personalization"
)

// Line is the unified view of a unit of purchase intent: either a true
// CartItem row or an order_accepted personalization request with a cart
// quantity. Totals and checkout iterate one sequence of Lines instead of
// summing the two tables separately at every call site.
type Line struct {
	Source            LineSource      `json:"source"`
	ProductID         uint            `json:"product_id"`
	ProductName       string          `json:"product_name"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	Quantity          int             `json:"quantity"`
	SizeID            *uint           `json:"size_id,omitempty"`
	CartItemID        *uint           `json:"cart_item_id,omitempty"`
	PersonalizationID *uint           `json:"personalization_id,omitempty"`
}

// Total returns quantity x unit price.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// collectLines gathers the identity's cart lines: true cart items first,
// then (for registered users) in-cart personalization requests. Runs inside
// the caller's transaction.
func collectLines(tx *gorm.DB, identity Identity) ([]Line, error) {
	var cart models.Cart
	if err := resolveCartTx(tx, identity, &cart); err != nil {
		return nil, err
	}

	var items []models.CartItem
	if err := tx.Preload("Product").
		Where("cart_id = ?", cart.ID).
		Order("id").
		Find(&items).Error; err != nil {
		return nil, err
	}

	lines := make([]Line, 0, len(items))
	for _, item := range items {
		itemID := item.ID
		lines = append(lines, Line{
			Source:      LineSourceCart,
			ProductID:   item.ProductID,
			ProductName: item.Product.Name,
			UnitPrice:   item.Product.Price,
			Quantity:    item.Quantity,
			SizeID:      item.SizeID,
			CartItemID:  &itemID,
		})
	}

	if !identity.IsUser() {
		return lines, nil
	}

	var requests []models.PersonalizationRequest
	if err := tx.Preload("Product").
		Where("user_id = ? AND status = ? AND cart_quantity > 0",
			*identity.UserID, models.PersonalizationOrderAccepted).
		Order("id").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	for _, req := range requests {
		reqID := req.ID
		lines = append(lines, Line{
			Source:            LineSourcePersonalization,
			ProductID:         req.ProductID,
			ProductName:       req.Product.Name,
			UnitPrice:         req.Product.Price,
			Quantity:          req.CartQuantity,
			SizeID:            req.SizeID,
			PersonalizationID: &reqID,
		})
	}
	return lines, nil
}

// Lines returns the identity's combined cart lines.
func (s *CartService) Lines(identity Identity) ([]Line, error) {
	var lines []Line
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		lines, err = collectLines(tx, identity)
		return err
	})
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// CombinedTotals sums the combined cart lines the same way Totals sums the
// true cart: quantity sum, price sum, distinct line count.
func (s *CartService) CombinedTotals(identity Identity) (CartTotals, error) {
	lines, err := s.Lines(identity)
	if err != nil {
		return CartTotals{}, err
	}
	totals := CartTotals{TotalPrice: decimal.Zero, ItemCount: len(lines)}
	for _, line := range lines {
		totals.TotalItems += line.Quantity
		totals.TotalPrice = totals.TotalPrice.Add(line.Total())
	}
	return totals, nil
}
