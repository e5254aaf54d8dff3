package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/arushi-crafts/storefront-api/models"
)

// CartService implements the cart engine. Every mutating operation runs in
// a single transaction that locks the target product row (and cart-item row
// where one exists) before reading quantities, so two concurrent requests
// cannot both approve a now-insufficient stock level.
type CartService struct {
	db *gorm.DB
}

// NewCartService creates a cart service backed by the given database.
func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

// CartTotals is a live summary of a cart's true lines.
type CartTotals struct {
	TotalItems int             `json:"total_items"` // sum of quantities
	TotalPrice decimal.Decimal `json:"total_price"`
	ItemCount  int             `json:"item_count"` // distinct lines
}

// StockIssue reports a cart line whose quantity now exceeds stock.
type StockIssue struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Requested   int    `json:"requested"`
	Available   int    `json:"available"`
}

// MergeReport records the outcome of a guest-to-user cart merge, line by
// line, instead of swallowing dropped lines.
type MergeReport struct {
	Merged  []MergedLine  `json:"merged"`
	Dropped []DroppedLine `json:"dropped"`
}

// MergedLine is a guest line that made it into the user's cart.
type MergedLine struct {
	ProductID uint  `json:"product_id"`
	SizeID    *uint `json:"size_id,omitempty"`
	Quantity  int   `json:"quantity"` // resulting quantity in the user cart
}

// DroppedLine is a guest line the merge discarded.
type DroppedLine struct {
	ProductID uint   `json:"product_id"`
	SizeID    *uint  `json:"size_id,omitempty"`
	Quantity  int    `json:"quantity"` // guest quantity that was dropped
	Reason    string `json:"reason"`
}

// ResolveCart returns the cart owned by the given identity, creating it if
// absent. There is exactly one cart per user and one per session key.
func (s *CartService) ResolveCart(identity Identity) (*models.Cart, error) {
	var cart models.Cart
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return resolveCartTx(tx, identity, &cart)
	})
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func resolveCartTx(tx *gorm.DB, identity Identity, cart *models.Cart) error {
	if identity.IsUser() {
		return tx.Where(models.Cart{UserID: identity.UserID}).
			FirstOrCreate(cart).Error
	}
	return tx.Where(models.Cart{SessionKey: identity.SessionKey}).
		Where("user_id IS NULL").
		FirstOrCreate(cart).Error
}

// AddItem adds quantity units of a product (with optional size) to the
// identity's cart, incrementing an existing line for the same
// (product, size) pair. The combined quantity is validated against current
// stock under a product row lock.
func (s *CartService) AddItem(identity Identity, productID uint, quantity int, sizeID *uint) (*models.CartItem, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var result models.CartItem
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		if err := resolveCartTx(tx, identity, &cart); err != nil {
			return err
		}

		product, err := lockProduct(tx, productID)
		if err != nil {
			return err
		}
		normalized, err := validateSize(product, sizeID)
		if err != nil {
			return err
		}

		var item models.CartItem
		err = sizeScope(lockForUpdate(tx).Where("cart_id = ? AND product_id = ?", cart.ID, productID), normalized).
			First(&item).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if quantity > product.Stock {
				return stockErr(product, quantity)
			}
			item = models.CartItem{
				CartID:    cart.ID,
				ProductID: productID,
				SizeID:    normalized,
				Quantity:  quantity,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			newQuantity := item.Quantity + quantity
			if newQuantity > product.Stock {
				return stockErr(product, newQuantity)
			}
			item.Quantity = newQuantity
			if err := tx.Save(&item).Error; err != nil {
				return err
			}
		}

		return tx.Preload("Product").Preload("Size").First(&result, item.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// SetQuantity sets the absolute quantity of an existing line. A quantity of
// zero or less deletes the line; deleting an absent line is a no-op, not an
// error. Both cases return a nil item.
func (s *CartService) SetQuantity(identity Identity, productID uint, quantity int, sizeID *uint) (*models.CartItem, error) {
	var result *models.CartItem
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		if err := resolveCartTx(tx, identity, &cart); err != nil {
			return err
		}

		product, err := lockProduct(tx, productID)
		if err != nil {
			return err
		}
		normalized, err := validateSize(product, sizeID)
		if err != nil {
			return err
		}

		var item models.CartItem
		err = sizeScope(lockForUpdate(tx).Where("cart_id = ? AND product_id = ?", cart.ID, productID), normalized).
			First(&item).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil // absent line: nothing to update or delete
		}
		if err != nil {
			return err
		}

		if quantity <= 0 {
			return tx.Delete(&item).Error
		}
		if quantity > product.Stock {
			return stockErr(product, quantity)
		}
		item.Quantity = quantity
		if err := tx.Save(&item).Error; err != nil {
			return err
		}

		var loaded models.CartItem
		if err := tx.Preload("Product").Preload("Size").First(&loaded, item.ID).Error; err != nil {
			return err
		}
		result = &loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RemoveItem deletes the line for (product, size) if present and reports
// whether a deletion occurred.
func (s *CartService) RemoveItem(identity Identity, productID uint, sizeID *uint) (bool, error) {
	removed := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		if err := resolveCartTx(tx, identity, &cart); err != nil {
			return err
		}
		res := sizeScope(tx.Where("cart_id = ? AND product_id = ?", cart.ID, productID), sizeID).
			Delete(&models.CartItem{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected > 0
		return nil
	})
	return removed, err
}

// Items returns the cart's lines with products and sizes loaded.
func (s *CartService) Items(identity Identity) ([]models.CartItem, error) {
	cart, err := s.ResolveCart(identity)
	if err != nil {
		return nil, err
	}
	var items []models.CartItem
	err = s.db.Preload("Product").Preload("Size").
		Where("cart_id = ?", cart.ID).
		Order("id").
		Find(&items).Error
	return items, err
}

// Totals computes the cart's quantity sum, price sum and distinct line
// count live from current lines. Nothing is cached, so a stock or price
// change is reflected immediately.
func (s *CartService) Totals(identity Identity) (CartTotals, error) {
	items, err := s.Items(identity)
	if err != nil {
		return CartTotals{}, err
	}
	return totalsOf(items), nil
}

func totalsOf(items []models.CartItem) CartTotals {
	totals := CartTotals{TotalPrice: decimal.Zero, ItemCount: len(items)}
	for _, item := range items {
		totals.TotalItems += item.Quantity
		line := item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		totals.TotalPrice = totals.TotalPrice.Add(line)
	}
	return totals
}

// Clear deletes every line from the identity's cart.
func (s *CartService) Clear(identity Identity) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		if err := resolveCartTx(tx, identity, &cart); err != nil {
			return err
		}
		return tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error
	})
}

// ValidateStock reports every line whose quantity exceeds the product's
// current stock. Read-only; no locks are taken.
func (s *CartService) ValidateStock(identity Identity) ([]StockIssue, error) {
	items, err := s.Items(identity)
	if err != nil {
		return nil, err
	}
	var issues []StockIssue
	for _, item := range items {
		if item.Quantity > item.Product.Stock {
			issues = append(issues, StockIssue{
				ProductID:   item.ProductID,
				ProductName: item.Product.Name,
				Requested:   item.Quantity,
				Available:   item.Product.Stock,
			})
		}
	}
	return issues, nil
}

// Merge folds the guest cart identified by sessionKey into the user's
// cart. A guest line whose combined quantity would exceed stock is dropped
// (the user's original quantity wins); the report says which lines merged
// and which were dropped. The guest cart is deleted unconditionally, even
// when some lines were dropped.
func (s *CartService) Merge(sessionKey string, userID uint) (*MergeReport, error) {
	report := &MergeReport{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var guestCart models.Cart
		err := lockForUpdate(tx).
			Where("session_key = ? AND user_id IS NULL", sessionKey).
			First(&guestCart).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			var userCart models.Cart
			return resolveCartTx(tx, UserIdentity(userID), &userCart)
		}
		if err != nil {
			return err
		}

		var userCart models.Cart
		if err := resolveCartTx(tx, UserIdentity(userID), &userCart); err != nil {
			return err
		}

		var guestItems []models.CartItem
		if err := lockForUpdate(tx).Preload("Product").
			Where("cart_id = ?", guestCart.ID).
			Order("id").
			Find(&guestItems).Error; err != nil {
			return err
		}

		for _, guestItem := range guestItems {
			product, err := lockProduct(tx, guestItem.ProductID)
			if err != nil {
				return err
			}

			var userItem models.CartItem
			err = sizeScope(lockForUpdate(tx).Where("cart_id = ? AND product_id = ?", userCart.ID, guestItem.ProductID), guestItem.SizeID).
				First(&userItem).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				if guestItem.Quantity > product.Stock {
					report.Dropped = append(report.Dropped, droppedFor(guestItem))
					continue
				}
				newItem := models.CartItem{
					CartID:    userCart.ID,
					ProductID: guestItem.ProductID,
					SizeID:    guestItem.SizeID,
					Quantity:  guestItem.Quantity,
				}
				if err := tx.Create(&newItem).Error; err != nil {
					return err
				}
				report.Merged = append(report.Merged, MergedLine{
					ProductID: guestItem.ProductID,
					SizeID:    guestItem.SizeID,
					Quantity:  newItem.Quantity,
				})
			case err != nil:
				return err
			default:
				newQuantity := userItem.Quantity + guestItem.Quantity
				if newQuantity > product.Stock {
					// Insufficient stock: keep the user's original quantity.
					report.Dropped = append(report.Dropped, droppedFor(guestItem))
					continue
				}
				userItem.Quantity = newQuantity
				if err := tx.Save(&userItem).Error; err != nil {
					return err
				}
				report.Merged = append(report.Merged, MergedLine{
					ProductID: guestItem.ProductID,
					SizeID:    guestItem.SizeID,
					Quantity:  newQuantity,
				})
			}
		}

		// The guest cart goes away regardless of how the merge went.
		if err := tx.Where("cart_id = ?", guestCart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&guestCart).Error
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func droppedFor(item models.CartItem) DroppedLine {
	return DroppedLine{
		ProductID: item.ProductID,
		SizeID:    item.SizeID,
		Quantity:  item.Quantity,
		Reason:    "insufficient stock",
	}
}

// lockProduct loads a product (with its size set) under a row lock.
func lockProduct(tx *gorm.DB, productID uint) (*models.Product, error) {
	var product models.Product
	err := lockForUpdate(tx).Preload("Sizes").First(&product, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("product %d: %w", productID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// validateSize checks an optional size against the product's size set and
// returns the normalized size ID. Sizes handed to a product without a size
// set are ignored.
func validateSize(product *models.Product, sizeID *uint) (*uint, error) {
	if !product.HasSizes() {
		return nil, nil
	}
	if !product.AllowsSize(sizeID) {
		return nil, fmt.Errorf("product %q: %w", product.Name, ErrInvalidSize)
	}
	return sizeID, nil
}

func stockErr(product *models.Product, requested int) error {
	return fmt.Errorf("%w: available %d, requested %d", ErrOutOfStock, product.Stock, requested)
}
