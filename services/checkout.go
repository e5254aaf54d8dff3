package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/arushi-crafts/storefront-api/models"
)

// CheckoutService turns the combined cart (true lines plus accepted
// personalization lines) into an order in one atomic operation. Any
// validation failure rolls the whole placement back.
type CheckoutService struct {
	db           *gorm.DB
	codSurcharge decimal.Decimal
}

// NewCheckoutService creates a checkout service. codSurcharge is the flat
// fee added when the buyer selects cash on delivery.
func NewCheckoutService(db *gorm.DB, codSurcharge decimal.Decimal) *CheckoutService {
	return &CheckoutService{db: db, codSurcharge: codSurcharge}
}

// PlaceOrderInput carries the buyer's address, chosen payment method and
// requested wallet contribution.
type PlaceOrderInput struct {
	FullName     string
	AddressLine1 string
	AddressLine2 *string
	City         string
	State        string
	PostalCode   string
	Phone        string

	PaymentMethod string // cod or upi
	UPIProvider   *string
	WalletAmount  decimal.Decimal
}

func validPaymentMethod(method string) bool {
	switch method {
	case models.PaymentCOD, models.PaymentUPI, models.PaymentWallet:
		return true
	}
	return false
}

// PlaceOrder places an order from the identity's combined cart lines. In a
// single transaction it revalidates stock per line under product row locks,
// applies the COD surcharge, validates and debits the wallet contribution,
// freezes order items, decrements stock, clears the consumed cart lines and
// links the buyer's default address.
//
// The surcharge stays in the total even when the wallet ends up covering
// the entire order; the buyer selected COD, so the fee was quoted.
func (s *CheckoutService) PlaceOrder(identity Identity, in PlaceOrderInput) (*models.Order, error) {
	if !validPaymentMethod(in.PaymentMethod) {
		return nil, fmt.Errorf("payment method %q: %w", in.PaymentMethod, ErrNotFound)
	}
	if in.WalletAmount.IsNegative() {
		return nil, ErrInvalidWalletAmount
	}
	if in.WalletAmount.IsPositive() && !identity.IsUser() {
		return nil, ErrWalletRequiresUser
	}

	var orderID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		lines, err := collectLines(tx, identity)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		// Validate stock per line under lock and decrement as we go; a
		// later failure rolls everything back.
		total := decimal.Zero
		for _, line := range lines {
			product, err := lockProduct(tx, line.ProductID)
			if err != nil {
				return err
			}
			if line.Quantity > product.Stock {
				return stockErr(product, line.Quantity)
			}
			product.Stock -= line.Quantity
			if err := tx.Model(&models.Product{}).
				Where("id = ?", product.ID).
				Update("stock", product.Stock).Error; err != nil {
				return err
			}
			total = total.Add(line.Total())
		}

		if in.PaymentMethod == models.PaymentCOD {
			total = total.Add(s.codSurcharge)
		}

		if in.WalletAmount.GreaterThan(total) {
			return fmt.Errorf("%w: requested %s exceeds order total %s",
				ErrInvalidWalletAmount, in.WalletAmount, total)
		}

		// Derive the final payment method from the wallet contribution.
		finalMethod := in.PaymentMethod
		switch {
		case in.WalletAmount.Equal(total) && total.IsPositive():
			finalMethod = models.PaymentWallet
		case in.WalletAmount.IsPositive():
			finalMethod = models.PaymentWalletPartial
		}

		remaining := total.Sub(in.WalletAmount)

		// UPI orders with an outstanding amount wait for manual payment
		// approval; everything else starts processing.
		status := models.OrderProcessing
		if in.PaymentMethod == models.PaymentUPI && remaining.IsPositive() {
			status = models.OrderPending
		}

		order := models.Order{
			UserID:           identity.UserID,
			SessionKey:       identity.SessionKey,
			FullName:         in.FullName,
			AddressLine1:     in.AddressLine1,
			AddressLine2:     in.AddressLine2,
			City:             in.City,
			State:            in.State,
			PostalCode:       in.PostalCode,
			Phone:            in.Phone,
			PaymentMethod:    finalMethod,
			UPIProvider:      in.UPIProvider,
			TotalAmount:      total,
			WalletAmountUsed: in.WalletAmount,
			RemainingAmount:  remaining,
			Status:           status,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for _, line := range lines {
			productID := line.ProductID
			item := models.OrderItem{
				OrderID:     order.ID,
				ProductID:   &productID,
				ProductName: line.ProductName,
				UnitPrice:   line.UnitPrice,
				Quantity:    line.Quantity,
				LineTotal:   line.Total(),
				SizeID:      line.SizeID,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		}

		if in.WalletAmount.IsPositive() {
			if _, err := debitWalletTx(tx, *identity.UserID, in.WalletAmount,
				fmt.Sprintf("Payment for Order #%d", order.ID)); err != nil {
				return err
			}
		}

		if err := consumeLines(tx, identity, lines); err != nil {
			return err
		}

		if identity.IsUser() {
			if err := upsertDefaultAddress(tx, *identity.UserID, in); err != nil {
				return err
			}
		}

		orderID = order.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	var order models.Order
	if err := s.db.Preload("Items").Preload("Items.Size").First(&order, orderID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// consumeLines clears the purchased lines: true cart items are deleted,
// personalization quantities are zeroed. The requests themselves are kept
// as history.
func consumeLines(tx *gorm.DB, identity Identity, lines []Line) error {
	var cart models.Cart
	if err := resolveCartTx(tx, identity, &cart); err != nil {
		return err
	}
	if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	for _, line := range lines {
		if line.Source != LineSourcePersonalization {
			continue
		}
		if err := tx.Model(&models.PersonalizationRequest{}).
			Where("id = ?", *line.PersonalizationID).
			Update("cart_quantity", 0).Error; err != nil {
			return err
		}
	}
	return nil
}

// upsertDefaultAddress stores the checkout address as the user's default,
// updating the existing default in place when one exists.
func upsertDefaultAddress(tx *gorm.DB, userID uint, in PlaceOrderInput) error {
	address := models.UserAddress{
		UserID:       userID,
		FullName:     in.FullName,
		AddressLine1: in.AddressLine1,
		AddressLine2: in.AddressLine2,
		City:         in.City,
		State:        in.State,
		PostalCode:   in.PostalCode,
		Phone:        in.Phone,
		IsDefault:    true,
	}

	var existing models.UserAddress
	err := tx.Where("user_id = ? AND is_default = ?", userID, true).First(&existing).Error
	if err == nil {
		address.ID = existing.ID
		address.CreatedAt = existing.CreatedAt
		return tx.Save(&address).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return tx.Create(&address).Error
}
