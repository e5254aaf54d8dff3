package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/arushi-crafts/storefront-api/models"
)

// OrderService drives the order lifecycle after placement: shipping,
// delivery, cancellation, UPI payment approval and the return/refund flow.
// Status changes go through the transition tables on the models; an illegal
// move fails with ErrInvalidTransition instead of being silently ignored.
type OrderService struct {
	db *gorm.DB
}

// NewOrderService creates an order service backed by the given database.
func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db}
}

// Get loads an order with its items.
func (s *OrderService) Get(orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.db.Preload("Items").Preload("Items.Size").First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("order %d: %w", orderID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetForUser loads an order owned by the given user.
func (s *OrderService) GetForUser(userID, orderID uint) (*models.Order, error) {
	order, err := s.Get(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID == nil || *order.UserID != userID {
		return nil, fmt.Errorf("order %d: %w", orderID, ErrNotFound)
	}
	return order, nil
}

// ListForUser returns the user's orders, newest first.
func (s *OrderService) ListForUser(userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.Preload("Items").
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&orders).Error
	return orders, err
}

// ListAll returns every order, newest first, optionally filtered by
// status.
func (s *OrderService) ListAll(status string) ([]models.Order, error) {
	query := s.db.Preload("Items").Order("id DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var orders []models.Order
	err := query.Find(&orders).Error
	return orders, err
}

// MarkShipped moves a processing order to shipped, stamping shipped_at and
// recording an optional tracking number.
func (s *OrderService) MarkShipped(orderID uint, trackingNumber *string) (*models.Order, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := lockOrder(tx, orderID, &order); err != nil {
			return err
		}
		if !order.Status.CanTransitionTo(models.OrderShipped) {
			return transitionErr(string(order.Status), string(models.OrderShipped))
		}
		now := time.Now()
		order.Status = models.OrderShipped
		order.ShippedAt = &now
		if trackingNumber != nil {
			order.TrackingNumber = trackingNumber
		}
		return tx.Save(&order).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(orderID)
}

// MarkDelivered moves a shipped order to delivered and purges the buyer's
// cart lines for products that had an accepted personalization request.
// The purge is best-effort: a buyer with no cart is a no-op, not an error.
func (s *OrderService) MarkDelivered(orderID uint) (*models.Order, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := lockOrder(tx, orderID, &order); err != nil {
			return err
		}
		if !order.Status.CanTransitionTo(models.OrderDelivered) {
			return transitionErr(string(order.Status), string(models.OrderDelivered))
		}
		now := time.Now()
		order.Status = models.OrderDelivered
		order.DeliveredAt = &now
		if err := tx.Save(&order).Error; err != nil {
			return err
		}
		if order.UserID != nil {
			return cleanupPersonalizedCartItems(tx, &order)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(orderID)
}

// cleanupPersonalizedCartItems removes the buyer's true cart lines for
// products covered by an order_accepted personalization request on this
// order's products.
func cleanupPersonalizedCartItems(tx *gorm.DB, order *models.Order) error {
	var cart models.Cart
	err := tx.Where("user_id = ?", *order.UserID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil // no cart, nothing to clean up
	}
	if err != nil {
		return err
	}

	var productIDs []uint
	if err := tx.Model(&models.OrderItem{}).
		Where("order_id = ? AND product_id IS NOT NULL", order.ID).
		Pluck("product_id", &productIDs).Error; err != nil {
		return err
	}
	if len(productIDs) == 0 {
		return nil
	}

	var personalizedIDs []uint
	if err := tx.Model(&models.PersonalizationRequest{}).
		Where("user_id = ? AND product_id IN ? AND status = ?",
			*order.UserID, productIDs, models.PersonalizationOrderAccepted).
		Pluck("product_id", &personalizedIDs).Error; err != nil {
		return err
	}
	if len(personalizedIDs) == 0 {
		return nil
	}

	return tx.Where("cart_id = ? AND product_id IN ?", cart.ID, personalizedIDs).
		Delete(&models.CartItem{}).Error
}

// ApprovePayment moves a pending UPI order to processing after the admin
// has verified the payment.
func (s *OrderService) ApprovePayment(orderID uint) (*models.Order, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := lockOrder(tx, orderID, &order); err != nil {
			return err
		}
		if !order.Status.CanTransitionTo(models.OrderProcessing) {
			return transitionErr(string(order.Status), string(models.OrderProcessing))
		}
		order.Status = models.OrderProcessing
		return tx.Save(&order).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(orderID)
}

// Cancel cancels a pending or processing order and restores each item's
// units to product stock.
func (s *OrderService) Cancel(orderID uint) (*models.Order, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := lockOrder(tx, orderID, &order); err != nil {
			return err
		}
		if !order.Status.CanTransitionTo(models.OrderCancelled) {
			return transitionErr(string(order.Status), string(models.OrderCancelled))
		}
		order.Status = models.OrderCancelled
		if err := tx.Save(&order).Error; err != nil {
			return err
		}

		var items []models.OrderItem
		if err := tx.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
			return err
		}
		for _, item := range items {
			if item.ProductID == nil {
				continue
			}
			if err := tx.Model(&models.Product{}).
				Where("id = ?", *item.ProductID).
				Update("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(orderID)
}

// PromoteStaleOrders ships every processing order older than the cutoff.
// Driven by an external cron through the admin API; the service owns no
// scheduler. Returns the number of orders promoted.
func (s *OrderService) PromoteStaleOrders(olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)
	var ids []uint
	err := s.db.Model(&models.Order{}).
		Where("status = ? AND created_at < ?", models.OrderProcessing, cutoff).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, err
	}

	promoted := 0
	for _, id := range ids {
		if _, err := s.MarkShipped(id, nil); err != nil {
			// Raced with a concurrent transition; skip and keep going.
			if errors.Is(err, ErrInvalidTransition) {
				continue
			}
			return promoted, err
		}
		promoted++
	}
	return promoted, nil
}

// ProcessReturn marks an order returned and credits the full order total to
// the buyer's wallet in one transaction. Admin-direct path; buyer-initiated
// returns go through CreateReturnRequest/ApproveReturn.
func (s *OrderService) ProcessReturn(orderID uint, reason string) (*models.Order, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := lockOrder(tx, orderID, &order); err != nil {
			return err
		}
		return returnOrderTx(tx, &order, reason)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(orderID)
}

// returnOrderTx flags the order returned, stamps the timestamp and credits
// the refund. Shared by ProcessReturn and ApproveReturn.
func returnOrderTx(tx *gorm.DB, order *models.Order, reason string) error {
	if order.IsReturned {
		return ErrAlreadyReturned
	}
	if order.UserID == nil {
		return fmt.Errorf("cannot refund order %d: %w", order.ID, ErrGuestOrder)
	}

	now := time.Now()
	order.IsReturned = true
	order.ReturnReason = &reason
	order.ReturnedAt = &now
	if err := tx.Save(order).Error; err != nil {
		return err
	}

	_, err := creditWalletTx(tx, *order.UserID, order.TotalAmount,
		fmt.Sprintf("Refund for returned Order #%d", order.ID))
	return err
}

// CreateReturnRequest opens a return request for a delivered order. One
// request per order.
func (s *OrderService) CreateReturnRequest(userID, orderID uint, reason, description string) (*models.ReturnRequest, error) {
	if !models.ValidReturnReason(reason) {
		return nil, fmt.Errorf("return reason %q: %w", reason, ErrNotFound)
	}

	var requestID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := lockOrder(tx, orderID, &order); err != nil {
			return err
		}
		if order.UserID == nil || *order.UserID != userID {
			return fmt.Errorf("order %d: %w", orderID, ErrNotFound)
		}
		if order.IsReturned {
			return ErrAlreadyReturned
		}
		if order.Status != models.OrderDelivered {
			return fmt.Errorf("%w: only delivered orders can be returned (order is %s)",
				ErrInvalidTransition, order.Status)
		}

		var existing models.ReturnRequest
		err := tx.Where("order_id = ?", orderID).First(&existing).Error
		if err == nil {
			return ErrReturnExists
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		request := models.ReturnRequest{
			OrderID:     orderID,
			UserID:      userID,
			Reason:      reason,
			Description: description,
			Status:      models.ReturnPending,
		}
		if err := tx.Create(&request).Error; err != nil {
			return err
		}
		requestID = request.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetReturnRequest(requestID)
}

// GetReturnRequest loads a return request.
func (s *OrderService) GetReturnRequest(requestID uint) (*models.ReturnRequest, error) {
	var request models.ReturnRequest
	err := s.db.Preload("Order").First(&request, requestID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("return request %d: %w", requestID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// ListReturnRequests returns all return requests, newest first.
func (s *OrderService) ListReturnRequests() ([]models.ReturnRequest, error) {
	var requests []models.ReturnRequest
	err := s.db.Preload("Order").Order("id DESC").Find(&requests).Error
	return requests, err
}

// ApproveReturn approves a pending return request and completes the refund
// in the same transaction: the request walks pending -> approved ->
// completed, the order is flagged returned, and the full order total is
// credited to the buyer's wallet. No intermediate state is persisted on its
// own; approval is immediate and total.
func (s *OrderService) ApproveReturn(requestID uint, adminNotes string) (*models.ReturnRequest, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var request models.ReturnRequest
		err := lockForUpdate(tx).First(&request, requestID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("return request %d: %w", requestID, ErrNotFound)
		}
		if err != nil {
			return err
		}
		if !request.Status.CanTransitionTo(models.ReturnApproved) {
			return transitionErr(string(request.Status), string(models.ReturnApproved))
		}

		var order models.Order
		if err := lockOrder(tx, request.OrderID, &order); err != nil {
			return err
		}

		now := time.Now()
		request.Status = models.ReturnApproved
		request.ApprovedAt = &now
		request.AdminNotes = adminNotes
		request.RefundAmount = order.TotalAmount
		if err := tx.Save(&request).Error; err != nil {
			return err
		}

		if err := returnOrderTx(tx, &order, request.Reason); err != nil {
			return err
		}

		request.Status = models.ReturnCompleted
		request.CompletedAt = &now
		return tx.Save(&request).Error
	})
	if err != nil {
		return nil, err
	}
	return s.GetReturnRequest(requestID)
}

// RejectReturn rejects a pending return request.
func (s *OrderService) RejectReturn(requestID uint, adminNotes string) (*models.ReturnRequest, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var request models.ReturnRequest
		err := lockForUpdate(tx).First(&request, requestID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("return request %d: %w", requestID, ErrNotFound)
		}
		if err != nil {
			return err
		}
		if !request.Status.CanTransitionTo(models.ReturnRejected) {
			return transitionErr(string(request.Status), string(models.ReturnRejected))
		}
		request.Status = models.ReturnRejected
		request.AdminNotes = adminNotes
		return tx.Save(&request).Error
	})
	if err != nil {
		return nil, err
	}
	return s.GetReturnRequest(requestID)
}

func lockOrder(tx *gorm.DB, orderID uint, order *models.Order) error {
	err := lockForUpdate(tx).First(order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("order %d: %w", orderID, ErrNotFound)
	}
	return err
}
