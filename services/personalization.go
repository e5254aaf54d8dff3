package services

import (
	"errors"
	"fmt"
	"mime/multipart"

	"gorm.io/gorm"

	"github.com/arushi-crafts/storefront-api/models"
)

// PersonalizationService runs the custom-design workflow: a user submits a
// design for a customizable product, an admin attaches a final image, the
// user accepts it, and the accepted request behaves as a cart line until
// checkout consumes it.
type PersonalizationService struct {
	db     *gorm.DB
	images ImageService
}

// NewPersonalizationService creates a personalization service.
func NewPersonalizationService(db *gorm.DB, images ImageService) *PersonalizationService {
	return &PersonalizationService{db: db, images: images}
}

// Submit uploads the design image and creates a pending request. The
// product must allow personalization.
func (s *PersonalizationService) Submit(userID, productID uint, sizeID *uint, design *multipart.FileHeader) (*models.PersonalizationRequest, error) {
	var product models.Product
	if err := s.db.Preload("Sizes").First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %d: %w", productID, ErrNotFound)
		}
		return nil, err
	}
	if !product.CanCustomize {
		return nil, fmt.Errorf("product %q: %w", product.Name, ErrNotCustomizable)
	}
	normalized, err := validateSize(&product, sizeID)
	if err != nil {
		return nil, err
	}

	designKey, err := s.images.UploadImage(design)
	if err != nil {
		return nil, err
	}

	request := models.PersonalizationRequest{
		UserID:      userID,
		ProductID:   productID,
		SizeID:      normalized,
		DesignS3Key: designKey,
		Status:      models.PersonalizationPending,
	}
	if err := s.db.Create(&request).Error; err != nil {
		return nil, err
	}
	return s.load(request.ID)
}

// ListForUser returns the user's requests, newest first, with presigned
// image URLs attached.
func (s *PersonalizationService) ListForUser(userID uint) ([]models.PersonalizationRequest, error) {
	var requests []models.PersonalizationRequest
	err := s.db.Preload("Product").Preload("Size").
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	for i := range requests {
		s.attachURLs(&requests[i])
	}
	return requests, nil
}

// AdminApprove attaches the final image and notes and moves the request to
// admin_approved. The final image is mandatory.
func (s *PersonalizationService) AdminApprove(requestID uint, finalImage *multipart.FileHeader, notes string) (*models.PersonalizationRequest, error) {
	if finalImage == nil {
		return nil, ErrFinalImageRequired
	}

	finalKey, err := s.images.UploadImage(finalImage)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var request models.PersonalizationRequest
		if err := lockRequest(tx, requestID, &request); err != nil {
			return err
		}
		if !request.Status.CanTransitionTo(models.PersonalizationAdminApproved) {
			return transitionErr(string(request.Status), string(models.PersonalizationAdminApproved))
		}
		request.Status = models.PersonalizationAdminApproved
		request.FinalImageS3Key = &finalKey
		if notes != "" {
			request.AdminNotes = &notes
		}
		return tx.Save(&request).Error
	})
	if err != nil {
		return nil, err
	}
	return s.load(requestID)
}

// AdminReject moves a pending or admin_approved request to rejected.
// Rejection is terminal.
func (s *PersonalizationService) AdminReject(requestID uint, notes string) (*models.PersonalizationRequest, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var request models.PersonalizationRequest
		if err := lockRequest(tx, requestID, &request); err != nil {
			return err
		}
		if !request.Status.CanTransitionTo(models.PersonalizationRejected) {
			return transitionErr(string(request.Status), string(models.PersonalizationRejected))
		}
		request.Status = models.PersonalizationRejected
		request.CartQuantity = 0
		if notes != "" {
			request.AdminNotes = &notes
		}
		return tx.Save(&request).Error
	})
	if err != nil {
		return nil, err
	}
	return s.load(requestID)
}

// Accept is the user approving the admin's final image. The request moves
// to order_accepted with a cart quantity of one, which puts it in the cart.
func (s *PersonalizationService) Accept(userID, requestID uint) (*models.PersonalizationRequest, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var request models.PersonalizationRequest
		if err := lockRequest(tx, requestID, &request); err != nil {
			return err
		}
		if request.UserID != userID {
			return fmt.Errorf("personalization request %d: %w", requestID, ErrNotFound)
		}
		if !request.Status.CanTransitionTo(models.PersonalizationOrderAccepted) {
			return transitionErr(string(request.Status), string(models.PersonalizationOrderAccepted))
		}
		if request.FinalImageS3Key == nil {
			return ErrFinalImageRequired
		}
		request.Status = models.PersonalizationOrderAccepted
		request.CartQuantity = 1
		return tx.Save(&request).Error
	})
	if err != nil {
		return nil, err
	}
	return s.load(requestID)
}

// SetCartQuantity changes the in-cart quantity of an order_accepted
// request. Zero removes it from cart totals but keeps the record so it can
// be re-added later. Positive quantities are validated against current
// stock under a product row lock.
func (s *PersonalizationService) SetCartQuantity(userID, requestID uint, quantity int) (*models.PersonalizationRequest, error) {
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var request models.PersonalizationRequest
		if err := lockRequest(tx, requestID, &request); err != nil {
			return err
		}
		if request.UserID != userID {
			return fmt.Errorf("personalization request %d: %w", requestID, ErrNotFound)
		}
		if request.Status != models.PersonalizationOrderAccepted {
			return fmt.Errorf("%w: request is %s, not %s",
				ErrInvalidTransition, request.Status, models.PersonalizationOrderAccepted)
		}
		if quantity > 0 {
			product, err := lockProduct(tx, request.ProductID)
			if err != nil {
				return err
			}
			if quantity > product.Stock {
				return stockErr(product, quantity)
			}
		}
		request.CartQuantity = quantity
		return tx.Save(&request).Error
	})
	if err != nil {
		return nil, err
	}
	return s.load(requestID)
}

func (s *PersonalizationService) load(requestID uint) (*models.PersonalizationRequest, error) {
	var request models.PersonalizationRequest
	err := s.db.Preload("Product").Preload("Size").First(&request, requestID).Error
	if err != nil {
		return nil, err
	}
	s.attachURLs(&request)
	return &request, nil
}

func (s *PersonalizationService) attachURLs(request *models.PersonalizationRequest) {
	if s.images == nil {
		return
	}
	if url, err := s.images.GetImageURL(request.DesignS3Key); err == nil {
		request.DesignURL = url
	}
	if request.FinalImageS3Key != nil {
		if url, err := s.images.GetImageURL(*request.FinalImageS3Key); err == nil {
			request.FinalImageURL = url
		}
	}
}

func lockRequest(tx *gorm.DB, requestID uint, request *models.PersonalizationRequest) error {
	err := lockForUpdate(tx).First(request, requestID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("personalization request %d: %w", requestID, ErrNotFound)
	}
	return err
}

func transitionErr(from, to string) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
