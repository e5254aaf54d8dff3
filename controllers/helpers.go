package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/arushi-crafts/storefront-api/config"
	"github.com/arushi-crafts/storefront-api/middleware"
	"github.com/arushi-crafts/storefront-api/models"
	"github.com/arushi-crafts/storefront-api/services"
)

// respondError writes the standard error envelope.
func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondDomainError maps a service error to a response code. Unknown
// errors are logged and reported generically.
func respondDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		respondError(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, services.ErrInvalidQuantity):
		respondError(c, http.StatusBadRequest, "INVALID_QUANTITY", err.Error())
	case errors.Is(err, services.ErrInvalidSize):
		respondError(c, http.StatusBadRequest, "INVALID_SIZE", err.Error())
	case errors.Is(err, services.ErrOutOfStock):
		respondError(c, http.StatusConflict, "OUT_OF_STOCK", err.Error())
	case errors.Is(err, services.ErrInsufficientBalance):
		respondError(c, http.StatusConflict, "INSUFFICIENT_WALLET_BALANCE", err.Error())
	case errors.Is(err, services.ErrInvalidWalletAmount):
		respondError(c, http.StatusBadRequest, "INVALID_WALLET_AMOUNT", err.Error())
	case errors.Is(err, services.ErrWalletRequiresUser):
		respondError(c, http.StatusForbidden, "WALLET_REQUIRES_USER", err.Error())
	case errors.Is(err, services.ErrAlreadyReturned):
		respondError(c, http.StatusConflict, "ALREADY_RETURNED", err.Error())
	case errors.Is(err, services.ErrInvalidTransition):
		respondError(c, http.StatusConflict, "INVALID_STATE_TRANSITION", err.Error())
	case errors.Is(err, services.ErrEmptyCart):
		respondError(c, http.StatusBadRequest, "EMPTY_CART", err.Error())
	case errors.Is(err, services.ErrNotCustomizable):
		respondError(c, http.StatusBadRequest, "NOT_CUSTOMIZABLE", err.Error())
	case errors.Is(err, services.ErrFinalImageRequired):
		respondError(c, http.StatusBadRequest, "FINAL_IMAGE_REQUIRED", err.Error())
	case errors.Is(err, services.ErrGuestOrder):
		respondError(c, http.StatusForbidden, "GUEST_ORDER", err.Error())
	case errors.Is(err, services.ErrReturnExists):
		respondError(c, http.StatusConflict, "RETURN_EXISTS", err.Error())
	default:
		log.Printf("unexpected error: %v", err)
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
	}
}

// currentUser loads the user row for the authenticated request, or nil when
// the request is a guest session.
func currentUser(c *gin.Context) (*models.User, error) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		return nil, nil // guest
	}

	db := config.GetDB()
	var user models.User
	if err := db.Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// resolveIdentity determines whose cart the request operates on: the
// authenticated user's, or the guest session's.
func resolveIdentity(c *gin.Context) (services.Identity, bool) {
	user, err := currentUser(c)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load user")
		return services.Identity{}, false
	}
	if user != nil {
		return services.UserIdentity(user.ID), true
	}

	sessionKey, ok := middleware.GetSessionKey(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "No user or guest session found")
		return services.Identity{}, false
	}
	return services.GuestIdentity(sessionKey), true
}

// requireUser loads the authenticated user or writes an error response.
// Endpoints for registered users only (wallet, orders, personalization).
func requireUser(c *gin.Context) (*models.User, bool) {
	user, err := currentUser(c)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load user")
		return nil, false
	}
	if user == nil {
		respondError(c, http.StatusNotFound, "USER_NOT_FOUND",
			"User profile not found. Please create a profile first.")
		return nil, false
	}
	return user, true
}

// requireAdmin loads the authenticated user and checks the admin role.
func requireAdmin(c *gin.Context) (*models.User, bool) {
	user, ok := requireUser(c)
	if !ok {
		return nil, false
	}
	if user.Role != "admin" {
		respondError(c, http.StatusForbidden, "FORBIDDEN", "Admin access required")
		return nil, false
	}
	return user, true
}
