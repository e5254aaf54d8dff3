package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arushi-crafts/storefront-api/config"
	"github.com/arushi-crafts/storefront-api/models"
)

// ListAddresses handles GET /api/v1/addresses - the user's saved
// addresses, default first.
func ListAddresses(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var addresses []models.UserAddress
	err := config.GetDB().
		Where("user_id = ?", user.ID).
		Order("is_default DESC, id DESC").
		Find(&addresses).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load addresses")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    addresses,
	})
}

// CreateAddressRequest is the request body for saving an address.
type CreateAddressRequest struct {
	FullName     string  `json:"full_name" binding:"required"`
	AddressLine1 string  `json:"address_line1" binding:"required"`
	AddressLine2 *string `json:"address_line2"`
	City         string  `json:"city" binding:"required"`
	State        string  `json:"state" binding:"required"`
	PostalCode   string  `json:"postal_code" binding:"required"`
	Phone        string  `json:"phone" binding:"required"`
	IsDefault    bool    `json:"is_default"`
}

// CreateAddress handles POST /api/v1/addresses. Saving a default address
// clears the previous default; only one default exists per user.
func CreateAddress(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req CreateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return
	}

	db := config.GetDB()
	address := models.UserAddress{
		UserID:       user.ID,
		FullName:     req.FullName,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		State:        req.State,
		PostalCode:   req.PostalCode,
		Phone:        req.Phone,
		IsDefault:    req.IsDefault,
	}

	if req.IsDefault {
		if err := db.Model(&models.UserAddress{}).
			Where("user_id = ? AND is_default = ?", user.ID, true).
			Update("is_default", false).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update default address")
			return
		}
	}

	if err := db.Create(&address).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to save address")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    address,
	})
}
