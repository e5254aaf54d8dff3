package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/arushi-crafts/storefront-api/config"
	"github.com/arushi-crafts/storefront-api/services"
)

// PlaceOrderRequest is the request body for placing an order.
type PlaceOrderRequest struct {
	FullName     string  `json:"full_name" binding:"required"`
	AddressLine1 string  `json:"address_line1" binding:"required"`
	AddressLine2 *string `json:"address_line2"`
	City         string  `json:"city" binding:"required"`
	State        string  `json:"state" binding:"required"`
	PostalCode   string  `json:"postal_code" binding:"required"`
	Phone        string  `json:"phone" binding:"required"`

	PaymentMethod string  `json:"payment_method" binding:"required"`
	UPIProvider   *string `json:"upi_provider"`
	WalletAmount  string  `json:"wallet_amount"` // decimal string, defaults to 0
}

// PlaceOrder handles POST /api/v1/checkout - the atomic order placement
// composing cart lines, personalization lines and the wallet.
func PlaceOrder(c *gin.Context) {
	identity, ok := resolveIdentity(c)
	if !ok {
		return
	}

	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return
	}

	walletAmount := decimal.Zero
	if req.WalletAmount != "" {
		parsed, err := decimal.NewFromString(req.WalletAmount)
		if err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid wallet_amount")
			return
		}
		walletAmount = parsed
	}

	cfg := config.GetConfig()
	checkout := services.NewCheckoutService(config.GetDB(), cfg.CODSurcharge)
	order, err := checkout.PlaceOrder(identity, services.PlaceOrderInput{
		FullName:      req.FullName,
		AddressLine1:  req.AddressLine1,
		AddressLine2:  req.AddressLine2,
		City:          req.City,
		State:         req.State,
		PostalCode:    req.PostalCode,
		Phone:         req.Phone,
		PaymentMethod: req.PaymentMethod,
		UPIProvider:   req.UPIProvider,
		WalletAmount:  walletAmount,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}
