package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/arushi-crafts/storefront-api/config"
	"github.com/arushi-crafts/storefront-api/services"
)

// GetWallet handles GET /api/v1/wallet
func GetWallet(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	wallets := services.NewWalletService(config.GetDB())
	wallet, err := wallets.GetOrCreate(user.ID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    wallet,
	})
}

// ListWalletTransactions handles GET /api/v1/wallet/transactions - the
// ledger, newest first.
func ListWalletTransactions(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	wallets := services.NewWalletService(config.GetDB())
	transactions, err := wallets.Transactions(user.ID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    transactions,
	})
}

// TopUpRequest is the request body for adding money to the wallet.
type TopUpRequest struct {
	Amount      string `json:"amount" binding:"required"` // decimal string
	Description string `json:"description"`
}

// TopUpWallet handles POST /api/v1/wallet/top-up
func TopUpWallet(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid amount")
		return
	}

	description := req.Description
	if description == "" {
		description = "Wallet top-up"
	}

	wallets := services.NewWalletService(config.GetDB())
	wallet, err := wallets.AddMoney(user.ID, amount, description)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    wallet,
	})
}
