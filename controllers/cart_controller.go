package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arushi-crafts/storefront-api/config"
	"github.com/arushi-crafts/storefront-api/services"
)

// CartItemRequest is the request body for adding or updating a cart line.
type CartItemRequest struct {
	ProductID uint  `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity"`
	SizeID    *uint `json:"size_id"`
}

// CartLineRequest identifies a cart line without a quantity.
type CartLineRequest struct {
	ProductID uint  `json:"product_id" binding:"required"`
	SizeID    *uint `json:"size_id"`
}

// GetCart handles GET /api/v1/cart - the combined cart view: true lines,
// personalization lines and live totals.
func GetCart(c *gin.Context) {
	identity, ok := resolveIdentity(c)
	if !ok {
		return
	}

	carts := services.NewCartService(config.GetDB())
	lines, err := carts.Lines(identity)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	totals, err := carts.CombinedTotals(identity)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"items":      lines,
		"cart_total": totals,
	})
}

// AddCartItem handles POST /api/v1/cart/items
func AddCartItem(c *gin.Context) {
	identity, ok := resolveIdentity(c)
	if !ok {
		return
	}

	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return
	}

	carts := services.NewCartService(config.GetDB())
	item, err := carts.AddItem(identity, req.ProductID, req.Quantity, req.SizeID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	totals, err := carts.CombinedTotals(identity)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"item":       item,
		"cart_total": totals,
	})
}

// UpdateCartItem handles PUT /api/v1/cart/items - sets an absolute
// quantity; zero removes the line.
func UpdateCartItem(c *gin.Context) {
	identity, ok := resolveIdentity(c)
	if !ok {
		return
	}

	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return
	}

	carts := services.NewCartService(config.GetDB())
	item, err := carts.SetQuantity(identity, req.ProductID, req.Quantity, req.SizeID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	totals, err := carts.CombinedTotals(identity)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	response := gin.H{
		"success":    true,
		"cart_total": totals,
	}
	if item == nil {
		response["item_removed"] = true
	} else {
		response["item"] = item
	}
	c.JSON(http.StatusOK, response)
}

// RemoveCartItem handles DELETE /api/v1/cart/items
func RemoveCartItem(c *gin.Context) {
	identity, ok := resolveIdentity(c)
	if !ok {
		return
	}

	var req CartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return
	}

	carts := services.NewCartService(config.GetDB())
	removed, err := carts.RemoveItem(identity, req.ProductID, req.SizeID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if !removed {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Item not found in cart")
		return
	}

	totals, err := carts.CombinedTotals(identity)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"cart_total": totals,
	})
}

// ClearCart handles DELETE /api/v1/cart
func ClearCart(c *gin.Context) {
	identity, ok := resolveIdentity(c)
	if !ok {
		return
	}

	carts := services.NewCartService(config.GetDB())
	if err := carts.Clear(identity); err != nil {
		respondDomainError(c, err)
		return
	}

	totals, err := carts.CombinedTotals(identity)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"cart_total": totals,
	})
}

// CartCount handles GET /api/v1/cart/count - the navbar badge number,
// combined across true cart and personalization lines.
func CartCount(c *gin.Context) {
	identity, ok := resolveIdentity(c)
	if !ok {
		return
	}

	carts := services.NewCartService(config.GetDB())
	totals, err := carts.CombinedTotals(identity)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   totals.TotalItems,
	})
}

// ValidateCartStock handles GET /api/v1/cart/validate-stock
func ValidateCartStock(c *gin.Context) {
	identity, ok := resolveIdentity(c)
	if !ok {
		return
	}

	carts := services.NewCartService(config.GetDB())
	issues, err := carts.ValidateStock(identity)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"has_issues":   len(issues) > 0,
		"stock_issues": issues,
	})
}

// MergeCartRequest carries the guest session to merge after login.
type MergeCartRequest struct {
	SessionKey string `json:"session_key" binding:"required"`
}

// MergeCart handles POST /api/v1/cart/merge - folds a guest cart into the
// authenticated user's cart and reports merged and dropped lines.
func MergeCart(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req MergeCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return
	}

	carts := services.NewCartService(config.GetDB())
	report, err := carts.Merge(req.SessionKey, user.ID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"report":  report,
	})
}
