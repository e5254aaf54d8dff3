package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/arushi-crafts/storefront-api/config"
	"github.com/arushi-crafts/storefront-api/models"
)

// ListProducts handles GET /api/v1/products with optional category and
// customizable filters.
func ListProducts(c *gin.Context) {
	db := config.GetDB()

	query := db.Preload("Category").Preload("Sizes").Order("id")
	if categoryID := c.Query("category_id"); categoryID != "" {
		id, err := strconv.ParseUint(categoryID, 10, 64)
		if err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid category_id")
			return
		}
		query = query.Where("category_id = ?", id)
	}
	if c.Query("customizable") == "true" {
		query = query.Where("can_customize = ?", true)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    products,
	})
}

// GetProduct handles GET /api/v1/products/:id
func GetProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid product ID")
		return
	}

	db := config.GetDB()
	var product models.Product
	if err := db.Preload("Category").Preload("Sizes").First(&product, id).Error; err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Product not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    product,
	})
}

// ListUPIMethods handles GET /api/v1/upi-methods - the active UPI apps
// shown at checkout, in display order.
func ListUPIMethods(c *gin.Context) {
	db := config.GetDB()
	var methods []models.UPIPaymentMethod
	if err := db.Where("is_active = ?", true).
		Order("display_order, name").
		Find(&methods).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load UPI methods")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    methods,
	})
}
