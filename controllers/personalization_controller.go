package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/arushi-crafts/storefront-api/config"
	"github.com/arushi-crafts/storefront-api/services"
)

func personalizationService() *services.PersonalizationService {
	return services.NewPersonalizationService(config.GetDB(), services.GetImageService())
}

// SubmitPersonalization handles POST /api/v1/personalizations - multipart
// form with product_id, optional size_id and the design image.
func SubmitPersonalization(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	productID, err := strconv.ParseUint(c.PostForm("product_id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid product_id")
		return
	}

	var sizeID *uint
	if raw := c.PostForm("size_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid size_id")
			return
		}
		id := uint(parsed)
		sizeID = &id
	}

	design, err := c.FormFile("design")
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Design image is required")
		return
	}

	request, err := personalizationService().Submit(user.ID, uint(productID), sizeID, design)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    request,
	})
}

// ListPersonalizations handles GET /api/v1/personalizations - the user's
// own requests, newest first.
func ListPersonalizations(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	requests, err := personalizationService().ListForUser(user.ID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    requests,
	})
}

// AcceptPersonalization handles POST /api/v1/personalizations/:id/accept -
// the user approving the admin's final image, which puts the request in
// the cart with quantity one.
func AcceptPersonalization(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	requestID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request ID")
		return
	}

	request, err := personalizationService().Accept(user.ID, uint(requestID))
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    request,
	})
}

// PersonalizationQuantityRequest is the request body for changing a
// request's in-cart quantity.
type PersonalizationQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// SetPersonalizationQuantity handles PUT /api/v1/personalizations/:id/quantity
func SetPersonalizationQuantity(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	requestID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request ID")
		return
	}

	var req PersonalizationQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return
	}

	request, err := personalizationService().SetCartQuantity(user.ID, uint(requestID), *req.Quantity)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    request,
	})
}

// ApprovePersonalization handles POST /api/v1/admin/personalizations/:id/approve -
// multipart form with the mandatory final image and optional notes.
func ApprovePersonalization(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}

	requestID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request ID")
		return
	}

	finalImage, err := c.FormFile("final_image")
	if err != nil {
		respondError(c, http.StatusBadRequest, "FINAL_IMAGE_REQUIRED", "Final image is required")
		return
	}
	notes := c.PostForm("notes")

	request, err := personalizationService().AdminApprove(uint(requestID), finalImage, notes)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    request,
	})
}

// PersonalizationNotesRequest is the request body for rejection notes.
type PersonalizationNotesRequest struct {
	Notes string `json:"notes"`
}

// RejectPersonalization handles POST /api/v1/admin/personalizations/:id/reject
func RejectPersonalization(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}

	requestID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request ID")
		return
	}

	var req PersonalizationNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return
	}

	request, err := personalizationService().AdminReject(uint(requestID), req.Notes)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    request,
	})
}
