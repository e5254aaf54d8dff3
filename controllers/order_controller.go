package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arushi-crafts/storefront-api/config"
	"github.com/arushi-crafts/storefront-api/services"
)

func orderService() *services.OrderService {
	return services.NewOrderService(config.GetDB())
}

func orderIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid order ID")
		return 0, false
	}
	return uint(id), true
}

// ListOrders handles GET /api/v1/orders - the authenticated user's orders.
func ListOrders(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	orders, err := orderService().ListForUser(user.ID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// GetOrder handles GET /api/v1/orders/:id
func GetOrder(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	order, err := orderService().GetForUser(user.ID, orderID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// ReturnRequestBody is the request body for opening a return request.
type ReturnRequestBody struct {
	Reason      string `json:"reason" binding:"required"`
	Description string `json:"description"`
}

// CreateReturnRequest handles POST /api/v1/orders/:id/return
func CreateReturnRequest(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req ReturnRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return
	}

	request, err := orderService().CreateReturnRequest(user.ID, orderID, req.Reason, req.Description)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    request,
	})
}

// ListAllOrders handles GET /api/v1/admin/orders - every order, newest
// first, optionally filtered by status.
func ListAllOrders(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}

	orders, err := orderService().ListAll(c.Query("status"))
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// ShipOrderRequest carries the optional tracking number.
type ShipOrderRequest struct {
	TrackingNumber *string `json:"tracking_number"`
}

// ShipOrder handles POST /api/v1/admin/orders/:id/ship
func ShipOrder(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req ShipOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return
	}

	order, err := orderService().MarkShipped(orderID, req.TrackingNumber)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// DeliverOrder handles POST /api/v1/admin/orders/:id/deliver
func DeliverOrder(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	order, err := orderService().MarkDelivered(orderID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// ApproveOrderPayment handles POST /api/v1/admin/orders/:id/approve-payment -
// moves a pending UPI order to processing.
func ApproveOrderPayment(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	order, err := orderService().ApprovePayment(orderID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// CancelOrder handles POST /api/v1/admin/orders/:id/cancel
func CancelOrder(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	order, err := orderService().Cancel(orderID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// PromoteShippedRequest overrides the default promotion age in hours.
type PromoteShippedRequest struct {
	OlderThanHours int `json:"older_than_hours"`
}

// PromoteShipped handles POST /api/v1/admin/orders/promote-shipped - ships
// every processing order older than the cutoff (default 24h). Driven by an
// external cron.
func PromoteShipped(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}

	req := PromoteShippedRequest{OlderThanHours: 24}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return
	}
	if req.OlderThanHours <= 0 {
		req.OlderThanHours = 24
	}

	promoted, err := orderService().PromoteStaleOrders(time.Duration(req.OlderThanHours) * time.Hour)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"promoted": promoted,
	})
}

// ListReturnRequests handles GET /api/v1/admin/return-requests
func ListReturnRequests(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}

	requests, err := orderService().ListReturnRequests()
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    requests,
	})
}

// ReturnDecisionRequest carries admin notes for a return decision.
type ReturnDecisionRequest struct {
	Notes string `json:"notes"`
}

// ApproveReturn handles POST /api/v1/admin/return-requests/:id/approve -
// approves and refunds in one step.
func ApproveReturn(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}

	requestID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request ID")
		return
	}

	var req ReturnDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return
	}

	request, err := orderService().ApproveReturn(uint(requestID), req.Notes)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    request,
	})
}

// RejectReturn handles POST /api/v1/admin/return-requests/:id/reject
func RejectReturn(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}

	requestID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request ID")
		return
	}

	var req ReturnDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
		return
	}

	request, err := orderService().RejectReturn(uint(requestID), req.Notes)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    request,
	})
}
