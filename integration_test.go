package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/arushi-crafts/storefront-api/config"
	"github.com/arushi-crafts/storefront-api/models"
)

// setupIntegrationRouter wires the real route table against an in-memory
// database.
func setupIntegrationRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Size{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.PersonalizationRequest{},
		&models.UserAddress{},
		&models.Wallet{},
		&models.WalletTransaction{},
		&models.UPIPaymentMethod{},
		&models.Order{},
		&models.OrderItem{},
		&models.ReturnRequest{},
	); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	config.SetDB(db)

	cfg := &config.Config{
		GoEnv:            "test",
		Auth0Domain:      "test.example.com",
		Auth0Audience:    "https://test.example.com/api",
		CODSurcharge:     decimal.RequireFromString("50.00"),
		SessionKeyHeader: "X-Session-Key",
	}
	config.SetConfig(cfg)

	return setupRouter(cfg)
}

func TestHealthEndpointIntegration(t *testing.T) {
	router := setupIntegrationRouter(t)

	req, _ := http.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "Expected status 200 OK")

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err, "Response should be valid JSON")
	assert.Equal(t, true, response["success"])
	assert.Equal(t, "Storefront API is running", response["message"])
}

func TestHealthEndpointMethod(t *testing.T) {
	router := setupIntegrationRouter(t)

	for _, method := range []string{"POST", "PUT", "DELETE"} {
		req, _ := http.NewRequest(method, "/api/v1/health", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code, "%s should not be allowed", method)
	}
}

func TestAPIV1Prefix(t *testing.T) {
	router := setupIntegrationRouter(t)

	req, _ := http.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code, "Endpoint should require /api/v1 prefix")
}

// TestGuestShoppingFlow drives a complete anonymous purchase through the
// HTTP surface: browse, receive a session key, fill the cart and check out
// with cash on delivery.
func TestGuestShoppingFlow(t *testing.T) {
	router := setupIntegrationRouter(t)
	db := config.GetDB()

	product := models.Product{
		Name:  "Hoodie",
		Price: decimal.RequireFromString("999.00"),
		Stock: 5,
	}
	require.NoError(t, db.Create(&product).Error)

	// Browse the catalog, no session needed
	req, _ := http.NewRequest("GET", "/api/v1/products", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// First cart touch without a session key hands one out
	body, _ := json.Marshal(map[string]interface{}{"product_id": product.ID, "quantity": 2})
	req, _ = http.NewRequest("POST", "/api/v1/cart/items", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)
	sessionKey := w.Header().Get("X-Session-Key")
	require.NotEmpty(t, sessionKey, "guest should receive a session key")

	// The same key keeps addressing the same cart
	req, _ = http.NewRequest("GET", "/api/v1/cart/count", nil)
	req.Header.Set("X-Session-Key", sessionKey)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var countResponse map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &countResponse))
	assert.Equal(t, float64(2), countResponse["count"])

	// Check out with COD
	checkout, _ := json.Marshal(map[string]interface{}{
		"full_name":      "Asha Verma",
		"address_line1":  "12 MG Road",
		"city":           "Bengaluru",
		"state":          "Karnataka",
		"postal_code":    "560001",
		"phone":          "+919812345678",
		"payment_method": "cod",
	})
	req, _ = http.NewRequest("POST", "/api/v1/checkout", bytes.NewReader(checkout))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Session-Key", sessionKey)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var orderResponse map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orderResponse))
	data := orderResponse["data"].(map[string]interface{})
	assert.Equal(t, "2048", data["total_amount"], "1998 for the items plus the 50 surcharge")
	assert.Equal(t, "processing", data["status"])

	// Stock was reserved
	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, product.ID).Error)
	assert.Equal(t, 3, reloaded.Stock)

	// Authenticated-only surfaces stay closed to guests
	req, _ = http.NewRequest("GET", "/api/v1/wallet", nil)
	req.Header.Set("X-Session-Key", sessionKey)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// TestAdminRoutesRequireAuth checks that the admin surface rejects
// unauthenticated requests outright.
func TestAdminRoutesRequireAuth(t *testing.T) {
	router := setupIntegrationRouter(t)

	paths := []string{
		"/api/v1/admin/orders/1/ship",
		"/api/v1/admin/orders/promote-shipped",
		"/api/v1/admin/return-requests/1/approve",
	}
	for _, path := range paths {
		req, _ := http.NewRequest("POST", path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, fmt.Sprintf("%s should require a token", path))
	}
}
