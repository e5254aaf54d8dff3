package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/arushi-crafts/storefront-api/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
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

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, auth0ID string) *models.User {
	user := models.User{
		Auth0ID: auth0ID,
		Name:    "Test User",
		Email:   auth0ID + "@example.com",
		Role:    "customer",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return &user
}

func createTestProduct(t *testing.T, db *gorm.DB, name string, price string, stock int) *models.Product {
	product := models.Product{
		Name:  name,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("Failed to create test product: %v", err)
	}
	return &product
}

func createTestSizes(t *testing.T, db *gorm.DB, codes ...string) []models.Size {
	sizes := make([]models.Size, 0, len(codes))
	for i, code := range codes {
		size := models.Size{Code: code, DisplayOrder: i}
		if err := db.Create(&size).Error; err != nil {
			t.Fatalf("Failed to create test size %s: %v", code, err)
		}
		sizes = append(sizes, size)
	}
	return sizes
}

func assignSizes(t *testing.T, db *gorm.DB, product *models.Product, sizes []models.Size) {
	if err := db.Model(product).Association("Sizes").Append(&sizes); err != nil {
		t.Fatalf("Failed to assign sizes: %v", err)
	}
}
