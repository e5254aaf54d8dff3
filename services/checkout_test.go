package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/arushi-crafts/storefront-api/models"
)

var testSurcharge = decimal.RequireFromString("50.00")

func testAddress() PlaceOrderInput {
	return PlaceOrderInput{
		FullName:     "Asha Verma",
		AddressLine1: "12 MG Road",
		City:         "Bengaluru",
		State:        "Karnataka",
		PostalCode:   "560001",
		Phone:        "+919812345678",
	}
}

func acceptedPersonalization(t *testing.T, db *gorm.DB, userID, productID uint, quantity int) *models.PersonalizationRequest {
	finalKey := "designs/final.png"
	request := models.PersonalizationRequest{
		UserID:          userID,
		ProductID:       productID,
		DesignS3Key:     "designs/design.png",
		FinalImageS3Key: &finalKey,
		Status:          models.PersonalizationOrderAccepted,
		CartQuantity:    quantity,
	}
	if err := db.Create(&request).Error; err != nil {
		t.Fatalf("Failed to create personalization request: %v", err)
	}
	return &request
}

func TestPlaceOrder_COD(t *testing.T) {
	db := setupTestDB(t)
	carts := NewCartService(db)
	checkout := NewCheckoutService(db, testSurcharge)
	user := createTestUser(t, db, "auth0|checkout-cod")
	product := createTestProduct(t, db, "Hoodie", "100.00", 10)
	identity := UserIdentity(user.ID)

	_, err := carts.AddItem(identity, product.ID, 2, nil)
	require.NoError(t, err)

	in := testAddress()
	in.PaymentMethod = models.PaymentCOD
	order, err := checkout.PlaceOrder(identity, in)
	require.NoError(t, err)

	assert.Equal(t, models.PaymentCOD, order.PaymentMethod)
	assert.Equal(t, models.OrderProcessing, order.Status)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("250.00")),
		"expected 250.00 (200 + 50 surcharge), got %s", order.TotalAmount)
	assert.True(t, order.WalletAmountUsed.IsZero())
	assert.True(t, order.RemainingAmount.Equal(order.TotalAmount))

	// Items are frozen snapshots
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Hoodie", order.Items[0].ProductName)
	assert.True(t, order.Items[0].UnitPrice.Equal(decimal.RequireFromString("100.00")))
	assert.True(t, order.Items[0].LineTotal.Equal(decimal.RequireFromString("200.00")))

	// Stock was reserved and the cart emptied
	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, product.ID).Error)
	assert.Equal(t, 8, reloaded.Stock)
	totals, err := carts.Totals(identity)
	require.NoError(t, err)
	assert.Equal(t, 0, totals.TotalItems)

	// The checkout address became the user's default
	var address models.UserAddress
	require.NoError(t, db.Where("user_id = ? AND is_default = ?", user.ID, true).First(&address).Error)
	assert.Equal(t, "12 MG Road", address.AddressLine1)
}

func TestPlaceOrder_WalletCoversTotal(t *testing.T) {
	db := setupTestDB(t)
	carts := NewCartService(db)
	wallets := NewWalletService(db)
	checkout := NewCheckoutService(db, testSurcharge)
	user := createTestUser(t, db, "auth0|checkout-wallet")
	product := createTestProduct(t, db, "Hoodie", "100.00", 10)
	identity := UserIdentity(user.ID)

	_, err := wallets.AddMoney(user.ID, decimal.RequireFromString("250.00"), "Top-up")
	require.NoError(t, err)
	_, err = carts.AddItem(identity, product.ID, 2, nil)
	require.NoError(t, err)

	in := testAddress()
	in.PaymentMethod = models.PaymentWallet
	in.WalletAmount = decimal.RequireFromString("200.00")
	order, err := checkout.PlaceOrder(identity, in)
	require.NoError(t, err)

	// Wallet covered the whole order: method is derived, nothing remains
	assert.Equal(t, models.PaymentWallet, order.PaymentMethod)
	assert.Equal(t, models.OrderProcessing, order.Status)
	assert.True(t, order.RemainingAmount.IsZero(), "expected 0 remaining, got %s", order.RemainingAmount)
	assert.True(t, order.WalletAmountUsed.Equal(decimal.RequireFromString("200.00")))

	// Exactly one debit on the ledger with the right running balance
	transactions, err := wallets.Transactions(user.ID)
	require.NoError(t, err)
	require.Len(t, transactions, 2)
	assert.Equal(t, models.TransactionDebit, transactions[0].Type)
	assert.True(t, transactions[0].Amount.Equal(decimal.RequireFromString("200.00")))
	assert.True(t, transactions[0].BalanceAfter.Equal(decimal.RequireFromString("50.00")))
}

func TestPlaceOrder_UPIPartialWallet(t *testing.T) {
	db := setupTestDB(t)
	carts := NewCartService(db)
	wallets := NewWalletService(db)
	checkout := NewCheckoutService(db, testSurcharge)
	user := createTestUser(t, db, "auth0|checkout-upi")
	product := createTestProduct(t, db, "Hoodie", "100.00", 10)
	identity := UserIdentity(user.ID)

	_, err := wallets.AddMoney(user.ID, decimal.RequireFromString("50.00"), "Top-up")
	require.NoError(t, err)
	_, err = carts.AddItem(identity, product.ID, 2, nil)
	require.NoError(t, err)

	provider := "gpay"
	in := testAddress()
	in.PaymentMethod = models.PaymentUPI
	in.UPIProvider = &provider
	in.WalletAmount = decimal.RequireFromString("50.00")
	order, err := checkout.PlaceOrder(identity, in)
	require.NoError(t, err)

	assert.Equal(t, models.PaymentWalletPartial, order.PaymentMethod)
	// UPI with an outstanding amount waits for manual payment approval
	assert.Equal(t, models.OrderPending, order.Status)
	assert.True(t, order.RemainingAmount.Equal(decimal.RequireFromString("150.00")))
	require.NotNil(t, order.UPIProvider)
	assert.Equal(t, "gpay", *order.UPIProvider)
}

func TestPlaceOrder_CODSurchargeSurvivesWalletCover(t *testing.T) {
	db := setupTestDB(t)
	carts := NewCartService(db)
	wallets := NewWalletService(db)
	checkout := NewCheckoutService(db, testSurcharge)
	user := createTestUser(t, db, "auth0|checkout-cod-wallet")
	product := createTestProduct(t, db, "Hoodie", "100.00", 10)
	identity := UserIdentity(user.ID)

	_, err := wallets.AddMoney(user.ID, decimal.RequireFromString("300.00"), "Top-up")
	require.NoError(t, err)
	_, err = carts.AddItem(identity, product.ID, 2, nil)
	require.NoError(t, err)

	in := testAddress()
	in.PaymentMethod = models.PaymentCOD
	in.WalletAmount = decimal.RequireFromString("250.00")
	order, err := checkout.PlaceOrder(identity, in)
	require.NoError(t, err)

	// The buyer selected COD, so the surcharge stays in the total even
	// though the wallet ended up covering all of it.
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("250.00")))
	assert.Equal(t, models.PaymentWallet, order.PaymentMethod)
	assert.True(t, order.RemainingAmount.IsZero())
	assert.Equal(t, models.OrderProcessing, order.Status)
}

func TestPlaceOrder_GuestWalletRejected(t *testing.T) {
	db := setupTestDB(t)
	carts := NewCartService(db)
	checkout := NewCheckoutService(db, testSurcharge)
	product := createTestProduct(t, db, "Hoodie", "100.00", 10)
	identity := GuestIdentity("guest-checkout")

	_, err := carts.AddItem(identity, product.ID, 1, nil)
	require.NoError(t, err)

	in := testAddress()
	in.PaymentMethod = models.PaymentCOD
	in.WalletAmount = decimal.RequireFromString("10.00")
	_, err = checkout.PlaceOrder(identity, in)
	assert.ErrorIs(t, err, ErrWalletRequiresUser)
}

func TestPlaceOrder_GuestCOD(t *testing.T) {
	db := setupTestDB(t)
	carts := NewCartService(db)
	checkout := NewCheckoutService(db, testSurcharge)
	product := createTestProduct(t, db, "Hoodie", "100.00", 10)
	identity := GuestIdentity("guest-cod")

	_, err := carts.AddItem(identity, product.ID, 1, nil)
	require.NoError(t, err)

	in := testAddress()
	in.PaymentMethod = models.PaymentCOD
	order, err := checkout.PlaceOrder(identity, in)
	require.NoError(t, err)

	assert.Nil(t, order.UserID)
	require.NotNil(t, order.SessionKey)
	assert.Equal(t, "guest-cod", *order.SessionKey)
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	db := setupTestDB(t)
	checkout := NewCheckoutService(db, testSurcharge)
	user := createTestUser(t, db, "auth0|checkout-empty")

	in := testAddress()
	in.PaymentMethod = models.PaymentCOD
	_, err := checkout.PlaceOrder(UserIdentity(user.ID), in)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestPlaceOrder_WalletExceedsTotal(t *testing.T) {
	db := setupTestDB(t)
	carts := NewCartService(db)
	wallets := NewWalletService(db)
	checkout := NewCheckoutService(db, testSurcharge)
	user := createTestUser(t, db, "auth0|checkout-over")
	product := createTestProduct(t, db, "Hoodie", "100.00", 10)
	identity := UserIdentity(user.ID)

	_, err := wallets.AddMoney(user.ID, decimal.RequireFromString("1000.00"), "Top-up")
	require.NoError(t, err)
	_, err = carts.AddItem(identity, product.ID, 1, nil)
	require.NoError(t, err)

	in := testAddress()
	in.PaymentMethod = models.PaymentUPI
	in.WalletAmount = decimal.RequireFromString("500.00")
	_, err = checkout.PlaceOrder(identity, in)
	assert.ErrorIs(t, err, ErrInvalidWalletAmount)
}

func TestPlaceOrder_StockFailureRollsBack(t *testing.T) {
	db := setupTestDB(t)
	carts := NewCartService(db)
	checkout := NewCheckoutService(db, testSurcharge)
	user := createTestUser(t, db, "auth0|checkout-rollback")
	plenty := createTestProduct(t, db, "Plain Tee", "299.00", 10)
	scarce := createTestProduct(t, db, "Hoodie", "999.00", 5)
	identity := UserIdentity(user.ID)

	_, err := carts.AddItem(identity, plenty.ID, 2, nil)
	require.NoError(t, err)
	_, err = carts.AddItem(identity, scarce.ID, 3, nil)
	require.NoError(t, err)

	// Stock on the second line drops after the items were added
	err = db.Model(&models.Product{}).Where("id = ?", scarce.ID).
		Update("stock", 1).Error
	require.NoError(t, err)

	in := testAddress()
	in.PaymentMethod = models.PaymentCOD
	_, err = checkout.PlaceOrder(identity, in)
	assert.ErrorIs(t, err, ErrOutOfStock)

	// Nothing moved: first product's stock intact, no order, cart untouched
	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, plenty.ID).Error)
	assert.Equal(t, 10, reloaded.Stock)

	var orderCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	assert.EqualValues(t, 0, orderCount)

	totals, err := carts.Totals(identity)
	require.NoError(t, err)
	assert.Equal(t, 5, totals.TotalItems)
}

func TestPlaceOrder_ConsumesPersonalizationLines(t *testing.T) {
	db := setupTestDB(t)
	carts := NewCartService(db)
	checkout := NewCheckoutService(db, testSurcharge)
	user := createTestUser(t, db, "auth0|checkout-custom")
	regular := createTestProduct(t, db, "Plain Tee", "299.00", 10)
	custom := createTestProduct(t, db, "Custom Hoodie", "1499.00", 10)
	custom.CanCustomize = true
	require.NoError(t, db.Save(custom).Error)
	identity := UserIdentity(user.ID)

	_, err := carts.AddItem(identity, regular.ID, 1, nil)
	require.NoError(t, err)
	request := acceptedPersonalization(t, db, user.ID, custom.ID, 2)

	in := testAddress()
	in.PaymentMethod = models.PaymentUPI
	order, err := checkout.PlaceOrder(identity, in)
	require.NoError(t, err)

	// Both line kinds are frozen into the order
	require.Len(t, order.Items, 2)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("3297.00")),
		"expected 299 + 2x1499, got %s", order.TotalAmount)

	// The request survives as history with its quantity consumed
	var reloaded models.PersonalizationRequest
	require.NoError(t, db.First(&reloaded, request.ID).Error)
	assert.Equal(t, models.PersonalizationOrderAccepted, reloaded.Status)
	assert.Equal(t, 0, reloaded.CartQuantity)

	var reloadedProduct models.Product
	require.NoError(t, db.First(&reloadedProduct, custom.ID).Error)
	assert.Equal(t, 8, reloadedProduct.Stock)
}

func TestPlaceOrder_UnknownPaymentMethod(t *testing.T) {
	db := setupTestDB(t)
	checkout := NewCheckoutService(db, testSurcharge)

	in := testAddress()
	in.PaymentMethod = "cheque"
	_, err := checkout.PlaceOrder(GuestIdentity("guest-method"), in)
	assert.ErrorIs(t, err, ErrNotFound)
}
