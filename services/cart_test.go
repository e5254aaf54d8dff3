package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arushi-crafts/storefront-api/models"
)

func TestAddItem_StockBoundary(t *testing.T) {
	db := setupTestDB(t)
	carts := NewCartService(db)
	product := createTestProduct(t, db, "Polo Shirt", "499.00", 5)
	identity := GuestIdentity("guest-stock")

	// First add of 3 fits within stock of 5
	item, err := carts.AddItem(identity, product.ID, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, item.Quantity)

	// Adding 3 more would take the line to 6, over stock
	_, err = carts.AddItem(identity, product.ID, 3, nil)
	assert.ErrorIs(t, err, ErrOutOfStock)

	// The failed add must not have changed the line
	totals, err := carts.Totals(identity)
	require.NoError(t, err)
	assert.Equal(t, 3, totals.TotalItems)

	// Adding 2 lands exactly on stock
	item, err = carts.AddItem(identity, product.ID, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, item.Quantity)
}

func TestAddItem_Validation(t *testing.T) {
	db := setupTestDB(t)
	carts := NewCartService(db)
	product := createTestProduct(t, db, "Plain Tee", "299.00", 10)
	identity := GuestIdentity("guest-validation")

	_, err := carts.AddItem(identity, product.ID, 0, nil)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = carts.AddItem(identity, product.ID, -2, nil)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = carts.AddItem(identity, 9999, 1, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddItem_SizeValidation(t *testing.T) {
	db := setupTestDB(t)
	carts := NewCartService(db)
	sizes := createTestSizes(t, db, "S", "M", "L")
	sized := createTestProduct(t, db, "Hoodie", "999.00", 10)
	assignSizes(t, db, sized, sizes[:2]) // S and M only
	sizeless := createTestProduct(t, db, "Mug", "199.00", 10)
	identity := GuestIdentity("guest-sizes")

	// Sized product without a size
	_, err := carts.AddItem(identity, sized.ID, 1, nil)
	assert.ErrorIs(t, err, ErrInvalidSize)

	// Size outside the product's set
	_, err = carts.AddItem(identity, sized.ID, 1, &sizes[2].ID)
	assert.ErrorIs(t, err, ErrInvalidSize)

	// Size within the set
	item, err := carts.AddItem(identity, sized.ID, 1, &sizes[0].ID)
	require.NoError(t, err)
	require.NotNil(t, item.SizeID)
	assert.Equal(t, sizes[0].ID, *item.SizeID)

	// A size handed to a sizeless product is ignored, not rejected
	item, err = carts.AddItem(identity, sizeless.ID, 1, &sizes[0].ID)
	require.NoError(t, err)
	assert.Nil(t, item.SizeID)
}

func TestAddItem_SizesAreSeparateLines(t *testing.T) {
	db := setupTestDB(t)
	carts := NewCartService(db)
	sizes := createTestSizes(t, db, "S", "M")
	product := createTestProduct(t, db, "Hoodie", "999.00", 10)
	assignSizes(t, db, product, sizes)
	identity := GuestIdentity("guest-lines")

	_, err := carts.AddItem(identity, product.ID, 2, &sizes[0].ID)
	require.NoError(t, err)
	_, err = carts.AddItem(identity, product.ID, 1, &sizes[1].ID)
	require.NoError(t, err)

	totals, err := carts.Totals(identity)
	require.NoError(t, err)
	assert.Equal(t, 2, totals.ItemCount)
	assert.Equal(t, 3, totals.TotalItems)
}

func TestSetQuantity(t *testing.T) {
	db := setupTestDB(t)
	carts := NewCartService(db)
	product := createTestProduct(t, db, "Plain Tee", "299.00", 5)
	identity := GuestIdentity("guest-setqty")

	// Setting quantity on an absent line is a no-op, not an error
	item, err := carts.SetQuantity(identity, product.ID, 2, nil)
	require.NoError(t, err)
	assert.Nil(t, item)
	items, err := carts.Items(identity)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = carts.AddItem(identity, product.ID, 2, nil)
	require.NoError(t, err)

	// Absolute update, not an increment
	item, err = carts.SetQuantity(identity, product.ID, 4, nil)
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, 4, item.Quantity)

	// Over stock fails and leaves the line untouched
	_, err = carts.SetQuantity(identity, product.ID, 6, nil)
	assert.ErrorIs(t, err, ErrOutOfStock)
	totals, err := carts.Totals(identity)
	require.NoError(t, err)
	assert.Equal(t, 4, totals.TotalItems)

	// Zero deletes the line
	item, err = carts.SetQuantity(identity, product.ID, 0, nil)
	require.NoError(t, err)
	assert.Nil(t, item)
	items, err = carts.Items(identity)
	require.NoError(t, err)
	assert.Empty(t, items)

	// Zero again is still fine: same end state
	item, err = carts.SetQuantity(identity, product.ID, 0, nil)
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestRemoveItem_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	carts := NewCartService(db)
	product := createTestProduct(t, db, "Plain Tee", "299.00", 5)
	identity := GuestIdentity("guest-remove")

	before, err := carts.Totals(identity)
	require.NoError(t, err)

	_, err = carts.AddItem(identity, product.ID, 2, nil)
	require.NoError(t, err)

	removed, err := carts.RemoveItem(identity, product.ID, nil)
	require.NoError(t, err)
	assert.True(t, removed)

	after, err := carts.Totals(identity)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	// Removing again reports nothing removed
	removed, err = carts.RemoveItem(identity, product.ID, nil)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestTotals_LiveComputation(t *testing.T) {
	db := setupTestDB(t)
	carts := NewCartService(db)
	product := createTestProduct(t, db, "Hoodie", "999.00", 10)
	identity := GuestIdentity("guest-totals")

	_, err := carts.AddItem(identity, product.ID, 2, nil)
	require.NoError(t, err)

	totals, err := carts.Totals(identity)
	require.NoError(t, err)
	assert.True(t, totals.TotalPrice.Equal(decimal.RequireFromString("1998.00")),
		"expected 1998.00, got %s", totals.TotalPrice)

	// Totals are computed from current product data, so a price change
	// shows up without touching the cart.
	err = db.Model(&models.Product{}).Where("id = ?", product.ID).
		Update("price", decimal.RequireFromString("899.00")).Error
	require.NoError(t, err)

	totals, err = carts.Totals(identity)
	require.NoError(t, err)
	assert.True(t, totals.TotalPrice.Equal(decimal.RequireFromString("1798.00")),
		"expected 1798.00, got %s", totals.TotalPrice)
}

func TestClear(t *testing.T) {
	db := setupTestDB(t)
	carts := NewCartService(db)
	first := createTestProduct(t, db, "Plain Tee", "299.00", 10)
	second := createTestProduct(t, db, "Hoodie", "999.00", 10)
	identity := GuestIdentity("guest-clear")

	_, err := carts.AddItem(identity, first.ID, 2, nil)
	require.NoError(t, err)
	_, err = carts.AddItem(identity, second.ID, 1, nil)
	require.NoError(t, err)

	require.NoError(t, carts.Clear(identity))

	totals, err := carts.Totals(identity)
	require.NoError(t, err)
	assert.Equal(t, 0, totals.TotalItems)
	assert.Equal(t, 0, totals.ItemCount)
}

func TestValidateStock(t *testing.T) {
	db := setupTestDB(t)
	carts := NewCartService(db)
	product := createTestProduct(t, db, "Plain Tee", "299.00", 5)
	identity := GuestIdentity("guest-validate")

	_, err := carts.AddItem(identity, product.ID, 4, nil)
	require.NoError(t, err)

	issues, err := carts.ValidateStock(identity)
	require.NoError(t, err)
	assert.Empty(t, issues)

	// Stock drops below the cart quantity
	err = db.Model(&models.Product{}).Where("id = ?", product.ID).
		Update("stock", 2).Error
	require.NoError(t, err)

	issues, err = carts.ValidateStock(identity)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, product.ID, issues[0].ProductID)
	assert.Equal(t, 4, issues[0].Requested)
	assert.Equal(t, 2, issues[0].Available)
}

func TestMerge_DropsConflictingLines(t *testing.T) {
	db := setupTestDB(t)
	carts := NewCartService(db)
	user := createTestUser(t, db, "auth0|merge")
	contested := createTestProduct(t, db, "Hoodie", "999.00", 5)
	guestOnly := createTestProduct(t, db, "Mug", "199.00", 10)

	userIdentity := UserIdentity(user.ID)
	guestIdentity := GuestIdentity("guest-merge")

	// User already holds 3 of the contested product; guest holds 4.
	// Combined 7 exceeds stock 5, so the guest line must be dropped.
	_, err := carts.AddItem(userIdentity, contested.ID, 3, nil)
	require.NoError(t, err)
	_, err = carts.AddItem(guestIdentity, contested.ID, 4, nil)
	require.NoError(t, err)
	_, err = carts.AddItem(guestIdentity, guestOnly.ID, 2, nil)
	require.NoError(t, err)

	report, err := carts.Merge("guest-merge", user.ID)
	require.NoError(t, err)

	require.Len(t, report.Dropped, 1)
	assert.Equal(t, contested.ID, report.Dropped[0].ProductID)
	assert.Equal(t, 4, report.Dropped[0].Quantity)
	require.Len(t, report.Merged, 1)
	assert.Equal(t, guestOnly.ID, report.Merged[0].ProductID)
	assert.Equal(t, 2, report.Merged[0].Quantity)

	// The user keeps the original quantity on the dropped line
	items, err := carts.Items(userIdentity)
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, item := range items {
		if item.ProductID == contested.ID {
			assert.Equal(t, 3, item.Quantity)
		}
	}

	// The guest cart is gone even though a line was dropped
	var guestCarts int64
	err = db.Model(&models.Cart{}).
		Where("session_key = ? AND user_id IS NULL", "guest-merge").
		Count(&guestCarts).Error
	require.NoError(t, err)
	assert.EqualValues(t, 0, guestCarts)
}

func TestMerge_CombinesQuantitiesWithinStock(t *testing.T) {
	db := setupTestDB(t)
	carts := NewCartService(db)
	user := createTestUser(t, db, "auth0|merge2")
	product := createTestProduct(t, db, "Plain Tee", "299.00", 10)

	_, err := carts.AddItem(UserIdentity(user.ID), product.ID, 3, nil)
	require.NoError(t, err)
	_, err = carts.AddItem(GuestIdentity("guest-merge2"), product.ID, 4, nil)
	require.NoError(t, err)

	report, err := carts.Merge("guest-merge2", user.ID)
	require.NoError(t, err)
	assert.Empty(t, report.Dropped)
	require.Len(t, report.Merged, 1)
	assert.Equal(t, 7, report.Merged[0].Quantity)

	items, err := carts.Items(UserIdentity(user.ID))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 7, items[0].Quantity)
}

func TestMerge_NoGuestCart(t *testing.T) {
	db := setupTestDB(t)
	carts := NewCartService(db)
	user := createTestUser(t, db, "auth0|merge3")

	report, err := carts.Merge("never-seen", user.ID)
	require.NoError(t, err)
	assert.Empty(t, report.Merged)
	assert.Empty(t, report.Dropped)
}

func TestResolveCart_OnePerIdentity(t *testing.T) {
	db := setupTestDB(t)
	carts := NewCartService(db)
	user := createTestUser(t, db, "auth0|resolve")

	first, err := carts.ResolveCart(UserIdentity(user.ID))
	require.NoError(t, err)
	second, err := carts.ResolveCart(UserIdentity(user.ID))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	guest, err := carts.ResolveCart(GuestIdentity("guest-resolve"))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, guest.ID)
}
