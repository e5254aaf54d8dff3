package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestProductAllowsSize(t *testing.T) {
	small := Size{ID: 1, Code: "S"}
	medium := Size{ID: 2, Code: "M"}
	largeID := uint(3)

	sized := Product{Name: "Hoodie", Sizes: []Size{small, medium}}
	sizeless := Product{Name: "Mug"}

	assert.True(t, sized.HasSizes())
	assert.False(t, sizeless.HasSizes())

	assert.True(t, sized.AllowsSize(&small.ID))
	assert.True(t, sized.AllowsSize(&medium.ID))
	assert.False(t, sized.AllowsSize(&largeID))
	assert.False(t, sized.AllowsSize(nil), "sized product requires a size")

	assert.True(t, sizeless.AllowsSize(nil))
	assert.False(t, sizeless.AllowsSize(&small.ID), "sizeless product allows only nil")
}

func TestPersonalizationRequestCartBehavior(t *testing.T) {
	price := decimal.RequireFromString("1499.00")
	request := PersonalizationRequest{
		Status:       PersonalizationOrderAccepted,
		CartQuantity: 2,
		Product:      Product{Price: price},
	}

	assert.True(t, request.IsInCart())
	assert.Equal(t, "2998.00", request.CartTotalPrice().StringFixed(2))

	request.CartQuantity = 0
	assert.False(t, request.IsInCart())
	assert.True(t, request.CartTotalPrice().IsZero())

	request.CartQuantity = 2
	request.Status = PersonalizationAdminApproved
	assert.False(t, request.IsInCart(), "only order_accepted requests count as cart lines")
	assert.True(t, request.CartTotalPrice().IsZero())
}
