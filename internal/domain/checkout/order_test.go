package checkout

import (
	"errors"
	"testing"
	"time"

	"github.com/artcase/storefront/internal/domain/cart"
	"github.com/artcase/storefront/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceOrder(t *testing.T) {
	customer := ShippingDetails{
		Name:    "Ada Lovelace",
		Email:   "ada@example.com",
		Address: "12 Analytical Row",
		City:    "London",
	}
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("snapshots the cart", func(t *testing.T) {
		c := &cart.Cart{}
		c.AddItem(cart.Product{ID: "1", Title: "Mountain Sunset", Price: decimal.NewFromFloat(49.99)})
		c.AddItem(cart.Product{ID: "1"})
		c.AddItem(cart.Product{ID: "3", Title: "Forest Path", Price: decimal.NewFromFloat(39.99)})

		order, err := PlaceOrder(customer, c, now)
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, order.ID)
		assert.Equal(t, customer, order.Customer)
		assert.Len(t, order.Items, 2)
		assert.Equal(t, 3, order.TotalItems)
		assert.Equal(t, "139.97", order.TotalPrice.StringFixed(2))
		assert.Equal(t, now, order.PlacedAt)

		assert.Equal(t, 3, c.TotalQuantity(), "cart is left untouched")
	})

	t.Run("rejects an empty cart", func(t *testing.T) {
		_, err := PlaceOrder(customer, &cart.Cart{}, now)
		assert.True(t, errors.Is(err, shared.ErrEmptyCart))

		_, err = PlaceOrder(customer, nil, now)
		assert.True(t, errors.Is(err, shared.ErrEmptyCart))
	})
}
