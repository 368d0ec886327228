package checkout

import (
	"time"

	"github.com/artcase/storefront/internal/domain/cart"
	"github.com/artcase/storefront/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShippingDetails is the customer part of the checkout form
type ShippingDetails struct {
	Name    string `json:"name" form:"name" validate:"required,min=2"`
	Email   string `json:"email" form:"email" validate:"required,email"`
	Address string `json:"address" form:"address" validate:"required,min=10"`
	City    string `json:"city" form:"city" validate:"required,min=2"`
}

// Order is a placed order. Payment is simulated, so an order only lives as the
// profile's most recent purchase.
type Order struct {
	ID         uuid.UUID       `json:"id"`
	Customer   ShippingDetails `json:"customer"`
	Items      []cart.LineItem `json:"items"`
	TotalItems int             `json:"totalItems"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	PlacedAt   time.Time       `json:"placedAt"`
}

// PlaceOrder snapshots the cart into a new order. The cart itself is not modified.
func PlaceOrder(customer ShippingDetails, c *cart.Cart, now time.Time) (*Order, error) {
	if c == nil || c.IsEmpty() {
		return nil, shared.ErrEmptyCart
	}
	return &Order{
		ID:         uuid.New(),
		Customer:   customer,
		Items:      c.Items(),
		TotalItems: c.TotalQuantity(),
		TotalPrice: c.TotalPrice(),
		PlacedAt:   now,
	}, nil
}
