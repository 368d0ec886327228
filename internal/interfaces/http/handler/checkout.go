package handler

import (
	cartapp "github.com/artcase/storefront/internal/application/cart"
	"github.com/artcase/storefront/internal/application/storefront"
	"github.com/artcase/storefront/internal/domain/checkout"
	"github.com/gin-gonic/gin"
)

// CheckoutPage is the order summary shown next to the shipping form
type CheckoutPage struct {
	Cart cartapp.Snapshot `json:"cart"`
}

// ThankYouPage shows the most recent order, if any
type ThankYouPage struct {
	Order *checkout.Order `json:"order"`
}

// CheckoutHandler places orders
type CheckoutHandler struct {
	BaseHandler
	checkout *storefront.CheckoutService
}

// NewCheckoutHandler creates a checkout handler
func NewCheckoutHandler(svc *storefront.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkout: svc}
}

// Page returns the order summary
func (h *CheckoutHandler) Page(c *gin.Context) {
	p, ok := h.profile(c)
	if !ok {
		return
	}
	h.Success(c, CheckoutPage{Cart: p.Cart.Snapshot()})
}

// Place submits the shipping form. The response is sent once the simulated
// payment has completed.
func (h *CheckoutHandler) Place(c *gin.Context) {
	p, ok := h.profile(c)
	if !ok {
		return
	}

	var details checkout.ShippingDetails
	if !h.bind(c, &details) {
		return
	}

	res, err := h.checkout.Place(c.Request.Context(), p, details)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// ThankYou returns the last order placed by the profile
func (h *CheckoutHandler) ThankYou(c *gin.Context) {
	p, ok := h.profile(c)
	if !ok {
		return
	}
	order, _ := p.LastOrder()
	h.Success(c, ThankYouPage{Order: order})
}
