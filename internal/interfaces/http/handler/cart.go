package handler

import (
	"errors"

	cartapp "github.com/artcase/storefront/internal/application/cart"
	"github.com/artcase/storefront/internal/application/storefront"
	"github.com/artcase/storefront/internal/domain/cart"
	"github.com/artcase/storefront/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// AddToCartRequest adds one unit of a product. When only the id is sent the
// product is looked up in the catalog.
type AddToCartRequest struct {
	ID       string          `json:"id" form:"id" binding:"required,max=100"`
	Title    string          `json:"title" form:"title" binding:"max=200"`
	Price    decimal.Decimal `json:"price" form:"price"`
	ImageURL string          `json:"imageUrl" form:"imageUrl" binding:"max=2048"`
}

// AddToCartResponse is the cart after an add, plus whether a line was created
type AddToCartResponse struct {
	cartapp.Snapshot
	Outcome string `json:"outcome"`
}

// CartHandler exposes the profile's cart
type CartHandler struct {
	BaseHandler
	catalog *storefront.CatalogService
}

// NewCartHandler creates a cart handler
func NewCartHandler(catalog *storefront.CatalogService) *CartHandler {
	return &CartHandler{catalog: catalog}
}

// Get returns the cart
func (h *CartHandler) Get(c *gin.Context) {
	p, ok := h.profile(c)
	if !ok {
		return
	}
	h.Success(c, p.Cart.Snapshot())
}

// Add puts one unit of a product in the cart
func (h *CartHandler) Add(c *gin.Context) {
	p, ok := h.profile(c)
	if !ok {
		return
	}

	var req AddToCartRequest
	if !h.bind(c, &req) {
		return
	}
	if req.Price.IsNegative() {
		h.HandleError(c, &storefront.ValidationError{Fields: []storefront.FieldError{
			{Field: "price", Message: "Must be greater than or equal to 0"},
		}})
		return
	}

	product := cart.Product{ID: req.ID, Title: req.Title, Price: req.Price, ImageURL: req.ImageURL}
	if product.Title == "" {
		found, err := h.catalog.Product(c.Request.Context(), p.Notifications, req.ID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				h.NotFound(c, "Artwork not found")
				return
			}
			h.HandleError(c, err)
			return
		}
		product = found.CartProduct()
	}

	outcome := p.Cart.AddToCart(c.Request.Context(), product)
	h.Success(c, AddToCartResponse{Snapshot: p.Cart.Snapshot(), Outcome: outcomeName(outcome)})
}

// Decrease removes one unit of a product; the line goes away at zero
func (h *CartHandler) Decrease(c *gin.Context) {
	p, ok := h.profile(c)
	if !ok {
		return
	}
	p.Cart.DecreaseQuantity(c.Request.Context(), c.Param("id"))
	h.Success(c, p.Cart.Snapshot())
}

// Remove drops a product's line
func (h *CartHandler) Remove(c *gin.Context) {
	p, ok := h.profile(c)
	if !ok {
		return
	}
	p.Cart.RemoveFromCart(c.Request.Context(), c.Param("id"))
	h.Success(c, p.Cart.Snapshot())
}

// Clear empties the cart
func (h *CartHandler) Clear(c *gin.Context) {
	p, ok := h.profile(c)
	if !ok {
		return
	}
	p.Cart.ClearCart(c.Request.Context())
	h.Success(c, p.Cart.Snapshot())
}

func outcomeName(o cart.AddOutcome) string {
	if o == cart.Increased {
		return "increased"
	}
	return "added"
}
