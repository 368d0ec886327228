package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/artcase/storefront/internal/application/storefront"
	"github.com/artcase/storefront/internal/domain/cart"
	"github.com/artcase/storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkoutRouter(p *storefront.Profile) *gin.Engine {
	h := NewCheckoutHandler(storefront.NewCheckoutService(0))
	router := gin.New()
	router.Use(withProfile(p))
	router.GET("/checkout", h.Page)
	router.POST("/checkout", h.Place)
	router.GET("/thank-you", h.ThankYou)
	return router
}

const shippingJSON = `{"name":"Ada Lovelace","email":"ada@example.com","address":"12 St James's Square","city":"London"}`

func TestCheckoutHandler_Place(t *testing.T) {
	t.Run("places the order", func(t *testing.T) {
		p := testProfile(t)
		p.Cart.AddToCart(context.Background(), cart.Product{ID: "1", Title: "Mountain Sunset", Price: decimal.RequireFromString("49.99")})
		router := checkoutRouter(p)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, jsonRequest(http.MethodPost, "/checkout", shippingJSON))

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var res storefront.CheckoutResult
		decodeData(t, w, &res)
		assert.Equal(t, storefront.ThankYouPath, res.Next)
		require.NotNil(t, res.Order)
		assert.Equal(t, 1, res.Order.TotalItems)
		assert.Zero(t, p.Cart.TotalQuantity())

		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/thank-you", nil))
		var page ThankYouPage
		decodeData(t, w, &page)
		require.NotNil(t, page.Order)
		assert.Equal(t, res.Order.ID, page.Order.ID)
		assert.Equal(t, "Ada Lovelace", page.Order.Customer.Name)
	})

	t.Run("form post", func(t *testing.T) {
		p := testProfile(t)
		p.Cart.AddToCart(context.Background(), cart.Product{ID: "1", Title: "Mountain Sunset", Price: decimal.RequireFromString("49.99")})

		form := url.Values{
			"name":    {"Ada Lovelace"},
			"email":   {"ada@example.com"},
			"address": {"12 St James's Square"},
			"city":    {"London"},
		}
		req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		checkoutRouter(p).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		_, placed := p.LastOrder()
		assert.True(t, placed)
	})

	t.Run("empty cart", func(t *testing.T) {
		w := httptest.NewRecorder()
		checkoutRouter(testProfile(t)).ServeHTTP(w, jsonRequest(http.MethodPost, "/checkout", shippingJSON))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, dto.ErrCodeEmptyCart, decode(t, w).Error.Code)
	})

	t.Run("invalid form", func(t *testing.T) {
		p := testProfile(t)
		p.Cart.AddToCart(context.Background(), cart.Product{ID: "1", Title: "Mountain Sunset", Price: decimal.RequireFromString("49.99")})

		w := httptest.NewRecorder()
		checkoutRouter(p).ServeHTTP(w, jsonRequest(http.MethodPost, "/checkout",
			`{"name":"Ada Lovelace","email":"ada@example.com","address":"short","city":"London"}`))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decode(t, w)
		assert.Equal(t, []dto.ValidationDetail{{Field: "address", Message: "Must be at least 10 characters"}}, env.Error.Details)
		assert.Equal(t, 1, p.Cart.TotalQuantity())
	})
}

func TestCheckoutHandler_Pages(t *testing.T) {
	p := testProfile(t)
	p.Cart.AddToCart(context.Background(), cart.Product{ID: "2", Title: "Abstract Ocean", Price: decimal.RequireFromString("79.99")})
	router := checkoutRouter(p)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/checkout", nil))
	var page CheckoutPage
	decodeData(t, w, &page)
	assert.Equal(t, 1, page.Cart.TotalQuantity)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/thank-you", nil))
	var thanks ThankYouPage
	decodeData(t, w, &thanks)
	assert.Nil(t, thanks.Order)
}
