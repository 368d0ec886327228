package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	cartapp "github.com/artcase/storefront/internal/application/cart"
	"github.com/artcase/storefront/internal/application/storefront"
	"github.com/artcase/storefront/internal/domain/cart"
	"github.com/artcase/storefront/internal/domain/catalog"
	"github.com/artcase/storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cartRouter(p *storefront.Profile) *gin.Engine {
	h := NewCartHandler(storefront.NewCatalogService(storefront.NewStaticSource(catalog.SampleProducts()), nil))
	router := gin.New()
	router.Use(withProfile(p))
	router.GET("/cart", h.Get)
	router.POST("/cart/items", h.Add)
	router.POST("/cart/items/:id/decrease", h.Decrease)
	router.DELETE("/cart/items/:id", h.Remove)
	router.DELETE("/cart", h.Clear)
	return router
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestCartHandler_Add(t *testing.T) {
	t.Run("product snapshot from the request", func(t *testing.T) {
		p := testProfile(t)
		router := cartRouter(p)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, jsonRequest(http.MethodPost, "/cart/items",
			`{"id":"7","title":"Harbor","price":"25.50","imageUrl":"/paintings/harbor.jpg"}`))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var first AddToCartResponse
		decodeData(t, w, &first)
		assert.Equal(t, "added", first.Outcome)

		w = httptest.NewRecorder()
		router.ServeHTTP(w, jsonRequest(http.MethodPost, "/cart/items",
			`{"id":"7","title":"Harbor","price":25.5,"imageUrl":"/paintings/harbor.jpg"}`))
		var second AddToCartResponse
		decodeData(t, w, &second)

		assert.Equal(t, "increased", second.Outcome)
		assert.Equal(t, 2, second.TotalQuantity)
		assert.True(t, second.TotalPrice.Equal(decimal.RequireFromString("51")))
		require.Len(t, second.Items, 1)
		assert.Equal(t, 2, second.Items[0].Quantity)
	})

	t.Run("id only is resolved from the catalog", func(t *testing.T) {
		p := testProfile(t)
		w := httptest.NewRecorder()
		cartRouter(p).ServeHTTP(w, jsonRequest(http.MethodPost, "/cart/items", `{"id":"2"}`))

		var resp AddToCartResponse
		decodeData(t, w, &resp)
		require.Len(t, resp.Items, 1)
		assert.Equal(t, "Abstract Ocean", resp.Items[0].Title)
		assert.True(t, resp.Items[0].Price.Equal(decimal.RequireFromString("79.99")))
	})

	t.Run("form post", func(t *testing.T) {
		p := testProfile(t)
		form := url.Values{"id": {"4"}, "title": {"Cityscape"}, "price": {"99.99"}}
		req := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		cartRouter(p).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, 1, p.Cart.TotalQuantity())
	})

	t.Run("unknown id", func(t *testing.T) {
		p := testProfile(t)
		w := httptest.NewRecorder()
		cartRouter(p).ServeHTTP(w, jsonRequest(http.MethodPost, "/cart/items", `{"id":"99"}`))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Zero(t, p.Cart.TotalQuantity())
	})

	t.Run("missing id", func(t *testing.T) {
		p := testProfile(t)
		w := httptest.NewRecorder()
		cartRouter(p).ServeHTTP(w, jsonRequest(http.MethodPost, "/cart/items", `{"title":"Harbor"}`))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decode(t, w)
		assert.Equal(t, dto.ErrCodeValidation, env.Error.Code)
		require.NotEmpty(t, env.Error.Details)
		assert.Equal(t, "id", env.Error.Details[0].Field)
	})

	t.Run("negative price", func(t *testing.T) {
		p := testProfile(t)
		w := httptest.NewRecorder()
		cartRouter(p).ServeHTTP(w, jsonRequest(http.MethodPost, "/cart/items", `{"id":"7","title":"Harbor","price":-1}`))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "price", decode(t, w).Error.Details[0].Field)
		assert.Zero(t, p.Cart.TotalQuantity())
	})

	t.Run("malformed body", func(t *testing.T) {
		w := httptest.NewRecorder()
		cartRouter(testProfile(t)).ServeHTTP(w, jsonRequest(http.MethodPost, "/cart/items", `{"id":`))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidJSON, decode(t, w).Error.Code)
	})
}

func TestCartHandler_Mutations(t *testing.T) {
	ctx := context.Background()
	p := testProfile(t)
	p.Cart.AddToCart(ctx, cart.Product{ID: "1", Title: "Mountain Sunset", Price: decimal.RequireFromString("49.99")})
	p.Cart.AddToCart(ctx, cart.Product{ID: "1", Title: "Mountain Sunset", Price: decimal.RequireFromString("49.99")})
	p.Cart.AddToCart(ctx, cart.Product{ID: "2", Title: "Abstract Ocean", Price: decimal.RequireFromString("79.99")})
	router := cartRouter(p)

	serve := func(method, target string) cartapp.Snapshot {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(method, target, nil))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var snap cartapp.Snapshot
		decodeData(t, w, &snap)
		return snap
	}

	snap := serve(http.MethodGet, "/cart")
	assert.Equal(t, 3, snap.TotalQuantity)

	snap = serve(http.MethodPost, "/cart/items/1/decrease")
	assert.Equal(t, 2, snap.TotalQuantity)
	assert.Equal(t, 1, snap.Items[0].Quantity)

	snap = serve(http.MethodPost, "/cart/items/1/decrease")
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "2", snap.Items[0].ID)

	snap = serve(http.MethodDelete, "/cart/items/unknown")
	assert.Equal(t, 1, snap.TotalQuantity)

	snap = serve(http.MethodDelete, "/cart/items/2")
	assert.Empty(t, snap.Items)

	p.Cart.AddToCart(ctx, cart.Product{ID: "3", Title: "Forest Path", Price: decimal.RequireFromString("39.99")})
	snap = serve(http.MethodDelete, "/cart")
	assert.Zero(t, snap.TotalQuantity)
	assert.True(t, snap.TotalPrice.IsZero())
}
