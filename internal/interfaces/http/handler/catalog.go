package handler

import (
	"errors"

	"github.com/artcase/storefront/internal/application/storefront"
	"github.com/artcase/storefront/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// AboutPage is the static content of the about page
type AboutPage struct {
	Founded  string `json:"founded"`
	Headline string `json:"headline"`
	Intro    string `json:"intro"`
	Quote    string `json:"quote"`
	QuoteBy  string `json:"quoteBy"`
}

var aboutPage = AboutPage{
	Founded:  "2024",
	Headline: "We believe art should speak to the soul.",
	Intro:    "Art-Case isn't just a gallery; it's a curated dialogue between the artist's vision and your personal space.",
	Quote:    "Creativity takes courage.",
	QuoteBy:  "Henri Matisse",
}

// CatalogHandler serves the browsing pages
type CatalogHandler struct {
	BaseHandler
	catalog *storefront.CatalogService
}

// NewCatalogHandler creates a catalog handler
func NewCatalogHandler(catalog *storefront.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// Home serves the featured works. A failed listing still answers 200 with an
// empty page; the failure is queued as a notification.
func (h *CatalogHandler) Home(c *gin.Context) {
	p, ok := h.profile(c)
	if !ok {
		return
	}
	h.Success(c, h.catalog.Home(c.Request.Context(), p.Notifications))
}

// Gallery serves all works, optionally filtered by ?category=
func (h *CatalogHandler) Gallery(c *gin.Context) {
	p, ok := h.profile(c)
	if !ok {
		return
	}
	h.Success(c, h.catalog.Gallery(c.Request.Context(), p.Notifications, c.Query("category")))
}

// About serves the static about page
func (h *CatalogHandler) About(c *gin.Context) {
	h.Success(c, aboutPage)
}

// Product serves one artwork
func (h *CatalogHandler) Product(c *gin.Context) {
	p, ok := h.profile(c)
	if !ok {
		return
	}
	product, err := h.catalog.Product(c.Request.Context(), p.Notifications, c.Param("id"))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.NotFound(c, "Artwork not found")
			return
		}
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}
