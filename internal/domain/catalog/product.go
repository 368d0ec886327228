package catalog

import (
	"strings"

	"github.com/artcase/storefront/internal/domain/cart"
	"github.com/shopspring/decimal"
)

// DefaultCategory is used for artworks published without a category
const DefaultCategory = "Oil"

// FeaturedCount is the number of works shown on the home page
const FeaturedCount = 3

// Product is an artwork listed by the art service
type Product struct {
	ID          string          `json:"_id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category,omitempty"`
	ImageURL    string          `json:"image"`
	Featured    bool            `json:"featured,omitempty"`
}

// CartProduct snapshots the fields the cart keeps
func (p Product) CartProduct() cart.Product {
	return cart.Product{
		ID:       p.ID,
		Title:    p.Title,
		Price:    p.Price,
		ImageURL: p.ImageURL,
	}
}

// Filter narrows a product listing
type Filter struct {
	Category string
	Featured bool
}

// Matches reports whether p passes the filter. Category comparison ignores case.
func (f Filter) Matches(p Product) bool {
	if f.Featured && !p.Featured {
		return false
	}
	if f.Category != "" && !strings.EqualFold(strings.TrimSpace(f.Category), p.Category) {
		return false
	}
	return true
}

// Apply returns the products that match the filter, keeping their order
func (f Filter) Apply(products []Product) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if f.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

// Featured picks the works for the home page: those flagged featured, or the
// first FeaturedCount works when none is flagged.
func Featured(products []Product) []Product {
	flagged := Filter{Featured: true}.Apply(products)
	if len(flagged) == 0 {
		flagged = products
	}
	if len(flagged) > FeaturedCount {
		flagged = flagged[:FeaturedCount]
	}
	out := make([]Product, len(flagged))
	copy(out, flagged)
	return out
}

// Categories lists the distinct categories in first-seen order
func Categories(products []Product) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		key := strings.ToLower(p.Category)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}
