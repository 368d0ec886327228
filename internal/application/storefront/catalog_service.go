package storefront

import (
	"context"
	"errors"
	"strings"

	"github.com/artcase/storefront/internal/application/notification"
	"github.com/artcase/storefront/internal/domain/catalog"
	"github.com/artcase/storefront/internal/domain/shared"
	"github.com/artcase/storefront/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ProductSource lists and fetches products
type ProductSource interface {
	ListProducts(ctx context.Context, filter catalog.Filter) ([]catalog.Product, error)
	GetProduct(ctx context.Context, id string) (*catalog.Product, error)
}

// StaticSource serves a fixed product list
type StaticSource struct {
	products []catalog.Product
}

// NewStaticSource creates a source over products
func NewStaticSource(products []catalog.Product) *StaticSource {
	return &StaticSource{products: products}
}

// ListProducts filters the fixed list
func (s *StaticSource) ListProducts(_ context.Context, filter catalog.Filter) ([]catalog.Product, error) {
	return filter.Apply(s.products), nil
}

// GetProduct finds a product by id
func (s *StaticSource) GetProduct(_ context.Context, id string) (*catalog.Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			p := p
			return &p, nil
		}
	}
	return nil, shared.ErrNotFound
}

// HomePage is the data of the landing page
type HomePage struct {
	Featured []catalog.Product `json:"featured"`
}

// GalleryPage is the data of the gallery
type GalleryPage struct {
	Products   []catalog.Product `json:"products"`
	Categories []string          `json:"categories"`
	Selected   string            `json:"selected,omitempty"`
}

// Catalog error messages shown to the user
const (
	MsgProductsLoadFailed = "Failed to load artworks"
	MsgProductLoadFailed  = "Failed to load artwork"
)

// CatalogService serves the browsing pages.
// Source failures become one error notification and an empty page.
type CatalogService struct {
	source ProductSource
	logger *zap.Logger
}

// NewCatalogService creates a catalog service
func NewCatalogService(source ProductSource, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{source: source, logger: logger}
}

// Home returns the featured works
func (s *CatalogService) Home(ctx context.Context, n notification.Notifier) HomePage {
	products, err := s.source.ListProducts(ctx, catalog.Filter{Featured: true})
	if err != nil {
		s.failed(ctx, n, "home", MsgProductsLoadFailed, err)
		return HomePage{Featured: []catalog.Product{}}
	}
	return HomePage{Featured: catalog.Featured(products)}
}

// Gallery returns all works, or those of one category. "All" means no filter.
func (s *CatalogService) Gallery(ctx context.Context, n notification.Notifier, category string) GalleryPage {
	category = strings.TrimSpace(category)
	if strings.EqualFold(category, "all") {
		category = ""
	}
	filter := catalog.Filter{Category: category}

	page := GalleryPage{Selected: category, Categories: append([]string(nil), catalog.KnownCategories...)}
	products, err := s.source.ListProducts(ctx, filter)
	if err != nil {
		s.failed(ctx, n, "gallery", MsgProductsLoadFailed, err)
		page.Products = []catalog.Product{}
		return page
	}

	page.Products = filter.Apply(products)
	for _, c := range catalog.Categories(products) {
		if !containsFold(page.Categories, c) {
			page.Categories = append(page.Categories, c)
		}
	}
	return page
}

// Product returns one work. A missing product is returned as shared.ErrNotFound
// without a notification; other failures notify and return shared.ErrUpstream.
func (s *CatalogService) Product(ctx context.Context, n notification.Notifier, id string) (*catalog.Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, shared.ErrNotFound
	}
	p, err := s.source.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrNotFound
		}
		s.failed(ctx, n, "product", MsgProductLoadFailed, err)
		return nil, shared.ErrUpstream
	}
	return p, nil
}

func (s *CatalogService) failed(ctx context.Context, n notification.Notifier, page, msg string, err error) {
	s.logger.Warn("Failed to load products",
		zap.String("page", page),
		zap.String("request_id", logger.GetRequestID(ctx)),
		zap.Error(err),
	)
	if n != nil {
		n.Error(msg)
	}
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
