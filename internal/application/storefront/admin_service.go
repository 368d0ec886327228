package storefront

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/artcase/storefront/internal/domain/catalog"
	"github.com/artcase/storefront/internal/domain/shared"
	"github.com/artcase/storefront/internal/infrastructure/artapi"
	"github.com/artcase/storefront/internal/infrastructure/telemetry"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Admin messages shown to the user
const (
	MsgImageUploadFailed = "Bulk image upload failed"
	MsgBulkUploadFailed  = "Bulk upload failed"
)

// Publisher is the remote catalog write side
type Publisher interface {
	UploadImages(ctx context.Context, token string, files []artapi.Upload) ([]string, error)
	CreateProduct(ctx context.Context, token string, p artapi.NewProduct) error
}

// Artwork is one entry of the bulk upload form
type Artwork struct {
	Title       string          `json:"title" validate:"required,max=200"`
	Description string          `json:"description" validate:"max=2000"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category" validate:"max=50"`
	Image       artapi.Upload   `json:"-"`
}

// PublishInput is the bulk upload form
type PublishInput struct {
	Artworks []Artwork `json:"artworks" validate:"required,min=1,max=50,dive"`
}

// PublishResult reports a completed bulk upload
type PublishResult struct {
	Published int      `json:"published"`
	ImageURLs []string `json:"imageUrls"`
}

// AdminService publishes artworks: one bulk image upload, then one product
// creation per artwork, run concurrently.
type AdminService struct {
	publisher   Publisher
	validate    *validator.Validate
	concurrency int
	logger      *zap.Logger
}

// NewAdminService creates an admin service. concurrency <= 0 means 4.
func NewAdminService(publisher Publisher, concurrency int, logger *zap.Logger) *AdminService {
	if concurrency <= 0 {
		concurrency = 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{
		publisher:   publisher,
		validate:    NewValidator(),
		concurrency: concurrency,
		logger:      logger,
	}
}

// NormalizeCategory title-cases a category; an empty one becomes the default
func NormalizeCategory(category string) string {
	category = strings.Join(strings.Fields(category), " ")
	if category == "" {
		return catalog.DefaultCategory
	}
	// a Caser keeps state, so it is not shared between goroutines
	return cases.Title(language.English).String(category)
}

// Publish uploads and creates every artwork. It requires an admin session.
func (s *AdminService) Publish(ctx context.Context, p *Profile, in PublishInput) (*PublishResult, error) {
	user, ok := p.Session.CurrentUser()
	if !ok {
		return nil, shared.ErrUnauthorized
	}
	if !user.IsAdmin {
		return nil, shared.ErrForbidden
	}
	if err := s.validateInput(in); err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, "admin.publish", attribute.Int("artworks", len(in.Artworks)))
	defer span.End()

	files := make([]artapi.Upload, len(in.Artworks))
	for i, a := range in.Artworks {
		files[i] = a.Image
	}
	urls, err := s.publisher.UploadImages(ctx, user.Token, files)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Warn("Bulk image upload failed", zap.String("profile_id", p.ID), zap.Error(err))
		var apiErr *artapi.APIError
		if errors.As(err, &apiErr) {
			p.Notifications.Error(MsgImageUploadFailed)
		} else {
			p.Notifications.Error(MsgBulkUploadFailed)
		}
		return nil, err
	}

	var created atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, a := range in.Artworks {
		product := artapi.NewProduct{
			Title:       strings.TrimSpace(a.Title),
			Description: strings.TrimSpace(a.Description),
			Price:       a.Price,
			Category:    NormalizeCategory(a.Category),
			Image:       urls[i],
		}
		g.Go(func() error {
			if err := s.publisher.CreateProduct(gctx, user.Token, product); err != nil {
				return fmt.Errorf("creating %q: %w", product.Title, err)
			}
			created.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		telemetry.RecordError(span, err)
		s.logger.Warn("Bulk product creation failed",
			zap.String("profile_id", p.ID),
			zap.Int32("created", created.Load()),
			zap.Int("requested", len(in.Artworks)),
			zap.Error(err),
		)
		p.Notifications.Error(failureMessage(err, MsgBulkUploadFailed))
		return nil, err
	}

	n := len(in.Artworks)
	s.logger.Info("Artworks published", zap.String("profile_id", p.ID), zap.Int("count", n))
	p.Notifications.Success(fmt.Sprintf("%d masterpieces published!", n))
	return &PublishResult{Published: n, ImageURLs: urls}, nil
}

func (s *AdminService) validateInput(in PublishInput) error {
	err := validateStruct(s.validate, in)
	var verr *ValidationError
	if err != nil && !errors.As(err, &verr) {
		return err
	}
	if verr == nil {
		verr = &ValidationError{}
	}

	for i, a := range in.Artworks {
		if a.Price.IsNegative() {
			verr.Fields = append(verr.Fields, FieldError{
				Field:   fmt.Sprintf("artworks[%d].price", i),
				Message: "Must be greater than or equal to 0",
			})
		}
		if a.Image.Content == nil {
			verr.Fields = append(verr.Fields, FieldError{
				Field:   fmt.Sprintf("artworks[%d].image", i),
				Message: "This field is required",
			})
		}
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}
