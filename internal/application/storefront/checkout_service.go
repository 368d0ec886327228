package storefront

import (
	"context"
	"time"

	"github.com/artcase/storefront/internal/domain/cart"
	"github.com/artcase/storefront/internal/domain/checkout"
	"github.com/artcase/storefront/internal/domain/shared"
	"github.com/artcase/storefront/internal/infrastructure/telemetry"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ThankYouPath is where a successful checkout continues
const ThankYouPath = "/thank-you"

// Checkout messages shown to the user
const (
	MsgOrderPlaced = "Order placed successfully!"
	MsgCartEmpty   = "Your cart is empty"
)

// CheckoutResult is a placed order and the next route
type CheckoutResult struct {
	Order *checkout.Order `json:"order"`
	Next  string          `json:"next"`
}

// CheckoutService places orders with a simulated payment
type CheckoutService struct {
	delay    time.Duration
	validate *validator.Validate
	metrics  *telemetry.StorefrontMetrics
	logger   *zap.Logger
	now      func() time.Time
	sleep    func(time.Duration)
}

// CheckoutOption configures a CheckoutService
type CheckoutOption func(*CheckoutService)

// WithCheckoutMetrics records placed orders
func WithCheckoutMetrics(m *telemetry.StorefrontMetrics) CheckoutOption {
	return func(s *CheckoutService) { s.metrics = m }
}

// WithCheckoutLogger sets the logger
func WithCheckoutLogger(l *zap.Logger) CheckoutOption {
	return func(s *CheckoutService) { s.logger = l }
}

// NewCheckoutService creates a checkout service that waits delay before
// confirming an order
func NewCheckoutService(delay time.Duration, opts ...CheckoutOption) *CheckoutService {
	s := &CheckoutService{
		delay:    delay,
		validate: NewValidator(),
		logger:   zap.NewNop(),
		now:      time.Now,
		sleep:    time.Sleep,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Place validates the form, waits out the simulated payment and records the
// order. The delay has no abort path: a cancelled request still completes the
// order. Invalid input or an empty cart changes nothing.
func (s *CheckoutService) Place(ctx context.Context, p *Profile, details checkout.ShippingDetails) (*CheckoutResult, error) {
	if err := validateStruct(s.validate, details); err != nil {
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)
	ctx, span := telemetry.StartSpan(ctx, "checkout.place")
	defer span.End()

	if p.Cart.Cart().IsEmpty() {
		p.Notifications.Error(MsgCartEmpty)
		return nil, shared.ErrEmptyCart
	}

	if s.delay > 0 {
		s.sleep(s.delay)
	}

	// The order is taken from the cart and the cart emptied in one step
	var order *checkout.Order
	err := p.Cart.Checkout(ctx, func(c *cart.Cart) error {
		placed, err := checkout.PlaceOrder(details, c, s.now())
		if err != nil {
			return err
		}
		order = placed
		p.setLastOrder(order)
		p.Notifications.Success(MsgOrderPlaced)
		return nil
	})
	if err != nil {
		// the cart was emptied while the payment was pending
		telemetry.RecordError(span, err)
		p.Notifications.Error(MsgCartEmpty)
		return nil, err
	}

	s.metrics.RecordOrderPlaced(ctx, order.TotalPrice)
	s.logger.Info("Order placed",
		zap.String("profile_id", p.ID),
		zap.String("order_id", order.ID.String()),
		zap.Int("items", order.TotalItems),
		zap.String("total", order.TotalPrice.StringFixed(2)),
	)
	return &CheckoutResult{Order: order, Next: ThankYouPath}, nil
}
