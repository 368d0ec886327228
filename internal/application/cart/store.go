// Package cart implements the Cart Store: the authoritative in-memory and
// persisted cart of one browser profile.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/artcase/storefront/internal/application/notification"
	"github.com/artcase/storefront/internal/domain/cart"
	"github.com/artcase/storefront/internal/domain/shared"
	"github.com/artcase/storefront/internal/infrastructure/logger"
	"github.com/artcase/storefront/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Snapshot is the cart state handed to subscribers after a mutation
type Snapshot struct {
	Items         []cart.LineItem `json:"items"`
	TotalQuantity int             `json:"totalQuantity"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
}

// Store owns the cart of one browser profile.
// Every committed mutation is persisted under the cart storage key and then
// announced to subscribers. Storage failures never fail an operation; the
// in-memory cart stays the source of truth.
//
// Until the persisted cart has been read, nothing is written: a cart built
// while storage was unreadable must not replace the stored one.
type Store struct {
	mu        sync.Mutex
	cart      *cart.Cart
	restored  bool
	storage   shared.KeyValueStore
	key       string
	notifier  notification.Notifier
	metrics   *telemetry.StorefrontMetrics
	logger    *zap.Logger
	listeners shared.Listeners[Snapshot]
}

// StoreOption configures a Store
type StoreOption func(*Store)

// WithNotifier sets where add/clear notifications go
func WithNotifier(n notification.Notifier) StoreOption {
	return func(s *Store) { s.notifier = n }
}

// WithLogger sets the logger used for storage failures
func WithLogger(l *zap.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// WithMetrics records mutation and storage failure counts
func WithMetrics(m *telemetry.StorefrontMetrics) StoreOption {
	return func(s *Store) { s.metrics = m }
}

// WithStorageKey overrides the storage key, used to namespace profiles
func WithStorageKey(key string) StoreOption {
	return func(s *Store) { s.key = key }
}

// NewStore creates the store and restores the persisted cart.
// Absent or corrupt data yields an empty cart.
func NewStore(ctx context.Context, storage shared.KeyValueStore, opts ...StoreOption) *Store {
	s := &Store{
		cart:    &cart.Cart{},
		storage: storage,
		key:     cart.StorageKey,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.restore(ctx)
	return s
}

func (s *Store) restore(ctx context.Context) {
	s.restored = s.load(context.WithoutCancel(ctx))
}

// load reads the persisted cart and reports whether storage answered.
// Absent or corrupt data counts as an answer and leaves the cart as is.
func (s *Store) load(ctx context.Context) bool {
	raw, err := s.storage.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, shared.ErrKeyNotFound) {
			return true
		}
		s.storageFailed(ctx, "read", err)
		return false
	}

	var items []cart.LineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.log(ctx).Debug("Discarding corrupt persisted cart", zap.String("key", s.key), zap.Error(err))
		return true
	}
	s.cart = cart.New(items)
	return true
}

// Restored reports whether the persisted cart has been read
func (s *Store) Restored() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restored
}

// AddToCart increments the line for p.ID or appends a new line with quantity 1
func (s *Store) AddToCart(ctx context.Context, p cart.Product) cart.AddOutcome {
	ctx, span := telemetry.StartSpan(ctx, "cart.add", attribute.String("product_id", p.ID))
	defer span.End()

	var outcome cart.AddOutcome
	s.mutate(ctx, "add", func(c *cart.Cart) bool {
		outcome = c.AddItem(p)
		return true
	})

	if s.notifier != nil {
		if outcome == cart.Increased {
			s.notifier.Info(fmt.Sprintf("Increased quantity of %s", p.Title))
		} else {
			s.notifier.Success(fmt.Sprintf("%s added to cart", p.Title))
		}
	}
	return outcome
}

// DecreaseQuantity decrements the line's quantity, removing it at 1. Absent ids are a no-op.
func (s *Store) DecreaseQuantity(ctx context.Context, id string) {
	s.mutate(ctx, "decrease", func(c *cart.Cart) bool {
		return c.DecreaseQuantity(id)
	})
}

// RemoveFromCart removes the line with id if present
func (s *Store) RemoveFromCart(ctx context.Context, id string) {
	s.mutate(ctx, "remove", func(c *cart.Cart) bool {
		return c.Remove(id)
	})
}

// ClearCart empties the cart
func (s *Store) ClearCart(ctx context.Context) {
	s.mutate(ctx, "clear", func(c *cart.Cart) bool {
		c.Clear()
		return true
	})
	if s.notifier != nil {
		s.notifier.Info("Cart cleared")
	}
}

// Checkout hands a copy of the cart to place and, when place succeeds, empties
// the cart in the same critical section. Items added concurrently land either
// in the copy or in the emptied cart and none is lost.
func (s *Store) Checkout(ctx context.Context, place func(*cart.Cart) error) error {
	var err error
	s.mutate(ctx, "checkout", func(c *cart.Cart) bool {
		if err = place(cart.New(c.Items())); err != nil {
			return false
		}
		c.Clear()
		return true
	})
	if err == nil && s.notifier != nil {
		s.notifier.Info("Cart cleared")
	}
	return err
}

// Items returns the current line items in cart order
func (s *Store) Items() []cart.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Items()
}

// TotalQuantity sums the quantities of all lines
func (s *Store) TotalQuantity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.TotalQuantity()
}

// TotalPrice sums price * quantity over all lines
func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.TotalPrice()
}

// Snapshot returns items and totals read under one lock
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Cart returns a detached copy of the domain cart
func (s *Store) Cart() *cart.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cart.New(s.cart.Items())
}

// Subscribe registers fn to run after every committed mutation
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	return s.listeners.Subscribe(fn)
}

// mutate applies fn under the lock, persists when fn reports a change, then notifies subscribers.
// Writes happen under the lock so the last durable write always reflects the latest state.
// While the persisted cart is still unread, the read is retried first and the change stays in memory
// if it fails again.
func (s *Store) mutate(ctx context.Context, op string, fn func(*cart.Cart) bool) {
	s.mu.Lock()
	if !s.restored {
		s.restored = s.load(context.WithoutCancel(ctx))
	}
	if !fn(s.cart) {
		s.mu.Unlock()
		return
	}
	if s.restored {
		s.persistLocked(ctx)
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.metrics.RecordCartMutation(ctx, op)
	s.listeners.Notify(snap)
}

func (s *Store) persistLocked(ctx context.Context) {
	data, err := json.Marshal(s.cart.Items())
	if err != nil {
		s.storageFailed(ctx, "encode", err)
		return
	}
	// The write must not be abandoned when the triggering request goes away.
	if err := s.storage.Set(context.WithoutCancel(ctx), s.key, string(data)); err != nil {
		s.storageFailed(ctx, "write", err)
	}
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Items:         s.cart.Items(),
		TotalQuantity: s.cart.TotalQuantity(),
		TotalPrice:    s.cart.TotalPrice(),
	}
}

func (s *Store) storageFailed(ctx context.Context, op string, err error) {
	s.metrics.RecordStorageFailure(ctx, "cart", op)
	s.log(ctx).Warn("Cart storage failed, keeping in-memory cart",
		zap.String("operation", op),
		zap.String("key", s.key),
		zap.Error(err),
	)
}

func (s *Store) log(ctx context.Context) *zap.Logger {
	if id := logger.GetRequestID(ctx); id != "" {
		return s.logger.With(zap.String("request_id", id))
	}
	return s.logger
}
