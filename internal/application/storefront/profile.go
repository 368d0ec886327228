// Package storefront holds the use cases behind the page surface: the
// per-profile registry and the catalog, auth, checkout and admin services.
package storefront

import (
	"context"
	"sync"
	"time"

	cartapp "github.com/artcase/storefront/internal/application/cart"
	"github.com/artcase/storefront/internal/application/notification"
	sessionapp "github.com/artcase/storefront/internal/application/session"
	"github.com/artcase/storefront/internal/domain/checkout"
	"github.com/artcase/storefront/internal/domain/shared"
	"github.com/artcase/storefront/internal/infrastructure/storage"
	"github.com/artcase/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Profile is the state of one browser profile
type Profile struct {
	ID            string
	Cart          *cartapp.Store
	Session       *sessionapp.Store
	Notifications *notification.Queue

	mu        sync.Mutex
	lastOrder *checkout.Order
	lastSeen  time.Time
}

// LastOrder returns the most recent order placed by this profile
func (p *Profile) LastOrder() (*checkout.Order, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastOrder, p.lastOrder != nil
}

func (p *Profile) setLastOrder(o *checkout.Order) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastOrder = o
}

func (p *Profile) touch(now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastSeen = now
}

func (p *Profile) idleSince() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSeen
}

// Registry builds one Profile per browser profile on first use.
// Construction is serialized per profile id and runs outside the registry
// lock; an evicted profile is rebuilt from storage on the next Get. A profile
// whose stored state could not be read is served but not kept, so the next
// request reads storage again.
type Registry struct {
	mu       sync.Mutex
	profiles map[string]*Profile
	building singleflight.Group

	storage  shared.KeyValueStore
	metrics  *telemetry.StorefrontMetrics
	logger   *zap.Logger
	capacity int
	now      func() time.Time
}

// RegistryOption configures a Registry
type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger handed to every store
func WithRegistryLogger(l *zap.Logger) RegistryOption {
	return func(r *Registry) { r.logger = l }
}

// WithRegistryMetrics sets the metrics handed to every store
func WithRegistryMetrics(m *telemetry.StorefrontMetrics) RegistryOption {
	return func(r *Registry) { r.metrics = m }
}

// WithNotificationCapacity bounds each profile's notification queue
func WithNotificationCapacity(n int) RegistryOption {
	return func(r *Registry) { r.capacity = n }
}

// NewRegistry creates a registry over the shared durable storage
func NewRegistry(storage shared.KeyValueStore, opts ...RegistryOption) *Registry {
	r := &Registry{
		profiles: make(map[string]*Profile),
		storage:  storage,
		logger:   zap.NewNop(),
		capacity: notification.DefaultCapacity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the profile, constructing and restoring it if needed
func (r *Registry) Get(ctx context.Context, profileID string) *Profile {
	if p, ok := r.lookup(profileID); ok {
		return p
	}

	v, _, _ := r.building.Do(profileID, func() (interface{}, error) {
		if p, ok := r.lookup(profileID); ok {
			return p, nil
		}
		// The profile outlives the request that triggered it
		p := r.build(context.WithoutCancel(ctx), profileID)
		if !p.Cart.Restored() || !p.Session.Restored() {
			r.logger.Warn("Profile storage unreadable, profile not cached", zap.String("profile_id", profileID))
			return p, nil
		}

		r.mu.Lock()
		r.profiles[profileID] = p
		r.mu.Unlock()
		return p, nil
	})
	return v.(*Profile)
}

func (r *Registry) lookup(profileID string) (*Profile, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[profileID]
	if ok {
		p.touch(r.now())
	}
	return p, ok
}

func (r *Registry) build(ctx context.Context, profileID string) *Profile {
	log := r.logger.With(zap.String("profile_id", profileID))
	kv := storage.NewNamespaced(r.storage, profileID)
	queue := notification.NewQueue(r.capacity, log)

	p := &Profile{
		ID:            profileID,
		Notifications: queue,
		lastSeen:      r.now(),
	}
	p.Cart = cartapp.NewStore(ctx, kv,
		cartapp.WithNotifier(queue),
		cartapp.WithLogger(log),
		cartapp.WithMetrics(r.metrics),
	)
	p.Session = sessionapp.NewStore(kv,
		sessionapp.WithNavigator(&profileNavigator{registry: r, profileID: profileID, logger: log}),
		sessionapp.WithLogger(log),
		sessionapp.WithMetrics(r.metrics),
	)
	p.Session.Restore(ctx)

	log.Debug("Profile initialized", zap.Int("cart_items", p.Cart.TotalQuantity()))
	return p
}

// Evict drops the in-memory profile; durable storage is left untouched
func (r *Registry) Evict(profileID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.profiles, profileID)
}

// EvictIdle drops profiles not used for maxIdle and returns how many were dropped
func (r *Registry) EvictIdle(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-maxIdle)
	evicted := 0
	for id, p := range r.profiles {
		if p.idleSince().Before(cutoff) {
			delete(r.profiles, id)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of live profiles
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.profiles)
}

// profileNavigator realizes a hard navigation by discarding the profile's
// in-memory state; the HTTP layer performs the actual redirect.
type profileNavigator struct {
	registry  *Registry
	profileID string
	logger    *zap.Logger
}

func (n *profileNavigator) HardNavigate(path string) {
	n.registry.Evict(n.profileID)
	n.logger.Debug("Profile reset by hard navigation", zap.String("path", path))
}
