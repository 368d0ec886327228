package storage

import (
	"context"
	"fmt"

	"github.com/artcase/storefront/internal/domain/shared"
	"github.com/artcase/storefront/internal/infrastructure/config"
	"github.com/artcase/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Backend is an opened key-value store plus its lifecycle hooks
type Backend struct {
	Store  shared.KeyValueStore
	Driver string
	ping   func(ctx context.Context) error
	close  func() error
}

// Ping checks the backend connection; memory always succeeds
func (b *Backend) Ping(ctx context.Context) error {
	if b.ping == nil {
		return nil
	}
	return b.ping(ctx)
}

// Close releases the backend connection
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Factory opens the configured storage backend
type Factory struct {
	cfg                   *config.Config
	logger                *zap.Logger
	allowInMemoryFallback bool
	tracing               telemetry.DBTracingConfig
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory and the SQL logger
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to memory when the configured backend is unavailable
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// WithTracing enables otelgorm on SQL backends
func WithTracing(cfg telemetry.DBTracingConfig) FactoryOption {
	return func(f *Factory) {
		f.tracing = cfg
	}
}

// NewFactory creates a new factory; fallback follows cfg.Storage.AllowFallback unless overridden
func NewFactory(cfg *config.Config, opts ...FactoryOption) *Factory {
	f := &Factory{
		cfg:                   cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: cfg.Storage.AllowFallback,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateMemory creates an in-memory backend.
// WARNING: carts and sessions are lost on restart and not shared across instances.
func (f *Factory) CreateMemory() *Backend {
	return &Backend{Store: NewMemoryStore(), Driver: config.StorageMemory}
}

// CreateSQLite opens the SQLite backend
func (f *Factory) CreateSQLite() (*Backend, error) {
	db, err := OpenSQLite(f.cfg.Storage.SQLitePath, f.databaseOptions())
	if err != nil {
		return nil, err
	}
	return f.sqlBackend(db, config.StorageSQLite), nil
}

// CreatePostgres opens the PostgreSQL backend; the schema comes from cmd/migrate
func (f *Factory) CreatePostgres() (*Backend, error) {
	db, err := OpenPostgres(&f.cfg.Database, f.databaseOptions())
	if err != nil {
		return nil, err
	}
	return f.sqlBackend(db, config.StoragePostgres), nil
}

// CreateRedis opens the Redis backend
func (f *Factory) CreateRedis() (*Backend, error) {
	store, err := NewRedisStore(f.cfg.Redis)
	if err != nil {
		return nil, err
	}
	return &Backend{
		Store:  store,
		Driver: config.StorageRedis,
		ping:   store.Ping,
		close:  store.Close,
	}, nil
}

// Create opens the configured backend, falling back to memory when allowed
func (f *Factory) Create() (*Backend, error) {
	var (
		backend *Backend
		err     error
	)

	switch f.cfg.Storage.Driver {
	case config.StorageMemory:
		f.logger.Warn("Using in-memory storage; carts and sessions will not survive a restart")
		return f.CreateMemory(), nil
	case config.StorageSQLite:
		backend, err = f.CreateSQLite()
	case config.StoragePostgres:
		backend, err = f.CreatePostgres()
	case config.StorageRedis:
		backend, err = f.CreateRedis()
	default:
		return nil, fmt.Errorf("unknown storage driver %q", f.cfg.Storage.Driver)
	}

	if err == nil {
		f.logger.Info("Storage backend ready", zap.String("driver", backend.Driver))
		return backend, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("storage driver %s unavailable: %w", f.cfg.Storage.Driver, err)
	}

	f.logger.Warn("Storage backend unavailable, falling back to in-memory storage. "+
		"Carts and sessions will not survive a restart.",
		zap.String("driver", f.cfg.Storage.Driver),
		zap.Error(err),
	)
	return f.CreateMemory(), nil
}

func (f *Factory) databaseOptions() DatabaseOptions {
	return DatabaseOptions{
		Logger:   f.logger,
		LogLevel: f.cfg.Log.Level,
		Tracing:  f.tracing,
	}
}

func (f *Factory) sqlBackend(db *Database, driver string) *Backend {
	return &Backend{
		Store:  NewGormStore(db.DB),
		Driver: driver,
		ping:   func(context.Context) error { return db.Ping() },
		close:  db.Close,
	}
}
