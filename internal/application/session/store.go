// Package session implements the Session Store: the single authenticated
// identity of a browser profile, restored once at startup.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/artcase/storefront/internal/domain/session"
	"github.com/artcase/storefront/internal/domain/shared"
	"github.com/artcase/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// LoginPath is where logout sends the browser
const LoginPath = "/login"

// Navigator performs a full navigation that discards all in-memory state of the profile
type Navigator interface {
	HardNavigate(path string)
}

// State is what subscribers receive after every change
type State struct {
	User    *session.UserSession
	Loading bool
}

// Store tracks the current identity of one browser profile.
// It starts in the loading state; Restore reads the persisted session once and
// clears loading exactly once, whatever the outcome.
type Store struct {
	mu          sync.RWMutex
	user        *session.UserSession
	loading     bool
	restored    bool
	restoreOnce sync.Once

	storage   shared.KeyValueStore
	key       string
	navigator Navigator
	metrics   *telemetry.StorefrontMetrics
	logger    *zap.Logger
	listeners shared.Listeners[State]
}

// StoreOption configures a Store
type StoreOption func(*Store)

// WithNavigator sets the navigator used by Logout
func WithNavigator(n Navigator) StoreOption {
	return func(s *Store) { s.navigator = n }
}

// WithLogger sets the logger used for storage failures
func WithLogger(l *zap.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// WithMetrics records storage failure counts
func WithMetrics(m *telemetry.StorefrontMetrics) StoreOption {
	return func(s *Store) { s.metrics = m }
}

// WithStorageKey overrides the storage key, used to namespace profiles
func WithStorageKey(key string) StoreOption {
	return func(s *Store) { s.key = key }
}

// NewStore creates a store in the loading state. Call Restore to finish startup.
func NewStore(storage shared.KeyValueStore, opts ...StoreOption) *Store {
	s := &Store{
		loading: true,
		storage: storage,
		key:     session.StorageKey,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore reads the persisted session. Only the first call does any work.
// Absent, corrupt or partial data leaves the profile logged out. The read is
// not tied to the caller's cancellation.
func (s *Store) Restore(ctx context.Context) {
	s.restoreOnce.Do(func() {
		user, ok := s.readPersisted(context.WithoutCancel(ctx))

		s.mu.Lock()
		s.user = user
		s.loading = false
		s.restored = ok
		state := s.stateLocked()
		s.mu.Unlock()

		s.listeners.Notify(state)
	})
}

// Restored reports whether Restore got an answer from storage.
// False means the persisted session, if any, is still unknown.
func (s *Store) Restored() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.restored
}

func (s *Store) readPersisted(ctx context.Context) (*session.UserSession, bool) {
	raw, err := s.storage.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, shared.ErrKeyNotFound) {
			return nil, true
		}
		s.storageFailed(ctx, "read", err)
		return nil, false
	}

	var user session.UserSession
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.logger.Debug("Discarding corrupt persisted session", zap.String("key", s.key), zap.Error(err))
		return nil, true
	}
	if err := user.Validate(); err != nil {
		s.logger.Debug("Discarding partial persisted session", zap.String("key", s.key), zap.Error(err))
		return nil, true
	}
	return &user, true
}

// Login replaces the current session with profile and persists it.
// Incomplete profiles are rejected and leave the store untouched.
func (s *Store) Login(ctx context.Context, profile session.UserSession) error {
	if err := profile.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	user := profile
	s.user = &user
	if data, err := json.Marshal(user); err != nil {
		s.storageFailed(ctx, "encode", err)
	} else if err := s.storage.Set(context.WithoutCancel(ctx), s.key, string(data)); err != nil {
		s.storageFailed(ctx, "write", err)
	}
	state := s.stateLocked()
	s.mu.Unlock()

	s.logger.Info("Session started", zap.String("user_id", profile.ID), zap.Bool("is_admin", profile.IsAdmin))
	s.listeners.Notify(state)
	return nil
}

// Logout clears the session, removes it from storage and hard-navigates to the login page
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.user = nil
	if err := s.storage.Remove(context.WithoutCancel(ctx), s.key); err != nil {
		s.storageFailed(ctx, "remove", err)
	}
	state := s.stateLocked()
	s.mu.Unlock()

	s.logger.Info("Session ended")
	s.listeners.Notify(state)

	if s.navigator != nil {
		s.navigator.HardNavigate(LoginPath)
	}
}

// CurrentUser returns the session, if any
func (s *Store) CurrentUser() (session.UserSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return session.UserSession{}, false
	}
	return *s.user, true
}

// IsLoading reports whether startup restore is still in progress
func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Subscribe registers fn to run after every change
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	return s.listeners.Subscribe(fn)
}

func (s *Store) stateLocked() State {
	st := State{Loading: s.loading}
	if s.user != nil {
		u := *s.user
		st.User = &u
	}
	return st
}

func (s *Store) storageFailed(ctx context.Context, op string, err error) {
	s.metrics.RecordStorageFailure(ctx, "session", op)
	s.logger.Warn("Session storage failed, keeping in-memory session",
		zap.String("operation", op),
		zap.String("key", s.key),
		zap.Error(err),
	)
}
