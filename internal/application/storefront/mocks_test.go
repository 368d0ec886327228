package storefront

import (
	"context"
	"testing"

	"github.com/artcase/storefront/internal/application/notification"
	"github.com/artcase/storefront/internal/domain/catalog"
	"github.com/artcase/storefront/internal/domain/session"
	"github.com/artcase/storefront/internal/infrastructure/artapi"
	"github.com/artcase/storefront/internal/infrastructure/storage"
	"github.com/stretchr/testify/mock"
)

// MockProductSource is a mock implementation of ProductSource
type MockProductSource struct {
	mock.Mock
}

func (m *MockProductSource) ListProducts(ctx context.Context, filter catalog.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductSource) GetProduct(ctx context.Context, id string) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

// MockAuthenticator is a mock implementation of Authenticator
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context, email, password string) (session.UserSession, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(session.UserSession), args.Error(1)
}

func (m *MockAuthenticator) Register(ctx context.Context, name, email, password string) (session.UserSession, error) {
	args := m.Called(ctx, name, email, password)
	return args.Get(0).(session.UserSession), args.Error(1)
}

// MockPublisher is a mock implementation of Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) UploadImages(ctx context.Context, token string, files []artapi.Upload) ([]string, error) {
	args := m.Called(ctx, token, files)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockPublisher) CreateProduct(ctx context.Context, token string, p artapi.NewProduct) error {
	return m.Called(ctx, token, p).Error(0)
}

func newTestProfile(t *testing.T) *Profile {
	t.Helper()
	return NewRegistry(storage.NewMemoryStore()).Get(context.Background(), "p1")
}

func messages(q *notification.Queue) []string {
	var out []string
	for _, n := range q.Drain() {
		out = append(out, string(n.Level)+": "+n.Message)
	}
	return out
}

func adminSession() session.UserSession {
	return session.UserSession{ID: "a1", Name: "Ada", Email: "ada@example.com", IsAdmin: true, Token: "admin-token"}
}

func customerSession() session.UserSession {
	return session.UserSession{ID: "c1", Name: "Carl", Email: "carl@example.com", Token: "customer-token"}
}
