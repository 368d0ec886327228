package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/artcase/storefront/internal/application/guard"
	sessionapp "github.com/artcase/storefront/internal/application/session"
	"github.com/artcase/storefront/internal/application/storefront"
	"github.com/artcase/storefront/internal/domain/session"
	"github.com/artcase/storefront/internal/infrastructure/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func guardRouter(p *storefront.Profile, req guard.Requirement) *gin.Engine {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if p != nil {
			c.Set(ProfileKey, p)
		}
	})
	router.GET("/protected", Guard(req), func(c *gin.Context) {
		c.String(http.StatusOK, "secret")
	})
	return router
}

func restoredProfile(t *testing.T, user *session.UserSession) *storefront.Profile {
	t.Helper()
	ctx := context.Background()
	store := sessionapp.NewStore(storage.NewMemoryStore())
	store.Restore(ctx)
	if user != nil {
		require.NoError(t, store.Login(ctx, *user))
	}
	return &storefront.Profile{ID: "p1", Session: store}
}

func decodeRedirect(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	return data
}

func TestGuard(t *testing.T) {
	customer := &session.UserSession{ID: "u2", Name: "Carl", Email: "carl@example.com", Token: "t", IsAdmin: false}
	admin := &session.UserSession{ID: "u1", Name: "Ada", Email: "ada@example.com", Token: "t", IsAdmin: true}

	t.Run("loading", func(t *testing.T) {
		p := &storefront.Profile{ID: "p1", Session: sessionapp.NewStore(storage.NewMemoryStore())}
		w := httptest.NewRecorder()
		guardRouter(p, guard.RequireSession).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.JSONEq(t, `{"success":true,"data":{"loading":true}}`, w.Body.String())
	})

	t.Run("anonymous goes to login", func(t *testing.T) {
		w := httptest.NewRecorder()
		guardRouter(restoredProfile(t, nil), guard.RequireAdmin).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
		data := decodeRedirect(t, w)
		assert.Equal(t, "/login", data["location"])
		assert.Equal(t, true, data["replace"])
	})

	t.Run("customer on an admin page goes home", func(t *testing.T) {
		w := httptest.NewRecorder()
		guardRouter(restoredProfile(t, customer), guard.RequireAdmin).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
	})

	t.Run("customer on a session page", func(t *testing.T) {
		w := httptest.NewRecorder()
		guardRouter(restoredProfile(t, customer), guard.RequireSession).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "secret", w.Body.String())
	})

	t.Run("admin", func(t *testing.T) {
		w := httptest.NewRecorder()
		guardRouter(restoredProfile(t, admin), guard.RequireAdmin).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing profile is a server error", func(t *testing.T) {
		w := httptest.NewRecorder()
		guardRouter(nil, guard.RequireSession).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
