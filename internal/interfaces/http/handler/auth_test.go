package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/artcase/storefront/internal/application/storefront"
	"github.com/artcase/storefront/internal/domain/session"
	"github.com/artcase/storefront/internal/infrastructure/artapi"
	"github.com/artcase/storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAuthenticator struct {
	mock.Mock
}

func (m *mockAuthenticator) Login(ctx context.Context, email, password string) (session.UserSession, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(session.UserSession), args.Error(1)
}

func (m *mockAuthenticator) Register(ctx context.Context, name, email, password string) (session.UserSession, error) {
	args := m.Called(ctx, name, email, password)
	return args.Get(0).(session.UserSession), args.Error(1)
}

func adminUser() session.UserSession {
	return session.UserSession{ID: "a1", Name: "Ada", Email: "ada@example.com", IsAdmin: true, Token: "admin-token"}
}

func customerUser() session.UserSession {
	return session.UserSession{ID: "c1", Name: "Carl", Email: "carl@example.com", Token: "customer-token"}
}

func authRouter(p *storefront.Profile, auth storefront.Authenticator) *gin.Engine {
	h := NewAuthHandler(storefront.NewAuthService(auth, nil))
	router := gin.New()
	router.Use(withProfile(p))
	router.GET("/login", h.LoginPage)
	router.GET("/register", h.RegisterPage)
	router.POST("/login", h.Login)
	router.POST("/register", h.Register)
	router.POST("/logout", h.Logout)
	router.GET("/me", h.Me)
	router.GET("/notifications", h.Notifications)
	return router
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("admin", func(t *testing.T) {
		p := testProfile(t)
		auth := new(mockAuthenticator)
		auth.On("Login", mock.Anything, "ada@example.com", "secret").Return(adminUser(), nil)

		w := httptest.NewRecorder()
		authRouter(p, auth).ServeHTTP(w, jsonRequest(http.MethodPost, "/login", `{"email":"ada@example.com","password":"secret"}`))

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var res storefront.AuthResult
		decodeData(t, w, &res)
		assert.Equal(t, storefront.AdminPath, res.Next)
		assert.Equal(t, "Ada", res.User.Name)
		assert.Empty(t, res.User.Token)
		assert.NotContains(t, w.Body.String(), "admin-token")

		user, ok := p.Session.CurrentUser()
		require.True(t, ok)
		assert.True(t, user.IsAdmin)
	})

	t.Run("form post", func(t *testing.T) {
		p := testProfile(t)
		auth := new(mockAuthenticator)
		auth.On("Login", mock.Anything, "carl@example.com", "secret").Return(customerUser(), nil)

		form := url.Values{"email": {"carl@example.com"}, "password": {"secret"}}
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		authRouter(p, auth).ServeHTTP(w, req)

		var res storefront.AuthResult
		decodeData(t, w, &res)
		assert.Equal(t, storefront.HomePath, res.Next)
	})

	t.Run("rejected credentials", func(t *testing.T) {
		p := testProfile(t)
		auth := new(mockAuthenticator)
		auth.On("Login", mock.Anything, mock.Anything, mock.Anything).
			Return(session.UserSession{}, &artapi.APIError{StatusCode: http.StatusUnauthorized, Message: "Invalid email or password"})

		w := httptest.NewRecorder()
		authRouter(p, auth).ServeHTTP(w, jsonRequest(http.MethodPost, "/login", `{"email":"ada@example.com","password":"wrong"}`))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		env := decode(t, w)
		assert.Equal(t, dto.ErrCodeUnauthorized, env.Error.Code)
		assert.Equal(t, "Invalid email or password", env.Error.Message)
		_, ok := p.Session.CurrentUser()
		assert.False(t, ok)
	})

	t.Run("invalid form", func(t *testing.T) {
		auth := new(mockAuthenticator)
		w := httptest.NewRecorder()
		authRouter(testProfile(t), auth).ServeHTTP(w, jsonRequest(http.MethodPost, "/login", `{"email":"nope"}`))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decode(t, w)
		assert.Equal(t, dto.ErrCodeValidation, env.Error.Code)
		fields := make([]string, 0, len(env.Error.Details))
		for _, d := range env.Error.Details {
			fields = append(fields, d.Field)
		}
		assert.ElementsMatch(t, []string{"email", "password"}, fields)
		auth.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAuthHandler_Register(t *testing.T) {
	p := testProfile(t)
	auth := new(mockAuthenticator)
	auth.On("Register", mock.Anything, "Carl", "carl@example.com", "secret1").Return(customerUser(), nil)

	w := httptest.NewRecorder()
	authRouter(p, auth).ServeHTTP(w, jsonRequest(http.MethodPost, "/register",
		`{"name":"Carl","email":"carl@example.com","password":"secret1"}`))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res storefront.AuthResult
	decodeData(t, w, &res)
	assert.Equal(t, storefront.HomePath, res.Next)
	auth.AssertExpectations(t)
}

func TestAuthHandler_Logout(t *testing.T) {
	p := testProfile(t)
	require.NoError(t, p.Session.Login(context.Background(), adminUser()))

	w := httptest.NewRecorder()
	authRouter(p, new(mockAuthenticator)).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/logout", nil))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	_, ok := p.Session.CurrentUser()
	assert.False(t, ok)
}

func TestAuthHandler_Me(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		w := httptest.NewRecorder()
		authRouter(testProfile(t), nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

		var resp MeResponse
		decodeData(t, w, &resp)
		assert.Nil(t, resp.User)
		assert.False(t, resp.Loading)
	})

	t.Run("signed in", func(t *testing.T) {
		p := testProfile(t)
		require.NoError(t, p.Session.Login(context.Background(), customerUser()))

		w := httptest.NewRecorder()
		authRouter(p, nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

		var resp MeResponse
		decodeData(t, w, &resp)
		require.NotNil(t, resp.User)
		assert.Equal(t, "carl@example.com", resp.User.Email)
		assert.Empty(t, resp.User.Token)
	})
}

func TestAuthHandler_Notifications(t *testing.T) {
	p := testProfile(t)
	p.Notifications.Success("Welcome back, Ada")
	router := authRouter(p, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/notifications", nil))
	var first []map[string]any
	decodeData(t, w, &first)
	require.Len(t, first, 1)
	assert.Equal(t, "success", first[0]["level"])
	assert.Equal(t, "Welcome back, Ada", first[0]["message"])

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/notifications", nil))
	var second []map[string]any
	decodeData(t, w, &second)
	assert.Empty(t, second)
}

func TestAuthHandler_Pages(t *testing.T) {
	w := httptest.NewRecorder()
	authRouter(testProfile(t), nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login?redirect=/checkout", nil))

	var page AuthPage
	decodeData(t, w, &page)
	assert.Equal(t, AuthPage{Mode: "login", Action: "/login", Redirect: "/checkout"}, page)
}
