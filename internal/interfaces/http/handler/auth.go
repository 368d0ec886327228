package handler

import (
	sessionapp "github.com/artcase/storefront/internal/application/session"
	"github.com/artcase/storefront/internal/application/storefront"
	"github.com/artcase/storefront/internal/domain/session"
	"github.com/gin-gonic/gin"
)

// AuthPage is the data behind the login and register pages
type AuthPage struct {
	Mode     string `json:"mode"`
	Action   string `json:"action"`
	Redirect string `json:"redirect,omitempty"`
}

// MeResponse describes the profile's session
type MeResponse struct {
	User    *session.UserSession `json:"user"`
	Loading bool                 `json:"loading"`
}

// AuthHandler signs the profile in and out
type AuthHandler struct {
	BaseHandler
	auth *storefront.AuthService
}

// NewAuthHandler creates an auth handler
func NewAuthHandler(auth *storefront.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// LoginPage describes the login form
func (h *AuthHandler) LoginPage(c *gin.Context) {
	h.Success(c, AuthPage{Mode: "login", Action: sessionapp.LoginPath, Redirect: c.Query("redirect")})
}

// RegisterPage describes the registration form
func (h *AuthHandler) RegisterPage(c *gin.Context) {
	h.Success(c, AuthPage{Mode: "register", Action: "/register"})
}

// Login authenticates with email and password
func (h *AuthHandler) Login(c *gin.Context) {
	p, ok := h.profile(c)
	if !ok {
		return
	}

	var req storefront.LoginInput
	if !h.bind(c, &req) {
		return
	}

	res, err := h.auth.Login(c.Request.Context(), p, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// Register creates an account and signs it in
func (h *AuthHandler) Register(c *gin.Context) {
	p, ok := h.profile(c)
	if !ok {
		return
	}

	var req storefront.RegisterInput
	if !h.bind(c, &req) {
		return
	}

	res, err := h.auth.Register(c.Request.Context(), p, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, res)
}

// Logout ends the session. The profile's in-memory state is discarded, so the
// browser is sent to the login page with a fresh page load.
func (h *AuthHandler) Logout(c *gin.Context) {
	p, ok := h.profile(c)
	if !ok {
		return
	}
	h.Redirect(c, h.auth.Logout(c.Request.Context(), p), true)
}

// Me returns the signed-in user without the bearer token, or null
func (h *AuthHandler) Me(c *gin.Context) {
	p, ok := h.profile(c)
	if !ok {
		return
	}
	resp := MeResponse{Loading: p.Session.IsLoading()}
	if user, ok := p.Session.CurrentUser(); ok {
		redacted := user.Redacted()
		resp.User = &redacted
	}
	h.Success(c, resp)
}

// Notifications drains the profile's pending toasts
func (h *AuthHandler) Notifications(c *gin.Context) {
	p, ok := h.profile(c)
	if !ok {
		return
	}
	h.Success(c, p.Notifications.Drain())
}
