package storefront

import (
	"context"
	"errors"
	"fmt"

	sessionapp "github.com/artcase/storefront/internal/application/session"
	"github.com/artcase/storefront/internal/domain/session"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Navigation targets after authentication
const (
	HomePath  = "/"
	AdminPath = "/admin"
)

// Auth messages shown to the user
const (
	MsgLoginFailed        = "Login failed"
	MsgRegistrationFailed = "Registration failed"
)

// Authenticator is the remote auth service
type Authenticator interface {
	Login(ctx context.Context, email, password string) (session.UserSession, error)
	Register(ctx context.Context, name, email, password string) (session.UserSession, error)
}

// LoginInput is the login form
type LoginInput struct {
	Email    string `json:"email" form:"email" binding:"required,email" validate:"required,email"`
	Password string `json:"password" form:"password" binding:"required" validate:"required"`
}

// RegisterInput is the registration form
type RegisterInput struct {
	Name     string `json:"name" form:"name" binding:"required,min=2" validate:"required,min=2"`
	Email    string `json:"email" form:"email" binding:"required,email" validate:"required,email"`
	Password string `json:"password" form:"password" binding:"required,min=6" validate:"required,min=6"`
}

// AuthResult is a successful authentication
type AuthResult struct {
	User session.UserSession `json:"user"`
	Next string              `json:"next"`
}

// AuthService signs profiles in and out through the remote auth service
type AuthService struct {
	auth     Authenticator
	validate *validator.Validate
	logger   *zap.Logger
}

// NewAuthService creates an auth service
func NewAuthService(auth Authenticator, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{auth: auth, validate: NewValidator(), logger: logger}
}

// Login authenticates and starts the profile session. Admins continue to the
// dashboard, everyone else to the home page. On failure the session is untouched.
func (s *AuthService) Login(ctx context.Context, p *Profile, in LoginInput) (*AuthResult, error) {
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}

	user, err := s.auth.Login(ctx, in.Email, in.Password)
	if err != nil {
		s.logger.Warn("Login rejected", zap.String("profile_id", p.ID), zap.Error(err))
		p.Notifications.Error(failureMessage(err, MsgLoginFailed))
		return nil, err
	}
	if err := s.start(ctx, p, user); err != nil {
		p.Notifications.Error(MsgLoginFailed)
		return nil, err
	}

	p.Notifications.Success(fmt.Sprintf("Welcome back, %s", user.Name))
	next := HomePath
	if user.IsAdmin {
		next = AdminPath
	}
	return &AuthResult{User: user.Redacted(), Next: next}, nil
}

// Register creates an account and starts the profile session
func (s *AuthService) Register(ctx context.Context, p *Profile, in RegisterInput) (*AuthResult, error) {
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}

	user, err := s.auth.Register(ctx, in.Name, in.Email, in.Password)
	if err != nil {
		s.logger.Warn("Registration rejected", zap.String("profile_id", p.ID), zap.Error(err))
		p.Notifications.Error(failureMessage(err, MsgRegistrationFailed))
		return nil, err
	}
	if err := s.start(ctx, p, user); err != nil {
		p.Notifications.Error(MsgRegistrationFailed)
		return nil, err
	}

	p.Notifications.Success(fmt.Sprintf("Welcome to ArtCase, %s!", user.Name))
	return &AuthResult{User: user.Redacted(), Next: HomePath}, nil
}

// Logout ends the session and returns where the browser must go
func (s *AuthService) Logout(ctx context.Context, p *Profile) string {
	p.Session.Logout(ctx)
	return sessionapp.LoginPath
}

func (s *AuthService) start(ctx context.Context, p *Profile, user session.UserSession) error {
	if err := p.Session.Login(ctx, user); err != nil {
		s.logger.Error("Auth service returned an incomplete session",
			zap.String("profile_id", p.ID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// failureMessage prefers the message the remote service sent
func failureMessage(err error, fallback string) string {
	var msg interface{ APIMessage() string }
	if errors.As(err, &msg) && msg.APIMessage() != "" {
		return msg.APIMessage()
	}
	return fallback
}
