package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/artcase/storefront/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingProfileID = errors.New("missing profile_id in claims")
)

// ProfileClaims identifies one browser profile
type ProfileClaims struct {
	jwt.RegisteredClaims
	ProfileID string `json:"profile_id"`
}

// ProfileToken is a signed profile identifier
type ProfileToken struct {
	Value     string
	ProfileID string
	ExpiresAt time.Time
}

// ProfileTokenService issues and validates the browser profile cookie
type ProfileTokenService struct {
	secret     []byte
	issuer     string
	expiration time.Duration
	ephemeral  bool
}

// NewProfileTokenService creates the service. An empty secret is replaced by a
// random per-process secret, so profiles do not outlive a restart.
func NewProfileTokenService(cfg config.ProfileConfig) *ProfileTokenService {
	secret := []byte(cfg.Secret)
	ephemeral := false
	if len(secret) == 0 {
		secret = randomSecret()
		ephemeral = true
	}
	expiration := cfg.Expiration
	if expiration <= 0 {
		expiration = 365 * 24 * time.Hour
	}

	return &ProfileTokenService{
		secret:     secret,
		issuer:     cfg.Issuer,
		expiration: expiration,
		ephemeral:  ephemeral,
	}
}

// Issue creates a token for a fresh profile
func (s *ProfileTokenService) Issue() (*ProfileToken, error) {
	return s.IssueFor(uuid.New().String())
}

// IssueFor creates a token for an existing profile id, extending its lifetime
func (s *ProfileTokenService) IssueFor(profileID string) (*ProfileToken, error) {
	if profileID == "" {
		return nil, ErrMissingProfileID
	}
	now := time.Now()
	claims := &ProfileClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   profileID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		ProfileID: profileID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, err
	}
	return &ProfileToken{Value: signed, ProfileID: profileID, ExpiresAt: now.Add(s.expiration)}, nil
}

// Validate checks signature, issuer and time claims and returns the claims
func (s *ProfileTokenService) Validate(tokenString string) (*ProfileClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &ProfileClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*ProfileClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.ProfileID == "" {
		return nil, ErrMissingProfileID
	}
	return claims, nil
}

// Expiration returns the profile token lifetime
func (s *ProfileTokenService) Expiration() time.Duration {
	return s.expiration
}

// IsEphemeral reports whether the signing secret was generated at startup
func (s *ProfileTokenService) IsEphemeral() bool {
	return s.ephemeral
}

// GetRemainingTTL returns the remaining time until the token expires
func (c *ProfileClaims) GetRemainingTTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	remaining := time.Until(c.ExpiresAt.Time)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func randomSecret() []byte {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return []byte(uuid.New().String() + uuid.New().String())
	}
	return []byte(hex.EncodeToString(buf))
}
