package session

import (
	"strings"

	"github.com/artcase/storefront/internal/domain/shared"
)

// StorageKey is the fixed storage key the serialized session lives under
const StorageKey = "artcase_user"

// UserSession is the authenticated identity issued by the auth service.
// Field names on the wire follow the auth service response.
type UserSession struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	Token   string `json:"token"`
}

// Validate checks that every identity field is populated.
// A session is either complete or absent; partial sessions are never stored or restored.
func (s UserSession) Validate() error {
	missing := make([]string, 0, 4)
	if strings.TrimSpace(s.ID) == "" {
		missing = append(missing, "_id")
	}
	if strings.TrimSpace(s.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(s.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(s.Token) == "" {
		missing = append(missing, "token")
	}
	if len(missing) > 0 {
		return shared.NewDomainError("INVALID_SESSION", "Session is missing fields: "+strings.Join(missing, ", "))
	}
	return nil
}

// Redacted returns a copy safe to expose to the browser, with the bearer token removed
func (s UserSession) Redacted() UserSession {
	s.Token = ""
	return s
}
