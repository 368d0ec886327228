// Package guard decides whether a navigation into a protected page may proceed.
package guard

import "github.com/artcase/storefront/internal/domain/session"

// Paths the guard redirects to
const (
	LoginPath = "/login"
	HomePath  = "/"
)

// Requirement is the privilege a guarded subtree needs
type Requirement int

const (
	// RequireSession admits any logged-in user
	RequireSession Requirement = iota
	// RequireAdmin admits only users with the admin flag
	RequireAdmin
)

// Outcome is the result of one guard evaluation
type Outcome int

const (
	// Loading means the session is still being restored; render a neutral indicator
	Loading Outcome = iota
	// RedirectLogin sends anonymous visitors to the login page
	RedirectLogin
	// RedirectHome sends under-privileged users to the home page
	RedirectHome
	// Allow renders the guarded page
	Allow
)

func (o Outcome) String() string {
	switch o {
	case Loading:
		return "loading"
	case RedirectLogin:
		return "redirect_login"
	case RedirectHome:
		return "redirect_home"
	case Allow:
		return "allow"
	default:
		return "unknown"
	}
}

// SessionReader is the part of the session store the guard consumes
type SessionReader interface {
	IsLoading() bool
	CurrentUser() (session.UserSession, bool)
}

// Decision is what the caller should do with the navigation
type Decision struct {
	Outcome Outcome
	// Location is set for redirects
	Location string
	// Replace means the redirect replaces the current history entry
	Replace bool
}

// Evaluate runs the guard state machine against the current session.
// It holds no state, so every navigation sees the latest session.
func Evaluate(s SessionReader, req Requirement) Decision {
	if s.IsLoading() {
		return Decision{Outcome: Loading}
	}
	user, ok := s.CurrentUser()
	if !ok {
		return Decision{Outcome: RedirectLogin, Location: LoginPath, Replace: true}
	}
	if req == RequireAdmin && !user.IsAdmin {
		return Decision{Outcome: RedirectHome, Location: HomePath, Replace: true}
	}
	return Decision{Outcome: Allow}
}
