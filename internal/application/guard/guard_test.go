package guard

import (
	"testing"

	"github.com/artcase/storefront/internal/domain/session"
	"github.com/stretchr/testify/assert"
)

type fakeSession struct {
	loading bool
	user    *session.UserSession
}

func (f *fakeSession) IsLoading() bool { return f.loading }

func (f *fakeSession) CurrentUser() (session.UserSession, bool) {
	if f.user == nil {
		return session.UserSession{}, false
	}
	return *f.user, true
}

func TestEvaluate(t *testing.T) {
	customer := &session.UserSession{ID: "u2", Name: "Bo", Email: "bo@example.com", Token: "t"}
	admin := &session.UserSession{ID: "u1", Name: "Ada", Email: "ada@example.com", Token: "t", IsAdmin: true}

	tests := []struct {
		name    string
		session *fakeSession
		req     Requirement
		want    Decision
	}{
		{
			name:    "loading issues no redirect",
			session: &fakeSession{loading: true, user: admin},
			req:     RequireAdmin,
			want:    Decision{Outcome: Loading},
		},
		{
			name:    "anonymous to session page",
			session: &fakeSession{},
			req:     RequireSession,
			want:    Decision{Outcome: RedirectLogin, Location: "/login", Replace: true},
		},
		{
			name:    "anonymous to admin page",
			session: &fakeSession{},
			req:     RequireAdmin,
			want:    Decision{Outcome: RedirectLogin, Location: "/login", Replace: true},
		},
		{
			name:    "customer to admin page",
			session: &fakeSession{user: customer},
			req:     RequireAdmin,
			want:    Decision{Outcome: RedirectHome, Location: "/", Replace: true},
		},
		{
			name:    "customer to session page",
			session: &fakeSession{user: customer},
			req:     RequireSession,
			want:    Decision{Outcome: Allow},
		},
		{
			name:    "admin to admin page",
			session: &fakeSession{user: admin},
			req:     RequireAdmin,
			want:    Decision{Outcome: Allow},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.session, tt.req))
		})
	}
}

func TestEvaluate_NotCached(t *testing.T) {
	s := &fakeSession{user: &session.UserSession{ID: "u1", Name: "Ada", Email: "a@b.c", Token: "t"}}
	assert.Equal(t, Allow, Evaluate(s, RequireSession).Outcome)

	s.user = nil
	assert.Equal(t, RedirectLogin, Evaluate(s, RequireSession).Outcome)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "loading", Loading.String())
	assert.Equal(t, "allow", Allow.String())
	assert.Equal(t, "unknown", Outcome(42).String())
}
