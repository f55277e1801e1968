// package sessions implements the per-user-agent token store backing the
// request pipeline.
//
// A [Session] holds the access/refresh token pair minted by the OAuth
// callback. The [Store] interface hides the backing storage so the pipeline
// logic is identical whether sessions live in memory or in SQLite.
package sessions

import (
	"context"
	"time"

	"github.com/kapinzzal02/playgen/internal/shared"
)

// CookieName is the cookie carrying the opaque session identifier.
//
// The cookie is HttpOnly but not marked Secure; transport security is a
// deployment concern handled in front of this service.
const CookieName = "playgen_session"

// Session is the per-user-agent authentication state.
//
// AccessToken empty means unauthenticated. RefreshToken is set together with
// AccessToken by the OAuth callback, but the two can diverge later: a failed
// refresh leaves a stale access token in place while the refresh token is
// retried on the next request.
type Session struct {
	ID           string
	AccessToken  string
	RefreshToken string
	OAuthState   string // pending authorize state parameter, cleared on callback
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Authenticated reports whether the session holds an access token.
func (s *Session) Authenticated() bool {
	return s.AccessToken != ""
}

// SetTokens stores a freshly exchanged token pair.
func (s *Session) SetTokens(access, refresh string) {
	s.AccessToken = access
	s.RefreshToken = refresh
	s.UpdatedAt = time.Now()
}

// ClearTokens drops both credentials, returning the session to the
// unauthenticated state.
func (s *Session) ClearTokens() {
	s.AccessToken = ""
	s.RefreshToken = ""
	s.UpdatedAt = time.Now()
}

// Store defines persistence operations for sessions.
//
// Get returns [shared.ErrSessionNotFound] for unknown IDs. Save creates or
// replaces the record for the session's ID.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// New creates an empty session with a fresh identifier.
func New() *Session {
	now := time.Now()
	return &Session{
		ID:        shared.GenerateID(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
