// package services defines interface Service for interacting with the
// upstream music provider API
package services

import (
	"context"
	"fmt"
)

// MaxRecommendations caps the size of one recommendation fetch.
const MaxRecommendations = 12

// Service is the provider boundary consumed by the request pipeline and the
// playlist workflow.
//
// The credential methods (Exchange, Refresh, SetAccessToken) manage the
// bearer token the remaining calls authenticate with.
type Service interface {
	// AuthURL returns the provider authorization URL for the given CSRF state.
	AuthURL(state string) string

	// Exchange trades an authorization code for a token pair.
	Exchange(ctx context.Context, code string) (*TokenPair, error)

	// Refresh trades a refresh token for a new access token. The refresh
	// token itself is not rotated by this exchange.
	// Returns an error wrapping [shared.ErrRefreshFailed] when the provider
	// rejects the refresh token.
	Refresh(ctx context.Context, refreshToken string) (string, error)

	// SetAccessToken installs the bearer credential used by subsequent calls.
	SetAccessToken(token string)

	// SearchArtist looks an artist up by name, selecting the provider's
	// top-ranked match. Returns an error wrapping [shared.ErrArtistNotFound]
	// when the search yields nothing.
	SearchArtist(ctx context.Context, name string) (*Artist, error)

	// Recommendations fetches up to limit tracks seeded by an artist and a
	// genre, in the provider's return order. limit is clamped to
	// [MaxRecommendations].
	Recommendations(ctx context.Context, artistID, genre string, limit int) ([]Track, error)

	// Profile resolves the authenticated user.
	Profile(ctx context.Context) (*User, error)

	// CreatePlaylist creates an empty playlist owned by the given user.
	CreatePlaylist(ctx context.Context, userID, name string, public bool) (*Playlist, error)

	// AddTracks appends the given track URIs to a playlist in order.
	AddTracks(ctx context.Context, playlistID string, uris []string) error

	// Name returns the provider name (e.g. "Spotify")
	Name() string
}

// TokenPair is the credential pair minted by the authorization-code exchange.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Artist represents a provider artist.
type Artist struct {
	ID   string
	Name string
	URI  string
}

// Track represents a provider track.
type Track struct {
	ID          string
	Name        string
	Album       string
	Artists     []string
	DurationMS  int
	URI         string
	ExternalURL string
}

// User represents the authenticated provider user.
type User struct {
	ID          string
	DisplayName string
}

// Playlist represents a provider playlist.
type Playlist struct {
	ID          string
	Name        string
	Public      bool
	ExternalURL string
}

// APIError is a structured upstream failure carrying the provider's status
// and response body so callers can relay them verbatim.
type APIError struct {
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream API error: status %d", e.StatusCode)
}
