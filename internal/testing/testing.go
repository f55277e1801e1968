// package testing contains shared testing utilities
package testing

import (
	"context"
	"fmt"
	"sync"

	"github.com/kapinzzal02/playgen/internal/services"
	"github.com/kapinzzal02/playgen/internal/shared"
)

// MockService is a recording test double for [services.Service].
//
// Calls appends one entry per invocation so tests can assert ordering and
// short-circuiting. Zero-value fields produce benign defaults; set the Err
// fields to force failures.
type MockService struct {
	mu    sync.Mutex
	Calls []string

	RefreshErr     error
	RefreshedToken string

	Artist    *services.Artist
	SearchErr error

	Tracks            []services.Track
	RecommendationErr error

	User       *services.User
	ProfileErr error

	Playlist  *services.Playlist
	CreateErr error

	AddedURIs []string
	AddErr    error

	ActiveToken string
}

func (m *MockService) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, call)
}

// Called reports whether a call with the given name was recorded.
func (m *MockService) Called(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.Calls {
		if c == name {
			return true
		}
	}
	return false
}

func (m *MockService) AuthURL(state string) string {
	return "https://accounts.example.com/authorize?state=" + state
}

func (m *MockService) Exchange(ctx context.Context, code string) (*services.TokenPair, error) {
	m.record("exchange")
	return &services.TokenPair{AccessToken: "access-" + code, RefreshToken: "refresh-" + code}, nil
}

func (m *MockService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	m.record("refresh")
	if m.RefreshErr != nil {
		return "", m.RefreshErr
	}
	if m.RefreshedToken != "" {
		return m.RefreshedToken, nil
	}
	return "refreshed-token", nil
}

func (m *MockService) SetAccessToken(token string) {
	m.record("set-token")
	m.ActiveToken = token
}

func (m *MockService) SearchArtist(ctx context.Context, name string) (*services.Artist, error) {
	m.record("search")
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	if m.Artist != nil {
		return m.Artist, nil
	}
	return nil, fmt.Errorf("%w: %q", shared.ErrArtistNotFound, name)
}

func (m *MockService) Recommendations(ctx context.Context, artistID, genre string, limit int) ([]services.Track, error) {
	m.record("recommendations")
	if m.RecommendationErr != nil {
		return nil, m.RecommendationErr
	}
	if limit > 0 && len(m.Tracks) > limit {
		return m.Tracks[:limit], nil
	}
	return m.Tracks, nil
}

func (m *MockService) Profile(ctx context.Context) (*services.User, error) {
	m.record("profile")
	if m.ProfileErr != nil {
		return nil, m.ProfileErr
	}
	if m.User != nil {
		return m.User, nil
	}
	return &services.User{ID: "user-1", DisplayName: "Test User"}, nil
}

func (m *MockService) CreatePlaylist(ctx context.Context, userID, name string, public bool) (*services.Playlist, error) {
	m.record(fmt.Sprintf("create:%s:public=%t", name, public))
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	if m.Playlist != nil {
		return m.Playlist, nil
	}
	return &services.Playlist{ID: "playlist-1", Name: name, Public: public}, nil
}

func (m *MockService) AddTracks(ctx context.Context, playlistID string, uris []string) error {
	m.record("add-tracks")
	if m.AddErr != nil {
		return m.AddErr
	}
	m.AddedURIs = append(m.AddedURIs, uris...)
	return nil
}

func (m *MockService) Name() string { return "mock" }
