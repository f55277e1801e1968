package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kapinzzal02/playgen/internal/shared"
)

func newTestService(t *testing.T, handler http.Handler) (*SpotifyService, *httptest.Server) {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	srv, err := NewSpotifyService(map[string]string{
		"client_id":     "test_client_id",
		"client_secret": "test_client_secret",
	})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	srv.baseURL = ts.URL
	srv.SetAccessToken("test-token")

	return srv, ts
}

func TestSpotifyService(t *testing.T) {
	t.Run("NewSpotifyService", func(t *testing.T) {
		t.Run("With Valid Credentials", func(t *testing.T) {
			srv, err := NewSpotifyService(map[string]string{
				"client_id":     "test_client_id",
				"client_secret": "test_client_secret",
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if srv.Name() != "Spotify" {
				t.Errorf("expected service name 'Spotify', got %s", srv.Name())
			}
		})

		t.Run("Missing Client ID", func(t *testing.T) {
			_, err := NewSpotifyService(map[string]string{"client_secret": "s"})
			if err == nil {
				t.Error("expected error for missing client_id")
			}
		})

		t.Run("Missing Client Secret", func(t *testing.T) {
			_, err := NewSpotifyService(map[string]string{"client_id": "i"})
			if err == nil {
				t.Error("expected error for missing client_secret")
			}
		})
	})

	t.Run("AuthURL", func(t *testing.T) {
		srv, err := NewSpotifyService(map[string]string{
			"client_id":     "test_client_id",
			"client_secret": "test_client_secret",
		})
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		authURL := srv.AuthURL("test_state")
		for _, want := range []string{"accounts.spotify.com", "test_client_id", "test_state", "playlist-modify-private"} {
			if !strings.Contains(authURL, want) {
				t.Errorf("auth URL should contain %q: %s", want, authURL)
			}
		}
	})

	t.Run("SearchArtist", func(t *testing.T) {
		t.Run("Top Match", func(t *testing.T) {
			srv, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.URL.Query().Get("type"); got != "artist" {
					t.Errorf("unexpected search type: %q", got)
				}
				if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
					t.Errorf("unexpected auth header: %q", got)
				}
				json.NewEncoder(w).Encode(map[string]any{
					"artists": map[string]any{
						"items": []map[string]any{
							{"id": "a1", "name": "First Match"},
							{"id": "a2", "name": "Second Match"},
						},
					},
				})
			}))

			artist, err := srv.SearchArtist(context.Background(), "match")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if artist.ID != "a1" {
				t.Errorf("expected provider's top match, got %q", artist.ID)
			}
		})

		t.Run("No Match", func(t *testing.T) {
			srv, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{
					"artists": map[string]any{"items": []any{}},
				})
			}))

			_, err := srv.SearchArtist(context.Background(), "nobody")
			if !errors.Is(err, shared.ErrArtistNotFound) {
				t.Errorf("expected ErrArtistNotFound, got %v", err)
			}
		})

		t.Run("Upstream Error Carries Status And Body", func(t *testing.T) {
			srv, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				w.Write([]byte(`{"error":"upstream down"}`))
			}))

			_, err := srv.SearchArtist(context.Background(), "anyone")

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.StatusCode != http.StatusBadGateway {
				t.Errorf("unexpected status: %d", apiErr.StatusCode)
			}
			if !strings.Contains(string(apiErr.Body), "upstream down") {
				t.Errorf("unexpected body: %s", apiErr.Body)
			}
		})
	})

	t.Run("Recommendations", func(t *testing.T) {
		overDeliver := func(n int) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tracks := make([]map[string]any, n)
				for i := range tracks {
					tracks[i] = map[string]any{"id": "t", "name": "track", "duration_ms": 1000}
				}
				json.NewEncoder(w).Encode(map[string]any{"tracks": tracks})
			})
		}

		t.Run("Caps Result Size", func(t *testing.T) {
			srv, _ := newTestService(t, overDeliver(30))

			tracks, err := srv.Recommendations(context.Background(), "a1", "chill", MaxRecommendations)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(tracks) != MaxRecommendations {
				t.Errorf("expected %d tracks, got %d", MaxRecommendations, len(tracks))
			}
		})

		t.Run("Clamps Requested Limit", func(t *testing.T) {
			srv, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.URL.Query().Get("limit"); got != "12" {
					t.Errorf("expected limit clamped to 12, got %q", got)
				}
				if got := r.URL.Query().Get("seed_artists"); got != "a1" {
					t.Errorf("unexpected seed_artists: %q", got)
				}
				if got := r.URL.Query().Get("seed_genres"); got != "chill" {
					t.Errorf("unexpected seed_genres: %q", got)
				}
				json.NewEncoder(w).Encode(map[string]any{"tracks": []any{}})
			}))

			if _, err := srv.Recommendations(context.Background(), "a1", "chill", 100); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("Maps Wire Fields", func(t *testing.T) {
			srv, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{
					"tracks": []map[string]any{{
						"id":          "t1",
						"name":        "Song",
						"duration_ms": 185000,
						"uri":         "spotify:track:t1",
						"album":       map[string]any{"name": "Album"},
						"artists": []map[string]any{
							{"name": "First"}, {"name": "Second"},
						},
						"external_urls": map[string]any{"spotify": "https://open.spotify.com/track/t1"},
					}},
				})
			}))

			tracks, err := srv.Recommendations(context.Background(), "a1", "chill", 12)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(tracks) != 1 {
				t.Fatalf("expected one track, got %d", len(tracks))
			}

			track := tracks[0]
			if track.Album != "Album" {
				t.Errorf("unexpected album: %q", track.Album)
			}
			if len(track.Artists) != 2 || track.Artists[0] != "First" {
				t.Errorf("unexpected artists: %v", track.Artists)
			}
			if track.DurationMS != 185000 {
				t.Errorf("unexpected duration: %d", track.DurationMS)
			}
			if track.ExternalURL != "https://open.spotify.com/track/t1" {
				t.Errorf("unexpected external url: %q", track.ExternalURL)
			}
		})
	})

	t.Run("Profile", func(t *testing.T) {
		srv, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/me" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			json.NewEncoder(w).Encode(map[string]any{"id": "user-1", "display_name": "Tester"})
		}))

		user, err := srv.Profile(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if user.ID != "user-1" || user.DisplayName != "Tester" {
			t.Errorf("unexpected user: %+v", user)
		}
	})

	t.Run("CreatePlaylist", func(t *testing.T) {
		srv, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/users/user-1/playlists" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}

			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			if body["name"] != "Road Trip" {
				t.Errorf("unexpected name: %v", body["name"])
			}
			if body["public"] != false {
				t.Errorf("expected public false, got %v", body["public"])
			}

			json.NewEncoder(w).Encode(map[string]any{"id": "p1", "name": "Road Trip", "public": false})
		}))

		playlist, err := srv.CreatePlaylist(context.Background(), "user-1", "Road Trip", false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if playlist.ID != "p1" || playlist.Public {
			t.Errorf("unexpected playlist: %+v", playlist)
		}
	})

	t.Run("AddTracks", func(t *testing.T) {
		srv, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/playlists/p1/tracks" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}

			var body struct {
				URIs []string `json:"uris"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			if len(body.URIs) != 2 || body.URIs[0] != "spotify:track:abc" || body.URIs[1] != "spotify:track:def" {
				t.Errorf("unexpected uris: %v", body.URIs)
			}

			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"snapshot_id":"s1"}`))
		}))

		err := srv.AddTracks(context.Background(), "p1", []string{"spotify:track:abc", "spotify:track:def"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("Refresh", func(t *testing.T) {
		newRefreshService := func(t *testing.T, handler http.Handler) *SpotifyService {
			t.Helper()

			ts := httptest.NewServer(handler)
			t.Cleanup(ts.Close)

			srv, err := NewSpotifyService(map[string]string{
				"client_id":     "test_client_id",
				"client_secret": "test_client_secret",
			})
			if err != nil {
				t.Fatalf("failed to create service: %v", err)
			}
			srv.config.Endpoint.TokenURL = ts.URL
			return srv
		}

		t.Run("Success", func(t *testing.T) {
			srv := newRefreshService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				r.ParseForm()
				if got := r.Form.Get("grant_type"); got != "refresh_token" {
					t.Errorf("unexpected grant_type: %q", got)
				}
				if got := r.Form.Get("refresh_token"); got != "refresh-1" {
					t.Errorf("unexpected refresh_token: %q", got)
				}
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"access_token":"fresh-token","token_type":"Bearer","expires_in":3600}`))
			}))

			token, err := srv.Refresh(context.Background(), "refresh-1")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if token != "fresh-token" {
				t.Errorf("unexpected token: %q", token)
			}
		})

		t.Run("Rejected Token", func(t *testing.T) {
			srv := newRefreshService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error":"invalid_grant"}`))
			}))

			_, err := srv.Refresh(context.Background(), "expired")
			if !errors.Is(err, shared.ErrRefreshFailed) {
				t.Errorf("expected ErrRefreshFailed, got %v", err)
			}
		})

		t.Run("Server Error", func(t *testing.T) {
			srv := newRefreshService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}))

			_, err := srv.Refresh(context.Background(), "refresh-1")
			if err == nil {
				t.Fatal("expected error")
			}
			if errors.Is(err, shared.ErrRefreshFailed) {
				t.Error("a 5xx should not map to a rejected refresh token")
			}
		})
	})

	t.Run("Unauthenticated Request", func(t *testing.T) {
		srv, err := NewSpotifyService(map[string]string{
			"client_id":     "test_client_id",
			"client_secret": "test_client_secret",
		})
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		_, err = srv.Profile(context.Background())
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})
}
