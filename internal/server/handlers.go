package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/kapinzzal02/playgen/internal/formatter"
	"github.com/kapinzzal02/playgen/internal/services"
	"github.com/kapinzzal02/playgen/internal/shared"
)

// Index renders the landing view with the session's login state.
func (s *Server) Index(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	data := struct{ LoggedIn bool }{LoggedIn: sess != nil && sess.Authenticated()}
	if err := s.views.Render(w, http.StatusOK, "index.html", data); err != nil {
		s.logger.Error("render failed", "view", "index.html", "err", err)
	}
}

// Login redirects to the provider's authorization URL with a fresh state
// parameter bound to the session.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	state := shared.GenerateID()
	sess.OAuthState = state
	if err := s.store.Save(r.Context(), sess); err != nil {
		s.logger.Error("session update failed", "session", sess.ID, "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	http.Redirect(w, r, s.svc.AuthURL(state), http.StatusFound)
}

// Callback completes the authorization-code flow: it validates the state
// parameter, exchanges the code for a token pair, stores both in the session,
// and redirects home.
func (s *Server) Callback(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	state := r.URL.Query().Get("state")
	if sess.OAuthState == "" || state != sess.OAuthState {
		s.logger.Warn("state mismatch on callback", "session", sess.ID)
		writeError(w, http.StatusBadRequest, "invalid state parameter")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing authorization code")
		return
	}

	pair, err := s.svc.Exchange(r.Context(), code)
	if err != nil {
		s.logger.Error("code exchange failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	sess.SetTokens(pair.AccessToken, pair.RefreshToken)
	sess.OAuthState = ""
	if err := s.store.Save(r.Context(), sess); err != nil {
		s.logger.Error("session update failed", "session", sess.ID, "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

// Logout clears the session's token pair and redirects home.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	sess.ClearTokens()
	if err := s.store.Save(r.Context(), sess); err != nil {
		s.logger.Error("session update failed", "session", sess.ID, "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

// Health is a liveness endpoint.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GeneratePlaylist runs the recommendation workflow: artist search, then a
// recommendation fetch seeded by the artist and the mood, then the rendered
// track listing.
func (s *Server) GeneratePlaylist(w http.ResponseWriter, r *http.Request) {
	artistName := r.FormValue("artistName")
	mood := r.FormValue("mood")
	if artistName == "" || mood == "" {
		writeError(w, http.StatusBadRequest, "artistName and mood are required")
		return
	}

	artist, err := s.svc.SearchArtist(r.Context(), artistName)
	if err != nil {
		if errors.Is(err, shared.ErrArtistNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("no artist found for %q", artistName))
			return
		}
		s.relayUpstream(w, err)
		return
	}

	tracks, err := s.svc.Recommendations(r.Context(), artist.ID, mood, services.MaxRecommendations)
	if err != nil {
		s.relayUpstream(w, err)
		return
	}

	uris := make([]string, 0, len(tracks))
	for _, t := range tracks {
		uris = append(uris, t.URI)
	}
	serialized, err := json.Marshal(uris)
	if err != nil {
		s.logger.Error("uri marshal failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	view := formatter.PlaylistView{
		ArtistName: artist.Name,
		Mood:       mood,
		Tracks:     formatter.FormatTracks(tracks),
		TrackURIs:  string(serialized),
	}
	if err := s.views.Render(w, http.StatusOK, "playlist.html", view); err != nil {
		s.logger.Error("render failed", "view", "playlist.html", "err", err)
	}
}

// SavePlaylist creates a private playlist for the authenticated user and
// adds the submitted tracks in order.
//
// If playlist creation succeeds but adding tracks fails, the empty playlist
// is left behind; there is no compensating delete.
func (s *Server) SavePlaylist(w http.ResponseWriter, r *http.Request) {
	name := r.FormValue("playlistName")
	if name == "" {
		writeError(w, http.StatusBadRequest, "playlistName is required")
		return
	}

	var uris []string
	if err := json.Unmarshal([]byte(r.FormValue("trackUris")), &uris); err != nil {
		writeError(w, http.StatusBadRequest, "trackUris is not a valid JSON array")
		return
	}

	user, err := s.svc.Profile(r.Context())
	if err != nil {
		s.relayUpstream(w, err)
		return
	}

	playlist, err := s.svc.CreatePlaylist(r.Context(), user.ID, name, false)
	if err != nil {
		s.relayUpstream(w, err)
		return
	}

	if err := s.svc.AddTracks(r.Context(), playlist.ID, uris); err != nil {
		s.relayUpstream(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Playlist %q saved to Spotify", playlist.Name),
	})
}
