package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/kapinzzal02/playgen/internal/sessions"
	"github.com/kapinzzal02/playgen/internal/shared"
)

type contextKey int

const sessionKey contextKey = iota

// sessionFrom returns the session installed by [Server.WithSession].
//
// Handlers below WithSession can assume it is present; the nil return only
// happens when a handler is exercised outside the pipeline.
func sessionFrom(ctx context.Context) *sessions.Session {
	s, _ := ctx.Value(sessionKey).(*sessions.Session)
	return s
}

// Admit is the outermost pipeline stage: it consults the admission protector
// and terminates inadmissible requests before anything else runs.
//
// A failing protector fails closed: the request is rejected with a 500
// rather than waved through.
func (s *Server) Admit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision, err := s.protector.Decide(r.Context(), r)
		if err != nil {
			s.logger.Error("admission check failed", "path", r.URL.Path, "err", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if !decision.Allowed {
			s.logger.Warn("request denied", "path", r.URL.Path, "source", r.RemoteAddr, "reason", decision.Reason)
			writeDenial(w, decision.Reason)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// LogRequests records one line per request with the terminal status.
func (s *Server) LogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// WithSession resolves the request's session from the cookie, creating an
// empty session (and setting the cookie) on first contact.
func (s *Server) WithSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sess *sessions.Session

		if cookie, err := r.Cookie(sessions.CookieName); err == nil {
			sess, err = s.store.Get(r.Context(), cookie.Value)
			if err != nil && !errors.Is(err, shared.ErrSessionNotFound) {
				s.logger.Error("session lookup failed", "err", err)
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
		}

		if sess == nil {
			sess = sessions.New()
			if err := s.store.Save(r.Context(), sess); err != nil {
				s.logger.Error("session create failed", "err", err)
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     sessions.CookieName,
				Value:    sess.ID,
				Path:     "/",
				HttpOnly: true,
			})
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, sess)))
	})
}

// RequireAuth gates protected routes on an authenticated session.
//
// Unauthenticated callers are redirected to the landing page; no downstream
// stage runs.
func (s *Server) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r.Context())
		if sess == nil || !sess.Authenticated() {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RefreshToken exchanges the session's refresh token for a fresh access
// token before every protected operation.
//
// Token expiry is not tracked; refreshing unconditionally keeps the
// downstream credential current without bookkeeping. Two concurrent requests
// for the same session may both run this exchange; nothing serializes them,
// matching the store's single-writer-per-request assumption.
func (s *Server) RefreshToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r.Context())
		if sess == nil || sess.RefreshToken == "" {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		token, err := s.svc.Refresh(r.Context(), sess.RefreshToken)
		if err != nil {
			if errors.Is(err, shared.ErrRefreshFailed) {
				// The provider rejected the refresh token. Tokens stay in the
				// session; the caller has to re-run the authorization flow.
				s.logger.Warn("refresh token rejected", "session", sess.ID)
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			s.logger.Error("token refresh failed", "session", sess.ID, "err", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		sess.AccessToken = token
		if err := s.store.Save(r.Context(), sess); err != nil {
			s.logger.Error("session update failed", "session", sess.ID, "err", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		s.svc.SetAccessToken(token)
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status written by downstream stages.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
