// package server contains the request pipeline and handlers for the playlist
// generator web service
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/kapinzzal02/playgen/internal/admission"
	"github.com/kapinzzal02/playgen/internal/services"
	"github.com/kapinzzal02/playgen/internal/sessions"
	"github.com/kapinzzal02/playgen/internal/web"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
//
// Each pipeline stage is a Middleware: it either passes the request to the
// next handler or writes a terminal response and returns.
type Middleware func(http.Handler) http.Handler

// Chain wraps a handler with the given middleware; the first middleware
// listed becomes the outermost stage.
func Chain(handler http.Handler, middlewares ...Middleware) http.Handler {
	wrapped := handler
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}
	return wrapped
}

// Server wires the pipeline stages and handlers around their collaborators.
type Server struct {
	logger    *log.Logger
	store     sessions.Store
	svc       services.Service
	views     *web.Renderer
	protector admission.Protector
}

// Options collects the collaborators a [Server] needs.
type Options struct {
	Logger    *log.Logger
	Store     sessions.Store
	Service   services.Service
	Views     *web.Renderer
	Protector admission.Protector
}

// New creates a [Server] from its collaborators.
func New(opts Options) *Server {
	return &Server{
		logger:    opts.Logger,
		store:     opts.Store,
		svc:       opts.Service,
		views:     opts.Views,
		protector: opts.Protector,
	}
}

// Handler builds the full route table with the pipeline applied.
//
// Every request passes Admit -> LogRequests -> WithSession. Protected routes
// additionally pass RequireAuth -> RefreshToken before their handler runs.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.Index)
	mux.HandleFunc("GET /login", s.Login)
	mux.HandleFunc("GET /callback", s.Callback)
	mux.HandleFunc("GET /logout", s.Logout)
	mux.HandleFunc("GET /healthz", s.Health)

	protected := []Middleware{s.RequireAuth, s.RefreshToken}
	mux.Handle("POST /generate-playlist", Chain(http.HandlerFunc(s.GeneratePlaylist), protected...))
	mux.Handle("POST /save-playlist", Chain(http.HandlerFunc(s.SavePlaylist), protected...))

	return Chain(mux, s.Admit, s.LogRequests, s.WithSession)
}

// ListenAndServe runs the HTTP server on addr until the context is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info("listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
