// submodule cmd contains command definitions and actions
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/kapinzzal02/playgen/internal/admission"
	"github.com/kapinzzal02/playgen/internal/server"
	"github.com/kapinzzal02/playgen/internal/services"
	"github.com/kapinzzal02/playgen/internal/sessions"
	"github.com/kapinzzal02/playgen/internal/shared"
	"github.com/kapinzzal02/playgen/internal/web"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1DB954"))
	routeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// Runner holds shared state for CLI command actions.
type Runner struct {
	config *shared.Config
	logger *log.Logger
}

// RunnerConfig contains the dependencies a [Runner] needs.
type RunnerConfig struct {
	Config *shared.Config
	Logger *log.Logger
}

// NewRunner creates a [Runner] from its dependencies.
func NewRunner(rc RunnerConfig) *Runner {
	return &Runner{config: rc.Config, logger: rc.Logger}
}

// register returns the CLI command tree.
func (r *Runner) register() []*cli.Command {
	return []*cli.Command{
		serveCommand(r),
		configCommand(r),
		routesCommand(r),
	}
}

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the playlist generator web service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Serve,
	}
}

func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write an example config.toml to the current directory",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "path",
						Aliases: []string{"p"},
						Usage:   "Destination path",
						Value:   "config.toml",
					},
				},
				Action: r.ConfigInit,
			},
		},
	}
}

func routesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "routes",
		Usage:  "Print the HTTP surface",
		Action: r.Routes,
	}
}

// Serve builds the session store, admission engine, Spotify client, and
// server, then listens until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if path := cmd.String("config"); path != "" {
		if cfg, err := shared.LoadConfig(path); err == nil {
			r.config = cfg
		}
	}

	spotify := r.config.Credentials.Spotify
	if spotify.ClientID == "" || spotify.ClientSecret == "" {
		return fmt.Errorf("%w: spotify client_id and client_secret are required", shared.ErrMissingCredentials)
	}

	svc, err := services.NewSpotifyService(map[string]string{
		"client_id":     spotify.ClientID,
		"client_secret": spotify.ClientSecret,
		"redirect_uri":  spotify.RedirectURI,
	})
	if err != nil {
		return fmt.Errorf("failed to create spotify service: %w", err)
	}

	store, err := r.sessionStore()
	if err != nil {
		return err
	}

	views, err := web.NewRenderer()
	if err != nil {
		return err
	}

	protection := r.config.Protection
	engine := admission.NewEngine(admission.Options{
		Window:     time.Duration(protection.WindowSeconds) * time.Second,
		Burst:      protection.Burst,
		DetectBots: protection.DetectBots,
	})

	srv := server.New(server.Options{
		Logger:    r.logger,
		Store:     store,
		Service:   svc,
		Views:     views,
		Protector: engine,
	})

	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	return srv.ListenAndServe(runCtx, addr)
}

// ConfigInit writes the embedded example configuration.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("path")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.logger.Info("wrote config", "path", path)
	return nil
}

// Routes prints the HTTP surface with the pipeline each route passes.
func (r *Runner) Routes(ctx context.Context, cmd *cli.Command) error {
	fmt.Println(headerStyle.Render("playgen routes"))

	routes := []struct{ method, path, chain string }{
		{"GET", "/", "admission -> session"},
		{"GET", "/login", "admission -> session"},
		{"GET", "/callback", "admission -> session"},
		{"GET", "/logout", "admission -> session"},
		{"GET", "/healthz", "admission -> session"},
		{"POST", "/generate-playlist", "admission -> session -> auth -> refresh"},
		{"POST", "/save-playlist", "admission -> session -> auth -> refresh"},
	}

	for _, rt := range routes {
		fmt.Printf("%-5s %-22s %s\n", rt.method, rt.path, routeStyle.Render(rt.chain))
	}

	return nil
}

// sessionStore builds the configured session store backend.
func (r *Runner) sessionStore() (sessions.Store, error) {
	switch r.config.Sessions.Backend {
	case "", "memory":
		return sessions.NewMemoryStore(), nil
	case "sqlite":
		store, err := sessions.NewSQLiteStore(r.config.Sessions.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open session store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: unknown session backend %q", shared.ErrInvalidConfig, r.config.Sessions.Backend)
	}
}
