package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/paravault/paravault/internal/links"
	"github.com/paravault/paravault/internal/mcpserver"
	"github.com/paravault/paravault/internal/models"
	"github.com/paravault/paravault/internal/search"
	"github.com/paravault/paravault/internal/storage"
	"github.com/paravault/paravault/internal/watch"
)

// App is the wired component set. Subcommands use it directly; Run
// drives it as a long-lived server.
type App struct {
	Config   *Config
	Logger   *slog.Logger
	Store    storage.Provider
	Engine   *search.Engine
	Advanced *search.AdvancedEngine
	Links    *links.Indexer
}

// NewApp wires storage, the matcher, both scorers and both indices
// from the configuration. The vault directory and its category roots
// are created when missing.
func NewApp(cfg *Config) (*App, error) {
	// Logs go to stderr: stdout belongs to the MCP stdio transport.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}
	for _, cat := range models.Categories() {
		if err := os.MkdirAll(cfg.Vault.Path+"/"+string(cat), 0o755); err != nil {
			return nil, fmt.Errorf("create category dir: %w", err)
		}
	}

	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	fuzzy := search.NewMatcher()
	fuzzy.MaxDistance = cfg.Search.FuzzyMaxDistance
	fuzzy.Tolerance = cfg.Search.FuzzyTolerance

	scorer := search.NewScorer(search.DefaultWeights())
	engine := search.NewEngine(store, scorer, fuzzy, logger)
	advanced := search.NewAdvancedEngine(engine, search.NewAdvancedScorer(scorer, fuzzy))
	linkIndex := links.NewIndexer(store, logger)

	return &App{
		Config:   cfg,
		Logger:   logger,
		Store:    store,
		Engine:   engine,
		Advanced: advanced,
		Links:    linkIndex,
	}, nil
}

// Build rebuilds both indices from the corpus.
func (a *App) Build(ctx context.Context) error {
	if err := a.Engine.Build(ctx); err != nil {
		return fmt.Errorf("build document index: %w", err)
	}
	if err := a.Links.Build(ctx); err != nil {
		return fmt.Errorf("build link graph: %w", err)
	}
	return nil
}

// Run starts the application with the given options: initial index
// builds, then the vault watcher and the MCP stdio server until a
// shutdown signal arrives.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	a, err := NewApp(app.config)
	if err != nil {
		return err
	}

	a.Logger.Info("configuration loaded",
		slog.String("vault_path", app.config.Vault.Path),
		slog.String("log_level", app.config.App.LogLevel.String()),
		slog.Bool("watch", app.config.Watch.Enabled))

	if err := a.Build(ctx); err != nil {
		return err
	}

	if app.noServe {
		return nil
	}

	srv := mcpserver.New(a.Store, a.Engine, a.Advanced, a.Links)

	g, gctx := errgroup.WithContext(ctx)
	serveCtx, stop := context.WithCancel(gctx)

	if app.config.Watch.Enabled {
		g.Go(func() error {
			return watch.Watch(serveCtx, a.Store, a.Logger, a.Engine, a.Links)
		})
	}

	g.Go(func() error {
		a.Logger.Info("mcp server starting on stdio")
		if err := srv.Serve(serveCtx); err != nil && serveCtx.Err() == nil {
			return fmt.Errorf("mcp server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			a.Logger.Info("received shutdown signal", slog.String("signal", sig.String()))
		case <-gctx.Done():
		}
		stop()
		return nil
	})

	if err := g.Wait(); err != nil {
		a.Logger.Error("application error", slog.String("error", err.Error()))
		return err
	}
	a.Logger.Info("server stopped")
	return nil
}
