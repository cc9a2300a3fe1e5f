package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"bracketbuddy/internal/catalog"
	"bracketbuddy/internal/config"
	"bracketbuddy/internal/logger"
	"bracketbuddy/internal/session"
	"bracketbuddy/internal/store"
	webhttp "bracketbuddy/internal/transport/http/web"
)

// App wires configuration into the running service: HTTP server, session
// janitor and catalog watcher.
type App struct {
	cfg      *config.Config
	server   *webhttp.Server
	sessions *session.Manager
	catalog  *catalog.Registry
	store    store.Store
	Summary  *StartupSummary
}

// NewApp builds the application without starting it.
func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return buildAppWithWire(context.Background(), cfg)
}

// Run blocks until ctx is canceled or a component fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil || a.server == nil || a.sessions == nil {
		return fmt.Errorf("app not initialized")
	}
	defer a.Close()
	if a.Summary != nil {
		a.Summary.Print()
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := a.server.Start(ctx); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		return a.sessions.RunJanitor(ctx)
	})
	if a.catalog != nil && a.cfg.Catalog.Watch {
		group.Go(func() error {
			if err := a.catalog.Watch(ctx); err != nil {
				// the dropdowns keep the last good catalog
				logger.Warnf("catalog watch stopped: %v", err)
			}
			return nil
		})
	}
	return group.Wait()
}

// Close releases the render log database.
func (a *App) Close() {
	if a == nil || a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		logger.Warnf("closing render log failed: %v", err)
	}
	a.store = nil
}

func (a *App) Server() *webhttp.Server {
	if a == nil {
		return nil
	}
	return a.server
}
