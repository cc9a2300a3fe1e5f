package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"bracketbuddy/internal/catalog"
	"bracketbuddy/internal/config"
	"bracketbuddy/internal/logger"
	"bracketbuddy/internal/pkg/circuit"
	"bracketbuddy/internal/prediction"
	"bracketbuddy/internal/render"
	"bracketbuddy/internal/session"
	"bracketbuddy/internal/store"
	"bracketbuddy/internal/store/sqlite"
	webhttp "bracketbuddy/internal/transport/http/web"
)

// AppBuilder assembles an App. The constructor hooks can be replaced in tests.
type AppBuilder struct {
	cfg *config.Config

	storeFn   func(config.StoreConfig) (store.Store, error)
	catalogFn func(config.CatalogConfig) (*catalog.Registry, error)
	clientFn  func(config.PredictionsConfig, prediction.ParseOptions) (*prediction.Client, error)
}

type AppBuilderOption func(*AppBuilder)

// WithStore replaces the render log constructor.
func WithStore(fn func(config.StoreConfig) (store.Store, error)) AppBuilderOption {
	return func(b *AppBuilder) { b.storeFn = fn }
}

func NewAppBuilder(cfg *config.Config, opts ...AppBuilderOption) *AppBuilder {
	b := &AppBuilder{
		cfg:       cfg,
		storeFn:   openStore,
		catalogFn: loadCatalog,
		clientFn:  prediction.NewClient,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *AppBuilder) Build(ctx context.Context) (*App, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if b.cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	cfg := b.cfg
	logger.SetLevel(cfg.App.LogLevel)

	parseOpts := parseOptions(cfg.Chart)
	client, err := b.clientFn(cfg.Predictions, parseOpts)
	if err != nil {
		return nil, fmt.Errorf("prediction client: %w", err)
	}
	client.Breaker().SetStateChangeHandler(func(name string, from, to circuit.State) {
		logger.Warnf("circuit %s: %s -> %s", name, from, to)
	})

	var (
		st       store.Store
		recorder session.Recorder
		renders  store.RenderRepository
	)
	if cfg.Store.Enabled {
		st, err = b.storeFn(cfg.Store)
		if err != nil {
			return nil, fmt.Errorf("render log: %w", err)
		}
		renders = st.Renders()
		recorder = renders
	}

	reg, err := b.catalogFn(cfg.Catalog)
	if err != nil {
		if st != nil {
			_ = st.Close()
		}
		return nil, err
	}

	style := render.StyleFromConfig(cfg.Chart, cfg.Render)
	sessions := session.NewManager(client, style, recorder, cfg.Session)
	server, err := webhttp.NewServer(webhttp.ServerConfig{
		Addr:            cfg.App.HTTPAddr,
		Sessions:        sessions,
		Catalog:         reg,
		Renders:         renders,
		Upstream:        client,
		ParseOptions:    parseOpts,
		Style:           style,
		SnapshotEnabled: cfg.Render.SnapshotEnabled,
		SnapshotTimeout: cfg.Render.SnapshotTimeout(),
	})
	if err != nil {
		if st != nil {
			_ = st.Close()
		}
		return nil, err
	}

	return &App{
		cfg:      cfg,
		server:   server,
		sessions: sessions,
		catalog:  reg,
		store:    st,
		Summary:  buildSummary(cfg, reg),
	}, nil
}

func parseOptions(c config.ChartConfig) prediction.ParseOptions {
	opts := prediction.ParseOptions{Lenient: c.LenientCoercion}
	if c.DeriveMissingColors {
		opts.Palette = &prediction.Palette{
			HomeWin: c.HomeWinColor,
			AwayWin: c.AwayWinColor,
			Tie:     c.TieColor,
		}
	}
	return opts
}

func openStore(c config.StoreConfig) (store.Store, error) {
	st, err := sqlite.NewSqliteStore(c.Path)
	if err != nil {
		return nil, err
	}
	return st, nil
}

// loadCatalog returns nil without error when the file does not exist; the
// page then offers empty dropdowns.
func loadCatalog(c config.CatalogConfig) (*catalog.Registry, error) {
	path := strings.TrimSpace(c.Path)
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		logger.Warnf("catalog %s not found, dropdowns will be empty", path)
		return nil, nil
	}
	reg, err := catalog.NewRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return reg, nil
}
