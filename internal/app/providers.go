package app

import (
	"context"

	"github.com/google/wire"

	"bracketbuddy/internal/config"
)

var providerSet = wire.NewSet(provideAppBuilder, provideAppFromBuilder)

type appBuilderDeps interface {
	Build(context.Context) (*App, error)
}

func provideAppFromBuilder(b *AppBuilder, ctx context.Context) (*App, error) {
	return b.Build(ctx)
}

func provideAppBuilder(cfg *config.Config) *AppBuilder {
	return NewAppBuilder(cfg)
}

var _ appBuilderDeps = (*AppBuilder)(nil)
