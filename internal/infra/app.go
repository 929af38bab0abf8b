package infra

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/Alturino/salesrep/internal/cache"
	"github.com/Alturino/salesrep/internal/config"
	"github.com/Alturino/salesrep/internal/log"
	"github.com/Alturino/salesrep/internal/otel"
	"github.com/Alturino/salesrep/internal/remote"
	"github.com/Alturino/salesrep/internal/store"
)

// App holds the collaborators every command builds its services from.
type App struct {
	Config     *config.Config
	Store      *store.Store
	Remote     *remote.Client
	Products   cache.Products
	Categories cache.Categories

	shutdownFuncs []otel.ShutdownFunc
}

// NewApp loads config, logger, otel, the store and the remote client. The
// returned context carries the configured logger.
func NewApp(c context.Context, appName string, configName string) (context.Context, *App, error) {
	bootstrap := zerolog.New(os.Stderr).With().Timestamp().Str(log.KeyAppName, appName).Logger()
	cfg := config.Get(bootstrap.WithContext(c), configName)

	logger := log.Get(cfg.Log.Path, cfg.Application.Env).
		With().
		Str(log.KeyAppName, appName).
		Str(log.KeyTag, "infra NewApp").
		Logger()
	c = logger.WithContext(c)

	logger = logger.With().Str(log.KeyProcess, "initializing otel sdk").Logger()
	logger.Info().Msg("initializing otel sdk")
	shutdownFuncs, err := otel.InitOtelSdk(c, appName, cfg.Otel)
	if err != nil {
		err = fmt.Errorf("failed initializing otel sdk with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return c, nil, err
	}
	logger.Info().Msg("initialized otel sdk")

	logger = logger.With().Str(log.KeyProcess, "initializing store").Logger()
	logger.Info().Msg("initializing store")
	st, err := NewStore(c, cfg)
	if err != nil {
		otel.ShutdownOtel(c, shutdownFuncs)
		return c, nil, err
	}
	logger.Info().Msg("initialized store")

	logger = logger.With().Str(log.KeyProcess, "initializing remote client").Logger()
	logger.Info().Str(log.KeyURL, cfg.Remote.BaseURL).Msg("initializing remote client")
	client := remote.NewClient(cfg.Remote)
	logger.Info().Msg("initialized remote client")

	return c, &App{
		Config:        cfg,
		Store:         st,
		Remote:        client,
		Products:      cache.NewProducts(st, client),
		Categories:    cache.NewCategories(st, client),
		shutdownFuncs: shutdownFuncs,
	}, nil
}

func (a *App) Close(c context.Context) {
	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "App Close").Logger()

	logger = logger.With().Str(log.KeyProcess, "closing store").Logger()
	logger.Info().Msg("closing store")
	if err := a.Store.Close(); err != nil {
		err = fmt.Errorf("failed closing store with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
	} else {
		logger.Info().Msg("closed store")
	}

	logger = logger.With().Str(log.KeyProcess, "shutting down otel").Logger()
	logger.Info().Msg("shutting down otel")
	if err := otel.ShutdownOtel(context.WithoutCancel(c), a.shutdownFuncs); err != nil {
		err = fmt.Errorf("failed shutting down otel with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Info().Msg("shutdown otel")
}
