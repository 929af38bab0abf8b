package infra

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Alturino/salesrep/internal/config"
	"github.com/Alturino/salesrep/internal/log"
	"github.com/Alturino/salesrep/internal/otel"
	"github.com/Alturino/salesrep/internal/store"
)

// NewStore opens the local database. Change notifications go through redis
// when the cache is enabled and stay in process otherwise.
func NewStore(c context.Context, cfg *config.Config) (*store.Store, error) {
	c, span := otel.Tracer.Start(c, "infra NewStore")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "infra NewStore").
		Str(log.KeyStorePath, cfg.Store.Path).
		Logger()

	var notifier store.Notifier = store.NewLocalNotifier()
	if cfg.Cache.Enabled {
		logger = logger.With().Str(log.KeyProcess, "initializing redis notifier").Logger()
		logger.Info().Msg("initializing redis notifier")
		cache, err := NewCacheClient(logger.WithContext(c), cfg.Cache)
		if err != nil {
			err = fmt.Errorf("failed initializing redis notifier with error=%w", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return nil, err
		}
		notifier = store.NewRedisNotifier(cache, cfg.Cache.Channel)
		logger.Info().Msg("initialized redis notifier")
	}

	logger = logger.With().Str(log.KeyProcess, "opening store").Logger()
	logger.Info().Msg("opening store")
	st, err := store.Open(logger.WithContext(c), cfg.Store.Path, notifier, cfg.Store.BusyTimeout)
	if err != nil {
		notifier.Close()
		err = fmt.Errorf("failed opening store with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msg("opened store")

	return st, nil
}
