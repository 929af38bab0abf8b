package store

import (
	"context"

	"github.com/rs/zerolog"

	inErrors "github.com/Alturino/salesrep/internal/errors"
	"github.com/Alturino/salesrep/internal/log"
	"github.com/Alturino/salesrep/internal/state"
)

// Observe runs load now and again after every change to tables, emitting the
// result as Success or, on failure, as Error carrying the last good value.
// The returned channel is closed and the subscription released once c is done.
func Observe[T any](
	c context.Context,
	s *Store,
	load func(context.Context) (T, error),
	tables ...string,
) <-chan state.State[T] {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "store Observe").
		Strs(log.KeyTables, tables).
		Logger()

	out := make(chan state.State[T])
	changes, cancel, err := s.notifier.Subscribe(c, tables...)
	if err != nil {
		err = inErrors.Store("failed subscribing live query", err)
		logger.Error().Err(err).Msg(err.Error())
		go func() {
			defer close(out)
			var zero T
			select {
			case out <- state.NewError(err, zero):
			case <-c.Done():
			}
		}()
		return out
	}

	go func() {
		defer close(out)
		defer cancel()

		var last T
		for {
			var st state.State[T]
			value, err := load(c)
			if err != nil {
				if c.Err() != nil {
					return
				}
				err = inErrors.Store("failed loading live query", err)
				logger.Error().Err(err).Msg(err.Error())
				st = state.NewError(err, last)
			} else {
				last = value
				st = state.NewSuccess(value)
			}

			select {
			case out <- st:
			case <-c.Done():
				return
			}

			select {
			case _, ok := <-changes:
				if !ok {
					return
				}
			case <-c.Done():
				return
			}
		}
	}()
	return out
}
