// Package cache keeps remote entities in the local store. Reads never touch
// the network; Refresh fetches a scope from the remote source and upserts it.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	inErrors "github.com/Alturino/salesrep/internal/errors"
	"github.com/Alturino/salesrep/internal/log"
	inOtel "github.com/Alturino/salesrep/internal/otel"
	"github.com/Alturino/salesrep/internal/repository"
	"github.com/Alturino/salesrep/internal/state"
	"github.com/Alturino/salesrep/internal/store"
)

// Binding describes how one entity type is fetched, stored and ordered. E is
// the view read back from the store, P the row written by a refresh.
type Binding[E, P any] struct {
	Fetch    func(c context.Context, scope string, contextID string) ([]P, error)
	Upsert   func(c context.Context, q *repository.Queries, param P) error
	List     func(c context.Context, q *repository.Queries, scope string) ([]E, error)
	Find     func(c context.Context, q *repository.Queries, id string) (E, error)
	Delete   func(c context.Context, q *repository.Queries, scope string) (int64, error)
	Compare  func(a, b E) int
	NotFound error
	Name     string
	Table    string
}

type Repository[E, P any] struct {
	store   *store.Store
	queries *repository.Queries
	binding Binding[E, P]
}

func NewRepository[E, P any](st *store.Store, binding Binding[E, P]) Repository[E, P] {
	return Repository[E, P]{store: st, queries: repository.New(st.DB()), binding: binding}
}

// Observe emits the ordered rows of scope now and after every change.
func (r Repository[E, P]) Observe(c context.Context, scope string) <-chan state.State[[]E] {
	c = zerolog.Ctx(c).With().Str(log.KeyScope, scope).Logger().WithContext(c)
	return store.Observe(c, r.store, func(c context.Context) ([]E, error) {
		return r.list(c, scope)
	}, r.binding.Table)
}

// List reads the ordered rows of scope once.
func (r Repository[E, P]) List(c context.Context, scope string) ([]E, error) {
	entities, err := r.list(c, scope)
	if err != nil {
		return nil, inErrors.Store(fmt.Sprintf("failed listing %s", r.binding.Name), err)
	}
	return entities, nil
}

func (r Repository[E, P]) list(c context.Context, scope string) ([]E, error) {
	entities, err := r.binding.List(c, r.queries, scope)
	if err != nil {
		return nil, err
	}
	if r.binding.Compare != nil {
		slices.SortStableFunc(entities, r.binding.Compare)
	}
	return entities, nil
}

// Refresh fetches scope from the remote source and upserts every row in one
// transaction. Rows are overwritten unconditionally so the last response to
// land wins. Nothing is written when the fetch fails.
func (r Repository[E, P]) Refresh(c context.Context, scope string, contextID string) error {
	c, span := inOtel.Tracer.Start(
		c,
		"Repository Refresh",
		trace.WithAttributes(
			attribute.String("entity", r.binding.Name),
			attribute.String(log.KeyScope, scope),
		),
	)
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Repository Refresh").
		Str(log.KeyTable, r.binding.Table).
		Str(log.KeyScope, scope).
		Logger()

	logger = logger.With().Str(log.KeyProcess, fmt.Sprintf("fetching %s", r.binding.Name)).Logger()
	logger.Trace().Msgf("fetching %s", r.binding.Name)
	span.AddEvent("fetching from remote")
	params, err := r.binding.Fetch(c, scope, contextID)
	if err != nil {
		if !errors.Is(err, inErrors.ErrRemoteFailure) {
			err = inErrors.Remote(fmt.Sprintf("failed fetching %s", r.binding.Name), err)
		}
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger = logger.With().Int(log.KeyCount, len(params)).Logger()
	span.AddEvent("fetched from remote")
	logger.Trace().Msgf("fetched %d %s", len(params), r.binding.Name)

	logger = logger.With().Str(log.KeyProcess, fmt.Sprintf("upserting %s", r.binding.Name)).Logger()
	logger.Trace().Msgf("upserting %s", r.binding.Name)
	err = r.store.WithTx(c, func(tx *sql.Tx) error {
		queries := r.queries.WithTx(tx)
		for _, param := range params {
			if err := r.binding.Upsert(c, queries, param); err != nil {
				return err
			}
		}
		return nil
	}, r.binding.Table)
	if err != nil {
		err = inErrors.Store(fmt.Sprintf("failed upserting %s", r.binding.Name), err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	span.AddEvent("upserted to store")
	logger.Info().Msgf("refreshed %d %s", len(params), r.binding.Name)

	return nil
}

// FindById is a point lookup in the store. A missing row yields the
// binding's NotFound error.
func (r Repository[E, P]) FindById(c context.Context, id string) (E, error) {
	var zero E
	entity, err := r.binding.Find(c, r.queries, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zero, fmt.Errorf("failed finding %s id=%s with error=%w", r.binding.Name, id, r.binding.NotFound)
		}
		return zero, inErrors.Store(fmt.Sprintf("failed finding %s id=%s", r.binding.Name, id), err)
	}
	return entity, nil
}

// Clear deletes every row of scope and returns the number removed.
func (r Repository[E, P]) Clear(c context.Context, scope string) (int64, error) {
	c, span := inOtel.Tracer.Start(c, "Repository Clear")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Repository Clear").
		Str(log.KeyTable, r.binding.Table).
		Str(log.KeyScope, scope).
		Str(log.KeyProcess, fmt.Sprintf("deleting %s", r.binding.Name)).
		Logger()

	var deleted int64
	err := r.store.WithTx(c, func(tx *sql.Tx) error {
		var err error
		deleted, err = r.binding.Delete(c, r.queries.WithTx(tx), scope)
		return err
	}, r.binding.Table)
	if err != nil {
		err = inErrors.Store(fmt.Sprintf("failed deleting %s", r.binding.Name), err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return 0, err
	}
	logger.Info().Msgf("deleted %d %s", deleted, r.binding.Name)
	return deleted, nil
}
