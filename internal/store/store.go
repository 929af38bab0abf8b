package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/Alturino/salesrep/internal/log"
)

//go:embed migrations/*.sql
var migrations embed.FS

type Store struct {
	db       *sql.DB
	notifier Notifier
}

// Open creates or opens the database at path and applies pending migrations.
func Open(c context.Context, path string, notifier Notifier, busyTimeout time.Duration) (*Store, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "store Open").
		Str(log.KeyStorePath, path).
		Logger()

	if busyTimeout <= 0 {
		busyTimeout = 5 * time.Second
	}
	dsn := fmt.Sprintf(
		"file:%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=%d&_foreign_keys=on&_txlock=immediate",
		path,
		busyTimeout.Milliseconds(),
	)

	logger = logger.With().Str(log.KeyProcess, "opening database").Logger()
	logger.Info().Msg("opening database")
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed opening database with error=%w", err)
	}
	if err := db.PingContext(c); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed pinging database with error=%w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	logger.Info().Msg("opened database")

	logger = logger.With().Str(log.KeyProcess, "migrating database").Logger()
	logger.Info().Msg("migrating database")
	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed migrating database with error=%w", err)
	}
	logger.Info().Msg("migrated database")

	return &Store{db: db, notifier: notifier}, nil
}

func migrateUp(db *sql.DB) error {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed reading migrations with error=%w", err)
	}
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed creating sqlite3 migration driver with error=%w", err)
	}
	migration, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed initializing migration with error=%w", err)
	}
	// migration.Close would close db through the driver.
	if err := migration.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed migration up with error=%w", err)
	}
	return nil
}

func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Notifier() Notifier {
	return s.notifier
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return errors.Join(s.notifier.Close(), s.db.Close())
}

// WithTx runs fn in a transaction. After a successful commit a change is
// published for every table in tables.
func (s *Store) WithTx(c context.Context, fn func(tx *sql.Tx) error, tables ...string) error {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Store WithTx").
		Strs(log.KeyTables, tables).
		Logger()

	tx, err := s.db.BeginTx(c, nil)
	if err != nil {
		return fmt.Errorf("failed initializing transaction with error=%w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			logger.Error().Err(err).Msgf("failed rolling back transaction with error=%s", err.Error())
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed committing transaction with error=%w", err)
	}
	logger.Trace().Msg("committed transaction")

	s.Publish(c, tables...)
	return nil
}

// Publish announces a change to tables. A failed publish is logged and not
// returned since the write it announces has already committed.
func (s *Store) Publish(c context.Context, tables ...string) {
	if len(tables) == 0 {
		return
	}
	if err := s.notifier.Publish(c, tables...); err != nil {
		logger := zerolog.Ctx(c).With().Str(log.KeyTag, "Store Publish").Strs(log.KeyTables, tables).Logger()
		logger.Error().Err(err).Msgf("failed publishing change with error=%s", err.Error())
	}
}
