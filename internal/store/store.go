package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kode4food/larder/pkg/log"
)

// Store is a SQL backed repository for all persisted entities
type Store struct {
	db      *sql.DB
	dialect *dialect
}

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("already exists")
	ErrUnknownTag         = errors.New("unknown tag")
	ErrUnsupportedDriver  = errors.New("unsupported database driver")
	ErrCommitFailed       = errors.New("commit failed")
	ErrUnexpectedItemType = errors.New("unexpected item type")
)

// Open connects to the database named by driver and dsn. Supported
// drivers are "sqlite" and "mysql"
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(d.driver, d.prepareDSN(dsn))
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	d.configure(db)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s database: %w", driver, err)
	}
	slog.Info("Database connected", slog.String("driver", d.driver))
	return &Store{db: db, dialect: d}, nil
}

// Close releases the underlying connection pool
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Driver returns the name of the database driver in use
func (s *Store) Driver() string {
	return s.dialect.driver
}

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		slog.Error("Transaction commit failed", log.Error(err))
		return fmt.Errorf("%w: %w", ErrCommitFailed, err)
	}
	return nil
}

func (s *Store) conflict(err error, what string) error {
	if s.dialect.isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrConflict, what)
	}
	return err
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return err
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
