package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/princebabou/wishCraft/internal/models"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS cards (
	slug       TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	age        INTEGER NOT NULL,
	message    TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);`

type SQLiteCardStore struct {
	db *sqlx.DB
}

// NewSQLite opens a SQLite database through the pure-Go modernc driver.
// SQLite allows a single writer, so the pool is limited to one connection.
func NewSQLite(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure sqlite: %w", err)
	}
	return db, nil
}

func NewSQLiteCardStore(db *sqlx.DB) *SQLiteCardStore {
	return &SQLiteCardStore{db: db}
}

func (s *SQLiteCardStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return &StoreError{Op: "migrate", Err: err}
	}
	return nil
}

func (s *SQLiteCardStore) Create(ctx context.Context, c *models.Card) error {
	if c.Slug == "" {
		return fmt.Errorf("create card: %w: slug is required", ErrInvalidCard)
	}
	c.CreatedAt = now()

	_, err := s.db.NamedExecContext(ctx, insertCardQuery, c)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			err = fmt.Errorf("%w: %w", ErrDuplicateSlug, err)
		}
		return &StoreError{Op: "create", Slug: c.Slug, Err: err}
	}
	return nil
}

func (s *SQLiteCardStore) GetBySlug(ctx context.Context, slug string) (*models.Card, error) {
	if slug == "" {
		return nil, fmt.Errorf("get card: %w: slug is required", ErrInvalidCard)
	}

	var c models.Card
	err := s.db.GetContext(ctx, &c, selectCardQuery, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, &StoreError{Op: "get", Slug: slug, Err: err}
	}
	c.CreatedAt = c.CreatedAt.UTC()
	return &c, nil
}

func (s *SQLiteCardStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteCardStore) Close() error {
	return s.db.Close()
}

func isSQLiteUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}
