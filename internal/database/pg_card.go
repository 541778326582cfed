package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/princebabou/wishCraft/internal/models"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS cards (
	slug       TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	age        INT NOT NULL,
	message    TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const pgUniqueViolation = "23505"

type PgCardStore struct {
	db *sqlx.DB
}

func NewPostgres(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

func NewPgCardStore(db *sqlx.DB) *PgCardStore {
	return &PgCardStore{db: db}
}

func (s *PgCardStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, pgSchema); err != nil {
		return &StoreError{Op: "migrate", Err: err}
	}
	return nil
}

func (s *PgCardStore) Create(ctx context.Context, c *models.Card) error {
	if c.Slug == "" {
		return fmt.Errorf("create card: %w: slug is required", ErrInvalidCard)
	}
	c.CreatedAt = now()

	_, err := s.db.NamedExecContext(ctx, insertCardQuery, c)
	if err != nil {
		if isPgUniqueViolation(err) {
			err = fmt.Errorf("%w: %w", ErrDuplicateSlug, err)
		}
		return &StoreError{Op: "create", Slug: c.Slug, Err: err}
	}
	return nil
}

func (s *PgCardStore) GetBySlug(ctx context.Context, slug string) (*models.Card, error) {
	if slug == "" {
		return nil, fmt.Errorf("get card: %w: slug is required", ErrInvalidCard)
	}

	var c models.Card
	err := s.db.GetContext(ctx, &c, s.db.Rebind(selectCardQuery), slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, &StoreError{Op: "get", Slug: slug, Err: err}
	}
	c.CreatedAt = c.CreatedAt.UTC()
	return &c, nil
}

func (s *PgCardStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PgCardStore) Close() error {
	return s.db.Close()
}

func isPgUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
