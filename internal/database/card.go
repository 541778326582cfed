package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/princebabou/wishCraft/internal/models"
)

var (
	// ErrNotFound is returned by GetBySlug when no card has the slug.
	ErrNotFound = errors.New("card not found")
	// ErrDuplicateSlug is wrapped in a *StoreError when a create collides
	// with an existing slug.
	ErrDuplicateSlug = errors.New("slug already exists")
	// ErrInvalidCard is returned for input the store refuses before touching
	// the database, such as an empty slug.
	ErrInvalidCard = errors.New("invalid card")
)

// StoreError is an underlying persistence failure.
type StoreError struct {
	Op   string
	Slug string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s card %q: %v", e.Op, e.Slug, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// IsStoreError reports whether err is, or wraps, a *StoreError.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

// CardStore persists cards keyed by slug. Cards are never updated or deleted.
type CardStore interface {
	Create(ctx context.Context, c *models.Card) error
	GetBySlug(ctx context.Context, slug string) (*models.Card, error)
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

const (
	insertCardQuery = `INSERT INTO cards (slug, name, age, message, created_at) VALUES (:slug, :name, :age, :message, :created_at)`
	selectCardQuery = `SELECT slug, name, age, message, created_at FROM cards WHERE slug = ?`
)

// now is replaced in tests.
var now = func() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
