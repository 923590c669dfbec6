package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"mediconnect/internal/apperr"
)

// DBTX is satisfied by *pgxpool.Pool and by pgxmock pools.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Store struct {
	pool DBTX
}

func New(pool DBTX) *Store {
	return &Store{pool: pool}
}

const (
	uniqueViolation = "23505"
	// Raised when a UUID column is compared against text that is not a UUID.
	invalidTextRepresentation = "22P02"
)

// notFound turns pgx.ErrNoRows, and ids that cannot name any row, into a
// typed not-found error for resource.
func notFound(err error, resource string) error {
	if errors.Is(err, pgx.ErrNoRows) || isMalformedID(err) {
		return apperr.NotFound(resource)
	}
	return err
}

func isMalformedID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentation
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Page is a limit/offset window.
type Page struct {
	Limit  int
	Offset int
}
