package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrConcurrentModification reports a serialization conflict between two
// transactions touching the same rows. The losing caller may retry.
var ErrConcurrentModification = errors.New("platform/db: concurrent modification")

// WithTx executes fn inside a RepeatableRead transaction. Posting and
// payment flows rely on this level so balance reads inside the same
// transaction never observe a half-committed voucher.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return fmt.Errorf("platform/db: begin tx: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return serializationErr(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return serializationErr(fmt.Errorf("platform/db: commit tx: %w", err))
	}

	return nil
}

func serializationErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "40001" {
		return fmt.Errorf("%w: %v", ErrConcurrentModification, err)
	}
	return err
}

// ConflictOn maps a unique violation on the named constraint to
// ErrConcurrentModification. Used where two writers race to claim the
// same derived value, such as the next voucher number.
func ConflictOn(err error, constraint string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == constraint {
		return fmt.Errorf("%w: %v", ErrConcurrentModification, err)
	}
	return err
}
