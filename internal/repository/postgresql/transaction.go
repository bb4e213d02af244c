package postgresql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/teamdesk/teamdesk-backend-go/internal/domain/leave"
	"github.com/teamdesk/teamdesk-backend-go/internal/pkg/database"
)

// maxSerializationRetries bounds how often a transaction is re-run after a
// serialization failure.
const maxSerializationRetries = 3

type txKey struct{}

func runTx(ctx context.Context, tx pgx.Tx, fn func(tx pgx.Tx) error) error {
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				slog.ErrorContext(ctx, "rollback error during panic recovery", "error", rbErr)
			}
			panic(p)
		}
	}()

	// Execute function
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback error: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// WithTx stores tx in the context so repositories pick it up through GetQuerier.
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// GetQuerier returns either transaction or pool
// Used in repositories to support both transactional and non-transactional operations
func GetQuerier(ctx context.Context, db *database.DB) database.Querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return db.Pool
}

type transactor struct {
	db *database.DB
}

// NewTransactor returns a leave.Transactor running every unit of work at
// serializable isolation.
func NewTransactor(db *database.DB) leave.Transactor {
	return &transactor{db: db}
}

// WithinTransaction runs fn in a serializable transaction carried by ctx. A
// serialization failure re-runs fn from scratch; an exclusion violation on
// the leave overlap constraint surfaces as leave.ErrOverlappingLeave.
func (t *transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		// Already inside a unit of work.
		return fn(ctx)
	}

	var err error
	for attempt := 1; attempt <= maxSerializationRetries; attempt++ {
		err = t.attempt(ctx, fn)
		if !isSQLState(err, pgerrcode.SerializationFailure) {
			break
		}
		slog.WarnContext(ctx, "serialization failure, retrying transaction", "attempt", attempt)
	}

	if isSQLState(err, pgerrcode.ExclusionViolation) {
		return leave.ErrOverlappingLeave
	}
	return err
}

func (t *transactor) attempt(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := t.db.BeginSerializable(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	return runTx(ctx, tx, func(tx pgx.Tx) error {
		return fn(WithTx(ctx, tx))
	})
}

func isSQLState(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
