package db

import (
	"context"
	"database/sql"
	"errors"

	"zayana-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Postgres SQLSTATE codes the repositories branch on.
const (
	PgUniqueViolation     = "23505"
	PgForeignKeyViolation = "23503"
	PgCheckViolation      = "23514"
	PgNumericOutOfRange   = "22003"
)

// WithTx runs fn inside a transaction. The transaction commits when fn
// returns nil and is rolled back otherwise.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	log := logger.FromCtx(ctx)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			} else {
				log.Debug("transaction rolled back")
			}
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit transaction", zap.Error(err))
		return err
	}
	committed = true
	return nil
}

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

func IsUniqueViolation(err error) bool {
	return pqCode(err) == PgUniqueViolation
}

func IsForeignKeyViolation(err error) bool {
	return pqCode(err) == PgForeignKeyViolation
}

func IsCheckViolation(err error) bool {
	return pqCode(err) == PgCheckViolation
}

func IsNumericOutOfRange(err error) bool {
	return pqCode(err) == PgNumericOutOfRange
}
