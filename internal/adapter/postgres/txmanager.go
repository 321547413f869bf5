package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/claims-backend/internal/domain"
)

// TxManager runs service operations in a transaction carried by the context.
// A RunInTx call whose context already holds a transaction joins it; only the
// outermost call commits.
type TxManager struct {
	pool *pgxpool.Pool
}

func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return &TxManager{pool: pool}
}

// RunInTx executes fn in a Read Committed transaction. Claim transitions and
// the invoice stamp use conditional UPDATEs, so competing writers are
// serialised by row locks rather than by the isolation level.
//
// An error from fn rolls back and is returned unchanged, so callers still see
// its domain kind. Begin and commit failures are storage failures. A failed
// rollback is joined to fn's error. A panic rolls back and re-panics.
func (m *TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txFromCtx(ctx); ok {
		return fn(ctx)
	}

	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return domain.StorageError("begin transaction", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			panic(r)
		}
	}()

	if err := fn(withTx(ctx, tx)); err != nil {
		// The request may already be cancelled; the rollback must still reach
		// the server.
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
			return errors.Join(err, domain.StorageError("rollback transaction", rbErr))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.StorageError("commit transaction", err)
	}
	return nil
}
