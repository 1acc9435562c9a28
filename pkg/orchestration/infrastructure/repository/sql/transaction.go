package sql

import (
	"context"

	"gorm.io/gorm"

	tx "github.com/tigerroll/lineup/pkg/orchestration/core/tx"
	"github.com/tigerroll/lineup/pkg/orchestration/support/util/exception"
	logger "github.com/tigerroll/lineup/pkg/orchestration/support/util/logger"
)

// GormTransactionManager implements tx.TransactionManager over GORM. The
// transaction handle travels in the context so repository calls made with
// the inner context join the transaction transparently.
type GormTransactionManager struct {
	db *gorm.DB
}

var _ tx.TransactionManager = (*GormTransactionManager)(nil)

func NewGormTransactionManager(db *gorm.DB) *GormTransactionManager {
	return &GormTransactionManager{db: db}
}

// WithinTx begins a transaction, runs fn with a context carrying it and
// commits on a nil return. Any error (or panic) from fn rolls back.
func (m *GormTransactionManager) WithinTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	// Nested calls join the enclosing transaction instead of opening a new
	// one; commit/rollback stays with the outermost caller.
	if _, ok := tx.TxFromContext(ctx); ok {
		return fn(ctx)
	}
	err := m.db.WithContext(ctx).Transaction(func(gtx *gorm.DB) error {
		return fn(tx.ContextWithTx(ctx, gtx))
	})
	if err != nil {
		if exception.IsBatchError(err) {
			return err
		}
		logger.Debugf("Transaction rolled back: %v", err)
		return exception.NewBatchError("transaction", "transaction failed and was rolled back", err, true)
	}
	return nil
}
