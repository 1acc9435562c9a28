// Package tx provides the transaction management abstraction of the
// orchestration engine. Every multi-row mutation (batch+jobs creation, a
// submission's status+external-id update) must run inside one atomic
// transaction so a crash mid-operation cannot leave a job referencing a
// missing batch or carrying an external id with a stale status.
package tx

import "context"

// txContextKey is the context key under which an active transaction handle
// travels. Repositories inspect the context and join the transaction when
// present, falling back to the bare connection otherwise.
type txContextKey struct{}

// ContextWithTx returns a context carrying the given transaction handle.
// The handle's concrete type is owned by the TransactionManager
// implementation (e.g. *gorm.DB for the SQL store).
func ContextWithTx(ctx context.Context, handle interface{}) context.Context {
	return context.WithValue(ctx, txContextKey{}, handle)
}

// TxFromContext extracts the transaction handle from the context, if any.
func TxFromContext(ctx context.Context) (interface{}, bool) {
	handle := ctx.Value(txContextKey{})
	if handle == nil {
		return nil, false
	}
	return handle, true
}

// TransactionManager manages the lifecycle of store transactions.
type TransactionManager interface {
	// WithinTx begins a transaction, runs fn with a context carrying it and
	// commits on a nil return or rolls back otherwise. The context passed to
	// fn must be used for every repository call that should join the
	// transaction.
	WithinTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

// NoopTransactionManager satisfies TransactionManager without transactional
// semantics. It backs the in-memory repository, whose single-map mutations
// are already atomic under its lock.
type NoopTransactionManager struct{}

// NewNoopTransactionManager creates a new NoopTransactionManager.
func NewNoopTransactionManager() *NoopTransactionManager {
	return &NoopTransactionManager{}
}

// WithinTx runs fn directly against the given context.
func (m *NoopTransactionManager) WithinTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

var _ TransactionManager = (*NoopTransactionManager)(nil)
