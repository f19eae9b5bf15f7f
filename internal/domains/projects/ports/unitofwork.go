package ports

import (
	"context"
	"errors"
)

// ErrScopeClosed signals use of a transaction scope that is no longer (or
// not yet) active. It is a programming error, never silently ignored.
var ErrScopeClosed = errors.New("transaction scope is not active")

// UnitOfWork binds repositories to a single database transaction. All
// operations performed through its stores share one all-or-nothing commit
// and observe each other's uncommitted writes.
type UnitOfWork interface {
	// ID identifies the scope in logs.
	ID() string

	// Projects returns the project repository bound to this transaction.
	// The first call constructs it; later calls return the same instance.
	// Operations on it fail with ErrScopeClosed once the scope ends.
	Projects() Repository

	// Commit flushes and commits. On failure it rolls back automatically
	// before returning the error; callers never need a follow-up Rollback.
	Commit() error

	// Rollback discards every change made through this scope's stores and
	// ends the scope.
	Rollback() error

	// Flush makes pending writes visible inside the transaction without
	// committing, e.g. to read generated IDs. Flushed data vanishes on
	// rollback or on scope exit without Commit.
	Flush() error

	// Close ends the scope, rolling back when Commit was never called, and
	// always releases the underlying connection. Idempotent; meant for
	// defer right after Begin.
	Close() error
}

// TransactionManager opens transaction scopes.
type TransactionManager interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}
