package domain

import "context"

// TransactionManager runs a function inside a database transaction. The
// transaction is committed when fn returns nil and rolled back otherwise.
// Repositories called with the ctx passed to fn share the same transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
