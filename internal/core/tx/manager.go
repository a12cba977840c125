// Package tx declares the transaction boundary used by domain services.
// The pgx implementation lives in infrastructure/storage/postgres.
package tx

import (
	"context"
)

// Manager runs fn inside one database transaction: committed when fn
// returns nil, rolled back otherwise. A nested call joins the transaction
// already carried by ctx, so a register row lock taken by an outer call
// stays held until the outermost fn returns.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager adds read-only transactions, used for report and balance
// reads that must see one consistent snapshot of the ledger.
type ReadOnlyManager interface {
	Manager

	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
