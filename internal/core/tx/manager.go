// Package tx defines the transaction boundary contract. Domain services work
// against these interfaces; the pgx-backed implementation lives in
// infrastructure/storage/postgres.
package tx

import (
	"context"
)

// Manager runs functions inside a database transaction.
type Manager interface {
	// RunInTransaction executes fn within a transaction: commit on nil,
	// rollback on error. A nested call joins the transaction already
	// carried by ctx instead of opening a new one.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager adds read-only transactions for multi-query reads that
// need one consistent snapshot.
type ReadOnlyManager interface {
	Manager

	// ReadOnly executes fn in a read-only transaction; writes inside fn
	// fail.
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
