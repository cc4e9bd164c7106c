package wikigate

import (
	"context"
	"fmt"

	"github.com/fernandezvara/dbkit"
)

// txContextKey carries the open transaction through the callback's context.
type txContextKey struct{}

// withTx binds a transaction to the context for the duration of a callback.
func withTx(ctx context.Context, tx *dbkit.Tx) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

// txFromContext returns the transaction bound to the context, if any.
func txFromContext(ctx context.Context) (*dbkit.Tx, bool) {
	tx, ok := ctx.Value(txContextKey{}).(*dbkit.Tx)
	return tx, ok
}

// conn returns the handle operations should use: the transaction bound to the
// context when one is open, otherwise the pooled database. The Service itself
// is never mutated, so concurrent requests on other contexts keep reading
// through the pool while a transaction is in flight.
func (s *Service) conn(ctx context.Context) dbkit.IDB {
	if tx, ok := txFromContext(ctx); ok {
		return tx
	}
	return s.db
}

// Transaction executes a function within a database transaction with automatic
// commit/rollback. If the function returns an error, the transaction is rolled
// back. Otherwise, it's committed.
//
// The transaction travels in the callback's context: operations called with
// that context read and write through the transaction, while operations on any
// other context keep using the pool. Share writes, grant writes and subtree
// deletes run inside a transaction so a failed request never leaves a
// half-applied visibility change.
//
// Example:
//
//	err := service.Transaction(ctx, func(ctx context.Context) error {
//	    if _, err := service.GrantCapability(ctx, docID, "user1", wikigate.CapabilityReadable); err != nil {
//	        return err // This will cause a rollback
//	    }
//	    return nil // This will cause a commit
//	})
func (s *Service) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	// Already inside a transaction: use a savepoint.
	if tx, ok := txFromContext(ctx); ok {
		return tx.Transaction(ctx, func(tx *dbkit.Tx) error {
			return fn(withTx(ctx, tx))
		})
	}

	if db, ok := s.db.(*dbkit.DBKit); ok {
		return db.Transaction(ctx, func(tx *dbkit.Tx) error {
			return fn(withTx(ctx, tx))
		})
	}

	return fmt.Errorf("transaction support requires a dbkit.DBKit instance")
}

// TransactionWithOptions executes a function within a database transaction
// with custom options (isolation level, read-only).
//
// Example:
//
//	err := service.TransactionWithOptions(ctx, dbkit.SerializableTxOptions(), func(ctx context.Context) error {
//	    return service.DeleteDocument(ctx, docID)
//	})
func (s *Service) TransactionWithOptions(ctx context.Context, opts dbkit.TxOptions, fn func(ctx context.Context) error) error {
	// Nested transactions fall back to savepoints without options.
	if tx, ok := txFromContext(ctx); ok {
		return tx.Transaction(ctx, func(tx *dbkit.Tx) error {
			return fn(withTx(ctx, tx))
		})
	}

	if db, ok := s.db.(*dbkit.DBKit); ok {
		return db.TransactionWithOptions(ctx, opts, func(tx *dbkit.Tx) error {
			return fn(withTx(ctx, tx))
		})
	}

	return fmt.Errorf("transaction support requires a dbkit.DBKit instance")
}

// ReadOnlyTransaction executes a function within a read-only transaction.
// Useful for consistent multi-read snapshots of the tree.
func (s *Service) ReadOnlyTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.TransactionWithOptions(ctx, dbkit.ReadOnlyTxOptions(), fn)
}
