package payments

import (
	"context"
	"time"
)

// Store is the durable mapping from transaction ID to transaction record.
// Create must be atomic insert-if-absent on TransactionID: two concurrent
// deliveries of the same transaction must never both create a row. That is
// the system's only true race and it is closed here, at the storage layer,
// not with application-level locking.
//
// Stores return pkg/sentinel errors: Create yields sentinel.ErrConflict on a
// duplicate, lookups and UpdateStatus yield sentinel.ErrNotFound.
type Store interface {
	Create(ctx context.Context, txn Transaction) error
	FindByTransactionID(ctx context.Context, transactionID string) (Transaction, error)
	UpdateStatus(ctx context.Context, transactionID string, status Status, responseDetail *string, now time.Time) error
	ListByStatus(ctx context.Context, status Status) ([]Transaction, error)
}
