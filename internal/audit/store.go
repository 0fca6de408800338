package audit

import "context"

// Store is interface-driven to keep the recorder testable and to allow
// swapping in-memory and postgres persistence without rewiring callers.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	ListByActor(ctx context.Context, actor string) ([]Entry, error)
}
