package payments

import (
	"context"
	"sync"
	"time"

	"payrail/pkg/sentinel"
)

// InMemoryStore keeps development and tests lightweight. The write lock gives
// Create its insert-if-absent atomicity.
type InMemoryStore struct {
	mu           sync.RWMutex
	transactions map[string]Transaction
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{transactions: make(map[string]Transaction)}
}

func (s *InMemoryStore) Create(_ context.Context, txn Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[txn.TransactionID]; ok {
		return sentinel.ErrConflict
	}
	s.transactions[txn.TransactionID] = txn
	return nil
}

func (s *InMemoryStore) FindByTransactionID(_ context.Context, transactionID string) (Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if txn, ok := s.transactions[transactionID]; ok {
		return txn, nil
	}
	return Transaction{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) UpdateStatus(_ context.Context, transactionID string, status Status, responseDetail *string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	txn, ok := s.transactions[transactionID]
	if !ok {
		return sentinel.ErrNotFound
	}
	txn.Status = status
	txn.ResponseDetail = responseDetail
	// UpdatedAt is monotonically non-decreasing even if the caller's clock
	// lags a previous update.
	if now.After(txn.UpdatedAt) {
		txn.UpdatedAt = now
	}
	s.transactions[transactionID] = txn
	return nil
}

func (s *InMemoryStore) ListByStatus(_ context.Context, status Status) ([]Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Transaction
	for _, txn := range s.transactions {
		if txn.Status == status {
			out = append(out, txn)
		}
	}
	return out, nil
}

// Len reports the number of stored transactions. Test helper.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.transactions)
}
