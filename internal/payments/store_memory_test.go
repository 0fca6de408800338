package payments_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payrail/internal/payments"
	"payrail/pkg/sentinel"
)

func newTransaction(id string) payments.Transaction {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return payments.Transaction{
		TransactionID: id,
		StudentID:     "2020-TWC-1223",
		Amount:        decimal.NewFromFloat(100.00),
		ScheduledDate: now,
		Status:        payments.StatusSuccess,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestInMemoryStoreCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("stores and retrieves a transaction", func(t *testing.T) {
		store := payments.NewInMemoryStore()
		require.NoError(t, store.Create(ctx, newTransaction("T1")))

		got, err := store.FindByTransactionID(ctx, "T1")
		require.NoError(t, err)
		assert.Equal(t, "T1", got.TransactionID)
		assert.Equal(t, payments.StatusSuccess, got.Status)
	})

	t.Run("duplicate transaction ID is rejected", func(t *testing.T) {
		store := payments.NewInMemoryStore()
		require.NoError(t, store.Create(ctx, newTransaction("T1")))
		assert.ErrorIs(t, store.Create(ctx, newTransaction("T1")), sentinel.ErrConflict)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("unknown transaction returns not found", func(t *testing.T) {
		store := payments.NewInMemoryStore()
		_, err := store.FindByTransactionID(ctx, "missing")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

// Concurrent deliveries of the same transaction must produce exactly one row
// and exactly one successful create.
func TestInMemoryStoreConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	store := payments.NewInMemoryStore()
	const goroutines = 50

	var wg sync.WaitGroup
	var created atomic.Int32
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := store.Create(ctx, newTransaction("T-RACE")); err == nil {
				created.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
	assert.Equal(t, 1, store.Len())
}

func TestInMemoryStoreUpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("updates status and detail, advances updated_at only", func(t *testing.T) {
		store := payments.NewInMemoryStore()
		txn := newTransaction("T1")
		txn.Status = payments.StatusSent
		require.NoError(t, store.Create(ctx, txn))

		detail := `{"transactionId":"T1","status":"success"}`
		later := txn.UpdatedAt.Add(time.Minute)
		require.NoError(t, store.UpdateStatus(ctx, "T1", payments.StatusSuccess, &detail, later))

		got, err := store.FindByTransactionID(ctx, "T1")
		require.NoError(t, err)
		assert.Equal(t, payments.StatusSuccess, got.Status)
		require.NotNil(t, got.ResponseDetail)
		assert.Equal(t, detail, *got.ResponseDetail)
		assert.Equal(t, txn.CreatedAt, got.CreatedAt)
		assert.Equal(t, later, got.UpdatedAt)
	})

	t.Run("updated_at never goes backwards", func(t *testing.T) {
		store := payments.NewInMemoryStore()
		txn := newTransaction("T1")
		require.NoError(t, store.Create(ctx, txn))

		earlier := txn.UpdatedAt.Add(-time.Hour)
		require.NoError(t, store.UpdateStatus(ctx, "T1", payments.StatusFailed, nil, earlier))

		got, err := store.FindByTransactionID(ctx, "T1")
		require.NoError(t, err)
		assert.Equal(t, txn.UpdatedAt, got.UpdatedAt)
	})

	t.Run("unknown transaction returns not found", func(t *testing.T) {
		store := payments.NewInMemoryStore()
		err := store.UpdateStatus(ctx, "missing", payments.StatusFailed, nil, time.Now())
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

func TestInMemoryStoreListByStatus(t *testing.T) {
	ctx := context.Background()
	store := payments.NewInMemoryStore()

	sent := newTransaction("T1")
	sent.Status = payments.StatusSent
	require.NoError(t, store.Create(ctx, sent))
	require.NoError(t, store.Create(ctx, newTransaction("T2")))

	got, err := store.ListByStatus(ctx, payments.StatusSent)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "T1", got[0].TransactionID)
}

func TestParseStatus(t *testing.T) {
	assert.Equal(t, payments.StatusSuccess, payments.ParseStatus("success"))
	assert.Equal(t, payments.StatusSuccess, payments.ParseStatus("Successful"))
	assert.Equal(t, payments.StatusFailed, payments.ParseStatus("FAILED"))
	assert.Equal(t, payments.StatusSent, payments.ParseStatus("Sent"))
	assert.Equal(t, payments.Status("disputed"), payments.ParseStatus("disputed"))
}
