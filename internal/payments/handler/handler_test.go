package handler_test

import (
	"context"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payrail/internal/audit"
	"payrail/internal/enrollment"
	"payrail/internal/payments"
	"payrail/internal/payments/handler"
	"payrail/internal/payments/processor"
	"payrail/pkg/testutil"
)

const testAPIKey = "test-key"

type captureSink struct {
	batches [][]payments.Result
}

func (s *captureSink) Enqueue(results []payments.Result) {
	s.batches = append(s.batches, results)
}

type fixture struct {
	router     chi.Router
	sink       *captureSink
	store      *payments.InMemoryStore
	auditStore *audit.InMemoryStore
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	students := enrollment.NewInMemoryStudentStore()
	require.NoError(t, students.Save(context.Background(), enrollment.Student{
		StudentID: "2020-TWC-1223",
		Name:      "Alice Mwangi",
		Enrolled:  true,
	}))

	store := payments.NewInMemoryStore()
	sink := &captureSink{}
	auditStore := audit.NewInMemoryStore()
	h := handler.New(
		processor.New(store, enrollment.NewService(students, logger), logger, nil),
		sink,
		audit.NewRecorder(auditStore, logger),
		logger,
		testAPIKey,
	)

	r := chi.NewRouter()
	h.Register(r)
	return fixture{router: r, sink: sink, store: store, auditStore: auditStore}
}

func notificationRequest(t *testing.T, body any) *http.Request {
	t.Helper()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/payments/notification", body)
	req.Header.Set("X-API-Key", testAPIKey)
	return req
}

func TestNotificationEndpoint(t *testing.T) {
	goodBatch := []map[string]any{{
		"transactionId": "T1",
		"studentId":     "2020-TWC-1223",
		"amount":        1250.50,
		"paymentDate":   "2024-03-01T00:00:00Z",
	}}

	t.Run("missing API key is rejected before processing", func(t *testing.T) {
		fx := newFixture(t)
		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/payments/notification", goodBatch)

		rr := testutil.DoRequest(fx.router, req)
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
		assert.Equal(t, 0, fx.store.Len())
		assert.Empty(t, fx.auditStore.All())
	})

	t.Run("valid batch persists, responds per request, and enqueues the results", func(t *testing.T) {
		fx := newFixture(t)
		rr := testutil.DoRequest(fx.router, notificationRequest(t, goodBatch))

		testutil.AssertStatus(t, rr, http.StatusOK)
		results := *testutil.UnmarshalResponse[[]payments.Result](t, rr)
		require.Len(t, results, 1)
		assert.Equal(t, "T1", results[0].TransactionID)
		assert.Equal(t, payments.ResultSuccess, results[0].Status)

		txn, err := fx.store.FindByTransactionID(context.Background(), "T1")
		require.NoError(t, err)
		assert.True(t, txn.Amount.Equal(decimal.NewFromFloat(1250.50)))

		require.Len(t, fx.sink.batches, 1)
		assert.Equal(t, results, fx.sink.batches[0])
	})

	t.Run("mixed batch reports failures without aborting the rest", func(t *testing.T) {
		fx := newFixture(t)
		batch := []map[string]any{
			{"transactionId": "T1", "studentId": "2020-TWC-1223", "amount": 100.00, "paymentDate": "2024-03-01T00:00:00Z"},
			{"transactionId": "T2", "studentId": "2020-TWC-9999", "amount": 100.00, "paymentDate": "2024-03-01T00:00:00Z"},
		}
		rr := testutil.DoRequest(fx.router, notificationRequest(t, batch))

		testutil.AssertStatus(t, rr, http.StatusOK)
		results := *testutil.UnmarshalResponse[[]payments.Result](t, rr)
		require.Len(t, results, 2)
		assert.Equal(t, payments.ResultSuccess, results[0].Status)
		assert.Equal(t, payments.ResultFailed, results[1].Status)
	})

	t.Run("malformed body is a 400", func(t *testing.T) {
		fx := newFixture(t)
		req := testutil.NewRequestWithBody(t, http.MethodPost, "/api/payments/notification", "not json")
		req.Header.Set("X-API-Key", testAPIKey)

		rr := testutil.DoRequest(fx.router, req)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
		testutil.AssertErrorContains(t, rr, "invalid input data")
		assert.Empty(t, fx.sink.batches, "nothing to deliver for a rejected call")
	})

	t.Run("empty batch is a 400", func(t *testing.T) {
		fx := newFixture(t)
		rr := testutil.DoRequest(fx.router, notificationRequest(t, []map[string]any{}))
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("audit entry names the caller and carries the payload", func(t *testing.T) {
		fx := newFixture(t)
		testutil.DoRequest(fx.router, notificationRequest(t, goodBatch))

		entries := fx.auditStore.All()
		require.Len(t, entries, 1)
		assert.Equal(t, "MockBank", entries[0].Actor)
		assert.Equal(t, "ProcessNotification", entries[0].Operation)
		assert.Equal(t, http.StatusOK, entries[0].ResultCode)
		require.NotNil(t, entries[0].RequestPayload)
		assert.Contains(t, *entries[0].RequestPayload, "T1")
	})
}
