package processor_test

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"payrail/internal/enrollment"
	"payrail/internal/payments"
	"payrail/internal/payments/processor"
	pkgerrors "payrail/pkg/errors"
)

type ProcessorSuite struct {
	suite.Suite
	store     *payments.InMemoryStore
	students  *enrollment.InMemoryStudentStore
	processor *processor.Processor
}

func TestProcessorSuite(t *testing.T) {
	suite.Run(t, new(ProcessorSuite))
}

func (s *ProcessorSuite) SetupTest() {
	s.store = payments.NewInMemoryStore()
	s.students = enrollment.NewInMemoryStudentStore()

	logger := slog.New(slog.DiscardHandler)
	validator := enrollment.NewService(s.students, logger)
	s.processor = processor.New(s.store, validator, logger, nil)
}

func (s *ProcessorSuite) enrollStudent(id string, enrolled bool) {
	err := s.students.Save(context.Background(), enrollment.Student{
		StudentID: id,
		Name:      "Test Student",
		Enrolled:  enrolled,
		Balance:   decimal.NewFromFloat(500.00),
	})
	s.Require().NoError(err)
}

func request(txnID, studentID string) payments.Request {
	return payments.Request{
		TransactionID: txnID,
		StudentID:     studentID,
		Amount:        decimal.NewFromFloat(100.00),
		ScheduledDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *ProcessorSuite) TestBatchBoundaries() {
	ctx := context.Background()

	s.Run("empty batch is rejected whole", func() {
		_, err := s.processor.ProcessBatch(ctx, nil)
		s.Error(err)
		s.True(pkgerrors.Is(err, pkgerrors.CodeBadRequest))
	})

	s.Run("oversized batch is rejected whole, not truncated", func() {
		s.enrollStudent("S1", true)
		reqs := make([]payments.Request, processor.MaxBatchSize+1)
		for i := range reqs {
			reqs[i] = request(fmt.Sprintf("T%d", i), "S1")
		}
		_, err := s.processor.ProcessBatch(ctx, reqs)
		s.Error(err)
		s.True(pkgerrors.Is(err, pkgerrors.CodeBadRequest))
		s.Equal(0, s.store.Len())
	})

	s.Run("batch at the cap is accepted", func() {
		s.enrollStudent("S1", true)
		reqs := make([]payments.Request, processor.MaxBatchSize)
		for i := range reqs {
			reqs[i] = request(fmt.Sprintf("T%d", i), "S1")
		}
		results, err := s.processor.ProcessBatch(ctx, reqs)
		s.NoError(err)
		s.Len(results, processor.MaxBatchSize)
	})
}

func (s *ProcessorSuite) TestEligibilityGate() {
	ctx := context.Background()

	s.Run("unknown student fails and persists nothing", func() {
		results, err := s.processor.ProcessBatch(ctx, []payments.Request{request("T2", "S-MISSING")})
		s.Require().NoError(err)
		s.Equal([]payments.Result{{TransactionID: "T2", Status: "failed"}}, results)
		s.Equal(0, s.store.Len())
	})

	s.Run("unenrolled student fails and persists nothing", func() {
		s.enrollStudent("S2", false)
		results, err := s.processor.ProcessBatch(ctx, []payments.Request{request("T3", "S2")})
		s.Require().NoError(err)
		s.Equal("failed", results[0].Status)
		s.Equal(0, s.store.Len())
	})

	s.Run("blank transaction ID fails without touching the store", func() {
		s.enrollStudent("S1", true)
		results, err := s.processor.ProcessBatch(ctx, []payments.Request{request("", "S1")})
		s.Require().NoError(err)
		s.Equal("failed", results[0].Status)
		s.Equal(0, s.store.Len())
	})

	s.Run("negative amount fails without touching the store", func() {
		s.enrollStudent("S1", true)
		req := request("T4", "S1")
		req.Amount = decimal.NewFromFloat(-5.00)
		results, err := s.processor.ProcessBatch(ctx, []payments.Request{req})
		s.Require().NoError(err)
		s.Equal("failed", results[0].Status)
		s.Equal(0, s.store.Len())
	})
}

func (s *ProcessorSuite) TestIdempotency() {
	ctx := context.Background()
	s.enrollStudent("S1", true)
	batch := []payments.Request{request("T1", "S1")}

	first, err := s.processor.ProcessBatch(ctx, batch)
	s.Require().NoError(err)
	s.Equal([]payments.Result{{TransactionID: "T1", Status: "success"}}, first)
	s.Equal(1, s.store.Len())

	txn, err := s.store.FindByTransactionID(ctx, "T1")
	s.Require().NoError(err)
	s.Equal(payments.StatusSuccess, txn.Status)

	// Replaying the identical batch yields identical results and no new rows,
	// even after the student is withdrawn.
	s.enrollStudent("S1", false)
	second, err := s.processor.ProcessBatch(ctx, batch)
	s.Require().NoError(err)
	s.Equal(first, second)
	s.Equal(1, s.store.Len())

	unchanged, err := s.store.FindByTransactionID(ctx, "T1")
	s.Require().NoError(err)
	s.Equal(txn.CreatedAt, unchanged.CreatedAt)
}

func (s *ProcessorSuite) TestPerRequestIsolation() {
	ctx := context.Background()
	s.enrollStudent("S1", true)

	batch := []payments.Request{
		request("T1", "S1"),
		request("T2", "S-MISSING"),
		request("T3", "S1"),
	}
	results, err := s.processor.ProcessBatch(ctx, batch)
	s.Require().NoError(err)

	// One bad request never aborts the batch, and order is preserved.
	s.Equal([]payments.Result{
		{TransactionID: "T1", Status: "success"},
		{TransactionID: "T2", Status: "failed"},
		{TransactionID: "T3", Status: "success"},
	}, results)
	s.Equal(2, s.store.Len())
}

func (s *ProcessorSuite) TestCreateConflictCountsAsProcessed() {
	ctx := context.Background()
	s.enrollStudent("S1", true)

	// Simulate losing the insert race: the row appears between the dedupe
	// check and Create.
	store := &racingStore{InMemoryStore: payments.NewInMemoryStore()}
	logger := slog.New(slog.DiscardHandler)
	proc := processor.New(store, enrollment.NewService(s.students, logger), logger, nil)

	results, err := proc.ProcessBatch(ctx, []payments.Request{request("T1", "S1")})
	s.Require().NoError(err)
	s.Equal("success", results[0].Status)
}

// racingStore reports every Create as a conflict, as if a concurrent delivery
// had just inserted the same transaction.
type racingStore struct {
	*payments.InMemoryStore
}

func (s *racingStore) Create(ctx context.Context, txn payments.Transaction) error {
	if err := s.InMemoryStore.Create(ctx, txn); err != nil {
		return err
	}
	return s.InMemoryStore.Create(ctx, txn)
}
