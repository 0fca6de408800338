// Package processor implements the receiving party's notification processing:
// deduplicate against the transaction store, gate on eligibility, persist,
// and report one outcome per request in input order.
package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"payrail/internal/enrollment"
	"payrail/internal/payments"
	"payrail/internal/payments/metrics"
	pkgerrors "payrail/pkg/errors"
	"payrail/pkg/sentinel"
)

// MaxBatchSize bounds one notification call. Oversized batches are rejected
// whole rather than truncated: silently dropping payment instructions is
// worse than making the caller split the batch.
const MaxBatchSize = 100

// Validator answers whether a student may receive a payment. Satisfied by
// *enrollment.Service.
type Validator interface {
	Validate(ctx context.Context, studentID string) (enrollment.Eligibility, error)
}

// Processor handles notification batches idempotently. Replaying an identical
// batch yields identical results and creates no duplicate transactions.
type Processor struct {
	store     payments.Store
	validator Validator
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

func New(store payments.Store, validator Validator, logger *slog.Logger, m *metrics.Metrics) *Processor {
	return &Processor{store: store, validator: validator, logger: logger, metrics: m}
}

// ProcessBatch returns one result per request, in request order. Call-level
// failures (empty or oversized batch) reject the whole call; everything that
// goes wrong for a single request is captured in that request's result and
// never aborts the rest of the batch.
func (p *Processor) ProcessBatch(ctx context.Context, reqs []payments.Request) ([]payments.Result, error) {
	if len(reqs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeBadRequest, "notification batch must not be empty")
	}
	if len(reqs) > MaxBatchSize {
		return nil, pkgerrors.New(pkgerrors.CodeBadRequest,
			fmt.Sprintf("notification batch exceeds %d requests", MaxBatchSize))
	}
	p.metrics.ObserveBatchSize(len(reqs))

	results := make([]payments.Result, 0, len(reqs))
	for _, req := range reqs {
		results = append(results, p.processOne(ctx, req))
	}
	return results, nil
}

func (p *Processor) processOne(ctx context.Context, req payments.Request) payments.Result {
	if req.TransactionID == "" {
		p.logger.WarnContext(ctx, "rejected request without transaction ID", "student_id", req.StudentID)
		return p.failed(req)
	}
	if req.Amount.IsNegative() {
		p.logger.WarnContext(ctx, "rejected negative amount",
			"transaction_id", req.TransactionID,
			"amount", req.Amount.String(),
		)
		return p.failed(req)
	}

	// Idempotency: a transaction we have already recorded is reported as
	// processed without re-validating or re-persisting anything.
	_, err := p.store.FindByTransactionID(ctx, req.TransactionID)
	switch {
	case err == nil:
		p.metrics.RecordDuplicate()
		p.logger.InfoContext(ctx, "payment already processed", "transaction_id", req.TransactionID)
		return p.success(req)
	case !errors.Is(err, sentinel.ErrNotFound):
		p.logger.ErrorContext(ctx, "transaction lookup failed",
			"transaction_id", req.TransactionID,
			"error", err.Error(),
		)
		return p.failed(req)
	}

	if _, err := p.validator.Validate(ctx, req.StudentID); err != nil {
		p.logger.WarnContext(ctx, "payment rejected by eligibility check",
			"transaction_id", req.TransactionID,
			"student_id", req.StudentID,
			"error", err.Error(),
		)
		return p.failed(req)
	}

	now := time.Now().UTC()
	txn := payments.Transaction{
		TransactionID: req.TransactionID,
		StudentID:     req.StudentID,
		Amount:        req.Amount,
		ScheduledDate: req.ScheduledDate,
		Status:        payments.StatusSuccess,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := p.store.Create(ctx, txn); err != nil {
		// A concurrent delivery of the same batch won the insert race; the
		// transaction is processed either way.
		if errors.Is(err, sentinel.ErrConflict) {
			p.metrics.RecordDuplicate()
			return p.success(req)
		}
		p.logger.ErrorContext(ctx, "persist payment failed",
			"transaction_id", req.TransactionID,
			"error", err.Error(),
		)
		return p.failed(req)
	}

	p.logger.InfoContext(ctx, "payment processed", "transaction_id", req.TransactionID)
	return p.success(req)
}

func (p *Processor) success(req payments.Request) payments.Result {
	p.metrics.RecordOutcome(payments.ResultSuccess)
	return payments.Result{TransactionID: req.TransactionID, Status: payments.ResultSuccess}
}

func (p *Processor) failed(req payments.Request) payments.Result {
	p.metrics.RecordOutcome(payments.ResultFailed)
	return payments.Result{TransactionID: req.TransactionID, Status: payments.ResultFailed}
}
