package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"payrail/internal/gateway/metrics"
	"payrail/internal/payments"
	pkgerrors "payrail/pkg/errors"
	"payrail/pkg/sentinel"
)

// Service orchestrates the disbursing party's outbound protocol: validate a
// student against a receiving party, dispatch notification batches, and keep
// a local Sent-state record of everything dispatched so failed sends remain
// visible and reconcilable.
type Service struct {
	directory Directory
	store     payments.Store
	client    Client
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

func NewService(directory Directory, store payments.Store, client Client, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{directory: directory, store: store, client: client, logger: logger, metrics: m}
}

// ValidateSubject asks the receiving party whether a student is eligible and
// relays its response verbatim.
func (s *Service) ValidateSubject(ctx context.Context, partyCode, studentID string) (json.RawMessage, error) {
	if studentID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeBadRequest, "student ID is required")
	}
	party, err := s.resolve(ctx, partyCode)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.ValidateStudent(ctx, party, studentID)
	if err != nil {
		s.metrics.RecordDispatch(partyCode, "validate_student", "error")
		s.logger.ErrorContext(ctx, "student validation dispatch failed",
			"party", partyCode,
			"student_id", studentID,
			"error", err.Error(),
		)
		return nil, err
	}
	s.metrics.RecordDispatch(partyCode, "validate_student", "ok")
	return resp, nil
}

// SendNotification persists a Sent-state row for every request, then
// dispatches the batch. Rows are written before the network call on purpose:
// if the wire drops, the Sent rows are what reconciliation works from. A
// duplicate row from a re-send is left as-is.
func (s *Service) SendNotification(ctx context.Context, partyCode string, reqs []payments.Request) (json.RawMessage, error) {
	if len(reqs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeBadRequest, "notification batch must not be empty")
	}
	party, err := s.resolve(ctx, partyCode)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	for _, req := range reqs {
		txn := payments.Transaction{
			TransactionID: req.TransactionID,
			StudentID:     req.StudentID,
			Amount:        req.Amount,
			ScheduledDate: req.ScheduledDate,
			Status:        payments.StatusSent,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.store.Create(ctx, txn); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				s.logger.InfoContext(ctx, "transaction already recorded, re-sending",
					"transaction_id", req.TransactionID,
				)
				continue
			}
			return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "record dispatched transaction")
		}
	}

	resp, err := s.client.SendNotification(ctx, party, reqs)
	if err != nil {
		s.metrics.RecordDispatch(partyCode, "send_notification", "error")
		s.logger.ErrorContext(ctx, "notification dispatch failed",
			"party", partyCode,
			"batch_size", len(reqs),
			"error", err.Error(),
		)
		return nil, err
	}
	s.metrics.RecordDispatch(partyCode, "send_notification", "ok")
	s.logger.InfoContext(ctx, "notification batch dispatched",
		"party", partyCode,
		"batch_size", len(reqs),
	)
	return resp, nil
}

// UnconfirmedTransactions lists everything still in Sent state, the rows a
// webhook has not yet converged.
func (s *Service) UnconfirmedTransactions(ctx context.Context) ([]payments.Transaction, error) {
	return s.store.ListByStatus(ctx, payments.StatusSent)
}

func (s *Service) resolve(ctx context.Context, partyCode string) (PartyConfig, error) {
	if partyCode == "" {
		return PartyConfig{}, pkgerrors.New(pkgerrors.CodeBadRequest, "party code is required")
	}
	party, err := s.directory.Resolve(ctx, partyCode)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return PartyConfig{}, pkgerrors.New(pkgerrors.CodeUnknownParty, "unknown party "+partyCode)
		}
		return PartyConfig{}, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "resolve party")
	}
	return party, nil
}
