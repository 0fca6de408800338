// Package reconciler applies asynchronous status callbacks to the disbursing
// side's transaction store, converging it with the receiving party's.
package reconciler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"payrail/internal/payments"
	"payrail/internal/payments/metrics"
	pkgerrors "payrail/pkg/errors"
	"payrail/pkg/sentinel"
)

// Reconciler moves transactions out of Sent based on webhook callbacks. The
// channel is fire-and-forget from the receiving party's side: one unmatched
// ID must never leave the counterparty retrying forever, so only an empty
// payload or a storage failure rejects the call.
type Reconciler struct {
	store   payments.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func New(store payments.Store, logger *slog.Logger, m *metrics.Metrics) *Reconciler {
	return &Reconciler{store: store, logger: logger, metrics: m}
}

// ApplyStatusUpdates processes every update independently. A terminal
// transaction hit by a second callback is overwritten last-write-wins; the
// applied log line keeps repeated deliveries visible.
func (r *Reconciler) ApplyStatusUpdates(ctx context.Context, updates []payments.StatusUpdate) error {
	if len(updates) == 0 {
		return pkgerrors.New(pkgerrors.CodeBadRequest, "webhook payload must not be empty")
	}

	now := time.Now().UTC()
	for _, update := range updates {
		raw, err := json.Marshal(update)
		if err != nil {
			return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "serialize status update")
		}
		detail := string(raw)

		status := payments.ParseStatus(update.Status)
		err = r.store.UpdateStatus(ctx, update.TransactionID, status, &detail, now)
		switch {
		case err == nil:
			r.metrics.RecordWebhookUpdate("applied")
			r.logger.InfoContext(ctx, "applied status update",
				"transaction_id", update.TransactionID,
				"status", string(status),
			)
		case errors.Is(err, sentinel.ErrNotFound):
			r.metrics.RecordWebhookUpdate("unmatched")
			r.logger.WarnContext(ctx, "no transaction for status update",
				"transaction_id", update.TransactionID,
			)
		default:
			return pkgerrors.Wrap(err, pkgerrors.CodeInternal, "apply status update")
		}
	}
	return nil
}
