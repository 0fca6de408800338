package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Recorder captures one entry per inbound operation. Handlers call Record
// before writing any response; a Record failure is fatal for that request
// because the audit trail is a compliance requirement, not best-effort.
type Recorder struct {
	store  Store
	logger *slog.Logger
}

func NewRecorder(store Store, logger *slog.Logger) *Recorder {
	return &Recorder{store: store, logger: logger}
}

// Record serializes the request payload and appends the entry synchronously.
// A nil payload leaves RequestPayload null; detail carries the error text for
// failed outcomes.
func (r *Recorder) Record(ctx context.Context, actor, operation string, payload any, resultCode int, detail error) error {
	entry := Entry{
		ID:         uuid.New(),
		Timestamp:  time.Now().UTC(),
		Actor:      actor,
		Operation:  operation,
		ResultCode: resultCode,
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal audit payload: %w", err)
		}
		s := string(raw)
		entry.RequestPayload = &s
	}
	if detail != nil {
		s := detail.Error()
		entry.ErrorDetail = &s
	}
	if err := r.store.Append(ctx, entry); err != nil {
		r.logger.ErrorContext(ctx, "audit append failed",
			"operation", operation,
			"error", err.Error(),
		)
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}
