// Package handler exposes the receiving party's notification endpoint.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"payrail/internal/audit"
	"payrail/internal/payments"
	"payrail/internal/platform/middleware"
	"payrail/internal/transport/http/shared"
	pkgerrors "payrail/pkg/errors"
)

const callerActor = "MockBank"

// BatchProcessor is the processing surface this handler needs. Satisfied by
// *processor.Processor.
type BatchProcessor interface {
	ProcessBatch(ctx context.Context, reqs []payments.Request) ([]payments.Result, error)
}

// ResultSink receives processed batch results for asynchronous webhook
// delivery. Satisfied by *webhook.Dispatcher.
type ResultSink interface {
	Enqueue(results []payments.Result)
}

type Handler struct {
	processor BatchProcessor
	sink      ResultSink
	recorder  *audit.Recorder
	logger    *slog.Logger
	apiKey    string
}

func New(processor BatchProcessor, sink ResultSink, recorder *audit.Recorder, logger *slog.Logger, apiKey string) *Handler {
	return &Handler{processor: processor, sink: sink, recorder: recorder, logger: logger, apiKey: apiKey}
}

// Register mounts the payments routes behind the shared-secret check.
func (h *Handler) Register(r chi.Router) {
	pr := chi.NewRouter()
	pr.Use(middleware.RequireAPIKey(h.apiKey, h.logger))
	pr.Post("/notification", h.handleNotification)
	r.Mount("/api/payments", pr)
}

func (h *Handler) handleNotification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var reqs []payments.Request
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		h.audited(ctx, w, nil, pkgerrors.New(pkgerrors.CodeBadRequest, "invalid input data"))
		return
	}

	results, err := h.processor.ProcessBatch(ctx, reqs)
	if err != nil {
		h.audited(ctx, w, reqs, err)
		return
	}

	if err := h.recorder.Record(ctx, callerActor, "ProcessNotification", reqs, http.StatusOK, nil); err != nil {
		shared.WriteError(w, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "record audit entry"))
		return
	}

	// Push the outcome back to the disbursing party off the request path.
	if h.sink != nil {
		h.sink.Enqueue(results)
	}

	shared.WriteJSON(w, http.StatusOK, results)
}

func (h *Handler) audited(ctx context.Context, w http.ResponseWriter, payload any, cause error) {
	status := pkgerrors.ToHTTPStatus(pkgerrors.CodeOf(cause))
	if err := h.recorder.Record(ctx, callerActor, "ProcessNotification", payload, status, cause); err != nil {
		shared.WriteError(w, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "record audit entry"))
		return
	}
	shared.WriteError(w, cause)
}
