// Package handler exposes the disbursing party's routes: the two outbound
// operations and the inbound status webhook.
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

// selfActor identifies this service on its own audit trail.
const selfActor = "MockBank"

// Gateway is the orchestration surface this handler needs. Satisfied by
// *gateway.Service.
type Gateway interface {
	ValidateSubject(ctx context.Context, partyCode, studentID string) (json.RawMessage, error)
	SendNotification(ctx context.Context, partyCode string, reqs []payments.Request) (json.RawMessage, error)
	UnconfirmedTransactions(ctx context.Context) ([]payments.Transaction, error)
}

// StatusApplier is the reconciliation surface this handler needs. Satisfied
// by *reconciler.Reconciler.
type StatusApplier interface {
	ApplyStatusUpdates(ctx context.Context, updates []payments.StatusUpdate) error
}

type Handler struct {
	gateway       Gateway
	reconciler    StatusApplier
	recorder      *audit.Recorder
	logger        *slog.Logger
	webhookAPIKey string
}

func New(gateway Gateway, reconciler StatusApplier, recorder *audit.Recorder, logger *slog.Logger, webhookAPIKey string) *Handler {
	return &Handler{
		gateway:       gateway,
		reconciler:    reconciler,
		recorder:      recorder,
		logger:        logger,
		webhookAPIKey: webhookAPIKey,
	}
}

// Register mounts the bank routes. The operator-facing dispatch routes sit on
// an internal network; only the webhook, reachable by the counterparty, is
// behind the shared-secret check.
func (h *Handler) Register(r chi.Router) {
	pr := chi.NewRouter()
	pr.Post("/validate-student/{partyCode}", h.handleValidateStudent)
	pr.Post("/send-notification/{partyCode}", h.handleSendNotification)
	pr.Get("/unconfirmed", h.handleUnconfirmed)

	pr.Group(func(g chi.Router) {
		g.Use(middleware.RequireAPIKey(h.webhookAPIKey, h.logger))
		g.Post("/webhook", h.handleWebhook)
	})

	r.Mount("/api/payments", pr)
}

type validateStudentRequest struct {
	StudentID string `json:"studentId"`
}

func (h *Handler) handleValidateStudent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	partyCode := chi.URLParam(r, "partyCode")

	var req validateStudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.audited(ctx, w, "ValidateStudent", nil, pkgerrors.New(pkgerrors.CodeBadRequest, "invalid request body"))
		return
	}

	resp, err := h.gateway.ValidateSubject(ctx, partyCode, req.StudentID)
	if err != nil {
		h.audited(ctx, w, "ValidateStudent", req, err)
		return
	}

	if err := h.recorder.Record(ctx, selfActor, "ValidateStudent", req, http.StatusOK, nil); err != nil {
		shared.WriteError(w, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "record audit entry"))
		return
	}
	writeRaw(w, resp)
}

func (h *Handler) handleSendNotification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	partyCode := chi.URLParam(r, "partyCode")

	var reqs []payments.Request
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		h.audited(ctx, w, "SendNotification", nil, pkgerrors.New(pkgerrors.CodeBadRequest, "invalid request body"))
		return
	}

	resp, err := h.gateway.SendNotification(ctx, partyCode, reqs)
	if err != nil {
		h.audited(ctx, w, "SendNotification", reqs, err)
		return
	}

	if err := h.recorder.Record(ctx, selfActor, "SendNotification", reqs, http.StatusOK, nil); err != nil {
		shared.WriteError(w, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "record audit entry"))
		return
	}
	writeRaw(w, resp)
}

func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var updates []payments.StatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.audited(ctx, w, "ReceiveWebhook", nil, pkgerrors.New(pkgerrors.CodeBadRequest, "webhook payload cannot be empty"))
		return
	}

	if err := h.reconciler.ApplyStatusUpdates(ctx, updates); err != nil {
		h.audited(ctx, w, "ReceiveWebhook", updates, err)
		return
	}

	if err := h.recorder.Record(ctx, selfActor, "ReceiveWebhook", updates, http.StatusOK, nil); err != nil {
		shared.WriteError(w, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "record audit entry"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": "webhook received successfully"})
}

// handleUnconfirmed lists Sent-state transactions awaiting reconciliation.
// Operator visibility into sends the webhook has not yet converged.
func (h *Handler) handleUnconfirmed(w http.ResponseWriter, r *http.Request) {
	txns, err := h.gateway.UnconfirmedTransactions(r.Context())
	if err != nil {
		shared.WriteError(w, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "list unconfirmed transactions"))
		return
	}
	type row struct {
		TransactionID string `json:"transactionId"`
		StudentID     string `json:"studentId"`
		Amount        string `json:"amount"`
		Status        string `json:"status"`
	}
	out := make([]row, 0, len(txns))
	for _, t := range txns {
		out = append(out, row{
			TransactionID: t.TransactionID,
			StudentID:     t.StudentID,
			Amount:        t.Amount.StringFixed(2),
			Status:        string(t.Status),
		})
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) audited(ctx context.Context, w http.ResponseWriter, operation string, payload any, cause error) {
	status := pkgerrors.ToHTTPStatus(pkgerrors.CodeOf(cause))
	if err := h.recorder.Record(ctx, selfActor, operation, payload, status, cause); err != nil {
		shared.WriteError(w, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "record audit entry"))
		return
	}
	shared.WriteError(w, cause)
}

func writeRaw(w http.ResponseWriter, raw json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}
