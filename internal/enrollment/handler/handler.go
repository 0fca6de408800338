// Package handler exposes the receiving party's eligibility endpoint.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"payrail/internal/audit"
	"payrail/internal/enrollment"
	"payrail/internal/platform/middleware"
	"payrail/internal/transport/http/shared"
	pkgerrors "payrail/pkg/errors"
)

// callerActor is the disbursing party's declared identity on the audit trail.
const callerActor = "MockBank"

// Validator is the eligibility service surface this handler needs.
type Validator interface {
	Validate(ctx context.Context, studentID string) (enrollment.Eligibility, error)
}

type Handler struct {
	validator Validator
	recorder  *audit.Recorder
	logger    *slog.Logger
	apiKey    string
}

func New(validator Validator, recorder *audit.Recorder, logger *slog.Logger, apiKey string) *Handler {
	return &Handler{validator: validator, recorder: recorder, logger: logger, apiKey: apiKey}
}

// Register mounts the students routes behind the shared-secret check.
func (h *Handler) Register(r chi.Router) {
	sr := chi.NewRouter()
	sr.Use(middleware.RequireAPIKey(h.apiKey, h.logger))
	sr.Post("/validate", h.handleValidate)
	r.Mount("/api/students", sr)
}

type validateRequest struct {
	StudentID string `json:"studentId"`
}

type validateResponse struct {
	IsValid          bool            `json:"isValid"`
	EnrollmentStatus string          `json:"enrollmentStatus"`
	StudentID        string          `json:"studentId"`
	StudentName      string          `json:"studentName"`
	FeeBalance       decimal.Decimal `json:"feeBalance"`
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.audited(ctx, w, nil, pkgerrors.New(pkgerrors.CodeBadRequest, "invalid request body"))
		return
	}

	result, err := h.validator.Validate(ctx, req.StudentID)
	if err != nil {
		h.logger.WarnContext(ctx, "student validation rejected",
			"request_id", middleware.GetRequestID(ctx),
			"student_id", req.StudentID,
			"error", err.Error(),
		)
		h.audited(ctx, w, req, err)
		return
	}

	// The audit entry must be durable before the response leaves.
	if err := h.recorder.Record(ctx, callerActor, "ValidateStudent", req, http.StatusOK, nil); err != nil {
		shared.WriteError(w, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "record audit entry"))
		return
	}

	shared.WriteJSON(w, http.StatusOK, validateResponse{
		IsValid:          result.Eligible,
		EnrollmentStatus: result.EnrollmentStatus,
		StudentID:        result.StudentID,
		StudentName:      result.Name,
		FeeBalance:       result.Balance,
	})
}

// audited records the failure outcome and then writes the error response. A
// recorder failure trumps the original error: without the audit entry the
// request cannot be answered at all.
func (h *Handler) audited(ctx context.Context, w http.ResponseWriter, payload any, cause error) {
	status := pkgerrors.ToHTTPStatus(pkgerrors.CodeOf(cause))
	if err := h.recorder.Record(ctx, callerActor, "ValidateStudent", payload, status, cause); err != nil {
		shared.WriteError(w, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "record audit entry"))
		return
	}
	shared.WriteError(w, cause)
}
