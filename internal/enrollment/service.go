package enrollment

import (
	"context"
	"errors"
	"log/slog"

	pkgerrors "payrail/pkg/errors"
	"payrail/pkg/sentinel"
)

// EnrollmentStatusActive is the status string reported for eligible students.
const EnrollmentStatusActive = "Active"

// Service answers the single eligibility question: may this student receive a
// payment? Each failure mode carries a distinct taxonomy code so callers can
// branch deterministically. The service has no side effects; auditing is the
// caller's job.
type Service struct {
	store  StudentStore
	logger *slog.Logger
}

func NewService(store StudentStore, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Validate confirms enrollment and returns eligibility attributes.
func (s *Service) Validate(ctx context.Context, studentID string) (Eligibility, error) {
	if studentID == "" {
		return Eligibility{}, pkgerrors.New(pkgerrors.CodeBadRequest, "student ID is required")
	}

	student, err := s.store.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "student not found", "student_id", studentID)
			return Eligibility{}, pkgerrors.New(pkgerrors.CodeNotFound, "student "+studentID+" not found")
		}
		return Eligibility{}, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "look up student")
	}

	if !student.Enrolled {
		s.logger.WarnContext(ctx, "student not enrolled", "student_id", studentID)
		return Eligibility{}, pkgerrors.New(pkgerrors.CodeNotEligible, "student "+studentID+" is not currently enrolled")
	}

	return Eligibility{
		StudentID:        student.StudentID,
		Name:             student.Name,
		Eligible:         true,
		EnrollmentStatus: EnrollmentStatusActive,
		Balance:          student.Balance,
	}, nil
}
