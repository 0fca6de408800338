package enrollment

import "context"

// StudentStore looks up enrollment records. FindByID returns
// sentinel.ErrNotFound for unknown students; Save exists for seeding and for
// the external enrollment process, not for the protocol core.
type StudentStore interface {
	FindByID(ctx context.Context, studentID string) (Student, error)
	Save(ctx context.Context, student Student) error
}
