package enrollment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"payrail/pkg/sentinel"
)

// PostgresStudentStore reads the externally populated students table.
type PostgresStudentStore struct {
	db *sql.DB
}

func NewPostgresStudentStore(db *sql.DB) *PostgresStudentStore {
	return &PostgresStudentStore{db: db}
}

func (s *PostgresStudentStore) FindByID(ctx context.Context, studentID string) (Student, error) {
	query := `
		SELECT student_id, name, enrolled, balance
		FROM students
		WHERE student_id = $1
	`
	var student Student
	err := s.db.QueryRowContext(ctx, query, studentID).Scan(
		&student.StudentID,
		&student.Name,
		&student.Enrolled,
		&student.Balance,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Student{}, sentinel.ErrNotFound
		}
		return Student{}, fmt.Errorf("find student: %w", err)
	}
	return student, nil
}

func (s *PostgresStudentStore) Save(ctx context.Context, student Student) error {
	query := `
		INSERT INTO students (student_id, name, enrolled, balance)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (student_id) DO UPDATE
		SET name = EXCLUDED.name, enrolled = EXCLUDED.enrolled, balance = EXCLUDED.balance
	`
	if _, err := s.db.ExecContext(ctx, query, student.StudentID, student.Name, student.Enrolled, student.Balance); err != nil {
		return fmt.Errorf("save student: %w", err)
	}
	return nil
}
