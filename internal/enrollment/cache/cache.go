// Package cache provides a redis read-through layer over a StudentStore.
// Validation traffic is read-heavy against a read-mostly table, so a short
// TTL cache keeps the hot path off postgres without risking stale eligibility
// decisions for long.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"payrail/internal/enrollment"
)

const keyPrefix = "students:"

// Store wraps an enrollment.StudentStore with a redis cache. A nil client
// turns the wrapper into a pass-through, so wiring stays identical whether or
// not redis is configured.
type Store struct {
	inner  enrollment.StudentStore
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func New(inner enrollment.StudentStore, client *redis.Client, ttl time.Duration, logger *slog.Logger) *Store {
	return &Store{inner: inner, client: client, ttl: ttl, logger: logger}
}

func (s *Store) FindByID(ctx context.Context, studentID string) (enrollment.Student, error) {
	if s.client == nil {
		return s.inner.FindByID(ctx, studentID)
	}

	raw, err := s.client.Get(ctx, keyPrefix+studentID).Bytes()
	if err == nil {
		var student enrollment.Student
		if err := json.Unmarshal(raw, &student); err == nil {
			return student, nil
		}
		// Corrupt entry: fall through to the source of truth.
	} else if !errors.Is(err, redis.Nil) {
		s.logger.WarnContext(ctx, "student cache read failed", "student_id", studentID, "error", err.Error())
	}

	student, err := s.inner.FindByID(ctx, studentID)
	if err != nil {
		return enrollment.Student{}, err
	}
	s.put(ctx, student)
	return student, nil
}

func (s *Store) Save(ctx context.Context, student enrollment.Student) error {
	if err := s.inner.Save(ctx, student); err != nil {
		return err
	}
	if s.client != nil {
		s.put(ctx, student)
	}
	return nil
}

func (s *Store) put(ctx context.Context, student enrollment.Student) {
	raw, err := json.Marshal(student)
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, keyPrefix+student.StudentID, raw, s.ttl).Err(); err != nil {
		s.logger.WarnContext(ctx, "student cache write failed", "student_id", student.StudentID, "error", err.Error())
	}
}
