package enrollment

import (
	"context"
	"sync"

	"payrail/pkg/sentinel"
)

type InMemoryStudentStore struct {
	mu       sync.RWMutex
	students map[string]Student
}

func NewInMemoryStudentStore() *InMemoryStudentStore {
	return &InMemoryStudentStore{students: make(map[string]Student)}
}

func (s *InMemoryStudentStore) FindByID(_ context.Context, studentID string) (Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if student, ok := s.students[studentID]; ok {
		return student, nil
	}
	return Student{}, sentinel.ErrNotFound
}

func (s *InMemoryStudentStore) Save(_ context.Context, student Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.students[student.StudentID] = student
	return nil
}
