package content

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

type memoryStore struct {
	mu      sync.RWMutex
	courses map[string]Course
	lessons map[string]Lesson
	quizzes map[string]Quiz
}

func NewInMemoryStore() Store {
	return &memoryStore{
		courses: map[string]Course{},
		lessons: map[string]Lesson{},
		quizzes: map[string]Quiz{},
	}
}

func (m *memoryStore) PutCourse(_ context.Context, c Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.CreatedAt == 0 {
		c.CreatedAt = time.Now().Unix()
	}
	m.courses[c.ID] = c
	return nil
}

func (m *memoryStore) GetCourse(_ context.Context, id string) (Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.courses[id]
	if !ok {
		return Course{}, fmt.Errorf("course %s: %w", id, ErrNotFound)
	}
	return c, nil
}

func (m *memoryStore) ListCourses(_ context.Context) ([]Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Course, 0, len(m.courses))
	for _, c := range m.courses {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memoryStore) Lessons(_ context.Context, courseID string) ([]Lesson, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Lesson
	for _, l := range m.lessons {
		if l.CourseID == courseID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memoryStore) PutLesson(_ context.Context, l Lesson) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lessons[l.ID] = l
	return nil
}

func (m *memoryStore) GetLesson(_ context.Context, id string) (Lesson, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.lessons[id]
	if !ok {
		return Lesson{}, fmt.Errorf("lesson %s: %w", id, ErrNotFound)
	}
	return l, nil
}

func (m *memoryStore) PutQuiz(_ context.Context, q Quiz) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quizzes[q.ID] = q
	return nil
}

func (m *memoryStore) GetQuiz(ctx context.Context, id string) (Quiz, error) {
	q, err := m.QuizAdmin(ctx, id)
	if err != nil {
		return Quiz{}, err
	}
	// hide answers from learners
	qs := make([]Question, len(q.Questions))
	copy(qs, q.Questions)
	for i := range qs {
		qs[i].AnswerKey = nil
	}
	q.Questions = qs
	return q, nil
}

func (m *memoryStore) QuizAdmin(_ context.Context, id string) (Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.quizzes[id]
	if !ok {
		return Quiz{}, fmt.Errorf("quiz %s: %w", id, ErrNotFound)
	}
	return q, nil
}

func (m *memoryStore) QuizForLesson(_ context.Context, lessonID string) (Quiz, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, q := range m.quizzes {
		if q.LessonID == lessonID {
			return q, true, nil
		}
	}
	return Quiz{}, false, nil
}

func (m *memoryStore) QuizOfQuestion(_ context.Context, questionID string) (Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, q := range m.quizzes {
		for _, que := range q.Questions {
			if que.ID == questionID {
				return q, nil
			}
		}
	}
	return Quiz{}, fmt.Errorf("question %s: %w", questionID, ErrNotFound)
}
