package content

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("content not found")

// Store is the content-hierarchy accessor the engine consumes, plus the
// authoring writes that feed it. Reads used for grading return the full quiz
// including answer keys; GetQuiz strips keys for serving to learners.
type Store interface {
	PutCourse(ctx context.Context, c Course) error
	GetCourse(ctx context.Context, id string) (Course, error)
	ListCourses(ctx context.Context) ([]Course, error)
	Lessons(ctx context.Context, courseID string) ([]Lesson, error)

	PutLesson(ctx context.Context, l Lesson) error
	GetLesson(ctx context.Context, id string) (Lesson, error)

	PutQuiz(ctx context.Context, q Quiz) error
	// GetQuiz is learner-safe: answer keys are stripped.
	GetQuiz(ctx context.Context, id string) (Quiz, error)
	// QuizAdmin returns the quiz with answer keys, for grading and authoring.
	QuizAdmin(ctx context.Context, id string) (Quiz, error)
	QuizForLesson(ctx context.Context, lessonID string) (Quiz, bool, error)
	// QuizOfQuestion resolves the quiz owning a question (full, with keys).
	QuizOfQuestion(ctx context.Context, questionID string) (Quiz, error)
}
