package content

import (
	"context"
	"errors"
	"testing"

	"github.com/study-path/studypath-lms/internal/db"
)

func openTestStore(t *testing.T) *SQLStore {
	t.Helper()
	ctx := context.Background()
	dbh, err := db.Open(ctx, db.DriverSQLite, "file:"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	dbh.SetMaxOpenConns(1)
	t.Cleanup(func() { dbh.Close() })
	return NewSQLStore(dbh)
}

func TestSQLQuizRoundTripStripsKeys(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if err := s.PutCourse(ctx, Course{ID: "c1", Title: "Go Basics"}); err != nil {
		t.Fatalf("put course: %v", err)
	}
	if err := s.PutLesson(ctx, Lesson{ID: "l1", CourseID: "c1", Title: "Intro"}); err != nil {
		t.Fatalf("put lesson: %v", err)
	}
	if err := s.PutQuiz(ctx, Quiz{
		ID:       "quiz-1",
		LessonID: "l1",
		Title:    "Checkpoint",
		Passmark: 70,
		Questions: []Question{
			{ID: "q1", Type: QTypeBoolean, AnswerKey: []string{"true"}},
			{ID: "q2", Type: QTypeGapFill, AnswerKey: []string{"The sky is ", "blue", "."}},
		},
	}); err != nil {
		t.Fatalf("put quiz: %v", err)
	}

	full, err := s.QuizAdmin(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("admin read: %v", err)
	}
	if len(full.Questions) != 2 || len(full.Questions[0].AnswerKey) == 0 {
		t.Fatalf("admin read must keep answer keys: %+v", full.Questions)
	}

	safe, err := s.GetQuiz(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("learner read: %v", err)
	}
	for _, q := range safe.Questions {
		if q.AnswerKey != nil {
			t.Fatalf("learner read must strip answer keys: %+v", q)
		}
	}

	quiz, ok, err := s.QuizForLesson(ctx, "l1")
	if err != nil {
		t.Fatalf("quiz for lesson: %v", err)
	}
	if !ok || quiz.ID != "quiz-1" {
		t.Fatalf("expected quiz-1 on l1, got %+v (ok=%v)", quiz, ok)
	}

	owner, err := s.QuizOfQuestion(ctx, "q2")
	if err != nil {
		t.Fatalf("quiz of question: %v", err)
	}
	if owner.ID != "quiz-1" {
		t.Fatalf("expected q2 to resolve to quiz-1, got %s", owner.ID)
	}
}

func TestSQLPutQuizReplacesOnConflict(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if err := s.PutCourse(ctx, Course{ID: "c1", Title: "Go Basics"}); err != nil {
		t.Fatalf("put course: %v", err)
	}
	if err := s.PutLesson(ctx, Lesson{ID: "l1", CourseID: "c1", Title: "Intro"}); err != nil {
		t.Fatalf("put lesson: %v", err)
	}

	base := Quiz{ID: "quiz-1", LessonID: "l1", Title: "v1", Passmark: 50,
		Questions: []Question{{ID: "q1", Type: QTypeBoolean, AnswerKey: []string{"true"}}}}
	if err := s.PutQuiz(ctx, base); err != nil {
		t.Fatalf("put: %v", err)
	}
	base.Title = "v2"
	base.Passmark = 80
	if err := s.PutQuiz(ctx, base); err != nil {
		t.Fatalf("re-put: %v", err)
	}

	got, err := s.QuizAdmin(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Title != "v2" || got.Passmark != 80 {
		t.Fatalf("author edit must replace in place, got %+v", got)
	}
}

func TestSQLNotFoundIsSentinel(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if _, err := s.GetCourse(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.QuizAdmin(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, ok, err := s.QuizForLesson(ctx, "ghost"); err != nil || ok {
		t.Fatalf("missing quiz for lesson is (false, nil), got ok=%v err=%v", ok, err)
	}
}
