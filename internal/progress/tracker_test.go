package progress_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/study-path/studypath-lms/internal/activity"
	"github.com/study-path/studypath-lms/internal/content"
	"github.com/study-path/studypath-lms/internal/grading"
	"github.com/study-path/studypath-lms/internal/notify"
	"github.com/study-path/studypath-lms/internal/progress"
)

type fixture struct {
	acts    activity.Store
	content content.Store
	grades  *grading.Service
	tracker *progress.Tracker
	sink    *notify.MemorySink
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	acts := activity.NewInMemoryStore()
	cs := content.NewInMemoryStore()
	sink := notify.NewMemorySink()
	grades := grading.NewService(acts, cs, grading.NewDefaultGrader(zerolog.Nop()), sink, zerolog.Nop())
	tracker := progress.NewTracker(acts, cs, grades, sink, zerolog.Nop())
	return &fixture{acts: acts, content: cs, grades: grades, tracker: tracker, sink: sink}
}

func (f *fixture) seedCourse(t *testing.T, courseID string, lessonIDs ...string) {
	t.Helper()
	ctx := context.Background()
	if err := f.content.PutCourse(ctx, content.Course{ID: courseID, Title: courseID}); err != nil {
		t.Fatalf("seed course: %v", err)
	}
	for i, id := range lessonIDs {
		if err := f.content.PutLesson(ctx, content.Lesson{ID: id, CourseID: courseID, Title: id, Position: i}); err != nil {
			t.Fatalf("seed lesson: %v", err)
		}
	}
}

func TestLessonStatusTransitions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedCourse(t, "c1", "l1")

	st, done, err := f.tracker.LessonStatus(ctx, "l1", "u1")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st != progress.StatusNotStarted || done != nil {
		t.Fatalf("expected not_started, got %v (%v)", st, done)
	}

	if err := f.tracker.StartLesson(ctx, "l1", "u1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	st, _, err = f.tracker.LessonStatus(ctx, "l1", "u1")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st != progress.StatusInProgress {
		t.Fatalf("expected in_progress, got %v", st)
	}

	if err := f.tracker.CompleteLesson(ctx, "l1", "u1"); err != nil {
		t.Fatalf("complete: %v", err)
	}
	st, done, err = f.tracker.LessonStatus(ctx, "l1", "u1")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st != progress.StatusCompleted {
		t.Fatalf("expected completed, got %v", st)
	}
	if done == nil {
		t.Fatalf("completed lesson must carry a completion time")
	}
}

func TestCourseStatusComposesFromLessons(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedCourse(t, "c1", "l1", "l2")

	st, err := f.tracker.CourseStatus(ctx, "c1", "u1")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st != progress.StatusNotStarted {
		t.Fatalf("expected not_started, got %v", st)
	}

	if err := f.tracker.StartLesson(ctx, "l1", "u1"); err != nil {
		t.Fatalf("start l1: %v", err)
	}
	if st, _ = f.tracker.CourseStatus(ctx, "c1", "u1"); st != progress.StatusInProgress {
		t.Fatalf("one started lesson puts the course in_progress, got %v", st)
	}

	if err := f.tracker.CompleteLesson(ctx, "l1", "u1"); err != nil {
		t.Fatalf("complete l1: %v", err)
	}
	if st, _ = f.tracker.CourseStatus(ctx, "c1", "u1"); st != progress.StatusInProgress {
		t.Fatalf("one of two lessons completed keeps the course in_progress, got %v", st)
	}

	if err := f.tracker.CompleteLesson(ctx, "l2", "u1"); err != nil {
		t.Fatalf("complete l2: %v", err)
	}
	if st, _ = f.tracker.CourseStatus(ctx, "c1", "u1"); st != progress.StatusCompleted {
		t.Fatalf("all lessons completed must complete the course, got %v", st)
	}

	// completion recorded course_end and emitted the notification event
	if ok, _ := f.acts.Exists(ctx, "c1", "u1", activity.TypeCourseEnd); !ok {
		t.Fatalf("expected course_end record after completion")
	}
	foundCourse := false
	for _, e := range f.sink.Events() {
		if e.Type == notify.EventCourseCompleted && e.Key == "c1|u1" {
			foundCourse = true
		}
	}
	if !foundCourse {
		t.Fatalf("expected CourseCompleted event, got %+v", f.sink.Events())
	}
}

func TestLaterLessonProgressStillCountsAsInProgress(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedCourse(t, "c1", "l1", "l2")

	// learner skipped ahead: only the second lesson is completed
	if err := f.tracker.CompleteLesson(ctx, "l2", "u1"); err != nil {
		t.Fatalf("complete l2: %v", err)
	}
	st, err := f.tracker.CourseStatus(ctx, "c1", "u1")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st != progress.StatusInProgress {
		t.Fatalf("progress on any lesson makes the course in_progress, got %v", st)
	}
}

func TestEmptyCourseIsNeverCompleted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedCourse(t, "c-empty")

	if err := f.tracker.StartCourse(ctx, "c-empty", "u1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	st, err := f.tracker.CourseStatus(ctx, "c-empty", "u1")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	// documented behavior: no lesson can ever complete it
	if st != progress.StatusNotStarted {
		t.Fatalf("a course with zero lessons is not_started even after course_start, got %v", st)
	}
}

func TestPassRequiredQuizGatesCourseCompletion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedCourse(t, "c1", "l1")
	if err := f.content.PutQuiz(ctx, content.Quiz{
		ID:           "quiz-1",
		LessonID:     "l1",
		Passmark:     100,
		PassRequired: true,
		Questions: []content.Question{
			{ID: "q1", Type: content.QTypeBoolean, AnswerKey: []string{"true"}},
		},
	}); err != nil {
		t.Fatalf("seed quiz: %v", err)
	}

	if err := f.tracker.CompleteLesson(ctx, "l1", "u1"); err != nil {
		t.Fatalf("complete: %v", err)
	}
	st, err := f.tracker.CourseStatus(ctx, "c1", "u1")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st == progress.StatusCompleted {
		t.Fatalf("course must not complete before the required quiz is passed")
	}

	if _, err := f.grades.SubmitQuiz(ctx, "quiz-1", "u1", map[string]string{"q1": "true"}); err != nil {
		t.Fatalf("submit quiz: %v", err)
	}
	st, err = f.tracker.CourseStatus(ctx, "c1", "u1")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st != progress.StatusCompleted {
		t.Fatalf("passing the required quiz completes the course, got %v", st)
	}
}

func TestCompleteLessonEnrollsInCourse(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedCourse(t, "c1", "l1")

	// first and only touch on the course: completing its one lesson
	if err := f.tracker.CompleteLesson(ctx, "l1", "u1"); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if ok, err := f.acts.Exists(ctx, "c1", "u1", activity.TypeCourseStart); err != nil {
		t.Fatalf("exists: %v", err)
	} else if !ok {
		t.Fatalf("completing a lesson must enroll the learner via course_start")
	}
	if st, _ := f.tracker.CourseStatus(ctx, "c1", "u1"); st != progress.StatusCompleted {
		t.Fatalf("expected completed, got %v", st)
	}
}

func TestLearnerResetViaRemove(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedCourse(t, "c1", "l1")

	if err := f.tracker.CompleteLesson(ctx, "l1", "u1"); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if st, _ := f.tracker.CourseStatus(ctx, "c1", "u1"); st != progress.StatusCompleted {
		t.Fatalf("expected completed, got %v", st)
	}

	// explicit learner reset removes the end markers
	if err := f.acts.Remove(ctx, "l1", "u1", activity.TypeLessonEnd); err != nil {
		t.Fatalf("remove lesson_end: %v", err)
	}
	if err := f.acts.Remove(ctx, "c1", "u1", activity.TypeCourseEnd); err != nil {
		t.Fatalf("remove course_end: %v", err)
	}
	if st, _ := f.tracker.CourseStatus(ctx, "c1", "u1"); st != progress.StatusInProgress {
		t.Fatalf("after reset the course re-derives to in_progress, got %v", st)
	}
}
