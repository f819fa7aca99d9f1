package activity

import (
	"context"
	"testing"
)

func TestRecordUpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	id1, err := s.Record(ctx, "lesson-1", "u1", TypeLessonStart, "2026-01-01T00:00:00Z")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	id2, err := s.Record(ctx, "lesson-1", "u1", TypeLessonStart, "2026-01-01T00:00:00Z")
	if err != nil {
		t.Fatalf("record again: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("expected stable record ID, got %q then %q", id1, id2)
	}

	recs, err := s.Query(ctx, Filter{SubjectID: "lesson-1"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(recs))
	}
}

func TestRecordUpdatesValueInPlace(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	if _, err := s.Record(ctx, "quiz-1", "u1", TypeQuizGrade, "50"); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := s.Record(ctx, "quiz-1", "u1", TypeQuizGrade, "75"); err != nil {
		t.Fatalf("re-record: %v", err)
	}

	v, ok, err := s.GetValue(ctx, "quiz-1", "u1", TypeQuizGrade)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || v != "75" {
		t.Fatalf("expected updated value 75, got %q (ok=%v)", v, ok)
	}
}

func TestGetValueAbsentIsNotAnError(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	v, ok, err := s.GetValue(ctx, "nope", "u1", TypeLessonEnd)
	if err != nil {
		t.Fatalf("absence must not error: %v", err)
	}
	if ok || v != "" {
		t.Fatalf("expected absent, got %q (ok=%v)", v, ok)
	}
	exists, err := s.Exists(ctx, "nope", "u1", TypeLessonEnd)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists {
		t.Fatalf("expected not to exist")
	}
}

func TestQueryFiltersAndInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	seed := []struct {
		subject, actor string
		typ            Type
	}{
		{"course-1", "u1", TypeCourseStart},
		{"course-1", "u2", TypeCourseStart},
		{"lesson-1", "u1", TypeLessonStart},
		{"course-2", "u1", TypeCourseStart},
	}
	for _, rec := range seed {
		if _, err := s.Record(ctx, rec.subject, rec.actor, rec.typ, "x"); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	recs, err := s.Query(ctx, Filter{Type: TypeCourseStart})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 course_start records, got %d", len(recs))
	}
	if recs[0].ActorID != "u1" || recs[1].ActorID != "u2" {
		t.Fatalf("expected insertion order, got %v then %v", recs[0].ActorID, recs[1].ActorID)
	}

	recs, err = s.Query(ctx, Filter{SubjectID: "course-1", ActorID: "u2"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(recs) != 1 || recs[0].ActorID != "u2" {
		t.Fatalf("unexpected filter result: %+v", recs)
	}
}

func TestRemoveIsNoOpWhenAbsent(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	if err := s.Remove(ctx, "ghost", "u1", TypeLessonEnd); err != nil {
		t.Fatalf("remove of absent tuple must be a no-op: %v", err)
	}

	if _, err := s.Record(ctx, "lesson-1", "u1", TypeLessonEnd, "done"); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := s.Remove(ctx, "lesson-1", "u1", TypeLessonEnd); err != nil {
		t.Fatalf("remove: %v", err)
	}
	ok, err := s.Exists(ctx, "lesson-1", "u1", TypeLessonEnd)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if ok {
		t.Fatalf("expected record gone after remove")
	}
}
