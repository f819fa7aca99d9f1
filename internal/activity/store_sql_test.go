package activity

import (
	"context"
	"testing"

	"github.com/study-path/studypath-lms/internal/db"
)

func openTestDB(t *testing.T) *SQLStore {
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

func TestSQLRecordUpsertIsAtomic(t *testing.T) {
	ctx := context.Background()
	s := openTestDB(t)

	id1, err := s.Record(ctx, "quiz-1", "u1", TypeQuizGrade, "50")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	id2, err := s.Record(ctx, "quiz-1", "u1", TypeQuizGrade, "75")
	if err != nil {
		t.Fatalf("re-record: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("upsert must return the live row's ID, got %q then %q", id1, id2)
	}

	recs, err := s.Query(ctx, Filter{SubjectID: "quiz-1"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("UNIQUE tuple must collapse to one row, got %d", len(recs))
	}
	if recs[0].Value != "75" {
		t.Fatalf("last write wins, got %q", recs[0].Value)
	}
}

func TestSQLQueryFiltersAndInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := openTestDB(t)

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

	recs, err = s.Query(ctx, Filter{SubjectID: "course-1", ActorID: "u2", Type: TypeCourseStart})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(recs) != 1 || recs[0].ActorID != "u2" {
		t.Fatalf("unexpected filter result: %+v", recs)
	}
}

func TestSQLGetValueAndRemove(t *testing.T) {
	ctx := context.Background()
	s := openTestDB(t)

	if _, ok, err := s.GetValue(ctx, "nope", "u1", TypeLessonEnd); err != nil {
		t.Fatalf("absence must not error: %v", err)
	} else if ok {
		t.Fatalf("expected absent")
	}
	if err := s.Remove(ctx, "nope", "u1", TypeLessonEnd); err != nil {
		t.Fatalf("remove of absent tuple must be a no-op: %v", err)
	}

	if _, err := s.Record(ctx, "lesson-1", "u1", TypeLessonEnd, "done"); err != nil {
		t.Fatalf("record: %v", err)
	}
	v, ok, err := s.GetValue(ctx, "lesson-1", "u1", TypeLessonEnd)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || v != "done" {
		t.Fatalf("expected done, got %q (ok=%v)", v, ok)
	}
	if err := s.Remove(ctx, "lesson-1", "u1", TypeLessonEnd); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if ok, _ := s.Exists(ctx, "lesson-1", "u1", TypeLessonEnd); ok {
		t.Fatalf("expected record gone after remove")
	}
}
