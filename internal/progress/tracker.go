// Package progress derives lesson and course completion state from the
// activity log. The tracker owns no persistent state: every status is a
// fold over current log contents.
package progress

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/study-path/studypath-lms/internal/activity"
	"github.com/study-path/studypath-lms/internal/content"
	"github.com/study-path/studypath-lms/internal/grading"
	"github.com/study-path/studypath-lms/internal/notify"
)

type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// GradeSource answers whether a learner passed a quiz. Satisfied by
// *grading.Service.
type GradeSource interface {
	Grade(ctx context.Context, quizID, userID string) (grading.Summary, error)
}

type Tracker struct {
	acts    activity.Store
	content content.Store
	grades  GradeSource
	events  notify.Sink
	log     zerolog.Logger
}

func NewTracker(acts activity.Store, cs content.Store, grades GradeSource, events notify.Sink, log zerolog.Logger) *Tracker {
	return &Tracker{acts: acts, content: cs, grades: grades, events: events, log: log}
}

// LessonStatus reports where a learner stands on one lesson. The second
// return value is the completion time, non-nil only when completed.
func (t *Tracker) LessonStatus(ctx context.Context, lessonID, userID string) (Status, *time.Time, error) {
	if v, ok, err := t.acts.GetValue(ctx, lessonID, userID, activity.TypeLessonEnd); err != nil {
		return "", nil, err
	} else if ok {
		return StatusCompleted, parseMarker(v), nil
	}
	ok, err := t.acts.Exists(ctx, lessonID, userID, activity.TypeLessonStart)
	if err != nil {
		return "", nil, err
	}
	if ok {
		return StatusInProgress, nil, nil
	}
	return StatusNotStarted, nil, nil
}

// CourseStatus folds over the course's lessons. Completed iff every lesson
// is completed and every pass-required quiz meets its passmark; the fold
// short-circuits to in_progress on the first lesson that is not completed.
//
// A course with zero lessons is not_started regardless of a course_start
// record: no lesson can ever complete it. Documented behavior; do not "fix".
func (t *Tracker) CourseStatus(ctx context.Context, courseID, userID string) (Status, error) {
	lessons, err := t.content.Lessons(ctx, courseID)
	if err != nil {
		return "", err
	}
	if len(lessons) == 0 {
		return StatusNotStarted, nil
	}

	started, err := t.acts.Exists(ctx, courseID, userID, activity.TypeCourseStart)
	if err != nil {
		return "", err
	}

	anyProgress := started
	allCompleted := true
	for _, l := range lessons {
		st, _, err := t.LessonStatus(ctx, l.ID, userID)
		if err != nil {
			return "", err
		}
		if st != StatusNotStarted {
			anyProgress = true
		}
		if st != StatusCompleted {
			allCompleted = false
			if anyProgress {
				// short-circuit: one unfinished lesson already settles it
				return StatusInProgress, nil
			}
		}
	}
	if !allCompleted {
		if anyProgress {
			return StatusInProgress, nil
		}
		return StatusNotStarted, nil
	}

	passed, err := t.requiredQuizzesPassed(ctx, lessons, userID)
	if err != nil {
		return "", err
	}
	if !passed {
		return StatusInProgress, nil
	}
	return StatusCompleted, nil
}

func (t *Tracker) requiredQuizzesPassed(ctx context.Context, lessons []content.Lesson, userID string) (bool, error) {
	for _, l := range lessons {
		quiz, ok, err := t.content.QuizForLesson(ctx, l.ID)
		if err != nil {
			return false, err
		}
		if !ok || !quiz.PassRequired {
			continue
		}
		sum, err := t.grades.Grade(ctx, quiz.ID, userID)
		if err != nil {
			return false, err
		}
		if !sum.Passed {
			return false, nil
		}
	}
	return true, nil
}

// --- write path ---

// StartCourse marks a course in progress for the learner.
func (t *Tracker) StartCourse(ctx context.Context, courseID, userID string) error {
	if _, err := t.content.GetCourse(ctx, courseID); err != nil {
		return err
	}
	_, err := t.acts.Record(ctx, courseID, userID, activity.TypeCourseStart, marker())
	return err
}

// StartLesson records lesson_start, and course_start for the owning course
// if the learner had not touched it yet.
func (t *Tracker) StartLesson(ctx context.Context, lessonID, userID string) error {
	lesson, err := t.content.GetLesson(ctx, lessonID)
	if err != nil {
		return err
	}
	if err := t.ensureEnrolled(ctx, lesson.CourseID, userID); err != nil {
		return err
	}
	_, err = t.acts.Record(ctx, lessonID, userID, activity.TypeLessonStart, marker())
	return err
}

// ensureEnrolled backfills course_start when a learner's first touch on a
// course is a lesson action. Reports enumerate enrolled learners from
// course_start records, so every lesson write path must pass through here.
func (t *Tracker) ensureEnrolled(ctx context.Context, courseID, userID string) error {
	ok, err := t.acts.Exists(ctx, courseID, userID, activity.TypeCourseStart)
	if err != nil || ok {
		return err
	}
	_, err = t.acts.Record(ctx, courseID, userID, activity.TypeCourseStart, marker())
	return err
}

// CompleteLesson records lesson_end, then re-derives the owning course's
// status. On transition to completed it records course_end and appends a
// CourseCompleted event for notification dispatch.
func (t *Tracker) CompleteLesson(ctx context.Context, lessonID, userID string) error {
	lesson, err := t.content.GetLesson(ctx, lessonID)
	if err != nil {
		return err
	}
	if err := t.ensureEnrolled(ctx, lesson.CourseID, userID); err != nil {
		return err
	}
	if ok, err := t.acts.Exists(ctx, lessonID, userID, activity.TypeLessonStart); err != nil {
		return err
	} else if !ok {
		// completing an unstarted lesson implies starting it
		if _, err := t.acts.Record(ctx, lessonID, userID, activity.TypeLessonStart, marker()); err != nil {
			return err
		}
	}
	if _, err := t.acts.Record(ctx, lessonID, userID, activity.TypeLessonEnd, marker()); err != nil {
		return err
	}
	if t.events != nil {
		if err := t.events.Append(ctx, notify.EventLessonCompleted, lessonID+"|"+userID, nil); err != nil {
			t.log.Error().Err(err).Str("lesson_id", lessonID).Msg("append lesson completed event")
		}
	}

	alreadyDone, err := t.acts.Exists(ctx, lesson.CourseID, userID, activity.TypeCourseEnd)
	if err != nil {
		return err
	}
	st, err := t.CourseStatus(ctx, lesson.CourseID, userID)
	if err != nil {
		return err
	}
	if st == StatusCompleted && !alreadyDone {
		if _, err := t.acts.Record(ctx, lesson.CourseID, userID, activity.TypeCourseEnd, marker()); err != nil {
			return err
		}
		if t.events != nil {
			key := lesson.CourseID + "|" + userID
			if err := t.events.Append(ctx, notify.EventCourseCompleted, key, nil); err != nil {
				t.log.Error().Err(err).Str("key", key).Msg("append course completed event")
			}
		}
	}
	return nil
}

// CompletedAt returns when the learner completed the course, if they have.
func (t *Tracker) CompletedAt(ctx context.Context, subjectID, userID string, typ activity.Type) (*time.Time, error) {
	v, ok, err := t.acts.GetValue(ctx, subjectID, userID, typ)
	if err != nil || !ok {
		return nil, err
	}
	return parseMarker(v), nil
}

func marker() string { return time.Now().UTC().Format(time.RFC3339) }

func parseMarker(v string) *time.Time {
	ts, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil
	}
	return &ts
}
