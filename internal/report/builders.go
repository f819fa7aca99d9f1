package report

import (
	"context"
	"strconv"
	"time"

	"github.com/study-path/studypath-lms/internal/activity"
	"github.com/study-path/studypath-lms/internal/content"
	"github.com/study-path/studypath-lms/internal/progress"
)

// Sources are the engine outputs the built-in reports read from. Quiz
// percentages come from the quiz_grade records the grading service keeps
// current, not from a live regrade.
type Sources struct {
	Acts    activity.Store
	Content content.Store
	Tracker *progress.Tracker
}

// DefaultRegistry wires the built-in reports: per-learner course progress,
// per-learner overview and per-course totals.
func DefaultRegistry(src Sources) (*Registry, error) {
	return NewRegistry(
		Report{
			ID:            "course-progress",
			SearchField:   "user",
			CategoryField: "category",
			Sortable:      []string{"user", "course", "status", "percent", "completed_at"},
			Build:         src.courseProgressRows,
		},
		Report{
			ID:          "learner-overview",
			SearchField: "user",
			Sortable:    []string{"user", "started", "completed"},
			Build:       src.learnerOverviewRows,
		},
		Report{
			ID:            "course-overview",
			SearchField:   "course",
			CategoryField: "category",
			Sortable:      []string{"course", "learners", "completions"},
			Build:         src.courseOverviewRows,
		},
	)
}

// courseProgressRows emits one row per (course, enrolled learner).
// Enrollment is a course_start activity record.
func (s Sources) courseProgressRows(ctx context.Context) ([]Row, error) {
	courses, err := s.Content.ListCourses(ctx)
	if err != nil {
		return nil, err
	}
	var rows []Row
	for _, c := range courses {
		starts, err := s.Acts.Query(ctx, activity.Filter{SubjectID: c.ID, Type: activity.TypeCourseStart})
		if err != nil {
			return nil, err
		}
		for _, rec := range starts {
			st, err := s.Tracker.CourseStatus(ctx, c.ID, rec.ActorID)
			if err != nil {
				return nil, err
			}
			row := Row{
				"user":     rec.ActorID,
				"course":   c.Title,
				"category": c.Category,
				"status":   string(st),
			}
			if done, err := s.Tracker.CompletedAt(ctx, c.ID, rec.ActorID, activity.TypeCourseEnd); err != nil {
				return nil, err
			} else if done != nil {
				row["completed_at"] = done.UTC().Format(time.RFC3339)
			}
			if pct, ok, err := s.coursePercent(ctx, c.ID, rec.ActorID); err != nil {
				return nil, err
			} else if ok {
				row["percent"] = strconv.Itoa(pct)
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// coursePercent averages the learner's recorded quiz grades across the
// course's lessons. ok is false when no quiz grade exists yet.
func (s Sources) coursePercent(ctx context.Context, courseID, userID string) (int, bool, error) {
	lessons, err := s.Content.Lessons(ctx, courseID)
	if err != nil {
		return 0, false, err
	}
	sum, n := 0, 0
	for _, l := range lessons {
		quiz, ok, err := s.Content.QuizForLesson(ctx, l.ID)
		if err != nil {
			return 0, false, err
		}
		if !ok {
			continue
		}
		v, ok, err := s.Acts.GetValue(ctx, quiz.ID, userID, activity.TypeQuizGrade)
		if err != nil {
			return 0, false, err
		}
		if !ok {
			continue
		}
		pct, err := strconv.Atoi(v)
		if err != nil {
			continue
		}
		sum += pct
		n++
	}
	if n == 0 {
		return 0, false, nil
	}
	return sum / n, true, nil
}

func (s Sources) learnerOverviewRows(ctx context.Context) ([]Row, error) {
	starts, err := s.Acts.Query(ctx, activity.Filter{Type: activity.TypeCourseStart})
	if err != nil {
		return nil, err
	}
	started := map[string]int{}
	order := []string{}
	for _, rec := range starts {
		if _, seen := started[rec.ActorID]; !seen {
			order = append(order, rec.ActorID)
		}
		started[rec.ActorID]++
	}
	ends, err := s.Acts.Query(ctx, activity.Filter{Type: activity.TypeCourseEnd})
	if err != nil {
		return nil, err
	}
	completed := map[string]int{}
	for _, rec := range ends {
		completed[rec.ActorID]++
	}
	rows := make([]Row, 0, len(order))
	for _, user := range order {
		rows = append(rows, Row{
			"user":      user,
			"started":   strconv.Itoa(started[user]),
			"completed": strconv.Itoa(completed[user]),
		})
	}
	return rows, nil
}

func (s Sources) courseOverviewRows(ctx context.Context) ([]Row, error) {
	courses, err := s.Content.ListCourses(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(courses))
	for _, c := range courses {
		starts, err := s.Acts.Query(ctx, activity.Filter{SubjectID: c.ID, Type: activity.TypeCourseStart})
		if err != nil {
			return nil, err
		}
		ends, err := s.Acts.Query(ctx, activity.Filter{SubjectID: c.ID, Type: activity.TypeCourseEnd})
		if err != nil {
			return nil, err
		}
		rows = append(rows, Row{
			"course":      c.Title,
			"category":    c.Category,
			"learners":    strconv.Itoa(len(starts)),
			"completions": strconv.Itoa(len(ends)),
		})
	}
	return rows, nil
}
