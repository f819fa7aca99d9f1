package grading

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/study-path/studypath-lms/internal/activity"
	"github.com/study-path/studypath-lms/internal/content"
	"github.com/study-path/studypath-lms/internal/notify"
)

// Workflow states of a learner's quiz.
const (
	StatusNotSubmitted = "not_submitted"
	StatusSubmitted    = "submitted"
	StatusAutoGraded   = "auto_graded"
	StatusPending      = "pending_manual_grade"
	StatusGraded       = "graded"
)

// ErrMalformedSubmission marks an answer that references a question outside
// the quiz. The affected question is skipped; the rest of the pass continues.
var ErrMalformedSubmission = errors.New("malformed submission")

// Issue is a per-question partial failure.
type Issue struct {
	QuestionID string `json:"question_id"`
	Reason     string `json:"reason"`
}

// Item is the per-question view of a learner's quiz.
type Item struct {
	QuestionID  string `json:"question_id"`
	Type        string `json:"type"`
	Answer      string `json:"answer,omitempty"`
	Answered    bool   `json:"answered"`
	Graded      bool   `json:"graded"`
	Correct     bool   `json:"correct"`
	NeedsManual bool   `json:"needs_manual"`
}

// Summary is the aggregate grade of one (quiz, learner) pair. Ungraded
// manual questions count in the denominator, so Percent is provisional until
// Status reaches auto_graded or graded.
type Summary struct {
	QuizID  string  `json:"quiz_id"`
	UserID  string  `json:"user_id"`
	Status  string  `json:"status"`
	Percent int     `json:"percent"`
	Passed  bool    `json:"passed"`
	Total   int     `json:"total"`
	Correct int     `json:"correct"`
	Items   []Item  `json:"items,omitempty"`
	Issues  []Issue `json:"issues,omitempty"`
}

// Service evaluates quiz submissions against question definitions and keeps
// the activity log's answer/grade records current. It owns no state of its
// own: every read and recompute folds over current log contents, so any step
// can be retried.
type Service struct {
	acts    activity.Store
	content content.Store
	grader  Grader
	events  notify.Sink
	log     zerolog.Logger
}

func NewService(acts activity.Store, cs content.Store, grader Grader, events notify.Sink, log zerolog.Logger) *Service {
	return &Service{acts: acts, content: cs, grader: grader, events: events, log: log}
}

// SubmitQuiz records the learner's answers, auto-grades what it can and
// writes the provisional quiz grade. Answers for questions outside the quiz
// are reported as Issues and skipped. Resubmission overwrites the previous
// answers (upsert semantics) but never moves a graded quiz back to
// submitted: grades are recomputed from the new answers.
func (s *Service) SubmitQuiz(ctx context.Context, quizID, userID string, answers map[string]string) (Summary, error) {
	quiz, err := s.content.QuizAdmin(ctx, quizID)
	if err != nil {
		return Summary{}, err
	}

	byID := make(map[string]content.Question, len(quiz.Questions))
	for _, q := range quiz.Questions {
		byID[q.ID] = q
	}

	var issues []Issue
	for qid := range answers {
		if _, ok := byID[qid]; !ok {
			issues = append(issues, Issue{
				QuestionID: qid,
				Reason:     fmt.Sprintf("%v: question not in quiz %s", ErrMalformedSubmission, quizID),
			})
			s.log.Warn().Str("quiz_id", quizID).Str("question_id", qid).Str("user_id", userID).
				Msg("answer references question outside quiz, skipping")
		}
	}

	for _, q := range quiz.Questions {
		ans, answered := answers[q.ID]
		if answered {
			if _, err := s.acts.Record(ctx, q.ID, userID, activity.TypeUserAnswer, ans); err != nil {
				return Summary{}, fmt.Errorf("record answer %s: %w", q.ID, err)
			}
		}
		if !s.grader.Automatic(q.Type) {
			continue
		}
		// automatic types get a verdict at submit; unanswered counts wrong
		v, err := s.grader.Grade(ctx, Q{ID: q.ID, Type: q.Type, AnswerKey: q.AnswerKey}, ans)
		if err != nil {
			issues = append(issues, Issue{QuestionID: q.ID, Reason: err.Error()})
			continue
		}
		if _, err := s.acts.Record(ctx, q.ID, userID, activity.TypeUserGrade, gradeValue(v.Correct)); err != nil {
			return Summary{}, fmt.Errorf("record grade %s: %w", q.ID, err)
		}
	}

	sum, err := s.Grade(ctx, quizID, userID)
	if err != nil {
		return Summary{}, err
	}
	sum.Issues = append(sum.Issues, issues...)
	return sum, nil
}

// Grade recomputes the aggregate from current log state. Deterministic and
// idempotent: it writes the quiz_grade record only when the learner has
// submitted, and repeated calls with unchanged records produce the same
// Summary.
func (s *Service) Grade(ctx context.Context, quizID, userID string) (Summary, error) {
	quiz, err := s.content.QuizAdmin(ctx, quizID)
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{QuizID: quizID, UserID: userID, Total: len(quiz.Questions)}
	answered := 0
	gradedCount := 0
	pendingManual := 0
	hasManual := false

	for _, q := range quiz.Questions {
		item := Item{QuestionID: q.ID, Type: q.Type}
		if !s.grader.Automatic(q.Type) {
			hasManual = true
			item.NeedsManual = true
		}
		if v, ok, err := s.acts.GetValue(ctx, q.ID, userID, activity.TypeUserAnswer); err != nil {
			return Summary{}, err
		} else if ok {
			item.Answer = v
			item.Answered = true
			answered++
		}
		if v, ok, err := s.acts.GetValue(ctx, q.ID, userID, activity.TypeUserGrade); err != nil {
			return Summary{}, err
		} else if ok {
			item.Graded = true
			gradedCount++
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				item.Correct = true
				sum.Correct++
			}
		} else if item.NeedsManual {
			pendingManual++
		}
		sum.Items = append(sum.Items, item)
	}

	if answered == 0 && gradedCount == 0 {
		sum.Status = StatusNotSubmitted
		return sum, nil
	}

	if sum.Total > 0 {
		sum.Percent = int(math.Round(100 * float64(sum.Correct) / float64(sum.Total)))
	}
	sum.Passed = sum.Percent >= quiz.Passmark

	switch {
	case pendingManual > 0:
		sum.Status = StatusPending
	case gradedCount < sum.Total:
		sum.Status = StatusSubmitted
	case hasManual:
		sum.Status = StatusGraded
	default:
		sum.Status = StatusAutoGraded
	}

	prev, hadGrade, err := s.acts.GetValue(ctx, quizID, userID, activity.TypeQuizGrade)
	if err != nil {
		return Summary{}, err
	}
	if _, err := s.acts.Record(ctx, quizID, userID, activity.TypeQuizGrade, strconv.Itoa(sum.Percent)); err != nil {
		return Summary{}, fmt.Errorf("record quiz grade: %w", err)
	}

	final := sum.Status == StatusGraded || sum.Status == StatusAutoGraded
	changed := !hadGrade || prev != strconv.Itoa(sum.Percent)
	if final && changed && s.events != nil {
		key := quizID + "|" + userID
		if err := s.events.Append(ctx, notify.EventQuizGraded, key, sum); err != nil {
			s.log.Error().Err(err).Str("key", key).Msg("append quiz graded event")
		}
	}
	return sum, nil
}

// ApplyManualGrade records a grader's verdict for one question and
// recomputes the owning quiz's aggregate. Revising a verdict re-runs the
// same path: the quiz stays graded, with a new value.
func (s *Service) ApplyManualGrade(ctx context.Context, questionID, userID string, correct bool, gradedBy string) (Summary, error) {
	quiz, err := s.content.QuizOfQuestion(ctx, questionID)
	if err != nil {
		return Summary{}, err
	}
	if _, err := s.acts.Record(ctx, questionID, userID, activity.TypeUserGrade, gradeValue(correct)); err != nil {
		return Summary{}, fmt.Errorf("record verdict: %w", err)
	}
	s.log.Info().Str("question_id", questionID).Str("user_id", userID).
		Str("graded_by", gradedBy).Bool("correct", correct).Msg("manual grade applied")
	return s.Grade(ctx, quiz.ID, userID)
}

func gradeValue(correct bool) string {
	if correct {
		return "1"
	}
	return "0"
}
