package grading

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/study-path/studypath-lms/internal/content"
)

// Q is a minimal view of a question needed for grading.
type Q struct {
	ID        string
	Type      string
	AnswerKey []string
}

// Verdict is the outcome of grading a single answer.
type Verdict struct {
	Correct     bool
	NeedsManual bool     // true if a grader's decision is required
	Feedback    []string // optional notes
}

// Strategy grades a single answer.
type Strategy interface {
	Grade(ctx context.Context, q Q, answer string) (Verdict, error)
}

// Grader routes by question type to the correct Strategy. Unknown types are
// routed to manual grading with a logged warning, never rejected.
type Grader interface {
	Grade(ctx context.Context, q Q, answer string) (Verdict, error)
	// Automatic reports whether the type grades without human judgment.
	Automatic(qtype string) bool
}

type defaultGrader struct {
	strategies map[string]Strategy
	manual     map[string]bool
	log        zerolog.Logger
}

func (g *defaultGrader) Grade(ctx context.Context, q Q, answer string) (Verdict, error) {
	s, ok := g.strategies[q.Type]
	if !ok {
		g.log.Warn().Str("question_id", q.ID).Str("type", q.Type).
			Msg("unknown question type, deferring to manual grading")
		return Verdict{NeedsManual: true, Feedback: []string{"no strategy available"}}, nil
	}
	return s.Grade(ctx, q, answer)
}

func (g *defaultGrader) Automatic(qtype string) bool {
	_, known := g.strategies[qtype]
	return known && !g.manual[qtype]
}

// NewDefaultGrader installs built-in strategies.
func NewDefaultGrader(log zerolog.Logger) Grader {
	manual := manualStrategy{}
	return &defaultGrader{
		log: log,
		strategies: map[string]Strategy{
			content.QTypeBoolean:     booleanStrategy{},
			content.QTypeMultiChoice: multiChoiceStrategy{},
			content.QTypeGapFill:     gapFillStrategy{},
			content.QTypeSingleLine:  manual,
			content.QTypeMultiLine:   manual,
			content.QTypeEssayPaste:  manual,
		},
		manual: map[string]bool{
			content.QTypeSingleLine: true,
			content.QTypeMultiLine:  true,
			content.QTypeEssayPaste: true,
		},
	}
}

// --- Strategies ---

type booleanStrategy struct{}

func (booleanStrategy) Grade(_ context.Context, q Q, answer string) (Verdict, error) {
	if len(q.AnswerKey) == 0 {
		return Verdict{}, nil
	}
	return Verdict{Correct: strings.EqualFold(answer, q.AnswerKey[0])}, nil
}

type multiChoiceStrategy struct{}

func (multiChoiceStrategy) Grade(_ context.Context, q Q, answer string) (Verdict, error) {
	for _, k := range q.AnswerKey {
		if answer == k {
			return Verdict{Correct: true}, nil
		}
	}
	return Verdict{}, nil
}

// gapFillStrategy compares only the gap segment of a (prefix, gap, suffix)
// answer key. Case-insensitive, no trimming: a trailing space is wrong.
type gapFillStrategy struct{}

func (gapFillStrategy) Grade(_ context.Context, q Q, answer string) (Verdict, error) {
	if len(q.AnswerKey) < 2 {
		return Verdict{}, nil
	}
	gap := q.AnswerKey[1]
	return Verdict{Correct: strings.EqualFold(answer, gap)}, nil
}

type manualStrategy struct{}

func (manualStrategy) Grade(_ context.Context, _ Q, _ string) (Verdict, error) {
	return Verdict{NeedsManual: true, Feedback: []string{"manual grading required"}}, nil
}
