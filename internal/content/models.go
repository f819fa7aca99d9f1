package content

// Question types. Boolean, multi-choice and gap-fill grade automatically;
// the line/essay types await a grader's verdict. Unrecognized types fall
// back to manual grading.
const (
	QTypeBoolean     = "boolean"
	QTypeMultiChoice = "multi-choice"
	QTypeGapFill     = "gap-fill"
	QTypeSingleLine  = "single-line"
	QTypeMultiLine   = "multi-line"
	QTypeEssayPaste  = "essay-paste"
)

// Question belongs to a quiz. AnswerKey's shape depends on Type:
// boolean and multi-choice use a single element (the correct answer /
// designated option); gap-fill uses three (prefix, gap, suffix — only the
// gap segment is compared); manual types carry none.
type Question struct {
	ID        string   `json:"id"`
	Type      string   `json:"type"`
	Prompt    string   `json:"prompt,omitempty"`
	Choices   []string `json:"choices,omitempty"`
	AnswerKey []string `json:"answer_key,omitempty"`
}

// Quiz is owned by exactly one lesson. Passmark is a percentage; when
// PassRequired is set, the owning course cannot complete until the learner's
// grade meets it.
type Quiz struct {
	ID           string     `json:"id"`
	LessonID     string     `json:"lesson_id"`
	Title        string     `json:"title"`
	Passmark     int        `json:"passmark"`
	PassRequired bool       `json:"pass_required"`
	Questions    []Question `json:"questions,omitempty"`
}

type Lesson struct {
	ID       string `json:"id"`
	CourseID string `json:"course_id"`
	Title    string `json:"title"`
	Position int    `json:"position"`
}

type Course struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Category  string `json:"category,omitempty"`
	CreatedAt int64  `json:"created_at,omitempty"`
}
