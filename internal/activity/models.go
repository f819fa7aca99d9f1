package activity

// Type is one of a closed set of learner/teacher actions the log records.
type Type string

const (
	TypeCourseStart Type = "course_start"
	TypeCourseEnd   Type = "course_end"
	TypeLessonStart Type = "lesson_start"
	TypeLessonEnd   Type = "lesson_end"
	TypeQuizGrade   Type = "quiz_grade"
	TypeUserAnswer  Type = "user_answer"
	TypeUserGrade   Type = "user_grade"
)

// Record is a single fact about an actor's interaction with a subject
// (course, lesson, quiz or question). At most one live record exists per
// (SubjectID, ActorID, Type) tuple; re-recording the same tuple updates
// Value and CreatedAt in place.
type Record struct {
	ID        string `json:"id"`
	SubjectID string `json:"subject_id"`
	ActorID   string `json:"actor_id"`
	Type      Type   `json:"type"`
	Value     string `json:"value"`
	CreatedAt int64  `json:"created_at"`
}

// Filter narrows Query results. Zero-value fields match everything.
type Filter struct {
	SubjectID string
	ActorID   string
	Type      Type
}
