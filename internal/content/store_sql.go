package content

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SQLStore keeps courses and lessons as rows and each quiz's question list
// as a JSON column, upserted with ON CONFLICT so author edits replace in
// place.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) PutCourse(ctx context.Context, c Course) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO courses (id, title, category, created_at) VALUES ($1,$2,$3,$4)
		 ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, category=EXCLUDED.category`,
		c.ID, c.Title, c.Category, time.Now().Unix())
	return err
}

func (s *SQLStore) GetCourse(ctx context.Context, id string) (Course, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, category, created_at FROM courses WHERE id=$1`, id)
	var c Course
	if err := row.Scan(&c.ID, &c.Title, &c.Category, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Course{}, fmt.Errorf("course %s: %w", id, ErrNotFound)
		}
		return Course{}, err
	}
	return c, nil
}

func (s *SQLStore) ListCourses(ctx context.Context) ([]Course, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, category, created_at FROM courses ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Course
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Category, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLStore) Lessons(ctx context.Context, courseID string) ([]Lesson, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, course_id, title, position FROM lessons WHERE course_id=$1 ORDER BY position, id`,
		courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Lesson
	for rows.Next() {
		var l Lesson
		if err := rows.Scan(&l.ID, &l.CourseID, &l.Title, &l.Position); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *SQLStore) PutLesson(ctx context.Context, l Lesson) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO lessons (id, course_id, title, position) VALUES ($1,$2,$3,$4)
		 ON CONFLICT (id) DO UPDATE SET course_id=EXCLUDED.course_id, title=EXCLUDED.title, position=EXCLUDED.position`,
		l.ID, l.CourseID, l.Title, l.Position)
	return err
}

func (s *SQLStore) GetLesson(ctx context.Context, id string) (Lesson, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, course_id, title, position FROM lessons WHERE id=$1`, id)
	var l Lesson
	if err := row.Scan(&l.ID, &l.CourseID, &l.Title, &l.Position); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Lesson{}, fmt.Errorf("lesson %s: %w", id, ErrNotFound)
		}
		return Lesson{}, err
	}
	return l, nil
}

func (s *SQLStore) PutQuiz(ctx context.Context, q Quiz) error {
	qj, err := json.Marshal(q.Questions)
	if err != nil {
		return err
	}
	passReq := 0
	if q.PassRequired {
		passReq = 1
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO quizzes (id, lesson_id, title, passmark, pass_required, questions_json)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 ON CONFLICT (id) DO UPDATE SET lesson_id=EXCLUDED.lesson_id, title=EXCLUDED.title,
		   passmark=EXCLUDED.passmark, pass_required=EXCLUDED.pass_required, questions_json=EXCLUDED.questions_json`,
		q.ID, q.LessonID, q.Title, q.Passmark, passReq, string(qj))
	return err
}

func (s *SQLStore) GetQuiz(ctx context.Context, id string) (Quiz, error) {
	q, err := s.QuizAdmin(ctx, id)
	if err != nil {
		return Quiz{}, err
	}
	for i := range q.Questions {
		q.Questions[i].AnswerKey = nil
	}
	return q, nil
}

func (s *SQLStore) QuizAdmin(ctx context.Context, id string) (Quiz, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, lesson_id, title, passmark, pass_required, questions_json FROM quizzes WHERE id=$1`, id)
	return scanQuiz(row, id)
}

func (s *SQLStore) QuizForLesson(ctx context.Context, lessonID string) (Quiz, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, lesson_id, title, passmark, pass_required, questions_json FROM quizzes WHERE lesson_id=$1`,
		lessonID)
	q, err := scanQuiz(row, lessonID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Quiz{}, false, nil
		}
		return Quiz{}, false, err
	}
	return q, true, nil
}

func (s *SQLStore) QuizOfQuestion(ctx context.Context, questionID string) (Quiz, error) {
	// questions live inside quizzes.questions_json; scan quiz rows for the ID
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, lesson_id, title, passmark, pass_required, questions_json FROM quizzes`)
	if err != nil {
		return Quiz{}, err
	}
	defer rows.Close()
	for rows.Next() {
		q, err := scanQuizRows(rows)
		if err != nil {
			return Quiz{}, err
		}
		for _, que := range q.Questions {
			if que.ID == questionID {
				return q, nil
			}
		}
	}
	if err := rows.Err(); err != nil {
		return Quiz{}, err
	}
	return Quiz{}, fmt.Errorf("question %s: %w", questionID, ErrNotFound)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanQuiz(row *sql.Row, id string) (Quiz, error) {
	q, err := scanQuizFrom(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Quiz{}, fmt.Errorf("quiz %s: %w", id, ErrNotFound)
		}
		return Quiz{}, err
	}
	return q, nil
}

func scanQuizRows(rows *sql.Rows) (Quiz, error) {
	return scanQuizFrom(rows)
}

func scanQuizFrom(sc rowScanner) (Quiz, error) {
	var q Quiz
	var passReq int
	var qjson string
	if err := sc.Scan(&q.ID, &q.LessonID, &q.Title, &q.Passmark, &passReq, &qjson); err != nil {
		return Quiz{}, err
	}
	q.PassRequired = passReq != 0
	if err := json.Unmarshal([]byte(qjson), &q.Questions); err != nil {
		return Quiz{}, err
	}
	return q, nil
}
