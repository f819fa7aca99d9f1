package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/study-path/studypath-lms/internal/content"
)

// POST /courses — authoring upsert of a course shell.
func PutCourseHandler(store content.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var c content.Course
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if c.ID == "" || c.Title == "" {
			http.Error(w, "id and title required", http.StatusBadRequest)
			return
		}
		if err := store.PutCourse(r.Context(), c); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(c)
	}
}

// GET /courses/{courseID}
func GetCourseHandler(store content.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "courseID")
		c, err := store.GetCourse(r.Context(), id)
		if err != nil {
			writeContentErr(w, err)
			return
		}
		lessons, err := store.Lessons(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"course":  c,
			"lessons": lessons,
		})
	}
}

// GET /courses
func ListCoursesHandler(store content.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cs, err := store.ListCourses(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(cs)
	}
}

// POST /lessons — authoring upsert; position orders lessons in the course.
func PutLessonHandler(store content.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var l content.Lesson
		if err := json.NewDecoder(r.Body).Decode(&l); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if l.ID == "" || l.CourseID == "" {
			http.Error(w, "id and course_id required", http.StatusBadRequest)
			return
		}
		if err := store.PutLesson(r.Context(), l); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(l)
	}
}

// POST /quizzes — authoring upsert of a quiz with its questions and keys.
func PutQuizHandler(store content.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q content.Quiz
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if q.ID == "" || q.LessonID == "" {
			http.Error(w, "id and lesson_id required", http.StatusBadRequest)
			return
		}
		if err := store.PutQuiz(r.Context(), q); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		// never echo answer keys back over the authoring response
		for i := range q.Questions {
			q.Questions[i].AnswerKey = nil
		}
		_ = json.NewEncoder(w).Encode(q)
	}
}

// GET /quizzes/{quizID} — learner-safe: no answer keys.
func GetQuizHandler(store content.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "quizID"))
		q, err := store.GetQuiz(r.Context(), id)
		if err != nil {
			writeContentErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(q)
	}
}

func writeContentErr(w http.ResponseWriter, err error) {
	if errors.Is(err, content.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
