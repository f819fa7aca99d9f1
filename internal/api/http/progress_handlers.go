package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/study-path/studypath-lms/internal/progress"
	"github.com/study-path/studypath-lms/internal/rbac"
)

// POST /courses/{courseID}/start
func StartCourseHandler(tracker *progress.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := chi.URLParam(r, "courseID")
		userID := rbac.SubjectFromContext(r.Context())
		if userID == "" {
			http.Error(w, "unauthenticated", http.StatusUnauthorized)
			return
		}
		if err := tracker.StartCourse(r.Context(), courseID, userID); err != nil {
			writeContentErr(w, err)
			return
		}
		writeStatus(w, r, tracker, courseID, userID)
	}
}

// POST /lessons/{lessonID}/start
func StartLessonHandler(tracker *progress.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lessonID := chi.URLParam(r, "lessonID")
		userID := rbac.SubjectFromContext(r.Context())
		if userID == "" {
			http.Error(w, "unauthenticated", http.StatusUnauthorized)
			return
		}
		if err := tracker.StartLesson(r.Context(), lessonID, userID); err != nil {
			writeContentErr(w, err)
			return
		}
		st, _, err := tracker.LessonStatus(r.Context(), lessonID, userID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"lesson_id": lessonID, "status": string(st)})
	}
}

// POST /lessons/{lessonID}/complete
func CompleteLessonHandler(tracker *progress.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lessonID := chi.URLParam(r, "lessonID")
		userID := rbac.SubjectFromContext(r.Context())
		if userID == "" {
			http.Error(w, "unauthenticated", http.StatusUnauthorized)
			return
		}
		if err := tracker.CompleteLesson(r.Context(), lessonID, userID); err != nil {
			writeContentErr(w, err)
			return
		}
		st, done, err := tracker.LessonStatus(r.Context(), lessonID, userID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		resp := map[string]string{"lesson_id": lessonID, "status": string(st)}
		if done != nil {
			resp["completed_at"] = done.UTC().Format(time.RFC3339)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// GET /lessons/{lessonID}/status?user_id=...
// Learners see their own status; progress:view-all callers may name a user.
func LessonStatusHandler(tracker *progress.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lessonID := chi.URLParam(r, "lessonID")
		userID := scopedUserID(r, "progress:view-all")
		st, done, err := tracker.LessonStatus(r.Context(), lessonID, userID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		resp := map[string]string{"lesson_id": lessonID, "user_id": userID, "status": string(st)}
		if done != nil {
			resp["completed_at"] = done.UTC().Format(time.RFC3339)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// GET /courses/{courseID}/status?user_id=...
func CourseStatusHandler(tracker *progress.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := chi.URLParam(r, "courseID")
		userID := scopedUserID(r, "progress:view-all")
		st, err := tracker.CourseStatus(r.Context(), courseID, userID)
		if err != nil {
			writeContentErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"course_id": courseID, "user_id": userID, "status": string(st),
		})
	}
}

func writeStatus(w http.ResponseWriter, r *http.Request, tracker *progress.Tracker, courseID, userID string) {
	st, err := tracker.CourseStatus(r.Context(), courseID, userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{
		"course_id": courseID, "user_id": userID, "status": string(st),
	})
}

// scopedUserID forces callers onto their own records; roles carrying the
// view-all permission may pass ?user_id= to name another learner.
func scopedUserID(r *http.Request, viewAllPerm string) string {
	sub := rbac.SubjectFromContext(r.Context())
	requested := r.URL.Query().Get("user_id")
	if requested == "" || !rbac.Allowed(r.Context(), viewAllPerm) {
		return sub
	}
	return requested
}
