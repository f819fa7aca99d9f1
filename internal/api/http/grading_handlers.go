package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/study-path/studypath-lms/internal/content"
	"github.com/study-path/studypath-lms/internal/grading"
	"github.com/study-path/studypath-lms/internal/rbac"
)

// POST /quizzes/{quizID}/submit  { "answers": { "q1": "...", ... } }
func SubmitQuizHandler(svc *grading.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizID := strings.TrimSpace(chi.URLParam(r, "quizID"))
		userID := rbac.SubjectFromContext(r.Context())
		if userID == "" {
			http.Error(w, "unauthenticated", http.StatusUnauthorized)
			return
		}
		var req struct {
			Answers map[string]string `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		sum, err := svc.SubmitQuiz(r.Context(), quizID, userID, req.Answers)
		if err != nil {
			writeGradingErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(sum)
	}
}

// GET /quizzes/{quizID}/grade?user_id=...
func QuizGradeHandler(svc *grading.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizID := strings.TrimSpace(chi.URLParam(r, "quizID"))
		userID := scopedUserID(r, "grade:view-all")
		sum, err := svc.Grade(r.Context(), quizID, userID)
		if err != nil {
			writeGradingErr(w, err)
			return
		}
		// learners only get their aggregate; per-question items are for
		// grading surfaces
		if !rbac.Allowed(r.Context(), "grade:view-all") {
			sum.Items = nil
		}
		_ = json.NewEncoder(w).Encode(sum)
	}
}

// POST /questions/{questionID}/grade  { "user_id": "...", "correct": true }
func ManualGradeHandler(svc *grading.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questionID := strings.TrimSpace(chi.URLParam(r, "questionID"))
		gradedBy := rbac.SubjectFromContext(r.Context())
		var req struct {
			UserID  string `json:"user_id"`
			Correct bool   `json:"correct"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.UserID == "" {
			http.Error(w, "user_id required", http.StatusBadRequest)
			return
		}
		sum, err := svc.ApplyManualGrade(r.Context(), questionID, req.UserID, req.Correct, gradedBy)
		if err != nil {
			writeGradingErr(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(sum)
	}
}

func writeGradingErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, content.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, grading.ErrMalformedSubmission):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
