package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/study-path/studypath-lms/internal/report"
)

// GET /reports — registered report IDs.
func ListReportsHandler(reg *report.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string][]string{"reports": reg.IDs()})
	}
}

// GET /reports/{reportID}?page=&per_page=&orderby=&order=&search=&category=
func ReportRowsHandler(reg *report.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reportID := chi.URLParam(r, "reportID")
		q := r.URL.Query()
		p := report.Params{
			Page:     parseIntDefault(q.Get("page"), 1),
			PerPage:  parseIntDefault(q.Get("per_page"), report.DefaultPerPage),
			OrderBy:  q.Get("orderby"),
			Order:    q.Get("order"),
			Search:   q.Get("search"),
			Category: q.Get("category"),
		}
		rows, total, err := reg.BuildRows(r.Context(), reportID, p)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"rows":  rows,
			"total": total,
			"page":  p.Page,
		})
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return n
}
