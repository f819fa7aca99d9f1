// Package report builds sortable, searchable, paginated row sets over
// tracker and grading outputs for administrative reporting surfaces. It has
// no authority over what columns mean; it operates on pre-built rows.
package report

import (
	"sort"
	"strconv"
	"strings"
)

// Row is one report line, column key to display value.
type Row map[string]string

// Params are the caller-supplied list controls. Page is 1-based.
type Params struct {
	Page     int
	PerPage  int
	OrderBy  string
	Order    string // "asc" (default) or "desc"
	Search   string
	Category string
}

const DefaultPerPage = 25

// Apply filters, sorts and paginates rows per the report's column contract.
// Returns the page slice and the total row count after filtering. An OrderBy
// key outside the report's sortable whitelist is ignored: no sort, no error.
func Apply(r Report, rows []Row, p Params) ([]Row, int) {
	if p.Search != "" && r.SearchField != "" {
		needle := strings.ToLower(p.Search)
		kept := rows[:0:0]
		for _, row := range rows {
			if strings.Contains(strings.ToLower(row[r.SearchField]), needle) {
				kept = append(kept, row)
			}
		}
		rows = kept
	}
	if p.Category != "" && r.CategoryField != "" {
		kept := rows[:0:0]
		for _, row := range rows {
			if row[r.CategoryField] == p.Category {
				kept = append(kept, row)
			}
		}
		rows = kept
	}

	if p.OrderBy != "" && r.sortable(p.OrderBy) {
		desc := strings.EqualFold(p.Order, "desc")
		stableSort(rows, p.OrderBy, desc)
	}

	total := len(rows)
	perPage := p.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	page := p.Page
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * perPage
	if start >= total {
		return nil, total
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return rows[start:end], total
}

// stableSort orders rows by column, numerically when both values parse as
// numbers, lexically otherwise.
func stableSort(rows []Row, col string, desc bool) {
	less := func(a, b Row) bool {
		av, bv := a[col], b[col]
		if an, err := strconv.ParseFloat(av, 64); err == nil {
			if bn, err := strconv.ParseFloat(bv, 64); err == nil {
				if desc {
					return bn < an
				}
				return an < bn
			}
		}
		if desc {
			return bv < av
		}
		return av < bv
	}
	sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j]) })
}
