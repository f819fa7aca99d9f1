package report

import (
	"context"
	"fmt"
	"sort"
)

// Builder produces the full unfiltered row set for a report.
type Builder func(ctx context.Context) ([]Row, error)

// Report declares a row producer plus its column contract: which field
// search runs over, which field the category filter matches, and which
// columns may be sorted on.
type Report struct {
	ID            string
	SearchField   string
	CategoryField string
	Sortable      []string
	Build         Builder
}

func (r Report) sortable(col string) bool {
	for _, s := range r.Sortable {
		if s == col {
			return true
		}
	}
	return false
}

// Registry maps report IDs to their builders. Reports are registered and
// validated at construction, not resolved from strings at call time.
type Registry struct {
	reports map[string]Report
}

func NewRegistry(reports ...Report) (*Registry, error) {
	m := make(map[string]Report, len(reports))
	for _, r := range reports {
		if r.ID == "" {
			return nil, fmt.Errorf("report with empty ID")
		}
		if r.Build == nil {
			return nil, fmt.Errorf("report %q: nil builder", r.ID)
		}
		if _, dup := m[r.ID]; dup {
			return nil, fmt.Errorf("report %q registered twice", r.ID)
		}
		m[r.ID] = r
	}
	return &Registry{reports: m}, nil
}

// IDs lists registered report identifiers, sorted.
func (g *Registry) IDs() []string {
	out := make([]string, 0, len(g.reports))
	for id := range g.reports {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// BuildRows runs the report's builder, then filters, sorts and paginates.
// The second return value is the total matching row count before paging.
func (g *Registry) BuildRows(ctx context.Context, id string, p Params) ([]Row, int, error) {
	r, ok := g.reports[id]
	if !ok {
		return nil, 0, fmt.Errorf("unknown report %q", id)
	}
	rows, err := r.Build(ctx)
	if err != nil {
		return nil, 0, err
	}
	page, total := Apply(r, rows, p)
	return page, total, nil
}
