package report

import (
	"context"
	"fmt"
	"testing"
)

func pagedReport() Report {
	return Report{
		ID:          "test",
		SearchField: "user",
		Sortable:    []string{"user", "percent"},
	}
}

func numberedRows(n int) []Row {
	rows := make([]Row, 0, n)
	for i := 1; i <= n; i++ {
		rows = append(rows, Row{
			"user":    fmt.Sprintf("user-%02d", i),
			"percent": fmt.Sprintf("%d", i),
		})
	}
	return rows
}

func TestPaginationLastPartialPage(t *testing.T) {
	rows := numberedRows(25)
	page, total := Apply(pagedReport(), rows, Params{Page: 3, PerPage: 10})
	if total != 25 {
		t.Fatalf("want total 25, got %d", total)
	}
	if len(page) != 5 {
		t.Fatalf("page 3 of 25 rows at 10 per page has 5 rows, got %d", len(page))
	}
	if page[0]["user"] != "user-21" || page[4]["user"] != "user-25" {
		t.Fatalf("expected the last slice, got %v .. %v", page[0]["user"], page[4]["user"])
	}
}

func TestPageBeyondEndIsEmpty(t *testing.T) {
	page, total := Apply(pagedReport(), numberedRows(5), Params{Page: 4, PerPage: 10})
	if total != 5 || len(page) != 0 {
		t.Fatalf("want empty page past the end, got %d rows (total %d)", len(page), total)
	}
}

func TestUnknownOrderByLeavesOrderUnchanged(t *testing.T) {
	rows := []Row{
		{"user": "zofia"},
		{"user": "ada"},
		{"user": "miriam"},
	}
	page, _ := Apply(pagedReport(), rows, Params{OrderBy: "shoe_size", PerPage: 10})
	if page[0]["user"] != "zofia" || page[1]["user"] != "ada" || page[2]["user"] != "miriam" {
		t.Fatalf("unrecognized orderby must not sort: %v", page)
	}
}

func TestSortNumericAndDesc(t *testing.T) {
	rows := []Row{
		{"user": "a", "percent": "9"},
		{"user": "b", "percent": "100"},
		{"user": "c", "percent": "25"},
	}
	page, _ := Apply(pagedReport(), rows, Params{OrderBy: "percent", PerPage: 10})
	if page[0]["percent"] != "9" || page[2]["percent"] != "100" {
		t.Fatalf("numeric columns sort numerically: %v", page)
	}
	page, _ = Apply(pagedReport(), rows, Params{OrderBy: "percent", Order: "desc", PerPage: 10})
	if page[0]["percent"] != "100" {
		t.Fatalf("desc order reverses: %v", page)
	}
}

func TestSearchFiltersDesignatedField(t *testing.T) {
	rows := []Row{
		{"user": "Ada Lovelace"},
		{"user": "Alan Turing"},
		{"user": "Grace Hopper"},
	}
	page, total := Apply(pagedReport(), rows, Params{Search: "ada", PerPage: 10})
	if total != 1 || page[0]["user"] != "Ada Lovelace" {
		t.Fatalf("substring search is case-insensitive over the display field: %v", page)
	}
}

func TestCategoryFilterExactMatch(t *testing.T) {
	r := Report{ID: "c", CategoryField: "category", Sortable: []string{"course"}}
	rows := []Row{
		{"course": "Go 101", "category": "programming"},
		{"course": "Watercolors", "category": "art"},
	}
	page, total := Apply(r, rows, Params{Category: "art", PerPage: 10})
	if total != 1 || page[0]["course"] != "Watercolors" {
		t.Fatalf("category filter is exact: %v", page)
	}
}

func TestRegistryValidatesAtConstruction(t *testing.T) {
	build := func(context.Context) ([]Row, error) { return nil, nil }

	if _, err := NewRegistry(Report{ID: "dup", Build: build}, Report{ID: "dup", Build: build}); err == nil {
		t.Fatalf("duplicate IDs must fail at construction")
	}
	if _, err := NewRegistry(Report{ID: "nil-builder"}); err == nil {
		t.Fatalf("nil builder must fail at construction")
	}

	reg, err := NewRegistry(Report{ID: "ok", Build: build})
	if err != nil {
		t.Fatalf("valid registry: %v", err)
	}
	if _, _, err := reg.BuildRows(context.Background(), "missing", Params{}); err == nil {
		t.Fatalf("unknown report id must error")
	}
}
