package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleList() []Bookmark {
	return []Bookmark{
		{ID: "1", Title: "Go Blog", URL: "https://go.dev/blog", Category: "Work"},
		{ID: "2", Title: "Recipes", URL: "https://cooking.example", Description: "Weekend PASTA ideas", Category: "Personal"},
		{ID: "3", Title: "Chi router", URL: "https://github.com/go-chi/chi", Category: "Work"},
		{ID: "4", Title: "Inbox", URL: "https://mail.example"},
	}
}

func ids(list []Bookmark) []string {
	out := make([]string, 0, len(list))
	for _, b := range list {
		out = append(out, b.ID)
	}
	return out
}

func TestSearch(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"empty query is identity", "", []string{"1", "2", "3", "4"}},
		{"title match ignores case", "go BLOG", []string{"1"}},
		{"url match", "github.com", []string{"3"}},
		{"description match", "pasta", []string{"2"}},
		{"matches several fields", "go", []string{"1", "3"}},
		{"no match", "zzz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Search(sampleList(), tt.query))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Search(%q) mismatch (-want +got):\n%s", tt.query, diff)
			}
		})
	}
}

func TestFilterByCategory(t *testing.T) {
	tests := []struct {
		name     string
		category string
		want     []string
	}{
		{"all sentinel", AllCategories, []string{"1", "2", "3", "4"}},
		{"absent selector", "", []string{"1", "2", "3", "4"}},
		{"exact match", "Work", []string{"1", "3"}},
		{"case sensitive", "work", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(FilterByCategory(sampleList(), tt.category))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("FilterByCategory(%q) mismatch (-want +got):\n%s", tt.category, diff)
			}
		})
	}
}

func TestFilterIsCommutative(t *testing.T) {
	list := sampleList()
	queries := []string{"", "go", "example", "pasta"}
	categories := []string{"", AllCategories, "Work", "Personal"}

	for _, q := range queries {
		for _, c := range categories {
			a := ids(Search(FilterByCategory(list, c), q))
			b := ids(FilterByCategory(Search(list, q), c))
			if diff := cmp.Diff(a, b); diff != "" {
				t.Errorf("q=%q c=%q order-dependent result:\n%s", q, c, diff)
			}
			if diff := cmp.Diff(a, ids(Filter{Query: q, Category: c}.Apply(list))); diff != "" {
				t.Errorf("Filter.Apply q=%q c=%q mismatch:\n%s", q, c, diff)
			}
		}
	}
}

func TestFilterIdentity(t *testing.T) {
	if !(Filter{Category: AllCategories}).IsIdentity() {
		t.Error("all-category filter should be identity")
	}
	if (Filter{Query: "x"}).IsIdentity() {
		t.Error("query filter should not be identity")
	}
}

func TestCategories(t *testing.T) {
	got := Categories(sampleList())
	if diff := cmp.Diff([]string{"Work", "Personal"}, got); diff != "" {
		t.Errorf("Categories() mismatch (-want +got):\n%s", diff)
	}
}

func TestCategoryBySlug(t *testing.T) {
	name, ok := CategoryBySlug(sampleList(), "personal")
	if !ok || name != "Personal" {
		t.Errorf("CategoryBySlug(personal) = (%q, %v), want (Personal, true)", name, ok)
	}
	if _, ok := CategoryBySlug(sampleList(), "travel"); ok {
		t.Error("CategoryBySlug(travel) should not resolve")
	}
}
