package domain

import "strings"

// AllCategories is the selector value meaning "no category restriction".
const AllCategories = "all"

// Search returns the bookmarks whose title, url or description contains query,
// case-insensitively. An empty query returns list unchanged.
func Search(list []Bookmark, query string) []Bookmark {
	if query == "" {
		return list
	}
	needle := strings.ToLower(query)

	out := make([]Bookmark, 0, len(list))
	for _, b := range list {
		if matchesQuery(b, needle) {
			out = append(out, b)
		}
	}
	return out
}

func matchesQuery(b Bookmark, needle string) bool {
	return strings.Contains(strings.ToLower(b.Title), needle) ||
		strings.Contains(strings.ToLower(b.URL), needle) ||
		strings.Contains(strings.ToLower(b.Description), needle)
}

// FilterByCategory keeps the bookmarks whose category equals category exactly.
// An empty selector or AllCategories returns list unchanged.
func FilterByCategory(list []Bookmark, category string) []Bookmark {
	if category == "" || category == AllCategories {
		return list
	}

	out := make([]Bookmark, 0, len(list))
	for _, b := range list {
		if b.Category == category {
			out = append(out, b)
		}
	}
	return out
}

// Filter combines a free-text query and a category selector with logical AND.
type Filter struct {
	Query    string
	Category string
}

// IsIdentity reports whether Apply would return its input unchanged.
func (f Filter) IsIdentity() bool {
	return f.Query == "" && (f.Category == "" || f.Category == AllCategories)
}

// Apply runs both predicates. The order does not change the result.
func (f Filter) Apply(list []Bookmark) []Bookmark {
	return Search(FilterByCategory(list, f.Category), f.Query)
}

// Categories lists the distinct non-empty categories in order of first appearance.
func Categories(list []Bookmark) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, b := range list {
		if b.Category == "" || seen[b.Category] {
			continue
		}
		seen[b.Category] = true
		out = append(out, b.Category)
	}
	return out
}

// CategoryBySlug resolves a lowercase route slug (e.g. "work") to the stored
// category name (e.g. "Work"). The first category in list order wins.
func CategoryBySlug(list []Bookmark, slug string) (string, bool) {
	if slug == "" {
		return "", false
	}
	for _, name := range Categories(list) {
		if strings.EqualFold(name, slug) {
			return name, true
		}
	}
	return "", false
}
