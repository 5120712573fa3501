package homepage

import (
	"fmt"
	"sort"

	"github.com/MrSnakeDoc/marks/internal/domain"
)

// Mapper converts a bookmarks file into drafts ready to insert
type Mapper struct{}

// NewMapper creates a new mapper
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapDrafts flattens config in file order. The group name becomes the
// category; entries without an href are skipped.
func (m *Mapper) MapDrafts(config BookmarksConfig) ([]domain.Draft, error) {
	drafts := make([]domain.Draft, 0)

	for _, group := range config {
		for _, groupName := range sortedKeys(group) {
			for _, item := range group[groupName] {
				for _, name := range sortedKeys(item) {
					entries := item[name]
					if len(entries) == 0 {
						continue
					}
					entry := entries[0]

					title := name
					if title == "" {
						title = entry.Abbr
					}

					d := domain.Draft{
						Title:       title,
						URL:         entry.Href,
						Description: entry.Description,
						Category:    groupName,
					}.Normalize()
					if d.Validate() != nil {
						continue
					}
					drafts = append(drafts, d)
				}
			}
		}
	}

	if len(drafts) == 0 {
		return nil, fmt.Errorf("no valid bookmarks found in config")
	}
	return drafts, nil
}

// sortedKeys gives a stable order for YAML maps holding more than one key.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
