package mirror

import (
	"sort"

	"github.com/MrSnakeDoc/marks/internal/domain"
)

// The helpers below never mutate their input. Each returns either the input
// itself (changed=false) or a freshly allocated slice, so a published
// snapshot can be shared with readers without copying.

func indexOf(list []domain.Bookmark, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

// prepend puts b at index 0 unless an entry with the same id already exists.
func prepend(list []domain.Bookmark, b domain.Bookmark) ([]domain.Bookmark, bool) {
	if indexOf(list, b.ID) >= 0 {
		return list, false
	}
	out := make([]domain.Bookmark, 0, len(list)+1)
	out = append(out, b)
	out = append(out, list...)
	return out, true
}

// replace swaps the entry with b's id in place. Missing ids are a no-op.
func replace(list []domain.Bookmark, b domain.Bookmark) ([]domain.Bookmark, bool) {
	i := indexOf(list, b.ID)
	if i < 0 {
		return list, false
	}
	out := make([]domain.Bookmark, len(list))
	copy(out, list)
	out[i] = b
	return out, true
}

// remove drops the entry with id. Missing ids are a no-op.
func remove(list []domain.Bookmark, id string) ([]domain.Bookmark, bool) {
	i := indexOf(list, id)
	if i < 0 {
		return list, false
	}
	out := make([]domain.Bookmark, 0, len(list)-1)
	out = append(out, list[:i]...)
	out = append(out, list[i+1:]...)
	return out, true
}

// applyEvent folds one change-feed event into list.
func applyEvent(list []domain.Bookmark, ev domain.Event) ([]domain.Bookmark, bool) {
	switch ev.Kind {
	case domain.Inserted:
		return prepend(list, ev.Record)
	case domain.Updated:
		return replace(list, ev.Record)
	case domain.Deleted:
		return remove(list, ev.TargetID())
	default:
		return list, false
	}
}

// canonicalize orders a full fetch newest first and keeps the first
// occurrence of each id.
func canonicalize(list []domain.Bookmark) []domain.Bookmark {
	out := make([]domain.Bookmark, 0, len(list))
	seen := make(map[string]bool, len(list))
	for _, b := range list {
		if seen[b.ID] {
			continue
		}
		seen[b.ID] = true
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
