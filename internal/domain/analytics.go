package domain

import "time"

// Palette is the cyclic color set assigned to category groups by insertion index.
var Palette = []string{"blue", "green", "purple", "yellow", "red", "indigo"}

// DateLayout is the calendar-day key used by DailyActivity.
const DateLayout = "2006-01-02"

// CategoryStat is one histogram group.
type CategoryStat struct {
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
	Color      string  `json:"color"`
}

// DailyCount is the number of bookmarks created on one calendar day.
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// CategoryHistogram groups list by category in order of first appearance.
// Uncategorized entries are not grouped but still count in the percentage
// denominator, which is len(list).
func CategoryHistogram(list []Bookmark) []CategoryStat {
	stats := make([]CategoryStat, 0)
	index := make(map[string]int)

	for _, b := range list {
		if b.Category == "" {
			continue
		}
		if i, ok := index[b.Category]; ok {
			stats[i].Count++
			continue
		}
		index[b.Category] = len(stats)
		stats = append(stats, CategoryStat{
			Name:  b.Category,
			Count: 1,
			Color: Palette[len(stats)%len(Palette)],
		})
	}

	total := len(list)
	for i := range stats {
		stats[i].Percentage = 100 * float64(stats[i].Count) / float64(total)
	}
	return stats
}

// RecentCount counts entries created strictly after now minus windowDays calendar days.
func RecentCount(list []Bookmark, windowDays int, now time.Time) int {
	cutoff := now.AddDate(0, 0, -windowDays)
	n := 0
	for _, b := range list {
		if b.CreatedAt.After(cutoff) {
			n++
		}
	}
	return n
}

// DailyActivity returns one bucket per calendar day for the last days days,
// oldest first, ending with the day of now. Days are taken in now's location.
func DailyActivity(list []Bookmark, days int, now time.Time) []DailyCount {
	if days <= 0 {
		return []DailyCount{}
	}

	loc := now.Location()
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, loc)

	buckets := make([]DailyCount, days)
	slot := make(map[string]int, days)
	for i := 0; i < days; i++ {
		key := today.AddDate(0, 0, i-(days-1)).Format(DateLayout)
		buckets[i] = DailyCount{Date: key}
		slot[key] = i
	}

	for _, b := range list {
		if i, ok := slot[b.CreatedAt.In(loc).Format(DateLayout)]; ok {
			buckets[i].Count++
		}
	}
	return buckets
}

// SummaryOptions tunes Summarize. Zero values fall back to the dashboard defaults.
type SummaryOptions struct {
	RecentWindowDays int
	ActivityDays     int
	NewestLimit      int
}

const (
	DefaultRecentWindowDays = 7
	DefaultActivityDays     = 7
	DefaultNewestLimit      = 5
)

func (o SummaryOptions) withDefaults() SummaryOptions {
	if o.RecentWindowDays <= 0 {
		o.RecentWindowDays = DefaultRecentWindowDays
	}
	if o.ActivityDays <= 0 {
		o.ActivityDays = DefaultActivityDays
	}
	if o.NewestLimit <= 0 {
		o.NewestLimit = DefaultNewestLimit
	}
	return o
}

// Summary is the dashboard view computed from one snapshot.
type Summary struct {
	Total         int            `json:"total"`
	Recent        int            `json:"recent"`
	CategoryCount int            `json:"category_count"`
	Categories    []CategoryStat `json:"categories"`
	Newest        []Bookmark     `json:"newest"`
	Daily         []DailyCount   `json:"daily"`
}

// Summarize computes every aggregate over list. list is assumed newest first.
func Summarize(list []Bookmark, opts SummaryOptions, now time.Time) Summary {
	opts = opts.withDefaults()

	categories := CategoryHistogram(list)
	n := len(list)
	if n > opts.NewestLimit {
		n = opts.NewestLimit
	}
	newest := make([]Bookmark, n)
	copy(newest, list)

	return Summary{
		Total:         len(list),
		Recent:        RecentCount(list, opts.RecentWindowDays, now),
		CategoryCount: len(categories),
		Categories:    categories,
		Newest:        newest,
		Daily:         DailyActivity(list, opts.ActivityDays, now),
	}
}
