// Package activity merges every tracked collection into a single,
// time-ordered activity feed.
package activity

import (
	"time"

	"github.com/PabloGalante/serene/internal/domain"
)

// DefaultPageSize is both the first page size and the "load more" step.
const DefaultPageSize = 20

type FeedOptions struct {
	Filter Filter
	// Limit is the number of visible items; <= 0 means DefaultPageSize.
	Limit int
	// Now anchors the Today/Yesterday labels; zero means time.Now().
	Now time.Time
	// Location is the calendar used for day grouping; nil means time.Local.
	Location *time.Location
}

func (o FeedOptions) withDefaults() FeedOptions {
	if o.Filter == "" {
		o.Filter = FilterAll
	}
	if o.Limit <= 0 {
		o.Limit = DefaultPageSize
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	return o
}

// DayGroup is a run of feed items that fall on the same calendar day.
type DayGroup struct {
	Label string `json:"label"`
	Items []Item `json:"items"`
}

type Feed struct {
	Groups  []DayGroup `json:"groups"`
	HasMore bool       `json:"has_more"`
	// Total is the number of items matching the filter, before pagination.
	Total int `json:"total"`
}

// Len returns the number of items on the page.
func (f Feed) Len() int {
	n := 0
	for _, g := range f.Groups {
		n += len(g.Items)
	}
	return n
}

// Items returns the page as a flat, ordered slice.
func (f Feed) Items() []Item {
	out := make([]Item, 0, f.Len())
	for _, g := range f.Groups {
		out = append(out, g.Items...)
	}
	return out
}

// NextLimit is the visible count after one "load more".
func NextLimit(current int) int {
	if current <= 0 {
		current = DefaultPageSize
	}
	return current + DefaultPageSize
}

// BuildFeed normalizes, merges, filters, paginates and groups src.
func BuildFeed(src Sources, opts FeedOptions) Feed {
	opts = opts.withDefaults()

	all := Normalize(src)
	filtered := all[:0:0]
	for _, it := range all {
		if opts.Filter.matches(it.Type) {
			filtered = append(filtered, it)
		}
	}

	n := min(opts.Limit, len(filtered))
	return Feed{
		Groups:  GroupByDay(filtered[:n], opts.Now, opts.Location),
		HasMore: len(filtered) > n,
		Total:   len(filtered),
	}
}

// GroupByDay buckets already-sorted items by calendar day. Groups appear in
// the order their label is first met.
func GroupByDay(items []Item, now time.Time, loc *time.Location) []DayGroup {
	groups := []DayGroup{}
	index := map[string]int{}
	for _, it := range items {
		label := DayLabel(it.Timestamp, now, loc)
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, DayGroup{Label: label})
		}
		groups[i].Items = append(groups[i].Items, it)
	}
	return groups
}

// DayLabel returns "Today", "Yesterday" or a label like "Monday, Jan 2".
func DayLabel(ts domain.Millis, now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	t := ts.Time(loc)
	now = now.In(loc)

	switch {
	case sameDay(t, now):
		return "Today"
	case sameDay(t, now.AddDate(0, 0, -1)):
		return "Yesterday"
	}
	return t.Format("Monday, Jan 2")
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
