package activity_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/PabloGalante/serene/internal/app/activity"
	"github.com/PabloGalante/serene/internal/domain"
)

var (
	utc = time.UTC
	now = time.Date(2026, time.October, 19, 15, 0, 0, 0, utc)
)

func at(t time.Time) domain.Millis { return domain.MillisOf(t) }

func TestBuildFeed_MoodsNewestFirst(t *testing.T) {
	src := activity.Sources{
		Moods: []domain.MoodEntry{
			{ID: "a", Mood: domain.MoodHappy, Timestamp: 100},
			{ID: "b", Mood: domain.MoodSad, Timestamp: 50},
		},
	}

	items := activity.BuildFeed(src, activity.FeedOptions{Now: now, Location: utc}).Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Timestamp != 100 || items[1].Timestamp != 50 {
		t.Errorf("expected [100, 50], got [%d, %d]", items[0].Timestamp, items[1].Timestamp)
	}
	if items[0].Title != "Mood Logged: Happy" {
		t.Errorf("unexpected title %q", items[0].Title)
	}
}

func TestNormalize_PerSourceRules(t *testing.T) {
	long := strings.Repeat("x", 61)
	src := activity.Sources{
		Moods:     []domain.MoodEntry{{ID: "1", Mood: domain.MoodCalm, Note: "quiet morning", Timestamp: 600}},
		Journals:  []domain.JournalEntry{{ID: "2", Content: long, Timestamp: 500}, {ID: "3", Title: "Walk", Content: "short", Timestamp: 450}},
		Breathing: []domain.BreathingSession{{ID: "4", DurationSeconds: 125, Timestamp: 400}},
		Tasks:     []domain.Task{{ID: "300", Title: "Buy milk", Category: "Personal"}},
		Sleep:     []domain.SleepEntry{{ID: "6", Hours: 7.5, Quality: domain.SleepGood, Timestamp: 200}},
		Chats: []domain.ChatMessage{
			{ID: "c1", Role: domain.RoleModel, Text: "Hi, how are you?", Timestamp: 90},
			{ID: "c2", Role: domain.RoleUser, Text: "Tired", Timestamp: 100},
		},
	}

	items := activity.Normalize(src)
	if len(items) != 7 {
		t.Fatalf("expected 7 items, got %d", len(items))
	}

	want := []struct {
		id, title, subtitle string
		typ                 activity.Type
	}{
		{"m-1", "Mood Logged: Calm", "quiet morning", activity.TypeMood},
		{"j-2", "Journal Entry", strings.Repeat("x", 60) + "...", activity.TypeJournal},
		{"j-3", "Walk", "short", activity.TypeJournal},
		{"b-4", "Breathing Focus", "2m 5s session", activity.TypeBreathing},
		{"t-300", "Task Created: Buy milk", "Personal", activity.TypeTask},
		{"s-6", "Sleep Tracked: 7.5h", "Good Quality", activity.TypeSleep},
		{"session-c1", "Voice/Chat Session", `2 messages • "Tired"`, activity.TypeChat},
	}

	for i, w := range want {
		got := items[i]
		if got.ID != w.id || got.Title != w.title || got.Subtitle != w.subtitle || got.Type != w.typ {
			t.Errorf("item %d: got {%s %q %q %s}, want {%s %q %q %s}",
				i, got.ID, got.Title, got.Subtitle, got.Type, w.id, w.title, w.subtitle, w.typ)
		}
		if got.Payload.Type() != got.Type {
			t.Errorf("item %d: payload type %s does not match %s", i, got.Payload.Type(), got.Type)
		}
	}

	chat, ok := items[6].Payload.(activity.ChatPayload)
	if !ok {
		t.Fatalf("expected ChatPayload, got %T", items[6].Payload)
	}
	if len(chat.Session) != 2 || items[6].Timestamp != 100 {
		t.Errorf("chat item should carry the whole session stamped with its last message")
	}
}

func TestNormalize_ChatWithoutUserMessage(t *testing.T) {
	items := activity.Normalize(activity.Sources{
		Chats: []domain.ChatMessage{{ID: "s", Role: domain.RoleSystem, Text: "welcome", Timestamp: 1}},
	})
	if len(items) != 1 || items[0].Subtitle != "1 messages • Session started" {
		t.Fatalf("unexpected chat item %+v", items)
	}
}

func TestNormalize_TaskWithNonNumericID(t *testing.T) {
	items := activity.Normalize(activity.Sources{Tasks: []domain.Task{{ID: "abc", Title: "x"}}})
	if items[0].Timestamp != 0 {
		t.Errorf("expected epoch timestamp, got %d", items[0].Timestamp)
	}
}

func TestBuildFeed_Filter(t *testing.T) {
	src := mixedSources(5)

	for _, typ := range activity.Types {
		t.Run(string(typ), func(t *testing.T) {
			feed := activity.BuildFeed(src, activity.FeedOptions{Filter: activity.Filter(typ), Limit: 100, Now: now, Location: utc})
			if feed.Len() == 0 {
				t.Fatalf("expected items of type %s", typ)
			}
			for _, it := range feed.Items() {
				if it.Type != typ {
					t.Errorf("filter %s returned %s item", typ, it.Type)
				}
			}
		})
	}

	all := activity.BuildFeed(src, activity.FeedOptions{Filter: activity.FilterAll, Limit: 1000, Now: now, Location: utc})
	if all.Len() != len(activity.Normalize(src)) || all.HasMore {
		t.Errorf("filter all should return the whole merged set")
	}
}

func TestBuildFeed_PaginationIsStable(t *testing.T) {
	src := mixedSources(15)

	var previous []activity.Item
	limit := activity.DefaultPageSize
	for page := 0; page < 6; page++ {
		feed := activity.BuildFeed(src, activity.FeedOptions{Limit: limit, Now: now, Location: utc})
		items := feed.Items()

		if len(items) > limit {
			t.Fatalf("page with limit %d returned %d items", limit, len(items))
		}
		if len(items) < len(previous) {
			t.Fatalf("load more shrank the feed from %d to %d", len(previous), len(items))
		}
		for i := range previous {
			if items[i].ID != previous[i].ID {
				t.Fatalf("load more changed item %d: %s -> %s", i, previous[i].ID, items[i].ID)
			}
		}
		if feed.HasMore != (feed.Total > len(items)) {
			t.Errorf("HasMore=%v with total %d and %d items", feed.HasMore, feed.Total, len(items))
		}

		previous = items
		limit = activity.NextLimit(limit)
	}
}

func TestBuildFeed_DefaultLimit(t *testing.T) {
	feed := activity.BuildFeed(mixedSources(10), activity.FeedOptions{Now: now, Location: utc})
	if feed.Len() != activity.DefaultPageSize || !feed.HasMore {
		t.Errorf("expected a first page of %d with more, got %d (more=%v)", activity.DefaultPageSize, feed.Len(), feed.HasMore)
	}
}

func TestBuildFeed_Empty(t *testing.T) {
	feed := activity.BuildFeed(activity.Sources{}, activity.FeedOptions{})
	if feed.Len() != 0 || feed.HasMore || len(feed.Groups) != 0 {
		t.Errorf("expected empty feed, got %+v", feed)
	}
}

func TestBuildFeed_DayGrouping(t *testing.T) {
	today := now.Add(-2 * time.Hour)
	yesterday := now.AddDate(0, 0, -1)
	older := time.Date(2026, time.October, 12, 9, 0, 0, 0, utc)

	src := activity.Sources{
		Moods: []domain.MoodEntry{
			{ID: "1", Mood: domain.MoodHappy, Timestamp: at(today)},
			{ID: "2", Mood: domain.MoodCalm, Timestamp: at(yesterday)},
			{ID: "3", Mood: domain.MoodSad, Timestamp: at(older)},
			{ID: "4", Mood: domain.MoodAngry, Timestamp: at(today.Add(-time.Hour))},
		},
	}

	feed := activity.BuildFeed(src, activity.FeedOptions{Now: now, Location: utc})

	wantLabels := []string{"Today", "Yesterday", "Monday, Oct 12"}
	if len(feed.Groups) != len(wantLabels) {
		t.Fatalf("expected %d groups, got %d", len(wantLabels), len(feed.Groups))
	}
	for i, g := range feed.Groups {
		if g.Label != wantLabels[i] {
			t.Errorf("group %d: got %q, want %q", i, g.Label, wantLabels[i])
		}
	}

	todayGroup := feed.Groups[0]
	if len(todayGroup.Items) != 2 || todayGroup.Items[0].ID != "m-1" || todayGroup.Items[1].ID != "m-4" {
		t.Errorf("unexpected Today group %+v", todayGroup.Items)
	}
	for _, it := range todayGroup.Items {
		y, m, d := it.Timestamp.Time(utc).Date()
		ny, nm, nd := now.Date()
		if y != ny || m != nm || d != nd {
			t.Errorf("item %s is not from today", it.ID)
		}
	}
}

func TestDayLabel_UsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	// 02:00 UTC on the 19th is still the 18th in UTC-5.
	ts := at(time.Date(2026, time.October, 19, 2, 0, 0, 0, utc))

	if got := activity.DayLabel(ts, now, utc); got != "Today" {
		t.Errorf("utc: got %q", got)
	}
	if got := activity.DayLabel(ts, now, loc); got != "Yesterday" {
		t.Errorf("utc-5: got %q", got)
	}
}

func TestParseFilter(t *testing.T) {
	for _, s := range []string{"", "all", "mood", "chat", "sleep"} {
		if _, err := activity.ParseFilter(s); err != nil {
			t.Errorf("ParseFilter(%q) failed: %v", s, err)
		}
	}
	if _, err := activity.ParseFilter("weather"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPayload_ExhaustiveSwitch(t *testing.T) {
	for _, it := range activity.Normalize(mixedSources(1)) {
		switch p := it.Payload.(type) {
		case activity.MoodPayload:
			if p.Entry.ID == "" {
				t.Error("empty mood payload")
			}
		case activity.JournalPayload, activity.BreathingPayload, activity.TaskPayload, activity.SleepPayload:
		case activity.ChatPayload:
			if len(p.Session) == 0 {
				t.Error("empty chat session")
			}
		default:
			t.Errorf("unexpected payload %T", p)
		}
	}
}

// mixedSources builds n records per source, spread over several days.
func mixedSources(n int) activity.Sources {
	var src activity.Sources
	base := now.Add(-time.Duration(n) * 24 * time.Hour)
	for i := 0; i < n; i++ {
		ts := base.Add(time.Duration(i) * 7 * time.Hour)
		id := fmt.Sprint(i)
		src.Moods = append(src.Moods, domain.MoodEntry{ID: id, Mood: domain.MoodNeutral, Timestamp: at(ts)})
		src.Journals = append(src.Journals, domain.JournalEntry{ID: id, Content: "entry", Timestamp: at(ts.Add(time.Minute))})
		src.Breathing = append(src.Breathing, domain.BreathingSession{ID: id, DurationSeconds: 60, Timestamp: at(ts.Add(2 * time.Minute))})
		src.Chats = append(src.Chats, domain.ChatMessage{ID: "c" + id, Role: domain.RoleUser, Text: "hi", Timestamp: at(ts.Add(3 * time.Minute))})
		src.Tasks = append(src.Tasks, domain.Task{ID: fmt.Sprint(int64(at(ts.Add(4 * time.Minute)))), Title: "t"})
		src.Sleep = append(src.Sleep, domain.SleepEntry{ID: id, Hours: 8, Quality: domain.SleepFair, Timestamp: at(ts.Add(5 * time.Minute))})
	}
	return src
}
