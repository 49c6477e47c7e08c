package insights_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/PabloGalante/serene/internal/app/insights"
	"github.com/PabloGalante/serene/internal/domain"
)

// fakeAI answers Generate with a fixed reply or error.
type fakeAI struct {
	reply   string
	err     error
	prompts []string
	opts    []domain.GenerateOptions
}

func (f *fakeAI) StreamChat(context.Context, domain.ChatRequest, func(string)) error {
	return errors.New("not used")
}

func (f *fakeAI) Generate(_ context.Context, prompt string, opts domain.GenerateOptions) (string, error) {
	f.prompts = append(f.prompts, prompt)
	f.opts = append(f.opts, opts)
	return f.reply, f.err
}

func TestAnalyzeSentiment(t *testing.T) {
	ctx := context.Background()

	t.Run("parses and normalizes", func(t *testing.T) {
		ai := &fakeAI{reply: "```json\n{\"label\":\"negative\",\"score\":-1.7,\"emotions\":[\"Sad\"]}\n```"}
		got := insights.NewService(ai).AnalyzeSentiment(ctx, "awful day")

		if got.Label != domain.SentimentNegative || got.Score != -1 {
			t.Errorf("unexpected analysis %+v", got)
		}
		if got.Keywords == nil || len(got.Emotions) != 1 {
			t.Errorf("expected emotions kept and keywords non-nil, got %+v", got)
		}
		if !ai.opts[0].JSON {
			t.Error("sentiment should request JSON output")
		}
	})

	fallbacks := map[string]*fakeAI{
		"ai error":     {err: errors.New("boom")},
		"invalid json": {reply: "I think it's positive"},
	}
	for name, ai := range fallbacks {
		t.Run(name, func(t *testing.T) {
			got := insights.NewService(ai).AnalyzeSentiment(ctx, "text")
			if !reflect.DeepEqual(got, insights.NeutralSentiment()) {
				t.Errorf("expected neutral fallback, got %+v", got)
			}
		})
	}
}

func TestTextFallbacks(t *testing.T) {
	ctx := context.Background()
	failing := insights.NewService(&fakeAI{err: errors.New("offline")})
	blank := insights.NewService(&fakeAI{reply: "   "})

	for _, svc := range []*insights.Service{failing, blank} {
		if got := svc.DailyInsight(ctx, "Sad"); got != insights.FallbackDailyInsight {
			t.Errorf("DailyInsight = %q", got)
		}
		if got := svc.JournalPrompt(ctx); got != insights.FallbackJournalPrompt {
			t.Errorf("JournalPrompt = %q", got)
		}
		if got := svc.TaskBreakdown(ctx, "Groceries"); got != "" {
			t.Errorf("TaskBreakdown = %q", got)
		}
		if got := svc.TaskInsight(ctx, "Groceries", "Personal"); got != insights.FallbackTaskInsight {
			t.Errorf("TaskInsight = %q", got)
		}
	}
}

func TestDailyInsightUsesMood(t *testing.T) {
	ai := &fakeAI{reply: " Be gentle with yourself. "}
	got := insights.NewService(ai).DailyInsight(context.Background(), "Anxious")
	if got != "Be gentle with yourself." {
		t.Errorf("expected trimmed reply, got %q", got)
	}
	if !strings.Contains(ai.prompts[0], "feeling Anxious") {
		t.Errorf("prompt does not mention mood: %q", ai.prompts[0])
	}
}

func TestAssessmentQuestions(t *testing.T) {
	ctx := context.Background()
	tasks := []domain.Task{{Title: "a"}, {Title: "b", Completed: true}}

	ai := &fakeAI{reply: `["Q1?","Q2?","Q3?"]`}
	got := insights.NewService(ai).AssessmentQuestions(ctx, nil, nil, tasks)
	if !reflect.DeepEqual(got, []string{"Q1?", "Q2?", "Q3?"}) {
		t.Errorf("unexpected questions %v", got)
	}
	if !strings.Contains(ai.prompts[0], "Pending Tasks: 1") {
		t.Errorf("prompt should count pending tasks: %q", ai.prompts[0])
	}

	for _, reply := range []string{"{}", "[]", "nope"} {
		got := insights.NewService(&fakeAI{reply: reply}).AssessmentQuestions(ctx, nil, nil, nil)
		if !reflect.DeepEqual(got, insights.FallbackQuestions) {
			t.Errorf("reply %q: expected fallback, got %v", reply, got)
		}
	}
}

func TestThoughtPattern(t *testing.T) {
	ctx := context.Background()

	ai := &fakeAI{reply: `{"distortion":"All-or-Nothing","explanation":"x","reframe":"y"}`}
	got := insights.NewService(ai).ThoughtPattern(ctx, "I always fail")
	if got.Distortion != "All-or-Nothing" || got.Reframe != "y" {
		t.Errorf("unexpected analysis %+v", got)
	}

	if got := insights.NewService(&fakeAI{reply: "{}"}).ThoughtPattern(ctx, "x"); got != insights.FallbackThought {
		t.Errorf("expected fallback for empty object, got %+v", got)
	}
}

func TestDetectCrisis(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"I want to KILL MYSELF", true},
		{"thinking about self-harm again", true},
		{"I just want to end it all", true},
		{"I killed it at the gym", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := insights.DetectCrisis(tt.text); got != tt.want {
			t.Errorf("DetectCrisis(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestClinicalSummary(t *testing.T) {
	ctx := context.Background()
	moods := make([]domain.MoodEntry, 25)
	for i := range moods {
		moods[i] = domain.MoodEntry{Mood: domain.MoodCalm}
	}
	moods[0].Mood = domain.MoodAngry // outside the last 20
	journals := []domain.JournalEntry{{Title: "Day", Content: strings.Repeat("a", 200), Timestamp: 1_760_000_000_000}}
	tasks := []domain.Task{{Title: "Walk", Category: "Health", Completed: true}}

	ai := &fakeAI{reply: "  Patient reports stable mood.  "}
	got := insights.NewService(ai).ClinicalSummary(ctx, "Alex", moods, journals, tasks)
	if got != "Patient reports stable mood." {
		t.Errorf("unexpected summary %q", got)
	}
	p := ai.prompts[0]
	if !strings.Contains(p, "Patient Name: Alex") || strings.Contains(p, "Angry") || !strings.Contains(p, "Walk [Health, done]") {
		t.Errorf("unexpected prompt:\n%s", p)
	}
	if strings.Contains(p, strings.Repeat("a", 151)) {
		t.Error("journal snippets should be clipped to 150 characters")
	}

	if got := insights.NewService(&fakeAI{err: errors.New("down")}).ClinicalSummary(ctx, "Alex", nil, nil, nil); got != insights.FallbackSummary {
		t.Errorf("expected fallback, got %q", got)
	}
}

func TestWellnessAssessment(t *testing.T) {
	ctx := context.Background()
	answers := []insights.QA{{Question: "How have you been sleeping?", Answer: "Badly"}}

	ai := &fakeAI{reply: `{"currentVibe":"Tired but hopeful","emotionalPatterns":"Evenings are hard.","keyInsights":["Sleep matters"]}`}
	got := insights.NewService(ai).WellnessAssessment(ctx, nil, nil, nil, answers)
	if got.CurrentVibe != "Tired but hopeful" || len(got.KeyInsights) != 1 || got.Recommendations == nil {
		t.Errorf("unexpected assessment %+v", got)
	}
	if !strings.Contains(ai.prompts[0], "Q: How have you been sleeping? A: Badly") || !ai.opts[0].JSON {
		t.Errorf("answers should reach a JSON prompt:\n%s", ai.prompts[0])
	}

	for name, ai := range map[string]*fakeAI{
		"ai error":   {err: errors.New("down")},
		"empty json": {reply: "{}"},
	} {
		t.Run(name, func(t *testing.T) {
			got := insights.NewService(ai).WellnessAssessment(ctx, nil, nil, nil, nil)
			if !reflect.DeepEqual(got, insights.FallbackAssessment) {
				t.Errorf("expected fallback, got %+v", got)
			}
		})
	}
}
