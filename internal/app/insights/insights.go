// Package insights wraps the single-shot AI features. Every call degrades
// to a fixed answer when the model fails or returns something unusable.
package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/PabloGalante/serene/internal/domain"
	"github.com/PabloGalante/serene/internal/observability"
)

const (
	FallbackDailyInsight  = "Today is a fresh start."
	FallbackJournalPrompt = "What is one thing that brought you joy today?"
	FallbackTaskInsight   = "Great job completing this task!"
	FallbackSummary       = "Unable to generate AI summary at this time."
)

var FallbackQuestions = []string{
	"How have you been sleeping lately?",
	"What is occupying most of your mental space today?",
	"What is one small thing you can do for yourself right now?",
}

var FallbackThought = ThoughtAnalysis{
	Distortion:  "Unclear Pattern",
	Explanation: "I couldn't specifically identify a distortion pattern, but this thought seems difficult.",
	Reframe:     "This is a thought, not necessarily a fact. Is there another way to look at this?",
}

var FallbackAssessment = Assessment{
	CurrentVibe:       "Quiet and Reflective",
	EmotionalPatterns: "I'm unable to analyze your patterns fully right now, but taking a moment to breathe is always a good step.",
	KeyInsights:       []string{"You are taking steps to track your wellness.", "Consistency is key to understanding yourself."},
	Recommendations:   []string{"Take three deep breaths.", "Drink a glass of water.", "Step outside for a moment."},
}

// QA is one answered self-assessment question.
type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Assessment is the self-assessment report built from the user's records
// and answers.
type Assessment struct {
	CurrentVibe       string   `json:"currentVibe"`
	EmotionalPatterns string   `json:"emotionalPatterns"`
	KeyInsights       []string `json:"keyInsights"`
	Recommendations   []string `json:"recommendations"`
}

// ThoughtAnalysis is a CBT reading of a single negative thought.
type ThoughtAnalysis struct {
	Distortion  string `json:"distortion"`
	Explanation string `json:"explanation"`
	Reframe     string `json:"reframe"`
}

type Service struct {
	ai domain.AIClient
}

func NewService(ai domain.AIClient) *Service {
	return &Service{ai: ai}
}

// NeutralSentiment is returned when a text cannot be analysed.
func NeutralSentiment() domain.SentimentAnalysis {
	return domain.SentimentAnalysis{
		Label:    domain.SentimentNeutral,
		Score:    0,
		Emotions: []string{},
		Keywords: []string{},
	}
}

func (s *Service) AnalyzeSentiment(ctx context.Context, text string) domain.SentimentAnalysis {
	prompt := fmt.Sprintf(`Analyze the sentiment of this text: %q
Return JSON with:
- score: number from -1.0 (negative) to 1.0 (positive)
- label: "Positive", "Neutral", or "Negative"
- emotions: list of strings (e.g., "Anxious", "Hopeful")
- keywords: list of the most important words`, text)

	var out domain.SentimentAnalysis
	if !s.generateJSON(ctx, "sentiment", prompt, &out) {
		return NeutralSentiment()
	}
	return normalizeSentiment(out)
}

func normalizeSentiment(a domain.SentimentAnalysis) domain.SentimentAnalysis {
	switch strings.ToLower(strings.TrimSpace(string(a.Label))) {
	case "positive":
		a.Label = domain.SentimentPositive
	case "negative":
		a.Label = domain.SentimentNegative
	default:
		a.Label = domain.SentimentNeutral
	}
	a.Score = max(-1, min(1, a.Score))
	if a.Emotions == nil {
		a.Emotions = []string{}
	}
	if a.Keywords == nil {
		a.Keywords = []string{}
	}
	return a
}

// DailyInsight returns a one-sentence insight, tuned to recentMood when set.
func (s *Service) DailyInsight(ctx context.Context, recentMood string) string {
	prompt := "Generate a short, 1-sentence mindfulness tip or motivating insight for the day. Do not use quotes."
	if recentMood != "" {
		prompt = fmt.Sprintf("The user is feeling %s. Generate a short, 1-sentence comforting or motivating insight based on CBT principles. Do not use quotes.", recentMood)
	}
	return s.generateText(ctx, "daily_insight", prompt, FallbackDailyInsight)
}

func (s *Service) JournalPrompt(ctx context.Context) string {
	return s.generateText(ctx, "journal_prompt",
		"Generate a single, deep, and reflective journaling prompt for mental wellness. It should be a question. Return ONLY the question.",
		FallbackJournalPrompt)
}

// TaskBreakdown suggests steps for a new task. An empty string means no
// suggestion.
func (s *Service) TaskBreakdown(ctx context.Context, title string) string {
	prompt := fmt.Sprintf("Provide a brief, 3-step actionable breakdown for the task: %q. Keep it encouraging.", title)
	return s.generateText(ctx, "task_breakdown", prompt, "")
}

func (s *Service) TaskInsight(ctx context.Context, title, category string) string {
	prompt := fmt.Sprintf(`The user just completed the task: %q in the category %q.
Generate a short, encouraging message (max 2 sentences).
1. Briefly explain why completing this type of task is good for mental clarity or wellbeing.
2. Congratulate them warmly.`, title, category)
	return s.generateText(ctx, "task_insight", prompt, FallbackTaskInsight)
}

// AssessmentQuestions asks for three reflective questions based on the
// user's recent records.
func (s *Service) AssessmentQuestions(ctx context.Context, moods []domain.MoodEntry, journals []domain.JournalEntry, tasks []domain.Task) []string {
	var journalLines []string
	for _, j := range lastN(journals, 3) {
		journalLines = append(journalLines, j.Content)
	}
	pending := 0
	for _, t := range tasks {
		if !t.Completed {
			pending++
		}
	}

	prompt := fmt.Sprintf(`User Data:
- Recent Moods: %s
- Recent Journals: %s
- Pending Tasks: %d

Generate 3 specific, empathetic, and short open-ended questions to help the user reflect on their mental state.
Return strictly a JSON array of strings.`,
		moodList(lastN(moods, 5)), strings.Join(journalLines, " | "), pending)

	var questions []string
	if !s.generateJSON(ctx, "assessment_questions", prompt, &questions) || len(questions) == 0 {
		return append([]string(nil), FallbackQuestions...)
	}
	return questions
}

// ClinicalSummary writes a short report for a therapist from the last 20
// moods, the last 5 journal snippets and the task list. Records are
// expected oldest first.
func (s *Service) ClinicalSummary(ctx context.Context, userName string, moods []domain.MoodEntry, journals []domain.JournalEntry, tasks []domain.Task) string {
	var journalLines []string
	for _, j := range lastN(journals, 5) {
		date := j.Timestamp.Time(time.UTC).Format("2006-01-02")
		journalLines = append(journalLines, date+": "+clip(j.Content, 150)+"...")
	}

	prompt := fmt.Sprintf(`Patient Name: %s
Data Provided:
- Recent Mood Logs: %s
- Recent Journal Snippets: %s
- Functional Status (Tasks): %s

Task: Act as a Clinical Assistant. Write a professional, concise summary report for a psychologist/therapist.`,
		userName, moodList(lastN(moods, 20)), strings.Join(journalLines, " | "), taskList(tasks))
	return s.generateText(ctx, "clinical_summary", prompt, FallbackSummary)
}

// WellnessAssessment turns the user's records and their answers to the
// assessment questions into a report. Records are expected oldest first.
func (s *Service) WellnessAssessment(ctx context.Context, moods []domain.MoodEntry, journals []domain.JournalEntry, tasks []domain.Task, answers []QA) Assessment {
	var journalLines []string
	for _, j := range lastN(journals, 5) {
		journalLines = append(journalLines, j.Title+": "+j.Content)
	}
	var qaLines []string
	for _, qa := range answers {
		qaLines = append(qaLines, fmt.Sprintf("Q: %s A: %s", qa.Question, qa.Answer))
	}

	prompt := fmt.Sprintf(`User Data Analysis:
- Moods: %s
- Journals: %s
- Tasks: %s
- Self-Reflection: %s

Provide a compassionate, psychological self-assessment report in JSON with: currentVibe, emotionalPatterns, keyInsights, recommendations.`,
		moodList(lastN(moods, 10)), strings.Join(journalLines, " | "), taskList(tasks), strings.Join(qaLines, " | "))

	var out Assessment
	if !s.generateJSON(ctx, "wellness_assessment", prompt, &out) || out.CurrentVibe == "" {
		return FallbackAssessment
	}
	if out.KeyInsights == nil {
		out.KeyInsights = []string{}
	}
	if out.Recommendations == nil {
		out.Recommendations = []string{}
	}
	return out
}

func moodList(moods []domain.MoodEntry) string {
	lines := make([]string, 0, len(moods))
	for _, m := range moods {
		line := string(m.Mood)
		if m.Note != "" {
			line += " (" + m.Note + ")"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, ", ")
}

func taskList(tasks []domain.Task) string {
	lines := make([]string, 0, len(tasks))
	for _, t := range tasks {
		state := "pending"
		if t.Completed {
			state = "done"
		}
		lines = append(lines, fmt.Sprintf("%s [%s, %s]", t.Title, t.Category, state))
	}
	return strings.Join(lines, "; ")
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func (s *Service) ThoughtPattern(ctx context.Context, thought string) ThoughtAnalysis {
	prompt := fmt.Sprintf(`Analyze this negative thought based on CBT principles: %q.
Return JSON with: distortion, explanation, reframe.`, thought)

	var out ThoughtAnalysis
	if !s.generateJSON(ctx, "thought_pattern", prompt, &out) || out.Distortion == "" || out.Reframe == "" {
		return FallbackThought
	}
	return out
}

func (s *Service) generateText(ctx context.Context, feature, prompt, fallback string) string {
	text, err := s.ai.Generate(ctx, prompt, domain.GenerateOptions{})
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("insight generation failed",
			"feature", feature,
			"error", err,
		)
		return fallback
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return fallback
	}
	return text
}

func (s *Service) generateJSON(ctx context.Context, feature, prompt string, v any) bool {
	log := observability.LoggerFromContext(ctx).With("feature", feature)

	text, err := s.ai.Generate(ctx, prompt, domain.GenerateOptions{JSON: true})
	if err != nil {
		log.Warn("insight generation failed", "error", err)
		return false
	}
	if err := json.Unmarshal([]byte(stripFences(text)), v); err != nil {
		log.Warn("insight response is not valid JSON", "error", err)
		return false
	}
	return true
}

// stripFences removes a markdown code fence around a JSON answer.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func lastN[T any](s []T, n int) []T {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
