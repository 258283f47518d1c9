package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"omcounter/internal/gemini"
	"omcounter/internal/models"
)

// InsightService wraps the generative text capability. Every method
// degrades to a fallback value on error so AI outages never break a
// user flow.
type InsightService struct {
	client *gemini.Client
}

// NewInsightService creates a new insight service
func NewInsightService(client *gemini.Client) *InsightService {
	return &InsightService{client: client}
}

// SuggestMantras asks for 3 mantra suggestions for an intention. An
// unavailable or misbehaving model yields an empty list, never an
// error the caller must handle.
func (s *InsightService) SuggestMantras(ctx context.Context, intention string) []models.Mantra {
	if !s.client.Enabled() {
		return []models.Mantra{}
	}

	prompt := fmt.Sprintf(`Suggest 3 distinct, powerful mantras (Sanskrit or English) focusing on the intention: %q.
Return the result strictly as a JSON array of objects.
Each object should have keys: "text" (the mantra itself), "meaning" (a short English translation/explanation), and "targetCount" (suggested daily repetition, e.g., 108).
Do not include markdown formatting. Just the raw JSON string.`, intention)

	text, err := s.client.CompleteJSON(ctx, prompt)
	if err != nil {
		log.Printf("Mantra suggestion failed: %v", err)
		return []models.Mantra{}
	}

	suggestions, err := parseMantraSuggestions(text)
	if err != nil {
		log.Printf("Mantra suggestion response unusable: %v", err)
		return []models.Mantra{}
	}
	return suggestions
}

// SuggestGroupDescription writes a short description for a new circle.
// Returns empty on failure; callers fall back to the user's own text.
func (s *InsightService) SuggestGroupDescription(ctx context.Context, intention, mantra string) string {
	if !s.client.Enabled() {
		return ""
	}

	prompt := fmt.Sprintf(`Write a short, inspiring description (1-2 sentences) for a spiritual chanting group.
Intention: %q.
Mantra: %q.
Tone: Welcoming, sacred, communal.`, intention, mantra)

	text, err := s.client.Complete(ctx, prompt)
	if err != nil {
		log.Printf("Group description suggestion failed: %v", err)
		return ""
	}
	return strings.TrimSpace(text)
}

// MantraInsight returns a brief spiritual note on a mantra
func (s *InsightService) MantraInsight(ctx context.Context, mantraText string) string {
	if !s.client.Enabled() {
		return "AI insights require an API Key."
	}

	prompt := fmt.Sprintf(`Provide a brief, inspiring spiritual insight and the historical significance of this mantra: %q.
Keep it under 100 words. Tone: Calming, educational.`, mantraText)

	text, err := s.client.Complete(ctx, prompt)
	if err != nil {
		log.Printf("Mantra insight failed: %v", err)
		return "Could not retrieve insight at this moment. Please try again later."
	}
	if strings.TrimSpace(text) == "" {
		return "Insight currently unavailable."
	}
	return text
}

// AnalyzeHabits returns a short personalized recommendation based on
// the user's practice stats
func (s *InsightService) AnalyzeHabits(ctx context.Context, stats *models.UserStats) string {
	if !s.client.Enabled() {
		return "Connect API Key for personalized guidance."
	}

	var breakdown []string
	for _, stat := range stats.MantraBreakdown {
		breakdown = append(breakdown, fmt.Sprintf("%s: %d", stat.MantraText, stat.TotalCount))
	}
	breakdownStr := strings.Join(breakdown, ", ")
	if breakdownStr == "" {
		breakdownStr = "None yet"
	}

	prompt := fmt.Sprintf(`Analyze the following chanting stats for a spiritual practitioner:
Total Chants: %d
Current Streak: %d days
Mantra Breakdown: %s

If the streak is low or 0, suggest a mantra for consistency or removing obstacles (like Ganesha mantras).
If the count is high, offer encouragement and a deeper meditation focus.
Provide a personalized, short (max 2 sentences) spiritual recommendation.`, stats.TotalChants, stats.StreakDays, breakdownStr)

	text, err := s.client.Complete(ctx, prompt)
	if err != nil {
		log.Printf("Habit analysis failed: %v", err)
		return "Unable to connect to your spiritual guide right now."
	}
	if strings.TrimSpace(text) == "" {
		return "Keep chanting to unlock more insights."
	}
	return text
}

// SharePoster renders a shareable milestone image for the user's
// practice. Unlike the text features there is no useful fallback
// content, so failures surface as errors.
func (s *InsightService) SharePoster(ctx context.Context, name string, stats *models.UserStats) ([]byte, string, error) {
	if !s.client.Enabled() {
		return nil, "", fmt.Errorf("image generation requires an API key")
	}

	prompt := fmt.Sprintf(`Studio product photography of a premium smartphone displaying the OmCounter app.
The screen shows a large sacred Om symbol, the user name %q, and a milestone badge of "%d total chants" with a "%d day streak".
The phone is placed on a minimalist dark marble surface next to a single white lotus flower and a pair of wooden mala beads.
Cinematic lighting with a warm sun flare, soft bokeh background, 16:9 aspect ratio, highly detailed, professional marketing aesthetic.`,
		name, stats.TotalChants, stats.StreakDays)

	data, mimeType, err := s.client.CompleteImage(ctx, prompt)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate poster: %w", err)
	}
	return data, mimeType, nil
}

// parseMantraSuggestions decodes the suggestion payload, tolerating
// markdown code fences around the JSON
func parseMantraSuggestions(text string) ([]models.Mantra, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var suggestions []models.Mantra
	if err := json.Unmarshal([]byte(cleaned), &suggestions); err != nil {
		return nil, fmt.Errorf("failed to decode suggestions: %w", err)
	}

	kept := suggestions[:0]
	for _, suggestion := range suggestions {
		if strings.TrimSpace(suggestion.Text) == "" {
			continue
		}
		if suggestion.TargetCount <= 0 {
			suggestion.TargetCount = 108
		}
		kept = append(kept, suggestion)
	}
	return kept, nil
}
