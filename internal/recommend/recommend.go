// Package recommend produces reduction advice from emission stats, using a
// Gemini backend when configured and deterministic canned text otherwise.
package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// Config selects the AI backend. An empty APIKey disables it entirely.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Message is one turn of a chat conversation.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Stats is the slice of EmissionStats the advisor needs. It mirrors the
// aggregator's output without importing it, keeping this package a pure
// consumer of already-derived numbers.
type Stats struct {
	Monthly   float64
	Transport float64
	Energy    float64
	Diet      float64
}

// RecentActivity is a line item included in the recommendation prompt.
type RecentActivity struct {
	Type       string
	Value      float64
	Unit       string
	EmissionKg float64
}

// Service talks to the AI backend with a rule-based fallback. All failures
// degrade to canned text; callers never see an error.
type Service struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewService constructs a Service with sane defaults.
func NewService(cfg Config) *Service {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-pro"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Service{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Recommendations returns up to five reduction tips for the user.
func (s *Service) Recommendations(ctx context.Context, stats Stats, recent []RecentActivity) []string {
	if s.apiKey == "" {
		return defaultRecommendations(stats)
	}

	text, err := s.generate(ctx, buildRecommendationPrompt(stats, recent))
	if err != nil {
		return defaultRecommendations(stats)
	}
	recs := parseRecommendations(text)
	if len(recs) == 0 {
		return defaultRecommendations(stats)
	}
	return recs
}

// Chat answers one conversation turn.
func (s *Service) Chat(ctx context.Context, message string, history []Message, stats Stats) string {
	if s.apiKey == "" {
		return defaultChatResponse(message, stats)
	}

	var b strings.Builder
	b.WriteString(buildChatContext(stats))
	b.WriteString("\n\nConversation history:\n")
	for _, m := range history {
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
	}
	fmt.Fprintf(&b, "\nUser: %s\n\nAssistant:", message)

	text, err := s.generate(ctx, b.String())
	if err != nil || strings.TrimSpace(text) == "" {
		return defaultChatResponse(message, stats)
	}
	return text
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (s *Service) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{Temperature: 0.7, MaxOutputTokens: 1024},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", s.baseURL, s.model, s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ai backend error: %s", detail)
	}

	var payload generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	if len(payload.Candidates) == 0 || len(payload.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("ai backend returned no candidates")
	}
	return payload.Candidates[0].Content.Parts[0].Text, nil
}

func buildRecommendationPrompt(stats Stats, recent []RecentActivity) string {
	var lines []string
	for i, a := range recent {
		if i == 10 {
			break
		}
		lines = append(lines, fmt.Sprintf("%s: %g %s (%s)", activityLabel(a.Type), a.Value, a.Unit, FormatEmission(a.EmissionKg)))
	}

	return fmt.Sprintf(`You are a carbon footprint reduction advisor. Based on the user's emission data, provide 5 specific, actionable recommendations.

User's Monthly Emissions: %s
- Transportation: %s
- Energy: %s
- Diet: %s

Recent Activities:
%s

Provide exactly 5 personalized recommendations. Each should be specific, practical, and include an estimated CO2 savings. Format each recommendation on a new line starting with a number.`,
		FormatEmission(stats.Monthly),
		FormatEmission(stats.Transport),
		FormatEmission(stats.Energy),
		FormatEmission(stats.Diet),
		strings.Join(lines, "\n"))
}

func buildChatContext(stats Stats) string {
	return fmt.Sprintf(`You are EcoBot, a friendly carbon footprint advisor. Help users reduce their environmental impact.

User's Current Monthly Emissions: %s
- Transportation: %s
- Energy: %s
- Diet: %s

Be helpful, encouraging, and provide specific advice. Keep responses concise and actionable.`,
		FormatEmission(stats.Monthly),
		FormatEmission(stats.Transport),
		FormatEmission(stats.Energy),
		FormatEmission(stats.Diet))
}

var numberedLine = regexp.MustCompile(`^\d+[.)]\s*`)

// parseRecommendations extracts up to five substantial numbered lines from
// the model's reply.
func parseRecommendations(response string) []string {
	var recommendations []string
	for _, line := range strings.Split(response, "\n") {
		cleaned := strings.TrimSpace(numberedLine.ReplaceAllString(strings.TrimSpace(line), ""))
		if len(cleaned) > 20 {
			recommendations = append(recommendations, cleaned)
		}
		if len(recommendations) == 5 {
			break
		}
	}
	return recommendations
}

// FormatEmission renders a kg CO2 value for prompts and canned replies.
func FormatEmission(kg float64) string {
	if kg >= 1000 {
		return fmt.Sprintf("%.2f tonnes", kg/1000)
	}
	return fmt.Sprintf("%.2f kg", kg)
}

var activityLabels = map[string]string{
	"car_petrol":   "Car (Petrol)",
	"car_diesel":   "Car (Diesel)",
	"car_electric": "Electric Car",
	"bus":          "Bus",
	"train":        "Train",
	"flight_short": "Flight (Short-haul)",
	"flight_long":  "Flight (Long-haul)",
	"bicycle":      "Bicycle",
	"walking":      "Walking",
	"electricity":  "Electricity",
	"natural_gas":  "Natural Gas",
	"heating_oil":  "Heating Oil",
	"beef":         "Beef Meal",
	"pork":         "Pork Meal",
	"chicken":      "Chicken Meal",
	"fish":         "Fish Meal",
	"vegetarian":   "Vegetarian Meal",
	"vegan":        "Vegan Meal",
}

func activityLabel(activityType string) string {
	if label, ok := activityLabels[activityType]; ok {
		return label
	}
	return activityType
}
