package recommend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecommendationsWithoutAPIKeyUsesRules(t *testing.T) {
	svc := NewService(Config{})

	recs := svc.Recommendations(context.Background(), Stats{
		Monthly:   400,
		Transport: 200,
		Energy:    150,
		Diet:      50,
	}, nil)

	// All three categories trip their thresholds: five entries, capped.
	require.Len(t, recs, 5)
	require.Contains(t, recs[0], "carpooling")
}

func TestRecommendationsLowEmitterGetsGenericTips(t *testing.T) {
	svc := NewService(Config{})

	recs := svc.Recommendations(context.Background(), Stats{Monthly: 10}, nil)

	require.Len(t, recs, 2)
	require.Contains(t, recs[0], "Track your emissions")
	require.Contains(t, recs[1], "carbon budget")
}

func TestRecommendationsFromBackend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Contains(t, r.URL.Path, "gemini-pro:generateContent")
		require.Equal(t, "test-key", r.URL.Query().Get("key"))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Contains(t, req.Contents[0].Parts[0].Text, "Monthly Emissions: 120.00 kg")

		reply := generateResponse{}
		reply.Candidates = append(reply.Candidates, struct {
			Content content `json:"content"`
		}{Content: content{Parts: []part{{Text: "1. Cycle to work twice a week to save around 3kg CO2.\n2. Swap two beef meals for vegetarian ones each week.\nok\n3. Lower your thermostat by one degree over winter nights."}}}})
		require.NoError(t, json.NewEncoder(w).Encode(reply))
	}))
	defer server.Close()

	svc := NewService(Config{APIKey: "test-key", BaseURL: server.URL})

	recs := svc.Recommendations(context.Background(), Stats{Monthly: 120}, []RecentActivity{
		{Type: "car_petrol", Value: 10, Unit: "km", EmissionKg: 1.2},
	})

	// Numbered prefixes stripped, the short "ok" line dropped.
	require.Equal(t, []string{
		"Cycle to work twice a week to save around 3kg CO2.",
		"Swap two beef meals for vegetarian ones each week.",
		"Lower your thermostat by one degree over winter nights.",
	}, recs)
}

func TestRecommendationsFallsBackOnBackendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	svc := NewService(Config{APIKey: "test-key", BaseURL: server.URL})

	recs := svc.Recommendations(context.Background(), Stats{Monthly: 10}, nil)
	require.Len(t, recs, 2) // canned generic tips
}

func TestChatFallbackRoutesByTopic(t *testing.T) {
	svc := NewService(Config{})
	stats := Stats{Monthly: 200, Transport: 90, Energy: 60, Diet: 50}

	cases := []struct {
		message string
		want    string
	}{
		{"How can I drive less?", "transport emissions of 90.00 kg"},
		{"tips on electricity use", "energy emissions are 60.00 kg"},
		{"should I eat less meat", "diet emissions are 50.00 kg"},
		{"help me set a target", "4-8 tonnes per year"},
		{"hello there", "ask me about"},
	}
	for _, tc := range cases {
		reply := svc.Chat(context.Background(), tc.message, nil, stats)
		require.Contains(t, reply, tc.want, "message %q", tc.message)
	}
}

func TestFormatEmission(t *testing.T) {
	require.Equal(t, "12.00 kg", FormatEmission(12))
	require.Equal(t, "999.99 kg", FormatEmission(999.99))
	require.Equal(t, "1.50 tonnes", FormatEmission(1500))
}

func TestParseRecommendationsCapsAtFive(t *testing.T) {
	lines := make([]string, 0, 8)
	for i := 1; i <= 8; i++ {
		lines = append(lines, strings.Repeat("x", 30))
	}
	recs := parseRecommendations(strings.Join(lines, "\n"))
	require.Len(t, recs, 5)
}
