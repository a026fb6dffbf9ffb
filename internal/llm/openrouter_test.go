package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenRouterProvider(t *testing.T) {
	tests := []struct {
		name    string
		cfg     OpenRouterConfig
		wantErr bool
		model   string
	}{
		{"model passed through", OpenRouterConfig{APIKey: "sk-or-test", Model: "anthropic/claude-3-haiku"}, false, "anthropic/claude-3-haiku"},
		{"custom base URL", OpenRouterConfig{APIKey: "sk-or-test", Model: "google/gemini-2.0-flash-001", BaseURL: "https://router.example/v1"}, false, "google/gemini-2.0-flash-001"},
		{"missing key", OpenRouterConfig{Model: "google/gemini-2.0-flash-001"}, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewOpenRouterProvider(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.model, p.ModelID())
		})
	}
}

func TestOpenRouterProvider_UsesBaseURL(t *testing.T) {
	batch := `{"questions":[{"question":"How often do you wake up rested?","options":["Never","Sometimes","Often","Almost always"]}]}`

	var gotPath, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotAuth = r.URL.Path, r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":    "gen-1",
			"model": "meta-llama/llama-3.1-8b-instruct",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": batch},
				"finish_reason": "stop",
			}},
			"usage": map[string]any{"prompt_tokens": 120, "completion_tokens": 60, "total_tokens": 180},
		})
	}))
	t.Cleanup(server.Close)

	p, err := NewOpenRouterProvider(OpenRouterConfig{
		APIKey:  "sk-or-test",
		Model:   "meta-llama/llama-3.1-8b-instruct",
		BaseURL: server.URL + "/api/v1",
	})
	require.NoError(t, err)

	resp, err := p.Generate(context.Background(), Request{
		System:   "You write wellbeing questionnaires.",
		Messages: []Message{{Role: RoleUser, Content: "Topic: Sleep Quality"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/chat/completions", gotPath)
	assert.Equal(t, "Bearer sk-or-test", gotAuth)
	assert.JSONEq(t, batch, string(resp.Content))
	assert.Equal(t, 120, resp.Usage.InputTokens)
}
