package questions

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/mindcheck/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func batchJSON(texts ...string) json.RawMessage {
	type item struct {
		Question string   `json:"question"`
		Options  []string `json:"options"`
	}
	out := struct {
		Questions []item `json:"questions"`
	}{}
	for _, t := range texts {
		out.Questions = append(out.Questions, item{
			Question: t,
			Options:  []string{"Never", "Sometimes", "Often", "Almost always"},
		})
	}
	b, _ := json.Marshal(out)
	return b
}

func TestGenerate_ParsesBatch(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: batchJSON("  How often do you feel restless? ", "Do you find it hard to relax?"),
	})
	gen := New(mock, DefaultConfig())

	got, err := gen.Generate(context.Background(), Request{Topic: "Anxiety Check", Count: 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "How often do you feel restless?", got[0].Text, "text is trimmed")
	assert.Equal(t, []string{"Never", "Sometimes", "Often", "Almost always"}, got[1].Options)
	assert.True(t, got[1].HasOption("Often"))
}

func TestGenerate_RequestCarriesTopicAndAsked(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: batchJSON("Q new")})
	gen := New(mock, DefaultConfig())

	_, err := gen.Generate(context.Background(), Request{
		Topic: "Sleep",
		Count: 5,
		Asked: []string{"Do you wake up rested?"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, mock.CallCount())

	call := mock.Calls[0]
	assert.Equal(t, BatchSchema, call.Schema)
	msg := call.Messages[0].Content
	assert.Contains(t, msg, "Topic: Sleep")
	assert.Contains(t, msg, "Number of questions: 5")
	assert.Contains(t, msg, "1. Do you wake up rested?")
}

func TestGenerate_MalformedJSON(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"questions": [`)})
	gen := New(mock, DefaultConfig())

	_, err := gen.Generate(context.Background(), Request{Topic: "Stress", Count: 5})
	var inv *llm.ErrInvalidResponse
	assert.True(t, errors.As(err, &inv), "got %v", err)
}

func TestGenerate_EmptyBatchIsMalformed(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"questions":[]}`)})
	gen := New(mock, DefaultConfig())

	_, err := gen.Generate(context.Background(), Request{Topic: "Stress", Count: 5})
	var inv *llm.ErrInvalidResponse
	assert.True(t, errors.As(err, &inv), "got %v", err)
}

func TestGenerate_InvalidQuestionRejectsBatch(t *testing.T) {
	raw := json.RawMessage(`{"questions":[
		{"question":"Fine?","options":["a","b","c","d"]},
		{"question":"Broken?","options":["a","b"]}
	]}`)
	mock := llm.NewMockProvider(llm.MockResponse{Content: raw})
	gen := New(mock, DefaultConfig())

	_, err := gen.Generate(context.Background(), Request{Topic: "Stress", Count: 2})
	var inv *llm.ErrInvalidResponse
	require.True(t, errors.As(err, &inv), "got %v", err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "structural", verr.Validator)
	assert.Equal(t, 1, verr.Index)
}

func TestGenerate_ProviderError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}})
	gen := New(mock, DefaultConfig())

	_, err := gen.Generate(context.Background(), Request{Topic: "Stress", Count: 5})
	var unavail *llm.ErrProviderUnavailable
	assert.True(t, errors.As(err, &unavail), "got %v", err)
}

func TestGenerate_RejectsBadRequest(t *testing.T) {
	gen := New(llm.NewMockProvider(), DefaultConfig())

	_, err := gen.Generate(context.Background(), Request{Topic: "  ", Count: 5})
	assert.Error(t, err)
	_, err = gen.Generate(context.Background(), Request{Topic: "Stress", Count: 0})
	assert.Error(t, err)
}

func TestBuildDedup(t *testing.T) {
	if got := buildDedup(nil, 10); got != "None" {
		t.Errorf("empty asked = %q, want None", got)
	}

	asked := []string{"A", "B", "C", "D"}
	got := buildDedup(asked, 2)
	if strings.Contains(got, "A") || strings.Contains(got, "B") {
		t.Errorf("expected only the most recent entries, got %q", got)
	}
	if got != "1. C\n2. D" {
		t.Errorf("got %q", got)
	}
}
