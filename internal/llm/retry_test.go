package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stabilityReply = json.RawMessage(`{"emotional":{"level":"Stable","emoji":"🙂"},"mental":{"level":"Stable","emoji":"🙂"},"physical":{"level":"Low","emoji":"😴"}}`)

func retryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 1 * time.Millisecond,
		MaxWait:     10 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func down() MockResponse {
	return MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("503 from upstream")}}
}

func TestRetry(t *testing.T) {
	tests := []struct {
		name      string
		responses []MockResponse
		wantErr   bool
		wantCalls int
	}{
		{"first attempt", []MockResponse{{Content: stabilityReply}}, false, 1},
		{"unavailable then ok", []MockResponse{down(), {Content: stabilityReply}}, false, 2},
		{"rate limit honours retry-after", []MockResponse{
			{Err: &ErrRateLimit{RetryAfter: time.Millisecond, Err: errors.New("429")}},
			{Content: stabilityReply},
		}, false, 2},
		{"every attempt fails", []MockResponse{down(), down(), down()}, true, 3},
		{"truncated output is not retried", []MockResponse{
			{Err: &ErrMaxTokensExceeded{Content: json.RawMessage(`{"emotional":`)}},
		}, true, 1},
		{"malformed output retried once", []MockResponse{
			{Err: &ErrInvalidResponse{Content: json.RawMessage(`Sure! Here is`), Err: errors.New("not json")}},
			{Err: &ErrInvalidResponse{Content: json.RawMessage(`Sure! Here is`), Err: errors.New("not json")}},
			{Content: stabilityReply},
		}, true, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(tt.responses...)
			p := WithRetry(mock, retryConfig())

			resp, err := p.Generate(context.Background(), Request{Schema: &Schema{Name: "stability"}})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.JSONEq(t, string(stabilityReply), string(resp.Content))
			}
			assert.Equal(t, tt.wantCalls, mock.CallCount())
		})
	}
}

func TestRetry_CancelledContext(t *testing.T) {
	mock := NewMockProvider(down(), down(), MockResponse{Content: stabilityReply})
	p := WithRetry(mock, retryConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Generate(ctx, Request{})
	assert.Error(t, err)
}

func TestRetry_StopsWhenBackoffOutlivesDeadline(t *testing.T) {
	mock := NewMockProvider(down(), MockResponse{Content: stabilityReply})
	p := WithRetry(mock, RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Minute,
		MaxWait:     time.Minute,
		Multiplier:  1,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := p.Generate(ctx, Request{})
	var unavail *ErrProviderUnavailable
	require.ErrorAs(t, err, &unavail, "the upstream error is returned, not the deadline")
	assert.Less(t, time.Since(start), 40*time.Millisecond)
	assert.Equal(t, 1, mock.CallCount())
}

func TestRetry_ModelIDDelegates(t *testing.T) {
	p := WithRetry(NewMockProvider(), retryConfig())
	assert.Equal(t, "mock", p.ModelID())
}
