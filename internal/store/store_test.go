package store

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name), nil)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.Driver() == nil {
		t.Fatal("expected non-nil driver")
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so we skip journal_mode here.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestAskedMissingRecordIsEmpty(t *testing.T) {
	repo := openTestStore(t).AskedRepo()

	got, err := repo.Asked(context.Background(), AskedKey{Namespace: "ns", UserID: "u1", Topic: "Sleep"})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestAskedMergeDeduplicates(t *testing.T) {
	repo := openTestStore(t).AskedRepo()
	ctx := context.Background()
	key := AskedKey{Namespace: "ns", UserID: "u1", Topic: "Anxiety Check"}

	require.NoError(t, repo.MergeAsked(ctx, key, []string{"Q1", "Q2"}))
	require.NoError(t, repo.MergeAsked(ctx, key, []string{"Q2", "Q3", "", "Q3"}))

	got, err := repo.Asked(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []string{"Q1", "Q2", "Q3"}, got)

	// Same slug, different spelling.
	got, err = repo.Asked(ctx, AskedKey{Namespace: "ns", UserID: "u1", Topic: "anxiety-check"})
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestAskedIsolatedByUserAndNamespace(t *testing.T) {
	repo := openTestStore(t).AskedRepo()
	ctx := context.Background()

	require.NoError(t, repo.MergeAsked(ctx, AskedKey{Namespace: "ns", UserID: "u1", Topic: "Stress"}, []string{"Q1"}))

	for _, key := range []AskedKey{
		{Namespace: "ns", UserID: "u2", Topic: "Stress"},
		{Namespace: "other", UserID: "u1", Topic: "Stress"},
		{Namespace: "ns", UserID: "u1", Topic: "Sleep"},
	} {
		got, err := repo.Asked(ctx, key)
		require.NoError(t, err)
		assert.Empty(t, got, "key %+v", key)
	}
}

func TestAskedClear(t *testing.T) {
	repo := openTestStore(t).AskedRepo()
	ctx := context.Background()
	key := AskedKey{Namespace: "ns", UserID: "u1", Topic: "Focus"}

	require.NoError(t, repo.ClearAsked(ctx, key), "clearing a missing record")
	require.NoError(t, repo.MergeAsked(ctx, key, []string{"Q1"}))
	require.NoError(t, repo.ClearAsked(ctx, key))

	got, err := repo.Asked(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAskedTopics(t *testing.T) {
	repo := openTestStore(t).AskedRepo()
	ctx := context.Background()

	require.NoError(t, repo.MergeAsked(ctx, AskedKey{Namespace: "ns", UserID: "u1", Topic: "Sleep Quality"}, []string{"Q1", "Q2"}))
	require.NoError(t, repo.MergeAsked(ctx, AskedKey{Namespace: "ns", UserID: "u1", Topic: "Stress"}, []string{"Q1"}))
	require.NoError(t, repo.MergeAsked(ctx, AskedKey{Namespace: "ns", UserID: "u2", Topic: "Stress"}, []string{"Q9"}))

	topics, err := repo.AskedTopics(ctx, "ns", "u1")
	require.NoError(t, err)
	require.Len(t, topics, 2)

	bySlug := map[string]AskedTopic{}
	for _, tp := range topics {
		bySlug[tp.Slug] = tp
	}
	assert.Equal(t, 2, bySlug["sleep-quality"].Count)
	assert.Equal(t, "Sleep Quality", bySlug["sleep-quality"].Topic)
	assert.Equal(t, 1, bySlug["stress"].Count)
	assert.False(t, bySlug["stress"].UpdatedAt.IsZero())
}

func TestMergeAskedRejectsEmptyTopic(t *testing.T) {
	repo := openTestStore(t).AskedRepo()
	err := repo.MergeAsked(context.Background(), AskedKey{Namespace: "ns", UserID: "u1", Topic: "  !! "}, []string{"Q1"})
	assert.Error(t, err)
}

func TestLLMEvents(t *testing.T) {
	repo := openTestStore(t).EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "anthropic", Model: "claude-haiku-4-5", Purpose: "question-gen", InputTokens: 100, OutputTokens: 50, LatencyMs: 200, Success: true, RequestBody: "req", ResponseBody: "resp"},
		{Provider: "anthropic", Model: "claude-haiku-4-5", Purpose: "analysis", InputTokens: 300, OutputTokens: 120, LatencyMs: 400, Success: true},
		{Provider: "anthropic", Model: "claude-haiku-4-5", Purpose: "analysis", LatencyMs: 600, Success: false, ErrorMessage: "boom"},
	}
	for _, e := range events {
		require.NoError(t, repo.AppendLLMRequest(ctx, e))
	}

	all, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "boom", all[0].ErrorMessage, "newest first")

	limited, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 1, Purpose: "question-gen"})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "req", limited[0].RequestBody)

	got, err := repo.GetLLMEvent(ctx, limited[0].ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "resp", got.ResponseBody)

	missing, err := repo.GetLLMEvent(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	require.NoError(t, err)
	require.Len(t, byPurpose, 2)
	assert.Equal(t, "analysis", byPurpose[0].Purpose)
	assert.Equal(t, 2, byPurpose[0].Calls)
	assert.Equal(t, 300, byPurpose[0].InputTokens)
	assert.Equal(t, int64(500), byPurpose[0].AvgLatencyMs)

	byModel, err := repo.LLMUsageByModel(ctx)
	require.NoError(t, err)
	require.Len(t, byModel, 1)
	assert.Equal(t, 3, byModel[0].Calls)
	assert.Equal(t, 170, byModel[0].OutputTokens)
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Anxiety Check", "anxiety-check"},
		{"  Anxiety   Check! ", "anxiety-check"},
		{"anxiety-check", "anxiety-check"},
		{"Work/Life Balance", "work-life-balance"},
		{"???", ""},
	}
	for _, tt := range tests {
		if got := Slug(tt.in); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
