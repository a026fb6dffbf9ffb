package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int    // max results (0 = unlimited)
	Purpose string // exact purpose match ("" = any)
}

// AskedKey identifies one asked-question record.
type AskedKey struct {
	Namespace string
	UserID    string
	Topic     string // display topic; normalized with Slug before storage
}

// AskedTopic summarizes a stored asked-question record.
type AskedTopic struct {
	Slug      string
	Topic     string
	Count     int
	UpdatedAt time.Time
}

// AskedRepo tracks which question texts a user has already been shown
// for a topic.
type AskedRepo interface {
	// Asked returns the stored question texts. A missing record yields
	// an empty slice and no error.
	Asked(ctx context.Context, key AskedKey) ([]string, error)

	// MergeAsked adds texts to the record, creating it if needed.
	// Texts already present are not duplicated.
	MergeAsked(ctx context.Context, key AskedKey, texts []string) error

	// ClearAsked removes the record. Clearing a missing record is not an error.
	ClearAsked(ctx context.Context, key AskedKey) error

	// AskedTopics lists every record stored for the user, most recent first.
	AskedTopics(ctx context.Context, namespace, userID string) ([]AskedTopic, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates token usage for one purpose label.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates token usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns one event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)

	// LLMUsageByPurpose aggregates successful and failed calls by purpose.
	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)

	// LLMUsageByModel aggregates calls by model.
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}
