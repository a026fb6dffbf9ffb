package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// AskedQuestionsColumns holds the columns for the "asked_questions" table.
	AskedQuestionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "namespace", Type: field.TypeString},
		{Name: "user_id", Type: field.TypeString},
		{Name: "topic_slug", Type: field.TypeString},
		{Name: "topic", Type: field.TypeString, Default: ""},
		{Name: "questions", Type: field.TypeJSON},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// AskedQuestionsTable holds the schema information for the "asked_questions" table.
	AskedQuestionsTable = &schema.Table{
		Name:       "asked_questions",
		Columns:    AskedQuestionsColumns,
		PrimaryKey: []*schema.Column{AskedQuestionsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "askedquestion_namespace_user_id_topic_slug",
				Unique:  true,
				Columns: []*schema.Column{AskedQuestionsColumns[1], AskedQuestionsColumns[2], AskedQuestionsColumns[3]},
			},
		},
	}

	// LlmRequestEventsColumns holds the columns for the "llm_request_events" table.
	LlmRequestEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	// LlmRequestEventsTable holds the schema information for the "llm_request_events" table.
	LlmRequestEventsTable = &schema.Table{
		Name:       "llm_request_events",
		Columns:    LlmRequestEventsColumns,
		PrimaryKey: []*schema.Column{LlmRequestEventsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "llmrequestevent_timestamp",
				Unique:  false,
				Columns: []*schema.Column{LlmRequestEventsColumns[1]},
			},
			{
				Name:    "llmrequestevent_purpose",
				Unique:  false,
				Columns: []*schema.Column{LlmRequestEventsColumns[4]},
			},
			{
				Name:    "llmrequestevent_success",
				Unique:  false,
				Columns: []*schema.Column{LlmRequestEventsColumns[8]},
			},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		AskedQuestionsTable,
		LlmRequestEventsTable,
	}
)
