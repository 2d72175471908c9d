package api

import (
	"time"

	"github.com/nulzo/ai-usage-analyzer/internal/store/model"
)

// CreateEventRequest is one raw usage record submitted by a client service.
// Enum fields are validated against their closed sets at the boundary;
// prompt/response carry raw text that is scrubbed during processing and
// never persisted verbatim.
type CreateEventRequest struct {
	Provider  string `json:"provider" binding:"required,oneof=openai anthropic google cohere other"`
	Model     string `json:"model" binding:"required"`
	EventType string `json:"event_type" binding:"required,oneof=text_generation image_generation embedding fine_tuning other"`
	UserID    string `json:"user_id" binding:"required"`
	Service   string `json:"service" binding:"required"`

	PromptTokens     *int64   `json:"prompt_tokens,omitempty" binding:"omitempty,gte=0"`
	CompletionTokens *int64   `json:"completion_tokens,omitempty" binding:"omitempty,gte=0"`
	TotalTokens      *int64   `json:"total_tokens,omitempty" binding:"omitempty,gte=0"`
	CostUSD          *float64 `json:"cost_usd,omitempty" binding:"omitempty,gte=0"`

	Prompt   *string        `json:"prompt,omitempty"`
	Response *string        `json:"response,omitempty"`
	Metadata model.Metadata `json:"metadata,omitempty"`
}

// CreateEventBatchRequest wraps an ordered sequence of submissions.
type CreateEventBatchRequest struct {
	Events []CreateEventRequest `json:"events" binding:"required,min=1,dive"`
}

// ListEventsQuery is the filter/pagination query for event listing.
// Timestamps are RFC 3339.
type ListEventsQuery struct {
	Limit    int       `form:"limit,default=100" binding:"omitempty,gte=1,lte=1000"`
	Offset   int       `form:"offset,default=0" binding:"omitempty,gte=0"`
	Provider string    `form:"provider" binding:"omitempty,oneof=openai anthropic google cohere other"`
	Model    string    `form:"model"`
	UserID   string    `form:"user_id"`
	Service  string    `form:"service"`
	Start    time.Time `form:"start_date" time_format:"2006-01-02T15:04:05Z07:00"`
	End      time.Time `form:"end_date" time_format:"2006-01-02T15:04:05Z07:00"`
}

// AnalyticsQuery selects the trailing window for the analytics report.
type AnalyticsQuery struct {
	Days int `form:"days,default=7" binding:"omitempty,gte=1,lte=365"`
}

// DemoDataQuery controls how many synthetic events to backfill.
type DemoDataQuery struct {
	Count int `form:"count,default=50" binding:"omitempty,gte=1,lte=1000"`
}
