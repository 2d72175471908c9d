package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Provider identifies the upstream AI vendor an event was recorded against.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGoogle    Provider = "google"
	ProviderCohere    Provider = "cohere"
	ProviderOther     Provider = "other"
)

func (p Provider) Valid() bool {
	switch p {
	case ProviderOpenAI, ProviderAnthropic, ProviderGoogle, ProviderCohere, ProviderOther:
		return true
	}
	return false
}

// EventType classifies the kind of AI operation the event describes.
type EventType string

const (
	EventTextGeneration  EventType = "text_generation"
	EventImageGeneration EventType = "image_generation"
	EventEmbedding       EventType = "embedding"
	EventFineTuning      EventType = "fine_tuning"
	EventOther           EventType = "other"
)

func (t EventType) Valid() bool {
	switch t {
	case EventTextGeneration, EventImageGeneration, EventEmbedding, EventFineTuning, EventOther:
		return true
	}
	return false
}

// Role is the resolved role of an authenticated caller.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleAuditor   Role = "auditor"
	RoleDeveloper Role = "developer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAuditor, RoleDeveloper:
		return true
	}
	return false
}

// Identity is the caller resolved by the auth layer. Events the system
// generates itself (demo data) are attributed to it.
type Identity struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}

// Metadata is an open mapping of caller-supplied annotations. Values are
// restricted to strings, numbers, booleans and nested maps so serialization
// stays deterministic.
type Metadata map[string]interface{}

func (m *Metadata) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := validateMetaValues(raw); err != nil {
		return err
	}
	*m = raw
	return nil
}

func validateMetaValues(values map[string]interface{}) error {
	for key, v := range values {
		switch val := v.(type) {
		case nil, string, bool, float64:
		case map[string]interface{}:
			if err := validateMetaValues(val); err != nil {
				return err
			}
		default:
			return fmt.Errorf("metadata key %q: unsupported value kind %T", key, v)
		}
	}
	return nil
}

// Value serializes metadata to JSON for the meta_json column.
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan restores metadata from the meta_json column.
func (m *Metadata) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*m = Metadata{}
		return nil
	case []byte:
		return json.Unmarshal(v, (*map[string]interface{})(m))
	case string:
		return json.Unmarshal([]byte(v), (*map[string]interface{})(m))
	default:
		return fmt.Errorf("cannot scan %T into Metadata", src)
	}
}

// UsageEvent is the canonical persisted record of one AI API call.
// Raw prompt/response text is never stored here: only its hash, its
// redacted form and, when archival succeeded, a reference to the external
// archive of the original. Events are immutable once created.
type UsageEvent struct {
	ID               string    `db:"id" json:"id"`
	Timestamp        time.Time `db:"timestamp" json:"timestamp"`
	Provider         Provider  `db:"provider" json:"provider"`
	Model            string    `db:"model" json:"model"`
	EventType        EventType `db:"event_type" json:"event_type"`
	UserID           string    `db:"user_id" json:"user_id"`
	Service          string    `db:"service" json:"service"`
	PromptTokens     *int64    `db:"prompt_tokens" json:"prompt_tokens,omitempty"`
	CompletionTokens *int64    `db:"completion_tokens" json:"completion_tokens,omitempty"`
	TotalTokens      *int64    `db:"total_tokens" json:"total_tokens,omitempty"`
	CostUSD          *float64  `db:"cost_usd" json:"cost_usd,omitempty"`
	PromptHash       *string   `db:"prompt_hash" json:"prompt_hash,omitempty"`
	ResponseHash     *string   `db:"response_hash" json:"response_hash,omitempty"`
	HasPII           bool      `db:"has_pii" json:"has_pii"`
	RedactedPrompt   *string   `db:"redacted_prompt" json:"redacted_prompt,omitempty"`
	Metadata         Metadata  `db:"meta_json" json:"metadata"`
	ArchiveKey       *string   `db:"archive_key" json:"archive_key,omitempty"`
}

// EventFilter selects events for listing. Zero-valued fields are ignored.
type EventFilter struct {
	Provider string
	Model    string
	UserID   string
	Service  string
	Start    *time.Time
	End      *time.Time
	Limit    int
	Offset   int
}

// ModelUsage is one row of the top-models ranking.
type ModelUsage struct {
	Provider string  `db:"provider" json:"provider"`
	Model    string  `db:"model" json:"model"`
	Count    int64   `db:"count" json:"count"`
	Cost     float64 `db:"cost" json:"cost"`
}

// UserUsage is one row of the top-users ranking.
type UserUsage struct {
	UserID string  `db:"user_id" json:"user_id"`
	Count  int64   `db:"count" json:"count"`
	Cost   float64 `db:"cost" json:"cost"`
}

// ServiceUsage is one row of the top-services ranking.
type ServiceUsage struct {
	Service string  `db:"service" json:"service"`
	Count   int64   `db:"count" json:"count"`
	Cost    float64 `db:"cost" json:"cost"`
}

// DailyUsage is the per-UTC-day rollup used by usage_over_time.
type DailyUsage struct {
	Date  string  `db:"date" json:"date"`
	Count int64   `db:"count" json:"count"`
	Cost  float64 `db:"cost" json:"cost"`
}
