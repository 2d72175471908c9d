package events

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nulzo/ai-usage-analyzer/internal/cost"
	"github.com/nulzo/ai-usage-analyzer/internal/pii"
	"github.com/nulzo/ai-usage-analyzer/internal/store/model"
)

// Archiver is the best-effort external store for raw prompt text. A false
// result means "no archive reference available", never an error.
type Archiver interface {
	Store(ctx context.Context, key, content string) bool
}

// Submission is one raw usage record as the caller supplied it, before
// normalization. Prompt and Response carry raw text that must never reach
// the canonical record.
type Submission struct {
	Provider         model.Provider
	Model            string
	EventType        model.EventType
	UserID           string
	Service          string
	PromptTokens     *int64
	CompletionTokens *int64
	TotalTokens      *int64
	CostUSD          *float64
	Prompt           *string
	Response         *string
	Metadata         model.Metadata

	// Timestamp overrides the default processing-time timestamp. Used by
	// demo/backfill paths only.
	Timestamp *time.Time
}

// InvalidEventError reports missing required identity fields or enum values
// outside their closed set. It is raised before any processing side effects.
type InvalidEventError struct {
	Fields map[string]string
}

func (e *InvalidEventError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	return fmt.Sprintf("invalid event: %s", strings.Join(names, ", "))
}

// Processor transforms raw submissions into canonical, storage-ready events.
type Processor struct {
	archiver Archiver
	logger   *zap.Logger
}

func NewProcessor(archiver Archiver, logger *zap.Logger) *Processor {
	return &Processor{
		archiver: archiver,
		logger:   logger,
	}
}

// Process normalizes one submission: it assigns identity and time, derives
// the PII and hash fields from any raw text, attempts prompt archival, and
// fills in an estimated cost when the caller supplied none. Raw text is
// dropped here; only derived fields travel further.
func (p *Processor) Process(ctx context.Context, sub Submission) (*model.UsageEvent, error) {
	if err := validate(sub); err != nil {
		return nil, err
	}

	ts := time.Now().UTC()
	if sub.Timestamp != nil {
		ts = sub.Timestamp.UTC()
	}

	meta := sub.Metadata
	if meta == nil {
		meta = model.Metadata{}
	}

	event := &model.UsageEvent{
		ID:               uuid.New().String(),
		Timestamp:        ts,
		Provider:         sub.Provider,
		Model:            sub.Model,
		EventType:        sub.EventType,
		UserID:           sub.UserID,
		Service:          sub.Service,
		PromptTokens:     sub.PromptTokens,
		CompletionTokens: sub.CompletionTokens,
		TotalTokens:      sub.TotalTokens,
		CostUSD:          sub.CostUSD,
		Metadata:         meta,
	}

	if sub.Prompt != nil && *sub.Prompt != "" {
		prompt := *sub.Prompt

		event.HasPII = pii.Detect(prompt)
		redacted := prompt
		if event.HasPII {
			redacted = pii.Redact(prompt)
		}
		event.RedactedPrompt = &redacted
		event.PromptHash = pii.Fingerprint(prompt)

		// Archival failure is a designed degrade-gracefully path: the
		// event is still created, just without an archive reference.
		key := ArchiveKey(event.ID)
		if p.archiver.Store(ctx, key, prompt) {
			event.ArchiveKey = &key
		} else {
			p.logger.Debug("Prompt not archived", zap.String("event_id", event.ID))
		}
	}

	if sub.Response != nil && *sub.Response != "" {
		// Responses are hashed only: no redaction, no archival.
		event.ResponseHash = pii.Fingerprint(*sub.Response)
	}

	if event.CostUSD == nil && event.TotalTokens != nil {
		estimated := cost.Estimate(*event.TotalTokens)
		event.CostUSD = &estimated
	}

	return event, nil
}

// ArchiveKey derives the external archive reference for an event id.
func ArchiveKey(eventID string) string {
	return fmt.Sprintf("prompts/%s.txt", eventID)
}

func validate(sub Submission) error {
	fields := make(map[string]string)

	if sub.Provider == "" {
		fields["provider"] = "required"
	} else if !sub.Provider.Valid() {
		fields["provider"] = "must be one of [openai, anthropic, google, cohere, other]"
	}
	if sub.EventType == "" {
		fields["event_type"] = "required"
	} else if !sub.EventType.Valid() {
		fields["event_type"] = "must be one of [text_generation, image_generation, embedding, fine_tuning, other]"
	}
	if sub.Model == "" {
		fields["model"] = "required"
	}
	if sub.UserID == "" {
		fields["user_id"] = "required"
	}
	if sub.Service == "" {
		fields["service"] = "required"
	}

	if len(fields) > 0 {
		return &InvalidEventError{Fields: fields}
	}
	return nil
}
