package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/nulzo/ai-usage-analyzer/internal/store/model"
)

// MockArchiver is a mock implementation of Archiver
type MockArchiver struct {
	mock.Mock
}

func (m *MockArchiver) Store(ctx context.Context, key, content string) bool {
	args := m.Called(ctx, key, content)
	return args.Bool(0)
}

func ptrStr(s string) *string    { return &s }
func ptrInt(n int64) *int64      { return &n }
func ptrFloat(f float64) *float64 { return &f }

func baseSubmission() Submission {
	return Submission{
		Provider:  model.ProviderOpenAI,
		Model:     "gpt-4",
		EventType: model.EventTextGeneration,
		UserID:    "u1",
		Service:   "s1",
	}
}

func TestProcess_SSNScenario(t *testing.T) {
	archiver := new(MockArchiver)
	archiver.On("Store", mock.Anything, mock.Anything, "My SSN is 123-45-6789").Return(true)

	p := NewProcessor(archiver, zap.NewNop())

	sub := baseSubmission()
	sub.Prompt = ptrStr("My SSN is 123-45-6789")
	sub.TotalTokens = ptrInt(100)

	event, err := p.Process(context.Background(), sub)
	assert.NoError(t, err)

	assert.True(t, event.HasPII)
	assert.NotNil(t, event.RedactedPrompt)
	assert.Equal(t, "My SSN is [REDACTED-SSN]", *event.RedactedPrompt)
	assert.NotNil(t, event.CostUSD)
	assert.InDelta(t, 0.002, *event.CostUSD, 1e-12)
	assert.NotNil(t, event.PromptHash)

	assert.NotNil(t, event.ArchiveKey)
	assert.Equal(t, ArchiveKey(event.ID), *event.ArchiveKey)
	archiver.AssertCalled(t, "Store", mock.Anything, ArchiveKey(event.ID), "My SSN is 123-45-6789")
}

func TestProcess_CleanPromptKeptVerbatim(t *testing.T) {
	archiver := new(MockArchiver)
	archiver.On("Store", mock.Anything, mock.Anything, mock.Anything).Return(false)

	p := NewProcessor(archiver, zap.NewNop())

	sub := baseSubmission()
	sub.Prompt = ptrStr("Write a haiku about mountains")

	event, err := p.Process(context.Background(), sub)
	assert.NoError(t, err)

	assert.False(t, event.HasPII)
	assert.Equal(t, "Write a haiku about mountains", *event.RedactedPrompt)
}

func TestProcess_ArchiveFailureIsNotFatal(t *testing.T) {
	archiver := new(MockArchiver)
	archiver.On("Store", mock.Anything, mock.Anything, mock.Anything).Return(false)

	p := NewProcessor(archiver, zap.NewNop())

	sub := baseSubmission()
	sub.Prompt = ptrStr("hello")

	event, err := p.Process(context.Background(), sub)
	assert.NoError(t, err)
	assert.Nil(t, event.ArchiveKey)
	assert.NotNil(t, event.PromptHash)
}

func TestProcess_NoPromptSkipsScrubbingAndArchival(t *testing.T) {
	archiver := new(MockArchiver)
	p := NewProcessor(archiver, zap.NewNop())

	event, err := p.Process(context.Background(), baseSubmission())
	assert.NoError(t, err)

	assert.False(t, event.HasPII)
	assert.Nil(t, event.RedactedPrompt)
	assert.Nil(t, event.PromptHash)
	assert.Nil(t, event.ArchiveKey)
	archiver.AssertNotCalled(t, "Store", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcess_ResponseIsHashedOnly(t *testing.T) {
	archiver := new(MockArchiver)
	p := NewProcessor(archiver, zap.NewNop())

	sub := baseSubmission()
	sub.Response = ptrStr("a response containing someone@example.com")

	event, err := p.Process(context.Background(), sub)
	assert.NoError(t, err)

	assert.NotNil(t, event.ResponseHash)
	assert.False(t, event.HasPII)
	assert.Nil(t, event.RedactedPrompt)
	archiver.AssertNotCalled(t, "Store", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcess_ExplicitCostIsNeverRecomputed(t *testing.T) {
	p := NewProcessor(new(MockArchiver), zap.NewNop())

	sub := baseSubmission()
	sub.TotalTokens = ptrInt(100)
	sub.CostUSD = ptrFloat(1.25)

	event, err := p.Process(context.Background(), sub)
	assert.NoError(t, err)
	assert.Equal(t, 1.25, *event.CostUSD)
}

func TestProcess_CostAbsentWithoutTokens(t *testing.T) {
	p := NewProcessor(new(MockArchiver), zap.NewNop())

	event, err := p.Process(context.Background(), baseSubmission())
	assert.NoError(t, err)
	assert.Nil(t, event.CostUSD)
}

func TestProcess_TimestampOverride(t *testing.T) {
	p := NewProcessor(new(MockArchiver), zap.NewNop())

	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	sub := baseSubmission()
	sub.Timestamp = &ts

	event, err := p.Process(context.Background(), sub)
	assert.NoError(t, err)
	assert.Equal(t, ts, event.Timestamp)
}

func TestProcess_DefaultsToProcessingTime(t *testing.T) {
	p := NewProcessor(new(MockArchiver), zap.NewNop())

	before := time.Now().UTC()
	event, err := p.Process(context.Background(), baseSubmission())
	after := time.Now().UTC()

	assert.NoError(t, err)
	assert.False(t, event.Timestamp.Before(before))
	assert.False(t, event.Timestamp.After(after))
	assert.NotEmpty(t, event.ID)
}

func TestProcess_UniqueIDs(t *testing.T) {
	p := NewProcessor(new(MockArchiver), zap.NewNop())

	a, err := p.Process(context.Background(), baseSubmission())
	assert.NoError(t, err)
	b, err := p.Process(context.Background(), baseSubmission())
	assert.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestProcess_InvalidEvent(t *testing.T) {
	p := NewProcessor(new(MockArchiver), zap.NewNop())

	tests := []struct {
		name  string
		mod   func(*Submission)
		field string
	}{
		{"missing provider", func(s *Submission) { s.Provider = "" }, "provider"},
		{"unknown provider", func(s *Submission) { s.Provider = "azure" }, "provider"},
		{"missing model", func(s *Submission) { s.Model = "" }, "model"},
		{"unknown event type", func(s *Submission) { s.EventType = "speech" }, "event_type"},
		{"missing user", func(s *Submission) { s.UserID = "" }, "user_id"},
		{"missing service", func(s *Submission) { s.Service = "" }, "service"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := baseSubmission()
			tt.mod(&sub)

			_, err := p.Process(context.Background(), sub)
			assert.Error(t, err)

			invalid, ok := err.(*InvalidEventError)
			assert.True(t, ok)
			assert.Contains(t, invalid.Fields, tt.field)
		})
	}
}
