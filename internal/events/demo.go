package events

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/nulzo/ai-usage-analyzer/internal/cost"
	"github.com/nulzo/ai-usage-analyzer/internal/store/model"
)

var demoModels = map[model.Provider][]string{
	model.ProviderOpenAI:    {"gpt-4", "gpt-3.5-turbo", "gpt-4-turbo"},
	model.ProviderAnthropic: {"claude-3-opus", "claude-3-sonnet", "claude-instant"},
	model.ProviderGoogle:    {"gemini-pro", "gemini-pro-vision", "palm-2"},
}

var demoProviders = []model.Provider{
	model.ProviderOpenAI,
	model.ProviderAnthropic,
	model.ProviderGoogle,
}

var (
	demoServices = []string{"web-app", "api-service", "chatbot", "content-generator", "analytics"}
	demoUsers    = []string{"user-001", "user-002", "user-003", "user-004", "user-005"}
)

// GenerateDemo backfills count synthetic events spread over the trailing
// seven days. Events run through the full processing pipeline so hashes,
// redaction and archival behave exactly as for real submissions.
func (s *service) GenerateDemo(ctx context.Context, count int, actor model.Identity) (int, error) {
	batchID := uuid.New().String()
	subs := make([]Submission, 0, count)

	for i := 0; i < count; i++ {
		provider := demoProviders[rand.Intn(len(demoProviders))]
		modelName := demoModels[provider][rand.Intn(len(demoModels[provider]))]
		service := demoServices[rand.Intn(len(demoServices))]
		userID := demoUsers[rand.Intn(len(demoUsers))]

		ts := time.Now().UTC().
			Add(-time.Duration(rand.Intn(8)) * 24 * time.Hour).
			Add(-time.Duration(rand.Intn(24)) * time.Hour)

		promptTokens := int64(rand.Intn(1991) + 10)
		completionTokens := int64(rand.Intn(996) + 5)
		totalTokens := promptTokens + completionTokens
		costUSD := roundCost(cost.Estimate(totalTokens) * (0.8 + rand.Float64()*0.4))

		prompt := "Sample prompt for " + service + " using " + modelName
		response := "Sample response from " + modelName

		subs = append(subs, Submission{
			Provider:         provider,
			Model:            modelName,
			EventType:        model.EventTextGeneration,
			UserID:           userID,
			Service:          service,
			PromptTokens:     &promptTokens,
			CompletionTokens: &completionTokens,
			TotalTokens:      &totalTokens,
			CostUSD:          &costUSD,
			Prompt:           &prompt,
			Response:         &response,
			Timestamp:        &ts,
			Metadata: model.Metadata{
				"demo":         true,
				"batch_id":     batchID,
				"generated_by": actor.UserID,
			},
		})
	}

	created, err := s.CreateBatch(ctx, subs)
	if err != nil {
		return 0, err
	}
	return len(created), nil
}

func roundCost(v float64) float64 {
	return math.Round(v*10000) / 10000
}
