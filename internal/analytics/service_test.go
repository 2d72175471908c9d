package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nulzo/ai-usage-analyzer/internal/store"
	"github.com/nulzo/ai-usage-analyzer/internal/store/model"
	"github.com/nulzo/ai-usage-analyzer/internal/store/sqlite"
)

func newTestRepo(t *testing.T) store.Repository {
	t.Helper()

	repo, err := sqlite.NewSQLiteStorage(":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func seedEvents(t *testing.T, repo store.Repository, count int, ts time.Time, cost float64) {
	t.Helper()

	ctx := context.Background()
	for i := 0; i < count; i++ {
		c := cost
		event := &model.UsageEvent{
			ID:        uuid.New().String(),
			Timestamp: ts,
			Provider:  model.ProviderOpenAI,
			Model:     "gpt-4",
			EventType: model.EventTextGeneration,
			UserID:    "u1",
			Service:   "chat",
			CostUSD:   &c,
			Metadata:  model.Metadata{},
		}
		require.NoError(t, repo.Events().Insert(ctx, event))
	}
}

func TestGetAnalytics_RecentEvents(t *testing.T) {
	repo := newTestRepo(t)
	seedEvents(t, repo, 10, time.Now().UTC().Add(-time.Hour), 0.002)

	report, err := NewService(repo).GetAnalytics(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, int64(10), report.TotalEvents)
	assert.InDelta(t, 0.02, report.TotalCost, 1e-9)
	assert.Equal(t, int64(10), report.EventsLast24h)
	assert.InDelta(t, 0.02, report.CostLast24h, 1e-9)

	require.Len(t, report.TopModels, 1)
	assert.Equal(t, "gpt-4", report.TopModels[0].Model)
	assert.Equal(t, int64(10), report.TopModels[0].Count)

	require.Len(t, report.TopUsers, 1)
	assert.Equal(t, "u1", report.TopUsers[0].UserID)

	require.Len(t, report.TopServices, 1)
	assert.Equal(t, "chat", report.TopServices[0].Service)

	// all events land within the same hour, so one daily bucket
	require.Len(t, report.UsageOverTime, 1)
	assert.Equal(t, int64(10), report.UsageOverTime[0].Count)
}

func TestGetAnalytics_TotalsIgnoreWindow(t *testing.T) {
	repo := newTestRepo(t)
	now := time.Now().UTC()
	seedEvents(t, repo, 2, now.Add(-time.Hour), 0.1)
	seedEvents(t, repo, 3, now.AddDate(0, 0, -30), 0.1)

	report, err := NewService(repo).GetAnalytics(context.Background(), 7)
	require.NoError(t, err)

	// lifetime totals
	assert.Equal(t, int64(5), report.TotalEvents)
	assert.InDelta(t, 0.5, report.TotalCost, 1e-9)

	// trailing day
	assert.Equal(t, int64(2), report.EventsLast24h)
	assert.InDelta(t, 0.2, report.CostLast24h, 1e-9)

	// windowed rankings only see the recent pair
	require.Len(t, report.TopModels, 1)
	assert.Equal(t, int64(2), report.TopModels[0].Count)
}

func TestGetAnalytics_EmptyStore(t *testing.T) {
	repo := newTestRepo(t)

	report, err := NewService(repo).GetAnalytics(context.Background(), 7)
	require.NoError(t, err)

	assert.Zero(t, report.TotalEvents)
	assert.Zero(t, report.TotalCost)
	assert.Empty(t, report.TopModels)
	assert.Empty(t, report.TopUsers)
	assert.Empty(t, report.TopServices)
	assert.Empty(t, report.UsageOverTime)
}

func TestGetAnalytics_DaysClamped(t *testing.T) {
	repo := newTestRepo(t)
	seedEvents(t, repo, 1, time.Now().UTC().Add(-time.Hour), 0.1)

	svc := NewService(repo)

	// zero falls back to the default window and still sees the event
	report, err := svc.GetAnalytics(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.TotalEvents)
	require.Len(t, report.TopModels, 1)

	// absurd values are clamped rather than rejected
	report, err = svc.GetAnalytics(context.Background(), 100000)
	require.NoError(t, err)
	require.Len(t, report.TopModels, 1)
}
