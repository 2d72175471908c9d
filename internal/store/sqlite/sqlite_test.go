package sqlite

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
)

func newTestRepo(t *testing.T) store.Repository {
	t.Helper()

	repo, err := NewSQLiteStorage(":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func testEvent(mod func(*model.UsageEvent)) *model.UsageEvent {
	event := &model.UsageEvent{
		ID:        uuid.New().String(),
		Timestamp: time.Now().UTC(),
		Provider:  model.ProviderOpenAI,
		Model:     "gpt-4",
		EventType: model.EventTextGeneration,
		UserID:    "u1",
		Service:   "chat",
		Metadata:  model.Metadata{},
	}
	if mod != nil {
		mod(event)
	}
	return event
}

func withCost(c float64) func(*model.UsageEvent) {
	return func(e *model.UsageEvent) { e.CostUSD = &c }
}

func TestInsertAndFind_RoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	hash := "abc123"
	redacted := "My SSN is [REDACTED-SSN]"
	event := testEvent(func(e *model.UsageEvent) {
		e.HasPII = true
		e.PromptHash = &hash
		e.RedactedPrompt = &redacted
		e.Metadata = model.Metadata{"env": "prod"}
	})

	require.NoError(t, repo.Events().Insert(ctx, event))

	got, err := repo.Events().Find(ctx, model.EventFilter{})
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, event.ID, got[0].ID)
	assert.True(t, got[0].HasPII)
	assert.Equal(t, redacted, *got[0].RedactedPrompt)
	assert.Equal(t, hash, *got[0].PromptHash)
	assert.Nil(t, got[0].CostUSD)
	assert.Equal(t, "prod", got[0].Metadata["env"])
}

func TestInsert_DuplicateIDRejected(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	event := testEvent(nil)
	require.NoError(t, repo.Events().Insert(ctx, event))

	dup := testEvent(nil)
	dup.ID = event.ID
	assert.Error(t, repo.Events().Insert(ctx, dup))

	count, err := repo.Events().Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestWithTx_RollbackOnError(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := testEvent(nil)
	dup := testEvent(nil)
	dup.ID = first.ID

	err := repo.WithTx(ctx, func(txRepo store.Repository) error {
		return txRepo.Events().InsertMany(ctx, []*model.UsageEvent{first, dup})
	})
	assert.Error(t, err)

	count, err := repo.Events().Count(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestFind_FiltersAndOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	now := time.Now().UTC()
	older := testEvent(func(e *model.UsageEvent) {
		e.Timestamp = now.Add(-2 * time.Hour)
		e.Provider = model.ProviderAnthropic
		e.UserID = "alice"
	})
	newer := testEvent(func(e *model.UsageEvent) {
		e.Timestamp = now.Add(-1 * time.Hour)
		e.Provider = model.ProviderAnthropic
		e.UserID = "bob"
	})
	other := testEvent(func(e *model.UsageEvent) {
		e.Timestamp = now
		e.Provider = model.ProviderOpenAI
		e.UserID = "alice"
	})

	require.NoError(t, repo.Events().InsertMany(ctx, []*model.UsageEvent{older, newer, other}))

	got, err := repo.Events().Find(ctx, model.EventFilter{Provider: "anthropic"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	// newest first
	assert.Equal(t, newer.ID, got[0].ID)
	assert.Equal(t, older.ID, got[1].ID)

	got, err = repo.Events().Find(ctx, model.EventFilter{UserID: "alice"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	start := now.Add(-90 * time.Minute)
	got, err = repo.Events().Find(ctx, model.EventFilter{Start: &start})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	end := now.Add(-90 * time.Minute)
	got, err = repo.Events().Find(ctx, model.EventFilter{End: &end})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, older.ID, got[0].ID)
}

func TestFind_Pagination(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	now := time.Now().UTC()
	for i := 0; i < 5; i++ {
		offset := time.Duration(i) * time.Minute
		require.NoError(t, repo.Events().Insert(ctx, testEvent(func(e *model.UsageEvent) {
			e.Timestamp = now.Add(-offset)
		})))
	}

	page, err := repo.Events().Find(ctx, model.EventFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page, 2)

	rest, err := repo.Events().Find(ctx, model.EventFilter{Limit: 10, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, rest, 3)
}

func TestCountAndSumCost_Windowed(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	now := time.Now().UTC()
	recent := testEvent(withCost(0.5))
	recent.Timestamp = now.Add(-1 * time.Hour)
	old := testEvent(withCost(0.25))
	old.Timestamp = now.Add(-48 * time.Hour)
	uncosted := testEvent(nil)
	uncosted.Timestamp = now.Add(-2 * time.Hour)

	require.NoError(t, repo.Events().InsertMany(ctx, []*model.UsageEvent{recent, old, uncosted}))

	total, err := repo.Events().Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	totalCost, err := repo.Events().SumCost(ctx, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, totalCost, 1e-9)

	since := now.Add(-24 * time.Hour)
	count24, err := repo.Events().Count(ctx, &since)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count24)

	cost24, err := repo.Events().SumCost(ctx, &since)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, cost24, 1e-9)
}

func TestSumCost_EmptyStoreIsZero(t *testing.T) {
	repo := newTestRepo(t)

	total, err := repo.Events().SumCost(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestTopModels_RankingAndTieBreak(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	now := time.Now().UTC()
	add := func(provider model.Provider, mdl string, n int, cost float64) {
		for i := 0; i < n; i++ {
			require.NoError(t, repo.Events().Insert(ctx, testEvent(func(e *model.UsageEvent) {
				e.Timestamp = now.Add(-time.Duration(i+1) * time.Minute)
				e.Provider = provider
				e.Model = mdl
				e.CostUSD = &cost
			})))
		}
	}

	add(model.ProviderOpenAI, "gpt-4", 3, 0.1)
	add(model.ProviderAnthropic, "claude-3", 2, 0.2)
	add(model.ProviderGoogle, "gemini-pro", 2, 0.05)

	rows, err := repo.Events().TopModels(ctx, now.Add(-time.Hour), 5)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "gpt-4", rows[0].Model)
	assert.Equal(t, int64(3), rows[0].Count)
	assert.InDelta(t, 0.3, rows[0].Cost, 1e-9)

	// tie on count resolves by key ascending
	assert.Equal(t, "claude-3", rows[1].Model)
	assert.Equal(t, "gemini-pro", rows[2].Model)
}

func TestTopModels_LimitAndWindow(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	now := time.Now().UTC()
	inWindow := testEvent(func(e *model.UsageEvent) {
		e.Timestamp = now.Add(-time.Hour)
		e.Model = "gpt-4"
	})
	outOfWindow := testEvent(func(e *model.UsageEvent) {
		e.Timestamp = now.Add(-10 * 24 * time.Hour)
		e.Model = "gpt-3.5-turbo"
	})
	require.NoError(t, repo.Events().InsertMany(ctx, []*model.UsageEvent{inWindow, outOfWindow}))

	rows, err := repo.Events().TopModels(ctx, now.AddDate(0, 0, -7), 5)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "gpt-4", rows[0].Model)
}

func TestTopUsersAndServices(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	now := time.Now().UTC()
	for i, userID := range []string{"alice", "alice", "bob"} {
		require.NoError(t, repo.Events().Insert(ctx, testEvent(func(e *model.UsageEvent) {
			e.Timestamp = now.Add(-time.Duration(i+1) * time.Minute)
			e.UserID = userID
			e.Service = "svc-" + userID
			e.CostUSD = ptrCost(0.1)
		})))
	}

	users, err := repo.Events().TopUsers(ctx, now.Add(-time.Hour), 5)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].UserID)
	assert.Equal(t, int64(2), users[0].Count)
	assert.InDelta(t, 0.2, users[0].Cost, 1e-9)

	services, err := repo.Events().TopServices(ctx, now.Add(-time.Hour), 1)
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, "svc-alice", services[0].Service)
}

func TestDailyUsage_BucketsByUTCDay(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	dayOne := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	dayTwo := time.Date(2025, 6, 2, 23, 59, 0, 0, time.UTC)

	events := []*model.UsageEvent{
		testEvent(func(e *model.UsageEvent) { e.Timestamp = dayOne; e.CostUSD = ptrCost(0.1) }),
		testEvent(func(e *model.UsageEvent) { e.Timestamp = dayOne.Add(time.Hour); e.CostUSD = ptrCost(0.2) }),
		testEvent(func(e *model.UsageEvent) { e.Timestamp = dayTwo }),
	}
	require.NoError(t, repo.Events().InsertMany(ctx, events))

	rows, err := repo.Events().DailyUsage(ctx, dayOne.AddDate(0, 0, -1))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "2025-06-01", rows[0].Date)
	assert.Equal(t, int64(2), rows[0].Count)
	assert.InDelta(t, 0.3, rows[0].Cost, 1e-9)

	assert.Equal(t, "2025-06-02", rows[1].Date)
	assert.Equal(t, int64(1), rows[1].Count)
	assert.Zero(t, rows[1].Cost)
}

func ptrCost(c float64) *float64 { return &c }
