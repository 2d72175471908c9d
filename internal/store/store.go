package store

import (
	"context"
	"time"

	"github.com/nulzo/ai-usage-analyzer/internal/store/model"
)

// Repository is the main contract for the data layer.
type Repository interface {
	Events() EventRepository

	// transaction support
	WithTx(ctx context.Context, fn func(repo Repository) error) error

	Close() error
}

// EventRepository persists and queries canonical usage events. The store is
// append-only: there is no update or delete path.
type EventRepository interface {
	// Insert stores a single processed event. A duplicate id fails the
	// primary key constraint.
	Insert(ctx context.Context, event *model.UsageEvent) error
	// InsertMany stores a batch of processed events in order.
	InsertMany(ctx context.Context, events []*model.UsageEvent) error
	// Find returns a page of events matching the filter, newest first.
	Find(ctx context.Context, filter model.EventFilter) ([]model.UsageEvent, error)
	// Count returns the number of events, restricted to timestamp >= since
	// when since is non-nil.
	Count(ctx context.Context, since *time.Time) (int64, error)
	// SumCost returns the summed cost_usd (missing costs count as zero),
	// restricted to timestamp >= since when since is non-nil.
	SumCost(ctx context.Context, since *time.Time) (float64, error)
	// TopModels ranks (provider, model) pairs since the cutoff by event
	// count descending, ties broken by provider then model ascending.
	TopModels(ctx context.Context, since time.Time, limit int) ([]model.ModelUsage, error)
	// TopUsers ranks user ids since the cutoff by event count descending,
	// ties broken by user id ascending.
	TopUsers(ctx context.Context, since time.Time, limit int) ([]model.UserUsage, error)
	// TopServices ranks services since the cutoff by event count descending,
	// ties broken by service ascending.
	TopServices(ctx context.Context, since time.Time, limit int) ([]model.ServiceUsage, error)
	// DailyUsage returns per-UTC-day counts and costs since the cutoff,
	// ascending by date. Days without events produce no row.
	DailyUsage(ctx context.Context, since time.Time) ([]model.DailyUsage, error)
}
