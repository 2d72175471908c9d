// Package analytics computes point-in-time rollups over stored usage
// events. Reports are never persisted; every request recomputes from the
// store.
package analytics

import (
	"context"
	"time"

	"github.com/nulzo/ai-usage-analyzer/internal/store"
	"github.com/nulzo/ai-usage-analyzer/internal/store/model"
)

const (
	topN        = 5
	minDays     = 1
	maxDays     = 365
	defaultDays = 7
)

// Report is the composite analytics view over a trailing window. Totals are
// unwindowed; the 24h figures use a fixed trailing day; rankings and the
// daily series use the requested window.
type Report struct {
	TotalEvents   int64                `json:"total_events"`
	TotalCost     float64              `json:"total_cost"`
	EventsLast24h int64                `json:"events_last_24h"`
	CostLast24h   float64              `json:"cost_last_24h"`
	TopModels     []model.ModelUsage   `json:"top_models"`
	TopUsers      []model.UserUsage    `json:"top_users"`
	TopServices   []model.ServiceUsage `json:"top_services"`
	UsageOverTime []model.DailyUsage   `json:"usage_over_time"`
}

type Service interface {
	GetAnalytics(ctx context.Context, days int) (*Report, error)
}

type service struct {
	repo store.Repository
}

func NewService(repo store.Repository) Service {
	return &service{
		repo: repo,
	}
}

func (s *service) GetAnalytics(ctx context.Context, days int) (*Report, error) {
	if days <= 0 {
		days = defaultDays
	}
	if days < minDays {
		days = minDays
	}
	if days > maxDays {
		days = maxDays
	}

	now := time.Now().UTC()
	windowStart := now.AddDate(0, 0, -days)
	last24h := now.Add(-24 * time.Hour)

	events := s.repo.Events()

	totalEvents, err := events.Count(ctx, nil)
	if err != nil {
		return nil, err
	}
	totalCost, err := events.SumCost(ctx, nil)
	if err != nil {
		return nil, err
	}

	events24h, err := events.Count(ctx, &last24h)
	if err != nil {
		return nil, err
	}
	cost24h, err := events.SumCost(ctx, &last24h)
	if err != nil {
		return nil, err
	}

	topModels, err := events.TopModels(ctx, windowStart, topN)
	if err != nil {
		return nil, err
	}
	topUsers, err := events.TopUsers(ctx, windowStart, topN)
	if err != nil {
		return nil, err
	}
	topServices, err := events.TopServices(ctx, windowStart, topN)
	if err != nil {
		return nil, err
	}
	usageOverTime, err := events.DailyUsage(ctx, windowStart)
	if err != nil {
		return nil, err
	}

	return &Report{
		TotalEvents:   totalEvents,
		TotalCost:     totalCost,
		EventsLast24h: events24h,
		CostLast24h:   cost24h,
		TopModels:     topModels,
		TopUsers:      topUsers,
		TopServices:   topServices,
		UsageOverTime: usageOverTime,
	}, nil
}
