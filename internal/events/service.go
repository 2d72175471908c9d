package events

import (
	"context"

	"go.uber.org/zap"

	"github.com/nulzo/ai-usage-analyzer/internal/store"
	"github.com/nulzo/ai-usage-analyzer/internal/store/model"
)

const (
	defaultPageSize = 100
	maxPageSize     = 1000
)

// Service is the ingestion and retrieval surface for usage events.
type Service interface {
	// Create processes and persists a single submission.
	Create(ctx context.Context, sub Submission) (*model.UsageEvent, error)
	// CreateBatch processes and persists many submissions, returning the
	// canonical events in submission order. The batch is all-or-nothing:
	// a failed member rolls the whole batch back.
	CreateBatch(ctx context.Context, subs []Submission) ([]*model.UsageEvent, error)
	// List returns a page of events matching the filter, newest first.
	List(ctx context.Context, filter model.EventFilter) ([]model.UsageEvent, error)
	// GenerateDemo creates count synthetic events backfilled over the last
	// seven days, attributed to the acting identity. Returns the number
	// created.
	GenerateDemo(ctx context.Context, count int, actor model.Identity) (int, error)
}

type service struct {
	repo      store.Repository
	processor *Processor
	logger    *zap.Logger
}

func NewService(repo store.Repository, processor *Processor, logger *zap.Logger) Service {
	return &service{
		repo:      repo,
		processor: processor,
		logger:    logger,
	}
}

func (s *service) Create(ctx context.Context, sub Submission) (*model.UsageEvent, error) {
	event, err := s.processor.Process(ctx, sub)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Events().Insert(ctx, event); err != nil {
		return nil, err
	}

	s.logger.Debug("Usage event created",
		zap.String("id", event.ID),
		zap.String("provider", string(event.Provider)),
		zap.String("model", event.Model),
	)
	return event, nil
}

func (s *service) CreateBatch(ctx context.Context, subs []Submission) ([]*model.UsageEvent, error) {
	// Process everything first so an invalid member rejects the batch
	// before anything is persisted.
	processed := make([]*model.UsageEvent, 0, len(subs))
	for _, sub := range subs {
		event, err := s.processor.Process(ctx, sub)
		if err != nil {
			return nil, err
		}
		processed = append(processed, event)
	}

	if len(processed) == 0 {
		return processed, nil
	}

	err := s.repo.WithTx(ctx, func(repo store.Repository) error {
		return repo.Events().InsertMany(ctx, processed)
	})
	if err != nil {
		return nil, err
	}

	return processed, nil
}

func (s *service) List(ctx context.Context, filter model.EventFilter) ([]model.UsageEvent, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.repo.Events().Find(ctx, filter)
}
