package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nulzo/ai-usage-analyzer/internal/store"
	"github.com/nulzo/ai-usage-analyzer/internal/store/model"
)

// DB defines the interface for database operations (satisfied by *sqlx.DB and *sqlx.Tx)
type DB interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// SqliteRepository implements store.Repository
type SqliteRepository struct {
	db       *sqlx.DB // Required for starting new transactions
	executor DB       // Used for actual queries (can be *sqlx.DB or *sqlx.Tx)
}

func NewSqliteRepository(db *sqlx.DB) *SqliteRepository {
	return &SqliteRepository{
		db:       db,
		executor: db,
	}
}

func (r *SqliteRepository) Close() error {
	return r.db.Close()
}

func (r *SqliteRepository) WithTx(ctx context.Context, fn func(repo store.Repository) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	// Create a repository instance that uses the transaction
	txRepo := &SqliteRepository{
		db:       r.db, // Keep the original DB handle
		executor: tx,
	}

	if err := fn(txRepo); err != nil {
		// attempt rollback, but prioritize original error
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (r *SqliteRepository) Events() store.EventRepository {
	return &eventRepo{db: r.executor}
}

type eventRepo struct {
	db DB
}

const insertEventQuery = `
	INSERT INTO usage_events (
		id, timestamp, provider, model, event_type, user_id, service,
		prompt_tokens, completion_tokens, total_tokens, cost_usd,
		prompt_hash, response_hash, has_pii, redacted_prompt,
		meta_json, archive_key
	) VALUES (
		:id, :timestamp, :provider, :model, :event_type, :user_id, :service,
		:prompt_tokens, :completion_tokens, :total_tokens, :cost_usd,
		:prompt_hash, :response_hash, :has_pii, :redacted_prompt,
		:meta_json, :archive_key
	)`

func (r *eventRepo) Insert(ctx context.Context, event *model.UsageEvent) error {
	_, err := r.db.NamedExecContext(ctx, insertEventQuery, event)
	return err
}

func (r *eventRepo) InsertMany(ctx context.Context, events []*model.UsageEvent) error {
	for _, event := range events {
		if _, err := r.db.NamedExecContext(ctx, insertEventQuery, event); err != nil {
			return err
		}
	}
	return nil
}

func (r *eventRepo) Find(ctx context.Context, filter model.EventFilter) ([]model.UsageEvent, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT * FROM usage_events`)

	var conds []string
	var args []interface{}

	if filter.Provider != "" {
		conds = append(conds, "provider = ?")
		args = append(args, filter.Provider)
	}
	if filter.Model != "" {
		conds = append(conds, "model = ?")
		args = append(args, filter.Model)
	}
	if filter.UserID != "" {
		conds = append(conds, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.Service != "" {
		conds = append(conds, "service = ?")
		args = append(args, filter.Service)
	}
	if filter.Start != nil {
		conds = append(conds, "timestamp >= ?")
		args = append(args, filter.Start.UTC())
	}
	if filter.End != nil {
		conds = append(conds, "timestamp <= ?")
		args = append(args, filter.End.UTC())
	}

	if len(conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}

	// LIMIT -1 is SQLite for "no limit"; the service layer enforces the
	// page-size cap.
	limit := filter.Limit
	if limit <= 0 {
		limit = -1
	}

	sb.WriteString(" ORDER BY timestamp DESC LIMIT ? OFFSET ?")
	args = append(args, limit, filter.Offset)

	events := []model.UsageEvent{}
	err := r.db.SelectContext(ctx, &events, sb.String(), args...)
	return events, err
}

func (r *eventRepo) Count(ctx context.Context, since *time.Time) (int64, error) {
	var count int64
	if since == nil {
		err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM usage_events`)
		return count, err
	}
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM usage_events WHERE timestamp >= ?`, since.UTC())
	return count, err
}

func (r *eventRepo) SumCost(ctx context.Context, since *time.Time) (float64, error) {
	var total float64
	if since == nil {
		err := r.db.GetContext(ctx, &total,
			`SELECT COALESCE(SUM(cost_usd), 0) FROM usage_events`)
		return total, err
	}
	err := r.db.GetContext(ctx, &total,
		`SELECT COALESCE(SUM(cost_usd), 0) FROM usage_events WHERE timestamp >= ?`, since.UTC())
	return total, err
}

func (r *eventRepo) TopModels(ctx context.Context, since time.Time, limit int) ([]model.ModelUsage, error) {
	rows := []model.ModelUsage{}
	query := `
		SELECT
			provider,
			model,
			COUNT(*) AS count,
			COALESCE(SUM(cost_usd), 0) AS cost
		FROM usage_events
		WHERE timestamp >= ?
		GROUP BY provider, model
		ORDER BY count DESC, provider ASC, model ASC
		LIMIT ?`
	err := r.db.SelectContext(ctx, &rows, query, since.UTC(), limit)
	return rows, err
}

func (r *eventRepo) TopUsers(ctx context.Context, since time.Time, limit int) ([]model.UserUsage, error) {
	rows := []model.UserUsage{}
	query := `
		SELECT
			user_id,
			COUNT(*) AS count,
			COALESCE(SUM(cost_usd), 0) AS cost
		FROM usage_events
		WHERE timestamp >= ?
		GROUP BY user_id
		ORDER BY count DESC, user_id ASC
		LIMIT ?`
	err := r.db.SelectContext(ctx, &rows, query, since.UTC(), limit)
	return rows, err
}

func (r *eventRepo) TopServices(ctx context.Context, since time.Time, limit int) ([]model.ServiceUsage, error) {
	rows := []model.ServiceUsage{}
	query := `
		SELECT
			service,
			COUNT(*) AS count,
			COALESCE(SUM(cost_usd), 0) AS cost
		FROM usage_events
		WHERE timestamp >= ?
		GROUP BY service
		ORDER BY count DESC, service ASC
		LIMIT ?`
	err := r.db.SelectContext(ctx, &rows, query, since.UTC(), limit)
	return rows, err
}

func (r *eventRepo) DailyUsage(ctx context.Context, since time.Time) ([]model.DailyUsage, error) {
	rows := []model.DailyUsage{}
	// Timestamps are stored in UTC, so DATE() buckets by UTC calendar day.
	query := `
		SELECT
			DATE(timestamp) AS date,
			COUNT(*) AS count,
			COALESCE(SUM(cost_usd), 0) AS cost
		FROM usage_events
		WHERE timestamp >= ?
		GROUP BY date
		ORDER BY date ASC`
	err := r.db.SelectContext(ctx, &rows, query, since.UTC())
	return rows, err
}
