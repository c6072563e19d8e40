package repository

import (
	"context"

	"github.com/clausewise/counselai/internal/domain"
	"github.com/clausewise/counselai/internal/pagination"
	"github.com/clausewise/counselai/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AlertRepository struct {
	db dbtx
}

func NewAlertRepository(pool *pgxpool.Pool) *AlertRepository {
	return &AlertRepository{db: pool}
}

func NewAlertRepositoryWithTx(tx pgx.Tx) *AlertRepository {
	return &AlertRepository{db: tx}
}

func (r *AlertRepository) Create(ctx context.Context, a *domain.Alert) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO alerts (id, agent_id, type, title, description, severity, acknowledged, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.AgentID, a.Type, a.Title, a.Description, a.Severity, a.Acknowledged, a.Metadata, a.CreatedAt,
	)
	return err
}

// ListByAgentWithCursor pages through an agent's alerts, newest first.
func (r *AlertRepository) ListByAgentWithCursor(ctx context.Context, agentID string, cursor *pagination.Cursor, limit int) (*service.AlertPageResult, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT id, agent_id, type, title, description, severity, acknowledged, metadata, created_at
			 FROM alerts
			 WHERE agent_id = $1 AND (created_at, id) < ($2, $3)
			 ORDER BY created_at DESC, id DESC
			 LIMIT $4`,
			agentID, cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT id, agent_id, type, title, description, severity, acknowledged, metadata, created_at
			 FROM alerts
			 WHERE agent_id = $1
			 ORDER BY created_at DESC, id DESC
			 LIMIT $2`,
			agentID, limit+1,
		)
	}

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanAlertRows(rows)
	if err != nil {
		return nil, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	var nextCursor string
	if hasMore && len(items) > 0 {
		lastItem := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(lastItem.ID, lastItem.CreatedAt)
	}

	return &service.AlertPageResult{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

// Acknowledge marks an alert as seen by a human.
func (r *AlertRepository) Acknowledge(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE alerts SET acknowledged = TRUE WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrAlertNotFound
	}
	return nil
}

// CountByAgent returns how many alerts exist for an agent.
func (r *AlertRepository) CountByAgent(ctx context.Context, agentID string) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM alerts WHERE agent_id = $1`,
		agentID,
	).Scan(&count)
	return count, err
}

func scanAlertRows(rows pgx.Rows) ([]*domain.Alert, error) {
	var results []*domain.Alert
	for rows.Next() {
		var a domain.Alert
		if err := rows.Scan(&a.ID, &a.AgentID, &a.Type, &a.Title, &a.Description, &a.Severity,
			&a.Acknowledged, &a.Metadata, &a.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, &a)
	}
	return results, rows.Err()
}
