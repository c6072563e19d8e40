package repository

import (
	"context"

	"github.com/clausewise/counselai/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type KnowledgeRepository struct {
	db dbtx
}

func NewKnowledgeRepository(pool *pgxpool.Pool) *KnowledgeRepository {
	return &KnowledgeRepository{db: pool}
}

func NewKnowledgeRepositoryWithTx(tx pgx.Tx) *KnowledgeRepository {
	return &KnowledgeRepository{db: tx}
}

// Ingest inserts a knowledge item unless one already exists for the same
// (agent_id, dedup_key). The unique constraint makes the duplicate path a
// no-op at the database level, so concurrent redelivery of the same message
// can never race into two rows. Returns whether a row was actually written.
func (r *KnowledgeRepository) Ingest(ctx context.Context, k *domain.KnowledgeItem) (bool, error) {
	cmdTag, err := r.db.Exec(ctx,
		`INSERT INTO knowledge_items (id, agent_id, source, chat_id, chat_title, user_id, username, dedup_key, thread_id, content, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (agent_id, dedup_key) DO NOTHING`,
		k.ID, k.AgentID, k.Source, k.ChatID, k.ChatTitle, k.UserID, k.Username,
		k.DedupKey, nullableString(k.ThreadID), k.Content, k.Metadata, k.CreatedAt,
	)
	if err != nil {
		return false, err
	}
	return cmdTag.RowsAffected() > 0, nil
}

// RecentWindow loads up to windowSize of the newest items for an agent and
// returns them ordered oldest to newest, the order ranking expects.
func (r *KnowledgeRepository) RecentWindow(ctx context.Context, agentID string, windowSize int) ([]*domain.KnowledgeItem, error) {
	if windowSize <= 0 {
		windowSize = 500
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, agent_id, source, chat_id, chat_title, user_id, username, dedup_key, thread_id, content, metadata, created_at
		 FROM knowledge_items
		 WHERE agent_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		agentID, windowSize,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanKnowledgeItemRows(rows)
	if err != nil {
		return nil, err
	}

	// Newest-first from the query; reverse for chronological order.
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items, nil
}

// CountByAgent returns how many knowledge items an agent has stored.
func (r *KnowledgeRepository) CountByAgent(ctx context.Context, agentID string) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM knowledge_items WHERE agent_id = $1`,
		agentID,
	).Scan(&count)
	return count, err
}

func scanKnowledgeItemRows(rows pgx.Rows) ([]*domain.KnowledgeItem, error) {
	var results []*domain.KnowledgeItem
	for rows.Next() {
		var k domain.KnowledgeItem
		var threadID *string
		if err := rows.Scan(&k.ID, &k.AgentID, &k.Source, &k.ChatID, &k.ChatTitle, &k.UserID, &k.Username,
			&k.DedupKey, &threadID, &k.Content, &k.Metadata, &k.CreatedAt); err != nil {
			return nil, err
		}
		if threadID != nil {
			k.ThreadID = *threadID
		}
		results = append(results, &k)
	}
	return results, rows.Err()
}
