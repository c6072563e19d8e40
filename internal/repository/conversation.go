package repository

import (
	"context"

	"github.com/clausewise/counselai/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ConversationRepository struct {
	db dbtx
}

func NewConversationRepository(pool *pgxpool.Pool) *ConversationRepository {
	return &ConversationRepository{db: pool}
}

func NewConversationRepositoryWithTx(tx pgx.Tx) *ConversationRepository {
	return &ConversationRepository{db: tx}
}

func (r *ConversationRepository) CreateTurn(ctx context.Context, t *domain.ConversationTurn) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO conversation_turns (id, agent_id, chat_id, user_id, role, content, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.AgentID, t.ChatID, t.UserID, t.Role, t.Content, t.CreatedAt,
	)
	return err
}

// Recent returns the n most recent turns for an agent/chat, newest first.
// Prompt assembly reverses them into chronological order.
func (r *ConversationRepository) Recent(ctx context.Context, agentID, chatID string, n int) ([]*domain.ConversationTurn, error) {
	if n <= 0 {
		n = 10
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, agent_id, chat_id, user_id, role, content, created_at
		 FROM conversation_turns
		 WHERE agent_id = $1 AND chat_id = $2
		 ORDER BY created_at DESC, id DESC
		 LIMIT $3`,
		agentID, chatID, n,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.ConversationTurn
	for rows.Next() {
		var t domain.ConversationTurn
		if err := rows.Scan(&t.ID, &t.AgentID, &t.ChatID, &t.UserID, &t.Role, &t.Content, &t.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, &t)
	}
	return results, rows.Err()
}

// CountByAgent returns how many turns an agent has recorded across all chats.
func (r *ConversationRepository) CountByAgent(ctx context.Context, agentID string) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM conversation_turns WHERE agent_id = $1`,
		agentID,
	).Scan(&count)
	return count, err
}
