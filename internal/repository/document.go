package repository

import (
	"context"

	"github.com/clausewise/counselai/internal/domain"
	"github.com/clausewise/counselai/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DocumentRepository struct {
	db dbtx
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: pool}
}

func NewDocumentRepositoryWithTx(tx pgx.Tx) *DocumentRepository {
	return &DocumentRepository{db: tx}
}

func (r *DocumentRepository) Create(ctx context.Context, d *domain.Document) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO documents (id, agent_id, name, type, content, metadata, processed_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		d.ID, d.AgentID, d.Name, d.Type, d.Content, d.Metadata, d.ProcessedAt, d.CreatedAt,
	)
	return err
}

// ListByAgent returns every document for an agent, content included, oldest
// first. Document ranking walks all of them; per-agent corpora are capped by
// the ingestion size limit rather than pagination.
func (r *DocumentRepository) ListByAgent(ctx context.Context, agentID string) ([]*domain.Document, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, agent_id, name, type, content, metadata, processed_at, created_at
		 FROM documents WHERE agent_id = $1 ORDER BY created_at ASC, id ASC`,
		agentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.Document
	for rows.Next() {
		var d domain.Document
		if err := rows.Scan(&d.ID, &d.AgentID, &d.Name, &d.Type, &d.Content, &d.Metadata, &d.ProcessedAt, &d.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, &d)
	}
	return results, rows.Err()
}

// ListSummaries returns document descriptors without content, for listings.
func (r *DocumentRepository) ListSummaries(ctx context.Context, agentID string) ([]*service.DocumentSummary, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, type, length(content), created_at
		 FROM documents WHERE agent_id = $1 ORDER BY created_at DESC, id DESC`,
		agentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*service.DocumentSummary
	for rows.Next() {
		var s service.DocumentSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Type, &s.ContentLength, &s.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, &s)
	}
	return results, rows.Err()
}
