package repository

import (
	"context"
	"errors"
	"time"

	"github.com/clausewise/counselai/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AgentRepository struct {
	db dbtx
}

func NewAgentRepository(pool *pgxpool.Pool) *AgentRepository {
	return &AgentRepository{db: pool}
}

func (r *AgentRepository) Create(ctx context.Context, a *domain.Agent) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO agents (id, company_name, codename, specialty, tone, tagline, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.CompanyName, a.Codename, a.Specialty, a.Tone, a.Tagline, a.Status, a.CreatedAt, a.UpdatedAt,
	)
	return err
}

func (r *AgentRepository) GetByID(ctx context.Context, id string) (*domain.Agent, error) {
	var a domain.Agent
	err := r.db.QueryRow(ctx,
		`SELECT id, company_name, codename, specialty, tone, tagline, status, created_at, updated_at
		 FROM agents WHERE id = $1`,
		id,
	).Scan(&a.ID, &a.CompanyName, &a.Codename, &a.Specialty, &a.Tone, &a.Tagline, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAgentNotFound
		}
		return nil, err
	}
	return &a, nil
}

// ListActive returns agents eligible for monitoring sweeps.
func (r *AgentRepository) ListActive(ctx context.Context) ([]*domain.Agent, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, company_name, codename, specialty, tone, tagline, status, created_at, updated_at
		 FROM agents WHERE status = $1 ORDER BY created_at ASC`,
		domain.AgentStatusActive,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.Agent
	for rows.Next() {
		var a domain.Agent
		if err := rows.Scan(&a.ID, &a.CompanyName, &a.Codename, &a.Specialty, &a.Tone, &a.Tagline,
			&a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		results = append(results, &a)
	}
	return results, rows.Err()
}

func (r *AgentRepository) UpdateStatus(ctx context.Context, id string, status domain.AgentStatus) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE agents SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrAgentNotFound
	}
	return nil
}

func (r *AgentRepository) CreateBusinessContext(ctx context.Context, bc *domain.BusinessContext) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO business_contexts (id, agent_id, industry, concerns, document_types, monitoring_priorities, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		bc.ID, bc.AgentID, bc.Industry, bc.Concerns, bc.DocumentTypes, bc.MonitoringPriorities, bc.CreatedAt,
	)
	return err
}

// GetBusinessContext returns the onboarding record for an agent, or nil when
// onboarding has not happened. A missing context is not an error: prompts
// are simply built without it.
func (r *AgentRepository) GetBusinessContext(ctx context.Context, agentID string) (*domain.BusinessContext, error) {
	var bc domain.BusinessContext
	err := r.db.QueryRow(ctx,
		`SELECT id, agent_id, industry, concerns, document_types, monitoring_priorities, created_at
		 FROM business_contexts WHERE agent_id = $1
		 ORDER BY created_at DESC LIMIT 1`,
		agentID,
	).Scan(&bc.ID, &bc.AgentID, &bc.Industry, &bc.Concerns, &bc.DocumentTypes, &bc.MonitoringPriorities, &bc.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &bc, nil
}
