package service

import (
	"context"
	"time"

	"github.com/clausewise/counselai/internal/domain"
	"github.com/clausewise/counselai/internal/telemetry"
)

// AgentService handles the small admin surface over agent profiles. Profile
// ownership lives with the provisioning platform; this exists so operators
// can register and pause agents without it.
type AgentService struct {
	agentRepo AgentRepositoryInterface
	uuidGen   UUIDGenerator
}

// NewAgentService creates a new AgentService instance
func NewAgentService(agentRepo AgentRepositoryInterface) *AgentService {
	return &AgentService{
		agentRepo: agentRepo,
		uuidGen:   &DefaultUUIDGenerator{},
	}
}

// NewAgentServiceWithUUIDGen creates a new AgentService with custom UUID generator (for testing)
func NewAgentServiceWithUUIDGen(agentRepo AgentRepositoryInterface, uuidGen UUIDGenerator) *AgentService {
	return &AgentService{
		agentRepo: agentRepo,
		uuidGen:   uuidGen,
	}
}

// CreateAgentInput represents the input for registering an agent
type CreateAgentInput struct {
	CompanyName string
	Codename    string
	Specialty   string
	Tone        string
	Tagline     string
}

// BusinessContextInput represents the onboarding record for an agent
type BusinessContextInput struct {
	Industry             string
	Concerns             string
	DocumentTypes        string
	MonitoringPriorities string
}

// CreateAgent registers a new agent, active immediately.
func (s *AgentService) CreateAgent(ctx context.Context, input CreateAgentInput) (*domain.Agent, error) {
	ctx, span := telemetry.StartSpan(ctx, "AgentService.CreateAgent", telemetry.SpanAttributes{
		Operation: "create_agent",
	})
	defer span.End()

	now := time.Now().UTC()
	agent := &domain.Agent{
		ID:          s.uuidGen.NewString(),
		CompanyName: input.CompanyName,
		Codename:    input.Codename,
		Specialty:   input.Specialty,
		Tone:        input.Tone,
		Tagline:     input.Tagline,
		Status:      domain.AgentStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := domain.ValidateAgent(agent); err != nil {
		return nil, err
	}

	if err := s.agentRepo.Create(ctx, agent); err != nil {
		span.SetError(err)
		return nil, err
	}

	return agent, nil
}

// SetBusinessContext attaches the onboarding record used to frame prompts.
func (s *AgentService) SetBusinessContext(ctx context.Context, agentID string, input BusinessContextInput) (*domain.BusinessContext, error) {
	ctx, span := telemetry.StartSpan(ctx, "AgentService.SetBusinessContext", telemetry.SpanAttributes{
		AgentID:   agentID,
		Operation: "set_business_context",
	})
	defer span.End()

	if _, err := s.agentRepo.GetByID(ctx, agentID); err != nil {
		return nil, err
	}

	bc := &domain.BusinessContext{
		ID:                   s.uuidGen.NewString(),
		AgentID:              agentID,
		Industry:             input.Industry,
		Concerns:             input.Concerns,
		DocumentTypes:        input.DocumentTypes,
		MonitoringPriorities: input.MonitoringPriorities,
		CreatedAt:            time.Now().UTC(),
	}

	if err := s.agentRepo.CreateBusinessContext(ctx, bc); err != nil {
		span.SetError(err)
		return nil, err
	}

	return bc, nil
}

// GetAgent retrieves an agent by ID.
func (s *AgentService) GetAgent(ctx context.Context, id string) (*domain.Agent, error) {
	ctx, span := telemetry.StartSpan(ctx, "AgentService.GetAgent", telemetry.SpanAttributes{
		AgentID:   id,
		Operation: "get_agent",
	})
	defer span.End()

	return s.agentRepo.GetByID(ctx, id)
}

// ListActiveAgents returns all agents eligible for sweeps and questions.
func (s *AgentService) ListActiveAgents(ctx context.Context) ([]*domain.Agent, error) {
	ctx, span := telemetry.StartSpan(ctx, "AgentService.ListActiveAgents", telemetry.SpanAttributes{
		Operation: "list_active_agents",
	})
	defer span.End()

	return s.agentRepo.ListActive(ctx)
}

// SetStatus pauses or resumes an agent.
func (s *AgentService) SetStatus(ctx context.Context, id string, status domain.AgentStatus) error {
	ctx, span := telemetry.StartSpan(ctx, "AgentService.SetStatus", telemetry.SpanAttributes{
		AgentID:   id,
		Operation: "set_status",
	})
	defer span.End()

	if _, err := s.agentRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.agentRepo.UpdateStatus(ctx, id, status)
}
