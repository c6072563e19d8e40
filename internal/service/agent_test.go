package service

import (
	"context"
	"testing"

	"github.com/clausewise/counselai/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// TestAgentService_CreateAgent tests the CreateAgent method
func TestAgentService_CreateAgent(t *testing.T) {
	ctx := context.Background()

	t.Run("registers an active agent", func(t *testing.T) {
		mockAgentRepo := new(MockAgentRepository)
		mockUUIDGen := NewMockUUIDGenerator("agent-id-1")

		service := NewAgentServiceWithUUIDGen(mockAgentRepo, mockUUIDGen)

		mockAgentRepo.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.Agent) bool {
			return a.ID == "agent-id-1" &&
				a.CompanyName == "Acme GmbH" &&
				a.Codename == "Lexa" &&
				a.Status == domain.AgentStatusActive
		})).Return(nil)

		agent, err := service.CreateAgent(ctx, CreateAgentInput{
			CompanyName: "Acme GmbH",
			Codename:    "Lexa",
			Specialty:   "contracts",
		})

		require.NoError(t, err)
		assert.Equal(t, "agent-id-1", agent.ID)
		mockAgentRepo.AssertExpectations(t)
	})

	t.Run("rejects a missing company name", func(t *testing.T) {
		mockAgentRepo := new(MockAgentRepository)

		service := NewAgentService(mockAgentRepo)

		_, err := service.CreateAgent(ctx, CreateAgentInput{Codename: "Lexa"})

		require.Error(t, err)
		mockAgentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

// TestAgentService_SetBusinessContext tests the SetBusinessContext method
func TestAgentService_SetBusinessContext(t *testing.T) {
	ctx := context.Background()

	t.Run("attaches onboarding record to an existing agent", func(t *testing.T) {
		mockAgentRepo := new(MockAgentRepository)
		mockUUIDGen := NewMockUUIDGenerator("bc-id-1")

		service := NewAgentServiceWithUUIDGen(mockAgentRepo, mockUUIDGen)

		mockAgentRepo.On("GetByID", mock.Anything, "agent-1").Return(&domain.Agent{
			ID:          "agent-1",
			CompanyName: "Acme GmbH",
			Status:      domain.AgentStatusActive,
		}, nil)
		mockAgentRepo.On("CreateBusinessContext", mock.Anything, mock.MatchedBy(func(bc *domain.BusinessContext) bool {
			return bc.ID == "bc-id-1" && bc.AgentID == "agent-1" && bc.Industry == "software"
		})).Return(nil)

		bc, err := service.SetBusinessContext(ctx, "agent-1", BusinessContextInput{
			Industry: "software",
			Concerns: "vendor payments",
		})

		require.NoError(t, err)
		assert.Equal(t, "bc-id-1", bc.ID)
		mockAgentRepo.AssertExpectations(t)
	})

	t.Run("fails for an unknown agent", func(t *testing.T) {
		mockAgentRepo := new(MockAgentRepository)

		service := NewAgentService(mockAgentRepo)

		mockAgentRepo.On("GetByID", mock.Anything, "missing").Return(nil, domain.ErrAgentNotFound)

		_, err := service.SetBusinessContext(ctx, "missing", BusinessContextInput{})

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrAgentNotFound)
		mockAgentRepo.AssertNotCalled(t, "CreateBusinessContext", mock.Anything, mock.Anything)
	})
}

// TestAgentService_SetStatus tests the SetStatus method
func TestAgentService_SetStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("pauses an existing agent", func(t *testing.T) {
		mockAgentRepo := new(MockAgentRepository)

		service := NewAgentService(mockAgentRepo)

		mockAgentRepo.On("GetByID", mock.Anything, "agent-1").Return(&domain.Agent{
			ID:          "agent-1",
			CompanyName: "Acme GmbH",
			Status:      domain.AgentStatusActive,
		}, nil)
		mockAgentRepo.On("UpdateStatus", mock.Anything, "agent-1", domain.AgentStatusPaused).Return(nil)

		err := service.SetStatus(ctx, "agent-1", domain.AgentStatusPaused)

		require.NoError(t, err)
		mockAgentRepo.AssertExpectations(t)
	})
}
