//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/clausewise/counselai/internal/domain"
	"github.com/clausewise/counselai/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgentRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	agentRepo := NewAgentRepository(pool)

	agent := &domain.Agent{
		ID:          uuid.NewString(),
		CompanyName: "Acme Corp",
		Codename:    "Harvey",
		Specialty:   "contracts",
		Tone:        "formal",
		Tagline:     "Always on retainer",
		Status:      domain.AgentStatusActive,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
		UpdatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}

	require.NoError(t, agentRepo.Create(ctx, agent))

	retrieved, err := agentRepo.GetByID(ctx, agent.ID)
	require.NoError(t, err)
	assert.Equal(t, agent.ID, retrieved.ID)
	assert.Equal(t, "Acme Corp", retrieved.CompanyName)
	assert.Equal(t, "Harvey", retrieved.Codename)
	assert.Equal(t, domain.AgentStatusActive, retrieved.Status)
}

func TestAgentRepository_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	agentRepo := NewAgentRepository(pool)

	_, err := agentRepo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrAgentNotFound)
}

func TestAgentRepository_ListActive_ExcludesPaused(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	agentRepo := NewAgentRepository(pool)

	active := createTestAgent(ctx, t, agentRepo)
	paused := createTestAgent(ctx, t, agentRepo)
	require.NoError(t, agentRepo.UpdateStatus(ctx, paused.ID, domain.AgentStatusPaused))

	agents, err := agentRepo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, agents, 1)
	assert.Equal(t, active.ID, agents[0].ID)
}

func TestAgentRepository_UpdateStatus_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	agentRepo := NewAgentRepository(pool)

	err := agentRepo.UpdateStatus(ctx, uuid.NewString(), domain.AgentStatusPaused)
	assert.ErrorIs(t, err, domain.ErrAgentNotFound)
}

func TestAgentRepository_BusinessContext(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	agentRepo := NewAgentRepository(pool)

	agent := createTestAgent(ctx, t, agentRepo)

	// Missing context is not an error, just nil.
	bc, err := agentRepo.GetBusinessContext(ctx, agent.ID)
	require.NoError(t, err)
	assert.Nil(t, bc)

	created := &domain.BusinessContext{
		ID:                   uuid.NewString(),
		AgentID:              agent.ID,
		Industry:             "logistics",
		Concerns:             "vendor contracts, late payments",
		DocumentTypes:        "contracts, invoices",
		MonitoringPriorities: "payment deadlines",
		CreatedAt:            time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, agentRepo.CreateBusinessContext(ctx, created))

	bc, err = agentRepo.GetBusinessContext(ctx, agent.ID)
	require.NoError(t, err)
	require.NotNil(t, bc)
	assert.Equal(t, created.ID, bc.ID)
	assert.Equal(t, "logistics", bc.Industry)
	assert.Equal(t, "payment deadlines", bc.MonitoringPriorities)
}
