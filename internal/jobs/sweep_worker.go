package jobs

import (
	"context"
	"fmt"
	"log"

	"github.com/clausewise/counselai/internal/domain"
)

// AgentLister defines the interface for finding agents eligible for sweeps
type AgentLister interface {
	ListActive(ctx context.Context) ([]*domain.Agent, error)
}

// Sweeper defines the interface for running one monitoring sweep
type Sweeper interface {
	Sweep(ctx context.Context, agentID string) ([]*domain.Alert, error)
}

// SweepWorker runs a monitoring sweep for every active agent. One agent
// failing does not stop the rest of the pass.
type SweepWorker struct {
	agents  AgentLister
	sweeper Sweeper
}

// NewSweepWorker creates a new SweepWorker instance
func NewSweepWorker(agents AgentLister, sweeper Sweeper) *SweepWorker {
	return &SweepWorker{
		agents:  agents,
		sweeper: sweeper,
	}
}

// ProcessJobs implements the JobProcessor interface
func (w *SweepWorker) ProcessJobs(ctx context.Context) error {
	agents, err := w.agents.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active agents: %w", err)
	}

	if len(agents) == 0 {
		return nil
	}

	log.Printf("jobs: sweeping %d active agents", len(agents))

	for _, agent := range agents {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := w.sweeper.Sweep(ctx, agent.ID); err != nil {
			log.Printf("jobs: sweep failed for agent %s: %v", agent.ID, err)
		}
	}

	return nil
}
