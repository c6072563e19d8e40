package domain

import (
	"fmt"
	"strings"
	"time"
)

// AgentStatus represents the lifecycle state of a deployed agent.
type AgentStatus string

const (
	AgentStatusPending AgentStatus = "pending"
	AgentStatusActive  AgentStatus = "active"
	AgentStatusPaused  AgentStatus = "paused"
)

// Agent is a deployed, company-scoped assistant instance. The knowledge
// pipeline only reads agents; creation and mutation belong to the
// provisioning surface outside the core.
type Agent struct {
	ID          string
	CompanyName string
	Codename    string
	Specialty   string
	Tone        string
	Tagline     string
	Status      AgentStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BusinessContext is the onboarding record describing what the company wants
// the agent to watch for. Read-only to the pipeline; used to frame prompts.
type BusinessContext struct {
	ID                   string
	AgentID              string
	Industry             string
	Concerns             string
	DocumentTypes        string
	MonitoringPriorities string
	CreatedAt            time.Time
}

// DisplayName returns the persona codename when set, otherwise a generic name.
func (a *Agent) DisplayName() string {
	if a.Codename != "" {
		return a.Codename
	}
	return "Counsel"
}

// PromptSummary renders the one-block company/persona summary prepended to
// generated prompts.
func (a *Agent) PromptSummary(bc *BusinessContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Company: %s\n", a.CompanyName)
	if a.Codename != "" {
		tone := a.Tone
		if tone == "" {
			tone = "direct, concise"
		}
		fmt.Fprintf(&b, "Agent: %s (%s)\n", a.Codename, tone)
		fmt.Fprintf(&b, "Specialty: %s\n", a.Specialty)
	}
	if bc != nil {
		if bc.Concerns != "" {
			fmt.Fprintf(&b, "Focus: %s\n", bc.Concerns)
		}
		if bc.Industry != "" {
			fmt.Fprintf(&b, "Industry: %s\n", bc.Industry)
		}
	}
	return b.String()
}

// ValidateAgent validates an Agent instance
func ValidateAgent(a *Agent) error {
	if a == nil {
		return fmt.Errorf("agent cannot be nil")
	}

	if a.ID == "" {
		return fmt.Errorf("agent ID is required")
	}

	if a.CompanyName == "" {
		return fmt.Errorf("agent CompanyName is required")
	}

	if !isValidAgentStatus(a.Status) {
		return fmt.Errorf("agent Status is invalid: %s", a.Status)
	}

	return nil
}

// isValidAgentStatus checks if an AgentStatus is valid
func isValidAgentStatus(s AgentStatus) bool {
	switch s {
	case AgentStatusPending, AgentStatusActive, AgentStatusPaused:
		return true
	}
	return false
}
