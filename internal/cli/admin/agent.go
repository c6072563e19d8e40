package admin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/clausewise/counselai/internal/config"
	"github.com/clausewise/counselai/internal/database"
	"github.com/clausewise/counselai/internal/domain"
	"github.com/clausewise/counselai/internal/repository"
	"github.com/clausewise/counselai/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

func AgentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Manage agents",
		Long:  "Create, list, and update company assistant agents",
	}

	cmd.AddCommand(AgentCreateCmd())
	cmd.AddCommand(AgentListCmd())
	cmd.AddCommand(AgentContextCmd())
	cmd.AddCommand(AgentStatusCmd())

	return cmd
}

func AgentCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <company-name>",
		Short: "Create a new agent",
		Long:  "Create a new agent for the specified company",
		Args:  cobra.ExactArgs(1),
		RunE:  runAgentCreate,
	}

	cmd.Flags().String("codename", "", "Persona codename")
	cmd.Flags().String("specialty", "", "Persona specialty")
	cmd.Flags().String("tone", "", "Persona tone")
	cmd.Flags().String("tagline", "", "Persona tagline")
	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runAgentCreate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	companyName := args[0]
	codename, _ := cmd.Flags().GetString("codename")
	specialty, _ := cmd.Flags().GetString("specialty")
	tone, _ := cmd.Flags().GetString("tone")
	tagline, _ := cmd.Flags().GetString("tagline")
	outputFormat, _ := cmd.Flags().GetString("output")

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	agentRepo := repository.NewAgentRepository(pool)
	agentSvc := service.NewAgentService(agentRepo)

	agent, err := agentSvc.CreateAgent(ctx, service.CreateAgentInput{
		CompanyName: companyName,
		Codename:    codename,
		Specialty:   specialty,
		Tone:        tone,
		Tagline:     tagline,
	})
	if err != nil {
		return fmt.Errorf("failed to create agent: %w", err)
	}

	if outputFormat == "json" {
		data := map[string]interface{}{
			"id":           agent.ID,
			"company_name": agent.CompanyName,
			"codename":     agent.Codename,
			"status":       agent.Status,
			"created_at":   agent.CreatedAt,
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		fmt.Printf("Agent created: %s for %s (%s)\n", agent.DisplayName(), agent.CompanyName, agent.ID)
	}

	return nil
}

func AgentListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active agents",
		Long:  "List all agents eligible for questions and sweeps",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, _ := cmd.Flags().GetString("output")
			return runAgentList(outputFormat)
		},
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runAgentList(outputFormat string) error {
	ctx := context.Background()

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	agentRepo := repository.NewAgentRepository(pool)
	agentSvc := service.NewAgentService(agentRepo)

	agents, err := agentSvc.ListActiveAgents(ctx)
	if err != nil {
		return fmt.Errorf("failed to list agents: %w", err)
	}

	if outputFormat == "json" {
		data := make([]map[string]interface{}, len(agents))
		for i, agent := range agents {
			data[i] = map[string]interface{}{
				"id":           agent.ID,
				"company_name": agent.CompanyName,
				"codename":     agent.Codename,
				"status":       agent.Status,
				"created_at":   agent.CreatedAt,
			}
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		if len(agents) == 0 {
			fmt.Println("No active agents found")
			return nil
		}
		fmt.Println("Active agents:")
		for _, agent := range agents {
			fmt.Printf("  %s: %s for %s (created: %s)\n", agent.ID, agent.DisplayName(), agent.CompanyName, agent.CreatedAt.Format("2006-01-02 15:04:05"))
		}
	}

	return nil
}

func AgentContextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "context <agent-id>",
		Short: "Set an agent's business context",
		Long:  "Record what the company wants monitored and which documents matter",
		Args:  cobra.ExactArgs(1),
		RunE:  runAgentContext,
	}

	cmd.Flags().String("industry", "", "Company industry")
	cmd.Flags().String("concerns", "", "Main legal concerns")
	cmd.Flags().String("document-types", "", "Document types the company handles")
	cmd.Flags().String("priorities", "", "Monitoring priorities")
	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runAgentContext(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	agentID := args[0]
	industry, _ := cmd.Flags().GetString("industry")
	concerns, _ := cmd.Flags().GetString("concerns")
	documentTypes, _ := cmd.Flags().GetString("document-types")
	priorities, _ := cmd.Flags().GetString("priorities")
	outputFormat, _ := cmd.Flags().GetString("output")

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	agentRepo := repository.NewAgentRepository(pool)
	agentSvc := service.NewAgentService(agentRepo)

	bc, err := agentSvc.SetBusinessContext(ctx, agentID, service.BusinessContextInput{
		Industry:             industry,
		Concerns:             concerns,
		DocumentTypes:        documentTypes,
		MonitoringPriorities: priorities,
	})
	if err != nil {
		return fmt.Errorf("failed to set business context: %w", err)
	}

	if outputFormat == "json" {
		data := map[string]interface{}{
			"id":       bc.ID,
			"agent_id": bc.AgentID,
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		fmt.Printf("Business context recorded for agent %s (%s)\n", agentID, bc.ID)
	}

	return nil
}

func AgentStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <agent-id> <status>",
		Short: "Set an agent's status",
		Long:  "Set an agent's status to active or paused",
		Args:  cobra.ExactArgs(2),
		RunE:  runAgentStatus,
	}

	return cmd
}

func runAgentStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	agentID := args[0]
	status := domain.AgentStatus(args[1])

	switch status {
	case domain.AgentStatusPending, domain.AgentStatusActive, domain.AgentStatusPaused:
	default:
		return fmt.Errorf("invalid status %q (expected 'pending', 'active' or 'paused')", args[1])
	}

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	agentRepo := repository.NewAgentRepository(pool)
	agentSvc := service.NewAgentService(agentRepo)

	if err := agentSvc.SetStatus(ctx, agentID, status); err != nil {
		return fmt.Errorf("failed to set agent status: %w", err)
	}

	fmt.Printf("Agent %s is now %s\n", agentID, status)
	return nil
}

func getDBPool(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return database.NewPool(ctx, cfg.DatabaseURL)
}
