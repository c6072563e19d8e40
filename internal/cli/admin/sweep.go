package admin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/clausewise/counselai/internal/config"
	"github.com/clausewise/counselai/internal/llm"
	"github.com/clausewise/counselai/internal/repository"
	"github.com/clausewise/counselai/internal/runner"
	"github.com/clausewise/counselai/internal/service"
	"github.com/spf13/cobra"
)

func SweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep <agent-id>",
		Short: "Run a monitoring sweep for an agent",
		Long:  "Run one risk scan over an agent's accumulated knowledge and write any findings as alerts",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runSweep(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	agentID := args[0]
	outputFormat, _ := cmd.Flags().GetString("output")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	provider, err := llm.NewProvider(cfg)
	if err != nil {
		return fmt.Errorf("failed to create model provider: %w", err)
	}

	agentRepo := repository.NewAgentRepository(pool)
	knowledgeRepo := repository.NewKnowledgeRepository(pool)
	documentRepo := repository.NewDocumentRepository(pool)
	txRunner := repository.NewTxRunner(pool)
	runnerClient := runner.NewClient(cfg.RunnerCommand, cfg.RunnerTimeout())

	sweepSvc := service.NewSweepService(agentRepo, knowledgeRepo, documentRepo, runnerClient, provider, txRunner)

	alerts, err := sweepSvc.Sweep(ctx, agentID)
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	if outputFormat == "json" {
		data := make([]map[string]interface{}, len(alerts))
		for i, alert := range alerts {
			data[i] = map[string]interface{}{
				"id":       alert.ID,
				"type":     alert.Type,
				"title":    alert.Title,
				"severity": alert.Severity,
			}
		}
		output := map[string]interface{}{
			"agent_id":       agentID,
			"alerts_written": len(alerts),
			"alerts":         data,
		}
		jsonBytes, _ := json.MarshalIndent(output, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		if len(alerts) == 0 {
			fmt.Printf("Sweep complete for agent %s: no findings\n", agentID)
			return nil
		}
		fmt.Printf("Sweep complete for agent %s: %d alerts written\n", agentID, len(alerts))
		for _, alert := range alerts {
			fmt.Printf("  [%s/%s] %s\n", alert.Type, alert.Severity, alert.Title)
		}
	}

	return nil
}
