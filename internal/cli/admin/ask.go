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

func AskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <agent-id> <question>",
		Short: "Ask an agent a question",
		Long:  "Ask an agent a question and print its answer; the exchange is stored in conversation memory",
		Args:  cobra.ExactArgs(2),
		RunE:  runAsk,
	}

	cmd.Flags().String("chat", "cli", "Chat ID to store the exchange under")
	cmd.Flags().String("user", "", "User ID attributed to the question")
	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	agentID := args[0]
	question := args[1]
	chatID, _ := cmd.Flags().GetString("chat")
	userID, _ := cmd.Flags().GetString("user")
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
	conversationRepo := repository.NewConversationRepository(pool)
	txRunner := repository.NewTxRunner(pool)
	runnerClient := runner.NewClient(cfg.RunnerCommand, cfg.RunnerTimeout())

	responderSvc := service.NewResponderService(agentRepo, knowledgeRepo, documentRepo, conversationRepo, runnerClient, provider, txRunner)

	answer, err := responderSvc.Ask(ctx, service.AskInput{
		AgentID:  agentID,
		ChatID:   chatID,
		UserID:   userID,
		Question: question,
	})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if outputFormat == "json" {
		data := map[string]interface{}{
			"agent_id": agentID,
			"chat_id":  chatID,
			"answer":   answer,
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		fmt.Println(answer)
	}

	return nil
}
