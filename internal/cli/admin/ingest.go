package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/clausewise/counselai/internal/config"
	"github.com/clausewise/counselai/internal/domain"
	"github.com/clausewise/counselai/internal/repository"
	"github.com/clausewise/counselai/internal/service"
	"github.com/clausewise/counselai/internal/storage"
	"github.com/spf13/cobra"
)

func IngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <agent-id> <file>",
		Short: "Ingest a document for an agent",
		Long:  "Read a local file and store it as a document in the agent's knowledge base",
		Args:  cobra.ExactArgs(2),
		RunE:  runIngest,
	}

	cmd.Flags().String("type", "", "Document type (pdf, text, other)")
	cmd.Flags().String("name", "", "Document name (defaults to the file name)")
	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	agentID := args[0]
	path := args[1]
	docType, _ := cmd.Flags().GetString("type")
	name, _ := cmd.Flags().GetString("name")
	outputFormat, _ := cmd.Flags().GetString("output")

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if name == "" {
		name = filepath.Base(path)
	}
	if docType == "" {
		docType = string(domain.DocumentTypeOther)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	var storageClient service.StorageClientInterface
	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		storageClient = s3Client
	}

	knowledgeRepo := repository.NewKnowledgeRepository(pool)
	documentRepo := repository.NewDocumentRepository(pool)
	ingestSvc := service.NewIngestService(knowledgeRepo, documentRepo, storageClient, cfg.MaxDocumentChars)

	doc, err := ingestSvc.IngestDocument(ctx, service.IngestDocumentInput{
		AgentID: agentID,
		Name:    name,
		Type:    domain.DocumentType(docType),
		Content: string(content),
	})
	if err != nil {
		return fmt.Errorf("failed to ingest document: %w", err)
	}

	if outputFormat == "json" {
		data := map[string]interface{}{
			"id":             doc.ID,
			"agent_id":       doc.AgentID,
			"name":           doc.Name,
			"type":           doc.Type,
			"content_length": len(doc.Content),
			"created_at":     doc.CreatedAt,
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		fmt.Printf("Document ingested: %s (%s, %d chars)\n", doc.Name, doc.ID, len(doc.Content))
	}

	return nil
}
