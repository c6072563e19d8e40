package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/clausewise/counselai/internal/domain"
	"github.com/clausewise/counselai/internal/telemetry"
)

// KnowledgeRepositoryInterface defines the repository interface for knowledge persistence
type KnowledgeRepositoryInterface interface {
	Ingest(ctx context.Context, k *domain.KnowledgeItem) (bool, error)
	RecentWindow(ctx context.Context, agentID string, windowSize int) ([]*domain.KnowledgeItem, error)
	CountByAgent(ctx context.Context, agentID string) (int64, error)
}

// DocumentRepositoryInterface defines the repository interface for document persistence
type DocumentRepositoryInterface interface {
	Create(ctx context.Context, d *domain.Document) error
	ListByAgent(ctx context.Context, agentID string) ([]*domain.Document, error)
	ListSummaries(ctx context.Context, agentID string) ([]*DocumentSummary, error)
}

// DocumentSummary is a document descriptor without the (potentially large)
// extracted content.
type DocumentSummary struct {
	ID            string
	Name          string
	Type          domain.DocumentType
	ContentLength int
	CreatedAt     time.Time
}

// StorageClientInterface archives raw uploads to object storage.
type StorageClientInterface interface {
	PutObject(ctx context.Context, key string, contentType string, body []byte) error
}

// IngestService handles knowledge and document ingestion.
type IngestService struct {
	knowledgeRepo    KnowledgeRepositoryInterface
	documentRepo     DocumentRepositoryInterface
	storageClient    StorageClientInterface
	uuidGen          UUIDGenerator
	maxDocumentChars int
}

// NewIngestService creates a new IngestService instance. storageClient may be
// nil, in which case raw uploads are not archived.
func NewIngestService(
	knowledgeRepo KnowledgeRepositoryInterface,
	documentRepo DocumentRepositoryInterface,
	storageClient StorageClientInterface,
	maxDocumentChars int,
) *IngestService {
	return &IngestService{
		knowledgeRepo:    knowledgeRepo,
		documentRepo:     documentRepo,
		storageClient:    storageClient,
		uuidGen:          &DefaultUUIDGenerator{},
		maxDocumentChars: maxDocumentChars,
	}
}

// NewIngestServiceWithUUIDGen creates a new IngestService with custom UUID generator (for testing)
func NewIngestServiceWithUUIDGen(
	knowledgeRepo KnowledgeRepositoryInterface,
	documentRepo DocumentRepositoryInterface,
	storageClient StorageClientInterface,
	maxDocumentChars int,
	uuidGen UUIDGenerator,
) *IngestService {
	return &IngestService{
		knowledgeRepo:    knowledgeRepo,
		documentRepo:     documentRepo,
		storageClient:    storageClient,
		uuidGen:          uuidGen,
		maxDocumentChars: maxDocumentChars,
	}
}

// IngestMessageInput represents one chat message delivered by an ingress adapter
type IngestMessageInput struct {
	AgentID   string
	Source    domain.KnowledgeSource
	ChatID    string
	ChatTitle string
	UserID    string
	Username  string
	DedupKey  string
	ThreadID  string
	Content   string
	Metadata  map[string]string
}

// IngestDocumentInput represents one extracted document upload
type IngestDocumentInput struct {
	AgentID  string
	Name     string
	Type     domain.DocumentType
	Content  string
	Metadata map[string]string
}

// IngestMessage stores one chat message as a knowledge item. Re-delivery of a
// message the agent has already seen (same agent and dedup key) returns the
// item with inserted=false and writes nothing; chat adapters deliver
// at-least-once and duplicates are expected, not errors.
func (s *IngestService) IngestMessage(ctx context.Context, input IngestMessageInput) (*domain.KnowledgeItem, bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "IngestService.IngestMessage", telemetry.SpanAttributes{
		AgentID:   input.AgentID,
		ChatID:    input.ChatID,
		Operation: "ingest_message",
	})
	defer span.End()

	source := input.Source
	if source == "" {
		source = domain.KnowledgeSourceChatMessage
	}

	item := domain.NewKnowledgeItem(
		s.uuidGen.NewString(),
		input.AgentID,
		source,
		input.ChatID,
		input.ChatTitle,
		input.UserID,
		input.Username,
		input.DedupKey,
		input.ThreadID,
		input.Content,
		input.Metadata,
		time.Now().UTC(),
	)

	if err := domain.ValidateKnowledgeItem(item); err != nil {
		return nil, false, err
	}

	inserted, err := s.knowledgeRepo.Ingest(ctx, item)
	if err != nil {
		span.SetError(err)
		return nil, false, err
	}

	return item, inserted, nil
}

// IngestDocument stores one extracted document, truncating oversized content
// to the configured cap. The original content is archived to object storage
// when a storage client is configured; archive failures are logged, never
// surfaced, since the truncated copy in the store is what retrieval reads.
func (s *IngestService) IngestDocument(ctx context.Context, input IngestDocumentInput) (*domain.Document, error) {
	ctx, span := telemetry.StartSpan(ctx, "IngestService.IngestDocument", telemetry.SpanAttributes{
		AgentID:   input.AgentID,
		Operation: "ingest_document",
	})
	defer span.End()

	doc := domain.NewDocument(
		s.uuidGen.NewString(),
		input.AgentID,
		input.Name,
		input.Type,
		input.Content,
		input.Metadata,
		s.maxDocumentChars,
		time.Now().UTC(),
	)

	if err := domain.ValidateDocument(doc); err != nil {
		return nil, err
	}

	if err := s.documentRepo.Create(ctx, doc); err != nil {
		span.SetError(err)
		return nil, err
	}

	if s.storageClient != nil {
		key := fmt.Sprintf("agents/%s/documents/%s", doc.AgentID, doc.ID)
		if err := s.storageClient.PutObject(ctx, key, "text/plain; charset=utf-8", []byte(input.Content)); err != nil {
			log.Printf("ingest: failed to archive document %s: %v", doc.ID, err)
		}
	}

	return doc, nil
}

// ListDocuments returns document descriptors for an agent, newest first.
func (s *IngestService) ListDocuments(ctx context.Context, agentID string) ([]*DocumentSummary, error) {
	ctx, span := telemetry.StartSpan(ctx, "IngestService.ListDocuments", telemetry.SpanAttributes{
		AgentID:   agentID,
		Operation: "list_documents",
	})
	defer span.End()

	return s.documentRepo.ListSummaries(ctx, agentID)
}
