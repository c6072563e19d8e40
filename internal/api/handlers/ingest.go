package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/clausewise/counselai/internal/api"
	"github.com/clausewise/counselai/internal/domain"
	"github.com/clausewise/counselai/internal/service"
	"github.com/go-chi/chi/v5"
)

type IngestService interface {
	IngestMessage(ctx context.Context, input service.IngestMessageInput) (*domain.KnowledgeItem, bool, error)
	IngestDocument(ctx context.Context, input service.IngestDocumentInput) (*domain.Document, error)
	ListDocuments(ctx context.Context, agentID string) ([]*service.DocumentSummary, error)
}

type IngestHandler struct {
	svc IngestService
}

func NewIngestHandler(svc IngestService) *IngestHandler {
	return &IngestHandler{svc: svc}
}

type IngestMessageRequest struct {
	Source    string            `json:"source,omitempty"`
	ChatID    string            `json:"chat_id"`
	ChatTitle string            `json:"chat_title,omitempty"`
	UserID    string            `json:"user_id"`
	Username  string            `json:"username,omitempty"`
	DedupKey  string            `json:"dedup_key"`
	ThreadID  string            `json:"thread_id,omitempty"`
	Content   string            `json:"content"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type IngestMessageResponse struct {
	ID       string `json:"id"`
	Inserted bool   `json:"inserted"`
}

type IngestDocumentRequest struct {
	Name     string            `json:"name"`
	Type     string            `json:"type"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type DocumentResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	ContentLength int    `json:"content_length"`
	CreatedAt     string `json:"created_at"`
}

// IngestMessage accepts one chat message from an ingress adapter. Duplicate
// deliveries succeed with inserted=false.
func (h *IngestHandler) IngestMessage(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentID")

	var req IngestMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.DedupKey == "" {
		api.Error(w, http.StatusBadRequest, "dedup_key is required")
		return
	}
	if req.Content == "" {
		api.Error(w, http.StatusBadRequest, "content is required")
		return
	}

	item, inserted, err := h.svc.IngestMessage(r.Context(), service.IngestMessageInput{
		AgentID:   agentID,
		Source:    domain.KnowledgeSource(req.Source),
		ChatID:    req.ChatID,
		ChatTitle: req.ChatTitle,
		UserID:    req.UserID,
		Username:  req.Username,
		DedupKey:  req.DedupKey,
		ThreadID:  req.ThreadID,
		Content:   req.Content,
		Metadata:  req.Metadata,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	status := http.StatusCreated
	if !inserted {
		status = http.StatusOK
	}
	api.Success(w, status, IngestMessageResponse{ID: item.ID, Inserted: inserted})
}

func (h *IngestHandler) IngestDocument(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentID")

	var req IngestDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		api.Error(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Content == "" {
		api.Error(w, http.StatusBadRequest, "content is required")
		return
	}

	docType := domain.DocumentType(req.Type)
	if req.Type == "" {
		docType = domain.DocumentTypeOther
	}

	doc, err := h.svc.IngestDocument(r.Context(), service.IngestDocumentInput{
		AgentID:  agentID,
		Name:     req.Name,
		Type:     docType,
		Content:  req.Content,
		Metadata: req.Metadata,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, DocumentResponse{
		ID:            doc.ID,
		Name:          doc.Name,
		Type:          string(doc.Type),
		ContentLength: len(doc.Content),
		CreatedAt:     doc.CreatedAt.Format("2006-01-02T15:04:05Z"),
	})
}

func (h *IngestHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentID")

	summaries, err := h.svc.ListDocuments(r.Context(), agentID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := make([]DocumentResponse, 0, len(summaries))
	for _, s := range summaries {
		resp = append(resp, DocumentResponse{
			ID:            s.ID,
			Name:          s.Name,
			Type:          string(s.Type),
			ContentLength: s.ContentLength,
			CreatedAt:     s.CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}
	api.Success(w, http.StatusOK, resp)
}
