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

type ResponderService interface {
	Ask(ctx context.Context, input service.AskInput) (string, error)
	RecentTurns(ctx context.Context, agentID, chatID string, n int) ([]*domain.ConversationTurn, error)
}

type AskHandler struct {
	svc ResponderService
}

func NewAskHandler(svc ResponderService) *AskHandler {
	return &AskHandler{svc: svc}
}

type AskRequest struct {
	ChatID   string `json:"chat_id"`
	UserID   string `json:"user_id"`
	Question string `json:"question"`
}

type AskResponse struct {
	Answer string `json:"answer"`
}

type TurnResponse struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentID")

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Question == "" {
		api.Error(w, http.StatusBadRequest, "question is required")
		return
	}
	if req.ChatID == "" {
		api.Error(w, http.StatusBadRequest, "chat_id is required")
		return
	}

	answer, err := h.svc.Ask(r.Context(), service.AskInput{
		AgentID:  agentID,
		ChatID:   req.ChatID,
		UserID:   req.UserID,
		Question: req.Question,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, AskResponse{Answer: answer})
}

func (h *AskHandler) History(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentID")
	chatID := r.URL.Query().Get("chat_id")
	if chatID == "" {
		api.Error(w, http.StatusBadRequest, "chat_id is required")
		return
	}

	turns, err := h.svc.RecentTurns(r.Context(), agentID, chatID, 0)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := make([]TurnResponse, 0, len(turns))
	for _, t := range turns {
		resp = append(resp, TurnResponse{
			ID:        t.ID,
			Role:      string(t.Role),
			Content:   t.Content,
			CreatedAt: t.CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}
	api.Success(w, http.StatusOK, resp)
}
