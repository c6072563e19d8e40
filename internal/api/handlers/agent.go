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

type AgentService interface {
	CreateAgent(ctx context.Context, input service.CreateAgentInput) (*domain.Agent, error)
	SetBusinessContext(ctx context.Context, agentID string, input service.BusinessContextInput) (*domain.BusinessContext, error)
	GetAgent(ctx context.Context, id string) (*domain.Agent, error)
	ListActiveAgents(ctx context.Context) ([]*domain.Agent, error)
	SetStatus(ctx context.Context, id string, status domain.AgentStatus) error
}

type AgentHandler struct {
	svc AgentService
}

func NewAgentHandler(svc AgentService) *AgentHandler {
	return &AgentHandler{svc: svc}
}

type CreateAgentRequest struct {
	CompanyName string `json:"company_name"`
	Codename    string `json:"codename"`
	Specialty   string `json:"specialty"`
	Tone        string `json:"tone"`
	Tagline     string `json:"tagline"`
}

type BusinessContextRequest struct {
	Industry             string `json:"industry"`
	Concerns             string `json:"concerns"`
	DocumentTypes        string `json:"document_types"`
	MonitoringPriorities string `json:"monitoring_priorities"`
}

type SetStatusRequest struct {
	Status string `json:"status"`
}

type AgentResponse struct {
	ID          string `json:"id"`
	CompanyName string `json:"company_name"`
	Codename    string `json:"codename,omitempty"`
	Specialty   string `json:"specialty,omitempty"`
	Tone        string `json:"tone,omitempty"`
	Tagline     string `json:"tagline,omitempty"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

func agentToResponse(a *domain.Agent) *AgentResponse {
	return &AgentResponse{
		ID:          a.ID,
		CompanyName: a.CompanyName,
		Codename:    a.Codename,
		Specialty:   a.Specialty,
		Tone:        a.Tone,
		Tagline:     a.Tagline,
		Status:      string(a.Status),
		CreatedAt:   a.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func (h *AgentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.CompanyName == "" {
		api.Error(w, http.StatusBadRequest, "company_name is required")
		return
	}

	agent, err := h.svc.CreateAgent(r.Context(), service.CreateAgentInput{
		CompanyName: req.CompanyName,
		Codename:    req.Codename,
		Specialty:   req.Specialty,
		Tone:        req.Tone,
		Tagline:     req.Tagline,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, agentToResponse(agent))
}

func (h *AgentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "agentID")

	agent, err := h.svc.GetAgent(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, agentToResponse(agent))
}

func (h *AgentHandler) List(w http.ResponseWriter, r *http.Request) {
	agents, err := h.svc.ListActiveAgents(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := make([]*AgentResponse, 0, len(agents))
	for _, a := range agents {
		resp = append(resp, agentToResponse(a))
	}
	api.Success(w, http.StatusOK, resp)
}

func (h *AgentHandler) SetBusinessContext(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "agentID")

	var req BusinessContextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	bc, err := h.svc.SetBusinessContext(r.Context(), id, service.BusinessContextInput{
		Industry:             req.Industry,
		Concerns:             req.Concerns,
		DocumentTypes:        req.DocumentTypes,
		MonitoringPriorities: req.MonitoringPriorities,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, map[string]string{"id": bc.ID})
}

func (h *AgentHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "agentID")

	var req SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status := domain.AgentStatus(req.Status)
	switch status {
	case domain.AgentStatusPending, domain.AgentStatusActive, domain.AgentStatusPaused:
	default:
		api.Error(w, http.StatusBadRequest, "invalid status")
		return
	}

	if err := h.svc.SetStatus(r.Context(), id, status); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]string{"status": req.Status})
}
