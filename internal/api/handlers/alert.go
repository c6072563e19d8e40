package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/clausewise/counselai/internal/api"
	"github.com/clausewise/counselai/internal/domain"
	"github.com/clausewise/counselai/internal/service"
	"github.com/go-chi/chi/v5"
)

type AlertService interface {
	ListAlerts(ctx context.Context, input service.ListAlertsInput) (*service.ListAlertsOutput, error)
	Acknowledge(ctx context.Context, id string) error
}

type SweepService interface {
	Sweep(ctx context.Context, agentID string) ([]*domain.Alert, error)
}

type AlertHandler struct {
	alerts AlertService
	sweeps SweepService
}

func NewAlertHandler(alerts AlertService, sweeps SweepService) *AlertHandler {
	return &AlertHandler{alerts: alerts, sweeps: sweeps}
}

type AlertResponse struct {
	ID           string `json:"id"`
	AgentID      string `json:"agent_id"`
	Type         string `json:"type"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Severity     string `json:"severity"`
	Acknowledged bool   `json:"acknowledged"`
	CreatedAt    string `json:"created_at"`
}

type ListAlertsResponse struct {
	Alerts  []AlertResponse `json:"alerts"`
	Cursor  string          `json:"cursor,omitempty"`
	HasMore bool            `json:"has_more"`
}

type SweepResponse struct {
	AlertsWritten int             `json:"alerts_written"`
	Alerts        []AlertResponse `json:"alerts"`
}

func alertToResponse(a *domain.Alert) AlertResponse {
	return AlertResponse{
		ID:           a.ID,
		AgentID:      a.AgentID,
		Type:         string(a.Type),
		Title:        a.Title,
		Description:  a.Description,
		Severity:     string(a.Severity),
		Acknowledged: a.Acknowledged,
		CreatedAt:    a.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentID")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			api.Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	out, err := h.alerts.ListAlerts(r.Context(), service.ListAlertsInput{
		AgentID: agentID,
		Cursor:  r.URL.Query().Get("cursor"),
		Limit:   limit,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := ListAlertsResponse{
		Alerts:  make([]AlertResponse, 0, len(out.Items)),
		Cursor:  out.Cursor,
		HasMore: out.HasMore,
	}
	for _, a := range out.Items {
		resp.Alerts = append(resp.Alerts, alertToResponse(a))
	}
	api.Success(w, http.StatusOK, resp)
}

func (h *AlertHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "alertID")

	if err := h.alerts.Acknowledge(r.Context(), id); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]bool{"acknowledged": true})
}

// Sweep triggers one synchronous monitoring sweep for an agent. A sweep that
// finds nothing, or whose output could not be parsed, succeeds with zero
// alerts.
func (h *AlertHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentID")

	alerts, err := h.sweeps.Sweep(r.Context(), agentID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := SweepResponse{
		AlertsWritten: len(alerts),
		Alerts:        make([]AlertResponse, 0, len(alerts)),
	}
	for _, a := range alerts {
		resp.Alerts = append(resp.Alerts, alertToResponse(a))
	}
	api.Success(w, http.StatusOK, resp)
}
