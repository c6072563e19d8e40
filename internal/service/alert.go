package service

import (
	"context"

	"github.com/clausewise/counselai/internal/domain"
	"github.com/clausewise/counselai/internal/pagination"
	"github.com/clausewise/counselai/internal/telemetry"
)

const (
	defaultAlertPageSize = 50
	maxAlertPageSize     = 100
)

// AlertService exposes sweep findings to operators: cursor-paged listing and
// acknowledgement. Alerts are only ever created by sweeps.
type AlertService struct {
	alertRepo AlertRepositoryInterface
}

// NewAlertService creates a new AlertService instance
func NewAlertService(alertRepo AlertRepositoryInterface) *AlertService {
	return &AlertService{alertRepo: alertRepo}
}

// ListAlertsInput represents the input for listing alerts
type ListAlertsInput struct {
	AgentID string
	Cursor  string
	Limit   int
}

// ListAlertsOutput is one page of alerts, newest first
type ListAlertsOutput struct {
	Items   []*domain.Alert
	Cursor  string
	HasMore bool
}

// ListAlerts returns a page of an agent's alerts, newest first.
func (s *AlertService) ListAlerts(ctx context.Context, input ListAlertsInput) (*ListAlertsOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "AlertService.ListAlerts", telemetry.SpanAttributes{
		AgentID:   input.AgentID,
		Operation: "list_alerts",
	})
	defer span.End()

	limit := input.Limit
	if limit <= 0 {
		limit = defaultAlertPageSize
	}
	if limit > maxAlertPageSize {
		limit = maxAlertPageSize
	}

	var cursor *pagination.Cursor
	if input.Cursor != "" {
		c, err := pagination.DecodeCursor(input.Cursor)
		if err != nil {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", err)
		}
		cursor = c
	}

	page, err := s.alertRepo.ListByAgentWithCursor(ctx, input.AgentID, cursor, limit)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	return &ListAlertsOutput{
		Items:   page.Items,
		Cursor:  page.NextCursor,
		HasMore: page.HasMore,
	}, nil
}

// Acknowledge marks an alert as seen by an operator.
func (s *AlertService) Acknowledge(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "AlertService.Acknowledge", telemetry.SpanAttributes{
		Operation: "acknowledge_alert",
	})
	defer span.End()

	if err := s.alertRepo.Acknowledge(ctx, id); err != nil {
		span.SetError(err)
		return err
	}
	return nil
}
