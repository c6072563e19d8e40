package service

import (
	"context"
	"testing"
	"time"

	"github.com/clausewise/counselai/internal/domain"
	"github.com/clausewise/counselai/internal/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func mustParseTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed
}

// TestAlertService_ListAlerts tests the ListAlerts method
func TestAlertService_ListAlerts(t *testing.T) {
	ctx := context.Background()

	t.Run("returns a page with defaults applied", func(t *testing.T) {
		mockAlertRepo := new(MockAlertRepository)

		service := NewAlertService(mockAlertRepo)

		mockAlertRepo.On("ListByAgentWithCursor", mock.Anything, "agent-1", (*pagination.Cursor)(nil), defaultAlertPageSize).
			Return(&AlertPageResult{
				Items:   []*domain.Alert{{ID: "alert-1"}},
				HasMore: false,
			}, nil)

		out, err := service.ListAlerts(ctx, ListAlertsInput{AgentID: "agent-1"})

		require.NoError(t, err)
		assert.Len(t, out.Items, 1)
		assert.False(t, out.HasMore)
		mockAlertRepo.AssertExpectations(t)
	})

	t.Run("caps oversized page requests", func(t *testing.T) {
		mockAlertRepo := new(MockAlertRepository)

		service := NewAlertService(mockAlertRepo)

		mockAlertRepo.On("ListByAgentWithCursor", mock.Anything, "agent-1", (*pagination.Cursor)(nil), maxAlertPageSize).
			Return(&AlertPageResult{}, nil)

		_, err := service.ListAlerts(ctx, ListAlertsInput{AgentID: "agent-1", Limit: 10000})

		require.NoError(t, err)
		mockAlertRepo.AssertExpectations(t)
	})

	t.Run("decodes the cursor before querying", func(t *testing.T) {
		mockAlertRepo := new(MockAlertRepository)

		service := NewAlertService(mockAlertRepo)

		encoded := pagination.EncodeCursor("alert-9", mustParseTime(t, "2026-08-01T10:00:00Z"))

		mockAlertRepo.On("ListByAgentWithCursor", mock.Anything, "agent-1", mock.MatchedBy(func(c *pagination.Cursor) bool {
			return c != nil && c.LastID == "alert-9"
		}), 20).Return(&AlertPageResult{}, nil)

		_, err := service.ListAlerts(ctx, ListAlertsInput{AgentID: "agent-1", Cursor: encoded, Limit: 20})

		require.NoError(t, err)
		mockAlertRepo.AssertExpectations(t)
	})

	t.Run("rejects a malformed cursor", func(t *testing.T) {
		mockAlertRepo := new(MockAlertRepository)

		service := NewAlertService(mockAlertRepo)

		_, err := service.ListAlerts(ctx, ListAlertsInput{AgentID: "agent-1", Cursor: "not-a-cursor"})

		require.Error(t, err)
		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.ErrCodeValidation, domainErr.Code)
		mockAlertRepo.AssertNotCalled(t, "ListByAgentWithCursor", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

// TestAlertService_Acknowledge tests the Acknowledge method
func TestAlertService_Acknowledge(t *testing.T) {
	ctx := context.Background()

	t.Run("acknowledges an alert", func(t *testing.T) {
		mockAlertRepo := new(MockAlertRepository)

		service := NewAlertService(mockAlertRepo)

		mockAlertRepo.On("Acknowledge", mock.Anything, "alert-1").Return(nil)

		require.NoError(t, service.Acknowledge(ctx, "alert-1"))
		mockAlertRepo.AssertExpectations(t)
	})

	t.Run("propagates not-found", func(t *testing.T) {
		mockAlertRepo := new(MockAlertRepository)

		service := NewAlertService(mockAlertRepo)

		mockAlertRepo.On("Acknowledge", mock.Anything, "missing").Return(domain.ErrAlertNotFound)

		err := service.Acknowledge(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrAlertNotFound)
	})
}
