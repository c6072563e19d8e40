package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/clausewise/counselai/internal/api/handlers"
	"github.com/clausewise/counselai/internal/domain"
	"github.com/clausewise/counselai/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAgentService struct {
	mock.Mock
}

func (m *MockAgentService) CreateAgent(ctx context.Context, input service.CreateAgentInput) (*domain.Agent, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Agent), args.Error(1)
}

func (m *MockAgentService) SetBusinessContext(ctx context.Context, agentID string, input service.BusinessContextInput) (*domain.BusinessContext, error) {
	args := m.Called(ctx, agentID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BusinessContext), args.Error(1)
}

func (m *MockAgentService) GetAgent(ctx context.Context, id string) (*domain.Agent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Agent), args.Error(1)
}

func (m *MockAgentService) ListActiveAgents(ctx context.Context) ([]*domain.Agent, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Agent), args.Error(1)
}

func (m *MockAgentService) SetStatus(ctx context.Context, id string, status domain.AgentStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type MockIngestService struct {
	mock.Mock
}

func (m *MockIngestService) IngestMessage(ctx context.Context, input service.IngestMessageInput) (*domain.KnowledgeItem, bool, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.KnowledgeItem), args.Bool(1), args.Error(2)
}

func (m *MockIngestService) IngestDocument(ctx context.Context, input service.IngestDocumentInput) (*domain.Document, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockIngestService) ListDocuments(ctx context.Context, agentID string) ([]*service.DocumentSummary, error) {
	args := m.Called(ctx, agentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*service.DocumentSummary), args.Error(1)
}

type MockResponderService struct {
	mock.Mock
}

func (m *MockResponderService) Ask(ctx context.Context, input service.AskInput) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

func (m *MockResponderService) RecentTurns(ctx context.Context, agentID, chatID string, n int) ([]*domain.ConversationTurn, error) {
	args := m.Called(ctx, agentID, chatID, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ConversationTurn), args.Error(1)
}

type MockAlertService struct {
	mock.Mock
}

func (m *MockAlertService) ListAlerts(ctx context.Context, input service.ListAlertsInput) (*service.ListAlertsOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListAlertsOutput), args.Error(1)
}

func (m *MockAlertService) Acknowledge(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockSweepService struct {
	mock.Mock
}

func (m *MockSweepService) Sweep(ctx context.Context, agentID string) ([]*domain.Alert, error) {
	args := m.Called(ctx, agentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Alert), args.Error(1)
}

func setupRouter() (http.Handler, *MockAgentService, *MockIngestService, *MockResponderService, *MockAlertService, *MockSweepService) {
	agentSvc := new(MockAgentService)
	ingestSvc := new(MockIngestService)
	responderSvc := new(MockResponderService)
	alertSvc := new(MockAlertService)
	sweepSvc := new(MockSweepService)

	cfg := RouterConfig{
		AgentHandler:  handlers.NewAgentHandler(agentSvc),
		IngestHandler: handlers.NewIngestHandler(ingestSvc),
		AskHandler:    handlers.NewAskHandler(responderSvc),
		AlertHandler:  handlers.NewAlertHandler(alertSvc, sweepSvc),
	}

	router := NewRouter(cfg)
	return router, agentSvc, ingestSvc, responderSvc, alertSvc, sweepSvc
}

func TestRouter_HealthEndpoint(t *testing.T) {
	router, _, _, _, _, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "ok", data["status"])
}

func TestRouter_GetAgent(t *testing.T) {
	router, agentSvc, _, _, _, _ := setupRouter()

	expectedAgent := &domain.Agent{
		ID:          "agent-1",
		CompanyName: "Acme Corp",
		Codename:    "Counsel",
		Status:      domain.AgentStatusActive,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	agentSvc.On("GetAgent", mock.Anything, "agent-1").Return(expectedAgent, nil)

	req := httptest.NewRequest(http.MethodGet, "/agents/agent-1", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	agentSvc.AssertExpectations(t)
}

func TestRouter_AskRoute(t *testing.T) {
	router, _, _, responderSvc, _, _ := setupRouter()

	responderSvc.On("Ask", mock.Anything, mock.MatchedBy(func(input service.AskInput) bool {
		return input.AgentID == "agent-1" && input.Question == "What is our refund policy?"
	})).Return("Refunds are issued within 30 days.", nil)

	body := strings.NewReader(`{"chat_id": "chat-1", "question": "What is our refund policy?"}`)
	req := httptest.NewRequest(http.MethodPost, "/agents/agent-1/ask", body)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	responderSvc.AssertExpectations(t)
}

func TestRouter_SweepRoute(t *testing.T) {
	router, _, _, _, _, sweepSvc := setupRouter()

	sweepSvc.On("Sweep", mock.Anything, "agent-1").Return([]*domain.Alert{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/agents/agent-1/sweep", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	sweepSvc.AssertExpectations(t)
}

func TestRouter_AcknowledgeAlertRoute(t *testing.T) {
	router, _, _, _, alertSvc, _ := setupRouter()

	alertSvc.On("Acknowledge", mock.Anything, "alert-9").Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/alerts/alert-9/ack", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	alertSvc.AssertExpectations(t)
}

func TestRouter_UnknownRoute(t *testing.T) {
	router, _, _, _, _, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
