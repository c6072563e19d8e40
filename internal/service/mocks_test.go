package service

import (
	"context"

	"github.com/clausewise/counselai/internal/domain"
	"github.com/clausewise/counselai/internal/pagination"
	"github.com/stretchr/testify/mock"
)

// MockKnowledgeRepository is a mock implementation of KnowledgeRepositoryInterface
type MockKnowledgeRepository struct {
	mock.Mock
}

func (m *MockKnowledgeRepository) Ingest(ctx context.Context, k *domain.KnowledgeItem) (bool, error) {
	args := m.Called(ctx, k)
	return args.Bool(0), args.Error(1)
}

func (m *MockKnowledgeRepository) RecentWindow(ctx context.Context, agentID string, windowSize int) ([]*domain.KnowledgeItem, error) {
	args := m.Called(ctx, agentID, windowSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.KnowledgeItem), args.Error(1)
}

func (m *MockKnowledgeRepository) CountByAgent(ctx context.Context, agentID string) (int64, error) {
	args := m.Called(ctx, agentID)
	return args.Get(0).(int64), args.Error(1)
}

// MockDocumentRepository is a mock implementation of DocumentRepositoryInterface
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, d *domain.Document) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDocumentRepository) ListByAgent(ctx context.Context, agentID string) ([]*domain.Document, error) {
	args := m.Called(ctx, agentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) ListSummaries(ctx context.Context, agentID string) ([]*DocumentSummary, error) {
	args := m.Called(ctx, agentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*DocumentSummary), args.Error(1)
}

// MockConversationRepository is a mock implementation of ConversationRepositoryInterface
type MockConversationRepository struct {
	mock.Mock
}

func (m *MockConversationRepository) CreateTurn(ctx context.Context, t *domain.ConversationTurn) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockConversationRepository) Recent(ctx context.Context, agentID, chatID string, n int) ([]*domain.ConversationTurn, error) {
	args := m.Called(ctx, agentID, chatID, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ConversationTurn), args.Error(1)
}

func (m *MockConversationRepository) CountByAgent(ctx context.Context, agentID string) (int64, error) {
	args := m.Called(ctx, agentID)
	return args.Get(0).(int64), args.Error(1)
}

// MockAlertRepository is a mock implementation of AlertRepositoryInterface
type MockAlertRepository struct {
	mock.Mock
}

func (m *MockAlertRepository) Create(ctx context.Context, a *domain.Alert) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAlertRepository) ListByAgentWithCursor(ctx context.Context, agentID string, cursor *pagination.Cursor, limit int) (*AlertPageResult, error) {
	args := m.Called(ctx, agentID, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AlertPageResult), args.Error(1)
}

func (m *MockAlertRepository) Acknowledge(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAlertRepository) CountByAgent(ctx context.Context, agentID string) (int64, error) {
	args := m.Called(ctx, agentID)
	return args.Get(0).(int64), args.Error(1)
}

// MockAgentRepository is a mock implementation of AgentRepositoryInterface
type MockAgentRepository struct {
	mock.Mock
}

func (m *MockAgentRepository) Create(ctx context.Context, a *domain.Agent) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAgentRepository) GetByID(ctx context.Context, id string) (*domain.Agent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Agent), args.Error(1)
}

func (m *MockAgentRepository) ListActive(ctx context.Context) ([]*domain.Agent, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Agent), args.Error(1)
}

func (m *MockAgentRepository) UpdateStatus(ctx context.Context, id string, status domain.AgentStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockAgentRepository) CreateBusinessContext(ctx context.Context, bc *domain.BusinessContext) error {
	args := m.Called(ctx, bc)
	return args.Error(0)
}

func (m *MockAgentRepository) GetBusinessContext(ctx context.Context, agentID string) (*domain.BusinessContext, error) {
	args := m.Called(ctx, agentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BusinessContext), args.Error(1)
}

// MockRunner is a mock implementation of RunnerInterface
type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Run(ctx context.Context, sessionID, message string) (string, error) {
	args := m.Called(ctx, sessionID, message)
	return args.String(0), args.Error(1)
}

// MockModelProvider is a mock implementation of ModelProviderInterface
type MockModelProvider struct {
	mock.Mock
}

func (m *MockModelProvider) Generate(ctx context.Context, systemPrompt string, messages []ChatMessage) (string, error) {
	args := m.Called(ctx, systemPrompt, messages)
	return args.String(0), args.Error(1)
}

// MockStorageClient is a mock implementation of StorageClientInterface
type MockStorageClient struct {
	mock.Mock
}

func (m *MockStorageClient) PutObject(ctx context.Context, key string, contentType string, body []byte) error {
	args := m.Called(ctx, key, contentType, body)
	return args.Error(0)
}

// MockUUIDGenerator is a mock implementation of UUIDGenerator
type MockUUIDGenerator struct {
	mock.Mock
	callCount int
	uuids     []string
}

func NewMockUUIDGenerator(uuids ...string) *MockUUIDGenerator {
	return &MockUUIDGenerator{uuids: uuids}
}

func (m *MockUUIDGenerator) NewString() string {
	if m.callCount < len(m.uuids) {
		uuid := m.uuids[m.callCount]
		m.callCount++
		return uuid
	}
	return "default-uuid"
}
