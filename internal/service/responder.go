package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/clausewise/counselai/internal/domain"
	"github.com/clausewise/counselai/internal/retrieval"
	"github.com/clausewise/counselai/internal/telemetry"
	"golang.org/x/sync/errgroup"
)

// ConversationRepositoryInterface defines the repository interface for conversation persistence
type ConversationRepositoryInterface interface {
	CreateTurn(ctx context.Context, t *domain.ConversationTurn) error
	Recent(ctx context.Context, agentID, chatID string, n int) ([]*domain.ConversationTurn, error)
	CountByAgent(ctx context.Context, agentID string) (int64, error)
}

// AgentRepositoryInterface defines the repository interface for agent profiles
type AgentRepositoryInterface interface {
	Create(ctx context.Context, a *domain.Agent) error
	GetByID(ctx context.Context, id string) (*domain.Agent, error)
	ListActive(ctx context.Context) ([]*domain.Agent, error)
	UpdateStatus(ctx context.Context, id string, status domain.AgentStatus) error
	CreateBusinessContext(ctx context.Context, bc *domain.BusinessContext) error
	GetBusinessContext(ctx context.Context, agentID string) (*domain.BusinessContext, error)
}

// RunnerInterface is the primary generation tier: an external agent-runner
// executable invoked per question.
type RunnerInterface interface {
	Run(ctx context.Context, sessionID, message string) (string, error)
}

// ChatMessage is one prior turn handed to the hosted-model fallback.
type ChatMessage struct {
	Role    string
	Content string
}

// ModelProviderInterface is the fallback generation tier: a hosted model
// invoked once, without retry, when the runner fails.
type ModelProviderInterface interface {
	Generate(ctx context.Context, systemPrompt string, messages []ChatMessage) (string, error)
}

// historyTurns is how many prior turns frame each question.
const historyTurns = 10

// promptContext is everything assembled for one generation: profile summary,
// ranked document excerpts, ranked chat excerpts, and the prior turns.
type promptContext struct {
	agent     *domain.Agent
	profile   string
	documents string
	knowledge string
	history   []*domain.ConversationTurn
}

// ResponderService answers questions for an agent. Generation is two-tier:
// the external runner first, the hosted model on any runner failure. The
// question/answer turn pair is persisted only after a tier succeeds, in one
// transaction, so a failed generation leaves no orphan user turn.
type ResponderService struct {
	agentRepo        AgentRepositoryInterface
	knowledgeRepo    KnowledgeRepositoryInterface
	documentRepo     DocumentRepositoryInterface
	conversationRepo ConversationRepositoryInterface
	runner           RunnerInterface
	provider         ModelProviderInterface
	txRunner         TxRunner
	uuidGen          UUIDGenerator
}

// NewResponderService creates a new ResponderService instance
func NewResponderService(
	agentRepo AgentRepositoryInterface,
	knowledgeRepo KnowledgeRepositoryInterface,
	documentRepo DocumentRepositoryInterface,
	conversationRepo ConversationRepositoryInterface,
	runner RunnerInterface,
	provider ModelProviderInterface,
	txRunner TxRunner,
) *ResponderService {
	return &ResponderService{
		agentRepo:        agentRepo,
		knowledgeRepo:    knowledgeRepo,
		documentRepo:     documentRepo,
		conversationRepo: conversationRepo,
		runner:           runner,
		provider:         provider,
		txRunner:         txRunner,
		uuidGen:          &DefaultUUIDGenerator{},
	}
}

// NewResponderServiceWithUUIDGen creates a new ResponderService with custom UUID generator (for testing)
func NewResponderServiceWithUUIDGen(
	agentRepo AgentRepositoryInterface,
	knowledgeRepo KnowledgeRepositoryInterface,
	documentRepo DocumentRepositoryInterface,
	conversationRepo ConversationRepositoryInterface,
	runner RunnerInterface,
	provider ModelProviderInterface,
	txRunner TxRunner,
	uuidGen UUIDGenerator,
) *ResponderService {
	s := NewResponderService(agentRepo, knowledgeRepo, documentRepo, conversationRepo, runner, provider, txRunner)
	s.uuidGen = uuidGen
	return s
}

// AskInput represents one incoming question
type AskInput struct {
	AgentID  string
	ChatID   string
	UserID   string
	Question string
}

// Ask answers a question using the agent's accumulated knowledge. On success
// the question and answer are stored as a conversation turn pair; when both
// generation tiers fail nothing is persisted and ErrGenerationFailed is
// returned.
func (s *ResponderService) Ask(ctx context.Context, input AskInput) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "ResponderService.Ask", telemetry.SpanAttributes{
		AgentID:   input.AgentID,
		ChatID:    input.ChatID,
		Operation: "ask",
	})
	defer span.End()

	if input.Question == "" {
		return "", domain.NewDomainError(domain.ErrCodeValidation, "question must not be empty")
	}

	pc, err := s.assemble(ctx, input.AgentID, input.ChatID, input.Question)
	if err != nil {
		span.SetError(err)
		return "", err
	}

	// Once generation starts the operation no longer follows the caller:
	// a disconnect must not waste a finished answer or leave it unpersisted.
	ctx = context.WithoutCancel(ctx)

	answer, err := s.generate(ctx, pc, input.Question)
	if err != nil {
		span.SetError(err)
		return "", err
	}

	// The answer is stamped one microsecond after the question so the pair
	// keeps its order under (created_at, id) sorting; with equal timestamps
	// the random-UUID tiebreak would shuffle user and assistant turns.
	now := time.Now().UTC()
	userTurn := domain.NewConversationTurn(
		s.uuidGen.NewString(), input.AgentID, input.ChatID, input.UserID,
		domain.TurnRoleUser, input.Question, now,
	)
	assistantTurn := domain.NewConversationTurn(
		s.uuidGen.NewString(), input.AgentID, input.ChatID, input.UserID,
		domain.TurnRoleAssistant, answer, now.Add(time.Microsecond),
	)

	err = s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Conversations().CreateTurn(ctx, userTurn); err != nil {
			return err
		}
		return repos.Conversations().CreateTurn(ctx, assistantTurn)
	})
	if err != nil {
		span.SetError(err)
		return "", err
	}

	return answer, nil
}

// RecentTurns returns the n most recent turns for a chat, oldest first.
func (s *ResponderService) RecentTurns(ctx context.Context, agentID, chatID string, n int) ([]*domain.ConversationTurn, error) {
	ctx, span := telemetry.StartSpan(ctx, "ResponderService.RecentTurns", telemetry.SpanAttributes{
		AgentID:   agentID,
		ChatID:    chatID,
		Operation: "recent_turns",
	})
	defer span.End()

	if n <= 0 {
		n = historyTurns
	}
	turns, err := s.conversationRepo.Recent(ctx, agentID, chatID, n)
	if err != nil {
		return nil, err
	}
	reverseTurns(turns)
	return turns, nil
}

// assemble gathers everything a generation needs. The profile read, the
// history read, and the two rankings are independent, so they run
// concurrently; the first failure cancels the rest.
func (s *ResponderService) assemble(ctx context.Context, agentID, chatID, question string) (*promptContext, error) {
	pc := &promptContext{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		agent, err := s.agentRepo.GetByID(gctx, agentID)
		if err != nil {
			return err
		}
		bc, err := s.agentRepo.GetBusinessContext(gctx, agentID)
		if err != nil {
			return err
		}
		pc.agent = agent
		pc.profile = agent.PromptSummary(bc)
		return nil
	})

	g.Go(func() error {
		turns, err := s.conversationRepo.Recent(gctx, agentID, chatID, historyTurns)
		if err != nil {
			return err
		}
		reverseTurns(turns)
		pc.history = turns
		return nil
	})

	g.Go(func() error {
		items, err := s.knowledgeRepo.RecentWindow(gctx, agentID, retrieval.KnowledgeWindowSize)
		if err != nil {
			return err
		}
		pc.knowledge = retrieval.RankKnowledge(items, question, retrieval.DefaultKnowledgeLimit)
		return nil
	})

	g.Go(func() error {
		docs, err := s.documentRepo.ListByAgent(gctx, agentID)
		if err != nil {
			return err
		}
		pc.documents = retrieval.RankDocuments(docs, question, retrieval.DefaultDocumentBudget)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pc, nil
}

// generate drives the two-tier chain. Any runner failure, including empty
// output, falls through to the hosted model; only both tiers failing is an
// error, and it is always ErrGenerationFailed regardless of cause.
func (s *ResponderService) generate(ctx context.Context, pc *promptContext, question string) (string, error) {
	message := buildRunnerMessage(pc, question)

	answer, err := s.runner.Run(ctx, pc.agent.ID, message)
	if err == nil && strings.TrimSpace(answer) != "" {
		return strings.TrimSpace(answer), nil
	}
	if err != nil {
		log.Printf("responder: runner failed for agent %s, falling back: %v", pc.agent.ID, err)
	} else {
		log.Printf("responder: runner returned empty output for agent %s, falling back", pc.agent.ID)
	}

	systemPrompt := buildSystemPrompt(pc)
	messages := make([]ChatMessage, 0, len(pc.history)+1)
	for _, t := range pc.history {
		messages = append(messages, ChatMessage{Role: string(t.Role), Content: t.Content})
	}
	messages = append(messages, ChatMessage{Role: string(domain.TurnRoleUser), Content: question})

	answer, err = s.provider.Generate(ctx, systemPrompt, messages)
	if err != nil || strings.TrimSpace(answer) == "" {
		if err != nil {
			log.Printf("responder: fallback provider failed for agent %s: %v", pc.agent.ID, err)
		}
		return "", domain.ErrGenerationFailed
	}
	return strings.TrimSpace(answer), nil
}

// buildRunnerMessage concatenates the bounded prompt context for the runner,
// which keeps its own session history keyed by the agent ID.
func buildRunnerMessage(pc *promptContext, question string) string {
	var b strings.Builder
	b.WriteString(pc.profile)
	if pc.documents != "" {
		b.WriteString("\nRelevant document excerpts:\n")
		b.WriteString(pc.documents)
		b.WriteString("\n")
	}
	if pc.knowledge != "" {
		b.WriteString("\nRelevant chat history:\n")
		b.WriteString(pc.knowledge)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nQuestion: %s", question)
	return b.String()
}

// buildSystemPrompt frames the hosted-model fallback, which instead receives
// the prior turns as structured message history.
func buildSystemPrompt(pc *promptContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, a legal and business assistant.\n\n", pc.agent.DisplayName())
	b.WriteString(pc.profile)
	if pc.documents != "" {
		b.WriteString("\nRelevant document excerpts:\n")
		b.WriteString(pc.documents)
		b.WriteString("\n")
	}
	if pc.knowledge != "" {
		b.WriteString("\nRelevant chat history:\n")
		b.WriteString(pc.knowledge)
		b.WriteString("\n")
	}
	b.WriteString("\nAnswer using the context above. Be concrete; cite document names when you rely on them.")
	return b.String()
}

func reverseTurns(turns []*domain.ConversationTurn) {
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
}
