package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/clausewise/counselai/internal/domain"
	"github.com/clausewise/counselai/internal/pagination"
	"github.com/clausewise/counselai/internal/retrieval"
	"github.com/clausewise/counselai/internal/telemetry"
	"golang.org/x/sync/errgroup"
)

// AlertRepositoryInterface defines the repository interface for alert persistence
type AlertRepositoryInterface interface {
	Create(ctx context.Context, a *domain.Alert) error
	ListByAgentWithCursor(ctx context.Context, agentID string, cursor *pagination.Cursor, limit int) (*AlertPageResult, error)
	Acknowledge(ctx context.Context, id string) error
	CountByAgent(ctx context.Context, agentID string) (int64, error)
}

// AlertPageResult is one page of alerts from a cursor listing.
type AlertPageResult struct {
	Items      []*domain.Alert
	NextCursor string
	HasMore    bool
}

// sweepQuery seeds retrieval for the risk scan; there is no user question to
// rank against, so a fixed bag of risk-category terms stands in for one.
const sweepQuery = "payment invoice overdue contract deadline vendor breach copyright policy violation"

const sweepKnowledgeLimit = 40

// SweepService scans an agent's accumulated knowledge for legal and business
// risks. It reuses the responder's two generation tiers with a risk-scan
// instruction, extracts a JSON array from the raw output, and persists one
// alert per valid entry. Unparseable output is a silent zero-alert sweep, not
// an error.
type SweepService struct {
	agentRepo     AgentRepositoryInterface
	knowledgeRepo KnowledgeRepositoryInterface
	documentRepo  DocumentRepositoryInterface
	runner        RunnerInterface
	provider      ModelProviderInterface
	txRunner      TxRunner
	uuidGen       UUIDGenerator
}

// NewSweepService creates a new SweepService instance
func NewSweepService(
	agentRepo AgentRepositoryInterface,
	knowledgeRepo KnowledgeRepositoryInterface,
	documentRepo DocumentRepositoryInterface,
	runner RunnerInterface,
	provider ModelProviderInterface,
	txRunner TxRunner,
) *SweepService {
	return &SweepService{
		agentRepo:     agentRepo,
		knowledgeRepo: knowledgeRepo,
		documentRepo:  documentRepo,
		runner:        runner,
		provider:      provider,
		txRunner:      txRunner,
		uuidGen:       &DefaultUUIDGenerator{},
	}
}

// NewSweepServiceWithUUIDGen creates a new SweepService with custom UUID generator (for testing)
func NewSweepServiceWithUUIDGen(
	agentRepo AgentRepositoryInterface,
	knowledgeRepo KnowledgeRepositoryInterface,
	documentRepo DocumentRepositoryInterface,
	runner RunnerInterface,
	provider ModelProviderInterface,
	txRunner TxRunner,
	uuidGen UUIDGenerator,
) *SweepService {
	s := NewSweepService(agentRepo, knowledgeRepo, documentRepo, runner, provider, txRunner)
	s.uuidGen = uuidGen
	return s
}

// Sweep runs one risk scan for an agent and returns the alerts written.
// Valid entries in the model output become alerts in a single transaction;
// entries missing fields or using unrecognized enum values are skipped
// individually. No extractable array means zero alerts, not a failure.
func (s *SweepService) Sweep(ctx context.Context, agentID string) ([]*domain.Alert, error) {
	ctx, span := telemetry.StartSpan(ctx, "SweepService.Sweep", telemetry.SpanAttributes{
		AgentID:   agentID,
		Operation: "sweep",
	})
	defer span.End()

	agent, err := s.agentRepo.GetByID(ctx, agentID)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	bc, err := s.agentRepo.GetBusinessContext(ctx, agentID)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	// The scan outlives the caller: a sweep that produced findings writes
	// them even if whoever triggered it has disconnected.
	ctx = context.WithoutCancel(ctx)

	raw, err := s.scan(ctx, agent, bc)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	candidates, ok := extractCandidates(raw)
	if !ok {
		log.Printf("sweep: no parseable alert array for agent %s, wrote 0 alerts", agentID)
		return nil, nil
	}

	now := time.Now().UTC()
	var alerts []*domain.Alert
	for _, c := range candidates {
		alert, err := c.ToAlert(s.uuidGen.NewString(), agentID, now)
		if err != nil {
			log.Printf("sweep: skipping alert candidate for agent %s: %v", agentID, err)
			continue
		}
		alerts = append(alerts, alert)
	}

	if len(alerts) > 0 {
		err = s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
			for _, a := range alerts {
				if err := repos.Alerts().Create(ctx, a); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			span.SetError(err)
			return nil, err
		}
	}

	log.Printf("sweep: wrote %d alerts for agent %s", len(alerts), agentID)
	return alerts, nil
}

// scan drives the risk instruction through runner-then-fallback. The runner
// keeps its own session history; the fallback has none, so it gets retrieved
// chat and document context inline instead.
func (s *SweepService) scan(ctx context.Context, agent *domain.Agent, bc *domain.BusinessContext) (string, error) {
	instruction := buildSweepInstruction(agent, bc)

	raw, err := s.runner.Run(ctx, agent.ID, instruction)
	if err == nil && strings.TrimSpace(raw) != "" {
		return raw, nil
	}
	if err != nil {
		log.Printf("sweep: runner failed for agent %s, falling back: %v", agent.ID, err)
	} else {
		log.Printf("sweep: runner returned empty output for agent %s, falling back", agent.ID)
	}

	var knowledge, documents string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := s.knowledgeRepo.RecentWindow(gctx, agent.ID, retrieval.KnowledgeWindowSize)
		if err != nil {
			return err
		}
		knowledge = retrieval.RankKnowledge(items, sweepQuery, sweepKnowledgeLimit)
		return nil
	})
	g.Go(func() error {
		docs, err := s.documentRepo.ListByAgent(gctx, agent.ID)
		if err != nil {
			return err
		}
		documents = retrieval.RankDocuments(docs, sweepQuery, retrieval.DefaultDocumentBudget)
		return nil
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(instruction)
	if documents != "" {
		b.WriteString("\n\nDocument excerpts:\n")
		b.WriteString(documents)
	}
	if knowledge != "" {
		b.WriteString("\n\nRecent chat activity:\n")
		b.WriteString(knowledge)
	}

	raw, err = s.provider.Generate(ctx, "You are a risk-monitoring assistant for a company's legal operations.", []ChatMessage{
		{Role: string(domain.TurnRoleUser), Content: b.String()},
	})
	if err != nil {
		log.Printf("sweep: fallback provider failed for agent %s: %v", agent.ID, err)
		return "", domain.ErrGenerationFailed
	}
	return raw, nil
}

func buildSweepInstruction(agent *domain.Agent, bc *domain.BusinessContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Review everything you know about %s for legal and business risks.\n\n", agent.CompanyName)
	b.WriteString(agent.PromptSummary(bc))
	if bc != nil && bc.MonitoringPriorities != "" {
		fmt.Fprintf(&b, "Monitoring priorities: %s\n", bc.MonitoringPriorities)
	}
	b.WriteString("\nRespond with ONLY a JSON array of findings, ")
	b.WriteString(`each an object {"type", "title", "description", "severity"}. `)
	b.WriteString("type is one of: payment-overdue, vendor-breach, ip-infringement, deadline, policy-violation, other. ")
	b.WriteString("severity is one of: low, medium, high, critical. ")
	b.WriteString("Respond with [] if there are no findings.")
	return b.String()
}

// extractCandidates pulls the first top-level JSON array out of raw model
// output, which routinely wraps the array in prose or code fences. Entries
// are decoded one at a time so a single type-mismatched field (a numeric
// title, say) drops that entry alone, not the whole batch. Returns false
// only when no array can be located at all.
func extractCandidates(raw string) ([]domain.AlertCandidate, bool) {
	arr, ok := extractJSONArray(raw)
	if !ok {
		return nil, false
	}
	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(arr), &entries); err != nil {
		return nil, false
	}
	candidates := make([]domain.AlertCandidate, 0, len(entries))
	for _, entry := range entries {
		var c domain.AlertCandidate
		if err := json.Unmarshal(entry, &c); err != nil {
			log.Printf("sweep: skipping undecodable alert entry: %v", err)
			continue
		}
		candidates = append(candidates, c)
	}
	return candidates, true
}

// extractJSONArray scans for the first '[' and returns the substring through
// its matching ']', tracking nesting and string literals so brackets inside
// quoted values do not terminate the scan early.
func extractJSONArray(s string) (string, bool) {
	start := strings.IndexByte(s, '[')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
