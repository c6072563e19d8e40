package retrieval

import (
	"regexp"
	"sort"
	"strings"

	"github.com/clausewise/counselai/internal/domain"
)

const (
	// DefaultDocumentBudget is the character ceiling for document excerpts
	// assembled into a prompt.
	DefaultDocumentBudget = 12000

	// minParagraphChars drops fragments too short to carry meaning
	// (stray headings, page numbers from PDF extraction).
	minParagraphChars = 20

	// maxScoredParagraphs caps how many matching paragraphs are selected
	// before the character budget applies.
	maxScoredParagraphs = 30

	// When fewer than backfillThreshold paragraphs match, up to
	// backfillCount unscored paragraphs are added so that thin knowledge
	// bases still produce some context.
	backfillThreshold = 5
	backfillCount     = 10
)

var paragraphBreak = regexp.MustCompile(`\n{2,}`)

type paragraph struct {
	source string
	text   string
	score  int
}

// RankDocuments scores every paragraph of an agent's documents against a
// query and concatenates the best ones under per-document headers, never
// exceeding maxChars.
//
// Unlike chat ranking, paragraph scoring counts occurrences: a clause quoted
// three times in one paragraph outranks a passing mention. Paragraphs that
// would overflow the budget are dropped whole, never truncated mid-sentence.
func RankDocuments(docs []*domain.Document, query string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultDocumentBudget
	}
	if len(docs) == 0 {
		return ""
	}

	tokens := Tokenize(query)

	var paragraphs []paragraph
	for _, doc := range docs {
		if doc.Content == "" {
			continue
		}
		content := strings.ReplaceAll(doc.Content, "\r\n", "\n")
		for _, raw := range paragraphBreak.Split(content, -1) {
			text := strings.TrimSpace(raw)
			if len(text) < minParagraphChars {
				continue
			}
			lower := strings.ToLower(text)
			score := 0
			for _, tok := range tokens {
				score += strings.Count(lower, tok)
			}
			paragraphs = append(paragraphs, paragraph{source: doc.Name, text: text, score: score})
		}
	}

	// Stable sort: zero-score paragraphs retain their original order at the
	// tail, which is where backfill draws from.
	sort.SliceStable(paragraphs, func(i, j int) bool {
		return paragraphs[i].score > paragraphs[j].score
	})

	var selected []paragraph
	for _, p := range paragraphs {
		if p.score == 0 || len(selected) == maxScoredParagraphs {
			break
		}
		selected = append(selected, p)
	}

	if len(selected) < backfillThreshold {
		added := 0
		for _, p := range paragraphs[len(selected):] {
			if added == backfillCount {
				break
			}
			selected = append(selected, p)
			added++
		}
	}

	var out strings.Builder
	currentDoc := ""
	for _, p := range selected {
		var block strings.Builder
		if p.source != currentDoc {
			block.WriteString("\n--- " + p.source + " ---\n")
		}
		block.WriteString(p.text + "\n\n")
		if out.Len()+block.Len() > maxChars {
			break
		}
		out.WriteString(block.String())
		currentDoc = p.source
	}

	return strings.TrimSpace(out.String())
}
