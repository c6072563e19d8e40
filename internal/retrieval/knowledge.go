package retrieval

import (
	"sort"
	"strings"

	"github.com/clausewise/counselai/internal/domain"
)

const (
	// DefaultKnowledgeLimit is the number of chat excerpts included in a
	// prompt when the caller does not override it.
	DefaultKnowledgeLimit = 25

	// KnowledgeWindowSize bounds how many recent items are considered per
	// query. Callers load at most this many of the newest items, ordered
	// oldest to newest.
	KnowledgeWindowSize = 500
)

// RankKnowledge scores a recency window of knowledge items against a query
// and renders the best matches as prompt context, one line per item.
//
// items must be ordered oldest to newest. Scoring is boolean per token: an
// item earns one point per distinct query token appearing in its lower-cased
// content, regardless of how often the token occurs. This deliberately
// differs from document ranking, where repetition within a paragraph matters.
//
// When nothing matches, the most recent limit items are returned unscored so
// the model still sees what the team has been talking about.
func RankKnowledge(items []*domain.KnowledgeItem, query string, limit int) string {
	if limit <= 0 {
		limit = DefaultKnowledgeLimit
	}
	if len(items) == 0 {
		return ""
	}

	tokens := Tokenize(query)

	type scoredItem struct {
		item  *domain.KnowledgeItem
		score int
	}

	scored := make([]scoredItem, 0, len(items))
	for _, item := range items {
		lower := strings.ToLower(item.Content)
		score := 0
		for _, tok := range tokens {
			if strings.Contains(lower, tok) {
				score++
			}
		}
		if score > 0 {
			scored = append(scored, scoredItem{item: item, score: score})
		}
	}

	var selected []*domain.KnowledgeItem
	if len(scored) > 0 {
		// Stable sort keeps ties in chronological order.
		sort.SliceStable(scored, func(i, j int) bool {
			return scored[i].score > scored[j].score
		})
		if len(scored) > limit {
			scored = scored[:limit]
		}
		selected = make([]*domain.KnowledgeItem, 0, len(scored))
		for _, s := range scored {
			selected = append(selected, s.item)
		}
	} else {
		start := len(items) - limit
		if start < 0 {
			start = 0
		}
		selected = items[start:]
	}

	lines := make([]string, 0, len(selected))
	for _, item := range selected {
		lines = append(lines, item.ContextLabel()+": "+item.Content)
	}
	return strings.Join(lines, "\n")
}
