// Package retrieval ranks knowledge items and document paragraphs against a
// query. Ranking is keyword-based on purpose: per-company knowledge bases are
// small enough that substring scoring over a recency window beats the
// operational cost of an embedding index. All functions are pure given their
// inputs; loading from storage happens in the service layer.
package retrieval

import "strings"

// minTokenLength filters short tokens. Anything of three characters or fewer
// is treated as a stopword ("the", "is", "for" and friends).
const minTokenLength = 4

// Tokenize splits a query on whitespace, lower-cases it, and drops
// stopword-length tokens.
func Tokenize(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) >= minTokenLength {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
