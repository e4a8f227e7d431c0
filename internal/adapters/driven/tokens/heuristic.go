// Package tokens provides token counters used to keep chunk text inside an
// embedding model's input budget.
package tokens

import (
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
)

// Ensure the counters implement the interface.
var (
	_ driven.TokenCounter = (*Heuristic)(nil)
	_ driven.TokenCounter = (*Tiktoken)(nil)
)

// CharsPerToken is the approximate number of characters in one token.
const CharsPerToken = 4

// Heuristic approximates tokens as one per four characters.
// It is deliberately approximate; the embedder still retries on length errors.
type Heuristic struct{}

// NewHeuristic creates a heuristic counter.
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

// Name identifies the counter.
func (h *Heuristic) Name() string {
	return "heuristic"
}

// Count returns the character count divided by four.
func (h *Heuristic) Count(text string) int {
	return len([]rune(text)) / CharsPerToken
}

// Truncate cuts text to maxTokens*4 characters.
func (h *Heuristic) Truncate(text string, maxTokens int) string {
	return TruncateRunes(text, maxTokens*CharsPerToken)
}

// TruncateRunes returns at most n characters of text.
func TruncateRunes(text string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}
