package rag

import (
	"fmt"
	"strings"

	"investiq-backend/models"
)

// Fragment is one source-attributed piece of assembled context.
type Fragment struct {
	Ordinal    int
	SourceURL  string
	SourceType string
	Text       string
	Tokens     int
}

// ContextBlock is the token-budgeted context assembled for one generation
// call. It is built per request and discarded after generation.
type ContextBlock struct {
	Fragments   []Fragment
	TokenBudget int
	TokensUsed  int
}

// EstimateTokens approximates the token cost of s as one token per four
// characters, rounded up.
func EstimateTokens(s string) int {
	return (len(s) + 3) / 4
}

// BuildContext assembles retrieval results into a context block, including
// them in the given order until the budget runs out. A fragment that would
// overflow the remaining budget is skipped whole; context is never cut
// mid-fragment.
func BuildContext(results []models.RetrievedResult, tokenBudget int) *ContextBlock {
	block := &ContextBlock{TokenBudget: tokenBudget}
	for _, r := range results {
		block.add(r.SourceURL, r.SourceType, r.Text)
	}
	return block
}

// BuildWebContext assembles web search snippets with the same budget and
// template, attributed with source type "Web".
func BuildWebContext(sources []models.WebSource, tokenBudget int) *ContextBlock {
	block := &ContextBlock{TokenBudget: tokenBudget}
	for _, s := range sources {
		block.add(s.URL, "Web", s.Snippet)
	}
	return block
}

func (b *ContextBlock) add(sourceURL, sourceType, text string) {
	ordinal := len(b.Fragments) + 1
	rendered := renderFragment(ordinal, sourceURL, sourceType, text)
	cost := EstimateTokens(rendered)
	if b.TokensUsed+cost > b.TokenBudget {
		return
	}
	b.Fragments = append(b.Fragments, Fragment{
		Ordinal:    ordinal,
		SourceURL:  sourceURL,
		SourceType: sourceType,
		Text:       text,
		Tokens:     cost,
	})
	b.TokensUsed += cost
}

// Empty reports whether no fragment fit the budget.
func (b *ContextBlock) Empty() bool {
	return len(b.Fragments) == 0
}

// Sources returns the distinct source types of the included fragments, in
// first-seen order.
func (b *ContextBlock) Sources() []string {
	seen := make(map[string]bool)
	var sources []string
	for _, f := range b.Fragments {
		if !seen[f.SourceType] {
			seen[f.SourceType] = true
			sources = append(sources, f.SourceType)
		}
	}
	return sources
}

// Render serializes the block for inclusion in a prompt.
func (b *ContextBlock) Render() string {
	var builder strings.Builder
	for i, f := range b.Fragments {
		if i > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(renderFragment(f.Ordinal, f.SourceURL, f.SourceType, f.Text))
	}
	return builder.String()
}

func renderFragment(ordinal int, sourceURL, sourceType, text string) string {
	return fmt.Sprintf("--- Chunk %d ---\nSource: %s\nType: %s\nContent:\n%s\n", ordinal, sourceURL, sourceType, text)
}
