package rag

import (
	"strings"

	"investiq-backend/models"
)

// Decision is the routing outcome for one conversational turn.
type Decision int

const (
	// DecisionNone answers with no external grounding.
	DecisionNone Decision = iota
	// DecisionRAG grounds the answer in internal retrieval results.
	DecisionRAG
	// DecisionWeb grounds the answer in external web search snippets.
	DecisionWeb
)

func (d Decision) String() string {
	switch d {
	case DecisionRAG:
		return "rag"
	case DecisionWeb:
		return "web"
	default:
		return "no_context"
	}
}

// intentKeywords mark queries that ask about indexed company data.
var intentKeywords = []string{
	"funding", "investor", "investment", "valuation", "raise", "series",
	"product", "platform", "feature", "technology",
	"team", "founder", "ceo", "leadership", "executive", "hiring",
	"customer", "client", "partner", "pricing", "revenue", "business model",
	"company", "mission", "competitor", "market",
}

// HasCompanyDataIntent reports whether the query matches the company-data
// intent markers.
func HasCompanyDataIntent(query string) bool {
	q := strings.ToLower(query)
	for _, kw := range intentKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

// sufficient reports whether retrieval produced at least one usable result:
// non-empty with the best match landing at "fair" quality or better.
// Results arrive in ascending distance order, so the first one is the best.
func sufficient(results []models.RetrievedResult) bool {
	return len(results) > 0 && results[0].QualityTier != models.TierPoor
}

// Route decides, once per turn, how the answer will be grounded. It never
// calls the language model, and an empty evidence set is a valid outcome,
// not a failure.
func Route(query string, results []models.RetrievedResult, webEnabled bool) Decision {
	if HasCompanyDataIntent(query) && sufficient(results) {
		return DecisionRAG
	}
	if webEnabled {
		return DecisionWeb
	}
	return DecisionNone
}
