package service

import (
	"fmt"
	"strings"

	"investiq-backend/models"
)

// dashboardSystemPrompt defines the analyst role and the mandatory eight
// section structure of a generated dashboard.
const dashboardSystemPrompt = `You are an expert investment analyst specializing in private AI and Fintech startups. You generate investor-facing diligence dashboards that provide actionable insights for investment decision-making.

You MUST generate exactly 8 sections in the following order, using these exact section headers:

## Company Overview
Core mission, value proposition, differentiators, and founding background.

## Business Model and GTM
Revenue model, target segments, go-to-market approach, pricing, partnerships.

## Funding & Investor Profile
Funding history, investors, valuation, use of funds.

## Growth Momentum
Hiring trends, product milestones, traction, customer growth, expansion.

## Visibility & Market Sentiment
Media coverage, recognition, brand visibility, thought leadership.

## Risks and Challenges
Competitive, operational, regulatory, technology, and timing risks.

## Outlook
Strategic direction, opportunities, growth potential, key success factors.

## Disclosure Gaps
Information missing from the context that matters for an investment decision.

Critical guidelines:
1. Use ONLY information from the provided context. Do not infer, assume, or add information not explicitly stated.
2. If information is not available in the context, explicitly state "Not disclosed." Do not use placeholder text or estimates.
3. Maintain a professional, objective, analytical tone. Present both strengths and weaknesses.
4. Use clear markdown formatting with proper headers, bullet points, and paragraphs.`

// dashboardUserPrompt builds the generation message from the company name
// and the serialized retrieval context.
func dashboardUserPrompt(companyName, context string) string {
	return fmt.Sprintf(`Generate a comprehensive investment analysis dashboard for %s.

## Context Data

%s

## Output Requirements

1. Generate all 8 required sections in the exact order specified, with the exact section headers.
2. Base all content strictly on the context above.
3. For any missing information, explicitly state "Not disclosed."
4. Provide specific details, numbers, and examples when available.`, companyName, context)
}

// chatSystemPrompt frames the conversational assistant.
const chatSystemPrompt = `You are an expert investment analyst assistant specializing in private AI and Fintech startups. You help users understand companies in the knowledge base by answering questions and providing insights.

Guidelines:
- Be conversational, helpful, and professional.
- When context about a company is provided, base your answer on it and cite the sources.
- If you do not have specific information, say so clearly instead of guessing.
- Help users understand investment concepts and company profiles.`

// chatContextMessage wraps the user's question with the evidence the router
// selected so the model answers from it.
func chatContextMessage(companyName, context, message string) string {
	return fmt.Sprintf(`Retrieved information about %s:

%s

Using the information above where relevant, answer the following question.

Question: %s`, companyName, context, message)
}

// notDisclosed is the literal the model is instructed to emit for missing
// data. Counting its occurrences is the disclosure-gap signal.
const notDisclosed = "Not disclosed."

// emptyDashboard is the fixed output when no context exists for a company.
// It is a valid dashboard, not an error.
func emptyDashboard(companyName string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("# %s - Investment Analysis Report\n", companyName))
	headings := models.DashboardSectionHeadings
	for _, heading := range headings[:len(headings)-1] {
		b.WriteString("\n")
		b.WriteString(heading)
		b.WriteString("\n")
		b.WriteString(notDisclosed)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(headings[len(headings)-1])
	b.WriteString("\n- All company information\n- No data available in vector database\n")
	return b.String()
}

// countSections counts how many of the mandatory headings appear in the
// output. The count is reported as observed, never coerced to eight.
func countSections(dashboard string) int {
	count := 0
	for _, heading := range models.DashboardSectionHeadings {
		if strings.Contains(dashboard, heading) {
			count++
		}
	}
	return count
}

// countNotDisclosed counts literal "Not disclosed." occurrences.
func countNotDisclosed(dashboard string) int {
	return strings.Count(dashboard, notDisclosed)
}
