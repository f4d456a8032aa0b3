package models

// DashboardSectionHeadings are the eight mandatory section headers of a
// generated diligence dashboard, in required order.
var DashboardSectionHeadings = []string{
	"## Company Overview",
	"## Business Model and GTM",
	"## Funding & Investor Profile",
	"## Growth Momentum",
	"## Visibility & Market Sentiment",
	"## Risks and Challenges",
	"## Outlook",
	"## Disclosure Gaps",
}

// DashboardMetadata reports how a dashboard generation went. SectionsPresent
// counts the headings actually detected in the output; it is never coerced
// to eight.
type DashboardMetadata struct {
	Status            string   `json:"status"`
	ChunksRetrieved   int      `json:"chunks_retrieved"`
	SourcesUsed       []string `json:"sources_used,omitempty"`
	Model             string   `json:"model,omitempty"`
	TokensUsed        int      `json:"tokens_used"`
	ElapsedMs         int64    `json:"elapsed_ms"`
	SectionsPresent   int      `json:"sections_present"`
	NotDisclosedCount int      `json:"not_disclosed_count"`
}

// DashboardResult is the generated investment dashboard plus its metadata.
type DashboardResult struct {
	CompanyName    string            `json:"company_name"`
	Dashboard      string            `json:"dashboard"`
	Metadata       DashboardMetadata `json:"metadata"`
	ContextSources []string          `json:"context_sources"`
}

// ChatResult is the answer to one conversational turn, annotated with the
// evidence the router selected.
type ChatResult struct {
	Message         string            `json:"message"`
	UsedRetrieval   bool              `json:"used_retrieval"`
	UsedWebSearch   bool              `json:"used_web_search"`
	ChunksRetrieved int               `json:"chunks_retrieved"`
	Chunks          []RetrievedResult `json:"chunks,omitempty"`
	WebSources      []WebSource       `json:"web_sources,omitempty"`
	TokensUsed      int               `json:"tokens_used"`
	ElapsedMs       int64             `json:"elapsed_ms"`
}
