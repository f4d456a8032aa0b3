package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"investiq-backend/gemini"
	"investiq-backend/models"
	"investiq-backend/rag"
)

// dashboardTopics are the diligence angles retrieved for every dashboard.
// Each becomes one search query; the first is prefixed with the company
// name to anchor the overview.
var dashboardTopics = []string{
	"company overview mission",
	"funding investors series round capital valuation",
	"business model revenue pricing customers GTM",
	"founders CEO leadership team executives",
	"hiring jobs positions growth expansion",
	"product platform features technology AI",
	"customers clients partnerships enterprise",
	"awards press recognition",
}

// DashboardRequest parameterizes one dashboard generation.
type DashboardRequest struct {
	CompanyName string
	TopK        int
	Temperature float32
	MaxTokens   int32
	Model       string
}

// DashboardService generates structured investment dashboards from
// retrieved context.
type DashboardService struct {
	retrieval   *RetrievalService
	generator   TextGenerator
	model       string
	tokenBudget int
}

// DashboardServiceOption is a functional option for DashboardService
type DashboardServiceOption func(*DashboardService)

// DashboardWithRetrieval sets the retrieval service
func DashboardWithRetrieval(r *RetrievalService) DashboardServiceOption {
	return func(s *DashboardService) {
		s.retrieval = r
	}
}

// DashboardWithGenerator sets the text generator
func DashboardWithGenerator(g TextGenerator) DashboardServiceOption {
	return func(s *DashboardService) {
		s.generator = g
	}
}

// DashboardWithModel sets the generation model name
func DashboardWithModel(model string) DashboardServiceOption {
	return func(s *DashboardService) {
		s.model = model
	}
}

// DashboardWithTokenBudget sets the context token budget
func DashboardWithTokenBudget(budget int) DashboardServiceOption {
	return func(s *DashboardService) {
		s.tokenBudget = budget
	}
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(opts ...DashboardServiceOption) *DashboardService {
	s := &DashboardService{tokenBudget: 3000}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// retrieveContext runs the canned diligence queries and merges their
// results: dedupe by (source_type, chunk_index), ascending distance, capped
// at topK. A single failing query does not fail the dashboard, but an
// embedding outage on the first query does.
func (s *DashboardService) retrieveContext(ctx context.Context, companyName string, topK int) ([]models.RetrievedResult, error) {
	perQuery := topK / len(dashboardTopics)
	if perQuery < 2 {
		perQuery = 2
	}

	var merged []models.RetrievedResult
	seen := make(map[string]bool)
	for i, topic := range dashboardTopics {
		query := topic
		if i == 0 {
			query = companyName + " " + topic
		}
		results, err := s.retrieval.Search(ctx, companyName, query, perQuery, "")
		if err != nil {
			if i == 0 {
				return nil, err
			}
			log.Printf("dashboard query %q failed for %s: %v", topic, companyName, err)
			continue
		}
		for _, r := range results {
			key := fmt.Sprintf("%s_%d", r.SourceType, r.ChunkIndex)
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, r)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Distance < merged[j].Distance
	})
	if len(merged) > topK {
		merged = merged[:topK]
	}
	return merged, nil
}

// Generate produces the investment dashboard for one company. A company
// with no indexed data yields the fixed empty dashboard with status
// no_context; generation failures after one retry surface as errors.
func (s *DashboardService) Generate(ctx context.Context, req DashboardRequest) (*models.DashboardResult, error) {
	companyName := strings.TrimSpace(req.CompanyName)
	if companyName == "" {
		return nil, fmt.Errorf("%w: company_name is required", ErrValidation)
	}
	topK := req.TopK
	if topK == 0 {
		topK = 15
	}
	if topK < 5 || topK > 30 {
		return nil, fmt.Errorf("%w: top_k must be between 5 and 30", ErrValidation)
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = 0.3
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4000
	}
	model := s.model
	if req.Model != "" {
		model = req.Model
	}

	start := time.Now()
	log.Printf("generating dashboard for %s (top_k=%d)", companyName, topK)

	chunks, err := s.retrieveContext(ctx, companyName, topK)
	if err != nil {
		return nil, err
	}

	if len(chunks) == 0 {
		return &models.DashboardResult{
			CompanyName: companyName,
			Dashboard:   emptyDashboard(companyName),
			Metadata: models.DashboardMetadata{
				Status:    "no_context",
				ElapsedMs: time.Since(start).Milliseconds(),
			},
			ContextSources: []string{},
		}, nil
	}

	block := rag.BuildContext(chunks, s.tokenBudget)
	prompt := dashboardUserPrompt(companyName, block.Render())

	resp, err := s.generate(ctx, gemini.GenerateRequest{
		Model:           model,
		SystemPrompt:    dashboardSystemPrompt,
		Message:         prompt,
		Temperature:     temperature,
		MaxOutputTokens: maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
	}

	sections := countSections(resp.Text)
	disclosed := countNotDisclosed(resp.Text)
	sources := block.Sources()
	log.Printf("dashboard generated for %s: sections %d/8, not disclosed %dx", companyName, sections, disclosed)

	return &models.DashboardResult{
		CompanyName: companyName,
		Dashboard:   resp.Text,
		Metadata: models.DashboardMetadata{
			Status:            "success",
			ChunksRetrieved:   len(chunks),
			SourcesUsed:       sources,
			Model:             model,
			TokensUsed:        resp.TokensUsed,
			ElapsedMs:         time.Since(start).Milliseconds(),
			SectionsPresent:   sections,
			NotDisclosedCount: disclosed,
		},
		ContextSources: sources,
	}, nil
}

// generate calls the model, retrying once on transient failures.
func (s *DashboardService) generate(ctx context.Context, req gemini.GenerateRequest) (*gemini.GenerateResponse, error) {
	resp, err := s.generator.Generate(ctx, req)
	if err != nil && gemini.IsTransient(err) {
		log.Printf("transient generation error, retrying: %v", err)
		resp, err = s.generator.Generate(ctx, req)
	}
	return resp, err
}
