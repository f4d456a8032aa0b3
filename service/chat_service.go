package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"investiq-backend/gemini"
	"investiq-backend/models"
	"investiq-backend/rag"
)

const webSearchResults = 5

// ChatRequest is one conversational turn. History is caller supplied and
// truncated to the service's window. Model and Temperature override the
// service defaults when set; DisableWebSearch turns the web fallback off
// for this turn.
type ChatRequest struct {
	CompanyName      string
	Message          string
	History          []models.ConversationTurn
	TopK             int
	Model            string
	Temperature      float32
	DisableWebSearch bool
}

// ChatService answers conversational turns, grounding them through the
// retrieval/web router.
type ChatService struct {
	retrieval     *RetrievalService
	generator     TextGenerator
	searcher      WebSearcher
	model         string
	tokenBudget   int
	historyWindow int
}

// ChatServiceOption is a functional option for ChatService
type ChatServiceOption func(*ChatService)

// ChatWithRetrieval sets the retrieval service
func ChatWithRetrieval(r *RetrievalService) ChatServiceOption {
	return func(s *ChatService) {
		s.retrieval = r
	}
}

// ChatWithGenerator sets the text generator
func ChatWithGenerator(g TextGenerator) ChatServiceOption {
	return func(s *ChatService) {
		s.generator = g
	}
}

// ChatWithWebSearcher enables the web fallback. A nil searcher keeps the
// router on retrieval and no-context only.
func ChatWithWebSearcher(w WebSearcher) ChatServiceOption {
	return func(s *ChatService) {
		s.searcher = w
	}
}

// ChatWithModel sets the generation model name
func ChatWithModel(model string) ChatServiceOption {
	return func(s *ChatService) {
		s.model = model
	}
}

// ChatWithTokenBudget sets the context token budget
func ChatWithTokenBudget(budget int) ChatServiceOption {
	return func(s *ChatService) {
		s.tokenBudget = budget
	}
}

// ChatWithHistoryWindow sets how many trailing turns are forwarded
func ChatWithHistoryWindow(n int) ChatServiceOption {
	return func(s *ChatService) {
		s.historyWindow = n
	}
}

// NewChatService creates a new chat service
func NewChatService(opts ...ChatServiceOption) *ChatService {
	s := &ChatService{tokenBudget: 3000, historyWindow: 10}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Chat answers one turn. The router decides the grounding once, before
// generation: retrieval when the question asks about indexed company data
// and the evidence is good enough, web search when it is available,
// otherwise the model answers unaided.
func (s *ChatService) Chat(ctx context.Context, req ChatRequest) (*models.ChatResult, error) {
	companyName := strings.TrimSpace(req.CompanyName)
	message := strings.TrimSpace(req.Message)
	if companyName == "" {
		return nil, fmt.Errorf("%w: company_name is required", ErrValidation)
	}
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", ErrValidation)
	}

	start := time.Now()

	chunks, err := s.retrieval.Search(ctx, companyName, message, req.TopK, "")
	if err != nil {
		return nil, err
	}

	webEnabled := s.searcher != nil && !req.DisableWebSearch
	decision := rag.Route(message, chunks, webEnabled)
	log.Printf("chat route for %s: %s (%d chunks)", companyName, decision, len(chunks))

	result := &models.ChatResult{}
	var block *rag.ContextBlock

	switch decision {
	case rag.DecisionRAG:
		block = rag.BuildContext(chunks, s.tokenBudget)
		result.UsedRetrieval = true
		result.ChunksRetrieved = len(chunks)
		result.Chunks = chunks
	case rag.DecisionWeb:
		sources, err := s.searcher.Search(ctx, companyName+" "+message, webSearchResults)
		if err != nil {
			log.Printf("web search failed for %s, answering without grounding: %v", companyName, err)
		} else if len(sources) > 0 {
			block = rag.BuildWebContext(sources, s.tokenBudget)
			result.UsedWebSearch = true
			result.WebSources = sources
		}
	}

	finalMessage := message
	if block != nil && !block.Empty() {
		finalMessage = chatContextMessage(companyName, block.Render(), message)
	}

	history := req.History
	if len(history) > s.historyWindow {
		history = history[len(history)-s.historyWindow:]
	}

	model := s.model
	if req.Model != "" {
		model = req.Model
	}
	temperature := float32(0.7)
	if req.Temperature > 0 {
		temperature = req.Temperature
	}

	resp, err := s.generate(ctx, gemini.GenerateRequest{
		Model:           model,
		SystemPrompt:    chatSystemPrompt,
		History:         history,
		Message:         finalMessage,
		Temperature:     temperature,
		MaxOutputTokens: 1000,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
	}

	result.Message = resp.Text
	result.TokensUsed = resp.TokensUsed
	result.ElapsedMs = time.Since(start).Milliseconds()
	return result, nil
}

// generate calls the model, retrying once on transient failures.
func (s *ChatService) generate(ctx context.Context, req gemini.GenerateRequest) (*gemini.GenerateResponse, error) {
	resp, err := s.generator.Generate(ctx, req)
	if err != nil && gemini.IsTransient(err) {
		log.Printf("transient generation error, retrying: %v", err)
		resp, err = s.generator.Generate(ctx, req)
	}
	return resp, err
}
