package service

import (
	"context"
	"fmt"
	"strings"

	"investiq-backend/models"
)

const (
	minTopK = 1
	maxTopK = 30
)

// RetrievalService answers semantic search requests against the chunk store.
type RetrievalService struct {
	embedder    Embedder
	store       ChunkStore
	defaultTopK int
}

// RetrievalServiceOption is a functional option for RetrievalService
type RetrievalServiceOption func(*RetrievalService)

// RetrievalWithEmbedder sets the embedding client
func RetrievalWithEmbedder(e Embedder) RetrievalServiceOption {
	return func(s *RetrievalService) {
		s.embedder = e
	}
}

// RetrievalWithStore sets the chunk store
func RetrievalWithStore(store ChunkStore) RetrievalServiceOption {
	return func(s *RetrievalService) {
		s.store = store
	}
}

// RetrievalWithDefaultTopK sets the top_k used when the caller passes zero
func RetrievalWithDefaultTopK(k int) RetrievalServiceOption {
	return func(s *RetrievalService) {
		s.defaultTopK = k
	}
}

// NewRetrievalService creates a new retrieval service
func NewRetrievalService(opts ...RetrievalServiceOption) *RetrievalService {
	s := &RetrievalService{defaultTopK: 5}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ClampTopK bounds a requested result count to the supported range. Zero
// falls back to the service default.
func (s *RetrievalService) ClampTopK(topK int) int {
	if topK == 0 {
		topK = s.defaultTopK
	}
	if topK < minTopK {
		return minTopK
	}
	if topK > maxTopK {
		return maxTopK
	}
	return topK
}

// Search embeds the query and returns the nearest chunks for the company,
// ascending by distance. A company with no data yields an empty slice, not
// an error. sourceFilter narrows results to one source type; filtered
// searches overscan the store and are truncated back to topK.
func (s *RetrievalService) Search(ctx context.Context, companyName, query string, topK int, sourceFilter string) ([]models.RetrievedResult, error) {
	companyName = strings.TrimSpace(companyName)
	query = strings.TrimSpace(query)
	if companyName == "" {
		return nil, fmt.Errorf("%w: company_name is required", ErrValidation)
	}
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", ErrValidation)
	}
	topK = s.ClampTopK(topK)

	embedding, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}

	limit := topK
	if sourceFilter != "" {
		limit = topK * 2
	}

	results, err := s.store.Search(ctx, embedding, companyName, sourceFilter, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if len(results) > topK {
		results = results[:topK]
	}
	if results == nil {
		results = []models.RetrievedResult{}
	}
	return results, nil
}

// HasCompany reports whether the store holds any chunk for the company.
func (s *RetrievalService) HasCompany(ctx context.Context, companyName string) (bool, error) {
	ok, err := s.store.HasCompany(ctx, companyName)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return ok, nil
}

// Companies lists the distinct companies in the store.
func (s *RetrievalService) Companies(ctx context.Context) ([]string, error) {
	names, err := s.store.CompanyNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return names, nil
}

// Stats summarizes the stored corpus.
func (s *RetrievalService) Stats(ctx context.Context) (*models.StoreStats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return stats, nil
}
