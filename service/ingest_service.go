package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"investiq-backend/gemini"
	"investiq-backend/models"
	"investiq-backend/rag"
	"investiq-backend/registry"
	"investiq-backend/storage"
)

const rateLimitBackoff = 60 * time.Second

// IngestResult summarizes one company's ingestion run.
type IngestResult struct {
	RunID        string
	CompanyName  string
	Documents    int
	ChunksStored int
	Pruned       int64
}

// IngestService turns raw source documents into embedded chunks in the
// vector store.
type IngestService struct {
	docs           storage.Store
	chunks         ChunkStore
	embedder       Embedder
	registry       *registry.Registry
	chunkSize      int
	chunkOverlap   int
	minChunkLength int
	batchSize      int
	backoff        time.Duration
}

// IngestServiceOption is a functional option for IngestService
type IngestServiceOption func(*IngestService)

// IngestWithDocumentStore sets the raw text store
func IngestWithDocumentStore(store storage.Store) IngestServiceOption {
	return func(s *IngestService) {
		s.docs = store
	}
}

// IngestWithChunkStore sets the vector store
func IngestWithChunkStore(store ChunkStore) IngestServiceOption {
	return func(s *IngestService) {
		s.chunks = store
	}
}

// IngestWithEmbedder sets the embedding client
func IngestWithEmbedder(e Embedder) IngestServiceOption {
	return func(s *IngestService) {
		s.embedder = e
	}
}

// IngestWithRegistry sets the company registry
func IngestWithRegistry(r *registry.Registry) IngestServiceOption {
	return func(s *IngestService) {
		s.registry = r
	}
}

// IngestWithChunking sets the chunk size, overlap, and minimum length
func IngestWithChunking(size, overlap, minLength int) IngestServiceOption {
	return func(s *IngestService) {
		s.chunkSize = size
		s.chunkOverlap = overlap
		s.minChunkLength = minLength
	}
}

// IngestWithBatchSize sets the embedding batch size
func IngestWithBatchSize(n int) IngestServiceOption {
	return func(s *IngestService) {
		s.batchSize = n
	}
}

// IngestWithBackoff overrides the rate limit backoff, for tests.
func IngestWithBackoff(d time.Duration) IngestServiceOption {
	return func(s *IngestService) {
		s.backoff = d
	}
}

// NewIngestService creates a new ingest service
func NewIngestService(opts ...IngestServiceOption) *IngestService {
	s := &IngestService{
		chunkSize:      1000,
		chunkOverlap:   200,
		minChunkLength: 50,
		batchSize:      50,
		backoff:        rateLimitBackoff,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IngestCompany loads the company's source documents, chunks and embeds
// them, and upserts the result. After a successful run, chunks of the same
// sources crawled at a different time are pruned so exactly one generation
// survives; a failed run leaves the prior generation untouched. With
// forceRefresh the company's existing chunks are deleted up front.
func (s *IngestService) IngestCompany(ctx context.Context, companyName string, forceRefresh bool) (*IngestResult, error) {
	runID := uuid.New().String()
	log.Printf("[%s] ingesting %s (force_refresh=%v)", runID, companyName, forceRefresh)

	docs, err := storage.LoadCompanyDocuments(ctx, s.docs, companyName, s.minChunkLength)
	if err != nil {
		return nil, fmt.Errorf("failed to load documents for %s: %w", companyName, err)
	}

	if forceRefresh {
		deleted, err := s.chunks.DeleteCompany(ctx, companyName)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		if err := s.registry.Unregister(companyName); err != nil {
			log.Printf("[%s] failed to unregister %s: %v", runID, companyName, err)
		}
		log.Printf("[%s] force refresh deleted %d existing chunks", runID, deleted)
	}

	var pending []models.Chunk
	for _, doc := range docs {
		pending = append(pending, s.chunkDocument(doc)...)
	}
	if len(pending) == 0 {
		return nil, fmt.Errorf("no chunks produced for %s", companyName)
	}
	log.Printf("[%s] %d documents -> %d chunks", runID, len(docs), len(pending))

	stored := 0
	for start := 0; start < len(pending); start += s.batchSize {
		end := start + s.batchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}
		embeddings, err := s.embedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
		}
		for i := range batch {
			batch[i].Embedding = embeddings[i]
		}

		if err := s.chunks.UpsertChunks(ctx, batch); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		stored += len(batch)
		log.Printf("[%s] stored %d/%d chunks", runID, stored, len(pending))
	}

	// The run completed, so older generations of the same sources go.
	var pruned int64
	for _, doc := range docs {
		n, err := s.chunks.PruneStale(ctx, companyName, doc.SourceType, doc.CrawledAt)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		pruned += n
	}
	if pruned > 0 {
		log.Printf("[%s] pruned %d stale chunks", runID, pruned)
	}

	if err := s.registry.Register(companyName, stored, len(docs), runID); err != nil {
		log.Printf("[%s] failed to register %s: %v", runID, companyName, err)
	}

	return &IngestResult{
		RunID:        runID,
		CompanyName:  companyName,
		Documents:    len(docs),
		ChunksStored: stored,
		Pruned:       pruned,
	}, nil
}

// chunkDocument splits one source document and assigns stable chunk IDs.
// Chunks shorter than the minimum length are dropped before persistence.
func (s *IngestService) chunkDocument(doc models.SourceDocument) []models.Chunk {
	pieces := rag.Chunk(doc.Text, s.chunkSize, s.chunkOverlap)

	var kept []string
	for _, p := range pieces {
		if len(p) >= s.minChunkLength {
			kept = append(kept, p)
		}
	}

	chunks := make([]models.Chunk, 0, len(kept))
	for i, text := range kept {
		chunks = append(chunks, models.Chunk{
			ID:          rag.ChunkID(doc.CompanyName, doc.SourceType, i, doc.CrawledAt),
			CompanyName: doc.CompanyName,
			SourceType:  doc.SourceType,
			SourceURL:   doc.SourceURL,
			ChunkIndex:  i,
			TotalChunks: len(kept),
			Text:        text,
			CrawledAt:   doc.CrawledAt,
			ChunkSize:   len(text),
		})
	}
	return chunks
}

// embedBatch embeds one batch of texts, waiting out a single rate limit
// before giving up.
func (s *IngestService) embedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	embeddings, err := s.embedder.EmbedDocuments(ctx, texts)
	if err == nil {
		return embeddings, nil
	}

	var apiErr *gemini.APIError
	if !errors.As(err, &apiErr) || !apiErr.RateLimited() {
		return nil, err
	}

	log.Printf("embedding rate limited, backing off %s", s.backoff)
	select {
	case <-time.After(s.backoff):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return s.embedder.EmbedDocuments(ctx, texts)
}
