package service

import (
	"context"
	"fmt"

	"investiq-backend/gemini"
	"investiq-backend/models"
)

// fakeEmbedder implements Embedder with function fields.
type fakeEmbedder struct {
	embedQuery     func(ctx context.Context, text string) ([]float64, error)
	embedDocuments func(ctx context.Context, texts []string) ([][]float64, error)
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	if f.embedQuery != nil {
		return f.embedQuery(ctx, text)
	}
	return []float64{0.1, 0.2}, nil
}

func (f *fakeEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error) {
	if f.embedDocuments != nil {
		return f.embedDocuments(ctx, texts)
	}
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = []float64{0.1, 0.2}
	}
	return out, nil
}

// fakeChunkStore implements ChunkStore with function fields.
type fakeChunkStore struct {
	search        func(ctx context.Context, embedding []float64, companyName, sourceType string, limit int) ([]models.RetrievedResult, error)
	upsertChunks  func(ctx context.Context, chunks []models.Chunk) error
	deleteCompany func(ctx context.Context, companyName string) (int64, error)
	pruneStale    func(ctx context.Context, companyName, sourceType, keepCrawledAt string) (int64, error)
	companyNames  func(ctx context.Context) ([]string, error)
	hasCompany    func(ctx context.Context, companyName string) (bool, error)
	stats         func(ctx context.Context) (*models.StoreStats, error)
}

func (f *fakeChunkStore) Search(ctx context.Context, embedding []float64, companyName, sourceType string, limit int) ([]models.RetrievedResult, error) {
	if f.search != nil {
		return f.search(ctx, embedding, companyName, sourceType, limit)
	}
	return nil, nil
}

func (f *fakeChunkStore) UpsertChunks(ctx context.Context, chunks []models.Chunk) error {
	if f.upsertChunks != nil {
		return f.upsertChunks(ctx, chunks)
	}
	return nil
}

func (f *fakeChunkStore) DeleteCompany(ctx context.Context, companyName string) (int64, error) {
	if f.deleteCompany != nil {
		return f.deleteCompany(ctx, companyName)
	}
	return 0, nil
}

func (f *fakeChunkStore) PruneStale(ctx context.Context, companyName, sourceType, keepCrawledAt string) (int64, error) {
	if f.pruneStale != nil {
		return f.pruneStale(ctx, companyName, sourceType, keepCrawledAt)
	}
	return 0, nil
}

func (f *fakeChunkStore) CompanyNames(ctx context.Context) ([]string, error) {
	if f.companyNames != nil {
		return f.companyNames(ctx)
	}
	return nil, nil
}

func (f *fakeChunkStore) HasCompany(ctx context.Context, companyName string) (bool, error) {
	if f.hasCompany != nil {
		return f.hasCompany(ctx, companyName)
	}
	return false, nil
}

func (f *fakeChunkStore) Stats(ctx context.Context) (*models.StoreStats, error) {
	if f.stats != nil {
		return f.stats(ctx)
	}
	return &models.StoreStats{}, nil
}

// fakeGenerator implements TextGenerator and records its calls.
type fakeGenerator struct {
	generate func(ctx context.Context, req gemini.GenerateRequest) (*gemini.GenerateResponse, error)
	calls    []gemini.GenerateRequest
}

func (f *fakeGenerator) Generate(ctx context.Context, req gemini.GenerateRequest) (*gemini.GenerateResponse, error) {
	f.calls = append(f.calls, req)
	if f.generate != nil {
		return f.generate(ctx, req)
	}
	return &gemini.GenerateResponse{Text: "generated answer", TokensUsed: 42}, nil
}

// fakeSearcher implements WebSearcher.
type fakeSearcher struct {
	search func(ctx context.Context, query string, maxResults int) ([]models.WebSource, error)
}

func (f *fakeSearcher) Search(ctx context.Context, query string, maxResults int) ([]models.WebSource, error) {
	if f.search != nil {
		return f.search(ctx, query, maxResults)
	}
	return nil, nil
}

// resultsAt builds retrieval results at the given distances.
func resultsAt(distances ...float64) []models.RetrievedResult {
	out := make([]models.RetrievedResult, len(distances))
	for i, d := range distances {
		out[i] = models.RetrievedResult{
			Text:        fmt.Sprintf("chunk %d", i),
			SourceURL:   "https://acme.com/homepage",
			SourceType:  "homepage",
			ChunkIndex:  i,
			Distance:    d,
			QualityTier: models.TierForDistance(d),
		}
	}
	return out
}
