package service

import (
	"context"

	"investiq-backend/gemini"
	"investiq-backend/models"
)

// Embedder turns text into query or document embeddings.
// *gemini.EmbeddingClient implements it.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float64, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error)
}

// ChunkStore is the vector store surface the services need.
// *repository.ChunkRepository implements it.
type ChunkStore interface {
	Search(ctx context.Context, embedding []float64, companyName, sourceType string, limit int) ([]models.RetrievedResult, error)
	UpsertChunks(ctx context.Context, chunks []models.Chunk) error
	DeleteCompany(ctx context.Context, companyName string) (int64, error)
	PruneStale(ctx context.Context, companyName, sourceType, keepCrawledAt string) (int64, error)
	CompanyNames(ctx context.Context) ([]string, error)
	HasCompany(ctx context.Context, companyName string) (bool, error)
	Stats(ctx context.Context) (*models.StoreStats, error)
}

// TextGenerator runs one language model generation call.
// *gemini.Generator implements it.
type TextGenerator interface {
	Generate(ctx context.Context, req gemini.GenerateRequest) (*gemini.GenerateResponse, error)
}

// WebSearcher fetches web snippets for a query.
// *websearch.Client implements it.
type WebSearcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]models.WebSource, error)
}
