package models

// QualityTier classifies how close a retrieved chunk is to the query.
type QualityTier string

const (
	TierExcellent QualityTier = "excellent"
	TierGood      QualityTier = "good"
	TierFair      QualityTier = "fair"
	TierPoor      QualityTier = "poor"
)

// TierForDistance maps a cosine distance to a quality tier.
// Lower distance means more similar.
func TierForDistance(distance float64) QualityTier {
	switch {
	case distance < 1.0:
		return TierExcellent
	case distance < 1.5:
		return TierGood
	case distance < 2.0:
		return TierFair
	default:
		return TierPoor
	}
}

// Chunk is one bounded fragment of scraped company text, the unit of
// embedding and retrieval. Chunks are immutable once stored; re-ingestion
// writes a fresh generation under new IDs rather than mutating in place.
type Chunk struct {
	ID          string    `json:"id"`
	CompanyName string    `json:"company_name"`
	SourceType  string    `json:"source_type"`
	SourceURL   string    `json:"source_url"`
	ChunkIndex  int       `json:"chunk_index"`
	TotalChunks int       `json:"total_chunks"`
	Text        string    `json:"text"`
	CrawledAt   string    `json:"crawled_at"`
	ChunkSize   int       `json:"chunk_size"`
	Embedding   []float64 `json:"-"`
}

// RetrievedResult is a chunk annotated with query-time similarity data.
// It is created per query and never persisted.
type RetrievedResult struct {
	Text        string      `json:"text"`
	SourceURL   string      `json:"source_url"`
	SourceType  string      `json:"source_type"`
	ChunkIndex  int         `json:"chunk_index"`
	CrawledAt   string      `json:"crawled_at,omitempty"`
	ChunkSize   int         `json:"chunk_size,omitempty"`
	Distance    float64     `json:"distance"`
	QualityTier QualityTier `json:"quality_tier"`
}

// SourceDocument is one scraped page for a company as loaded from the raw
// text store, before chunking.
type SourceDocument struct {
	CompanyName string `json:"company_name"`
	SourceType  string `json:"source_type"`
	SourceURL   string `json:"source_url"`
	Text        string `json:"text"`
	CrawledAt   string `json:"crawled_at"`
}

// StoreStats summarizes the vector store contents.
type StoreStats struct {
	TotalChunks    int      `json:"total_chunks"`
	TotalCompanies int      `json:"total_companies"`
	Companies      []string `json:"companies"`
	SourceTypes    []string `json:"source_types"`
	EmbeddingModel string   `json:"embedding_model"`
	ChunkingMethod string   `json:"chunking_method"`
}
