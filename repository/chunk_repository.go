package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"investiq-backend/models"
)

// ChunkRepository handles database operations for company chunks stored in
// pgvector.
type ChunkRepository struct {
	db        *pgxpool.Pool
	dimension int
}

// NewChunkRepository creates a chunk repository expecting embeddings of the
// given dimension.
func NewChunkRepository(db *pgxpool.Pool, dimension int) *ChunkRepository {
	return &ChunkRepository{db: db, dimension: dimension}
}

// formatVector formats an embedding vector as a string for pgx
func formatVector(embedding []float64) string {
	if len(embedding) == 0 {
		return "[]"
	}
	parts := make([]string, 0, len(embedding))
	for _, v := range embedding {
		parts = append(parts, fmt.Sprintf("%.6f", v))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Search returns the chunks nearest to the query embedding for one company,
// ascending by cosine distance. sourceType narrows to one source page kind
// when non-empty. An unindexed company simply yields no rows.
func (r *ChunkRepository) Search(
	ctx context.Context,
	embedding []float64,
	companyName string,
	sourceType string,
	limit int,
) ([]models.RetrievedResult, error) {
	if len(embedding) != r.dimension {
		return nil, fmt.Errorf("embedding must be %d dimensions, got %d", r.dimension, len(embedding))
	}

	vectorStr := formatVector(embedding)

	var sourceFilter string
	args := []interface{}{vectorStr, companyName}
	if sourceType != "" {
		sourceFilter = "AND source_type = $3"
		args = append(args, sourceType)
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT
			chunk_text,
			source_url,
			source_type,
			chunk_index,
			crawled_at,
			chunk_size,
			embedding <=> $1::vector AS distance
		FROM company_chunks
		WHERE company_name = $2
			%s
		ORDER BY
			embedding <=> $1::vector
		LIMIT $%d`, sourceFilter, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query company chunks: %w", err)
	}
	defer rows.Close()

	var results []models.RetrievedResult
	for rows.Next() {
		var res models.RetrievedResult
		err := rows.Scan(
			&res.Text,
			&res.SourceURL,
			&res.SourceType,
			&res.ChunkIndex,
			&res.CrawledAt,
			&res.ChunkSize,
			&res.Distance,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		res.QualityTier = models.TierForDistance(res.Distance)
		results = append(results, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chunks: %w", err)
	}

	return results, nil
}

// UpsertChunks writes a batch of chunks in one transaction. IDs repeat
// within a run, so a retried run overwrites its own rows instead of
// duplicating them.
func (r *ChunkRepository) UpsertChunks(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO company_chunks (
			id, company_name, source_type, source_url,
			chunk_index, total_chunks, chunk_text, crawled_at, chunk_size, embedding
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10::vector
		)
		ON CONFLICT (id) DO UPDATE SET
			chunk_text = EXCLUDED.chunk_text,
			total_chunks = EXCLUDED.total_chunks,
			chunk_size = EXCLUDED.chunk_size,
			embedding = EXCLUDED.embedding`

	for _, chunk := range chunks {
		if len(chunk.Embedding) != r.dimension {
			return fmt.Errorf("chunk %s: embedding must be %d dimensions, got %d", chunk.ID, r.dimension, len(chunk.Embedding))
		}
		_, err = tx.Exec(ctx, query,
			chunk.ID, chunk.CompanyName, chunk.SourceType, chunk.SourceURL,
			chunk.ChunkIndex, chunk.TotalChunks, chunk.Text, chunk.CrawledAt,
			chunk.ChunkSize, formatVector(chunk.Embedding),
		)
		if err != nil {
			return fmt.Errorf("failed to insert chunk %d: %w", chunk.ChunkIndex, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteCompany removes every chunk for one company (force refresh).
func (r *ChunkRepository) DeleteCompany(ctx context.Context, companyName string) (int64, error) {
	tag, err := r.db.Exec(ctx, "DELETE FROM company_chunks WHERE company_name = $1", companyName)
	if err != nil {
		return 0, fmt.Errorf("failed to delete company chunks: %w", err)
	}
	return tag.RowsAffected(), nil
}

// PruneStale removes chunks of one company and source type from earlier
// ingestion runs, keeping only the generation crawled at keepCrawledAt.
func (r *ChunkRepository) PruneStale(ctx context.Context, companyName, sourceType, keepCrawledAt string) (int64, error) {
	tag, err := r.db.Exec(ctx,
		"DELETE FROM company_chunks WHERE company_name = $1 AND source_type = $2 AND crawled_at <> $3",
		companyName, sourceType, keepCrawledAt,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune stale chunks: %w", err)
	}
	return tag.RowsAffected(), nil
}

// CompanyNames lists the distinct companies present in the store.
func (r *ChunkRepository) CompanyNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, "SELECT DISTINCT company_name FROM company_chunks ORDER BY company_name")
	if err != nil {
		return nil, fmt.Errorf("failed to query companies: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan company name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating companies: %w", err)
	}
	return names, nil
}

// HasCompany reports whether any chunk exists for the company.
func (r *ChunkRepository) HasCompany(ctx context.Context, companyName string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM company_chunks WHERE company_name = $1)",
		companyName,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check company: %w", err)
	}
	return exists, nil
}

// Stats summarizes the stored corpus.
func (r *ChunkRepository) Stats(ctx context.Context) (*models.StoreStats, error) {
	stats := &models.StoreStats{}

	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM company_chunks").Scan(&stats.TotalChunks)
	if err != nil {
		return nil, fmt.Errorf("failed to count chunks: %w", err)
	}

	companies, err := r.CompanyNames(ctx)
	if err != nil {
		return nil, err
	}
	stats.Companies = companies
	stats.TotalCompanies = len(companies)

	rows, err := r.db.Query(ctx, "SELECT DISTINCT source_type FROM company_chunks ORDER BY source_type")
	if err != nil {
		return nil, fmt.Errorf("failed to query source types: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var st string
		if err := rows.Scan(&st); err != nil {
			return nil, fmt.Errorf("failed to scan source type: %w", err)
		}
		stats.SourceTypes = append(stats.SourceTypes, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating source types: %w", err)
	}

	return stats, nil
}
