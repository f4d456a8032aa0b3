package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"investiq-backend/config"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	ctx := context.Background()

	// Enable pgvector extension
	_, err = pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		log.Printf("Warning: Failed to create pgvector extension: %v", err)
	} else {
		log.Println("✓ pgvector extension enabled")
	}

	schemaSQL := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS company_chunks (
    -- Deterministic identity digest, repeats within one crawl generation
    id VARCHAR(32) PRIMARY KEY,

    -- Provenance
    company_name VARCHAR(255) NOT NULL,
    source_type VARCHAR(50) NOT NULL,
    source_url TEXT NOT NULL,
    crawled_at VARCHAR(64) NOT NULL,

    -- Position within the source document
    chunk_index INTEGER NOT NULL,
    total_chunks INTEGER NOT NULL,

    -- Content
    chunk_text TEXT NOT NULL,
    chunk_size INTEGER NOT NULL,

    -- Vector embedding
    embedding vector(%d),

    created_at TIMESTAMP DEFAULT NOW()
);`, cfg.EmbeddingDimension)

	_, err = pool.Exec(ctx, schemaSQL)
	if err != nil {
		log.Fatalf("Failed to create company_chunks table: %v", err)
	}
	log.Println("✓ Created company_chunks table")

	indexes := []struct {
		name string
		sql  string
	}{
		{
			name: "Vector similarity search (HNSW)",
			sql: `CREATE INDEX IF NOT EXISTS idx_company_chunks_embedding ON company_chunks
USING hnsw (embedding vector_cosine_ops)
WITH (m = 16, ef_construction = 64);`,
		},
		{
			name: "Company filtering",
			sql:  "CREATE INDEX IF NOT EXISTS idx_company_chunks_company ON company_chunks(company_name);",
		},
		{
			name: "Source type filtering",
			sql:  "CREATE INDEX IF NOT EXISTS idx_company_chunks_source_type ON company_chunks(company_name, source_type);",
		},
	}

	for _, idx := range indexes {
		if _, err := pool.Exec(ctx, idx.sql); err != nil {
			log.Fatalf("Failed to create index (%s): %v", idx.name, err)
		}
		log.Printf("✓ Created index: %s", idx.name)
	}

	log.Println("Schema ready")
}
