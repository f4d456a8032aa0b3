package main

import (
	"context"
	"flag"
	"log"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"investiq-backend/config"
	"investiq-backend/gemini"
	"investiq-backend/registry"
	"investiq-backend/repository"
	"investiq-backend/service"
	"investiq-backend/storage"
)

func main() {
	companies := flag.String("company", "", "comma-separated company names to ingest (required)")
	forceRefresh := flag.Bool("force-refresh", false, "delete existing chunks before ingesting")
	flag.Parse()

	if *companies == "" {
		log.Fatal("-company is required")
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.GeminiAPIKey == "" {
		log.Fatal("GEMINI_API_KEY is required")
	}

	ctx := context.Background()

	db, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	docStore, err := storage.NewStore(storage.Config{
		Type:         storage.StoreType(cfg.StorageBackend),
		LocalPath:    cfg.DataDir,
		S3Bucket:     cfg.S3Bucket,
		S3Region:     cfg.S3Region,
		AWSAccessKey: cfg.AWSAccessKey,
		AWSSecretKey: cfg.AWSSecretKey,
	})
	if err != nil {
		log.Fatalf("Failed to initialize document store: %v", err)
	}

	ingestService := service.NewIngestService(
		service.IngestWithDocumentStore(docStore),
		service.IngestWithChunkStore(repository.NewChunkRepository(db, cfg.EmbeddingDimension)),
		service.IngestWithEmbedder(gemini.NewEmbeddingClient(cfg.GeminiAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDimension)),
		service.IngestWithRegistry(registry.New(cfg.RegistryPath)),
		service.IngestWithChunking(cfg.ChunkSize, cfg.ChunkOverlap, cfg.MinChunkLength),
		service.IngestWithBatchSize(cfg.EmbedBatchSize),
	)

	succeeded, failed := 0, 0
	for _, name := range strings.Split(*companies, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		result, err := ingestService.IngestCompany(ctx, name, *forceRefresh)
		if err != nil {
			log.Printf("Failed to ingest %s: %v", name, err)
			failed++
			continue
		}
		log.Printf("Ingested %s: %d documents, %d chunks stored, %d pruned",
			result.CompanyName, result.Documents, result.ChunksStored, result.Pruned)
		succeeded++
	}

	log.Printf("Done: %d succeeded, %d failed", succeeded, failed)
	if failed > 0 {
		log.Fatal("some companies failed to ingest")
	}
}
