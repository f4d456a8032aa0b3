package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/google/generative-ai-go/genai"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"

	"investiq-backend/config"
	"investiq-backend/gemini"
	"investiq-backend/handlers"
	"investiq-backend/registry"
	"investiq-backend/repository"
	"investiq-backend/service"
	"investiq-backend/websearch"
)

func main() {
	// Load environment variables
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

	// Initialize Postgres with pgvector
	db, err := initPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize Gemini clients
	ctx := context.Background()
	genaiClient, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		log.Fatalf("Failed to create Gemini client: %v", err)
	}
	defer genaiClient.Close()

	embedder := gemini.NewEmbeddingClient(cfg.GeminiAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDimension)
	generator := gemini.NewGenerator(genaiClient)

	// Initialize repositories and services
	chunkRepo := repository.NewChunkRepository(db, cfg.EmbeddingDimension)
	companyRegistry := registry.New(cfg.RegistryPath)

	retrievalService := service.NewRetrievalService(
		service.RetrievalWithEmbedder(embedder),
		service.RetrievalWithStore(chunkRepo),
		service.RetrievalWithDefaultTopK(cfg.DefaultTopK),
	)
	dashboardService := service.NewDashboardService(
		service.DashboardWithRetrieval(retrievalService),
		service.DashboardWithGenerator(generator),
		service.DashboardWithModel(cfg.GenerationModel),
		service.DashboardWithTokenBudget(cfg.ContextTokenBudget),
	)

	chatOpts := []service.ChatServiceOption{
		service.ChatWithRetrieval(retrievalService),
		service.ChatWithGenerator(generator),
		service.ChatWithModel(cfg.GenerationModel),
		service.ChatWithTokenBudget(cfg.ContextTokenBudget),
		service.ChatWithHistoryWindow(cfg.HistoryWindow),
	}
	if cfg.TavilyAPIKey != "" {
		chatOpts = append(chatOpts, service.ChatWithWebSearcher(websearch.NewClient(cfg.TavilyAPIKey)))
	} else {
		log.Println("TAVILY_API_KEY not set, web search fallback disabled")
	}
	chatService := service.NewChatService(chatOpts...)

	// Initialize handlers
	searchHandler := handlers.NewSearchHandler(retrievalService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	chatHandler := handlers.NewChatHandler(chatService)
	systemHandler := handlers.NewSystemHandler(retrievalService, companyRegistry, cfg.EmbeddingModel)

	// Setup Gin router
	r := gin.Default()

	r.GET("/", systemHandler.Index)
	r.GET("/health", systemHandler.Health)
	r.GET("/companies", systemHandler.Companies)
	r.GET("/stats", systemHandler.Stats)

	rag := r.Group("/rag")
	{
		rag.GET("/search", searchHandler.SearchGet)
		rag.POST("/search", searchHandler.SearchPost)
	}

	dashboard := r.Group("/dashboard")
	{
		dashboard.POST("/rag", dashboardHandler.GeneratePost)
		dashboard.GET("/rag/:company_name", dashboardHandler.GenerateGet)
	}

	r.POST("/chat", chatHandler.Chat)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func initPostgres(connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	// Enable pgvector extension
	_, err = pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		log.Printf("Warning: Failed to create pgvector extension: %v", err)
		log.Println("This may be normal if extension is already installed or requires superuser privileges")
	} else {
		log.Println("pgvector extension enabled")
	}

	log.Println("Postgres connection established with pgvector support")
	return pool, nil
}
