package handlers

import (
	"log"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"investiq-backend/registry"
	"investiq-backend/service"
)

// SystemHandler serves the index, health, companies, and stats endpoints.
type SystemHandler struct {
	retrieval      *service.RetrievalService
	registry       *registry.Registry
	embeddingModel string
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(retrieval *service.RetrievalService, reg *registry.Registry, embeddingModel string) *SystemHandler {
	return &SystemHandler{
		retrieval:      retrieval,
		registry:       reg,
		embeddingModel: embeddingModel,
	}
}

// Index handles GET /
func (h *SystemHandler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"title":       "InvestIQ API - RAG Pipeline",
		"version":     "1.0.0",
		"description": "Semantic search and AI-generated investment analysis",
		"endpoints": gin.H{
			"health":        "GET /health - Health check with vector DB status",
			"companies":     "GET /companies - List all indexed companies",
			"stats":         "GET /stats - Vector store statistics",
			"rag_search":    "GET/POST /rag/search - Semantic search through company data",
			"dashboard_rag": "GET/POST /dashboard/rag - Generate investment analysis",
			"chat":          "POST /chat - Conversational interface",
		},
	})
}

// Health handles GET /health. A degraded vector store still answers 200
// with vector_db_connected false.
func (h *SystemHandler) Health(c *gin.Context) {
	companies, err := h.retrieval.Companies(c.Request.Context())
	if err != nil {
		log.Printf("health check: vector store unreachable: %v", err)
		c.JSON(http.StatusOK, gin.H{
			"status":              "ok",
			"vector_db_connected": false,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":              "ok",
		"vector_db_connected": true,
		"companies_indexed":   len(companies),
	})
}

// Companies handles GET /companies. The registry answers first; the store's
// distinct companies are the fallback when the registry is empty or
// unreadable.
func (h *SystemHandler) Companies(c *gin.Context) {
	if h.registry != nil {
		names, err := h.registry.Companies()
		if err != nil {
			log.Printf("registry read failed, falling back to store: %v", err)
		} else if len(names) > 0 {
			c.JSON(http.StatusOK, names)
			return
		}
	}

	names, err := h.retrieval.Companies(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	sort.Strings(names)
	c.JSON(http.StatusOK, names)
}

// Stats handles GET /stats
func (h *SystemHandler) Stats(c *gin.Context) {
	stats, err := h.retrieval.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	stats.EmbeddingModel = h.embeddingModel
	stats.ChunkingMethod = "structure-aware with overlap"
	c.JSON(http.StatusOK, stats)
}
