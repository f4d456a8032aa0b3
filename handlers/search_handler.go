package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"investiq-backend/service"
)

// SearchHandler handles HTTP requests for semantic search
type SearchHandler struct {
	retrieval *service.RetrievalService
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(retrieval *service.RetrievalService) *SearchHandler {
	return &SearchHandler{retrieval: retrieval}
}

// SearchRequest represents the request body for semantic search
type SearchRequest struct {
	CompanyName  string `json:"company_name" binding:"required"`
	Query        string `json:"query" binding:"required"`
	TopK         int    `json:"top_k"`
	FilterSource string `json:"filter_source"`
}

// normalizeFilter drops the placeholder values interactive API consoles
// send for an unset filter.
func normalizeFilter(filter string) string {
	switch filter {
	case "", "string", "null":
		return ""
	}
	return filter
}

// SearchPost handles POST /rag/search
func (h *SearchHandler) SearchPost(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	h.search(c, req)
}

// SearchGet handles GET /rag/search
func (h *SearchHandler) SearchGet(c *gin.Context) {
	topK, _ := strconv.Atoi(c.DefaultQuery("top_k", "0"))
	req := SearchRequest{
		CompanyName:  c.Query("company_name"),
		Query:        c.Query("query"),
		TopK:         topK,
		FilterSource: c.Query("filter_source"),
	}
	h.search(c, req)
}

func (h *SearchHandler) search(c *gin.Context, req SearchRequest) {
	results, err := h.retrieval.Search(
		c.Request.Context(),
		req.CompanyName,
		req.Query,
		req.TopK,
		normalizeFilter(req.FilterSource),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"company_name":  req.CompanyName,
		"query":         req.Query,
		"results":       results,
		"total_results": len(results),
	})
}
