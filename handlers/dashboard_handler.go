package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"investiq-backend/service"
)

// DashboardHandler handles HTTP requests for dashboard generation
type DashboardHandler struct {
	dashboards *service.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboards *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards}
}

// DashboardRequest represents the request body for dashboard generation
type DashboardRequest struct {
	CompanyName string  `json:"company_name" binding:"required"`
	TopK        int     `json:"top_k"`
	MaxTokens   int32   `json:"max_tokens"`
	Temperature float32 `json:"temperature"`
	Model       string  `json:"model"`
}

// GeneratePost handles POST /dashboard/rag
func (h *DashboardHandler) GeneratePost(c *gin.Context) {
	var req DashboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	h.generate(c, req)
}

// GenerateGet handles GET /dashboard/rag/:company_name
func (h *DashboardHandler) GenerateGet(c *gin.Context) {
	topK, _ := strconv.Atoi(c.DefaultQuery("top_k", "0"))
	maxTokens, _ := strconv.Atoi(c.DefaultQuery("max_tokens", "0"))
	temperature, _ := strconv.ParseFloat(c.DefaultQuery("temperature", "0"), 32)
	req := DashboardRequest{
		CompanyName: c.Param("company_name"),
		TopK:        topK,
		MaxTokens:   int32(maxTokens),
		Temperature: float32(temperature),
	}
	h.generate(c, req)
}

func (h *DashboardHandler) generate(c *gin.Context, req DashboardRequest) {
	result, err := h.dashboards.Generate(c.Request.Context(), service.DashboardRequest{
		CompanyName: req.CompanyName,
		TopK:        req.TopK,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Model:       req.Model,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
