package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"investiq-backend/models"
	"investiq-backend/service"
)

// ChatHandler handles HTTP requests for the chat interface
type ChatHandler struct {
	chat *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// ChatRequest represents the request body for one chat turn. Web search
// defaults to enabled; a deployment without a search key ignores the flag.
type ChatRequest struct {
	CompanyName     string                    `json:"company_name" binding:"required"`
	Message         string                    `json:"message" binding:"required"`
	History         []models.ConversationTurn `json:"conversation_history"`
	TopK            int                       `json:"top_k"`
	Model           string                    `json:"model"`
	Temperature     float32                   `json:"temperature"`
	EnableWebSearch *bool                     `json:"enable_web_search"`
}

// Chat handles POST /chat
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	disableWeb := req.EnableWebSearch != nil && !*req.EnableWebSearch

	result, err := h.chat.Chat(c.Request.Context(), service.ChatRequest{
		CompanyName:      req.CompanyName,
		Message:          req.Message,
		History:          req.History,
		TopK:             req.TopK,
		Model:            req.Model,
		Temperature:      req.Temperature,
		DisableWebSearch: disableWeb,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
