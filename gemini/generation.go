package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"

	"investiq-backend/models"
)

// GenerateRequest describes one generation call. History and system prompt
// are optional; dashboard generation sends a single user message, chat
// sends the caller's history window.
type GenerateRequest struct {
	Model           string
	SystemPrompt    string
	History         []models.ConversationTurn
	Message         string
	Temperature     float32
	MaxOutputTokens int32
}

// GenerateResponse carries the model output and its reported token usage.
type GenerateResponse struct {
	Text       string
	TokensUsed int
}

// Generator wraps the Gemini SDK client for text generation.
type Generator struct {
	client *genai.Client
}

// NewGenerator creates a generator on top of an initialized genai client.
func NewGenerator(client *genai.Client) *Generator {
	return &Generator{client: client}
}

// Generate runs one generation call with the request's mode parameters.
func (g *Generator) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	model := g.client.GenerativeModel(req.Model)
	model.SetTemperature(req.Temperature)
	if req.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(req.MaxOutputTokens)
	}
	if req.SystemPrompt != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.SystemPrompt)},
		}
	}

	session := model.StartChat()
	for _, turn := range req.History {
		session.History = append(session.History, &genai.Content{
			Role:  genaiRole(turn.Role),
			Parts: []genai.Part{genai.Text(turn.Content)},
		})
	}

	resp, err := session.SendMessage(ctx, genai.Text(req.Message))
	if err != nil {
		return nil, fmt.Errorf("generation request failed: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("API returned no candidates")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("API returned empty content (finish reason: %v)", resp.Candidates[0].FinishReason)
	}

	out := &GenerateResponse{Text: text.String()}
	if resp.UsageMetadata != nil {
		out.TokensUsed = int(resp.UsageMetadata.TotalTokenCount)
	}
	return out, nil
}

// genaiRole maps chat roles to the SDK's user/model vocabulary.
func genaiRole(role string) string {
	if role == "assistant" || role == "model" {
		return "model"
	}
	return "user"
}

// IsTransient reports whether a generation or embedding error is worth one
// retry: rate limiting, 5xx responses, or a dropped connection. Context
// cancellation is deliberate and never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Transient()
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code == 429 || gErr.Code >= 500
	}
	return false
}
