package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

const generativeLanguageBase = "https://generativelanguage.googleapis.com/v1beta/models"

// APIError is a non-2xx response from the generative language API. The
// status code lets callers tell rate limiting and outages apart from
// request mistakes.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini API error: %d - %s", e.StatusCode, e.Message)
}

// RateLimited reports whether the API asked us to back off.
func (e *APIError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// Transient reports whether a retry could plausibly succeed.
func (e *APIError) Transient() bool {
	return e.RateLimited() || e.StatusCode >= 500
}

// EmbeddingClient generates embeddings through the Gemini REST API.
type EmbeddingClient struct {
	apiKey     string
	model      string
	dimension  int
	baseURL    string
	httpClient *http.Client
}

// NewEmbeddingClient creates an embedding client for the given model,
// producing vectors of the given dimension.
func NewEmbeddingClient(apiKey, model string, dimension int) *EmbeddingClient {
	return &EmbeddingClient{
		apiKey:     apiKey,
		model:      model,
		dimension:  dimension,
		baseURL:    generativeLanguageBase,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Dimension returns the embedding vector dimension.
func (c *EmbeddingClient) Dimension() int {
	return c.dimension
}

// ModelInfo returns the embedding model name.
func (c *EmbeddingClient) ModelInfo() string {
	return c.model
}

type embeddingRequest struct {
	Model                string       `json:"model"`
	Content              contentInput `json:"content"`
	TaskType             string       `json:"task_type,omitempty"`
	OutputDimensionality int          `json:"output_dimensionality,omitempty"`
}

type contentInput struct {
	Parts []partInput `json:"parts"`
}

type partInput struct {
	Text string `json:"text"`
}

type embeddingResponse struct {
	Embedding embeddingData `json:"embedding"`
}

type embeddingData struct {
	Values []float64 `json:"values"`
}

type batchEmbeddingRequest struct {
	Requests []embeddingRequest `json:"requests"`
}

// The batch endpoint returns values without the nested "embedding" key.
type batchEmbeddingResponse struct {
	Embeddings []embeddingData `json:"embeddings"`
}

// EmbedQuery embeds a search query (RETRIEVAL_QUERY task type). The vector
// comes back L2-normalized.
func (c *EmbeddingClient) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	reqBody := embeddingRequest{
		Model:                "models/" + c.model,
		Content:              contentInput{Parts: []partInput{{Text: text}}},
		TaskType:             "RETRIEVAL_QUERY",
		OutputDimensionality: c.dimension,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:embedContent", c.baseURL, c.model)
	body, err := c.post(ctx, url, jsonData)
	if err != nil {
		return nil, err
	}

	var apiResp embeddingResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(apiResp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("API returned empty embedding")
	}

	embedding := apiResp.Embedding.Values
	normalizeEmbedding(embedding)
	return embedding, nil
}

// EmbedDocuments embeds a batch of documents (RETRIEVAL_DOCUMENT task type)
// in one call. The caller controls batch sizing; vectors come back in input
// order, L2-normalized.
func (c *EmbeddingClient) EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	requests := make([]embeddingRequest, len(texts))
	for i, text := range texts {
		requests[i] = embeddingRequest{
			Model:                "models/" + c.model,
			Content:              contentInput{Parts: []partInput{{Text: text}}},
			TaskType:             "RETRIEVAL_DOCUMENT",
			OutputDimensionality: c.dimension,
		}
	}

	jsonData, err := json.Marshal(batchEmbeddingRequest{Requests: requests})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal batch request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:batchEmbedContents", c.baseURL, c.model)
	body, err := c.post(ctx, url, jsonData)
	if err != nil {
		return nil, err
	}

	var apiResp batchEmbeddingResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(apiResp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("mismatch: got %d embeddings for %d texts", len(apiResp.Embeddings), len(texts))
	}

	embeddings := make([][]float64, len(texts))
	for i, e := range apiResp.Embeddings {
		if len(e.Values) == 0 {
			return nil, fmt.Errorf("text %d has empty embedding", i)
		}
		normalizeEmbedding(e.Values)
		embeddings[i] = e.Values
	}
	return embeddings, nil
}

func (c *EmbeddingClient) post(ctx context.Context, url string, jsonData []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(body)}
	}
	return body, nil
}

// normalizeEmbedding scales the vector to unit length in place. Required
// for truncated output dimensions below the model's native size.
func normalizeEmbedding(embedding []float64) {
	var sumSq float64
	for _, v := range embedding {
		sumSq += v * v
	}
	norm := math.Sqrt(sumSq)
	if norm == 0 {
		return
	}
	for i := range embedding {
		embedding[i] /= norm
	}
}
