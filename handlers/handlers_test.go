package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"investiq-backend/gemini"
	"investiq-backend/models"
	"investiq-backend/registry"
	"investiq-backend/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeEmbedder implements service.Embedder.
type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) EmbedQuery(context.Context, string) ([]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float64{0.1}, nil
}

func (f *fakeEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = []float64{0.1}
	}
	return out, nil
}

// fakeStore implements service.ChunkStore.
type fakeStore struct {
	results      []models.RetrievedResult
	searchErr    error
	companyNames func() ([]string, error)
}

func (f *fakeStore) Search(context.Context, []float64, string, string, int) ([]models.RetrievedResult, error) {
	return f.results, f.searchErr
}
func (f *fakeStore) UpsertChunks(context.Context, []models.Chunk) error   { return nil }
func (f *fakeStore) DeleteCompany(context.Context, string) (int64, error) { return 0, nil }
func (f *fakeStore) PruneStale(context.Context, string, string, string) (int64, error) {
	return 0, nil
}
func (f *fakeStore) CompanyNames(context.Context) ([]string, error) {
	if f.companyNames != nil {
		return f.companyNames()
	}
	return []string{"abridge", "sierra"}, nil
}
func (f *fakeStore) HasCompany(context.Context, string) (bool, error) { return true, nil }
func (f *fakeStore) Stats(context.Context) (*models.StoreStats, error) {
	return &models.StoreStats{TotalChunks: 12, TotalCompanies: 2, Companies: []string{"abridge", "sierra"}}, nil
}

// fakeGenerator implements service.TextGenerator.
type fakeGenerator struct {
	text string
}

func (f *fakeGenerator) Generate(context.Context, gemini.GenerateRequest) (*gemini.GenerateResponse, error) {
	text := f.text
	if text == "" {
		text = "generated"
	}
	return &gemini.GenerateResponse{Text: text, TokensUsed: 10}, nil
}

func newRetrieval(store *fakeStore, embedder *fakeEmbedder) *service.RetrievalService {
	return service.NewRetrievalService(
		service.RetrievalWithEmbedder(embedder),
		service.RetrievalWithStore(store),
		service.RetrievalWithDefaultTopK(5),
	)
}

func sampleResults() []models.RetrievedResult {
	return []models.RetrievedResult{
		{
			Text:        "Acme raised a series B",
			SourceURL:   "https://acme.com/news",
			SourceType:  "news",
			Distance:    0.7,
			QualityTier: models.TierExcellent,
		},
	}
}

func performJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSearchPost(t *testing.T) {
	retrieval := newRetrieval(&fakeStore{results: sampleResults()}, &fakeEmbedder{})
	r := gin.New()
	h := NewSearchHandler(retrieval)
	r.POST("/rag/search", h.SearchPost)

	w := performJSON(r, http.MethodPost, "/rag/search", gin.H{
		"company_name": "acme",
		"query":        "funding",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		CompanyName  string                   `json:"company_name"`
		Results      []models.RetrievedResult `json:"results"`
		TotalResults int                      `json:"total_results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "acme", resp.CompanyName)
	assert.Equal(t, 1, resp.TotalResults)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, models.TierExcellent, resp.Results[0].QualityTier)
}

func TestSearchPostMissingFields(t *testing.T) {
	retrieval := newRetrieval(&fakeStore{}, &fakeEmbedder{})
	r := gin.New()
	r.POST("/rag/search", NewSearchHandler(retrieval).SearchPost)

	w := performJSON(r, http.MethodPost, "/rag/search", gin.H{"company_name": "acme"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchGet(t *testing.T) {
	retrieval := newRetrieval(&fakeStore{results: sampleResults()}, &fakeEmbedder{})
	r := gin.New()
	r.GET("/rag/search", NewSearchHandler(retrieval).SearchGet)

	req := httptest.NewRequest(http.MethodGet, "/rag/search?company_name=acme&query=funding&top_k=3", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "series B")
}

func TestSearchEmbeddingOutageMapsTo503(t *testing.T) {
	retrieval := newRetrieval(&fakeStore{}, &fakeEmbedder{err: errors.New("down")})
	r := gin.New()
	r.POST("/rag/search", NewSearchHandler(retrieval).SearchPost)

	w := performJSON(r, http.MethodPost, "/rag/search", gin.H{
		"company_name": "acme",
		"query":        "funding",
	})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "UPSTREAM_UNAVAILABLE")
}

func TestNormalizeFilter(t *testing.T) {
	assert.Equal(t, "", normalizeFilter(""))
	assert.Equal(t, "", normalizeFilter("string"))
	assert.Equal(t, "", normalizeFilter("null"))
	assert.Equal(t, "about", normalizeFilter("about"))
}

func dashboardText() string {
	out := ""
	for _, h := range models.DashboardSectionHeadings {
		out += h + "\nNot disclosed.\n\n"
	}
	return out
}

func newDashboardRouter(store *fakeStore) *gin.Engine {
	retrieval := newRetrieval(store, &fakeEmbedder{})
	svc := service.NewDashboardService(
		service.DashboardWithRetrieval(retrieval),
		service.DashboardWithGenerator(&fakeGenerator{text: dashboardText()}),
		service.DashboardWithModel("gemini-1.5-pro"),
		service.DashboardWithTokenBudget(3000),
	)
	r := gin.New()
	h := NewDashboardHandler(svc)
	r.POST("/dashboard/rag", h.GeneratePost)
	r.GET("/dashboard/rag/:company_name", h.GenerateGet)
	return r
}

func TestDashboardPost(t *testing.T) {
	r := newDashboardRouter(&fakeStore{results: sampleResults()})

	w := performJSON(r, http.MethodPost, "/dashboard/rag", gin.H{"company_name": "acme"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.DashboardResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "acme", resp.CompanyName)
	assert.Equal(t, "success", resp.Metadata.Status)
	assert.Equal(t, 8, resp.Metadata.SectionsPresent)
}

func TestDashboardGet(t *testing.T) {
	r := newDashboardRouter(&fakeStore{results: sampleResults()})

	req := httptest.NewRequest(http.MethodGet, "/dashboard/rag/acme?top_k=10", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Company Overview")
}

func TestDashboardInvalidTopK(t *testing.T) {
	r := newDashboardRouter(&fakeStore{})

	w := performJSON(r, http.MethodPost, "/dashboard/rag", gin.H{"company_name": "acme", "top_k": 3})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDashboardNoContext(t *testing.T) {
	r := newDashboardRouter(&fakeStore{})

	w := performJSON(r, http.MethodPost, "/dashboard/rag", gin.H{"company_name": "ghost"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.DashboardResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "no_context", resp.Metadata.Status)
}

func TestChat(t *testing.T) {
	retrieval := newRetrieval(&fakeStore{results: sampleResults()}, &fakeEmbedder{})
	svc := service.NewChatService(
		service.ChatWithRetrieval(retrieval),
		service.ChatWithGenerator(&fakeGenerator{text: "they raised a series B"}),
		service.ChatWithModel("gemini-1.5-pro"),
		service.ChatWithTokenBudget(3000),
		service.ChatWithHistoryWindow(10),
	)
	r := gin.New()
	r.POST("/chat", NewChatHandler(svc).Chat)

	w := performJSON(r, http.MethodPost, "/chat", gin.H{
		"company_name": "acme",
		"message":      "what funding has acme raised?",
		"conversation_history": []gin.H{
			{"role": "user", "content": "hi"},
			{"role": "assistant", "content": "hello"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.ChatResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.UsedRetrieval)
	assert.Equal(t, "they raised a series B", resp.Message)
}

func TestChatMissingMessage(t *testing.T) {
	svc := service.NewChatService(
		service.ChatWithRetrieval(newRetrieval(&fakeStore{}, &fakeEmbedder{})),
		service.ChatWithGenerator(&fakeGenerator{}),
	)
	r := gin.New()
	r.POST("/chat", NewChatHandler(svc).Chat)

	w := performJSON(r, http.MethodPost, "/chat", gin.H{"company_name": "acme"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func newSystemRouter(store *fakeStore, reg *registry.Registry) *gin.Engine {
	retrieval := newRetrieval(store, &fakeEmbedder{})
	h := NewSystemHandler(retrieval, reg, "gemini-embedding-001")
	r := gin.New()
	r.GET("/", h.Index)
	r.GET("/health", h.Health)
	r.GET("/companies", h.Companies)
	r.GET("/stats", h.Stats)
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIndex(t *testing.T) {
	r := newSystemRouter(&fakeStore{}, nil)
	w := get(r, "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "InvestIQ")
}

func TestHealthConnected(t *testing.T) {
	r := newSystemRouter(&fakeStore{}, nil)
	w := get(r, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["vector_db_connected"])
	assert.Equal(t, float64(2), resp["companies_indexed"])
}

func TestHealthDegradedStill200(t *testing.T) {
	store := &fakeStore{companyNames: func() ([]string, error) {
		return nil, errors.New("connection refused")
	}}
	r := newSystemRouter(store, nil)

	w := get(r, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["vector_db_connected"])
}

func TestCompaniesFromRegistry(t *testing.T) {
	dir := t.TempDir()
	reg := registry.New(filepath.Join(dir, "registry.json"))
	require.NoError(t, reg.Register("zeta", 10, 2, "run-1"))
	require.NoError(t, reg.Register("alpha", 5, 1, "run-2"))

	r := newSystemRouter(&fakeStore{}, reg)
	w := get(r, "/companies")
	require.Equal(t, http.StatusOK, w.Code)

	var names []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &names))
	assert.Equal(t, []string{"alpha", "zeta"}, names)
}

func TestCompaniesFallsBackToStore(t *testing.T) {
	reg := registry.New(filepath.Join(t.TempDir(), "missing.json"))
	r := newSystemRouter(&fakeStore{}, reg)

	w := get(r, "/companies")
	require.Equal(t, http.StatusOK, w.Code)

	var names []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &names))
	assert.Equal(t, []string{"abridge", "sierra"}, names)
}

func TestStats(t *testing.T) {
	r := newSystemRouter(&fakeStore{}, nil)
	w := get(r, "/stats")
	require.Equal(t, http.StatusOK, w.Code)

	var stats models.StoreStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 12, stats.TotalChunks)
	assert.Equal(t, "gemini-embedding-001", stats.EmbeddingModel)
}
