package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"investiq-backend/models"
)

func newRetrieval(embedder Embedder, store ChunkStore) *RetrievalService {
	return NewRetrievalService(
		RetrievalWithEmbedder(embedder),
		RetrievalWithStore(store),
		RetrievalWithDefaultTopK(5),
	)
}

func TestClampTopK(t *testing.T) {
	svc := newRetrieval(&fakeEmbedder{}, &fakeChunkStore{})

	assert.Equal(t, 5, svc.ClampTopK(0))
	assert.Equal(t, 1, svc.ClampTopK(-3))
	assert.Equal(t, 1, svc.ClampTopK(1))
	assert.Equal(t, 17, svc.ClampTopK(17))
	assert.Equal(t, 30, svc.ClampTopK(30))
	assert.Equal(t, 30, svc.ClampTopK(100))
}

func TestSearchValidation(t *testing.T) {
	svc := newRetrieval(&fakeEmbedder{}, &fakeChunkStore{})

	_, err := svc.Search(context.Background(), "", "funding", 5, "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Search(context.Background(), "acme", "   ", 5, "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSearchReturnsTieredResults(t *testing.T) {
	store := &fakeChunkStore{
		search: func(_ context.Context, _ []float64, company, sourceType string, limit int) ([]models.RetrievedResult, error) {
			assert.Equal(t, "acme", company)
			assert.Equal(t, "", sourceType)
			assert.Equal(t, 3, limit)
			return resultsAt(0.8, 1.2, 1.9), nil
		},
	}
	svc := newRetrieval(&fakeEmbedder{}, store)

	results, err := svc.Search(context.Background(), "acme", "funding history", 3, "")
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, models.TierExcellent, results[0].QualityTier)
	assert.Equal(t, models.TierGood, results[1].QualityTier)
	assert.Equal(t, models.TierFair, results[2].QualityTier)
}

func TestSearchUnknownCompanyIsEmptyNotError(t *testing.T) {
	svc := newRetrieval(&fakeEmbedder{}, &fakeChunkStore{})

	results, err := svc.Search(context.Background(), "nobody", "funding", 5, "")
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestSearchSourceFilterOverscans(t *testing.T) {
	var gotLimit int
	store := &fakeChunkStore{
		search: func(_ context.Context, _ []float64, _, sourceType string, limit int) ([]models.RetrievedResult, error) {
			assert.Equal(t, "about", sourceType)
			gotLimit = limit
			return resultsAt(0.5, 0.6, 0.7, 0.8, 0.9, 1.0), nil
		},
	}
	svc := newRetrieval(&fakeEmbedder{}, store)

	results, err := svc.Search(context.Background(), "acme", "funding", 3, "about")
	require.NoError(t, err)
	assert.Equal(t, 6, gotLimit)
	assert.Len(t, results, 3)
}

func TestSearchEmbeddingFailure(t *testing.T) {
	embedder := &fakeEmbedder{
		embedQuery: func(context.Context, string) ([]float64, error) {
			return nil, errors.New("boom")
		},
	}
	svc := newRetrieval(embedder, &fakeChunkStore{})

	_, err := svc.Search(context.Background(), "acme", "funding", 5, "")
	assert.ErrorIs(t, err, ErrEmbeddingUnavailable)
}

func TestSearchStoreFailure(t *testing.T) {
	store := &fakeChunkStore{
		search: func(context.Context, []float64, string, string, int) ([]models.RetrievedResult, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := newRetrieval(&fakeEmbedder{}, store)

	_, err := svc.Search(context.Background(), "acme", "funding", 5, "")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.NotErrorIs(t, err, ErrEmbeddingUnavailable)
}
