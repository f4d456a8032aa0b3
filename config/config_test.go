package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 768, cfg.EmbeddingDimension)
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, 200, cfg.ChunkOverlap)
	assert.Equal(t, 50, cfg.MinChunkLength)
	assert.Equal(t, 50, cfg.EmbedBatchSize)
	assert.Equal(t, 5, cfg.DefaultTopK)
	assert.Equal(t, 3000, cfg.ContextTokenBudget)
	assert.Equal(t, 10, cfg.HistoryWindow)
	assert.Equal(t, "local", cfg.StorageBackend)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("CHUNK_SIZE", "500")
	t.Setenv("CHUNK_OVERLAP", "100")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 500, cfg.ChunkSize)
	assert.Equal(t, 100, cfg.ChunkOverlap)
}

func TestLoadRejectsOverlapAtOrAboveSize(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "100")
	t.Setenv("CHUNK_OVERLAP", "100")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadInt(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "not-a-number")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadS3RequiresBucket(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "s3")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("S3_BUCKET", "investiq-raw")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "investiq-raw", cfg.S3Bucket)
}

func TestCleanValueStripsQuotes(t *testing.T) {
	assert.Equal(t, "abc", cleanValue(`"abc"`))
	assert.Equal(t, "abc", cleanValue(`'abc'`))
	assert.Equal(t, "abc", cleanValue(" abc "))
	assert.Equal(t, "", cleanValue(`""`))
}
