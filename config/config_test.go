package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "vector_store", cfg.VectorStoreDir)
	assert.Equal(t, "docstore_data", cfg.DocstoreDir)
	assert.Equal(t, "gemini", cfg.EmbeddingProvider)
	assert.Equal(t, "text-embedding-004", cfg.EmbeddingModel)
	assert.Equal(t, 6, cfg.RetrievalK)
	assert.Equal(t, 2000, cfg.ParentChunkSize)
	assert.Equal(t, 400, cfg.ChildChunkSize)
	assert.InDelta(t, 0.3, cfg.Temperature, 0.001)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RETRIEVAL_K", "15")
	t.Setenv("LLM_PROVIDER", "ollama")
	t.Setenv("LLM_MODEL", "llama3.1:8b")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 15, cfg.RetrievalK)
	assert.Equal(t, "ollama", cfg.LLMProvider)
	assert.Equal(t, "llama3.1:8b", cfg.LLMModel)
}

func TestValidateRejectsBadProvider(t *testing.T) {
	t.Setenv("EMBEDDING_PROVIDER", "openai")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidateRejectsChildLargerThanParent(t *testing.T) {
	t.Setenv("CHILD_CHUNK_SIZE", "3000")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidateRejectsOverlapLargerThanChild(t *testing.T) {
	t.Setenv("CHILD_CHUNK_OVERLAP", "500")
	_, err := Load()
	assert.Error(t, err)
}

func TestInvalidIntFallsBackToDefault(t *testing.T) {
	t.Setenv("RETRIEVAL_K", "not-a-number")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.RetrievalK)
}
