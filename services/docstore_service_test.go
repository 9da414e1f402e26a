package services

import (
	"path/filepath"
	"testing"

	"github/devansh/notebook-rag/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocstorePutGetRoundtrip(t *testing.T) {
	store := NewDocstoreService(filepath.Join(t.TempDir(), "docstore"))
	require.NoError(t, store.Reset())

	parent := models.Chunk{
		ID:   "parent-1",
		Text: "The deploy pipeline uses blue-green releases.",
		Metadata: map[string]interface{}{
			models.MetaSource: "deploys.md",
			models.MetaKind:   models.SourceKindLocal,
		},
	}
	require.NoError(t, store.Put(parent))

	got, err := store.Get("parent-1")
	require.NoError(t, err)
	assert.Equal(t, parent.Text, got.Text)
	assert.Equal(t, "deploys.md", got.Metadata[models.MetaSource])
}

func TestDocstoreResetReplacesPreviousStore(t *testing.T) {
	store := NewDocstoreService(filepath.Join(t.TempDir(), "docstore"))
	require.NoError(t, store.Reset())
	require.NoError(t, store.Put(models.Chunk{ID: "old", Text: "old content"}))

	require.NoError(t, store.Reset())

	count, err := store.Count()
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = store.Get("old")
	assert.Error(t, err)
}

func TestDocstoreListOrderedByID(t *testing.T) {
	store := NewDocstoreService(filepath.Join(t.TempDir(), "docstore"))
	require.NoError(t, store.Reset())
	require.NoError(t, store.Put(models.Chunk{ID: "b", Text: "second"}))
	require.NoError(t, store.Put(models.Chunk{ID: "a", Text: "first"}))

	parents, err := store.List()
	require.NoError(t, err)
	require.Len(t, parents, 2)
	assert.Equal(t, "a", parents[0].ID)
	assert.Equal(t, "b", parents[1].ID)
}

func TestDocstoreRejectsEscapingIDs(t *testing.T) {
	store := NewDocstoreService(filepath.Join(t.TempDir(), "docstore"))
	require.NoError(t, store.Reset())

	err := store.Put(models.Chunk{ID: "../escape", Text: "nope"})
	assert.Error(t, err)

	err = store.Put(models.Chunk{ID: "", Text: "nope"})
	assert.Error(t, err)
}

func TestDocstoreExists(t *testing.T) {
	store := NewDocstoreService(filepath.Join(t.TempDir(), "docstore"))
	assert.False(t, store.Exists())
	require.NoError(t, store.Reset())
	assert.True(t, store.Exists())
}
