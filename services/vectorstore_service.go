package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github/devansh/notebook-rag/models"

	"github.com/philippgille/chromem-go"
)

const (
	collectionName = "notebook"
	manifestName   = "manifest.json"
)

// Manifest records what the persisted index was built with. It is written
// last during ingestion and doubles as the commit marker: no manifest, no
// knowledge base.
type Manifest struct {
	EmbeddingModel string    `json:"embedding_model"`
	Parents        int       `json:"parents"`
	Children       int       `json:"children"`
	CreatedAt      time.Time `json:"created_at"`
}

// VectorStoreService wraps the persisted child-chunk index.
type VectorStoreService struct {
	dir        string
	collection *chromem.Collection
}

// NewVectorStoreForIngest wipes any previous index under dir and opens a
// fresh one. The collection's embedding func is bound to the configured
// embedder so query-time and ingest-time models cannot diverge.
func NewVectorStoreForIngest(dir string, embedder Embedder) (*VectorStoreService, error) {
	if err := os.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("could not remove previous vector store: %w", err)
	}
	db, err := chromem.NewPersistentDB(dir, false)
	if err != nil {
		return nil, fmt.Errorf("could not create vector store: %w", err)
	}
	collection, err := db.GetOrCreateCollection(collectionName, nil, embeddingFuncFor(embedder))
	if err != nil {
		return nil, fmt.Errorf("could not create collection: %w", err)
	}
	return &VectorStoreService{dir: dir, collection: collection}, nil
}

// OpenVectorStore loads a previously persisted index. It fails with
// ErrKnowledgeBaseMissing when no completed ingestion run exists, and with
// ErrModelMismatch when the index was built with a different embedding
// model than the one configured.
func OpenVectorStore(dir string, embedder Embedder) (*VectorStoreService, error) {
	manifest, err := ReadManifest(dir)
	if err != nil {
		return nil, err
	}
	if manifest.EmbeddingModel != embedder.ModelName() {
		return nil, fmt.Errorf("%w: index built with %q, configured %q",
			ErrModelMismatch, manifest.EmbeddingModel, embedder.ModelName())
	}

	db, err := chromem.NewPersistentDB(dir, false)
	if err != nil {
		return nil, fmt.Errorf("could not open vector store: %w", err)
	}
	collection := db.GetCollection(collectionName, embeddingFuncFor(embedder))
	if collection == nil {
		return nil, ErrKnowledgeBaseMissing
	}
	return &VectorStoreService{dir: dir, collection: collection}, nil
}

// AddChildren indexes child chunks with their precomputed embeddings.
func (s *VectorStoreService) AddChildren(ctx context.Context, children []models.Chunk, vectors [][]float32) error {
	if len(children) != len(vectors) {
		return fmt.Errorf("have %d children but %d vectors", len(children), len(vectors))
	}

	docs := make([]chromem.Document, 0, len(children))
	for i, child := range children {
		metadata := map[string]string{
			models.MetaParentID: child.ParentID,
		}
		if source, ok := child.Metadata[models.MetaSource].(string); ok {
			metadata[models.MetaSource] = source
		}
		docs = append(docs, chromem.Document{
			ID:        child.ID,
			Metadata:  metadata,
			Embedding: vectors[i],
			Content:   child.Text,
		})
	}

	if err := s.collection.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("could not add child chunks to index: %w", err)
	}
	return nil
}

// QueryNearest returns up to k nearest child chunks for a query embedding,
// most similar first. k is clamped to the collection size.
func (s *VectorStoreService) QueryNearest(ctx context.Context, queryEmbedding []float32, k int) ([]chromem.Result, error) {
	if count := s.collection.Count(); k > count {
		k = count
	}
	if k == 0 {
		return nil, nil
	}
	results, err := s.collection.QueryEmbedding(ctx, queryEmbedding, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}
	return results, nil
}

// Count returns the number of indexed child chunks.
func (s *VectorStoreService) Count() int {
	return s.collection.Count()
}

// WriteManifest commits the ingestion run.
func (s *VectorStoreService) WriteManifest(m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("could not serialize manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, manifestName), data, 0644); err != nil {
		return fmt.Errorf("could not write manifest: %w", err)
	}
	return nil
}

// ReadManifest loads the manifest for a persisted index, mapping absence
// to ErrKnowledgeBaseMissing.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrKnowledgeBaseMissing
		}
		return nil, fmt.Errorf("could not read manifest: %w", err)
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("could not parse manifest: %w", err)
	}
	return &manifest, nil
}

func embeddingFuncFor(embedder Embedder) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return embedder.EmbedQuery(ctx, text)
	}
}
