package services

import (
	"context"
	"fmt"
	"log"

	"github/devansh/notebook-rag/models"
)

// Retriever finds parent chunks relevant to a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]models.SourceDocument, error)
}

// ParentRetriever embeds the query, finds the k nearest child chunks, and
// maps them back to their owning parents. Parents are returned because
// they carry richer context than the precise-match children.
type ParentRetriever struct {
	embedder    Embedder
	vectorStore *VectorStoreService
	docstore    *DocstoreService
	k           int
}

// NewParentRetriever creates a retriever over an opened vector store.
func NewParentRetriever(embedder Embedder, vectorStore *VectorStoreService, docstore *DocstoreService, k int) *ParentRetriever {
	return &ParentRetriever{
		embedder:    embedder,
		vectorStore: vectorStore,
		docstore:    docstore,
		k:           k,
	}
}

// Retrieve implements Retriever. Multiple matching children under the
// same parent contribute that parent once, in best-similarity order. An
// unreadable parent blob fails this retrieval only.
func (r *ParentRetriever) Retrieve(ctx context.Context, query string) ([]models.SourceDocument, error) {
	queryEmbedding, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := r.vectorStore.QueryNearest(ctx, queryEmbedding, r.k)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var docs []models.SourceDocument
	for _, result := range results {
		parentID := result.Metadata[models.MetaParentID]
		if parentID == "" || seen[parentID] {
			continue
		}
		seen[parentID] = true

		parent, err := r.docstore.Get(parentID)
		if err != nil {
			return nil, fmt.Errorf("child %s references unreadable parent: %w", result.ID, err)
		}
		docs = append(docs, models.SourceDocument{
			Text:     parent.Text,
			Metadata: parent.Metadata,
		})
	}

	log.Printf("RETRIEVER: %d child matches resolved to %d parents for query.", len(results), len(docs))
	return docs, nil
}
