package services

import (
	"fmt"
	"log"

	"github/devansh/notebook-rag/models"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/textsplitter"
)

// ChunkerService splits documents into large parent chunks and small
// overlapping child chunks. Children are what gets embedded; parents are
// what gets returned at retrieval time.
type ChunkerService struct {
	parentSplitter textsplitter.RecursiveCharacter
	childSplitter  textsplitter.RecursiveCharacter
}

// NewChunkerService creates a chunker with the given window sizes.
func NewChunkerService(parentSize, childSize, childOverlap int) *ChunkerService {
	return &ChunkerService{
		parentSplitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(parentSize),
			textsplitter.WithChunkOverlap(0),
		),
		childSplitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(childSize),
			textsplitter.WithChunkOverlap(childOverlap),
		),
	}
}

// Split chunks a single document into parents and their children. Every
// child inherits the document metadata and carries its parent's id.
func (s *ChunkerService) Split(doc models.Document) ([]models.Chunk, []models.Chunk, error) {
	parentTexts, err := s.parentSplitter.SplitText(doc.PageContent)
	if err != nil {
		return nil, nil, fmt.Errorf("parent split failed: %w", err)
	}

	var parents, children []models.Chunk
	for _, parentText := range parentTexts {
		parent := models.Chunk{
			ID:       uuid.New().String(),
			Text:     parentText,
			Metadata: cloneMetadata(doc.Metadata),
		}
		parents = append(parents, parent)

		childTexts, err := s.childSplitter.SplitText(parentText)
		if err != nil {
			return nil, nil, fmt.Errorf("child split failed: %w", err)
		}
		for i, childText := range childTexts {
			meta := cloneMetadata(doc.Metadata)
			meta[models.MetaParentID] = parent.ID
			children = append(children, models.Chunk{
				ID:       fmt.Sprintf("%s-child%d", parent.ID, i),
				Text:     childText,
				Metadata: meta,
				ParentID: parent.ID,
			})
		}
	}

	return parents, children, nil
}

// SplitAll chunks every document and returns the combined parent and
// child sets.
func (s *ChunkerService) SplitAll(docs []models.Document) ([]models.Chunk, []models.Chunk, error) {
	var allParents, allChildren []models.Chunk
	for _, doc := range docs {
		parents, children, err := s.Split(doc)
		if err != nil {
			return nil, nil, err
		}
		allParents = append(allParents, parents...)
		allChildren = append(allChildren, children...)
	}
	log.Printf("CHUNKER: Split %d documents into %d parents and %d children.", len(docs), len(allParents), len(allChildren))
	return allParents, allChildren, nil
}

func cloneMetadata(meta map[string]interface{}) map[string]interface{} {
	clone := make(map[string]interface{}, len(meta)+1)
	for k, v := range meta {
		clone[k] = v
	}
	return clone
}
