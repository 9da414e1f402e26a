package services

import (
	"context"
	"log"
	"os"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// IngestionService rebuilds the knowledge base from scratch: collect,
// chunk, persist parents, embed children, index, commit. Every run is a
// full replace of the previous state.
type IngestionService struct {
	collector      *CollectorService
	chunker        *ChunkerService
	docstore       *DocstoreService
	embedder       Embedder
	vectorStoreDir string

	stale atomic.Bool
}

// IngestStats summarizes a completed ingestion run.
type IngestStats struct {
	Documents int
	Parents   int
	Children  int
}

// NewIngestionService creates the ingestion pipeline.
func NewIngestionService(collector *CollectorService, chunker *ChunkerService, docstore *DocstoreService, embedder Embedder, vectorStoreDir string) *IngestionService {
	return &IngestionService{
		collector:      collector,
		chunker:        chunker,
		docstore:       docstore,
		embedder:       embedder,
		vectorStoreDir: vectorStoreDir,
	}
}

// Ingest runs the full pipeline. The manifest is written only after every
// parent blob and child vector is on disk, so a failed run leaves the
// knowledge base in the explicit "absent" state rather than half-built.
func (s *IngestionService) Ingest(ctx context.Context) (*IngestStats, error) {
	if s.embedder == nil {
		return nil, ErrConfigMissing
	}
	log.Println("INGEST: Starting ingestion run...")

	docs, err := s.collector.CollectAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}
	log.Printf("INGEST: Collected %d documents.", len(docs))

	parents, children, err := s.chunker.SplitAll(docs)
	if err != nil {
		return nil, err
	}
	// Documents whose text is all empty chunk to nothing; that is the
	// no-content state, not an indexing failure.
	if len(children) == 0 {
		return nil, ErrNoDocuments
	}

	// Full-replace: wipe both stores before rebuilding.
	if err := s.docstore.Reset(); err != nil {
		return nil, err
	}
	vectorStore, err := NewVectorStoreForIngest(s.vectorStoreDir, s.embedder)
	if err != nil {
		return nil, err
	}

	for _, parent := range parents {
		if err := s.docstore.Put(parent); err != nil {
			return nil, err
		}
	}

	texts := make([]string, len(children))
	for i, child := range children {
		texts[i] = child.Text
	}
	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		// Abort the whole run; partial state stays uncommitted.
		return nil, err
	}

	if err := vectorStore.AddChildren(ctx, children, vectors); err != nil {
		return nil, err
	}

	if err := vectorStore.WriteManifest(Manifest{
		EmbeddingModel: s.embedder.ModelName(),
		Parents:        len(parents),
		Children:       len(children),
		CreatedAt:      time.Now().UTC(),
	}); err != nil {
		return nil, err
	}

	s.stale.Store(false)
	log.Printf("INGEST: Complete. %d parents, %d children indexed.", len(parents), len(children))
	return &IngestStats{
		Documents: len(docs),
		Parents:   len(parents),
		Children:  len(children),
	}, nil
}

// VectorStoreDir returns the directory holding the persisted index.
func (s *IngestionService) VectorStoreDir() string {
	return s.vectorStoreDir
}

// Stale reports whether source files changed since the last ingestion.
func (s *IngestionService) Stale() bool {
	return s.stale.Load()
}

// WatchDataDir starts a long-running watcher on the data directory.
// Ingestion is an explicit full rebuild, so changed files only flip the
// stale flag for the status endpoint instead of triggering a re-index.
func (s *IngestionService) WatchDataDir(ctx context.Context, dirPath string) {
	// On a fresh start the data directory may not exist yet; fsnotify
	// cannot watch a missing path, so create it up front.
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		log.Printf("WATCHER ERROR: Could not create watch directory %s: %v", dirPath, err)
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("WATCHER ERROR: Failed to create file watcher: %v", err)
		return
	}
	defer watcher.Close()

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !isSupportedFile(event.Name) {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
					event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					log.Printf("WATCHER: Source changed: %s. Knowledge base is stale until the next ingestion.", event.Name)
					s.stale.Store(true)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("WATCHER ERROR: %v", err)
			case <-ctx.Done():
				log.Println("WATCHER: Context cancelled, shutting down watcher.")
				return
			}
		}
	}()

	log.Printf("WATCHER: Watching directory: %s", dirPath)
	if err := watcher.Add(dirPath); err != nil {
		log.Printf("WATCHER ERROR: Failed to add path to watcher: %v", err)
	}

	<-ctx.Done()
}
