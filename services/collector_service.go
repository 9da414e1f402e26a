package services

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github/devansh/notebook-rag/models"
)

// CollectorService gathers raw documents from the local data directory
// and, when credentials are configured, a Notion workspace.
type CollectorService struct {
	dataDir string
	notion  *NotionService
}

// NewCollectorService creates a collector. notion may be nil when no
// Notion credentials are configured.
func NewCollectorService(dataDir string, notion *NotionService) *CollectorService {
	return &CollectorService{
		dataDir: dataDir,
		notion:  notion,
	}
}

// CollectAll returns documents from every configured source. A missing
// data directory is created and treated as empty; an unconfigured Notion
// source is skipped with a warning. Neither is an error.
func (s *CollectorService) CollectAll(ctx context.Context) ([]models.Document, error) {
	docs, err := s.CollectLocal()
	if err != nil {
		return nil, err
	}

	if s.notion == nil {
		log.Println("COLLECTOR: Skipped Notion: missing credentials.")
	} else {
		notionDocs := s.notion.CollectPages(ctx)
		docs = append(docs, notionDocs...)
	}

	return docs, nil
}

// CollectLocal scans the data directory for supported files. Each file
// yields one or more Documents; unreadable files are logged and skipped.
func (s *CollectorService) CollectLocal() ([]models.Document, error) {
	log.Printf("COLLECTOR: Scanning '%s' for local files...", s.dataDir)

	if _, err := os.Stat(s.dataDir); os.IsNotExist(err) {
		if err := os.MkdirAll(s.dataDir, 0755); err != nil {
			return nil, err
		}
		log.Printf("COLLECTOR: Created empty data directory '%s'.", s.dataDir)
		return []models.Document{}, nil
	}

	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		return nil, err
	}

	var docs []models.Document
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(s.dataDir, entry.Name())
		if !isSupportedFile(path) {
			continue
		}

		fileDocs, err := ExtractDocumentsFromFile(path)
		if err != nil {
			log.Printf("COLLECTOR WARN: Could not read %s: %v. Skipping.", path, err)
			continue
		}
		docs = append(docs, fileDocs...)
	}

	log.Printf("COLLECTOR: Loaded %d documents from local files.", len(docs))
	return docs, nil
}
