package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github/devansh/notebook-rag/models"
)

// DocstoreService is the parent chunk store: one JSON blob per parent id
// under a single directory. The wire format is {"page_content", "metadata"}
// and must stay stable across ingestion and retrieval.
type DocstoreService struct {
	dir string
}

// parentRecord is the on-disk form of a parent chunk.
type parentRecord struct {
	PageContent string                 `json:"page_content"`
	Metadata    map[string]interface{} `json:"metadata"`
}

// NewDocstoreService creates a store rooted at dir. The directory is not
// created until Reset or the first Put.
func NewDocstoreService(dir string) *DocstoreService {
	return &DocstoreService{dir: dir}
}

// Exists reports whether the store directory is present on disk.
func (s *DocstoreService) Exists() bool {
	info, err := os.Stat(s.dir)
	return err == nil && info.IsDir()
}

// Reset deletes the previous store wholesale and recreates an empty one.
// Ingestion is full-replace, never incremental.
func (s *DocstoreService) Reset() error {
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("could not remove previous docstore: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("could not create docstore directory: %w", err)
	}
	return nil
}

// Put writes one parent chunk keyed by its id.
func (s *DocstoreService) Put(parent models.Chunk) error {
	path, err := s.keyPath(parent.ID)
	if err != nil {
		return err
	}
	data, err := json.Marshal(parentRecord{
		PageContent: parent.Text,
		Metadata:    parent.Metadata,
	})
	if err != nil {
		return fmt.Errorf("could not serialize parent %s: %w", parent.ID, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("could not write parent %s: %w", parent.ID, err)
	}
	return nil
}

// Get loads one parent chunk by id.
func (s *DocstoreService) Get(id string) (models.Chunk, error) {
	path, err := s.keyPath(id)
	if err != nil {
		return models.Chunk{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Chunk{}, fmt.Errorf("could not read parent %s: %w", id, err)
	}
	var record parentRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return models.Chunk{}, fmt.Errorf("could not deserialize parent %s: %w", id, err)
	}
	return models.Chunk{
		ID:       id,
		Text:     record.PageContent,
		Metadata: record.Metadata,
	}, nil
}

// List returns every parent chunk in the store, ordered by id.
func (s *DocstoreService) List() ([]models.Chunk, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("could not list docstore: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(entry.Name(), ".json"))
	}
	sort.Strings(ids)

	parents := make([]models.Chunk, 0, len(ids))
	for _, id := range ids {
		parent, err := s.Get(id)
		if err != nil {
			return nil, err
		}
		parents = append(parents, parent)
	}
	return parents, nil
}

// Count returns the number of parent blobs in the store.
func (s *DocstoreService) Count() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			count++
		}
	}
	return count, nil
}

// keyPath maps an id to its blob path, refusing ids that would escape the
// store directory.
func (s *DocstoreService) keyPath(id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("empty parent id")
	}
	cleanPath := filepath.Join(s.dir, filepath.Base(id)+".json")
	if filepath.Base(id) != id {
		return "", fmt.Errorf("invalid parent id %q", id)
	}
	return cleanPath, nil
}
