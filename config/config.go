package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds every tunable for the ingestion and retrieval pipeline.
// Values come from the environment (a .env file is loaded if present).
type Config struct {
	// Directory layout
	DataDir        string
	VectorStoreDir string
	DocstoreDir    string
	StatusFilePath string

	// Providers
	EmbeddingProvider string // "gemini" or "ollama"
	LLMProvider       string // "gemini" or "ollama"
	GeminiAPIKey      string
	OllamaHost        string

	// Models
	EmbeddingModel string
	LLMModel       string
	Temperature    float32

	// Notion
	NotionToken  string
	NotionPageID string

	// Retrieval tuning
	RetrievalK        int
	ParentChunkSize   int
	ChildChunkSize    int
	ChildChunkOverlap int

	// HTTP
	Port string
}

// Load reads configuration from the environment with defaults applied.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("CONFIG: No .env file found, relying on environment variables.")
	}

	cfg := &Config{
		DataDir:           getEnv("DATA_DIR", "data"),
		VectorStoreDir:    getEnv("VECTOR_STORE_DIR", "vector_store"),
		DocstoreDir:       getEnv("DOCSTORE_DIR", "docstore_data"),
		StatusFilePath:    getEnv("STATUS_FILE_PATH", "data/06_project_status_matrix.md"),
		EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
		LLMProvider:       getEnv("LLM_PROVIDER", "gemini"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		OllamaHost:        getEnv("OLLAMA_HOST", "http://localhost:11434"),
		EmbeddingModel:    getEnv("EMBEDDING_MODEL", "text-embedding-004"),
		LLMModel:          getEnv("LLM_MODEL", "gemini-1.5-flash"),
		Temperature:       getEnvFloat32("LLM_TEMPERATURE", 0.3),
		NotionToken:       os.Getenv("NOTION_TOKEN"),
		NotionPageID:      os.Getenv("NOTION_PAGE_ID"),
		RetrievalK:        getEnvInt("RETRIEVAL_K", 6),
		ParentChunkSize:   getEnvInt("PARENT_CHUNK_SIZE", 2000),
		ChildChunkSize:    getEnvInt("CHILD_CHUNK_SIZE", 400),
		ChildChunkOverlap: getEnvInt("CHILD_CHUNK_OVERLAP", 80),
		Port:              getEnv("PORT", "8080"),
	}

	return cfg, cfg.Validate()
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	switch c.EmbeddingProvider {
	case "gemini", "ollama":
	default:
		return fmt.Errorf("EMBEDDING_PROVIDER must be 'gemini' or 'ollama', got %q", c.EmbeddingProvider)
	}
	switch c.LLMProvider {
	case "gemini", "ollama":
	default:
		return fmt.Errorf("LLM_PROVIDER must be 'gemini' or 'ollama', got %q", c.LLMProvider)
	}
	if c.RetrievalK < 1 {
		return fmt.Errorf("RETRIEVAL_K must be positive, got %d", c.RetrievalK)
	}
	if c.ChildChunkSize >= c.ParentChunkSize {
		return fmt.Errorf("CHILD_CHUNK_SIZE (%d) must be smaller than PARENT_CHUNK_SIZE (%d)", c.ChildChunkSize, c.ParentChunkSize)
	}
	if c.ChildChunkOverlap >= c.ChildChunkSize {
		return fmt.Errorf("CHILD_CHUNK_OVERLAP (%d) must be smaller than CHILD_CHUNK_SIZE (%d)", c.ChildChunkOverlap, c.ChildChunkSize)
	}
	if c.Temperature < 0 || c.Temperature > 1 {
		return fmt.Errorf("LLM_TEMPERATURE must be between 0 and 1, got %f", c.Temperature)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("CONFIG: Invalid value for %s: %q. Using default %d.", key, v, defaultVal)
	}
	return defaultVal
}

func getEnvFloat32(key string, defaultVal float32) float32 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			return float32(f)
		}
		log.Printf("CONFIG: Invalid value for %s: %q. Using default %f.", key, v, defaultVal)
	}
	return defaultVal
}
