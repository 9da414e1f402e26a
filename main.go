package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github/devansh/notebook-rag/config"
	"github/devansh/notebook-rag/controller"
	"github/devansh/notebook-rag/services"

	"github.com/gin-gonic/gin"
	"google.golang.org/genai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Invalid configuration: %v", err)
	}

	// Create HTTP client properly
	httpClient := &http.Client{
		Timeout: 60 * time.Second,
	}

	// Missing provider credentials degrade to a server without a chain
	// (health, status and documents still work) instead of a crash.
	embedder, llm, err := buildProviders(cfg, httpClient)
	if err != nil {
		log.Printf("WARN: %v. Ingestion and queries are disabled until it is configured.", err)
	}

	// Notion is optional; missing credentials skip that source.
	var notion *services.NotionService
	if cfg.NotionToken != "" && cfg.NotionPageID != "" {
		notion = services.NewNotionService(cfg.NotionToken, cfg.NotionPageID)
	}

	collector := services.NewCollectorService(cfg.DataDir, notion)
	chunker := services.NewChunkerService(cfg.ParentChunkSize, cfg.ChildChunkSize, cfg.ChildChunkOverlap)
	docstore := services.NewDocstoreService(cfg.DocstoreDir)
	ingestion := services.NewIngestionService(collector, chunker, docstore, embedder, cfg.VectorStoreDir)

	chainFactory := func() (services.ChainService, error) {
		return services.BuildChain(llm, embedder, cfg.VectorStoreDir, docstore, cfg.RetrievalK, cfg.StatusFilePath)
	}
	ragController := controller.NewRAGController(ingestion, docstore, chainFactory)

	// Watch source files so the status endpoint can flag a stale knowledge base.
	watchCtx, cancelWatch := context.WithCancel(context.Background())
	defer cancelWatch()
	go ingestion.WatchDataDir(watchCtx, cfg.DataDir)

	// Setup Gin router
	router := gin.Default()

	// Add CORS middleware for the local UI
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "Notebook RAG API",
			"version": "1.0.0",
		})
	})

	// API routes
	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/ingest", ragController.Ingest)      // Rebuild the knowledge base
		apiV1.POST("/query", ragController.Query)        // Ask a question
		apiV1.POST("/gaps", ragController.AnalyzeGaps)   // Gap-analysis report
		apiV1.GET("/documents", ragController.GetDocuments) // List parent chunks
		apiV1.GET("/status", ragController.Status)       // Knowledge base status
	}

	log.Printf("Notebook RAG backend starting on http://localhost:%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("FATAL: Failed to start server: %v", err)
	}
}

// buildProviders wires the configured embedding and LLM providers. The
// Gemini client is shared when both sides use it.
func buildProviders(cfg *config.Config, httpClient *http.Client) (services.Embedder, services.LLM, error) {
	var geminiClient *genai.Client
	if cfg.EmbeddingProvider == "gemini" || cfg.LLMProvider == "gemini" {
		if cfg.GeminiAPIKey == "" {
			return nil, nil, fmt.Errorf("%w: GEMINI_API_KEY not set", services.ErrConfigMissing)
		}
		client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey:  cfg.GeminiAPIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, nil, err
		}
		geminiClient = client
		log.Println("Successfully connected to Google Gemini.")
	}

	var embedder services.Embedder
	if cfg.EmbeddingProvider == "gemini" {
		embedder = services.NewGeminiEmbedder(geminiClient, cfg.EmbeddingModel)
	} else {
		embedder = services.NewOllamaEmbedder(httpClient, cfg.OllamaHost, cfg.EmbeddingModel)
	}

	var llm services.LLM
	if cfg.LLMProvider == "gemini" {
		llm = services.NewGeminiLLM(geminiClient, cfg.LLMModel, cfg.Temperature)
	} else {
		llm = services.NewOllamaLLM(httpClient, cfg.OllamaHost, cfg.LLMModel, cfg.Temperature)
	}

	return embedder, llm, nil
}
