package controller

import (
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github/devansh/notebook-rag/models"
	"github/devansh/notebook-rag/services"
)

// ChainFactory builds a fresh chain over the current persisted state.
// Called once at startup and again after every successful ingestion run.
type ChainFactory func() (services.ChainService, error)

// RAGController handles the HTTP requests for the notebook API. It holds
// the current chain; ingestion replaces it through the factory instead of
// any cache invalidation.
type RAGController struct {
	ingestion    *services.IngestionService
	docstore     *services.DocstoreService
	chainFactory ChainFactory

	chainMu sync.RWMutex
	chain   services.ChainService

	ingestMu sync.Mutex
}

// NewRAGController creates the controller and attempts an initial chain
// build. A missing knowledge base at startup is expected on first run.
func NewRAGController(ingestion *services.IngestionService, docstore *services.DocstoreService, factory ChainFactory) *RAGController {
	c := &RAGController{
		ingestion:    ingestion,
		docstore:     docstore,
		chainFactory: factory,
	}

	chain, err := factory()
	if err != nil {
		log.Printf("CONTROLLER: No chain available yet: %v", err)
	} else {
		c.chain = chain
	}
	return c
}

// currentChain returns the held chain, or nil when none is available.
func (c *RAGController) currentChain() services.ChainService {
	c.chainMu.RLock()
	defer c.chainMu.RUnlock()
	return c.chain
}

// rebuildChain replaces the held chain after state on disk changed.
func (c *RAGController) rebuildChain() error {
	chain, err := c.chainFactory()
	if err != nil {
		return err
	}
	c.chainMu.Lock()
	c.chain = chain
	c.chainMu.Unlock()
	return nil
}

// Ingest is the Gin handler for POST /api/v1/ingest. It runs the full
// ingestion pipeline synchronously and rejects concurrent runs.
func (c *RAGController) Ingest(ctx *gin.Context) {
	if !c.ingestMu.TryLock() {
		ctx.JSON(http.StatusConflict, gin.H{"error": services.ErrIngestionRunning.Error()})
		return
	}
	defer c.ingestMu.Unlock()

	stats, err := c.ingestion.Ingest(ctx.Request.Context())
	if err != nil {
		if errors.Is(err, services.ErrNoDocuments) {
			ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, services.ErrConfigMissing) {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		log.Printf("CONTROLLER: Ingestion failed: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Ingestion failed"})
		return
	}

	if err := c.rebuildChain(); err != nil {
		log.Printf("CONTROLLER: Chain rebuild after ingestion failed: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Ingestion succeeded but chain rebuild failed"})
		return
	}

	ctx.JSON(http.StatusCreated, models.IngestResponse{
		Message:   "Ingestion complete",
		Documents: stats.Documents,
		Parents:   stats.Parents,
		Children:  stats.Children,
	})
}

// Query is the Gin handler for POST /api/v1/query. The chat history
// travels with the request; the server keeps no conversation state.
func (c *RAGController) Query(ctx *gin.Context) {
	var req models.QueryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	chain := c.currentChain()
	if chain == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": services.ErrKnowledgeBaseMissing.Error()})
		return
	}

	answer, docs, err := chain.Invoke(ctx.Request.Context(), req.Query, req.ChatHistory)
	if err != nil {
		log.Printf("CONTROLLER: Query failed: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate answer"})
		return
	}

	ctx.JSON(http.StatusOK, models.QueryResponse{
		Answer:     answer,
		SourceDocs: docs,
	})
}

// AnalyzeGaps is the Gin handler for POST /api/v1/gaps.
func (c *RAGController) AnalyzeGaps(ctx *gin.Context) {
	chain := c.currentChain()
	if chain == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": services.ErrKnowledgeBaseMissing.Error()})
		return
	}

	report, err := chain.AnalyzeGaps(ctx.Request.Context())
	if err != nil {
		log.Printf("CONTROLLER: Gap analysis failed: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate gap report"})
		return
	}

	ctx.JSON(http.StatusOK, models.GapReportResponse{Report: report})
}

// GetDocuments is the Gin handler for GET /api/v1/documents. It lists the
// parent chunks currently persisted in the docstore.
func (c *RAGController) GetDocuments(ctx *gin.Context) {
	if !c.docstore.Exists() {
		ctx.JSON(http.StatusOK, models.DocumentsResponse{Count: 0, Documents: []models.SourceDocument{}})
		return
	}

	parents, err := c.docstore.List()
	if err != nil {
		log.Printf("CONTROLLER: Could not list documents: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list documents"})
		return
	}

	docs := make([]models.SourceDocument, 0, len(parents))
	for _, parent := range parents {
		docs = append(docs, models.SourceDocument{
			Text:     parent.Text,
			Metadata: parent.Metadata,
		})
	}
	ctx.JSON(http.StatusOK, models.DocumentsResponse{Count: len(docs), Documents: docs})
}

// Status is the Gin handler for GET /api/v1/status.
func (c *RAGController) Status(ctx *gin.Context) {
	resp := models.StatusResponse{
		Ready: c.currentChain() != nil,
		Stale: c.ingestion.Stale(),
	}

	if manifest, err := services.ReadManifest(c.ingestion.VectorStoreDir()); err == nil {
		resp.Parents = manifest.Parents
		resp.Chunks = manifest.Children
		resp.EmbeddingModel = manifest.EmbeddingModel
	}

	ctx.JSON(http.StatusOK, resp)
}
