package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"unicode/utf8"

	"github/devansh/notebook-rag/models"
)

// ChainService is the conversational retrieval chain: contextualize the
// question against the chat history, retrieve parent context, answer.
// The stages run in fixed order; the chain itself holds no conversation
// state, the caller owns the history.
type ChainService interface {
	Invoke(ctx context.Context, input string, history []models.ChatMessage) (string, []models.SourceDocument, error)
	AnalyzeGaps(ctx context.Context) (string, error)
}

type chainServiceImpl struct {
	llm           LLM
	retriever     Retriever
	statusContent string
}

// BuildChain opens the persisted knowledge base and assembles the chain.
// It fails with ErrKnowledgeBaseMissing when no completed ingestion run
// exists, so callers can surface "empty knowledge base" distinctly from a
// query that matched nothing.
func BuildChain(llm LLM, embedder Embedder, vectorStoreDir string, docstore *DocstoreService, k int, statusFilePath string) (ChainService, error) {
	if llm == nil || embedder == nil {
		return nil, ErrConfigMissing
	}
	if !docstore.Exists() {
		return nil, ErrKnowledgeBaseMissing
	}
	vectorStore, err := OpenVectorStore(vectorStoreDir, embedder)
	if err != nil {
		return nil, err
	}
	retriever := NewParentRetriever(embedder, vectorStore, docstore, k)

	statusContent := ""
	if statusFilePath != "" {
		if content, err := os.ReadFile(statusFilePath); err == nil {
			statusContent = string(content)
			log.Printf("CHAIN: Loaded project status matrix from %s.", statusFilePath)
		}
	}

	return NewChainService(llm, retriever, statusContent), nil
}

// NewChainService assembles a chain from already-constructed stages.
func NewChainService(llm LLM, retriever Retriever, statusContent string) ChainService {
	return &chainServiceImpl{
		llm:           llm,
		retriever:     retriever,
		statusContent: statusContent,
	}
}

// Invoke runs one conversation turn. The caller appends (input, answer)
// to its history afterwards; a failed turn leaves the chain usable.
func (c *chainServiceImpl) Invoke(ctx context.Context, input string, history []models.ChatMessage) (string, []models.SourceDocument, error) {
	standalone, err := c.contextualize(ctx, input, history)
	if err != nil {
		return "", nil, err
	}

	docs, err := c.retriever.Retrieve(ctx, standalone)
	if err != nil {
		return "", nil, err
	}

	answer, err := c.answer(ctx, input, history, docs)
	if err != nil {
		return "", nil, err
	}
	return answer, docs, nil
}

// contextualize rewrites a follow-up question into a standalone one. With
// no history there is nothing to resolve, so the input passes through
// without an LLM call.
func (c *chainServiceImpl) contextualize(ctx context.Context, input string, history []models.ChatMessage) (string, error) {
	if len(history) == 0 {
		return input, nil
	}

	standalone, err := c.llm.Generate(ctx, contextualizePrompt, history, input)
	if err != nil {
		return "", fmt.Errorf("could not contextualize question: %w", err)
	}
	standalone = strings.TrimSpace(standalone)
	if standalone == "" {
		return input, nil
	}
	log.Printf("CHAIN: Contextualized question: '%s'", standalone)
	return standalone, nil
}

// answer prompts the LLM with the retrieved context, the status matrix
// when present, the chat history, and the original input.
func (c *chainServiceImpl) answer(ctx context.Context, input string, history []models.ChatMessage, docs []models.SourceDocument) (string, error) {
	system := buildQASystemPrompt(c.statusContent, formatDocs(docs))
	answer, err := c.llm.Generate(ctx, system, history, input)
	if err != nil {
		return "", fmt.Errorf("could not generate answer: %w", err)
	}
	return answer, nil
}

// AnalyzeGaps issues one fixed retrieval over architecture/status content
// and asks the LLM for a three-section discrepancy report.
func (c *chainServiceImpl) AnalyzeGaps(ctx context.Context) (string, error) {
	log.Println("CHAIN: Running gap analysis...")

	docs, err := c.retriever.Retrieve(ctx, gapQuery)
	if err != nil {
		return "", err
	}

	contextText := formatDocs(docs)
	if len(contextText) > gapContextBudget {
		// Back off to a rune boundary so the cut never splits a
		// multi-byte character.
		cut := gapContextBudget
		for cut > 0 && !utf8.RuneStart(contextText[cut]) {
			cut--
		}
		contextText = contextText[:cut]
	}

	status := c.statusContent
	if status == "" {
		status = "Status Matrix not found."
	}

	report, err := c.llm.Generate(ctx, "", nil, fmt.Sprintf(gapPrompt, contextText, status))
	if err != nil {
		return "", fmt.Errorf("could not generate gap report: %w", err)
	}
	return report, nil
}
