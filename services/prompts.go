package services

import (
	"fmt"
	"strings"

	"github/devansh/notebook-rag/models"
)

// contextualizePrompt instructs the model to rewrite a follow-up question
// into a standalone one. It must reformulate, never answer.
const contextualizePrompt = `Given a chat history and the latest user question
which might reference context in the chat history, formulate a standalone question
which can be understood without the chat history. Do NOT answer the question,
just reformulate it if needed and otherwise return it as is.`

// qaPrompt constrains answer tone and scope. The retrieved context is
// appended below it; the status matrix section is only present when a
// status file is configured.
const qaPrompt = `You are a Senior Technical Assistant.
Use the following pieces of retrieved context to answer the question.

The context is formatted in Markdown. Pay attention to Headers (#, ##) to understand the topic.

If you don't know the answer, just say that you don't know.
Keep the answer technical and concise.`

const statusMatrixInstructions = `=== PROJECT STATUS (SOURCE OF TRUTH) ===
%s
========================================

STRICT INSTRUCTIONS:
1. COMPLETED FEATURE CHECK: If a requested feature is marked "✅ COMPLETE" in the project status, REFUSE to draft a plan for it and point at the existing implementation instead.
2. Never invent completion states that the status matrix does not contain.`

// gapQuery is the fixed retrieval query for gap analysis.
const gapQuery = "System Architecture Requirements vs Implementation Status"

// gapContextBudget keeps the gap-analysis prompt inside provider limits.
const gapContextBudget = 12000

const gapPrompt = `You are a QA Architect and "Gap Analysis" Agent.

YOUR TASK:
Compare the "Requirements" (Architecture/Specs) against the "Implementation Status" (Matrix/Code) in the context below.

CONTEXT:
%s

PROJECT STATUS:
%s

OUTPUT REPORT FORMAT:
1. **🔴 Critical Gaps:** (Features defined in specs but marked 'PENDING' or missing in code)
2. **⚠️ Inconsistencies:** (e.g., Spec says 'UUID' but code implies 'Integer', or 'Auth' is done but 'User Profile' is missing)
3. **✅ Alignment:** (Major modules that match perfectly)

Be specific. Cite the sources where you found the info.`

// buildQASystemPrompt assembles the answer-stage system prompt from the
// base instructions, the optional status matrix, and retrieved context.
func buildQASystemPrompt(statusContent, context string) string {
	var sb strings.Builder
	sb.WriteString(qaPrompt)
	if statusContent != "" {
		sb.WriteString("\n\n")
		sb.WriteString(fmt.Sprintf(statusMatrixInstructions, statusContent))
	}
	sb.WriteString("\n\nContext:\n")
	sb.WriteString(context)
	return sb.String()
}

// formatDocs joins retrieved parents into one context block, each labelled
// with its source so answers can cite it.
func formatDocs(docs []models.SourceDocument) string {
	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		parts = append(parts, fmt.Sprintf("[Source: %s]\n%s", doc.Source(), doc.Text))
	}
	return strings.Join(parts, "\n\n")
}
