package services

import (
	"context"
	"errors"
	"hash/fnv"
	"math"
	"strings"

	"github/devansh/notebook-rag/models"
)

// fakeEmbedder produces deterministic vectors from token hashes, so equal
// texts always embed identically and similar texts land near each other.
type fakeEmbedder struct {
	model     string
	failBatch bool
	calls     int
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{model: "fake-embed-001"}
}

func (e *fakeEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.failBatch {
		return nil, errors.New("embedding provider unavailable")
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = e.vector(text)
	}
	return vectors, nil
}

func (e *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *fakeEmbedder) ModelName() string {
	return e.model
}

func (e *fakeEmbedder) vector(text string) []float32 {
	const dim = 64
	v := make([]float64, dim)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(strings.Trim(token, ".,?!:;")))
		v[h.Sum32()%dim]++
	}
	var norm float64
	for _, x := range v {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		norm = 1
	}
	out := make([]float32, dim)
	for i, x := range v {
		out[i] = float32(x / norm)
	}
	return out
}

// fakeLLM records the prompts it receives and returns canned output. An
// empty response echoes the system prompt so tests can assert on the
// assembled context.
type fakeLLM struct {
	response    string
	err         error
	lastSystem  string
	lastInput   string
	lastHistory []models.ChatMessage
	calls       int
}

func (l *fakeLLM) Generate(ctx context.Context, system string, history []models.ChatMessage, input string) (string, error) {
	l.calls++
	l.lastSystem = system
	l.lastHistory = history
	l.lastInput = input
	if l.err != nil {
		return "", l.err
	}
	if l.response == "" {
		return system, nil
	}
	return l.response, nil
}

// fakeRetriever returns a fixed document set.
type fakeRetriever struct {
	docs      []models.SourceDocument
	err       error
	lastQuery string
}

func (r *fakeRetriever) Retrieve(ctx context.Context, query string) ([]models.SourceDocument, error) {
	r.lastQuery = query
	if r.err != nil {
		return nil, r.err
	}
	return r.docs, nil
}
