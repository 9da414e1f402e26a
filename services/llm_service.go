package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github/devansh/notebook-rag/models"

	"google.golang.org/genai"
)

// LLM is a chat-completion interface. Implementations run at a low fixed
// temperature so answers lean deterministic.
type LLM interface {
	Generate(ctx context.Context, system string, history []models.ChatMessage, input string) (string, error)
}

// geminiLLM generates answers with the Gemini API.
type geminiLLM struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGeminiLLM creates an LLM backed by the Gemini API.
func NewGeminiLLM(client *genai.Client, model string, temperature float32) LLM {
	return &geminiLLM{client: client, model: model, temperature: temperature}
}

func (l *geminiLLM) Generate(ctx context.Context, system string, history []models.ChatMessage, input string) (string, error) {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, msg := range history {
		role := "user"
		if msg.Role == models.RoleAssistant {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: msg.Content}},
		})
	}
	contents = append(contents, &genai.Content{
		Role:  "user",
		Parts: []*genai.Part{{Text: input}},
	})

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(l.temperature),
	}
	if system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}

	result, err := l.client.Models.GenerateContent(ctx, l.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini api call failed: %w", err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var responseText strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		if p.Text != "" {
			responseText.WriteString(p.Text)
		}
	}
	return responseText.String(), nil
}

// ollamaLLM generates answers with a local Ollama server.
type ollamaLLM struct {
	httpClient  *http.Client
	host        string
	model       string
	temperature float32
}

// NewOllamaLLM creates an LLM backed by the Ollama chat API.
func NewOllamaLLM(httpClient *http.Client, host, model string, temperature float32) LLM {
	return &ollamaLLM{httpClient: httpClient, host: host, model: model, temperature: temperature}
}

func (l *ollamaLLM) Generate(ctx context.Context, system string, history []models.ChatMessage, input string) (string, error) {
	messages := make([]models.OllamaChatMessage, 0, len(history)+2)
	if system != "" {
		messages = append(messages, models.OllamaChatMessage{Role: "system", Content: system})
	}
	for _, msg := range history {
		role := "user"
		if msg.Role == models.RoleAssistant {
			role = "assistant"
		}
		messages = append(messages, models.OllamaChatMessage{Role: role, Content: msg.Content})
	}
	messages = append(messages, models.OllamaChatMessage{Role: "user", Content: input})

	reqBody, err := json.Marshal(models.OllamaChatRequest{
		Model:    l.model,
		Messages: messages,
		Stream:   false,
		Options:  models.OllamaChatOptions{Temperature: l.temperature},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal ollama chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, l.host+"/api/chat", bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create ollama http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := l.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to call ollama chat api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama api returned non-200 status: %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var chatResp models.OllamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode ollama chat response: %w", err)
	}
	return chatResp.Message.Content, nil
}
