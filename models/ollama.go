package models

// OllamaEmbedRequest is used to structure the request to the Ollama embedding API.
type OllamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// OllamaEmbedResponse is used to parse the embedding from the Ollama API response.
type OllamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// OllamaChatMessage mirrors the message shape of the Ollama chat API.
type OllamaChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OllamaChatRequest is used to structure the request to the Ollama chat API.
type OllamaChatRequest struct {
	Model    string              `json:"model"`
	Messages []OllamaChatMessage `json:"messages"`
	Stream   bool                `json:"stream"`
	Options  OllamaChatOptions   `json:"options"`
}

type OllamaChatOptions struct {
	Temperature float32 `json:"temperature"`
}

// OllamaChatResponse is used to parse the answer from the Ollama chat API.
type OllamaChatResponse struct {
	Message OllamaChatMessage `json:"message"`
}
