package models

type QueryResponse struct {
	Answer     string           `json:"answer"`
	SourceDocs []SourceDocument `json:"source_docs,omitempty"`
	Error      string           `json:"error,omitempty"`
}

type IngestResponse struct {
	Message   string `json:"message"`
	Documents int    `json:"documents"`
	Parents   int    `json:"parents"`
	Children  int    `json:"children"`
}

type GapReportResponse struct {
	Report string `json:"report"`
}

type StatusResponse struct {
	Ready          bool   `json:"ready"`
	Stale          bool   `json:"stale"`
	Parents        int    `json:"parents"`
	Chunks         int    `json:"chunks"`
	EmbeddingModel string `json:"embedding_model,omitempty"`
}

type DocumentsResponse struct {
	Count     int              `json:"count"`
	Documents []SourceDocument `json:"documents"`
}
