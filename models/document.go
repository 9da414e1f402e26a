package models

// Source kinds recorded in document metadata.
const (
	SourceKindLocal  = "local"
	SourceKindNotion = "notion"
)

// Metadata keys used across the pipeline.
const (
	MetaSource   = "source"
	MetaKind     = "kind"
	MetaPage     = "page"
	MetaParentID = "parent_id"
)

// Document is a raw document produced by the source collectors.
// It is immutable once loaded.
type Document struct {
	PageContent string                 `json:"page_content"`
	Metadata    map[string]interface{} `json:"metadata"`
}

// Chunk is a slice of a Document produced by the chunker. Parent chunks
// have an empty ParentID; child chunks reference their owning parent.
type Chunk struct {
	ID       string                 `json:"id"`
	Text     string                 `json:"text"`
	Metadata map[string]interface{} `json:"metadata"`
	ParentID string                 `json:"parent_id,omitempty"`
}

// SourceDocument represents a retrieved parent chunk and its origin,
// returned to the caller alongside an answer.
type SourceDocument struct {
	Text     string                 `json:"text"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Source returns the document's source label, or "Unknown".
func (d SourceDocument) Source() string {
	if s, ok := d.Metadata[MetaSource].(string); ok && s != "" {
		return s
	}
	return "Unknown"
}
