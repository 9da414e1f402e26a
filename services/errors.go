package services

import "errors"

var (
	// ErrKnowledgeBaseMissing means no completed ingestion run exists on
	// disk. Distinct from a query that matched nothing.
	ErrKnowledgeBaseMissing = errors.New("knowledge base not found: run ingestion first")

	// ErrConfigMissing means a required credential or model key is absent.
	ErrConfigMissing = errors.New("required configuration missing")

	// ErrNoDocuments means the collectors produced nothing to ingest.
	ErrNoDocuments = errors.New("no documents found to ingest")

	// ErrIngestionRunning rejects a second concurrent ingestion run.
	ErrIngestionRunning = errors.New("an ingestion run is already in progress")

	// ErrModelMismatch means the persisted index was built with a
	// different embedding model than the one configured now.
	ErrModelMismatch = errors.New("embedding model does not match the persisted index")
)
