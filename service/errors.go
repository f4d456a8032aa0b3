package service

import "errors"

// Sentinel errors for the HTTP layer to map onto status codes.
var (
	// ErrValidation marks a malformed or out-of-range request.
	ErrValidation = errors.New("invalid request")

	// ErrCompanyNotFound means the company has no data in the store.
	ErrCompanyNotFound = errors.New("company not found")

	// ErrEmbeddingUnavailable means the embedding backend failed after retry.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrStoreUnavailable means the vector store failed.
	ErrStoreUnavailable = errors.New("vector store unavailable")

	// ErrGenerationUnavailable means the generation backend failed after retry.
	ErrGenerationUnavailable = errors.New("generation service unavailable")
)
