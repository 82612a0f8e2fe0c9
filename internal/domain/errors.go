package domain

import "errors"

var (
	// ErrRateLimited signals that the client exhausted its admission window.
	ErrRateLimited = errors.New("rate limited")
	// ErrValidationFailed signals malformed caller input.
	ErrValidationFailed = errors.New("validation failed")
	// ErrRetrievalUnavailable signals that the vector index or the embedding
	// capability failed; callers recover by falling through to later stages.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")
	// ErrGenerationUnavailable signals a completion capability failure;
	// callers recover with a static degraded answer.
	ErrGenerationUnavailable = errors.New("generation unavailable")
	// ErrDataUnavailable signals that a reference dataset failed to load.
	// Only the dependent feature is disabled, not the whole service.
	ErrDataUnavailable = errors.New("reference data unavailable")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrGenerationProviderError signals a completion provider failure.
	ErrGenerationProviderError = errors.New("generation provider error")
)
