package port

import (
	"context"

	"faturas/internal/domain"
)

// PageSource decodes a document file into lowercased per-page text.
// Implementations must reject files above the configured size threshold
// with domain.ErrFileTooLarge so the batch layer can skip them.
type PageSource interface {
	Extract(ctx context.Context, path string) (*domain.Document, error)
}
