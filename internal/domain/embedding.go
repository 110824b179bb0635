package domain

import (
	"context"
)

// EmbeddingService produces the text embeddings the assessment cache
// uses for similarity lookups between answers.
type EmbeddingService interface {
	Generate(ctx context.Context, text string) ([]float32, error)
}
