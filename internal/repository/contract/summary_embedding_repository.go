package contract

import (
	"context"

	"github.com/google/uuid"
)

type SummaryEmbeddingRepository interface {
	Upsert(ctx context.Context, documentId uuid.UUID, embedding []float32) error
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error

	// SearchSimilar runs a cosine-similarity search against latest,
	// non-archived documents and returns them scored, best first.
	// Results below the floor are excluded.
	SearchSimilar(ctx context.Context, embedding []float32, floor float64, limit int) ([]*ScoredDocument, error)
}
