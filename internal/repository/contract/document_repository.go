package contract

import (
	"context"

	"docai-platform-be/internal/entity"
	"docai-platform-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredDocument pairs a document with a similarity score from one of
// the candidate searches.
type ScoredDocument struct {
	Document *entity.Document
	Score    float64
}

type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	Update(ctx context.Context, doc *entity.Document) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// SearchByTitleSimilarity runs a pg_trgm similarity search over latest,
	// non-archived documents, optionally restricted to one doc type.
	// Results below the floor are excluded.
	SearchByTitleSimilarity(ctx context.Context, title, docType string, floor float64, limit int) ([]*ScoredDocument, error)
}
