package contract

import (
	"context"

	"docai-platform-be/internal/entity"

	"github.com/google/uuid"
)

// VersionDiffRepository is insert-only aside from explicit invalidation
// and the semantic completion of a partial record.
type VersionDiffRepository interface {
	Create(ctx context.Context, diff *entity.VersionDiff) error
	FindByPair(ctx context.Context, oldId, newId uuid.UUID) (*entity.VersionDiff, error)
	// CompleteSemantic fills the semantic column of the pair's existing
	// row in a single statement, so concurrent readers always see a
	// record for an already-computed pair.
	CompleteSemantic(ctx context.Context, diff *entity.VersionDiff) error
	DeleteByPair(ctx context.Context, oldId, newId uuid.UUID) error
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
}
