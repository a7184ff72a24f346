package unitofwork

import (
	"context"

	"docai-platform-be/internal/repository/contract"
)

// UnitOfWork scopes repository access to one transaction. The lineage
// linker depends on this: both node updates of a link transition commit
// together or not at all.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	DocumentRepository() contract.DocumentRepository
	DocumentChunkRepository() contract.DocumentChunkRepository
	SummaryEmbeddingRepository() contract.SummaryEmbeddingRepository
	VersionDiffRepository() contract.VersionDiffRepository
}
