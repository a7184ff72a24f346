package diff

import (
	"context"

	"github.com/google/uuid"
)

// Section is one section of a document in reading order, with all of
// its chunks concatenated back into a single body.
type Section struct {
	Path    string
	Content string
}

// ChunkSource loads ordered sections for a document, typically backed
// by the chunk repository.
type ChunkSource interface {
	Sections(ctx context.Context, documentId uuid.UUID) ([]Section, error)
}
