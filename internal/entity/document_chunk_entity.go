package entity

import (
	"time"

	"github.com/google/uuid"
)

// DocumentChunk is a parsed text segment of one document version.
// Parsing happens upstream; this service only stores the result.
type DocumentChunk struct {
	Id          uuid.UUID
	DocumentId  uuid.UUID
	SectionPath string
	ChunkIndex  int
	Content     string
	PageNumbers []int
	CreatedAt   time.Time
}
