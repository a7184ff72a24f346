package contract

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ReviewFlag marks an upload whose version judgment could not complete,
// so an operator can link it manually later.
type ReviewFlag struct {
	DocumentId uuid.UUID `json:"document_id"`
	Title      string    `json:"title"`
	Reason     string    `json:"reason"`
	FlaggedAt  time.Time `json:"flagged_at"`
}

type ReviewQueueRepository interface {
	Push(ctx context.Context, flag *ReviewFlag) error
	List(ctx context.Context, limit int) ([]*ReviewFlag, error)
	Remove(ctx context.Context, documentId uuid.UUID) error
}
