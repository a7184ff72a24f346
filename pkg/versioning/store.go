package versioning

import (
	"context"

	"docai-platform-be/internal/entity"

	"github.com/google/uuid"
)

// GraphStore is the authoritative lineage structure. Only the linker
// mutates is_latest, status, and parent pointers; every mutation is
// atomic across the nodes it touches.
//
// Read methods return (nil, nil) for absent nodes, matching the
// repository convention. Walk methods detect cycles and branching and
// return *GraphInvariantViolation instead of looping.
type GraphStore interface {
	GetNode(ctx context.Context, id uuid.UUID) (*entity.Document, error)

	// GetLineageRoot walks parent pointers to the earliest node.
	GetLineageRoot(ctx context.Context, id uuid.UUID) (*entity.Document, error)

	// GetLineagePath returns the whole lineage containing id, ordered
	// earliest to latest.
	GetLineagePath(ctx context.Context, id uuid.UUID) ([]*entity.Document, error)

	// GetLineageHead returns the node with is_latest = true in id's
	// lineage, as a consistent point-in-time read.
	GetLineageHead(ctx context.Context, id uuid.UUID) (*entity.Document, error)

	// LinkAsNewer commits, atomically: newId.parent = oldId, newId
	// active/latest with newLabel; oldId superseded/not latest.
	LinkAsNewer(ctx context.Context, newId, oldId uuid.UUID, newLabel string) error

	// LinkAsOlder commits, atomically: uploadedId inherits existingId's
	// former parent and becomes superseded/not latest with label;
	// existingId.parent = uploadedId. existingId's is_latest is untouched.
	LinkAsOlder(ctx context.Context, uploadedId, existingId uuid.UUID, label string) error

	// SetStatus applies an operator status change, keeping is_latest
	// consistent with the requested status.
	SetStatus(ctx context.Context, id uuid.UUID, status entity.VersionStatus, isLatest bool) error
}
