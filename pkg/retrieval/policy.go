package retrieval

import (
	"context"

	"docai-platform-be/internal/entity"
	"docai-platform-be/internal/pkg/logger"
	"docai-platform-be/pkg/versioning"

	"github.com/google/uuid"
)

// Mode selects which versions of a lineage a query may see.
type Mode string

const (
	// ModeDefault scopes retrieval to the lineage head only.
	ModeDefault Mode = "default"
	// ModeComparison scopes retrieval to an explicit version pair.
	ModeComparison Mode = "comparison"
	// ModeHistory exposes the whole lineage, earliest to latest.
	ModeHistory Mode = "history"
)

// Scope is the resolved set of versions a query is allowed to touch.
type Scope struct {
	Mode     Mode
	Versions []*entity.Document
}

// DocumentIds returns the scoped ids in lineage order.
func (s *Scope) DocumentIds() []uuid.UUID {
	ids := make([]uuid.UUID, len(s.Versions))
	for i, v := range s.Versions {
		ids[i] = v.Id
	}
	return ids
}

// Policy resolves retrieval scopes against the version graph. Stale
// versions never leak into answers unless the caller asked for them.
type Policy struct {
	store versioning.GraphStore
	log   logger.ILogger
}

func NewPolicy(store versioning.GraphStore, log logger.ILogger) *Policy {
	return &Policy{store: store, log: log}
}

// Resolve maps a mode and subject to a concrete scope. ModeComparison
// requires pairId; the other modes ignore it.
func (p *Policy) Resolve(ctx context.Context, mode Mode, subjectId uuid.UUID, pairId *uuid.UUID) (*Scope, error) {
	switch mode {
	case ModeComparison:
		if pairId == nil {
			return nil, &versioning.InvalidPairError{OldId: subjectId, Reason: "comparison requires two versions"}
		}
		return p.comparison(ctx, subjectId, *pairId)
	case ModeHistory:
		return p.history(ctx, subjectId)
	default:
		return p.latestOnly(ctx, subjectId)
	}
}

// latestOnly returns the lineage head. A lineage that exists but has no
// head is corrupt, not missing, and reads fail loudly rather than
// silently serving a stale version.
func (p *Policy) latestOnly(ctx context.Context, subjectId uuid.UUID) (*Scope, error) {
	path, err := p.store.GetLineagePath(ctx, subjectId)
	if err != nil {
		return nil, err
	}
	if len(path) == 0 {
		return nil, versioning.ErrLineageNotFound
	}
	for _, node := range path {
		if node.IsLatest {
			return &Scope{Mode: ModeDefault, Versions: []*entity.Document{node}}, nil
		}
	}
	return nil, &versioning.GraphInvariantViolation{
		LineageRootId: path[0].Id,
		Detail:        "lineage has no head",
	}
}

// comparison admits exactly the two named versions, which must share a
// lineage. Order in the scope follows lineage order.
func (p *Policy) comparison(ctx context.Context, aId, bId uuid.UUID) (*Scope, error) {
	if aId == bId {
		return nil, &versioning.InvalidPairError{OldId: aId, NewId: bId, Reason: "identical versions"}
	}
	path, err := p.store.GetLineagePath(ctx, aId)
	if err != nil {
		return nil, err
	}
	if len(path) == 0 {
		return nil, versioning.ErrLineageNotFound
	}

	var scoped []*entity.Document
	for _, node := range path {
		if node.Id == aId || node.Id == bId {
			scoped = append(scoped, node)
		}
	}
	if len(scoped) != 2 {
		return nil, &versioning.InvalidPairError{OldId: aId, NewId: bId, Reason: "versions belong to different lineages"}
	}
	return &Scope{Mode: ModeComparison, Versions: scoped}, nil
}

func (p *Policy) history(ctx context.Context, subjectId uuid.UUID) (*Scope, error) {
	path, err := p.store.GetLineagePath(ctx, subjectId)
	if err != nil {
		return nil, err
	}
	if len(path) == 0 {
		return nil, versioning.ErrLineageNotFound
	}
	return &Scope{Mode: ModeHistory, Versions: path}, nil
}
