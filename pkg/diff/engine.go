package diff

import (
	"context"
	"fmt"
	"time"

	"docai-platform-be/internal/entity"
	"docai-platform-be/internal/pkg/logger"
	"docai-platform-be/internal/repository/contract"
	"docai-platform-be/pkg/versioning"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

const (
	cacheTTL   = 1 * time.Hour
	cachePurge = 10 * time.Minute
)

// Engine computes and caches three-layer comparisons for ordered
// version pairs. A pair is computed once: results are immutable records
// keyed by (old, new), with an in-process cache in front of the
// database and singleflight coalescing concurrent requests for the
// same pair.
type Engine struct {
	store    versioning.GraphStore
	source   ChunkSource
	diffs    contract.VersionDiffRepository
	semantic *SemanticAnalyzer
	cache    *gocache.Cache
	group    singleflight.Group
	log      logger.ILogger
}

func NewEngine(store versioning.GraphStore, source ChunkSource, diffs contract.VersionDiffRepository, semantic *SemanticAnalyzer, log logger.ILogger) *Engine {
	return &Engine{
		store:    store,
		source:   source,
		diffs:    diffs,
		semantic: semantic,
		cache:    gocache.New(cacheTTL, cachePurge),
		log:      log,
	}
}

func pairKey(oldId, newId uuid.UUID) string {
	return oldId.String() + ":" + newId.String()
}

// ComputeDiff returns the comparison record for (oldId, newId),
// computing it if absent. Identical ids, unknown versions, pairs from
// different lineages, and reversed chronology all fail with
// *InvalidPairError before any computation.
func (e *Engine) ComputeDiff(ctx context.Context, oldId, newId uuid.UUID) (*entity.VersionDiff, error) {
	if err := e.validatePair(ctx, oldId, newId); err != nil {
		return nil, err
	}

	key := pairKey(oldId, newId)
	if cached, ok := e.cache.Get(key); ok {
		return cached.(*entity.VersionDiff), nil
	}

	result, err, _ := e.group.Do(key, func() (interface{}, error) {
		if cached, ok := e.cache.Get(key); ok {
			return cached.(*entity.VersionDiff), nil
		}
		record, err := e.diffs.FindByPair(ctx, oldId, newId)
		if err != nil {
			return nil, err
		}
		if record != nil && record.Semantic != nil {
			e.cache.Set(key, record, gocache.DefaultExpiration)
			return record, nil
		}
		record, err = e.compute(ctx, oldId, newId, record)
		if err != nil {
			return nil, err
		}
		e.cache.Set(key, record, gocache.DefaultExpiration)
		return record, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*entity.VersionDiff), nil
}

func (e *Engine) validatePair(ctx context.Context, oldId, newId uuid.UUID) error {
	if oldId == newId {
		return &versioning.InvalidPairError{OldId: oldId, NewId: newId, Reason: "identical versions"}
	}

	path, err := e.store.GetLineagePath(ctx, oldId)
	if err != nil {
		return err
	}
	oldPos, newPos := -1, -1
	for i, node := range path {
		switch node.Id {
		case oldId:
			oldPos = i
		case newId:
			newPos = i
		}
	}
	if oldPos < 0 {
		return &versioning.InvalidPairError{OldId: oldId, NewId: newId, Reason: "old version not found"}
	}
	if newPos < 0 {
		return &versioning.InvalidPairError{OldId: oldId, NewId: newId, Reason: "versions belong to different lineages"}
	}
	if newPos < oldPos {
		return &versioning.InvalidPairError{OldId: oldId, NewId: newId, Reason: "pair is reversed, old must precede new"}
	}
	return nil
}

// compute runs the three layers in order. Layers one and two are
// deterministic and always stored; layer three is best effort, and its
// failure leaves a partial record that a later request completes.
func (e *Engine) compute(ctx context.Context, oldId, newId uuid.UUID, partial *entity.VersionDiff) (*entity.VersionDiff, error) {
	oldDoc, err := e.store.GetNode(ctx, oldId)
	if err != nil {
		return nil, err
	}
	newDoc, err := e.store.GetNode(ctx, newId)
	if err != nil {
		return nil, err
	}
	if oldDoc == nil || newDoc == nil {
		return nil, &versioning.InvalidPairError{OldId: oldId, NewId: newId, Reason: "version no longer exists"}
	}

	record := partial
	if record == nil {
		oldSections, err := e.source.Sections(ctx, oldId)
		if err != nil {
			return nil, fmt.Errorf("load old sections: %w", err)
		}
		newSections, err := e.source.Sections(ctx, newId)
		if err != nil {
			return nil, fmt.Errorf("load new sections: %w", err)
		}

		record = &entity.VersionDiff{
			OldVersionId: oldId,
			NewVersionId: newId,
			TextDiff:     CompareText(oldSections, newSections),
			ComputedAt:   time.Now(),
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record.Structural = CompareStructure(oldSections, newSections)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if e.semantic != nil && record.Semantic == nil {
		semantic, err := e.semantic.Analyze(ctx, oldDoc, newDoc, &record.TextDiff, &record.Structural)
		if err != nil {
			e.log.Warn("diff", "Semantic layer unavailable, storing partial diff", map[string]interface{}{
				"old_id": oldId,
				"new_id": newId,
				"error":  err.Error(),
			})
		} else {
			record.Semantic = semantic
		}
	}

	if partial != nil {
		// Complete the stored partial record in place. A single UPDATE
		// keeps the row visible to concurrent readers throughout.
		if record.Semantic != nil {
			if err := e.diffs.CompleteSemantic(ctx, record); err != nil {
				return nil, err
			}
		}
		return record, nil
	}

	if err := e.diffs.Create(ctx, record); err != nil {
		// A concurrent writer may have won the unique (old, new) index.
		existing, findErr := e.diffs.FindByPair(ctx, oldId, newId)
		if findErr == nil && existing != nil {
			return existing, nil
		}
		return nil, err
	}
	return record, nil
}

// Invalidate removes the stored record and cache entry for a pair, for
// operator-driven recomputation.
func (e *Engine) Invalidate(ctx context.Context, oldId, newId uuid.UUID) error {
	e.cache.Delete(pairKey(oldId, newId))
	return e.diffs.DeleteByPair(ctx, oldId, newId)
}

// InvalidateDocument drops every stored pair involving one document,
// used when a document is re-registered or removed.
func (e *Engine) InvalidateDocument(ctx context.Context, documentId uuid.UUID) error {
	e.cache.Flush()
	return e.diffs.DeleteByDocumentId(ctx, documentId)
}
