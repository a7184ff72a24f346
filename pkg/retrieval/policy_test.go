package retrieval_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"docai-platform-be/internal/entity"
	"docai-platform-be/internal/pkg/logger"
	"docai-platform-be/internal/repository/memory"
	"docai-platform-be/pkg/retrieval"
	"docai-platform-be/pkg/versioning"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// seedLineage builds a three-version chain v1 -> v2 -> v3 with v3 as
// head, returning the ids oldest first.
func seedLineage(store *memory.GraphStore) []uuid.UUID {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for i, id := range ids {
		doc := &entity.Document{
			Id:           id,
			Title:        "Handbook",
			VersionLabel: fmt.Sprintf("v%d.0", i+1),
			Status:       entity.VersionStatusSuperseded,
			CreatedAt:    time.Now(),
		}
		if i > 0 {
			parent := ids[i-1]
			doc.ParentVersionId = &parent
		}
		if i == len(ids)-1 {
			doc.Status = entity.VersionStatusActive
			doc.IsLatest = true
		}
		store.Put(doc)
	}
	return ids
}

func TestPolicyDefaultReturnsHeadOnly(t *testing.T) {
	store := memory.NewGraphStore()
	ids := seedLineage(store)
	policy := retrieval.NewPolicy(store, logger.NewNopLogger())

	// Resolving through any member of the lineage lands on the head.
	for _, subject := range ids {
		scope, err := policy.Resolve(context.Background(), retrieval.ModeDefault, subject, nil)
		assert.NoError(t, err)
		assert.Equal(t, retrieval.ModeDefault, scope.Mode)
		assert.Equal(t, []uuid.UUID{ids[2]}, scope.DocumentIds())
	}
}

func TestPolicyDefaultUnknownLineage(t *testing.T) {
	store := memory.NewGraphStore()
	policy := retrieval.NewPolicy(store, logger.NewNopLogger())

	_, err := policy.Resolve(context.Background(), retrieval.ModeDefault, uuid.New(), nil)
	assert.ErrorIs(t, err, versioning.ErrLineageNotFound)
}

func TestPolicyDefaultHeadlessLineageFails(t *testing.T) {
	store := memory.NewGraphStore()
	id := uuid.New()
	store.Put(&entity.Document{
		Id:           id,
		Title:        "Orphan",
		VersionLabel: "v1.0",
		Status:       entity.VersionStatusSuperseded,
		CreatedAt:    time.Now(),
	})
	policy := retrieval.NewPolicy(store, logger.NewNopLogger())

	_, err := policy.Resolve(context.Background(), retrieval.ModeDefault, id, nil)
	var violation *versioning.GraphInvariantViolation
	assert.ErrorAs(t, err, &violation)
	assert.Equal(t, id, violation.LineageRootId)
}

func TestPolicyComparison(t *testing.T) {
	store := memory.NewGraphStore()
	ids := seedLineage(store)
	policy := retrieval.NewPolicy(store, logger.NewNopLogger())

	scope, err := policy.Resolve(context.Background(), retrieval.ModeComparison, ids[2], &ids[0])
	assert.NoError(t, err)
	assert.Equal(t, retrieval.ModeComparison, scope.Mode)
	// Scope order follows lineage order, not argument order.
	assert.Equal(t, []uuid.UUID{ids[0], ids[2]}, scope.DocumentIds())
}

func TestPolicyComparisonRejectsBadPairs(t *testing.T) {
	store := memory.NewGraphStore()
	ids := seedLineage(store)
	strangerId := uuid.New()
	store.Put(&entity.Document{
		Id:           strangerId,
		Title:        "Unrelated",
		VersionLabel: "v1.0",
		Status:       entity.VersionStatusActive,
		IsLatest:     true,
		CreatedAt:    time.Now(),
	})
	policy := retrieval.NewPolicy(store, logger.NewNopLogger())

	cases := []struct {
		name   string
		pairId *uuid.UUID
		reason string
	}{
		{"missing pair", nil, "comparison requires two versions"},
		{"identical versions", &ids[0], "identical versions"},
		{"cross lineage", &strangerId, "versions belong to different lineages"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := policy.Resolve(context.Background(), retrieval.ModeComparison, ids[0], tc.pairId)
			var invalid *versioning.InvalidPairError
			assert.ErrorAs(t, err, &invalid)
			assert.Equal(t, tc.reason, invalid.Reason)
		})
	}
}

func TestPolicyHistoryReturnsWholeLineage(t *testing.T) {
	store := memory.NewGraphStore()
	ids := seedLineage(store)
	policy := retrieval.NewPolicy(store, logger.NewNopLogger())

	scope, err := policy.Resolve(context.Background(), retrieval.ModeHistory, ids[1], nil)
	assert.NoError(t, err)
	assert.Equal(t, retrieval.ModeHistory, scope.Mode)
	assert.Equal(t, ids, scope.DocumentIds())
}
