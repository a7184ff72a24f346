package versioning_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"docai-platform-be/internal/entity"
	"docai-platform-be/internal/pkg/logger"
	"docai-platform-be/internal/repository/memory"
	"docai-platform-be/pkg/versioning"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type recordingSink struct {
	mu         sync.Mutex
	linked     int
	violations int
}

func (s *recordingSink) VersionLinked(_ context.Context, _, _ uuid.UUID, _ bool) {
	s.mu.Lock()
	s.linked++
	s.mu.Unlock()
}

func (s *recordingSink) InvariantViolated(_ context.Context, _ uuid.UUID, _ string) {
	s.mu.Lock()
	s.violations++
	s.mu.Unlock()
}

func seedDocument(store *memory.GraphStore, title, label string, isLatest bool, parent *uuid.UUID) *entity.Document {
	doc := &entity.Document{
		Id:              uuid.New(),
		Title:           title,
		VersionLabel:    label,
		Status:          entity.VersionStatusActive,
		IsLatest:        isLatest,
		ParentVersionId: parent,
		CreatedAt:       time.Now(),
	}
	if !isLatest {
		doc.Status = entity.VersionStatusSuperseded
	}
	store.Put(doc)
	return doc
}

func TestLinkerLinkAsNewer(t *testing.T) {
	store := memory.NewGraphStore()
	sink := &recordingSink{}
	linker := versioning.NewLinker(store, sink, logger.NewNopLogger())

	head := seedDocument(store, "Policy", "v1.0", true, nil)
	uploaded := seedDocument(store, "Policy v2", "v1.0", true, nil)

	outcome, err := linker.Apply(context.Background(), uploaded.Id, &versioning.Verdict{
		IsSameDocument:     true,
		MatchedCandidateId: head.Id,
		Confidence:         0.9,
		NewIsNewer:         true,
	})
	assert.NoError(t, err)
	assert.True(t, outcome.Linked)
	assert.Equal(t, head.Id, outcome.OldId)
	assert.Equal(t, uploaded.Id, outcome.NewId)
	assert.Equal(t, "v2.0", outcome.NewLabel)

	old, _ := store.GetNode(context.Background(), head.Id)
	assert.False(t, old.IsLatest)
	assert.Equal(t, entity.VersionStatusSuperseded, old.Status)
	assert.NotNil(t, old.SupersededAt)

	newer, _ := store.GetNode(context.Background(), uploaded.Id)
	assert.True(t, newer.IsLatest)
	assert.Equal(t, &head.Id, newer.ParentVersionId)
	assert.Equal(t, 1, sink.linked)
}

func TestLinkerLinkAsOlder(t *testing.T) {
	store := memory.NewGraphStore()
	linker := versioning.NewLinker(store, &recordingSink{}, logger.NewNopLogger())

	head := seedDocument(store, "Policy", "v2.0", true, nil)
	uploaded := seedDocument(store, "Policy v1", "v1.0", true, nil)

	outcome, err := linker.Apply(context.Background(), uploaded.Id, &versioning.Verdict{
		IsSameDocument:     true,
		MatchedCandidateId: head.Id,
		Confidence:         0.9,
		NewIsNewer:         false,
	})
	assert.NoError(t, err)
	assert.True(t, outcome.Linked)
	assert.Equal(t, uploaded.Id, outcome.OldId)
	assert.Equal(t, head.Id, outcome.NewId)
	assert.Equal(t, "v1.0", outcome.NewLabel)

	// The uploaded document slots in behind the existing head, which
	// keeps its latest flag.
	existing, _ := store.GetNode(context.Background(), head.Id)
	assert.True(t, existing.IsLatest)
	assert.Equal(t, &uploaded.Id, existing.ParentVersionId)

	older, _ := store.GetNode(context.Background(), uploaded.Id)
	assert.False(t, older.IsLatest)
	assert.Equal(t, entity.VersionStatusSuperseded, older.Status)
}

func TestLinkerDetectedLabelWins(t *testing.T) {
	store := memory.NewGraphStore()
	linker := versioning.NewLinker(store, &recordingSink{}, logger.NewNopLogger())

	head := seedDocument(store, "Policy", "v1.0", true, nil)
	uploaded := seedDocument(store, "Policy v3", "v1.0", true, nil)

	outcome, err := linker.Apply(context.Background(), uploaded.Id, &versioning.Verdict{
		IsSameDocument:       true,
		MatchedCandidateId:   head.Id,
		Confidence:           0.9,
		NewIsNewer:           true,
		DetectedVersionLabel: "v3.0",
	})
	assert.NoError(t, err)
	assert.Equal(t, "v3.0", outcome.NewLabel)
}

func TestLinkerNilVerdictIsStandalone(t *testing.T) {
	store := memory.NewGraphStore()
	linker := versioning.NewLinker(store, &recordingSink{}, logger.NewNopLogger())

	uploaded := seedDocument(store, "Policy", "v1.0", true, nil)

	outcome, err := linker.Apply(context.Background(), uploaded.Id, nil)
	assert.NoError(t, err)
	assert.False(t, outcome.Linked)

	doc, _ := store.GetNode(context.Background(), uploaded.Id)
	assert.True(t, doc.IsLatest)
	assert.Nil(t, doc.ParentVersionId)
}

func TestLinkerStaleTarget(t *testing.T) {
	store := memory.NewGraphStore()
	linker := versioning.NewLinker(store, &recordingSink{}, logger.NewNopLogger())

	oldHead := seedDocument(store, "Policy", "v1.0", true, nil)
	first := seedDocument(store, "Policy v2", "v1.0", true, nil)
	second := seedDocument(store, "Policy v2 copy", "v1.0", true, nil)

	verdict := func(target uuid.UUID) *versioning.Verdict {
		return &versioning.Verdict{
			IsSameDocument:     true,
			MatchedCandidateId: target,
			Confidence:         0.9,
			NewIsNewer:         true,
		}
	}

	_, err := linker.Apply(context.Background(), first.Id, verdict(oldHead.Id))
	assert.NoError(t, err)

	// The second upload judged against the old head, which has since
	// been superseded.
	_, err = linker.Apply(context.Background(), second.Id, verdict(oldHead.Id))
	var stale *versioning.StaleLinkTargetError
	assert.ErrorAs(t, err, &stale)
	assert.Equal(t, oldHead.Id, stale.TargetId)
	assert.True(t, versioning.IsRetryable(err))
}

func TestLinkerConcurrentUploadsOneWins(t *testing.T) {
	store := memory.NewGraphStore()
	linker := versioning.NewLinker(store, &recordingSink{}, logger.NewNopLogger())

	head := seedDocument(store, "Policy", "v1.0", true, nil)

	const n = 8
	uploads := make([]*entity.Document, n)
	for i := range uploads {
		uploads[i] = seedDocument(store, "Policy vNext", "v1.0", true, nil)
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = linker.Apply(context.Background(), uploads[i].Id, &versioning.Verdict{
				IsSameDocument:     true,
				MatchedCandidateId: head.Id,
				Confidence:         0.9,
				NewIsNewer:         true,
			})
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
			continue
		}
		var stale *versioning.StaleLinkTargetError
		assert.ErrorAs(t, err, &stale)
	}
	assert.Equal(t, 1, winners)

	// The lineage is still a single path with exactly one head.
	path, err := store.GetLineagePath(context.Background(), head.Id)
	assert.NoError(t, err)
	assert.Len(t, path, 2)
	assert.True(t, path[len(path)-1].IsLatest)
}

func TestLinkerFreezesOnInvariantViolation(t *testing.T) {
	store := memory.NewGraphStore()
	sink := &recordingSink{}
	linker := versioning.NewLinker(store, sink, logger.NewNopLogger())

	// Hand-build a branching lineage: one parent, two children.
	root := seedDocument(store, "Policy", "v1.0", false, nil)
	seedDocument(store, "Policy v2a", "v2.0", true, &root.Id)
	childB := seedDocument(store, "Policy v2b", "v2.0", false, &root.Id)
	uploaded := seedDocument(store, "Policy v3", "v1.0", true, nil)

	verdict := &versioning.Verdict{
		IsSameDocument:     true,
		MatchedCandidateId: childB.Id,
		Confidence:         0.9,
		NewIsNewer:         true,
	}

	_, err := linker.Apply(context.Background(), uploaded.Id, verdict)
	var violation *versioning.GraphInvariantViolation
	assert.ErrorAs(t, err, &violation)
	assert.Equal(t, 1, sink.violations)

	// The lineage is frozen: the same request fails immediately and no
	// duplicate alert goes out.
	_, err = linker.Apply(context.Background(), uploaded.Id, verdict)
	assert.ErrorAs(t, err, &violation)
	assert.Equal(t, 1, sink.violations)
}
