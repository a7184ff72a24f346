package diff

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"docai-platform-be/internal/entity"
	"docai-platform-be/internal/pkg/logger"
	"docai-platform-be/internal/repository/memory"
	"docai-platform-be/pkg/llm"
	"docai-platform-be/pkg/versioning"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeDiffRepository struct {
	mu      sync.Mutex
	records map[string]*entity.VersionDiff
	creates int
}

func newFakeDiffRepository() *fakeDiffRepository {
	return &fakeDiffRepository{records: make(map[string]*entity.VersionDiff)}
}

func (r *fakeDiffRepository) Create(_ context.Context, diff *entity.VersionDiff) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := pairKey(diff.OldVersionId, diff.NewVersionId)
	if _, ok := r.records[key]; ok {
		return errors.New("duplicate key value violates unique constraint")
	}
	if diff.Id == uuid.Nil {
		diff.Id = uuid.New()
	}
	cp := *diff
	r.records[key] = &cp
	r.creates++
	return nil
}

func (r *fakeDiffRepository) FindByPair(_ context.Context, oldId, newId uuid.UUID) (*entity.VersionDiff, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[pairKey(oldId, newId)]
	if !ok {
		return nil, nil
	}
	cp := *record
	return &cp, nil
}

func (r *fakeDiffRepository) CompleteSemantic(_ context.Context, diff *entity.VersionDiff) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[pairKey(diff.OldVersionId, diff.NewVersionId)]
	if !ok || diff.Semantic == nil {
		return nil
	}
	record.Semantic = diff.Semantic
	return nil
}

func (r *fakeDiffRepository) DeleteByPair(_ context.Context, oldId, newId uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, pairKey(oldId, newId))
	return nil
}

func (r *fakeDiffRepository) DeleteByDocumentId(_ context.Context, documentId uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, record := range r.records {
		if record.OldVersionId == documentId || record.NewVersionId == documentId {
			delete(r.records, key)
		}
	}
	return nil
}

type fakeChunkSource struct {
	sections map[uuid.UUID][]Section
}

func (s *fakeChunkSource) Sections(_ context.Context, documentId uuid.UUID) ([]Section, error) {
	return s.sections[documentId], nil
}

type fakeAnalysisProvider struct {
	mu       sync.Mutex
	response string
	err      error
	calls    int
}

func (p *fakeAnalysisProvider) Chat(_ context.Context, _ []llm.Message, _ ...llm.Option) (string, error) {
	return p.Generate(context.Background(), "")
}

func (p *fakeAnalysisProvider) Generate(_ context.Context, _ string, _ ...llm.Option) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return p.response, nil
}

const analysisReply = `{
  "change_summary": "The leave allowance increased.",
  "change_details": [
    {"category": "substantive", "description": "Leave days changed from 15 to 20", "location": "leave", "business_impact": "higher accrual cost"}
  ],
  "risk_flags": ["policy-change"],
  "impact_analysis": "Payroll accrual must be updated."
}`

type engineFixture struct {
	engine   *Engine
	store    *memory.GraphStore
	diffs    *fakeDiffRepository
	provider *fakeAnalysisProvider
	oldId    uuid.UUID
	newId    uuid.UUID
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	store := memory.NewGraphStore()
	oldId, newId := uuid.New(), uuid.New()
	store.Put(&entity.Document{
		Id:           oldId,
		Title:        "Handbook",
		VersionLabel: "v1.0",
		Status:       entity.VersionStatusSuperseded,
		CreatedAt:    time.Now(),
	})
	store.Put(&entity.Document{
		Id:              newId,
		Title:           "Handbook",
		VersionLabel:    "v2.0",
		Status:          entity.VersionStatusActive,
		IsLatest:        true,
		ParentVersionId: &oldId,
		CreatedAt:       time.Now(),
	})

	source := &fakeChunkSource{sections: map[uuid.UUID][]Section{
		oldId: {
			{Path: "intro", Content: "Welcome."},
			{Path: "leave", Content: "Employees accrue 15 days of leave."},
		},
		newId: {
			{Path: "intro", Content: "Welcome."},
			{Path: "leave", Content: "Employees accrue 20 days of leave."},
		},
	}}

	provider := &fakeAnalysisProvider{response: analysisReply}
	diffs := newFakeDiffRepository()
	semantic := NewSemanticAnalyzer(provider, time.Second, logger.NewNopLogger())
	engine := NewEngine(store, source, diffs, semantic, logger.NewNopLogger())

	return &engineFixture{
		engine:   engine,
		store:    store,
		diffs:    diffs,
		provider: provider,
		oldId:    oldId,
		newId:    newId,
	}
}

func TestEngineComputesFullRecord(t *testing.T) {
	f := newEngineFixture(t)

	record, err := f.engine.ComputeDiff(context.Background(), f.oldId, f.newId)
	assert.NoError(t, err)
	assert.Equal(t, f.oldId, record.OldVersionId)
	assert.Equal(t, f.newId, record.NewVersionId)
	assert.Equal(t, 1, record.TextDiff.Stats.Modified)
	assert.Equal(t, 1, record.TextDiff.Stats.Unchanged)
	assert.Equal(t, []string{"intro", "leave"}, record.Structural.CommonSections)
	assert.NotNil(t, record.Semantic)
	assert.Equal(t, "The leave allowance increased.", record.Semantic.ChangeSummary)
	assert.Equal(t, entity.CategorySubstantive, record.Semantic.ChangeDetails[0].Category)
}

func TestEngineComputeIsIdempotent(t *testing.T) {
	f := newEngineFixture(t)

	first, err := f.engine.ComputeDiff(context.Background(), f.oldId, f.newId)
	assert.NoError(t, err)
	second, err := f.engine.ComputeDiff(context.Background(), f.oldId, f.newId)
	assert.NoError(t, err)

	assert.Equal(t, first.Id, second.Id)
	assert.Equal(t, 1, f.diffs.creates)
	assert.Equal(t, 1, f.provider.calls)
}

func TestEngineRejectsInvalidPairs(t *testing.T) {
	f := newEngineFixture(t)
	strangerId := uuid.New()
	f.store.Put(&entity.Document{
		Id:           strangerId,
		Title:        "Unrelated",
		VersionLabel: "v1.0",
		Status:       entity.VersionStatusActive,
		IsLatest:     true,
		CreatedAt:    time.Now(),
	})

	cases := []struct {
		name   string
		oldId  uuid.UUID
		newId  uuid.UUID
		reason string
	}{
		{"identical ids", f.oldId, f.oldId, "identical versions"},
		{"unknown old version", uuid.New(), f.newId, "old version not found"},
		{"cross lineage", f.oldId, strangerId, "versions belong to different lineages"},
		{"reversed chronology", f.newId, f.oldId, "pair is reversed, old must precede new"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.engine.ComputeDiff(context.Background(), tc.oldId, tc.newId)
			var invalid *versioning.InvalidPairError
			assert.ErrorAs(t, err, &invalid)
			assert.Equal(t, tc.reason, invalid.Reason)
		})
	}
	assert.Empty(t, f.diffs.records)
}

func TestEnginePartialRecordCompletedLater(t *testing.T) {
	f := newEngineFixture(t)
	f.provider.err = fmt.Errorf("model unavailable")

	partial, err := f.engine.ComputeDiff(context.Background(), f.oldId, f.newId)
	assert.NoError(t, err)
	assert.Nil(t, partial.Semantic)
	assert.Equal(t, 1, partial.TextDiff.Stats.Modified)

	stored, _ := f.diffs.FindByPair(context.Background(), f.oldId, f.newId)
	assert.NotNil(t, stored)
	assert.Nil(t, stored.Semantic)
	partialId := stored.Id

	// The model comes back; a cache miss triggers completion of the
	// stored partial record without recomputing layers one and two.
	f.provider.err = nil
	f.engine.cache.Flush()

	completed, err := f.engine.ComputeDiff(context.Background(), f.oldId, f.newId)
	assert.NoError(t, err)
	assert.NotNil(t, completed.Semantic)
	assert.Equal(t, partial.TextDiff.Stats, completed.TextDiff.Stats)

	// Completion updates the row in place: same id, no second insert,
	// so the pair never momentarily disappears for concurrent readers.
	stored, _ = f.diffs.FindByPair(context.Background(), f.oldId, f.newId)
	assert.NotNil(t, stored.Semantic)
	assert.Equal(t, partialId, stored.Id)
	assert.Equal(t, 1, f.diffs.creates)
}

func TestEngineWithoutAnalyzerStoresPartial(t *testing.T) {
	f := newEngineFixture(t)
	f.engine.semantic = nil

	record, err := f.engine.ComputeDiff(context.Background(), f.oldId, f.newId)
	assert.NoError(t, err)
	assert.Nil(t, record.Semantic)
	assert.Equal(t, 0, f.provider.calls)
}

func TestEngineCoalescesConcurrentRequests(t *testing.T) {
	f := newEngineFixture(t)

	const n = 10
	var wg sync.WaitGroup
	results := make([]*entity.VersionDiff, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			record, err := f.engine.ComputeDiff(context.Background(), f.oldId, f.newId)
			assert.NoError(t, err)
			results[i] = record
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, f.diffs.creates)
	for _, record := range results {
		assert.Equal(t, results[0].Id, record.Id)
	}
}

func TestEngineInvalidate(t *testing.T) {
	f := newEngineFixture(t)

	_, err := f.engine.ComputeDiff(context.Background(), f.oldId, f.newId)
	assert.NoError(t, err)

	assert.NoError(t, f.engine.Invalidate(context.Background(), f.oldId, f.newId))
	stored, _ := f.diffs.FindByPair(context.Background(), f.oldId, f.newId)
	assert.Nil(t, stored)

	_, err = f.engine.ComputeDiff(context.Background(), f.oldId, f.newId)
	assert.NoError(t, err)
	assert.Equal(t, 2, f.diffs.creates)
}
