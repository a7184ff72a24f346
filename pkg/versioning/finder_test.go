package versioning

import (
	"context"
	"errors"
	"testing"

	"docai-platform-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeSimilarityProvider struct {
	byTitle    []CandidateMatch
	byContent  []CandidateMatch
	titleErr   error
	contentErr error
}

func (f *fakeSimilarityProvider) SearchByTitle(_ context.Context, _, _ string) ([]CandidateMatch, error) {
	return f.byTitle, f.titleErr
}

func (f *fakeSimilarityProvider) SearchByContent(_ context.Context, _ string) ([]CandidateMatch, error) {
	return f.byContent, f.contentErr
}

func TestFindCandidatesMergesAndDedupes(t *testing.T) {
	shared := uuid.New()
	titleOnly := uuid.New()
	contentOnly := uuid.New()

	provider := &fakeSimilarityProvider{
		byTitle: []CandidateMatch{
			{CandidateId: shared, MatchSource: MatchSourceTitle, RawScore: 0.5},
			{CandidateId: titleOnly, MatchSource: MatchSourceTitle, RawScore: 0.45},
		},
		byContent: []CandidateMatch{
			{CandidateId: shared, MatchSource: MatchSourceContent, RawScore: 0.9},
			{CandidateId: contentOnly, MatchSource: MatchSourceContent, RawScore: 0.8},
		},
	}
	finder := NewFinder(provider, logger.NewNopLogger())

	got, err := finder.FindCandidates(context.Background(), NewDocument{Id: uuid.New(), Title: "Remote Work Policy", Summary: "policy text"})
	assert.NoError(t, err)
	assert.Len(t, got, 3)

	// The duplicate keeps its higher score and that score's source.
	for _, c := range got {
		if c.CandidateId == shared {
			assert.Equal(t, 0.9, c.RawScore)
			assert.Equal(t, MatchSourceContent, c.MatchSource)
		}
	}
}

func TestFindCandidatesExcludesSelf(t *testing.T) {
	selfId := uuid.New()
	provider := &fakeSimilarityProvider{
		byTitle: []CandidateMatch{{CandidateId: selfId, RawScore: 1.0}},
	}
	finder := NewFinder(provider, logger.NewNopLogger())

	got, err := finder.FindCandidates(context.Background(), NewDocument{Id: selfId, Title: "Policy"})
	assert.NoError(t, err)
	assert.Empty(t, got)
}

func TestFindCandidatesEmptyIsNotAnError(t *testing.T) {
	finder := NewFinder(&fakeSimilarityProvider{}, logger.NewNopLogger())

	got, err := finder.FindCandidates(context.Background(), NewDocument{Id: uuid.New(), Title: "Brand New Document"})
	assert.NoError(t, err)
	assert.Empty(t, got)
}

func TestFindCandidatesTitleFailureIsCapabilityError(t *testing.T) {
	provider := &fakeSimilarityProvider{titleErr: errors.New("connection refused")}
	finder := NewFinder(provider, logger.NewNopLogger())

	_, err := finder.FindCandidates(context.Background(), NewDocument{Id: uuid.New(), Title: "Policy"})
	var capErr *ExternalCapabilityTimeout
	assert.ErrorAs(t, err, &capErr)
	assert.Equal(t, "title-similarity", capErr.Capability)
}

func TestFindCandidatesContentFailureDegradesToTitle(t *testing.T) {
	titleMatch := uuid.New()
	provider := &fakeSimilarityProvider{
		byTitle:    []CandidateMatch{{CandidateId: titleMatch, MatchSource: MatchSourceTitle, RawScore: 0.6}},
		contentErr: errors.New("embedding service down"),
	}
	finder := NewFinder(provider, logger.NewNopLogger())

	got, err := finder.FindCandidates(context.Background(), NewDocument{Id: uuid.New(), Title: "Policy", Summary: "text"})
	assert.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, titleMatch, got[0].CandidateId)
}
