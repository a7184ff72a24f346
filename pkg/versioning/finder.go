package versioning

import (
	"context"

	"docai-platform-be/internal/pkg/logger"

	"github.com/google/uuid"
)

// Similarity floors and result caps for candidate detection.
const (
	TitleSimilarityFloor   = 0.4
	ContentSimilarityFloor = 0.75
	CandidateLimit         = 5
)

// SimilarityProvider is the external search capability the finder
// queries. Both searches already apply their floor and cap.
type SimilarityProvider interface {
	SearchByTitle(ctx context.Context, title, docType string) ([]CandidateMatch, error)
	SearchByContent(ctx context.Context, summary string) ([]CandidateMatch, error)
}

// Finder merges title-similarity and content-similarity candidate sets
// into one deduplicated list.
type Finder struct {
	provider SimilarityProvider
	log      logger.ILogger
}

func NewFinder(provider SimilarityProvider, log logger.ILogger) *Finder {
	return &Finder{
		provider: provider,
		log:      log,
	}
}

// FindCandidates returns an empty list when nothing clears a floor;
// that is the normal "new, unrelated document" outcome, not an error.
// A content-search failure degrades to title-only candidates.
func (f *Finder) FindCandidates(ctx context.Context, newDoc NewDocument) ([]CandidateMatch, error) {
	byTitle, err := f.provider.SearchByTitle(ctx, newDoc.Title, newDoc.DocType)
	if err != nil {
		return nil, &ExternalCapabilityTimeout{Capability: "title-similarity", Err: err}
	}

	var byContent []CandidateMatch
	if newDoc.Summary != "" {
		byContent, err = f.provider.SearchByContent(ctx, newDoc.Summary)
		if err != nil {
			f.log.Warn("versioning", "Content similarity search failed, continuing with title candidates", map[string]interface{}{
				"document_id": newDoc.Id,
				"error":       err.Error(),
			})
			byContent = nil
		}
	}

	merged := mergeCandidates(newDoc.Id, byTitle, byContent)

	f.log.Info("versioning", "Candidate search completed", map[string]interface{}{
		"document_id":     newDoc.Id,
		"title_matches":   len(byTitle),
		"content_matches": len(byContent),
		"candidates":      len(merged),
	})

	return merged, nil
}

// mergeCandidates dedupes by candidate id, keeping the higher score.
// The new document itself is excluded in case an index already saw it.
func mergeCandidates(selfId uuid.UUID, lists ...[]CandidateMatch) []CandidateMatch {
	seen := make(map[uuid.UUID]int)
	merged := make([]CandidateMatch, 0)
	for _, list := range lists {
		for _, c := range list {
			if c.CandidateId == selfId {
				continue
			}
			if idx, ok := seen[c.CandidateId]; ok {
				if c.RawScore > merged[idx].RawScore {
					merged[idx].RawScore = c.RawScore
					merged[idx].MatchSource = c.MatchSource
				}
				continue
			}
			seen[c.CandidateId] = len(merged)
			merged = append(merged, c)
		}
	}
	return merged
}
