package service

import (
	"context"

	"docai-platform-be/internal/repository/contract"
	"docai-platform-be/internal/repository/unitofwork"
	"docai-platform-be/pkg/embedding"
	"docai-platform-be/pkg/versioning"
)

// similarityProvider backs the candidate finder with the pg_trgm title
// index and the pgvector summary index.
type similarityProvider struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
}

func NewSimilarityProvider(uowFactory unitofwork.RepositoryFactory, embeddingProvider embedding.EmbeddingProvider) versioning.SimilarityProvider {
	return &similarityProvider{
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
	}
}

func (p *similarityProvider) SearchByTitle(ctx context.Context, title, docType string) ([]versioning.CandidateMatch, error) {
	uow := p.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.DocumentRepository().SearchByTitleSimilarity(ctx, title, docType, versioning.TitleSimilarityFloor, versioning.CandidateLimit)
	if err != nil {
		return nil, err
	}
	return toCandidates(scored, versioning.MatchSourceTitle), nil
}

func (p *similarityProvider) SearchByContent(ctx context.Context, summary string) ([]versioning.CandidateMatch, error) {
	res, err := p.embeddingProvider.Generate(summary, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, err
	}

	uow := p.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.SummaryEmbeddingRepository().SearchSimilar(ctx, res.Embedding.Values, versioning.ContentSimilarityFloor, versioning.CandidateLimit)
	if err != nil {
		return nil, err
	}
	return toCandidates(scored, versioning.MatchSourceContent), nil
}

func toCandidates(scored []*contract.ScoredDocument, source string) []versioning.CandidateMatch {
	candidates := make([]versioning.CandidateMatch, len(scored))
	for i, s := range scored {
		candidates[i] = versioning.CandidateMatch{
			CandidateId:  s.Document.Id,
			Title:        s.Document.Title,
			Summary:      s.Document.Summary,
			VersionLabel: s.Document.VersionLabel,
			MatchSource:  source,
			RawScore:     s.Score,
		}
	}
	return candidates
}
