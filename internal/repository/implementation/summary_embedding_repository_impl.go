package implementation

import (
	"context"

	"docai-platform-be/internal/mapper"
	"docai-platform-be/internal/model"
	"docai-platform-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SummaryEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DocumentMapper
}

func NewSummaryEmbeddingRepository(db *gorm.DB) contract.SummaryEmbeddingRepository {
	return &SummaryEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewDocumentMapper(),
	}
}

func (r *SummaryEmbeddingRepositoryImpl) Upsert(ctx context.Context, documentId uuid.UUID, embedding []float32) error {
	m := &model.SummaryEmbedding{
		DocumentId:     documentId,
		EmbeddingValue: pgvector.NewVector(embedding),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "document_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"embedding_value", "updated_at"}),
	}).Create(m).Error
}

func (r *SummaryEmbeddingRepositoryImpl) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("document_id = ?", documentId).Delete(&model.SummaryEmbedding{}).Error
}

// SearchSimilar computes cosine similarity as 1 - (embedding <=> query).
// The join restricts candidates to live lineage heads, mirroring the
// title search.
func (r *SummaryEmbeddingRepositoryImpl) SearchSimilar(ctx context.Context, embedding []float32, floor float64, limit int) ([]*contract.ScoredDocument, error) {
	if limit <= 0 {
		limit = 5
	}

	type row struct {
		model.Document
		Similarity float64
	}
	var rows []row

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("summary_embeddings").
		Select("documents.*, 1 - (summary_embeddings.embedding_value <=> ?) as similarity", queryVector).
		Joins("JOIN documents ON documents.id = summary_embeddings.document_id").
		Where("summary_embeddings.deleted_at IS NULL").
		Where("documents.deleted_at IS NULL").
		Where("documents.is_latest = TRUE").
		Where("documents.status <> 'archived'").
		Where("1 - (summary_embeddings.embedding_value <=> ?) >= ?", queryVector, floor).
		Order("similarity DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredDocument, len(rows))
	for i, res := range rows {
		doc := res.Document
		scored[i] = &contract.ScoredDocument{
			Document: r.mapper.ToEntity(&doc),
			Score:    res.Similarity,
		}
	}
	return scored, nil
}
