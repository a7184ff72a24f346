package implementation

import (
	"context"
	"errors"

	"docai-platform-be/internal/entity"
	"docai-platform-be/internal/mapper"
	"docai-platform-be/internal/model"
	"docai-platform-be/internal/repository/contract"
	"docai-platform-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DocumentMapper
}

func NewDocumentRepository(db *gorm.DB) contract.DocumentRepository {
	return &DocumentRepositoryImpl{
		db:     db,
		mapper: mapper.NewDocumentMapper(),
	}
}

func (r *DocumentRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *DocumentRepositoryImpl) Create(ctx context.Context, doc *entity.Document) error {
	m := r.mapper.ToModel(doc)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*doc = *r.mapper.ToEntity(m)
	return nil
}

func (r *DocumentRepositoryImpl) Update(ctx context.Context, doc *entity.Document) error {
	m := r.mapper.ToModel(doc)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*doc = *r.mapper.ToEntity(m)
	return nil
}

func (r *DocumentRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Document{}, id).Error
}

func (r *DocumentRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error) {
	var m model.Document
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *DocumentRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	var models []*model.Document
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *DocumentRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Document{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SearchByTitleSimilarity relies on the pg_trgm extension (created by the
// migrate tool). Only lineage heads are candidates: superseded versions
// are never linkage targets.
func (r *DocumentRepositoryImpl) SearchByTitleSimilarity(ctx context.Context, title, docType string, floor float64, limit int) ([]*contract.ScoredDocument, error) {
	if limit <= 0 {
		limit = 5
	}

	type row struct {
		model.Document
		SimScore float64
	}
	var rows []row

	query := r.db.WithContext(ctx).
		Table("documents").
		Select("documents.*, similarity(title, ?) as sim_score", title).
		Where("deleted_at IS NULL").
		Where("is_latest = TRUE").
		Where("status <> 'archived'").
		Where("similarity(title, ?) > ?", title, floor)
	if docType != "" {
		query = query.Where("doc_type = ?", docType)
	}
	err := query.
		Order("sim_score DESC").
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
			Score:    res.SimScore,
		}
	}
	return scored, nil
}
