package implementation

import (
	"context"
	"encoding/json"
	"errors"

	"docai-platform-be/internal/entity"
	"docai-platform-be/internal/mapper"
	"docai-platform-be/internal/model"
	"docai-platform-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type VersionDiffRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.VersionDiffMapper
}

func NewVersionDiffRepository(db *gorm.DB) contract.VersionDiffRepository {
	return &VersionDiffRepositoryImpl{
		db:     db,
		mapper: mapper.NewVersionDiffMapper(),
	}
}

func (r *VersionDiffRepositoryImpl) Create(ctx context.Context, diff *entity.VersionDiff) error {
	m, err := r.mapper.ToModel(diff)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	diff.Id = m.Id
	diff.ComputedAt = m.ComputedAt
	return nil
}

func (r *VersionDiffRepositoryImpl) FindByPair(ctx context.Context, oldId, newId uuid.UUID) (*entity.VersionDiff, error) {
	var m model.VersionDiff
	err := r.db.WithContext(ctx).
		Where("old_version_id = ? AND new_version_id = ?", oldId, newId).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m)
}

func (r *VersionDiffRepositoryImpl) CompleteSemantic(ctx context.Context, diff *entity.VersionDiff) error {
	if diff.Semantic == nil {
		return nil
	}
	semanticJson, err := json.Marshal(diff.Semantic)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Model(&model.VersionDiff{}).
		Where("old_version_id = ? AND new_version_id = ?", diff.OldVersionId, diff.NewVersionId).
		Update("semantic", datatypes.JSON(semanticJson)).Error
}

func (r *VersionDiffRepositoryImpl) DeleteByPair(ctx context.Context, oldId, newId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("old_version_id = ? AND new_version_id = ?", oldId, newId).
		Delete(&model.VersionDiff{}).Error
}

func (r *VersionDiffRepositoryImpl) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("old_version_id = ? OR new_version_id = ?", documentId, documentId).
		Delete(&model.VersionDiff{}).Error
}
