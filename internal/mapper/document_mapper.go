package mapper

import (
	"time"

	"docai-platform-be/internal/entity"
	"docai-platform-be/internal/model"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}
	var updatedAt *time.Time
	if !d.UpdatedAt.IsZero() {
		t := d.UpdatedAt
		updatedAt = &t
	}
	return &entity.Document{
		Id:                 d.Id,
		Title:              d.Title,
		DocType:            d.DocType,
		Summary:            d.Summary,
		ContentFingerprint: d.ContentFingerprint,
		VersionLabel:       d.VersionLabel,
		EffectiveDate:      d.EffectiveDate,
		Status:             entity.VersionStatus(d.Status),
		IsLatest:           d.IsLatest,
		ParentVersionId:    d.ParentVersionId,
		ChunkCount:         d.ChunkCount,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          updatedAt,
		SupersededAt:       d.SupersededAt,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}
	out := &model.Document{
		Id:                 d.Id,
		Title:              d.Title,
		DocType:            d.DocType,
		Summary:            d.Summary,
		ContentFingerprint: d.ContentFingerprint,
		VersionLabel:       d.VersionLabel,
		EffectiveDate:      d.EffectiveDate,
		Status:             string(d.Status),
		IsLatest:           d.IsLatest,
		ParentVersionId:    d.ParentVersionId,
		ChunkCount:         d.ChunkCount,
		CreatedAt:          d.CreatedAt,
		SupersededAt:       d.SupersededAt,
	}
	if d.UpdatedAt != nil {
		out.UpdatedAt = *d.UpdatedAt
	}
	return out
}

func (m *DocumentMapper) ToEntities(models []*model.Document) []*entity.Document {
	entities := make([]*entity.Document, len(models))
	for i, d := range models {
		entities[i] = m.ToEntity(d)
	}
	return entities
}
