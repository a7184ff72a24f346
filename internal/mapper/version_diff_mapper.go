package mapper

import (
	"encoding/json"

	"docai-platform-be/internal/entity"
	"docai-platform-be/internal/model"

	"gorm.io/datatypes"
)

type VersionDiffMapper struct{}

func NewVersionDiffMapper() *VersionDiffMapper {
	return &VersionDiffMapper{}
}

func (m *VersionDiffMapper) ToEntity(d *model.VersionDiff) (*entity.VersionDiff, error) {
	if d == nil {
		return nil, nil
	}
	out := &entity.VersionDiff{
		Id:           d.Id,
		OldVersionId: d.OldVersionId,
		NewVersionId: d.NewVersionId,
		ComputedAt:   d.ComputedAt,
	}
	if len(d.TextDiff) > 0 {
		if err := json.Unmarshal(d.TextDiff, &out.TextDiff); err != nil {
			return nil, err
		}
	}
	if len(d.Structural) > 0 {
		if err := json.Unmarshal(d.Structural, &out.Structural); err != nil {
			return nil, err
		}
	}
	if len(d.Semantic) > 0 {
		var sem entity.SemanticDiff
		if err := json.Unmarshal(d.Semantic, &sem); err != nil {
			return nil, err
		}
		out.Semantic = &sem
	}
	return out, nil
}

func (m *VersionDiffMapper) ToModel(d *entity.VersionDiff) (*model.VersionDiff, error) {
	if d == nil {
		return nil, nil
	}
	textJson, err := json.Marshal(d.TextDiff)
	if err != nil {
		return nil, err
	}
	structuralJson, err := json.Marshal(d.Structural)
	if err != nil {
		return nil, err
	}
	out := &model.VersionDiff{
		Id:           d.Id,
		OldVersionId: d.OldVersionId,
		NewVersionId: d.NewVersionId,
		TextDiff:     datatypes.JSON(textJson),
		Structural:   datatypes.JSON(structuralJson),
		ComputedAt:   d.ComputedAt,
	}
	if d.Semantic != nil {
		semanticJson, err := json.Marshal(d.Semantic)
		if err != nil {
			return nil, err
		}
		out.Semantic = datatypes.JSON(semanticJson)
	}
	return out, nil
}
