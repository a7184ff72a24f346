package mapper

import (
	"docai-platform-be/internal/entity"
	"docai-platform-be/internal/model"

	"gorm.io/datatypes"
)

type DocumentChunkMapper struct{}

func NewDocumentChunkMapper() *DocumentChunkMapper {
	return &DocumentChunkMapper{}
}

func (m *DocumentChunkMapper) ToEntity(c *model.DocumentChunk) *entity.DocumentChunk {
	if c == nil {
		return nil
	}
	return &entity.DocumentChunk{
		Id:          c.Id,
		DocumentId:  c.DocumentId,
		SectionPath: c.SectionPath,
		ChunkIndex:  c.ChunkIndex,
		Content:     c.Content,
		PageNumbers: []int(c.PageNumbers),
		CreatedAt:   c.CreatedAt,
	}
}

func (m *DocumentChunkMapper) ToModel(c *entity.DocumentChunk) *model.DocumentChunk {
	if c == nil {
		return nil
	}
	return &model.DocumentChunk{
		Id:          c.Id,
		DocumentId:  c.DocumentId,
		SectionPath: c.SectionPath,
		ChunkIndex:  c.ChunkIndex,
		Content:     c.Content,
		PageNumbers: datatypes.NewJSONSlice(c.PageNumbers),
		CreatedAt:   c.CreatedAt,
	}
}

func (m *DocumentChunkMapper) ToEntities(models []*model.DocumentChunk) []*entity.DocumentChunk {
	entities := make([]*entity.DocumentChunk, len(models))
	for i, c := range models {
		entities[i] = m.ToEntity(c)
	}
	return entities
}
