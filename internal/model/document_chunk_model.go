package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DocumentChunk struct {
	Id          uuid.UUID                 `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId  uuid.UUID                 `gorm:"type:uuid;not null;index"`
	SectionPath string                    `gorm:"type:varchar(512);index"`
	ChunkIndex  int                       `gorm:"not null;default:0"`
	Content     string                    `gorm:"type:text"`
	PageNumbers datatypes.JSONSlice[int]  `gorm:"type:jsonb"`
	CreatedAt   time.Time                 `gorm:"autoCreateTime"`
	DeletedAt   gorm.DeletedAt            `gorm:"index"`
}

func (DocumentChunk) TableName() string {
	return "document_chunks"
}
