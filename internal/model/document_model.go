package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Document struct {
	Id                 uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title              string     `gorm:"type:varchar(512);not null;index"`
	DocType            string     `gorm:"type:varchar(64);index"`
	Summary            string     `gorm:"type:text"`
	ContentFingerprint string     `gorm:"type:varchar(64);index"`
	VersionLabel       string     `gorm:"type:varchar(32);default:'v1.0'"`
	EffectiveDate      *time.Time `gorm:""`
	Status             string     `gorm:"type:varchar(16);not null;default:'active';index"`
	IsLatest           bool       `gorm:"not null;default:true;index"`
	ParentVersionId    *uuid.UUID `gorm:"type:uuid;index"`
	ChunkCount         int        `gorm:"default:0"`
	CreatedAt          time.Time  `gorm:"autoCreateTime"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime"`
	SupersededAt       *time.Time `gorm:""`
	DeletedAt          gorm.DeletedAt `gorm:"index"`
}

func (Document) TableName() string {
	return "documents"
}
