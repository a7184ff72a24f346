package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// VersionDiff rows are insert-only: one row per ordered (old, new) pair,
// removed only on explicit invalidation.
type VersionDiff struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OldVersionId uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_diff_pair,priority:1"`
	NewVersionId uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_diff_pair,priority:2"`
	TextDiff     datatypes.JSON `gorm:"type:jsonb"`
	Structural   datatypes.JSON `gorm:"type:jsonb"`
	Semantic     datatypes.JSON `gorm:"type:jsonb"`
	ComputedAt   time.Time      `gorm:"autoCreateTime"`
}

func (VersionDiff) TableName() string {
	return "version_diffs"
}
