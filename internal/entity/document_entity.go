package entity

import (
	"time"

	"github.com/google/uuid"
)

// VersionStatus is the lifecycle state of one document version.
type VersionStatus string

const (
	VersionStatusDraft      VersionStatus = "draft"
	VersionStatusActive     VersionStatus = "active"
	VersionStatusSuperseded VersionStatus = "superseded"
	VersionStatusArchived   VersionStatus = "archived"
)

// ValidVersionStatus reports whether s is one of the known lifecycle states.
func ValidVersionStatus(s string) bool {
	switch VersionStatus(s) {
	case VersionStatusDraft, VersionStatusActive, VersionStatusSuperseded, VersionStatusArchived:
		return true
	}
	return false
}

// Document is one physical document version (a node in the version graph).
// ParentVersionId always points to the chronologically earlier version.
type Document struct {
	Id                 uuid.UUID
	Title              string
	DocType            string
	Summary            string
	ContentFingerprint string
	VersionLabel       string
	EffectiveDate      *time.Time
	Status             VersionStatus
	IsLatest           bool
	ParentVersionId    *uuid.UUID
	ChunkCount         int
	CreatedAt          time.Time
	UpdatedAt          *time.Time
	SupersededAt       *time.Time
}
