package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IsLatest restricts to lineage heads.
type IsLatest struct{}

func (s IsLatest) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_latest = TRUE")
}

// ByDocType filters by document type. Empty type matches everything so
// callers can pass it through unconditionally.
type ByDocType struct {
	DocType string
}

func (s ByDocType) Apply(db *gorm.DB) *gorm.DB {
	if s.DocType == "" {
		return db
	}
	return db.Where("doc_type = ?", s.DocType)
}

// ByStatus filters by version lifecycle status.
type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// NotArchived excludes archived versions.
type NotArchived struct{}

func (s NotArchived) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status <> 'archived'")
}

// ByFingerprint filters by exact content fingerprint.
type ByFingerprint struct {
	Fingerprint string
}

func (s ByFingerprint) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("content_fingerprint = ?", s.Fingerprint)
}

// ByParentVersionId finds the direct successor(s) of a version.
type ByParentVersionId struct {
	ParentId uuid.UUID
}

func (s ByParentVersionId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("parent_version_id = ?", s.ParentId)
}

// ByDocumentId filters child tables (chunks, embeddings) by owning document.
type ByDocumentId struct {
	DocumentId uuid.UUID
}

func (s ByDocumentId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id = ?", s.DocumentId)
}
