package dto

import (
	"time"

	"github.com/google/uuid"
)

// SectionInput is one parsed section of an uploaded document, in
// reading order. Chunking into storage units happens server-side.
type SectionInput struct {
	SectionPath string `json:"section_path" validate:"required"`
	Content     string `json:"content" validate:"required"`
	PageNumbers []int  `json:"page_numbers"`
}

type RegisterDocumentRequest struct {
	Title         string         `json:"title" validate:"required"`
	DocType       string         `json:"doc_type"`
	Summary       string         `json:"summary"`
	EffectiveDate *time.Time     `json:"effective_date"`
	Sections      []SectionInput `json:"sections" validate:"required,min=1,dive"`
}

type RegisterDocumentResponse struct {
	Id uuid.UUID `json:"id"`
	// DuplicateOf is set when the upload's content fingerprint matched
	// an existing version; Id then echoes that version.
	DuplicateOf *uuid.UUID `json:"duplicate_of,omitempty"`
	// Linked reports whether version detection attached this upload to
	// an existing lineage.
	Linked       bool       `json:"linked"`
	LinkedTo     *uuid.UUID `json:"linked_to,omitempty"`
	VersionLabel string     `json:"version_label"`
	// FlaggedForReview is set when detection could not conclude and the
	// document was parked for an operator.
	FlaggedForReview bool `json:"flagged_for_review"`
}

type ShowDocumentResponse struct {
	Id              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	DocType         string     `json:"doc_type"`
	Summary         string     `json:"summary"`
	VersionLabel    string     `json:"version_label"`
	Status          string     `json:"status"`
	IsLatest        bool       `json:"is_latest"`
	ParentVersionId *uuid.UUID `json:"parent_version_id,omitempty"`
	EffectiveDate   *time.Time `json:"effective_date,omitempty"`
	ChunkCount      int        `json:"chunk_count"`
	CreatedAt       time.Time  `json:"created_at"`
	SupersededAt    *time.Time `json:"superseded_at,omitempty"`
}

type ListDocumentsRequest struct {
	DocType    string `query:"doc_type"`
	LatestOnly bool   `query:"latest_only"`
}

type ReviewFlagResponse struct {
	DocumentId uuid.UUID `json:"document_id"`
	Title      string    `json:"title"`
	Reason     string    `json:"reason"`
	FlaggedAt  time.Time `json:"flagged_at"`
}
