package dto

import (
	"github.com/google/uuid"
)

type AskQuestionRequest struct {
	Question string `json:"question" validate:"required"`
	// DocumentId anchors the question to a lineage. Optional: without
	// it the router still classifies, but scope resolution is skipped.
	DocumentId *uuid.UUID `json:"document_id"`
	// CompareWithId forces comparison mode against this version.
	CompareWithId *uuid.UUID `json:"compare_with_id"`
}

type ScopedVersion struct {
	Id           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	VersionLabel string    `json:"version_label"`
	IsLatest     bool      `json:"is_latest"`
}

type AskQuestionResponse struct {
	Mode         string          `json:"mode"`
	Reason       string          `json:"reason,omitempty"`
	VersionHints []string        `json:"version_hints,omitempty"`
	Scope        []ScopedVersion `json:"scope,omitempty"`
	// Diff carries the stored comparison record when one exists for the
	// scoped pair; otherwise DiffPending reports that computation was
	// enqueued.
	Diff        *VersionDiffResponse `json:"diff,omitempty"`
	DiffPending bool                 `json:"diff_pending,omitempty"`
}
