package dto

import (
	"time"

	"docai-platform-be/internal/entity"

	"github.com/google/uuid"
)

type VersionHistoryResponse struct {
	LineageRootId uuid.UUID              `json:"lineage_root_id"`
	Versions      []ShowDocumentResponse `json:"versions"`
}

type ComputeDiffRequest struct {
	OldVersionId uuid.UUID `json:"old_version_id" validate:"required"`
	NewVersionId uuid.UUID `json:"new_version_id" validate:"required"`
}

type VersionDiffResponse struct {
	OldVersionId uuid.UUID             `json:"old_version_id"`
	NewVersionId uuid.UUID             `json:"new_version_id"`
	TextDiff     entity.TextDiff       `json:"text_diff"`
	Structural   entity.StructuralDiff `json:"structural_diff"`
	Semantic     *entity.SemanticDiff  `json:"semantic_diff,omitempty"`
	ComputedAt   time.Time             `json:"computed_at"`
	// SemanticPending is true while the analysis layer has not been
	// stored yet; the mechanical layers are already final.
	SemanticPending bool `json:"semantic_pending"`
}

// ManualLinkRequest attaches an uploaded document to a lineage by
// operator decision, bypassing the judgment step.
type ManualLinkRequest struct {
	TargetVersionId uuid.UUID `json:"target_version_id" validate:"required"`
	NewIsNewer      bool      `json:"new_is_newer"`
	VersionLabel    string    `json:"version_label"`
}

type ManualLinkResponse struct {
	Id           uuid.UUID `json:"id"`
	LinkedTo     uuid.UUID `json:"linked_to"`
	VersionLabel string    `json:"version_label"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}
