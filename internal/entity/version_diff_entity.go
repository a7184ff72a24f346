package entity

import (
	"time"

	"github.com/google/uuid"
)

// Section change status values used in TextDiff.
const (
	SectionAdded    = "added"
	SectionDeleted  = "deleted"
	SectionModified = "modified"
)

// Change span types (SequenceMatcher opcode tags).
const (
	ChangeReplace = "replace"
	ChangeDelete  = "delete"
	ChangeInsert  = "insert"
)

// Semantic change categories assigned by the analysis model.
const (
	CategorySubstantive = "substantive"
	CategoryWording     = "wording"
	CategoryFormatting  = "formatting"
	CategoryAddition    = "addition"
	CategoryDeletion    = "deletion"
)

// ChangeSpan is one paragraph-level edit inside a modified section.
type ChangeSpan struct {
	Type    string `json:"type"`
	OldText string `json:"old_text,omitempty"`
	NewText string `json:"new_text,omitempty"`
}

// SectionDiff is the text-level result for one section path.
type SectionDiff struct {
	SectionPath string       `json:"section_path"`
	Status      string       `json:"status"`
	OldText     string       `json:"old_text,omitempty"`
	NewText     string       `json:"new_text,omitempty"`
	Changes     []ChangeSpan `json:"changes,omitempty"`
	DiffPreview string       `json:"diff_preview,omitempty"`
}

// TextDiffStats counts sections per change status.
type TextDiffStats struct {
	Added     int `json:"added"`
	Deleted   int `json:"deleted"`
	Modified  int `json:"modified"`
	Unchanged int `json:"unchanged"`
}

// TextDiff is the layer-1 result: section-aligned edit operations.
type TextDiff struct {
	Sections []SectionDiff `json:"sections"`
	Stats    TextDiffStats `json:"stats"`
}

// RenamedSection pairs a deleted section label with the added label it
// most likely became, inferred from content similarity.
type RenamedSection struct {
	OldName    string  `json:"old_name"`
	NewName    string  `json:"new_name"`
	Similarity float64 `json:"similarity"`
}

// ReorderedSection is a label present in both versions at a different
// relative position among the common labels.
type ReorderedSection struct {
	SectionPath string `json:"section_path"`
	OldPosition int    `json:"old_position"`
	NewPosition int    `json:"new_position"`
}

// StructuralDiff is the layer-2 result: table-of-contents comparison.
type StructuralDiff struct {
	AddedSections     []string           `json:"added_sections"`
	DeletedSections   []string           `json:"deleted_sections"`
	RenamedSections   []RenamedSection   `json:"renamed_sections"`
	ReorderedSections []ReorderedSection `json:"reordered_sections"`
	CommonSections    []string           `json:"common_sections"`
	TotalOld          int                `json:"total_old"`
	TotalNew          int                `json:"total_new"`
}

// ChangeDetail is one categorized change item from the semantic layer.
type ChangeDetail struct {
	Category       string `json:"category"`
	Description    string `json:"description"`
	Location       string `json:"location"`
	BusinessImpact string `json:"business_impact,omitempty"`
}

// SemanticDiff is the layer-3 result produced by the analysis model.
type SemanticDiff struct {
	ChangeSummary  string         `json:"change_summary"`
	ChangeDetails  []ChangeDetail `json:"change_details"`
	RiskFlags      []string       `json:"risk_flags"`
	ImpactAnalysis string         `json:"impact_analysis"`
}

// VersionDiff is the immutable comparison record for one ordered pair of
// document versions (old -> new). SemanticDiff may be nil when the
// analysis model was unavailable at compute time.
type VersionDiff struct {
	Id           uuid.UUID
	OldVersionId uuid.UUID
	NewVersionId uuid.UUID
	TextDiff     TextDiff
	Structural   StructuralDiff
	Semantic     *SemanticDiff
	ComputedAt   time.Time
}
