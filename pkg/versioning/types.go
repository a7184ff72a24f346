package versioning

import (
	"github.com/google/uuid"
)

// Match sources for candidate detection.
const (
	MatchSourceTitle   = "title"
	MatchSourceContent = "content"
)

// CandidateMatch is a transient detection result, never persisted.
type CandidateMatch struct {
	CandidateId  uuid.UUID
	Title        string
	Summary      string
	VersionLabel string
	MatchSource  string
	RawScore     float64
}

// NewDocument carries the fields of a freshly registered document that
// the detection pipeline needs.
type NewDocument struct {
	Id      uuid.UUID
	Title   string
	Summary string
	DocType string
}

// Verdict is the judgment capability's structured decision about
// same-document-ness and relative recency.
type Verdict struct {
	IsSameDocument       bool
	MatchedCandidateId   uuid.UUID
	Confidence           float64
	Reason               string
	NewIsNewer           bool
	DetectedVersionLabel string
}
