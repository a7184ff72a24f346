package versioning

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrDetectionInconclusive reports that no candidate cleared the floors
// or no verdict was accepted. This is a normal outcome (brand-new
// document), not a failure.
var ErrDetectionInconclusive = errors.New("version detection inconclusive")

// ErrLineageNotFound reports that no lineage exists for the requested
// subject. Kept distinct from an empty scope so callers can tell "never
// seen" apart from a corrupted graph.
var ErrLineageNotFound = errors.New("lineage not found")

// StaleLinkTargetError reports that a verdict's target stopped being the
// lineage head between judgment and linkage. Retryable: the caller
// re-runs the candidate search against fresh state.
type StaleLinkTargetError struct {
	TargetId uuid.UUID
}

func (e *StaleLinkTargetError) Error() string {
	return fmt.Sprintf("link target %s is no longer the lineage head", e.TargetId)
}

// InvalidPairError reports a malformed diff request: identical ids or
// nodes that do not share a lineage.
type InvalidPairError struct {
	OldId  uuid.UUID
	NewId  uuid.UUID
	Reason string
}

func (e *InvalidPairError) Error() string {
	return fmt.Sprintf("invalid diff pair (%s, %s): %s", e.OldId, e.NewId, e.Reason)
}

// ExternalCapabilityTimeout reports that a similarity, judgment, or
// summarization call exceeded its deadline or returned garbage. Callers
// fall back to the degraded path; this never auto-accepts or rejects.
type ExternalCapabilityTimeout struct {
	Capability string
	Err        error
}

func (e *ExternalCapabilityTimeout) Error() string {
	return fmt.Sprintf("external capability %q unavailable: %v", e.Capability, e.Err)
}

func (e *ExternalCapabilityTimeout) Unwrap() error {
	return e.Err
}

// GraphInvariantViolation reports graph corruption: a lineage with two
// heads, a cycle, or a branching path. Fatal for the lineage; the
// linker freezes it until an operator reconciles, never auto-repairs.
type GraphInvariantViolation struct {
	LineageRootId uuid.UUID
	Detail        string
}

func (e *GraphInvariantViolation) Error() string {
	return fmt.Sprintf("version graph invariant violated in lineage %s: %s", e.LineageRootId, e.Detail)
}

// IsRetryable reports whether the caller should retry with fresh state.
func IsRetryable(err error) bool {
	var stale *StaleLinkTargetError
	return errors.As(err, &stale)
}
