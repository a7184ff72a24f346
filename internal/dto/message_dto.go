package dto

import "github.com/google/uuid"

// ComputeDiffMessage is the async diff job payload on the in-process
// queue.
type ComputeDiffMessage struct {
	OldVersionId uuid.UUID `json:"old_version_id"`
	NewVersionId uuid.UUID `json:"new_version_id"`
}
