package activity

import "time"

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypeProjectCreated  ActivityType = "project_created"
	TypeProjectRenamed  ActivityType = "project_renamed"
	TypeAudioSet        ActivityType = "audio_set"
	TypeAudioCleared    ActivityType = "audio_cleared"
	TypeTimelineEdited  ActivityType = "timeline_edited"
	TypeProjectDeleted  ActivityType = "project_deleted"
	TypeProjectExported ActivityType = "project_exported"
	TypeStorageMigrated ActivityType = "storage_migrated"
	TypeInconsistency   ActivityType = "inconsistency_detected"
)

// ActivityEntry represents an event in the activity log
type ActivityEntry struct {
	ID           int64        `json:"id"`
	ProjectID    string       `json:"project_id,omitempty"`
	ActivityType ActivityType `json:"type"`
	Summary      string       `json:"summary"`
	Details      string       `json:"details,omitempty"` // JSON string
	CreatedAt    time.Time    `json:"created_at"`
}
