package project

import (
	"time"

	"github.com/rpggio/efxcreator/internal/artifact"
	"github.com/rpggio/efxcreator/internal/domain/timeline"
)

// Record is the catalog entry for a project.
type Record struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	AudioRef  *string   `json:"audio_ref,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Summary is a lightweight representation for listing
type Summary struct {
	Record
	EntryCount       int    `json:"entry_count"`
	AudioFingerprint uint32 `json:"audio_fingerprint"`
	// Missing is set when the catalog record has no readable artifact.
	Missing bool   `json:"missing,omitempty"`
	Problem string `json:"problem,omitempty"`
}

// AudioResult is returned by SetAudio.
type AudioResult struct {
	Record      *Record
	Artifact    timeline.Artifact
	Fingerprint uint32
	// SuggestedName is derived from the audio file name, empty when the
	// audio was cleared.
	SuggestedName string
}

// Export is an artifact copy ready to be handed to a save or share target.
type Export struct {
	FileName string
	Data     []byte
}

// ConsistencyReport describes divergence between the catalog and the store.
type ConsistencyReport struct {
	Location artifact.Location `json:"-"`
	Dir      string            `json:"dir"`
	// MissingArtifacts are catalog ids with no artifact in any known directory.
	MissingArtifacts []string `json:"missing_artifacts"`
	// Orphans are artifacts in the current directory without a catalog record.
	Orphans []string `json:"orphans"`
	// PendingMigration are ids still stored under a pending location.
	PendingMigration []string `json:"pending_migration"`
	// UnavailableLocations are pending locations that could not be resolved.
	UnavailableLocations []string `json:"unavailable_locations"`
}

// Consistent reports whether catalog and store agree.
func (r ConsistencyReport) Consistent() bool {
	return len(r.MissingArtifacts) == 0 && len(r.Orphans) == 0 &&
		len(r.PendingMigration) == 0 && len(r.UnavailableLocations) == 0
}
