package project

import (
	"context"

	"github.com/rpggio/efxcreator/internal/artifact"
	"github.com/rpggio/efxcreator/internal/domain/activity"
	"github.com/rpggio/efxcreator/internal/domain/timeline"
)

// Catalog persists project records.
type Catalog interface {
	List(ctx context.Context) ([]Record, error)
	Get(ctx context.Context, id string) (*Record, error)
	Put(ctx context.Context, rec *Record) error
	Remove(ctx context.Context, id string) error
}

// ArtifactStore performs artifact file operations.
type ArtifactStore interface {
	Resolve(loc artifact.Location) (string, error)
	Read(dir, id string) ([]byte, error)
	Write(dir, id string, data []byte) error
	Delete(dir, id string) error
	Exists(dir, id string) (bool, error)
	List(dir string) ([]string, error)
	Migrate(oldDir, newDir string, ids []string) artifact.MigrationResult
}

// Codec converts artifacts to and from bytes.
type Codec interface {
	Extension() string
	DefaultPayload() timeline.Payload
	Encode(art timeline.Artifact) ([]byte, error)
	Decode(data []byte) (timeline.Artifact, error)
}

// Fingerprinter derives the audio fingerprint for an audio reference.
// It never returns 0 on success.
type Fingerprinter interface {
	Fingerprint(ctx context.Context, audioRef string) (uint32, error)
}

// ActivityLogger records project history.
type ActivityLogger interface {
	LogActivity(ctx context.Context, entry *activity.ActivityEntry) error
}

// Settings persists string preferences.
type Settings interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
