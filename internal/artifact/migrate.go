package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rpggio/efxcreator/internal/fileutil"
	"github.com/rpggio/efxcreator/internal/repository"
)

// MigrationResult reports what Migrate did with each id.
type MigrationResult struct {
	// Moved ids now exist only in the new directory.
	Moved []string
	// AlreadyPresent ids had no source copy left but exist at the destination.
	AlreadyPresent []string
	// Missing ids exist in neither directory.
	Missing []string
	// Failed ids remain readable from the old directory.
	Failed map[string]error
}

// FailedIDs returns the failed ids, sorted.
func (r MigrationResult) FailedIDs() []string {
	ids := make([]string, 0, len(r.Failed))
	for id := range r.Failed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// OK reports whether every id was migrated or already present.
func (r MigrationResult) OK() bool {
	return len(r.Failed) == 0
}

// Migrate moves the artifacts for ids from oldDir to newDir. Each file is
// copied and verified before the source is removed. A failure on one id is
// recorded and the remaining ids are still processed. Calling Migrate again
// after an interruption finishes the remaining ids.
func (s *Store) Migrate(oldDir, newDir string, ids []string) MigrationResult {
	result := MigrationResult{Failed: make(map[string]error)}
	if filepath.Clean(oldDir) == filepath.Clean(newDir) {
		result.AlreadyPresent = append(result.AlreadyPresent, ids...)
		return result
	}

	for _, id := range ids {
		outcome, err := s.migrateOne(oldDir, newDir, id)
		switch {
		case err != nil:
			result.Failed[id] = err
			s.logger.Warn("artifact migration failed", "id", id, "from", oldDir, "to", newDir, "error", err)
		case outcome == outcomeMoved:
			result.Moved = append(result.Moved, id)
		case outcome == outcomePresent:
			result.AlreadyPresent = append(result.AlreadyPresent, id)
		case outcome == outcomeMissing:
			result.Missing = append(result.Missing, id)
			s.logger.Warn("artifact missing during migration", "id", id, "from", oldDir, "to", newDir)
		}
	}

	s.logger.Info("artifact migration finished",
		"from", oldDir,
		"to", newDir,
		"moved", len(result.Moved),
		"already_present", len(result.AlreadyPresent),
		"missing", len(result.Missing),
		"failed", len(result.Failed))
	return result
}

type migrateOutcome int

const (
	outcomeMoved migrateOutcome = iota
	outcomePresent
	outcomeMissing
)

func (s *Store) migrateOne(oldDir, newDir, id string) (migrateOutcome, error) {
	src := s.Path(oldDir, id)
	dst := s.Path(newDir, id)

	srcExists, err := s.Exists(oldDir, id)
	if err != nil {
		return 0, err
	}
	if !srcExists {
		dstExists, err := s.Exists(newDir, id)
		if err != nil {
			return 0, err
		}
		if dstExists {
			return outcomePresent, nil
		}
		return outcomeMissing, nil
	}

	same, err := fileutil.SameContent(src, dst)
	if err != nil {
		return 0, fmt.Errorf("%w: compare %s: %v", repository.ErrReadFailed, id, err)
	}
	if !same {
		if err := fileutil.CopyFileVerified(src, dst); err != nil {
			return 0, fmt.Errorf("%w: copy %s: %v", repository.ErrWriteFailed, id, err)
		}
	}

	if err := os.Remove(src); err != nil && !errors.Is(err, os.ErrNotExist) {
		return 0, fmt.Errorf("%w: remove source %s: %v", repository.ErrWriteFailed, id, err)
	}
	return outcomeMoved, nil
}
