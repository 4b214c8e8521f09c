package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rpggio/efxcreator/internal/artifact"
	"github.com/rpggio/efxcreator/internal/domain/activity"
	"github.com/rpggio/efxcreator/internal/domain/timeline"
	"github.com/rpggio/efxcreator/internal/repository"
)

const (
	// SettingStorageLocation holds the current storage-location setting.
	SettingStorageLocation = "efx_storage_path"
	// SettingPreviousLocation holds the locations still containing artifacts
	// that failed to migrate, as a JSON array of location strings.
	SettingPreviousLocation = "efx_storage_previous"

	defaultNamePrefix = "New EFX"
)

// Config wires the collaborators of a Service.
type Config struct {
	Catalog      Catalog
	Store        ArtifactStore
	Codec        Codec
	Fingerprints Fingerprinter
	// Activity and Settings are optional.
	Activity ActivityLogger
	Settings Settings
	// Location is the current storage location. Previous lists locations
	// that still hold artifacts from incomplete migrations, newest first.
	Location artifact.Location
	Previous []artifact.Location
	Logger   *slog.Logger
	Now      func() time.Time
}

// Service keeps the catalog and the artifact store consistent.
type Service struct {
	catalog      Catalog
	store        ArtifactStore
	codec        Codec
	fingerprints Fingerprinter
	activity     ActivityLogger
	settings     Settings
	logger       *slog.Logger
	now          func() time.Time

	locks *projectLocks

	// mu guards location and previous. Project operations hold it for
	// reading; ChangeStorageLocation holds it for writing.
	mu       sync.RWMutex
	location artifact.Location
	previous []artifact.Location
}

// NewService creates a new project service.
func NewService(cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		catalog:      cfg.Catalog,
		store:        cfg.Store,
		codec:        cfg.Codec,
		fingerprints: cfg.Fingerprints,
		activity:     cfg.Activity,
		settings:     cfg.Settings,
		logger:       logger.With("component", "project_service"),
		now:          now,
		locks:        newProjectLocks(),
		location:     cfg.Location,
		previous:     pendingLocations(cfg.Location, cfg.Previous),
	}
}

// LoadLocation reads the persisted storage location and any pending previous
// locations. fallback is used when nothing has been persisted yet.
func LoadLocation(ctx context.Context, settings Settings, fallback artifact.Location) (artifact.Location, []artifact.Location, error) {
	if settings == nil {
		return fallback, nil, nil
	}
	current := fallback
	value, err := settings.Get(ctx, SettingStorageLocation)
	switch {
	case err == nil:
		current = artifact.ParseLocation(value)
	case !errors.Is(err, repository.ErrNotFound):
		return fallback, nil, fmt.Errorf("loading storage location: %w", err)
	}

	value, err = settings.Get(ctx, SettingPreviousLocation)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return current, nil, nil
		}
		return current, nil, fmt.Errorf("loading previous storage location: %w", err)
	}
	return current, pendingLocations(current, decodeLocations(value)), nil
}

// StorageLocation returns the current location and the locations that still
// hold artifacts left behind by a migration.
func (s *Service) StorageLocation() (artifact.Location, []artifact.Location) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.location, slices.Clone(s.previous)
}

// Create creates a project with a single default timeline entry. An empty
// name is replaced by "New EFX <n>".
func (s *Service) Create(ctx context.Context, name string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	name = strings.TrimSpace(name)
	if name == "" {
		records, err := s.catalog.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing projects: %w", err)
		}
		name = fmt.Sprintf("%s %d", defaultNamePrefix, len(records)+1)
	}

	id := uuid.NewString()
	release, err := s.locks.acquire(id)
	if err != nil {
		return nil, err
	}
	defer release()

	dir, err := s.store.Resolve(s.location)
	if err != nil {
		return nil, fmt.Errorf("resolving storage: %w", err)
	}

	art := timeline.NewDefault(s.codec.DefaultPayload())
	data, err := s.codec.Encode(art)
	if err != nil {
		return nil, fmt.Errorf("encoding artifact: %w", err)
	}
	if err := s.store.Write(dir, id, data); err != nil {
		s.logger.Error("failed to write new artifact", "id", id, "error", err)
		return nil, fmt.Errorf("creating project: %w", err)
	}

	now := s.now()
	rec := &Record{ID: id, Name: name, CreatedAt: now, UpdatedAt: now}
	if err := s.catalog.Put(ctx, rec); err != nil {
		s.logger.Error("catalog write failed after artifact write", "id", id, "error", err)
		if delErr := s.store.Delete(dir, id); delErr != nil {
			s.logger.Error("failed to remove orphaned artifact", "id", id, "error", delErr)
		}
		s.logInconsistency(ctx, id, "create", err)
		return nil, fmt.Errorf("%w: creating project %s: %w", ErrInconsistent, id, err)
	}

	s.logger.Info("project created", "id", id, "name", name)
	s.logActivity(ctx, id, activity.TypeProjectCreated, fmt.Sprintf("Created %q", name), nil)
	return rec, nil
}

// Open returns the record and artifact of a project.
func (s *Service) Open(ctx context.Context, id string) (*Record, timeline.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, err := s.getRecord(ctx, id)
	if err != nil {
		return nil, timeline.Artifact{}, err
	}
	art, _, err := s.loadArtifact(id)
	if err != nil {
		return nil, timeline.Artifact{}, err
	}
	return rec, timeline.NewEngine(art).Artifact(), nil
}

// List returns every catalog record with artifact details. Records whose
// artifact is missing or unreadable are flagged rather than dropped.
func (s *Service) List(ctx context.Context) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, err := s.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}

	summaries := make([]Summary, 0, len(records))
	for _, rec := range records {
		summary := Summary{Record: rec}
		art, _, err := s.loadArtifact(rec.ID)
		if err != nil {
			summary.Missing = true
			summary.Problem = err.Error()
			s.logger.Warn("project artifact unavailable", "id", rec.ID, "error", err)
		} else {
			summary.EntryCount = art.EntryCount()
			summary.AudioFingerprint = art.Header.AudioFingerprint
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// Rename changes the display name of a project.
func (s *Service) Rename(ctx context.Context, id, name string) (*Record, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	release, err := s.locks.acquire(id)
	if err != nil {
		return nil, err
	}
	defer release()

	rec, err := s.getRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	oldName := rec.Name
	rec.Name = name
	s.touch(rec)
	if err := s.catalog.Put(ctx, rec); err != nil {
		return nil, fmt.Errorf("renaming project: %w", err)
	}

	s.logActivity(ctx, id, activity.TypeProjectRenamed, fmt.Sprintf("Renamed %q to %q", oldName, name), nil)
	return rec, nil
}

// SetAudio attaches audioRef to the project, or detaches audio when audioRef
// is nil or blank. The artifact header fingerprint follows the change.
func (s *Service) SetAudio(ctx context.Context, id string, audioRef *string) (*AudioResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	release, err := s.locks.acquire(id)
	if err != nil {
		return nil, err
	}
	defer release()

	rec, err := s.getRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	art, foundDir, err := s.loadArtifact(id)
	if err != nil {
		return nil, err
	}

	var ref string
	if audioRef != nil {
		ref = strings.TrimSpace(*audioRef)
	}
	var fingerprint uint32
	if ref != "" {
		if s.fingerprints == nil {
			return nil, fmt.Errorf("%w: no fingerprint service configured", ErrInvalidInput)
		}
		fingerprint, err = s.fingerprints.Fingerprint(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("fingerprinting audio: %w", err)
		}
	}

	engine := timeline.NewEngine(art)
	engine.SetAudioFingerprint(fingerprint)
	updated := engine.Artifact()
	if err := s.persistArtifact(id, updated, foundDir); err != nil {
		return nil, err
	}

	if ref == "" {
		rec.AudioRef = nil
	} else {
		rec.AudioRef = &ref
	}
	s.touch(rec)
	if err := s.catalog.Put(ctx, rec); err != nil {
		s.logger.Error("catalog write failed after artifact write", "id", id, "error", err)
		s.logInconsistency(ctx, id, "set_audio", err)
		return nil, fmt.Errorf("%w: setting audio for %s: %w", ErrInconsistent, id, err)
	}

	result := &AudioResult{Record: rec, Artifact: updated, Fingerprint: fingerprint}
	if ref == "" {
		s.logActivity(ctx, id, activity.TypeAudioCleared, "Cleared audio", nil)
	} else {
		result.SuggestedName = suggestName(ref)
		s.logActivity(ctx, id, activity.TypeAudioSet, fmt.Sprintf("Attached audio %08X", fingerprint),
			map[string]any{"audio_ref": ref, "fingerprint": fingerprint})
	}
	return result, nil
}

// ApplyEdit loads the artifact, applies one timeline edit and persists the
// result. A rejected edit leaves both stores untouched.
func (s *Service) ApplyEdit(ctx context.Context, id string, edit Edit) (*Record, timeline.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	release, err := s.locks.acquire(id)
	if err != nil {
		return nil, timeline.Artifact{}, err
	}
	defer release()

	rec, err := s.getRecord(ctx, id)
	if err != nil {
		return nil, timeline.Artifact{}, err
	}
	art, foundDir, err := s.loadArtifact(id)
	if err != nil {
		return nil, timeline.Artifact{}, err
	}

	engine := timeline.NewEngine(art)
	if err := edit.apply(engine); err != nil {
		return nil, timeline.Artifact{}, fmt.Errorf("applying %s edit: %w", edit.Kind, err)
	}
	updated := engine.Artifact()
	if err := s.persistArtifact(id, updated, foundDir); err != nil {
		return nil, timeline.Artifact{}, err
	}

	s.touch(rec)
	if err := s.catalog.Put(ctx, rec); err != nil {
		s.logger.Error("catalog write failed after artifact write", "id", id, "error", err)
		s.logInconsistency(ctx, id, "timeline_edit", err)
		return nil, timeline.Artifact{}, fmt.Errorf("%w: editing %s: %w", ErrInconsistent, id, err)
	}

	s.logActivity(ctx, id, activity.TypeTimelineEdited,
		fmt.Sprintf("Timeline %s, %d entries", edit.Kind, updated.EntryCount()),
		map[string]any{"kind": edit.Kind, "position": edit.Position, "timestamp_ms": edit.Entry.TimestampMs})
	return rec, updated, nil
}

// Delete removes the artifact and then the catalog record. If the process
// stops in between, the remaining catalog record points at a missing
// artifact, which List reports.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	release, err := s.locks.acquire(id)
	if err != nil {
		return err
	}
	defer release()

	dirs, err := s.knownDirs()
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := s.store.Delete(dir, id); err != nil {
			return fmt.Errorf("deleting artifact: %w", err)
		}
	}

	if err := s.catalog.Remove(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrProjectNotFound, id)
		}
		s.logger.Error("catalog removal failed after artifact delete", "id", id, "error", err)
		s.logInconsistency(ctx, id, "delete", err)
		return fmt.Errorf("%w: deleting %s: %w", ErrInconsistent, id, err)
	}

	s.logger.Info("project deleted", "id", id)
	s.logActivity(ctx, id, activity.TypeProjectDeleted, "Deleted project", nil)
	return nil
}

// Export returns a byte copy of the stored artifact named after targetName.
func (s *Service) Export(ctx context.Context, id, targetName string) (*Export, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, _, err := s.readArtifact(id)
	if err != nil {
		return nil, err
	}

	name := path.Base(strings.ReplaceAll(strings.TrimSpace(targetName), "\\", "/"))
	if name == "" || name == "." || name == "/" {
		name = id
	}
	ext := s.codec.Extension()
	if !strings.HasSuffix(strings.ToLower(name), ext) {
		name += ext
	}

	s.logActivity(ctx, id, activity.TypeProjectExported, fmt.Sprintf("Exported as %s", name), nil)
	return &Export{FileName: name, Data: data}, nil
}

// ChangeStorageLocation moves every catalog artifact to loc and makes it the
// current location, even when some artifacts fail to move. Those stay
// readable from their old directory and a *PartialMigrationError lists them.
// Artifacts left behind by earlier migrations are moved along. Calling it
// again with the current location retries pending artifacts; with nothing
// pending it does nothing.
func (s *Service) ChangeStorageLocation(ctx context.Context, loc artifact.Location) (artifact.MigrationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sources []artifact.Location
	if !loc.Equal(s.location) {
		sources = append(sources, s.location)
	}
	for _, prev := range s.previous {
		if !prev.Equal(loc) && !containsLocation(sources, prev) {
			sources = append(sources, prev)
		}
	}
	if len(sources) == 0 {
		return artifact.MigrationResult{}, nil
	}

	newDir, err := s.store.Resolve(loc)
	if err != nil {
		return artifact.MigrationResult{}, fmt.Errorf("resolving new storage location: %w", err)
	}
	records, err := s.catalog.List(ctx)
	if err != nil {
		return artifact.MigrationResult{}, fmt.Errorf("listing projects: %w", err)
	}
	remaining := make([]string, 0, len(records))
	for _, rec := range records {
		remaining = append(remaining, rec.ID)
	}

	var (
		results     []artifact.MigrationResult
		pending     []artifact.Location
		unavailable []string
	)
	for i, source := range sources {
		oldDir, err := s.store.Resolve(source)
		if err != nil {
			if i == 0 && !loc.Equal(s.location) {
				return artifact.MigrationResult{}, fmt.Errorf("resolving current storage location: %w", err)
			}
			s.logger.Warn("pending storage location unavailable", "location", source.String(), "error", err)
			pending = append(pending, source)
			unavailable = append(unavailable, source.String())
			continue
		}
		result := s.store.Migrate(oldDir, newDir, remaining)
		results = append(results, result)
		if !result.OK() {
			pending = append(pending, source)
		}
		remaining = unsettled(remaining, result)
	}
	total := mergeResults(results...)

	oldLocation := s.location
	s.location = loc
	s.previous = pending
	s.logger.Info("storage location changed",
		"from", oldLocation.String(),
		"to", loc.String(),
		"moved", len(total.Moved),
		"failed", len(total.Failed),
		"pending_locations", len(pending))

	var persistErr error
	if s.settings != nil {
		if err := s.settings.Set(ctx, SettingStorageLocation, loc.String()); err != nil {
			persistErr = err
		} else if len(pending) > 0 {
			persistErr = s.settings.Set(ctx, SettingPreviousLocation, encodeLocations(pending))
		} else {
			persistErr = s.settings.Delete(ctx, SettingPreviousLocation)
		}
	}

	s.logActivity(ctx, "", activity.TypeStorageMigrated,
		fmt.Sprintf("Storage moved to %s", loc.Describe()),
		map[string]any{
			"from":            oldLocation.String(),
			"to":              loc.String(),
			"moved":           total.Moved,
			"already_present": total.AlreadyPresent,
			"missing":         total.Missing,
			"failed":          total.FailedIDs(),
			"unavailable":     unavailable,
		})

	if persistErr != nil {
		s.logger.Error("failed to persist storage location", "location", loc.String(), "error", persistErr)
		return total, fmt.Errorf("%w: persisting storage location: %w", ErrInconsistent, persistErr)
	}
	if !total.OK() || len(unavailable) > 0 {
		return total, &PartialMigrationError{IDs: total.FailedIDs(), Unavailable: unavailable}
	}
	return total, nil
}

// Check compares the catalog with the artifacts on disk.
func (s *Service) Check(ctx context.Context) (*ConsistencyReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dir, err := s.store.Resolve(s.location)
	if err != nil {
		return nil, fmt.Errorf("resolving storage: %w", err)
	}
	records, err := s.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	stored, err := s.store.List(dir)
	if err != nil {
		return nil, fmt.Errorf("listing artifacts: %w", err)
	}

	report := &ConsistencyReport{
		Location:             s.location,
		Dir:                  dir,
		MissingArtifacts:     []string{},
		Orphans:              []string{},
		PendingMigration:     []string{},
		UnavailableLocations: []string{},
	}

	previousIDs := make(map[string]bool)
	for _, prev := range s.previous {
		prevDir, err := s.store.Resolve(prev)
		if err != nil {
			s.logger.Warn("pending storage location unavailable", "location", prev.String(), "error", err)
			report.UnavailableLocations = append(report.UnavailableLocations, prev.String())
			continue
		}
		ids, err := s.store.List(prevDir)
		if err != nil {
			s.logger.Warn("failed to list pending storage location", "dir", prevDir, "error", err)
		}
		for _, id := range ids {
			previousIDs[id] = true
		}
	}
	storedIDs := toSet(stored)
	known := make(map[string]bool, len(records))
	for _, rec := range records {
		known[rec.ID] = true
		switch {
		case storedIDs[rec.ID]:
		case previousIDs[rec.ID]:
			report.PendingMigration = append(report.PendingMigration, rec.ID)
		default:
			report.MissingArtifacts = append(report.MissingArtifacts, rec.ID)
		}
	}
	for _, id := range stored {
		if !known[id] {
			report.Orphans = append(report.Orphans, id)
		}
	}
	return report, nil
}

func (s *Service) getRecord(ctx context.Context, id string) (*Record, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidInput
	}
	rec, err := s.catalog.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}
	return rec, nil
}

// readArtifact returns the stored bytes for id and the directory they came
// from. An artifact the current location cannot serve is read from the
// pending locations in order.
func (s *Service) readArtifact(id string) ([]byte, string, error) {
	dir, err := s.store.Resolve(s.location)
	if err != nil {
		return nil, "", fmt.Errorf("resolving storage: %w", err)
	}
	data, err := s.store.Read(dir, id)
	if err == nil {
		return data, dir, nil
	}
	for _, prevDir := range s.previousDirs() {
		if data, prevErr := s.store.Read(prevDir, id); prevErr == nil {
			return data, prevDir, nil
		}
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, "", fmt.Errorf("%w: artifact for %s: %w", ErrProjectNotFound, id, err)
	}
	return nil, "", err
}

func (s *Service) loadArtifact(id string) (timeline.Artifact, string, error) {
	data, dir, err := s.readArtifact(id)
	if err != nil {
		return timeline.Artifact{}, "", err
	}
	art, err := s.codec.Decode(data)
	if err != nil {
		return timeline.Artifact{}, "", fmt.Errorf("artifact %s: %w: %w", id, repository.ErrReadFailed, err)
	}
	return art, dir, nil
}

// persistArtifact writes art to the current location. An artifact that was
// loaded from a pending location is removed there once the write succeeds.
func (s *Service) persistArtifact(id string, art timeline.Artifact, foundDir string) error {
	data, err := s.codec.Encode(art)
	if err != nil {
		return fmt.Errorf("encoding artifact: %w", err)
	}
	dir, err := s.store.Resolve(s.location)
	if err != nil {
		return fmt.Errorf("resolving storage: %w", err)
	}
	if err := s.store.Write(dir, id, data); err != nil {
		s.logger.Error("failed to save artifact", "id", id, "error", err)
		return fmt.Errorf("saving artifact: %w", err)
	}
	if foundDir != "" && foundDir != dir {
		if err := s.store.Delete(foundDir, id); err != nil {
			s.logger.Warn("failed to remove artifact from previous location", "id", id, "dir", foundDir, "error", err)
		}
	}
	return nil
}

// previousDirs resolves the pending locations, skipping the ones that are
// unavailable.
func (s *Service) previousDirs() []string {
	dirs := make([]string, 0, len(s.previous))
	for _, prev := range s.previous {
		dir, err := s.store.Resolve(prev)
		if err != nil {
			s.logger.Warn("pending storage location unavailable", "location", prev.String(), "error", err)
			continue
		}
		dirs = append(dirs, dir)
	}
	return dirs
}

// knownDirs resolves the current and every pending location. Any location
// that cannot be resolved is an error.
func (s *Service) knownDirs() ([]string, error) {
	dir, err := s.store.Resolve(s.location)
	if err != nil {
		return nil, fmt.Errorf("resolving storage: %w", err)
	}
	dirs := []string{dir}
	for _, prev := range s.previous {
		prevDir, err := s.store.Resolve(prev)
		if err != nil {
			return nil, fmt.Errorf("resolving pending storage location %s: %w", prev.String(), err)
		}
		if !slices.Contains(dirs, prevDir) {
			dirs = append(dirs, prevDir)
		}
	}
	return dirs, nil
}

// touch advances UpdatedAt without ever moving it backwards.
func (s *Service) touch(rec *Record) {
	now := s.now()
	if now.Before(rec.UpdatedAt) {
		now = rec.UpdatedAt
	}
	if now.Before(rec.CreatedAt) {
		now = rec.CreatedAt
	}
	rec.UpdatedAt = now
}

func (s *Service) logActivity(ctx context.Context, projectID string, typ activity.ActivityType, summary string, details any) {
	if s.activity == nil {
		return
	}
	entry := &activity.ActivityEntry{
		ProjectID:    projectID,
		ActivityType: typ,
		Summary:      summary,
		CreatedAt:    s.now(),
	}
	if details != nil {
		if raw, err := json.Marshal(details); err == nil {
			entry.Details = string(raw)
		}
	}
	if err := s.activity.LogActivity(ctx, entry); err != nil {
		s.logger.Warn("failed to record activity", "project_id", projectID, "type", typ, "error", err)
	}
}

func (s *Service) logInconsistency(ctx context.Context, id, op string, cause error) {
	s.logActivity(ctx, id, activity.TypeInconsistency,
		fmt.Sprintf("Catalog and artifact diverged during %s", op),
		map[string]any{"operation": op, "error": cause.Error()})
}

// mergeResults combines the per-source results of one migration. Each id is
// reported once, by the strongest outcome any source had for it: moved, then
// failed, then already present, then missing.
func mergeResults(results ...artifact.MigrationResult) artifact.MigrationResult {
	const (
		rankMissing = iota
		rankPresent
		rankFailed
		rankMoved
	)
	rank := make(map[string]int)
	failures := make(map[string]error)
	var order []string
	note := func(id string, r int) {
		cur, seen := rank[id]
		if !seen {
			order = append(order, id)
		}
		if !seen || r > cur {
			rank[id] = r
		}
	}
	for _, r := range results {
		for _, id := range r.Moved {
			note(id, rankMoved)
		}
		for _, id := range r.FailedIDs() {
			note(id, rankFailed)
			if _, ok := failures[id]; !ok {
				failures[id] = r.Failed[id]
			}
		}
		for _, id := range r.AlreadyPresent {
			note(id, rankPresent)
		}
		for _, id := range r.Missing {
			note(id, rankMissing)
		}
	}

	total := artifact.MigrationResult{Failed: make(map[string]error)}
	for _, id := range order {
		switch rank[id] {
		case rankMoved:
			total.Moved = append(total.Moved, id)
		case rankFailed:
			total.Failed[id] = failures[id]
		case rankPresent:
			total.AlreadyPresent = append(total.AlreadyPresent, id)
		default:
			total.Missing = append(total.Missing, id)
		}
	}
	return total
}

// unsettled returns the ids that result did not leave at the destination.
func unsettled(ids []string, result artifact.MigrationResult) []string {
	settled := toSet(result.Moved)
	for _, id := range result.AlreadyPresent {
		settled[id] = true
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !settled[id] {
			out = append(out, id)
		}
	}
	return out
}

func containsLocation(locs []artifact.Location, loc artifact.Location) bool {
	return slices.ContainsFunc(locs, loc.Equal)
}

// pendingLocations drops current and duplicates from previous.
func pendingLocations(current artifact.Location, previous []artifact.Location) []artifact.Location {
	var out []artifact.Location
	for _, prev := range previous {
		if prev.Equal(current) || containsLocation(out, prev) {
			continue
		}
		out = append(out, prev)
	}
	return out
}

func encodeLocations(locs []artifact.Location) string {
	values := make([]string, 0, len(locs))
	for _, loc := range locs {
		values = append(values, loc.String())
	}
	raw, _ := json.Marshal(values)
	return string(raw)
}

// decodeLocations accepts a JSON array of location strings or a single bare
// location string.
func decodeLocations(value string) []artifact.Location {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	var values []string
	if !strings.HasPrefix(value, "[") || json.Unmarshal([]byte(value), &values) != nil {
		return []artifact.Location{artifact.ParseLocation(value)}
	}
	locs := make([]artifact.Location, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			locs = append(locs, artifact.ParseLocation(v))
		}
	}
	return locs
}

// suggestName derives a project name from an audio reference's file name.
func suggestName(ref string) string {
	if i := strings.Index(ref, "://"); i >= 0 {
		ref = ref[i+3:]
	}
	base := path.Base(strings.ReplaceAll(ref, "\\", "/"))
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
