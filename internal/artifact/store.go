package artifact

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rpggio/efxcreator/internal/fileutil"
	"github.com/rpggio/efxcreator/internal/repository"
)

// ExternalResolver maps an external storage reference to a local directory.
// Granting access to the reference is the resolver's concern.
type ExternalResolver interface {
	ResolveExternal(ref string) (string, error)
}

// MapResolver resolves external references from a fixed table.
type MapResolver map[string]string

// ResolveExternal implements ExternalResolver.
func (m MapResolver) ResolveExternal(ref string) (string, error) {
	dir, ok := m[ref]
	if !ok || strings.TrimSpace(dir) == "" {
		return "", fmt.Errorf("no directory mapped for %q", ref)
	}
	return dir, nil
}

// Store performs artifact file operations inside resolved directories.
type Store struct {
	defaultDir string
	ext        string
	external   ExternalResolver
	logger     *slog.Logger
}

// NewStore creates a store. defaultDir backs the default location, ext is the
// artifact file extension (with dot) and external may be nil.
func NewStore(defaultDir, ext string, external ExternalResolver, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{
		defaultDir: defaultDir,
		ext:        ext,
		external:   external,
		logger:     logger.With("component", "artifact_store"),
	}
}

// Path returns the artifact file path for id inside dir.
func (s *Store) Path(dir, id string) string {
	return filepath.Join(dir, id+s.ext)
}

// Resolve maps a location setting to a usable directory, creating it if needed.
func (s *Store) Resolve(loc Location) (string, error) {
	var dir string
	switch loc.Kind {
	case KindDefault, "":
		dir = s.defaultDir
	case KindExternal:
		if s.external == nil {
			return "", fmt.Errorf("%w: no resolver for external location %q", repository.ErrPathUnavailable, loc.Value)
		}
		resolved, err := s.external.ResolveExternal(loc.Value)
		if err != nil {
			return "", fmt.Errorf("%w: %v", repository.ErrPathUnavailable, err)
		}
		dir = resolved
	case KindPath:
		dir = loc.Value
	default:
		return "", fmt.Errorf("%w: unknown location kind %q", repository.ErrPathUnavailable, loc.Kind)
	}
	if strings.TrimSpace(dir) == "" {
		return "", fmt.Errorf("%w: empty directory", repository.ErrPathUnavailable)
	}

	dir = filepath.Clean(dir)
	if err := ensureWritableDir(dir); err != nil {
		return "", fmt.Errorf("%w: %s: %v", repository.ErrPathUnavailable, dir, err)
	}
	return dir, nil
}

// Read returns the stored bytes for id.
func (s *Store) Read(dir, id string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(dir, id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("artifact %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("artifact %s: %w: %v", id, repository.ErrReadFailed, err)
	}
	return data, nil
}

// Write creates or replaces the artifact for id. On error the previous
// artifact, if any, is unchanged.
func (s *Store) Write(dir, id string, data []byte) error {
	if err := fileutil.WriteFileAtomic(s.Path(dir, id), data, 0o644); err != nil {
		return fmt.Errorf("artifact %s: %w: %v", id, repository.ErrWriteFailed, err)
	}
	s.logger.Debug("artifact written", "id", id, "dir", dir, "bytes", len(data))
	return nil
}

// Delete removes the artifact for id. A missing artifact is not an error.
func (s *Store) Delete(dir, id string) error {
	err := os.Remove(s.Path(dir, id))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("artifact %s: %w: %v", id, repository.ErrWriteFailed, err)
	}
	return nil
}

// Exists reports whether a regular artifact file exists for id.
func (s *Store) Exists(dir, id string) (bool, error) {
	info, err := os.Stat(s.Path(dir, id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("artifact %s: %w: %v", id, repository.ErrReadFailed, err)
	}
	return info.Mode().IsRegular(), nil
}

// List returns the ids of all artifacts in dir, sorted.
func (s *Store) List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s: %w: %v", dir, repository.ErrReadFailed, err)
	}
	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, s.ext) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, s.ext))
	}
	sort.Strings(ids)
	return ids, nil
}

func ensureWritableDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	probe, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return err
	}
	name := probe.Name()
	_ = probe.Close()
	return os.Remove(name)
}
