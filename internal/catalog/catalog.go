// Package catalog persists project records as a single JSON document.
//
// The whole list is re-read on every operation and rewritten in full on
// every change through a temp file and rename, so a crash never leaves a
// truncated catalog. Writers are serialized in-process by a mutex and across
// processes by an flock on "<path>.lock".
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/rpggio/efxcreator/internal/domain/project"
	"github.com/rpggio/efxcreator/internal/fileutil"
	"github.com/rpggio/efxcreator/internal/repository"
)

const lockRetryDelay = 25 * time.Millisecond

// Catalog implements project.Catalog on a JSON file.
type Catalog struct {
	path   string
	lock   *flock.Flock
	logger *slog.Logger
	mu     sync.Mutex
}

// New returns a catalog stored at path. The file is created on first write.
func New(path string, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Catalog{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logger.With("component", "catalog"),
	}
}

// Path returns the catalog file location.
func (c *Catalog) Path() string {
	return c.path
}

// List returns every record in catalog order.
func (c *Catalog) List(ctx context.Context) ([]project.Record, error) {
	var records []project.Record
	err := c.withLock(ctx, false, func() error {
		var err error
		records, err = c.load()
		return err
	})
	return records, err
}

// Get returns the record for id.
func (c *Catalog) Get(ctx context.Context, id string) (*project.Record, error) {
	var found *project.Record
	err := c.withLock(ctx, false, func() error {
		records, err := c.load()
		if err != nil {
			return err
		}
		idx := indexOf(records, id)
		if idx < 0 {
			return repository.ErrNotFound
		}
		rec := records[idx]
		found = &rec
		return nil
	})
	return found, err
}

// Put inserts rec or replaces the record with the same id. New records are
// appended.
func (c *Catalog) Put(ctx context.Context, rec *project.Record) error {
	if rec == nil || strings.TrimSpace(rec.ID) == "" {
		return repository.ErrInvalidInput
	}
	return c.withLock(ctx, true, func() error {
		records, err := c.load()
		if err != nil {
			return err
		}
		if idx := indexOf(records, rec.ID); idx >= 0 {
			records[idx] = *rec
			c.logger.Debug("updated project record", "id", rec.ID)
		} else {
			records = append(records, *rec)
			c.logger.Debug("added project record", "id", rec.ID)
		}
		return c.save(records)
	})
}

// Remove deletes the record for id.
func (c *Catalog) Remove(ctx context.Context, id string) error {
	return c.withLock(ctx, true, func() error {
		records, err := c.load()
		if err != nil {
			return err
		}
		idx := indexOf(records, id)
		if idx < 0 {
			return repository.ErrNotFound
		}
		records = append(records[:idx], records[idx+1:]...)
		c.logger.Debug("removed project record", "id", id)
		return c.save(records)
	})
}

func (c *Catalog) withLock(ctx context.Context, exclusive bool, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("%w: create catalog directory: %v", repository.ErrPathUnavailable, err)
	}

	var locked bool
	var err error
	if exclusive {
		locked, err = c.lock.TryLockContext(ctx, lockRetryDelay)
	} else {
		locked, err = c.lock.TryRLockContext(ctx, lockRetryDelay)
	}
	if err != nil {
		return fmt.Errorf("acquire catalog lock: %w", err)
	}
	if !locked {
		return errors.New("acquire catalog lock: not acquired")
	}
	defer func() {
		if err := c.lock.Unlock(); err != nil {
			c.logger.Warn("failed to release catalog lock", "error", err)
		}
	}()

	return fn()
}

// load reads the catalog from disk. A missing or empty file is an empty catalog.
func (c *Catalog) load() ([]project.Record, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []project.Record{}, nil
		}
		return nil, fmt.Errorf("%w: read catalog: %v", repository.ErrReadFailed, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return []project.Record{}, nil
	}

	var records []project.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: parse catalog: %v", repository.ErrReadFailed, err)
	}
	if records == nil {
		records = []project.Record{}
	}
	return records, nil
}

// save writes the catalog to disk atomically.
func (c *Catalog) save(records []project.Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	if err := fileutil.WriteFileAtomic(c.path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrWriteFailed, err)
	}
	c.logger.Debug("saved catalog", "path", c.path, "records", len(records))
	return nil
}

func indexOf(records []project.Record, id string) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}
