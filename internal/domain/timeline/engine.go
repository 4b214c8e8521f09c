package timeline

import (
	"fmt"
	"slices"
)

// Engine owns the artifact of one open project and applies edits to it.
// After every call the entries are sorted by timestamp, effect indexes are
// exactly 1..N and the derived entry count equals N. A failed call leaves the
// artifact untouched.
//
// Engine is not safe for concurrent use; callers serialize per project.
type Engine struct {
	artifact Artifact
}

// NewEngine takes a copy of artifact and normalizes its ordering and indexes.
func NewEngine(artifact Artifact) *Engine {
	e := &Engine{artifact: artifact.Clone()}
	if e.artifact.Entries == nil {
		e.artifact.Entries = []Entry{}
	}
	e.artifact.Entries = normalize(e.artifact.Entries)
	return e
}

// Artifact returns a snapshot of the current artifact.
func (e *Engine) Artifact() Artifact {
	return e.artifact.Clone()
}

// Entries returns a snapshot of the current timeline.
func (e *Engine) Entries() []Entry {
	return e.artifact.Clone().Entries
}

// EntryCount returns the number of entries.
func (e *Engine) EntryCount() int {
	return e.artifact.EntryCount()
}

// AddEntry inserts candidate. Its EffectIndex is ignored. Entries sharing a
// timestamp keep their insertion order, so the candidate lands after them.
func (e *Engine) AddEntry(candidate Entry) error {
	if err := validateTimestamp(candidate.TimestampMs); err != nil {
		return err
	}
	entries := make([]Entry, 0, len(e.artifact.Entries)+1)
	entries = append(entries, e.artifact.Entries...)
	entries = append(entries, candidate.Clone())
	e.artifact.Entries = normalize(entries)
	return nil
}

// UpdateEntry replaces the entry at position, where position indexes the
// timeline as it is before the call. The replacement may move after sorting.
func (e *Engine) UpdateEntry(position int, replacement Entry) error {
	if err := e.checkPosition(position); err != nil {
		return err
	}
	if err := validateTimestamp(replacement.TimestampMs); err != nil {
		return err
	}
	entries := slices.Clone(e.artifact.Entries)
	entries[position] = replacement.Clone()
	e.artifact.Entries = normalize(entries)
	return nil
}

// DeleteEntry removes the entry at position. Removing the last entry leaves
// an empty timeline.
func (e *Engine) DeleteEntry(position int) error {
	if err := e.checkPosition(position); err != nil {
		return err
	}
	entries := slices.Delete(slices.Clone(e.artifact.Entries), position, position+1)
	e.artifact.Entries = normalize(entries)
	return nil
}

// SetAudioFingerprint attaches an audio fingerprint; 0 means no audio.
func (e *Engine) SetAudioFingerprint(value uint32) {
	e.artifact.Header.AudioFingerprint = value
}

func (e *Engine) checkPosition(position int) error {
	if position < 0 || position >= len(e.artifact.Entries) {
		return fmt.Errorf("%w: position %d, timeline has %d entries", ErrOutOfRange, position, len(e.artifact.Entries))
	}
	return nil
}

func validateTimestamp(ms int64) error {
	if ms < 0 || ms > MaxTimestampMs {
		return fmt.Errorf("%w: %dms", ErrInvalidTimestamp, ms)
	}
	return nil
}

// normalize sorts entries stably by timestamp and rewrites effect indexes
// to their 1-based position.
func normalize(entries []Entry) []Entry {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		switch {
		case a.TimestampMs < b.TimestampMs:
			return -1
		case a.TimestampMs > b.TimestampMs:
			return 1
		default:
			return 0
		}
	})
	for i := range entries {
		entries[i].EffectIndex = i + 1
	}
	return entries
}
