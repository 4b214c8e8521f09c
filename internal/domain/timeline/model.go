package timeline

import (
	"bytes"
	"math"
)

// FormatVersion is the header version written for new artifacts.
const FormatVersion uint16 = 1

// MaxTimestampMs is the largest timestamp an artifact can carry.
const MaxTimestampMs int64 = math.MaxUint32

// Payload holds effect parameters. Its layout belongs to the codec; the
// timeline only copies and compares it.
type Payload []byte

// Clone returns an independent copy of the payload.
func (p Payload) Clone() Payload {
	if p == nil {
		return nil
	}
	return append(Payload(nil), p...)
}

// Equal reports whether both payloads hold the same bytes.
func (p Payload) Equal(other Payload) bool {
	return bytes.Equal(p, other)
}

// Entry is one scheduled effect command.
type Entry struct {
	TimestampMs int64   `json:"timestamp_ms"`
	EffectIndex int     `json:"effect_index"`
	Payload     Payload `json:"payload"`
}

// Clone returns a deep copy of the entry.
func (e Entry) Clone() Entry {
	e.Payload = e.Payload.Clone()
	return e
}

// Equal compares timestamp, index and payload.
func (e Entry) Equal(other Entry) bool {
	return e.TimestampMs == other.TimestampMs &&
		e.EffectIndex == other.EffectIndex &&
		e.Payload.Equal(other.Payload)
}

// Header carries the artifact summary fields. The entry count is not stored
// here; it is always derived from the body.
type Header struct {
	Version          uint16 `json:"version"`
	AudioFingerprint uint32 `json:"audio_fingerprint"`
}

// Artifact is a project's header plus its ordered timeline.
type Artifact struct {
	Header  Header  `json:"header"`
	Entries []Entry `json:"entries"`
}

// EntryCount is the header entry count, derived from the body.
func (a Artifact) EntryCount() int {
	return len(a.Entries)
}

// HasAudio reports whether a fingerprint is attached.
func (a Artifact) HasAudio() bool {
	return a.Header.AudioFingerprint != 0
}

// Clone returns a deep copy of the artifact.
func (a Artifact) Clone() Artifact {
	out := Artifact{Header: a.Header}
	if a.Entries != nil {
		out.Entries = make([]Entry, len(a.Entries))
		for i, entry := range a.Entries {
			out.Entries[i] = entry.Clone()
		}
	}
	return out
}

// Equal compares header and every entry in order.
func (a Artifact) Equal(other Artifact) bool {
	if a.Header != other.Header || len(a.Entries) != len(other.Entries) {
		return false
	}
	for i := range a.Entries {
		if !a.Entries[i].Equal(other.Entries[i]) {
			return false
		}
	}
	return true
}

// NewDefault builds the artifact every new project starts with: a single
// entry at 0ms carrying the given payload.
func NewDefault(payload Payload) Artifact {
	return Artifact{
		Header: Header{Version: FormatVersion},
		Entries: []Entry{
			{TimestampMs: 0, EffectIndex: 1, Payload: payload.Clone()},
		},
	}
}
