package efx

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/rpggio/efxcreator/internal/domain/timeline"
)

// Extension is the file extension of stored artifacts.
const Extension = ".efx"

var magic = [4]byte{'E', 'F', 'X', '1'}

const (
	headerSize      = 16
	entryHeaderSize = 10
	maxPayloadSize  = math.MaxUint16
)

var (
	// ErrMalformed indicates bytes that are not a valid artifact.
	ErrMalformed = errors.New("malformed efx artifact")
	// ErrUnsupportedVersion indicates an artifact written by a newer format.
	ErrUnsupportedVersion = errors.New("unsupported efx version")
	// ErrInvalidArtifact indicates an artifact that cannot be encoded.
	ErrInvalidArtifact = errors.New("invalid efx artifact")
)

// Codec converts artifacts to and from the .efx byte layout.
type Codec struct{}

// NewCodec returns the .efx codec.
func NewCodec() *Codec {
	return &Codec{}
}

// Extension returns the artifact file extension, including the dot.
func (c *Codec) Extension() string {
	return Extension
}

// DefaultPayload returns the payload of the entry every new project starts with.
func (c *Codec) DefaultPayload() timeline.Payload {
	return EncodeEffect(DefaultEffect(EffectOff))
}

// Encode serializes artifact. The entry count is taken from the body.
func (c *Codec) Encode(artifact timeline.Artifact) ([]byte, error) {
	if uint64(len(artifact.Entries)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: too many entries", ErrInvalidArtifact)
	}
	version := artifact.Header.Version
	if version == 0 {
		version = timeline.FormatVersion
	}

	size := headerSize
	for _, entry := range artifact.Entries {
		size += entryHeaderSize + len(entry.Payload)
	}
	buf := make([]byte, 0, size)
	buf = append(buf, magic[:]...)
	buf = binary.LittleEndian.AppendUint16(buf, version)
	buf = binary.LittleEndian.AppendUint16(buf, 0)
	buf = binary.LittleEndian.AppendUint32(buf, artifact.Header.AudioFingerprint)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(artifact.Entries)))

	for i, entry := range artifact.Entries {
		if entry.TimestampMs < 0 || entry.TimestampMs > timeline.MaxTimestampMs {
			return nil, fmt.Errorf("%w: entry %d timestamp %d", ErrInvalidArtifact, i, entry.TimestampMs)
		}
		if entry.EffectIndex < 0 || int64(entry.EffectIndex) > math.MaxUint32 {
			return nil, fmt.Errorf("%w: entry %d effect index %d", ErrInvalidArtifact, i, entry.EffectIndex)
		}
		if len(entry.Payload) > maxPayloadSize {
			return nil, fmt.Errorf("%w: entry %d payload is %d bytes", ErrInvalidArtifact, i, len(entry.Payload))
		}
		buf = binary.LittleEndian.AppendUint32(buf, uint32(entry.TimestampMs))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(entry.EffectIndex))
		buf = binary.LittleEndian.AppendUint16(buf, uint16(len(entry.Payload)))
		buf = append(buf, entry.Payload...)
	}
	return buf, nil
}

// Decode parses data into an artifact.
func (c *Codec) Decode(data []byte) (timeline.Artifact, error) {
	if len(data) < headerSize {
		return timeline.Artifact{}, fmt.Errorf("%w: %d bytes is shorter than the header", ErrMalformed, len(data))
	}
	if !bytes.Equal(data[:4], magic[:]) {
		return timeline.Artifact{}, fmt.Errorf("%w: bad magic %q", ErrMalformed, data[:4])
	}
	version := binary.LittleEndian.Uint16(data[4:6])
	if version == 0 || version > timeline.FormatVersion {
		return timeline.Artifact{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	fingerprint := binary.LittleEndian.Uint32(data[8:12])
	count := binary.LittleEndian.Uint32(data[12:16])

	rest := data[headerSize:]
	if uint64(count)*entryHeaderSize > uint64(len(rest)) {
		return timeline.Artifact{}, fmt.Errorf("%w: header declares %d entries, only %d bytes follow", ErrMalformed, count, len(rest))
	}

	entries := make([]timeline.Entry, 0, count)
	for i := uint32(0); i < count; i++ {
		if len(rest) < entryHeaderSize {
			return timeline.Artifact{}, fmt.Errorf("%w: entry %d truncated", ErrMalformed, i)
		}
		ts := binary.LittleEndian.Uint32(rest[0:4])
		index := binary.LittleEndian.Uint32(rest[4:8])
		payloadLen := int(binary.LittleEndian.Uint16(rest[8:10]))
		rest = rest[entryHeaderSize:]
		if len(rest) < payloadLen {
			return timeline.Artifact{}, fmt.Errorf("%w: entry %d payload truncated", ErrMalformed, i)
		}
		entries = append(entries, timeline.Entry{
			TimestampMs: int64(ts),
			EffectIndex: int(index),
			Payload:     timeline.Payload(bytes.Clone(rest[:payloadLen])),
		})
		rest = rest[payloadLen:]
	}
	if len(rest) != 0 {
		return timeline.Artifact{}, fmt.Errorf("%w: %d trailing bytes", ErrMalformed, len(rest))
	}

	return timeline.Artifact{
		Header:  timeline.Header{Version: version, AudioFingerprint: fingerprint},
		Entries: entries,
	}, nil
}
