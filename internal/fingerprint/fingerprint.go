// Package fingerprint derives the 32-bit music identifier stored in an
// artifact header from an audio file.
package fingerprint

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
)

// DefaultSampleBytes is how much of the audio file contributes to the hash.
const DefaultSampleBytes = 1 << 20

// ErrUnsupportedRef indicates an audio reference this service cannot open.
var ErrUnsupportedRef = errors.New("unsupported audio reference")

// FileFingerprinter hashes local audio files. The result is deterministic for
// a given file and never 0, which is reserved for "no audio".
type FileFingerprinter struct {
	sampleBytes int64
}

// NewFileFingerprinter returns a fingerprinter reading at most sampleBytes
// of each file; sampleBytes <= 0 selects DefaultSampleBytes.
func NewFileFingerprinter(sampleBytes int64) *FileFingerprinter {
	if sampleBytes <= 0 {
		sampleBytes = DefaultSampleBytes
	}
	return &FileFingerprinter{sampleBytes: sampleBytes}
}

// Fingerprint returns the identifier for the audio file behind audioRef, which
// is a local path or a file:// URL.
func (f *FileFingerprinter) Fingerprint(ctx context.Context, audioRef string) (uint32, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	path, err := LocalPath(audioRef)
	if err != nil {
		return 0, err
	}

	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open audio: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat audio: %w", err)
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("audio %q is not a regular file", path)
	}

	hasher := sha256.New()
	var size [8]byte
	binary.LittleEndian.PutUint64(size[:], uint64(info.Size()))
	hasher.Write(size[:])
	if _, err := io.CopyN(hasher, file, f.sampleBytes); err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("read audio: %w", err)
	}

	sum := hasher.Sum(nil)
	id := binary.BigEndian.Uint32(sum[:4])
	if id == 0 {
		id = 1
	}
	return id, nil
}

// LocalPath converts an audio reference into a filesystem path.
func LocalPath(audioRef string) (string, error) {
	ref := strings.TrimSpace(audioRef)
	if ref == "" {
		return "", fmt.Errorf("%w: empty reference", ErrUnsupportedRef)
	}
	if !strings.Contains(ref, "://") {
		return ref, nil
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedRef, err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("%w: scheme %q", ErrUnsupportedRef, u.Scheme)
	}
	return u.Path, nil
}
