package timeline_test

import (
	"math/rand"
	"testing"

	"github.com/rpggio/efxcreator/internal/domain/timeline"
	"github.com/stretchr/testify/require"
)

func entryAt(ms int64, tag byte) timeline.Entry {
	return timeline.Entry{TimestampMs: ms, Payload: timeline.Payload{tag}}
}

func requireConsistent(t *testing.T, e *timeline.Engine) {
	t.Helper()
	art := e.Artifact()
	require.Equal(t, len(art.Entries), art.EntryCount())
	require.Equal(t, len(art.Entries), e.EntryCount())
	for i, entry := range art.Entries {
		require.Equal(t, i+1, entry.EffectIndex, "entry %d has wrong effect index", i)
		if i > 0 {
			require.LessOrEqual(t, art.Entries[i-1].TimestampMs, entry.TimestampMs)
		}
	}
}

func timestamps(entries []timeline.Entry) []int64 {
	out := make([]int64, len(entries))
	for i, entry := range entries {
		out[i] = entry.TimestampMs
	}
	return out
}

func indexes(entries []timeline.Entry) []int {
	out := make([]int, len(entries))
	for i, entry := range entries {
		out[i] = entry.EffectIndex
	}
	return out
}

func TestNewDefault(t *testing.T) {
	art := timeline.NewDefault(timeline.Payload{0x01})
	require.Equal(t, 1, art.EntryCount())
	require.Equal(t, 1, art.Entries[0].EffectIndex)
	require.Equal(t, int64(0), art.Entries[0].TimestampMs)
	require.Equal(t, timeline.FormatVersion, art.Header.Version)
	require.False(t, art.HasAudio())
}

func TestEngine_AddSortsAndReindexes(t *testing.T) {
	e := timeline.NewEngine(timeline.Artifact{})
	require.NoError(t, e.AddEntry(entryAt(5000, 'a')))
	require.NoError(t, e.AddEntry(entryAt(1000, 'b')))
	require.NoError(t, e.AddEntry(entryAt(3000, 'c')))

	entries := e.Entries()
	require.Equal(t, []int64{1000, 3000, 5000}, timestamps(entries))
	require.Equal(t, []int{1, 2, 3}, indexes(entries))
	requireConsistent(t, e)
}

func TestEngine_AddIgnoresCallerIndex(t *testing.T) {
	e := timeline.NewEngine(timeline.NewDefault(nil))
	candidate := entryAt(10, 'x')
	candidate.EffectIndex = 99
	require.NoError(t, e.AddEntry(candidate))
	require.Equal(t, []int{1, 2}, indexes(e.Entries()))
}

func TestEngine_DuplicateTimestampsKeepInsertionOrder(t *testing.T) {
	e := timeline.NewEngine(timeline.Artifact{})
	require.NoError(t, e.AddEntry(entryAt(1000, 'a')))
	require.NoError(t, e.AddEntry(entryAt(1000, 'b')))
	require.NoError(t, e.AddEntry(entryAt(500, 'c')))
	require.NoError(t, e.AddEntry(entryAt(1000, 'd')))

	entries := e.Entries()
	require.Len(t, entries, 4)
	tags := []byte{}
	for _, entry := range entries {
		tags = append(tags, entry.Payload[0])
	}
	require.Equal(t, []byte("cabd"), tags)
	requireConsistent(t, e)
}

func TestEngine_UpdateMovesEntry(t *testing.T) {
	e := timeline.NewEngine(timeline.Artifact{})
	for _, ms := range []int64{1000, 2000, 3000} {
		require.NoError(t, e.AddEntry(entryAt(ms, byte(ms/1000))))
	}

	require.NoError(t, e.UpdateEntry(0, entryAt(4000, 'z')))
	entries := e.Entries()
	require.Equal(t, []int64{2000, 3000, 4000}, timestamps(entries))
	require.Equal(t, timeline.Payload{'z'}, entries[2].Payload)
	requireConsistent(t, e)
}

func TestEngine_DeleteMiddle(t *testing.T) {
	e := timeline.NewEngine(timeline.Artifact{})
	for _, ms := range []int64{1000, 2000, 3000} {
		require.NoError(t, e.AddEntry(entryAt(ms, 0)))
	}

	require.NoError(t, e.DeleteEntry(1))
	entries := e.Entries()
	require.Equal(t, []int64{1000, 3000}, timestamps(entries))
	require.Equal(t, []int{1, 2}, indexes(entries))
	require.Equal(t, 2, e.EntryCount())
}

func TestEngine_DeleteLastEntry(t *testing.T) {
	e := timeline.NewEngine(timeline.NewDefault(nil))
	require.NoError(t, e.DeleteEntry(0))
	require.Equal(t, 0, e.EntryCount())
	require.Empty(t, e.Entries())
}

func TestEngine_OutOfRangeLeavesArtifactUnchanged(t *testing.T) {
	e := timeline.NewEngine(timeline.Artifact{})
	require.NoError(t, e.AddEntry(entryAt(1000, 'a')))
	require.NoError(t, e.AddEntry(entryAt(2000, 'b')))
	before := e.Artifact()

	for _, pos := range []int{-1, 2, 100} {
		require.ErrorIs(t, e.UpdateEntry(pos, entryAt(0, 'x')), timeline.ErrOutOfRange)
		require.ErrorIs(t, e.DeleteEntry(pos), timeline.ErrOutOfRange)
		require.True(t, before.Equal(e.Artifact()))
	}
}

func TestEngine_InvalidTimestampLeavesArtifactUnchanged(t *testing.T) {
	e := timeline.NewEngine(timeline.NewDefault(nil))
	before := e.Artifact()

	require.ErrorIs(t, e.AddEntry(entryAt(-1, 'x')), timeline.ErrInvalidTimestamp)
	require.ErrorIs(t, e.UpdateEntry(0, entryAt(timeline.MaxTimestampMs+1, 'x')), timeline.ErrInvalidTimestamp)
	require.True(t, before.Equal(e.Artifact()))
}

func TestEngine_SetAudioFingerprint(t *testing.T) {
	e := timeline.NewEngine(timeline.NewDefault(nil))
	before := e.Entries()

	e.SetAudioFingerprint(0xCAFEBABE)
	require.Equal(t, uint32(0xCAFEBABE), e.Artifact().Header.AudioFingerprint)
	require.Equal(t, before, e.Entries())

	e.SetAudioFingerprint(0)
	require.False(t, e.Artifact().HasAudio())
}

func TestEngine_NormalizesLoadedArtifact(t *testing.T) {
	loaded := timeline.Artifact{
		Entries: []timeline.Entry{
			{TimestampMs: 300, EffectIndex: 7},
			{TimestampMs: 100, EffectIndex: 7},
			{TimestampMs: 200, EffectIndex: 0},
		},
	}
	e := timeline.NewEngine(loaded)
	require.Equal(t, []int64{100, 200, 300}, timestamps(e.Entries()))
	requireConsistent(t, e)

	// the caller's artifact is not modified
	require.Equal(t, int64(300), loaded.Entries[0].TimestampMs)
}

func TestEngine_SnapshotsAreIndependent(t *testing.T) {
	e := timeline.NewEngine(timeline.NewDefault(timeline.Payload{1, 2, 3}))
	snap := e.Artifact()
	snap.Entries[0].Payload[0] = 9
	snap.Entries[0].TimestampMs = 42
	require.Equal(t, timeline.Payload{1, 2, 3}, e.Entries()[0].Payload)
	require.Equal(t, int64(0), e.Entries()[0].TimestampMs)
}

func TestEngine_RandomEditSequencesStayConsistent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	e := timeline.NewEngine(timeline.NewDefault(nil))

	for step := 0; step < 500; step++ {
		n := e.EntryCount()
		switch op := rng.Intn(3); {
		case op == 0 || n == 0:
			require.NoError(t, e.AddEntry(entryAt(rng.Int63n(10000), byte(step))))
			require.Equal(t, n+1, e.EntryCount())
		case op == 1:
			require.NoError(t, e.UpdateEntry(rng.Intn(n), entryAt(rng.Int63n(10000), byte(step))))
			require.Equal(t, n, e.EntryCount())
		default:
			require.NoError(t, e.DeleteEntry(rng.Intn(n)))
			require.Equal(t, n-1, e.EntryCount())
		}
		requireConsistent(t, e)
	}
}
