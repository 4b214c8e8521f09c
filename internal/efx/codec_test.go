package efx_test

import (
	"encoding/binary"
	"testing"

	"github.com/rpggio/efxcreator/internal/domain/timeline"
	"github.com/rpggio/efxcreator/internal/efx"
	"github.com/stretchr/testify/require"
)

func sampleArtifact() timeline.Artifact {
	strobe := efx.DefaultEffect(efx.EffectStrobe)
	strobe.Color = efx.Color{R: 255}
	return timeline.Artifact{
		Header: timeline.Header{Version: timeline.FormatVersion, AudioFingerprint: 0xDEADBEEF},
		Entries: []timeline.Entry{
			{TimestampMs: 0, EffectIndex: 1, Payload: efx.EncodeEffect(efx.DefaultEffect(efx.EffectOff))},
			{TimestampMs: 1500, EffectIndex: 2, Payload: efx.EncodeEffect(strobe)},
			{TimestampMs: timeline.MaxTimestampMs, EffectIndex: 3, Payload: timeline.Payload{}},
		},
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	codec := efx.NewCodec()
	original := sampleArtifact()

	data, err := codec.Encode(original)
	require.NoError(t, err)

	decoded, err := codec.Decode(data)
	require.NoError(t, err)
	require.True(t, original.Equal(decoded))
	require.Equal(t, 3, decoded.EntryCount())
}

func TestCodec_EncodeWritesCountFromBody(t *testing.T) {
	codec := efx.NewCodec()
	data, err := codec.Encode(sampleArtifact())
	require.NoError(t, err)
	require.Equal(t, uint32(3), binary.LittleEndian.Uint32(data[12:16]))

	data, err = codec.Encode(timeline.Artifact{})
	require.NoError(t, err)
	require.Equal(t, uint32(0), binary.LittleEndian.Uint32(data[12:16]))
	decoded, err := codec.Decode(data)
	require.NoError(t, err)
	require.Equal(t, 0, decoded.EntryCount())
	require.Equal(t, timeline.FormatVersion, decoded.Header.Version)
}

func TestCodec_EncodeRejectsInvalidEntries(t *testing.T) {
	codec := efx.NewCodec()

	_, err := codec.Encode(timeline.Artifact{Entries: []timeline.Entry{{TimestampMs: -1}}})
	require.ErrorIs(t, err, efx.ErrInvalidArtifact)

	_, err = codec.Encode(timeline.Artifact{Entries: []timeline.Entry{{Payload: make(timeline.Payload, 70000)}}})
	require.ErrorIs(t, err, efx.ErrInvalidArtifact)
}

func TestCodec_DecodeRejectsMalformed(t *testing.T) {
	codec := efx.NewCodec()
	good, err := codec.Encode(sampleArtifact())
	require.NoError(t, err)

	_, err = codec.Decode(good[:10])
	require.ErrorIs(t, err, efx.ErrMalformed)

	bad := append([]byte(nil), good...)
	copy(bad, "NOPE")
	_, err = codec.Decode(bad)
	require.ErrorIs(t, err, efx.ErrMalformed)

	_, err = codec.Decode(good[:len(good)-1])
	require.ErrorIs(t, err, efx.ErrMalformed)

	_, err = codec.Decode(append(append([]byte(nil), good...), 0))
	require.ErrorIs(t, err, efx.ErrMalformed)

	future := append([]byte(nil), good...)
	binary.LittleEndian.PutUint16(future[4:6], timeline.FormatVersion+1)
	_, err = codec.Decode(future)
	require.ErrorIs(t, err, efx.ErrUnsupportedVersion)

	huge := append([]byte(nil), good[:16]...)
	binary.LittleEndian.PutUint32(huge[12:16], 1<<30)
	_, err = codec.Decode(huge)
	require.ErrorIs(t, err, efx.ErrMalformed)
}

func TestCodec_DefaultArtifact(t *testing.T) {
	codec := efx.NewCodec()
	art := timeline.NewDefault(codec.DefaultPayload())
	data, err := codec.Encode(art)
	require.NoError(t, err)

	decoded, err := codec.Decode(data)
	require.NoError(t, err)
	effect, err := efx.DecodeEffect(decoded.Entries[0].Payload)
	require.NoError(t, err)
	require.Equal(t, efx.EffectOff, effect.Type)
	require.Equal(t, uint8(1), effect.Broadcasting)
	require.Equal(t, ".efx", codec.Extension())
}
