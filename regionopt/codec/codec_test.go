package codec

import (
	"bytes"
	"compress/gzip"
	"io"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, size := range []int{0, 1, 100, 4096, 100000, 1000000} {
		raw := make([]byte, size)
		rng.Read(raw)

		version, data, err := Encode(raw)
		require.NoError(t, err)
		assert.Equal(t, DefaultVersion, version)

		rc, err := Decode(version, data)
		require.NoError(t, err)
		decoded, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		assert.Equal(t, raw, decoded, "size %d", size)
	}
}

func TestDecodeGzip(t *testing.T) {
	raw := []byte("legacy gzip chunk payload")
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	_, err := gw.Write(raw)
	require.NoError(t, err)
	require.NoError(t, gw.Close())

	rc, err := Decode(VersionGzip, buf.Bytes())
	require.NoError(t, err)
	decoded, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, raw, decoded)
}

func TestDecodeUnknownVersion(t *testing.T) {
	_, err := Decode(9, []byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrUnknownVersion)
}

func TestStreamingWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	for i := 0; i < 100; i++ {
		_, err := w.Write([]byte("incremental payload "))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	rc, err := Decode(DefaultVersion, buf.Bytes())
	require.NoError(t, err)
	decoded, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte("incremental payload "), 100), decoded)
}
