package codec

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
)

// Chunk payloads are stored compressed, tagged with a one byte version so the
// encoding can evolve without breaking old region files.
const (
	VersionGzip    byte = 1
	VersionDeflate byte = 2

	// DefaultVersion is used for all new writes. VersionGzip remains
	// readable for region files written by old producers.
	DefaultVersion = VersionDeflate
)

var ErrUnknownVersion = errors.New("unknown chunk codec version")

// Decode returns a stream of the raw chunk bytes for a stored payload.
// The decompressed size is not known in advance; callers read to EOF.
func Decode(version byte, data []byte) (io.ReadCloser, error) {
	switch version {
	case VersionGzip:
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("gunzip chunk: %v", err)
		}
		return r, nil
	case VersionDeflate:
		r, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("inflate chunk: %v", err)
		}
		return r, nil
	}
	return nil, fmt.Errorf("%w %d", ErrUnknownVersion, version)
}

// Encode compresses raw chunk bytes with DefaultVersion.
func Encode(raw []byte) (version byte, data []byte, err error) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err = w.Write(raw); err != nil {
		w.Close()
		return 0, nil, err
	}
	if err = w.Close(); err != nil {
		return 0, nil, err
	}
	return DefaultVersion, buf.Bytes(), nil
}

// NewWriter returns a streaming encoder for DefaultVersion. The compressed
// stream is complete only after Close.
func NewWriter(w io.Writer) io.WriteCloser {
	return zlib.NewWriter(w)
}
