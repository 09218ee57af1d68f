package region

import (
	"bytes"
	"io"
	"os"

	"github.com/nilebit/regionstore/regionopt/codec"
)

// ChunkBuffer accumulates the compressed content of one chunk in memory so
// that expensive serialization runs without the region lock. Only the final
// commit in Close takes the lock. Multiple producers may fill buffers for
// different cells concurrently.
type ChunkBuffer struct {
	region *Region
	x, z   int
	buf    bytes.Buffer
	zw     io.WriteCloser
	closed bool
}

// ChunkWriter returns a write buffer bound to cell (x, z). Bytes written to
// it are compressed incrementally; Close commits the chunk to the file.
func (r *Region) ChunkWriter(x, z int) (*ChunkBuffer, error) {
	if r.readOnly {
		return nil, ErrReadOnly
	}
	if outOfBounds(x, z) {
		return nil, ErrOutOfBounds
	}
	b := &ChunkBuffer{region: r, x: x, z: z}
	b.buf.Grow(2 * SectorSize)
	b.zw = codec.NewWriter(&b.buf)
	return b, nil
}

func (b *ChunkBuffer) Write(p []byte) (int, error) {
	if b.closed {
		return 0, os.ErrClosed
	}
	return b.zw.Write(p)
}

// Close finishes the compressed stream and commits the chunk under the
// region lock. The commit runs exactly once; later calls are no-ops, so
// Close is safe to defer on every exit path.
func (b *ChunkBuffer) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	if err := b.zw.Close(); err != nil {
		return err
	}
	return b.region.WriteChunk(b.x, b.z, b.buf.Bytes())
}
