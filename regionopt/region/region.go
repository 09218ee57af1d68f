package region

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/nilebit/regionstore/regionopt/codec"
	"github.com/nilebit/regionstore/util"
)

/*
 A region file packs up to 32x32 chunks into runs of 4KB sectors. It begins
 with two header sectors: a 1024 entry offset table of 4 byte big-endian
 integers packing (sector number << 8) | sector count, indexed by x + z*32,
 followed by a table of per-cell modification timestamps in epoch seconds.
 A zero offset entry means the cell holds no chunk.

 An occupied run starts with a 4 byte big-endian length (counting the version
 byte and payload), one codec version byte, and length-1 bytes of compressed
 payload. The sector count fits in one byte, so a chunk occupies at most 255
 sectors.
*/

const (
	SectorSize   = 4096
	GridWidth    = 32
	TableEntries = GridWidth * GridWidth

	chunkHeaderSize = 5

	// MaxSectors is the per-chunk cap imposed by the one byte sector
	// count in the offset table.
	MaxSectors = 255
)

var emptySector = make([]byte, SectorSize)

type Region struct {
	fileName string
	x, z     int
	file     *os.File
	readOnly bool

	offsets    [TableEntries]uint32
	timestamps [TableEntries]uint32
	sectors    sectorMap

	sizeDelta    int64
	lastModified int64 // unix seconds, captured at open

	accessLock sync.Mutex
}

// RegionFileName builds the canonical file name r.<x>.<z>.<ext> under dir.
func RegionFileName(dir string, x, z int, ext string) string {
	return filepath.Join(dir, "r."+strconv.Itoa(x)+"."+strconv.Itoa(z)+"."+ext)
}

func parseFileName(path string) (x, z int, err error) {
	parts := strings.Split(filepath.Base(path), ".")
	if len(parts) < 3 {
		return 0, 0, fmt.Errorf("path is not a region file: %s", path)
	}
	if x, err = strconv.Atoi(parts[1]); err != nil {
		return 0, 0, fmt.Errorf("bad region x in %s: %v", path, err)
	}
	if z, err = strconv.Atoi(parts[2]); err != nil {
		return 0, 0, fmt.Errorf("bad region z in %s: %v", path, err)
	}
	return x, z, nil
}

func checkFile(filename string) (exists bool, modTime time.Time, fileSize int64) {
	fi, err := os.Stat(filename)
	if err != nil {
		return false, time.Time{}, 0
	}
	return true, fi.ModTime(), fi.Size()
}

// Open loads the region file at path, creating and initializing it when
// opened for write. Opening a missing file read-only fails with ErrNotFound.
func Open(path string, readOnly bool) (*Region, error) {
	r := &Region{fileName: path, readOnly: readOnly}
	var err error
	if r.x, r.z, err = parseFileName(path); err != nil {
		return nil, err
	}

	exists, modTime, fileSize := checkFile(path)
	if exists {
		r.lastModified = modTime.Unix()
	} else if readOnly {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	if readOnly {
		r.file, err = os.Open(path)
	} else {
		r.file, err = os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot open region file %s: %v", path, err)
	}
	if err = r.load(fileSize); err != nil {
		_ = r.file.Close()
		return nil, fmt.Errorf("cannot load region file %s: %v", path, err)
	}
	glog.V(1).Infof("loaded region %s: %d chunks in %d sectors, readonly=%v",
		path, r.ChunkCount(), len(r.sectors), readOnly)
	return r, nil
}

func (r *Region) load(fileSize int64) error {
	if !r.readOnly {
		if fileSize < 2*SectorSize {
			// fresh or truncated file, write both header tables
			for i := int64(0); i < 2; i++ {
				if _, err := r.file.WriteAt(emptySector, i*SectorSize); err != nil {
					return err
				}
			}
			r.sizeDelta += 2*SectorSize - fileSize
			fileSize = 2 * SectorSize
		}
		if fileSize%SectorSize != 0 {
			// pad a truncated file up to the next sector boundary
			pad := SectorSize - fileSize%SectorSize
			if _, err := r.file.WriteAt(emptySector[:pad], fileSize); err != nil {
				return err
			}
			fileSize += pad
		}
	}

	nSectors := int(fileSize / SectorSize)
	r.sectors = newSectorMap(nSectors)
	table := make([]byte, SectorSize)

	if nSectors > 0 {
		r.sectors.mark(0, 1, false)
		if _, err := r.file.ReadAt(table, 0); err != nil {
			return fmt.Errorf("reading offset table: %v", err)
		}
		for i := 0; i < TableEntries; i++ {
			offset := util.BytesToUint32(table[i*4 : i*4+4])
			r.offsets[i] = offset
			// An entry pointing past the end of the file contributes no
			// occupied sectors here; the corruption surfaces only if the
			// cell is read.
			sector, count := int(offset>>8), int(offset&0xFF)
			if offset != 0 && sector+count <= nSectors {
				r.sectors.mark(sector, count, false)
			}
		}
	}
	if nSectors > 1 {
		r.sectors.mark(1, 1, false)
		if _, err := r.file.ReadAt(table, SectorSize); err != nil {
			return fmt.Errorf("reading timestamp table: %v", err)
		}
		for i := 0; i < TableEntries; i++ {
			r.timestamps[i] = util.BytesToUint32(table[i*4 : i*4+4])
		}
	}
	return nil
}

func (r *Region) FileName() string {
	return r.fileName
}

// X and Z are the region coordinates parsed from the file name.
func (r *Region) X() int { return r.x }
func (r *Region) Z() int { return r.z }

func (r *Region) ReadOnly() bool {
	return r.readOnly
}

// LastModified is the file's modification time when it was opened.
func (r *Region) LastModified() int64 {
	return r.lastModified
}

// SizeDelta reports how many bytes the file has grown since it was last
// checked, and resets the counter.
func (r *Region) SizeDelta() int64 {
	r.accessLock.Lock()
	defer r.accessLock.Unlock()
	delta := r.sizeDelta
	r.sizeDelta = 0
	return delta
}

func (r *Region) ChunkCount() (count int) {
	r.accessLock.Lock()
	defer r.accessLock.Unlock()
	for _, offset := range r.offsets {
		if offset != 0 {
			count++
		}
	}
	return
}

// Contains reports whether a chunk is stored at (x, z). Out of bounds
// coordinates are simply not contained.
func (r *Region) Contains(x, z int) bool {
	if outOfBounds(x, z) {
		return false
	}
	r.accessLock.Lock()
	defer r.accessLock.Unlock()
	return r.offsets[x+z*GridWidth] != 0
}

// Timestamp returns the last modification time of cell (x, z) in epoch
// seconds, or zero for out of bounds coordinates.
func (r *Region) Timestamp(x, z int) uint32 {
	if outOfBounds(x, z) {
		return 0
	}
	r.accessLock.Lock()
	defer r.accessLock.Unlock()
	return r.timestamps[x+z*GridWidth]
}

// ReadChunk returns a stream of the decoded chunk bytes at (x, z), or
// (nil, nil) when the cell is empty or out of bounds.
func (r *Region) ReadChunk(x, z int) (io.ReadCloser, error) {
	if outOfBounds(x, z) {
		glog.V(3).Infof("read %d,%d out of bounds in region %d,%d", x, z, r.x, r.z)
		return nil, nil
	}
	r.accessLock.Lock()
	defer r.accessLock.Unlock()

	offset := r.offsets[x+z*GridWidth]
	if offset == 0 {
		return nil, nil
	}
	sector := int(offset >> 8)
	numSectors := int(offset & 0xFF)
	if sector+numSectors > len(r.sectors) {
		return nil, fmt.Errorf("read %d,%d in region %d,%d: %w", x, z, r.x, r.z, ErrInvalidSector)
	}

	header := make([]byte, chunkHeaderSize)
	if _, err := r.file.ReadAt(header, int64(sector)*SectorSize); err != nil {
		return nil, err
	}
	length := int(util.BytesToUint32(header[0:4]))
	if length < 1 || length > SectorSize*numSectors {
		return nil, fmt.Errorf("read %d,%d in region %d,%d: length %d in %d sectors: %w",
			x, z, r.x, r.z, length, numSectors, ErrInvalidLength)
	}

	data := make([]byte, length-1)
	if _, err := r.file.ReadAt(data, int64(sector)*SectorSize+chunkHeaderSize); err != nil {
		return nil, err
	}
	return codec.Decode(header[4], data)
}

// WriteChunk stores already-compressed payload bytes at (x, z). Same-size
// rewrites stay in place; otherwise the first fitting free run is used, and
// the file grows when no run is long enough. Use ChunkWriter to produce the
// payload without holding the region lock during compression.
func (r *Region) WriteChunk(x, z int, data []byte) error {
	if r.readOnly {
		return fmt.Errorf("%s: %w", r.fileName, ErrReadOnly)
	}
	if outOfBounds(x, z) {
		return fmt.Errorf("chunk %d,%d: %w", x, z, ErrOutOfBounds)
	}
	sectorsNeeded := (len(data) + chunkHeaderSize + SectorSize - 1) / SectorSize
	if sectorsNeeded > MaxSectors {
		return fmt.Errorf("chunk %d,%d needs %d sectors: %w", x, z, sectorsNeeded, ErrChunkTooLarge)
	}

	r.accessLock.Lock()
	defer r.accessLock.Unlock()

	offset := r.offsets[x+z*GridWidth]
	sector := int(offset >> 8)
	allocated := int(offset & 0xFF)
	if sector+allocated > len(r.sectors) {
		// entry from a corrupt file, never mapped into the free map
		sector, allocated = 0, 0
	}

	if sector != 0 && allocated == sectorsNeeded {
		// same size, overwrite the old sectors
		glog.V(3).Infof("save %d,%d %dB rewrite in region %d,%d", x, z, len(data), r.x, r.z)
		if err := r.writeAt(sector, data); err != nil {
			return err
		}
	} else {
		r.sectors.mark(sector, allocated, true)
		if start, ok := r.sectors.findFirstFit(sectorsNeeded); ok {
			glog.V(3).Infof("save %d,%d %dB reuse sector %d in region %d,%d", x, z, len(data), start, r.x, r.z)
			r.sectors.mark(start, sectorsNeeded, false)
			if err := r.writeAt(start, data); err != nil {
				return err
			}
			if err := r.setOffset(x, z, uint32(start)<<8|uint32(sectorsNeeded)); err != nil {
				return err
			}
		} else {
			// no run long enough, append zeroed sectors at the end
			start := r.sectors.grow(sectorsNeeded, false)
			glog.V(3).Infof("save %d,%d %dB grow to sector %d in region %d,%d", x, z, len(data), start, r.x, r.z)
			for i := 0; i < sectorsNeeded; i++ {
				if _, err := r.file.WriteAt(emptySector, int64(start+i)*SectorSize); err != nil {
					return err
				}
			}
			r.sizeDelta += int64(SectorSize * sectorsNeeded)
			if err := r.writeAt(start, data); err != nil {
				return err
			}
			if err := r.setOffset(x, z, uint32(start)<<8|uint32(sectorsNeeded)); err != nil {
				return err
			}
		}
	}
	return r.setTimestamp(x, z, uint32(time.Now().Unix()))
}

// Delete frees the chunk at (x, z). The timestamp entry records the deletion
// time rather than being cleared.
func (r *Region) Delete(x, z int) error {
	if r.readOnly {
		return fmt.Errorf("%s: %w", r.fileName, ErrReadOnly)
	}
	if outOfBounds(x, z) {
		return fmt.Errorf("chunk %d,%d: %w", x, z, ErrOutOfBounds)
	}
	r.accessLock.Lock()
	defer r.accessLock.Unlock()

	offset := r.offsets[x+z*GridWidth]
	sector, allocated := int(offset>>8), int(offset&0xFF)
	if sector+allocated <= len(r.sectors) {
		r.sectors.mark(sector, allocated, true)
	}
	if err := r.setOffset(x, z, 0); err != nil {
		return err
	}
	return r.setTimestamp(x, z, uint32(time.Now().Unix()))
}

// Close releases the file handle. No operation is valid afterwards.
func (r *Region) Close() error {
	r.accessLock.Lock()
	defer r.accessLock.Unlock()
	return r.file.Close()
}

func (r *Region) writeAt(sector int, data []byte) error {
	glog.V(4).Infof("writing %d bytes at sector %d of %s", len(data), sector, r.fileName)
	header := make([]byte, chunkHeaderSize)
	util.Uint32toBytes(header[0:4], uint32(len(data)+1))
	header[4] = codec.DefaultVersion
	if _, err := r.file.WriteAt(header, int64(sector)*SectorSize); err != nil {
		return err
	}
	_, err := r.file.WriteAt(data, int64(sector)*SectorSize+chunkHeaderSize)
	return err
}

func (r *Region) setOffset(x, z int, offset uint32) error {
	i := x + z*GridWidth
	r.offsets[i] = offset
	var b [4]byte
	util.Uint32toBytes(b[:], offset)
	_, err := r.file.WriteAt(b[:], int64(i)*4)
	return err
}

func (r *Region) setTimestamp(x, z int, value uint32) error {
	i := x + z*GridWidth
	r.timestamps[i] = value
	var b [4]byte
	util.Uint32toBytes(b[:], value)
	_, err := r.file.WriteAt(b[:], SectorSize+int64(i)*4)
	return err
}

func outOfBounds(x, z int) bool {
	return x < 0 || x >= GridWidth || z < 0 || z >= GridWidth
}
