package regionopt

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/golang/glog"
	lru "github.com/hashicorp/golang-lru"
	"github.com/nilebit/regionstore/regionopt/region"
)

// DefaultExtension is the file extension of region files in a directory.
const DefaultExtension = "data"

// DefaultCacheSize bounds how many region files stay open at once.
const DefaultCacheSize = 256

// Coord identifies one region file by its region coordinates.
type Coord struct {
	X int
	Z int
}

func (c Coord) String() string {
	return strconv.Itoa(c.X) + "," + strconv.Itoa(c.Z)
}

// RegionCoord maps a chunk coordinate to its region coordinate by floor
// division: chunk (30, -3) lives in region (0, -1).
func RegionCoord(c int) int {
	return c >> 5
}

func localCoord(c int) int {
	return c & (region.GridWidth - 1)
}

// Dir serves chunk operations over a directory of region files, opening
// files lazily and keeping recently used ones open in an LRU. Evicting a
// region closes its file handle.
type Dir struct {
	Directory string
	Extension string
	ReadOnly  bool

	cache *lru.Cache
	mu    sync.Mutex // serializes cache misses so each file is opened once
}

func NewDir(directory, extension string, cacheSize int, readOnly bool) (*Dir, error) {
	if extension == "" {
		extension = DefaultExtension
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	d := &Dir{Directory: directory, Extension: extension, ReadOnly: readOnly}
	cache, err := lru.NewWithEvict(cacheSize, func(key, value interface{}) {
		r := value.(*region.Region)
		if e := r.Close(); e != nil {
			glog.V(0).Infof("closing region %s: %v", r.FileName(), e)
		}
	})
	if err != nil {
		return nil, err
	}
	d.cache = cache
	glog.V(0).Infoln("region store started on dir:", directory, "with", len(d.mustList()), "region files")
	return d, nil
}

// Region returns the open engine for region (rx, rz), opening the file on a
// cache miss. The returned Region may be evicted and closed by later calls;
// callers should not retain it across Dir operations.
func (d *Dir) Region(rx, rz int) (*region.Region, error) {
	key := Coord{rx, rz}
	if v, ok := d.cache.Get(key); ok {
		return v.(*region.Region), nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if v, ok := d.cache.Get(key); ok {
		return v.(*region.Region), nil
	}
	r, err := region.Open(region.RegionFileName(d.Directory, rx, rz, d.Extension), d.ReadOnly)
	if err != nil {
		return nil, err
	}
	d.cache.Add(key, r)
	return r, nil
}

// HasChunk reports whether the chunk at absolute chunk coordinates (cx, cz)
// is stored. A missing region file means the chunk is absent.
func (d *Dir) HasChunk(cx, cz int) bool {
	r, err := d.Region(RegionCoord(cx), RegionCoord(cz))
	if err != nil {
		return false
	}
	return r.Contains(localCoord(cx), localCoord(cz))
}

// ReadChunk returns a stream of the decoded chunk at absolute chunk
// coordinates (cx, cz), or (nil, nil) when it is absent.
func (d *Dir) ReadChunk(cx, cz int) (io.ReadCloser, error) {
	r, err := d.Region(RegionCoord(cx), RegionCoord(cz))
	if err != nil {
		if errors.Is(err, region.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.ReadChunk(localCoord(cx), localCoord(cz))
}

// ChunkWriter returns a deferred-write buffer for the chunk at absolute
// chunk coordinates (cx, cz).
func (d *Dir) ChunkWriter(cx, cz int) (*region.ChunkBuffer, error) {
	r, err := d.Region(RegionCoord(cx), RegionCoord(cz))
	if err != nil {
		return nil, err
	}
	return r.ChunkWriter(localCoord(cx), localCoord(cz))
}

func (d *Dir) DeleteChunk(cx, cz int) error {
	r, err := d.Region(RegionCoord(cx), RegionCoord(cz))
	if err != nil {
		return err
	}
	return r.Delete(localCoord(cx), localCoord(cz))
}

// SizeDelta sums and resets the growth counters of all open regions.
func (d *Dir) SizeDelta() (delta int64) {
	for _, key := range d.cache.Keys() {
		if v, ok := d.cache.Peek(key); ok {
			delta += v.(*region.Region).SizeDelta()
		}
	}
	return
}

// List scans the directory for region files and returns their coordinates.
func (d *Dir) List() ([]Coord, error) {
	entries, err := os.ReadDir(d.Directory)
	if err != nil {
		return nil, fmt.Errorf("cannot list region dir %s: %v", d.Directory, err)
	}
	var coords []Coord
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		c, ok := d.coordFromPath(entry.Name())
		if !ok {
			continue
		}
		coords = append(coords, c)
	}
	return coords, nil
}

func (d *Dir) mustList() []Coord {
	coords, err := d.List()
	if err != nil {
		glog.V(0).Infof("listing %s: %v", d.Directory, err)
	}
	return coords
}

func (d *Dir) coordFromPath(name string) (Coord, bool) {
	parts := strings.Split(name, ".")
	if len(parts) != 4 || parts[0] != "r" || parts[3] != d.Extension {
		return Coord{}, false
	}
	x, err := strconv.Atoi(parts[1])
	if err != nil {
		return Coord{}, false
	}
	z, err := strconv.Atoi(parts[2])
	if err != nil {
		return Coord{}, false
	}
	return Coord{x, z}, true
}

// OpenRegions is the number of region files currently held open.
func (d *Dir) OpenRegions() int {
	return d.cache.Len()
}

// Close evicts every cached region, closing all file handles.
func (d *Dir) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cache.Purge()
}
