package region

// sectorMap tracks which 4KB sectors of the region file are free.
// Sectors 0 and 1 hold the header tables and are never free while the
// file is open.
type sectorMap []bool

func newSectorMap(n int) sectorMap {
	m := make(sectorMap, n)
	for i := range m {
		m[i] = true
	}
	return m
}

func (m sectorMap) mark(start, count int, free bool) {
	for i := 0; i < count; i++ {
		m[start+i] = free
	}
}

// findFirstFit scans sectors in ascending order and returns the start of
// the first run of consecutive free sectors of at least needed length.
// ok is false when no run suffices and the file must grow.
func (m sectorMap) findFirstFit(needed int) (start int, ok bool) {
	runStart, runLength := 0, 0
	for i, free := range m {
		if !free {
			runLength = 0
			continue
		}
		if runLength == 0 {
			runStart = i
		}
		runLength++
		if runLength >= needed {
			return runStart, true
		}
	}
	return 0, false
}

// grow appends count sectors and returns the index of the first new one.
func (m *sectorMap) grow(count int, free bool) (start int) {
	start = len(*m)
	for i := 0; i < count; i++ {
		*m = append(*m, free)
	}
	return start
}

func (m sectorMap) freeCount() (n int) {
	for _, free := range m {
		if free {
			n++
		}
	}
	return
}
