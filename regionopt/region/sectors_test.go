package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindFirstFit(t *testing.T) {
	m := newSectorMap(10)
	m.mark(0, 2, false) // header sectors

	start, ok := m.findFirstFit(3)
	assert.True(t, ok)
	assert.Equal(t, 2, start)

	// occupy 2..4, leaving a 1-sector hole at 5 and a run at 6..9
	m.mark(2, 3, false)
	m.mark(6, 1, false)

	start, ok = m.findFirstFit(1)
	assert.True(t, ok)
	assert.Equal(t, 5, start)

	start, ok = m.findFirstFit(3)
	assert.True(t, ok)
	assert.Equal(t, 7, start)

	_, ok = m.findFirstFit(4)
	assert.False(t, ok)
}

func TestFindFirstFitResetsRunOnOccupied(t *testing.T) {
	m := newSectorMap(8)
	m.mark(0, 2, false)
	m.mark(4, 1, false) // splits 2..7 into runs of 2 and 3

	start, ok := m.findFirstFit(3)
	assert.True(t, ok)
	assert.Equal(t, 5, start)
}

func TestGrow(t *testing.T) {
	m := newSectorMap(2)
	m.mark(0, 2, false)

	start := m.grow(3, false)
	assert.Equal(t, 2, start)
	assert.Len(t, m, 5)
	assert.Equal(t, 0, m.freeCount())

	_, ok := m.findFirstFit(1)
	assert.False(t, ok)
}
