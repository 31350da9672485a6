package atlas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// overlaps reports whether two regions share any pixel.
func overlaps(a, b Region) bool {
	return a.X < b.X+b.Width && b.X < a.X+a.Width &&
		a.Y < b.Y+b.Height && b.Y < a.Y+a.Height
}

func TestNewAllocatorPanicsOnInvalidDimensions(t *testing.T) {
	assert.Panics(t, func() { NewAllocator(0, 256) })
	assert.Panics(t, func() { NewAllocator(256, -1) })
}

func TestAllocateRejectsNonPositiveSizes(t *testing.T) {
	a := NewAllocator(64, 64)

	_, err := a.Allocate(0, 10)
	assert.ErrorIs(t, err, ErrRegionOutOfBounds)
	_, err = a.Allocate(10, -3)
	assert.ErrorIs(t, err, ErrRegionOutOfBounds)
}

func TestAllocateRejectsOversizedRequests(t *testing.T) {
	a := NewAllocator(64, 64, WithPadding(0))

	_, err := a.Allocate(65, 10)
	assert.ErrorIs(t, err, ErrAtlasFull)
	_, err = a.Allocate(10, 65)
	assert.ErrorIs(t, err, ErrAtlasFull)
}

func TestAllocateFirstRegionAtOrigin(t *testing.T) {
	a := NewAllocator(64, 64)

	r, err := a.Allocate(10, 10)
	require.NoError(t, err)
	assert.Equal(t, Region{X: 0, Y: 0, Width: 10, Height: 10}, r)
	assert.True(t, r.IsValid())
}

func TestAllocatePacksAlongShelf(t *testing.T) {
	a := NewAllocator(64, 64, WithPadding(0))

	first, err := a.Allocate(10, 10)
	require.NoError(t, err)
	second, err := a.Allocate(10, 10)
	require.NoError(t, err)

	assert.Equal(t, first.Y, second.Y, "same-height items share a shelf")
	assert.Equal(t, first.X+first.Width, second.X)
}

func TestAllocateTallerItemOpensNewShelf(t *testing.T) {
	a := NewAllocator(64, 64, WithPadding(0))

	_, err := a.Allocate(10, 10)
	require.NoError(t, err)
	tall, err := a.Allocate(10, 20)
	require.NoError(t, err)

	assert.Equal(t, 0, tall.X, "new shelf starts at the left edge")
	assert.Equal(t, 10, tall.Y, "new shelf opens below the first")
}

func TestAllocatePaddingSeparatesRegions(t *testing.T) {
	a := NewAllocator(64, 64, WithPadding(2))

	first, err := a.Allocate(10, 10)
	require.NoError(t, err)
	second, err := a.Allocate(10, 10)
	require.NoError(t, err)

	assert.Equal(t, first.X+first.Width+2, second.X)
}

func TestAllocateRegionsNeverOverlap(t *testing.T) {
	a := NewAllocator(128, 128, WithPadding(1))

	sizes := [][2]int{
		{30, 12}, {50, 8}, {20, 20}, {40, 12}, {10, 30},
		{60, 6}, {25, 25}, {15, 9}, {35, 14}, {12, 12},
	}
	var placed []Region
	for _, sz := range sizes {
		r, err := a.Allocate(sz[0], sz[1])
		if err != nil {
			require.ErrorIs(t, err, ErrAtlasFull)
			continue
		}
		for _, prev := range placed {
			assert.False(t, overlaps(r, prev), "%s overlaps %s", r, prev)
		}
		placed = append(placed, r)
	}
	require.NotEmpty(t, placed)
}

func TestAllocateFillsThenErrsFull(t *testing.T) {
	a := NewAllocator(32, 32, WithPadding(0))

	count := 0
	for {
		_, err := a.Allocate(16, 16)
		if err != nil {
			assert.ErrorIs(t, err, ErrAtlasFull)
			break
		}
		count++
		require.Less(t, count, 100, "allocator must eventually fill")
	}
	assert.Equal(t, 4, count, "a 32x32 area holds exactly four 16x16 regions")
}

func TestAllocatorReset(t *testing.T) {
	a := NewAllocator(64, 64)

	_, err := a.Allocate(30, 30)
	require.NoError(t, err)
	assert.Equal(t, 1, a.AllocCount())
	assert.Greater(t, a.Utilization(), 0.0)

	a.Reset()
	assert.Equal(t, 0, a.AllocCount())
	assert.Equal(t, 0.0, a.Utilization())

	r, err := a.Allocate(30, 30)
	require.NoError(t, err)
	assert.Equal(t, Region{X: 0, Y: 0, Width: 30, Height: 30}, r)
}

func TestAllocatorUtilization(t *testing.T) {
	a := NewAllocator(100, 100, WithPadding(0))

	_, err := a.Allocate(50, 50)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, a.Utilization(), 1e-9)

	_, err = a.Allocate(50, 50)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, a.Utilization(), 1e-9)
}

func TestRegionString(t *testing.T) {
	assert.Equal(t, "Region(3,4 10x20)", Region{X: 3, Y: 4, Width: 10, Height: 20}.String())
}
