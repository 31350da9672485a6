package atlas

import (
	"fmt"
	"sync"
)

// Region is a rectangular area inside an atlas, in pixels.
type Region struct {
	// X is the left edge of the region.
	X int

	// Y is the top edge of the region.
	Y int

	// Width is the region width.
	Width int

	// Height is the region height.
	Height int
}

// IsValid returns true if the region has positive dimensions.
//
// Returns:
//   - bool: true when both Width and Height are positive
func (r Region) IsValid() bool {
	return r.Width > 0 && r.Height > 0
}

// String returns a string representation of the region.
//
// Returns:
//   - string: the region formatted as Region(x,y wxh)
func (r Region) String() string {
	return fmt.Sprintf("Region(%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
}

// shelf is one horizontal row of the shelf-packing algorithm.
type shelf struct {
	y      int // top edge of this shelf
	height int // height of the tallest item so far
	nextX  int // next free x position on this shelf
}

// allocator is the implementation of the Allocator interface.
// It packs rectangles into horizontal shelves: each request is placed on the
// first shelf with room, or opens a new shelf below the last one.
type allocator struct {
	mu *sync.Mutex

	width  int
	height int

	// padding is the gap kept between regions and between shelves, so
	// linear texture sampling never bleeds across neighbors.
	padding int

	shelves []*shelf

	allocCount int
	usedArea   int
}

// Allocator hands out non-overlapping rectangular regions within a fixed
// area, using shelf packing. Safe for concurrent use.
type Allocator interface {
	// Allocate finds space for a rectangle of the given size.
	//
	// Parameters:
	//   - width: the requested width in pixels
	//   - height: the requested height in pixels
	//
	// Returns:
	//   - Region: the placed region, undefined on error
	//   - error: ErrRegionOutOfBounds for non-positive sizes, ErrAtlasFull when nothing fits
	Allocate(width, height int) (Region, error)

	// Reset clears all allocations, making the entire area available again.
	Reset()

	// Utilization returns the fraction of the area covered by allocated
	// regions, ignoring padding.
	//
	// Returns:
	//   - float64: used area over total area, in [0, 1]
	Utilization() float64

	// AllocCount returns the number of successful allocations since creation
	// or the last Reset.
	//
	// Returns:
	//   - int: the allocation count
	AllocCount() int

	// Width returns the packable width in pixels.
	//
	// Returns:
	//   - int: the width
	Width() int

	// Height returns the packable height in pixels.
	//
	// Returns:
	//   - int: the height
	Height() int
}

var _ Allocator = &allocator{}

// NewAllocator is the entry point to create a new Allocator interface.
//
// Panics when width or height is not positive, since an allocator with no
// area to pack is a programming error.
//
// Parameters:
//   - width: the packable width in pixels
//   - height: the packable height in pixels
//   - opts: a variadic list of AllocatorOption functions to configure the allocator
//
// Returns:
//   - Allocator: a new Allocator instance with the specified configuration
func NewAllocator(width, height int, opts ...AllocatorOption) Allocator {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("atlas: allocator must have positive dimensions, got %dx%d", width, height))
	}
	a := &allocator{
		mu:      &sync.Mutex{},
		width:   width,
		height:  height,
		padding: 1,
		shelves: make([]*shelf, 0, 16),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *allocator) Allocate(width, height int) (Region, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if width <= 0 || height <= 0 {
		return Region{}, fmt.Errorf("%w: %dx%d", ErrRegionOutOfBounds, width, height)
	}

	paddedWidth := width + a.padding
	paddedHeight := height + a.padding
	if paddedWidth > a.width || paddedHeight > a.height {
		return Region{}, fmt.Errorf("%w: %dx%d does not fit %dx%d", ErrAtlasFull, width, height, a.width, a.height)
	}

	for _, s := range a.shelves {
		if a.fitsOnShelf(s, paddedWidth, paddedHeight) {
			return a.allocateOnShelf(s, width, height, paddedWidth), nil
		}
	}
	return a.allocateNewShelf(width, height, paddedWidth, paddedHeight)
}

// fitsOnShelf checks whether a padded rectangle fits on the given shelf. A
// shelf can still grow taller while it holds nothing, but once items are
// placed its height is fixed.
func (a *allocator) fitsOnShelf(s *shelf, paddedWidth, paddedHeight int) bool {
	if s.nextX+paddedWidth > a.width {
		return false
	}
	if paddedHeight > s.height && s.nextX > 0 {
		return false
	}
	return true
}

func (a *allocator) allocateOnShelf(s *shelf, width, height, paddedWidth int) Region {
	region := Region{
		X:      s.nextX,
		Y:      s.y,
		Width:  width,
		Height: height,
	}

	s.nextX += paddedWidth
	if height+a.padding > s.height {
		s.height = height + a.padding
	}

	a.allocCount++
	a.usedArea += width * height
	return region
}

func (a *allocator) allocateNewShelf(width, height, paddedWidth, paddedHeight int) (Region, error) {
	newY := 0
	if len(a.shelves) > 0 {
		last := a.shelves[len(a.shelves)-1]
		newY = last.y + last.height
	}
	if newY+paddedHeight > a.height {
		return Region{}, fmt.Errorf("%w: %dx%d does not fit below y=%d", ErrAtlasFull, width, height, newY)
	}

	a.shelves = append(a.shelves, &shelf{
		y:      newY,
		height: paddedHeight,
		nextX:  paddedWidth,
	})

	a.allocCount++
	a.usedArea += width * height
	return Region{X: 0, Y: newY, Width: width, Height: height}, nil
}

func (a *allocator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.shelves = a.shelves[:0]
	a.allocCount = 0
	a.usedArea = 0
}

func (a *allocator) Utilization() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	totalArea := a.width * a.height
	if totalArea == 0 {
		return 0
	}
	return float64(a.usedArea) / float64(totalArea)
}

func (a *allocator) AllocCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.allocCount
}

func (a *allocator) Width() int {
	return a.width
}

func (a *allocator) Height() int {
	return a.height
}
