package atlas

import "errors"

var (
	// ErrAtlasFull is returned when no region of the requested size fits in
	// the remaining atlas space.
	ErrAtlasFull = errors.New("atlas: atlas is full")

	// ErrAtlasClosed is returned when operating on a closed atlas.
	ErrAtlasClosed = errors.New("atlas: atlas is closed")

	// ErrRegionOutOfBounds is returned when a region lies outside the atlas
	// bounds or has non-positive dimensions.
	ErrRegionOutOfBounds = errors.New("atlas: region is outside atlas bounds")

	// ErrPixelSize is returned when blit pixel data does not match the
	// target region's dimensions and channel count.
	ErrPixelSize = errors.New("atlas: pixel data does not match region size")
)
