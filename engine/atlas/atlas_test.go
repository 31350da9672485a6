package atlas

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAtlasPanicsOnBadConfiguration(t *testing.T) {
	assert.Panics(t, func() { NewAtlas(0, 64, ChannelsCoverage) })
	assert.Panics(t, func() { NewAtlas(64, 0, ChannelsRGBA) })
	assert.Panics(t, func() { NewAtlas(64, 64, 3) })
}

func TestAtlasAccessors(t *testing.T) {
	a := NewAtlas(32, 16, ChannelsRGBA)
	defer a.Close()

	assert.Equal(t, 32, a.Width())
	assert.Equal(t, 16, a.Height())
	assert.Equal(t, ChannelsRGBA, a.Channels())
	assert.Equal(t, uint64(0), a.Generation())
	assert.Len(t, a.Pixels(), 32*16*4)
}

func TestBlitWritesRowsIntoCanvas(t *testing.T) {
	a := NewAtlas(8, 8, ChannelsCoverage)
	defer a.Close()

	region := Region{X: 1, Y: 1, Width: 2, Height: 2}
	require.NoError(t, a.Blit(region, []byte{1, 2, 3, 4}))

	pixels := a.Pixels()
	assert.Equal(t, byte(1), pixels[1*8+1])
	assert.Equal(t, byte(2), pixels[1*8+2])
	assert.Equal(t, byte(3), pixels[2*8+1])
	assert.Equal(t, byte(4), pixels[2*8+2])

	// Neighbors stay untouched.
	assert.Equal(t, byte(0), pixels[0])
	assert.Equal(t, byte(0), pixels[1*8+3])
	assert.Equal(t, uint64(1), a.Generation())
}

func TestBlitValidatesRegionAndPixels(t *testing.T) {
	a := NewAtlas(8, 8, ChannelsCoverage)
	defer a.Close()

	err := a.Blit(Region{X: 7, Y: 0, Width: 2, Height: 1}, []byte{1, 2})
	assert.ErrorIs(t, err, ErrRegionOutOfBounds)

	err = a.Blit(Region{X: -1, Y: 0, Width: 2, Height: 1}, []byte{1, 2})
	assert.ErrorIs(t, err, ErrRegionOutOfBounds)

	err = a.Blit(Region{X: 0, Y: 0, Width: 2, Height: 2}, []byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrPixelSize)

	assert.Equal(t, uint64(0), a.Generation(), "failed blits must not bump the generation")
}

func TestBlitImageDirectCopy(t *testing.T) {
	a := NewAtlas(8, 8, ChannelsRGBA)
	defer a.Close()

	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, A: 255})
		}
	}
	region := Region{X: 2, Y: 3, Width: 2, Height: 2}
	require.NoError(t, a.BlitImage(region, img))

	pixels := a.Pixels()
	stride := 8 * ChannelsRGBA
	for y := region.Y; y < region.Y+region.Height; y++ {
		for x := region.X; x < region.X+region.Width; x++ {
			offset := y*stride + x*ChannelsRGBA
			assert.Equal(t, []byte{255, 0, 0, 255}, pixels[offset:offset+4], "pixel (%d,%d)", x, y)
		}
	}
	// A pixel outside the region stays zero.
	assert.Equal(t, []byte{0, 0, 0, 0}, pixels[0:4])
	assert.Equal(t, uint64(1), a.Generation())
}

func TestBlitImageScalesToRegion(t *testing.T) {
	a := NewAtlas(16, 16, ChannelsRGBA)
	defer a.Close()

	// A uniform source stays uniform under bilinear scaling, which makes
	// the scaled result exactly checkable.
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetNRGBA(x, y, color.NRGBA{G: 255, A: 255})
		}
	}
	region := Region{X: 4, Y: 4, Width: 4, Height: 4}
	require.NoError(t, a.BlitImage(region, img))

	pixels := a.Pixels()
	stride := 16 * ChannelsRGBA
	for y := region.Y; y < region.Y+region.Height; y++ {
		for x := region.X; x < region.X+region.Width; x++ {
			offset := y*stride + x*ChannelsRGBA
			assert.Equal(t, []byte{0, 255, 0, 255}, pixels[offset:offset+4], "pixel (%d,%d)", x, y)
		}
	}
}

func TestBlitImageRejectsCoverageAtlas(t *testing.T) {
	a := NewAtlas(8, 8, ChannelsCoverage)
	defer a.Close()

	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	err := a.BlitImage(Region{X: 0, Y: 0, Width: 2, Height: 2}, img)
	assert.ErrorIs(t, err, ErrPixelSize)
}

func TestBlitImageRejectsNilImage(t *testing.T) {
	a := NewAtlas(8, 8, ChannelsRGBA)
	defer a.Close()

	err := a.BlitImage(Region{X: 0, Y: 0, Width: 2, Height: 2}, nil)
	assert.ErrorIs(t, err, ErrPixelSize)
}

func TestBlitBatchMatchesSerialBlits(t *testing.T) {
	parallel := NewAtlas(64, 64, ChannelsCoverage)
	defer parallel.Close()
	serial := NewAtlas(64, 64, ChannelsCoverage)
	defer serial.Close()

	sizes := [][2]int{{10, 4}, {6, 6}, {20, 3}, {8, 8}, {12, 5}, {5, 9}}
	var blits []Blit
	for i, sz := range sizes {
		region, err := parallel.Allocate(sz[0], sz[1])
		require.NoError(t, err)

		data := make([]byte, sz[0]*sz[1])
		for j := range data {
			data[j] = byte(i + 1)
		}
		blits = append(blits, Blit{Region: region, Pixels: data})

		// The serial atlas allocates the same sequence, so regions match.
		serialRegion, err := serial.Allocate(sz[0], sz[1])
		require.NoError(t, err)
		require.Equal(t, region, serialRegion)
	}

	require.NoError(t, parallel.BlitBatch(blits))
	for _, b := range blits {
		require.NoError(t, serial.Blit(b.Region, b.Pixels))
	}

	assert.Equal(t, serial.Pixels(), parallel.Pixels(), "parallel batch must equal serial blits")
	assert.Equal(t, uint64(1), parallel.Generation(), "a batch bumps the generation once")
	assert.Equal(t, uint64(len(blits)), serial.Generation())
}

func TestBlitBatchRejectsBadEntryBeforeWriting(t *testing.T) {
	a := NewAtlas(16, 16, ChannelsCoverage)
	defer a.Close()

	good := Blit{Region: Region{X: 0, Y: 0, Width: 2, Height: 2}, Pixels: []byte{9, 9, 9, 9}}
	bad := Blit{Region: Region{X: 4, Y: 0, Width: 2, Height: 2}, Pixels: []byte{1}}

	err := a.BlitBatch([]Blit{good, bad})
	require.ErrorIs(t, err, ErrPixelSize)

	for _, px := range a.Pixels() {
		require.Equal(t, byte(0), px, "a rejected batch must leave the canvas untouched")
	}
	assert.Equal(t, uint64(0), a.Generation())
}

func TestBlitBatchEmptyIsNoOp(t *testing.T) {
	a := NewAtlas(8, 8, ChannelsCoverage)
	defer a.Close()

	require.NoError(t, a.BlitBatch(nil))
	assert.Equal(t, uint64(0), a.Generation())
}

func TestAtlasAllocateRoutesToAllocator(t *testing.T) {
	a := NewAtlas(32, 32, ChannelsCoverage, WithRegionPadding(0))
	defer a.Close()

	r, err := a.Allocate(32, 32)
	require.NoError(t, err)
	assert.Equal(t, Region{X: 0, Y: 0, Width: 32, Height: 32}, r)

	_, err = a.Allocate(1, 1)
	assert.ErrorIs(t, err, ErrAtlasFull)

	a.Reset()
	_, err = a.Allocate(1, 1)
	assert.NoError(t, err)
}

func TestAtlasClose(t *testing.T) {
	a := NewAtlas(8, 8, ChannelsRGBA)
	a.Close()
	a.Close() // idempotent

	_, err := a.Allocate(2, 2)
	assert.ErrorIs(t, err, ErrAtlasClosed)
	assert.ErrorIs(t, a.Blit(Region{X: 0, Y: 0, Width: 1, Height: 1}, []byte{0, 0, 0, 0}), ErrAtlasClosed)
	assert.ErrorIs(t, a.BlitImage(Region{X: 0, Y: 0, Width: 1, Height: 1}, image.NewNRGBA(image.Rect(0, 0, 1, 1))), ErrAtlasClosed)
	assert.ErrorIs(t, a.BlitBatch([]Blit{{}}), ErrAtlasClosed)
	assert.Nil(t, a.Pixels())
	assert.Equal(t, 0.0, a.Utilization())
}
