package atlas

import (
	"fmt"
	"image"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"golang.org/x/image/draw"
)

// Channel counts for the two atlas canvas layouts.
const (
	// ChannelsCoverage is a single-channel canvas (1 byte per pixel), used
	// for glyph coverage masks.
	ChannelsCoverage = 1

	// ChannelsRGBA is a four-channel canvas (4 bytes per pixel), used for
	// vector graphic and image pixel data.
	ChannelsRGBA = 4
)

// Blit pairs a target region with the pixel data to copy into it, for use
// with BlitBatch.
type Blit struct {
	// Region is the destination area inside the atlas.
	Region Region

	// Pixels is the tightly packed source data,
	// len = Region.Width * Region.Height * channels.
	Pixels []byte
}

// atlas is the implementation of the Atlas interface.
// It combines a CPU pixel canvas with a shelf allocator and a generation
// counter that callers use to detect when the GPU copy has gone stale.
type atlas struct {
	mu *sync.Mutex

	width    int
	height   int
	channels int

	pixels    []byte
	allocator Allocator

	// generation counts successful mutations of the canvas. The engine
	// compares it against the renderer's uploaded generation to decide when
	// a GPU refresh is due.
	generation uint64

	closed bool

	// padding is forwarded to the allocator at construction; stored so the
	// builder option has somewhere to land before the allocator exists.
	padding int

	// blitPool manages a bounded set of reusable goroutines for BlitBatch.
	// Workers persist across batches and idle out after a second, avoiding
	// per-batch goroutine spawn/teardown overhead.
	blitPool    worker.DynamicWorkerPool
	blitWorkers int
}

// Atlas is a CPU-side staging canvas for one GPU atlas texture: regions are
// reserved through the shelf allocator and filled by blits, and the whole
// canvas is handed to the renderer whenever the generation moves. Safe for
// concurrent use.
type Atlas interface {
	// Allocate reserves a region of the given size on the canvas.
	//
	// Parameters:
	//   - width: the requested width in pixels
	//   - height: the requested height in pixels
	//
	// Returns:
	//   - Region: the reserved region, undefined on error
	//   - error: ErrAtlasClosed after Close, ErrRegionOutOfBounds for
	//     non-positive sizes, ErrAtlasFull when nothing fits
	Allocate(width, height int) (Region, error)

	// Blit copies tightly packed pixel rows into a region of the canvas and
	// bumps the generation.
	//
	// Parameters:
	//   - region: the destination area, typically from Allocate
	//   - pixels: source data, len = region.Width * region.Height * channels
	//
	// Returns:
	//   - error: ErrAtlasClosed after Close, ErrRegionOutOfBounds when the
	//     region leaves the canvas, ErrPixelSize on data length mismatches
	Blit(region Region, pixels []byte) error

	// BlitImage draws an image into a region of the canvas, converting to
	// RGBA and scaling with bilinear filtering when the image size differs
	// from the region. Only valid on four-channel atlases. Bumps the
	// generation.
	//
	// Parameters:
	//   - region: the destination area, typically from Allocate
	//   - img: the source image
	//
	// Returns:
	//   - error: ErrAtlasClosed after Close, ErrRegionOutOfBounds when the
	//     region leaves the canvas, ErrPixelSize on single-channel atlases
	//     or a nil image
	BlitImage(region Region, img image.Image) error

	// BlitBatch copies many blits into the canvas in parallel through the
	// worker pool, bumping the generation once. Every blit is validated
	// before any pixel is touched, so a bad entry rejects the whole batch
	// and leaves the canvas unchanged. Regions must not overlap; the
	// allocator never hands out overlapping regions.
	//
	// Parameters:
	//   - blits: the regions and pixel data to copy
	//
	// Returns:
	//   - error: ErrAtlasClosed after Close, or the first validation error
	BlitBatch(blits []Blit) error

	// Pixels returns the live canvas backing store without copying. The
	// renderer reads it synchronously during upload; callers must not
	// mutate it directly.
	//
	// Returns:
	//   - []byte: the canvas, len = Width * Height * channels, nil after Close
	Pixels() []byte

	// Width returns the canvas width in pixels.
	//
	// Returns:
	//   - int: the width
	Width() int

	// Height returns the canvas height in pixels.
	//
	// Returns:
	//   - int: the height
	Height() int

	// Channels returns the canvas channel count (1 or 4 bytes per pixel).
	//
	// Returns:
	//   - int: the channel count
	Channels() int

	// Generation returns the mutation count of the canvas, starting at zero
	// and bumped on every successful blit.
	//
	// Returns:
	//   - uint64: the current generation
	Generation() uint64

	// Utilization returns the fraction of the canvas covered by allocated
	// regions.
	//
	// Returns:
	//   - float64: used area over total area, in [0, 1]
	Utilization() float64

	// Reset clears the allocation tracking, making the entire canvas
	// available again. Pixel data and the generation are left untouched;
	// new blits simply overwrite old content.
	Reset()

	// Close releases the canvas. Idempotent; all mutating operations after
	// Close return ErrAtlasClosed.
	Close()
}

var _ Atlas = &atlas{}

// NewAtlas is the entry point to create a new Atlas interface.
//
// Panics when the dimensions are not positive or the channel count is not
// ChannelsCoverage or ChannelsRGBA, since canvas geometry is decided at
// build time and a miss is a programming error.
//
// Parameters:
//   - width: the canvas width in pixels
//   - height: the canvas height in pixels
//   - channels: bytes per pixel, ChannelsCoverage (1) or ChannelsRGBA (4)
//   - opts: a variadic list of AtlasOption functions to configure the atlas
//
// Returns:
//   - Atlas: a new Atlas instance with the specified configuration
func NewAtlas(width, height, channels int, opts ...AtlasOption) Atlas {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("atlas: must have positive dimensions, got %dx%d", width, height))
	}
	if channels != ChannelsCoverage && channels != ChannelsRGBA {
		panic(fmt.Sprintf("atlas: must have 1 or 4 channels, got %d", channels))
	}

	a := &atlas{
		mu:          &sync.Mutex{},
		width:       width,
		height:      height,
		channels:    channels,
		pixels:      make([]byte, width*height*channels),
		padding:     1,
		blitWorkers: max(runtime.NumCPU()-1, 1),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.allocator = NewAllocator(width, height, WithPadding(a.padding))

	// Initialize the blit pool after options so WithBlitWorkers can override
	// the default. Queue size of 256 accommodates typical batch sizes with
	// headroom.
	a.blitPool = worker.NewDynamicWorkerPool(a.blitWorkers, 256, 1*time.Second)
	return a
}

func (a *atlas) Allocate(width, height int) (Region, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return Region{}, ErrAtlasClosed
	}
	return a.allocator.Allocate(width, height)
}

func (a *atlas) Blit(region Region, pixels []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrAtlasClosed
	}
	if err := a.validateBlit(region, pixels); err != nil {
		return err
	}

	a.copyRegion(region, pixels)
	a.generation++
	return nil
}

func (a *atlas) BlitImage(region Region, img image.Image) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrAtlasClosed
	}
	if a.channels != ChannelsRGBA {
		return fmt.Errorf("%w: image blit requires a 4-channel atlas", ErrPixelSize)
	}
	if img == nil {
		return fmt.Errorf("%w: nil image", ErrPixelSize)
	}
	if err := a.validateRegion(region); err != nil {
		return err
	}

	// The canvas doubles as an RGBA image so the draw package writes
	// directly into the backing store.
	dst := &image.RGBA{
		Pix:    a.pixels,
		Stride: a.width * ChannelsRGBA,
		Rect:   image.Rect(0, 0, a.width, a.height),
	}
	dstRect := image.Rect(region.X, region.Y, region.X+region.Width, region.Y+region.Height)

	srcBounds := img.Bounds()
	if srcBounds.Dx() == region.Width && srcBounds.Dy() == region.Height {
		draw.Draw(dst, dstRect, img, srcBounds.Min, draw.Src)
	} else {
		draw.BiLinear.Scale(dst, dstRect, img, srcBounds, draw.Src, nil)
	}

	a.generation++
	return nil
}

func (a *atlas) BlitBatch(blits []Blit) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrAtlasClosed
	}
	if len(blits) == 0 {
		return nil
	}

	// Validate everything before touching pixels so a bad entry cannot
	// leave the canvas half-written.
	for i, b := range blits {
		if err := a.validateBlit(b.Region, b.Pixels); err != nil {
			return fmt.Errorf("blit %d: %w", i, err)
		}
	}

	var wg sync.WaitGroup
	for i, b := range blits {
		wg.Add(1)
		blit := b
		a.blitPool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				a.copyRegion(blit.Region, blit.Pixels)
				return nil, nil
			},
		})
	}
	wg.Wait()

	a.generation++
	return nil
}

// validateRegion checks that a region has positive dimensions and lies
// entirely inside the canvas.
func (a *atlas) validateRegion(region Region) error {
	if !region.IsValid() || region.X < 0 || region.Y < 0 ||
		region.X+region.Width > a.width || region.Y+region.Height > a.height {
		return fmt.Errorf("%w: %s in %dx%d", ErrRegionOutOfBounds, region, a.width, a.height)
	}
	return nil
}

// validateBlit checks the region bounds and that the pixel data length
// matches the region's area at the canvas channel count.
func (a *atlas) validateBlit(region Region, pixels []byte) error {
	if err := a.validateRegion(region); err != nil {
		return err
	}
	if want := region.Width * region.Height * a.channels; len(pixels) != want {
		return fmt.Errorf("%w: got %d bytes, want %d for %s", ErrPixelSize, len(pixels), want, region)
	}
	return nil
}

// copyRegion copies tightly packed source rows into the canvas at the
// region's position. Callers must have validated the blit first.
func (a *atlas) copyRegion(region Region, pixels []byte) {
	srcStride := region.Width * a.channels
	dstStride := a.width * a.channels
	for row := 0; row < region.Height; row++ {
		dstOffset := (region.Y+row)*dstStride + region.X*a.channels
		copy(a.pixels[dstOffset:dstOffset+srcStride], pixels[row*srcStride:(row+1)*srcStride])
	}
}

func (a *atlas) Pixels() []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pixels
}

func (a *atlas) Width() int {
	return a.width
}

func (a *atlas) Height() int {
	return a.height
}

func (a *atlas) Channels() int {
	return a.channels
}

func (a *atlas) Generation() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.generation
}

func (a *atlas) Utilization() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return 0
	}
	return a.allocator.Utilization()
}

func (a *atlas) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return
	}
	a.allocator.Reset()
}

func (a *atlas) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return
	}
	a.pixels = nil
	a.closed = true
}
