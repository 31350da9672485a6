package renderer

import (
	"github.com/Carmen-Shannon/oxy-ui/common"
	"github.com/Carmen-Shannon/oxy-ui/engine/scene"
	"github.com/Carmen-Shannon/oxy-ui/engine/window"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	backendType RendererBackendType
	backend     RendererBackend

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
	pendingClearColor    *common.HSLA
}

// Renderer defines the interface for the rendering system.
//
// This is a high-level API designed to simplify compositing tasks into a
// streamlined and idiomatic flow. A Renderer owns the GPU lifecycle for one
// window surface and draws whole scenes: callers assemble primitives into a
// scene, hand it to Render once per frame, and keep atlas pixel data current
// through UploadAtlas. The Renderer also implements a backend which allows
// for multiple backend API implementations to exist.
type Renderer interface {
	// Render draws one frame from the given scene and presents it. Transient
	// surface failures are absorbed internally and reported as a skipped
	// frame with zero counts.
	//
	// Parameters:
	//   - s: the scene to draw
	//
	// Returns:
	//   - BatchCounts: what the frame drew, zero when the frame was skipped
	//   - error: an error if the renderer has been destroyed
	Render(s scene.Scene) (BatchCounts, error)

	// Resize configures the underlying backend to handle a new surface size.
	// This should be called when re-sizing the window or when the content
	// scale changes.
	//
	// Parameters:
	//   - width: the new logical width of the surface in pixels
	//   - height: the new logical height of the surface in pixels
	//   - scale: the content scale factor (physical = logical * scale)
	//
	// Returns:
	//   - error: an error if the renderer has been destroyed
	Resize(width, height int, scale float32) error

	// UploadAtlas replaces the pixel contents of one kind's atlas texture.
	// Glyph atlases are single-channel coverage (1 byte per pixel); svg and
	// image atlases are RGBA (4 bytes per pixel).
	//
	// Parameters:
	//   - kind: the atlas-backed kind (glyph, svg, or image)
	//   - data: the staged pixels, tightly packed rows with
	//     len = Width * Height * Channels
	//
	// Returns:
	//   - error: an error if the kind has no atlas, the pixel data does not
	//     match the dimensions or channel count, or the GPU texture could not
	//     be created
	UploadAtlas(kind scene.Kind, data common.TextureStagingData) error

	// AtlasGeneration returns the upload generation of a kind's atlas,
	// starting at zero and bumped on every successful UploadAtlas. Callers
	// use this to detect whether their CPU-side atlas is ahead of the GPU.
	//
	// Parameters:
	//   - kind: the kind to query
	//
	// Returns:
	//   - uint64: the current atlas generation, zero for kinds without an atlas
	AtlasGeneration(kind scene.Kind) uint64

	// Stats returns the cumulative batch counts across every rendered frame.
	//
	// Returns:
	//   - BatchCounts: totals since the renderer was created
	Stats() BatchCounts

	// SurfaceSize returns the current physical surface size in pixels.
	//
	// Returns:
	//   - int: the physical width
	//   - int: the physical height
	SurfaceSize() (int, int)

	// SetPresentMode sets the surface present mode which controls how frames
	// are delivered to the display. A call to Resize is required after
	// changing this for the new mode to take effect.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// Destroy releases every GPU resource the renderer holds. Idempotent;
	// all operations after Destroy return an error.
	Destroy()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer instance with the specified backend type,
// drawing to the given window's surface. The full GPU bring-up runs here:
// adapter and device acquisition, surface configuration at the window's
// physical size, and creation of the four primitive-family pipelines.
//
// Panics when the window is nil, since a renderer without a surface cannot
// exist.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - w: the window providing the surface descriptor and initial size
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
//   - error: an error if GPU initialization fails
func NewRenderer(backendType RendererBackendType, w window.Window, options ...RendererBuilderOption) (Renderer, error) {
	if w == nil {
		panic("renderer: must have a window")
	}

	r := &renderer{
		backendType: backendType,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	msaa := MSAA4x // default
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend = newWGPURendererBackend(w.SurfaceDescriptor(), r.forceFallbackAdapter, msaa)
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	if r.pendingClearColor != nil {
		r.backend.SetClearColor(*r.pendingClearColor)
	}

	if err := r.backend.Init(w.Width(), w.Height(), w.Scale()); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *renderer) Render(s scene.Scene) (BatchCounts, error) {
	return r.backend.Render(s)
}

func (r *renderer) Resize(width, height int, scale float32) error {
	return r.backend.Resize(width, height, scale)
}

func (r *renderer) UploadAtlas(kind scene.Kind, data common.TextureStagingData) error {
	return r.backend.UploadAtlas(kind, data)
}

func (r *renderer) AtlasGeneration(kind scene.Kind) uint64 {
	return r.backend.AtlasGeneration(kind)
}

func (r *renderer) Stats() BatchCounts {
	return r.backend.Stats()
}

func (r *renderer) SurfaceSize() (int, int) {
	return r.backend.SurfaceSize()
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) Destroy() {
	r.backend.Destroy()
}
