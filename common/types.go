// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"github.com/chewxy/math32"
	"github.com/cogentcore/webgpu/wgpu"
)

// unboundedExtent is the half-extent of the clip sentinel rectangle. Any clip
// at least this large is treated as "no clipping". The value is far beyond any
// realistic surface size while staying exactly representable as a float32.
const unboundedExtent = 1 << 20

// Rect is an axis-aligned rectangle in logical pixels, origin top-left.
type Rect struct {
	// X is the left edge of the rectangle.
	X float32
	// Y is the top edge of the rectangle.
	Y float32
	// Width is the horizontal extent. Negative or zero widths mark the rectangle as empty.
	Width float32
	// Height is the vertical extent. Negative or zero heights mark the rectangle as empty.
	Height float32
}

// NewRect constructs a Rect from a top-left corner and a size.
//
// Parameters:
//   - x, y: the top-left corner in logical pixels
//   - width, height: the extent in logical pixels
//
// Returns:
//   - Rect: the assembled rectangle
func NewRect(x, y, width, height float32) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// UnboundedRect returns the sentinel rectangle used for "no clipping".
// It is a concrete, very large rectangle rather than a zero-area one so that
// unclipped primitives are never accidentally culled by a degenerate clip.
//
// Returns:
//   - Rect: the unbounded clip sentinel
func UnboundedRect() Rect {
	return Rect{
		X:      -unboundedExtent,
		Y:      -unboundedExtent,
		Width:  2 * unboundedExtent,
		Height: 2 * unboundedExtent,
	}
}

// Empty reports whether the rectangle has no area.
//
// Returns:
//   - bool: true if Width or Height is zero or negative
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Unbounded reports whether the rectangle is at least as large as the clip
// sentinel, meaning it clips nothing on any realistic surface.
//
// Returns:
//   - bool: true if the rectangle covers the sentinel extent
func (r Rect) Unbounded() bool {
	return r.X <= -unboundedExtent && r.Y <= -unboundedExtent &&
		r.Width >= 2*unboundedExtent && r.Height >= 2*unboundedExtent
}

// MaxX returns the right edge of the rectangle.
//
// Returns:
//   - float32: X + Width
func (r Rect) MaxX() float32 {
	return r.X + r.Width
}

// MaxY returns the bottom edge of the rectangle.
//
// Returns:
//   - float32: Y + Height
func (r Rect) MaxY() float32 {
	return r.Y + r.Height
}

// Contains reports whether the point (x, y) lies inside the rectangle.
//
// Parameters:
//   - x, y: the point to test, in the same coordinate space as the rectangle
//
// Returns:
//   - bool: true if the point is inside or on the top/left edges
func (r Rect) Contains(x, y float32) bool {
	return x >= r.X && x < r.MaxX() && y >= r.Y && y < r.MaxY()
}

// Intersect returns the overlapping region of two rectangles.
// If the rectangles do not overlap the result is empty.
//
// Parameters:
//   - o: the other rectangle
//
// Returns:
//   - Rect: the intersection, possibly empty
func (r Rect) Intersect(o Rect) Rect {
	x := math32.Max(r.X, o.X)
	y := math32.Max(r.Y, o.Y)
	maxX := math32.Min(r.MaxX(), o.MaxX())
	maxY := math32.Min(r.MaxY(), o.MaxY())
	return Rect{X: x, Y: y, Width: maxX - x, Height: maxY - y}
}

// HSLA is a hue/saturation/lightness/alpha color. Hue is in degrees [0, 360);
// saturation, lightness and alpha are in [0, 1]. The GPU shaders convert to
// RGB, so no CPU-side conversion happens on the hot path.
type HSLA struct {
	// H is the hue angle in degrees, [0, 360).
	H float32
	// S is the saturation, [0, 1].
	S float32
	// L is the lightness, [0, 1].
	L float32
	// A is the alpha, [0, 1]. Colors composite with premultiplied alpha on the GPU.
	A float32
}

// NewHSLA constructs an HSLA color.
//
// Parameters:
//   - h: hue in degrees [0, 360)
//   - s, l, a: saturation, lightness, alpha in [0, 1]
//
// Returns:
//   - HSLA: the assembled color
func NewHSLA(h, s, l, a float32) HSLA {
	return HSLA{H: h, S: s, L: l, A: a}
}

// RGBA converts the color to straight (non-premultiplied) RGBA components.
// Primitive colors are converted on the GPU; this CPU path serves cold
// configuration values such as the surface clear color.
//
// Returns:
//   - r, g, b, a: the RGBA components in [0, 1]
func (c HSLA) RGBA() (r, g, b, a float32) {
	h := c.H - 360*math32.Floor(c.H/360)
	chroma := (1 - math32.Abs(2*c.L-1)) * c.S
	x := chroma * (1 - math32.Abs(math32.Mod(h/60, 2)-1))
	m := c.L - chroma/2
	switch {
	case h < 60:
		r, g, b = chroma, x, 0
	case h < 120:
		r, g, b = x, chroma, 0
	case h < 180:
		r, g, b = 0, chroma, x
	case h < 240:
		r, g, b = 0, x, chroma
	case h < 300:
		r, g, b = x, 0, chroma
	default:
		r, g, b = chroma, 0, x
	}
	return r + m, g + m, b + m, c.A
}

// TextureStagingData holds pixel data for a texture pending GPU upload.
// Pixels are tightly packed rows with Channels bytes per pixel.
type TextureStagingData struct {
	// Pixels is the raw pixel data, len = Width * Height * Channels.
	Pixels []byte
	// Width is the texture width in pixels.
	Width uint32
	// Height is the texture height in pixels.
	Height uint32
	// Channels is the bytes per pixel: 1 for single-channel coverage data, 4 for RGBA.
	Channels uint32
}

// SamplerStagingData holds the configuration for a sampler pending GPU creation.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range in each dimension (U, V, W).
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail (LOD) for mipmapping.
	LodMinClamp, LodMaxClamp float32
	// Compare specifies the comparison function for comparison samplers.
	Compare wgpu.CompareFunction
	// MaxAnisotropy specifies the maximum anisotropy level for anisotropic filtering.
	MaxAnisotropy uint16
}
