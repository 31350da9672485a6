package scene

import "github.com/Carmen-Shannon/oxy-ui/common"

// Kind identifies one of the five primitive categories a Scene can hold.
// The declaration order is the paint order: shadows are drawn first
// (underneath everything) and images last (on top).
type Kind int

const (
	// KindShadow is a blurred drop shadow behind a rounded rectangle.
	KindShadow Kind = iota
	// KindQuad is a solid rounded rectangle with an optional border.
	KindQuad
	// KindGlyph is a single glyph sampled from the text atlas.
	KindGlyph
	// KindSVG is a rasterized vector graphic sampled from the svg atlas.
	KindSVG
	// KindImage is a bitmap sampled from the image atlas.
	KindImage

	kindCount = 5
)

// Buffer capacities, in records, for the per-kind upload buffers created by
// the renderer. Shadows and quads share the primitive buffer, so their
// combined total per frame is bounded by PrimitiveBufferCapacity.
const (
	PrimitiveBufferCapacity = 4096
	GlyphBufferCapacity     = 8192
	SVGBufferCapacity       = 2048
	ImageBufferCapacity     = 1024
)

// String returns the lowercase name of the kind for logs and diagnostics.
func (k Kind) String() string {
	switch k {
	case KindShadow:
		return "shadow"
	case KindQuad:
		return "quad"
	case KindGlyph:
		return "glyph"
	case KindSVG:
		return "svg"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

// BatchCapacity returns the maximum number of primitives of this kind that
// fit in one batch, which equals the capacity of the kind's upload buffer.
//
// Returns:
//   - int: the per-batch record limit for this kind
func (k Kind) BatchCapacity() int {
	switch k {
	case KindShadow, KindQuad:
		return PrimitiveBufferCapacity
	case KindGlyph:
		return GlyphBufferCapacity
	case KindSVG:
		return SVGBufferCapacity
	case KindImage:
		return ImageBufferCapacity
	default:
		return 0
	}
}

// Shadow is a blurred drop shadow cast by a rounded rectangle. Bounds is the
// rectangle casting the shadow in logical pixels; BlurRadius controls how far
// the penumbra extends beyond it.
type Shadow struct {
	Bounds       common.Rect
	CornerRadius float32
	BlurRadius   float32
	Color        common.HSLA
	Clip         common.Rect
}

// Quad is a solid rounded rectangle with an optional inset border. A zero
// BorderWidth disables the border entirely regardless of BorderColor.
type Quad struct {
	Bounds       common.Rect
	Background   common.HSLA
	BorderColor  common.HSLA
	BorderWidth  float32
	CornerRadius float32
	Clip         common.Rect
}

// Glyph is one rasterized glyph quad. Source addresses the glyph's coverage
// bitmap inside the text atlas in atlas pixels.
type Glyph struct {
	Bounds common.Rect
	Source common.Rect
	Color  common.HSLA
	Clip   common.Rect
}

// SVG is one rasterized vector graphic. Source addresses the rasterization
// inside the svg atlas; Fill and Stroke tint the atlas's fill and stroke
// coverage channels independently.
type SVG struct {
	Bounds common.Rect
	Source common.Rect
	Fill   common.HSLA
	Stroke common.HSLA
	Clip   common.Rect
}

// Image is one bitmap draw. Source addresses the pixels inside the image
// atlas. CornerRadii rounds the four corners in order top-left, top-right,
// bottom-right, bottom-left. Grayscale in [0,1] blends toward luminance;
// Opacity in [0,1] scales the final alpha on top of Tint.
type Image struct {
	Bounds      common.Rect
	Source      common.Rect
	Tint        common.HSLA
	CornerRadii [4]float32
	Grayscale   float32
	Opacity     float32
	Clip        common.Rect
}
