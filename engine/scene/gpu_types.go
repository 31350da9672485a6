package scene

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// GPU records are the fixed-layout structs the renderer uploads into its
// storage buffers, one record type per kind. Every field is a 4-byte scalar
// so the WGSL mirror structs carry no padding and the byte stride equals
// unsafe.Sizeof. Colors stay in HSLA exactly as authored (hue in [0,360));
// the shaders convert to RGB, so the adapters below are lossless
// bit-for-bit copies. The only substitution they perform is the clip
// rectangle: an empty or inverted clip becomes the unbounded sentinel.

// Byte strides of the GPU records. The renderer sizes its upload buffers as
// capacity multiplied by stride.
const (
	GPUPrimitiveStride = 80
	GPUGlyphStride     = 64
	GPUSVGStride       = 80
	GPUImageStride     = 88
)

// Kind discriminator values inside the shared primitive record, matched by
// the flat shader pair.
const (
	flatKindQuad   uint32 = 0
	flatKindShadow uint32 = 1
)

// GPUShadow is the primitive-buffer record for a drop shadow. It shares its
// layout with GPUQuad so both kinds draw from one buffer through one
// pipeline; the Kind word tells the shader which decode path to take.
// Border fields are always zero for shadows.
type GPUShadow struct {
	PosX, PosY, SizeWidth, SizeHeight   float32
	ColorH, ColorS, ColorL, ColorA      float32
	BorderH, BorderS, BorderL, BorderA  float32
	CornerRadius                        float32
	BorderWidth                         float32
	BlurRadius                          float32
	Kind                                uint32
	ClipX, ClipY, ClipWidth, ClipHeight float32
}

// GPUQuad is the primitive-buffer record for a rounded rectangle. Layout is
// identical to GPUShadow; BlurRadius is always zero for quads.
type GPUQuad struct {
	PosX, PosY, SizeWidth, SizeHeight   float32
	ColorH, ColorS, ColorL, ColorA      float32
	BorderH, BorderS, BorderL, BorderA  float32
	CornerRadius                        float32
	BorderWidth                         float32
	BlurRadius                          float32
	Kind                                uint32
	ClipX, ClipY, ClipWidth, ClipHeight float32
}

// GPUGlyph is the glyph-buffer record for one atlas-sampled glyph.
type GPUGlyph struct {
	PosX, PosY, SizeWidth, SizeHeight           float32
	SourceX, SourceY, SourceWidth, SourceHeight float32
	ColorH, ColorS, ColorL, ColorA              float32
	ClipX, ClipY, ClipWidth, ClipHeight         float32
}

// GPUSVG is the svg-buffer record for one atlas-sampled vector graphic.
type GPUSVG struct {
	PosX, PosY, SizeWidth, SizeHeight           float32
	SourceX, SourceY, SourceWidth, SourceHeight float32
	FillH, FillS, FillL, FillA                  float32
	StrokeH, StrokeS, StrokeL, StrokeA          float32
	ClipX, ClipY, ClipWidth, ClipHeight         float32
}

// GPUImage is the image-buffer record for one atlas-sampled bitmap.
type GPUImage struct {
	PosX, PosY, SizeWidth, SizeHeight           float32
	SourceX, SourceY, SourceWidth, SourceHeight float32
	TintH, TintS, TintL, TintA                  float32
	CornerRadii                                 [4]float32
	Grayscale                                   float32
	Opacity                                     float32
	ClipX, ClipY, ClipWidth, ClipHeight         float32
}

// putF32 writes v at buf[off:off+4] little-endian and returns the next offset.
func putF32(buf []byte, off int, v float32) int {
	binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
	return off + 4
}

// putU32 writes v at buf[off:off+4] little-endian and returns the next offset.
func putU32(buf []byte, off int, v uint32) int {
	binary.LittleEndian.PutUint32(buf[off:], v)
	return off + 4
}

// Size returns the record's byte stride.
func (r GPUShadow) Size() int { return int(unsafe.Sizeof(r)) }

// Size returns the record's byte stride.
func (r GPUQuad) Size() int { return int(unsafe.Sizeof(r)) }

// Size returns the record's byte stride.
func (r GPUGlyph) Size() int { return int(unsafe.Sizeof(r)) }

// Size returns the record's byte stride.
func (r GPUSVG) Size() int { return int(unsafe.Sizeof(r)) }

// Size returns the record's byte stride.
func (r GPUImage) Size() int { return int(unsafe.Sizeof(r)) }

// MarshalInto writes the record little-endian into buf, which must hold at
// least Size() bytes.
func (r GPUShadow) MarshalInto(buf []byte) {
	off := putF32(buf, 0, r.PosX)
	off = putF32(buf, off, r.PosY)
	off = putF32(buf, off, r.SizeWidth)
	off = putF32(buf, off, r.SizeHeight)
	off = putF32(buf, off, r.ColorH)
	off = putF32(buf, off, r.ColorS)
	off = putF32(buf, off, r.ColorL)
	off = putF32(buf, off, r.ColorA)
	off = putF32(buf, off, r.BorderH)
	off = putF32(buf, off, r.BorderS)
	off = putF32(buf, off, r.BorderL)
	off = putF32(buf, off, r.BorderA)
	off = putF32(buf, off, r.CornerRadius)
	off = putF32(buf, off, r.BorderWidth)
	off = putF32(buf, off, r.BlurRadius)
	off = putU32(buf, off, r.Kind)
	off = putF32(buf, off, r.ClipX)
	off = putF32(buf, off, r.ClipY)
	off = putF32(buf, off, r.ClipWidth)
	putF32(buf, off, r.ClipHeight)
}

// MarshalInto writes the record little-endian into buf, which must hold at
// least Size() bytes.
func (r GPUQuad) MarshalInto(buf []byte) {
	off := putF32(buf, 0, r.PosX)
	off = putF32(buf, off, r.PosY)
	off = putF32(buf, off, r.SizeWidth)
	off = putF32(buf, off, r.SizeHeight)
	off = putF32(buf, off, r.ColorH)
	off = putF32(buf, off, r.ColorS)
	off = putF32(buf, off, r.ColorL)
	off = putF32(buf, off, r.ColorA)
	off = putF32(buf, off, r.BorderH)
	off = putF32(buf, off, r.BorderS)
	off = putF32(buf, off, r.BorderL)
	off = putF32(buf, off, r.BorderA)
	off = putF32(buf, off, r.CornerRadius)
	off = putF32(buf, off, r.BorderWidth)
	off = putF32(buf, off, r.BlurRadius)
	off = putU32(buf, off, r.Kind)
	off = putF32(buf, off, r.ClipX)
	off = putF32(buf, off, r.ClipY)
	off = putF32(buf, off, r.ClipWidth)
	putF32(buf, off, r.ClipHeight)
}

// MarshalInto writes the record little-endian into buf, which must hold at
// least Size() bytes.
func (r GPUGlyph) MarshalInto(buf []byte) {
	off := putF32(buf, 0, r.PosX)
	off = putF32(buf, off, r.PosY)
	off = putF32(buf, off, r.SizeWidth)
	off = putF32(buf, off, r.SizeHeight)
	off = putF32(buf, off, r.SourceX)
	off = putF32(buf, off, r.SourceY)
	off = putF32(buf, off, r.SourceWidth)
	off = putF32(buf, off, r.SourceHeight)
	off = putF32(buf, off, r.ColorH)
	off = putF32(buf, off, r.ColorS)
	off = putF32(buf, off, r.ColorL)
	off = putF32(buf, off, r.ColorA)
	off = putF32(buf, off, r.ClipX)
	off = putF32(buf, off, r.ClipY)
	off = putF32(buf, off, r.ClipWidth)
	putF32(buf, off, r.ClipHeight)
}

// MarshalInto writes the record little-endian into buf, which must hold at
// least Size() bytes.
func (r GPUSVG) MarshalInto(buf []byte) {
	off := putF32(buf, 0, r.PosX)
	off = putF32(buf, off, r.PosY)
	off = putF32(buf, off, r.SizeWidth)
	off = putF32(buf, off, r.SizeHeight)
	off = putF32(buf, off, r.SourceX)
	off = putF32(buf, off, r.SourceY)
	off = putF32(buf, off, r.SourceWidth)
	off = putF32(buf, off, r.SourceHeight)
	off = putF32(buf, off, r.FillH)
	off = putF32(buf, off, r.FillS)
	off = putF32(buf, off, r.FillL)
	off = putF32(buf, off, r.FillA)
	off = putF32(buf, off, r.StrokeH)
	off = putF32(buf, off, r.StrokeS)
	off = putF32(buf, off, r.StrokeL)
	off = putF32(buf, off, r.StrokeA)
	off = putF32(buf, off, r.ClipX)
	off = putF32(buf, off, r.ClipY)
	off = putF32(buf, off, r.ClipWidth)
	putF32(buf, off, r.ClipHeight)
}

// MarshalInto writes the record little-endian into buf, which must hold at
// least Size() bytes.
func (r GPUImage) MarshalInto(buf []byte) {
	off := putF32(buf, 0, r.PosX)
	off = putF32(buf, off, r.PosY)
	off = putF32(buf, off, r.SizeWidth)
	off = putF32(buf, off, r.SizeHeight)
	off = putF32(buf, off, r.SourceX)
	off = putF32(buf, off, r.SourceY)
	off = putF32(buf, off, r.SourceWidth)
	off = putF32(buf, off, r.SourceHeight)
	off = putF32(buf, off, r.TintH)
	off = putF32(buf, off, r.TintS)
	off = putF32(buf, off, r.TintL)
	off = putF32(buf, off, r.TintA)
	off = putF32(buf, off, r.CornerRadii[0])
	off = putF32(buf, off, r.CornerRadii[1])
	off = putF32(buf, off, r.CornerRadii[2])
	off = putF32(buf, off, r.CornerRadii[3])
	off = putF32(buf, off, r.Grayscale)
	off = putF32(buf, off, r.Opacity)
	off = putF32(buf, off, r.ClipX)
	off = putF32(buf, off, r.ClipY)
	off = putF32(buf, off, r.ClipWidth)
	putF32(buf, off, r.ClipHeight)
}

// Record converts the shadow to its GPU record.
//
// Returns:
//   - GPUShadow: the upload-ready record
func (s Shadow) Record() GPUShadow {
	clip := unboundedClip(s.Clip)
	return GPUShadow{
		PosX: s.Bounds.X, PosY: s.Bounds.Y, SizeWidth: s.Bounds.Width, SizeHeight: s.Bounds.Height,
		ColorH: s.Color.H, ColorS: s.Color.S, ColorL: s.Color.L, ColorA: s.Color.A,
		CornerRadius: s.CornerRadius,
		BlurRadius:   s.BlurRadius,
		Kind:         flatKindShadow,
		ClipX:        clip.X, ClipY: clip.Y, ClipWidth: clip.Width, ClipHeight: clip.Height,
	}
}

// Record converts the quad to its GPU record.
//
// Returns:
//   - GPUQuad: the upload-ready record
func (q Quad) Record() GPUQuad {
	clip := unboundedClip(q.Clip)
	return GPUQuad{
		PosX: q.Bounds.X, PosY: q.Bounds.Y, SizeWidth: q.Bounds.Width, SizeHeight: q.Bounds.Height,
		ColorH: q.Background.H, ColorS: q.Background.S, ColorL: q.Background.L, ColorA: q.Background.A,
		BorderH: q.BorderColor.H, BorderS: q.BorderColor.S, BorderL: q.BorderColor.L, BorderA: q.BorderColor.A,
		CornerRadius: q.CornerRadius,
		BorderWidth:  q.BorderWidth,
		Kind:         flatKindQuad,
		ClipX:        clip.X, ClipY: clip.Y, ClipWidth: clip.Width, ClipHeight: clip.Height,
	}
}

// Record converts the glyph to its GPU record.
//
// Returns:
//   - GPUGlyph: the upload-ready record
func (g Glyph) Record() GPUGlyph {
	clip := unboundedClip(g.Clip)
	return GPUGlyph{
		PosX: g.Bounds.X, PosY: g.Bounds.Y, SizeWidth: g.Bounds.Width, SizeHeight: g.Bounds.Height,
		SourceX: g.Source.X, SourceY: g.Source.Y, SourceWidth: g.Source.Width, SourceHeight: g.Source.Height,
		ColorH: g.Color.H, ColorS: g.Color.S, ColorL: g.Color.L, ColorA: g.Color.A,
		ClipX: clip.X, ClipY: clip.Y, ClipWidth: clip.Width, ClipHeight: clip.Height,
	}
}

// Record converts the svg instance to its GPU record.
//
// Returns:
//   - GPUSVG: the upload-ready record
func (v SVG) Record() GPUSVG {
	clip := unboundedClip(v.Clip)
	return GPUSVG{
		PosX: v.Bounds.X, PosY: v.Bounds.Y, SizeWidth: v.Bounds.Width, SizeHeight: v.Bounds.Height,
		SourceX: v.Source.X, SourceY: v.Source.Y, SourceWidth: v.Source.Width, SourceHeight: v.Source.Height,
		FillH: v.Fill.H, FillS: v.Fill.S, FillL: v.Fill.L, FillA: v.Fill.A,
		StrokeH: v.Stroke.H, StrokeS: v.Stroke.S, StrokeL: v.Stroke.L, StrokeA: v.Stroke.A,
		ClipX: clip.X, ClipY: clip.Y, ClipWidth: clip.Width, ClipHeight: clip.Height,
	}
}

// Record converts the image to its GPU record.
//
// Returns:
//   - GPUImage: the upload-ready record
func (img Image) Record() GPUImage {
	clip := unboundedClip(img.Clip)
	return GPUImage{
		PosX: img.Bounds.X, PosY: img.Bounds.Y, SizeWidth: img.Bounds.Width, SizeHeight: img.Bounds.Height,
		SourceX: img.Source.X, SourceY: img.Source.Y, SourceWidth: img.Source.Width, SourceHeight: img.Source.Height,
		TintH: img.Tint.H, TintS: img.Tint.S, TintL: img.Tint.L, TintA: img.Tint.A,
		CornerRadii: img.CornerRadii,
		Grayscale:   img.Grayscale,
		Opacity:     img.Opacity,
		ClipX:       clip.X, ClipY: clip.Y, ClipWidth: clip.Width, ClipHeight: clip.Height,
	}
}
