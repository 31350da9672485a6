package shader

import (
	_ "embed"
)

// FlatSource is the quad/shadow pipeline drawing from the shared primitive
// buffer.
// Matches GPUQuad/GPUShadow layout exactly (80 bytes, std430 aligned).
//
//go:embed assets/flat.wgsl
var FlatSource string

// TextSource is the glyph pipeline sampling the single-channel text atlas.
// Matches GPUGlyph layout exactly (64 bytes, std430 aligned).
//
//go:embed assets/text.wgsl
var TextSource string

// SVGSource is the vector graphic pipeline sampling the svg atlas's fill
// and stroke coverage channels.
// Matches GPUSVG layout exactly (80 bytes, std430 aligned).
//
//go:embed assets/svg.wgsl
var SVGSource string

// ImageSource is the bitmap pipeline sampling the image atlas.
// Matches GPUImage layout exactly (88 bytes, std430 aligned).
//
//go:embed assets/image.wgsl
var ImageSource string
