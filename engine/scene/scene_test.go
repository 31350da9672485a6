package scene

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-ui/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSceneDefaults(t *testing.T) {
	s := NewScene("overlay")
	assert.Equal(t, "overlay", s.Name())
	assert.True(t, s.Active())
	assert.Equal(t, 0, s.Z())
	assert.Equal(t, 0, s.Len())
}

func TestNewSceneOptions(t *testing.T) {
	s := NewScene("hud",
		WithActive(false),
		WithZ(3),
		WithQuadCapacity(64),
		WithGlyphCapacity(256),
	)
	assert.False(t, s.Active())
	assert.Equal(t, 3, s.Z())
	assert.Equal(t, 64, cap(s.Quads()))
	assert.Equal(t, 256, cap(s.Glyphs()))
	assert.Equal(t, 0, s.Len())
}

func TestSceneSetters(t *testing.T) {
	s := NewScene("a")
	s.SetName("b")
	s.SetActive(false)
	s.SetZ(7)
	assert.Equal(t, "b", s.Name())
	assert.False(t, s.Active())
	assert.Equal(t, 7, s.Z())
}

func TestSceneAppendOrderPerKind(t *testing.T) {
	s := NewScene("order")
	for i := 0; i < 4; i++ {
		s.AddQuad(Quad{Bounds: common.NewRect(float32(i), 0, 10, 10)})
	}
	quads := s.Quads()
	require.Len(t, quads, 4)
	for i, q := range quads {
		assert.Equal(t, float32(i), q.Bounds.X)
	}
}

func TestSceneCountAndLen(t *testing.T) {
	s := NewScene("counts")
	s.AddShadow(Shadow{})
	s.AddShadow(Shadow{})
	s.AddQuad(Quad{})
	s.AddGlyph(Glyph{})
	s.AddGlyph(Glyph{})
	s.AddGlyph(Glyph{})
	s.AddSVG(SVG{})
	s.AddImage(Image{})

	assert.Equal(t, 2, s.Count(KindShadow))
	assert.Equal(t, 1, s.Count(KindQuad))
	assert.Equal(t, 3, s.Count(KindGlyph))
	assert.Equal(t, 1, s.Count(KindSVG))
	assert.Equal(t, 1, s.Count(KindImage))
	assert.Equal(t, 8, s.Len())
}

func TestSceneClearRetainsBackingArrays(t *testing.T) {
	s := NewScene("reuse")
	for i := 0; i < 32; i++ {
		s.AddGlyph(Glyph{Bounds: common.NewRect(float32(i), 0, 8, 16)})
	}
	grown := cap(s.Glyphs())
	require.GreaterOrEqual(t, grown, 32)

	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, grown, cap(s.Glyphs()))

	s.AddGlyph(Glyph{Bounds: common.NewRect(99, 0, 8, 16)})
	glyphs := s.Glyphs()
	require.Len(t, glyphs, 1)
	assert.Equal(t, float32(99), glyphs[0].Bounds.X)
}

func TestSceneAppendFrom(t *testing.T) {
	dst := NewScene("composite")
	dst.AddQuad(Quad{Bounds: common.NewRect(0, 0, 1, 1)})

	src := NewScene("layer")
	src.AddQuad(Quad{Bounds: common.NewRect(1, 0, 1, 1)})
	src.AddQuad(Quad{Bounds: common.NewRect(2, 0, 1, 1)})
	src.AddGlyph(Glyph{Bounds: common.NewRect(3, 0, 1, 1)})

	dst.AppendFrom(src)

	quads := dst.Quads()
	require.Len(t, quads, 3)
	assert.Equal(t, float32(0), quads[0].Bounds.X)
	assert.Equal(t, float32(1), quads[1].Bounds.X)
	assert.Equal(t, float32(2), quads[2].Bounds.X)
	assert.Equal(t, 1, dst.Count(KindGlyph))

	// Source is untouched.
	assert.Equal(t, 2, src.Count(KindQuad))
	assert.Equal(t, 1, src.Count(KindGlyph))
}

func TestSceneAppendFromSelfIsNoop(t *testing.T) {
	s := NewScene("self")
	s.AddQuad(Quad{})
	s.AppendFrom(s)
	assert.Equal(t, 1, s.Count(KindQuad))
}

func TestSceneAppendFromNilIsNoop(t *testing.T) {
	s := NewScene("nil")
	s.AddQuad(Quad{})
	s.AppendFrom(nil)
	assert.Equal(t, 1, s.Count(KindQuad))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "shadow", KindShadow.String())
	assert.Equal(t, "quad", KindQuad.String())
	assert.Equal(t, "glyph", KindGlyph.String())
	assert.Equal(t, "svg", KindSVG.String())
	assert.Equal(t, "image", KindImage.String())
	assert.Equal(t, "unknown", Kind(99).String())
}

func TestKindBatchCapacity(t *testing.T) {
	assert.Equal(t, PrimitiveBufferCapacity, KindShadow.BatchCapacity())
	assert.Equal(t, PrimitiveBufferCapacity, KindQuad.BatchCapacity())
	assert.Equal(t, GlyphBufferCapacity, KindGlyph.BatchCapacity())
	assert.Equal(t, SVGBufferCapacity, KindSVG.BatchCapacity())
	assert.Equal(t, ImageBufferCapacity, KindImage.BatchCapacity())
	assert.Equal(t, 0, Kind(99).BatchCapacity())
}
