package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collect drains the iterator and returns every batch it yielded.
func collect(t *testing.T, it *BatchIterator) []Batch {
	t.Helper()
	var out []Batch
	for {
		b, ok := it.Next()
		if !ok {
			return out
		}
		require.Greater(t, b.Count, 0, "iterator must never yield an empty batch")
		out = append(out, b)
	}
}

func TestBatchesEmptyScene(t *testing.T) {
	it := NewScene("empty").Batches()
	b, ok := it.Next()
	assert.False(t, ok)
	assert.Equal(t, Batch{}, b)
}

func TestBatchesPaintOrder(t *testing.T) {
	s := NewScene("mixed")
	for i := 0; i < 3; i++ {
		s.AddShadow(Shadow{})
	}
	for i := 0; i < 5; i++ {
		s.AddQuad(Quad{})
	}
	for i := 0; i < 10; i++ {
		s.AddGlyph(Glyph{})
	}

	batches := collect(t, s.Batches())
	require.Len(t, batches, 3)
	assert.Equal(t, Batch{Kind: KindShadow, Start: 0, Count: 3}, batches[0])
	assert.Equal(t, Batch{Kind: KindQuad, Start: 0, Count: 5}, batches[1])
	assert.Equal(t, Batch{Kind: KindGlyph, Start: 0, Count: 10}, batches[2])
}

func TestBatchesSkipEmptyKinds(t *testing.T) {
	s := NewScene("sparse")
	s.AddImage(Image{})
	s.AddImage(Image{})

	batches := collect(t, s.Batches())
	require.Len(t, batches, 1)
	assert.Equal(t, Batch{Kind: KindImage, Start: 0, Count: 2}, batches[0])
}

func TestBatchesSplitAtCapacity(t *testing.T) {
	s := NewScene("overflow")
	for i := 0; i < ImageBufferCapacity+5; i++ {
		s.AddImage(Image{})
	}

	batches := collect(t, s.Batches())
	require.Len(t, batches, 2)
	assert.Equal(t, Batch{Kind: KindImage, Start: 0, Count: ImageBufferCapacity}, batches[0])
	assert.Equal(t, Batch{Kind: KindImage, Start: ImageBufferCapacity, Count: 5}, batches[1])
}

func TestBatchesKindBoundaryEndsBatch(t *testing.T) {
	// Shadows and quads share a pipeline, but the kind boundary must still
	// split them into separate batches.
	s := NewScene("boundary")
	s.AddShadow(Shadow{})
	s.AddQuad(Quad{})

	batches := collect(t, s.Batches())
	require.Len(t, batches, 2)
	assert.Equal(t, KindShadow, batches[0].Kind)
	assert.Equal(t, KindQuad, batches[1].Kind)
}

func TestBatchesConcatenationCoversScene(t *testing.T) {
	s := NewScene("coverage")
	counts := map[Kind]int{
		KindShadow: 7,
		KindQuad:   PrimitiveBufferCapacity + 13,
		KindGlyph:  1,
		KindSVG:    SVGBufferCapacity + 1,
		KindImage:  42,
	}
	for i := 0; i < counts[KindShadow]; i++ {
		s.AddShadow(Shadow{})
	}
	for i := 0; i < counts[KindQuad]; i++ {
		s.AddQuad(Quad{})
	}
	for i := 0; i < counts[KindGlyph]; i++ {
		s.AddGlyph(Glyph{})
	}
	for i := 0; i < counts[KindSVG]; i++ {
		s.AddSVG(SVG{})
	}
	for i := 0; i < counts[KindImage]; i++ {
		s.AddImage(Image{})
	}

	seen := map[Kind]int{}
	lastKind := Kind(-1)
	for _, b := range collect(t, s.Batches()) {
		require.GreaterOrEqual(t, int(b.Kind), int(lastKind), "kinds must be yielded in paint order")
		lastKind = b.Kind
		assert.Equal(t, seen[b.Kind], b.Start, "batches within a kind must be contiguous")
		assert.LessOrEqual(t, b.Count, b.Kind.BatchCapacity())
		seen[b.Kind] += b.Count
	}
	for kind, want := range counts {
		assert.Equal(t, want, seen[kind], "kind %s must be fully covered", kind)
	}
}

func TestBatchesExhaustedStaysExhausted(t *testing.T) {
	s := NewScene("drained")
	s.AddQuad(Quad{})

	it := s.Batches()
	_, ok := it.Next()
	require.True(t, ok)
	for i := 0; i < 3; i++ {
		_, ok = it.Next()
		assert.False(t, ok)
	}
}

func TestBatchesSnapshotCounts(t *testing.T) {
	s := NewScene("snapshot")
	s.AddQuad(Quad{})

	it := s.Batches()
	s.AddQuad(Quad{})
	s.AddGlyph(Glyph{})

	batches := collect(t, it)
	require.Len(t, batches, 1)
	assert.Equal(t, Batch{Kind: KindQuad, Start: 0, Count: 1}, batches[0])
}
