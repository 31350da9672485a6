package renderer

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Carmen-Shannon/oxy-ui/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDraw struct {
	vertexCount uint32
	firstVertex uint32
}

// fakePass records the bind and draw sequence a dispatch produced.
type fakePass struct {
	pipelines  []*wgpu.RenderPipeline
	bindGroups []*wgpu.BindGroup
	draws      []fakeDraw
}

func (p *fakePass) SetPipeline(pipeline *wgpu.RenderPipeline) {
	p.pipelines = append(p.pipelines, pipeline)
}

func (p *fakePass) SetBindGroup(groupIndex uint32, group *wgpu.BindGroup, dynamicOffsets []uint32) {
	p.bindGroups = append(p.bindGroups, group)
}

func (p *fakePass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.draws = append(p.draws, fakeDraw{vertexCount: vertexCount, firstVertex: firstVertex})
}

type fakeWrite struct {
	buffer *wgpu.Buffer
	offset uint64
	size   int
}

// fakeQueue records upload ranges, optionally failing every write.
type fakeQueue struct {
	writes []fakeWrite
	err    error
}

func (q *fakeQueue) WriteBuffer(buffer *wgpu.Buffer, bufferOffset uint64, data []byte) error {
	if q.err != nil {
		return q.err
	}
	q.writes = append(q.writes, fakeWrite{buffer: buffer, offset: bufferOffset, size: len(data)})
	return nil
}

// testPipelines holds the distinct pipeline handles a test dispatcher binds.
type testPipelines struct {
	flat  *wgpu.RenderPipeline
	text  *wgpu.RenderPipeline
	svg   *wgpu.RenderPipeline
	image *wgpu.RenderPipeline
}

// newTestDispatcher builds a dispatcher with every kind fully configured,
// shadows and quads sharing the flat pipeline, one buffer per slot.
func newTestDispatcher() (*batchDispatcher, testPipelines) {
	p := testPipelines{
		flat:  &wgpu.RenderPipeline{},
		text:  &wgpu.RenderPipeline{},
		svg:   &wgpu.RenderPipeline{},
		image: &wgpu.RenderPipeline{},
	}

	primitive := kindResources{
		pipeline:  p.flat,
		bindGroup: &wgpu.BindGroup{},
		buffer:    &wgpu.Buffer{},
		arena:     make([]byte, scene.PrimitiveBufferCapacity*scene.GPUPrimitiveStride),
		stride:    scene.GPUPrimitiveStride,
		capacity:  scene.PrimitiveBufferCapacity,
		slot:      slotPrimitive,
	}

	d := newBatchDispatcher()
	d.setKind(scene.KindShadow, primitive)
	d.setKind(scene.KindQuad, primitive)
	d.setKind(scene.KindGlyph, kindResources{
		pipeline:  p.text,
		bindGroup: &wgpu.BindGroup{},
		buffer:    &wgpu.Buffer{},
		arena:     make([]byte, scene.GlyphBufferCapacity*scene.GPUGlyphStride),
		stride:    scene.GPUGlyphStride,
		capacity:  scene.GlyphBufferCapacity,
		slot:      slotGlyph,
	})
	d.setKind(scene.KindSVG, kindResources{
		pipeline:  p.svg,
		bindGroup: &wgpu.BindGroup{},
		buffer:    &wgpu.Buffer{},
		arena:     make([]byte, scene.SVGBufferCapacity*scene.GPUSVGStride),
		stride:    scene.GPUSVGStride,
		capacity:  scene.SVGBufferCapacity,
		slot:      slotSVG,
	})
	d.setKind(scene.KindImage, kindResources{
		pipeline:  p.image,
		bindGroup: &wgpu.BindGroup{},
		buffer:    &wgpu.Buffer{},
		arena:     make([]byte, scene.ImageBufferCapacity*scene.GPUImageStride),
		stride:    scene.GPUImageStride,
		capacity:  scene.ImageBufferCapacity,
		slot:      slotImage,
	})
	return d, p
}

func TestDrawSceneEmptyScene(t *testing.T) {
	d, _ := newTestDispatcher()
	pass := &fakePass{}
	queue := &fakeQueue{}

	counts := d.DrawScene(pass, queue, scene.NewScene("empty"))

	assert.Equal(t, BatchCounts{}, counts)
	assert.Empty(t, pass.pipelines)
	assert.Empty(t, pass.bindGroups)
	assert.Empty(t, pass.draws)
	assert.Empty(t, queue.writes)
}

func TestDrawSceneMixedBatches(t *testing.T) {
	d, p := newTestDispatcher()
	pass := &fakePass{}
	queue := &fakeQueue{}

	s := scene.NewScene("mixed")
	for i := 0; i < 3; i++ {
		s.AddShadow(scene.Shadow{})
	}
	for i := 0; i < 5; i++ {
		s.AddQuad(scene.Quad{})
	}
	for i := 0; i < 10; i++ {
		s.AddGlyph(scene.Glyph{})
	}

	counts := d.DrawScene(pass, queue, s)

	assert.Equal(t, 3, counts.Shadows)
	assert.Equal(t, 5, counts.Quads)
	assert.Equal(t, 10, counts.Glyphs)
	assert.Equal(t, 3, counts.DrawCalls)
	assert.Equal(t, 0, counts.Clamped)
	assert.Equal(t, 18, counts.Total())

	// Quads continue at the shadows' offset in the shared primitive buffer.
	require.Len(t, pass.draws, 3)
	assert.Equal(t, fakeDraw{vertexCount: 18, firstVertex: 0}, pass.draws[0])
	assert.Equal(t, fakeDraw{vertexCount: 30, firstVertex: 18}, pass.draws[1])
	assert.Equal(t, fakeDraw{vertexCount: 60, firstVertex: 0}, pass.draws[2])

	// Shadow and quad batches share the flat pipeline, so only the
	// shadow batch and the glyph batch bind.
	require.Len(t, pass.pipelines, 2)
	assert.Same(t, p.flat, pass.pipelines[0])
	assert.Same(t, p.text, pass.pipelines[1])
	assert.Len(t, pass.bindGroups, 2)
}

func TestDrawSceneUploadRanges(t *testing.T) {
	d, _ := newTestDispatcher()
	pass := &fakePass{}
	queue := &fakeQueue{}

	s := scene.NewScene("ranges")
	for i := 0; i < 3; i++ {
		s.AddShadow(scene.Shadow{})
	}
	for i := 0; i < 5; i++ {
		s.AddQuad(scene.Quad{})
	}

	d.DrawScene(pass, queue, s)

	require.Len(t, queue.writes, 2)
	assert.Equal(t, uint64(0), queue.writes[0].offset)
	assert.Equal(t, 3*scene.GPUPrimitiveStride, queue.writes[0].size)
	assert.Equal(t, uint64(3*scene.GPUPrimitiveStride), queue.writes[1].offset)
	assert.Equal(t, 5*scene.GPUPrimitiveStride, queue.writes[1].size)
	assert.Same(t, queue.writes[0].buffer, queue.writes[1].buffer)
}

func TestDrawSceneBindPerPipelineTransition(t *testing.T) {
	d, p := newTestDispatcher()
	pass := &fakePass{}
	queue := &fakeQueue{}

	s := scene.NewScene("transitions")
	s.AddQuad(scene.Quad{})
	s.AddGlyph(scene.Glyph{})
	s.AddImage(scene.Image{})

	counts := d.DrawScene(pass, queue, s)

	assert.Equal(t, 3, counts.DrawCalls)
	require.Len(t, pass.pipelines, 3)
	assert.Same(t, p.flat, pass.pipelines[0])
	assert.Same(t, p.text, pass.pipelines[1])
	assert.Same(t, p.image, pass.pipelines[2])
}

func TestDrawSceneSkipsKindWithoutBindGroup(t *testing.T) {
	d, p := newTestDispatcher()
	d.setBindGroup(scene.KindGlyph, nil)
	pass := &fakePass{}
	queue := &fakeQueue{}

	s := scene.NewScene("missing-atlas")
	s.AddQuad(scene.Quad{})
	s.AddGlyph(scene.Glyph{})
	s.AddImage(scene.Image{})

	counts := d.DrawScene(pass, queue, s)

	assert.Equal(t, 1, counts.Quads)
	assert.Equal(t, 0, counts.Glyphs, "a kind without a bind group must not draw")
	assert.Equal(t, 1, counts.Images)
	assert.Equal(t, 2, counts.DrawCalls)

	// The skipped glyph batch must not bind or upload anything.
	require.Len(t, pass.pipelines, 2)
	assert.Same(t, p.flat, pass.pipelines[0])
	assert.Same(t, p.image, pass.pipelines[1])
	assert.Len(t, queue.writes, 2)
}

func TestDrawSceneClampsAtCapacity(t *testing.T) {
	d, _ := newTestDispatcher()
	pass := &fakePass{}
	queue := &fakeQueue{}

	s := scene.NewScene("overflow")
	for i := 0; i < scene.PrimitiveBufferCapacity+1; i++ {
		s.AddQuad(scene.Quad{})
	}

	counts := d.DrawScene(pass, queue, s)

	assert.Equal(t, scene.PrimitiveBufferCapacity, counts.Quads)
	assert.Equal(t, 1, counts.Clamped)
	assert.Equal(t, 1, counts.DrawCalls)
	require.Len(t, pass.draws, 1)
	assert.Equal(t, uint32(6*scene.PrimitiveBufferCapacity), pass.draws[0].vertexCount)
}

func TestDrawSceneSharedSlotClamp(t *testing.T) {
	d, _ := newTestDispatcher()
	pass := &fakePass{}
	queue := &fakeQueue{}

	// Shadows consume most of the shared primitive buffer; the quad batch
	// is clamped to what remains.
	s := scene.NewScene("shared-slot")
	for i := 0; i < scene.PrimitiveBufferCapacity-96; i++ {
		s.AddShadow(scene.Shadow{})
	}
	for i := 0; i < 200; i++ {
		s.AddQuad(scene.Quad{})
	}

	counts := d.DrawScene(pass, queue, s)

	assert.Equal(t, scene.PrimitiveBufferCapacity-96, counts.Shadows)
	assert.Equal(t, 96, counts.Quads)
	assert.Equal(t, 104, counts.Clamped)
	require.Len(t, pass.draws, 2)
	assert.Equal(t, uint32(6*(scene.PrimitiveBufferCapacity-96)), pass.draws[1].firstVertex)
}

func TestDrawSceneOffsetsResetBetweenCalls(t *testing.T) {
	d, _ := newTestDispatcher()

	s := scene.NewScene("repeat")
	s.AddQuad(scene.Quad{})
	s.AddQuad(scene.Quad{})

	first := &fakePass{}
	d.DrawScene(first, &fakeQueue{}, s)
	second := &fakePass{}
	d.DrawScene(second, &fakeQueue{}, s)

	require.Len(t, second.draws, 1)
	assert.Equal(t, first.draws, second.draws, "offsets must reset between frames")
	assert.Equal(t, uint32(0), second.draws[0].firstVertex)
}

func TestDrawSceneWriteFailureSkipsDraw(t *testing.T) {
	d, _ := newTestDispatcher()
	pass := &fakePass{}
	queue := &fakeQueue{err: errors.New("device lost")}

	s := scene.NewScene("write-failure")
	s.AddQuad(scene.Quad{})

	counts := d.DrawScene(pass, queue, s)

	assert.Equal(t, 0, counts.Quads, "a failed upload must not be drawn")
	assert.Equal(t, 0, counts.DrawCalls)
	assert.Empty(t, pass.pipelines)
	assert.Empty(t, pass.draws)
}

func TestBatchCountsTotalAndMerge(t *testing.T) {
	c := BatchCounts{Shadows: 1, Quads: 2, Glyphs: 3, SVGs: 4, Images: 5, DrawCalls: 5, Clamped: 1}
	assert.Equal(t, 15, c.Total())

	c.Merge(BatchCounts{Quads: 10, DrawCalls: 1, Clamped: 2})
	assert.Equal(t, 12, c.Quads)
	assert.Equal(t, 6, c.DrawCalls)
	assert.Equal(t, 3, c.Clamped)
	assert.Equal(t, 25, c.Total())
}

func TestBatchCountsString(t *testing.T) {
	c := BatchCounts{Shadows: 1, Quads: 2, DrawCalls: 2}
	assert.Equal(t, "3 primitives in 2 draw calls: 1 shadows, 2 quads, 0 glyphs, 0 svgs, 0 images (0 clamped)", c.String())
	assert.Equal(t, c.String(), fmt.Sprint(c))
}

func TestBatchCountsLogValue(t *testing.T) {
	c := BatchCounts{Glyphs: 7, DrawCalls: 1}
	v := c.LogValue()
	attrs := map[string]int64{}
	for _, a := range v.Group() {
		attrs[a.Key] = a.Value.Int64()
	}
	assert.Equal(t, int64(7), attrs["glyphs"])
	assert.Equal(t, int64(1), attrs["draw_calls"])
	assert.Equal(t, int64(0), attrs["clamped"])
}
