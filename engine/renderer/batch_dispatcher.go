package renderer

import (
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-ui/common"
	"github.com/Carmen-Shannon/oxy-ui/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
)

// numKinds is the number of primitive kinds a scene can yield.
const numKinds = int(scene.KindImage) + 1

// Upload-buffer slots. Shadows and quads marshal into the shared primitive
// buffer, so five kinds map onto four buffers and four running offsets.
const (
	slotPrimitive = iota
	slotGlyph
	slotSVG
	slotImage
	slotCount
)

// renderPass is the subset of *wgpu.RenderPassEncoder the dispatcher records
// through, narrowed so dispatch logic can be tested without a GPU.
type renderPass interface {
	SetPipeline(pipeline *wgpu.RenderPipeline)
	SetBindGroup(groupIndex uint32, group *wgpu.BindGroup, dynamicOffsets []uint32)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
}

// bufferWriter is the subset of *wgpu.Queue the dispatcher uploads through.
type bufferWriter interface {
	WriteBuffer(buffer *wgpu.Buffer, bufferOffset uint64, data []byte) error
}

// kindResources is everything needed to draw batches of one kind: the
// pipeline and bind group to bind, the destination upload buffer, the CPU
// arena records are marshalled into before upload, and the buffer slot whose
// running offset the kind consumes. Shadows and quads share the primitive
// slot, one arena, one buffer, and one pipeline.
type kindResources struct {
	pipeline  *wgpu.RenderPipeline
	bindGroup *wgpu.BindGroup
	buffer    *wgpu.Buffer
	arena     []byte
	stride    int
	capacity  int
	slot      int
}

// batchDispatcher converts a scene's batches into the minimal sequence of
// buffer uploads, pipeline binds, and draw calls. Pipeline and bind group
// are set only when a batch's pipeline differs from the one currently bound,
// so consecutive shadow and quad batches share a single bind. A kind whose
// resources are incomplete (its atlas has not been uploaded yet) has its
// batches dropped rather than failing the frame.
//
// Not safe for concurrent use; the backend serializes frames.
type batchDispatcher struct {
	kinds   [numKinds]kindResources
	offsets [slotCount]int
	current *wgpu.RenderPipeline
}

func newBatchDispatcher() *batchDispatcher {
	return &batchDispatcher{}
}

// setKind installs the draw resources for one kind. Kinds that share a
// buffer slot must be given the same buffer and arena.
//
// Parameters:
//   - k: the kind being configured
//   - res: the resolved draw resources for that kind
func (d *batchDispatcher) setKind(k scene.Kind, res kindResources) {
	d.kinds[k] = res
}

// setBindGroup swaps one kind's bind group, used when an atlas upload
// recreates the texture and the old bind group goes stale. A nil group
// disables the kind until the next upload.
//
// Parameters:
//   - k: the kind whose bind group changed
//   - group: the replacement bind group, or nil
func (d *batchDispatcher) setBindGroup(k scene.Kind, group *wgpu.BindGroup) {
	d.kinds[k].bindGroup = group
}

// reset clears the running buffer offsets and the bound-pipeline tracker.
// Called at the top of every DrawScene so frames never inherit state.
func (d *batchDispatcher) reset() {
	d.offsets = [slotCount]int{}
	d.current = nil
}

// DrawScene walks s's batches in paint order, uploads each batch's records
// into its kind's buffer at the running offset, and records one draw call
// per surviving batch. Batches beyond a buffer's remaining capacity are
// clamped; the overflow is reported in the returned counts, never an error.
//
// Parameters:
//   - pass: the render pass to record binds and draws into
//   - queue: the queue uploads go through
//   - s: the scene to draw
//
// Returns:
//   - BatchCounts: per-kind drawn totals, draw calls, and clamped overflow
func (d *batchDispatcher) DrawScene(pass renderPass, queue bufferWriter, s scene.Scene) BatchCounts {
	var counts BatchCounts
	d.reset()
	if s == nil {
		return counts
	}

	shadows := s.Shadows()
	quads := s.Quads()
	glyphs := s.Glyphs()
	svgs := s.SVGs()
	images := s.Images()

	var drawn [numKinds]int
	it := s.Batches()
	for b, ok := it.Next(); ok; b, ok = it.Next() {
		res := &d.kinds[b.Kind]
		if res.pipeline == nil || res.bindGroup == nil || res.buffer == nil {
			// The kind cannot draw yet; dropping its batches keeps the rest
			// of the frame intact. The gap shows up as a zero drawn count.
			continue
		}

		avail := res.capacity - d.offsets[res.slot]
		if avail <= 0 {
			counts.Clamped += b.Count
			continue
		}
		n := min(b.Count, avail)
		counts.Clamped += b.Count - n

		base := d.offsets[res.slot]
		lo := base * res.stride
		hi := lo + n*res.stride
		switch b.Kind {
		case scene.KindShadow:
			for i, p := range shadows[b.Start : b.Start+n] {
				p.Record().MarshalInto(res.arena[lo+i*res.stride:])
			}
		case scene.KindQuad:
			for i, p := range quads[b.Start : b.Start+n] {
				p.Record().MarshalInto(res.arena[lo+i*res.stride:])
			}
		case scene.KindGlyph:
			for i, p := range glyphs[b.Start : b.Start+n] {
				p.Record().MarshalInto(res.arena[lo+i*res.stride:])
			}
		case scene.KindSVG:
			for i, p := range svgs[b.Start : b.Start+n] {
				p.Record().MarshalInto(res.arena[lo+i*res.stride:])
			}
		case scene.KindImage:
			for i, p := range images[b.Start : b.Start+n] {
				p.Record().MarshalInto(res.arena[lo+i*res.stride:])
			}
		}

		if err := queue.WriteBuffer(res.buffer, uint64(lo), res.arena[lo:hi]); err != nil {
			common.Logger().Error("batch upload failed", "kind", b.Kind.String(), "records", n, "error", err)
			continue
		}

		if res.pipeline != d.current {
			pass.SetPipeline(res.pipeline)
			pass.SetBindGroup(0, res.bindGroup, nil)
			d.current = res.pipeline
		}

		// Six vertices per record; the vertex shader derives the record
		// index and corner from the vertex index alone.
		pass.Draw(uint32(6*n), 1, uint32(6*base), 0)
		d.offsets[res.slot] = base + n
		drawn[b.Kind] += n
		counts.DrawCalls++
	}

	counts.Shadows = drawn[scene.KindShadow]
	counts.Quads = drawn[scene.KindQuad]
	counts.Glyphs = drawn[scene.KindGlyph]
	counts.SVGs = drawn[scene.KindSVG]
	counts.Images = drawn[scene.KindImage]
	return counts
}

// BatchCounts reports what a dispatch pass produced: primitives drawn per
// kind, the number of draw calls recorded, and how many primitives were
// clamped away by full upload buffers.
type BatchCounts struct {
	Shadows   int
	Quads     int
	Glyphs    int
	SVGs      int
	Images    int
	DrawCalls int
	Clamped   int
}

// Total returns the number of primitives drawn across all kinds.
//
// Returns:
//   - int: the sum of the per-kind drawn counts
func (c BatchCounts) Total() int {
	return c.Shadows + c.Quads + c.Glyphs + c.SVGs + c.Images
}

// Merge adds s's counts into c, used to fold per-frame counts into the
// renderer's cumulative stats.
//
// Parameters:
//   - s: the counts to accumulate
func (c *BatchCounts) Merge(s BatchCounts) {
	c.Shadows += s.Shadows
	c.Quads += s.Quads
	c.Glyphs += s.Glyphs
	c.SVGs += s.SVGs
	c.Images += s.Images
	c.DrawCalls += s.DrawCalls
	c.Clamped += s.Clamped
}

// String returns a one-line summary for logs and the profiler.
func (c BatchCounts) String() string {
	return fmt.Sprintf("%d primitives in %d draw calls: %d shadows, %d quads, %d glyphs, %d svgs, %d images (%d clamped)",
		c.Total(), c.DrawCalls, c.Shadows, c.Quads, c.Glyphs, c.SVGs, c.Images, c.Clamped)
}

// LogValue groups the counts for structured logging.
func (c BatchCounts) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("shadows", c.Shadows),
		slog.Int("quads", c.Quads),
		slog.Int("glyphs", c.Glyphs),
		slog.Int("svgs", c.SVGs),
		slog.Int("images", c.Images),
		slog.Int("draw_calls", c.DrawCalls),
		slog.Int("clamped", c.Clamped),
	)
}
