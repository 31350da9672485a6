package scene

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-ui/common"
)

// Scene is a retained draw list of 2D primitives, grouped into five ordered
// kinds. UI code appends primitives during layout, the renderer reads them
// once per frame via the slice accessors or Batches, and Clear resets the
// scene for the next frame while keeping the backing arrays.
// Within a kind, primitives draw in append order; across kinds, the paint
// order is fixed: shadows, quads, glyphs, svgs, images.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Active returns whether this scene is currently composited by the engine.
	Active() bool

	// SetActive sets whether this scene is composited by the engine.
	SetActive(active bool)

	// Z returns the scene's layer index. The engine composites active scenes
	// in ascending Z order, so higher layers draw over lower ones.
	Z() int

	// SetZ sets the scene's layer index.
	//
	// Parameters:
	//   - z: the new layer index
	SetZ(z int)

	// AddShadow appends a drop shadow to the scene.
	//
	// Parameters:
	//   - s: the shadow to append
	AddShadow(s Shadow)

	// AddQuad appends a rounded rectangle to the scene.
	//
	// Parameters:
	//   - q: the quad to append
	AddQuad(q Quad)

	// AddGlyph appends a glyph to the scene.
	//
	// Parameters:
	//   - g: the glyph to append
	AddGlyph(g Glyph)

	// AddSVG appends a vector graphic to the scene.
	//
	// Parameters:
	//   - v: the svg instance to append
	AddSVG(v SVG)

	// AddImage appends a bitmap to the scene.
	//
	// Parameters:
	//   - img: the image to append
	AddImage(img Image)

	// Shadows returns the scene's shadow list in append order. The slice is
	// borrowed: it is valid until the next Add call or Clear.
	Shadows() []Shadow

	// Quads returns the scene's quad list in append order. The slice is
	// borrowed: it is valid until the next Add call or Clear.
	Quads() []Quad

	// Glyphs returns the scene's glyph list in append order. The slice is
	// borrowed: it is valid until the next Add call or Clear.
	Glyphs() []Glyph

	// SVGs returns the scene's svg list in append order. The slice is
	// borrowed: it is valid until the next Add call or Clear.
	SVGs() []SVG

	// Images returns the scene's image list in append order. The slice is
	// borrowed: it is valid until the next Add call or Clear.
	Images() []Image

	// Count returns the number of primitives of the given kind.
	//
	// Parameters:
	//   - k: the kind to count
	//
	// Returns:
	//   - int: primitives of that kind currently in the scene
	Count(k Kind) int

	// Len returns the total number of primitives across all kinds.
	//
	// Returns:
	//   - int: total primitive count
	Len() int

	// AppendFrom appends every primitive from src to this scene, preserving
	// src's per-kind order. The engine uses this to composite layered scenes
	// into a single draw list each frame.
	//
	// Parameters:
	//   - src: the scene to copy primitives from
	AppendFrom(src Scene)

	// Clear removes all primitives while retaining the backing arrays, so a
	// scene reused across frames stops allocating once it reaches its
	// steady-state size.
	Clear()

	// Batches returns a fresh iterator over the scene's primitives in paint
	// order. The iterator snapshots the per-kind counts at creation; appending
	// after Batches is called does not grow an in-flight iteration.
	//
	// Returns:
	//   - *BatchIterator: a single-use iterator, exhausted after the last batch
	Batches() *BatchIterator
}

type scene struct {
	mu *sync.RWMutex

	name   string
	active bool
	z      int

	shadows []Shadow
	quads   []Quad
	glyphs  []Glyph
	svgs    []SVG
	images  []Image
}

// Ensure scene implements Scene interface.
var _ Scene = &scene{}

// NewScene creates a new empty Scene.
//
// Parameters:
//   - name: the name of the scene, used by the engine and in logs
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:     &sync.RWMutex{},
		name:   name,
		active: true,
	}

	for _, option := range options {
		option(s)
	}

	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Z() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.z
}

func (s *scene) SetZ(z int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.z = z
}

func (s *scene) AddShadow(sh Shadow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shadows = append(s.shadows, sh)
}

func (s *scene) AddQuad(q Quad) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quads = append(s.quads, q)
}

func (s *scene) AddGlyph(g Glyph) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.glyphs = append(s.glyphs, g)
}

func (s *scene) AddSVG(v SVG) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.svgs = append(s.svgs, v)
}

func (s *scene) AddImage(img Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images = append(s.images, img)
}

func (s *scene) Shadows() []Shadow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shadows
}

func (s *scene) Quads() []Quad {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quads
}

func (s *scene) Glyphs() []Glyph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.glyphs
}

func (s *scene) SVGs() []SVG {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.svgs
}

func (s *scene) Images() []Image {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.images
}

func (s *scene) Count(k Kind) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch k {
	case KindShadow:
		return len(s.shadows)
	case KindQuad:
		return len(s.quads)
	case KindGlyph:
		return len(s.glyphs)
	case KindSVG:
		return len(s.svgs)
	case KindImage:
		return len(s.images)
	default:
		return 0
	}
}

func (s *scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.shadows) + len(s.quads) + len(s.glyphs) + len(s.svgs) + len(s.images)
}

func (s *scene) AppendFrom(src Scene) {
	// Read src through its accessors so its own lock discipline applies, then
	// append under our lock. Self-append would deadlock on an RWMutex, so it
	// is rejected outright.
	if src == nil || src == Scene(s) {
		return
	}
	shadows := src.Shadows()
	quads := src.Quads()
	glyphs := src.Glyphs()
	svgs := src.SVGs()
	images := src.Images()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.shadows = append(s.shadows, shadows...)
	s.quads = append(s.quads, quads...)
	s.glyphs = append(s.glyphs, glyphs...)
	s.svgs = append(s.svgs, svgs...)
	s.images = append(s.images, images...)
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shadows = s.shadows[:0]
	s.quads = s.quads[:0]
	s.glyphs = s.glyphs[:0]
	s.svgs = s.svgs[:0]
	s.images = s.images[:0]
}

func (s *scene) Batches() *BatchIterator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newBatchIterator([kindCount]int{
		len(s.shadows),
		len(s.quads),
		len(s.glyphs),
		len(s.svgs),
		len(s.images),
	})
}

// unboundedClip substitutes the unbounded sentinel for clip rectangles that
// are empty or inverted, so unclipped primitives are never zero-area culled.
func unboundedClip(clip common.Rect) common.Rect {
	if clip.Empty() {
		return common.UnboundedRect()
	}
	return clip
}
