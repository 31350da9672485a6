package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-ui/engine/atlas"
	"github.com/Carmen-Shannon/oxy-ui/engine/renderer"
	"github.com/Carmen-Shannon/oxy-ui/engine/scene"
	"github.com/Carmen-Shannon/oxy-ui/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithTickRate sets the engine tick rate in ticks per second.
// The tick callback will be called at this rate for application logic updates.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.engineTickRate = time.Second / time.Duration(fps)
	}
}

// WithWindow sets a custom configured window for the engine to use rather than allowing the engine
// to create and manage one internally.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderer sets the renderer the engine drives. The engine draws the
// composite scene through it once per frame and forwards window resizes to it.
//
// Parameters:
//   - r: a pre-configured Renderer instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithScene registers a scene at the given z-layer key during engine construction.
// Scenes are composited in ascending key order during the render loop.
//
// Parameters:
//   - key: the z-layer determining composite order (lower composites first)
//   - s: the Scene to register
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(key int, s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		if s != nil {
			s.SetZ(key)
		}
		e.scenes[key] = s
	}
}

// WithAtlas registers a CPU staging atlas for an atlas-backed kind during
// engine construction. The render loop re-uploads the canvas to the GPU
// whenever its generation changes.
//
// Parameters:
//   - kind: the atlas-backed kind (glyph, svg, or image)
//   - a: the staging atlas
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithAtlas(kind scene.Kind, a atlas.Atlas) EngineBuilderOption {
	return func(e *engine) {
		if a == nil {
			return
		}
		e.atlases[kind] = a
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Second / time.Duration(fps)
	}
}
