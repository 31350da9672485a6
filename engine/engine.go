package engine

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-ui/common"
	"github.com/Carmen-Shannon/oxy-ui/engine/atlas"
	"github.com/Carmen-Shannon/oxy-ui/engine/profiler"
	"github.com/Carmen-Shannon/oxy-ui/engine/renderer"
	"github.com/Carmen-Shannon/oxy-ui/engine/scene"
	"github.com/Carmen-Shannon/oxy-ui/engine/window"
)

// engine implements the Engine interface.
// Coordinates tick, render, and window threads.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window   window.Window
	renderer renderer.Renderer

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)

	// mu guards scenes, atlases, and uploadedGen against concurrent access
	// from the tick and render goroutines.
	mu     sync.Mutex
	scenes map[int]scene.Scene

	// composite is the per-frame scene the active layers are concatenated
	// into, reused every frame to avoid allocations.
	composite scene.Scene

	// atlases holds the registered CPU staging atlas per atlas-backed kind;
	// uploadedGen remembers the generation last pushed to the GPU so the
	// render loop only uploads when a canvas actually changed.
	atlases     map[scene.Kind]atlas.Atlas
	uploadedGen map[scene.Kind]uint64

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
}

// Engine is the main entry point for the compositor.
// It orchestrates the tick loop, render loop, and window management.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the renderer drawing the engine's scenes.
	//
	// Returns:
	//   - renderer.Renderer: the renderer instance
	Renderer() renderer.Renderer

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in ticks per second.
	// The tick callback will be called at this rate for application logic updates.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick.
	// Use this for application logic, input processing, and animation updates.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called each render frame,
	// after the frame has been drawn. Use this for per-frame scene updates.
	//
	// Parameters:
	//   - callback: function to call each render frame, receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// AddScene registers a scene at the given z-layer key. Each frame the
	// active layers are concatenated in ascending key order into one
	// composite scene, preserving each layer's paint order, and drawn with
	// a single render call.
	//
	// Parameters:
	//   - key: the z-layer determining composite order (lower composites first)
	//   - s: the Scene to register
	AddScene(key int, s scene.Scene)

	// RemoveScene removes the scene at the given z-layer key.
	//
	// Parameters:
	//   - key: the z-layer of the scene to remove
	RemoveScene(key int)

	// Scene retrieves the scene registered at the given z-layer key.
	// Returns nil if no scene exists at that key.
	//
	// Parameters:
	//   - key: the z-layer of the scene to retrieve
	//
	// Returns:
	//   - scene.Scene: the scene at the key, or nil if not found
	Scene(key int) scene.Scene

	// Scenes returns a copy of all registered scenes keyed by z-layer.
	//
	// Returns:
	//   - map[int]scene.Scene: a copy of the scenes map
	Scenes() map[int]scene.Scene

	// SetAtlas registers the CPU staging atlas backing one kind. The render
	// loop watches its generation and re-uploads the canvas to the GPU
	// whenever it changes. Pass nil to unregister.
	//
	// Parameters:
	//   - kind: the atlas-backed kind (glyph, svg, or image)
	//   - a: the staging atlas, or nil
	SetAtlas(kind scene.Kind, a atlas.Atlas)

	// Atlas retrieves the staging atlas registered for a kind.
	//
	// Parameters:
	//   - kind: the kind to look up
	//
	// Returns:
	//   - atlas.Atlas: the registered atlas, or nil if none
	Atlas(kind scene.Kind) atlas.Atlas

	// Run starts the main engine loop (blocks until the window closes).
	// All engine goroutines have exited by the time Run returns, so the
	// caller can safely destroy the renderer afterward.
	Run()

	// Quit signals all engine goroutines to stop and shuts down the engine.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// Initializes channels and profiler with sensible defaults.
// Options are applied directly to the engine struct via the option-builder pattern.
//
// Parameters:
//   - options: functional options for engine configuration (window, renderer, profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel:  make(chan time.Duration, 1),
		quitChannel:      make(chan struct{}),
		scenes:           make(map[int]scene.Scene),
		composite:        scene.NewScene("composite"),
		atlases:          make(map[scene.Kind]atlas.Atlas),
		uploadedGen:      make(map[scene.Kind]uint64),
		running:          false,
		wg:               sync.WaitGroup{},
		profiler:         profiler.NewProfiler(),
		profilingEnabled: false,
		engineTickRate:   time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.window != nil {
		e.window.SetResizeCallback(func(width, height int, scale float32) {
			if e.renderer == nil {
				return
			}
			if err := e.renderer.Resize(width, height, scale); err != nil {
				log.Printf("renderer resize failed: %v", err)
			}
		})
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Run() {
	e.running = true
	e.handle()
	e.window.ProcessMessages()
	e.signalQuit()
	e.wg.Wait()
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running = false
		close(e.quitChannel)
	})
}

// handle launches the tick, render, and quit goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(3)
	go e.handleEngine()
	go e.handleRender()
	go e.handleQuit()
}

// handleEngine runs the fixed-rate engine tick loop in its own goroutine.
// Fires the tick callback at the configured tick rate and listens for dynamic rate changes
// via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs the uncapped (or frame-limited) render loop in its own goroutine.
// Each iteration re-uploads any stale atlas canvases, concatenates the active
// scenes in ascending z-layer order into the composite scene, and draws it
// with a single render call.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	// Recover from panics inside the render goroutine to avoid crashing the whole process.
	defer func() {
		if r := recover(); r != nil {
			log.Printf("render goroutine recovered from panic: %v", r)
			e.signalQuit()
		}
	}()

	lastRender := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
			now := time.Now()
			dt := float32(now.Sub(lastRender).Seconds())
			lastRender = now

			if e.renderer != nil {
				e.syncAtlases()

				counts, err := e.renderer.Render(e.assembleComposite())
				if err != nil {
					// Only lifecycle violations surface here; the renderer
					// is gone and the loop cannot continue.
					log.Printf("render failed: %v", err)
					e.signalQuit()
					return
				}
				if e.profilingEnabled && e.profiler != nil {
					e.profiler.RecordBatches(counts)
				}
			}

			if e.renderCallback != nil {
				e.renderCallback(dt)
			}

			if e.profilingEnabled && e.profiler != nil {
				e.profiler.Tick()
			}

			// Frame rate limiting
			if e.renderFrameLimit > 0 {
				elapsed := time.Since(lastRender)
				if remaining := e.renderFrameLimit - elapsed; remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

// handleQuit blocks until the quit channel is closed, then decrements the WaitGroup.
func (e *engine) handleQuit() {
	defer e.wg.Done()
	<-e.quitChannel
}

// syncAtlases pushes any staging atlas whose generation moved since its last
// upload to the GPU. Failed uploads are logged and retried next frame, since
// the recorded generation only advances on success.
func (e *engine) syncAtlases() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for kind, a := range e.atlases {
		if a == nil {
			continue
		}
		gen := a.Generation()
		if gen == e.uploadedGen[kind] {
			continue
		}
		staging := common.TextureStagingData{
			Pixels:   a.Pixels(),
			Width:    uint32(a.Width()),
			Height:   uint32(a.Height()),
			Channels: uint32(a.Channels()),
		}
		if err := e.renderer.UploadAtlas(kind, staging); err != nil {
			log.Printf("atlas upload for %s failed: %v", kind, err)
			continue
		}
		e.uploadedGen[kind] = gen
	}
}

// assembleComposite concatenates the active scenes in ascending z-layer
// order into the reused composite scene. Per-layer paint order is preserved
// inside the fixed category order.
func (e *engine) assembleComposite() scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.composite.Clear()

	keys := make([]int, 0, len(e.scenes))
	for k := range e.scenes {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	for _, k := range keys {
		s := e.scenes[k]
		if s != nil && s.Active() {
			e.composite.AppendFrom(s)
		}
	}
	return e.composite
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the engine tick rate in ticks per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Second / time.Duration(fps)

	if e.running {
		// Send to channel for immediate update in running engine loop
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			// Channel has a pending update, drain and send new value
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		// Engine not running, just update the field
		e.engineTickRate = newRate
	}
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

// SetRenderCallback registers the function called each render frame.
func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Second / time.Duration(fps)
}

func (e *engine) AddScene(key int, s scene.Scene) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if s != nil {
		s.SetZ(key)
	}
	e.scenes[key] = s
}

func (e *engine) RemoveScene(key int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.scenes, key)
}

func (e *engine) Scene(key int) scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scenes[key]
}

func (e *engine) Scenes() map[int]scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()

	cp := make(map[int]scene.Scene, len(e.scenes))
	for k, v := range e.scenes {
		cp[k] = v
	}
	return cp
}

func (e *engine) SetAtlas(kind scene.Kind, a atlas.Atlas) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if a == nil {
		delete(e.atlases, kind)
		delete(e.uploadedGen, kind)
		return
	}
	e.atlases[kind] = a
	// A fresh registration uploads on the next frame the canvas mutates
	// (or immediately, when it was blitted before registration).
	delete(e.uploadedGen, kind)
}

func (e *engine) Atlas(kind scene.Kind) atlas.Atlas {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.atlases[kind]
}
