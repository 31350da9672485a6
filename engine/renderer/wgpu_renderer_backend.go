package renderer

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-ui/common"
	"github.com/Carmen-Shannon/oxy-ui/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-ui/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-ui/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-ui/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
)

// backendState tracks the renderer lifecycle. Transitions only move forward,
// except Rendering and Resizing, which always return to Initialized.
type backendState int

const (
	stateUninitialized backendState = iota
	stateInitialized
	stateRendering
	stateResizing
	stateDestroyed
)

// Bind group binding indices, shared by all four pipeline families. The flat
// family only populates the first two; atlas families use all four.
const (
	bindingViewport = 0
	bindingRecords  = 1
	bindingAtlas    = 2
	bindingSampler  = 3
)

// viewportUniformSize is the byte size of the viewport uniform: the logical
// surface size as two floats, padded to 16 bytes.
const viewportUniformSize = 16

// slotConfigs describes the four pipeline families, indexed by buffer slot.
// The label doubles as the shader key and GPU object label prefix.
var slotConfigs = [slotCount]struct {
	label    string
	source   string
	stride   int
	capacity int
}{
	slotPrimitive: {"flat", shader.FlatSource, scene.GPUPrimitiveStride, scene.PrimitiveBufferCapacity},
	slotGlyph:     {"text", shader.TextSource, scene.GPUGlyphStride, scene.GlyphBufferCapacity},
	slotSVG:       {"svg", shader.SVGSource, scene.GPUSVGStride, scene.SVGBufferCapacity},
	slotImage:     {"image", shader.ImageSource, scene.GPUImageStride, scene.ImageBufferCapacity},
}

// atlasSlot maps an atlas-backed kind to its buffer slot.
//
// Parameters:
//   - kind: the kind to map
//
// Returns:
//   - int: the buffer slot for the kind
//   - bool: false when the kind has no atlas (shadows and quads)
func atlasSlot(kind scene.Kind) (int, bool) {
	switch kind {
	case scene.KindGlyph:
		return slotGlyph, true
	case scene.KindSVG:
		return slotSVG, true
	case scene.KindImage:
		return slotImage, true
	default:
		return 0, false
	}
}

// atlasFormat returns the texture format and bytes per pixel for a slot's
// atlas. The text atlas is single-channel coverage; svg and image atlases
// are full RGBA.
//
// Parameters:
//   - slot: the buffer slot
//
// Returns:
//   - wgpu.TextureFormat: the atlas texture format
//   - int: bytes per pixel
func atlasFormat(slot int) (wgpu.TextureFormat, int) {
	if slot == slotGlyph {
		return wgpu.TextureFormatR8Unorm, 1
	}
	return wgpu.TextureFormatRGBA8Unorm, 4
}

type wgpuRendererBackendImpl struct {
	mu    *sync.Mutex
	state backendState

	// Construction-time config, applied during Init.
	surfaceDescriptor    *wgpu.SurfaceDescriptor
	forceFallbackAdapter bool
	preferredSamples     MSAASampleCount

	instance *wgpu.Instance
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	surfaceFormat wgpu.TextureFormat
	alphaMode     wgpu.CompositeAlphaMode
	presentMode   wgpu.PresentMode // defaults to PresentModeImmediate (Uncapped)
	clearColor    wgpu.Color
	sampleCount   MSAASampleCount // effective count after the init probe

	msaaTexture          *wgpu.Texture
	msaaTextureView      *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	// Logical size is what primitives are authored in and what the viewport
	// uniform carries; physical size is logical scaled by the content scale
	// and is what the surface is configured at.
	logicalWidth, logicalHeight   int
	physicalWidth, physicalHeight int
	scale                         float32

	uniformBuffer *wgpu.Buffer
	sampler       *wgpu.Sampler

	// Per-family GPU resources, indexed by buffer slot.
	providers [slotCount]bind_group_provider.BindGroupProvider
	pipelines [slotCount]pipeline.Pipeline
	modules   [slotCount]*wgpu.ShaderModule
	layouts   [slotCount]*wgpu.PipelineLayout

	atlasWidth, atlasHeight [slotCount]int
	atlasGeneration         [slotCount]uint64

	dispatcher *batchDispatcher
	slots      frameSlots
	stats      BatchCounts
}

type wgpuRendererBackend interface {
	// Init runs the full GPU bring-up chain: instance, surface, adapter,
	// device, queue, surface configuration at physical pixels, the MSAA
	// target probe, the cached render pass descriptor, upload and uniform
	// buffers, the shared sampler, per-family bind group layouts, the flat
	// bind group, and the four render pipelines. Atlas-backed families get
	// their bind groups on first UploadAtlas, not here.
	//
	// Any creation failure releases everything created so far and returns
	// the stage's sentinel error wrapped around the cause; nothing partial
	// is left behind.
	//
	// Parameters:
	//   - width: the logical surface width in pixels
	//   - height: the logical surface height in pixels
	//   - scale: the content scale factor (physical = logical * scale)
	//
	// Returns:
	//   - error: a wrapped stage sentinel if any GPU object could not be created
	Init(width, height int, scale float32) error

	// Render draws one frame: wait for the frame slot if its previous
	// submission may still be in flight, acquire the swapchain texture,
	// record the scene's batches through the dispatcher, submit, and
	// present. Per-frame failures (a lost or outdated swapchain texture,
	// an encoder failure) are logged and skipped, never returned; the frame
	// index advances regardless of outcome.
	//
	// Parameters:
	//   - s: the scene to draw
	//
	// Returns:
	//   - BatchCounts: what the frame drew, zero when the frame was skipped
	//   - error: ErrNotInitialized or ErrDestroyed on contract violations, otherwise nil
	Render(s scene.Scene) (BatchCounts, error)

	// Resize reconfigures the surface for a new logical size and content
	// scale. The viewport uniform is rewritten, the device drains, and the
	// surface, MSAA target, and render pass descriptor are rebuilt.
	// Pipelines, layouts, and buffers are untouched. Internal failures are
	// logged and leave the renderer degraded rather than returned.
	//
	// Parameters:
	//   - width: the new logical width in pixels
	//   - height: the new logical height in pixels
	//   - scale: the new content scale factor
	//
	// Returns:
	//   - error: ErrNotInitialized or ErrDestroyed on contract violations, otherwise nil
	Resize(width, height int, scale float32) error

	// UploadAtlas replaces the pixel contents of one kind's atlas texture.
	// Same-dimension uploads refresh the existing texture in place;
	// dimension changes recreate the texture and view. Either way the
	// kind's bind group is rebuilt, the upload completes synchronously,
	// and the kind's atlas generation is bumped.
	//
	// Parameters:
	//   - kind: the atlas-backed kind (glyph, svg, or image)
	//   - data: the staged pixels; Channels, when set, must match the kind's
	//     format (1 for glyph coverage, 4 for svg and image RGBA)
	//
	// Returns:
	//   - error: ErrAtlasKind for kinds without an atlas, ErrAtlasSize on pixel
	//     length or channel mismatches, a wrapped creation sentinel on GPU failures
	UploadAtlas(kind scene.Kind, data common.TextureStagingData) error

	// AtlasGeneration returns the upload generation of a kind's atlas,
	// starting at zero and bumped on every successful UploadAtlas. Kinds
	// without an atlas always report zero.
	//
	// Parameters:
	//   - kind: the kind to query
	//
	// Returns:
	//   - uint64: the current atlas generation
	AtlasGeneration(kind scene.Kind) uint64

	// Stats returns the cumulative batch counts across every rendered frame.
	//
	// Returns:
	//   - BatchCounts: totals since Init
	Stats() BatchCounts

	// SurfaceSize returns the current physical surface size in pixels.
	//
	// Returns:
	//   - int: the physical width
	//   - int: the physical height
	SurfaceSize() (int, int)

	// SetPresentMode sets the surface present mode which controls how frames
	// are delivered to the display. A Resize is required after changing this
	// for the new mode to take effect.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// SetClearColor sets the color the surface is cleared to at the start of
	// every frame.
	//
	// Parameters:
	//   - c: the clear color
	SetClearColor(c common.HSLA)

	// Destroy drains the device and releases every GPU resource in reverse
	// dependency order. Idempotent; all operations after Destroy reject
	// with ErrDestroyed.
	Destroy()
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount) wgpuRendererBackend {
	runtime.LockOSThread()
	return &wgpuRendererBackendImpl{
		mu:                   &sync.Mutex{},
		surfaceDescriptor:    surfaceDescriptor,
		forceFallbackAdapter: forceFallbackAdapter,
		preferredSamples:     sampleCount,
		presentMode:          wgpu.PresentModeImmediate,
		clearColor:           wgpu.Color{R: 0.1, G: 0.1, B: 0.1, A: 1.0},
		dispatcher:           newBatchDispatcher(),
	}
}

func (b *wgpuRendererBackendImpl) Init(width, height int, scale float32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case stateDestroyed:
		return ErrDestroyed
	case stateUninitialized:
	default:
		return nil
	}

	if err := b.initLocked(width, height, scale); err != nil {
		b.releaseLocked()
		return err
	}
	b.state = stateInitialized
	return nil
}

func (b *wgpuRendererBackendImpl) initLocked(width, height int, scale float32) error {
	b.logicalWidth, b.logicalHeight, b.scale = width, height, scale
	b.physicalWidth, b.physicalHeight = common.PhysicalSize(width, height, scale)

	b.instance = wgpu.CreateInstance(nil)
	if b.instance == nil {
		return ErrInstanceCreation
	}

	b.surface = b.instance.CreateSurface(b.surfaceDescriptor)
	if b.surface == nil {
		return ErrSurfaceCreation
	}

	adapter, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: b.forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAdapterRequest, err)
	}
	b.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeviceRequest, err)
	}
	b.device = device
	b.queue = device.GetQueue()

	capabilities := b.surface.GetCapabilities(adapter)
	if len(capabilities.Formats) == 0 || len(capabilities.AlphaModes) == 0 {
		return fmt.Errorf("%w: surface reports no usable formats", ErrSurfaceConfig)
	}
	b.surfaceFormat = capabilities.Formats[0]
	b.alphaMode = capabilities.AlphaModes[0]
	b.configureSurfaceLocked()

	b.probeMSAATargetLocked()
	b.buildRenderPassDescriptorLocked()

	if err := b.createSharedResourcesLocked(); err != nil {
		return err
	}
	if err := b.createProvidersLocked(); err != nil {
		return err
	}
	if err := b.createPipelinesLocked(); err != nil {
		return err
	}

	// The flat family has no atlas dependency, so its bind group exists from
	// the start; glyph, svg, and image wait for their first atlas upload.
	if err := b.buildBindGroupLocked(slotPrimitive); err != nil {
		return err
	}
	b.wireDispatcherLocked()
	b.writeViewportLocked()
	b.slots = frameSlots{}

	common.Logger().Info("renderer initialized",
		"physical_width", b.physicalWidth,
		"physical_height", b.physicalHeight,
		"scale", b.scale,
		"msaa_samples", uint32(b.sampleCount),
		"surface_format", uint32(b.surfaceFormat),
	)
	return nil
}

func (b *wgpuRendererBackendImpl) configureSurfaceLocked() {
	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(b.physicalWidth),
		Height:      uint32(b.physicalHeight),
		PresentMode: b.presentMode,
		AlphaMode:   b.alphaMode,
	})
}

func (b *wgpuRendererBackendImpl) msaaDescriptorLocked(count MSAASampleCount) *wgpu.TextureDescriptor {
	return &wgpu.TextureDescriptor{
		Label: "MSAA Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(b.physicalWidth),
			Height:             uint32(b.physicalHeight),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   uint32(count),
		Dimension:     wgpu.TextureDimension2D,
		Format:        b.surfaceFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	}
}

// probeMSAATargetLocked walks down from the preferred sample count until a
// color target can be created, disabling MSAA entirely as the final step.
// Each fallback is logged. The effective count lands in b.sampleCount, which
// the pipelines are then built against.
func (b *wgpuRendererBackendImpl) probeMSAATargetLocked() {
	for count := b.preferredSamples; count > 1; count = nextLowerSampleCount(count) {
		tex, err := b.device.CreateTexture(b.msaaDescriptorLocked(count))
		if err != nil {
			common.Logger().Warn("msaa target unavailable, falling back", "samples", uint32(count), "error", err)
			continue
		}
		view, err := tex.CreateView(nil)
		if err != nil {
			tex.Release()
			common.Logger().Warn("msaa target unavailable, falling back", "samples", uint32(count), "error", err)
			continue
		}
		b.sampleCount = count
		b.msaaTexture = tex
		b.msaaTextureView = view
		return
	}
	b.sampleCount = MSAAOff
	b.msaaTexture = nil
	b.msaaTextureView = nil
}

func nextLowerSampleCount(count MSAASampleCount) MSAASampleCount {
	switch {
	case count > MSAA4x:
		return MSAA4x
	case count > MSAA2x:
		return MSAA2x
	default:
		return MSAAOff
	}
}

// recreateMSAATargetLocked rebuilds the MSAA color target at the current
// physical size, keeping the sample count the pipelines were built against.
// On failure the old target stays in place so rendering degrades instead of
// crashing.
func (b *wgpuRendererBackendImpl) recreateMSAATargetLocked() {
	if b.sampleCount <= 1 {
		return
	}
	tex, err := b.device.CreateTexture(b.msaaDescriptorLocked(b.sampleCount))
	if err != nil {
		common.Logger().Error("msaa target recreation failed", "samples", uint32(b.sampleCount), "error", err)
		return
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		common.Logger().Error("msaa target recreation failed", "samples", uint32(b.sampleCount), "error", err)
		return
	}
	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
	}
	if b.msaaTexture != nil {
		b.msaaTexture.Release()
	}
	b.msaaTexture = tex
	b.msaaTextureView = view
}

// buildRenderPassDescriptorLocked caches the render pass descriptor for the
// main target. When MSAA is enabled, View is the MSAA texture and
// ResolveTarget is set per-frame to the swapchain view. When disabled, View
// is set per-frame to the swapchain view and ResolveTarget stays nil.
func (b *wgpuRendererBackendImpl) buildRenderPassDescriptorLocked() {
	storeOp := wgpu.StoreOpStore
	if b.sampleCount > 1 {
		storeOp = wgpu.StoreOpDiscard // Don't store MSAA data, just resolve
	}
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:          b.msaaTextureView, // nil when MSAA is off; set in Render
				ResolveTarget: nil,               // set per-frame when MSAA is on
				LoadOp:        wgpu.LoadOpClear,
				StoreOp:       storeOp,
				ClearValue:    b.clearColor,
			},
		},
	}
}

// atlasSamplerData is the sampler configuration shared by the three atlas
// families: clamped edges so region sampling never wraps into a neighbor,
// linear filtering for fractional-pixel placement, no mipmaps.
func atlasSamplerData() common.SamplerStagingData {
	return common.SamplerStagingData{
		AddressModeU: wgpu.AddressModeClampToEdge,
		AddressModeV: wgpu.AddressModeClampToEdge,
		AddressModeW: wgpu.AddressModeClampToEdge,
		MagFilter:    wgpu.FilterModeLinear,
		MinFilter:    wgpu.FilterModeLinear,
		MipmapFilter: wgpu.MipmapFilterModeNearest,
	}
}

// createSamplerLocked converts sampler staging data into a GPU sampler,
// coalescing unset fields to sensible defaults.
func (b *wgpuRendererBackendImpl) createSamplerLocked(label string, data common.SamplerStagingData) (*wgpu.Sampler, error) {
	return b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         label,
		AddressModeU:  common.Coalesce(data.AddressModeU, wgpu.AddressModeClampToEdge),
		AddressModeV:  common.Coalesce(data.AddressModeV, wgpu.AddressModeClampToEdge),
		AddressModeW:  common.Coalesce(data.AddressModeW, wgpu.AddressModeClampToEdge),
		MagFilter:     common.Coalesce(data.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(data.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  data.MipmapFilter,
		LodMinClamp:   data.LodMinClamp,
		LodMaxClamp:   common.Coalesce(data.LodMaxClamp, 32.0),
		MaxAnisotropy: common.Coalesce(data.MaxAnisotropy, 1),
		Compare:       data.Compare,
	})
}

func (b *wgpuRendererBackendImpl) createSharedResourcesLocked() error {
	uniform, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Viewport Uniform",
		Size:  viewportUniformSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBufferCreation, err)
	}
	b.uniformBuffer = uniform

	samp, err := b.createSamplerLocked("Atlas Sampler", atlasSamplerData())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSamplerCreation, err)
	}
	b.sampler = samp
	return nil
}

func (b *wgpuRendererBackendImpl) createProvidersLocked() error {
	for slot := range slotConfigs {
		cfg := slotConfigs[slot]

		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: cfg.label + " Records",
			Size:  uint64(cfg.capacity * cfg.stride),
			Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBufferCreation, err)
		}

		entries := []wgpu.BindGroupLayoutEntry{
			{
				Binding:    bindingViewport,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: viewportUniformSize,
				},
			},
			{
				Binding:    bindingRecords,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeReadOnlyStorage,
					MinBindingSize: uint64(cfg.stride),
				},
			},
		}
		if slot != slotPrimitive {
			entries = append(entries,
				wgpu.BindGroupLayoutEntry{
					Binding:    bindingAtlas,
					Visibility: wgpu.ShaderStageFragment,
					Texture: wgpu.TextureBindingLayout{
						SampleType:    wgpu.TextureSampleTypeFloat,
						ViewDimension: wgpu.TextureViewDimension2D,
					},
				},
				wgpu.BindGroupLayoutEntry{
					Binding:    bindingSampler,
					Visibility: wgpu.ShaderStageFragment,
					Sampler: wgpu.SamplerBindingLayout{
						Type: wgpu.SamplerBindingTypeFiltering,
					},
				},
			)
		}

		layout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label:   cfg.label + " Layout",
			Entries: entries,
		})
		if err != nil {
			buf.Release()
			return fmt.Errorf("%w: %w", ErrBindGroupCreation, err)
		}

		b.providers[slot] = bind_group_provider.NewBindGroupProvider(cfg.label,
			bind_group_provider.WithBindGroupLayout(layout),
			bind_group_provider.WithBuffer(bindingRecords, buf),
		)
	}
	return nil
}

func (b *wgpuRendererBackendImpl) createPipelinesLocked() error {
	for slot := range slotConfigs {
		cfg := slotConfigs[slot]
		p := pipeline.NewPipeline(cfg.label, shader.NewShader(cfg.label, cfg.source))
		s := p.Shader()

		module, err := b.device.CreateShaderModule(s.Module())
		if err != nil {
			return fmt.Errorf("%w: %w", ErrShaderModule, err)
		}
		b.modules[slot] = module

		layout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
			Label:            cfg.label + " Pipeline Layout",
			BindGroupLayouts: []*wgpu.BindGroupLayout{b.providers[slot].BindGroupLayout()},
		})
		if err != nil {
			return fmt.Errorf("%w: %w", ErrPipelineCreation, err)
		}
		b.layouts[slot] = layout

		created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
			Label:  cfg.label + " Render Pipeline",
			Layout: layout,
			Vertex: wgpu.VertexState{
				Module:     module,
				EntryPoint: s.EntryPoint(shader.ShaderTypeVertex),
				// No vertex buffers: records are pulled from the storage
				// buffer by vertex index.
			},
			Fragment: &wgpu.FragmentState{
				Module:     module,
				EntryPoint: s.EntryPoint(shader.ShaderTypeFragment),
				Targets: []wgpu.ColorTargetState{
					func() wgpu.ColorTargetState {
						state := wgpu.ColorTargetState{
							Format:    b.surfaceFormat,
							WriteMask: p.WriteMask(),
						}
						if p.BlendEnabled() {
							state.Blend = p.BlendState()
						}
						return state
					}(),
				},
			},
			Primitive: wgpu.PrimitiveState{
				Topology:  p.Topology(),
				FrontFace: p.FrontFace(),
				CullMode:  p.CullMode(),
			},
			Multisample: wgpu.MultisampleState{
				Count: uint32(b.sampleCount),
				Mask:  0xFFFFFFFF,
			},
			// No depth attachment: paint order is the only ordering.
		})
		if err != nil {
			return fmt.Errorf("%w: %w", ErrPipelineCreation, err)
		}
		p.SetRenderPipeline(created)
		b.pipelines[slot] = p
	}
	return nil
}

// buildBindGroupLocked (re)creates one family's bind group from its current
// resources. Atlas families require their texture view to exist, which is
// why their bind groups are deferred to the first upload.
func (b *wgpuRendererBackendImpl) buildBindGroupLocked(slot int) error {
	provider := b.providers[slot]
	entries := []wgpu.BindGroupEntry{
		{
			Binding: bindingViewport,
			Buffer:  b.uniformBuffer,
			Offset:  0,
			Size:    wgpu.WholeSize,
		},
		{
			Binding: bindingRecords,
			Buffer:  provider.Buffer(bindingRecords),
			Offset:  0,
			Size:    wgpu.WholeSize,
		},
	}
	if slot != slotPrimitive {
		view := provider.TextureView(bindingAtlas)
		if view == nil {
			return fmt.Errorf("%w: %s atlas has no texture", ErrBindGroupCreation, slotConfigs[slot].label)
		}
		entries = append(entries,
			wgpu.BindGroupEntry{Binding: bindingAtlas, TextureView: view},
			wgpu.BindGroupEntry{Binding: bindingSampler, Sampler: b.sampler},
		)
	}

	group, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label() + " Bind Group",
		Layout:  provider.BindGroupLayout(),
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBindGroupCreation, err)
	}
	if old := provider.BindGroup(); old != nil {
		old.Release()
	}
	provider.SetBindGroup(group)
	return nil
}

// wireDispatcherLocked installs every kind's draw resources on the
// dispatcher. Shadows and quads share the primitive slot's resources, so
// they receive the same pipeline, buffer, and arena.
func (b *wgpuRendererBackendImpl) wireDispatcherLocked() {
	for slot := range slotConfigs {
		cfg := slotConfigs[slot]
		res := kindResources{
			pipeline:  b.pipelines[slot].Pipeline(),
			bindGroup: b.providers[slot].BindGroup(), // nil for atlas slots until first upload
			buffer:    b.providers[slot].Buffer(bindingRecords),
			arena:     make([]byte, cfg.capacity*cfg.stride),
			stride:    cfg.stride,
			capacity:  cfg.capacity,
			slot:      slot,
		}
		switch slot {
		case slotPrimitive:
			b.dispatcher.setKind(scene.KindShadow, res)
			b.dispatcher.setKind(scene.KindQuad, res)
		case slotGlyph:
			b.dispatcher.setKind(scene.KindGlyph, res)
		case slotSVG:
			b.dispatcher.setKind(scene.KindSVG, res)
		case slotImage:
			b.dispatcher.setKind(scene.KindImage, res)
		}
	}
}

// writeViewportLocked uploads the logical surface size into the viewport
// uniform. The shaders divide by it to reach NDC, so it carries logical
// pixels, not physical.
func (b *wgpuRendererBackendImpl) writeViewportLocked() {
	data := common.SliceToBytes([]float32{float32(b.logicalWidth), float32(b.logicalHeight), 0, 0})
	if err := b.queue.WriteBuffer(b.uniformBuffer, 0, data); err != nil {
		common.Logger().Error("viewport uniform write failed", "error", err)
	}
}

func (b *wgpuRendererBackendImpl) Render(s scene.Scene) (BatchCounts, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case stateDestroyed:
		return BatchCounts{}, ErrDestroyed
	case stateUninitialized:
		return BatchCounts{}, ErrNotInitialized
	}
	b.state = stateRendering
	defer func() { b.state = stateInitialized }()

	// A slot that was never submitted has nothing to wait on; one that was
	// may still be in flight on the GPU.
	if b.slots.NeedsWait() {
		b.device.Poll(true, nil)
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		common.Logger().Warn("surface texture unavailable, skipping frame", "error", err)
		b.slots.Advance(false)
		return BatchCounts{}, nil
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		common.Logger().Warn("surface view creation failed, skipping frame", "error", err)
		b.slots.Advance(false)
		return BatchCounts{}, nil
	}
	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		common.Logger().Warn("command encoder creation failed, skipping frame", "error", err)
		b.slots.Advance(false)
		return BatchCounts{}, nil
	}

	if b.sampleCount > 1 {
		b.renderPassDescriptor.ColorAttachments[0].ResolveTarget = view
	} else {
		b.renderPassDescriptor.ColorAttachments[0].View = view
	}
	pass := encoder.BeginRenderPass(b.renderPassDescriptor)
	pass.SetViewport(0, 0, float32(b.physicalWidth), float32(b.physicalHeight), 0, 1)
	pass.SetScissorRect(0, 0, uint32(b.physicalWidth), uint32(b.physicalHeight))
	counts := b.dispatcher.DrawScene(pass, b.queue, s)
	pass.End()
	pass.Release() // must happen before Finish

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		encoder.Release()
		view.Release()
		surfaceTexture.Release()
		common.Logger().Error("command encoder finish failed, skipping frame", "error", err)
		b.slots.Advance(false)
		return BatchCounts{}, nil
	}

	b.queue.Submit(commandBuffer)
	b.surface.Present()

	commandBuffer.Release()
	encoder.Release()
	view.Release()
	surfaceTexture.Release()

	b.slots.Advance(true)
	b.stats.Merge(counts)
	return counts, nil
}

func (b *wgpuRendererBackendImpl) Resize(width, height int, scale float32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case stateDestroyed:
		return ErrDestroyed
	case stateUninitialized:
		return ErrNotInitialized
	}
	b.state = stateResizing
	defer func() { b.state = stateInitialized }()

	b.logicalWidth, b.logicalHeight, b.scale = width, height, scale
	b.physicalWidth, b.physicalHeight = common.PhysicalSize(width, height, scale)
	if b.physicalWidth <= 0 || b.physicalHeight <= 0 {
		// Minimized window; keep the old surface until a real size arrives.
		return nil
	}
	b.writeViewportLocked()

	// In-flight frames must drain before the swapchain and MSAA target are
	// swapped out from under them.
	b.device.Poll(true, nil)
	b.configureSurfaceLocked()
	b.recreateMSAATargetLocked()
	b.buildRenderPassDescriptorLocked()
	return nil
}

func (b *wgpuRendererBackendImpl) UploadAtlas(kind scene.Kind, data common.TextureStagingData) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case stateDestroyed:
		return ErrDestroyed
	case stateUninitialized:
		return ErrNotInitialized
	}

	slot, ok := atlasSlot(kind)
	if !ok {
		return fmt.Errorf("%w: %s", ErrAtlasKind, kind)
	}
	format, bpp := atlasFormat(slot)
	width, height := int(data.Width), int(data.Height)
	if data.Channels != 0 && int(data.Channels) != bpp {
		return fmt.Errorf("%w: %d channels for a %d bytes/px atlas", ErrAtlasSize, data.Channels, bpp)
	}
	if width <= 0 || height <= 0 || len(data.Pixels) != width*height*bpp {
		return fmt.Errorf("%w: %d bytes for %dx%d at %d bytes/px", ErrAtlasSize, len(data.Pixels), width, height, bpp)
	}

	provider := b.providers[slot]
	if provider.Texture(bindingAtlas) == nil || b.atlasWidth[slot] != width || b.atlasHeight[slot] != height {
		// Dimension change: an in-flight frame may still sample the old
		// texture, so drain before releasing it.
		b.device.Poll(true, nil)
		provider.ReleaseTexture(bindingAtlas)

		tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label:     slotConfigs[slot].label + " Atlas",
			Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
			Dimension: wgpu.TextureDimension2D,
			Size: wgpu.Extent3D{
				Width:              uint32(width),
				Height:             uint32(height),
				DepthOrArrayLayers: 1,
			},
			Format:        format,
			MipLevelCount: 1,
			SampleCount:   1,
		})
		if err != nil {
			return fmt.Errorf("%w: %w", ErrTextureCreation, err)
		}
		view, err := tex.CreateView(nil)
		if err != nil {
			tex.Release()
			return fmt.Errorf("%w: %w", ErrTextureCreation, err)
		}
		provider.SetTexture(bindingAtlas, tex)
		provider.SetTextureView(bindingAtlas, view)
		b.atlasWidth[slot], b.atlasHeight[slot] = width, height
	}

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  provider.Texture(bindingAtlas),
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		data.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(width * bpp),
			RowsPerImage: uint32(height),
		},
		&wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
	)
	// The atlas must be resident before the next frame samples it.
	b.device.Poll(true, nil)

	if err := b.buildBindGroupLocked(slot); err != nil {
		b.dispatcher.setBindGroup(kind, nil)
		return err
	}
	b.dispatcher.setBindGroup(kind, provider.BindGroup())
	b.atlasGeneration[slot]++

	common.Logger().Debug("atlas uploaded",
		"kind", kind.String(),
		"width", width,
		"height", height,
		"generation", b.atlasGeneration[slot],
	)
	return nil
}

func (b *wgpuRendererBackendImpl) AtlasGeneration(kind scene.Kind) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	slot, ok := atlasSlot(kind)
	if !ok {
		return 0
	}
	return b.atlasGeneration[slot]
}

func (b *wgpuRendererBackendImpl) Stats() BatchCounts {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

func (b *wgpuRendererBackendImpl) SurfaceSize() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.physicalWidth, b.physicalHeight
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeVSync:
		b.presentMode = wgpu.PresentModeFifo
	case PresentModeUncapped:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeImmediate
	}
}

func (b *wgpuRendererBackendImpl) SetClearColor(c common.HSLA) {
	b.mu.Lock()
	defer b.mu.Unlock()

	r, g, bb, a := c.RGBA()
	b.clearColor = wgpu.Color{R: float64(r), G: float64(g), B: float64(bb), A: float64(a)}
	if b.renderPassDescriptor != nil {
		b.renderPassDescriptor.ColorAttachments[0].ClearValue = b.clearColor
	}
}

func (b *wgpuRendererBackendImpl) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == stateDestroyed {
		return
	}
	if b.device != nil {
		b.device.Poll(true, nil)
	}
	b.releaseLocked()
	b.state = stateDestroyed
}

// releaseLocked tears down every GPU resource in reverse dependency order:
// bind groups, pipelines, pipeline layouts, shader modules, bind group
// layouts, the sampler, atlas views and textures, record and uniform
// buffers, the MSAA target, then surface, device, adapter, and instance.
// Safe on partially initialized state; every release is nil-checked.
func (b *wgpuRendererBackendImpl) releaseLocked() {
	for _, p := range b.providers {
		if p == nil {
			continue
		}
		if bg := p.BindGroup(); bg != nil {
			bg.Release()
			p.SetBindGroup(nil)
		}
	}
	for slot, p := range b.pipelines {
		if p == nil {
			continue
		}
		if rp := p.Pipeline(); rp != nil {
			rp.Release()
			p.SetRenderPipeline(nil)
		}
		b.pipelines[slot] = nil
	}
	for slot, l := range b.layouts {
		if l != nil {
			l.Release()
			b.layouts[slot] = nil
		}
	}
	for slot, m := range b.modules {
		if m != nil {
			m.Release()
			b.modules[slot] = nil
		}
	}
	for _, p := range b.providers {
		if p == nil {
			continue
		}
		if bgl := p.BindGroupLayout(); bgl != nil {
			bgl.Release()
			p.SetBindGroupLayout(nil)
		}
	}
	if b.sampler != nil {
		b.sampler.Release()
		b.sampler = nil
	}
	for slot, p := range b.providers {
		if p == nil {
			continue
		}
		p.ReleaseTexture(bindingAtlas)
		p.Release() // remaining record buffers
		b.providers[slot] = nil
	}
	if b.uniformBuffer != nil {
		b.uniformBuffer.Release()
		b.uniformBuffer = nil
	}
	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTextureView = nil
	}
	if b.msaaTexture != nil {
		b.msaaTexture.Release()
		b.msaaTexture = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
	b.queue = nil
	b.renderPassDescriptor = nil
	b.dispatcher = newBatchDispatcher()
	b.atlasWidth = [slotCount]int{}
	b.atlasHeight = [slotCount]int{}
}
