package renderer

import "errors"

var (
	// ErrNotInitialized is returned when an operation requires a renderer
	// that has completed initialization.
	ErrNotInitialized = errors.New("renderer: not initialized")

	// ErrDestroyed is returned when an operation is attempted after Destroy.
	ErrDestroyed = errors.New("renderer: destroyed")

	// ErrInstanceCreation is returned when the WebGPU instance cannot be created.
	ErrInstanceCreation = errors.New("renderer: instance creation failed")

	// ErrSurfaceCreation is returned when the window surface cannot be created.
	ErrSurfaceCreation = errors.New("renderer: surface creation failed")

	// ErrAdapterRequest is returned when no suitable GPU adapter is available.
	ErrAdapterRequest = errors.New("renderer: adapter request failed")

	// ErrDeviceRequest is returned when the logical device cannot be created.
	ErrDeviceRequest = errors.New("renderer: device request failed")

	// ErrSurfaceConfig is returned when the surface cannot be configured for
	// presentation.
	ErrSurfaceConfig = errors.New("renderer: surface configuration failed")

	// ErrTextureCreation is returned when a texture cannot be created.
	ErrTextureCreation = errors.New("renderer: texture creation failed")

	// ErrPipelineCreation is returned when a render pipeline cannot be created.
	ErrPipelineCreation = errors.New("renderer: pipeline creation failed")

	// ErrBufferCreation is returned when a GPU buffer cannot be created.
	ErrBufferCreation = errors.New("renderer: buffer creation failed")

	// ErrBindGroupCreation is returned when a bind group or bind group layout
	// cannot be created.
	ErrBindGroupCreation = errors.New("renderer: bind group creation failed")

	// ErrSamplerCreation is returned when the shared sampler cannot be created.
	ErrSamplerCreation = errors.New("renderer: sampler creation failed")

	// ErrShaderModule is returned when a WGSL shader module cannot be compiled.
	ErrShaderModule = errors.New("renderer: shader module creation failed")

	// ErrAtlasKind is returned when an atlas upload names a kind that has no
	// atlas texture.
	ErrAtlasKind = errors.New("renderer: kind has no atlas")

	// ErrAtlasSize is returned when an atlas upload's pixel data does not
	// match the stated dimensions.
	ErrAtlasSize = errors.New("renderer: atlas pixel data does not match dimensions")
)
