package atlas

// AtlasOption is a functional option applied to an atlas during construction via NewAtlas.
type AtlasOption func(*atlas)

// WithRegionPadding sets the gap in pixels the allocator keeps between
// regions. Defaults to 1. Negative values are treated as 0.
//
// Parameters:
//   - padding: the gap in pixels
//
// Returns:
//   - AtlasOption: a function that applies the padding option to an atlas
func WithRegionPadding(padding int) AtlasOption {
	return func(a *atlas) {
		if padding < 0 {
			padding = 0
		}
		a.padding = padding
	}
}

// WithBlitWorkers sets the number of worker goroutines used by BlitBatch.
// Defaults to runtime.NumCPU()-1. Values below 1 are clamped to 1.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - AtlasOption: a function that applies the worker count option to an atlas
func WithBlitWorkers(n int) AtlasOption {
	return func(a *atlas) {
		if n < 1 {
			n = 1
		}
		a.blitWorkers = n
	}
}
