package atlas

// AllocatorOption is a functional option applied to an allocator during construction via NewAllocator.
type AllocatorOption func(*allocator)

// WithPadding sets the gap in pixels kept between allocated regions and
// between shelves. The default is 1, which is enough to keep linear texture
// sampling from bleeding across neighboring regions. Negative values are
// treated as 0.
//
// Parameters:
//   - padding: the gap in pixels
//
// Returns:
//   - AllocatorOption: a function that applies the padding option to an allocator
func WithPadding(padding int) AllocatorOption {
	return func(a *allocator) {
		if padding < 0 {
			padding = 0
		}
		a.padding = padding
	}
}
