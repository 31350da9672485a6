package scene

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithActive sets whether the scene is composited by the engine.
// Scenes start active by default.
//
// Parameters:
//   - active: whether the scene is active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithZ sets the scene's layer index. The engine composites active scenes in
// ascending Z order each frame, so higher layers draw over lower ones.
// Defaults to 0.
//
// Parameters:
//   - z: the layer index
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithZ(z int) SceneBuilderOption {
	return func(s *scene) {
		s.z = z
	}
}

// WithShadowCapacity pre-allocates the shadow list so a scene that settles at
// a known size never grows it at frame time.
//
// Parameters:
//   - n: the initial capacity in primitives
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithShadowCapacity(n int) SceneBuilderOption {
	return func(s *scene) {
		if n > 0 {
			s.shadows = make([]Shadow, 0, n)
		}
	}
}

// WithQuadCapacity pre-allocates the quad list.
//
// Parameters:
//   - n: the initial capacity in primitives
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithQuadCapacity(n int) SceneBuilderOption {
	return func(s *scene) {
		if n > 0 {
			s.quads = make([]Quad, 0, n)
		}
	}
}

// WithGlyphCapacity pre-allocates the glyph list. Text-heavy interfaces
// typically want this near their steady-state glyph count.
//
// Parameters:
//   - n: the initial capacity in primitives
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithGlyphCapacity(n int) SceneBuilderOption {
	return func(s *scene) {
		if n > 0 {
			s.glyphs = make([]Glyph, 0, n)
		}
	}
}

// WithSVGCapacity pre-allocates the svg list.
//
// Parameters:
//   - n: the initial capacity in primitives
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithSVGCapacity(n int) SceneBuilderOption {
	return func(s *scene) {
		if n > 0 {
			s.svgs = make([]SVG, 0, n)
		}
	}
}

// WithImageCapacity pre-allocates the image list.
//
// Parameters:
//   - n: the initial capacity in primitives
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithImageCapacity(n int) SceneBuilderOption {
	return func(s *scene) {
		if n > 0 {
			s.images = make([]Image, 0, n)
		}
	}
}
