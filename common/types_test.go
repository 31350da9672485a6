package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRect(t *testing.T) {
	r := NewRect(10, 20, 100, 50)
	assert.Equal(t, float32(10), r.X)
	assert.Equal(t, float32(20), r.Y)
	assert.Equal(t, float32(100), r.Width)
	assert.Equal(t, float32(50), r.Height)
	assert.Equal(t, float32(110), r.MaxX())
	assert.Equal(t, float32(70), r.MaxY())
}

func TestRectEmpty(t *testing.T) {
	assert.True(t, Rect{}.Empty())
	assert.True(t, NewRect(0, 0, 0, 10).Empty())
	assert.True(t, NewRect(0, 0, 10, 0).Empty())
	assert.True(t, NewRect(0, 0, -5, 10).Empty())
	assert.True(t, NewRect(0, 0, 10, -5).Empty())
	assert.False(t, NewRect(0, 0, 1, 1).Empty())
}

func TestUnboundedRect(t *testing.T) {
	u := UnboundedRect()
	assert.True(t, u.Unbounded())
	assert.False(t, u.Empty())

	// Realistic rectangles are never mistaken for the sentinel.
	assert.False(t, NewRect(0, 0, 8192, 8192).Unbounded())
	assert.False(t, Rect{}.Unbounded())

	// The sentinel comfortably contains any on-screen point.
	assert.True(t, u.Contains(0, 0))
	assert.True(t, u.Contains(-10000, 10000))
}

func TestRectContains(t *testing.T) {
	r := NewRect(10, 10, 20, 20)

	assert.True(t, r.Contains(15, 15))
	// Top-left edge is inside, bottom-right edge is not.
	assert.True(t, r.Contains(10, 10))
	assert.False(t, r.Contains(30, 30))
	assert.False(t, r.Contains(29.9, 30))
	assert.True(t, r.Contains(29.9, 29.9))

	assert.False(t, r.Contains(9, 15))
	assert.False(t, r.Contains(15, 31))
}

func TestRectIntersect(t *testing.T) {
	a := NewRect(0, 0, 100, 100)
	b := NewRect(50, 50, 100, 100)

	got := a.Intersect(b)
	assert.Equal(t, NewRect(50, 50, 50, 50), got)

	// Intersection is commutative.
	assert.Equal(t, got, b.Intersect(a))

	// Containment returns the smaller rectangle.
	inner := NewRect(25, 25, 10, 10)
	assert.Equal(t, inner, a.Intersect(inner))

	// Disjoint rectangles intersect to an empty result.
	far := NewRect(500, 500, 10, 10)
	assert.True(t, a.Intersect(far).Empty())
}

func TestNewHSLA(t *testing.T) {
	c := NewHSLA(210, 0.5, 0.25, 0.8)
	assert.Equal(t, float32(210), c.H)
	assert.Equal(t, float32(0.5), c.S)
	assert.Equal(t, float32(0.25), c.L)
	assert.Equal(t, float32(0.8), c.A)
}

func TestHSLAToRGBA(t *testing.T) {
	cases := []struct {
		name       string
		in         HSLA
		r, g, b, a float32
	}{
		{"red", NewHSLA(0, 1, 0.5, 1), 1, 0, 0, 1},
		{"yellow", NewHSLA(60, 1, 0.5, 1), 1, 1, 0, 1},
		{"green", NewHSLA(120, 1, 0.5, 1), 0, 1, 0, 1},
		{"cyan", NewHSLA(180, 1, 0.5, 1), 0, 1, 1, 1},
		{"blue", NewHSLA(240, 1, 0.5, 1), 0, 0, 1, 1},
		{"magenta", NewHSLA(300, 1, 0.5, 1), 1, 0, 1, 1},
		{"white", NewHSLA(0, 0, 1, 1), 1, 1, 1, 1},
		{"black", NewHSLA(0, 0, 0, 1), 0, 0, 0, 1},
		{"gray", NewHSLA(0, 0, 0.5, 1), 0.5, 0.5, 0.5, 1},
		{"translucent", NewHSLA(120, 1, 0.5, 0.25), 0, 1, 0, 0.25},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, g, b, a := tc.in.RGBA()
			assert.InDelta(t, tc.r, r, 1e-5)
			assert.InDelta(t, tc.g, g, 1e-5)
			assert.InDelta(t, tc.b, b, 1e-5)
			assert.InDelta(t, tc.a, a, 1e-5)
		})
	}
}

func TestHSLAHueWraps(t *testing.T) {
	// 480 degrees is one full turn past 120; both are green.
	r1, g1, b1, _ := NewHSLA(480, 1, 0.5, 1).RGBA()
	r2, g2, b2, _ := NewHSLA(120, 1, 0.5, 1).RGBA()
	assert.InDelta(t, r2, r1, 1e-5)
	assert.InDelta(t, g2, g1, 1e-5)
	assert.InDelta(t, b2, b1, 1e-5)

	// Negative hues wrap upward.
	r3, g3, b3, _ := NewHSLA(-240, 1, 0.5, 1).RGBA()
	assert.InDelta(t, r2, r3, 1e-5)
	assert.InDelta(t, g2, g3, 1e-5)
	assert.InDelta(t, b2, b3, 1e-5)
}
