package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSliceToBytes(t *testing.T) {
	// One float32: 1.0 is 0x3F800000, little-endian on every supported target.
	got := SliceToBytes([]float32{1.0})
	require.Len(t, got, 4)
	assert.Equal(t, []byte{0x00, 0x00, 0x80, 0x3F}, got)

	assert.Nil(t, SliceToBytes([]float32{}))
	assert.Nil(t, SliceToBytes[float32](nil))

	assert.Len(t, SliceToBytes([]float32{1, 2, 3}), 12)
	assert.Len(t, SliceToBytes([]uint64{1, 2}), 16)
}

func TestSliceToBytesSharesMemory(t *testing.T) {
	data := []uint32{0xAABBCCDD}
	view := SliceToBytes(data)
	require.Len(t, view, 4)

	data[0] = 0x11223344
	assert.Equal(t, []byte{0x44, 0x33, 0x22, 0x11}, view)
}

func TestStructToBytes(t *testing.T) {
	type record struct {
		A uint32
		B float32
	}
	r := record{A: 0x01020304, B: 1.0}
	got := StructToBytes(&r)

	require.Len(t, got, 8)
	assert.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, got[:4])
	assert.Equal(t, []byte{0x00, 0x00, 0x80, 0x3F}, got[4:])
}

func TestPhysicalSize(t *testing.T) {
	w, h := PhysicalSize(1280, 720, 1.0)
	assert.Equal(t, 1280, w)
	assert.Equal(t, 720, h)

	w, h = PhysicalSize(1280, 720, 1.5)
	assert.Equal(t, 1920, w)
	assert.Equal(t, 1080, h)

	w, h = PhysicalSize(1280, 720, 2.0)
	assert.Equal(t, 2560, w)
	assert.Equal(t, 1440, h)

	// Fractional results round half away from zero: 853 * 1.5 = 1279.5.
	w, _ = PhysicalSize(853, 480, 1.5)
	assert.Equal(t, 1280, w)

	w, h = PhysicalSize(0, 0, 2.0)
	assert.Equal(t, 0, w)
	assert.Equal(t, 0, h)

	// Consecutive resizes carry no state: the extent after a second call
	// depends only on the second call's logical size and scale.
	PhysicalSize(1280, 720, 1.0)
	w, h = PhysicalSize(640, 360, 2.5)
	assert.Equal(t, 1600, w)
	assert.Equal(t, 900, h)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, float32(5), Clamp(5, 0, 10))
	assert.Equal(t, float32(0), Clamp(-3, 0, 10))
	assert.Equal(t, float32(10), Clamp(42, 0, 10))
	assert.Equal(t, float32(0), Clamp(0, 0, 10))
	assert.Equal(t, float32(10), Clamp(10, 0, 10))
}

func TestLerp(t *testing.T) {
	assert.Equal(t, float32(0), Lerp(0, 10, 0))
	assert.Equal(t, float32(10), Lerp(0, 10, 1))
	assert.Equal(t, float32(5), Lerp(0, 10, 0.5))
	assert.Equal(t, float32(-5), Lerp(-10, 0, 0.5))
}
