package common

import (
	"unsafe"

	"github.com/chewxy/math32"
)

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// StructToBytes reinterprets a pointer to a struct as a raw byte slice using unsafe.
// The returned slice has length equal to the struct's size in memory.
//
// Parameters:
//   - v: pointer to the struct to reinterpret
//
// Returns:
//   - []byte: byte slice view of the struct's memory
func StructToBytes[T any](v *T) []byte {
	size := unsafe.Sizeof(*v)
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), int(size))
}

// PhysicalSize converts a logical size and a DPI scale factor to physical
// pixels. Each axis is rounded half away from zero, so a 1279.5 px result
// becomes 1280. This is the single rounding rule used for surface sizing;
// resize reporting and surface configuration must agree on it.
//
// Parameters:
//   - width, height: logical size in logical pixels
//   - scale: DPI scale factor (1.0 = no scaling)
//
// Returns:
//   - int: physical width in pixels
//   - int: physical height in pixels
func PhysicalSize(width, height int, scale float32) (int, int) {
	pw := int(math32.Round(float32(width) * scale))
	ph := int(math32.Round(float32(height) * scale))
	return pw, ph
}

// Clamp limits v to the range [lo, hi].
//
// Parameters:
//   - v: the value to clamp
//   - lo, hi: the inclusive bounds
//
// Returns:
//   - float32: v limited to [lo, hi]
func Clamp(v, lo, hi float32) float32 {
	return math32.Min(math32.Max(v, lo), hi)
}

// Lerp linearly interpolates between a and b by t in [0, 1].
//
// Parameters:
//   - a, b: the endpoints
//   - t: the interpolation factor
//
// Returns:
//   - float32: a + (b-a)*t
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}
