package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeySpace     = 32  // Spacebar (ASCII)
	KeyEsc       = 256 // Escape key (GLFW)
	KeyEnter     = 257 // Enter/Return key (GLFW)
	KeyTab       = 258 // Tab key (GLFW)
	KeyBackspace = 259 // Backspace key (GLFW)
	KeyDelete    = 261 // Delete key (GLFW)

	Key0 = 48 // 0 key (ASCII)
	Key1 = 49 // 1 key (ASCII)
	Key2 = 50 // 2 key (ASCII)
	Key3 = 51 // 3 key (ASCII)
	Key4 = 52 // 4 key (ASCII)
	Key5 = 53 // 5 key (ASCII)
	Key6 = 54 // 6 key (ASCII)
	Key7 = 55 // 7 key (ASCII)
	Key8 = 56 // 8 key (ASCII)
	Key9 = 57 // 9 key (ASCII)

	KeyA = 65 // A key (ASCII)
	KeyC = 67 // C key (ASCII)
	KeyV = 86 // V key (ASCII)
	KeyX = 88 // X key (ASCII)
	KeyZ = 90 // Z key (ASCII)
)

// Navigation and modifier keys used for focus traversal and text editing.
const (
	KeyRight    = 262 // Right arrow (GLFW)
	KeyLeft     = 263 // Left arrow (GLFW)
	KeyDown     = 264 // Down arrow (GLFW)
	KeyUp       = 265 // Up arrow (GLFW)
	KeyPageUp   = 266 // Page Up (GLFW)
	KeyPageDown = 267 // Page Down (GLFW)
	KeyHome     = 268 // Home (GLFW)
	KeyEnd      = 269 // End (GLFW)

	KeyLeftShift    = 340 // Left Shift (GLFW)
	KeyLeftControl  = 341 // Left Control (GLFW)
	KeyLeftAlt      = 342 // Left Alt (GLFW)
	KeyRightShift   = 344 // Right Shift (GLFW)
	KeyRightControl = 345 // Right Control (GLFW)
)
