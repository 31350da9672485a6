package renderer

// frameSlotCount is the depth of the frame rotation. Two slots let the CPU
// record frame N+1 while the GPU is still consuming frame N.
const frameSlotCount = 2

// frameSlots tracks the double-buffered frame rotation. Each slot remembers
// whether its previous use ended in a queue submission; a slot is waited on
// before reuse only when it was actually submitted, so a slot that skipped
// its frame (or was never used) never blocks.
type frameSlots struct {
	submitted [frameSlotCount]bool
	index     int
}

// Current returns the slot index the next frame will use.
func (fs *frameSlots) Current() int {
	return fs.index
}

// NeedsWait reports whether the current slot's previous frame reached the
// queue and must complete before the slot is reused.
func (fs *frameSlots) NeedsWait() bool {
	return fs.submitted[fs.index]
}

// Advance records whether the current slot's frame was submitted and rotates
// to the other slot. The rotation happens on every frame regardless of
// outcome, so skipped frames keep the slots alternating.
//
// Parameters:
//   - submitted: true when the frame's command buffer reached the queue
func (fs *frameSlots) Advance(submitted bool) {
	fs.submitted[fs.index] = submitted
	fs.index = (fs.index + 1) % frameSlotCount
}
