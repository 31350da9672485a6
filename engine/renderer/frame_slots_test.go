package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameSlotsFreshSlotsNeverWait(t *testing.T) {
	fs := &frameSlots{}
	assert.Equal(t, 0, fs.Current())
	assert.False(t, fs.NeedsWait(), "a never-submitted slot must not wait")

	fs.Advance(false)
	assert.Equal(t, 1, fs.Current())
	assert.False(t, fs.NeedsWait())
}

func TestFrameSlotsIndexAlternatesRegardlessOfOutcome(t *testing.T) {
	fs := &frameSlots{}
	outcomes := []bool{true, false, true, true, false, false, true}
	for i, submitted := range outcomes {
		require.Equal(t, i%frameSlotCount, fs.Current(), "frame %d", i)
		fs.Advance(submitted)
	}
	assert.Equal(t, len(outcomes)%frameSlotCount, fs.Current())
}

func TestFrameSlotsWaitOnlyWhenSubmitted(t *testing.T) {
	fs := &frameSlots{}

	// Frame 0 submits on slot 0, frame 1 skips on slot 1.
	fs.Advance(true)
	fs.Advance(false)

	// Back on slot 0: its last frame was submitted, so the reuse must wait.
	assert.True(t, fs.NeedsWait())
	fs.Advance(true)

	// Slot 1's last frame was skipped, so no wait.
	assert.False(t, fs.NeedsWait())
	fs.Advance(false)

	assert.True(t, fs.NeedsWait())
}

func TestFrameSlotsSkipClearsSubmission(t *testing.T) {
	fs := &frameSlots{}
	fs.Advance(true)
	fs.Advance(true)

	// Slot 0 submitted, then skips; the skip must clear its flag.
	require.True(t, fs.NeedsWait())
	fs.Advance(false)
	fs.Advance(false)
	assert.False(t, fs.NeedsWait(), "a skipped frame must not leave a stale wait")
}
