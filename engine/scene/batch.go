package scene

// Batch is one contiguous run of same-kind primitives, addressed by index
// into the scene's slice for that kind. Concatenating every batch yielded by
// a BatchIterator reproduces the scene's primitives exactly once in paint
// order.
type Batch struct {
	Kind  Kind
	Start int
	Count int
}

// BatchIterator yields a scene's primitives as a finite sequence of batches.
// Kinds are visited in paint order; within a kind, runs are capped at the
// kind's BatchCapacity, so a kind with more primitives than its upload
// buffer holds yields multiple batches. A kind boundary always ends a batch
// because each kind binds its own pipeline.
//
// The iterator is single-use: once Next returns false it stays exhausted.
type BatchIterator struct {
	counts [kindCount]int
	kind   int
	cursor int
}

func newBatchIterator(counts [kindCount]int) *BatchIterator {
	return &BatchIterator{counts: counts}
}

// Next yields the next batch in paint order.
//
// Returns:
//   - Batch: the next run of same-kind primitives, zero when exhausted
//   - bool: false once every primitive has been yielded
func (it *BatchIterator) Next() (Batch, bool) {
	for it.kind < kindCount {
		remaining := it.counts[it.kind] - it.cursor
		if remaining <= 0 {
			it.kind++
			it.cursor = 0
			continue
		}
		n := Kind(it.kind).BatchCapacity()
		if remaining < n {
			n = remaining
		}
		b := Batch{Kind: Kind(it.kind), Start: it.cursor, Count: n}
		it.cursor += n
		return b, true
	}
	return Batch{}, false
}
