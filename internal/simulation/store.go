package simulation

import "sync/atomic"

// versioned pairs a state value with a monotonically increasing version.
type versioned[T any] struct {
	value   T
	version uint64
}

// stateCell is the single serialization point for one per-symbol state value.
// Readers take a (value, version) pair; writers derive a replacement from it
// and commit with CompareAndSwap. A writer that lost the race gets false and
// decides its own conflict policy.
type stateCell[T any] struct {
	p atomic.Pointer[versioned[T]]
}

// Init seeds the cell. Must happen before any Load/CompareAndSwap.
func (c *stateCell[T]) Init(value T) {
	c.p.Store(&versioned[T]{value: value, version: 1})
}

// Load returns the current value and its version. ok is false until Init.
func (c *stateCell[T]) Load() (value T, version uint64, ok bool) {
	cur := c.p.Load()
	if cur == nil {
		return value, 0, false
	}
	return cur.value, cur.version, true
}

// CompareAndSwap installs next if the cell still holds the observed version.
func (c *stateCell[T]) CompareAndSwap(observed uint64, next T) bool {
	cur := c.p.Load()
	if cur == nil || cur.version != observed {
		return false
	}
	return c.p.CompareAndSwap(cur, &versioned[T]{value: next, version: observed + 1})
}
