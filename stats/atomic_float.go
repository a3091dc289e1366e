// Package stats holds a small lock-free counter for the driver's
// generation-rate metric. Adapted from
// tabular/atomic_float's AtomicFloat64, which encapsulates a float64 for
// atomic reads/writes without taking a lock on the hot simulation path.
package stats

import (
	"math"
	"sync/atomic"
	"unsafe"
)

// AtomicFloat64 is a float64 readable and writable without a mutex. The
// driver's step loop updates it every generation; a separate logging loop
// reads it every 10 seconds, so a lock would serialize those two
// independent paths for no benefit.
type AtomicFloat64 struct {
	val float64
}

// NewAtomicFloat64 wraps an initial value for atomic access.
func NewAtomicFloat64(val float64) *AtomicFloat64 {
	return &AtomicFloat64{val: val}
}

// Read atomically loads the float64.
func (af *AtomicFloat64) Read() float64 {
	bits := atomic.LoadUint64((*uint64)(unsafe.Pointer(&af.val)))
	return math.Float64frombits(bits)
}

// Add atomically adds addend to the float64 via compare-and-swap, retrying
// is intentionally NOT done here: if the value changed concurrently, the
// caller's delta was computed against a stale read and should be
// recomputed rather than blindly reapplied.
func (af *AtomicFloat64) Add(addend float64) (newVal float64, succeeded bool) {
	old := af.Read()
	newVal = old + addend
	succeeded = atomic.CompareAndSwapUint64(
		(*uint64)(unsafe.Pointer(&af.val)),
		math.Float64bits(old),
		math.Float64bits(newVal))
	return
}

// Set atomically stores newVal, returning true on success.
func (af *AtomicFloat64) Set(newVal float64) (succeeded bool) {
	old := af.Read()
	succeeded = atomic.CompareAndSwapUint64(
		(*uint64)(unsafe.Pointer(&af.val)),
		math.Float64bits(old),
		math.Float64bits(newVal))
	return
}
