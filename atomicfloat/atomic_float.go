// Package atomicfloat provides a lock-free float64 for numeric state read and
// written by many goroutines without a mutex.
package atomicfloat

import (
	"math"
	"sync/atomic"
)

// AtomicFloat64 encapsulates a float64 for non-locking atomic operations.
// Telemetry counters (episodes learned, rollouts performed) are read by the
// actor goroutine while background learners write them concurrently; a mutex
// around a single float is needless contention for values nobody needs a
// strictly-ordered view of.
type AtomicFloat64 struct {
	bits uint64
}

// NewAtomicFloat64 encapsulates a float64 for atomic operations.
func NewAtomicFloat64(val float64) *AtomicFloat64 {
	return &AtomicFloat64{bits: math.Float64bits(val)}
}

// AtomicRead atomically reads the float64.
func (af *AtomicFloat64) AtomicRead() float64 {
	return math.Float64frombits(atomic.LoadUint64(&af.bits))
}

// AtomicAdd atomically adds addend with a single compare-and-swap attempt.
// Unlike a blind retry loop, if the pointee changes while we're computing
// newVal we report failure so the caller can decide whether to retry,
// recompute, or drop the update.
func (af *AtomicFloat64) AtomicAdd(addend float64) (newVal float64, succeeded bool) {
	old := af.AtomicRead()
	newVal = old + addend
	succeeded = atomic.CompareAndSwapUint64(&af.bits, math.Float64bits(old), math.Float64bits(newVal))
	return
}

// AtomicSet sets the float64, returns true on success.
func (af *AtomicFloat64) AtomicSet(newVal float64) (succeeded bool) {
	old := af.AtomicRead()
	succeeded = atomic.CompareAndSwapUint64(&af.bits, math.Float64bits(old), math.Float64bits(newVal))
	return
}

// AtomicIncr atomically increments by 1, spinning past transient CAS losses.
// Used for monotonic event counters where losing a race just means retry,
// never silently dropping an increment.
func (af *AtomicFloat64) AtomicIncr() (newVal float64) {
	for {
		if v, ok := af.AtomicAdd(1.0); ok {
			return v
		}
	}
}
