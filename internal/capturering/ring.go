// Package capturering implements a lock-free single-producer/single-consumer
// ring that hands fixed-size PCM frames from an audio callback thread to the
// engine's tick thread. Push must only ever be called from one goroutine
// (the producer); Pop must only ever be called from one other goroutine (the
// consumer). The two counters are the only cross-thread state: the producer
// publishes a slot with a release store of w, the consumer observes it with
// an acquire load of w, so the slot's contents happen-before the consumer
// sees the incremented index.
package capturering

import "sync/atomic"

// MaxSamples bounds a single slot: room for 60 ms of mono audio at 48 kHz.
const MaxSamples = 2880

type frame struct {
	count   uint32
	samples [MaxSamples]int16
}

// Ring is a fixed-capacity SPSC ring of PCM frames.
type Ring struct {
	cap   uint32
	slots []frame
	w     atomic.Uint32
	r     atomic.Uint32
}

// New returns a Ring with capacity cap (rounded up to at least 16).
func New(cap int) *Ring {
	if cap < 16 {
		cap = 16
	}
	return &Ring{
		cap:   uint32(cap),
		slots: make([]frame, cap),
	}
}

// Push copies samples into the next free slot and publishes it to the
// consumer. It returns false (dropping the frame) if the ring is full or if
// count doesn't fit within MaxSamples — callers must not block or allocate,
// so a full ring is not an error, just backpressure the producer ignores.
// Push must only be called from the single producer goroutine.
func (q *Ring) Push(samples []int16) bool {
	n := uint32(len(samples))
	if n == 0 || n > MaxSamples {
		return false
	}
	w := q.w.Load()
	r := q.r.Load()
	if w-r >= q.cap {
		return false // full
	}
	s := &q.slots[w%q.cap]
	s.count = n
	copy(s.samples[:n], samples)
	q.w.Store(w + 1) // release: publishes count+samples above
	return true
}

// Pop copies one frame's samples into dst and returns the sample count, or
// (0, false) if the ring is empty. Pop must only be called from the single
// consumer goroutine. dst must have capacity for at least MaxSamples.
func (q *Ring) Pop(dst []int16) (int, bool) {
	r := q.r.Load()
	w := q.w.Load() // acquire: synchronizes with the producer's release store
	if r == w {
		return 0, false
	}
	s := &q.slots[r%q.cap]
	n := int(s.count)
	copy(dst[:n], s.samples[:n])
	q.r.Store(r + 1)
	return n, true
}

// Len returns the number of frames currently queued. Approximate under
// concurrent Push, exact once the producer has quiesced.
func (q *Ring) Len() int {
	return int(q.w.Load() - q.r.Load())
}
