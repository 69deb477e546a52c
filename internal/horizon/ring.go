package horizon

import "governor-xrpl-lab/internal/domain"

// RingBuffer is a bounded FIFO of history points. Not safe for concurrent use.
type RingBuffer struct {
	items []domain.HistoryPoint
	head  int
	size  int
}

// NewRingBuffer creates a buffer holding at most capacity points.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &RingBuffer{items: make([]domain.HistoryPoint, capacity)}
}

// Push appends p, evicting the oldest point when full.
func (r *RingBuffer) Push(p domain.HistoryPoint) {
	idx := (r.head + r.size) % len(r.items)
	r.items[idx] = p
	if r.size < len(r.items) {
		r.size++
		return
	}
	r.head = (r.head + 1) % len(r.items)
}

// Len returns the number of points held.
func (r *RingBuffer) Len() int {
	return r.size
}

// Cap returns the buffer capacity.
func (r *RingBuffer) Cap() int {
	return len(r.items)
}

// Points returns a copy of the held points, oldest first.
func (r *RingBuffer) Points() []domain.HistoryPoint {
	out := make([]domain.HistoryPoint, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.items[(r.head+i)%len(r.items)]
	}
	return out
}

// Last returns the newest point.
func (r *RingBuffer) Last() (domain.HistoryPoint, bool) {
	if r.size == 0 {
		return domain.HistoryPoint{}, false
	}
	return r.items[(r.head+r.size-1)%len(r.items)], true
}
