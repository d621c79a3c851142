package interpolation

import "github.com/go-gl/mathgl/mgl64"

// Sample is a single received transform of a remote entity.
type Sample struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
	// Time is the local time, in seconds, at which the sample was received.
	Time float64
	// Timestamp is the timestamp the sender attached to the sample.
	Timestamp int64
}

// Transform returns the position and rotation of the sample.
func (s Sample) Transform() Transform {
	return Transform{Position: s.Position, Rotation: s.Rotation}
}

// RingBuffer is a fixed-size circular buffer of samples ordered by time. When full, adding a
// sample overwrites the oldest one.
type RingBuffer struct {
	buffer   []Sample
	capacity int
	head     int // Points to the next write position
	size     int
}

// NewRingBuffer creates a new ring buffer with the specified capacity.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &RingBuffer{
		buffer:   make([]Sample, capacity),
		capacity: capacity,
	}
}

// Add inserts a new sample into the ring buffer. The caller is responsible for adding samples in
// time order.
func (rb *RingBuffer) Add(s Sample) {
	rb.buffer[rb.head] = s
	rb.head = (rb.head + 1) % rb.capacity
	if rb.size < rb.capacity {
		rb.size++
	}
}

// At returns the sample at logical position index, where 0 is the oldest sample.
func (rb *RingBuffer) At(index int) (Sample, bool) {
	if index < 0 || index >= rb.size {
		return Sample{}, false
	}
	return rb.buffer[(rb.head-rb.size+index+rb.capacity)%rb.capacity], true
}

// Latest returns the most recently added sample.
func (rb *RingBuffer) Latest() (Sample, bool) {
	return rb.At(rb.size - 1)
}

// Oldest returns the oldest sample still in the buffer.
func (rb *RingBuffer) Oldest() (Sample, bool) {
	return rb.At(0)
}

// Bracket returns the consecutive pair of samples whose times enclose t.
func (rb *RingBuffer) Bracket(t float64) (older, newer Sample, ok bool) {
	// Search backwards from most recent, since render time is usually close to the newest samples.
	for i := rb.size - 1; i > 0; i-- {
		newer, _ = rb.At(i)
		if newer.Time < t {
			break
		}
		older, _ = rb.At(i - 1)
		if older.Time <= t {
			return older, newer, true
		}
	}
	return Sample{}, Sample{}, false
}

// Len returns the current number of samples in the buffer.
func (rb *RingBuffer) Len() int {
	return rb.size
}

// Capacity returns the maximum capacity of the buffer.
func (rb *RingBuffer) Capacity() int {
	return rb.capacity
}

// Clear removes all samples from the buffer.
func (rb *RingBuffer) Clear() {
	rb.head = 0
	rb.size = 0
}
