package gesture

// Pinch history defaults: at least DefaultPinchVotes of the last
// DefaultPinchWindow samples must be pinches.
const (
	DefaultPinchWindow = 3
	DefaultPinchVotes  = 2
)

// PinchHistory is a fixed-capacity ring of per-frame pinch decisions used to
// suppress single-frame sensor jitter.
type PinchHistory struct {
	data  []bool
	pos   int
	full  bool
	votes int
}

// NewPinchHistory creates a history of the given window that reports a pinch
// when at least votes samples agree.
func NewPinchHistory(window, votes int) *PinchHistory {
	if window <= 0 {
		window = DefaultPinchWindow
	}
	if votes <= 0 || votes > window {
		votes = (window / 2) + 1
	}
	return &PinchHistory{
		data:  make([]bool, window),
		votes: votes,
	}
}

// Push records one sample.
func (h *PinchHistory) Push(pinching bool) {
	h.data[h.pos] = pinching
	h.pos++
	if h.pos >= len(h.data) {
		h.pos = 0
		h.full = true
	}
}

// Len returns the number of recorded samples.
func (h *PinchHistory) Len() int {
	if h.full {
		return len(h.data)
	}
	return h.pos
}

// Slice returns the samples in insertion order, oldest first.
func (h *PinchHistory) Slice() []bool {
	n := h.Len()
	out := make([]bool, n)
	if h.full {
		copy(out, h.data[h.pos:])
		copy(out[len(h.data)-h.pos:], h.data[:h.pos])
	} else {
		copy(out, h.data[:h.pos])
	}
	return out
}

// ShouldBePinching reports whether enough recent samples were pinches.
func (h *PinchHistory) ShouldBePinching() bool {
	count := 0
	for _, v := range h.Slice() {
		if v {
			count++
		}
	}
	return count >= h.votes
}

// Reset clears all samples.
func (h *PinchHistory) Reset() {
	for i := range h.data {
		h.data[i] = false
	}
	h.pos = 0
	h.full = false
}
