package server

// history is a fixed-capacity ring of the most recent messages in a room.
// Appending beyond capacity evicts the oldest entry, which is what keeps
// per-room memory bounded for the life of the process.
type history struct {
	buf   []ChatMessage
	start int
	count int
}

func newHistory(capacity int) *history {
	if capacity < 1 {
		capacity = 1
	}
	return &history{buf: make([]ChatMessage, capacity)}
}

// add appends msg, evicting the oldest entry when the ring is full.
func (h *history) add(msg ChatMessage) {
	if h.count < len(h.buf) {
		h.buf[(h.start+h.count)%len(h.buf)] = msg
		h.count++
		return
	}
	h.buf[h.start] = msg
	h.start = (h.start + 1) % len(h.buf)
}

// snapshot returns the retained messages, oldest first. The result is a copy
// and stays valid while the ring keeps moving.
func (h *history) snapshot() []ChatMessage {
	out := make([]ChatMessage, h.count)
	for i := range out {
		out[i] = h.buf[(h.start+i)%len(h.buf)]
	}
	return out
}

func (h *history) size() int {
	return h.count
}
