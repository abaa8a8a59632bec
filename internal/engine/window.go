package engine

// recentWindow is a bounded FIFO of recently applied op names.
// Pushing onto a full window evicts the oldest entry.
type recentWindow struct {
	capacity int
	names    []string
}

// newRecentWindow creates a window holding at most capacity names.
// A capacity below 1 is raised to 1.
func newRecentWindow(capacity int) *recentWindow {
	if capacity < 1 {
		capacity = 1
	}
	return &recentWindow{
		capacity: capacity,
		names:    make([]string, 0, capacity),
	}
}

// Push appends name, evicting the oldest entry when full.
func (w *recentWindow) Push(name string) {
	if len(w.names) == w.capacity {
		copy(w.names, w.names[1:])
		w.names = w.names[:len(w.names)-1]
	}
	w.names = append(w.names, name)
}

// Last returns the most recently pushed name.
func (w *recentWindow) Last() (string, bool) {
	if len(w.names) == 0 {
		return "", false
	}
	return w.names[len(w.names)-1], true
}

// InLast reports whether name occurs among the newest n entries.
func (w *recentWindow) InLast(name string, n int) bool {
	start := len(w.names) - n
	if start < 0 {
		start = 0
	}
	for _, v := range w.names[start:] {
		if v == name {
			return true
		}
	}
	return false
}

// Len returns the number of entries held.
func (w *recentWindow) Len() int { return len(w.names) }

// Names returns a copy of the entries, oldest first.
func (w *recentWindow) Names() []string {
	out := make([]string, len(w.names))
	copy(out, w.names)
	return out
}
