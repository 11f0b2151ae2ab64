package output

import "sync"

// State remembers which output paths have been written during one batch,
// so that the first write to a path overwrites and later writes merge.
type State struct {
	mu      sync.RWMutex
	written map[string]bool // absolute path → written at least once
}

// NewState creates an empty batch state.
func NewState() *State {
	return &State{written: make(map[string]bool)}
}

// MarkWritten records path and reports whether it had been recorded before.
func (s *State) MarkWritten(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := s.written[path]
	s.written[path] = true
	return seen
}

// Len returns the number of distinct paths written.
func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.written)
}
