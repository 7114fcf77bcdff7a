package radarsync

import "sync"

// resultStore keeps the outcome of the most recent sync run for status
// polling. Best effort only: not persisted, lost on restart.
type resultStore struct {
	mu   sync.Mutex
	last *Result
}

func (s *resultStore) set(result *Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = result
}

// get returns a copy of the last result, so callers never share the stored
// value with a concurrent sync.
func (s *resultStore) get() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.last == nil {
		return Result{}, false
	}

	copied := *s.last
	copied.Errors = append([]string(nil), s.last.Errors...)
	return copied, true
}
