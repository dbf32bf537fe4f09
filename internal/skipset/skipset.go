// Package skipset implements a best-effort, concurrency-safe set of
// already-tested passwords. Lost updates (a concurrently-added password
// briefly missing from Contains) are tolerable; false positives are not,
// which rules out a Bloom filter and points at a plain set instead.
package skipset

import "sync"

// Set is safe for concurrent use by multiple goroutines.
type Set struct {
	m sync.Map
}

// New returns an empty Set.
func New() *Set {
	return &Set{}
}

// Add records password as tested. If the adding goroutine observes this
// call returning, any goroutine that later calls Contains will see it.
func (s *Set) Add(password string) {
	s.m.Store(password, struct{}{})
}

// Contains reports whether password has been recorded by Add. It never
// reports true for a password that was never added (no false positives);
// it may transiently report false for one that was added concurrently and
// has not yet become visible to this goroutine.
func (s *Set) Contains(password string) bool {
	_, ok := s.m.Load(password)
	return ok
}

// Len returns the number of distinct passwords recorded. It is approximate
// under concurrent mutation and is intended for reporting, not control
// flow.
func (s *Set) Len() int {
	n := 0
	s.m.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
