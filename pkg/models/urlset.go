package models

import (
	"sort"
	"sync"
)

// URLSet tracks which article URLs have already been processed.
// The crawl itself is single-threaded, but the guard keeps the set
// safe if a future caller shares it across goroutines.
type URLSet struct {
	mu sync.Mutex
	v  map[string]bool
}

func NewURLSet(urls ...string) *URLSet {
	s := &URLSet{v: make(map[string]bool, len(urls))}
	for _, u := range urls {
		s.v[u] = true
	}
	return s
}

func (s *URLSet) Contains(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v[url]
}

func (s *URLSet) Add(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v[url] = true
}

func (s *URLSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.v)
}

// Values returns the URLs in sorted order so checkpoint files stay
// stable across runs.
func (s *URLSet) Values() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.v))
	for u := range s.v {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}
