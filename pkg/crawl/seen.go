package crawl

import (
	"sort"
	"sync"
)

// SeenSet is the crawl-wide set of posting ids. It only grows.
type SeenSet struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func NewSeenSet() *SeenSet {
	return &SeenSet{ids: make(map[string]struct{})}
}

// Claim marks ids as seen and returns, in input order, the ones nobody
// claimed before. limit > 0 caps the size of the set; ids past the cap are
// not claimed.
func (s *SeenSet) Claim(ids []string, limit int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fresh []string
	for _, id := range ids {
		if limit > 0 && len(s.ids) >= limit {
			break
		}
		if _, ok := s.ids[id]; ok {
			continue
		}
		s.ids[id] = struct{}{}
		fresh = append(fresh, id)
	}
	return fresh
}

func (s *SeenSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// Snapshot returns the ids sorted.
func (s *SeenSet) Snapshot() []string {
	s.mu.Lock()
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	s.mu.Unlock()
	sort.Strings(out)
	return out
}
