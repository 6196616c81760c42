package browse

import (
	"path"
	"sync"
	"time"
)

// RecentCap bounds the recent-files list; oldest entries are evicted first.
const RecentCap = 50

type RecentEntry struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	AccessedAt string `json:"accessedAt"`
}

// RecentStore tracks recently opened files in memory, keyed by path.
// Recency is per-process, best-effort state; it is never persisted and remote
// devices report their own.
type RecentStore struct {
	mu      sync.Mutex
	entries []RecentEntry
}

func NewRecentStore() *RecentStore {
	return &RecentStore{}
}

// Touch records an access to p, moving it to the front.
func (s *RecentStore) Touch(p string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.Path != p {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	s.entries = append([]RecentEntry{{
		Name:       path.Base(p),
		Path:       p,
		AccessedAt: time.Now().UTC().Format(time.RFC3339),
	}}, s.entries...)
	if len(s.entries) > RecentCap {
		s.entries = s.entries[:RecentCap]
	}
}

// List returns entries newest-first.
func (s *RecentStore) List() []RecentEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecentEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Forget drops p, for callers that deleted or renamed the file.
func (s *RecentStore) Forget(p string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.Path != p {
			kept = append(kept, e)
		}
	}
	s.entries = kept
}
