package relay

import (
	"sort"
	"sync"
)

// PresenceTracker derives online status from live connection counts. An
// identity is online while at least one connection declares it, so a second
// device neither re-broadcasts "online" nor can a single disconnect knock a
// multi-device identity offline.
type PresenceTracker struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewPresenceTracker creates an empty tracker. State is rebuilt from scratch
// on process restart.
func NewPresenceTracker() *PresenceTracker {
	return &PresenceTracker{counts: make(map[string]int)}
}

// MarkOnline increments the identity's connection count and reports whether
// this was the 0→1 transition that warrants a broadcast.
func (t *PresenceTracker) MarkOnline(identity string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.counts[identity]++
	return t.counts[identity] == 1
}

// MarkOffline decrements the identity's connection count and reports whether
// this was the 1→0 transition that warrants a broadcast.
func (t *PresenceTracker) MarkOffline(identity string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, ok := t.counts[identity]
	if !ok {
		return false
	}
	if n <= 1 {
		delete(t.counts, identity)
		return true
	}
	t.counts[identity] = n - 1
	return false
}

// Snapshot returns the identities currently online, sorted for stable
// responses.
func (t *PresenceTracker) Snapshot() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	online := make([]string, 0, len(t.counts))
	for identity := range t.counts {
		online = append(online, identity)
	}
	sort.Strings(online)
	return online
}

// Online returns the number of identities currently online.
func (t *PresenceTracker) Online() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.counts)
}
