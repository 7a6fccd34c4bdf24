package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPresenceTransitions(t *testing.T) {
	p := NewPresenceTracker()

	assert.True(t, p.MarkOnline("a@x.com"), "0→1 should broadcast")
	assert.False(t, p.MarkOnline("a@x.com"), "second device should not re-broadcast")

	assert.False(t, p.MarkOffline("a@x.com"), "2→1 keeps the identity online")
	assert.Equal(t, []string{"a@x.com"}, p.Snapshot())

	assert.True(t, p.MarkOffline("a@x.com"), "1→0 should broadcast")
	assert.Empty(t, p.Snapshot())
}

func TestPresenceUnknownOffline(t *testing.T) {
	p := NewPresenceTracker()
	assert.False(t, p.MarkOffline("ghost@x.com"))
	assert.Empty(t, p.Snapshot())
}

func TestPresenceSnapshotSorted(t *testing.T) {
	p := NewPresenceTracker()
	p.MarkOnline("c@x.com")
	p.MarkOnline("a@x.com")
	p.MarkOnline("b@x.com")

	assert.Equal(t, []string{"a@x.com", "b@x.com", "c@x.com"}, p.Snapshot())
	assert.Equal(t, 3, p.Online())
}
