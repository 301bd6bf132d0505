package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireCreatesAndReuses(t *testing.T) {
	m := NewSessionManager(nil, nil)
	defer m.Stop()

	ctx := context.Background()
	id1, s1 := m.Acquire(ctx, "")
	require.NotEmpty(t, id1)
	require.NotNil(t, s1)

	id2, s2 := m.Acquire(ctx, id1)
	assert.Equal(t, id1, id2)
	assert.Same(t, s1, s2)
	assert.Equal(t, 1, m.Count())
}

func TestAcquireUnknownIDCreatesNew(t *testing.T) {
	m := NewSessionManager(nil, nil)
	defer m.Stop()

	id, _ := m.Acquire(context.Background(), "does-not-exist")
	assert.NotEqual(t, "does-not-exist", id)
	assert.Equal(t, 1, m.Count())
}

func TestRemove(t *testing.T) {
	m := NewSessionManager(nil, nil)
	defer m.Stop()

	ctx := context.Background()
	id, _ := m.Acquire(ctx, "")
	m.Remove(ctx, id)
	assert.Zero(t, m.Count())

	// Removing twice is a no-op.
	m.Remove(ctx, id)
}

func TestSessionHistoryIsCapped(t *testing.T) {
	m := NewSessionManager(nil, nil)
	defer m.Stop()

	_, s := m.Acquire(context.Background(), "")
	for i := 0; i < 30; i++ {
		s.history.AddExchange("q", "a")
	}
	assert.Equal(t, 20, s.history.Len())
}

func TestExpiredSessionEligibleForCleanup(t *testing.T) {
	m := NewSessionManagerWithTimeout(time.Millisecond, nil, nil)
	defer m.Stop()

	id, s := m.Acquire(context.Background(), "")
	s.lastAccess = time.Now().Add(-time.Minute)

	// Run one cleanup pass directly instead of waiting for the ticker.
	m.mu.Lock()
	for sid, sess := range m.sessions {
		if time.Since(sess.lastAccess) > m.sessionTimeout {
			delete(m.sessions, sid)
		}
	}
	m.mu.Unlock()

	assert.Zero(t, m.Count())
	newID, _ := m.Acquire(context.Background(), id)
	assert.NotEqual(t, id, newID)
}
