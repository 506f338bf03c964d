package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(t *testing.T) (*Store, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	return NewStore(Options{FuseMax: 3, RechargeWindow: time.Hour, Now: clock.Now}), clock
}

func TestRecharge(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := newSession("tok", 3, start)
	s.FuseRemaining = 0

	assert.False(t, s.Recharge(start.Add(59*time.Minute), 3, time.Hour), "inside window")
	assert.Equal(t, 0, s.FuseRemaining)

	assert.True(t, s.Recharge(start.Add(time.Hour), 3, time.Hour), "window boundary is inclusive")
	assert.Equal(t, 3, s.FuseRemaining)
	assert.Equal(t, start.Add(time.Hour), s.LastRecharge)
}

func TestRechargeIdempotentWithinWindow(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := newSession("tok", 3, start)
	s.FuseRemaining = 1

	now := start.Add(2 * time.Hour)
	require.True(t, s.Recharge(now, 3, time.Hour))
	s.Consume()
	after := s

	assert.False(t, s.Recharge(now.Add(time.Minute), 3, time.Hour))
	assert.Equal(t, after, s)
}

func TestNextRecharge(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := newSession("tok", 3, start)
	assert.Equal(t, start.Add(time.Hour), s.NextRecharge(time.Hour))
}

func TestStoreCreatesOnMiss(t *testing.T) {
	st, clock := newTestStore(t)

	_, ok := st.Snapshot("a")
	assert.False(t, ok)

	st.Do("a", func(s *Session) {
		assert.Equal(t, "a", s.Token)
		assert.Equal(t, 3, s.FuseRemaining)
		assert.Equal(t, clock.Now(), s.LastRecharge)
	})
	assert.Equal(t, 1, st.Len())

	snap, ok := st.Snapshot("a")
	require.True(t, ok)
	assert.Equal(t, 3, snap.FuseRemaining)
}

func TestStoreLazyRecharge(t *testing.T) {
	st, clock := newTestStore(t)

	st.Do("a", func(s *Session) {
		s.Consume()
		s.Consume()
		s.Consume()
	})
	clock.Advance(30 * time.Minute)
	st.Do("a", func(s *Session) {
		assert.Equal(t, 0, s.FuseRemaining, "no refill before the window elapses")
	})

	// Idle time alone never refills: the snapshot still shows an empty fuse.
	clock.Advance(2 * time.Hour)
	snap, _ := st.Snapshot("a")
	assert.Equal(t, 0, snap.FuseRemaining)

	st.Do("a", func(s *Session) {
		assert.Equal(t, 3, s.FuseRemaining)
	})
}

func TestStorePeekUsesStoreClock(t *testing.T) {
	st, clock := newTestStore(t)

	_, ok := st.Peek("a")
	assert.False(t, ok)
	assert.Equal(t, 0, st.Len(), "peek does not create")

	st.Do("a", func(s *Session) { s.Consume() })
	clock.Advance(59 * time.Minute)
	peek, _ := st.Peek("a")
	assert.Equal(t, 2, peek.FuseRemaining)

	clock.Advance(time.Minute)
	peek, ok = st.Peek("a")
	require.True(t, ok)
	assert.Equal(t, 3, peek.FuseRemaining)
	assert.Equal(t, clock.Now(), peek.LastRecharge)

	snap, _ := st.Snapshot("a")
	assert.Equal(t, 2, snap.FuseRemaining, "peek leaves the stored session alone")

	st.Do("a", func(s *Session) {
		assert.Equal(t, peek.FuseRemaining, s.FuseRemaining)
	})
}

func TestStoreSameTokenSerialized(t *testing.T) {
	st := NewStore(Options{FuseMax: 200, RechargeWindow: time.Hour})

	var g errgroup.Group
	for i := 0; i < 150; i++ {
		g.Go(func() error {
			st.Do("shared", func(s *Session) {
				if s.FuseRemaining > 0 {
					s.Consume()
				}
			})
			return nil
		})
	}
	require.NoError(t, g.Wait())

	snap, _ := st.Snapshot("shared")
	assert.Equal(t, 50, snap.FuseRemaining)
}

func TestStoreDifferentTokensIndependent(t *testing.T) {
	st, _ := newTestStore(t)

	held := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		st.Do("slow", func(s *Session) {
			close(held)
			<-release
		})
	}()
	<-held

	finished := make(chan struct{})
	go func() {
		st.Do("fast", func(s *Session) { s.Consume() })
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("request for another token blocked on a held session")
	}
	close(release)
	<-done
}

func TestMemoryJournalOrder(t *testing.T) {
	j := NewMemoryJournal()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, j.Append(ctx, "a", Exchange{Text: fmt.Sprintf("t%d", i), Mode: ModeStay}))
	}
	require.NoError(t, j.Append(ctx, "b", Exchange{Text: "other", Mode: ModePress}))

	all, err := j.List(ctx, "a", 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "t0", all[0].Text)
	assert.Equal(t, "t4", all[4].Text)

	last, err := j.List(ctx, "a", 2)
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, "t3", last[0].Text)

	none, err := j.List(ctx, "missing", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}
