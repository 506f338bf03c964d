package session

import (
	"sync"
	"time"
)

// Options configures a Store.
type Options struct {
	FuseMax        int
	RechargeWindow time.Duration
	Now            func() time.Time // defaults to time.Now
}

// Store owns every live session, keyed by opaque token. Sessions are
// created on first use and live until the process exits.
type Store struct {
	opts Options

	mu       sync.RWMutex
	sessions map[string]*entry
}

// entry pairs a session with the lock that serializes its mutations.
type entry struct {
	mu   sync.Mutex
	sess Session
}

// NewStore creates an empty Store.
func NewStore(opts Options) *Store {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{
		opts:     opts,
		sessions: make(map[string]*entry),
	}
}

// FuseMax returns the configured fuse ceiling.
func (st *Store) FuseMax() int { return st.opts.FuseMax }

// RechargeWindow returns the configured refill interval.
func (st *Store) RechargeWindow() time.Duration { return st.opts.RechargeWindow }

// Do runs fn with exclusive access to the session for token, creating it
// if needed and applying a lazy recharge first. Calls for the same token
// are serialized; calls for different tokens run independently. fn must not
// retain s after returning.
func (st *Store) Do(token string, fn func(s *Session)) {
	e := st.resolve(token)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.sess.Recharge(st.opts.Now(), st.opts.FuseMax, st.opts.RechargeWindow)
	fn(&e.sess)
}

// Snapshot returns a copy of the session for token without creating or
// recharging it.
func (st *Store) Snapshot(token string) (Session, bool) {
	st.mu.RLock()
	e, ok := st.sessions[token]
	st.mu.RUnlock()
	if !ok {
		return Session{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sess, true
}

// Peek returns a copy of the session for token as the next Do would see
// it, with a due recharge applied to the copy only. It does not create the
// session.
func (st *Store) Peek(token string) (Session, bool) {
	sess, ok := st.Snapshot(token)
	if !ok {
		return Session{}, false
	}
	sess.Recharge(st.opts.Now(), st.opts.FuseMax, st.opts.RechargeWindow)
	return sess, true
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

func (st *Store) resolve(token string) *entry {
	st.mu.RLock()
	e, ok := st.sessions[token]
	st.mu.RUnlock()
	if ok {
		return e
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if e, ok := st.sessions[token]; ok {
		return e
	}
	e = &entry{sess: newSession(token, st.opts.FuseMax, st.opts.Now())}
	st.sessions[token] = e
	return e
}
