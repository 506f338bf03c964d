package session

import (
	"context"
	"time"
)

// Exchange modes recorded in history.
const (
	ModePress   = "press"
	ModeStay    = "stay"
	ModeSilence = "silence"
)

// Session is the per-token conversational state: the fuse budget and the
// time it was last refilled.
type Session struct {
	Token         string
	FuseRemaining int
	LastRecharge  time.Time
	Created       time.Time
}

// Exchange is one recorded turn of a session.
type Exchange struct {
	Text  string
	Reply string
	Mode  string
	At    time.Time
}

// Journal holds session history. Appends for a token arrive in decision
// order; List returns them oldest first.
type Journal interface {
	Append(ctx context.Context, token string, ex Exchange) error
	List(ctx context.Context, token string, limit int) ([]Exchange, error)
}

func newSession(token string, max int, now time.Time) Session {
	return Session{
		Token:         token,
		FuseRemaining: max,
		LastRecharge:  now,
		Created:       now,
	}
}

// Recharge refills the fuse to max if at least window has passed since the
// last refill. It reports whether a refill happened.
func (s *Session) Recharge(now time.Time, max int, window time.Duration) bool {
	if now.Sub(s.LastRecharge) < window {
		return false
	}
	s.FuseRemaining = max
	s.LastRecharge = now
	return true
}

// Consume spends one unit of fuse. Callers must check FuseRemaining > 0
// first; Consume does not.
func (s *Session) Consume() {
	s.FuseRemaining--
}

// NextRecharge returns the earliest time a refill can happen.
func (s *Session) NextRecharge(window time.Duration) time.Time {
	return s.LastRecharge.Add(window)
}
