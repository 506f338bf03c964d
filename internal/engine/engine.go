package engine

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lowember/ember/internal/session"
)

// Response is the payload returned to the transport layer.
type Response struct {
	Reply string `json:"reply"`
	Trace string `json:"trace"`
	Fuse  int    `json:"fuse"`
	Tone  string `json:"tone"`
}

// Engine ties the session store, the reply policy, and the history journal
// together.
type Engine struct {
	Sessions *session.Store
	Journal  session.Journal
	log      *zap.Logger
	now      func() time.Time
}

// New creates an Engine. A nil logger disables logging.
func New(sessions *session.Store, journal session.Journal, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if journal == nil {
		journal = session.NewMemoryJournal()
	}
	return &Engine{
		Sessions: sessions,
		Journal:  journal,
		log:      logger,
		now:      time.Now,
	}
}

// Reply runs one request for token. It never fails: journal errors are
// logged and the reply is still returned.
func (e *Engine) Reply(ctx context.Context, token string, req Request) Response {
	var d Decision
	e.Sessions.Do(token, func(s *session.Session) {
		d = Decide(s, req)
		if !d.Record() {
			return
		}
		// Appended under the session lock so history order matches
		// decision order. The decision is already committed, so a caller
		// that goes away must not drop the record.
		ex := session.Exchange{Text: strings.TrimSpace(req.Text), Reply: d.Reply, Mode: d.Mode, At: e.now()}
		if err := e.Journal.Append(context.WithoutCancel(ctx), token, ex); err != nil {
			e.log.Warn("journal append failed", zap.String("token", token), zap.Error(err))
		}
	})

	e.log.Debug("reply",
		zap.String("token", token),
		zap.String("mode", d.Mode),
		zap.Int("depth_score", d.Score),
		zap.Bool("cut", d.CutExecuted),
		zap.Int("fuse", d.FuseAfter),
	)

	return Response{
		Reply: d.Reply,
		Trace: d.Trace,
		Fuse:  d.FuseAfter,
		Tone:  d.Tone,
	}
}

// History returns up to limit recorded exchanges for token, oldest first.
func (e *Engine) History(ctx context.Context, token string, limit int) ([]session.Exchange, error) {
	return e.Journal.List(ctx, token, limit)
}
