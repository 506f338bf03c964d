package server

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/lowember/ember/internal/engine"
)

const (
	maxBodyBytes        = 64 << 10
	defaultHistoryLimit = 50
)

func (s *Server) handleReply(w http.ResponseWriter, r *http.Request) {
	token := ensureToken(w, r)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, `{"error":"read body failed"}`, http.StatusBadRequest)
		return
	}
	req, err := engine.ParseRequest(body)
	if err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}

	resp := s.engine.Reply(r.Context(), token, req)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	token := ensureToken(w, r)
	store := s.engine.Sessions

	// The stored fuse is only refilled by the next request; Peek reports
	// what that request would see.
	sess, ok := store.Peek(token)
	if !ok {
		// Not seen yet: report what the first request will create.
		writeJSON(w, http.StatusOK, map[string]any{
			"fuse":     store.FuseMax(),
			"fuse_max": store.FuseMax(),
			"active":   false,
		})
		return
	}

	next := sess.NextRecharge(store.RechargeWindow())
	body := map[string]any{
		"fuse":          sess.FuseRemaining,
		"fuse_max":      store.FuseMax(),
		"active":        true,
		"created":       sess.Created,
		"last_recharge": sess.LastRecharge,
		"next_recharge": next,
		"recharge_in":   humanize.Time(next),
	}
	if c, ok := s.engine.Journal.(ExchangeCounter); ok {
		n, err := c.CountExchanges(r.Context(), token)
		if err != nil {
			s.log.Warn("count exchanges", zap.String("token", token), zap.Error(err))
		} else {
			body["exchanges"] = n
		}
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	token := ensureToken(w, r)

	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, `{"error":"limit must be a non-negative integer"}`, http.StatusBadRequest)
			return
		}
		limit = n
	}

	history, err := s.engine.History(r.Context(), token, limit)
	if err != nil {
		s.log.Error("list history", zap.String("token", token), zap.Error(err))
		http.Error(w, `{"error":"history unavailable"}`, http.StatusInternalServerError)
		return
	}

	type entry struct {
		Text  string    `json:"text"`
		Reply string    `json:"reply"`
		Mode  string    `json:"mode"`
		At    time.Time `json:"at"`
	}
	out := make([]entry, 0, len(history))
	for _, ex := range history {
		out = append(out, entry{Text: ex.Text, Reply: ex.Reply, Mode: ex.Mode, At: ex.At})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(out),
		"history": out,
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ensureToken(w, r)
	uiHandler()(w, r)
}
