package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strings"
	"time"

	"github.com/lowember/ember/internal/engine"
)

const (
	defaultServerURL = "http://127.0.0.1:5000"
	httpTimeout      = 5 * time.Second
)

// Client talks to a running ember server. It keeps the session cookie
// between calls, so one Client is one conversation.
type Client struct {
	http      *http.Client
	serverURL string
}

// New creates a client for serverURL. An empty URL falls back to EMBER_URL,
// then http://127.0.0.1:5000.
func New(serverURL string) *Client {
	if serverURL == "" {
		serverURL = os.Getenv("EMBER_URL")
	}
	if serverURL == "" {
		serverURL = defaultServerURL
	}
	jar, _ := cookiejar.New(nil) // only fails on a non-nil options bug
	return &Client{
		http:      &http.Client{Timeout: httpTimeout, Jar: jar},
		serverURL: strings.TrimRight(serverURL, "/"),
	}
}

// Reply posts one request and decodes the engine response.
func (c *Client) Reply(ctx context.Context, req engine.Request) (*engine.Response, error) {
	body, err := json.Marshal(map[string]any{
		"text":       req.Text,
		"depth":      req.Depth,
		"truth_bias": req.TruthBias,
		"press":      req.Press,
		"silence":    req.Silence,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	data, err := c.do(ctx, http.MethodPost, "/reply", body)
	if err != nil {
		return nil, err
	}
	var resp engine.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}
	return &resp, nil
}

// SessionInfo is the server's view of this client's session.
type SessionInfo struct {
	Fuse    int  `json:"fuse"`
	FuseMax int  `json:"fuse_max"`
	Active  bool `json:"active"`
}

// Session fetches the fuse state for this client's session.
func (c *Client) Session(ctx context.Context) (*SessionInfo, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/session", nil)
	if err != nil {
		return nil, err
	}
	var info SessionInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &info, nil
}

// Healthy checks if the server is reachable.
func (c *Client) Healthy(ctx context.Context) bool {
	_, err := c.do(ctx, http.MethodGet, "/api/health", nil)
	return err == nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.serverURL+path, rd)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response %s: %w", path, err)
	}
	if resp.StatusCode >= 400 {
		return data, fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, data)
	}
	return data, nil
}
