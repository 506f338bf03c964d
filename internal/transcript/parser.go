// Package transcript reads replay scripts: JSONL files where each line is a
// reply payload in the same shape POST /reply accepts.
package transcript

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lowember/ember/internal/engine"
)

// Line is one parsed script line.
type Line struct {
	Number  int // 1-based line number in the source
	Request engine.Request
}

// ParseFile reads a JSONL script and returns its requests in order.
func ParseFile(path string) ([]Line, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open script: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads JSONL from r. Blank lines, "#" comments, and malformed lines
// are skipped.
func Parse(r io.Reader) ([]Line, error) {
	var lines []Line
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024) // 1MB line buffer

	n := 0
	for scanner.Scan() {
		n++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}

		req, err := parseLine(raw)
		if err != nil {
			continue
		}
		lines = append(lines, Line{Number: n, Request: req})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan script: %w", err)
	}
	return lines, nil
}

// ParseLines parses script content from a string.
func ParseLines(content string) ([]Line, error) {
	return Parse(strings.NewReader(content))
}

// parseLine accepts either a payload object or a bare JSON string, which
// is shorthand for {"text": ...}.
func parseLine(raw string) (engine.Request, error) {
	if strings.HasPrefix(raw, `"`) {
		var text string
		if err := json.Unmarshal([]byte(raw), &text); err != nil {
			return engine.Request{}, err
		}
		return engine.RequestFromMap(map[string]any{"text": text}), nil
	}
	return engine.ParseRequest([]byte(raw))
}
