package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Request defaults and bounds.
const (
	DefaultDepth     = 1
	DefaultTruthBias = 0.0
	MaxDepth         = 3
)

// ParseRequest decodes a reply payload. Only a body that is not a JSON
// object is an error; missing or malformed fields fall back to defaults.
func ParseRequest(body []byte) (Request, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return Request{}, fmt.Errorf("decode request: %w", err)
	}
	if raw == nil {
		return Request{}, fmt.Errorf("decode request: body is not an object")
	}
	return RequestFromMap(raw), nil
}

// RequestFromMap coerces loosely typed fields into a Request.
func RequestFromMap(raw map[string]any) Request {
	text, _ := raw["text"].(string)

	depth := DefaultDepth
	if f, ok := toFloat(raw["depth"]); ok {
		depth = int(f)
	}

	bias := DefaultTruthBias
	if f, ok := toFloat(raw["truth_bias"]); ok {
		bias = f
	}

	return Request{
		Text:      text,
		Depth:     ClampDepth(depth),
		TruthBias: ClampBias(bias),
		Press:     toBool(raw["press"]),
		Silence:   toBool(raw["silence"]),
	}
}

// ClampDepth bounds the depth knob to [0, MaxDepth].
func ClampDepth(d int) int {
	return max(0, min(d, MaxDepth))
}

// ClampBias bounds truth bias to [-1, 1]; NaN becomes the default.
func ClampBias(b float64) float64 {
	if math.IsNaN(b) {
		return DefaultTruthBias
	}
	return math.Max(-1, math.Min(b, 1))
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, false
		}
		return x, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func toBool(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		return err == nil && b
	}
	return false
}
