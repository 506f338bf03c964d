package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Request
	}{
		{
			name: "defaults",
			body: `{}`,
			want: Request{Depth: 1},
		},
		{
			name: "full payload",
			body: `{"text":"hi","depth":2,"truth_bias":-0.5,"press":true,"silence":false}`,
			want: Request{Text: "hi", Depth: 2, TruthBias: -0.5, Press: true},
		},
		{
			name: "numeric strings",
			body: `{"depth":"3","truth_bias":" 0.4 "}`,
			want: Request{Depth: 3, TruthBias: 0.4},
		},
		{
			name: "garbage numerics fall back",
			body: `{"depth":"deep","truth_bias":{"x":1}}`,
			want: Request{Depth: 1},
		},
		{
			name: "null numerics fall back",
			body: `{"depth":null,"truth_bias":null}`,
			want: Request{Depth: 1},
		},
		{
			name: "out of range is clamped",
			body: `{"depth":9,"truth_bias":-7}`,
			want: Request{Depth: 3, TruthBias: -1},
		},
		{
			name: "fractional depth truncates",
			body: `{"depth":1.9}`,
			want: Request{Depth: 1},
		},
		{
			name: "loose booleans",
			body: `{"press":"true","silence":1}`,
			want: Request{Depth: 1, Press: true, Silence: true},
		},
		{
			name: "non-string text ignored",
			body: `{"text":42}`,
			want: Request{Depth: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRequest([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRequestInvalid(t *testing.T) {
	for _, body := range []string{``, `not json`, `[1,2]`, `null`} {
		_, err := ParseRequest([]byte(body))
		assert.Error(t, err, body)
	}
}
