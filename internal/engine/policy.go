package engine

import (
	"encoding/json"
	"strings"

	"github.com/lowember/ember/internal/session"
)

// Fixed replies outside the composed path.
const (
	IdleReply    = "Say nothing and I'll keep you company."
	HoldingReply = "Holding. No reading, no cut this turn. I'm here when you want to go on."
	LimiterText  = "Fuse: spent for now. No cut this turn; it recharges with time."
)

// Bias thresholds for blending.
const (
	comfortBias = -0.3
	truthBias   = 0.3
)

const cutThreshold = 2 // depth knob + depth score needed to cut

// Request is one parsed reply request.
type Request struct {
	Text      string
	Depth     int     // engagement knob, 0-3
	TruthBias float64 // -1 comfort .. 1 truth
	Press     bool    // caller asks for a cut
	Silence   bool    // caller asks to be held without analysis
}

// Decision is the outcome of Decide.
type Decision struct {
	Reply       string
	Trace       string
	FuseAfter   int
	Tone        string
	Mode        string // history mode; empty when nothing is recorded
	CutExecuted bool
	Signals     Signals
	Score       int
}

// Record reports whether the decision belongs in session history.
func (d Decision) Record() bool { return d.Mode != "" }

// trace is the diagnostic snapshot attached to every composed reply.
type trace struct {
	Depth       int     `json:"depth"`
	TruthBias   float64 `json:"truth_bias"`
	Press       bool    `json:"press"`
	Signals     Signals `json:"signals"`
	DepthScore  int     `json:"depth_score"`
	CutExecuted bool    `json:"cut_executed"`
	FuseAfter   int     `json:"fuse_after"`
}

type silenceTrace struct {
	Mode      string `json:"mode"`
	FuseAfter int    `json:"fuse_after"`
}

// Decide runs the reply policy against sess, consuming one unit of fuse
// when a cut is executed. The caller must hold exclusive access to sess.
func Decide(sess *session.Session, req Request) Decision {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return Decision{Reply: IdleReply, FuseAfter: sess.FuseRemaining}
	}

	if req.Silence {
		return Decision{
			Reply:     HoldingReply,
			Trace:     marshalTrace(silenceTrace{Mode: session.ModeSilence, FuseAfter: sess.FuseRemaining}),
			FuseAfter: sess.FuseRemaining,
			Mode:      session.ModeSilence,
		}
	}

	sig := Extract(text)
	score := Score(sig)
	frags := Compose(text, sig)

	willCut := req.Press && sess.FuseRemaining > 0 && req.Depth+score >= cutThreshold

	segs := []string{frags.Mirror}
	if req.Depth >= 1 {
		segs = append(segs, frags.Steelman)
	}
	if willCut {
		segs = append(segs, frags.Cut)
		sess.Consume()
	} else {
		if req.Press && sess.FuseRemaining == 0 {
			segs = append(segs, LimiterText)
		}
		segs = append(segs, frags.Stay)
	}
	if frags.Tone != "" {
		segs = append(segs, frags.Tone)
	}

	reply := strings.Join(segs, "\n\n")
	if blend := Blend(req.TruthBias, frags); blend != "" {
		reply += "\n\n" + blend
	}

	mode := session.ModeStay
	if req.Press {
		mode = session.ModePress
	}

	return Decision{
		Reply: reply,
		Trace: marshalTrace(trace{
			Depth:       req.Depth,
			TruthBias:   req.TruthBias,
			Press:       req.Press,
			Signals:     sig,
			DepthScore:  score,
			CutExecuted: willCut,
			FuseAfter:   sess.FuseRemaining,
		}),
		FuseAfter:   sess.FuseRemaining,
		Tone:        frags.Tone,
		Mode:        mode,
		CutExecuted: willCut,
		Signals:     sig,
		Score:       score,
	}
}

// Blend picks a secondary block by bias: comfort (mirror, stay), truth
// (steelman, cut), or neutral (mirror, steelman). Empty parts are skipped.
func Blend(bias float64, f Fragments) string {
	var parts []string
	switch {
	case bias < comfortBias:
		parts = []string{f.Mirror, f.Stay}
	case bias > truthBias:
		parts = []string{f.Steelman, f.Cut}
	default:
		parts = []string{f.Mirror, f.Steelman}
	}

	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n")
}

func marshalTrace(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}
