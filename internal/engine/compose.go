package engine

import (
	"fmt"
	"strings"
)

const (
	maxQuoteRunes    = 220
	maxSteelmanRunes = 240
	minSteelmanWords = 4
)

// Fixed fragments.
const (
	stayText          = "Stay: Holding. You're not a problem to solve. Some parts need time, not tinkering."
	toneText          = "Tone check: language is running hot. I'll keep the signal cool and literal."
	cutCompoundText   = "Cut: You asked a compound question. Split it. Answer the smallest falsifiable piece first."
	cutScopeText      = "Cut: Scope creep detected. Define one boundary you won't cross this week."
	cutAbsolutistText = "Cut: You leaned on '%s'. Swap it for numbers or dates and your claim will change shape."
)

var (
	absolutistTerms = runeTerms("always", "never", "everyone", "no one", "impossible", "must")
	grandioseTerms  = runeTerms(
		"destiny", "revolutionary", "disrupt", "genius", "legendary", "unprecedented",
		"world-class", "world class", "worldclass",
	)
)

// Fragments are the candidate pieces a reply is assembled from.
type Fragments struct {
	Mirror   string
	Steelman string
	Stay     string
	Cut      string
	Tone     string // empty unless grandiose language was detected
}

// Compose builds every fragment for text. Each fragment is independent of
// the others and of any session state.
func Compose(text string, s Signals) Fragments {
	return Fragments{
		Mirror:   Mirror(text, s),
		Steelman: Steelman(text),
		Stay:     Stay(text, s),
		Cut:      Cut(text, s),
		Tone:     Tone(text),
	}
}

// Mirror names the signals that fired and quotes the input back.
func Mirror(text string, s Signals) string {
	var notes []string
	if s.Repeats > 0 {
		notes = append(notes, "circling a point")
	}
	if s.LongSentence {
		notes = append(notes, "thoughts running long")
	}
	if s.AffectHits >= affectThreshold {
		notes = append(notes, "emotion is present")
	}
	if s.SelfRef >= selfRefThreshold {
		notes = append(notes, "self is foregrounded")
	}
	tag := "clean signal"
	if len(notes) > 0 {
		tag = strings.Join(notes, ", ")
	}

	sample := truncate(normalizeSpace(text), maxQuoteRunes)
	return fmt.Sprintf("Reading: %s. Quote: '%s'", tag, sample)
}

// Steelman restates the strongest sentences of text: spans from a capital
// letter to the next terminator with at least four words.
func Steelman(text string) string {
	var bits []string
	for _, span := range sentenceSpans(text) {
		span = strings.TrimSpace(span)
		if len(strings.Fields(span)) >= minSteelmanWords {
			bits = append(bits, span)
		}
	}

	core := text
	if len(bits) > 0 {
		core = strings.Join(bits, " ")
	}
	core = normalizeSpace(strings.ReplaceAll(core, "\n", " "))
	return "Strong form: " + truncate(core, maxSteelmanRunes)
}

// sentenceSpans returns non-overlapping spans that start at an ASCII
// uppercase letter and end at the nearest '.', '!' or '?'. Spans may cross
// newlines. A capital with no terminator after it yields nothing.
func sentenceSpans(text string) []string {
	var spans []string
	for i := 0; i < len(text); i++ {
		if text[i] < 'A' || text[i] > 'Z' {
			continue
		}
		j := strings.IndexAny(text[i+1:], ".!?")
		if j < 0 {
			break
		}
		end := i + 1 + j + 1
		spans = append(spans, text[i:end])
		i = end - 1
	}
	return spans
}

// Cut picks a confrontational fragment: an absolutist word first, then a
// compound question, then a generic scope boundary.
func Cut(text string, _ Signals) string {
	if word, ok := matchTerm([]rune(text), absolutistTerms); ok {
		return fmt.Sprintf(cutAbsolutistText, word)
	}
	if strings.Contains(text, "?") {
		return cutCompoundText
	}
	return cutScopeText
}

// Stay is the validating fragment. It does not depend on the input.
func Stay(_ string, _ Signals) string {
	return stayText
}

// Tone returns the grandiosity warning, or "" when the language is calm.
func Tone(text string) string {
	if _, ok := matchTerm([]rune(text), grandioseTerms); ok {
		return toneText
	}
	return ""
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate cuts s to max runes and appends "..." when it was longer.
func truncate(s string, max int) string {
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	return string(rs[:max]) + "..."
}
