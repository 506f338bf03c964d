package engine

import (
	"strings"
	"unicode"
)

// Signal thresholds.
const (
	longSentenceWords = 22 // a sentence with more fields than this runs long
	minRepeatRunes    = 4
	selfRefThreshold  = 3
	affectThreshold   = 2
)

// Signals are the structural and affective features of one input.
type Signals struct {
	SelfRef      int  `json:"self_ref"`
	LongSentence bool `json:"long_sentence"`
	AffectHits   int  `json:"affect_hits"`
	Repeats      int  `json:"repeats"`
}

var affectVocab = map[string]bool{
	"lonely": true, "ashamed": true, "guilty": true, "tired": true,
	"afraid": true, "anxious": true, "angry": true, "stuck": true,
	"lost": true, "empty": true, "numb": true, "hollow": true,
	"love": true, "hate": true, "rage": true, "despair": true,
	"grief": true, "griefy": true, "relief": true, "hope": true,
	"hopeless": true, "hopeful": true, "resent": true, "envy": true,
}

// isWordRune matches the characters that make up a word: letters, digits
// and underscore.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsNumber(r)
}

// Extract derives Signals from raw text. It is pure.
func Extract(text string) Signals {
	return Signals{
		SelfRef:      countSelfRef(text),
		LongSentence: hasLongSentence(text),
		AffectHits:   countAffect(text),
		Repeats:      countRepeats(text),
	}
}

// Score converts signals into a depth score in [0,4].
func Score(s Signals) int {
	score := 0
	if s.SelfRef >= selfRefThreshold {
		score++
	}
	if s.LongSentence {
		score++
	}
	if s.AffectHits >= affectThreshold {
		score++
	}
	if s.Repeats >= 1 {
		score++
	}
	return score
}

// countSelfRef counts standalone "I" plus every literal " I'm ". A
// space-delimited "I'm" is counted by both rules.
func countSelfRef(text string) int {
	rs := []rune(text)
	n := 0
	for i, r := range rs {
		if r != 'I' {
			continue
		}
		if i > 0 && isWordRune(rs[i-1]) {
			continue
		}
		if i+1 < len(rs) && isWordRune(rs[i+1]) {
			continue
		}
		n++
	}
	return n + strings.Count(text, " I'm ")
}

func hasLongSentence(text string) bool {
	sentences := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	for _, s := range sentences {
		if len(strings.Fields(s)) > longSentenceWords {
			return true
		}
	}
	return false
}

func countAffect(text string) int {
	n := 0
	for _, w := range words(strings.ToLower(text)) {
		if affectVocab[w] {
			n++
		}
	}
	return n
}

// words splits text into tokens made of a word run, optionally followed by
// one apostrophe and another (possibly empty) word run: "don't", "dogs'".
func words(text string) []string {
	rs := []rune(text)
	var out []string
	for i := 0; i < len(rs); {
		if !isWordRune(rs[i]) {
			i++
			continue
		}
		j := i
		for j < len(rs) && isWordRune(rs[j]) {
			j++
		}
		if j < len(rs) && rs[j] == '\'' {
			j++
			for j < len(rs) && isWordRune(rs[j]) {
				j++
			}
		}
		out = append(out, string(rs[i:j]))
		i = j
	}
	return out
}

// countRepeats counts words of at least four runes that reappear right
// after a run of separators, case-insensitively. The repeat only has to
// prefix the following word ("test testing" counts), and a chain of
// repeats counts once.
func countRepeats(text string) int {
	rs := []rune(text)
	n := 0
	i := 0
	for i < len(rs) {
		if !isWordRune(rs[i]) || (i > 0 && isWordRune(rs[i-1])) {
			i++
			continue
		}
		end := i
		for end < len(rs) && isWordRune(rs[end]) {
			end++
		}
		word := rs[i:end]
		if len(word) < minRepeatRunes {
			i = end
			continue
		}

		pos := end
		matched := false
		for {
			next := pos
			for next < len(rs) && !isWordRune(rs[next]) {
				next++
			}
			if next == pos || next+len(word) > len(rs) {
				break
			}
			if !foldEqual(rs[next:next+len(word)], word) {
				break
			}
			pos = next + len(word)
			matched = true
		}

		if matched {
			n++
			i = pos
		} else {
			i = end
		}
	}
	return n
}

func foldEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] && unicode.ToLower(a[i]) != unicode.ToLower(b[i]) {
			return false
		}
	}
	return true
}

// matchTerm returns the first term, by position in rs, that occurs bounded
// by non-word runes on both sides, compared case-insensitively. At a given
// position terms are tried in order. The match is returned as written.
func matchTerm(rs []rune, terms [][]rune) (string, bool) {
	for i := range rs {
		if i > 0 && isWordRune(rs[i-1]) {
			continue
		}
		for _, term := range terms {
			end := i + len(term)
			if end > len(rs) || !foldEqual(rs[i:end], term) {
				continue
			}
			if end < len(rs) && isWordRune(rs[end]) {
				continue
			}
			return string(rs[i:end]), true
		}
	}
	return "", false
}

func runeTerms(terms ...string) [][]rune {
	out := make([][]rune, len(terms))
	for i, t := range terms {
		out[i] = []rune(t)
	}
	return out
}
