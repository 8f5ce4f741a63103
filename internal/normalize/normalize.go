// ABOUTME: Query normalizer: unicode folding, slang expansion, follow-up marker detection
// ABOUTME: Pure function of its input; normalizing an already normalized string is a no-op

package normalize

import (
	"sort"
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// MaxGraphemes bounds how much of the raw input is considered.
const MaxGraphemes = 512

// Query is the canonical form of one user message.
type Query struct {
	Raw               string   // input as received
	Text              string   // canonical text: lowercase tokens joined by single spaces
	Tokens            []string // Text split on spaces
	HasFollowUpMarker bool     // true when a continuation phrase such as "tell me more" is present
	FollowUpMarker    string   // the longest marker found, empty if none
}

// Empty reports whether nothing scoreable survived normalization.
func (q Query) Empty() bool {
	return q.Text == ""
}

// ContainsPhrase reports whether phrase occurs in the text on token boundaries.
func (q Query) ContainsPhrase(phrase string) bool {
	return containsPhrase(q.Text, phrase)
}

// markers are continuation phrases, sorted longest first in init.
var markers = []string{
	"tell me more",
	"more details",
	"more about it",
	"what else",
	"and then",
	"and that",
	"go on",
	"continue",
	"elaborate",
	"explain more",
	"more",
	"also",
}

func init() {
	sort.SliceStable(markers, func(i, j int) bool {
		return len(markers[i]) > len(markers[j])
	})
}

// Normalize converts raw user text into a Query. It never fails; garbage
// input yields a Query with empty Text.
func Normalize(raw string) Query {
	text := foldText(clamp(raw, MaxGraphemes))

	words := tokenize(text)
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		w = squeeze(w)
		if repl, ok := slang[w]; ok {
			if repl == "" {
				continue
			}
			tokens = append(tokens, strings.Fields(repl)...)
			continue
		}
		tokens = append(tokens, w)
	}

	q := Query{
		Raw:    raw,
		Text:   strings.Join(tokens, " "),
		Tokens: tokens,
	}
	for _, m := range markers {
		if containsPhrase(q.Text, m) {
			q.HasFollowUpMarker = true
			q.FollowUpMarker = m
			break
		}
	}
	return q
}

// clamp cuts s after limit grapheme clusters.
func clamp(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	g := uniseg.NewGraphemes(s)
	n, end := 0, 0
	for g.Next() {
		if n == limit {
			break
		}
		_, end = g.Positions()
		n++
	}
	return s[:end]
}

// foldText lowercases, folds full/half width forms and strips diacritics.
// The transformer chain is stateful, so a fresh one is built per call.
func foldText(s string) string {
	t := transform.Chain(width.Fold, norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// tokenize splits on anything that is not a letter or digit. Apostrophes
// between two word runes are dropped so "what's" becomes "whats".
func tokenize(s string) []string {
	rs := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range rs {
		switch {
		case isWordRune(r):
			b.WriteRune(r)
		case (r == '\'' || r == '’') && i > 0 && i+1 < len(rs) && isWordRune(rs[i-1]) && isWordRune(rs[i+1]):
			// joined
		default:
			b.WriteByte(' ')
		}
	}
	return strings.Fields(b.String())
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// squeeze collapses runs of three or more identical letters to one letter:
// "hiii" -> "hi", "sooo" -> "so". Runs of two are kept ("hello").
func squeeze(w string) string {
	rs := []rune(w)
	out := make([]rune, 0, len(rs))
	for i := 0; i < len(rs); {
		j := i
		for j < len(rs) && rs[j] == rs[i] {
			j++
		}
		n := j - i
		if n >= 3 && unicode.IsLetter(rs[i]) {
			n = 1
		}
		for k := 0; k < n; k++ {
			out = append(out, rs[i])
		}
		i = j
	}
	return string(out)
}

func containsPhrase(text, phrase string) bool {
	if text == "" || phrase == "" {
		return false
	}
	return strings.Contains(" "+text+" ", " "+phrase+" ")
}
