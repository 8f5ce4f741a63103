// ABOUTME: Declarative intent catalog: weighted vocabulary, entity patterns, blocker rules
// ABOUTME: Parsed from embedded YAML (or an override file) and compiled once into immutable rules

package intent

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/mauromedda/portfolio-bot/internal/normalize"
)

//go:embed catalog.yaml
var builtinCatalog []byte

// overrideAny is the blocker target meaning "whatever scored highest".
const overrideAny = "any"

// Catalog is the compiled, read-only intent table. Safe for concurrent use.
type Catalog struct {
	Threshold          float64 // minimum confidence before falling back to clarify
	StrengthK          float64 // curve constant in strength = best/(best+k)
	BlockerConfidence  float64 // confidence reported when a blocker decides
	FollowUpConfidence float64 // confidence reported for a follow-up continuation
	StrongSignal       float64 // score at which another intent breaks a follow-up

	rules    []*Rule
	byIntent map[Intent]*Rule
}

// Rule is the compiled vocabulary of one intent.
type Rule struct {
	Intent      Intent
	Example     string // an example question, used for suggestions
	Continuable bool   // follow-up markers may continue this intent
	Keywords    []Pattern
	Entities    []Entity
	Blockers    []Blocker
}

// Pattern is one weighted phrase compiled to a word-boundary regexp.
type Pattern struct {
	Phrase string
	Weight float64
	re     *regexp.Regexp
}

// Match reports whether the pattern occurs in normalized text.
func (p Pattern) Match(text string) bool {
	return p.re.MatchString(text)
}

// Entity is a named referent inside an intent's domain.
type Entity struct {
	ID       string
	Weight   float64
	Patterns []Pattern
}

// Match returns the first pattern of the entity found in text.
func (e Entity) Match(text string) (Pattern, bool) {
	for _, p := range e.Patterns {
		if p.Match(text) {
			return p, true
		}
	}
	return Pattern{}, false
}

// Blocker forces its owning intent to win over the intents it overrides
// whenever one of its phrases is present.
type Blocker struct {
	Any       bool // overrides every intent
	Overrides []Intent
	Phrases   []Pattern
}

// Applies reports whether the blocker overrides a raw winner.
func (b Blocker) Applies(top Intent) bool {
	if b.Any {
		return true
	}
	for _, o := range b.Overrides {
		if o == top {
			return true
		}
	}
	return false
}

// Fired returns the first blocker phrase found in text.
func (b Blocker) Fired(text string) (Pattern, bool) {
	for _, p := range b.Phrases {
		if p.Match(text) {
			return p, true
		}
	}
	return Pattern{}, false
}

// ExtractEntity returns the first entity of the rule named in text.
func (r *Rule) ExtractEntity(text string) string {
	for _, e := range r.Entities {
		if _, ok := e.Match(text); ok {
			return e.ID
		}
	}
	return ""
}

// Rules returns the rules in declaration order.
func (c *Catalog) Rules() []*Rule {
	out := make([]*Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Rule returns the rule for an intent.
func (c *Catalog) Rule(i Intent) (*Rule, bool) {
	r, ok := c.byIntent[i]
	return r, ok
}

// Example returns the example question for an intent, or "".
func (c *Catalog) Example(i Intent) string {
	if r, ok := c.byIntent[i]; ok {
		return r.Example
	}
	return ""
}

// WithThreshold returns a copy of the catalog with a different clarify
// threshold. Rules are shared; they are read-only.
func (c *Catalog) WithThreshold(threshold float64) (*Catalog, error) {
	if threshold <= 0 || threshold > 1 {
		return nil, fmt.Errorf("threshold %.2f must be in (0, 1]", threshold)
	}
	if c.BlockerConfidence < threshold || c.FollowUpConfidence < threshold {
		return nil, fmt.Errorf("threshold %.2f exceeds blocker or follow-up confidence", threshold)
	}
	cp := *c
	cp.Threshold = threshold
	return &cp, nil
}

// --- YAML document ---

type catalogDoc struct {
	Threshold          float64   `yaml:"threshold"`
	StrengthK          float64   `yaml:"strength_k"`
	BlockerConfidence  float64   `yaml:"blocker_confidence"`
	FollowUpConfidence float64   `yaml:"follow_up_confidence"`
	StrongSignal       float64   `yaml:"strong_signal"`
	EntityWeight       float64   `yaml:"entity_weight"`
	Intents            []ruleDoc `yaml:"intents"`
}

type ruleDoc struct {
	Intent      Intent       `yaml:"intent"`
	Example     string       `yaml:"example"`
	Continuable bool         `yaml:"continuable"`
	Keywords    []keywordDoc `yaml:"keywords"`
	Entities    []entityDoc  `yaml:"entities"`
	Blockers    []blockerDoc `yaml:"blockers"`
}

type entityDoc struct {
	ID       string   `yaml:"id"`
	Weight   float64  `yaml:"weight"`
	Patterns []string `yaml:"patterns"`
}

type blockerDoc struct {
	Overrides []string `yaml:"overrides"`
	Phrases   []string `yaml:"phrases"`
}

// keywordDoc accepts either `phrase` or `[phrase, weight]`.
type keywordDoc struct {
	Phrase string
	Weight float64
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (k *keywordDoc) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		k.Weight = 1.0
		return node.Decode(&k.Phrase)
	case yaml.SequenceNode:
		if len(node.Content) != 2 {
			return fmt.Errorf("line %d: keyword must be [phrase, weight]", node.Line)
		}
		if err := node.Content[0].Decode(&k.Phrase); err != nil {
			return err
		}
		return node.Content[1].Decode(&k.Weight)
	default:
		return fmt.Errorf("line %d: keyword must be a phrase or [phrase, weight]", node.Line)
	}
}

// --- loading ---

var builtin = sync.OnceValues(func() (*Catalog, error) {
	return LoadCatalog(builtinCatalog)
})

// BuiltinCatalog returns the compiled embedded catalog.
func BuiltinCatalog() (*Catalog, error) {
	return builtin()
}

// LoadCatalogFile reads and compiles a catalog override file.
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	c, err := LoadCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// LoadCatalog parses, validates and compiles YAML catalog data.
func LoadCatalog(data []byte) (*Catalog, error) {
	var doc catalogDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := doc.validate(); err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}
	return doc.compile(), nil
}

func (d *catalogDoc) validate() error {
	if d.Threshold <= 0 || d.Threshold > 1 {
		return fmt.Errorf("threshold %.2f must be in (0, 1]", d.Threshold)
	}
	if d.StrengthK <= 0 {
		return fmt.Errorf("strength_k must be positive")
	}
	for name, v := range map[string]float64{
		"blocker_confidence":   d.BlockerConfidence,
		"follow_up_confidence": d.FollowUpConfidence,
	} {
		if v < d.Threshold || v > 1 {
			return fmt.Errorf("%s %.2f must be in [threshold, 1]", name, v)
		}
	}
	if d.StrongSignal <= 0 {
		return fmt.Errorf("strong_signal must be positive")
	}
	if d.EntityWeight < 0 {
		return fmt.Errorf("entity_weight must not be negative")
	}

	seen := make(map[Intent]bool)
	entities := make(map[string]Intent)
	for _, r := range d.Intents {
		if !r.Intent.Valid() {
			return fmt.Errorf("intent %q is not allowed in a catalog", r.Intent)
		}
		if r.Intent == IntentClarify {
			return fmt.Errorf("intent clarify is the fallback and takes no vocabulary")
		}
		if seen[r.Intent] {
			return fmt.Errorf("intent %s declared twice", r.Intent)
		}
		seen[r.Intent] = true

		if len(r.Keywords) == 0 {
			return fmt.Errorf("intent %s: no keywords", r.Intent)
		}
		for _, k := range r.Keywords {
			if err := checkPhrase(k.Phrase); err != nil {
				return fmt.Errorf("intent %s: %w", r.Intent, err)
			}
			if k.Weight <= 0 {
				return fmt.Errorf("intent %s: keyword %q: weight must be positive", r.Intent, k.Phrase)
			}
		}
		for _, e := range r.Entities {
			if e.ID == "" {
				return fmt.Errorf("intent %s: entity without id", r.Intent)
			}
			if owner, dup := entities[e.ID]; dup {
				return fmt.Errorf("entity %q declared by both %s and %s", e.ID, owner, r.Intent)
			}
			entities[e.ID] = r.Intent
			if len(e.Patterns) == 0 {
				return fmt.Errorf("intent %s: entity %q has no patterns", r.Intent, e.ID)
			}
			if e.Weight < 0 {
				return fmt.Errorf("intent %s: entity %q: weight must not be negative", r.Intent, e.ID)
			}
			for _, p := range e.Patterns {
				if err := checkPhrase(p); err != nil {
					return fmt.Errorf("intent %s: entity %q: %w", r.Intent, e.ID, err)
				}
			}
		}
		for _, b := range r.Blockers {
			if len(b.Overrides) == 0 || len(b.Phrases) == 0 {
				return fmt.Errorf("intent %s: blocker needs overrides and phrases", r.Intent)
			}
			for _, o := range b.Overrides {
				if o == overrideAny {
					continue
				}
				target, err := ParseIntent(o)
				if err != nil {
					return fmt.Errorf("intent %s: blocker: %w", r.Intent, err)
				}
				if target == r.Intent || !target.Valid() {
					return fmt.Errorf("intent %s: blocker cannot override %s", r.Intent, target)
				}
			}
			for _, p := range b.Phrases {
				if err := checkPhrase(p); err != nil {
					return fmt.Errorf("intent %s: blocker: %w", r.Intent, err)
				}
			}
		}
	}
	for _, required := range []Intent{IntentSensitive, IntentOutOfScope} {
		if !seen[required] {
			return fmt.Errorf("intent %s must be declared", required)
		}
	}
	return nil
}

// checkPhrase rejects phrases the normalizer would rewrite; such a phrase
// could never match normalized text.
func checkPhrase(p string) error {
	if strings.TrimSpace(p) == "" {
		return fmt.Errorf("empty phrase")
	}
	if got := normalize.Normalize(p).Text; got != p {
		return fmt.Errorf("phrase %q is not normalized (normalizes to %q)", p, got)
	}
	return nil
}

func (d *catalogDoc) compile() *Catalog {
	c := &Catalog{
		Threshold:          d.Threshold,
		StrengthK:          d.StrengthK,
		BlockerConfidence:  d.BlockerConfidence,
		FollowUpConfidence: d.FollowUpConfidence,
		StrongSignal:       d.StrongSignal,
		byIntent:           make(map[Intent]*Rule, len(d.Intents)),
	}
	for _, rd := range d.Intents {
		r := &Rule{
			Intent:      rd.Intent,
			Example:     rd.Example,
			Continuable: rd.Continuable,
		}
		for _, k := range rd.Keywords {
			r.Keywords = append(r.Keywords, compilePattern(k.Phrase, k.Weight))
		}
		for _, ed := range rd.Entities {
			w := ed.Weight
			if w == 0 {
				w = d.EntityWeight
			}
			e := Entity{ID: ed.ID, Weight: w}
			for _, p := range ed.Patterns {
				e.Patterns = append(e.Patterns, compilePattern(p, w))
			}
			r.Entities = append(r.Entities, e)
		}
		for _, bd := range rd.Blockers {
			var b Blocker
			for _, o := range bd.Overrides {
				if o == overrideAny {
					b.Any = true
					continue
				}
				target, _ := ParseIntent(o)
				b.Overrides = append(b.Overrides, target)
			}
			for _, p := range bd.Phrases {
				b.Phrases = append(b.Phrases, compilePattern(p, 0))
			}
			r.Blockers = append(r.Blockers, b)
		}
		c.rules = append(c.rules, r)
		c.byIntent[r.Intent] = r
	}
	return c
}

// compilePattern builds a word-boundary regexp. Multi-word phrases match
// exactly; single words of four or more letters also accept common suffixes
// (crash -> crashes, crashing) while short words like "hi" stay exact.
func compilePattern(phrase string, weight float64) Pattern {
	var expr string
	if strings.Contains(phrase, " ") || len([]rune(phrase)) < 4 {
		expr = `\b` + regexp.QuoteMeta(phrase) + `\b`
	} else {
		expr = `\b` + regexp.QuoteMeta(phrase) + `(?:s|es|ed|ing)?\b`
	}
	return Pattern{
		Phrase: phrase,
		Weight: weight,
		re:     regexp.MustCompile(expr),
	}
}
