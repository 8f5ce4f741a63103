// ABOUTME: Reply pools loaded from embedded YAML: variants, per-entity copy, suggestions, profile fields
// ABOUTME: Profile placeholders are expanded at load; {candidates} is left for the escalated clarify reply

package chatbot

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/mauromedda/portfolio-bot/internal/intent"
)

//go:embed replies.yaml
var builtinReplies []byte

// candidatesPlaceholder is expanded per turn with the topics closest to an
// unclear question.
const candidatesPlaceholder = "{candidates}"

var placeholderRe = regexp.MustCompile(`\{[a-z_]+\}`)

// Replies holds the compiled reply pools. Read-only after loading.
type Replies struct {
	Profile            map[string]string
	DefaultSuggestions []string
	CandidatesFallback string
	ClarifyRepeat      []string
	Pools              map[intent.Intent]*Pool
}

// Pool is the reply copy for one intent.
type Pool struct {
	Label       string              // short topic name used when listing candidates
	Variants    []string            // generic replies
	Entities    map[string][]string // entity id -> specialised replies
	Suggestions []string
}

type repliesDoc struct {
	Profile            map[string]string   `yaml:"profile"`
	DefaultSuggestions []string            `yaml:"default_suggestions"`
	CandidatesFallback string              `yaml:"candidates_fallback"`
	ClarifyRepeat      []string            `yaml:"clarify_repeat"`
	Intents            map[string]*poolDoc `yaml:"intents"`
}

type poolDoc struct {
	Label       string              `yaml:"label"`
	Variants    []string            `yaml:"variants"`
	Entities    map[string][]string `yaml:"entities"`
	Suggestions []string            `yaml:"suggestions"`
}

var builtinRepliesOnce = sync.OnceValues(func() (*Replies, error) {
	return LoadReplies(builtinReplies)
})

// BuiltinReplies returns the compiled embedded reply pools.
func BuiltinReplies() (*Replies, error) {
	return builtinRepliesOnce()
}

// LoadRepliesFile reads and compiles a replies override file.
func LoadRepliesFile(path string) (*Replies, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read replies %s: %w", path, err)
	}
	r, err := LoadReplies(data)
	if err != nil {
		return nil, fmt.Errorf("replies %s: %w", path, err)
	}
	return r, nil
}

// LoadReplies parses YAML reply data and expands profile placeholders.
// Coverage against a catalog is checked by New.
func LoadReplies(data []byte) (*Replies, error) {
	var doc repliesDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse replies: %w", err)
	}
	if len(doc.ClarifyRepeat) == 0 {
		return nil, fmt.Errorf("clarify_repeat needs at least one variant")
	}
	if doc.CandidatesFallback == "" {
		return nil, fmt.Errorf("candidates_fallback is required")
	}

	pairs := make([]string, 0, 2*len(doc.Profile))
	keys := make([]string, 0, len(doc.Profile))
	for k := range doc.Profile {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", doc.Profile[k])
	}
	fill := strings.NewReplacer(pairs...)

	r := &Replies{
		Profile:            doc.Profile,
		DefaultSuggestions: doc.DefaultSuggestions,
		CandidatesFallback: doc.CandidatesFallback,
		Pools:              make(map[intent.Intent]*Pool, len(doc.Intents)),
	}

	var err error
	if r.ClarifyRepeat, err = expand(fill, "clarify_repeat", doc.ClarifyRepeat, true); err != nil {
		return nil, err
	}

	for name, pd := range doc.Intents {
		id, perr := intent.ParseIntent(name)
		if perr != nil || !id.Valid() {
			return nil, fmt.Errorf("replies: unknown intent %q", name)
		}
		if pd == nil || len(pd.Variants) == 0 {
			return nil, fmt.Errorf("intent %s: no variants", id)
		}
		p := &Pool{Label: pd.Label, Suggestions: pd.Suggestions}
		if p.Variants, err = expand(fill, id.String(), pd.Variants, id == intent.IntentClarify); err != nil {
			return nil, err
		}
		if len(pd.Entities) > 0 {
			p.Entities = make(map[string][]string, len(pd.Entities))
			for ent, vs := range pd.Entities {
				if len(vs) == 0 {
					return nil, fmt.Errorf("intent %s: entity %q has no variants", id, ent)
				}
				if p.Entities[ent], err = expand(fill, id.String()+"/"+ent, vs, false); err != nil {
					return nil, err
				}
			}
		}
		r.Pools[id] = p
	}
	return r, nil
}

// expand fills profile placeholders and rejects any left over, except
// {candidates} where allowed.
func expand(fill *strings.Replacer, where string, in []string, allowCandidates bool) ([]string, error) {
	out := make([]string, len(in))
	for i, s := range in {
		if strings.TrimSpace(s) == "" {
			return nil, fmt.Errorf("%s: variant %d is empty", where, i)
		}
		s = fill.Replace(s)
		for _, ph := range placeholderRe.FindAllString(s, -1) {
			if ph == candidatesPlaceholder && allowCandidates {
				continue
			}
			return nil, fmt.Errorf("%s: unknown placeholder %s", where, ph)
		}
		out[i] = s
	}
	return out, nil
}
