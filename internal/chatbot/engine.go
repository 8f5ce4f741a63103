// ABOUTME: Response selector: turns a query and a session into a reply and the next session
// ABOUTME: Least-recently-used variant rotation, contextual suggestions, escalated clarify copy

package chatbot

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/mauromedda/portfolio-bot/internal/intent"
	"github.com/mauromedda/portfolio-bot/internal/normalize"
	"github.com/mauromedda/portfolio-bot/internal/session"
)

// maxSuggestions caps the follow-up prompts offered with a reply.
const maxSuggestions = 3

// repeatKey is the variant key of the escalated clarify pool.
const repeatKey = "clarify/repeat"

// Reply is what a visitor sees for one question, plus the session to send
// back with the next one.
type Reply struct {
	Text        string         `json:"text"`
	Intent      intent.Intent  `json:"intent"`
	Confidence  float64        `json:"confidence"`
	Entity      string         `json:"entity,omitempty"`
	VariantID   string         `json:"variant_id"`
	Suggestions []string       `json:"suggestions"`
	Session     session.State  `json:"session"`
	Match       intent.Outcome `json:"match"`
}

// target is what a suggestion prompt resolves to on its own.
type target struct {
	intent intent.Intent
	entity string
}

// Engine answers visitor questions. It holds no conversation state and is
// safe for concurrent use; every conversation threads its own session.State.
type Engine struct {
	matcher *intent.Matcher
	replies *Replies
	targets map[string]target
}

// New checks that the replies cover the catalog and builds an engine.
// Every suggestion must classify to a real intent on its own.
func New(c *intent.Catalog, r *Replies) (*Engine, error) {
	for _, rule := range c.Rules() {
		if _, ok := r.Pools[rule.Intent]; !ok {
			return nil, fmt.Errorf("no replies for intent %s", rule.Intent)
		}
	}
	if _, ok := r.Pools[intent.IntentClarify]; !ok {
		return nil, fmt.Errorf("no replies for intent %s", intent.IntentClarify)
	}
	for id, p := range r.Pools {
		if id == intent.IntentClarify {
			continue
		}
		rule, ok := c.Rule(id)
		if !ok {
			return nil, fmt.Errorf("replies for intent %s, which the catalog does not declare", id)
		}
		for ent := range p.Entities {
			if !hasEntity(rule, ent) {
				return nil, fmt.Errorf("intent %s: replies for unknown entity %q", id, ent)
			}
		}
	}

	e := &Engine{
		matcher: intent.NewMatcher(c),
		replies: r,
		targets: make(map[string]target),
	}
	for _, prompt := range e.Prompts() {
		o := e.matcher.Match(normalize.Normalize(prompt), intent.Context{})
		if o.Unclear() {
			return nil, fmt.Errorf("suggestion %q is not understood by the catalog", prompt)
		}
		e.targets[prompt] = target{intent: o.Intent, entity: o.Entity}
	}
	return e, nil
}

var defaultEngine = sync.OnceValue(func() *Engine {
	c, err := intent.BuiltinCatalog()
	if err != nil {
		panic(fmt.Sprintf("builtin catalog: %v", err))
	}
	r, err := BuiltinReplies()
	if err != nil {
		panic(fmt.Sprintf("builtin replies: %v", err))
	}
	e, err := New(c, r)
	if err != nil {
		panic(fmt.Sprintf("builtin engine: %v", err))
	}
	return e
})

// Default returns the engine over the embedded catalog and replies.
func Default() *Engine {
	return defaultEngine()
}

// Catalog returns the catalog the engine matches against.
func (e *Engine) Catalog() *intent.Catalog {
	return e.matcher.Catalog()
}

// Starters returns the prompts a surface shows before the first question.
func (e *Engine) Starters() []string {
	return slices.Clone(e.replies.DefaultSuggestions)
}

// Profile returns the portfolio owner's details used in replies, keyed by
// placeholder name (name, role, email, ...).
func (e *Engine) Profile() map[string]string {
	return maps.Clone(e.replies.Profile)
}

// Prompts returns every suggestion the engine may offer, sorted.
func (e *Engine) Prompts() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(list []string) {
		for _, s := range list {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	add(e.replies.DefaultSuggestions)
	for _, p := range e.replies.Pools {
		add(p.Suggestions)
	}
	sort.Strings(out)
	return out
}

// Respond answers one question. It is a pure function of (query, s): the
// same pair always yields the same reply, and s is never modified.
func (e *Engine) Respond(query string, s session.State) Reply {
	q := normalize.Normalize(query)
	o := e.matcher.Match(q, s.Context())

	key, variants := e.pool(o)
	idx := leastRecentlyUsed(key, len(variants), s)
	vid := variantID(key, idx)

	text := variants[idx]
	if o.Unclear() {
		text = strings.ReplaceAll(text, candidatesPlaceholder, e.candidates(o))
	}

	return Reply{
		Text:        text,
		Intent:      o.Intent,
		Confidence:  o.Confidence,
		Entity:      o.Entity,
		VariantID:   vid,
		Suggestions: e.suggest(o, s),
		Session:     s.Next(o, q.Text, vid),
		Match:       o,
	}
}

// pool picks the variant list for an outcome: the escalated clarify copy on a
// repeated unclear question, entity copy when the entity has its own, else
// the intent's generic copy.
func (e *Engine) pool(o intent.Outcome) (string, []string) {
	if o.Repeated {
		return repeatKey, e.replies.ClarifyRepeat
	}
	p := e.replies.Pools[o.Intent]
	if o.Entity != "" {
		if vs, ok := p.Entities[o.Entity]; ok {
			return o.Intent.String() + "/" + o.Entity, vs
		}
	}
	return o.Intent.String(), p.Variants
}

// leastRecentlyUsed returns the index of the variant shown longest ago.
// Never-shown variants come first; ties keep declaration order.
func leastRecentlyUsed(key string, n int, s session.State) int {
	best, bestTurn := 0, math.MaxInt
	for i := range n {
		turn, _ := s.LastUsed(variantID(key, i))
		if turn < bestTurn {
			best, bestTurn = i, turn
		}
	}
	return best
}

func variantID(key string, i int) string {
	return key + "#" + strconv.Itoa(i)
}

// suggest builds the follow-up prompts for a reply.
func (e *Engine) suggest(o intent.Outcome, s session.State) []string {
	if o.Intent == intent.IntentGreeting && s.Fresh() {
		return nil
	}

	var pool []string
	if o.Unclear() {
		for _, i := range []intent.Intent{o.Candidate, o.Runner} {
			if rule, ok := e.Catalog().Rule(i); ok && rule.Continuable && rule.Example != "" {
				pool = append(pool, rule.Example)
			}
		}
		pool = append(pool, e.replies.DefaultSuggestions...)
	} else {
		pool = e.replies.Pools[o.Intent].Suggestions
		if len(pool) == 0 {
			pool = e.replies.DefaultSuggestions
		}
	}

	out := make([]string, 0, maxSuggestions)
	seen := make(map[string]bool)
	answered := target{intent: o.Intent, entity: o.Entity}
	for _, p := range pool {
		if seen[p] {
			continue
		}
		seen[p] = true
		if t, ok := e.targets[p]; ok && t == answered {
			continue
		}
		out = append(out, p)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}

// candidates names the topics closest to an unclear question.
func (e *Engine) candidates(o intent.Outcome) string {
	var labels []string
	for _, i := range []intent.Intent{o.Candidate, o.Runner} {
		p, ok := e.replies.Pools[i]
		if !ok || p.Label == "" {
			continue
		}
		if len(labels) > 0 && labels[0] == p.Label {
			continue
		}
		labels = append(labels, p.Label)
	}
	if len(labels) == 0 {
		return e.replies.CandidatesFallback
	}
	return strings.Join(labels, " or ")
}

func hasEntity(r *intent.Rule, id string) bool {
	for _, ent := range r.Entities {
		if ent.ID == id {
			return true
		}
	}
	return false
}
