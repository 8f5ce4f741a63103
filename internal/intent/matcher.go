// ABOUTME: Catalog-driven matcher: weighted scoring, blocker overrides, entity extraction
// ABOUTME: Resolves follow-ups and repeated unclear queries from the previous turn's context

package intent

import (
	"math"

	"github.com/mauromedda/portfolio-bot/internal/normalize"
)

// Matcher classifies normalized queries against a catalog. It holds no
// per-conversation state and is safe for concurrent use.
type Matcher struct {
	catalog *Catalog
}

// NewMatcher creates a matcher over the given catalog.
func NewMatcher(c *Catalog) *Matcher {
	return &Matcher{catalog: c}
}

// Catalog returns the catalog the matcher scores against.
func (m *Matcher) Catalog() *Catalog {
	return m.catalog
}

// intentScore is the raw score of one rule for one query.
type intentScore struct {
	rule    *Rule
	score   float64
	signals []Signal
}

// Match classifies q given what was resolved on the previous turn.
// Strategy: score every rule, continue the previous topic on follow-up
// markers, let blockers override the raw winner, then fall back to clarify
// when the winner does not stand out enough.
func (m *Matcher) Match(q normalize.Query, ctx Context) Outcome {
	scores := m.score(q.Text)

	var best, second intentScore
	for _, s := range scores {
		if s.score > best.score {
			second = best
			best = s
		} else if s.score > second.score {
			second = s
		}
	}

	out := Outcome{
		Score:       best.score,
		SecondScore: second.score,
		Candidate:   ruleIntent(best.rule),
		Runner:      ruleIntent(second.rule),
	}
	for _, s := range scores {
		out.Signals = append(out.Signals, s.signals...)
	}

	if o, ok := m.followUp(q, ctx, scores, out); ok {
		return o
	}

	if winner, phrase, ok := m.blocked(q.Text, out.Candidate, out.Runner); ok {
		contender := out.Candidate
		if winner.Intent == contender {
			contender = out.Runner
		}
		out.Intent = winner.Intent
		out.Entity = winner.ExtractEntity(q.Text)
		out.Confidence = m.catalog.BlockerConfidence
		out.Blocked = true
		out.Signals = append(out.Signals, Signal{
			Name:   "blocker",
			Intent: winner.Intent,
			Weight: m.catalog.BlockerConfidence,
			Detail: phrase + " overrides " + contender.String(),
		})
		return out
	}

	out.Confidence = m.confidence(best.score, second.score)
	if best.rule == nil || out.Confidence < m.catalog.Threshold {
		out.Intent = IntentClarify
		out.Signals = append(out.Signals, Signal{
			Name:   "threshold",
			Intent: IntentClarify,
			Weight: out.Confidence,
			Detail: "below threshold",
		})
		out.Repeated = ctx.UnclearCount > 0 && q.Text == ctx.LastNormalized
		return out
	}

	out.Intent = best.rule.Intent
	out.Entity = best.rule.ExtractEntity(q.Text)
	return out
}

// score computes the raw score of every rule that matched at least once,
// in catalog order. An entity counts once however many of its patterns match.
func (m *Matcher) score(text string) []intentScore {
	if text == "" {
		return nil
	}
	var scores []intentScore
	for _, r := range m.catalog.rules {
		s := intentScore{rule: r}
		for _, kw := range r.Keywords {
			if kw.Match(text) {
				s.score += kw.Weight
				s.signals = append(s.signals, Signal{
					Name:   "keyword_match",
					Intent: r.Intent,
					Weight: kw.Weight,
					Detail: kw.Phrase,
				})
			}
		}
		for _, e := range r.Entities {
			if p, ok := e.Match(text); ok {
				s.score += e.Weight
				s.signals = append(s.signals, Signal{
					Name:   "entity_match",
					Intent: r.Intent,
					Weight: e.Weight,
					Detail: e.ID + ": " + p.Phrase,
				})
			}
		}
		if s.score > 0 {
			scores = append(scores, s)
		}
	}
	return scores
}

// followUp continues the previous intent when the query carries a follow-up
// marker, the previous intent is continuable, and no other intent scores a
// strong signal of its own.
func (m *Matcher) followUp(q normalize.Query, ctx Context, scores []intentScore, base Outcome) (Outcome, bool) {
	if !q.HasFollowUpMarker || !ctx.LastIntent.Valid() {
		return Outcome{}, false
	}
	last, ok := m.catalog.Rule(ctx.LastIntent)
	if !ok || !last.Continuable {
		return Outcome{}, false
	}
	for _, s := range scores {
		if s.rule.Intent != last.Intent && s.score >= m.catalog.StrongSignal {
			return Outcome{}, false
		}
	}

	out := base
	out.Intent = last.Intent
	out.Entity = last.ExtractEntity(q.Text)
	if out.Entity == "" {
		out.Entity = ctx.LastEntity
	}
	out.Confidence = m.catalog.FollowUpConfidence
	out.FollowUp = true
	out.Signals = append(out.Signals, Signal{
		Name:   "follow_up",
		Intent: last.Intent,
		Weight: m.catalog.FollowUpConfidence,
		Detail: q.FollowUpMarker,
	})
	return out, true
}

// blocked returns the first rule, in catalog order, with a blocker whose
// phrase is present and which overrides the intent competing with it: the
// raw winner, or the runner-up when the rule itself scored highest.
func (m *Matcher) blocked(text string, top, runner Intent) (*Rule, string, bool) {
	if text == "" {
		return nil, "", false
	}
	for _, r := range m.catalog.rules {
		contender := top
		if r.Intent == top {
			contender = runner
			if contender == IntentNone {
				continue
			}
		}
		for _, b := range r.Blockers {
			if !b.Applies(contender) {
				continue
			}
			if p, ok := b.Fired(text); ok {
				return r, p.Phrase, true
			}
		}
	}
	return nil, "", false
}

// confidence blends absolute strength with separation from the runner-up:
// a lone strong match is confident, two close matches are not.
// best=1.0 alone -> 0.83; best=1.5, second=1.0 -> 0.54; a tie -> below 0.5.
func (m *Matcher) confidence(best, second float64) float64 {
	if best <= 0 {
		return 0
	}
	strength := best / (best + m.catalog.StrengthK)
	separation := (best - second) / best
	return round3(0.5*strength + 0.5*separation)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func ruleIntent(r *Rule) Intent {
	if r == nil {
		return IntentNone
	}
	return r.Intent
}
