// ABOUTME: Per-conversation chat state: last intent/entity, unclear streak, variant rotation history
// ABOUTME: Immutable value type; Next returns a fresh state so earlier turns stay replayable

package session

import (
	"maps"

	"github.com/mauromedda/portfolio-bot/internal/intent"
)

// State is what one conversation remembers between turns. The zero value is
// a fresh conversation. States are values: Next never modifies its receiver.
type State struct {
	Turn           int            `json:"turn"`
	LastIntent     intent.Intent  `json:"last_intent"`
	LastEntity     string         `json:"last_entity,omitempty"`
	LastNormalized string         `json:"last_normalized,omitempty"`
	UnclearCount   int            `json:"unclear_count"`
	VariantUses    map[string]int `json:"variant_uses,omitempty"` // variant key -> turn it was last shown
}

// New returns the initial state of a conversation.
func New() State {
	return State{}
}

// Fresh reports whether no turn has been answered yet.
func (s State) Fresh() bool {
	return s.Turn == 0
}

// Context is the view of the state the matcher consults.
func (s State) Context() intent.Context {
	return intent.Context{
		LastIntent:     s.LastIntent,
		LastEntity:     s.LastEntity,
		LastNormalized: s.LastNormalized,
		UnclearCount:   s.UnclearCount,
	}
}

// LastUsed returns the turn a variant key was last shown on, and whether it
// was ever shown.
func (s State) LastUsed(variantKey string) (int, bool) {
	turn, ok := s.VariantUses[variantKey]
	return turn, ok
}

// Next records a resolved turn and returns the resulting state.
// normalized is the normalized query text; variantKey identifies the reply
// variant shown ("" when none was).
func (s State) Next(o intent.Outcome, normalized, variantKey string) State {
	next := State{
		Turn:           s.Turn + 1,
		LastIntent:     o.Intent,
		LastEntity:     o.Entity,
		LastNormalized: normalized,
		VariantUses:    maps.Clone(s.VariantUses),
	}
	if o.Unclear() {
		next.UnclearCount = s.UnclearCount + 1
	}
	if variantKey != "" {
		if next.VariantUses == nil {
			next.VariantUses = make(map[string]int, 1)
		}
		next.VariantUses[variantKey] = next.Turn
	}
	return next
}
