// ABOUTME: Intent enum, match outcome, and signal types for visitor question routing
// ABOUTME: Intents marshal as snake_case text so catalogs, replies and JSON share one vocabulary

package intent

import (
	"fmt"
	"strings"
)

// Intent is the closed set of things a visitor can ask about.
type Intent int

const (
	IntentNone        Intent = iota // No intent yet (fresh session)
	IntentGreeting                  // hi, hello, namaste
	IntentAbout                     // who are you, introduce yourself
	IntentExperience                // work history, internships
	IntentProject                   // portfolio projects, optionally one named project
	IntentSkill                     // languages, frameworks, tools
	IntentEducation                 // degree, college
	IntentResume                    // resume / cv download
	IntentContact                   // email, linkedin, github
	IntentHobby                     // interests outside work
	IntentThanks                    // gratitude
	IntentGoodbye                   // farewells
	IntentClarify                   // could not decide; ask the visitor to rephrase
	IntentOutOfScope                // general knowledge unrelated to the profile
	IntentSensitive                 // personal, family, address, relationship probes
)

var intentNames = [...]string{
	IntentNone:       "none",
	IntentGreeting:   "greeting",
	IntentAbout:      "about",
	IntentExperience: "experience",
	IntentProject:    "project",
	IntentSkill:      "skill",
	IntentEducation:  "education",
	IntentResume:     "resume",
	IntentContact:    "contact",
	IntentHobby:      "hobby",
	IntentThanks:     "thanks",
	IntentGoodbye:    "goodbye",
	IntentClarify:    "clarify",
	IntentOutOfScope: "out_of_scope",
	IntentSensitive:  "sensitive",
}

// All returns every intent except IntentNone, in declaration order.
func All() []Intent {
	out := make([]Intent, 0, len(intentNames)-1)
	for i := IntentGreeting; int(i) < len(intentNames); i++ {
		out = append(out, i)
	}
	return out
}

// String returns the snake_case name of the intent.
func (i Intent) String() string {
	if i >= 0 && int(i) < len(intentNames) {
		return intentNames[i]
	}
	return fmt.Sprintf("unknown(%d)", int(i))
}

// Valid reports whether i is a declared intent other than IntentNone.
func (i Intent) Valid() bool {
	return i > IntentNone && int(i) < len(intentNames)
}

// ParseIntent maps a snake_case name to its Intent.
func ParseIntent(s string) (Intent, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range intentNames {
		if n == name {
			return Intent(i), nil
		}
	}
	return IntentNone, fmt.Errorf("unknown intent: %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (i Intent) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *Intent) UnmarshalText(b []byte) error {
	v, err := ParseIntent(string(b))
	if err != nil {
		return err
	}
	*i = v
	return nil
}

// Outcome is the result of matching one query. It is built once per call
// and never modified afterwards.
type Outcome struct {
	Intent      Intent   `json:"intent"`
	Entity      string   `json:"entity,omitempty"`
	Confidence  float64  `json:"confidence"`
	Score       float64  `json:"score"`        // raw score of the best scoring intent
	SecondScore float64  `json:"second_score"` // raw score of the runner-up
	Candidate   Intent   `json:"candidate"`    // best raw intent before the clarify fallback
	Runner      Intent   `json:"runner"`       // runner-up raw intent
	FollowUp    bool     `json:"follow_up,omitempty"`
	Blocked     bool     `json:"blocked,omitempty"`  // a blocker rule decided the intent
	Repeated    bool     `json:"repeated,omitempty"` // same unclear query as the previous turn
	Signals     []Signal `json:"signals,omitempty"`
}

// Unclear reports whether the outcome asks the visitor to rephrase.
func (o Outcome) Unclear() bool {
	return o.Intent == IntentClarify
}

// Signal records one rule that fired while matching.
type Signal struct {
	Name   string  `json:"name"`   // keyword_match, entity_match, blocker, follow_up, threshold
	Intent Intent  `json:"intent"` // intent the rule belongs to
	Weight float64 `json:"weight"`
	Detail string  `json:"detail"` // matched phrase or explanation
}

// Context is the part of a conversation the matcher consults: what was
// resolved on the previous turn.
type Context struct {
	LastIntent     Intent
	LastEntity     string
	LastNormalized string
	UnclearCount   int
}
