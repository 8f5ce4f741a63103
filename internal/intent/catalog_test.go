// ABOUTME: Tests for catalog loading: the embedded table, validation errors, pattern compilation
// ABOUTME: Every validation rule gets a minimal YAML document that trips it

package intent

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const minimalCatalog = `
threshold: 0.5
strength_k: 0.5
blocker_confidence: 0.9
follow_up_confidence: 0.85
strong_signal: 1.0
entity_weight: 2.0
intents:
  - intent: sensitive
    keywords: [[family, 2.0]]
  - intent: out_of_scope
    keywords: [weather]
`

func TestBuiltinCatalog_Loads(t *testing.T) {
	t.Parallel()

	c, err := BuiltinCatalog()
	if err != nil {
		t.Fatalf("BuiltinCatalog() error = %v", err)
	}
	for _, i := range All() {
		_, ok := c.Rule(i)
		if i == IntentClarify {
			if ok {
				t.Error("clarify must not have catalog vocabulary")
			}
			continue
		}
		if !ok {
			t.Errorf("intent %v missing from builtin catalog", i)
		}
	}
	if c.Threshold != 0.5 {
		t.Errorf("Threshold = %v; want 0.5", c.Threshold)
	}
}

func TestBuiltinCatalog_Shared(t *testing.T) {
	t.Parallel()

	a, _ := BuiltinCatalog()
	b, _ := BuiltinCatalog()
	if a != b {
		t.Error("BuiltinCatalog should compile once")
	}
}

func TestBuiltinCatalog_SensitiveFirst(t *testing.T) {
	t.Parallel()

	c, _ := BuiltinCatalog()
	rules := c.Rules()
	if rules[0].Intent != IntentSensitive {
		t.Errorf("first rule = %v; want sensitive so its blocker is checked first", rules[0].Intent)
	}

	rules[0] = nil
	if c.Rules()[0] == nil {
		t.Error("Rules() must return a copy")
	}
}

func TestBuiltinCatalog_Examples(t *testing.T) {
	t.Parallel()

	c, _ := BuiltinCatalog()
	for _, r := range c.Rules() {
		if r.Example == "" {
			t.Errorf("intent %v has no example question", r.Intent)
		}
	}
	if got := c.Example(IntentClarify); got != "" {
		t.Errorf("Example(clarify) = %q; want empty", got)
	}
}

func TestLoadCatalog_Minimal(t *testing.T) {
	t.Parallel()

	c, err := LoadCatalog([]byte(minimalCatalog))
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	r, ok := c.Rule(IntentOutOfScope)
	if !ok {
		t.Fatal("out_of_scope rule missing")
	}
	if r.Keywords[0].Weight != 1.0 {
		t.Errorf("bare keyword weight = %v; want 1.0", r.Keywords[0].Weight)
	}
}

func TestLoadCatalog_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		replace [2]string
		extra   string
		wantErr string
	}{
		{
			name:    "threshold out of range",
			replace: [2]string{"threshold: 0.5", "threshold: 1.5"},
			wantErr: "threshold",
		},
		{
			name:    "blocker confidence below threshold",
			replace: [2]string{"blocker_confidence: 0.9", "blocker_confidence: 0.2"},
			wantErr: "blocker_confidence",
		},
		{
			name:    "unknown intent",
			extra:   "  - intent: weather\n    keywords: [rain]\n",
			wantErr: "unknown intent",
		},
		{
			name:    "clarify declared",
			extra:   "  - intent: clarify\n    keywords: [what]\n",
			wantErr: "fallback",
		},
		{
			name:    "duplicate intent",
			extra:   "  - intent: sensitive\n    keywords: [salary]\n",
			wantErr: "declared twice",
		},
		{
			name:    "no keywords",
			extra:   "  - intent: hobby\n",
			wantErr: "no keywords",
		},
		{
			name:    "zero weight",
			extra:   "  - intent: hobby\n    keywords: [[chess, 0]]\n",
			wantErr: "weight must be positive",
		},
		{
			name:    "phrase not normalized",
			extra:   "  - intent: resume\n    keywords: [CV]\n",
			wantErr: "not normalized",
		},
		{
			name:    "entity without patterns",
			extra:   "  - intent: skill\n    keywords: [skill]\n    entities:\n      - id: golang\n",
			wantErr: "no patterns",
		},
		{
			name:    "blocker overrides itself",
			extra:   "  - intent: hobby\n    keywords: [chess]\n    blockers:\n      - overrides: [hobby]\n        phrases: [chess]\n",
			wantErr: "cannot override",
		},
		{
			name:    "blocker overrides unknown",
			extra:   "  - intent: hobby\n    keywords: [chess]\n    blockers:\n      - overrides: [nonsense]\n        phrases: [chess]\n",
			wantErr: "unknown intent",
		},
		{
			name:    "missing required intent",
			replace: [2]string{"intent: out_of_scope", "intent: hobby"},
			wantErr: "out_of_scope must be declared",
		},
		{
			name:    "malformed keyword",
			extra:   "  - intent: hobby\n    keywords: [[chess, 1.0, extra]]\n",
			wantErr: "[phrase, weight]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			doc := minimalCatalog
			if tt.replace[0] != "" {
				doc = strings.Replace(doc, tt.replace[0], tt.replace[1], 1)
			}
			doc += tt.extra
			_, err := LoadCatalog([]byte(doc))
			if err == nil {
				t.Fatalf("LoadCatalog() succeeded; want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q; want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadCatalogFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	if err := os.WriteFile(path, []byte(minimalCatalog), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCatalogFile(path); err != nil {
		t.Fatalf("LoadCatalogFile() error = %v", err)
	}

	_, err := LoadCatalogFile(filepath.Join(dir, "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "missing.yaml") {
		t.Errorf("missing file error = %v; want it to name the path", err)
	}
}

func TestCompilePattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		phrase string
		text   string
		want   bool
	}{
		{"project", "your projects", true},
		{"project", "projection", false},
		{"build", "building things", true},
		{"hi", "hi there", true},
		{"hi", "his work", false},
		{"hi", "this", false},
		{"see you", "see you soon", true},
		{"see you", "see yous", false},
		{"node", "nodes", true},
		{"sql", "sqls", false},
	}
	for _, tt := range tests {
		p := compilePattern(tt.phrase, 1)
		if got := p.Match(tt.text); got != tt.want {
			t.Errorf("compilePattern(%q).Match(%q) = %v; want %v", tt.phrase, tt.text, got, tt.want)
		}
	}
}

func TestBlocker_Applies(t *testing.T) {
	t.Parallel()

	wildcard := Blocker{Any: true}
	if !wildcard.Applies(IntentProject) {
		t.Error("any-blocker should apply to every intent")
	}
	scoped := Blocker{Overrides: []Intent{IntentAbout}}
	if !scoped.Applies(IntentAbout) || scoped.Applies(IntentSkill) {
		t.Error("scoped blocker should apply only to its overrides")
	}
}

func TestRule_ExtractEntity(t *testing.T) {
	t.Parallel()

	c, _ := BuiltinCatalog()
	r, _ := c.Rule(IntentProject)
	tests := []struct {
		text string
		want string
	}{
		{"tell me about quantum pdf", "quantumPDF"},
		{"the image to sketch app", "imageToSketch"},
		{"your projects", ""},
	}
	for _, tt := range tests {
		if got := r.ExtractEntity(tt.text); got != tt.want {
			t.Errorf("ExtractEntity(%q) = %q; want %q", tt.text, got, tt.want)
		}
	}
}

func TestCatalog_WithThreshold(t *testing.T) {
	t.Parallel()

	c, _ := BuiltinCatalog()
	stricter, err := c.WithThreshold(0.7)
	if err != nil {
		t.Fatalf("WithThreshold(0.7) error = %v", err)
	}
	if stricter.Threshold != 0.7 || c.Threshold != 0.5 {
		t.Errorf("thresholds = %v/%v; want 0.7 on the copy and 0.5 on the original", stricter.Threshold, c.Threshold)
	}
	if len(stricter.Rules()) != len(c.Rules()) {
		t.Error("copy should share the rule table")
	}

	if _, err := c.WithThreshold(0.95); err == nil {
		t.Error("threshold above blocker confidence should be rejected")
	}
	if _, err := c.WithThreshold(0); err == nil {
		t.Error("zero threshold should be rejected")
	}
}
