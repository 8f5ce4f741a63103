// ABOUTME: Tests for the regression harness and the accuracy floor of the builtin engine
// ABOUTME: The embedded fixture set must span every intent and score at least 90%

package eval

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mauromedda/portfolio-bot/internal/chatbot"
	"github.com/mauromedda/portfolio-bot/internal/intent"
)

func TestBuiltinFixtures_SpanEveryIntent(t *testing.T) {
	t.Parallel()

	fx, err := BuiltinFixtures()
	if err != nil {
		t.Fatalf("BuiltinFixtures() error = %v", err)
	}
	if len(fx) < 150 {
		t.Errorf("len(fixtures) = %d; want at least 150", len(fx))
	}

	seen := make(map[intent.Intent]int)
	for _, f := range fx {
		seen[f.Intent]++
	}
	for _, i := range intent.All() {
		if seen[i] == 0 {
			t.Errorf("no fixture labeled %v", i)
		}
	}
}

func TestRun_BuiltinAccuracy(t *testing.T) {
	t.Parallel()

	fx, err := BuiltinFixtures()
	if err != nil {
		t.Fatal(err)
	}
	rep, err := Run(context.Background(), chatbot.Default(), fx, 4)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if rep.Total != len(fx) {
		t.Errorf("Total = %d; want %d", rep.Total, len(fx))
	}
	if acc := rep.Accuracy(); acc < 0.9 {
		var buf bytes.Buffer
		_ = rep.WriteText(&buf)
		t.Errorf("accuracy = %.3f; want >= 0.9\n%s", acc, buf.String())
	}
}

func TestRun_Deterministic(t *testing.T) {
	t.Parallel()

	fx, _ := BuiltinFixtures()
	a, _ := Run(context.Background(), chatbot.Default(), fx, 1)
	b, _ := Run(context.Background(), chatbot.Default(), fx, 8)
	for i := range a.Results {
		if a.Results[i] != b.Results[i] {
			t.Fatalf("result %d differs between serial and parallel runs: %+v vs %+v", i, a.Results[i], b.Results[i])
		}
	}
}

func TestRun_EntityMismatchFails(t *testing.T) {
	t.Parallel()

	fx := []Fixture{
		{Query: "tell me about quantumpdf", Intent: intent.IntentProject, Entity: "quantumPDF"},
		{Query: "tell me about quantumpdf", Intent: intent.IntentProject, Entity: "thesisFlow"},
		{Query: "tell me about quantumpdf", Intent: intent.IntentProject},
	}
	rep, err := Run(context.Background(), chatbot.Default(), fx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Passed != 2 {
		t.Errorf("Passed = %d; want 2", rep.Passed)
	}
	if f := rep.Failures(); len(f) != 1 || f[0].Entity != "thesisFlow" {
		t.Errorf("Failures() = %+v; want the thesisFlow fixture", f)
	}
}

func TestRun_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fx, _ := BuiltinFixtures()
	if _, err := Run(ctx, chatbot.Default(), fx, 2); err == nil {
		t.Error("expected error from a cancelled run")
	}
}

func TestLoadFixtures_Invalid(t *testing.T) {
	t.Parallel()

	if _, err := LoadFixtures([]byte(`- {query: "hi"}`)); err == nil {
		t.Error("expected error for fixture without intent")
	}
	if _, err := LoadFixtures([]byte(`- {query: "hi", intent: wave}`)); err == nil {
		t.Error("expected error for unknown intent")
	}
}

func TestLoadFixturesFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "fx.yaml")
	if err := os.WriteFile(path, []byte("- {query: \"hi\", intent: greeting}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	fx, err := LoadFixturesFile(path)
	if err != nil {
		t.Fatalf("LoadFixturesFile() error = %v", err)
	}
	if len(fx) != 1 || fx[0].Intent != intent.IntentGreeting {
		t.Errorf("fixtures = %+v", fx)
	}
}

func TestReport_WriteText(t *testing.T) {
	t.Parallel()

	fx := []Fixture{
		{Query: "hi", Intent: intent.IntentGreeting},
		{Query: "hmm", Intent: intent.IntentResume},
	}
	rep, _ := Run(context.Background(), chatbot.Default(), fx, 1)

	var buf bytes.Buffer
	if err := rep.WriteText(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"accuracy: 50.0% (1/2)", "greeting", "failures:", `"hmm": want resume, got clarify`} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

// Held-out queries were never used to tune the catalog, so this floor
// measures how the weights generalize rather than how well they fit.
func TestRun_HeldOutAccuracy(t *testing.T) {
	t.Parallel()

	fx, err := LoadFixturesFile(filepath.Join("testdata", "holdout.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if len(fx) < 40 {
		t.Errorf("len(held-out) = %d; want at least 40", len(fx))
	}

	builtin, _ := BuiltinFixtures()
	tuned := make(map[string]bool, len(builtin))
	for _, f := range builtin {
		tuned[strings.ToLower(f.Query)] = true
	}
	for _, f := range fx {
		if tuned[strings.ToLower(f.Query)] {
			t.Errorf("held-out query %q also appears in the tuning fixtures", f.Query)
		}
	}

	rep, err := Run(context.Background(), chatbot.Default(), fx, 4)
	if err != nil {
		t.Fatal(err)
	}
	if acc := rep.Accuracy(); acc < 0.85 {
		var buf bytes.Buffer
		_ = rep.WriteText(&buf)
		t.Errorf("held-out accuracy = %.3f; want >= 0.85\n%s", acc, buf.String())
	}
}
