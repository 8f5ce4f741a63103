// ABOUTME: Regression harness: runs labeled visitor queries through the engine and scores accuracy
// ABOUTME: Fixtures are embedded YAML; queries run concurrently on fresh sessions via errgroup

package eval

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/mauromedda/portfolio-bot/internal/chatbot"
	"github.com/mauromedda/portfolio-bot/internal/intent"
	"github.com/mauromedda/portfolio-bot/internal/session"
)

//go:embed fixtures.yaml
var builtinFixtures []byte

// Fixture is one labeled query. An empty Entity means any entity is accepted.
type Fixture struct {
	Query  string        `yaml:"query" json:"query"`
	Intent intent.Intent `yaml:"intent" json:"intent"`
	Entity string        `yaml:"entity,omitempty" json:"entity,omitempty"`
}

// Result is the outcome of one fixture.
type Result struct {
	Fixture
	Got        intent.Intent `json:"got"`
	GotEntity  string        `json:"got_entity,omitempty"`
	Confidence float64       `json:"confidence"`
	Pass       bool          `json:"pass"`
}

// IntentStats counts fixtures labeled with one intent.
type IntentStats struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
}

// Report aggregates a run.
type Report struct {
	Results   []Result                       `json:"results"`
	Total     int                            `json:"total"`
	Passed    int                            `json:"passed"`
	PerIntent map[intent.Intent]*IntentStats `json:"per_intent"`
}

// Accuracy is the fraction of fixtures that passed.
func (r *Report) Accuracy() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Passed) / float64(r.Total)
}

// Failures returns the failed results in fixture order.
func (r *Report) Failures() []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.Pass {
			out = append(out, res)
		}
	}
	return out
}

// BuiltinFixtures returns the embedded regression set.
func BuiltinFixtures() ([]Fixture, error) {
	return LoadFixtures(builtinFixtures)
}

// LoadFixturesFile reads a fixture file.
func LoadFixturesFile(path string) ([]Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures %s: %w", path, err)
	}
	fx, err := LoadFixtures(data)
	if err != nil {
		return nil, fmt.Errorf("fixtures %s: %w", path, err)
	}
	return fx, nil
}

// LoadFixtures parses a YAML list of fixtures.
func LoadFixtures(data []byte) ([]Fixture, error) {
	var fx []Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	for i, f := range fx {
		if !f.Intent.Valid() {
			return nil, fmt.Errorf("fixture %d (%q): missing intent", i, f.Query)
		}
	}
	return fx, nil
}

// Run evaluates every fixture on a fresh session. workers <= 0 uses GOMAXPROCS.
func Run(ctx context.Context, e *chatbot.Engine, fixtures []Fixture, workers int) (*Report, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]Result, len(fixtures))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, f := range fixtures {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			r := e.Respond(f.Query, session.New())
			results[i] = Result{
				Fixture:    f,
				Got:        r.Intent,
				GotEntity:  r.Entity,
				Confidence: r.Confidence,
				Pass:       r.Intent == f.Intent && (f.Entity == "" || r.Entity == f.Entity),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("eval run: %w", err)
	}

	rep := &Report{
		Results:   results,
		Total:     len(results),
		PerIntent: make(map[intent.Intent]*IntentStats),
	}
	for _, res := range results {
		st := rep.PerIntent[res.Intent]
		if st == nil {
			st = &IntentStats{}
			rep.PerIntent[res.Intent] = st
		}
		st.Total++
		if res.Pass {
			st.Passed++
			rep.Passed++
		}
	}
	return rep, nil
}

// WriteText prints a human-readable summary: per-intent accuracy, then failures.
func (r *Report) WriteText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "accuracy: %.1f%% (%d/%d)\n\n", 100*r.Accuracy(), r.Passed, r.Total); err != nil {
		return err
	}

	intents := make([]intent.Intent, 0, len(r.PerIntent))
	for i := range r.PerIntent {
		intents = append(intents, i)
	}
	sort.Slice(intents, func(a, b int) bool { return intents[a] < intents[b] })
	for _, i := range intents {
		st := r.PerIntent[i]
		if _, err := fmt.Fprintf(w, "  %-14s %3d/%-3d\n", i, st.Passed, st.Total); err != nil {
			return err
		}
	}

	failures := r.Failures()
	if len(failures) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "\nfailures:\n"); err != nil {
		return err
	}
	for _, f := range failures {
		want := f.Intent.String()
		if f.Entity != "" {
			want += "/" + f.Entity
		}
		got := f.Got.String()
		if f.GotEntity != "" {
			got += "/" + f.GotEntity
		}
		if _, err := fmt.Fprintf(w, "  %q: want %s, got %s (%.3f)\n", f.Query, want, got, f.Confidence); err != nil {
			return err
		}
	}
	return nil
}
