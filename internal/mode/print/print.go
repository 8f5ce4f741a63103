// ABOUTME: Headless print mode with text, JSON, and stream-JSON formatters
// ABOUTME: Answers one query, or every stdin line as turns of a single conversation

package print

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mauromedda/portfolio-bot/internal/chatbot"
	"github.com/mauromedda/portfolio-bot/internal/session"
)

// Config configures headless execution.
type Config struct {
	OutputFormat string    // "text" (default), "json", "stream-json"
	Out          io.Writer // defaults to os.Stdout
	In           io.Reader // read when the prompt is empty; defaults to os.Stdin
}

// Run answers prompt with plain text output on stdout.
func Run(ctx context.Context, e *chatbot.Engine, prompt string) error {
	return RunWithConfig(ctx, Config{OutputFormat: "text"}, e, prompt)
}

// RunWithConfig answers prompt, or each non-empty stdin line when prompt is
// empty. Lines share one session so follow-ups resolve against earlier turns.
func RunWithConfig(ctx context.Context, cfg Config, e *chatbot.Engine, prompt string) error {
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.In == nil {
		cfg.In = os.Stdin
	}
	f, err := newFormatter(cfg.OutputFormat, cfg.Out)
	if err != nil {
		return err
	}

	queries := []string{prompt}
	if strings.TrimSpace(prompt) == "" {
		if queries, err = readQueries(cfg.In); err != nil {
			return err
		}
	}

	s := session.New()
	f.start()
	for _, q := range queries {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("print mode: %w", err)
		}
		r := e.Respond(q, s)
		s = r.Session
		f.reply(q, r)
	}
	return f.end()
}

func readQueries(in io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			out = append(out, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no query given")
	}
	return out, nil
}

// formatter abstracts output formatting.
type formatter interface {
	start()
	reply(query string, r chatbot.Reply)
	end() error
}

func newFormatter(format string, w io.Writer) (formatter, error) {
	switch format {
	case "", "text":
		return &textFormatter{w: w}, nil
	case "json":
		return &jsonFormatter{w: w}, nil
	case "stream-json":
		return &streamJSONFormatter{enc: json.NewEncoder(w)}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want text, json or stream-json)", format)
	}
}

// textFormatter prints each reply followed by its suggestion chips.
type textFormatter struct {
	w     io.Writer
	turns int
}

func (f *textFormatter) start() {}

func (f *textFormatter) reply(_ string, r chatbot.Reply) {
	if f.turns > 0 {
		fmt.Fprintln(f.w)
	}
	f.turns++
	fmt.Fprintln(f.w, r.Text)
	for _, s := range r.Suggestions {
		fmt.Fprintf(f.w, "  > %s\n", s)
	}
}

func (f *textFormatter) end() error { return nil }

// jsonFormatter collects all replies and writes a single JSON object at the end.
type jsonFormatter struct {
	w     io.Writer
	turns []jsonTurn
}

type jsonTurn struct {
	Query string        `json:"query"`
	Reply chatbot.Reply `json:"reply"`
}

type jsonOutput struct {
	Turns []jsonTurn `json:"turns"`
}

func (f *jsonFormatter) start() {}

func (f *jsonFormatter) reply(q string, r chatbot.Reply) {
	f.turns = append(f.turns, jsonTurn{Query: q, Reply: r})
}

func (f *jsonFormatter) end() error {
	enc := json.NewEncoder(f.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(jsonOutput{Turns: f.turns}); err != nil {
		return fmt.Errorf("encoding replies: %w", err)
	}
	return nil
}

// streamJSONFormatter outputs one JSON line per event.
type streamJSONFormatter struct {
	enc *json.Encoder
	err error
}

type streamEvent struct {
	Type  string         `json:"type"`
	Query string         `json:"query,omitempty"`
	Reply *chatbot.Reply `json:"reply,omitempty"`
}

func (f *streamJSONFormatter) write(evt streamEvent) {
	if f.err == nil {
		f.err = f.enc.Encode(evt)
	}
}

func (f *streamJSONFormatter) start() { f.write(streamEvent{Type: "start"}) }

func (f *streamJSONFormatter) reply(q string, r chatbot.Reply) {
	f.write(streamEvent{Type: "reply", Query: q, Reply: &r})
}

func (f *streamJSONFormatter) end() error {
	f.write(streamEvent{Type: "end"})
	if f.err != nil {
		return fmt.Errorf("writing stream: %w", f.err)
	}
	return nil
}
