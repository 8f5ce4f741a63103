// ABOUTME: CLI flag parsing using stdlib flag package
// ABOUTME: Global flags come before the subcommand; each subcommand owns its own FlagSet

package main

import (
	"flag"
	"fmt"
	"io"
)

type cliArgs struct {
	version bool
	verbose bool
	command string
	rest    []string
}

const usageText = `usage: portfolio-bot [-version] [-verbose] <command> [flags] [args]

commands:
  chat              interactive chat (default on a terminal)
  ask <query...>    answer questions; reads one per stdin line when no query is given
  serve             HTTP and WebSocket assistant API
  eval [file]       score the engine against labeled queries
  config            show the effective configuration
`

func parseFlags(args []string, stderr io.Writer) (cliArgs, error) {
	var a cliArgs

	fs := flag.NewFlagSet("portfolio-bot", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usageText)
		fs.PrintDefaults()
	}
	fs.BoolVar(&a.version, "version", false, "Show version and exit")
	fs.BoolVar(&a.verbose, "verbose", false, "Debug logging")
	if err := fs.Parse(args); err != nil {
		return a, err
	}

	if rest := fs.Args(); len(rest) > 0 {
		a.command, a.rest = rest[0], rest[1:]
	}
	return a, nil
}

type askArgs struct {
	format string
	query  []string
}

func parseAskFlags(args []string, stderr io.Writer) (askArgs, error) {
	var a askArgs
	var asJSON bool

	fs := flag.NewFlagSet("ask", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&asJSON, "json", false, "Print the conversation as one JSON document")
	fs.StringVar(&a.format, "format", "text", "Output format: text, json, stream-json")
	if err := fs.Parse(args); err != nil {
		return a, err
	}
	if asJSON {
		a.format = "json"
	}
	a.query = fs.Args()
	return a, nil
}

type serveArgs struct {
	addr string
}

func parseServeFlags(args []string, stderr io.Writer, defaultAddr string) (serveArgs, error) {
	var a serveArgs

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&a.addr, "addr", defaultAddr, "Listen address")
	if err := fs.Parse(args); err != nil {
		return a, err
	}
	if fs.NArg() > 0 {
		return a, fmt.Errorf("serve: unexpected arguments %v", fs.Args())
	}
	return a, nil
}

type evalArgs struct {
	file        string
	workers     int
	minAccuracy float64
	json        bool
}

func parseEvalFlags(args []string, stderr io.Writer) (evalArgs, error) {
	var a evalArgs

	fs := flag.NewFlagSet("eval", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.IntVar(&a.workers, "workers", 0, "Concurrent queries (0 = GOMAXPROCS)")
	fs.Float64Var(&a.minAccuracy, "min", 0.9, "Fail below this accuracy")
	fs.BoolVar(&a.json, "json", false, "Print the full report as JSON")
	if err := fs.Parse(args); err != nil {
		return a, err
	}
	switch fs.NArg() {
	case 0:
	case 1:
		a.file = fs.Arg(0)
	default:
		return a, fmt.Errorf("eval: at most one fixtures file, got %d", fs.NArg())
	}
	if a.minAccuracy < 0 || a.minAccuracy > 1 {
		return a, fmt.Errorf("eval: -min %.2f must be in [0, 1]", a.minAccuracy)
	}
	return a, nil
}
