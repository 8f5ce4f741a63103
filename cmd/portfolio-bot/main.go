// ABOUTME: CLI entry point for portfolio-bot
// ABOUTME: Loads config, builds the engine, dispatches to chat, ask, serve, eval, or config

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	// termfix must be imported before any package that imports bubbletea.
	_ "github.com/mauromedda/portfolio-bot/internal/termfix"

	"golang.org/x/term"

	"github.com/mauromedda/portfolio-bot/internal/chatbot"
	"github.com/mauromedda/portfolio-bot/internal/config"
	"github.com/mauromedda/portfolio-bot/internal/eval"
	pblog "github.com/mauromedda/portfolio-bot/internal/log"
	"github.com/mauromedda/portfolio-bot/internal/mode/interactive"
	"github.com/mauromedda/portfolio-bot/internal/mode/print"
	"github.com/mauromedda/portfolio-bot/internal/render"
	"github.com/mauromedda/portfolio-bot/internal/server"
	"github.com/mauromedda/portfolio-bot/internal/typing"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: getting working directory: %v\n", err)
		os.Exit(1)
	}

	c := &cli{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		cwd:    cwd,
		isTTY:  term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd())),
	}
	if err := c.run(ctx, os.Args[1:]); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

// cli carries the process environment so subcommands can run under test.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	cwd    string
	isTTY  bool
}

// run parses argv and dispatches to the selected subcommand.
func (c *cli) run(ctx context.Context, argv []string) error {
	args, err := parseFlags(argv, c.stderr)
	if err != nil {
		return err
	}
	if args.version {
		fmt.Fprintf(c.stdout, "portfolio-bot %s (%s) built %s\n", version, commit, date)
		return nil
	}

	cfg, err := config.Load(c.cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if args.verbose {
		cfg.LogLevel = "debug"
	}

	cmd := args.command
	if cmd == "" {
		cmd = "ask"
		if c.isTTY {
			cmd = "chat"
		}
	}

	logOut := c.stderr
	if cmd == "chat" {
		// The alternate screen owns the terminal.
		logOut = io.Discard
	}
	if err := pblog.Configure(logOut, cfg.LogFormat, cfg.LogLevel); err != nil {
		return fmt.Errorf("configuring logging: %w", err)
	}

	switch cmd {
	case "config":
		_, err := io.WriteString(c.stdout, config.Explain(cfg))
		return err
	case "chat", "ask", "serve", "eval":
	default:
		return fmt.Errorf("unknown command %q (try -h)", cmd)
	}

	src := chatbot.Sources{
		CatalogPath: cfg.CatalogPath,
		RepliesPath: cfg.RepliesPath,
		Threshold:   cfg.Threshold,
	}
	e, err := chatbot.Load(src)
	if err != nil {
		return fmt.Errorf("loading engine: %w", err)
	}
	holder := chatbot.NewHolder(e)

	switch cmd {
	case "chat":
		return c.chat(ctx, cfg, src, holder, args.rest)
	case "ask":
		return c.ask(ctx, holder.Engine(), args.rest)
	case "serve":
		return c.serve(ctx, cfg, src, holder, args.rest)
	default:
		return c.eval(ctx, holder.Engine(), args.rest)
	}
}

func (c *cli) chat(ctx context.Context, cfg *config.Settings, src chatbot.Sources, holder *chatbot.Holder, rest []string) error {
	if len(rest) > 0 {
		return fmt.Errorf("chat: unexpected arguments %v", rest)
	}
	if !c.isTTY {
		return errors.New("chat needs a terminal; use ask for pipes")
	}
	defer watchOverrides(cfg, src, holder)()

	return interactive.Run(ctx, interactive.AppDeps{
		Engines:  holder,
		Pacer:    typing.NewPacer(cfg.TypingRange()),
		Renderer: render.NewTerminal("dark"),
		Version:  version,
	})
}

func (c *cli) ask(ctx context.Context, e *chatbot.Engine, rest []string) error {
	a, err := parseAskFlags(rest, c.stderr)
	if err != nil {
		return err
	}
	return print.RunWithConfig(ctx, print.Config{
		OutputFormat: a.format,
		Out:          c.stdout,
		In:           c.stdin,
	}, e, strings.Join(a.query, " "))
}

func (c *cli) serve(ctx context.Context, cfg *config.Settings, src chatbot.Sources, holder *chatbot.Holder, rest []string) error {
	a, err := parseServeFlags(rest, c.stderr, cfg.Addr)
	if err != nil {
		return err
	}
	defer watchOverrides(cfg, src, holder)()

	srv := server.New(server.Options{
		Engines:        holder,
		Pacer:          typing.NewPacer(cfg.TypingRange()),
		AllowedOrigins: cfg.AllowedOrigins,
		Version:        version,
		Logger:         pblog.Logger(),
	})
	return srv.ListenAndServe(ctx, a.addr)
}

func (c *cli) eval(ctx context.Context, e *chatbot.Engine, rest []string) error {
	a, err := parseEvalFlags(rest, c.stderr)
	if err != nil {
		return err
	}

	var fixtures []eval.Fixture
	if a.file != "" {
		fixtures, err = eval.LoadFixturesFile(a.file)
	} else {
		fixtures, err = eval.BuiltinFixtures()
	}
	if err != nil {
		return err
	}

	rep, err := eval.Run(ctx, e, fixtures, a.workers)
	if err != nil {
		return err
	}
	if a.json {
		enc := json.NewEncoder(c.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
	} else if err := rep.WriteText(c.stdout); err != nil {
		return err
	}

	if acc := rep.Accuracy(); acc < a.minAccuracy {
		return fmt.Errorf("accuracy %.1f%% is below %.1f%%", 100*acc, 100*a.minAccuracy)
	}
	return nil
}

// watchOverrides reloads the engine when override files change, if enabled.
// The returned func stops watching.
func watchOverrides(cfg *config.Settings, src chatbot.Sources, holder *chatbot.Holder) func() {
	paths := cfg.WatchPaths()
	if !cfg.Watch || len(paths) == 0 {
		return func() {}
	}

	w, err := config.NewWatcher(paths, func() {
		if err := holder.Reload(src); err != nil {
			pblog.Logger().Warn("engine reload failed; keeping previous data", "error", err)
			return
		}
		pblog.Logger().Info("engine reloaded", "paths", paths)
	})
	if err != nil {
		pblog.Warn("watching overrides: %v", err)
		return func() {}
	}
	w.Start()
	return w.Stop
}
