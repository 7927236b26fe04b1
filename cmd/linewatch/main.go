package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Veraticus/linewatch/pkg/config"
	"github.com/Veraticus/linewatch/pkg/input"
	flag "github.com/spf13/pflag"
)

// Exit codes
const (
	exitOK          = 0
	exitConfig      = 1
	exitNoInput     = 2
	exitInterrupted = 130
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// globalFlags are the options that are not indexed
type globalFlags struct {
	follow     bool
	complete   string
	configPath string
	help       bool
	verbose    bool
	flush      bool
}

func newFlagSet(stderr io.Writer, g *globalFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("linewatch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVarP(&g.follow, "follow", "f", false, "Follow FILE as it grows, like tail -f")
	fs.StringVar(&g.complete, "complete", "", "Mail a run summary to this address when the run ends")
	fs.StringVar(&g.configPath, "config", "", "Path to config file")
	fs.BoolVarP(&g.help, "help", "h", false, "Show help message")
	fs.BoolVarP(&g.verbose, "verbose", "v", false, "Log debug output to stderr")
	fs.BoolVar(&g.flush, "flush-on-interrupt", true, "Run close hooks (send buffered mail, flush logs) when interrupted")
	// Usage is printed by printUsage
	fs.Usage = func() {}
	return fs
}

func run(ctx context.Context, argv []string, stdin io.Reader, stdout, stderr io.Writer) int {
	indexed, err := config.ParseArgs(argv)
	if err != nil {
		fmt.Fprintf(stderr, "linewatch: %v\n", err)
		return exitConfig
	}

	var g globalFlags
	fs := newFlagSet(stderr, &g)
	if err := fs.Parse(indexed.Rest); err != nil {
		fmt.Fprintf(stderr, "linewatch: %v\n", err)
		return exitConfig
	}
	if g.help {
		printUsage(stdout, fs)
		return exitOK
	}
	if fs.NArg() > 1 {
		fmt.Fprintf(stderr, "linewatch: only one input file is supported, got %d\n", fs.NArg())
		return exitConfig
	}

	cfg, err := config.Load(g.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "linewatch: %v\n", err)
		return exitConfig
	}

	// Command line flags override the file and environment
	if fs.Changed("follow") {
		cfg.Follow = g.follow
	}
	if fs.Changed("complete") {
		cfg.Complete = g.complete
	}
	if fs.Changed("verbose") {
		cfg.Verbose = g.verbose
	}
	if fs.Changed("flush-on-interrupt") {
		cfg.FlushOnInterrupt = g.flush
	}
	cfg.Apply(indexed)

	logger := newLogger(stderr, cfg.Verbose)

	if err := cfg.Prepare(); err != nil {
		fmt.Fprintf(stderr, "linewatch: %v\n", err)
		return exitConfig
	}

	path := fs.Arg(0)
	if path == "" && cfg.Follow {
		// Standard input cannot be followed; it is read until it ends
		logger.Debug("ignoring follow for standard input")
		cfg.Follow = false
	}

	src, err := input.Open(input.Options{
		Path:          path,
		Follow:        cfg.Follow,
		PollInterval:  cfg.FollowOpts.PollInterval,
		FollowCommand: cfg.FollowOpts.Command,
		Shell:         cfg.Shell,
		Stdin:         stdin,
		Logger:        logger,
	})
	if err != nil {
		fmt.Fprintf(stderr, "linewatch: %v\n", err)
		if errors.Is(err, input.ErrInputNotFound) {
			return exitNoInput
		}
		return exitConfig
	}
	defer func() { _ = src.Close() }()

	host, _ := os.Hostname()
	deps, err := NewDependencies(cfg, RunInfo{
		Command: strings.Join(append([]string{"linewatch"}, argv...), " "),
		Host:    host,
		Start:   time.Now(),
		Screen:  stdout,
		Logger:  logger,
	})
	if err != nil {
		fmt.Fprintf(stderr, "linewatch: %v\n", err)
		return exitConfig
	}

	logger.Debug("starting",
		"input", inputName(path),
		"follow", cfg.Follow,
		"patterns", deps.Patterns.Len(),
		"indexes", deps.Patterns.Indexes(),
		"handlers", deps.Registry.Len(),
	)

	app := NewApplication(deps)
	if err := app.Run(ctx, src); err != nil {
		if ctx.Err() != nil {
			fmt.Fprintln(stderr, "linewatch: interrupted")
			return exitInterrupted
		}
		fmt.Fprintf(stderr, "linewatch: %v\n", err)
		return exitConfig
	}
	return exitOK
}

func inputName(path string) string {
	if path == "" {
		return "stdin"
	}
	return path
}

// newLogger logs to stderr at Info, or Debug when verbose
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "linewatch - run actions on lines matching patterns")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: linewatch [OPTIONS] [FILE]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Reads FILE, or standard input when FILE is omitted. Each --regex<N>")
	fmt.Fprintln(w, "pattern triggers the handlers declared with the same N.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Patterns and handlers:")
	fmt.Fprint(w, config.Usage())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  exec and pexec replace {} in the command with the line and run it")
	fmt.Fprintln(w, "  through the shell with your privileges; pexec also pipes the line to")
	fmt.Fprintln(w, "  the command's stdin. Commands are not sandboxed.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprint(w, fs.FlagUsages())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "On SIGINT or SIGTERM buffered mail is sent and log files are flushed")
	fmt.Fprintln(w, "before exiting with status 130. With --flush-on-interrupt=false the")
	fmt.Fprintln(w, "process exits at once and buffered mail is lost.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment Variables:")
	fmt.Fprintln(w, "  LINEWATCH_CONFIG              Path to config file")
	fmt.Fprintln(w, "  LINEWATCH_DEBUG               Enable debug logging (true/false)")
	fmt.Fprintln(w, "  LINEWATCH_SHELL               Shell for exec/pexec (default: /bin/sh)")
	fmt.Fprintln(w, "  LINEWATCH_COLOR               Screen colours: auto, always or never")
	fmt.Fprintln(w, "  LINEWATCH_FLUSH_ON_INTERRUPT  Run close hooks on interrupt (default: true)")
	fmt.Fprintln(w, "  LINEWATCH_MAIL_TRANSPORT      sendmail, smtp or stdout")
	fmt.Fprintln(w, "  LINEWATCH_MAIL_FROM           Sender address")
	fmt.Fprintln(w, "  LINEWATCH_SMTP_HOST           SMTP server (default: localhost)")
	fmt.Fprintln(w, "  LINEWATCH_SMTP_PORT           SMTP port (default: 25)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Configuration file: ~/.config/linewatch/config.yaml")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit status: 0 done, 1 configuration error, 2 input not found, 130 interrupted.")
}
