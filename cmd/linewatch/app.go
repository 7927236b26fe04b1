package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Veraticus/linewatch/pkg/config"
	"github.com/Veraticus/linewatch/pkg/handler"
	"github.com/Veraticus/linewatch/pkg/interfaces"
	"github.com/Veraticus/linewatch/pkg/monitor"
	"github.com/Veraticus/linewatch/pkg/notification"
	"github.com/Veraticus/linewatch/pkg/process"
	"github.com/Veraticus/linewatch/pkg/status"
	"github.com/Veraticus/linewatch/pkg/types"
)

// RunInfo describes the invocation
type RunInfo struct {
	Command string
	Host    string
	Start   time.Time
	// Screen receives screen handler output and stdout-transport mail
	Screen io.Writer
	Logger *slog.Logger
}

// Dependencies holds all the dependencies for the application
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger

	Notifier        notification.Notifier
	RateLimiter     interfaces.RateLimiter
	MailManager     *notification.Manager
	CompleteManager *notification.Manager
	ProcessManager  *process.Manager

	Patterns   *monitor.PatternTable
	Registry   *handler.Registry
	Runtime    *handler.Runtime
	Handlers   map[types.Kind]interfaces.Handler
	Dispatcher *monitor.Dispatcher

	Summary        *status.Summary
	StatusReporter *status.Reporter
}

// NewDependencies creates all dependencies for a prepared configuration
func NewDependencies(cfg *config.Config, info RunInfo) (*Dependencies, error) {
	logger := info.Logger
	if logger == nil {
		logger = slog.Default()
	}

	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	deps.Summary = status.NewSummary(info.Start, info.Command, info.Host)
	deps.StatusReporter = status.NewReporter(deps.Summary)

	deps.Patterns = monitor.NewPatternTable(cfg.Patterns)
	deps.Registry = handler.NewRegistry(cfg.Handlers)
	deps.Runtime = handler.NewRuntime(cfg.Follow, info.Start)

	// Mail is only wired when something can send it
	if len(deps.Registry.IndexesOf(types.KindEmail)) > 0 || cfg.Complete != "" {
		transport, err := newTransport(cfg.Mail, info.Screen)
		if err != nil {
			return nil, err
		}
		deps.Notifier = notification.NewContextNotifier(transport, info.Host)

		// Only follow mode sends per match; batches sent at close are never
		// limited
		if cfg.Follow && cfg.Mail.RateLimit.MaxMessages > 0 {
			deps.RateLimiter = notification.NewTokenBucketRateLimiter(
				cfg.Mail.RateLimit.MaxMessages,
				cfg.Mail.RateLimit.Window/time.Duration(cfg.Mail.RateLimit.MaxMessages),
			)
		}
		deps.MailManager = notification.NewManager(deps.Notifier, deps.RateLimiter, logger)
		deps.MailManager.SetStatusReporter(deps.StatusReporter)

		// The completion message is never rate limited
		deps.CompleteManager = notification.NewManager(deps.Notifier, nil, logger)
		deps.CompleteManager.SetStatusReporter(deps.StatusReporter)
	}

	deps.ProcessManager = process.NewManager(cfg.Shell, cfg.MaxCommands, logger)

	env := handler.Env{
		Runtime:      deps.Runtime,
		Registry:     deps.Registry,
		Screen:       info.Screen,
		ColorMode:    cfg.Color,
		Colors:       cfg.Colors,
		Commands:     deps.ProcessManager,
		Placeholder:  cfg.Placeholder,
		CommandGrace: cfg.CommandGrace,
		Patterns:     deps.Patterns,
		Logger:       logger,
	}
	if deps.MailManager != nil {
		env.Mail = deps.MailManager
	}

	handlers, err := handler.Build(env)
	if err != nil {
		return nil, err
	}
	deps.Handlers = handlers

	deps.Dispatcher = monitor.NewDispatcher(monitor.Options{
		Patterns: deps.Patterns,
		Registry: deps.Registry,
		Handlers: deps.Handlers,
		Runtime:  deps.Runtime,
		Summary:  deps.Summary,
		Logger:   logger,
	})

	return deps, nil
}

// newTransport selects the mail transport
func newTransport(cfg config.MailConfig, stdout io.Writer) (notification.Notifier, error) {
	switch cfg.Transport {
	case config.TransportSendmail:
		return notification.NewSendmailNotifier(cfg.SendmailPath, cfg.From), nil
	case config.TransportSMTP:
		return notification.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.From, cfg.Username, cfg.Password), nil
	case config.TransportStdout:
		return notification.NewStdoutNotifier(stdout), nil
	default:
		return nil, fmt.Errorf("%w: unknown mail transport %q", config.ErrInvalid, cfg.Transport)
	}
}

// Application represents the main application
type Application struct {
	deps *Dependencies
}

// NewApplication creates a new application with the given dependencies
func NewApplication(deps *Dependencies) *Application {
	return &Application{
		deps: deps,
	}
}

// Run dispatches src until it ends or ctx is cancelled, then finishes the
// run. On cancellation the close hooks only run when flush_on_interrupt is
// set; otherwise buffered mail is dropped. Running commands are never waited
// for after an interrupt.
func (a *Application) Run(ctx context.Context, src interfaces.LineSource) error {
	err := a.deps.Dispatcher.Run(ctx, src)

	interrupted := err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err())
	if interrupted && !a.deps.Config.FlushOnInterrupt {
		a.deps.Logger.Debug("interrupted, skipping close hooks")
		return err
	}
	if interrupted {
		a.deps.Runtime.Interrupt()
	}

	if finishErr := a.Finish(); finishErr != nil {
		a.deps.Logger.Warn("failed to finish run", "error", finishErr)
	}
	return err
}

// Finish runs the close hooks and sends the completion message when one was
// requested
func (a *Application) Finish() error {
	closeErr := a.deps.Dispatcher.Close()

	cmds := a.deps.ProcessManager.Stats()
	a.deps.Summary.RecordCommands(status.CommandCounts{
		Started: cmds.Started,
		Failed:  cmds.Failed,
		Dropped: cmds.Dropped,
	})
	a.deps.Summary.Finish(time.Now())

	counts := a.deps.Summary.Counts()
	a.deps.Logger.Debug("run finished",
		"lines", counts.Lines,
		"matches", counts.Matches,
		"mail_sent", counts.MailSent,
		"mail_failed", counts.MailFailed,
		"commands_started", cmds.Started,
		"commands_dropped", cmds.Dropped,
		"commands_running", cmds.Running,
	)

	if a.deps.Config.Complete == "" || a.deps.CompleteManager == nil {
		return closeErr
	}

	err := a.deps.CompleteManager.Send(notification.Notification{
		To:      a.deps.Config.Complete,
		Subject: a.deps.Summary.Subject(),
		Message: a.deps.Summary.Text(),
		Pattern: "complete",
	})
	if err != nil {
		err = fmt.Errorf("failed to send completion message: %w", err)
	}
	return errors.Join(closeErr, err)
}
