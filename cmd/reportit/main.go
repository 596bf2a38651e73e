// Command reportit is a terminal front end for the ticket client: it drives
// the same screens a mobile shell would, printing their state to stdout.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/spec-kit/ticket-client/internal/client"
	"github.com/spec-kit/ticket-client/internal/config"
	"github.com/spec-kit/ticket-client/internal/events"
	"github.com/spec-kit/ticket-client/internal/observability"
	"github.com/spec-kit/ticket-client/internal/screen"
	"github.com/spec-kit/ticket-client/internal/session"
)

const usage = `usage: reportit [global flags] <command> [flags]

commands:
  login            sign in and store the session
  logout           remove the stored session
  whoami           greet the signed-in user
  create --issue   submit a ticket
  list             list your tickets
  forgot-password  reset a password with an emailed OTP

global flags:
`

type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	metrics    *observability.Metrics
	dispatcher events.Dispatcher
	backend    session.Backend
	store      *session.Store
	in         *bufio.Reader
	out        io.Writer
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	flags := pflag.NewFlagSet("reportit", pflag.ContinueOnError)
	flags.SetInterspersed(false)
	flags.StringVar(&cfg.API.BaseURL, "api-url", cfg.API.BaseURL, "ticket service base URL")
	flags.StringVar(&cfg.Session.Backend, "session-backend", cfg.Session.Backend, "session storage (sqlite, redis, memory)")
	flags.StringVar(&cfg.Session.SQLitePath, "session-db", cfg.Session.SQLitePath, "SQLite session file")
	flags.StringVar(&cfg.Logger.Level, "log-level", cfg.Logger.Level, "log level (debug, info, warn, error)")
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flags.PrintDefaults()
	}
	if err := flags.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}
	if flags.NArg() == 0 {
		flags.Usage()
		os.Exit(2)
	}

	logger, err := observability.NewLogger(cfg.Logger, "stderr")
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	backend, err := session.OpenBackend(cfg, logger)
	if err != nil {
		logger.Fatal("failed to open session storage", zap.Error(err))
	}
	defer backend.Close()

	dispatcher := events.NewInMemoryDispatcher(logger)
	events.RegisterTransitionLogger(dispatcher, logger)

	a := &app{
		cfg:        cfg,
		logger:     logger,
		metrics:    observability.NewMetrics(),
		dispatcher: dispatcher,
		backend:    backend,
		store:      session.NewStore(backend, logger),
		in:         bufio.NewReader(os.Stdin),
		out:        os.Stdout,
	}

	ctx := context.Background()
	cmd, args := flags.Arg(0), flags.Args()[1:]
	var runErr error
	switch cmd {
	case "login":
		runErr = a.login(ctx, args)
	case "logout":
		runErr = a.logout(ctx)
	case "whoami":
		fmt.Fprintf(a.out, "Hello, %s\n", a.store.DisplayName(ctx))
	case "create":
		runErr = a.create(args)
	case "list":
		runErr = a.list()
	case "forgot-password":
		runErr = a.forgotPassword(args)
	default:
		flags.Usage()
		os.Exit(2)
	}
	if runErr != nil {
		fmt.Fprintln(os.Stderr, runErr)
		logger.Sync() //nolint:errcheck
		os.Exit(1)
	}
}

func (a *app) clientOptions() []client.Option {
	return []client.Option{
		client.WithLogger(a.logger),
		client.WithMetrics(a.metrics),
		client.WithTimeout(a.cfg.API.Timeout()),
	}
}

func (a *app) deps() screen.Deps {
	return screen.Deps{Dispatcher: a.dispatcher, Logger: a.logger}
}

// settled delivers the SUCCESS and ERROR snapshots of the named screen.
func (a *app) settled(name string) <-chan events.Event {
	ch := make(chan events.Event, 16)
	a.dispatcher.Subscribe(events.EventScreenStateChanged, func(_ context.Context, e events.Event) error {
		if e.Screen != name {
			return nil
		}
		if e.Phase == screen.PhaseSuccess.String() || e.Phase == screen.PhaseError.String() {
			select {
			case ch <- e:
			default:
			}
		}
		return nil
	})
	return ch
}

func (a *app) prompt(label string) (string, error) {
	fmt.Fprint(a.out, label)
	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptSecret reads without echo on a terminal and falls back to a plain
// line read when stdin is piped.
func (a *app) promptSecret(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return a.prompt(label)
	}
	fmt.Fprint(a.out, label)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(a.out)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", strings.TrimSuffix(label, ": "), err)
	}
	return string(secret), nil
}
