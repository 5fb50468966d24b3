package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/vladislavdragonenkov/orderdesk/internal/app"
	"github.com/vladislavdragonenkov/orderdesk/internal/config"
	"github.com/vladislavdragonenkov/orderdesk/internal/domain"
	"github.com/vladislavdragonenkov/orderdesk/internal/logging"
	"github.com/vladislavdragonenkov/orderdesk/internal/version"
)

// Коды выхода.
const (
	exitOK       = 0
	exitFailure  = 1
	exitUsage    = 2
	exitInternal = 3
)

const usage = `usage: orderdesk [-config file] <group> <command> [flags]

groups:
  customer  add|list|get|update|delete
  product   add|list|get|update|delete
  order     create|list|get|by-customer|status|delete
  report    summary|popular|best|top|by-month|revenue-by-month|distribution
  data      seed|clear
  events    publish
  demo      seed sample data and print the main reports
  health
  version
`

var (
	// errUsage — неверные аргументы командной строки.
	errUsage = errors.New("usage error")
	// errUnhealthy — отчёт уже выведен, нужен только код выхода.
	errUnhealthy = errors.New("unhealthy")
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("orderdesk", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() { _, _ = fmt.Fprint(stderr, usage) }
	configPath := global.String("config", "", "path to YAML config file")
	if err := global.Parse(args); err != nil {
		return exitUsage
	}

	rest := global.Args()
	if len(rest) == 0 {
		global.Usage()
		return exitUsage
	}
	if rest[0] == "version" {
		_ = writeJSON(stdout, version.Current())
		return exitOK
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "config: %v\n", err)
		return exitUsage
	}

	logCloser, err := logging.Setup(cfg.Log)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "logging: %v\n", err)
		return exitUsage
	}
	defer logCloser.Close()

	logger := logging.Component("cli")

	a, err := app.New(ctx, cfg)
	if err != nil {
		logger.WithError(err).Error("failed to initialize application")
		_ = writeJSON(stdout, errorView(err))
		return exitInternal
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.WithError(err).Warn("failed to close application")
		}
	}()

	cmd := &commands{app: a, out: stdout, errOut: stderr}
	err = cmd.dispatch(ctx, rest)
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errUnhealthy):
		return exitFailure
	case errors.Is(err, errUsage):
		_, _ = fmt.Fprintf(stderr, "%v\n\n%s", err, usage)
		return exitUsage
	default:
		logger.WithError(err).WithField("command", rest).Debug("command failed")
		_ = writeJSON(stdout, errorView(err))
		if domain.IsBusinessError(err) {
			return exitFailure
		}
		return exitInternal
	}
}

func usageErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}
