package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/tphakala/phagepairs/cmd"
	"github.com/tphakala/phagepairs/internal/buildinfo"
	"github.com/tphakala/phagepairs/internal/conf"
	"github.com/tphakala/phagepairs/internal/errors"
	"github.com/tphakala/phagepairs/internal/logger"
	"github.com/tphakala/phagepairs/internal/telemetry"
)

// Exit statuses.
const (
	exitFailure    = 1
	exitInputError = 2 // missing input file or table without the required columns
)

// Set at build time with -ldflags "-X main.version=...".
var (
	version   string
	buildDate string
	commit    string
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	configFile, debug := scanGlobalFlags(args)

	settings, err := conf.Load(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return 1
	}
	if debug {
		settings.Debug = true
	}
	if settings.Debug {
		enableDebugLogging(&settings.Logging)
	}

	central, err := logger.NewCentralLogger(&settings.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		return 1
	}
	defer func() { _ = central.Close() }()

	info := buildinfo.NewContext(version, buildDate, commit)
	mainLog := central.Module("main")

	flush, err := telemetry.Init(&settings.Telemetry, info.Version(), central.Module("telemetry"))
	if err != nil {
		mainLog.Warn("Telemetry disabled", logger.Error(err))
	} else {
		defer flush()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cmd.RootCommand(settings, info, central)
	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		mainLog.Debug("Command failed", logger.Error(err))
		return reportError(os.Stderr, err)
	}
	return 0
}

// reportError prints err for the operator and returns the exit status.
func reportError(w io.Writer, err error) int {
	if errors.IsFatalInput(err) {
		fmt.Fprintf(w, "Input error: %v\n", err)
		return exitInputError
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	return exitFailure
}

// scanGlobalFlags picks --config and --debug out of args before the command
// tree exists, since both decide how settings and logging are initialized.
func scanGlobalFlags(args []string) (configFile string, debug bool) {
	fs := pflag.NewFlagSet("global", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	fs.StringVar(&configFile, "config", "", "")
	fs.BoolVarP(&debug, "debug", "d", false, "")
	_ = fs.Parse(args)
	return configFile, debug
}

func enableDebugLogging(cfg *logger.LoggingConfig) {
	cfg.DefaultLevel = string(logger.LogLevelDebug)
	if cfg.Console != nil {
		cfg.Console.Level = string(logger.LogLevelDebug)
	}
}
