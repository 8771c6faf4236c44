package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"hanzify/internal/backend"
	"hanzify/internal/cli"
	"hanzify/internal/config"
	"hanzify/internal/contextbuf"
	"hanzify/internal/conversion"
	"hanzify/internal/history"
)

func main() {
	_ = godotenv.Load()

	flags := cli.NewFlags()
	rootCmd := cli.CreateRootCommand(flags)

	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	runner := cli.Runner{In: os.Stdin, Out: os.Stdout}
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd.Context(), runner, args, flags)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, cli.ErrCanceled) {
			stop()
			os.Exit(130)
		}
		runner.SystemError(err)
		stop()
		os.Exit(1)
	}
}

func runCommand(ctx context.Context, runner cli.Runner, args []string, flags *cli.Flags) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cli.ApplyOverrides(&cfg); err != nil {
		return err
	}
	logger := newLogger(cfg.LogLevel)

	runner.Banner()
	input, err := runner.Input(ctx, args, flags.Interactive)
	if err != nil {
		return err
	}

	gen := backend.New(cfg, backend.NewHTTPClient(cfg.RequestTimeout), backend.Hooks{})
	opts := []conversion.Option{
		conversion.WithLogger(logger),
		conversion.WithGenerationConfig(backend.GenerationConfig(cfg)),
		conversion.WithTimeout(cfg.GenerationTimeout),
	}
	if cfg.HistoryDBPath != "" {
		store, err := history.Open(cfg.HistoryDBPath)
		if err != nil {
			return fmt.Errorf("open history store: %w", err)
		}
		defer func() { _ = store.Close() }()
		opts = append(opts, conversion.WithRecorder(store))
	}

	buf := contextbuf.New(cfg.ContextLimit)
	svc := conversion.New(gen, buf, opts...)
	if initial := cli.InitialContext(); initial != "" {
		svc.SetContext(initial)
	}

	return runner.Run(ctx, svc, input)
}

// newLogger writes to stderr so stdout carries only the conversion output.
func newLogger(level string) *slog.Logger {
	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "info":
		slogLevel = slog.LevelInfo
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slogLevel}))
}
