package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/devbydaniel/voicemsg/config"
	"github.com/devbydaniel/voicemsg/internal/app"
	"github.com/devbydaniel/voicemsg/internal/cli"
	"github.com/devbydaniel/voicemsg/internal/logging"
	"github.com/devbydaniel/voicemsg/internal/output"
)

func main() {
	if err := run(); err != nil {
		formatter := output.NewFormatter(os.Stderr)
		formatter.Error(err.Error())
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(logging.Options{
		Level:    cfg.LogLevel,
		StateDir: cfg.StateDir,
		Console:  os.Stderr,
	})
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Close()

	application := app.New(cfg, logger.Logger, os.Stdin, os.Stdout)
	defer application.Close()

	deps := &cli.Dependencies{
		App:    application,
		Config: cfg,
		Logger: logger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.NewRootCmd(deps).ExecuteContext(ctx)
}
