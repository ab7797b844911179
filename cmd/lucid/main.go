package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Joseph-hackathon/Lucid-solana/internal/config"
	"github.com/Joseph-hackathon/Lucid-solana/internal/logging"
	"github.com/Joseph-hackathon/Lucid-solana/solana"
)

// Version is set via -ldflags at build time.
var Version = "dev"

func main() {
	// decode works without configuration, so a config error only
	// surfaces once a command needs the service.
	cfgErr := config.Init()

	level, format := "info", "json"
	if cfgErr == nil {
		level, format = config.Get().LogLevel, config.Get().LogFormat
	}
	logger, err := logging.New(level, format)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	e := &env{
		out:    os.Stdout,
		logger: logger,
		open: func() (*solana.Service, error) {
			if cfgErr != nil {
				return nil, cfgErr
			}
			return solana.NewServiceFromConfig(logger)
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCLIApp(e).RunContext(ctx, os.Args); err != nil {
		logger.Debug("command failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
