package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/blogauth/internal/admincli"
	"github.com/iudanet/blogauth/internal/config"
	"github.com/iudanet/blogauth/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := config.LoadEnvFile(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	cfg, err := config.LoadCLI(os.Args[0], os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			admincli.PrintUsage(os.Stdout)
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	if cfg.ShowVersion {
		printVersion()
		return 0
	}

	if len(cfg.Args) == 0 {
		admincli.PrintUsage(os.Stderr)
		return 2
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store admincli.Store
	if admincli.NeedsStore(cfg.Args[0]) {
		s, err := sqlite.New(ctx, cfg.DBPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
			return 1
		}
		defer func() {
			if err := s.Close(); err != nil {
				logger.Error("failed to close database", slog.Any("error", err))
			}
		}()
		store = s
	}

	cli := admincli.New(logger, admincli.NewStdio())
	if err := cli.Run(ctx, store, cfg.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, admincli.ErrUsage) {
			admincli.PrintUsage(os.Stderr)
			return 2
		}
		return 1
	}

	return 0
}

func printVersion() {
	fmt.Printf("blogctl\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
