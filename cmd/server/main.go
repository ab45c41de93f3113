package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/blogauth/internal/auth"
	"github.com/iudanet/blogauth/internal/config"
	"github.com/iudanet/blogauth/internal/posts"
	"github.com/iudanet/blogauth/internal/server"
	"github.com/iudanet/blogauth/internal/server/handlers"
	"github.com/iudanet/blogauth/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := config.LoadEnvFile(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(os.Args[0], os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if cfg.ShowVersion {
		printVersion()
		os.Exit(0)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	authSvc := auth.NewService(logger, store, store)
	oauth := auth.NewGoogleOAuth(logger, auth.OAuthConfig{
		ClientID:             cfg.GoogleClientID,
		ClientSecret:         cfg.GoogleClientSecret,
		RequireVerifiedEmail: cfg.RequireVerifiedEmail,
	}, authSvc)

	if !cfg.OAuthConfigured() {
		logger.Warn("google sign-in disabled: client id or secret not set")
	}
	if cfg.CookieInsecure {
		logger.Warn("cookies are sent without the Secure attribute")
	}

	router := server.NewRouter(server.Deps{
		Logger:  logger,
		Store:   store,
		Auth:    authSvc,
		OAuth:   oauth,
		Posts:   posts.NewService(logger, store),
		Cookies: handlers.CookieConfig{Insecure: cfg.CookieInsecure},
		BaseURL: cfg.BaseURL,
		Version: Version,
	})

	srv := server.NewHTTPServer(cfg.Addr, router, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			slog.String("addr", cfg.Addr),
			slog.String("version", Version),
			slog.String("db", cfg.DBPath))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", slog.Duration("timeout", cfg.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func printVersion() {
	fmt.Printf("Blog Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
