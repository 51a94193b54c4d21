// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HireLoop Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hireloop/hireloop/internal/config"
	"github.com/hireloop/hireloop/internal/httpapi"
	"github.com/hireloop/hireloop/internal/identity"
	identitypg "github.com/hireloop/hireloop/internal/identity/postgres"
	"github.com/hireloop/hireloop/internal/logging"
	"github.com/hireloop/hireloop/internal/notify"
	"github.com/hireloop/hireloop/internal/observability"
	"github.com/hireloop/hireloop/internal/store"
)

const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the identity service",
		Long: `Start the identity service: the HTTP API, the observability server,
and the background expiry sweep for one-time passwords.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, cmd)
		},
	}

	flags := cmd.Flags()
	flags.String("http-addr", config.DefaultHTTPAddr, "HTTP API listen address")
	flags.String("metrics-addr", config.DefaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")
	flags.String("database-url", "", "PostgreSQL connection URL")
	flags.String("token-secret", "", "bearer token signing secret")
	flags.Duration("token-ttl", identity.DefaultTokenTTL, "bearer token lifetime")
	flags.Duration("otp-ttl", identity.DefaultChallengeTTL, "one-time password lifetime")
	flags.Duration("sweep-interval", identity.DefaultSweepInterval, "expired challenge sweep interval")
	flags.Int64("sequence-base", 0, "starting value for new sequence counters")
	flags.String("smtp-addr", "", "SMTP relay address (empty = log notifications)")
	flags.String("smtp-from", "", "SMTP envelope sender")
	flags.String("log-format", config.DefaultLogFormat, "log format (json or text)")

	return cmd
}

func runServe(ctx context.Context, cfg config.Config, cmd *cobra.Command) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	logging.SetDefault("hireloop", version, cfg.LogFormat)
	logger := slog.Default()

	slog.Info("starting identity service",
		"http_addr", cfg.HTTPAddr,
		"log_format", cfg.LogFormat,
	)

	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	slog.Info("connected to database")

	principals := identitypg.NewPrincipalRepository(pool)
	challenges := identitypg.NewChallengeRepository(pool)
	sequences := identitypg.NewSequenceRepository(pool, cfg.SequenceBase)

	var notifier identity.Notifier
	if cfg.SMTPAddr != "" {
		notifier, err = notify.NewSMTPNotifier(cfg.SMTPAddr, cfg.SMTPFrom)
		if err != nil {
			return err
		}
	} else {
		slog.Info("no smtp relay configured, logging notifications")
		notifier = notify.NewLogNotifier(logger)
	}

	tokens, err := identity.NewTokenService([]byte(cfg.TokenSecret), cfg.TokenTTL)
	if err != nil {
		return err
	}

	hasher := identity.NewArgon2idHasher()

	auth, err := identity.NewAuthServiceWithLogger(principals, sequences, hasher, tokens, notifier, logger)
	if err != nil {
		return err
	}

	otp, err := identity.NewOTPServiceWithLogger(principals, challenges, notifier, cfg.OTPTTL, logger)
	if err != nil {
		return err
	}

	sweeper, err := identity.NewSweeper(otp, cfg.SweepInterval, logger)
	if err != nil {
		return err
	}

	gate, err := httpapi.NewAuthenticationGate(tokens, principals, logger)
	if err != nil {
		return err
	}

	handler, err := httpapi.NewHandler(auth, otp, logger)
	if err != nil {
		return err
	}

	apiServer, err := httpapi.NewServer(cfg.HTTPAddr, handler, gate)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sweeper.Start(ctx)
	defer sweeper.Stop()

	apiErrChan, err := apiServer.Start()
	if err != nil {
		return err
	}
	go monitorServerErrors(ctx, cancel, apiErrChan, "api")

	var obsServer *observability.Server
	if cfg.MetricsAddr != "" {
		// Ready once the database answered and the API listener is bound.
		obsServer = observability.NewServer(cfg.MetricsAddr, func() bool { return true })
		obsErrChan, obsErr := obsServer.Start()
		if obsErr != nil {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer shutdownCancel()
			if stopErr := apiServer.Stop(shutdownCtx); stopErr != nil {
				slog.Warn("failed to stop api server during cleanup", "error", stopErr)
			}
			return obsErr
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
	}

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	cmd.Println("Identity service started")
	slog.Info("identity service ready", "api_addr", apiServer.Addr())

	select {
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig)
	case <-ctx.Done():
		slog.Info("context cancelled, shutting down")
	}

	slog.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := apiServer.Stop(shutdownCtx); err != nil {
		slog.Warn("error stopping api server", "error", err)
	}
	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			slog.Warn("error stopping observability server", "error", err)
		}
	}

	slog.Info("shutdown complete")
	return nil
}

// monitorServerErrors watches a server's error channel and cancels the
// context on error so that one server failing takes the process down
// gracefully. It exits when an error arrives, the channel closes, or the
// context is cancelled.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			// Channel closed, server stopped gracefully
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
		// Context cancelled, exit monitoring
	}
}
