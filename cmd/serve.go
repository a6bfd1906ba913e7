package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/scoutchat/scout/internal/agent"
	"github.com/scoutchat/scout/internal/api"
	"github.com/scoutchat/scout/internal/config"
	"github.com/scoutchat/scout/internal/credential"
	"github.com/scoutchat/scout/internal/log"
	"github.com/scoutchat/scout/internal/observability"
	"github.com/scoutchat/scout/internal/session"
)

// Server timeout configuration.
const (
	readHeaderTimeout = 10 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 3 * time.Minute // must exceed the turn timeout
	idleTimeout       = 2 * time.Minute
	shutdownTimeout   = 30 * time.Second
)

// runServe initializes and starts the HTTP API server.
func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := log.New(log.Config{
		Level: log.ParseLevel(cfg.LogLevel),
		JSON:  cfg.LogJSON,
	})
	logger.Info("starting HTTP API server", "version", Version, "addr", cfg.Addr)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Tracing must attach before any Genkit instance initializes.
	otelShutdown := observability.Setup(ctx, cfg.Otel, logger)
	defer otelShutdown()

	manager, err := session.NewManager(session.ManagerConfig{
		Build: func(ctx context.Context, creds *credential.Store) (session.Invoker, error) {
			return agent.New(ctx, agent.Config{
				Creds:     creds,
				Logger:    logger,
				ModelName: cfg.ModelName,
				MaxTurns:  cfg.MaxTurns,
			})
		},
		Logger:      logger,
		TurnTimeout: cfg.TurnTimeout(),
		IdleTTL:     cfg.SessionIdleTTL(),
	})
	if err != nil {
		return fmt.Errorf("creating session manager: %w", err)
	}
	manager.StartEviction(ctx)
	defer manager.Wait()

	apiServer, err := api.NewServer(api.ServerConfig{
		Logger:      logger,
		Sessions:    manager,
		CORSOrigins: cfg.CORSOrigins,
		IsDev:       os.Getenv("SCOUT_DEV") != "",
		TrustProxy:  cfg.TrustProxy,
		RateRPS:     cfg.RateLimitRPS,
		RateBurst:   cfg.RateLimitBurst,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	logger.Info("HTTP server ready",
		"addr", cfg.Addr,
		"api", "/api/v1/*",
		"health", "/health",
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down HTTP server")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down server: %w", err)
		}
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("HTTP server: %w", err)
	}
}
