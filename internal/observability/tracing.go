// Package observability wires OpenTelemetry trace export into Genkit.
//
// Genkit traces every model and tool invocation through its own
// TracerProvider; this package attaches an OTLP HTTP exporter to it so
// spans reach a local collector. The collector handles authentication,
// buffering, and forwarding.
package observability

import (
	"context"
	"os"
	"time"

	"github.com/firebase/genkit/go/core/tracing"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/scoutchat/scout/internal/config"
	"github.com/scoutchat/scout/internal/log"
)

// shutdownTimeout bounds the span flush during teardown.
const shutdownTimeout = 5 * time.Second

// Setup attaches an OTLP exporter to Genkit's TracerProvider.
// Must run before genkit.Init so the provider is ready when spans start.
// Returns a shutdown func; a no-op func is returned when tracing is
// disabled or the exporter cannot be created.
func Setup(ctx context.Context, cfg config.OtelConfig, logger log.Logger) func() {
	if !cfg.Enabled {
		return func() {}
	}

	agentHost := cfg.AgentHost
	if agentHost == "" {
		agentHost = "localhost:4318"
	}

	// Genkit's TracerProvider reads service identity from OTEL env vars.
	// SAFETY: os.Setenv is not concurrent-safe, but Setup runs exactly once
	// during startup, before goroutines are spawned.
	if cfg.ServiceName != "" {
		_ = os.Setenv("OTEL_SERVICE_NAME", cfg.ServiceName)
	}
	if cfg.Environment != "" {
		_ = os.Setenv("OTEL_RESOURCE_ATTRIBUTES", "deployment.environment="+cfg.Environment)
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(agentHost),
		otlptracehttp.WithInsecure(), // localhost doesn't need TLS
	)
	if err != nil {
		logger.Warn("creating otlp exporter, tracing disabled", "error", err)
		return func() {}
	}

	processor := sdktrace.NewBatchSpanProcessor(exporter)
	tracing.TracerProvider().RegisterSpanProcessor(processor)

	logger.Debug("trace export enabled",
		"endpoint", agentHost,
		"service", cfg.ServiceName,
		"environment", cfg.Environment,
	)

	shutdown := tracing.TracerProvider().Shutdown

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Warn("shutting down tracer provider", "error", err)
		}
	}
}
