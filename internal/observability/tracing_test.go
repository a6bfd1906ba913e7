package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scoutchat/scout/internal/config"
	"github.com/scoutchat/scout/internal/log"
)

func TestSetupDisabled(t *testing.T) {
	shutdown := Setup(context.Background(), config.OtelConfig{Enabled: false}, log.NewNop())
	require.NotNil(t, shutdown)
	shutdown() // no-op, must not panic
}

func TestSetupEnabledWithDefaults(t *testing.T) {
	cfg := config.OtelConfig{
		Enabled:     true,
		ServiceName: "scout-test",
		Environment: "test",
	}

	// Exporter creation is lazy; no collector needs to be running.
	shutdown := Setup(context.Background(), cfg, log.NewNop())
	require.NotNil(t, shutdown)
	shutdown()
}

func TestSetupEnabledCustomHost(t *testing.T) {
	cfg := config.OtelConfig{
		Enabled:   true,
		AgentHost: "custom-host:4318",
	}

	shutdown := Setup(context.Background(), cfg, log.NewNop())
	require.NotNil(t, shutdown)
	shutdown()
}
