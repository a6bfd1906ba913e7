package config

// OtelConfig holds OpenTelemetry tracing configuration.
//
// Traces export over OTLP HTTP to a local collector; the collector handles
// authentication and forwarding. See internal/observability for setup.
type OtelConfig struct {
	// Enabled turns trace export on. Off by default.
	Enabled bool `mapstructure:"enabled" json:"enabled"`
	// AgentHost is the OTLP HTTP endpoint (default: localhost:4318)
	AgentHost string `mapstructure:"agent_host" json:"agent_host"`
	// ServiceName tags exported spans (default: scout)
	ServiceName string `mapstructure:"service_name" json:"service_name"`
	// Environment is the deployment environment tag (default: dev)
	Environment string `mapstructure:"environment" json:"environment"`
}
