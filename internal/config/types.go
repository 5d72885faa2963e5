// Package config loads configuration from files, env vars, and flags, and
// validates it.
package config

import (
	"time"

	"query-engine/internal/naming"
)

// Config holds the application configuration.
type Config struct {
	Database      DatabaseConfig      `mapstructure:"database"`
	Server        ServerConfig        `mapstructure:"server"`
	Planner       PlannerConfig       `mapstructure:"planner"`
	Naming        naming.Config       `mapstructure:"naming"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// DatabaseConfig holds database connection parameters.
type DatabaseConfig struct {
	// Connector names the database flavor. mysql and tidb share a driver.
	Connector string `mapstructure:"connector"`

	// DSN is a complete go-sql-driver/mysql data source name. When set it
	// takes precedence over the discrete connection fields.
	DSN string `mapstructure:"dsn"`
	// DSNFile is a path to a file containing the DSN. "@-" reads stdin.
	DSNFile string `mapstructure:"dsn_file"`

	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	PasswordFile   string `mapstructure:"password_file"`
	PasswordPrompt bool   `mapstructure:"password_prompt"`

	// Schema is the database whose tables become models.
	Schema string `mapstructure:"schema"`

	// ConnectionLimit caps open connections. Pooled=false forces a single
	// connection regardless of the limit.
	ConnectionLimit int           `mapstructure:"connection_limit"`
	Pooled          bool          `mapstructure:"pooled"`
	MaxIdle         int           `mapstructure:"max_idle"`
	MaxLifetime     time.Duration `mapstructure:"max_lifetime"`

	// QueryTimeout bounds each statement; zero disables the bound.
	QueryTimeout time.Duration `mapstructure:"query_timeout"`

	TLS DatabaseTLSConfig `mapstructure:"tls"`

	// ConnectionTimeout is the max time to wait for the database on startup.
	ConnectionTimeout time.Duration `mapstructure:"connection_timeout"`
	// ConnectionRetryInterval is the initial interval between connection retries.
	ConnectionRetryInterval time.Duration `mapstructure:"connection_retry_interval"`
}

// DatabaseTLSConfig holds TLS settings for database connections.
type DatabaseTLSConfig struct {
	// Mode is one of off, skip-verify, verify-ca or verify-full. Empty
	// leaves the driver default.
	Mode       string `mapstructure:"mode"`
	CAFile     string `mapstructure:"ca_file"`
	CertFile   string `mapstructure:"cert_file"`
	KeyFile    string `mapstructure:"key_file"`
	ServerName string `mapstructure:"server_name"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port               int           `mapstructure:"port"`
	MaxBodyBytes       int64         `mapstructure:"max_body_bytes"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout"`
	IdleTimeout        time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout"`
	HealthCheckTimeout time.Duration `mapstructure:"health_check_timeout"`
}

// PlannerConfig bounds planning and execution of one request.
type PlannerConfig struct {
	MaxDepth    int `mapstructure:"max_depth"`
	MaxNodes    int `mapstructure:"max_nodes"`
	Parallelism int `mapstructure:"parallelism"`
}

// LoggingConfig holds logging parameters.
type LoggingConfig struct {
	Level          string `mapstructure:"level"`           // debug, info, warn, error
	Format         string `mapstructure:"format"`          // json, text
	ExportsEnabled bool   `mapstructure:"exports_enabled"` // Enable OTLP log export
}

// ObservabilityConfig holds observability parameters.
type ObservabilityConfig struct {
	ServiceName      string        `mapstructure:"service_name"`
	ServiceVersion   string        `mapstructure:"service_version"`
	Environment      string        `mapstructure:"environment"`
	MetricsEnabled   bool          `mapstructure:"metrics_enabled"`
	TracingEnabled   bool          `mapstructure:"tracing_enabled"`
	TraceSampleRatio float64       `mapstructure:"trace_sample_ratio"`
	Logging          LoggingConfig `mapstructure:"logging"`

	// OTLP holds defaults for every exported signal.
	OTLP OTLPConfig `mapstructure:"otlp"`

	// Signal-specific overrides (optional)
	Traces *OTLPConfig `mapstructure:"traces,omitempty"`
	Logs   *OTLPConfig `mapstructure:"logs,omitempty"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Endpoint          string            `mapstructure:"endpoint"`
	Protocol          string            `mapstructure:"protocol"` // "grpc", "http/protobuf"
	Insecure          bool              `mapstructure:"insecure"`
	TLSCertFile       string            `mapstructure:"tls_cert_file"`
	TLSClientCertFile string            `mapstructure:"tls_client_cert_file"`
	TLSClientKeyFile  string            `mapstructure:"tls_client_key_file"`
	Headers           map[string]string `mapstructure:"headers"`
	Timeout           time.Duration     `mapstructure:"timeout"`
	Compression       string            `mapstructure:"compression"` // "none", "gzip"
	RetryEnabled      bool              `mapstructure:"retry_enabled"`
	RetryMaxAttempts  int               `mapstructure:"retry_max_attempts"`
}

// TracesConfig returns the effective OTLP config for traces.
func (c *ObservabilityConfig) TracesConfig() OTLPConfig {
	if c.Traces != nil {
		return mergeOTLPConfigs(c.OTLP, *c.Traces)
	}
	return c.OTLP
}

// LogsConfig returns the effective OTLP config for logs.
func (c *ObservabilityConfig) LogsConfig() OTLPConfig {
	if c.Logs != nil {
		return mergeOTLPConfigs(c.OTLP, *c.Logs)
	}
	return c.OTLP
}

// mergeOTLPConfigs lays the non-zero fields of override over base. Insecure
// is always taken from override because false cannot be told apart from unset.
func mergeOTLPConfigs(base OTLPConfig, override OTLPConfig) OTLPConfig {
	merged := base
	if override.Endpoint != "" {
		merged.Endpoint = override.Endpoint
	}
	if override.Protocol != "" {
		merged.Protocol = override.Protocol
	}
	merged.Insecure = override.Insecure
	if override.TLSCertFile != "" {
		merged.TLSCertFile = override.TLSCertFile
	}
	if override.TLSClientCertFile != "" {
		merged.TLSClientCertFile = override.TLSClientCertFile
	}
	if override.TLSClientKeyFile != "" {
		merged.TLSClientKeyFile = override.TLSClientKeyFile
	}
	if override.Headers != nil {
		merged.Headers = make(map[string]string, len(base.Headers)+len(override.Headers))
		for k, v := range base.Headers {
			merged.Headers[k] = v
		}
		for k, v := range override.Headers {
			merged.Headers[k] = v
		}
	}
	if override.Timeout != 0 {
		merged.Timeout = override.Timeout
	}
	if override.Compression != "" {
		merged.Compression = override.Compression
	}
	if override.RetryMaxAttempts != 0 {
		merged.RetryEnabled = override.RetryEnabled
		merged.RetryMaxAttempts = override.RetryMaxAttempts
	}
	return merged
}
