package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"query-engine/internal/naming"
)

// ValidationError represents a configuration validation error with context.
type ValidationError struct {
	Field   string
	Message string
	Hint    string
}

func (e ValidationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s (hint: %s)", e.Field, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Field   string
	Message string
	Hint    string
}

// ValidationResult contains the results of configuration validation.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Error returns a combined error message if there are validation errors.
func (r *ValidationResult) Error() string {
	if !r.HasErrors() {
		return ""
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

func (r *ValidationResult) addError(field, message, hint string) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: message, Hint: hint})
}

func (r *ValidationResult) addWarning(field, message, hint string) {
	r.Warnings = append(r.Warnings, ValidationWarning{Field: field, Message: message, Hint: hint})
}

// Validate checks the configuration and returns both fatal errors and
// non-fatal warnings. On success Database.Schema holds the effective schema.
func (c *Config) Validate() *ValidationResult {
	result := &ValidationResult{}

	c.Database.validate(result)
	c.Server.validate(result)
	c.Planner.validate(result)
	validateNamingConfig(result, c.Naming)
	c.Observability.validate(result)

	return result
}

var supportedConnectors = map[string]bool{"mysql": true, "tidb": true}

func (d *DatabaseConfig) validate(result *ValidationResult) {
	if !supportedConnectors[strings.ToLower(d.Connector)] {
		result.addError("database.connector",
			fmt.Sprintf("unsupported connector %q", d.Connector),
			"valid values are: mysql, tidb")
	}

	if strings.TrimSpace(d.DSN) == "" {
		if strings.TrimSpace(d.Host) == "" {
			result.addError("database.host", "host is required when dsn is not set", "")
		}
		if d.Port < 1 || d.Port > 65535 {
			result.addError("database.port", fmt.Sprintf("port %d is out of valid range (1-65535)", d.Port), "")
		}
	}

	d.TLS.validate(result)

	if d.ConnectionLimit < 0 {
		result.addError("database.connection_limit", "connection_limit cannot be negative", "use 0 for no limit")
	}
	if d.MaxIdle < 0 {
		result.addError("database.max_idle", "max_idle cannot be negative", "")
	}
	if d.MaxLifetime < 0 {
		result.addError("database.max_lifetime", "max_lifetime cannot be negative", "")
	}
	if !d.Pooled && d.ConnectionLimit > 1 {
		result.addWarning("database.connection_limit",
			"connection_limit is ignored when pooled is false",
			"an unpooled connector uses a single connection")
	}
	if d.Pooled && d.ConnectionLimit > 0 && d.MaxIdle > d.ConnectionLimit {
		result.addWarning("database.max_idle",
			"max_idle is greater than connection_limit",
			"idle connections will be limited to connection_limit")
	}
	if d.QueryTimeout < 0 {
		result.addError("database.query_timeout", "query_timeout cannot be negative", "use 0 to disable")
	}

	if d.ConnectionTimeout < 0 {
		result.addError("database.connection_timeout", "connection_timeout cannot be negative", "")
	}
	if d.ConnectionRetryInterval < 0 {
		result.addError("database.connection_retry_interval", "connection_retry_interval cannot be negative", "")
	}
	if d.ConnectionTimeout > 0 && d.ConnectionRetryInterval == 0 {
		result.addError("database.connection_retry_interval",
			"connection_retry_interval must be greater than 0 when connection_timeout is set",
			"set a retry interval such as 2s, or set connection_timeout to 0 to disable retries")
	}
	if d.ConnectionTimeout > 0 && d.ConnectionRetryInterval > d.ConnectionTimeout {
		result.addWarning("database.connection_retry_interval",
			"connection_retry_interval is greater than connection_timeout",
			"only one connection attempt will be made")
	}

	schema, err := d.EffectiveSchema()
	if err != nil {
		switch {
		case strings.HasPrefix(err.Error(), "database.dsn"):
			result.addError("database.dsn", err.Error(), "set a valid MySQL DSN in database.dsn or database.dsn_file")
		case strings.Contains(err.Error(), "mismatch"):
			result.addError("database.schema", err.Error(), "either remove database.schema or set it to match the DSN database")
		default:
			result.addError("database.schema", err.Error(), "")
		}
		return
	}
	d.Schema = schema
}

func (t *DatabaseTLSConfig) validate(result *ValidationResult) {
	validModes := map[string]bool{"": true, "off": true, "skip-verify": true, "verify-ca": true, "verify-full": true}
	if !validModes[t.Mode] {
		result.addError("database.tls.mode",
			fmt.Sprintf("invalid TLS mode %q", t.Mode),
			"valid values are: off, skip-verify, verify-ca, verify-full")
	}

	if (t.Mode == "verify-ca" || t.Mode == "verify-full") && t.CAFile == "" {
		result.addError("database.tls.ca_file",
			"CA file is required for verify-ca and verify-full modes",
			"set ca_file to the CA certificate path")
	}

	if (t.CertFile != "") != (t.KeyFile != "") {
		result.addError("database.tls.cert_file",
			"both cert_file and key_file must be specified for client certificate authentication",
			"provide both cert_file and key_file, or neither")
	}

	if t.Mode == "skip-verify" {
		result.addWarning("database.tls.mode",
			"skip-verify mode does not verify server certificates",
			"use verify-ca or verify-full in production")
	}
}

func (s *ServerConfig) validate(result *ValidationResult) {
	if s.Port < 1 || s.Port > 65535 {
		result.addError("server.port", fmt.Sprintf("port %d is out of valid range (1-65535)", s.Port), "")
	}
	if s.MaxBodyBytes <= 0 {
		result.addError("server.max_body_bytes", "max_body_bytes must be positive", "")
	}
	durations := map[string]int64{
		"server.read_timeout":         int64(s.ReadTimeout),
		"server.write_timeout":        int64(s.WriteTimeout),
		"server.idle_timeout":         int64(s.IdleTimeout),
		"server.shutdown_timeout":     int64(s.ShutdownTimeout),
		"server.health_check_timeout": int64(s.HealthCheckTimeout),
	}
	for field, d := range durations {
		if d < 0 {
			result.addError(field, "timeout cannot be negative", "")
		}
	}
	if s.WriteTimeout > 0 && s.ReadTimeout > s.WriteTimeout {
		result.addWarning("server.write_timeout",
			"write_timeout is shorter than read_timeout",
			"slow requests may be cut off while writing the response")
	}
}

func (p *PlannerConfig) validate(result *ValidationResult) {
	if p.MaxDepth < 0 {
		result.addError("planner.max_depth", "max_depth cannot be negative", "use 0 for no limit")
	}
	if p.MaxNodes < 0 {
		result.addError("planner.max_nodes", "max_nodes cannot be negative", "use 0 for no limit")
	}
	if p.Parallelism < 0 {
		result.addError("planner.parallelism", "parallelism cannot be negative", "")
	}
	if p.Parallelism == 0 {
		result.addWarning("planner.parallelism",
			"parallelism is 0",
			"root fields will execute one at a time")
	}
}

func validateNamingConfig(result *ValidationResult, cfg naming.Config) {
	check := func(field string, overrides map[string]string) {
		for from, to := range overrides {
			if strings.TrimSpace(from) == "" {
				result.addError(field, "override key cannot be empty", "")
				continue
			}
			if strings.TrimSpace(to) == "" {
				result.addError(field, fmt.Sprintf("override for %q cannot be empty", from), "")
			}
		}
	}
	check("naming.plural_overrides", cfg.PluralOverrides)
	check("naming.singular_overrides", cfg.SingularOverrides)
}

func (o *ObservabilityConfig) validate(result *ValidationResult) {
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[o.Logging.Level] {
		result.addError("observability.logging.level",
			fmt.Sprintf("invalid log level %q", o.Logging.Level),
			"valid values are: debug, info, warn, error")
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[o.Logging.Format] {
		result.addError("observability.logging.format",
			fmt.Sprintf("invalid log format %q", o.Logging.Format),
			"valid values are: json, text")
	}

	if o.TraceSampleRatio < 0 || o.TraceSampleRatio > 1 {
		result.addError("observability.trace_sample_ratio",
			fmt.Sprintf("trace_sample_ratio %v is out of range", o.TraceSampleRatio),
			"use a value from 0.0 to 1.0")
	}

	o.OTLP.validate("observability.otlp", result)
	if o.Traces != nil {
		o.Traces.validate("observability.traces", result)
	}
	if o.Logs != nil {
		o.Logs.validate("observability.logs", result)
	}
}

func (o *OTLPConfig) validate(prefix string, result *ValidationResult) {
	validProtocols := map[string]bool{"": true, "grpc": true, "http/protobuf": true}
	if !validProtocols[o.Protocol] {
		result.addError(prefix+".protocol",
			fmt.Sprintf("invalid OTLP protocol %q", o.Protocol),
			"valid values are: grpc, http/protobuf")
	}

	if o.Protocol == "http/protobuf" && !validOTLPEndpoint(o.Endpoint) {
		result.addError(prefix+".endpoint",
			fmt.Sprintf("invalid OTLP endpoint %q for http/protobuf", o.Endpoint),
			"use host:port or a full URL")
	}

	validCompressions := map[string]bool{"": true, "none": true, "gzip": true}
	if !validCompressions[o.Compression] {
		result.addError(prefix+".compression",
			fmt.Sprintf("invalid OTLP compression %q", o.Compression),
			"valid values are: none, gzip")
	}

	if o.RetryMaxAttempts < 0 {
		result.addError(prefix+".retry_max_attempts", "retry_max_attempts cannot be negative", "")
	}
}

func validOTLPEndpoint(endpoint string) bool {
	if endpoint == "" {
		return false
	}
	if strings.Contains(endpoint, "://") {
		parsed, err := url.Parse(endpoint)
		if err != nil {
			return false
		}
		return parsed.Host != ""
	}
	_, _, err := net.SplitHostPort(endpoint)
	return err == nil
}
