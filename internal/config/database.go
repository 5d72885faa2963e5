package config

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// tlsConfigName is the name used to register custom TLS configs with the MySQL driver.
const tlsConfigName = "query-engine-custom"

// ConnectionDSN returns a go-sql-driver/mysql data source name. An explicit DSN is
// parsed and normalized; otherwise one is built from the discrete fields.
// Either way parseTime is enabled, the location is UTC, and the effective
// schema and TLS mode are applied.
func (d *DatabaseConfig) ConnectionDSN() (string, error) {
	var cfg *mysql.Config
	if strings.TrimSpace(d.DSN) != "" {
		parsed, err := mysql.ParseDSN(strings.TrimSpace(d.DSN))
		if err != nil {
			return "", fmt.Errorf("database.dsn is invalid: %w", err)
		}
		cfg = parsed
	} else {
		cfg = mysql.NewConfig()
		cfg.User = d.User
		cfg.Passwd = d.Password
		cfg.Net = "tcp"
		cfg.Addr = fmt.Sprintf("%s:%d", d.Host, d.Port)
	}

	schema, err := d.EffectiveSchema()
	if err != nil {
		return "", err
	}
	cfg.DBName = schema
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	if param := d.effectiveTLSParam(); param != "" && cfg.TLSConfig == "" {
		cfg.TLSConfig = param
	}
	return cfg.FormatDSN(), nil
}

// EffectiveSchema returns the database whose tables are inspected. The
// schema setting wins; otherwise the DSN's database is used. Both being set
// to different values is an error.
func (d *DatabaseConfig) EffectiveSchema() (string, error) {
	configured := strings.TrimSpace(d.Schema)
	fromDSN, err := parseDSNDatabaseName(d.DSN)
	if err != nil {
		return "", err
	}

	switch {
	case configured != "" && fromDSN != "" && configured != fromDSN:
		return "", fmt.Errorf("database mismatch: database.schema=%q but database.dsn targets %q", configured, fromDSN)
	case configured != "":
		return configured, nil
	case fromDSN != "":
		return fromDSN, nil
	}
	return "", fmt.Errorf("no schema configured: set database.schema or include /<database> in database.dsn")
}

func parseDSNDatabaseName(connectionString string) (string, error) {
	dsn := strings.TrimSpace(connectionString)
	if dsn == "" {
		return "", nil
	}

	parsed, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("database.dsn is invalid: %w", err)
	}
	return strings.TrimSpace(parsed.DBName), nil
}

// PoolLimits returns the connection pool bounds to apply to *sql.DB.
// An unpooled connector is pinned to one connection.
func (d *DatabaseConfig) PoolLimits() (maxOpen, maxIdle int) {
	if !d.Pooled {
		return 1, 1
	}
	maxOpen = d.ConnectionLimit
	maxIdle = d.MaxIdle
	if maxOpen > 0 && maxIdle > maxOpen {
		maxIdle = maxOpen
	}
	return maxOpen, maxIdle
}

// effectiveTLSParam returns the tls DSN parameter for the configured mode,
// or empty when the driver default applies.
func (d *DatabaseConfig) effectiveTLSParam() string {
	switch d.TLS.Mode {
	case "":
		return ""
	case "off":
		return "false"
	case "skip-verify":
		return "skip-verify"
	case "verify-ca", "verify-full":
		return tlsConfigName
	default:
		return d.TLS.Mode
	}
}

// RegisterTLS registers a custom TLS configuration with the MySQL driver.
// It must run before the connection is opened in verify-ca or verify-full
// mode and is a no-op otherwise.
func (d *DatabaseConfig) RegisterTLS() error {
	mode := d.TLS.Mode
	if mode != "verify-ca" && mode != "verify-full" {
		return nil
	}

	tlsCfg, err := d.buildTLSConfig()
	if err != nil {
		return fmt.Errorf("failed to build TLS config: %w", err)
	}

	if err := mysql.RegisterTLSConfig(tlsConfigName, tlsCfg); err != nil {
		return fmt.Errorf("failed to register TLS config: %w", err)
	}
	return nil
}

func (d *DatabaseConfig) buildTLSConfig() (*tls.Config, error) {
	tlsCfg := &tls.Config{
		MinVersion: tls.VersionTLS12,
	}

	if d.TLS.CAFile != "" {
		caCert, err := os.ReadFile(d.TLS.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA file %q: %w", d.TLS.CAFile, err)
		}
		certPool := x509.NewCertPool()
		if !certPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA certificate from %q", d.TLS.CAFile)
		}
		tlsCfg.RootCAs = certPool
	}

	switch {
	case d.TLS.CertFile != "" && d.TLS.KeyFile != "":
		cert, err := tls.LoadX509KeyPair(d.TLS.CertFile, d.TLS.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate: %w", err)
		}
		tlsCfg.Certificates = []tls.Certificate{cert}
	case d.TLS.CertFile != "" || d.TLS.KeyFile != "":
		return nil, fmt.Errorf("both cert_file and key_file must be specified for client certificate authentication")
	}

	if d.TLS.Mode == "verify-full" && d.TLS.ServerName != "" {
		tlsCfg.ServerName = d.TLS.ServerName
	}
	return tlsCfg, nil
}
