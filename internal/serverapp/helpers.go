package serverapp

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/XSAM/otelsql"
	_ "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"query-engine/internal/config"
	"query-engine/internal/connector"
	"query-engine/internal/dbexec"
	"query-engine/internal/engine"
	"query-engine/internal/introspection"
	"query-engine/internal/logging"
	"query-engine/internal/middleware"
	"query-engine/internal/models"
	"query-engine/internal/naming"
	"query-engine/internal/observability"
	"query-engine/internal/planner"
)

// InitLogger builds the process logger from configuration and installs it as
// the slog default. When log export is enabled the returned provider must be
// shut down by the caller (see App.AttachLoggerProvider).
func InitLogger(cfg *config.Config) (*logging.Logger, *observability.LoggerProvider, error) {
	loggerCfg := logging.Config{
		Level:  cfg.Observability.Logging.Level,
		Format: cfg.Observability.Logging.Format,
	}
	logger := logging.NewLogger(loggerCfg)
	slog.SetDefault(logger.Logger)

	if !cfg.Observability.Logging.ExportsEnabled {
		return logger, nil, nil
	}

	logsConfig := cfg.Observability.LogsConfig()
	logger.Info("initializing OpenTelemetry logging",
		slog.String("otlp_endpoint", logsConfig.Endpoint),
		slog.String("otlp_protocol", logsConfig.Protocol),
		slog.Bool("insecure", logsConfig.Insecure),
	)

	loggerProvider, err := observability.InitLoggerProvider(telemetryConfig(cfg, logsConfig))
	if err != nil {
		return nil, nil, err
	}

	loggerCfg.LoggerProvider = loggerProvider.Provider()
	logger = logging.NewLogger(loggerCfg)
	slog.SetDefault(logger.Logger)

	return logger, loggerProvider, nil
}

// telemetryConfig maps the configured service identity and one signal's
// OTLP settings onto the observability package's config.
func telemetryConfig(cfg *config.Config, otlp config.OTLPConfig) observability.Config {
	return observability.Config{
		ServiceName:      cfg.Observability.ServiceName,
		ServiceVersion:   cfg.Observability.ServiceVersion,
		Environment:      cfg.Observability.Environment,
		TraceSampleRatio: cfg.Observability.TraceSampleRatio,
		OTLPConfig: observability.OTLPExporterConfig{
			Endpoint:          otlp.Endpoint,
			Protocol:          otlp.Protocol,
			Insecure:          otlp.Insecure,
			TLSCertFile:       otlp.TLSCertFile,
			TLSClientCertFile: otlp.TLSClientCertFile,
			TLSClientKeyFile:  otlp.TLSClientKeyFile,
			Headers:           otlp.Headers,
			Timeout:           otlp.Timeout,
			Compression:       otlp.Compression,
			RetryEnabled:      otlp.RetryEnabled,
			RetryMaxAttempts:  otlp.RetryMaxAttempts,
		},
	}
}

func initMetrics(cfg *config.Config, logger *logging.Logger) (*observability.MeterProvider, *observability.EngineMetrics, error) {
	if !cfg.Observability.MetricsEnabled {
		return nil, nil, nil
	}

	meterProvider, err := observability.InitMeterProvider(telemetryConfig(cfg, config.OTLPConfig{}))
	if err != nil {
		return nil, nil, err
	}

	metrics, err := observability.InitMetrics(logger.Logger)
	if err != nil {
		_ = meterProvider.Shutdown(context.Background(), logger.Logger)
		return nil, nil, err
	}
	return meterProvider, metrics, nil
}

func initTracing(cfg *config.Config, logger *logging.Logger) (*observability.TracerProvider, error) {
	if !cfg.Observability.TracingEnabled {
		return nil, nil
	}

	tracesConfig := cfg.Observability.TracesConfig()
	logger.Info("initializing OpenTelemetry tracing",
		slog.String("otlp_endpoint", tracesConfig.Endpoint),
		slog.String("otlp_protocol", tracesConfig.Protocol),
		slog.Float64("sample_ratio", cfg.Observability.TraceSampleRatio),
	)

	return observability.InitTracerProvider(telemetryConfig(cfg, tracesConfig))
}

func connectDB(cfg *config.Config, logger *logging.Logger) (*sql.DB, interface{ Unregister() error }, error) {
	if err := cfg.Database.RegisterTLS(); err != nil {
		return nil, nil, fmt.Errorf("failed to register database TLS config: %w", err)
	}

	dsn, err := cfg.Database.ConnectionDSN()
	if err != nil {
		return nil, nil, err
	}

	if !cfg.Observability.MetricsEnabled && !cfg.Observability.TracingEnabled {
		db, err := sql.Open("mysql", dsn)
		if err != nil {
			return nil, nil, err
		}
		return db, nil, nil
	}

	opts := []otelsql.Option{
		otelsql.WithAttributes(semconv.DBSystemMySQL),
	}
	if cfg.Observability.TracingEnabled {
		opts = append(opts,
			otelsql.WithSpanOptions(otelsql.SpanOptions{DisableErrSkip: true}),
			otelsql.WithSQLCommenter(true),
		)
	}

	db, err := otelsql.Open("mysql", dsn, opts...)
	if err != nil {
		return nil, nil, err
	}

	var dbStatsReg interface{ Unregister() error }
	if cfg.Observability.MetricsEnabled {
		dbStatsReg, err = otelsql.RegisterDBStatsMetrics(db, otelsql.WithAttributes(semconv.DBSystemMySQL))
		if err != nil {
			logger.Warn("failed to register DB stats metrics", slog.String("error", err.Error()))
		}
	}

	logger.Info("database instrumentation enabled",
		slog.Bool("metrics", cfg.Observability.MetricsEnabled),
		slog.Bool("tracing", cfg.Observability.TracingEnabled),
	)
	return db, dbStatsReg, nil
}

func configureDatabase(ctx context.Context, cfg *config.Config, logger *logging.Logger, db *sql.DB) error {
	maxOpen, maxIdle := cfg.Database.PoolLimits()
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := waitForDatabase(ctx, cfg, logger, db); err != nil {
		return err
	}

	logger.Info("connected to database",
		slog.Bool("pooled", cfg.Database.Pooled),
		slog.Int("pool_max_open", maxOpen),
		slog.Int("pool_max_idle", maxIdle),
		slog.Duration("pool_max_lifetime", cfg.Database.MaxLifetime),
	)
	return nil
}

// pinger is the part of *sql.DB waitForDatabase needs.
type pinger interface {
	PingContext(ctx context.Context) error
}

// waitForDatabase pings until the database answers. A zero connection
// timeout tries once; otherwise it retries with doubling intervals capped
// at 30s until the timeout passes.
func waitForDatabase(ctx context.Context, cfg *config.Config, logger *logging.Logger, db pinger) error {
	timeout := cfg.Database.ConnectionTimeout
	interval := cfg.Database.ConnectionRetryInterval

	if timeout == 0 {
		return db.PingContext(ctx)
	}

	deadline := time.Now().Add(timeout)
	for attempt := 1; ; attempt++ {
		err := db.PingContext(ctx)
		if err == nil {
			if attempt > 1 {
				logger.Info("database connection established", slog.Int("attempts", attempt))
			}
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("database not available after %v: %w", timeout, err)
		}

		logger.Warn("database not ready, retrying",
			slog.Int("attempt", attempt),
			slog.Duration("retry_in", interval),
			slog.String("error", err.Error()),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
		interval = min(interval*2, 30*time.Second)
	}
}

// loadSchema inspects the configured database and derives the model catalog.
func loadSchema(ctx context.Context, cfg *config.Config, logger *logging.Logger, db introspection.Queryer, schemaName string) (*models.Schema, error) {
	start := time.Now()
	dbSchema, err := introspection.NewSQLInspector(db).Inspect(ctx, schemaName)
	if err != nil {
		return nil, err
	}

	namer := naming.New(cfg.Naming, logger.Logger)
	schema, err := models.FromDatabase(dbSchema, namer)
	if err != nil {
		return nil, fmt.Errorf("failed to build models: %w", err)
	}

	logger.Info("schema loaded",
		slog.String("schema", schemaName),
		slog.Int("tables", len(dbSchema.Tables)),
		slog.Int("models", len(schema.Models())),
		slog.Duration("duration", time.Since(start)),
	)
	return schema, nil
}

func buildEngine(cfg *config.Config, logger *logging.Logger, db dbexec.Queryer, schema *models.Schema, metrics *observability.EngineMetrics) (*engine.Engine, error) {
	var executor dbexec.QueryExecutor = dbexec.NewStandardExecutor(db)
	if cfg.Database.QueryTimeout > 0 {
		executor = dbexec.NewTimeoutExecutor(executor, cfg.Database.QueryTimeout)
	}

	opts := []engine.Option{
		engine.WithNamer(naming.New(cfg.Naming, logger.Logger)),
		engine.WithLimits(planner.PlanLimits{
			MaxDepth: cfg.Planner.MaxDepth,
			MaxNodes: cfg.Planner.MaxNodes,
		}),
		engine.WithParallelism(cfg.Planner.Parallelism),
	}
	if metrics != nil {
		opts = append(opts, engine.WithMetrics(metrics))
	}
	return engine.New(schema, connector.New(executor), opts...)
}

func buildRouter(cfg *config.Config, logger *logging.Logger, db pinger, eng *engine.Engine, meterProvider *observability.MeterProvider) *http.ServeMux {
	mux := http.NewServeMux()

	var graphql http.Handler = graphqlHandler(eng)
	graphql = middleware.RequestAnalysisMiddleware(cfg.Server.MaxBodyBytes)(graphql)
	mux.Handle("/graphql", middleware.LoggingMiddleware(logger)(graphql))

	mux.HandleFunc("/health", healthHandler(db, cfg.Server.HealthCheckTimeout))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.Redirect(w, r, "/graphql", http.StatusFound)
			return
		}
		http.NotFound(w, r)
	})

	if cfg.Observability.MetricsEnabled && meterProvider != nil {
		mux.Handle("/metrics", promhttp.Handler())
		logger.Info("metrics endpoint enabled", slog.String("path", "/metrics"))
	}
	return mux
}

func wrapHTTPHandler(cfg *config.Config, logger *logging.Logger, handler http.Handler) http.Handler {
	if !cfg.Observability.MetricsEnabled && !cfg.Observability.TracingEnabled {
		return handler
	}
	logger.Info("HTTP instrumentation enabled")
	return otelhttp.NewHandler(handler, "http.server",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return httpRootSpanName(r)
		}),
	)
}

func httpRootSpanName(r *http.Request) string {
	if r == nil {
		return "HTTP /*"
	}
	method := strings.TrimSpace(r.Method)
	if method == "" {
		method = "HTTP"
	}
	return method + " " + normalizeHTTPSpanRoute(r.URL.Path)
}

// normalizeHTTPSpanRoute keeps span names low-cardinality.
func normalizeHTTPSpanRoute(rawPath string) string {
	switch rawPath {
	case "/", "/graphql", "/health", "/metrics":
		return rawPath
	default:
		return "/*"
	}
}

func buildServer(cfg *config.Config, handler http.Handler, serverAddr string) *http.Server {
	return &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
}

func startServer(cfg *config.Config, logger *logging.Logger, srv *http.Server, serverAddr string) chan error {
	serverErrors := make(chan error, 1)
	go func() {
		logAttrs := []any{
			slog.String("address", serverAddr),
			slog.String("graphql_endpoint", "/graphql"),
			slog.String("health_endpoint", "/health"),
			slog.Int("max_depth", cfg.Planner.MaxDepth),
			slog.Int("max_nodes", cfg.Planner.MaxNodes),
			slog.Int("parallelism", cfg.Planner.Parallelism),
		}
		if cfg.Observability.MetricsEnabled {
			logAttrs = append(logAttrs, slog.String("metrics_endpoint", "/metrics"))
		}
		logger.Info("server starting", logAttrs...)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- fmt.Errorf("server failed: %w", err)
		}
	}()
	return serverErrors
}
