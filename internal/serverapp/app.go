// Package serverapp wires configuration, the database, the engine, and the
// HTTP server into one process lifecycle.
package serverapp

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"query-engine/internal/config"
	"query-engine/internal/engine"
	"query-engine/internal/logging"
	"query-engine/internal/models"
	"query-engine/internal/observability"
)

// App owns runtime resources for the query-engine server lifecycle.
type App struct {
	cfg    *config.Config
	logger *logging.Logger

	loggerProvider *observability.LoggerProvider

	schemaName string
	dsnPresent bool

	meterProvider  *observability.MeterProvider
	metrics        *observability.EngineMetrics
	tracerProvider *observability.TracerProvider

	db         *sql.DB
	dbStatsReg interface{ Unregister() error }

	schema *models.Schema
	engine *engine.Engine

	handler    http.Handler
	serverAddr string
	srv        *http.Server

	cleanup cleanupStack

	stateMu      sync.Mutex
	initialized  bool
	started      bool
	serverErrors chan error

	shutdownOnce sync.Once
}

// New creates an App lifecycle wrapper. Nothing is connected until Init.
func New(cfg *config.Config, logger *logging.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	schemaName, err := cfg.Database.EffectiveSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve effective database configuration: %w", err)
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		schemaName: schemaName,
		dsnPresent: strings.TrimSpace(cfg.Database.DSN) != "",
	}, nil
}

// AttachLoggerProvider registers an optional logger provider for shutdown cleanup.
func (a *App) AttachLoggerProvider(provider *observability.LoggerProvider) {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	a.loggerProvider = provider
}

// Engine returns the request engine. It is nil before Init succeeds.
func (a *App) Engine() *engine.Engine {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	return a.engine
}

// Run starts the server and blocks until ctx is done or the server fails.
// Cancellation is a clean stop and returns nil.
func (a *App) Run(ctx context.Context) error {
	serverErrors, err := a.Start()
	if err != nil {
		return err
	}
	return a.waitForStop(ctx, serverErrors)
}
