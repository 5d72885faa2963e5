package serverapp

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"query-engine/internal/config"
	"query-engine/internal/logging"
	"query-engine/internal/naming"
)

func testLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{Level: "error", Format: "text", Output: io.Discard})
}

func TestNew_RequiresConfigAndLogger(t *testing.T) {
	_, err := New(nil, testLogger())
	assert.Error(t, err)
	_, err = New(&config.Config{Database: config.DatabaseConfig{Schema: "blog"}}, nil)
	assert.Error(t, err)

	_, err = New(&config.Config{}, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to resolve effective database configuration")

	app, err := New(&config.Config{Database: config.DatabaseConfig{DSN: "root@tcp(db:3306)/shop"}}, testLogger())
	require.NoError(t, err)
	assert.Equal(t, "shop", app.schemaName)
	assert.True(t, app.dsnPresent)
	assert.Nil(t, app.Engine())
}

func TestWaitForStop_ContextCancelWins(t *testing.T) {
	app := &App{logger: testLogger()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, app.waitForStop(ctx, make(chan error)))
}

func TestWaitForStop_ServerErrorWins(t *testing.T) {
	app := &App{logger: testLogger()}
	serverErrors := make(chan error, 1)
	serverErrors <- errors.New("boom")

	err := app.waitForStop(context.Background(), serverErrors)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestShutdown_Idempotent(t *testing.T) {
	app := &App{logger: testLogger()}
	var calls int32
	app.cleanup.push("test", func(context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, app.Shutdown(ctx))
	require.NoError(t, app.Shutdown(ctx))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCleanupStack_RunsInReverseOrder(t *testing.T) {
	var order []string
	var stack cleanupStack
	stack.push("first", func(context.Context) error { order = append(order, "first"); return nil })
	stack.push("second", func(context.Context) error { order = append(order, "second"); return errors.New("ignored") })
	stack.push("third", func(context.Context) error { order = append(order, "third"); return nil })

	stack.run(context.Background(), testLogger())
	assert.Equal(t, []string{"third", "second", "first"}, order)
}

func TestStart_BeforeInit_Fails(t *testing.T) {
	app := &App{logger: testLogger()}
	_, err := app.Start()
	assert.Error(t, err)
}

func TestRunAndShutdown_HappyPath(t *testing.T) {
	app := &App{
		cfg:        &config.Config{},
		logger:     testLogger(),
		serverAddr: "127.0.0.1:0",
		srv: &http.Server{
			Addr:    "127.0.0.1:0",
			Handler: http.NewServeMux(),
		},
		initialized: true,
	}
	app.cleanup.push("HTTP server", func(ctx context.Context) error {
		return app.srv.Shutdown(ctx)
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer shutdownCancel()
	require.NoError(t, app.Shutdown(shutdownCtx))
}

func TestInitFailure_DoesNotMarkInitialized(t *testing.T) {
	appCfg := &config.Config{
		Database: config.DatabaseConfig{
			Connector:       "mysql",
			Host:            "127.0.0.1",
			Port:            1,
			User:            "root",
			Password:        "invalid",
			Schema:          "test",
			TLS:             config.DatabaseTLSConfig{Mode: "off"},
			Pooled:          true,
			ConnectionLimit: 1,
			MaxIdle:         1,
			MaxLifetime:     time.Second,
		},
		Server: config.ServerConfig{
			Port:               18089,
			MaxBodyBytes:       1 << 20,
			ReadTimeout:        time.Second,
			WriteTimeout:       time.Second,
			IdleTimeout:        time.Second,
			ShutdownTimeout:    time.Second,
			HealthCheckTimeout: time.Second,
		},
		Observability: config.ObservabilityConfig{
			ServiceName: "query-engine",
			Environment: "test",
			Logging:     config.LoggingConfig{Level: "info", Format: "text"},
		},
		Naming: naming.DefaultConfig(),
	}

	app, err := New(appCfg, testLogger())
	require.NoError(t, err)

	require.Error(t, app.Init(context.Background()), "unreachable database")

	app.stateMu.Lock()
	initialized := app.initialized
	app.stateMu.Unlock()
	assert.False(t, initialized)
}
