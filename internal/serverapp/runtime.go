package serverapp

import (
	"context"
	"fmt"
)

// Start launches the HTTP server goroutine. It requires Init to have completed.
func (a *App) Start() (<-chan error, error) {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()

	if !a.initialized {
		return nil, fmt.Errorf("app is not initialized")
	}
	if a.started {
		return a.serverErrors, nil
	}

	a.serverErrors = startServer(a.cfg, a.logger, a.srv, a.serverAddr)
	a.started = true
	return a.serverErrors, nil
}

// waitForStop blocks until ctx is done or the server reports an error.
func (a *App) waitForStop(ctx context.Context, serverErrors <-chan error) error {
	select {
	case err := <-serverErrors:
		if err == nil {
			return fmt.Errorf("server stopped unexpectedly")
		}
		return err
	case <-ctx.Done():
		a.logger.Info("shutdown requested", "reason", context.Cause(ctx).Error())
		return nil
	}
}
