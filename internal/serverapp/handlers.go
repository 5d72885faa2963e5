package serverapp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"query-engine/internal/engine"
	"query-engine/internal/gqlrequest"
	"query-engine/internal/logging"
)

// requestExecutor is the part of *engine.Engine the HTTP layer needs.
type requestExecutor interface {
	Execute(ctx context.Context, analysis *gqlrequest.Analysis) *engine.Response
}

// graphqlHandler serves GET and POST requests. Request-level failures (no
// data at all) answer 400; field failures still answer 200 with errors
// alongside the data.
func graphqlHandler(exec requestExecutor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodPost {
			w.Header().Set("Allow", "GET, POST")
			writeJSON(w, r, http.StatusMethodNotAllowed, errorBody("method not allowed"))
			return
		}

		analysis := gqlrequest.AnalysisFromContext(r.Context())
		if analysis == nil {
			analysis = gqlrequest.AnalyzeRequest(r)
		}

		var tooLarge *http.MaxBytesError
		if errors.As(analysis.DecodeError, &tooLarge) {
			writeJSON(w, r, http.StatusRequestEntityTooLarge,
				errorBody(fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)))
			return
		}

		resp := exec.Execute(r.Context(), analysis)
		status := http.StatusOK
		if resp.Data == nil && len(resp.Errors) > 0 {
			status = http.StatusBadRequest
		}
		writeJSON(w, r, status, resp)
	}
}

func errorBody(message string) *engine.Response {
	return &engine.Response{Errors: []engine.Error{{Message: message}}}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	payload, err := json.Marshal(body)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to encode response", slog.String("error", err.Error()))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"errors":[{"message":"failed to encode response"}]}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

// healthHandler reports whether the database answers a ping within timeout.
func healthHandler(db pinger, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqLogger := logging.FromContext(r.Context())
		w.Header().Set("Content-Type", "application/json")

		ctx := r.Context()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		if err := db.PingContext(ctx); err != nil {
			reqLogger.Error("health check failed",
				slog.String("error", err.Error()),
				slog.String("check", "database"),
			)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = fmt.Fprint(w, `{"status":"unhealthy","database":"failed"}`)
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprint(w, `{"status":"healthy","database":"ok"}`)
	}
}
