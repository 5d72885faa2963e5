package middleware

import (
	"net/http"

	"query-engine/internal/gqlrequest"
)

// RequestAnalysisMiddleware decodes and analyzes the request payload once
// and stores the result in the request context. Bodies larger than
// maxBodyBytes fail to decode; a non-positive limit disables the bound.
func RequestAnalysisMiddleware(maxBodyBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxBodyBytes > 0 && r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
			}

			analysis := gqlrequest.AnalyzeRequest(r)
			next.ServeHTTP(w, r.WithContext(gqlrequest.WithAnalysis(r.Context(), analysis)))
		})
	}
}
