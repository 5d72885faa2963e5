package gqlrequest

import "context"

type analysisContextKey struct{}

// WithAnalysis stores the request analysis in context.
func WithAnalysis(ctx context.Context, analysis *Analysis) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, analysisContextKey{}, analysis)
}

// AnalysisFromContext retrieves the request analysis from context.
func AnalysisFromContext(ctx context.Context) *Analysis {
	if ctx == nil {
		return nil
	}
	analysis, _ := ctx.Value(analysisContextKey{}).(*Analysis)
	return analysis
}
