package services

import "context"

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	componentKey contextKey = "component"
)

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithComponent annotates context with the component handling the request.
func WithComponent(ctx context.Context, component string) context.Context {
	if component == "" {
		return ctx
	}
	return context.WithValue(ctx, componentKey, component)
}

// ComponentFromContext returns the component name if present.
func ComponentFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(componentKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
