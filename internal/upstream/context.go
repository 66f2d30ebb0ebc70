package upstream

import "context"

type ctxKey int

const requestIDKey ctxKey = 0

// ContextWithRequestID attaches a request identifier that outgoing backend
// calls will forward as X-Request-ID.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

func requestIDFromContext(ctx context.Context) string {
	if val, ok := ctx.Value(requestIDKey).(string); ok {
		return val
	}
	return ""
}
