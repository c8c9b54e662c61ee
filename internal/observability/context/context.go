package context

import "context"

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	skuKey       ctxKey = "sku"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

// WithSKU tags the context with the SKU a write operates on so log lines can be correlated.
func WithSKU(ctx context.Context, sku string) context.Context {
	if sku == "" {
		return ctx
	}
	return context.WithValue(ctx, skuKey, sku)
}

func SKUFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(skuKey).(string)
	return v
}
