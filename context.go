package authcore

import "context"

type clientHintContextKey struct{}

// WithClientHint attaches a short client descriptor (typically the HTTP
// User-Agent) to ctx. The Engine records it on the session slot created by a
// login or rotation and includes it in audit events.
func WithClientHint(ctx context.Context, hint string) context.Context {
	return context.WithValue(ctx, clientHintContextKey{}, hint)
}

func clientHintFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	hint, _ := ctx.Value(clientHintContextKey{}).(string)
	return hint
}
