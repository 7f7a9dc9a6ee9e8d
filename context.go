package hireauth

import "context"

type clientIPContextKey struct{}
type userAgentContextKey struct{}
type identityContextKey struct{}

// WithClientIP attaches the caller's IP address to ctx. The Engine uses it
// for per-IP login throttling and audit logging.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// WithUserAgent attaches the HTTP User-Agent string to ctx for audit metadata.
func WithUserAgent(ctx context.Context, userAgent string) context.Context {
	return context.WithValue(ctx, userAgentContextKey{}, userAgent)
}

// WithIdentity stores a verified identity in ctx. Only middleware that obtained
// identity from Engine.Verify should call this.
func WithIdentity(ctx context.Context, identity VerifiedIdentity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// IdentityFromContext returns the verified identity stored by WithIdentity.
func IdentityFromContext(ctx context.Context) (VerifiedIdentity, bool) {
	if ctx == nil {
		return VerifiedIdentity{}, false
	}
	id, ok := ctx.Value(identityContextKey{}).(VerifiedIdentity)
	if !ok || id.IsZero() {
		return VerifiedIdentity{}, false
	}
	return id, true
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}

func userAgentFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	ua, _ := ctx.Value(userAgentContextKey{}).(string)
	return ua
}
