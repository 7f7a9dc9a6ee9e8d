package middleware

import (
	"net"
	"net/http"

	"github.com/MrEthical07/hireauth"
)

// ClientContext attaches the caller's IP and User-Agent to the request
// context for login throttling and audit events. Mount it after any
// middleware that rewrites RemoteAddr from trusted proxy headers.
func ClientContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := hireauth.WithClientIP(r.Context(), ClientIP(r))
		if ua := r.UserAgent(); ua != "" {
			ctx = hireauth.WithUserAgent(ctx, ua)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientIP returns the host part of r.RemoteAddr.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
