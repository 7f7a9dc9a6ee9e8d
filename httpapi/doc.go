// Package httpapi serves the session lifecycle over HTTP with a chi router.
//
// Routes:
//
//	POST /login         issue access and refresh cookies
//	POST /auth/refresh  mint a new access cookie from the refresh cookie
//	POST /logout        clear both cookies
//	POST /register      create an applicant account
//	GET  /me            identity of the verified caller
//	GET  /admin/me      same, admin role only
//	GET  /healthz
//	GET  /metrics       when Options.MetricsHandler is set
//
// Error bodies are always {"message": "..."}.
package httpapi
