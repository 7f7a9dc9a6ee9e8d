// Package client keeps a caller's access credential fresh.
//
// A Session holds the current access token, arms a single timer LeadTime
// before it expires, and renews through a Transport when the timer fires.
// Any renewal failure logs the session out. The expiry used for scheduling is
// read without verifying the signature; the server remains the only
// authority on validity.
//
// HTTPTransport talks to the httpapi endpoints and keeps the refresh cookie
// in a cookie jar, so the refresh credential never passes through Session.
package client
