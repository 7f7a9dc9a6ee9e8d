package httpapi

import (
	"net/http"
	"time"

	"github.com/MrEthical07/hireauth/middleware"
)

const (
	// AccessCookieName carries the access credential. It is readable by
	// scripts so the client scheduler can read its expiry.
	AccessCookieName = middleware.AccessCookieName
	// RefreshCookieName carries the refresh credential. HttpOnly.
	RefreshCookieName = "refresh_token"
	// RefreshPath is the only path the refresh cookie is sent to.
	RefreshPath = "/auth/refresh"
)

func (s *Server) setAccessCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessCookieName,
		Value:    token,
		Path:     "/",
		Domain:   s.opts.CookieDomain,
		MaxAge:   int(ttl / time.Second),
		HttpOnly: false,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) setRefreshCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    token,
		Path:     RefreshPath,
		Domain:   s.opts.CookieDomain,
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearCookies expires both credentials. Path must match the one used when
// setting or browsers keep the original cookie.
func (s *Server) clearCookies(w http.ResponseWriter) {
	for _, c := range []struct {
		name     string
		path     string
		httpOnly bool
	}{
		{AccessCookieName, "/", false},
		{RefreshCookieName, RefreshPath, true},
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     c.name,
			Value:    "",
			Path:     c.path,
			Domain:   s.opts.CookieDomain,
			MaxAge:   -1,
			HttpOnly: c.httpOnly,
			Secure:   s.opts.SecureCookies,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
