package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
)

const (
	accessCookieName = "access_token"
	maxErrorBody     = 4 << 10
)

// Transport performs the server round trips a Session needs. Each method
// returns the new access token where applicable.
type Transport interface {
	Login(ctx context.Context, email, password string) (string, error)
	Refresh(ctx context.Context) (string, error)
	Logout(ctx context.Context) error
}

// StatusError is a non-2xx response from the server.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server responded %d", e.StatusCode)
	}
	return fmt.Sprintf("server responded %d: %s", e.StatusCode, e.Message)
}

// ErrMissingAccessCookie means a successful response carried no access cookie.
var ErrMissingAccessCookie = errors.New("response did not set an access token")

// HTTPTransport implements Transport against the httpapi routes.
type HTTPTransport struct {
	base   *url.URL
	client *http.Client
}

// TransportOption configures an HTTPTransport.
type TransportOption func(*HTTPTransport)

// WithHTTPClient replaces the HTTP client. If it has no cookie jar one is
// attached. Sharing one client between transports models several tabs of the
// same browser.
func WithHTTPClient(c *http.Client) TransportOption {
	return func(t *HTTPTransport) {
		t.client = c
	}
}

// NewHTTPTransport returns a transport rooted at baseURL.
func NewHTTPTransport(baseURL string, opts ...TransportOption) (*HTTPTransport, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	t := &HTTPTransport{base: base}
	for _, opt := range opts {
		opt(t)
	}
	if t.client == nil {
		t.client = &http.Client{}
	}
	if t.client.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		t.client.Jar = jar
	}
	return t, nil
}

// Login implements Transport.
func (t *HTTPTransport) Login(ctx context.Context, email, password string) (string, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return "", err
	}
	resp, err := t.post(ctx, "/login", body)
	if err != nil {
		return "", err
	}
	return accessTokenFrom(resp)
}

// Refresh implements Transport. The refresh cookie is sent by the jar.
func (t *HTTPTransport) Refresh(ctx context.Context) (string, error) {
	resp, err := t.post(ctx, "/auth/refresh", nil)
	if err != nil {
		return "", err
	}
	return accessTokenFrom(resp)
}

// Logout implements Transport.
func (t *HTTPTransport) Logout(ctx context.Context) error {
	_, err := t.post(ctx, "/logout", nil)
	return err
}

func (t *HTTPTransport) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.base.String()+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var msg struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&msg)
		return nil, &StatusError{StatusCode: resp.StatusCode, Message: msg.Message}
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	return resp, nil
}

func accessTokenFrom(resp *http.Response) (string, error) {
	for _, c := range resp.Cookies() {
		if c.Name == accessCookieName && c.Value != "" {
			return c.Value, nil
		}
	}
	return "", ErrMissingAccessCookie
}
