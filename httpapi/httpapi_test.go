package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/MrEthical07/hireauth"
	"github.com/MrEthical07/hireauth/store/memstore"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type fixture struct {
	engine  *hireauth.Engine
	store   *memstore.Store
	handler http.Handler

	mu  sync.Mutex
	now time.Time
}

// clock is frozen on a whole second so expiry boundaries are exact.
func (f *fixture) clock() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// advance moves the engine clock forward.
func (f *fixture) advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := hireauth.DefaultConfig()
	cfg.JWT.Secret = testSecret
	cfg.Password.BcryptCost = bcrypt.MinCost
	cfg.RateLimit.MaxLoginAttempts = 3
	cfg.RateLimit.LoginCooldownDuration = time.Minute

	f := &fixture{store: memstore.New(), now: time.Now().Truncate(time.Second)}
	engine, err := hireauth.New().
		WithConfig(cfg).
		WithCredentialStore(f.store).
		WithRedis(client).
		WithLogger(zap.NewNop()).
		WithClock(f.clock).
		Build()
	require.NoError(t, err)
	t.Cleanup(engine.Close)

	f.engine = engine
	f.handler = New(engine, opts, zap.NewNop())
	return f
}

func (f *fixture) seed(t *testing.T, email, password string, role hireauth.Role) hireauth.Identity {
	t.Helper()
	hash, err := f.engine.HashPassword(password)
	require.NoError(t, err)
	identity, err := f.store.Create(context.Background(), hireauth.CreateIdentityInput{
		FullName:     "Test User",
		Email:        email,
		Role:         role,
		PasswordHash: hash,
	})
	require.NoError(t, err)
	return identity
}

func do(h http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func cookieByName(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["message"]
}

func login(t *testing.T, f *fixture, email, password string) (*http.Cookie, *http.Cookie) {
	t.Helper()
	rec := do(f.handler, http.MethodPost, "/login", `{"email":"`+email+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	access := cookieByName(rec, AccessCookieName)
	refresh := cookieByName(rec, RefreshCookieName)
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	return access, refresh
}

func TestLoginSetsCookies(t *testing.T) {
	f := newFixture(t, Options{SecureCookies: true})
	user := f.seed(t, "a@b.com", "correct-horse", hireauth.RoleApplicant)

	rec := do(f.handler, http.MethodPost, "/login", `{"email":"A@B.com ","password":"correct-horse"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, user.UserID, body["userId"])

	access := cookieByName(rec, AccessCookieName)
	require.NotNil(t, access)
	assert.Equal(t, "/", access.Path)
	assert.Equal(t, 900, access.MaxAge)
	assert.False(t, access.HttpOnly)
	assert.True(t, access.Secure)
	assert.Equal(t, http.SameSiteLaxMode, access.SameSite)

	refresh := cookieByName(rec, RefreshCookieName)
	require.NotNil(t, refresh)
	assert.Equal(t, RefreshPath, refresh.Path)
	assert.Equal(t, 7776000, refresh.MaxAge)
	assert.True(t, refresh.HttpOnly)
	assert.True(t, refresh.Secure)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	f := newFixture(t, Options{})
	f.seed(t, "a@b.com", "correct-horse", hireauth.RoleApplicant)

	wrong := do(f.handler, http.MethodPost, "/login", `{"email":"a@b.com","password":"nope"}`)
	unknown := do(f.handler, http.MethodPost, "/login", `{"email":"ghost@b.com","password":"nope"}`)

	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String())
	assert.Equal(t, "Invalid credentials", message(t, wrong))
	assert.Nil(t, cookieByName(wrong, AccessCookieName))
}

func TestLoginBadRequest(t *testing.T) {
	f := newFixture(t, Options{})

	t.Run("malformed json", func(t *testing.T) {
		rec := do(f.handler, http.MethodPost, "/login", `{"email":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
	t.Run("missing password", func(t *testing.T) {
		rec := do(f.handler, http.MethodPost, "/login", `{"email":"a@b.com"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "password is required", message(t, rec))
	})
}

func TestLoginThrottled(t *testing.T) {
	f := newFixture(t, Options{})
	f.seed(t, "a@b.com", "correct-horse", hireauth.RoleApplicant)

	for i := 0; i < 3; i++ {
		rec := do(f.handler, http.MethodPost, "/login", `{"email":"a@b.com","password":"bad"}`)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec := do(f.handler, http.MethodPost, "/login", `{"email":"a@b.com","password":"correct-horse"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Too many login attempts", message(t, rec))
}

func TestMeWithCookieAndBearer(t *testing.T) {
	f := newFixture(t, Options{})
	user := f.seed(t, "a@b.com", "correct-horse", hireauth.RoleApplicant)
	access, _ := login(t, f, "a@b.com", "correct-horse")

	rec := do(f.handler, http.MethodGet, "/me", "", access)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"userId":"`+user.UserID+`","email":"a@b.com","role":"applicant"}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+access.Value)
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(f.handler, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", message(t, rec))
}

func TestMeRejectsExpiredAccessCookie(t *testing.T) {
	f := newFixture(t, Options{})
	f.seed(t, "a@b.com", "correct-horse", hireauth.RoleApplicant)
	access, _ := login(t, f, "a@b.com", "correct-horse")

	f.advance(f.engine.AccessTTL() - time.Second)
	rec := do(f.handler, http.MethodGet, "/me", "", access)
	require.Equal(t, http.StatusOK, rec.Code)

	// One second past expiry.
	f.advance(2 * time.Second)
	rec = do(f.handler, http.MethodGet, "/me", "", access)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", message(t, rec))
	assert.NotContains(t, rec.Body.String(), "userId")
}

func TestAdminRouteRequiresRole(t *testing.T) {
	f := newFixture(t, Options{})
	f.seed(t, "app@b.com", "correct-horse", hireauth.RoleApplicant)
	f.seed(t, "admin@b.com", "correct-horse", hireauth.RoleAdmin)

	applicant, _ := login(t, f, "app@b.com", "correct-horse")
	admin, _ := login(t, f, "admin@b.com", "correct-horse")

	rec := do(f.handler, http.MethodGet, "/admin/me", "", applicant)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Forbidden", message(t, rec))

	rec = do(f.handler, http.MethodGet, "/admin/me", "", admin)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRefreshIssuesNewAccessCookie(t *testing.T) {
	f := newFixture(t, Options{})
	user := f.seed(t, "a@b.com", "correct-horse", hireauth.RoleApplicant)
	access, refresh := login(t, f, "a@b.com", "correct-horse")

	rec := do(f.handler, http.MethodPost, RefreshPath, "", refresh)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, user.UserID, body["userId"])

	fresh := cookieByName(rec, AccessCookieName)
	require.NotNil(t, fresh)
	assert.NotEqual(t, access.Value, fresh.Value)
	assert.Nil(t, cookieByName(rec, RefreshCookieName), "refresh credential is not rotated")
}

func TestRefreshRejectsAndClearsCookies(t *testing.T) {
	f := newFixture(t, Options{})
	f.seed(t, "a@b.com", "correct-horse", hireauth.RoleApplicant)
	access, _ := login(t, f, "a@b.com", "correct-horse")

	cases := map[string][]*http.Cookie{
		"missing cookie":          nil,
		"garbage":                 {{Name: RefreshCookieName, Value: "not-a-token"}},
		"access token as refresh": {{Name: RefreshCookieName, Value: access.Value}},
	}
	for name, cookies := range cases {
		t.Run(name, func(t *testing.T) {
			rec := do(f.handler, http.MethodPost, RefreshPath, "", cookies...)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Unauthorized", message(t, rec))

			cleared := cookieByName(rec, AccessCookieName)
			require.NotNil(t, cleared)
			assert.Equal(t, -1, cleared.MaxAge)
			assert.Equal(t, "/", cleared.Path)

			cleared = cookieByName(rec, RefreshCookieName)
			require.NotNil(t, cleared)
			assert.Equal(t, -1, cleared.MaxAge)
			assert.Equal(t, RefreshPath, cleared.Path)
		})
	}
}

func TestRefreshAfterAccountDeleted(t *testing.T) {
	f := newFixture(t, Options{})
	user := f.seed(t, "a@b.com", "correct-horse", hireauth.RoleApplicant)
	_, refresh := login(t, f, "a@b.com", "correct-horse")

	require.NoError(t, f.store.Delete(context.Background(), user.UserID))

	rec := do(f.handler, http.MethodPost, RefreshPath, "", refresh)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutAlwaysClears(t *testing.T) {
	f := newFixture(t, Options{})
	f.seed(t, "a@b.com", "correct-horse", hireauth.RoleApplicant)
	access, _ := login(t, f, "a@b.com", "correct-horse")

	for name, cookies := range map[string][]*http.Cookie{
		"with credential":    {access},
		"without credential": nil,
		"garbage credential": {{Name: AccessCookieName, Value: "garbage"}},
	} {
		t.Run(name, func(t *testing.T) {
			rec := do(f.handler, http.MethodPost, "/logout", "", cookies...)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "Logged out", message(t, rec))
			require.NotNil(t, cookieByName(rec, AccessCookieName))
			require.NotNil(t, cookieByName(rec, RefreshCookieName))
			assert.Equal(t, -1, cookieByName(rec, RefreshCookieName).MaxAge)
		})
	}
}

func TestRegister(t *testing.T) {
	f := newFixture(t, Options{})

	rec := do(f.handler, http.MethodPost, "/register", `{"full_name":"Ada Lovelace","email":"ada@b.com","password":"analytical"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["userId"])

	identity, err := f.store.GetByEmail(context.Background(), "ada@b.com")
	require.NoError(t, err)
	assert.Equal(t, hireauth.RoleApplicant, identity.Role)

	t.Run("duplicate", func(t *testing.T) {
		rec := do(f.handler, http.MethodPost, "/register", `{"full_name":"Ada","email":"ADA@b.com","password":"analytical"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
	t.Run("short password", func(t *testing.T) {
		rec := do(f.handler, http.MethodPost, "/register", `{"full_name":"Bob","email":"bob@b.com","password":"short"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
	t.Run("bad email", func(t *testing.T) {
		rec := do(f.handler, http.MethodPost, "/register", `{"full_name":"Bob","email":"bob","password":"long-enough"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "email must be a valid email address", message(t, rec))
	})
	t.Run("role cannot be chosen", func(t *testing.T) {
		rec := do(f.handler, http.MethodPost, "/register", `{"full_name":"Eve","email":"eve@b.com","password":"long-enough","role":"admin"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		_, err := f.store.GetByEmail(context.Background(), "eve@b.com")
		assert.True(t, errors.Is(err, hireauth.ErrIdentityNotFound))
	})
}

func TestNilEngineAnswers500(t *testing.T) {
	h := New(nil, Options{}, nil)

	for _, tc := range []struct {
		method, path, body string
	}{
		{http.MethodPost, "/login", `{"email":"a@b.com","password":"x"}`},
		{http.MethodPost, RefreshPath, ""},
		{http.MethodPost, "/logout", ""},
		{http.MethodPost, "/register", `{"full_name":"A","email":"a@b.com","password":"long-enough"}`},
		{http.MethodGet, "/me", ""},
	} {
		t.Run(tc.path, func(t *testing.T) {
			rec := do(h, tc.method, tc.path, tc.body)
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, "Internal server error", message(t, rec))
		})
	}

	rec := do(h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthCheckFailure(t *testing.T) {
	h := New(nil, Options{HealthCheck: func(context.Context) error { return errors.New("db down") }}, nil)
	rec := do(h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestPerIPLimiter(t *testing.T) {
	f := newFixture(t, Options{LoginRatePerSecond: 0.001, LoginBurst: 2})

	for i := 0; i < 2; i++ {
		rec := do(f.handler, http.MethodPost, "/login", `{"email":"x@b.com","password":"x"}`)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec := do(f.handler, http.MethodPost, "/login", `{"email":"x@b.com","password":"x"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = do(f.handler, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code, "limiter only covers credential endpoints")
}

func TestCORSAllowsCredentials(t *testing.T) {
	f := newFixture(t, Options{AllowedOrigins: []string{"https://app.example.com"}})

	req := httptest.NewRequest(http.MethodOptions, "/login", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestNotFoundIsJSON(t *testing.T) {
	h := New(nil, Options{}, nil)
	rec := do(h, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not found", message(t, rec))
}
