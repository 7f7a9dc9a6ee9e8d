package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/MrEthical07/hireauth"
	"github.com/MrEthical07/hireauth/middleware"
)

// Server exposes the session lifecycle over HTTP.
type Server struct {
	engine  *hireauth.Engine
	opts    Options
	logger  *zap.Logger
	limiter *ipLimiter
}

// New returns the HTTP handler for engine. A nil engine is accepted so that a
// misconfigured process still serves health checks; every auth route then
// answers 500.
func New(engine *hireauth.Engine, opts Options, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		engine: engine,
		opts:   opts,
		logger: logger.Named("http"),
	}
	if opts.LoginRatePerSecond > 0 {
		s.limiter = newIPLimiter(opts.LoginRatePerSecond, opts.LoginBurst)
	}
	return s.routes()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(chimw.Recoverer)
	if s.opts.RequestTimeout > 0 {
		r.Use(chimw.Timeout(s.opts.RequestTimeout))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           int((5 * time.Minute).Seconds()),
	}))
	r.Use(middleware.ClientContext)

	r.Get("/healthz", s.handleHealth)
	if s.opts.MetricsHandler != nil {
		r.Handle("/metrics", s.opts.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.limiter.handler)
		}
		r.Post("/login", s.handleLogin)
		r.Post("/register", s.handleRegister)
		r.Post(RefreshPath, s.handleRefresh)
	})
	r.Post("/logout", s.handleLogout)

	var verifier middleware.Verifier
	if s.engine != nil {
		verifier = s.engine
	}
	r.Group(func(r chi.Router) {
		r.Use(middleware.Guard(verifier))
		r.Get("/me", s.handleMe)
		r.With(middleware.RequireRole(hireauth.RoleAdmin)).Get("/admin/me", s.handleMe)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteMessage(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return r
}
