package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/MrEthical07/hireauth"
	"github.com/MrEthical07/hireauth/middleware"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	FullName string `json:"full_name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userIDResponse struct {
	UserID string `json:"userId"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.opts.HealthCheck != nil {
		if err := s.opts.HealthCheck(r.Context()); err != nil {
			s.logger.Warn("health check failed", zap.Error(err))
			middleware.WriteMessage(w, http.StatusServiceUnavailable, "Unavailable")
			return
		}
	}
	middleware.WriteMessage(w, http.StatusOK, "ok")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.engine == nil {
		s.internalError(w, r, hireauth.ErrEngineNotReady)
		return
	}

	var req loginRequest
	if !s.decode(w, r, &req) {
		return
	}
	if msg := validateRequest(req); msg != "" {
		middleware.WriteMessage(w, http.StatusBadRequest, msg)
		return
	}

	res, err := s.engine.Login(r.Context(), req.Email, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, hireauth.ErrLoginRateLimited):
		middleware.WriteMessage(w, http.StatusTooManyRequests, "Too many login attempts")
		return
	case errors.Is(err, hireauth.ErrAuthenticationFailure):
		middleware.WriteMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	default:
		s.internalError(w, r, err)
		return
	}

	s.setAccessCookie(w, res.AccessToken, s.engine.AccessTTL())
	s.setRefreshCookie(w, res.RefreshToken, s.engine.RefreshTTL())
	writeJSON(w, http.StatusOK, userIDResponse{UserID: res.UserID})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.engine == nil {
		s.internalError(w, r, hireauth.ErrEngineNotReady)
		return
	}

	c, err := r.Cookie(RefreshCookieName)
	if err != nil || c.Value == "" {
		s.clearCookies(w)
		middleware.WriteMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	res, err := s.engine.Refresh(r.Context(), c.Value)
	if err != nil {
		if errors.Is(err, hireauth.ErrEngineNotReady) {
			s.internalError(w, r, err)
			return
		}
		s.logger.Debug("refresh rejected", zap.Error(err))
		s.clearCookies(w)
		middleware.WriteMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	s.setAccessCookie(w, res.AccessToken, s.engine.AccessTTL())
	writeJSON(w, http.StatusOK, userIDResponse{UserID: res.UserID})
}

// handleLogout clears both cookies whether or not the presented credential is
// still valid.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if s.engine == nil {
		s.internalError(w, r, hireauth.ErrEngineNotReady)
		return
	}

	token, _ := middleware.AccessToken(r)
	s.engine.Logout(r.Context(), token)
	s.clearCookies(w)
	middleware.WriteMessage(w, http.StatusOK, "Logged out")
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if s.engine == nil {
		s.internalError(w, r, hireauth.ErrEngineNotReady)
		return
	}

	var req registerRequest
	if !s.decode(w, r, &req) {
		return
	}
	if msg := validateRequest(req); msg != "" {
		middleware.WriteMessage(w, http.StatusBadRequest, msg)
		return
	}

	identity, err := s.engine.Register(r.Context(), hireauth.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	switch {
	case err == nil:
	case errors.Is(err, hireauth.ErrAccountExists):
		middleware.WriteMessage(w, http.StatusConflict, "Email already registered")
		return
	case errors.Is(err, hireauth.ErrRegistrationInvalid):
		middleware.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	default:
		s.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, userIDResponse{UserID: identity.UserID})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		middleware.WriteMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, identity)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := r.Body
	if s.opts.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	}
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		middleware.WriteMessage(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	middleware.WriteMessage(w, http.StatusInternalServerError, "Internal server error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
