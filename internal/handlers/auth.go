package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/macacolandia/dashboard-api/internal/auth"
	"github.com/macacolandia/dashboard-api/internal/models"
	"github.com/macacolandia/dashboard-api/internal/ratelimit"
	"github.com/macacolandia/dashboard-api/internal/services"
	pkghttp "github.com/macacolandia/dashboard-api/pkg/http"
)

// AuthServiceInterface is the credential check consumed by the handler.
type AuthServiceInterface interface {
	Login(ctx context.Context, req services.LoginRequest) (*models.Account, error)
}

// RegistrationServiceInterface is the registration flow consumed by the
// handler.
type RegistrationServiceInterface interface {
	Register(ctx context.Context, req services.RegisterRequest) error
}

// RateLimiter is the per-action request limiter consumed by the handler.
type RateLimiter interface {
	Check(ctx context.Context, clientAddr string, action ratelimit.Action) (ratelimit.Result, error)
	Clear(ctx context.Context, clientAddr string, action ratelimit.Action) error
}

// SecurityRecorder appends security events from the HTTP edge.
type SecurityRecorder interface {
	Record(ctx context.Context, entry *models.SecurityLogEntry)
}

// AuthHandler serves login, registration and session endpoints.
type AuthHandler struct {
	authService   AuthServiceInterface
	registrations RegistrationServiceInterface
	sessions      *auth.SessionManager
	limiter       RateLimiter
	securityLog   SecurityRecorder
	cookieConfig  auth.CookieConfig
	proxyConfig   *pkghttp.ProxyConfig
	loginLimit    int
	registerLimit int
}

func NewAuthHandler(
	authService AuthServiceInterface,
	registrations RegistrationServiceInterface,
	sessions *auth.SessionManager,
	limiter RateLimiter,
	securityLog SecurityRecorder,
	cookieConfig auth.CookieConfig,
	proxyConfig *pkghttp.ProxyConfig,
	loginLimit, registerLimit int,
) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		registrations: registrations,
		sessions:      sessions,
		limiter:       limiter,
		securityLog:   securityLog,
		cookieConfig:  cookieConfig,
		proxyConfig:   proxyConfig,
		loginLimit:    loginLimit,
		registerLimit: registerLimit,
	}
}

// Request DTOs

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Name         string `json:"name" validate:"required,min=2,max=100"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8,max=128"`
	CaptchaToken string `json:"captchaToken"`
}

// UserResponse is the account shape returned to the dashboard.
type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	clientIP := pkghttp.ClientAddr(r, h.proxyConfig)
	userAgent := headerPtr(r, "User-Agent")

	result, err := h.limiter.Check(r.Context(), clientIP, ratelimit.ActionLogin)
	if err == nil && !result.Allowed {
		h.securityLog.Record(r.Context(), &models.SecurityLogEntry{
			EventType: models.EventLoginRateLimited,
			Severity:  models.SeverityMedium,
			IPAddress: clientIP,
			UserAgent: userAgent,
			Details:   "login rate limit exceeded",
		})
		writeRateLimited(w, result, h.loginLimit)
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	account, err := h.authService.Login(r.Context(), services.LoginRequest{
		Email:     req.Email,
		Password:  req.Password,
		IPAddress: clientIP,
		UserAgent: userAgent,
	})
	if err != nil {
		h.writeLoginError(w, err)
		return
	}

	// Verified success: prior attempts stop counting against the client
	_ = h.limiter.Clear(r.Context(), clientIP, ratelimit.ActionLogin)

	token, err := h.sessions.Issue(account)
	if err != nil {
		pkghttp.WriteInternalError(w, "failed to create session")
		return
	}
	auth.SetSessionCookie(w, token, h.sessions.MaxAge(), h.cookieConfig)

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user": UserResponse{
			ID:    account.ID,
			Name:  account.Name,
			Email: account.Email,
			Role:  account.Role,
		},
	})
}

func (h *AuthHandler) writeLoginError(w http.ResponseWriter, err error) {
	var vErr *models.ValidationError
	var credErr *models.CredentialsError
	var lockedErr *models.LockedError

	switch {
	case errors.As(err, &vErr):
		pkghttp.WriteBadRequest(w, vErr.Message)

	case errors.As(err, &credErr):
		pkghttp.WriteErrorWith(w, http.StatusUnauthorized, credErr.Error(), map[string]interface{}{
			"attempts":          credErr.Attempts,
			"remainingAttempts": credErr.RemainingAttempts(),
		})

	case errors.As(err, &lockedErr):
		extra := map[string]interface{}{"locked": true}
		if lockedErr.Fresh {
			extra["attempts"] = lockedErr.Attempts
		} else {
			extra["retryAfter"] = retryAfterSeconds(lockedErr.LockedUntil)
		}
		pkghttp.WriteErrorWith(w, http.StatusLocked, lockedErr.Error(), extra)

	case errors.Is(err, models.ErrAccountUnapproved):
		pkghttp.WriteErrorWith(w, http.StatusForbidden, err.Error(), map[string]interface{}{
			"unapproved": true,
		})

	case errors.Is(err, models.ErrAccountBlocked):
		pkghttp.WriteErrorWith(w, http.StatusForbidden, err.Error(), map[string]interface{}{
			"blocked": true,
		})

	default:
		pkghttp.WriteInternalError(w, "an unexpected error occurred")
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	clientIP := pkghttp.ClientAddr(r, h.proxyConfig)
	userAgent := headerPtr(r, "User-Agent")

	result, err := h.limiter.Check(r.Context(), clientIP, ratelimit.ActionRegister)
	if err == nil && !result.Allowed {
		h.securityLog.Record(r.Context(), &models.SecurityLogEntry{
			EventType: models.EventRegisterRateLimited,
			Severity:  models.SeverityMedium,
			IPAddress: clientIP,
			UserAgent: userAgent,
			Details:   "registration rate limit exceeded",
		})
		writeRateLimited(w, result, h.registerLimit)
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	err = h.registrations.Register(r.Context(), services.RegisterRequest{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		CaptchaToken: req.CaptchaToken,
		IPAddress:    clientIP,
		UserAgent:    userAgent,
	})
	if err != nil {
		var vErr *models.ValidationError
		if errors.As(err, &vErr) {
			pkghttp.WriteBadRequest(w, vErr.Message)
			return
		}
		pkghttp.WriteInternalError(w, "an unexpected error occurred")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Registration received. An administrator will review your request.",
	})
}

// Logout handles POST /api/auth/logout by clearing the session cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, h.cookieConfig)
	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// Me handles GET /api/auth/me for the logged-in session.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := auth.SessionFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"user": UserResponse{
			ID:    claims.AccountID,
			Email: claims.Email,
			Role:  claims.Role,
		},
	})
}

func writeRateLimited(w http.ResponseWriter, result ratelimit.Result, limit int) {
	retryAfter := retryAfterSeconds(result.ResetAt)
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
	w.Header().Set("X-RateLimit-Remaining", "0")
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

	message := result.Message
	if message == "" {
		message = "Too many attempts. Try again later."
	}
	pkghttp.WriteErrorWith(w, http.StatusTooManyRequests, message, map[string]interface{}{
		"retryAfter": retryAfter,
	})
}

func retryAfterSeconds(until time.Time) int {
	seconds := int(time.Until(until).Seconds()) + 1
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}

func headerPtr(r *http.Request, name string) *string {
	value := r.Header.Get(name)
	if value == "" {
		return nil
	}
	return &value
}
