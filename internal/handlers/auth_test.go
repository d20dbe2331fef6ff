package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macacolandia/dashboard-api/internal/auth"
	"github.com/macacolandia/dashboard-api/internal/models"
	"github.com/macacolandia/dashboard-api/internal/ratelimit"
	"github.com/macacolandia/dashboard-api/internal/services"
)

type authHandlerFixture struct {
	handler  *AuthHandler
	authSvc  *MockAuthService
	regSvc   *MockRegistrationService
	limiter  *MockRateLimiter
	recorder *MockSecurityRecorder
}

func newAuthHandlerFixture() *authHandlerFixture {
	f := &authHandlerFixture{
		authSvc:  &MockAuthService{},
		regSvc:   &MockRegistrationService{},
		limiter:  &MockRateLimiter{},
		recorder: &MockSecurityRecorder{},
	}
	sessions := auth.NewSessionManager("test-secret-key-with-enough-length", time.Hour)
	f.handler = NewAuthHandler(
		f.authSvc, f.regSvc, sessions, f.limiter, f.recorder,
		auth.CookieConfig{SameSite: "lax"}, nil, 5, 10,
	)
	return f
}

func postJSON(t *testing.T, handler http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	r.RemoteAddr = "203.0.113.10:4000"
	w := httptest.NewRecorder()
	handler(w, r)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestLogin_Success(t *testing.T) {
	f := newAuthHandlerFixture()
	f.authSvc.LoginFunc = func(ctx context.Context, req services.LoginRequest) (*models.Account, error) {
		assert.Equal(t, "203.0.113.10", req.IPAddress)
		return &models.Account{ID: "acc-1", Name: "Admin", Email: req.Email, Role: models.RoleAdmin}, nil
	}

	w := postJSON(t, f.handler.Login, "/api/auth/login", `{"email":"admin@example.com","password":"Sup3rSecret"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "acc-1", user["id"])

	// Session cookie set, login counter cleared
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "session_token", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, []string{"login:203.0.113.10"}, f.limiter.ClearCalls)
}

func TestLogin_WrongPassword401(t *testing.T) {
	f := newAuthHandlerFixture()
	f.authSvc.LoginFunc = func(ctx context.Context, req services.LoginRequest) (*models.Account, error) {
		return nil, &models.CredentialsError{Attempts: 2, Threshold: 5}
	}

	w := postJSON(t, f.handler.Login, "/api/auth/login", `{"email":"admin@example.com","password":"nope1234"}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(2), body["attempts"])
	assert.Equal(t, float64(3), body["remainingAttempts"])
	assert.NotEmpty(t, body["error"])
	assert.Empty(t, f.limiter.ClearCalls)
}

func TestLogin_ActiveLockout423(t *testing.T) {
	f := newAuthHandlerFixture()
	f.authSvc.LoginFunc = func(ctx context.Context, req services.LoginRequest) (*models.Account, error) {
		return nil, &models.LockedError{LockedUntil: time.Now().Add(10 * time.Minute)}
	}

	w := postJSON(t, f.handler.Login, "/api/auth/login", `{"email":"admin@example.com","password":"Sup3rSecret"}`)

	assert.Equal(t, http.StatusLocked, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["locked"])
	assert.Greater(t, body["retryAfter"].(float64), float64(0))
}

func TestLogin_FreshLock423WithAttempts(t *testing.T) {
	f := newAuthHandlerFixture()
	f.authSvc.LoginFunc = func(ctx context.Context, req services.LoginRequest) (*models.Account, error) {
		return nil, &models.LockedError{
			LockedUntil: time.Now().Add(15 * time.Minute),
			Attempts:    5,
			Fresh:       true,
		}
	}

	w := postJSON(t, f.handler.Login, "/api/auth/login", `{"email":"admin@example.com","password":"nope1234"}`)

	assert.Equal(t, http.StatusLocked, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["locked"])
	assert.Equal(t, float64(5), body["attempts"])
}

func TestLogin_Unapproved403(t *testing.T) {
	f := newAuthHandlerFixture()
	f.authSvc.LoginFunc = func(ctx context.Context, req services.LoginRequest) (*models.Account, error) {
		return nil, models.ErrAccountUnapproved
	}

	w := postJSON(t, f.handler.Login, "/api/auth/login", `{"email":"new@example.com","password":"Sup3rSecret"}`)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["unapproved"])
}

func TestLogin_Blocked403(t *testing.T) {
	f := newAuthHandlerFixture()
	f.authSvc.LoginFunc = func(ctx context.Context, req services.LoginRequest) (*models.Account, error) {
		return nil, models.ErrAccountBlocked
	}

	w := postJSON(t, f.handler.Login, "/api/auth/login", `{"email":"bad@example.com","password":"Sup3rSecret"}`)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["blocked"])
}

func TestLogin_RateLimited429(t *testing.T) {
	f := newAuthHandlerFixture()
	f.limiter.CheckFunc = func(ctx context.Context, clientAddr string, action ratelimit.Action) (ratelimit.Result, error) {
		return ratelimit.Result{
			Allowed: false,
			ResetAt: time.Now().Add(3 * time.Minute),
			Message: "Too many attempts. Try again in 3 minute(s).",
		}, nil
	}

	w := postJSON(t, f.handler.Login, "/api/auth/login", `{"email":"admin@example.com","password":"Sup3rSecret"}`)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	body := decodeBody(t, w)
	assert.Greater(t, body["retryAfter"].(float64), float64(0))

	// The denial is logged as a security event
	require.Len(t, f.recorder.Entries, 1)
	assert.Equal(t, models.EventLoginRateLimited, f.recorder.Entries[0].EventType)
}

func TestLogin_InvalidBody400(t *testing.T) {
	f := newAuthHandlerFixture()

	w := postJSON(t, f.handler.Login, "/api/auth/login", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_MissingFields400(t *testing.T) {
	f := newAuthHandlerFixture()

	w := postJSON(t, f.handler.Login, "/api/auth/login", `{"email":"admin@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_InternalError500(t *testing.T) {
	f := newAuthHandlerFixture()
	f.authSvc.LoginFunc = func(ctx context.Context, req services.LoginRequest) (*models.Account, error) {
		return nil, models.ErrInternalServer
	}

	w := postJSON(t, f.handler.Login, "/api/auth/login", `{"email":"admin@example.com","password":"Sup3rSecret"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	// Generic message only, no internals leaked
	assert.Equal(t, "an unexpected error occurred", decodeBody(t, w)["error"])
}

func TestRegister_Success(t *testing.T) {
	f := newAuthHandlerFixture()

	var got services.RegisterRequest
	f.regSvc.RegisterFunc = func(ctx context.Context, req services.RegisterRequest) error {
		got = req
		return nil
	}

	w := postJSON(t, f.handler.Register, "/api/auth/register",
		`{"name":"Maria Silva","email":"maria@example.com","password":"Sup3rSecret","captchaToken":"tok"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["success"])
	assert.Equal(t, "maria@example.com", got.Email)
	assert.Equal(t, "203.0.113.10", got.IPAddress)
}

func TestRegister_ValidationError400(t *testing.T) {
	f := newAuthHandlerFixture()
	f.regSvc.RegisterFunc = func(ctx context.Context, req services.RegisterRequest) error {
		return &models.ValidationError{Message: "captcha verification failed"}
	}

	w := postJSON(t, f.handler.Register, "/api/auth/register",
		`{"name":"Maria Silva","email":"maria@example.com","password":"Sup3rSecret","captchaToken":"bad"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "captcha verification failed", decodeBody(t, w)["error"])
}

func TestRegister_RateLimited429(t *testing.T) {
	f := newAuthHandlerFixture()
	f.limiter.CheckFunc = func(ctx context.Context, clientAddr string, action ratelimit.Action) (ratelimit.Result, error) {
		return ratelimit.Result{Allowed: false, ResetAt: time.Now().Add(time.Hour)}, nil
	}

	w := postJSON(t, f.handler.Register, "/api/auth/register",
		`{"name":"Maria Silva","email":"maria@example.com","password":"Sup3rSecret","captchaToken":"tok"}`)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Len(t, f.recorder.Entries, 1)
	assert.Equal(t, models.EventRegisterRateLimited, f.recorder.Entries[0].EventType)
}

func TestLogout_ClearsCookie(t *testing.T) {
	f := newAuthHandlerFixture()

	w := postJSON(t, f.handler.Logout, "/api/auth/logout", "")

	assert.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "session_token", cookies[0].Name)
	assert.Less(t, cookies[0].MaxAge, 0)
}
